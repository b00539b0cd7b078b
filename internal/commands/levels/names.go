package levels

import (
	"github.com/PancyStudios/ArcaneBotGo/pkg/discord"
	"github.com/bwmarrin/discordgo"
)

// displayName prefers the guild nickname, then the global name
func displayName(member *discordgo.Member, user *discordgo.User) string {
	if member != nil && member.Nick != "" {
		return member.Nick
	}
	if user == nil {
		return ""
	}
	if user.GlobalName != "" {
		return user.GlobalName
	}
	return user.Username
}

// lookupMember returns the cached member, falling back to a REST fetch
func lookupMember(ctx *discord.CommandContext, userID string) *discordgo.Member {
	guildID := ctx.GuildID()
	if ctx.Session.State != nil {
		if m, err := ctx.Session.State.Member(guildID, userID); err == nil {
			return m
		}
	}
	m, err := ctx.Session.GuildMember(guildID, userID, discordgo.WithContext(ctx.Context()))
	if err != nil {
		return nil
	}
	return m
}
