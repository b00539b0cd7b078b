package utils

import (
	"github.com/PancyStudios/ArcaneBotGo/pkg/discord"
	"github.com/bwmarrin/discordgo"
)

// createAvatarCommand creates the /avatar command
func (h *Handlers) createAvatarCommand() *discord.Command {
	return discord.NewCommand(
		"avatar",
		"Get a user's avatar",
		"info",
		avatarHandler,
	).WithOptions(
		discord.UserOption("user", "User to show", false),
	).WithAliases("av")
}

func avatarHandler(ctx *discord.CommandContext) error {
	user := ctx.TargetUser("user")
	return ctx.ReplyEmbed(&discordgo.MessageEmbed{
		Title: displayName(nil, user) + "'s Avatar",
		Color: ColorBlue,
		Image: &discordgo.MessageEmbedImage{URL: user.AvatarURL("1024")},
	})
}

// displayName prefers the guild nickname, then the global name
func displayName(member *discordgo.Member, user *discordgo.User) string {
	if member != nil && member.Nick != "" {
		return member.Nick
	}
	if user.GlobalName != "" {
		return user.GlobalName
	}
	return user.Username
}
