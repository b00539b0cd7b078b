package utils

import (
	"fmt"

	"github.com/PancyStudios/ArcaneBotGo/pkg/discord"
	"github.com/bwmarrin/discordgo"
)

// createServerInfoCommand creates the /serverinfo command
func (h *Handlers) createServerInfoCommand() *discord.Command {
	return discord.NewCommand(
		"serverinfo",
		"Show server info",
		"info",
		serverInfoHandler,
	).WithAliases("si")
}

func serverInfoHandler(ctx *discord.CommandContext) error {
	guild := ctx.Guild()
	if guild == nil {
		g, err := ctx.Session.Guild(ctx.GuildID(), discordgo.WithContext(ctx.Context()))
		if err != nil {
			return err
		}
		guild = g
	}
	return ctx.ReplyEmbed(ServerInfoEmbed(guild))
}

// ServerInfoEmbed builds the /serverinfo embed from a guild, usually the
// state copy which carries members and channels.
func ServerInfoEmbed(g *discordgo.Guild) *discordgo.MessageEmbed {
	bots := 0
	for _, m := range g.Members {
		if m.User != nil && m.User.Bot {
			bots++
		}
	}

	text, voice := 0, 0
	for _, c := range g.Channels {
		switch c.Type {
		case discordgo.ChannelTypeGuildText, discordgo.ChannelTypeGuildNews, discordgo.ChannelTypeGuildForum:
			text++
		case discordgo.ChannelTypeGuildVoice, discordgo.ChannelTypeGuildStageVoice:
			voice++
		}
	}

	created := "-"
	if t, err := discordgo.SnowflakeTimestamp(g.ID); err == nil {
		created = t.Format(dateLayout)
	}

	embed := &discordgo.MessageEmbed{
		Title:       g.Name,
		Description: g.Description,
		Color:       ColorBlurple,
		Fields: []*discordgo.MessageEmbedField{
			{Name: "Owner", Value: "<@" + g.OwnerID + ">", Inline: true},
			{Name: "Members", Value: fmt.Sprintf("%d", g.MemberCount), Inline: true},
			{Name: "Bots", Value: fmt.Sprintf("%d", bots), Inline: true},
			{Name: "Channels", Value: fmt.Sprintf("%d Text | %d Voice", text, voice), Inline: true},
			{Name: "Roles", Value: fmt.Sprintf("%d", len(g.Roles)), Inline: true},
			{Name: "Emojis", Value: fmt.Sprintf("%d", len(g.Emojis)), Inline: true},
			{Name: "Boosts", Value: fmt.Sprintf("%d", g.PremiumSubscriptionCount), Inline: true},
			{Name: "Boost Level", Value: fmt.Sprintf("%d", g.PremiumTier), Inline: true},
			{Name: "Created", Value: created, Inline: true},
		},
	}
	if g.Icon != "" {
		embed.Thumbnail = &discordgo.MessageEmbedThumbnail{URL: g.IconURL("256")}
	}
	return embed
}
