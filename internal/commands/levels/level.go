package levels

import (
	"fmt"

	"github.com/PancyStudios/ArcaneBotGo/internal/progression"
	"github.com/PancyStudios/ArcaneBotGo/pkg/discord"
	"github.com/bwmarrin/discordgo"
)

// progressCells is the width of the text progress bar
const progressCells = 20

// createLevelCommand creates the /level command
func (h *Handlers) createLevelCommand() *discord.Command {
	return discord.NewCommand(
		"level",
		"Show a user's level and XP",
		"levels",
		h.levelHandler,
	).WithOptions(
		discord.UserOption("user", "User to look up", false),
	).WithAliases("lvl", "rank")
}

// levelHandler handles the /level command
func (h *Handlers) levelHandler(ctx *discord.CommandContext) error {
	user := ctx.TargetUser("user")
	standing, err := h.Engine.Standing(ctx.Context(), ctx.GuildID(), user.ID)
	if err != nil {
		return err
	}

	return ctx.ReplyEmbed(LevelEmbed(displayName(lookupMember(ctx, user.ID), user), standing))
}

// LevelEmbed renders a standing as the level embed
func LevelEmbed(name string, s progression.Standing) *discordgo.MessageEmbed {
	return &discordgo.MessageEmbed{
		Title: name + "'s Level",
		Color: ColorBlue,
		Fields: []*discordgo.MessageEmbedField{
			{Name: "Level", Value: fmt.Sprintf("%d", s.Level), Inline: true},
			{Name: "XP", Value: fmt.Sprintf("%d", s.XP), Inline: true},
			{Name: "Rank", Value: fmt.Sprintf("#%d", s.Rank), Inline: true},
			{
				Name:  "Progress",
				Value: fmt.Sprintf("%s %d%%", progression.ProgressBar(s.Progress, progressCells), int(s.Progress*100)),
			},
		},
	}
}
