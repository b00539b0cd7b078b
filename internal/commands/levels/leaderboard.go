package levels

import (
	"bytes"
	"fmt"
	"strings"

	"github.com/PancyStudios/ArcaneBotGo/internal/progression"
	"github.com/PancyStudios/ArcaneBotGo/pkg/discord"
	"github.com/PancyStudios/ArcaneBotGo/pkg/logger"
	"github.com/PancyStudios/ArcaneBotGo/pkg/render"
	"github.com/bwmarrin/discordgo"
	"golang.org/x/sync/errgroup"
)

// ColorBlurple is the leaderboard embed color
const ColorBlurple = 0x5865F2

// avatarFetchers bounds concurrent avatar downloads per leaderboard
const avatarFetchers = 5

// createLeaderboardCommand creates the /leaderboard command
func (h *Handlers) createLeaderboardCommand() *discord.Command {
	return discord.NewCommand(
		"leaderboard",
		"Show the server leaderboard",
		"levels",
		h.leaderboardHandler,
	).WithOptions(
		discord.IntegerOption("limit", "How many users to show (1-20)", false),
	).WithAliases("lb")
}

// leaderboardHandler handles the /leaderboard command
func (h *Handlers) leaderboardHandler(ctx *discord.CommandContext) error {
	if err := ctx.Defer(); err != nil {
		logger.Debug("No se pudo diferir /leaderboard: "+err.Error(), "Levels")
	}

	limit := progression.DefaultLeaderboard
	if ctx.HasOption("limit") {
		limit = int(ctx.GetIntOption("limit"))
	}
	limit = progression.ClampLimit(limit)

	entries, err := h.Engine.TopN(ctx.Context(), ctx.GuildID(), limit)
	if err != nil {
		return err
	}
	if len(entries) == 0 {
		return ctx.Reply("No data yet.")
	}

	rows := h.rows(ctx, entries)
	title := "Leaderboard"
	if guild := ctx.Guild(); guild != nil {
		title = guild.Name + " Leaderboard"
	}

	img, err := render.Leaderboard(title, rows)
	if err != nil {
		logger.Warn("Error generando leaderboard: "+err.Error(), "Levels")
		return ctx.ReplyEmbed(LeaderboardEmbed(limit, rows))
	}

	return ctx.ReplyFile("", &discordgo.File{
		Name:        "leaderboard.png",
		ContentType: "image/png",
		Reader:      bytes.NewReader(img),
	})
}

// rows resolves names and avatars. Users who left the guild keep their
// position under a placeholder name.
func (h *Handlers) rows(ctx *discord.CommandContext, entries []progression.RankedEntry) []render.LeaderboardRow {
	rows := make([]render.LeaderboardRow, len(entries))

	var g errgroup.Group
	g.SetLimit(avatarFetchers)
	for i, entry := range entries {
		rows[i] = render.LeaderboardRow{
			Position: entry.Position,
			Name:     "User " + entry.UserID,
			Level:    entry.Level,
			XP:       entry.XP,
		}

		member := lookupMember(ctx, entry.UserID)
		if member == nil || member.User == nil {
			continue
		}
		rows[i].Name = displayName(member, member.User)

		row := &rows[i]
		user := member.User
		g.Go(func() error {
			row.Avatar = h.avatar(ctx, user)
			return nil
		})
	}
	_ = g.Wait()

	return rows
}

// LeaderboardEmbed is the text fallback of the rendered leaderboard
func LeaderboardEmbed(limit int, rows []render.LeaderboardRow) *discordgo.MessageEmbed {
	var b strings.Builder
	for _, row := range rows {
		fmt.Fprintf(&b, "**%d.** %s - Level %d • %d XP\n", row.Position, row.Name, row.Level, row.XP)
	}
	desc := b.String()
	if desc == "" {
		desc = "No data yet."
	}

	return &discordgo.MessageEmbed{
		Title:       fmt.Sprintf("🏆 Leaderboard - Top %d", limit),
		Description: desc,
		Color:       ColorBlurple,
	}
}
