package utils

import (
	"fmt"
	"runtime"
	"strings"
	"time"

	"github.com/PancyStudios/ArcaneBotGo/pkg/config"
	"github.com/PancyStudios/ArcaneBotGo/pkg/discord"
	"github.com/bwmarrin/discordgo"
)

// createStatsCommand creates the /stats command
func (h *Handlers) createStatsCommand() *discord.Command {
	return discord.NewCommand(
		"stats",
		"Show bot statistics",
		"info",
		statsHandler,
	)
}

// statsHandler handles the /stats command
func statsHandler(ctx *discord.CommandContext) error {
	var m runtime.MemStats
	runtime.ReadMemStats(&m)

	memberCount := 0
	ctx.Session.State.RLock()
	for _, guild := range ctx.Session.State.Guilds {
		memberCount += guild.MemberCount
	}
	ctx.Session.State.RUnlock()

	embed := &discordgo.MessageEmbed{
		Title: "📊 Bot Statistics",
		Color: ColorBlurple,
		Fields: []*discordgo.MessageEmbedField{
			{Name: "🤖 Version", Value: config.Version, Inline: true},
			{Name: "🐹 Go", Value: strings.TrimPrefix(runtime.Version(), "go"), Inline: true},
			{Name: "📚 DiscordGo", Value: discordgo.VERSION, Inline: true},
			{Name: "🖥 Memory", Value: fmt.Sprintf("%.2f MB", float64(m.Alloc)/1024/1024), Inline: true},
			{Name: "⚙ Goroutines", Value: fmt.Sprintf("%d / %d CPUs", runtime.NumGoroutine(), runtime.NumCPU()), Inline: true},
			{Name: "⏱ Uptime", Value: formatUptime(ctx.Client.Uptime()), Inline: true},
			{Name: "🏠 Guilds", Value: fmt.Sprintf("%d", ctx.Client.GuildCount()), Inline: true},
			{Name: "👥 Members", Value: fmt.Sprintf("%d", memberCount), Inline: true},
		},
		Timestamp: time.Now().Format(time.RFC3339),
	}
	return ctx.ReplyEmbed(embed)
}

// formatUptime formats a duration as "1d, 2h, 3m, 4s"
func formatUptime(dur time.Duration) string {
	days := int(dur.Hours() / 24)
	hours := int(dur.Hours()) % 24
	minutes := int(dur.Minutes()) % 60
	seconds := int(dur.Seconds()) % 60

	var parts []string
	if days > 0 {
		parts = append(parts, fmt.Sprintf("%dd", days))
	}
	if hours > 0 {
		parts = append(parts, fmt.Sprintf("%dh", hours))
	}
	if minutes > 0 {
		parts = append(parts, fmt.Sprintf("%dm", minutes))
	}
	if seconds > 0 || len(parts) == 0 {
		parts = append(parts, fmt.Sprintf("%ds", seconds))
	}

	return strings.Join(parts, ", ")
}
