package utils

import (
	"fmt"

	"github.com/PancyStudios/ArcaneBotGo/pkg/discord"
)

// createStatusCommand creates the /status command
func (h *Handlers) createStatusCommand() *discord.Command {
	return discord.NewCommand(
		"status",
		"Show the bot status",
		"info",
		h.statusHandler,
	)
}

// statusHandler handles the /status command
func (h *Handlers) statusHandler(ctx *discord.CommandContext) error {
	dbStatus := "🔴 Not configured"
	if h.Store != nil {
		state, ok := h.Store.Status()
		if ok {
			dbStatus = "🟢 " + state
		} else {
			dbStatus = "🔴 " + state
		}
	}

	return ctx.Reply(fmt.Sprintf(
		"📊 **Bot Status**\n"+
			"• Bot: 🟢 Online\n"+
			"• Database: %s\n"+
			"• Servers: %d\n"+
			"• Latency: %dms",
		dbStatus,
		ctx.Client.GuildCount(),
		ctx.Client.Latency().Milliseconds(),
	))
}
