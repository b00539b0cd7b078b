package utils

import (
	"fmt"

	"github.com/PancyStudios/ArcaneBotGo/pkg/discord"
)

// createPingCommand creates the /ping command
func (h *Handlers) createPingCommand() *discord.Command {
	return discord.NewCommand(
		"ping",
		"Check bot latency",
		"info",
		pingHandler,
	)
}

// pingHandler handles the /ping command
func pingHandler(ctx *discord.CommandContext) error {
	latency := ctx.Client.Latency().Milliseconds()
	return ctx.Reply(fmt.Sprintf("🏓 Pong! %dms", latency))
}
