// Package mod provides the moderation commands. Each command is in its own file.
package mod

import (
	"github.com/PancyStudios/ArcaneBotGo/internal/moderation"
	"github.com/PancyStudios/ArcaneBotGo/pkg/discord"
	"github.com/PancyStudios/ArcaneBotGo/pkg/logger"
)

// Handlers holds what the moderation commands need
type Handlers struct {
	Engine *moderation.Engine
}

// RegisterModCommands registers all moderation commands
func RegisterModCommands(client *discord.ExtendedClient, h *Handlers) {
	for _, cmd := range []*discord.Command{
		h.createWarnCommand(),
		h.createListWarnsCommand(),
		h.createClearWarnsCommand(),
		h.createMuteCommand(),
		h.createUnmuteCommand(),
		h.createKickCommand(),
		h.createBanCommand(),
		h.createPurgeCommand(),
	} {
		client.CommandHandler.RegisterCommand(cmd)
	}
	logger.Info("Comandos de moderación registrados", "Mod")
}

// reasonOption returns the reason given, or the default one
func reasonOption(ctx *discord.CommandContext) string {
	if reason := ctx.GetStringOption("reason"); reason != "" {
		return reason
	}
	return moderation.DefaultReason
}
