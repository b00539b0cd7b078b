// Package utils provides the informational commands
package utils

import (
	"github.com/PancyStudios/ArcaneBotGo/internal/moderation"
	"github.com/PancyStudios/ArcaneBotGo/internal/progression"
	"github.com/PancyStudios/ArcaneBotGo/pkg/database"
	"github.com/PancyStudios/ArcaneBotGo/pkg/discord"
	"github.com/PancyStudios/ArcaneBotGo/pkg/logger"
)

// Embed colors
const (
	ColorBlue    = 0x3498DB
	ColorGreen   = 0x2ECC71
	ColorBlurple = 0x5865F2
)

// dateLayout is how dates are shown in embeds
const dateLayout = "2006-01-02"

// Handlers holds what the informational commands need
type Handlers struct {
	Progression *progression.Engine
	Moderation  *moderation.Engine
	Store       database.Store
}

// RegisterUtilsCommands registers the informational commands
func RegisterUtilsCommands(client *discord.ExtendedClient, h *Handlers) {
	for _, cmd := range []*discord.Command{
		h.createPingCommand(),
		h.createAvatarCommand(),
		h.createUserInfoCommand(),
		h.createServerInfoCommand(),
		h.createHelpCommand(),
		h.createStatusCommand(),
		h.createStatsCommand(),
	} {
		client.CommandHandler.RegisterCommand(cmd)
	}
	logger.Info("Comandos de utilidad registrados", "Utils")
}
