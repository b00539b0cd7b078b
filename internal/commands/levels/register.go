// Package levels - leveling commands (level, profile, leaderboard, xp)
package levels

import (
	"github.com/PancyStudios/ArcaneBotGo/internal/progression"
	"github.com/PancyStudios/ArcaneBotGo/pkg/discord"
	"github.com/PancyStudios/ArcaneBotGo/pkg/logger"
	"github.com/PancyStudios/ArcaneBotGo/pkg/render"
	"github.com/bwmarrin/discordgo"
)

// ColorBlue is the level embed color
const ColorBlue = 0x3498DB

// Handlers holds what the leveling commands need
type Handlers struct {
	Engine  *progression.Engine
	Avatars *render.AvatarFetcher
}

// RegisterLevelCommands registers the leveling commands and the /xp group
func RegisterLevelCommands(client *discord.ExtendedClient, h *Handlers) {
	client.CommandHandler.RegisterCommand(h.createLevelCommand())
	client.CommandHandler.RegisterCommand(h.createProfileCommand())
	client.CommandHandler.RegisterCommand(h.createLeaderboardCommand())

	client.CommandHandler.RegisterGroup(
		"xp",
		"Manage member XP",
		h.createXPAddCommand(),
		h.createXPRemoveCommand(),
		h.createXPSetCommand(),
		h.createXPResetCommand(),
	)

	logger.Info("Comandos de niveles registrados", "Levels")
}

// xpAdminPermissions gates the /xp group
const xpAdminPermissions = discordgo.PermissionManageMessages
