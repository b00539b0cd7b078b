// Package fun provides the entertainment commands
package fun

import (
	"math/rand/v2"

	"github.com/PancyStudios/ArcaneBotGo/pkg/discord"
	"github.com/PancyStudios/ArcaneBotGo/pkg/logger"
)

// RegisterFunCommands registers /coinflip and /8ball
func RegisterFunCommands(client *discord.ExtendedClient) {
	client.CommandHandler.RegisterCommand(createCoinflipCommand())
	client.CommandHandler.RegisterCommand(createEightBallCommand())
	logger.Info("Comandos de diversión registrados", "Fun")
}

// pick returns a random element; replaced in tests
var pick = func(n int) int { return rand.IntN(n) }
