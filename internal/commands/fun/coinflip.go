package fun

import (
	"github.com/PancyStudios/ArcaneBotGo/pkg/discord"
)

var coinSides = []string{"Heads", "Tails"}

// createCoinflipCommand creates the /coinflip command
func createCoinflipCommand() *discord.Command {
	return discord.NewCommand(
		"coinflip",
		"Flip a coin",
		"fun",
		coinflipHandler,
	).WithAliases("flip")
}

func coinflipHandler(ctx *discord.CommandContext) error {
	return ctx.Reply(Coinflip())
}

// Coinflip returns the reply for a coin flip
func Coinflip() string {
	return "🪙 " + coinSides[pick(len(coinSides))]
}
