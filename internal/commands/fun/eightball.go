package fun

import (
	"github.com/PancyStudios/ArcaneBotGo/pkg/discord"
	"github.com/bwmarrin/discordgo"
)

// ColorPurple is the 8ball embed color
const ColorPurple = 0x9B59B6

// EightBallAnswers are the classic magic 8ball answers
var EightBallAnswers = []string{
	"It is certain.", "It is decidedly so.", "Without a doubt.",
	"Yes - definitely.", "You may rely on it.", "As I see it, yes.",
	"Most likely.", "Outlook good.", "Yes.", "Signs point to yes.",
	"Reply hazy, try again.", "Ask again later.", "Better not tell you now.",
	"Cannot predict now.", "Concentrate and ask again.", "Don't count on it.",
	"My reply is no.", "My sources say no.", "Outlook not so good.", "Very doubtful.",
}

// createEightBallCommand creates the /8ball command
func createEightBallCommand() *discord.Command {
	return discord.NewCommand(
		"8ball",
		"Ask the magic 8ball a question",
		"fun",
		eightBallHandler,
	).WithOptions(
		discord.StringOption("question", "Your question", true),
	)
}

func eightBallHandler(ctx *discord.CommandContext) error {
	return ctx.ReplyEmbed(EightBall(ctx.GetStringOption("question")))
}

// EightBall answers a question
func EightBall(question string) *discordgo.MessageEmbed {
	return &discordgo.MessageEmbed{
		Title: "🎱 8Ball",
		Color: ColorPurple,
		Fields: []*discordgo.MessageEmbedField{
			{Name: "Question", Value: question},
			{Name: "Answer", Value: EightBallAnswers[pick(len(EightBallAnswers))]},
		},
	}
}
