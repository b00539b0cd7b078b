package utils

import (
	"sort"
	"strings"

	"github.com/PancyStudios/ArcaneBotGo/pkg/discord"
	"github.com/bwmarrin/discordgo"
)

// helpSections orders the categories shown by /help
var helpSections = []struct {
	category string
	title    string
}{
	{"levels", "🎮 Level Commands"},
	{"mod", "🛡️ Moderation Commands"},
	{"info", "ℹ️ Info Commands"},
	{"fun", "🎉 Fun Commands"},
}

// createHelpCommand creates the /help command
func (h *Handlers) createHelpCommand() *discord.Command {
	return discord.NewCommand(
		"help",
		"List the available commands",
		"info",
		helpHandler,
	)
}

func helpHandler(ctx *discord.CommandContext) error {
	return ctx.ReplyEmbed(HelpEmbed(ctx.Client.Prefix, ctx.Client.Commands.All()))
}

// HelpEmbed lists the registered commands by category
func HelpEmbed(prefix string, commands map[string]*discord.Command) *discordgo.MessageEmbed {
	names := make([]string, 0, len(commands))
	for name := range commands {
		names = append(names, name)
	}
	sort.Strings(names)

	lines := make(map[string][]string)
	for _, name := range names {
		cmd := commands[name]
		usage := cmd.Usage(prefix, strings.ReplaceAll(name, ".", " "))
		lines[cmd.Category] = append(lines[cmd.Category], usage+" - "+cmd.Description)
	}

	embed := &discordgo.MessageEmbed{
		Title:       "🤖 Bot Help",
		Description: "Prefix: `" + prefix + "`",
		Color:       ColorBlue,
		Footer:      &discordgo.MessageEmbedFooter{Text: "Use slash commands (/) for alternative command interface"},
	}
	for _, section := range helpSections {
		if len(lines[section.category]) == 0 {
			continue
		}
		embed.Fields = append(embed.Fields, &discordgo.MessageEmbedField{
			Name:  section.title,
			Value: strings.Join(lines[section.category], "\n"),
		})
	}
	return embed
}
