package discord

import (
	"context"

	"github.com/bwmarrin/discordgo"
)

// Invocation forms
const (
	FormSlash  = "slash"
	FormPrefix = "prefix"
)

// CommandContext provides context for command execution. Exactly one of
// Interaction and Message is set.
type CommandContext struct {
	Session     *discordgo.Session
	Interaction *discordgo.InteractionCreate
	Message     *discordgo.MessageCreate
	Client      *ExtendedClient

	ctx      context.Context
	args     map[string]Arg
	deferred bool
	replied  bool
}

// Context returns the request context
func (ctx *CommandContext) Context() context.Context {
	if ctx.ctx == nil {
		return context.Background()
	}
	return ctx.ctx
}

// Form reports how the command was invoked
func (ctx *CommandContext) Form() string {
	if ctx.Interaction != nil {
		return FormSlash
	}
	return FormPrefix
}

// GuildID returns the guild of the invocation, empty in DMs
func (ctx *CommandContext) GuildID() string {
	if ctx.Interaction != nil {
		return ctx.Interaction.GuildID
	}
	if ctx.Message != nil {
		return ctx.Message.GuildID
	}
	return ""
}

// ChannelID returns the channel of the invocation
func (ctx *CommandContext) ChannelID() string {
	if ctx.Interaction != nil {
		return ctx.Interaction.ChannelID
	}
	if ctx.Message != nil {
		return ctx.Message.ChannelID
	}
	return ""
}

// User returns the user who invoked the command
func (ctx *CommandContext) User() *discordgo.User {
	if ctx.Interaction != nil {
		if ctx.Interaction.Member != nil {
			return ctx.Interaction.Member.User
		}
		return ctx.Interaction.User
	}
	if ctx.Message != nil {
		return ctx.Message.Author
	}
	return nil
}

// Member returns the guild member who invoked the command
func (ctx *CommandContext) Member() *discordgo.Member {
	if ctx.Interaction != nil {
		return ctx.Interaction.Member
	}
	if ctx.Message != nil && ctx.Message.Member != nil {
		m := *ctx.Message.Member
		m.User = ctx.Message.Author
		m.GuildID = ctx.Message.GuildID
		return &m
	}
	return nil
}

// Guild returns the guild from the state cache
func (ctx *CommandContext) Guild() *discordgo.Guild {
	if ctx.GuildID() == "" || ctx.Session == nil || ctx.Session.State == nil {
		return nil
	}
	guild, _ := ctx.Session.State.Guild(ctx.GuildID())
	return guild
}

// Reply sends a reply to the invocation
func (ctx *CommandContext) Reply(content string) error {
	return ctx.respond(&discordgo.InteractionResponseData{Content: content})
}

// ReplyEmbed sends an embed reply
func (ctx *CommandContext) ReplyEmbed(embed *discordgo.MessageEmbed) error {
	return ctx.respond(&discordgo.InteractionResponseData{Embeds: []*discordgo.MessageEmbed{embed}})
}

// ReplyEphemeral sends a reply visible only to the user. Prefix replies
// cannot be hidden and are sent normally.
func (ctx *CommandContext) ReplyEphemeral(content string) error {
	return ctx.respond(&discordgo.InteractionResponseData{
		Content: content,
		Flags:   discordgo.MessageFlagsEphemeral,
	})
}

// ReplyEphemeralEmbed sends an ephemeral embed reply visible only to the user
func (ctx *CommandContext) ReplyEphemeralEmbed(embed *discordgo.MessageEmbed) error {
	return ctx.respond(&discordgo.InteractionResponseData{
		Embeds: []*discordgo.MessageEmbed{embed},
		Flags:  discordgo.MessageFlagsEphemeral,
	})
}

// ReplyFile sends a file, with optional text
func (ctx *CommandContext) ReplyFile(content string, file *discordgo.File) error {
	return ctx.respond(&discordgo.InteractionResponseData{
		Content: content,
		Files:   []*discordgo.File{file},
	})
}

// Defer acknowledges a slow command. Prefix invocations show typing instead.
func (ctx *CommandContext) Defer() error {
	if ctx.Interaction == nil {
		return ctx.Session.ChannelTyping(ctx.ChannelID())
	}
	ctx.deferred = true
	return ctx.Session.InteractionRespond(ctx.Interaction.Interaction, &discordgo.InteractionResponse{
		Type: discordgo.InteractionResponseDeferredChannelMessageWithSource,
	})
}

func (ctx *CommandContext) respond(data *discordgo.InteractionResponseData) error {
	if ctx.Interaction == nil {
		send := &discordgo.MessageSend{
			Content: data.Content,
			Embeds:  data.Embeds,
			Files:   data.Files,
		}
		if ctx.Message != nil {
			send.Reference = ctx.Message.Reference()
		}
		_, err := ctx.Session.ChannelMessageSendComplex(ctx.ChannelID(), send)
		return err
	}

	if ctx.deferred || ctx.replied {
		_, err := ctx.Session.FollowupMessageCreate(ctx.Interaction.Interaction, true, &discordgo.WebhookParams{
			Content: data.Content,
			Embeds:  data.Embeds,
			Files:   data.Files,
			Flags:   data.Flags,
		})
		return err
	}

	ctx.replied = true
	return ctx.Session.InteractionRespond(ctx.Interaction.Interaction, &discordgo.InteractionResponse{
		Type: discordgo.InteractionResponseChannelMessageWithSource,
		Data: data,
	})
}

// GetOption retrieves a slash option value by name
func (ctx *CommandContext) GetOption(name string) *discordgo.ApplicationCommandInteractionDataOption {
	if ctx.Interaction == nil {
		return nil
	}
	return findOption(ctx.Interaction.ApplicationCommandData().Options, name)
}

// findOption recursively finds an option by name
func findOption(options []*discordgo.ApplicationCommandInteractionDataOption, name string) *discordgo.ApplicationCommandInteractionDataOption {
	for _, opt := range options {
		if opt.Name == name {
			return opt
		}
		if len(opt.Options) > 0 {
			if found := findOption(opt.Options, name); found != nil {
				return found
			}
		}
	}
	return nil
}

// HasOption reports whether the option was given
func (ctx *CommandContext) HasOption(name string) bool {
	if ctx.Interaction != nil {
		return ctx.GetOption(name) != nil
	}
	_, ok := ctx.args[name]
	return ok
}

// GetStringOption retrieves a string option value
func (ctx *CommandContext) GetStringOption(name string) string {
	if ctx.Interaction == nil {
		return ctx.args[name].Value
	}
	opt := ctx.GetOption(name)
	if opt == nil {
		return ""
	}
	return opt.StringValue()
}

// GetIntOption retrieves an integer option value
func (ctx *CommandContext) GetIntOption(name string) int64 {
	if ctx.Interaction == nil {
		return ctx.args[name].Int
	}
	opt := ctx.GetOption(name)
	if opt == nil {
		return 0
	}
	return opt.IntValue()
}

// GetUserOption retrieves a user option value
func (ctx *CommandContext) GetUserOption(name string) *discordgo.User {
	if ctx.Interaction != nil {
		opt := ctx.GetOption(name)
		if opt == nil {
			return nil
		}
		return opt.UserValue(ctx.Session)
	}

	arg, ok := ctx.args[name]
	if !ok {
		return nil
	}
	if ctx.Message != nil {
		for _, u := range ctx.Message.Mentions {
			if u.ID == arg.Value {
				return u
			}
		}
	}
	if ctx.Session.State != nil {
		if m, err := ctx.Session.State.Member(ctx.GuildID(), arg.Value); err == nil && m.User != nil {
			return m.User
		}
	}
	if u, err := ctx.Session.User(arg.Value, discordgo.WithContext(ctx.Context())); err == nil {
		return u
	}
	return &discordgo.User{ID: arg.Value}
}

// TargetUser returns the user option or, when absent, the invoking user
func (ctx *CommandContext) TargetUser(name string) *discordgo.User {
	if u := ctx.GetUserOption(name); u != nil {
		return u
	}
	return ctx.User()
}
