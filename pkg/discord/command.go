// Package discord provides command types and structures.
package discord

import (
	"strings"

	"github.com/bwmarrin/discordgo"
)

// Command is an entry of the command registry. The same Command serves the
// slash form and the prefix form; Options is the parameter schema of both.
type Command struct {
	Name            string
	Description     string
	Category        string
	Aliases         []string
	Options         []*discordgo.ApplicationCommandOption
	UserPermissions int64
	Run             CommandRunFunc
}

// CommandRunFunc is the function type for command execution
type CommandRunFunc func(ctx *CommandContext) error

// NewCommand creates a new Command with required fields
func NewCommand(name, description, category string, run CommandRunFunc) *Command {
	return &Command{
		Name:        name,
		Description: description,
		Category:    category,
		Run:         run,
	}
}

// WithOptions sets the command options
func (c *Command) WithOptions(opts ...*discordgo.ApplicationCommandOption) *Command {
	c.Options = opts
	return c
}

// WithUserPermissions sets required user permissions
func (c *Command) WithUserPermissions(perms int64) *Command {
	c.UserPermissions = perms
	return c
}

// WithAliases adds prefix-only names
func (c *Command) WithAliases(aliases ...string) *Command {
	c.Aliases = append(c.Aliases, aliases...)
	return c
}

var guildOnly = false

// ToApplicationCommand converts the command to a Discord application command
func (c *Command) ToApplicationCommand() *discordgo.ApplicationCommand {
	cmd := &discordgo.ApplicationCommand{
		Name:         c.Name,
		Description:  c.Description,
		Options:      c.Options,
		DMPermission: &guildOnly,
	}
	if c.UserPermissions != 0 {
		perms := c.UserPermissions
		cmd.DefaultMemberPermissions = &perms
	}
	return cmd
}

// Usage renders the prefix syntax, e.g. `.warn <user> [reason]`
func (c *Command) Usage(prefix, name string) string {
	var b strings.Builder
	b.WriteString("`")
	b.WriteString(prefix)
	b.WriteString(name)
	for _, opt := range c.Options {
		if opt.Required {
			b.WriteString(" <" + opt.Name + ">")
		} else {
			b.WriteString(" [" + opt.Name + "]")
		}
	}
	b.WriteString("`")
	return b.String()
}

// UserOption builds a user parameter
func UserOption(name, description string, required bool) *discordgo.ApplicationCommandOption {
	return &discordgo.ApplicationCommandOption{
		Type:        discordgo.ApplicationCommandOptionUser,
		Name:        name,
		Description: description,
		Required:    required,
	}
}

// StringOption builds a string parameter
func StringOption(name, description string, required bool) *discordgo.ApplicationCommandOption {
	return &discordgo.ApplicationCommandOption{
		Type:        discordgo.ApplicationCommandOptionString,
		Name:        name,
		Description: description,
		Required:    required,
	}
}

// IntegerOption builds an integer parameter
func IntegerOption(name, description string, required bool) *discordgo.ApplicationCommandOption {
	return &discordgo.ApplicationCommandOption{
		Type:        discordgo.ApplicationCommandOptionInteger,
		Name:        name,
		Description: description,
		Required:    required,
	}
}
