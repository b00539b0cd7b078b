// Package discord provides the command handler for registering and dispatching commands.
package discord

import (
	"context"
	"strings"

	apperrors "github.com/PancyStudios/ArcaneBotGo/pkg/errors"
	"github.com/PancyStudios/ArcaneBotGo/pkg/logger"
	"github.com/PancyStudios/ArcaneBotGo/pkg/metrics"
	"github.com/bwmarrin/discordgo"
)

// CommandHandler manages command registration
type CommandHandler struct {
	client        *ExtendedClient
	slashCommands []*discordgo.ApplicationCommand
}

// NewCommandHandler creates a new CommandHandler
func NewCommandHandler(client *ExtendedClient) *CommandHandler {
	return &CommandHandler{
		client:        client,
		slashCommands: make([]*discordgo.ApplicationCommand, 0),
	}
}

// RegisterCommand adds a top level command to the registry
func (ch *CommandHandler) RegisterCommand(cmd *Command) {
	ch.client.Commands.Set(cmd.Name, cmd)
	ch.slashCommands = append(ch.slashCommands, cmd.ToApplicationCommand())
	logger.Debug("Comando registrado: "+cmd.Name, "CommandHandler")
}

// RegisterGroup adds a slash command with subcommands. Each subcommand is
// reachable as "group.sub" and through its prefix aliases.
func (ch *CommandHandler) RegisterGroup(name, description string, subcommands ...*Command) {
	ch.slashCommands = append(ch.slashCommands, ch.BuildCommandGroup(name, description, subcommands...))
	logger.Debug("Grupo registrado: "+name, "CommandHandler")
}

// BuildCommandGroup creates a command group with subcommands
func (ch *CommandHandler) BuildCommandGroup(name, description string, subcommands ...*Command) *discordgo.ApplicationCommand {
	options := make([]*discordgo.ApplicationCommandOption, 0, len(subcommands))
	var perms int64

	for _, cmd := range subcommands {
		fullName := name + "." + cmd.Name
		ch.client.Commands.Set(fullName, cmd)
		perms |= cmd.UserPermissions

		options = append(options, &discordgo.ApplicationCommandOption{
			Type:        discordgo.ApplicationCommandOptionSubCommand,
			Name:        cmd.Name,
			Description: cmd.Description,
			Options:     cmd.Options,
		})
	}

	group := &discordgo.ApplicationCommand{
		Name:         name,
		Description:  description,
		Options:      options,
		DMPermission: &guildOnly,
	}
	if perms != 0 {
		group.DefaultMemberPermissions = &perms
	}
	return group
}

// SlashCommands returns the application commands built so far
func (ch *CommandHandler) SlashCommands() []*discordgo.ApplicationCommand {
	return ch.slashCommands
}

// RegisterCommands pushes the slash commands to Discord. Outside production
// they go to DEV_GUILD_ID, where updates are instant.
func (ch *CommandHandler) RegisterCommands() {
	cfg := ch.client.GetConfig()
	guildID := ""
	if cfg != nil && !cfg.IsProd() {
		guildID = cfg.DevGuildID
	}

	scope := "globales"
	if guildID != "" {
		scope = "del servidor " + guildID
	}
	logger.Info("🔄 Registrando comandos "+scope+"...", "CommandHandler")

	appID := ch.client.Session.State.User.ID
	if _, err := ch.SyncCommands(appID, guildID); err != nil {
		logger.Error("Error registrando comandos: "+err.Error(), "CommandHandler")
		return
	}
	logger.Success("✅ Comandos registrados.", "CommandHandler")
}

// SyncCommands overwrites the registered commands with the current set
func (ch *CommandHandler) SyncCommands(appID, guildID string) ([]*discordgo.ApplicationCommand, error) {
	return ch.client.Session.ApplicationCommandBulkOverwrite(appID, guildID, ch.slashCommands)
}

// UnregisterCommands removes every registered command of the scope
func (ch *CommandHandler) UnregisterCommands(appID, guildID string) (int, error) {
	commands, err := ch.client.Session.ApplicationCommands(appID, guildID)
	if err != nil {
		return 0, err
	}

	removed := 0
	for _, cmd := range commands {
		if err := ch.client.Session.ApplicationCommandDelete(appID, guildID, cmd.ID); err != nil {
			logger.Error("Error eliminando comando "+cmd.Name+": "+err.Error(), "CommandHandler")
			continue
		}
		removed++
	}

	logger.Success("Comandos eliminados.", "CommandHandler")
	return removed, nil
}

// interactionName builds "name", "name.sub" or "name.group.sub"
func interactionName(data discordgo.ApplicationCommandInteractionData) string {
	name := data.Name
	if len(data.Options) == 0 {
		return name
	}

	opt := data.Options[0]
	switch opt.Type {
	case discordgo.ApplicationCommandOptionSubCommandGroup:
		if len(opt.Options) > 0 {
			return name + "." + opt.Name + "." + opt.Options[0].Name
		}
	case discordgo.ApplicationCommandOptionSubCommand:
		return name + "." + opt.Name
	}
	return name
}

// handleInteraction dispatches slash commands
func (c *ExtendedClient) handleInteraction(s *discordgo.Session, i *discordgo.InteractionCreate) {
	if i.Type != discordgo.InteractionApplicationCommand {
		return
	}

	name := interactionName(i.ApplicationCommandData())
	cmd, ok := c.Commands.Get(name)
	if !ok {
		logger.Warn("Command not found: "+name, "Client")
		return
	}

	c.dispatch(&CommandContext{
		Session:     s,
		Interaction: i,
		Client:      c,
		ctx:         context.Background(),
	}, cmd, name)
}

// resolvePrefix finds the command named by the first words of a prefix
// invocation. "xp add" resolves to the "xp.add" subcommand.
func (c *ExtendedClient) resolvePrefix(body string) (*Command, string, string, bool) {
	word, rest := nextToken(body)
	if word == "" {
		return nil, "", "", false
	}

	if cmd, name, ok := c.Commands.Resolve(word); ok {
		return cmd, name, rest, true
	}

	sub, after := nextToken(rest)
	if sub != "" {
		if cmd, ok := c.Commands.Get(strings.ToLower(word) + "." + strings.ToLower(sub)); ok {
			return cmd, strings.ToLower(word) + "." + strings.ToLower(sub), after, true
		}
	}
	return nil, "", "", false
}

// handleMessage dispatches prefix commands
func (c *ExtendedClient) handleMessage(s *discordgo.Session, m *discordgo.MessageCreate) {
	if m.Author == nil || m.Author.Bot || !strings.HasPrefix(m.Content, c.Prefix) {
		return
	}

	cmd, name, rest, ok := c.resolvePrefix(m.Content[len(c.Prefix):])
	if !ok {
		return
	}

	ctx := &CommandContext{
		Session: s,
		Message: m,
		Client:  c,
		ctx:     context.Background(),
	}

	args, err := ParseArgs(cmd.Options, rest)
	if err != nil {
		metrics.CommandErrors.WithLabelValues(name, apperrors.KindOf(err).String()).Inc()
		ctx.Reply(apperrors.UserMessage(err) + "\nUsage: " + cmd.Usage(c.Prefix, strings.ReplaceAll(name, ".", " ")))
		return
	}
	ctx.args = args

	c.dispatch(ctx, cmd, name)
}

// dispatch runs a command behind the guild and permission checks.
// Failures are classified and reported to the user; panics are recovered.
func (c *ExtendedClient) dispatch(ctx *CommandContext, cmd *Command, name string) {
	defer apperrors.RecoverMiddleware()()

	metrics.Commands.WithLabelValues(name, ctx.Form()).Inc()

	if err := c.PermissionMiddleware(ctx, cmd); err != nil {
		return
	}

	err := cmd.Run(ctx)
	if err == nil {
		return
	}

	kind := apperrors.KindOf(err)
	metrics.CommandErrors.WithLabelValues(name, kind.String()).Inc()

	fields := logger.Fields{"command": name, "guild": ctx.GuildID(), "form": ctx.Form()}
	switch kind {
	case apperrors.KindInternal, apperrors.KindPersistence:
		logger.WithFields(fields).Error("Error ejecutando comando: "+err.Error(), "Client")
		apperrors.Track(err)
	default:
		logger.WithFields(fields).Debug("Comando rechazado: "+err.Error(), "Client")
	}

	if replyErr := ctx.ReplyEphemeral(apperrors.UserMessage(err)); replyErr != nil {
		logger.WithFields(fields).Warn("No se pudo responder el error: "+replyErr.Error(), "Client")
	}
}
