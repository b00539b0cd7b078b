// Package mod - /warn, /listwarns and /clearwarns commands
package mod

import (
	"fmt"
	"strings"

	"github.com/PancyStudios/ArcaneBotGo/internal/moderation"
	"github.com/PancyStudios/ArcaneBotGo/pkg/discord"
	"github.com/bwmarrin/discordgo"
)

// createWarnCommand creates the /warn command
func (h *Handlers) createWarnCommand() *discord.Command {
	return discord.NewCommand(
		"warn",
		"Warn a member",
		"mod",
		h.warnHandler,
	).WithOptions(
		discord.UserOption("user", "Member to warn", true),
		discord.StringOption("reason", "Reason for the warning", false),
	).WithUserPermissions(discordgo.PermissionModerateMembers)
}

// warnHandler handles the /warn command. A failed escalation step is shown
// next to the warn notice; the warn itself stays recorded.
func (h *Handlers) warnHandler(ctx *discord.CommandContext) error {
	user := ctx.GetUserOption("user")

	res, err := h.Engine.Warn(ctx.Context(), moderation.WarnRequest{
		GuildID: ctx.GuildID(),
		UserID:  user.ID,
		Reason:  reasonOption(ctx),
		Source:  moderation.SourceCommand,
	})
	if err != nil {
		return err
	}

	return ctx.Reply(strings.Join(res.Messages(), "\n"))
}

// createListWarnsCommand creates the /listwarns command
func (h *Handlers) createListWarnsCommand() *discord.Command {
	return discord.NewCommand(
		"listwarns",
		"Show how many warns a member has",
		"mod",
		h.listWarnsHandler,
	).WithOptions(
		discord.UserOption("user", "Member to check", true),
	).WithUserPermissions(discordgo.PermissionModerateMembers).WithAliases("warns")
}

func (h *Handlers) listWarnsHandler(ctx *discord.CommandContext) error {
	user := ctx.GetUserOption("user")

	count, err := h.Engine.ListWarns(ctx.Context(), ctx.GuildID(), user.ID)
	if err != nil {
		return err
	}
	return ctx.Reply(fmt.Sprintf("📋 <@%s> has %d warn(s).", user.ID, count))
}

// createClearWarnsCommand creates the /clearwarns command
func (h *Handlers) createClearWarnsCommand() *discord.Command {
	return discord.NewCommand(
		"clearwarns",
		"Clear all warns of a member",
		"mod",
		h.clearWarnsHandler,
	).WithOptions(
		discord.UserOption("user", "Member to clear", true),
	).WithUserPermissions(discordgo.PermissionModerateMembers)
}

func (h *Handlers) clearWarnsHandler(ctx *discord.CommandContext) error {
	user := ctx.GetUserOption("user")

	if err := h.Engine.ClearWarns(ctx.Context(), ctx.GuildID(), user.ID); err != nil {
		return err
	}
	return ctx.Reply(fmt.Sprintf("✅ Cleared all warns for <@%s>.", user.ID))
}
