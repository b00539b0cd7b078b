// Package mod - /mute and /unmute commands
package mod

import (
	"fmt"

	"github.com/PancyStudios/ArcaneBotGo/internal/moderation"
	"github.com/PancyStudios/ArcaneBotGo/pkg/discord"
	"github.com/bwmarrin/discordgo"
)

// createMuteCommand creates the /mute command
func (h *Handlers) createMuteCommand() *discord.Command {
	return discord.NewCommand(
		"mute",
		"Mute a member for a while",
		"mod",
		h.muteHandler,
	).WithOptions(
		discord.UserOption("user", "Member to mute", true),
		discord.StringOption("duration", "How long, e.g. 10m, 2h, 1d", true),
		discord.StringOption("reason", "Reason for the mute", false),
	).WithUserPermissions(discordgo.PermissionModerateMembers)
}

func (h *Handlers) muteHandler(ctx *discord.CommandContext) error {
	user := ctx.GetUserOption("user")
	d, err := moderation.ParseDuration(ctx.GetStringOption("duration"))
	if err != nil {
		return err
	}
	reason := reasonOption(ctx)

	res, err := h.Engine.Mute(ctx.Context(), ctx.GuildID(), user.ID, d, reason)
	if err != nil {
		return err
	}
	if res.Kept {
		return ctx.Reply(fmt.Sprintf("🔇 <@%s> is already muted until <t:%d:f>.", user.ID, res.Until.Unix()))
	}
	return ctx.Reply(fmt.Sprintf("🔇 <@%s> muted for %s. Reason: %s", user.ID, moderation.FormatDuration(d), reason))
}

// createUnmuteCommand creates the /unmute command
func (h *Handlers) createUnmuteCommand() *discord.Command {
	return discord.NewCommand(
		"unmute",
		"Lift a member's mute",
		"mod",
		h.unmuteHandler,
	).WithOptions(
		discord.UserOption("user", "Member to unmute", true),
	).WithUserPermissions(discordgo.PermissionModerateMembers)
}

func (h *Handlers) unmuteHandler(ctx *discord.CommandContext) error {
	user := ctx.GetUserOption("user")

	cleared, err := h.Engine.Unmute(ctx.Context(), ctx.GuildID(), user.ID)
	if err != nil {
		return err
	}
	if !cleared {
		return ctx.Reply(fmt.Sprintf("<@%s> is not muted.", user.ID))
	}
	return ctx.Reply(fmt.Sprintf("🔊 <@%s> unmuted.", user.ID))
}
