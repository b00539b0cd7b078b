// Package mod - /kick command
package mod

import (
	"fmt"

	"github.com/PancyStudios/ArcaneBotGo/pkg/discord"
	"github.com/bwmarrin/discordgo"
)

// createKickCommand creates the /kick command
func (h *Handlers) createKickCommand() *discord.Command {
	return discord.NewCommand(
		"kick",
		"Kick a member",
		"mod",
		h.kickHandler,
	).WithOptions(
		discord.UserOption("user", "Member to kick", true),
		discord.StringOption("reason", "Reason for the kick", false),
	).WithUserPermissions(discordgo.PermissionKickMembers)
}

// kickHandler handles the /kick command
func (h *Handlers) kickHandler(ctx *discord.CommandContext) error {
	user := ctx.GetUserOption("user")
	reason := reasonOption(ctx)

	if err := h.Engine.Kick(ctx.Context(), ctx.GuildID(), user.ID, reason); err != nil {
		return err
	}
	return ctx.Reply(fmt.Sprintf("👢 <@%s> kicked. Reason: %s", user.ID, reason))
}
