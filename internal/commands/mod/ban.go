// Package mod - /ban command
package mod

import (
	"fmt"

	"github.com/PancyStudios/ArcaneBotGo/pkg/discord"
	"github.com/bwmarrin/discordgo"
)

// createBanCommand creates the /ban command
func (h *Handlers) createBanCommand() *discord.Command {
	return discord.NewCommand(
		"ban",
		"Ban a user",
		"mod",
		h.banHandler,
	).WithOptions(
		discord.UserOption("user", "User to ban", true),
		discord.IntegerOption("days", "Days of messages to delete (0-7)", false),
		discord.StringOption("reason", "Reason for the ban", false),
	).WithUserPermissions(discordgo.PermissionBanMembers)
}

// banHandler handles the /ban command
func (h *Handlers) banHandler(ctx *discord.CommandContext) error {
	user := ctx.GetUserOption("user")
	reason := reasonOption(ctx)
	days := int(ctx.GetIntOption("days"))

	if err := h.Engine.Ban(ctx.Context(), ctx.GuildID(), user.ID, reason, days); err != nil {
		return err
	}
	return ctx.Reply(fmt.Sprintf("🔨 <@%s> banned. Reason: %s", user.ID, reason))
}
