// Package mod - /purge command
package mod

import (
	"fmt"

	"github.com/PancyStudios/ArcaneBotGo/internal/moderation"
	"github.com/PancyStudios/ArcaneBotGo/pkg/discord"
	"github.com/PancyStudios/ArcaneBotGo/pkg/logger"
	"github.com/bwmarrin/discordgo"
)

// createPurgeCommand creates the /purge command
func (h *Handlers) createPurgeCommand() *discord.Command {
	return discord.NewCommand(
		"purge",
		"Delete recent messages in this channel",
		"mod",
		h.purgeHandler,
	).WithOptions(
		discord.IntegerOption("amount", "How many messages (1-100)", true),
	).WithUserPermissions(discordgo.PermissionManageMessages).WithAliases("clear")
}

// purgeHandler handles the /purge command. The prefix form removes the
// requested amount before the invoking message, then the invocation itself.
func (h *Handlers) purgeHandler(ctx *discord.CommandContext) error {
	amount := moderation.ClampPurge(int(ctx.GetIntOption("amount")))

	before := ""
	if ctx.Form() == discord.FormPrefix {
		before = ctx.Message.ID
	}

	deleted, err := h.Engine.Purge(ctx.Context(), ctx.ChannelID(), before, amount)
	if err != nil {
		return err
	}
	if ctx.Form() == discord.FormPrefix {
		if err := ctx.Session.ChannelMessageDelete(ctx.ChannelID(), ctx.Message.ID); err != nil {
			logger.Warn("No se pudo borrar el mensaje del comando purge: "+err.Error(), "Mod")
		}
		_, err := ctx.Session.ChannelMessageSend(ctx.ChannelID(), fmt.Sprintf("🧹 Deleted %d message(s).", deleted))
		return err
	}
	return ctx.ReplyEphemeral(fmt.Sprintf("🧹 Deleted %d message(s).", deleted))
}
