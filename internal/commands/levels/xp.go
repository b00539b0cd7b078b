package levels

import (
	"fmt"

	"github.com/PancyStudios/ArcaneBotGo/internal/progression"
	"github.com/PancyStudios/ArcaneBotGo/pkg/discord"
)

// createXPAddCommand creates the /xp add subcommand
func (h *Handlers) createXPAddCommand() *discord.Command {
	return discord.NewCommand(
		"add",
		"Add XP to a user",
		"levels",
		h.xpAddHandler,
	).WithOptions(
		discord.UserOption("user", "User to modify", true),
		discord.IntegerOption("amount", "XP to add", true),
	).WithUserPermissions(xpAdminPermissions).WithAliases("addxp")
}

// createXPRemoveCommand creates the /xp remove subcommand
func (h *Handlers) createXPRemoveCommand() *discord.Command {
	return discord.NewCommand(
		"remove",
		"Remove XP from a user",
		"levels",
		h.xpRemoveHandler,
	).WithOptions(
		discord.UserOption("user", "User to modify", true),
		discord.IntegerOption("amount", "XP to remove", true),
	).WithUserPermissions(xpAdminPermissions).WithAliases("removexp")
}

// createXPSetCommand creates the /xp set subcommand
func (h *Handlers) createXPSetCommand() *discord.Command {
	return discord.NewCommand(
		"set",
		"Set a user's XP to a specific value",
		"levels",
		h.xpSetHandler,
	).WithOptions(
		discord.UserOption("user", "User to modify", true),
		discord.IntegerOption("amount", "New XP total", true),
	).WithUserPermissions(xpAdminPermissions).WithAliases("setxp")
}

// createXPResetCommand creates the /xp reset subcommand
func (h *Handlers) createXPResetCommand() *discord.Command {
	return discord.NewCommand(
		"reset",
		"Reset a user's XP to 0",
		"levels",
		h.xpResetHandler,
	).WithOptions(
		discord.UserOption("user", "User to reset", true),
	).WithUserPermissions(xpAdminPermissions).WithAliases("resetxp")
}

func (h *Handlers) xpAddHandler(ctx *discord.CommandContext) error {
	user := ctx.GetUserOption("user")
	amount := ctx.GetIntOption("amount")

	total, err := h.Engine.AwardXP(ctx.Context(), ctx.GuildID(), user.ID, amount)
	if err != nil {
		return err
	}
	return ctx.Reply(fmt.Sprintf("Added %d XP to <@%s>. They are now level %d.", amount, user.ID, progression.LevelForXP(total)))
}

func (h *Handlers) xpRemoveHandler(ctx *discord.CommandContext) error {
	user := ctx.GetUserOption("user")
	amount := ctx.GetIntOption("amount")

	total, err := h.Engine.RemoveXP(ctx.Context(), ctx.GuildID(), user.ID, amount)
	if err != nil {
		return err
	}
	return ctx.Reply(fmt.Sprintf("Removed %d XP from <@%s>. They are now level %d.", amount, user.ID, progression.LevelForXP(total)))
}

func (h *Handlers) xpSetHandler(ctx *discord.CommandContext) error {
	user := ctx.GetUserOption("user")
	amount := ctx.GetIntOption("amount")

	if err := h.Engine.SetXP(ctx.Context(), ctx.GuildID(), user.ID, amount); err != nil {
		return err
	}
	return ctx.Reply(fmt.Sprintf("Set <@%s>'s XP to %d. They are now level %d.", user.ID, amount, progression.LevelForXP(amount)))
}

func (h *Handlers) xpResetHandler(ctx *discord.CommandContext) error {
	user := ctx.GetUserOption("user")

	if err := h.Engine.ResetXP(ctx.Context(), ctx.GuildID(), user.ID); err != nil {
		return err
	}
	return ctx.Reply(fmt.Sprintf("Reset <@%s>'s XP. They are now level 1.", user.ID))
}
