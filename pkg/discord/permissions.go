package discord

import (
	"errors"
	"fmt"
	"strings"

	"github.com/PancyStudios/ArcaneBotGo/pkg/logger"
	"github.com/bwmarrin/discordgo"
)

var (
	// ErrGuildOnly is returned for commands used outside a guild
	ErrGuildOnly = errors.New("command used outside a guild")
	// ErrMissingUserPermissions is returned when the invoker lacks permissions
	ErrMissingUserPermissions = errors.New("user lacks permissions")
)

var permissionNames = []struct {
	perm int64
	name string
}{
	{discordgo.PermissionAdministrator, "Administrator"},
	{discordgo.PermissionManageGuild, "Manage Server"},
	{discordgo.PermissionManageRoles, "Manage Roles"},
	{discordgo.PermissionBanMembers, "Ban Members"},
	{discordgo.PermissionKickMembers, "Kick Members"},
	{discordgo.PermissionModerateMembers, "Moderate Members"},
	{discordgo.PermissionManageMessages, "Manage Messages"},
}

// PermissionName names the permissions in a bitset, e.g. "Kick Members"
func PermissionName(perms int64) string {
	var names []string
	for _, p := range permissionNames {
		if perms&p.perm == p.perm {
			names = append(names, p.name)
		}
	}
	if len(names) == 0 {
		return fmt.Sprintf("0x%x", perms)
	}
	return strings.Join(names, ", ")
}

// HasPermissions reports whether have grants every bit of need
func HasPermissions(have, need int64) bool {
	if have&discordgo.PermissionAdministrator != 0 {
		return true
	}
	return have&need == need
}

// memberPermissions returns the invoker's permissions in the channel
func (ctx *CommandContext) memberPermissions() (int64, error) {
	if ctx.Interaction != nil && ctx.Interaction.Member != nil {
		return ctx.Interaction.Member.Permissions, nil
	}
	user := ctx.User()
	if user == nil {
		return 0, ErrMissingUserPermissions
	}
	return ctx.Session.State.UserChannelPermissions(user.ID, ctx.ChannelID())
}

// PermissionMiddleware refuses DM invocations and invokers without the
// command's permissions. The refusal is sent before returning.
func (c *ExtendedClient) PermissionMiddleware(ctx *CommandContext, cmd *Command) error {
	if ctx.GuildID() == "" {
		ctx.ReplyEphemeral("❌ This command can only be used in a server.")
		return ErrGuildOnly
	}
	if cmd.UserPermissions == 0 {
		return nil
	}

	have, err := ctx.memberPermissions()
	if err == nil && HasPermissions(have, cmd.UserPermissions) {
		return nil
	}

	user := ctx.User()
	if user != nil {
		logger.Debug(fmt.Sprintf("Usuario %s sin permisos para %s", user.ID, cmd.Name), "PermissionMiddleware")
	}
	ctx.ReplyEphemeral(fmt.Sprintf("❌ You need the %s permission to use this command.", PermissionName(cmd.UserPermissions)))
	return ErrMissingUserPermissions
}
