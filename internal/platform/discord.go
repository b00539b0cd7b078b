package platform

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/bwmarrin/discordgo"
)

// Discord JSON error codes we translate
const (
	codeUnknownMember      = 10007
	codeMissingAccess      = 50001
	codeCannotMessageUser  = 50007
	codeMissingPermissions = 50013
)

// bulkDeleteMaxAge is how old a message may be for bulk deletion
const bulkDeleteMaxAge = 14 * 24 * time.Hour

// Discord implements Platform with a discordgo session
type Discord struct {
	session *discordgo.Session
}

// NewDiscord wraps a session
func NewDiscord(session *discordgo.Session) *Discord {
	return &Discord{session: session}
}

// translate maps Discord REST errors onto the package sentinels
func translate(err error) error {
	if err == nil {
		return nil
	}
	var rest *discordgo.RESTError
	if !errors.As(err, &rest) {
		return err
	}
	if rest.Message != nil {
		switch rest.Message.Code {
		case codeMissingPermissions, codeMissingAccess:
			return fmt.Errorf("%w: %v", ErrMissingPermissions, err)
		case codeUnknownMember:
			return fmt.Errorf("%w: %v", ErrUnknownMember, err)
		case codeCannotMessageUser:
			return fmt.Errorf("%w: %v", ErrCannotDM, err)
		}
	}
	if rest.Response != nil && rest.Response.StatusCode == http.StatusForbidden {
		return fmt.Errorf("%w: %v", ErrMissingPermissions, err)
	}
	return err
}

func opts(ctx context.Context, reason string) []discordgo.RequestOption {
	o := []discordgo.RequestOption{discordgo.WithContext(ctx)}
	if reason != "" {
		o = append(o, discordgo.WithAuditLogReason(reason))
	}
	return o
}

// BotUserID returns the id of the logged in bot
func (d *Discord) BotUserID() string {
	if d.session.State == nil || d.session.State.User == nil {
		return ""
	}
	return d.session.State.User.ID
}

// SendMessage posts text to a channel
func (d *Discord) SendMessage(ctx context.Context, channelID, content string) error {
	_, err := d.session.ChannelMessageSend(channelID, content, opts(ctx, "")...)
	return translate(err)
}

// SendEmbed posts an embed to a channel
func (d *Discord) SendEmbed(ctx context.Context, channelID string, embed *discordgo.MessageEmbed) error {
	_, err := d.session.ChannelMessageSendEmbed(channelID, embed, opts(ctx, "")...)
	return translate(err)
}

// SendDirect sends a direct message
func (d *Discord) SendDirect(ctx context.Context, userID, content string) error {
	channel, err := d.session.UserChannelCreate(userID, opts(ctx, "")...)
	if err != nil {
		return translate(err)
	}
	_, err = d.session.ChannelMessageSend(channel.ID, content, opts(ctx, "")...)
	return translate(err)
}

// Member returns a guild member, from the state cache when possible
func (d *Discord) Member(ctx context.Context, guildID, userID string) (*discordgo.Member, error) {
	if d.session.State != nil {
		if m, err := d.session.State.Member(guildID, userID); err == nil {
			return m, nil
		}
	}
	m, err := d.session.GuildMember(guildID, userID, opts(ctx, "")...)
	if err != nil {
		return nil, translate(err)
	}
	return m, nil
}

// Guild returns a guild with its roles, from the state cache when possible
func (d *Discord) Guild(ctx context.Context, guildID string) (*discordgo.Guild, error) {
	if d.session.State != nil {
		if g, err := d.session.State.Guild(guildID); err == nil && len(g.Roles) > 0 {
			return g, nil
		}
	}
	g, err := d.session.Guild(guildID, opts(ctx, "")...)
	return g, translate(err)
}

// Outranks compares the role hierarchy of two members
func (d *Discord) Outranks(ctx context.Context, guildID, actorID, targetID string) (bool, error) {
	guild, err := d.Guild(ctx, guildID)
	if err != nil {
		return false, err
	}
	actor, err := d.Member(ctx, guildID, actorID)
	if err != nil {
		return false, err
	}
	target, err := d.Member(ctx, guildID, targetID)
	if err != nil {
		return false, err
	}
	return Outranks(guild, actor, target), nil
}

// FindRole looks a role up by name, case-insensitively
func (d *Discord) FindRole(ctx context.Context, guildID, name string) (*discordgo.Role, error) {
	roles, err := d.session.GuildRoles(guildID, opts(ctx, "")...)
	if err != nil {
		return nil, translate(err)
	}
	for _, r := range roles {
		if strings.EqualFold(r.Name, name) {
			return r, nil
		}
	}
	return nil, nil
}

// CreateRole creates a role without any permission
func (d *Discord) CreateRole(ctx context.Context, guildID, name, reason string) (*discordgo.Role, error) {
	perms := int64(0)
	role, err := d.session.GuildRoleCreate(guildID, &discordgo.RoleParams{
		Name:        name,
		Permissions: &perms,
	}, opts(ctx, reason)...)
	return role, translate(err)
}

// DenyInChannels sets a deny overwrite for the role on every channel of the guild.
// Channels the bot cannot manage are skipped; the first other error is returned.
func (d *Discord) DenyInChannels(ctx context.Context, guildID, roleID string, deny int64) error {
	channels, err := d.session.GuildChannels(guildID, opts(ctx, "")...)
	if err != nil {
		return translate(err)
	}

	var firstErr error
	for _, ch := range channels {
		err := d.session.ChannelPermissionSet(ch.ID, roleID, discordgo.PermissionOverwriteTypeRole, 0, deny, opts(ctx, "")...)
		if err = translate(err); err != nil && !errors.Is(err, ErrMissingPermissions) && firstErr == nil {
			firstErr = err
		}
	}
	return firstErr
}

// AddRole gives a role to a member
func (d *Discord) AddRole(ctx context.Context, guildID, userID, roleID, reason string) error {
	return translate(d.session.GuildMemberRoleAdd(guildID, userID, roleID, opts(ctx, reason)...))
}

// RemoveRole takes a role from a member
func (d *Discord) RemoveRole(ctx context.Context, guildID, userID, roleID, reason string) error {
	return translate(d.session.GuildMemberRoleRemove(guildID, userID, roleID, opts(ctx, reason)...))
}

// Timeout sets or clears the native communication timeout
func (d *Discord) Timeout(ctx context.Context, guildID, userID string, until *time.Time, reason string) error {
	return translate(d.session.GuildMemberTimeout(guildID, userID, until, opts(ctx, reason)...))
}

// Kick removes a member from the guild
func (d *Discord) Kick(ctx context.Context, guildID, userID, reason string) error {
	return translate(d.session.GuildMemberDeleteWithReason(guildID, userID, reason, opts(ctx, "")...))
}

// Ban bans a user, deleting deleteDays days of their messages
func (d *Discord) Ban(ctx context.Context, guildID, userID, reason string, deleteDays int) error {
	return translate(d.session.GuildBanCreateWithReason(guildID, userID, reason, deleteDays, opts(ctx, "")...))
}

// DeleteRecentMessages deletes up to n of the latest messages of a channel
// sent before the given message, or the very latest when before is empty.
// Messages older than two weeks cannot be bulk deleted and are left alone.
func (d *Discord) DeleteRecentMessages(ctx context.Context, channelID, before string, n int) (int, error) {
	messages, err := d.session.ChannelMessages(channelID, n, before, "", "", opts(ctx, "")...)
	if err != nil {
		return 0, translate(err)
	}

	cutoff := time.Now().Add(-bulkDeleteMaxAge)
	ids := make([]string, 0, len(messages))
	for _, m := range messages {
		if created, err := discordgo.SnowflakeTimestamp(m.ID); err == nil && created.After(cutoff) {
			ids = append(ids, m.ID)
		}
	}

	switch len(ids) {
	case 0:
		return 0, nil
	case 1:
		err = d.session.ChannelMessageDelete(channelID, ids[0], opts(ctx, "")...)
	default:
		err = d.session.ChannelMessagesBulkDelete(channelID, ids, opts(ctx, "")...)
	}
	if err != nil {
		return 0, translate(err)
	}
	return len(ids), nil
}
