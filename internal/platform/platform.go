// Package platform is the boundary between the engines and Discord. The
// engines only see the Platform interface; Discord implements it on top of
// a discordgo session.
package platform

import (
	"context"
	"errors"
	"time"

	"github.com/bwmarrin/discordgo"
)

// MaxTimeout is the longest native communication timeout Discord accepts
const MaxTimeout = 28 * 24 * time.Hour

// MutedPermissions are denied to the muted role in every channel
const MutedPermissions = discordgo.PermissionSendMessages |
	discordgo.PermissionSendMessagesInThreads |
	discordgo.PermissionVoiceSpeak |
	discordgo.PermissionAddReactions

var (
	// ErrMissingPermissions means Discord refused the action for lack of permission
	ErrMissingPermissions = errors.New("missing permissions")
	// ErrUnknownMember means the user is not in the guild
	ErrUnknownMember = errors.New("unknown member")
	// ErrCannotDM means the user does not accept direct messages
	ErrCannotDM = errors.New("cannot send messages to this user")
)

// Platform is everything the engines need from the chat service
type Platform interface {
	BotUserID() string

	SendMessage(ctx context.Context, channelID, content string) error
	SendEmbed(ctx context.Context, channelID string, embed *discordgo.MessageEmbed) error
	// SendDirect opens a DM channel with the user and posts content
	SendDirect(ctx context.Context, userID, content string) error

	Guild(ctx context.Context, guildID string) (*discordgo.Guild, error)
	Member(ctx context.Context, guildID, userID string) (*discordgo.Member, error)
	// Outranks reports whether actor's highest role is above target's
	Outranks(ctx context.Context, guildID, actorID, targetID string) (bool, error)

	// FindRole returns nil without error when no role has that name
	FindRole(ctx context.Context, guildID, name string) (*discordgo.Role, error)
	CreateRole(ctx context.Context, guildID, name, reason string) (*discordgo.Role, error)
	// DenyInChannels applies a deny overwrite for the role on every channel
	DenyInChannels(ctx context.Context, guildID, roleID string, deny int64) error
	AddRole(ctx context.Context, guildID, userID, roleID, reason string) error
	RemoveRole(ctx context.Context, guildID, userID, roleID, reason string) error

	// Timeout sets the native timeout; nil until clears it
	Timeout(ctx context.Context, guildID, userID string, until *time.Time, reason string) error
	Kick(ctx context.Context, guildID, userID, reason string) error
	Ban(ctx context.Context, guildID, userID, reason string, deleteDays int) error
	// DeleteRecentMessages removes up to n recent messages older than before
	// (the latest when empty), returning how many went
	DeleteRecentMessages(ctx context.Context, channelID, before string, n int) (int, error)
}

// HasRole reports whether member holds roleID
func HasRole(member *discordgo.Member, roleID string) bool {
	if member == nil {
		return false
	}
	for _, id := range member.Roles {
		if id == roleID {
			return true
		}
	}
	return false
}

// IsTimedOut reports whether the member is under an active native timeout
func IsTimedOut(member *discordgo.Member, now time.Time) bool {
	return member != nil && member.CommunicationDisabledUntil != nil && member.CommunicationDisabledUntil.After(now)
}

// HighestPosition returns the position of the member's highest role, 0 for @everyone only
func HighestPosition(roles []*discordgo.Role, member *discordgo.Member) int {
	if member == nil {
		return 0
	}
	positions := make(map[string]int, len(roles))
	for _, r := range roles {
		positions[r.ID] = r.Position
	}

	highest := 0
	for _, id := range member.Roles {
		if p, ok := positions[id]; ok && p > highest {
			highest = p
		}
	}
	return highest
}

// Outranks applies Discord's hierarchy rules: the owner outranks everyone,
// nobody outranks the owner, otherwise the highest role must be strictly above.
func Outranks(guild *discordgo.Guild, actor, target *discordgo.Member) bool {
	if guild == nil || actor == nil || target == nil || actor.User == nil || target.User == nil {
		return false
	}
	if target.User.ID == guild.OwnerID {
		return false
	}
	if actor.User.ID == guild.OwnerID {
		return true
	}
	return HighestPosition(guild.Roles, actor) > HighestPosition(guild.Roles, target)
}
