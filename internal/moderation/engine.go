// Package moderation implements warn escalation, mutes, kicks, bans,
// purges and the anti-spam detector on top of the platform interface.
package moderation

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/PancyStudios/ArcaneBotGo/internal/platform"
	"github.com/PancyStudios/ArcaneBotGo/pkg/bus"
	"github.com/PancyStudios/ArcaneBotGo/pkg/database"
	apperrors "github.com/PancyStudios/ArcaneBotGo/pkg/errors"
	"github.com/PancyStudios/ArcaneBotGo/pkg/logger"
	"github.com/PancyStudios/ArcaneBotGo/pkg/metrics"
	"golang.org/x/sync/singleflight"
)

// Mute modes
const (
	ModeTimeout = "timeout"
	ModeRole    = "role"
)

// DefaultMutedRole is the name of the tagged role used in role mode
const DefaultMutedRole = "Muted"

// MutedRoleReason is the audit log reason of the lazily created role
const MutedRoleReason = "Auto-created for warn system"

// DefaultReason is used when a moderator gives none
const DefaultReason = "No reason provided"

const (
	MaxPurge   = 100
	MaxBanDays = 7
)

var (
	// ErrHierarchy is returned when the bot does not outrank the target
	ErrHierarchy = apperrors.Permission("I can't moderate that user: their highest role is not below mine.", nil)
	// ErrNotMember is returned when the target is not in the guild
	ErrNotMember = apperrors.Input("That user is not a member of this server.")
)

// Options configures the engine
type Options struct {
	MuteMode      string
	MutedRoleName string
}

// Engine is the moderation engine
type Engine struct {
	store     database.CounterStore
	platform  platform.Platform
	scheduler *Scheduler
	publisher bus.Publisher

	muteMode string
	roleName string
	roles    singleflight.Group
	now      func() time.Time
}

// NewEngine builds an Engine. publisher may be nil.
func NewEngine(store database.CounterStore, plat platform.Platform, scheduler *Scheduler, publisher bus.Publisher, opts Options) *Engine {
	if opts.MuteMode != ModeRole {
		opts.MuteMode = ModeTimeout
	}
	if opts.MutedRoleName == "" {
		opts.MutedRoleName = DefaultMutedRole
	}

	return &Engine{
		store:     store,
		platform:  plat,
		scheduler: scheduler,
		publisher: publisher,
		muteMode:  opts.MuteMode,
		roleName:  opts.MutedRoleName,
		now:       time.Now,
	}
}

func (e *Engine) publish(ev bus.Event) {
	if e.publisher != nil {
		e.publisher.Publish(ev)
	}
}

func (e *Engine) record(action, guildID, userID string, err error) {
	metrics.ModerationActions.WithLabelValues(action, metrics.Result(err)).Inc()
	if err == nil {
		e.publish(bus.Event{Type: bus.Moderation, GuildID: guildID, UserID: userID, Data: map[string]interface{}{"action": action}})
	}
}

// guard refuses to act on members the bot does not outrank
func (e *Engine) guard(ctx context.Context, guildID, userID string) error {
	ok, err := e.platform.Outranks(ctx, guildID, e.platform.BotUserID(), userID)
	if errors.Is(err, platform.ErrUnknownMember) {
		return ErrNotMember
	}
	if err != nil {
		return apperrors.Collaborator("I couldn't check the role hierarchy.", err)
	}
	if !ok {
		return ErrHierarchy
	}
	return nil
}

// platformError classifies a failed platform call for the given verb
func platformError(verb string, err error) error {
	switch {
	case errors.Is(err, platform.ErrMissingPermissions):
		return apperrors.Permission(fmt.Sprintf("I don't have permission to %s this user.", verb), err)
	case errors.Is(err, platform.ErrUnknownMember):
		return &apperrors.Error{Kind: apperrors.KindInput, Message: "That user is not a member of this server.", Err: err}
	default:
		return apperrors.Collaborator(fmt.Sprintf("Discord rejected the %s.", verb), err)
	}
}

func (e *Engine) guildName(ctx context.Context, guildID string) string {
	if g, err := e.platform.Guild(ctx, guildID); err == nil && g != nil && g.Name != "" {
		return g.Name
	}
	return "the server"
}

// notifyDirect sends a DM, ignoring users who closed their inbox
func (e *Engine) notifyDirect(ctx context.Context, userID, content string) {
	if err := e.platform.SendDirect(ctx, userID, content); err != nil && !errors.Is(err, platform.ErrCannotDM) {
		logger.WithFields(logger.Fields{"user": userID}).Debug("DM no entregado: "+err.Error(), "Moderation")
	}
}

func orDefault(reason string) string {
	if reason == "" {
		return DefaultReason
	}
	return reason
}

// ListWarns returns the warn count of a user
func (e *Engine) ListWarns(ctx context.Context, guildID, userID string) (int64, error) {
	rec, err := e.store.GetWarns(ctx, guildID, userID)
	if err != nil {
		return 0, apperrors.Persistence(fmt.Errorf("get warns: %w", err))
	}
	return database.WarnsOf(rec), nil
}

// ClearWarns resets the warn count of a user
func (e *Engine) ClearWarns(ctx context.Context, guildID, userID string) error {
	if err := e.store.ResetWarns(ctx, guildID, userID); err != nil {
		return apperrors.Persistence(fmt.Errorf("reset warns: %w", err))
	}
	return nil
}

// Kick removes a member from the guild
func (e *Engine) Kick(ctx context.Context, guildID, userID, reason string) error {
	if err := e.guard(ctx, guildID, userID); err != nil {
		return err
	}
	reason = orDefault(reason)

	e.notifyDirect(ctx, userID, fmt.Sprintf("You were kicked from %s. Reason: %s", e.guildName(ctx, guildID), reason))
	err := e.platform.Kick(ctx, guildID, userID, reason)
	e.record("kick", guildID, userID, err)
	if err != nil {
		return platformError("kick", err)
	}
	return nil
}

// ClampBanDays bounds the message deletion window
func ClampBanDays(days int) int {
	if days < 0 {
		return 0
	}
	if days > MaxBanDays {
		return MaxBanDays
	}
	return days
}

// Ban bans a user. Users that already left can still be banned.
func (e *Engine) Ban(ctx context.Context, guildID, userID, reason string, deleteDays int) error {
	member := true
	if err := e.guard(ctx, guildID, userID); err != nil {
		if !errors.Is(err, ErrNotMember) {
			return err
		}
		member = false
	}
	reason = orDefault(reason)

	if member {
		e.notifyDirect(ctx, userID, fmt.Sprintf("You were banned from %s. Reason: %s", e.guildName(ctx, guildID), reason))
	}
	err := e.platform.Ban(ctx, guildID, userID, reason, ClampBanDays(deleteDays))
	e.record("ban", guildID, userID, err)
	if err != nil {
		return platformError("ban", err)
	}
	return nil
}

// ClampPurge bounds a purge amount to 1..MaxPurge
func ClampPurge(amount int) int {
	if amount < 1 {
		return 1
	}
	if amount > MaxPurge {
		return MaxPurge
	}
	return amount
}

// Purge deletes recent messages of a channel, older than before when set,
// and returns how many went
func (e *Engine) Purge(ctx context.Context, channelID, before string, amount int) (int, error) {
	deleted, err := e.platform.DeleteRecentMessages(ctx, channelID, before, ClampPurge(amount))
	metrics.ModerationActions.WithLabelValues("purge", metrics.Result(err)).Inc()
	if err != nil {
		if errors.Is(err, platform.ErrMissingPermissions) {
			return 0, apperrors.Permission("I don't have permission to delete messages here.", err)
		}
		return 0, apperrors.Collaborator("Discord rejected the purge.", err)
	}
	return deleted, nil
}
