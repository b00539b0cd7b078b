package moderation

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/PancyStudios/ArcaneBotGo/internal/platform"
	apperrors "github.com/PancyStudios/ArcaneBotGo/pkg/errors"
	"github.com/PancyStudios/ArcaneBotGo/pkg/logger"
	"github.com/PancyStudios/ArcaneBotGo/pkg/models"
	"github.com/bwmarrin/discordgo"
)

// MuteResult describes an applied mute
type MuteResult struct {
	Mode  string
	Until time.Time
	// Kept is true when an existing longer mute was left in place
	Kept bool
}

// Mute restricts a member for d. The native timeout is used when the mode
// allows it and d fits; otherwise the muted role is applied and its removal
// scheduled. A mute never shortens one that is already active.
func (e *Engine) Mute(ctx context.Context, guildID, userID string, d time.Duration, reason string) (MuteResult, error) {
	if d <= 0 {
		return MuteResult{}, ErrInvalidDuration
	}
	if err := e.guard(ctx, guildID, userID); err != nil {
		return MuteResult{}, err
	}

	res, err := e.applyMute(ctx, guildID, userID, d, orDefault(reason))
	if err == nil {
		e.notifyDirect(ctx, userID, fmt.Sprintf("You were muted in %s for %s. Reason: %s",
			e.guildName(ctx, guildID), FormatDuration(d), orDefault(reason)))
	}
	return res, err
}

func (e *Engine) applyMute(ctx context.Context, guildID, userID string, d time.Duration, reason string) (MuteResult, error) {
	now := e.now()
	until := now.Add(d)

	member, err := e.platform.Member(ctx, guildID, userID)
	if err != nil {
		return MuteResult{}, platformError("timeout", err)
	}

	if e.muteMode == ModeTimeout && d <= platform.MaxTimeout {
		if platform.IsTimedOut(member, now) && member.CommunicationDisabledUntil.After(until) {
			return MuteResult{Mode: ModeTimeout, Until: *member.CommunicationDisabledUntil, Kept: true}, nil
		}

		err := e.platform.Timeout(ctx, guildID, userID, &until, reason)
		e.record("mute", guildID, userID, err)
		if err != nil {
			return MuteResult{}, platformError("timeout", err)
		}
		return MuteResult{Mode: ModeTimeout, Until: until}, nil
	}

	role, err := e.mutedRole(ctx, guildID)
	if err != nil {
		return MuteResult{}, err
	}

	pending, err := e.scheduler.Lookup(ctx, guildID, userID)
	if err != nil {
		return MuteResult{}, err
	}
	if job, ok := pending.Get(); ok && job.RoleID == role.ID && job.ExpiresAt.After(until) && platform.HasRole(member, role.ID) {
		return MuteResult{Mode: ModeRole, Until: job.ExpiresAt, Kept: true}, nil
	}

	err = e.platform.AddRole(ctx, guildID, userID, role.ID, reason)
	e.record("mute", guildID, userID, err)
	if err != nil {
		return MuteResult{}, platformError("mute", err)
	}

	_, err = e.scheduler.Schedule(ctx, models.MuteJob{
		GuildID:   guildID,
		UserID:    userID,
		RoleID:    role.ID,
		Reason:    reason,
		ExpiresAt: until,
	})
	if err != nil {
		return MuteResult{}, err
	}
	return MuteResult{Mode: ModeRole, Until: until}, nil
}

// mutedRole returns the muted role, creating it the first time. Concurrent
// callers for the same guild share one lookup.
func (e *Engine) mutedRole(ctx context.Context, guildID string) (*discordgo.Role, error) {
	v, err, _ := e.roles.Do(guildID, func() (interface{}, error) {
		role, err := e.platform.FindRole(ctx, guildID, e.roleName)
		if err != nil {
			return nil, platformError("mute", err)
		}
		if role != nil {
			return role, nil
		}

		role, err = e.platform.CreateRole(ctx, guildID, e.roleName, MutedRoleReason)
		if err != nil {
			if errors.Is(err, platform.ErrMissingPermissions) {
				return nil, apperrors.Permission("I don't have permission to create the Muted role.", err)
			}
			return nil, apperrors.Collaborator("Discord rejected the Muted role.", err)
		}

		if err := e.platform.DenyInChannels(ctx, guildID, role.ID, platform.MutedPermissions); err != nil {
			logger.WithFields(logger.Fields{"guild": guildID, "role": role.ID}).
				Warn("No se pudieron aplicar los permisos del rol Muted: "+err.Error(), "Moderation")
		}
		logger.WithFields(logger.Fields{"guild": guildID}).Info("Rol Muted creado", "Moderation")
		return role, nil
	})
	if err != nil {
		return nil, err
	}
	return v.(*discordgo.Role), nil
}

// Unmute clears the native timeout and the muted role. It reports false
// when the member was not muted, which is not an error.
func (e *Engine) Unmute(ctx context.Context, guildID, userID string) (bool, error) {
	member, err := e.platform.Member(ctx, guildID, userID)
	if err != nil {
		return false, platformError("unmute", err)
	}

	cleared := false
	if platform.IsTimedOut(member, e.now()) {
		if err := e.platform.Timeout(ctx, guildID, userID, nil, "Unmuted"); err != nil {
			return false, platformError("unmute", err)
		}
		cleared = true
	}

	role, err := e.platform.FindRole(ctx, guildID, e.roleName)
	if err != nil {
		return false, platformError("unmute", err)
	}
	if role != nil && platform.HasRole(member, role.ID) {
		if err := e.platform.RemoveRole(ctx, guildID, userID, role.ID, "Unmuted"); err != nil {
			return false, platformError("unmute", err)
		}
		cleared = true
	}

	if err := e.scheduler.Cancel(ctx, guildID, userID); err != nil {
		logger.WithFields(logger.Fields{"guild": guildID, "user": userID}).
			Warn("No se pudo cancelar el mute programado: "+err.Error(), "Moderation")
	}

	if cleared {
		e.record("unmute", guildID, userID, nil)
		e.notifyDirect(ctx, userID, fmt.Sprintf("You were unmuted in %s.", e.guildName(ctx, guildID)))
	}
	return cleared, nil
}
