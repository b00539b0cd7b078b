package moderation

import (
	"context"
	"errors"
	"fmt"

	"github.com/PancyStudios/ArcaneBotGo/internal/platform"
	"github.com/PancyStudios/ArcaneBotGo/pkg/bus"
	apperrors "github.com/PancyStudios/ArcaneBotGo/pkg/errors"
	"github.com/PancyStudios/ArcaneBotGo/pkg/logger"
	"github.com/PancyStudios/ArcaneBotGo/pkg/metrics"
)

// Warn sources
const (
	SourceCommand = "command"
	SourceSpam    = "spam"
)

// WarnRequest describes a warning
type WarnRequest struct {
	GuildID string
	UserID  string
	Reason  string
	// Source is SourceCommand or SourceSpam
	Source string
}

// WarnResult is the outcome of a warning
type WarnResult struct {
	Count  int64
	Action Action
	// ActionErr is set when the escalation step failed. The warn itself
	// is already stored at that point.
	ActionErr error
	// Notice is the public message announcing the warn
	Notice string
	// Outcome announces a kick or ban that went through
	Outcome string
}

// Messages returns the public lines for the warn in posting order
func (r WarnResult) Messages() []string {
	out := []string{r.Notice}
	if r.ActionErr != nil {
		return append(out, apperrors.UserMessage(r.ActionErr))
	}
	if r.Outcome != "" {
		out = append(out, r.Outcome)
	}
	return out
}

// Warn stores a warning, notifies the user and runs the escalation step
func (e *Engine) Warn(ctx context.Context, req WarnRequest) (WarnResult, error) {
	if err := e.guard(ctx, req.GuildID, req.UserID); err != nil {
		return WarnResult{}, err
	}
	if req.Source == "" {
		req.Source = SourceCommand
	}
	reason := orDefault(req.Reason)

	count, err := e.store.AddWarn(ctx, req.GuildID, req.UserID)
	if err != nil {
		return WarnResult{}, apperrors.Persistence(fmt.Errorf("add warn: %w", err))
	}
	metrics.Warns.WithLabelValues(req.Source).Inc()

	res := WarnResult{Count: count, Action: ActionFor(count)}
	guild := e.guildName(ctx, req.GuildID)
	if req.Source == SourceSpam {
		res.Notice = fmt.Sprintf("⚠️ <@%s> auto-warned for spamming! (%d/%d)", req.UserID, count, BanThreshold)
		e.notifyDirect(ctx, req.UserID, fmt.Sprintf("⚠️ You received a warning in %s for spamming. (Warn %d)", guild, count))
	} else {
		res.Notice = fmt.Sprintf("⚠️ <@%s> has been warned. Reason: %s (Warn %d)", req.UserID, reason, count)
		e.notifyDirect(ctx, req.UserID, fmt.Sprintf("⚠️ You received a warning in %s. Reason: %s (Warn %d)", guild, reason, count))
	}

	e.publish(bus.Event{Type: bus.Warn, GuildID: req.GuildID, UserID: req.UserID, Data: map[string]interface{}{
		"count":  count,
		"source": req.Source,
		"action": res.Action.Kind.String(),
	}})

	res.ActionErr = e.escalate(ctx, req.GuildID, req.UserID, res.Action)
	if res.ActionErr != nil {
		logger.WithFields(logger.Fields{"guild": req.GuildID, "user": req.UserID, "action": res.Action.Kind.String()}).
			Warn("Fallo la accion automatica: "+res.ActionErr.Error(), "Moderation")
		return res, nil
	}

	switch res.Action.Kind {
	case ActionKick:
		res.Outcome = fmt.Sprintf("✅ <@%s> kicked due to %d warns.", req.UserID, count)
	case ActionBan:
		res.Outcome = fmt.Sprintf("⛔ <@%s> banned due to %d warns.", req.UserID, count)
	}
	return res, nil
}

func (e *Engine) escalate(ctx context.Context, guildID, userID string, action Action) error {
	switch action.Kind {
	case ActionMute:
		if _, err := e.applyMute(ctx, guildID, userID, action.Duration, action.Reason); err != nil {
			return err
		}
		e.notifyDirect(ctx, userID, action.DirectNotice)
		return nil

	case ActionKick:
		err := e.platform.Kick(ctx, guildID, userID, action.Reason)
		e.record("kick", guildID, userID, err)
		if err != nil {
			return platformError("kick", err)
		}
		return nil

	case ActionBan:
		err := e.platform.Ban(ctx, guildID, userID, action.Reason, 0)
		// already gone counts as banned
		if errors.Is(err, platform.ErrUnknownMember) {
			err = nil
		}
		e.record("ban", guildID, userID, err)
		if err != nil {
			return platformError("ban", err)
		}
		return nil
	}
	return nil
}
