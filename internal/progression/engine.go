// Package progression turns message activity into XP, derives levels from
// it and ranks the members of a guild.
package progression

import (
	"context"
	"fmt"
	"time"

	"github.com/PancyStudios/ArcaneBotGo/pkg/bus"
	"github.com/PancyStudios/ArcaneBotGo/pkg/database"
	apperrors "github.com/PancyStudios/ArcaneBotGo/pkg/errors"
	"github.com/PancyStudios/ArcaneBotGo/pkg/logger"
	"github.com/PancyStudios/ArcaneBotGo/pkg/metrics"
	"github.com/hashicorp/golang-lru/v2/expirable"
)

// MaxLeaderboard is the largest leaderboard a caller may request
const MaxLeaderboard = 20

// DefaultLeaderboard is used when no limit is given
const DefaultLeaderboard = 10

var (
	// ErrNonPositiveAmount rejects XP grants of zero or less
	ErrNonPositiveAmount = apperrors.Input("Amount must be greater than 0.")
	// ErrNegativeXP rejects setting XP below zero
	ErrNegativeXP = apperrors.Input("XP cannot be negative.")
)

// Announcer tells a channel that somebody reached a new level
type Announcer interface {
	AnnounceLevelUp(ctx context.Context, guildID, channelID, userID string, level int) error
}

// Options tunes the message award policy
type Options struct {
	XPPerMessage int64
	Cooldown     time.Duration
	// CooldownCapacity bounds the tracked (guild, user) pairs
	CooldownCapacity int
}

// Engine is the progression engine
type Engine struct {
	store     database.CounterStore
	announcer Announcer
	publisher bus.Publisher

	xpPerMessage int64
	cooldown     time.Duration
	// cooldowns is volatile: a restart forgets every cooldown.
	cooldowns *expirable.LRU[string, time.Time]
	now       func() time.Time
}

// NewEngine builds an Engine. announcer and publisher may be nil.
func NewEngine(store database.CounterStore, announcer Announcer, publisher bus.Publisher, opts Options) *Engine {
	if opts.XPPerMessage <= 0 {
		opts.XPPerMessage = 10
	}
	if opts.Cooldown <= 0 {
		opts.Cooldown = 60 * time.Second
	}
	if opts.CooldownCapacity <= 0 {
		opts.CooldownCapacity = 100_000
	}

	return &Engine{
		store:        store,
		announcer:    announcer,
		publisher:    publisher,
		xpPerMessage: opts.XPPerMessage,
		cooldown:     opts.Cooldown,
		cooldowns:    expirable.NewLRU[string, time.Time](opts.CooldownCapacity, nil, opts.Cooldown),
		now:          time.Now,
	}
}

func (e *Engine) publish(ev bus.Event) {
	if e.publisher != nil {
		e.publisher.Publish(ev)
	}
}

// GetXP returns the total XP of a user, 0 when they have none
func (e *Engine) GetXP(ctx context.Context, guildID, userID string) (int64, error) {
	rec, err := e.store.GetXP(ctx, guildID, userID)
	if err != nil {
		return 0, apperrors.Persistence(fmt.Errorf("get xp: %w", err))
	}
	return database.XPOf(rec), nil
}

// AwardXP adds amount to the user's total and returns the new total
func (e *Engine) AwardXP(ctx context.Context, guildID, userID string, amount int64) (int64, error) {
	if amount <= 0 {
		return 0, ErrNonPositiveAmount
	}

	total, err := e.store.AddXP(ctx, guildID, userID, amount)
	if err != nil {
		return 0, apperrors.Persistence(fmt.Errorf("add xp: %w", err))
	}

	e.publish(bus.Event{Type: bus.XPChanged, GuildID: guildID, UserID: userID, Data: map[string]interface{}{"xp": total}})
	return total, nil
}

// RemoveXP subtracts amount, never going below zero
func (e *Engine) RemoveXP(ctx context.Context, guildID, userID string, amount int64) (int64, error) {
	if amount <= 0 {
		return 0, ErrNonPositiveAmount
	}

	total, err := e.store.SubtractXP(ctx, guildID, userID, amount)
	if err != nil {
		return 0, apperrors.Persistence(fmt.Errorf("remove xp: %w", err))
	}

	e.publish(bus.Event{Type: bus.XPChanged, GuildID: guildID, UserID: userID, Data: map[string]interface{}{"xp": total}})
	return total, nil
}

// SetXP overwrites the total XP of a user
func (e *Engine) SetXP(ctx context.Context, guildID, userID string, xp int64) error {
	if xp < 0 {
		return ErrNegativeXP
	}
	if err := e.store.SetXP(ctx, guildID, userID, xp); err != nil {
		return apperrors.Persistence(fmt.Errorf("set xp: %w", err))
	}

	e.publish(bus.Event{Type: bus.XPChanged, GuildID: guildID, UserID: userID, Data: map[string]interface{}{"xp": xp}})
	return nil
}

// ResetXP sets the user's XP back to zero
func (e *Engine) ResetXP(ctx context.Context, guildID, userID string) error {
	return e.SetXP(ctx, guildID, userID, 0)
}

// Rank returns the 1-based leaderboard position of the user. Users without
// a record rank right after the last ranked user.
func (e *Engine) Rank(ctx context.Context, guildID, userID string) (int, error) {
	entries, err := e.store.TopXP(ctx, guildID, 0)
	if err != nil {
		return 0, apperrors.Persistence(fmt.Errorf("rank: %w", err))
	}
	for i, entry := range entries {
		if entry.UserID == userID {
			return i + 1, nil
		}
	}
	return len(entries) + 1, nil
}

// RankedEntry is a leaderboard row with its derived level
type RankedEntry struct {
	Position int    `json:"position"`
	UserID   string `json:"userId"`
	XP       int64  `json:"xp"`
	Level    int    `json:"level"`
}

// ClampLimit bounds a requested leaderboard size to 1..MaxLeaderboard
func ClampLimit(limit int) int {
	if limit < 1 {
		return 1
	}
	if limit > MaxLeaderboard {
		return MaxLeaderboard
	}
	return limit
}

// TopN returns the best ranked users of a guild, limit clamped
func (e *Engine) TopN(ctx context.Context, guildID string, limit int) ([]RankedEntry, error) {
	entries, err := e.store.TopXP(ctx, guildID, ClampLimit(limit))
	if err != nil {
		return nil, apperrors.Persistence(fmt.Errorf("top xp: %w", err))
	}

	ranked := make([]RankedEntry, len(entries))
	for i, entry := range entries {
		ranked[i] = RankedEntry{
			Position: i + 1,
			UserID:   entry.UserID,
			XP:       entry.XP,
			Level:    LevelForXP(entry.XP),
		}
	}
	return ranked, nil
}

// Standing is everything the level and profile views show
type Standing struct {
	XP          int64   `json:"xp"`
	Level       int     `json:"level"`
	Rank        int     `json:"rank"`
	NextLevelXP int64   `json:"nextLevelXp"`
	Progress    float64 `json:"progress"`
}

// Standing computes the user's current standing
func (e *Engine) Standing(ctx context.Context, guildID, userID string) (Standing, error) {
	xp, err := e.GetXP(ctx, guildID, userID)
	if err != nil {
		return Standing{}, err
	}
	rank, err := e.Rank(ctx, guildID, userID)
	if err != nil {
		return Standing{}, err
	}

	level := LevelForXP(xp)
	return Standing{
		XP:          xp,
		Level:       level,
		Rank:        rank,
		NextLevelXP: NextLevelXP(level),
		Progress:    ProgressFraction(xp, level),
	}, nil
}

// Message is a qualifying guild message
type Message struct {
	GuildID   string
	ChannelID string
	UserID    string
}

// Award describes what a message earned
type Award struct {
	Awarded   bool
	Total     int64
	Level     int
	LeveledUp bool
}

func cooldownKey(guildID, userID string) string {
	return guildID + ":" + userID
}

// onCooldown marks the pair as active and reports whether it already was
func (e *Engine) onCooldown(guildID, userID string) bool {
	key := cooldownKey(guildID, userID)
	now := e.now()
	if last, ok := e.cooldowns.Get(key); ok && now.Sub(last) < e.cooldown {
		return true
	}
	e.cooldowns.Add(key, now)
	return false
}

// HandleMessage applies the message award policy: a fixed amount per
// message, at most once per cooldown window, announcing level ups.
func (e *Engine) HandleMessage(ctx context.Context, msg Message) (Award, error) {
	if e.onCooldown(msg.GuildID, msg.UserID) {
		return Award{}, nil
	}

	total, err := e.AwardXP(ctx, msg.GuildID, msg.UserID, e.xpPerMessage)
	if err != nil {
		return Award{}, err
	}
	metrics.XPAwarded.Add(float64(e.xpPerMessage))

	before := LevelForXP(total - e.xpPerMessage)
	after := LevelForXP(total)
	award := Award{Awarded: true, Total: total, Level: after, LeveledUp: after > before}
	if !award.LeveledUp {
		return award, nil
	}

	metrics.LevelUps.Inc()
	e.publish(bus.Event{Type: bus.LevelUp, GuildID: msg.GuildID, UserID: msg.UserID, Data: map[string]interface{}{"level": after, "xp": total}})

	if e.announcer != nil {
		if err := e.announcer.AnnounceLevelUp(ctx, msg.GuildID, msg.ChannelID, msg.UserID, after); err != nil {
			logger.WithFields(logger.Fields{"guild": msg.GuildID, "user": msg.UserID}).
				Warn("No se pudo anunciar la subida de nivel: "+err.Error(), "Levels")
		}
	}
	return award, nil
}
