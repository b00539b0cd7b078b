package moderation

import (
	"context"
	"strings"

	"github.com/puzpuzpuz/xsync/v3"
)

// DefaultSpamThreshold is how many identical messages count as spam
const DefaultSpamThreshold = 5

// SpamDetector keeps the last messages of every (guild, user) in memory.
// Windows are lost on restart.
type SpamDetector struct {
	engine    *Engine
	poster    Poster
	threshold int
	windows   *xsync.MapOf[string, []string]
}

// Poster sends the public spam notice
type Poster interface {
	SendMessage(ctx context.Context, channelID, content string) error
}

// NewSpamDetector creates a detector warning through engine
func NewSpamDetector(engine *Engine, poster Poster, threshold int) *SpamDetector {
	if threshold < 2 {
		threshold = DefaultSpamThreshold
	}
	return &SpamDetector{
		engine:    engine,
		poster:    poster,
		threshold: threshold,
		windows:   xsync.NewMapOf[string, []string](),
	}
}

func normalize(content string) string {
	return strings.ToLower(strings.TrimSpace(content))
}

// Observe records a message and reports whether the window is now full of
// identical messages. A tripped window is cleared.
func (d *SpamDetector) Observe(guildID, userID, content string) bool {
	body := normalize(content)
	if body == "" {
		return false
	}

	tripped := false
	d.windows.Compute(guildID+":"+userID, func(window []string, _ bool) ([]string, bool) {
		next := make([]string, 0, d.threshold)
		if len(window) >= d.threshold {
			window = window[len(window)-d.threshold+1:]
		}
		next = append(append(next, window...), body)

		if len(next) < d.threshold {
			return next, false
		}
		for _, m := range next {
			if m != body {
				return next, false
			}
		}
		tripped = true
		return nil, true
	})
	return tripped
}

// Tracked returns how many windows are held
func (d *SpamDetector) Tracked() int {
	return d.windows.Size()
}

// HandleMessage observes a message and issues a spam warn when it trips
func (d *SpamDetector) HandleMessage(ctx context.Context, guildID, channelID, userID, content string) (bool, error) {
	if !d.Observe(guildID, userID, content) {
		return false, nil
	}

	res, err := d.engine.Warn(ctx, WarnRequest{GuildID: guildID, UserID: userID, Reason: "spam", Source: SourceSpam})
	if err != nil {
		return true, err
	}
	if d.poster == nil {
		return true, nil
	}
	for _, line := range res.Messages() {
		if err := d.poster.SendMessage(ctx, channelID, line); err != nil {
			return true, err
		}
	}
	return true, nil
}
