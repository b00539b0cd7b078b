package moderation

import (
	"strconv"
	"strings"
	"time"

	apperrors "github.com/PancyStudios/ArcaneBotGo/pkg/errors"
)

// ErrInvalidDuration is returned for anything ParseDuration cannot read
var ErrInvalidDuration = apperrors.Input("Invalid duration. Use e.g. `10m`, `2h`, `1d`.")

var durationUnits = map[byte]time.Duration{
	's': time.Second,
	'm': time.Minute,
	'h': time.Hour,
	'd': 24 * time.Hour,
}

// ParseDuration reads <integer><s|m|h|d>. A bare integer is minutes.
func ParseDuration(s string) (time.Duration, error) {
	s = strings.ToLower(strings.TrimSpace(s))
	if s == "" {
		return 0, ErrInvalidDuration
	}

	unit := time.Minute
	if u, ok := durationUnits[s[len(s)-1]]; ok {
		unit = u
		s = s[:len(s)-1]
	}

	n, err := strconv.ParseInt(s, 10, 64)
	if err != nil || n <= 0 {
		return 0, ErrInvalidDuration
	}
	// keep the product inside int64
	if n > int64((1<<63-1)/unit) {
		return 0, ErrInvalidDuration
	}
	return time.Duration(n) * unit, nil
}

// FormatDuration renders d the way ParseDuration reads it, using the largest exact unit
func FormatDuration(d time.Duration) string {
	for _, u := range []struct {
		suffix string
		unit   time.Duration
	}{{"d", 24 * time.Hour}, {"h", time.Hour}, {"m", time.Minute}} {
		if d >= u.unit && d%u.unit == 0 {
			return strconv.FormatInt(int64(d/u.unit), 10) + u.suffix
		}
	}
	return strconv.FormatInt(int64(d/time.Second), 10) + "s"
}
