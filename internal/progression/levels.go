package progression

import "math"

// LevelForXP is the canonical level formula: floor(0.1 * sqrt(xp)) + 1, or 1
// for non-positive xp. Every level shown or compared goes through it.
func LevelForXP(xp int64) int {
	if xp <= 0 {
		return 1
	}
	return int(math.Floor(0.1*math.Sqrt(float64(xp)))) + 1
}

// XPRequiredForLevel returns (level / 0.1)^2, the threshold used by progress
// bars. Computed as 100 * level^2 to stay exact.
func XPRequiredForLevel(level int) int64 {
	l := int64(level)
	return 100 * l * l
}

// NextLevelXP is the denominator of the progress bar for a level
func NextLevelXP(level int) int64 {
	return XPRequiredForLevel(level + 1)
}

// ProgressFraction returns min(1, xp / XPRequiredForLevel(level+1)), 0 when
// the denominator is zero or xp is not positive.
func ProgressFraction(xp int64, level int) float64 {
	next := NextLevelXP(level)
	if next <= 0 || xp <= 0 {
		return 0
	}
	return math.Min(1, float64(xp)/float64(next))
}

// ProgressBar renders the fraction as cells of █ and ░
func ProgressBar(fraction float64, cells int) string {
	if cells <= 0 {
		return ""
	}
	filled := int(fraction * float64(cells))
	if filled < 0 {
		filled = 0
	}
	if filled > cells {
		filled = cells
	}

	bar := make([]rune, 0, cells)
	for i := 0; i < cells; i++ {
		if i < filled {
			bar = append(bar, '█')
		} else {
			bar = append(bar, '░')
		}
	}
	return string(bar)
}
