package progression

import (
	"testing"
	"unicode/utf8"
)

func TestLevelForXP(t *testing.T) {
	tests := []struct {
		xp   int64
		want int
	}{
		{-50, 1},
		{0, 1},
		{10, 1},
		{99, 1},
		{100, 2},
		{399, 2},
		{400, 3},
		{2500, 6},
		{10000, 11},
	}

	for _, tt := range tests {
		if got := LevelForXP(tt.xp); got != tt.want {
			t.Errorf("LevelForXP(%d) = %v, want %v", tt.xp, got, tt.want)
		}
	}
}

func TestLevelForXPIsMonotonic(t *testing.T) {
	prev := LevelForXP(0)
	for xp := int64(1); xp <= 200000; xp += 7 {
		level := LevelForXP(xp)
		if level < prev {
			t.Fatalf("LevelForXP(%d) = %d dropped below %d", xp, level, prev)
		}
		prev = level
	}
}

func TestXPRequiredForLevel(t *testing.T) {
	tests := []struct {
		level int
		want  int64
	}{
		{0, 0},
		{1, 100},
		{2, 400},
		{10, 10000},
	}

	for _, tt := range tests {
		if got := XPRequiredForLevel(tt.level); got != tt.want {
			t.Errorf("XPRequiredForLevel(%d) = %v, want %v", tt.level, got, tt.want)
		}
	}
}

func TestProgressFraction(t *testing.T) {
	tests := []struct {
		name  string
		xp    int64
		level int
		want  float64
	}{
		{"empty", 0, 1, 0},
		{"quarter", 100, 1, 0.25},
		{"clamped", 5000, 1, 1},
		{"zero denominator", 50, -1, 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := ProgressFraction(tt.xp, tt.level); got != tt.want {
				t.Errorf("ProgressFraction(%d, %d) = %v, want %v", tt.xp, tt.level, got, tt.want)
			}
		})
	}
}

func TestProgressBar(t *testing.T) {
	bar := ProgressBar(0.25, 20)

	if utf8.RuneCountInString(bar) != 20 {
		t.Fatalf("bar has %d cells, want 20", utf8.RuneCountInString(bar))
	}
	if bar != "█████░░░░░░░░░░░░░░░" {
		t.Errorf("ProgressBar(0.25, 20) = %q", bar)
	}
	if ProgressBar(2, 4) != "████" {
		t.Errorf("ProgressBar should clamp above 1, got %q", ProgressBar(2, 4))
	}
}
