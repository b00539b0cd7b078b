package render

import (
	"bytes"
	"context"
	"image"
	"image/color"
	"image/png"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTruncateName(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"short", "short"},
		{"exactlyfifteen!", "exactlyfifteen!"},
		{"averyveryverylongname", "averyveryverylo"},
	}

	for _, tt := range tests {
		if got := TruncateName(tt.in); got != tt.want {
			t.Errorf("TruncateName(%q) = %v, want %v", tt.in, got, tt.want)
		}
	}
}

func TestProfileCard(t *testing.T) {
	avatar := image.NewRGBA(image.Rect(0, 0, 64, 64))
	for x := 0; x < 64; x++ {
		for y := 0; y < 64; y++ {
			avatar.Set(x, y, color.RGBA{R: 0xFF, A: 0xFF})
		}
	}

	data, err := ProfileCard(ProfileData{
		Username:    "someone",
		Avatar:      avatar,
		Level:       3,
		Rank:        2,
		XP:          450,
		NextLevelXP: 1600,
		Progress:    450.0 / 1600.0,
		GuildName:   "Arcane",
		JoinedAt:    time.Date(2024, 5, 1, 0, 0, 0, 0, time.UTC),
	})
	require.NoError(t, err)

	img, err := png.Decode(bytes.NewReader(data))
	require.NoError(t, err)
	assert.Equal(t, CardWidth, img.Bounds().Dx())
	assert.Equal(t, CardHeight, img.Bounds().Dy())

	// avatar centre is red
	r, g, b, _ := img.At(160, 200).RGBA()
	assert.Greater(t, r, uint32(0xF000))
	assert.Less(t, g, uint32(0x1000))
	assert.Less(t, b, uint32(0x1000))
}

func TestProfileCardWithoutAvatar(t *testing.T) {
	data, err := ProfileCard(ProfileData{Username: "x", Level: 1, Rank: 1})
	require.NoError(t, err)
	assert.NotEmpty(t, data)
}

func TestLeaderboard(t *testing.T) {
	rows := []LeaderboardRow{
		{Position: 1, Name: "first", Level: 4, XP: 900},
		{Position: 2, Name: "second", Level: 2, XP: 120},
	}

	data, err := Leaderboard("Top 2", rows)
	require.NoError(t, err)

	img, err := png.Decode(bytes.NewReader(data))
	require.NoError(t, err)
	assert.Equal(t, boardWidth, img.Bounds().Dx())
	assert.Equal(t, boardHeader+2*rowHeight+20, img.Bounds().Dy())
}

func TestAvatarFetcher(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, png.Encode(&buf, image.NewRGBA(image.Rect(0, 0, 8, 8))))

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path == "/missing.png" {
			http.NotFound(w, r)
			return
		}
		w.Header().Set("Content-Type", "image/png")
		w.Write(buf.Bytes())
	}))
	defer srv.Close()

	f := NewAvatarFetcher()
	img, err := f.Fetch(context.Background(), srv.URL+"/avatar.png")
	require.NoError(t, err)
	assert.Equal(t, 8, img.Bounds().Dx())

	_, err = f.Fetch(context.Background(), srv.URL+"/missing.png")
	assert.Error(t, err)

	_, err = f.Fetch(context.Background(), "")
	assert.Error(t, err)
}
