// Package render draws the profile card and leaderboard images.
package render

import (
	"bytes"
	"fmt"
	"image"
	"image/color"
	"image/draw"
	"image/png"
	"time"

	xdraw "golang.org/x/image/draw"
	"golang.org/x/image/font"
	"golang.org/x/image/font/basicfont"
	"golang.org/x/image/math/fixed"
)

// Card geometry
const (
	CardWidth  = 1000
	CardHeight = 400
	BarWidth   = 600
	BarHeight  = 30

	// MaxNameLength is how many characters of a name fit the card
	MaxNameLength = 15

	rowHeight   = 48
	boardWidth  = 800
	boardHeader = 90
)

var (
	colorBackground = color.RGBA{0x23, 0x27, 0x2A, 0xFF}
	colorPanel      = color.RGBA{0x2C, 0x2F, 0x33, 0xFF}
	colorAccent     = color.RGBA{0x58, 0x65, 0xF2, 0xFF}
	colorGold       = color.RGBA{0xFF, 0xD7, 0x00, 0xFF}
	colorText       = color.RGBA{0xFF, 0xFF, 0xFF, 0xFF}
	colorMuted      = color.RGBA{0xB9, 0xBB, 0xBE, 0xFF}
	colorTrack      = color.RGBA{0x48, 0x4B, 0x51, 0xFF}
)

// ProfileData is what the profile card shows
type ProfileData struct {
	Username    string
	Avatar      image.Image
	Level       int
	Rank        int
	XP          int64
	NextLevelXP int64
	Progress    float64
	GuildName   string
	JoinedAt    time.Time
}

// LeaderboardRow is one line of the leaderboard image
type LeaderboardRow struct {
	Position int
	Name     string
	Level    int
	XP       int64
	Avatar   image.Image
}

// TruncateName shortens a name to MaxNameLength characters
func TruncateName(name string) string {
	runes := []rune(name)
	if len(runes) <= MaxNameLength {
		return name
	}
	return string(runes[:MaxNameLength])
}

func fill(dst draw.Image, r image.Rectangle, c color.Color) {
	draw.Draw(dst, r, image.NewUniform(c), image.Point{}, draw.Src)
}

// drawText writes text with its top left corner at (x, y), scaled up from
// the 7x13 bitmap face
func drawText(dst draw.Image, text string, x, y, scale int, c color.Color) int {
	face := basicfont.Face7x13
	w := font.MeasureString(face, text).Ceil()
	h := face.Metrics().Height.Ceil()
	if w == 0 {
		return 0
	}

	tmp := image.NewRGBA(image.Rect(0, 0, w, h))
	d := &font.Drawer{
		Dst:  tmp,
		Src:  image.NewUniform(c),
		Face: face,
		Dot:  fixed.P(0, face.Metrics().Ascent.Ceil()),
	}
	d.DrawString(text)

	xdraw.NearestNeighbor.Scale(dst, image.Rect(x, y, x+w*scale, y+h*scale), tmp, tmp.Bounds(), xdraw.Over, nil)
	return w * scale
}

// circle is an alpha mask for round avatars
type circle struct {
	r int
}

func (c circle) ColorModel() color.Model { return color.AlphaModel }

func (c circle) Bounds() image.Rectangle { return image.Rect(0, 0, 2*c.r, 2*c.r) }

func (c circle) At(x, y int) color.Color {
	dx, dy := float64(x-c.r)+0.5, float64(y-c.r)+0.5
	if dx*dx+dy*dy <= float64(c.r*c.r) {
		return color.Alpha{A: 0xFF}
	}
	return color.Alpha{}
}

// drawAvatar draws a round avatar of the given diameter, or a placeholder
func drawAvatar(dst draw.Image, avatar image.Image, x, y, size int) {
	scaled := image.NewRGBA(image.Rect(0, 0, size, size))
	if avatar != nil {
		xdraw.CatmullRom.Scale(scaled, scaled.Bounds(), avatar, avatar.Bounds(), xdraw.Src, nil)
	} else {
		fill(scaled, scaled.Bounds(), colorAccent)
	}
	rect := image.Rect(x, y, x+size, y+size)
	draw.DrawMask(dst, rect, scaled, image.Point{}, circle{r: size / 2}, image.Point{}, draw.Over)
}

func drawBar(dst draw.Image, x, y, w, h int, progress float64) {
	if progress < 0 {
		progress = 0
	}
	if progress > 1 {
		progress = 1
	}
	fill(dst, image.Rect(x, y, x+w, y+h), colorTrack)
	fill(dst, image.Rect(x, y, x+int(float64(w)*progress), y+h), colorAccent)
}

func encode(img image.Image) ([]byte, error) {
	var buf bytes.Buffer
	if err := png.Encode(&buf, img); err != nil {
		return nil, fmt.Errorf("encode png: %w", err)
	}
	return buf.Bytes(), nil
}

// ProfileCard renders the profile card as PNG
func ProfileCard(d ProfileData) ([]byte, error) {
	img := image.NewRGBA(image.Rect(0, 0, CardWidth, CardHeight))
	fill(img, img.Bounds(), colorBackground)
	fill(img, image.Rect(20, 20, CardWidth-20, CardHeight-20), colorPanel)

	drawAvatar(img, d.Avatar, 60, 100, 200)

	drawText(img, TruncateName(d.Username), 300, 60, 4, colorText)
	drawText(img, fmt.Sprintf("Level %d", d.Level), 300, 130, 3, colorGold)
	drawText(img, fmt.Sprintf("Rank #%d", d.Rank), 600, 130, 3, colorText)
	drawText(img, fmt.Sprintf("XP %d", d.XP), 300, 185, 2, colorMuted)

	drawBar(img, 300, 230, BarWidth, BarHeight, d.Progress)
	drawText(img, fmt.Sprintf("%d/%d XP", d.XP, d.NextLevelXP), 300, 270, 2, colorText)
	pct := fmt.Sprintf("%d%%", int(d.Progress*100))
	drawText(img, pct, 300+BarWidth-len(pct)*14, 270, 2, colorText)

	if d.GuildName != "" {
		drawText(img, TruncateName(d.GuildName), 300, 320, 2, colorMuted)
	}
	if !d.JoinedAt.IsZero() {
		drawText(img, "Joined "+d.JoinedAt.Format("2006-01-02"), 600, 320, 2, colorMuted)
	}

	return encode(img)
}

// Leaderboard renders the leaderboard as PNG
func Leaderboard(title string, rows []LeaderboardRow) ([]byte, error) {
	height := boardHeader + len(rows)*rowHeight + 20
	img := image.NewRGBA(image.Rect(0, 0, boardWidth, height))
	fill(img, img.Bounds(), colorBackground)

	drawText(img, title, 30, 25, 3, colorGold)

	for i, row := range rows {
		y := boardHeader + i*rowHeight
		if i%2 == 0 {
			fill(img, image.Rect(20, y, boardWidth-20, y+rowHeight-4), colorPanel)
		}

		c := colorText
		if row.Position == 1 {
			c = colorGold
		}
		drawText(img, fmt.Sprintf("#%d", row.Position), 35, y+12, 2, c)
		drawAvatar(img, row.Avatar, 110, y+4, rowHeight-12)
		drawText(img, TruncateName(row.Name), 170, y+12, 2, colorText)
		drawText(img, fmt.Sprintf("Lv %d", row.Level), 480, y+12, 2, colorMuted)
		drawText(img, fmt.Sprintf("%d XP", row.XP), 600, y+12, 2, colorMuted)
	}

	return encode(img)
}
