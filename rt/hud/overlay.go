// Package hud rasterises the debug overlay (tier, frame time, disclosure phases)
// into an RGBA image the renderer can upload or a tool can save.
package hud

import (
	"fmt"
	"image"
	"image/color"
	"image/draw"
	"time"

	"golang.org/x/image/font"
	"golang.org/x/image/font/basicfont"
	"golang.org/x/image/math/fixed"

	"github.com/gekko3d/cinescroll/rt/tier"
)

type Overlay struct {
	Face       font.Face
	Padding    int
	Foreground color.RGBA
	Background color.RGBA

	img *image.RGBA
}

func NewOverlay() *Overlay {
	return &Overlay{
		Face:       basicfont.Face7x13,
		Padding:    4,
		Foreground: color.RGBA{R: 230, G: 230, B: 230, A: 255},
		Background: color.RGBA{A: 160},
	}
}

// Image returns the last rendered overlay, nil before the first Render.
func (o *Overlay) Image() *image.RGBA { return o.img }

// Render draws lines top to bottom. The backing image is reused while its size
// does not change.
func (o *Overlay) Render(lines []string) *image.RGBA {
	metrics := o.Face.Metrics()
	lineHeight := metrics.Height.Ceil()
	ascent := metrics.Ascent.Ceil()

	width := 0
	for _, l := range lines {
		if w := font.MeasureString(o.Face, l).Ceil(); w > width {
			width = w
		}
	}
	bounds := image.Rect(0, 0, width+2*o.Padding, len(lines)*lineHeight+2*o.Padding)
	if o.img == nil || o.img.Bounds() != bounds {
		o.img = image.NewRGBA(bounds)
	}
	draw.Draw(o.img, bounds, image.NewUniform(o.Background), image.Point{}, draw.Src)

	d := &font.Drawer{
		Dst:  o.img,
		Src:  image.NewUniform(o.Foreground),
		Face: o.Face,
	}
	for i, l := range lines {
		d.Dot = fixed.P(o.Padding, o.Padding+ascent+i*lineHeight)
		d.DrawString(l)
	}
	return o.img
}

// TierLines formats a controller snapshot for the overlay.
func TierLines(s tier.Snapshot) []string {
	mode := "auto"
	if s.OverrideSet {
		mode = fmt.Sprintf("pinned %d", s.Override)
	}
	lines := []string{
		fmt.Sprintf("tier %d (%s, computed %d)", s.Current, mode, s.Computed),
		fmt.Sprintf("frame %.2fms %s", ms(s.SmoothedFrameTime), s.Condition),
		fmt.Sprintf("down %.0fms up %.0fms since %.1fs", ms(s.DownshiftTimer), ms(s.UpshiftTimer), s.SinceChange.Seconds()),
	}
	if s.HasTransitioned {
		lines = append(lines, fmt.Sprintf("last %d->%d at %.1fs", s.Last.From, s.Last.To, s.Last.At.Seconds()))
	}
	return lines
}

func ms(d time.Duration) float64 { return float64(d) / float64(time.Millisecond) }
