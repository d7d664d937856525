// Package display renders the decoded reading as a seven-segment readout on
// any tinygo.org/x/drivers Displayer.
package display

import (
	"context"
	"image/color"
	"math"
	"strconv"
	"strings"
	"time"

	"devicecode-go/drivers/fluke8050a"
	"devicecode-go/x/mathx"

	"tinygo.org/x/drivers"
)

// Reader is everything the display needs from the decoder.
type Reader interface {
	Value() float64
	Relative() float64 // NaN when relative mode is off
}

// statusReader is optionally implemented to light the annunciators.
type statusReader interface {
	Status() fluke8050a.Status
}

// filler is implemented by panels with a fast rectangle fill (ili9341, st7789).
type filler interface {
	FillRectangle(x, y, width, height int16, c color.RGBA) error
}

// Frame is one composed screen.
type Frame struct {
	Main        string // reading, or reading - baseline in relative mode
	Sub         string // baseline while relative
	Relative    bool
	Decibel     bool
	HighVoltage bool
}

// Compose reads r once into a Frame.
func Compose(r Reader) Frame {
	v, base := r.Value(), r.Relative()
	f := Frame{Main: formatValue(v)}
	if !math.IsNaN(base) {
		f.Relative = true
		f.Main = formatValue(v - base)
		f.Sub = formatValue(base)
	}
	if sr, ok := r.(statusReader); ok {
		st := sr.Status()
		f.Decibel = st.Has(fluke8050a.StatusDecibel)
		f.HighVoltage = st.Has(fluke8050a.StatusHighVoltage)
	}
	return f
}

// formatValue prints at most three decimals, the instrument's resolution.
func formatValue(v float64) string {
	s := strconv.FormatFloat(v, 'f', 3, 64)
	if strings.IndexByte(s, '.') >= 0 {
		s = strings.TrimRight(s, "0")
		s = strings.TrimSuffix(s, ".")
	}
	if s == "-0" {
		s = "0"
	}
	return s
}

const margin int16 = 8

var (
	Black = color.RGBA{0, 0, 0, 255}
	White = color.RGBA{255, 255, 255, 255}
	Amber = color.RGBA{255, 176, 0, 255}
	Red   = color.RGBA{255, 32, 32, 255}
)

// Panel draws Frames onto a Displayer. It redraws only on change.
type Panel struct {
	d     drivers.Displayer
	scale int16

	FG, BG, Accent, Alarm color.RGBA

	last  Frame
	drawn bool
}

// NewPanel returns a panel with segment thickness scale, clamped to 1..32.
func NewPanel(d drivers.Displayer, scale int) *Panel {
	scale = mathx.Clamp(scale, 1, 32)
	return &Panel{d: d, scale: int16(scale), FG: White, BG: Black, Accent: Amber, Alarm: Red}
}

// Render draws f if it differs from the last frame.
func (p *Panel) Render(f Frame) error {
	if p.drawn && f == p.last {
		return nil
	}
	w, _ := p.d.Size()
	s := p.scale
	mainH := glyphHeight(s)

	// Main line.
	y := margin
	p.fill(0, y, w, mainH, p.BG)
	p.text(margin, y, s, f.Main, p.FG)
	y += mainH + 2*s

	// Sub line: annunciators then baseline, at half size.
	hs := s / 2
	if hs < 1 {
		hs = 1
	}
	subH := glyphHeight(hs)
	p.fill(0, y, w, subH, p.BG)
	x := margin
	if f.Relative {
		x = p.text(x, y, hs, "rEL", p.Accent) + 3*hs
		x = p.text(x, y, hs, f.Sub, p.FG) + 3*hs
	}
	if f.Decibel {
		x = p.text(x, y, hs, "db", p.Accent) + 3*hs
	}
	if f.HighVoltage {
		p.text(x, y, hs, "H", p.Alarm)
	}

	if err := p.d.Display(); err != nil {
		return err
	}
	p.last, p.drawn = f, true
	return nil
}

// Run renders r every interval until ctx is done.
func (p *Panel) Run(ctx context.Context, r Reader, every time.Duration) {
	t := time.NewTicker(every)
	defer t.Stop()
	for {
		if err := p.Render(Compose(r)); err != nil {
			println("[display] render failed:", err.Error())
		}
		select {
		case <-ctx.Done():
			return
		case <-t.C:
		}
	}
}

func (p *Panel) fill(x, y, w, h int16, c color.RGBA) {
	if w <= 0 || h <= 0 {
		return
	}
	if f, ok := p.d.(filler); ok {
		if f.FillRectangle(x, y, w, h, c) == nil {
			return
		}
	}
	for j := y; j < y+h; j++ {
		for i := x; i < x+w; i++ {
			p.d.SetPixel(i, j, c)
		}
	}
}
