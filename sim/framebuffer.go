package sim

import (
	"image/color"
	"strings"
)

// Framebuffer is an in-memory drivers.Displayer.
type Framebuffer struct {
	w, h    int16
	px      []color.RGBA
	Flushes int
}

func NewFramebuffer(w, h int16) *Framebuffer {
	return &Framebuffer{w: w, h: h, px: make([]color.RGBA, int(w)*int(h))}
}

func (f *Framebuffer) Size() (x, y int16) { return f.w, f.h }

func (f *Framebuffer) SetPixel(x, y int16, c color.RGBA) {
	if x < 0 || y < 0 || x >= f.w || y >= f.h {
		return
	}
	f.px[int(y)*int(f.w)+int(x)] = c
}

func (f *Framebuffer) Display() error {
	f.Flushes++
	return nil
}

func (f *Framebuffer) At(x, y int16) color.RGBA {
	if x < 0 || y < 0 || x >= f.w || y >= f.h {
		return color.RGBA{}
	}
	return f.px[int(y)*int(f.w)+int(x)]
}

// String dumps the buffer as ASCII: '#' for any lit pixel. Trailing blanks
// and empty rows at the bottom are dropped.
func (f *Framebuffer) String() string {
	var rows []string
	for y := int16(0); y < f.h; y++ {
		var b strings.Builder
		for x := int16(0); x < f.w; x++ {
			c := f.At(x, y)
			if c.R|c.G|c.B != 0 {
				b.WriteByte('#')
			} else {
				b.WriteByte(' ')
			}
		}
		rows = append(rows, strings.TrimRight(b.String(), " "))
	}
	for len(rows) > 0 && rows[len(rows)-1] == "" {
		rows = rows[:len(rows)-1]
	}
	return strings.Join(rows, "\n")
}
