package display

import "image/color"

// Segment bits: a (top) through g (middle), clockwise from the top.
const (
	segA = 1 << iota
	segB
	segC
	segD
	segE
	segF
	segG
)

var glyphs = map[byte]uint8{
	'0': segA | segB | segC | segD | segE | segF,
	'1': segB | segC,
	'2': segA | segB | segD | segE | segG,
	'3': segA | segB | segC | segD | segG,
	'4': segB | segC | segF | segG,
	'5': segA | segC | segD | segF | segG,
	'6': segA | segC | segD | segE | segF | segG,
	'7': segA | segB | segC,
	'8': segA | segB | segC | segD | segE | segF | segG,
	'9': segA | segB | segC | segD | segF | segG,
	'-': segG,
	' ': 0,
	'r': segE | segG,
	'E': segA | segD | segE | segF | segG,
	'L': segD | segE | segF,
	'd': segB | segC | segD | segE | segG,
	'b': segC | segD | segE | segF | segG,
	'H': segB | segC | segE | segF | segG,
}

// Geometry for thickness t: segments are 4t long.
func segLen(t int16) int16      { return 4 * t }
func glyphWidth(t int16) int16  { return segLen(t) + 2*t }
func glyphHeight(t int16) int16 { return 2*segLen(t) + 3*t }

// text draws s at (x, y) and returns the x just past the last glyph.
// Unknown characters advance like a blank.
func (p *Panel) text(x, y, t int16, s string, c color.RGBA) int16 {
	for i := 0; i < len(s); i++ {
		if s[i] == '.' {
			p.fill(x, y+glyphHeight(t)-t, t, t, c)
			x += 2 * t
			continue
		}
		p.glyph(x, y, t, glyphs[s[i]], c)
		x += glyphWidth(t) + t
	}
	return x
}

func (p *Panel) glyph(x, y, t int16, segs uint8, c color.RGBA) {
	l := segLen(t)
	rects := [7][4]int16{
		{x + t, y, l, t},               // a
		{x + t + l, y + t, t, l},       // b
		{x + t + l, y + 2*t + l, t, l}, // c
		{x + t, y + 2*t + 2*l, l, t},   // d
		{x, y + 2*t + l, t, l},         // e
		{x, y + t, t, l},               // f
		{x + t, y + t + l, l, t},       // g
	}
	for i, r := range rects {
		if segs&(1<<i) != 0 {
			p.fill(r[0], r[1], r[2], r[3], c)
		}
	}
}
