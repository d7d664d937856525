// Package sim emulates the display-driver outputs of the instrument so the
// decoder can be exercised without hardware.
package sim

import (
	"devicecode-go/drivers/fluke8050a"
	"devicecode-go/errcode"
)

// Frame holds every line level for one backplane period. BP itself is
// driven by the Emulator.
type Frame [fluke8050a.NumLines]bool

// Cycle is one full refresh: the status frame then the four digit frames.
type Cycle [fluke8050a.NumDigits + 1]Frame

// Display is what the instrument front panel shows.
//
// Text is the reading as printed, e.g. "-12.34", "+0.005" or "1.999". A
// leading "+" lights both sign segments; a fifth digit must be the
// half-digit "1". Fewer than four digits are padded with leading zeros.
type Display struct {
	Text     string
	Relative bool
	Decibel  bool
	HV       bool
}

var digitLines = [4]fluke8050a.Line{fluke8050a.LineW, fluke8050a.LineX, fluke8050a.LineY, fluke8050a.LineZ}

func setNibble(f *Frame, n uint8) {
	for b, l := range digitLines {
		f[l] = n&(1<<b) != 0
	}
}

// Cycle encodes d as line levels.
func (d Display) Cycle() (Cycle, error) {
	var c Cycle
	s := d.Text
	var pos, neg bool
	if len(s) > 0 {
		switch s[0] {
		case '+':
			pos, neg = true, true
			s = s[1:]
		case '-':
			neg = true
			s = s[1:]
		}
	}

	digits := make([]uint8, 0, 5)
	dot := -1
	for i := 0; i < len(s); i++ {
		ch := s[i]
		switch {
		case ch == '.':
			if dot >= 0 || len(digits) == 0 {
				return c, errcode.Wrap(errcode.InvalidParams, "display", d.Text, nil)
			}
			dot = len(digits) - 1
		case ch >= '0' && ch <= '9':
			digits = append(digits, ch-'0')
		default:
			return c, errcode.Wrap(errcode.InvalidParams, "display", d.Text, nil)
		}
	}

	extra := false
	switch {
	case len(digits) == 0 || len(digits) > 5:
		return c, errcode.Wrap(errcode.InvalidParams, "display", d.Text, nil)
	case len(digits) == 5:
		// The panel has no point after the half digit.
		if digits[0] != 1 || dot == 0 {
			return c, errcode.Wrap(errcode.InvalidParams, "display", d.Text, nil)
		}
		extra = true
		digits = digits[1:]
		if dot > 0 {
			dot--
		}
	}
	for pad := fluke8050a.NumDigits - len(digits); pad > 0; pad-- {
		digits = append([]uint8{0}, digits...)
		if dot >= 0 {
			dot++
		}
	}

	st := &c[0]
	st[fluke8050a.LineST0] = true
	st[fluke8050a.LineHV] = d.HV
	st[fluke8050a.LineDP] = d.Relative
	st[fluke8050a.LineW] = extra
	st[fluke8050a.LineX] = pos
	st[fluke8050a.LineY] = d.Decibel
	st[fluke8050a.LineZ] = neg

	for p, v := range digits {
		f := &c[p+1]
		f[fluke8050a.LineST1+fluke8050a.Line(p)] = true
		setNibble(f, v)
		f[fluke8050a.LineDP] = p == dot
	}
	return c, nil
}

// Corrupt replaces the nibble shown at digit position p. Values above 9
// are what a glitching driver produces.
func (c *Cycle) Corrupt(p int, nibble uint8) error {
	if p < 0 || p >= fluke8050a.NumDigits {
		return errcode.Wrap(errcode.InvalidParams, "corrupt", "position", nil)
	}
	setNibble(&c[p+1], nibble&0x0F)
	return nil
}
