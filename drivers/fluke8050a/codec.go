package fluke8050a

import (
	"strconv"

	"devicecode-go/errcode"
)

// ErrInvalidDigit is returned when a captured nibble is not a BCD digit.
const ErrInvalidDigit = errcode.InvalidDigit

// DecimalPos is the digit position carrying the decimal point, 0..3, or
// NoDecimal when none was observed.
type DecimalPos int8

const NoDecimal DecimalPos = -1

func (p DecimalPos) Valid() bool { return p >= 0 && p <= LSDPosition }

// scale is the number of fractional digits implied by p.
func (p DecimalPos) scale() uint8 {
	if !p.Valid() {
		return 0
	}
	return uint8(LSDPosition - int(p))
}

// Reading is an exact decimal value: Mantissa / 10^Scale.
type Reading struct {
	Mantissa int32
	Scale    uint8 // 0..3
}

var pow10f = [...]float64{1, 10, 100, 1000}

// Float converts r to float64. Division by an exact power of ten keeps the
// result identical to parsing the decimal literal.
func (r Reading) Float() float64 {
	if int(r.Scale) >= len(pow10f) {
		return float64(r.Mantissa)
	}
	return float64(r.Mantissa) / pow10f[r.Scale]
}

// Sub returns r - o at the finer of the two scales.
func (r Reading) Sub(o Reading) Reading {
	a, b := r, o
	for a.Scale < b.Scale {
		a.Mantissa *= 10
		a.Scale++
	}
	for b.Scale < a.Scale {
		b.Mantissa *= 10
		b.Scale++
	}
	return Reading{Mantissa: a.Mantissa - b.Mantissa, Scale: a.Scale}
}

// AppendTo appends the decimal text of r, e.g. "-12.34" or "0.005".
func (r Reading) AppendTo(b []byte) []byte {
	m := int64(r.Mantissa)
	if m < 0 {
		b = append(b, '-')
		m = -m
	}
	var tmp [12]byte
	digits := strconv.AppendInt(tmp[:0], m, 10)
	sc := int(r.Scale)
	for len(digits) <= sc {
		digits = append([]byte{'0'}, digits...)
	}
	intPart := len(digits) - sc
	b = append(b, digits[:intPart]...)
	if sc > 0 {
		b = append(b, '.')
		b = append(b, digits[intPart:]...)
	}
	return b
}

func (r Reading) String() string { return string(r.AppendTo(nil)) }

// Convert combines a captured refresh cycle into a Reading.
//
// Digits accumulate most-significant first, seeded with the extra leading
// "1" when StatusExtraDigit is set. Any digit above 9 fails the whole cycle.
func Convert(digits [NumDigits]uint8, dec DecimalPos, st Status) (Reading, error) {
	var acc int32
	if st.Has(StatusExtraDigit) {
		acc = 1
	}
	for _, d := range digits {
		if d > 9 {
			return Reading{}, ErrInvalidDigit
		}
		acc = acc*10 + int32(d)
	}
	if st.negative() {
		acc = -acc
	}
	return Reading{Mantissa: acc, Scale: dec.scale()}, nil
}
