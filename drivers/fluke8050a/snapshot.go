package fluke8050a

import "math"

// Snapshot is the reader-side view of the decoder. It is published as a
// single 64-bit word so readers never see a half-applied update.
type Snapshot struct {
	Reading  Reading // last successful conversion
	Valid    bool    // at least one conversion has succeeded
	Baseline Reading // relative baseline; meaningful only while Relative
	Relative bool
	Status   Status
	Seq      uint16 // bumped on every publish; wraps
}

// Value is the last reading as float64 (0 before the first conversion).
func (s Snapshot) Value() float64 { return s.Reading.Float() }

// RelativeValue is the baseline, or NaN when relative mode is inactive.
func (s Snapshot) RelativeValue() float64 {
	if !s.Relative {
		return math.NaN()
	}
	return s.Baseline.Float()
}

// Delta is Reading minus Baseline while relative mode is active.
func (s Snapshot) Delta() (Reading, bool) {
	if !s.Relative {
		return Reading{}, false
	}
	return s.Reading.Sub(s.Baseline), true
}

// Word layout (LSB first):
//
//	 0..15  reading mantissa (int16; |m| <= 19999)
//	16..17  reading scale
//	18      reading valid
//	20..35  baseline mantissa
//	36..37  baseline scale
//	38      relative active
//	40..46  status
//	48..63  sequence
const (
	shReading  = 0
	shRScale   = 16
	shValid    = 18
	shBaseline = 20
	shBScale   = 36
	shRelative = 38
	shStatus   = 40
	shSeq      = 48
)

func pack(s Snapshot) uint64 {
	w := uint64(uint16(int16(s.Reading.Mantissa))) << shReading
	w |= uint64(s.Reading.Scale&0x3) << shRScale
	w |= uint64(uint16(int16(s.Baseline.Mantissa))) << shBaseline
	w |= uint64(s.Baseline.Scale&0x3) << shBScale
	if s.Valid {
		w |= 1 << shValid
	}
	if s.Relative {
		w |= 1 << shRelative
	}
	w |= uint64(s.Status&statusMask) << shStatus
	w |= uint64(s.Seq) << shSeq
	return w
}

func unpack(w uint64) Snapshot {
	return Snapshot{
		Reading: Reading{
			Mantissa: int32(int16(uint16(w >> shReading))),
			Scale:    uint8(w>>shRScale) & 0x3,
		},
		Valid: w&(1<<shValid) != 0,
		Baseline: Reading{
			Mantissa: int32(int16(uint16(w >> shBaseline))),
			Scale:    uint8(w>>shBScale) & 0x3,
		},
		Relative: w&(1<<shRelative) != 0,
		Status:   Status(w>>shStatus) & statusMask,
		Seq:      uint16(w >> shSeq),
	}
}
