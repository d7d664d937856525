// Package fluke8050a decodes the multiplexed display-driver output of a
// Fluke 8050A bench multimeter into a numeric reading, its annunciator
// status and an optional relative-mode baseline.
//
// The instrument scans its display one position at a time. A falling edge on
// the backplane clock (BP) marks each scan step; at that instant ST0 selects
// the status cycle and ST1..ST4 select a digit, while W/X/Y/Z carry either a
// BCD nibble or the status annunciators and DP carries the decimal point (or
// the REL annunciator during the status cycle).
package fluke8050a

// Line identifies one logical input from the instrument.
type Line uint8

const (
	LineBP  Line = iota // backplane clock; interrupt source
	LineDP              // decimal point / relative
	LineHV              // high voltage
	LineW               // BCD bit 0 / extra leading "1"
	LineX               // BCD bit 1 / "+"
	LineY               // BCD bit 2 / dB
	LineZ               // BCD bit 3 / "-"
	LineST0             // strobe 0: status cycle
	LineST1             // strobe 1
	LineST2             // strobe 2
	LineST3             // strobe 3
	LineST4             // strobe 4

	NumLines = int(LineST4) + 1
)

var lineNames = [NumLines]string{
	"bp", "dp", "hv", "w", "x", "y", "z", "st0", "st1", "st2", "st3", "st4",
}

func (l Line) String() string {
	if int(l) < NumLines {
		return lineNames[l]
	}
	return "unknown"
}

// LineByName resolves the lower-case line name used in configuration.
func LineByName(name string) (Line, bool) {
	for i, n := range lineNames {
		if n == name {
			return Line(i), true
		}
	}
	return 0, false
}

// Digit positions, most-significant first.
const (
	NumDigits = 4
	// LSDPosition is the least-significant digit; capturing it completes a
	// refresh cycle and triggers conversion.
	LSDPosition = NumDigits - 1
)

// strobePosition maps digit strobe ST1..ST4 (index 1..4) to a digit position.
//
// Hardware wiring constant. The board strobes most-significant first:
// ST1 thousands, ST2 hundreds, ST3 tens, ST4 ones. Index 0 (ST0) is the
// status cycle and never maps to a digit.
var strobePosition = [NumDigits + 1]int8{-1, 0, 1, 2, 3}

// strobeLines lists the digit strobes in strobe-index order (1..4).
var strobeLines = [NumDigits]Line{LineST1, LineST2, LineST3, LineST4}

// PositionForStrobe returns the digit position wired to strobe index 1..4.
func PositionForStrobe(strobe int) (int, bool) {
	if strobe < 1 || strobe > NumDigits {
		return 0, false
	}
	return int(strobePosition[strobe]), true
}

// Edge selects the transition an EdgeHandler is registered for.
type Edge uint8

const (
	EdgeRising Edge = iota + 1
	EdgeFalling
)

// EdgeHandler is invoked by a SignalSource from interrupt context. It must
// run to completion without blocking.
type EdgeHandler interface {
	HandleEdge()
}

// SignalSource is the upstream collaborator: level reads and edge
// registration per logical line. Pin muxing, voltage domains and drive modes
// are entirely its concern.
type SignalSource interface {
	Get(l Line) bool
	SetEdgeHandler(l Line, e Edge, h EdgeHandler) error
	ClearEdgeHandler(l Line) error
}
