package fluke8050a

// Status is the annunciator set recomputed on every status cycle.
type Status uint8

const (
	StatusExtraDigit  Status = 1 << 0 // leading "1" of the 4½-digit display
	StatusNegative    Status = 1 << 1
	StatusPositive    Status = 1 << 2
	StatusDecibel     Status = 1 << 3
	StatusRelative    Status = 1 << 4
	StatusBatteryLow  Status = 1 << 5
	StatusHighVoltage Status = 1 << 6

	statusMask Status = 0x7F
)

var statusNames = [...]string{"one", "neg", "pos", "db", "rel", "bt", "hv"}

func (s Status) Has(f Status) bool { return s&f == f }

// Names lists the set flags in bit order.
func (s Status) Names() []string {
	var out []string
	for i, n := range statusNames {
		if s&(1<<i) != 0 {
			out = append(out, n)
		}
	}
	return out
}

func (s Status) String() string {
	if s&statusMask == 0 {
		return "-"
	}
	b := make([]byte, 0, 24)
	for i, n := range statusNames {
		if s&(1<<i) == 0 {
			continue
		}
		if len(b) > 0 {
			b = append(b, '|')
		}
		b = append(b, n...)
	}
	return string(b)
}

// negative reports the displayed sign. The "+" glyph is drawn by asserting
// both sign lines, so only Negative without Positive is a minus.
func (s Status) negative() bool {
	return s.Has(StatusNegative) && !s.Has(StatusPositive)
}

// StatusLevels are the line levels sampled during the status cycle.
type StatusLevels struct {
	HV, DP     bool
	W, X, Y, Z bool
}

// decodeStatus is the status-cycle wiring: W one, X plus, Y dB, Z minus,
// DP relative, HV high voltage. There is no battery line on this board, so
// BatteryLow always reads clear.
func decodeStatus(lv StatusLevels) Status {
	var s Status
	if lv.W {
		s |= StatusExtraDigit
	}
	if lv.X {
		s |= StatusPositive
	}
	if lv.Y {
		s |= StatusDecibel
	}
	if lv.Z {
		s |= StatusNegative
	}
	if lv.DP {
		s |= StatusRelative
	}
	if lv.HV {
		s |= StatusHighVoltage
	}
	return s
}
