package fluke8050a

import (
	"sync/atomic"

	"devicecode-go/x/mathx"
)

// Decoder reconstructs the displayed value from status and digit triggers.
//
// The On* handlers and Convert must be called from one execution context at
// a time (the instrument asserts one strobe at once and the handlers run to
// completion). Value, Relative, Status, Snapshot and Stats are safe from any
// goroutine and never block the handlers.
type Decoder struct {
	// Handler-side state.
	digits  [NumDigits]uint8
	decimal DecimalPos
	cur     Snapshot
	rel     relLatch

	word  atomic.Uint64 // packed Snapshot
	stats counters
}

type Option func(*Decoder)

// WithRelativeFilter requires a RELATIVE change to be seen on n consecutive
// status cycles before it is committed. n <= 1 disables filtering.
func WithRelativeFilter(n int) Option {
	return func(d *Decoder) {
		d.rel.need = uint8(mathx.Clamp(n, 1, 255))
	}
}

func New(opts ...Option) *Decoder {
	d := &Decoder{decimal: NoDecimal, rel: relLatch{need: 1}}
	for _, o := range opts {
		o(d)
	}
	d.word.Store(pack(d.cur))
	return d
}

// OnStatusTrigger latches one status cycle. All seven flags are replaced in
// a single publish.
func (d *Decoder) OnStatusTrigger(lv StatusLevels) {
	d.stats.status.Add(1)
	st := decodeStatus(lv)

	if d.rel.observe(d.cur.Relative, st.Has(StatusRelative), d.cur.Reading) {
		if d.cur.Relative {
			d.cur.Baseline = Reading{}
			d.cur.Relative = false
		} else {
			// The baseline was read before the flag is set.
			d.cur.Baseline = d.rel.baseline
			d.cur.Relative = true
		}
	}

	// The published REL bit follows the committed latch state.
	if d.cur.Relative {
		st |= StatusRelative
	} else {
		st &^= StatusRelative
	}
	d.cur.Status = st
	d.publish()
}

// OnDigitTrigger stores one digit. strobe is the active digit strobe 1..4;
// anything else means the scan position is not yet known and is ignored.
// Capturing the least-significant position runs Convert and returns its
// error.
func (d *Decoder) OnDigitTrigger(strobe int, nibble uint8, dp bool) error {
	pos, ok := PositionForStrobe(strobe)
	if !ok {
		d.stats.indeterminate.Add(1)
		return nil
	}
	d.stats.digits.Add(1)
	d.digits[pos] = nibble & 0x0F

	p := DecimalPos(pos)
	switch {
	case dp:
		d.decimal = p
	case d.decimal == p:
		d.decimal = NoDecimal
	}

	if pos != LSDPosition {
		return nil
	}
	_, err := d.Convert()
	return err
}

// Convert turns the captured digits into a Reading and publishes it. On
// ErrInvalidDigit the previously published Reading is kept.
func (d *Decoder) Convert() (Reading, error) {
	r, err := Convert(d.digits, d.decimal, d.cur.Status)
	if err != nil {
		d.stats.invalid.Add(1)
		return Reading{}, err
	}
	d.stats.conversions.Add(1)
	d.cur.Reading = r
	d.cur.Valid = true
	d.publish()
	return r, nil
}

func (d *Decoder) publish() {
	d.cur.Seq++
	d.word.Store(pack(d.cur))
}

// Snapshot returns the last published state.
func (d *Decoder) Snapshot() Snapshot { return unpack(d.word.Load()) }

// Value returns the last successfully converted reading.
func (d *Decoder) Value() float64 { return d.Snapshot().Value() }

// Relative returns the relative baseline, or NaN when relative mode is off.
func (d *Decoder) Relative() float64 { return d.Snapshot().RelativeValue() }

func (d *Decoder) Status() Status { return d.Snapshot().Status }

// relLatch commits RELATIVE transitions after need consecutive observations.
type relLatch struct {
	need     uint8
	run      uint8
	baseline Reading // captured on the first observation of a rising edge
}

// observe feeds one status cycle. before is the Reading valid at that
// instant. It reports whether the committed state should flip.
func (l *relLatch) observe(active, seen bool, before Reading) bool {
	if seen == active {
		l.run = 0
		return false
	}
	if l.run == 0 && seen {
		l.baseline = before
	}
	l.run++
	if l.run < l.need {
		return false
	}
	l.run = 0
	return true
}

// ---- diagnostics ----

// Stats are monotonic counters since New.
type Stats struct {
	Edges         uint32
	StatusCycles  uint32
	Digits        uint32
	Conversions   uint32
	InvalidDigits uint32
	Indeterminate uint32
}

type counters struct {
	edges, status, digits, conversions, invalid, indeterminate atomic.Uint32
}

func (d *Decoder) Stats() Stats {
	return Stats{
		Edges:         d.stats.edges.Load(),
		StatusCycles:  d.stats.status.Load(),
		Digits:        d.stats.digits.Load(),
		Conversions:   d.stats.conversions.Load(),
		InvalidDigits: d.stats.invalid.Load(),
		Indeterminate: d.stats.indeterminate.Load(),
	}
}
