package fluke8050a

import "devicecode-go/errcode"

// backplane is the EdgeHandler registered on BP. It holds the decoder and
// the source explicitly; nothing is recovered from an untyped context.
type backplane struct {
	d   *Decoder
	src SignalSource
}

func (b *backplane) HandleEdge() { b.d.Sample(b.src) }

// Attach registers the decoder on the falling edge of BP. The returned
// function removes the registration.
func (d *Decoder) Attach(src SignalSource) (detach func(), err error) {
	if src == nil {
		return nil, errcode.InvalidParams
	}
	if err := src.SetEdgeHandler(LineBP, EdgeFalling, &backplane{d: d, src: src}); err != nil {
		return nil, errcode.Wrap(errcode.Of(err), "attach", LineBP.String(), err)
	}
	return func() { _ = src.ClearEdgeHandler(LineBP) }, nil
}

// Sample reads one scan step from src and dispatches it to the status or
// digit handler. Zero or several active strobes leave all state untouched.
func (d *Decoder) Sample(src SignalSource) {
	d.stats.edges.Add(1)

	active, strobe := 0, 0
	if src.Get(LineST0) {
		active++
	}
	for i, l := range strobeLines {
		if src.Get(l) {
			active++
			strobe = i + 1
		}
	}
	if active != 1 {
		d.stats.indeterminate.Add(1)
		return
	}

	w, x, y, z := src.Get(LineW), src.Get(LineX), src.Get(LineY), src.Get(LineZ)
	if strobe == 0 {
		d.OnStatusTrigger(StatusLevels{
			HV: src.Get(LineHV),
			DP: src.Get(LineDP),
			W:  w, X: x, Y: y, Z: z,
		})
		return
	}
	_ = d.OnDigitTrigger(strobe, nibble(w, x, y, z), src.Get(LineDP))
}

func nibble(w, x, y, z bool) uint8 {
	var n uint8
	if w {
		n |= 1
	}
	if x {
		n |= 2
	}
	if y {
		n |= 4
	}
	if z {
		n |= 8
	}
	return n
}
