// Package pinsrc adapts GPIO pins to the decoder's SignalSource.
package pinsrc

import (
	"sync/atomic"

	"devicecode-go/drivers/fluke8050a"
	"devicecode-go/errcode"
	"devicecode-go/services/meter/internal/halcore"
	"devicecode-go/types"
)

// Source reads instrument lines from GPIO pins and forwards BP interrupts
// straight into the registered EdgeHandler. The decoder runs to completion
// in the ISR, so nothing is queued.
type Source struct {
	pins [fluke8050a.NumLines]halcore.GPIOPin
	irqs atomic.Uint32
}

// Numbers returns the GPIO number per line for w.
func Numbers(w types.Wiring) [fluke8050a.NumLines]int {
	var n [fluke8050a.NumLines]int
	n[fluke8050a.LineBP] = w.BP
	n[fluke8050a.LineDP] = w.DP
	n[fluke8050a.LineHV] = w.HV
	n[fluke8050a.LineW] = w.W
	n[fluke8050a.LineX] = w.X
	n[fluke8050a.LineY] = w.Y
	n[fluke8050a.LineZ] = w.Z
	for i, st := range w.ST {
		n[int(fluke8050a.LineST0)+i] = st
	}
	return n
}

// New claims and configures one input per line.
func New(f halcore.PinFactory, w types.Wiring) (*Source, error) {
	s := &Source{}
	pull := halcore.ParsePull(w.Pull)
	seen := make(map[int]fluke8050a.Line, fluke8050a.NumLines)
	for i, n := range Numbers(w) {
		l := fluke8050a.Line(i)
		if prev, dup := seen[n]; dup {
			return nil, errcode.Wrap(errcode.PinInUse, "claim", l.String()+" shares a pin with "+prev.String(), nil)
		}
		seen[n] = l
		p, ok := f.ByNumber(n)
		if !ok {
			return nil, errcode.Wrap(errcode.UnknownPin, "claim", l.String(), nil)
		}
		if err := p.ConfigureInput(pull); err != nil {
			return nil, errcode.Wrap(errcode.Of(err), "configure", l.String(), err)
		}
		s.pins[i] = p
	}
	return s, nil
}

func (s *Source) Get(l fluke8050a.Line) bool {
	if int(l) >= fluke8050a.NumLines {
		return false
	}
	return s.pins[l].Get()
}

func (s *Source) SetEdgeHandler(l fluke8050a.Line, e fluke8050a.Edge, h fluke8050a.EdgeHandler) error {
	irq, err := s.irqPin(l)
	if err != nil {
		return err
	}
	edge := halcore.EdgeFalling
	if e == fluke8050a.EdgeRising {
		edge = halcore.EdgeRising
	}
	return irq.SetIRQ(edge, func() {
		s.irqs.Add(1)
		h.HandleEdge()
	})
}

func (s *Source) ClearEdgeHandler(l fluke8050a.Line) error {
	irq, err := s.irqPin(l)
	if err != nil {
		return err
	}
	return irq.ClearIRQ()
}

// IRQs counts interrupts delivered to handlers.
func (s *Source) IRQs() uint32 { return s.irqs.Load() }

func (s *Source) irqPin(l fluke8050a.Line) (halcore.IRQPin, error) {
	if int(l) >= fluke8050a.NumLines {
		return nil, errcode.InvalidParams
	}
	irq, ok := s.pins[l].(halcore.IRQPin)
	if !ok {
		return nil, errcode.Wrap(errcode.Unsupported, "irq", l.String(), nil)
	}
	return irq, nil
}
