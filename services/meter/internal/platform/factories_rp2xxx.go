//go:build rp2040 || rp2350

package platform

import (
	"machine"

	"devicecode-go/errcode"
	"devicecode-go/services/meter/internal/halcore"
)

type rp2PinFactory struct{}

type rp2Pin struct {
	p machine.Pin
	n int
}

func (rp2PinFactory) ByNumber(n int) (halcore.GPIOPin, bool) {
	if n < 0 || n > 29 {
		return nil, false
	}
	return &rp2Pin{p: machine.Pin(n), n: n}, true
}

func (r *rp2Pin) ConfigureInput(p halcore.Pull) error {
	var mode machine.PinMode
	switch p {
	case halcore.PullUp:
		mode = machine.PinInputPullup
	case halcore.PullDown:
		mode = machine.PinInputPulldown
	default:
		mode = machine.PinInput
	}
	r.p.Configure(machine.PinConfig{Mode: mode})
	return nil
}

func (r *rp2Pin) Get() bool   { return r.p.Get() }
func (r *rp2Pin) Number() int { return r.n }

// SetIRQ wraps handler once here so the interrupt path does not allocate.
func (r *rp2Pin) SetIRQ(edge halcore.Edge, handler func()) error {
	var ch machine.PinChange
	switch edge {
	case halcore.EdgeRising:
		ch = machine.PinRising
	case halcore.EdgeFalling:
		ch = machine.PinFalling
	case halcore.EdgeBoth:
		ch = machine.PinToggle
	default:
		return errcode.Wrap(errcode.Unsupported, "set_irq", halcore.EdgeToString(edge), nil)
	}
	return r.p.SetInterrupt(ch, func(machine.Pin) { handler() })
}

func (r *rp2Pin) ClearIRQ() error { return r.p.SetInterrupt(0, nil) }

func DefaultPinFactory() halcore.PinFactory { return rp2PinFactory{} }
