package sim

import (
	"sync"

	"devicecode-go/drivers/fluke8050a"
	"devicecode-go/errcode"
)

type registration struct {
	edge fluke8050a.Edge
	h    fluke8050a.EdgeHandler
}

// Emulator is an in-memory SignalSource. Each applied Frame is followed by
// a BP pulse, so a handler registered on BP sees one edge per frame.
//
// Levels may be read from any goroutine; frames should be applied from one.
type Emulator struct {
	mu     sync.RWMutex
	levels Frame
	bp     bool
	regs   [fluke8050a.NumLines]registration
}

func NewEmulator() *Emulator { return &Emulator{} }

func (e *Emulator) Get(l fluke8050a.Line) bool {
	if int(l) >= fluke8050a.NumLines {
		return false
	}
	e.mu.RLock()
	defer e.mu.RUnlock()
	if l == fluke8050a.LineBP {
		return e.bp
	}
	return e.levels[l]
}

func (e *Emulator) SetEdgeHandler(l fluke8050a.Line, edge fluke8050a.Edge, h fluke8050a.EdgeHandler) error {
	if int(l) >= fluke8050a.NumLines || h == nil {
		return errcode.InvalidParams
	}
	if l != fluke8050a.LineBP {
		return errcode.Wrap(errcode.Unsupported, "set_edge_handler", l.String(), nil)
	}
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.regs[l].h != nil {
		return errcode.PinInUse
	}
	e.regs[l] = registration{edge: edge, h: h}
	return nil
}

func (e *Emulator) ClearEdgeHandler(l fluke8050a.Line) error {
	if int(l) >= fluke8050a.NumLines {
		return errcode.InvalidParams
	}
	e.mu.Lock()
	e.regs[l] = registration{}
	e.mu.Unlock()
	return nil
}

// Apply sets the line levels and pulses BP high then low.
func (e *Emulator) Apply(f Frame) {
	e.mu.Lock()
	e.levels = f
	e.levels[fluke8050a.LineBP] = false
	e.mu.Unlock()
	e.setBP(true)
	e.setBP(false)
}

// Run applies every frame of c, n times.
func (e *Emulator) Run(c Cycle, n int) {
	for ; n > 0; n-- {
		for _, f := range c {
			e.Apply(f)
		}
	}
}

// Show is Run for a single refresh of d.
func (e *Emulator) Show(d Display) error {
	c, err := d.Cycle()
	if err != nil {
		return err
	}
	e.Run(c, 1)
	return nil
}

// setBP runs the handler outside the lock; it reads levels back through Get.
func (e *Emulator) setBP(level bool) {
	e.mu.Lock()
	old := e.bp
	e.bp = level
	r := e.regs[fluke8050a.LineBP]
	e.mu.Unlock()

	if r.h == nil || old == level {
		return
	}
	if (level && r.edge == fluke8050a.EdgeRising) || (!level && r.edge == fluke8050a.EdgeFalling) {
		r.h.HandleEdge()
	}
}
