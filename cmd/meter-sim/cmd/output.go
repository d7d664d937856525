package cmd

import (
	"fmt"
	"io"
	"math"

	"devicecode-go/drivers/fluke8050a"
	"devicecode-go/services/display"
	"devicecode-go/sim"
)

// printSnapshot writes one line per decoded state.
func printSnapshot(w io.Writer, label string, d *fluke8050a.Decoder) {
	snap := d.Snapshot()
	rel := "off"
	if v := d.Relative(); !math.IsNaN(v) {
		rel = snap.Baseline.String()
	}
	fmt.Fprintf(w, "%-10s value=%-8s relative=%-8s status=%s\n",
		label, snap.Reading.String(), rel, snap.Status)
	if verbose {
		st := d.Stats()
		fmt.Fprintf(w, "           edges=%d conversions=%d invalid=%d seq=%d\n",
			st.Edges, st.Conversions, st.InvalidDigits, snap.Seq)
	}
}

// screen renders the decoder onto an off-screen panel sized for the
// current --scale.
type screen struct {
	fb *sim.Framebuffer
	p  *display.Panel
}

func newScreen() *screen {
	s := int16(scale)
	if s < 1 {
		s = 1
	}
	fb := sim.NewFramebuffer(96*s, 36*s)
	return &screen{fb: fb, p: display.NewPanel(fb, int(s))}
}

func (s *screen) dump(w io.Writer, d *fluke8050a.Decoder) error {
	if err := s.p.Render(display.Compose(d)); err != nil {
		return err
	}
	fmt.Fprintln(w, s.fb.String())
	fmt.Fprintln(w)
	return nil
}
