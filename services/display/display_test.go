package display

import (
	"context"
	"errors"
	"image/color"
	"math"
	"testing"
	"time"

	"devicecode-go/drivers/fluke8050a"
)

type fakeDisplay struct {
	w, h     int16
	px       map[[2]int16]color.RGBA
	displays int
	err      error
}

func newFakeDisplay(w, h int16) *fakeDisplay {
	return &fakeDisplay{w: w, h: h, px: map[[2]int16]color.RGBA{}}
}

func (f *fakeDisplay) Size() (int16, int16) { return f.w, f.h }

func (f *fakeDisplay) SetPixel(x, y int16, c color.RGBA) {
	if x < 0 || y < 0 || x >= f.w || y >= f.h {
		return
	}
	f.px[[2]int16{x, y}] = c
}

func (f *fakeDisplay) Display() error {
	f.displays++
	return f.err
}

func (f *fakeDisplay) count(c color.RGBA) int {
	n := 0
	for _, v := range f.px {
		if v == c {
			n++
		}
	}
	return n
}

// filledDisplay adds the FillRectangle fast path.
type filledDisplay struct {
	*fakeDisplay
	fills int
}

func (f *filledDisplay) FillRectangle(x, y, w, h int16, c color.RGBA) error {
	f.fills++
	for j := y; j < y+h; j++ {
		for i := x; i < x+w; i++ {
			f.SetPixel(i, j, c)
		}
	}
	return nil
}

type stubReader struct {
	v, rel float64
	st     fluke8050a.Status
}

func (s stubReader) Value() float64            { return s.v }
func (s stubReader) Relative() float64         { return s.rel }
func (s stubReader) Status() fluke8050a.Status { return s.st }

type plainReader struct{ v float64 }

func (p plainReader) Value() float64    { return p.v }
func (p plainReader) Relative() float64 { return math.NaN() }

func TestFormatValue(t *testing.T) {
	cases := []struct {
		in   float64
		want string
	}{
		{12.3, "12.3"},
		{-19.87, "-19.87"},
		{0.005, "0.005"},
		{1999, "1999"},
		{0, "0"},
		{7.2 - 5.0, "2.2"},
		{-0.0001, "0"},
		{math.Copysign(0, -1), "0"},
	}
	for _, c := range cases {
		if got := formatValue(c.in); got != c.want {
			t.Errorf("formatValue(%v) = %q, want %q", c.in, got, c.want)
		}
	}
}

func TestCompose(t *testing.T) {
	f := Compose(plainReader{v: 12.3})
	if f.Main != "12.3" || f.Relative || f.Sub != "" {
		t.Fatalf("plain frame: %+v", f)
	}

	f = Compose(stubReader{v: 7.2, rel: 5, st: fluke8050a.StatusRelative | fluke8050a.StatusHighVoltage})
	want := Frame{Main: "2.2", Sub: "5", Relative: true, HighVoltage: true}
	if f != want {
		t.Fatalf("relative frame = %+v, want %+v", f, want)
	}

	f = Compose(stubReader{v: -3, rel: math.NaN(), st: fluke8050a.StatusDecibel})
	if !f.Decibel || f.Relative || f.Main != "-3" {
		t.Fatalf("db frame: %+v", f)
	}
}

func TestComposeFromDecoder(t *testing.T) {
	d := fluke8050a.New()
	d.OnStatusTrigger(fluke8050a.StatusLevels{})
	for i, v := range []uint8{0, 1, 2, 3} {
		if err := d.OnDigitTrigger(i+1, v, i == 2); err != nil {
			t.Fatal(err)
		}
	}
	if f := Compose(d); f.Main != "12.3" {
		t.Fatalf("frame from decoder: %+v", f)
	}
}

func TestRenderSkipsUnchanged(t *testing.T) {
	d := newFakeDisplay(160, 80)
	p := NewPanel(d, 2)

	f := Frame{Main: "12.3"}
	if err := p.Render(f); err != nil {
		t.Fatal(err)
	}
	if err := p.Render(f); err != nil {
		t.Fatal(err)
	}
	if d.displays != 1 {
		t.Fatalf("displays = %d, want 1", d.displays)
	}
	lit := d.count(White)
	if lit == 0 {
		t.Fatal("no segments drawn")
	}

	if err := p.Render(Frame{Main: "18.8"}); err != nil {
		t.Fatal(err)
	}
	if d.displays != 2 || d.count(White) <= lit {
		t.Fatalf("redraw: displays=%d lit=%d before=%d", d.displays, d.count(White), lit)
	}
}

func TestRenderAnnunciators(t *testing.T) {
	d := newFakeDisplay(200, 80)
	p := NewPanel(d, 2)
	if err := p.Render(Frame{Main: "0"}); err != nil {
		t.Fatal(err)
	}
	if d.count(Amber) != 0 || d.count(Red) != 0 {
		t.Fatal("annunciators lit without status")
	}
	if err := p.Render(Frame{Main: "2.2", Sub: "5", Relative: true, HighVoltage: true}); err != nil {
		t.Fatal(err)
	}
	if d.count(Amber) == 0 {
		t.Fatal("rel annunciator not drawn")
	}
	if d.count(Red) == 0 {
		t.Fatal("hv annunciator not drawn")
	}

	// Leaving relative mode blanks the second line.
	if err := p.Render(Frame{Main: "7.2"}); err != nil {
		t.Fatal(err)
	}
	if d.count(Amber) != 0 || d.count(Red) != 0 {
		t.Fatal("annunciators not cleared")
	}
}

func TestRenderUsesFillRectangle(t *testing.T) {
	d := &filledDisplay{fakeDisplay: newFakeDisplay(160, 80)}
	p := NewPanel(d, 1)
	if err := p.Render(Frame{Main: "8"}); err != nil {
		t.Fatal(err)
	}
	// Two line clears plus seven segments.
	if d.fills != 9 {
		t.Fatalf("fills = %d, want 9", d.fills)
	}
}

func TestRenderError(t *testing.T) {
	d := newFakeDisplay(64, 32)
	d.err = errors.New("spi")
	p := NewPanel(d, 1)
	if err := p.Render(Frame{Main: "1"}); err == nil {
		t.Fatal("expected error")
	}
	d.err = nil
	// A failed frame is retried.
	if err := p.Render(Frame{Main: "1"}); err != nil || d.displays != 2 {
		t.Fatalf("retry: err=%v displays=%d", err, d.displays)
	}
}

func TestRunStopsOnCancel(t *testing.T) {
	d := newFakeDisplay(64, 32)
	p := NewPanel(d, 1)
	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() {
		p.Run(ctx, plainReader{v: 1}, time.Millisecond)
		close(done)
	}()
	time.Sleep(10 * time.Millisecond)
	cancel()
	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("Run did not return")
	}
}
