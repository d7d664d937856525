package sim

import (
	"math"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"devicecode-go/drivers/fluke8050a"
	"devicecode-go/errcode"
	"devicecode-go/services/display"
)

func attached(t *testing.T, opts ...fluke8050a.Option) (*Emulator, *fluke8050a.Decoder) {
	t.Helper()
	em := NewEmulator()
	d := fluke8050a.New(opts...)
	detach, err := d.Attach(em)
	require.NoError(t, err)
	t.Cleanup(detach)
	return em, d
}

func TestDisplayCycle(t *testing.T) {
	assert := assert.New(t)

	c, err := Display{Text: "12.3"}.Cycle()
	require.NoError(t, err)

	assert.True(c[0][fluke8050a.LineST0])
	for _, l := range []fluke8050a.Line{fluke8050a.LineW, fluke8050a.LineX, fluke8050a.LineY, fluke8050a.LineZ, fluke8050a.LineDP} {
		assert.False(c[0][l], l.String())
	}

	// Padded to 0,1,2,3 with the point after position 2.
	want := []uint8{0, 1, 2, 3}
	for p, v := range want {
		f := c[p+1]
		assert.True(f[fluke8050a.LineST1+fluke8050a.Line(p)])
		var n uint8
		for b, l := range digitLines {
			if f[l] {
				n |= 1 << b
			}
		}
		assert.Equal(v, n, "position %d", p)
		assert.Equal(p == 2, f[fluke8050a.LineDP], "dp at position %d", p)
	}
}

func TestDisplayCycleSigns(t *testing.T) {
	plus, err := Display{Text: "+0.005"}.Cycle()
	require.NoError(t, err)
	assert.True(t, plus[0][fluke8050a.LineX])
	assert.True(t, plus[0][fluke8050a.LineZ])

	minus, err := Display{Text: "-1.5", HV: true, Decibel: true, Relative: true}.Cycle()
	require.NoError(t, err)
	assert.False(t, minus[0][fluke8050a.LineX])
	assert.True(t, minus[0][fluke8050a.LineZ])
	assert.True(t, minus[0][fluke8050a.LineHV])
	assert.True(t, minus[0][fluke8050a.LineY])
	assert.True(t, minus[0][fluke8050a.LineDP])
}

func TestDisplayCycleRejects(t *testing.T) {
	for _, s := range []string{"", "-", "22345", "1.9999", "1..2", "12a", ".5", "123456"} {
		_, err := Display{Text: s}.Cycle()
		assert.Equal(t, errcode.InvalidParams, errcode.Of(err), "text %q", s)
	}
}

func TestEmulatorDecodes(t *testing.T) {
	em, d := attached(t)

	cases := []struct {
		text string
		want float64
		str  string
	}{
		{"12.3", 12.3, "12.3"},
		{"-19.87", -19.87, "-19.87"},
		{"+0.005", 0.005, "0.005"},
		{"19999", 19999, "19999"},
		{"-1.000", -1, "-1.000"},
		{"0", 0, "0"},
	}
	for _, c := range cases {
		require.NoError(t, em.Show(Display{Text: c.text}))
		snap := d.Snapshot()
		assert.Equal(t, c.want, snap.Value(), c.text)
		assert.Equal(t, c.str, snap.Reading.String(), c.text)
		assert.True(t, snap.Valid)
	}
	assert.False(t, d.Status().Has(fluke8050a.StatusNegative))
	assert.True(t, math.IsNaN(d.Relative()))
}

func TestEmulatorEdgeHandlers(t *testing.T) {
	em := NewEmulator()
	d := fluke8050a.New()

	_, err := d.Attach(em)
	require.NoError(t, err)
	_, err = d.Attach(em)
	assert.Equal(t, errcode.PinInUse, errcode.Of(err))

	err = em.SetEdgeHandler(fluke8050a.LineST0, fluke8050a.EdgeFalling, nil)
	assert.Equal(t, errcode.InvalidParams, errcode.Of(err))

	require.NoError(t, em.ClearEdgeHandler(fluke8050a.LineBP))
	require.NoError(t, em.Show(Display{Text: "5"}))
	assert.Zero(t, d.Stats().Edges)
}

func TestCorruptKeepsReading(t *testing.T) {
	em, d := attached(t)
	require.NoError(t, em.Show(Display{Text: "4.20"}))

	c, err := Display{Text: "9.99"}.Cycle()
	require.NoError(t, err)
	require.NoError(t, c.Corrupt(1, 0xB))
	em.Run(c, 1)

	assert.Equal(t, 4.2, d.Value())
	assert.Equal(t, uint32(1), d.Stats().InvalidDigits)
	assert.Error(t, c.Corrupt(4, 0))
}

const relativeYAML = `
name: relative
steps:
  - show: "5.00"
    expect: {value: 5, relative: false}
  - show: "7.20"
    rel: true
    cycles: 2
    expect: {value: 7.2, baseline: 5, status: rel}
  - show: "-0.30"
    rel: true
    expect: {value: -0.3, baseline: 5, status: neg|rel}
  - show: "3.00"
    expect: {value: 3, relative: false, status: "-"}
`

func TestScenarioReplay(t *testing.T) {
	sc, err := ParseScenario(strings.NewReader(relativeYAML))
	require.NoError(t, err)
	assert.Equal(t, "relative", sc.Name)
	require.Len(t, sc.Steps, 4)

	em := NewEmulator()
	d := sc.NewDecoder()
	_, err = d.Attach(em)
	require.NoError(t, err)

	var seen []string
	err = sc.Replay(em, d, func(r Result) {
		seen = append(seen, r.Snapshot.Reading.String())
	})
	require.NoError(t, err)
	assert.Equal(t, []string{"5.00", "7.20", "-0.30", "3.00"}, seen)
}

func TestScenarioFilter(t *testing.T) {
	const y = `
filter: 2
steps:
  - show: "1.0"
  - show: "2.0"
    rel: true
    expect: {relative: false}
  - show: "2.0"
    rel: true
    expect: {relative: true, baseline: 1}
`
	sc, err := ParseScenario(strings.NewReader(y))
	require.NoError(t, err)
	em := NewEmulator()
	d := sc.NewDecoder()
	_, err = d.Attach(em)
	require.NoError(t, err)
	require.NoError(t, sc.Replay(em, d, nil))
}

func TestScenarioExpectationFails(t *testing.T) {
	sc, err := ParseScenario(strings.NewReader(`
steps:
  - show: "1.5"
    expect: {value: 2}
`))
	require.NoError(t, err)
	em := NewEmulator()
	d := sc.NewDecoder()
	_, err = d.Attach(em)
	require.NoError(t, err)

	err = sc.Replay(em, d, nil)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "step 0")
}

func TestParseScenarioRejects(t *testing.T) {
	bad := map[string]string{
		"unknown key": "steps:\n  - show: \"1\"\n    colour: red\n",
		"no steps":    "name: empty\n",
		"bad display": "steps:\n  - show: \"12x\"\n",
		"bad corrupt": "steps:\n  - show: \"1\"\n    corrupt: {position: 7, nibble: 1}\n",
		"bad filter":  "filter: 300\nsteps:\n  - show: \"1\"\n",
	}
	for name, y := range bad {
		_, err := ParseScenario(strings.NewReader(y))
		assert.Equal(t, errcode.InvalidConfig, errcode.Of(err), name)
	}
}

func TestFramebufferRender(t *testing.T) {
	em, d := attached(t)
	require.NoError(t, em.Show(Display{Text: "8.8"}))

	fb := NewFramebuffer(64, 32)
	p := display.NewPanel(fb, 1)
	require.NoError(t, p.Render(display.Compose(d)))
	assert.Equal(t, 1, fb.Flushes)

	out := fb.String()
	assert.Contains(t, out, "#")
	assert.Equal(t, display.White, fb.At(9, 8), "top segment of the first 8")
}

func TestLoadScenarioFile(t *testing.T) {
	sc, err := LoadScenario("testdata/relative.yaml")
	require.NoError(t, err)
	assert.Equal(t, "lead-offset", sc.Name)

	em := NewEmulator()
	d := sc.NewDecoder()
	_, err = d.Attach(em)
	require.NoError(t, err)
	require.NoError(t, sc.Replay(em, d, nil))
	assert.Equal(t, uint32(1), d.Stats().InvalidDigits)

	_, err = LoadScenario("testdata/missing.yaml")
	assert.Error(t, err)
}
