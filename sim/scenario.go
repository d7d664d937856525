package sim

import (
	"fmt"
	"io"
	"math"
	"os"

	"gopkg.in/yaml.v3"

	"devicecode-go/drivers/fluke8050a"
	"devicecode-go/errcode"
)

// Scenario is a scripted sequence of front-panel states.
//
//	name: relative
//	filter: 1
//	steps:
//	  - show: "5.00"
//	  - show: "7.20"
//	    rel: true
//	    expect: {value: 7.2, baseline: 5}
type Scenario struct {
	Name   string `yaml:"name"`
	Filter int    `yaml:"filter"` // relative glitch filter; 0 => 1
	Steps  []Step `yaml:"steps"`
}

type Step struct {
	Show    string   `yaml:"show"`
	Rel     bool     `yaml:"rel"`
	DB      bool     `yaml:"db"`
	HV      bool     `yaml:"hv"`
	Cycles  int      `yaml:"cycles"` // 0 => 1
	Corrupt *Corrupt `yaml:"corrupt"`
	Expect  *Expect  `yaml:"expect"`
}

type Corrupt struct {
	Position int   `yaml:"position"`
	Nibble   uint8 `yaml:"nibble"`
}

// Expect checks the decoder after a step. Baseline implies relative mode;
// Relative: false asserts it is off.
type Expect struct {
	Value    *float64 `yaml:"value"`
	Baseline *float64 `yaml:"baseline"`
	Relative *bool    `yaml:"relative"`
	Status   *string  `yaml:"status"`
}

// Result is the decoder state observed after one step.
type Result struct {
	Index    int
	Step     Step
	Snapshot fluke8050a.Snapshot
}

// ParseScenario decodes YAML, rejecting unknown keys.
func ParseScenario(r io.Reader) (*Scenario, error) {
	dec := yaml.NewDecoder(r)
	dec.KnownFields(true)
	var sc Scenario
	if err := dec.Decode(&sc); err != nil {
		return nil, errcode.Wrap(errcode.InvalidConfig, "scenario", "decode", err)
	}
	if err := sc.Validate(); err != nil {
		return nil, err
	}
	return &sc, nil
}

// LoadScenario reads a scenario file.
func LoadScenario(path string) (*Scenario, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()
	return ParseScenario(f)
}

func (sc *Scenario) Validate() error {
	if len(sc.Steps) == 0 {
		return errcode.Wrap(errcode.InvalidConfig, "scenario", "no steps", nil)
	}
	if sc.Filter < 0 || sc.Filter > 255 {
		return errcode.Wrap(errcode.InvalidConfig, "scenario", "filter out of range", nil)
	}
	for i, st := range sc.Steps {
		if _, err := st.cycle(); err != nil {
			return errcode.Wrap(errcode.InvalidConfig, "scenario", fmt.Sprintf("step %d", i), err)
		}
		if st.Cycles < 0 {
			return errcode.Wrap(errcode.InvalidConfig, "scenario", fmt.Sprintf("step %d: cycles", i), nil)
		}
	}
	return nil
}

// NewDecoder returns a decoder configured for the scenario.
func (sc *Scenario) NewDecoder() *fluke8050a.Decoder {
	n := sc.Filter
	if n == 0 {
		n = 1
	}
	return fluke8050a.New(fluke8050a.WithRelativeFilter(n))
}

func (st Step) cycle() (Cycle, error) {
	c, err := Display{Text: st.Show, Relative: st.Rel, Decibel: st.DB, HV: st.HV}.Cycle()
	if err != nil {
		return c, err
	}
	if st.Corrupt != nil {
		if err := c.Corrupt(st.Corrupt.Position, st.Corrupt.Nibble); err != nil {
			return c, err
		}
	}
	return c, nil
}

// Replay drives every step through em and checks expectations against d,
// which must already be attached to em. each, if non-nil, sees every step.
// Replay stops at the first failed expectation.
func (sc *Scenario) Replay(em *Emulator, d *fluke8050a.Decoder, each func(Result)) error {
	for i, st := range sc.Steps {
		c, err := st.cycle()
		if err != nil {
			return err
		}
		n := st.Cycles
		if n == 0 {
			n = 1
		}
		em.Run(c, n)

		snap := d.Snapshot()
		if each != nil {
			each(Result{Index: i, Step: st, Snapshot: snap})
		}
		if st.Expect != nil {
			if err := st.Expect.check(snap); err != nil {
				return fmt.Errorf("step %d (%s): %w", i, st.Show, err)
			}
		}
	}
	return nil
}

const tolerance = 1e-9

func (x *Expect) check(s fluke8050a.Snapshot) error {
	if x.Value != nil && math.Abs(s.Value()-*x.Value) > tolerance {
		return fmt.Errorf("value %v, want %v", s.Value(), *x.Value)
	}
	if x.Relative != nil && s.Relative != *x.Relative {
		return fmt.Errorf("relative %v, want %v", s.Relative, *x.Relative)
	}
	if x.Baseline != nil {
		rel := s.RelativeValue()
		if math.IsNaN(rel) || math.Abs(rel-*x.Baseline) > tolerance {
			return fmt.Errorf("baseline %v, want %v", rel, *x.Baseline)
		}
	}
	if x.Status != nil && s.Status.String() != *x.Status {
		return fmt.Errorf("status %q, want %q", s.Status.String(), *x.Status)
	}
	return nil
}
