// services/meter/meter.go
package meter

import (
	"context"
	"sync/atomic"
	"time"

	"devicecode-go/bus"
	"devicecode-go/drivers/fluke8050a"
	"devicecode-go/errcode"
	"devicecode-go/services/config"
	"devicecode-go/services/meter/internal/halcore"
	"devicecode-go/services/meter/internal/pinsrc"
	"devicecode-go/services/meter/internal/platform"
	"devicecode-go/types"
)

var (
	TopicValue    = bus.T("meter", "value")
	TopicStatus   = bus.T("meter", "status")
	TopicState    = bus.T("meter", "state")
	TopicInfo     = bus.T("meter", "info")
	TopicStats    = bus.T("meter", "stats")
	TopicRelative = bus.T("meter", "event", "relative")
	TopicGet      = bus.T("meter", "get")
)

// Service owns the decoder. It attaches it to the configured pins and, from
// an ordinary goroutine, polls the published snapshot onto the bus.
type Service struct {
	conn *bus.Connection
	pins halcore.PinFactory

	dec    atomic.Pointer[fluke8050a.Decoder]
	src    *pinsrc.Source
	detach func()
	ready  chan struct{}

	poll       time.Duration
	statsEvery time.Duration

	last      fluke8050a.Snapshot
	published bool
}

// New creates a meter service on the platform's GPIO.
func New(conn *bus.Connection) *Service {
	return newService(conn, platform.DefaultPinFactory())
}

func newService(conn *bus.Connection, pins halcore.PinFactory) *Service {
	return &Service{
		conn:  conn,
		pins:  pins,
		ready: make(chan struct{}),
	}
}

// Decoder returns the running decoder, or nil before configuration.
func (s *Service) Decoder() *fluke8050a.Decoder { return s.dec.Load() }

// Ready is closed once the decoder is attached.
func (s *Service) Ready() <-chan struct{} { return s.ready }

func (s *Service) Run(ctx context.Context) {
	cfgSub := s.conn.Subscribe(config.TopicMeter)
	getSub := s.conn.Subscribe(TopicGet)
	defer s.conn.Unsubscribe(cfgSub)
	defer s.conn.Unsubscribe(getSub)

	s.publishState("idle", "awaiting_config", nil)

	var pollC, statsC <-chan time.Time
	var pollT, statsT *time.Ticker
	defer func() {
		if pollT != nil {
			pollT.Stop()
			statsT.Stop()
		}
	}()

	for {
		select {
		case <-ctx.Done():
			if s.detach != nil {
				s.detach()
			}
			s.publishState("stopped", "context_cancelled", nil)
			return

		case msg := <-cfgSub.Channel():
			cfg, ok := msg.Payload.(types.MeterConfig)
			if !ok {
				s.publishState("error", "config_wrong_type", nil)
				continue
			}
			if err := s.applyConfig(cfg); err != nil {
				println("[meter] apply config failed:", err.Error())
				s.publishState("error", "apply_config_failed", err)
				continue
			}
			if pollT == nil {
				pollT = time.NewTicker(s.poll)
				statsT = time.NewTicker(s.statsEvery)
				pollC, statsC = pollT.C, statsT.C
			} else {
				pollT.Reset(s.poll)
				statsT.Reset(s.statsEvery)
			}
			s.publishState("ready", "configured", nil)

		case <-pollC:
			s.publishSnapshot(time.Now())

		case <-statsC:
			s.publishStats()

		case msg := <-getSub.Channel():
			d := s.Decoder()
			if d == nil {
				s.conn.Reply(msg, types.ErrorReply{Error: string(errcode.NotReady)}, false)
				continue
			}
			s.conn.Reply(msg, valuePayload(d.Snapshot(), time.Now()), false)
		}
	}
}

// applyConfig attaches the decoder on first use. Later configs may retune
// the polling cadence; wiring and filter changes need a restart.
func (s *Service) applyConfig(cfg types.MeterConfig) error {
	if err := config.Validate(&cfg); err != nil {
		return err
	}
	config.Normalize(&cfg)
	s.poll = time.Duration(cfg.PollMs) * time.Millisecond
	s.statsEvery = time.Duration(cfg.StatsEveryMs) * time.Millisecond

	if s.Decoder() != nil {
		println("[meter] config updated; poll_ms", cfg.PollMs)
		return nil
	}

	src, err := pinsrc.New(s.pins, cfg.Wiring)
	if err != nil {
		return err
	}
	dec := fluke8050a.New(fluke8050a.WithRelativeFilter(int(cfg.RelativeFilter)))
	detach, err := dec.Attach(src)
	if err != nil {
		return err
	}
	s.src, s.detach = src, detach
	s.dec.Store(dec)
	close(s.ready)

	s.conn.Publish(&bus.Message{
		Topic: TopicInfo,
		Payload: types.Info{
			SchemaVersion: 1,
			Driver:        "fluke8050a",
			Detail:        cfg.Wiring,
		},
		Retained: true,
	})
	println("[meter] decoder attached on bp pin", cfg.Wiring.BP)
	return nil
}

func (s *Service) publishSnapshot(now time.Time) {
	d := s.Decoder()
	if d == nil {
		return
	}
	snap := d.Snapshot()
	if s.published && snap.Seq == s.last.Seq {
		return
	}
	prev, first := s.last, !s.published
	s.last, s.published = snap, true

	s.conn.Publish(&bus.Message{Topic: TopicValue, Payload: valuePayload(snap, now), Retained: true})

	if first || snap.Status != prev.Status {
		flags := snap.Status.Names()
		if flags == nil {
			flags = []string{}
		}
		s.conn.Publish(&bus.Message{
			Topic:    TopicStatus,
			Payload:  types.MeterStatus{Flags: flags, TS: now.UnixMilli()},
			Retained: true,
		})
	}

	if snap.Relative != prev.Relative {
		ev := types.RelativeEvent{Active: snap.Relative, TS: now.UnixMilli()}
		if snap.Relative {
			ev.Baseline = snap.Baseline.String()
			println("[meter] relative on, baseline", ev.Baseline)
		} else {
			println("[meter] relative off")
		}
		s.conn.Publish(&bus.Message{Topic: TopicRelative, Payload: ev})
	}
}

func (s *Service) publishStats() {
	d := s.Decoder()
	if d == nil {
		return
	}
	st := d.Stats()
	s.conn.Publish(&bus.Message{
		Topic: TopicStats,
		Payload: types.MeterStats{
			Edges:         st.Edges,
			StatusCycles:  st.StatusCycles,
			Digits:        st.Digits,
			Conversions:   st.Conversions,
			InvalidDigits: st.InvalidDigits,
			Indeterminate: st.Indeterminate,
			IRQs:          s.src.IRQs(),
		},
	})
}

func (s *Service) publishState(level, status string, err error) {
	st := types.MeterState{Level: level, Status: status, TS: time.Now().UnixMilli()}
	if err != nil {
		st.Error = string(errcode.Of(err))
	}
	s.conn.Publish(&bus.Message{Topic: TopicState, Payload: st, Retained: true})
}

func valuePayload(snap fluke8050a.Snapshot, now time.Time) types.MeterValue {
	v := types.MeterValue{
		Value:    snap.Value(),
		Text:     snap.Reading.String(),
		Valid:    snap.Valid,
		Relative: snap.Relative,
		Seq:      snap.Seq,
		TS:       now.UnixMilli(),
	}
	if delta, ok := snap.Delta(); ok {
		v.Baseline = snap.Baseline.String()
		v.Delta = delta.String()
	}
	return v
}
