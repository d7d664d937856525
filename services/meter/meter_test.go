package meter

import (
	"context"
	"testing"
	"time"

	"devicecode-go/bus"
	"devicecode-go/drivers/fluke8050a"
	"devicecode-go/services/config"
	"devicecode-go/services/meter/internal/pinsrc"
	"devicecode-go/services/meter/internal/platform"
	"devicecode-go/types"
)

var testCfg = types.MeterConfig{
	Wiring: types.Wiring{
		BP: 2, DP: 3, HV: 4, W: 5, X: 6, Y: 7, Z: 8,
		ST: [5]int{9, 10, 11, 12, 13},
	},
	PollMs:       5,
	StatsEveryMs: 20,
}

// rig drives the fake pins the way the instrument would.
type rig struct {
	f    *platform.HostPinFactory
	nums [fluke8050a.NumLines]int
}

func (r *rig) scan(on ...fluke8050a.Line) {
	for i := 1; i < fluke8050a.NumLines; i++ {
		r.f.Get(r.nums[i]).Set(false)
	}
	for _, l := range on {
		r.f.Get(r.nums[l]).Set(true)
	}
	bp := r.f.Get(r.nums[fluke8050a.LineBP])
	bp.Set(true)
	bp.Set(false)
}

// cycle scans status then four digits; dec is the DP position or -1.
func (r *rig) cycle(status []fluke8050a.Line, digits [4]uint8, dec int) {
	r.scan(append([]fluke8050a.Line{fluke8050a.LineST0}, status...)...)
	bits := []fluke8050a.Line{fluke8050a.LineW, fluke8050a.LineX, fluke8050a.LineY, fluke8050a.LineZ}
	for i, v := range digits {
		on := []fluke8050a.Line{fluke8050a.LineST1 + fluke8050a.Line(i)}
		for b, l := range bits {
			if v&(1<<b) != 0 {
				on = append(on, l)
			}
		}
		if i == dec {
			on = append(on, fluke8050a.LineDP)
		}
		r.scan(on...)
	}
}

func startService(t *testing.T) (*Service, *rig, *bus.Connection) {
	t.Helper()
	b := bus.NewBus(32)
	conn := b.NewConnection("test")
	f := &platform.HostPinFactory{}
	svc := newService(b.NewConnection("meter"), f)

	ctx, cancel := context.WithCancel(context.Background())
	t.Cleanup(cancel)
	go svc.Run(ctx)

	conn.Publish(&bus.Message{Topic: config.TopicMeter, Payload: testCfg, Retained: true})
	select {
	case <-svc.Ready():
	case <-time.After(time.Second):
		t.Fatal("service not ready")
	}
	return svc, &rig{f: f, nums: pinsrc.Numbers(testCfg.Wiring)}, conn
}

func waitValue(t *testing.T, sub *bus.Subscription, text string) types.MeterValue {
	t.Helper()
	deadline := time.After(time.Second)
	for {
		select {
		case m := <-sub.Channel():
			v, ok := m.Payload.(types.MeterValue)
			if ok && v.Text == text {
				return v
			}
		case <-deadline:
			t.Fatalf("timeout waiting for value %q", text)
		}
	}
}

func TestServicePublishesValue(t *testing.T) {
	_, r, conn := startService(t)
	sub := conn.Subscribe(TopicValue)

	r.cycle(nil, [4]uint8{0, 1, 2, 3}, 2)
	v := waitValue(t, sub, "12.3")
	if v.Value != 12.3 || !v.Valid || v.Relative {
		t.Fatalf("unexpected value: %+v", v)
	}
}

func TestServiceRelativeEvent(t *testing.T) {
	_, r, conn := startService(t)
	vals := conn.Subscribe(TopicValue)
	events := conn.Subscribe(TopicRelative)

	r.cycle(nil, [4]uint8{0, 5, 0, 0}, 1)
	waitValue(t, vals, "5.00")

	r.cycle([]fluke8050a.Line{fluke8050a.LineDP}, [4]uint8{0, 7, 2, 0}, 1)
	v := waitValue(t, vals, "7.20")
	if !v.Relative || v.Baseline != "5.00" || v.Delta != "2.20" {
		t.Fatalf("unexpected relative value: %+v", v)
	}

	select {
	case m := <-events.Channel():
		ev := m.Payload.(types.RelativeEvent)
		if !ev.Active || ev.Baseline != "5.00" {
			t.Fatalf("unexpected event: %+v", ev)
		}
	case <-time.After(time.Second):
		t.Fatal("no relative event")
	}
}

func TestServiceGetReply(t *testing.T) {
	_, r, conn := startService(t)
	r.cycle([]fluke8050a.Line{fluke8050a.LineZ}, [4]uint8{0, 0, 4, 2}, -1)

	ctx, cancel := context.WithTimeout(context.Background(), time.Second)
	defer cancel()
	reply, err := conn.RequestWait(ctx, conn.NewMessage(TopicGet, nil, false))
	if err != nil {
		t.Fatalf("RequestWait: %v", err)
	}
	v, ok := reply.Payload.(types.MeterValue)
	if !ok || v.Text != "-42" {
		t.Fatalf("reply = %#v", reply.Payload)
	}
}

func TestServiceStats(t *testing.T) {
	_, r, conn := startService(t)
	sub := conn.Subscribe(TopicStats)
	r.cycle(nil, [4]uint8{0, 0, 0, 1}, -1)

	deadline := time.After(time.Second)
	for {
		select {
		case m := <-sub.Channel():
			st := m.Payload.(types.MeterStats)
			if st.Conversions >= 1 {
				if st.IRQs != st.Edges {
					t.Fatalf("irqs %d != edges %d", st.IRQs, st.Edges)
				}
				return
			}
		case <-deadline:
			t.Fatal("no stats with a conversion")
		}
	}
}

func TestServiceRejectsBadConfig(t *testing.T) {
	b := bus.NewBus(8)
	conn := b.NewConnection("test")
	svc := newService(b.NewConnection("meter"), &platform.HostPinFactory{})
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	states := conn.Subscribe(TopicState)
	go svc.Run(ctx)

	bad := testCfg
	bad.Wiring.ST[0] = bad.Wiring.BP
	conn.Publish(&bus.Message{Topic: config.TopicMeter, Payload: bad, Retained: true})

	deadline := time.After(time.Second)
	for {
		select {
		case m := <-states.Channel():
			st := m.Payload.(types.MeterState)
			if st.Level == "error" {
				if st.Error != "invalid_config" {
					t.Fatalf("error code %q", st.Error)
				}
				if svc.Decoder() != nil {
					t.Fatal("decoder attached despite bad config")
				}
				return
			}
		case <-deadline:
			t.Fatal("no error state")
		}
	}
}
