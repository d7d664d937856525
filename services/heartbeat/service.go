// services/heartbeat/service.go
package heartbeat

import (
	"context"
	"time"

	"devicecode-go/bus"
	"devicecode-go/types"
	"devicecode-go/x/mathx"
)

var (
	topicConfigHeartbeat = bus.T("config", "heartbeat")
	TopicHeartbeat       = bus.T("sys", "heartbeat")
)

const (
	defaultInterval = time.Second
	minInterval     = 0.05 // seconds
	maxInterval     = 3600
)

type Service struct {
	start time.Time
	seq   uint32
}

func (s *Service) serviceLoop(ctx context.Context, conn *bus.Connection) {
	cfgSub := conn.Subscribe(topicConfigHeartbeat)
	defer conn.Unsubscribe(cfgSub)

	tick := time.NewTicker(defaultInterval)
	defer tick.Stop()

	for {
		select {
		case <-ctx.Done():
			println("[heartbeat] stopping")
			return
		case t := <-tick.C:
			s.seq++
			conn.Publish(&bus.Message{
				Topic: TopicHeartbeat,
				Payload: types.Heartbeat{
					Seq:      s.seq,
					UptimeMs: t.Sub(s.start).Milliseconds(),
					TS:       t.UnixMilli(),
				},
				Retained: true,
			})
		case msg := <-cfgSub.Channel():
			// Config arrives as decoded JSON: {"interval": seconds}.
			m, ok := msg.Payload.(map[string]any)
			if !ok {
				continue
			}
			iv, ok := m["interval"].(float64)
			if !ok {
				continue
			}
			iv = mathx.Clamp(iv, minInterval, maxInterval)
			tick.Reset(time.Duration(iv * float64(time.Second)))
			println("[heartbeat] interval set to", int(iv*1000), "ms")
		}
	}
}

// Start the heartbeat service.
func (s *Service) Start(ctx context.Context, conn *bus.Connection) error {
	s.start = time.Now()
	go s.serviceLoop(ctx, conn)
	return nil
}
