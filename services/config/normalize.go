package config

import "devicecode-go/types"

const (
	DefaultPollMs         = 100
	DefaultStatsEveryMs   = 5000
	DefaultRelativeFilter = 1
	DefaultRefreshMs      = 200
	DefaultSegmentScale   = 4
)

// Normalize fills defaults. Call it only after Validate.
func Normalize(cfg *types.MeterConfig) {
	if cfg == nil {
		return
	}
	if cfg.PollMs == 0 {
		cfg.PollMs = DefaultPollMs
	}
	if cfg.StatsEveryMs == 0 {
		cfg.StatsEveryMs = DefaultStatsEveryMs
	}
	if cfg.RelativeFilter == 0 {
		cfg.RelativeFilter = DefaultRelativeFilter
	}
	if cfg.Wiring.Pull == "" {
		cfg.Wiring.Pull = "none"
	}
	if cfg.Display.RefreshMs == 0 {
		cfg.Display.RefreshMs = DefaultRefreshMs
	}
	if cfg.Display.Scale == 0 {
		cfg.Display.Scale = DefaultSegmentScale
	}
}
