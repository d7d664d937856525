package types

// MeterConfig is supplied on topic "config/meter".
type MeterConfig struct {
	Wiring         Wiring        `json:"wiring"`
	PollMs         uint32        `json:"poll_ms,omitempty"`         // publish cadence
	StatsEveryMs   uint32        `json:"stats_every_ms,omitempty"`  // 0 => default
	RelativeFilter uint8         `json:"relative_filter,omitempty"` // status cycles to confirm REL
	Display        DisplayConfig `json:"display"`
}

// Wiring maps each instrument line to a GPIO number.
type Wiring struct {
	BP   int    `json:"bp"`
	DP   int    `json:"dp"`
	HV   int    `json:"hv"`
	W    int    `json:"w"`
	X    int    `json:"x"`
	Y    int    `json:"y"`
	Z    int    `json:"z"`
	ST   [5]int `json:"st"`             // ST0..ST4
	Pull string `json:"pull,omitempty"` // "none","up","down"
}

type DisplayConfig struct {
	Enabled   bool   `json:"enabled"`
	RefreshMs uint32 `json:"refresh_ms,omitempty"`
	Scale     uint8  `json:"scale,omitempty"` // segment thickness in pixels
}
