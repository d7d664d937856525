package types

// MeterValue is published retained on meter/value.
type MeterValue struct {
	Value    float64 `json:"value"`
	Text     string  `json:"text"` // exact display text, e.g. "-12.34"
	Valid    bool    `json:"valid"`
	Relative bool    `json:"relative"`
	Baseline string  `json:"baseline,omitempty"` // only while relative
	Delta    string  `json:"delta,omitempty"`    // value - baseline
	Seq      uint16  `json:"seq"`
	TS       int64   `json:"ts_ms"`
}

// MeterStatus is published retained on meter/status.
type MeterStatus struct {
	Flags []string `json:"flags"` // "one","neg","pos","db","rel","bt","hv"
	TS    int64    `json:"ts_ms"`
}

// RelativeEvent is published on meter/event/relative when REL is committed
// or released.
type RelativeEvent struct {
	Active   bool   `json:"active"`
	Baseline string `json:"baseline"`
	TS       int64  `json:"ts_ms"`
}

// MeterStats is published periodically on meter/stats.
type MeterStats struct {
	Edges         uint32 `json:"edges"`
	StatusCycles  uint32 `json:"status_cycles"`
	Digits        uint32 `json:"digits"`
	Conversions   uint32 `json:"conversions"`
	InvalidDigits uint32 `json:"invalid_digits"`
	Indeterminate uint32 `json:"indeterminate"`
	IRQs          uint32 `json:"irqs"`
}

// Info envelope (retained on meter/info).
type Info struct {
	SchemaVersion int    `json:"schema_version"`
	Driver        string `json:"driver"`
	Detail        any    `json:"detail,omitempty"`
}

// MeterState is published retained on meter/state.
type MeterState struct {
	Level  string `json:"level"`  // "idle", "ready", "error", "stopped"
	Status string `json:"status"` // short code
	Error  string `json:"error,omitempty"`
	TS     int64  `json:"ts_ms"`
}

type ErrorReply struct {
	OK    bool   `json:"ok"`
	Error string `json:"error"`
}
