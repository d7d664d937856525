package config

// -----------------------------------------------------------------------------
// Embedded configuration
//
// Key: device ID (same value placed in ctx under CtxDeviceKey)
// Val: raw JSON bytes for that device
// -----------------------------------------------------------------------------

// Pico carrier board: the 8050A display connector lands on GP2..GP13.
const cfgPico = `{
  "meter": {
    "wiring": {
      "bp": 2, "dp": 3, "hv": 4,
      "w": 5, "x": 6, "y": 7, "z": 8,
      "st": [9, 10, 11, 12, 13],
      "pull": "down"
    },
    "poll_ms": 100,
    "relative_filter": 2,
    "display": {"enabled": true, "refresh_ms": 200, "scale": 4}
  },
  "heartbeat": {"interval": 10}
}`

// Host builds drive fake pins with the same numbering.
const cfgHost = `{
  "meter": {
    "wiring": {
      "bp": 2, "dp": 3, "hv": 4,
      "w": 5, "x": 6, "y": 7, "z": 8,
      "st": [9, 10, 11, 12, 13]
    },
    "poll_ms": 20
  }
}`

var embeddedConfigs = map[string][]byte{
	"pico": []byte(cfgPico),
	"host": []byte(cfgHost),
}
