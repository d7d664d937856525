package config

import (
	"context"
	"encoding/json"

	"devicecode-go/bus"
	"devicecode-go/errcode"
	"devicecode-go/types"
)

// -----------------------------------------------------------------------------
// String constants (live in flash, not RAM)
// -----------------------------------------------------------------------------

const (
	serviceName  = "config"
	configPrefix = "config"
	meterKey     = "meter"
	CtxDeviceKey = "device" // context key used for device ID
)

// TopicMeter carries the retained types.MeterConfig.
var TopicMeter = bus.T(configPrefix, meterKey)

// EmbeddedConfigLookup allows overriding how configs are resolved.
var EmbeddedConfigLookup = func(device string) ([]byte, bool) {
	b, ok := embeddedConfigs[device]
	return b, ok
}

// -----------------------------------------------------------------------------
// Decoding
// -----------------------------------------------------------------------------

func load(device string) (map[string]json.RawMessage, error) {
	raw, ok := EmbeddedConfigLookup(device)
	if !ok || len(raw) == 0 {
		return nil, errcode.Wrap(errcode.InvalidConfig, "lookup", "no embedded config for device: "+device, nil)
	}
	var m map[string]json.RawMessage
	if err := json.Unmarshal(raw, &m); err != nil {
		return nil, errcode.Wrap(errcode.InvalidConfig, "decode", "embedded config is not a JSON object", err)
	}
	return m, nil
}

func decodeMeter(raw json.RawMessage) (types.MeterConfig, error) {
	var cfg types.MeterConfig
	if err := json.Unmarshal(raw, &cfg); err != nil {
		return cfg, errcode.Wrap(errcode.InvalidConfig, "decode", meterKey, err)
	}
	if err := Validate(&cfg); err != nil {
		return cfg, err
	}
	Normalize(&cfg)
	return cfg, nil
}

// Lookup returns the validated, normalized meter config for device.
func Lookup(device string) (types.MeterConfig, error) {
	m, err := load(device)
	if err != nil {
		return types.MeterConfig{}, err
	}
	raw, ok := m[meterKey]
	if !ok {
		return types.MeterConfig{}, errcode.Wrap(errcode.InvalidConfig, "lookup", "missing meter section", nil)
	}
	return decodeMeter(raw)
}

// -----------------------------------------------------------------------------
// Config Service
// -----------------------------------------------------------------------------

type ConfigService struct {
	Name string
}

func NewConfigService() *ConfigService {
	return &ConfigService{Name: serviceName}
}

// publishConfig reads the device config from embedded data and publishes
// each top-level key as a retained message. The meter section is published
// as a typed types.MeterConfig; other sections as decoded JSON values.
func (s *ConfigService) publishConfig(ctx context.Context, conn *bus.Connection) error {
	device, _ := ctx.Value(CtxDeviceKey).(string)
	if device == "" {
		return errcode.Wrap(errcode.InvalidConfig, "publish", "missing device ID in context", nil)
	}

	m, err := load(device)
	if err != nil {
		return err
	}

	for k, raw := range m {
		var payload any
		if k == meterKey {
			cfg, err := decodeMeter(raw)
			if err != nil {
				println("[config] rejected meter config:", err.Error())
				continue
			}
			payload = cfg
		} else if err := json.Unmarshal(raw, &payload); err != nil {
			continue
		}
		conn.Publish(&bus.Message{
			Topic:    bus.T(configPrefix, k),
			Payload:  payload,
			Retained: true,
		})
	}

	return nil
}

// Start launches the config publisher in a goroutine.
func (s *ConfigService) Start(ctx context.Context, conn *bus.Connection) {
	go func() {
		if err := s.publishConfig(ctx, conn); err != nil {
			println("[config]", err.Error())
		}
	}()
}
