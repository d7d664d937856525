package config

import (
	"strconv"

	"devicecode-go/errcode"
	"devicecode-go/types"
)

// Validate checks a meter config. It does not mutate cfg.
func Validate(cfg *types.MeterConfig) error {
	w := cfg.Wiring
	pins := []struct {
		name string
		n    int
	}{
		{"bp", w.BP}, {"dp", w.DP}, {"hv", w.HV},
		{"w", w.W}, {"x", w.X}, {"y", w.Y}, {"z", w.Z},
		{"st0", w.ST[0]}, {"st1", w.ST[1]}, {"st2", w.ST[2]}, {"st3", w.ST[3]}, {"st4", w.ST[4]},
	}
	owner := make(map[int]string, len(pins))
	for _, p := range pins {
		if p.n < 0 {
			return errcode.Wrap(errcode.InvalidConfig, "validate", p.name+": negative pin", nil)
		}
		if prev, dup := owner[p.n]; dup {
			return errcode.Wrap(errcode.InvalidConfig, "validate",
				"pin "+strconv.Itoa(p.n)+" wired to both "+prev+" and "+p.name, nil)
		}
		owner[p.n] = p.name
	}
	switch w.Pull {
	case "", "none", "up", "down":
	default:
		return errcode.Wrap(errcode.InvalidConfig, "validate", "pull: "+w.Pull, nil)
	}
	return nil
}
