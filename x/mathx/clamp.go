// Package mathx holds small numeric helpers shared by drivers and services.
package mathx

import "golang.org/x/exp/constraints"

// Clamp bounds v to [lo, hi]. Swapped bounds are accepted.
func Clamp[T constraints.Ordered](v, lo, hi T) T {
	if hi < lo {
		lo, hi = hi, lo
	}
	switch {
	case v < lo:
		return lo
	case v > hi:
		return hi
	}
	return v
}
