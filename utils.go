package optpricer

import (
	"math"
)

func isFinite(x float64) bool {
	return !math.IsNaN(x) && !math.IsInf(x, 0)
}

func discountFactor(rate float64, expiry float64) float64 {
	return math.Exp(-rate * expiry)
}

// MaxFloat returns the larger of a and b.
func MaxFloat(a, b float64) float64 {
	if a > b {
		return a
	}
	return b
}

func clamp(x, lo, hi float64) float64 {
	if x < lo {
		return lo
	}
	if x > hi {
		return hi
	}
	return x
}

// roundToStep rounds num to the nearest multiple of step, counting in step
// units so fractional steps work. Halfway values round down.
func roundToStep(num float64, step float64) float64 {
	if step <= 0 {
		return num
	}
	return math.Ceil(num/step-0.5) * step
}
