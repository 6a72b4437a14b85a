package analytics

import "math"

// roundHalfUp rounds half-way cases towards +Inf so that -2.5 becomes -2.
func roundHalfUp(x float64) float64 {
	return math.Floor(x + 0.5)
}

// round2 rounds to two decimal places.
func round2(x float64) float64 {
	return roundHalfUp(x*100) / 100
}

// clamp maps NaN to lo.
func clamp(x, lo, hi float64) float64 {
	if math.IsNaN(x) || x < lo {
		return lo
	}
	if x > hi {
		return hi
	}
	return x
}
