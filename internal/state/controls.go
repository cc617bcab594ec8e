package state

import "math"

// Controls is the per-tick intent vector driving one entity. Bots and humans
// produce the same shape so both flow through the identical flight path.
type Controls struct {
	// Pitch and Roll are normalised axis intents in [-1, 1].
	Pitch float64 `json:"pitch"`
	Roll  float64 `json:"roll"`
	// Throttle modifies forward speed in [-1, 1] around the base constant.
	Throttle float64 `json:"throttle"`
	Boost    bool    `json:"boost"`
	Fire     bool    `json:"fire"`
}

// Sanitize clamps every axis into its legal range and zeroes non-finite
// values so malformed client payloads degrade to safe defaults.
func (c Controls) Sanitize() Controls {
	c.Pitch = clampAxis(c.Pitch)
	c.Roll = clampAxis(c.Roll)
	c.Throttle = clampAxis(c.Throttle)
	return c
}

func clampAxis(value float64) float64 {
	//1.- NaN and infinities collapse to neutral rather than rejecting the tick.
	if math.IsNaN(value) || math.IsInf(value, 0) {
		return 0
	}
	if value < -1 {
		return -1
	}
	if value > 1 {
		return 1
	}
	return value
}
