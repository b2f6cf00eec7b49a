// Package easing provides the progress remapping functions shared by every
// animated transition in the scene.
//
// Each Func maps a progress fraction in [0,1] to an eased fraction in [0,1].
// Inputs outside the unit interval are clamped first, so callers may pass raw
// ratios without checking them.
package easing

import (
	"math"
	"time"
)

// Func remaps a progress fraction.
type Func func(t float64) float64

// Clamp01 limits t to [0,1]. NaN maps to 0.
func Clamp01(t float64) float64 {
	if t > 0 {
		if t > 1 {
			return 1
		}
		return t
	}
	return 0
}

// Linear returns t unchanged (after clamping).
func Linear(t float64) float64 {
	return Clamp01(t)
}

// Cosine is the symmetric half-cosine ease used by most transitions.
func Cosine(t float64) float64 {
	t = Clamp01(t)
	switch t {
	case 0, 1:
		return t
	}
	return 0.5 - 0.5*math.Cos(math.Pi*t)
}

// OutQuart decelerates strongly towards the end.
func OutQuart(t float64) float64 {
	t = Clamp01(t)
	inv := 1 - t
	return 1 - inv*inv*inv*inv
}

// OutQuint is a softer landing than OutQuart, used for return motions.
func OutQuint(t float64) float64 {
	t = Clamp01(t)
	inv := 1 - t
	return 1 - inv*inv*inv*inv*inv
}

// InOutCubic accelerates through the first half and decelerates through the second.
func InOutCubic(t float64) float64 {
	t = Clamp01(t)
	if t < 0.5 {
		return 4 * t * t * t
	}
	f := -2*t + 2
	return 1 - f*f*f/2
}

// OutExpo approaches the target exponentially. The curve is normalised so
// that OutExpo(1) is exactly 1.
func OutExpo(t float64) float64 {
	t = Clamp01(t)
	if t == 1 {
		return 1
	}
	const floor = 1.0 / 1024.0 // 2^-10
	return (1 - math.Pow(2, -10*t)) / (1 - floor)
}

// Lerp interpolates between a and b. t is not clamped.
func Lerp(a, b, t float64) float64 {
	return a + (b-a)*t
}

// Progress returns the clamped wall-clock ratio (now-start)/duration.
// A non-positive duration is treated as an already finished transition.
func Progress(now, start, duration time.Duration) float64 {
	if duration <= 0 {
		return 1
	}
	return Clamp01(float64(now-start) / float64(duration))
}
