// pkg/physics/angle.go
package physics

import "math"

// TwoPi is a full revolution in radians
const TwoPi = 2 * math.Pi

// WrapAngle maps an angle into [0, 2π)
func WrapAngle(a float64) float64 {
	a = math.Mod(a, TwoPi)
	if a < 0 {
		a += TwoPi
	}
	// math.Mod can return TwoPi-ε+TwoPi rounding to exactly TwoPi
	if a >= TwoPi {
		a = 0
	}
	return a
}

// ShortestAngleDelta returns the signed rotation that takes from to to,
// always in (-π, π]
func ShortestAngleDelta(from, to float64) float64 {
	d := WrapAngle(to - from)
	if d > math.Pi {
		d -= TwoPi
	}
	return d
}

// LerpAngle interpolates from a towards b along the shortest arc.
// The result is not wrapped so callers can keep a continuous angle.
func LerpAngle(a, b, t float64) float64 {
	return a + ShortestAngleDelta(a, b)*t
}

// RepelAngles nudges angles apart when two are closer than minSep radians.
// Each violating pair is pushed in opposite directions by
// (minSep-|delta|)*push. The slice is modified in place and the number of
// violating pairs is returned.
func RepelAngles(angles []float64, minSep, push float64) int {
	violations := 0
	for a := 0; a < len(angles); a++ {
		for b := a + 1; b < len(angles); b++ {
			delta := ShortestAngleDelta(angles[a], angles[b])
			gap := math.Abs(delta)
			if gap >= minSep {
				continue
			}
			violations++
			nudge := (minSep - gap) * push
			// b leads a (delta > 0): push a back and b forward
			if delta >= 0 {
				angles[a] -= nudge
				angles[b] += nudge
			} else {
				angles[a] += nudge
				angles[b] -= nudge
			}
		}
	}
	return violations
}
