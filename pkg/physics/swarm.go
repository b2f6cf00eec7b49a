// pkg/physics/swarm.go
package physics

import (
	"gonum.org/v1/gonum/spatial/r2"
)

// DefaultSwarmDamping scales the repulsion applied per tick
const DefaultSwarmDamping = 0.15

// Resolver computes soft pairwise repulsion between bodies sharing a layout.
// It is a per-tick nudge, not a hard constraint: a single pass may leave
// bodies overlapping, but repeated passes over constant input converge.
type Resolver struct {
	Damping float64
}

// NewResolver creates a resolver with the given damping
func NewResolver(damping float64) *Resolver {
	if damping <= 0 {
		damping = DefaultSwarmDamping
	}
	return &Resolver{Damping: damping}
}

// Resolve returns one displacement per position. For each unordered pair
// closer than the sum of their separations, both bodies are pushed apart
// along the line between them by Damping*(minDist-d)/minDist.
// Pairs at exactly the same point have no direction and are left alone.
func (r *Resolver) Resolve(positions []r2.Vec, minSep []float64) []r2.Vec {
	out := make([]r2.Vec, len(positions))
	for a := 0; a < len(positions); a++ {
		for b := a + 1; b < len(positions); b++ {
			diff := r2.Sub(positions[b], positions[a])
			d := r2.Norm(diff)
			minDist := minSep[a] + minSep[b]
			if d <= 0 || d >= minDist {
				continue
			}
			force := (minDist - d) / minDist * r.Damping
			push := r2.Scale(force/d, diff)
			out[a] = r2.Sub(out[a], push)
			out[b] = r2.Add(out[b], push)
		}
	}
	return out
}

// Overlapping reports, per body, whether it overlaps any other body
func Overlapping(positions []r2.Vec, minSep []float64) []bool {
	out := make([]bool, len(positions))
	for a := 0; a < len(positions); a++ {
		for b := a + 1; b < len(positions); b++ {
			ca := Circle{Center: positions[a], Radius: minSep[a]}
			cb := Circle{Center: positions[b], Radius: minSep[b]}
			if ca.Collides(cb) {
				out[a] = true
				out[b] = true
			}
		}
	}
	return out
}
