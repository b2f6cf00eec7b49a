// pkg/body/body.go
package body

import (
	"gonum.org/v1/gonum/spatial/r2"
	"gonum.org/v1/gonum/spatial/r3"
)

// ID is the stable identity of an orbiting body (1..N). It maps the body to
// external display content such as detail panels.
type ID int

// Body is one orbiting navigation target and its kinematic state
type Body struct {
	ID      ID
	Name    string
	Texture string

	// Visual radius of the sphere
	Size float64
	// MinSeparation is only read by the collision resolver
	MinSeparation float64

	Angle     float64 // radians, advanced every orbiting tick
	BaseSpeed float64 // radians per tick, fixed at creation
	Speed     float64 // current angular velocity, smoothed towards a target
	Radius    float64 // effective orbital radius (original * viewport scale)

	originalRadius float64

	// Position is derived every tick and never authoritative
	Position r3.Vec
	// Offset is the accumulated swarm displacement in the projection plane
	Offset r2.Vec
	// Scale and Spin are render hints written by the controller
	Scale float64
	Spin  float64

	Hovered bool
	Focused bool
}

// OriginalRadius returns the unscaled reference radius
func (b *Body) OriginalRadius() float64 {
	return b.originalRadius
}

// Braked reports whether the input layer is holding this body
func (b *Body) Braked() bool {
	return b.Hovered || b.Focused
}

// TargetSpeed returns the speed the body converges to: a small fraction of
// the base speed while braked, the base speed otherwise
func (b *Body) TargetSpeed(brake float64) float64 {
	if b.Braked() {
		return b.BaseSpeed * brake
	}
	return b.BaseSpeed
}

// SmoothSpeed moves Speed towards the target by the given smoothing factor
// (exponential smoothing, never a jump)
func (b *Body) SmoothSpeed(factor, brake float64) {
	target := b.TargetSpeed(brake)
	b.Speed += (target - b.Speed) * factor
}
