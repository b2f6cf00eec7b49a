// pkg/physics/collision.go
package physics

import "gonum.org/v1/gonum/spatial/r2"

// Circle represents a circular footprint in the projection plane
type Circle struct {
	Center r2.Vec
	Radius float64
}

// Collides checks if two circles are overlapping
func (c Circle) Collides(other Circle) bool {
	return r2.Norm(r2.Sub(c.Center, other.Center)) < c.Radius+other.Radius
}

// Contains reports whether point lies inside the circle
func (c Circle) Contains(point r2.Vec) bool {
	return r2.Norm(r2.Sub(point, c.Center)) <= c.Radius
}

// CollisionResult contains information about an overlap
type CollisionResult struct {
	Collided     bool
	Normal       r2.Vec
	Penetration  float64
	ContactPoint r2.Vec
}

// CheckCollision performs detailed overlap detection between two circles
func CheckCollision(a, b Circle) CollisionResult {
	// Vector from A to B
	normal := r2.Sub(b.Center, a.Center)
	distance := r2.Norm(normal)

	if distance > a.Radius+b.Radius {
		return CollisionResult{Collided: false}
	}

	penetration := a.Radius + b.Radius - distance

	// Coincident centres have no direction; pick +X so callers can still separate them
	if distance == 0 {
		normal = r2.Vec{X: 1}
	} else {
		normal = r2.Scale(1/distance, normal)
	}
	contactPoint := r2.Add(a.Center, r2.Scale(a.Radius, normal))

	return CollisionResult{
		Collided:     true,
		Normal:       normal,
		Penetration:  penetration,
		ContactPoint: contactPoint,
	}
}

// Rect represents a rectangular area, e.g. a panel that bodies must stay clear of
type Rect struct {
	Center r2.Vec
	Width  float64
	Height float64
}

// Contains reports whether point lies inside the rectangle
func (r Rect) Contains(point r2.Vec) bool {
	return point.X >= r.Center.X-r.Width/2 &&
		point.X < r.Center.X+r.Width/2 &&
		point.Y >= r.Center.Y-r.Height/2 &&
		point.Y < r.Center.Y+r.Height/2
}
