// Package camera frames the scene: a perspective camera on the +Z axis looking
// at the focal point, whose distance follows the viewport scale through a
// critically damped spring so breakpoint changes never pop.
package camera

import (
	"math"

	"github.com/charmbracelet/harmonica"
	"gonum.org/v1/gonum/spatial/r2"
	"gonum.org/v1/gonum/spatial/r3"
)

// Near is the closest depth that still projects
const Near = 0.1

// Camera is a perspective camera at (0, 0, Distance) looking down -Z
type Camera struct {
	fov    float64 // vertical field of view, radians
	width  float64
	height float64

	distance float64
	velocity float64
	target   float64
	spring   harmonica.Spring

	zoom    float64
	minZoom float64
	maxZoom float64
}

// New creates a camera. fovDegrees is the vertical field of view; fps,
// frequency and damping parameterise the distance spring.
func New(fovDegrees, distance float64, fps int, frequency, damping float64) *Camera {
	if fps <= 0 {
		fps = 60
	}
	return &Camera{
		fov:      fovDegrees * math.Pi / 180,
		width:    1,
		height:   1,
		distance: distance,
		target:   distance,
		spring:   harmonica.NewSpring(harmonica.FPS(fps), frequency, damping),
		zoom:     1,
		minZoom:  0.1,
		maxZoom:  3,
	}
}

// SetViewport updates the projection surface size in pixels or cells
func (c *Camera) SetViewport(width, height float64) {
	if width > 0 {
		c.width = width
	}
	if height > 0 {
		c.height = height
	}
}

// Viewport returns the projection surface size
func (c *Camera) Viewport() (float64, float64) {
	return c.width, c.height
}

// SetTargetDistance makes the spring pull the camera towards distance
func (c *Camera) SetTargetDistance(distance float64) {
	c.target = distance
}

// SnapTo moves the camera immediately and stops the spring
func (c *Camera) SnapTo(distance float64) {
	c.distance = distance
	c.target = distance
	c.velocity = 0
}

// Update advances the spring by one frame
func (c *Camera) Update() {
	c.distance, c.velocity = c.spring.Update(c.distance, c.velocity, c.target)
}

// Distance returns the current camera distance from the focal point
func (c *Camera) Distance() float64 {
	return c.distance
}

// TargetDistance returns where the spring is heading
func (c *Camera) TargetDistance() float64 {
	return c.target
}

// SetZoom sets the user zoom level
func (c *Camera) SetZoom(zoom float64) {
	c.zoom = c.clampZoom(zoom)
}

// Zoom returns the user zoom level
func (c *Camera) Zoom() float64 {
	return c.zoom
}

// SetZoomLimits sets the minimum and maximum zoom levels
func (c *Camera) SetZoomLimits(min, max float64) {
	c.minZoom = min
	c.maxZoom = max
	c.zoom = c.clampZoom(c.zoom)
}

func (c *Camera) clampZoom(zoom float64) float64 {
	if zoom < c.minZoom {
		return c.minZoom
	}
	if zoom > c.maxZoom {
		return c.maxZoom
	}
	return zoom
}

// focal returns the projection factor in screen units per world unit at depth 1
func (c *Camera) focal() float64 {
	return (c.height / 2) / math.Tan(c.fov/2) * c.zoom
}

// Project maps a world position to screen coordinates (origin top-left,
// Y down). ok is false for points behind the near plane.
func (c *Camera) Project(p r3.Vec) (screen r2.Vec, depth float64, ok bool) {
	depth = c.distance - p.Z
	if depth < Near {
		return r2.Vec{}, depth, false
	}
	f := c.focal() / depth
	return r2.Vec{
		X: c.width/2 + p.X*f,
		Y: c.height/2 - p.Y*f,
	}, depth, true
}

// ProjectedRadius returns the on-screen radius of a sphere at p
func (c *Camera) ProjectedRadius(p r3.Vec, radius float64) float64 {
	depth := c.distance - p.Z
	if depth < Near {
		return 0
	}
	return radius * c.focal() / depth
}

// ScreenToPlane maps a screen point back onto the z=0 plane
func (c *Camera) ScreenToPlane(screen r2.Vec) r2.Vec {
	f := c.focal() / c.distance
	return r2.Vec{
		X: (screen.X - c.width/2) / f,
		Y: -(screen.Y - c.height/2) / f,
	}
}
