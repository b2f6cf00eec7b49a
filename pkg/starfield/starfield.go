// Package starfield generates the static backdrop stars and the warp layers
// animated behind the loading overlay.
package starfield

import (
	"math"

	"gonum.org/v1/gonum/spatial/r3"

	"github.com/opd-ai/go-universo/pkg/config"
	"github.com/opd-ai/go-universo/pkg/random"
)

const (
	// WrapZ is the depth past which a warp point is recycled
	WrapZ = 5.0
	// FarZ is where recycled warp points restart, minus up to FarJitter
	FarZ      = -200.0
	FarJitter = 50.0
)

// Backdrop scatters count stars on a thick ring around the view axis. Radii
// lie in [minRadius, 3*minRadius) and depths in [-depth/2, depth/2).
func Backdrop(cfg config.StarfieldConfig, rng random.Source) []r3.Vec {
	stars := make([]r3.Vec, cfg.Count)
	for i := range stars {
		radius := (rng.Float64() + 0.5) * 2 * cfg.MinRadius
		s, c := math.Sincos(rng.Float64() * 2 * math.Pi)
		stars[i] = r3.Vec{
			X: c * radius,
			Y: s * radius,
			Z: (rng.Float64() - 0.5) * cfg.Depth,
		}
	}
	return stars
}

// Layer is one warp layer: points streaming towards the camera at their own
// speed, recycled to the far end once they pass it.
type Layer struct {
	Color  string
	Size   float64
	Points []r3.Vec

	speeds []float64
	rng    random.Source
}

// NewLayer places the layer's points. Radii follow sqrt(u)*MaxRadius so the
// disc is filled evenly; anything inside MinRadius is redrawn uniformly
// between the two radii to keep the centre clear.
func NewLayer(cfg config.WarpLayer, rng random.Source) *Layer {
	l := &Layer{
		Color:  cfg.Color,
		Size:   cfg.Size,
		Points: make([]r3.Vec, cfg.Count),
		speeds: make([]float64, cfg.Count),
		rng:    rng,
	}
	for i := range l.Points {
		radius := math.Sqrt(rng.Float64()) * cfg.MaxRadius
		if radius < cfg.MinRadius {
			radius = cfg.MinRadius + rng.Float64()*(cfg.MaxRadius-cfg.MinRadius)
		}
		s, c := math.Sincos(rng.Float64() * 2 * math.Pi)
		l.Points[i] = r3.Vec{X: c * radius, Y: s * radius, Z: -rng.Float64() * -FarZ}
		l.speeds[i] = (rng.Float64()*0.6 + 0.7) * cfg.Speed
	}
	return l
}

// Step advances every point by one tick
func (l *Layer) Step() {
	for i := range l.Points {
		l.Points[i].Z += l.speeds[i]
		if l.Points[i].Z > WrapZ {
			l.Points[i].Z = FarZ - l.rng.Float64()*FarJitter
		}
	}
}

// Speed returns the per-tick speed of point i
func (l *Layer) Speed(i int) float64 {
	return l.speeds[i]
}

// Warp is the full loading animation
type Warp struct {
	Layers []*Layer
}

// NewWarp builds every configured layer in order
func NewWarp(layers []config.WarpLayer, rng random.Source) *Warp {
	w := &Warp{Layers: make([]*Layer, len(layers))}
	for i, lc := range layers {
		w.Layers[i] = NewLayer(lc, rng)
	}
	return w
}

// Step advances all layers
func (w *Warp) Step() {
	for _, l := range w.Layers {
		l.Step()
	}
}

// Len is the total number of warp points
func (w *Warp) Len() int {
	n := 0
	for _, l := range w.Layers {
		n += len(l.Points)
	}
	return n
}
