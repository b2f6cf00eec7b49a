// pkg/body/registry.go
package body

import (
	"errors"
	"fmt"
	"math"

	"github.com/opd-ai/go-universo/pkg/random"
)

// ErrNoBodies is returned when a registry would be created empty
var ErrNoBodies = errors.New("body registry requires at least one body")

// ErrUnknownBody is returned for lookups of ids outside the registry
var ErrUnknownBody = errors.New("unknown body")

// Spec describes one body at creation time
type Spec struct {
	ID             ID
	Name           string
	Texture        string
	SizeHint       float64
	OriginalRadius float64
	BaseSpeed      float64
}

// Sizing controls the randomised visual size: (Min + u*Jitter) * SizeHint
type Sizing struct {
	Min    float64
	Jitter float64
}

// Registry holds the fixed, ordered collection of bodies. Its length and
// ordering never change after creation.
type Registry struct {
	bodies []*Body
	byID   map[ID]*Body
}

// NewRegistry creates every body once with a seeded initial angle and size
func NewRegistry(specs []Spec, sizing Sizing, rng random.Source) (*Registry, error) {
	if len(specs) == 0 {
		return nil, ErrNoBodies
	}

	r := &Registry{
		bodies: make([]*Body, 0, len(specs)),
		byID:   make(map[ID]*Body, len(specs)),
	}

	for i, spec := range specs {
		if spec.ID <= 0 {
			return nil, fmt.Errorf("body %d: id must be positive, got %d", i, spec.ID)
		}
		if _, dup := r.byID[spec.ID]; dup {
			return nil, fmt.Errorf("body %d: duplicate id %d", i, spec.ID)
		}
		if spec.OriginalRadius <= 0 {
			return nil, fmt.Errorf("body %d: radius must be positive, got %v", spec.ID, spec.OriginalRadius)
		}

		size := (sizing.Min + rng.Float64()*sizing.Jitter) * spec.SizeHint
		b := &Body{
			ID:             spec.ID,
			Name:           spec.Name,
			Texture:        spec.Texture,
			Size:           size,
			MinSeparation:  size,
			Angle:          rng.Float64() * 2 * math.Pi,
			BaseSpeed:      spec.BaseSpeed,
			Speed:          spec.BaseSpeed,
			Radius:         spec.OriginalRadius,
			originalRadius: spec.OriginalRadius,
			Scale:          1,
		}
		r.bodies = append(r.bodies, b)
		r.byID[b.ID] = b
	}

	return r, nil
}

// Len returns the number of bodies
func (r *Registry) Len() int {
	return len(r.bodies)
}

// Bodies returns the bodies in creation order. The slice must not be resized.
func (r *Registry) Bodies() []*Body {
	return r.bodies
}

// Get returns the body with the given id
func (r *Registry) Get(id ID) (*Body, error) {
	b, ok := r.byID[id]
	if !ok {
		return nil, fmt.Errorf("%w: %d", ErrUnknownBody, id)
	}
	return b, nil
}

// Index returns the creation index of id, or -1
func (r *Registry) Index(id ID) int {
	for i, b := range r.bodies {
		if b.ID == id {
			return i
		}
	}
	return -1
}

// ApplyScale recomputes every effective radius from the immutable original
func (r *Registry) ApplyScale(factor float64) {
	for _, b := range r.bodies {
		b.Radius = b.originalRadius * factor
	}
}

// Angles copies the current angles in creation order
func (r *Registry) Angles() []float64 {
	out := make([]float64, len(r.bodies))
	for i, b := range r.bodies {
		out[i] = b.Angle
	}
	return out
}
