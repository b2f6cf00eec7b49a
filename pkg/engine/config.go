// pkg/engine/config.go
package engine

import (
	"errors"
	"fmt"
	"time"

	"github.com/opd-ai/go-universo/pkg/body"
	"github.com/opd-ai/go-universo/pkg/config"
	"github.com/opd-ai/go-universo/pkg/layout"
	"github.com/opd-ai/go-universo/pkg/random"
)

// ErrInvalidDuration is returned when an authored duration is not positive
var ErrInvalidDuration = errors.New("transition duration must be positive")

// Config holds the authored constants of the controller. They are fixed at
// construction; nothing changes them while the scene runs.
type Config struct {
	Orbit layout.Orbit

	SpeedSmoothing       float64
	HoverBrake           float64
	MinAngularSeparation float64
	AngularPush          float64
	SwarmDamping         float64
	OffsetRelax          float64
	SelfSpin             float64
	PanelMargin          float64
	Swarm                bool

	Reset     time.Duration
	Queue     time.Duration
	Formation time.Duration
	Open      time.Duration
	Rotate    time.Duration
	Return    time.Duration
	// Blend softens the jump back to the desktop orbit after a mode switch
	Blend time.Duration

	QueueOffsetX    float64
	QueueSpacing    float64
	FormationRadius float64
	OpenFactor      float64
	ZoomDip         float64
	IdleRate        float64
	Bobbing         bool
	BobAmplitude    float64
	BobFrequency    float64
}

// ConfigFromScene extracts the controller settings from a scene configuration
func ConfigFromScene(sc *config.SceneConfig) Config {
	o, t, s := sc.Orbit, sc.Timing, sc.Staged
	return Config{
		Orbit:                layout.Orbit{FlattenY: o.FlattenY, FlattenZ: o.FlattenZ},
		SpeedSmoothing:       o.SpeedSmoothing,
		HoverBrake:           o.HoverBrake,
		MinAngularSeparation: o.MinAngularSeparation,
		AngularPush:          o.AngularPush,
		SwarmDamping:         o.SwarmDamping,
		OffsetRelax:          o.OffsetRelax,
		SelfSpin:             o.SelfSpin,
		PanelMargin:          o.PanelMargin,
		Swarm:                sc.Swarm,
		Reset:                t.Reset.Duration,
		Queue:                t.Queue.Duration,
		Formation:            t.Formation.Duration,
		Open:                 t.Open.Duration,
		Rotate:               t.Rotate.Duration,
		Return:               t.Return.Duration,
		Blend:                t.Return.Duration,
		QueueOffsetX:         s.QueueOffsetX,
		QueueSpacing:         s.QueueSpacing,
		FormationRadius:      s.FormationRadius,
		OpenFactor:           s.OpenFactor,
		ZoomDip:              s.ZoomDip,
		IdleRate:             s.IdleRate,
		Bobbing:              s.Bobbing,
		BobAmplitude:         s.BobAmplitude,
		BobFrequency:         s.BobFrequency,
	}
}

// DefaultConfig returns the controller settings of the default scene
func DefaultConfig() Config {
	return ConfigFromScene(config.DefaultConfig())
}

func (c Config) validate() error {
	durations := []struct {
		name string
		d    time.Duration
	}{
		{"reset", c.Reset},
		{"queue", c.Queue},
		{"formation", c.Formation},
		{"open", c.Open},
		{"rotate", c.Rotate},
		{"return", c.Return},
		{"blend", c.Blend},
	}
	for _, d := range durations {
		if d.d <= 0 {
			return fmt.Errorf("%w: %s is %v", ErrInvalidDuration, d.name, d.d)
		}
	}
	if c.FormationRadius <= 0 {
		return fmt.Errorf("formation radius must be positive, got %v", c.FormationRadius)
	}
	if c.QueueSpacing <= 0 {
		return fmt.Errorf("queue spacing must be positive, got %v", c.QueueSpacing)
	}
	return nil
}

// NewRegistry builds the body registry described by a scene configuration.
// Body i gets radius (BaseRadius + i*RadiusStep) * RadiusFactor and base
// speed BaseSpeed + i*SpeedStep, so speeds increase strictly by index.
func NewRegistry(sc *config.SceneConfig, rng random.Source) (*body.Registry, error) {
	if len(sc.Bodies) == 0 {
		return nil, body.ErrNoBodies
	}
	o := sc.Orbit
	specs := make([]body.Spec, len(sc.Bodies))
	for i, bc := range sc.Bodies {
		specs[i] = body.Spec{
			ID:             body.ID(i + 1),
			Name:           bc.Name,
			Texture:        bc.Texture,
			SizeHint:       bc.SizeHint,
			OriginalRadius: (o.BaseRadius + float64(i)*o.RadiusStep) * o.RadiusFactor,
			BaseSpeed:      o.BaseSpeed + float64(i)*o.SpeedStep,
		}
	}
	return body.NewRegistry(specs, body.Sizing{Min: o.MinSize, Jitter: o.SizeJitter}, rng)
}
