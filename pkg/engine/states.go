// pkg/engine/states.go
package engine

import (
	"time"

	"gonum.org/v1/gonum/spatial/r3"

	"github.com/opd-ai/go-universo/pkg/easing"
	"github.com/opd-ai/go-universo/pkg/layout"
	"github.com/opd-ai/go-universo/pkg/physics"
	"github.com/opd-ai/go-universo/pkg/random"
)

// state is one variant of the layout state machine. advance runs one tick
// and returns the state for the next tick, which is the receiver itself
// until the state completes. place only writes the layout for now from the
// current kinematics; a phase that has already run out hands over the same
// way.
type state interface {
	mode() Mode
	phase() Phase
	// transient states run to completion on a progress ratio
	transient() bool
	advance(c *Controller, now time.Duration) state
	place(c *Controller, now time.Duration) state
}

// blend eases positions and label opacity from a snapshot into the live
// layout after a mode switch, so the layout change never pops
type blend struct {
	from   []r3.Vec
	labels []float64
	start  time.Duration
	dur    time.Duration
}

func (c *Controller) newBlend(now time.Duration) *blend {
	return &blend{
		from:   c.positions(),
		labels: c.labelSnapshot(),
		start:  now,
		dur:    c.cfg.Blend,
	}
}

// at returns the eased progress for now and whether the blend still runs
func (b *blend) at(now time.Duration) (float64, bool) {
	if b == nil {
		return 1, false
	}
	p := easing.Progress(now, b.start, b.dur)
	if p >= 1 {
		return 1, false
	}
	return easing.Cosine(p), true
}

func (b *blend) position(i int, target r3.Vec, e float64) r3.Vec {
	return layout.Lerp(b.from[i], target, e)
}

func (b *blend) label(i int, target, e float64) float64 {
	return b.labels[i] + (target-b.labels[i])*e
}

func (c *Controller) desktopState(b *blend) state {
	if c.swarm {
		return &swarmingState{blend: b}
	}
	return &orbitingState{blend: b}
}

// orbitKinematics smooths every speed towards its target and advances the
// angles. The angular repulsion pass only runs for the plain orbit.
func (c *Controller) orbitKinematics(repel bool) {
	bodies := c.reg.Bodies()
	for _, b := range bodies {
		b.SmoothSpeed(c.cfg.SpeedSmoothing, c.cfg.HoverBrake)
		b.Angle = physics.WrapAngle(b.Angle + b.Speed)
	}
	if !repel {
		return
	}
	angles := c.reg.Angles()
	if physics.RepelAngles(angles, c.cfg.MinAngularSeparation, c.cfg.AngularPush) > 0 {
		for i, b := range bodies {
			b.Angle = physics.WrapAngle(angles[i])
		}
	}
}

type orbitingState struct {
	blend *blend
}

func (s *orbitingState) mode() Mode      { return Orbiting }
func (s *orbitingState) phase() Phase    { return PhaseNone }
func (s *orbitingState) transient() bool { return false }

func (s *orbitingState) advance(c *Controller, now time.Duration) state {
	c.orbitKinematics(true)
	c.relaxOffsets()
	c.spin()
	return s.place(c, now)
}

func (s *orbitingState) place(c *Controller, now time.Duration) state {
	c.placeOrbit(s.blend, now)
	return s
}

type swarmingState struct {
	blend *blend
}

func (s *swarmingState) mode() Mode      { return Swarming }
func (s *swarmingState) phase() Phase    { return PhaseNone }
func (s *swarmingState) transient() bool { return false }

func (s *swarmingState) advance(c *Controller, now time.Duration) state {
	c.orbitKinematics(false)
	c.resolveOffsets()
	c.spin()
	return s.place(c, now)
}

func (s *swarmingState) place(c *Controller, now time.Duration) state {
	c.placeOrbit(s.blend, now)
	return s
}

// resettingState redistributes the angles as a cohort: one shared random
// shift, even spacing and a small per-body jitter. A mode switch blend still
// running at the request keeps running underneath.
type resettingState struct {
	start     time.Duration
	from      []float64
	targets   []float64
	baseShift float64
	blend     *blend
}

func (c *Controller) newResetting(now time.Duration) *resettingState {
	n := c.reg.Len()
	spacing := physics.TwoPi / float64(n)
	s := &resettingState{
		start:     now,
		from:      make([]float64, n),
		targets:   make([]float64, n),
		baseShift: c.rng.Float64() * physics.TwoPi,
		blend:     c.runningBlend(now),
	}
	for i, b := range c.reg.Bodies() {
		jitter := random.Symmetric(c.rng, 0.1*spacing)
		s.from[i] = physics.WrapAngle(b.Angle)
		s.targets[i] = physics.WrapAngle(s.baseShift + float64(i)*spacing + jitter)
	}
	return s
}

func (s *resettingState) mode() Mode      { return Resetting }
func (s *resettingState) phase() Phase    { return PhaseNone }
func (s *resettingState) transient() bool { return true }

func (s *resettingState) advance(c *Controller, now time.Duration) state {
	for _, b := range c.reg.Bodies() {
		b.SmoothSpeed(c.cfg.SpeedSmoothing, c.cfg.HoverBrake)
	}
	s.turn(c, now)
	c.resolveOffsets()
	c.spin()
	return s.place(c, now)
}

func (s *resettingState) place(c *Controller, now time.Duration) state {
	done := s.turn(c, now)
	c.placeOrbit(s.blend, now)
	if done {
		return c.desktopState(s.blend)
	}
	return s
}

// turn sets every angle for the reset progress at now; at the end the
// angles are committed to their exact targets
func (s *resettingState) turn(c *Controller, now time.Duration) bool {
	p := easing.Progress(now, s.start, c.cfg.Reset)
	e := easing.Cosine(p)
	for i, b := range c.reg.Bodies() {
		if p >= 1 {
			b.Angle = s.targets[i]
		} else {
			b.Angle = physics.WrapAngle(physics.LerpAngle(s.from[i], s.targets[i], e))
		}
	}
	return p >= 1
}

// runningBlend returns the desktop blend of the active state if it has not
// finished by now
func (c *Controller) runningBlend(now time.Duration) *blend {
	var b *blend
	switch s := c.state.(type) {
	case *orbitingState:
		b = s.blend
	case *swarmingState:
		b = s.blend
	case *resettingState:
		b = s.blend
	}
	if _, running := b.at(now); !running {
		return nil
	}
	return b
}
