// pkg/engine/staged.go
package engine

import (
	"math"
	"time"

	"gonum.org/v1/gonum/spatial/r3"

	"github.com/opd-ai/go-universo/pkg/easing"
	"github.com/opd-ai/go-universo/pkg/layout"
	"github.com/opd-ai/go-universo/pkg/physics"
)

func (c *Controller) queueSlots(q layout.Queues) []r3.Vec {
	return q.Slots(c.reg.Len(), c.cfg.QueueOffsetX*c.scale, c.cfg.QueueSpacing*c.scale)
}

func (c *Controller) ringRadius() float64 {
	return c.cfg.FormationRadius * c.scale
}

func (c *Controller) labelSnapshot() []float64 {
	return append([]float64(nil), c.labels...)
}

// stagedIntroState is the constrained entrance: bodies line up in two
// queues, then spread onto the circular formation
type stagedIntroState struct {
	ph         Phase
	phaseStart time.Duration
	from       []r3.Vec
	fromLabels []float64
	queues     layout.Queues
}

func (c *Controller) newStagedIntro(now time.Duration) *stagedIntroState {
	return &stagedIntroState{
		ph:         PhaseQueue,
		phaseStart: now,
		from:       c.positions(),
		fromLabels: c.labelSnapshot(),
		queues:     layout.Split(c.reg.Len(), c.rng),
	}
}

func (s *stagedIntroState) mode() Mode      { return StagedIntro }
func (s *stagedIntroState) phase() Phase    { return s.ph }
func (s *stagedIntroState) transient() bool { return true }

func (s *stagedIntroState) advance(c *Controller, now time.Duration) state {
	next := s.place(c, now)
	c.spin()
	return next
}

func (s *stagedIntroState) place(c *Controller, now time.Duration) state {
	bodies := c.reg.Bodies()

	if s.ph == PhaseQueue {
		p := easing.Progress(now, s.phaseStart, c.cfg.Queue)
		e := easing.Cosine(p)
		slots := c.queueSlots(s.queues)
		for i, b := range bodies {
			b.Position = layout.Lerp(s.from[i], slots[i], e)
			if p >= 1 {
				b.Position = slots[i]
			}
			b.Scale = 1
			c.labels[i] = s.fromLabels[i] * (1 - p)
		}
		if p < 1 {
			return s
		}
		return &stagedIntroState{
			ph:         PhaseFormation,
			phaseStart: s.phaseStart + c.cfg.Queue,
			from:       slots,
			queues:     s.queues,
		}
	}

	p := easing.Progress(now, s.phaseStart, c.cfg.Formation)
	e := easing.Cosine(p)
	order := s.queues.Order(len(bodies))
	radius := c.ringRadius()
	for i, b := range bodies {
		target := layout.Ring(order[i], len(bodies), radius, c.ringRotation)
		if p >= 1 {
			b.Position = target
			b.Scale = 1
		} else {
			b.Position = layout.Lerp(s.from[i], target, e)
			b.Scale = 1 - c.cfg.ZoomDip*math.Sin(math.Pi*p)
		}
		c.labels[i] = p
	}
	if p < 1 {
		return s
	}
	c.ringOrder = order
	return &idleCircularState{start: s.phaseStart + c.cfg.Formation}
}

// stagedResetState re-randomises the constrained layout: the formation opens
// up, turns once, then collapses into fresh queues and hands over to the
// intro's formation phase
type stagedResetState struct {
	ph         Phase
	phaseStart time.Duration
	from       []r3.Vec
	fromLabels []float64
	rotation   float64
	order      []int
	// queues are drawn once, at the request
	queues layout.Queues
}

func (c *Controller) newStagedReset(now time.Duration) *stagedResetState {
	return &stagedResetState{
		ph:         PhaseOpen,
		phaseStart: now,
		from:       c.positions(),
		fromLabels: c.labelSnapshot(),
		rotation:   c.ringRotation,
		order:      append([]int(nil), c.ringOrder...),
		queues:     layout.Split(c.reg.Len(), c.rng),
	}
}

func (s *stagedResetState) mode() Mode      { return StagedReset }
func (s *stagedResetState) phase() Phase    { return s.ph }
func (s *stagedResetState) transient() bool { return true }

func (s *stagedResetState) advance(c *Controller, now time.Duration) state {
	next := s.place(c, now)
	c.spin()
	return next
}

func (s *stagedResetState) place(c *Controller, now time.Duration) state {
	bodies := c.reg.Bodies()
	n := len(bodies)
	open := c.ringRadius() * c.cfg.OpenFactor

	switch s.ph {
	case PhaseOpen:
		p := easing.Progress(now, s.phaseStart, c.cfg.Open)
		e := easing.Cosine(p)
		for i, b := range bodies {
			target := layout.Ring(s.order[i], n, open, s.rotation)
			b.Position = layout.Lerp(s.from[i], target, e)
			if p >= 1 {
				b.Position = target
			}
			b.Scale = 1
			c.labels[i] = s.fromLabels[i] * (1 - p)
		}
		if p < 1 {
			return s
		}
		next := *s
		next.ph = PhaseRotate
		next.phaseStart = s.phaseStart + c.cfg.Open
		return &next

	case PhaseRotate:
		p := easing.Progress(now, s.phaseStart, c.cfg.Rotate)
		rot := s.rotation + physics.TwoPi*easing.InOutCubic(p)
		if p >= 1 {
			rot = s.rotation
		}
		for i, b := range bodies {
			b.Position = layout.Ring(s.order[i], n, open, rot)
			b.Scale = 1
			c.labels[i] = 0
		}
		if p < 1 {
			return s
		}
		next := *s
		next.ph = PhaseReturn
		next.phaseStart = s.phaseStart + c.cfg.Rotate
		next.from = c.positions()
		return &next

	default:
		p := easing.Progress(now, s.phaseStart, c.cfg.Return)
		e := easing.OutQuint(p)
		slots := c.queueSlots(s.queues)
		for i, b := range bodies {
			b.Position = layout.Lerp(s.from[i], slots[i], e)
			if p >= 1 {
				b.Position = slots[i]
			}
			b.Scale = 1
			c.labels[i] = 0
		}
		if p < 1 {
			return s
		}
		return &stagedIntroState{
			ph:         PhaseFormation,
			phaseStart: s.phaseStart + c.cfg.Return,
			from:       slots,
			queues:     s.queues,
		}
	}
}

// idleCircularState is the constrained steady state: the formation turns
// slowly as one rigid ring, optionally bobbing
type idleCircularState struct {
	start time.Duration
	// blend eases a mode switch into the ring; nil when arriving from the intro
	blend *blend
}

func (s *idleCircularState) mode() Mode      { return IdleCircular }
func (s *idleCircularState) phase() Phase    { return PhaseNone }
func (s *idleCircularState) transient() bool { return false }

func (s *idleCircularState) advance(c *Controller, now time.Duration) state {
	if !c.rotationHeld() {
		c.ringRotation = physics.WrapAngle(c.ringRotation + c.cfg.IdleRate)
	}
	s.place(c, now)
	c.spin()
	return s
}

func (s *idleCircularState) place(c *Controller, now time.Duration) state {
	secs := (now - s.start).Seconds()
	amplitude := 0.0
	if c.cfg.Bobbing {
		// bobbing fades in so the ring does not jump when it settles
		amplitude = c.cfg.BobAmplitude * math.Min(1, secs)
	}
	e, blending := s.blend.at(now)

	bodies := c.reg.Bodies()
	radius := c.ringRadius()
	for i, b := range bodies {
		p := layout.Ring(c.ringOrder[i], len(bodies), radius, c.ringRotation)
		p.Y += layout.Bob(secs, i, amplitude, c.cfg.BobFrequency)
		c.labels[i] = 1
		if blending {
			p = s.blend.position(i, p, e)
			c.labels[i] = s.blend.label(i, 1, e)
		}
		b.Position = p
		b.Scale = 1
	}
	return s
}
