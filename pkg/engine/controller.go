// pkg/engine/controller.go
package engine

import (
	"context"
	"fmt"
	"sync"
	"time"

	"gonum.org/v1/gonum/spatial/r2"
	"gonum.org/v1/gonum/spatial/r3"

	"github.com/opd-ai/go-universo/pkg/body"
	"github.com/opd-ai/go-universo/pkg/event"
	"github.com/opd-ai/go-universo/pkg/logging"
	"github.com/opd-ai/go-universo/pkg/physics"
	"github.com/opd-ai/go-universo/pkg/random"
)

// Transform is the per-body render output of one tick
type Transform struct {
	Position r3.Vec
	Scale    float64
	Rotation r3.Vec
}

// Frame is everything the renderer and label overlay need for one tick
type Frame struct {
	Transforms   map[body.ID]Transform
	LabelOpacity map[body.ID]float64
	Mode         Mode
	Phase        Phase
	Constrained  bool
	Tick         uint64
}

// Controller is the layout state machine. It owns the body registry while a
// tick runs; callers on other goroutines go through its setters.
type Controller struct {
	cfg      Config
	reg      *body.Registry
	rng      random.Source
	bus      *event.Bus
	logger   *logging.Logger
	resolver *physics.Resolver

	mu    sync.Mutex
	state state

	constrained     bool
	everConstrained bool
	swarm           bool
	scale           float64

	rotationPaused bool
	panelOpen      bool
	panelBoundary  float64

	// shared formation of the constrained layouts
	ringRotation float64
	ringOrder    []int

	labels  []float64
	tick    uint64
	lastNow time.Duration
	frame   Frame
	pending []event.Event
}

// New creates a controller in the desktop orbit. It fails fast on an empty
// registry or a non-positive duration.
func New(cfg Config, reg *body.Registry, rng random.Source, bus *event.Bus, logger *logging.Logger) (*Controller, error) {
	if reg == nil || reg.Len() == 0 {
		return nil, body.ErrNoBodies
	}
	if err := cfg.validate(); err != nil {
		return nil, logging.WrapError(err, "invalid controller config")
	}
	if rng == nil {
		rng = random.NewFromTime()
	}
	if logger == nil {
		logger = logging.Discard()
	}

	n := reg.Len()
	c := &Controller{
		cfg:       cfg,
		reg:       reg,
		rng:       rng,
		bus:       bus,
		logger:    logger.WithComponent("controller"),
		resolver:  physics.NewResolver(cfg.SwarmDamping),
		swarm:     cfg.Swarm,
		scale:     1,
		ringOrder: identity(n),
		labels:    make([]float64, n),
	}
	c.state = c.desktopState(nil)
	c.placeOrbit(nil, 0)
	c.frame = c.buildFrame()
	return c, nil
}

func identity(n int) []int {
	out := make([]int, n)
	for i := range out {
		out[i] = i
	}
	return out
}

// Advance runs one tick at now and returns the frame to render. Time never
// runs backwards: an earlier now is treated as the last one seen.
func (c *Controller) Advance(now time.Duration) Frame {
	frame, events := c.advance(now)
	c.publish(events)
	return frame
}

// advance releases the lock even if a layout step panics, so a driver that
// recovers can keep ticking
func (c *Controller) advance(now time.Duration) (Frame, []event.Event) {
	c.mu.Lock()
	defer c.mu.Unlock()
	frame := c.advanceLocked(now)
	return frame, c.takePending()
}

func (c *Controller) advanceLocked(now time.Duration) Frame {
	if now < c.lastNow {
		now = c.lastNow
	}
	c.lastNow = now
	c.tick++

	c.settle(c.state.advance(c, now), now)
	c.frame = c.buildFrame()
	return c.frame
}

// settle enters next and keeps handing over while the entered state has
// already run out by now, so a late tick lands where the timeline is
func (c *Controller) settle(next state, now time.Duration) {
	for next != c.state {
		c.enter(next, now)
		next = next.place(c, now)
	}
}

// enter switches state and queues the change events
func (c *Controller) enter(next state, now time.Duration) {
	prev := c.state
	c.state = next

	fromMode, toMode := prev.mode(), next.mode()
	fromPhase, toPhase := prev.phase(), next.phase()

	if fromMode != toMode {
		c.queue(event.NewModeEvent(event.ModeChanged, c, fromMode.String(), toMode.String(), fromPhase.String(), toPhase.String()))
		c.logger.Debug(context.Background(), "mode changed",
			"from", fromMode.String(), "to", toMode.String(), "phase", toPhase.String(), "at", now)
	} else if fromPhase != toPhase {
		c.queue(event.NewModeEvent(event.PhaseChanged, c, fromMode.String(), toMode.String(), fromPhase.String(), toPhase.String()))
	}
	if prev.transient() && !next.transient() {
		c.queue(event.NewModeEvent(event.TransitionCompleted, c, fromMode.String(), toMode.String(), fromPhase.String(), toPhase.String()))
	}
	if next.transient() && !prev.transient() {
		c.queue(event.NewModeEvent(event.TransitionStarted, c, fromMode.String(), toMode.String(), fromPhase.String(), toPhase.String()))
	}
}

// replace installs a state requested from outside the tick. Any in-flight
// transition is discarded and positions are recomputed immediately, without
// a kinematics step or a new tick.
func (c *Controller) replace(next state, now time.Duration) {
	if now < c.lastNow {
		now = c.lastNow
	}
	c.lastNow = now
	prev := c.state
	c.enter(next, now)
	if prev.transient() && next.transient() {
		// a cancelled transition restarts rather than completes
		c.queue(event.NewModeEvent(event.TransitionStarted, c, prev.mode().String(), next.mode().String(), prev.phase().String(), next.phase().String()))
	}
	c.settle(next.place(c, now), now)
	c.frame = c.buildFrame()
}

func (c *Controller) queue(e event.Event) {
	c.pending = append(c.pending, e)
}

func (c *Controller) takePending() []event.Event {
	events := c.pending
	c.pending = nil
	return events
}

// publish runs outside the lock so handlers may call back into the controller
func (c *Controller) publish(events []event.Event) {
	for _, e := range events {
		c.bus.Publish(e)
	}
}

// RequestReset re-randomises the layout: an angular redistribution on the
// desktop, the staged open/rotate/return sequence when constrained.
func (c *Controller) RequestReset(now time.Duration) {
	c.mu.Lock()
	c.queue(&event.BaseEvent{EventType: event.ResetRequested, Source: c})
	if c.constrained {
		c.replace(c.newStagedReset(now), now)
	} else {
		c.replace(c.newResetting(now), now)
	}
	events := c.takePending()
	c.mu.Unlock()

	c.logger.Info(context.Background(), "reset requested", "constrained", c.Constrained())
	c.publish(events)
}

// RequestModeSwitch selects the desktop or constrained layouts. Repeating the
// current mode is a no-op. The first constrained entry plays the staged
// intro; later entries go straight to the idle formation.
func (c *Controller) RequestModeSwitch(constrained bool, now time.Duration) {
	c.mu.Lock()
	if constrained == c.constrained {
		c.mu.Unlock()
		return
	}
	c.constrained = constrained

	var next state
	switch {
	case constrained && !c.everConstrained:
		c.everConstrained = true
		next = c.newStagedIntro(now)
	case constrained:
		next = &idleCircularState{start: now, blend: c.newBlend(now)}
	default:
		next = c.desktopState(c.newBlend(now))
	}
	c.replace(next, now)
	events := c.takePending()
	c.mu.Unlock()

	c.logger.Info(context.Background(), "mode switch", "constrained", constrained)
	c.publish(events)
}

// SetSwarm selects between the plain orbit and the collision-avoiding swarm
// for the desktop steady state.
func (c *Controller) SetSwarm(enabled bool) {
	c.mu.Lock()
	c.swarm = enabled
	var next state
	switch s := c.state.(type) {
	case *orbitingState:
		if enabled {
			next = &swarmingState{blend: s.blend}
		}
	case *swarmingState:
		if !enabled {
			next = &orbitingState{blend: s.blend}
		}
	}
	if next != nil {
		c.enter(next, c.lastNow)
	}
	events := c.takePending()
	c.mu.Unlock()

	c.publish(events)
}

// SetScale applies the viewport scale factor to every orbit radius and to
// the staged layouts
func (c *Controller) SetScale(scale float64) {
	if scale <= 0 {
		return
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	c.scale = scale
	c.reg.ApplyScale(scale)
}

// SetHover flags a body as hovered by the pointer
func (c *Controller) SetHover(id body.ID, hovered bool) error {
	return c.setFlag(id, hovered, event.BodyHovered, func(b *body.Body) *bool { return &b.Hovered })
}

// SetFocus flags a body as focused (selected or touched)
func (c *Controller) SetFocus(id body.ID, focused bool) error {
	return c.setFlag(id, focused, event.BodySelected, func(b *body.Body) *bool { return &b.Focused })
}

func (c *Controller) setFlag(id body.ID, v bool, t event.Type, field func(*body.Body) *bool) error {
	c.mu.Lock()
	b, err := c.reg.Get(id)
	if err != nil {
		c.mu.Unlock()
		return err
	}
	flag := field(b)
	changed := *flag != v
	*flag = v
	c.mu.Unlock()

	if changed {
		c.bus.Publish(event.NewBodyEvent(t, c, int(id), v))
	}
	return nil
}

// SetRotationPaused holds the idle formation rotation without losing it
func (c *Controller) SetRotationPaused(paused bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.rotationPaused = paused
}

// SetPanel records the detail panel state. boundaryX is the panel's left
// edge in world units; desktop bodies are kept to its left.
func (c *Controller) SetPanel(open bool, boundaryX float64) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.panelOpen = open
	c.panelBoundary = boundaryX
}

// BodyPosition returns the last computed position of a body
func (c *Controller) BodyPosition(id body.ID) (r3.Vec, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	b, err := c.reg.Get(id)
	if err != nil {
		return r3.Vec{}, false
	}
	return b.Position, true
}

// Mode returns the active mode
func (c *Controller) Mode() Mode {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.state.mode()
}

// Phase returns the active phase, PhaseNone outside the staged modes
func (c *Controller) Phase() Phase {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.state.phase()
}

// Constrained reports whether the constrained layouts are selected
func (c *Controller) Constrained() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.constrained
}

// Frame returns the output of the last tick
func (c *Controller) Frame() Frame {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.frame
}

// Registry exposes the bodies for read-only use outside a tick
func (c *Controller) Registry() *body.Registry {
	return c.reg
}

func (c *Controller) String() string {
	return fmt.Sprintf("controller(%s/%s)", c.state.mode(), c.state.phase())
}

// rotationHeld reports whether the idle formation must stand still
func (c *Controller) rotationHeld() bool {
	if c.rotationPaused || c.panelOpen {
		return true
	}
	for _, b := range c.reg.Bodies() {
		if b.Braked() {
			return true
		}
	}
	return false
}

func (c *Controller) positions() []r3.Vec {
	bodies := c.reg.Bodies()
	out := make([]r3.Vec, len(bodies))
	for i, b := range bodies {
		out[i] = b.Position
	}
	return out
}

func (c *Controller) buildFrame() Frame {
	bodies := c.reg.Bodies()
	f := Frame{
		Transforms:   make(map[body.ID]Transform, len(bodies)),
		LabelOpacity: make(map[body.ID]float64, len(bodies)),
		Mode:         c.state.mode(),
		Phase:        c.state.phase(),
		Constrained:  c.constrained,
		Tick:         c.tick,
	}
	for i, b := range bodies {
		f.Transforms[b.ID] = Transform{
			Position: b.Position,
			Scale:    b.Scale,
			Rotation: r3.Vec{Y: b.Spin},
		}
		f.LabelOpacity[b.ID] = c.labels[i]
	}
	return f
}

// spin advances every body's self rotation
func (c *Controller) spin() {
	for _, b := range c.reg.Bodies() {
		b.Spin = physics.WrapAngle(b.Spin + c.cfg.SelfSpin)
	}
}

// placeOrbit writes desktop positions from angle and radius plus the swarm
// offset, easing out of a running blend, and applies the panel clamp.
// Desktop labels are hidden once the blend is over.
func (c *Controller) placeOrbit(bl *blend, now time.Duration) {
	e, blending := bl.at(now)
	for i, b := range c.reg.Bodies() {
		p := c.cfg.Orbit.Position(b.Angle, b.Radius)
		p.X += b.Offset.X
		p.Y += b.Offset.Y
		c.labels[i] = 0
		if blending {
			p = bl.position(i, p, e)
			c.labels[i] = bl.label(i, 0, e)
		}
		if c.panelOpen {
			if limit := c.panelBoundary - c.cfg.PanelMargin; p.X > limit {
				p.X = limit
			}
		}
		b.Position = p
		b.Scale = 1
	}
}

// resolveOffsets runs one pass of the swarm resolver on the orbit
// footprints. Bodies with no overlap relax their offset back towards zero.
func (c *Controller) resolveOffsets() {
	bodies := c.reg.Bodies()
	footprints := make([]r2.Vec, len(bodies))
	minSep := make([]float64, len(bodies))
	for i, b := range bodies {
		base := c.cfg.Orbit.Position(b.Angle, b.Radius)
		footprints[i] = r2.Add(r2.Vec{X: base.X, Y: base.Y}, b.Offset)
		minSep[i] = b.MinSeparation
	}
	push := c.resolver.Resolve(footprints, minSep)
	overlap := physics.Overlapping(footprints, minSep)
	for i, b := range bodies {
		b.Offset = r2.Add(b.Offset, push[i])
		if !overlap[i] {
			b.Offset = r2.Scale(c.cfg.OffsetRelax, b.Offset)
		}
	}
}

// relaxOffsets fades swarm offsets out while the swarm is inactive
func (c *Controller) relaxOffsets() {
	for _, b := range c.reg.Bodies() {
		b.Offset = r2.Scale(c.cfg.OffsetRelax, b.Offset)
	}
}
