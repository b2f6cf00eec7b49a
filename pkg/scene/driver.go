// Package scene ties the layout controller to time, the viewport, the camera
// and a renderer. One Driver runs one scene; Tick is its frame loop body.
package scene

import (
	"context"
	"errors"
	"fmt"
	"image"
	"sync"
	"time"

	"gonum.org/v1/gonum/spatial/r2"
	"gonum.org/v1/gonum/spatial/r3"

	"github.com/opd-ai/go-universo/pkg/assets"
	"github.com/opd-ai/go-universo/pkg/body"
	"github.com/opd-ai/go-universo/pkg/camera"
	"github.com/opd-ai/go-universo/pkg/config"
	"github.com/opd-ai/go-universo/pkg/engine"
	"github.com/opd-ai/go-universo/pkg/event"
	"github.com/opd-ai/go-universo/pkg/label"
	"github.com/opd-ai/go-universo/pkg/logging"
	"github.com/opd-ai/go-universo/pkg/physics"
	"github.com/opd-ai/go-universo/pkg/random"
	"github.com/opd-ai/go-universo/pkg/starfield"
	"github.com/opd-ai/go-universo/pkg/viewport"
)

// PanelFraction is the share of the viewport width covered by the detail
// panel when it is open
const PanelFraction = 0.3

// warp camera of the loading overlay
const (
	warpFOV      = 75
	warpDistance = 5
)

// Layout is the part of the controller the driver uses
type Layout interface {
	Advance(now time.Duration) engine.Frame
	RequestReset(now time.Duration)
	RequestModeSwitch(constrained bool, now time.Duration)
	SetSwarm(enabled bool)
	SetScale(scale float64)
	SetHover(id body.ID, hovered bool) error
	SetFocus(id body.ID, focused bool) error
	SetPanel(open bool, boundaryX float64)
	SetRotationPaused(paused bool)
	Mode() engine.Mode
	Registry() *body.Registry
}

// Options are the driver's collaborators. Zero values get defaults.
type Options struct {
	Clock    Clock
	Renderer Renderer
	// Bus handlers run synchronously inside Tick and Resize and must not
	// call back into the Driver
	Bus    *event.Bus
	Logger *logging.Logger
	Rand   random.Source
	// Layout replaces the controller built from the configuration
	Layout Layout
}

// Driver runs the frame loop
type Driver struct {
	cfg      *config.SceneConfig
	clock    Clock
	layout   Layout
	view     *viewport.Manager
	renderer Renderer
	bus      *event.Bus
	logger   *logging.Logger
	limiter  *logging.RateLimiter

	mu       sync.Mutex
	cam      *camera.Camera
	warpCam  *camera.Camera
	loading  *Loading
	stars    []r3.Vec
	warp     *starfield.Warp
	tooltip  *label.Typewriter
	textures map[body.ID]image.Image
	model    *assets.Model

	emblemRotation float64
	emblemScale    float64
	frame          engine.Frame
	ticks          uint64
	dropped        uint64

	pointer    r2.Vec
	hasPointer bool
	hovered    body.ID
	focused    body.ID
	swarm      bool
	panelOpen  bool
}

// New validates the configuration and assembles a scene at the clock's
// current time, framed for the fallback viewport until the first Resize.
func New(cfg *config.SceneConfig, opts Options) (*Driver, error) {
	if cfg == nil {
		cfg = config.DefaultConfig()
	}
	if err := cfg.Validate(); err != nil {
		return nil, logging.WrapError(err, "invalid scene config")
	}

	if opts.Clock == nil {
		opts.Clock = NewSystemClock()
	}
	if opts.Renderer == nil {
		return nil, errors.New("scene needs a renderer")
	}
	if opts.Logger == nil {
		opts.Logger = logging.Discard()
	}
	if opts.Rand == nil {
		if cfg.Seed != 0 {
			opts.Rand = random.New(cfg.Seed)
		} else {
			opts.Rand = random.NewFromTime()
		}
	}
	if opts.Layout == nil {
		reg, err := engine.NewRegistry(cfg, opts.Rand)
		if err != nil {
			return nil, logging.WrapError(err, "build bodies")
		}
		ctrl, err := engine.New(engine.ConfigFromScene(cfg), reg, opts.Rand, opts.Bus, opts.Logger)
		if err != nil {
			return nil, err
		}
		opts.Layout = ctrl
	}

	view := viewport.New(cfg.Viewport, cfg.Emblem.BaseScale, opts.Bus, opts.Logger)
	vc := cfg.Viewport
	current := view.Current()
	cam := camera.New(vc.FieldOfView, current.CameraDistance, cfg.FPS, vc.CameraStiffness, vc.CameraDamping)
	cam.SetViewport(current.Width, current.Height)
	warpCam := camera.New(warpFOV, warpDistance, cfg.FPS, vc.CameraStiffness, vc.CameraDamping)
	warpCam.SetViewport(current.Width, current.Height)

	now := opts.Clock.Now()
	d := &Driver{
		cfg:         cfg,
		clock:       opts.Clock,
		layout:      opts.Layout,
		view:        view,
		renderer:    opts.Renderer,
		bus:         opts.Bus,
		logger:      opts.Logger.WithComponent("scene"),
		limiter:     logging.NewRateLimiter(1, time.Second),
		cam:         cam,
		warpCam:     warpCam,
		loading:     NewLoading(cfg.Loading, now),
		stars:       starfield.Backdrop(cfg.Starfield, opts.Rand),
		warp:        starfield.NewWarp(cfg.Starfield.Warp, opts.Rand),
		tooltip:     label.NewTypewriter(label.DefaultInterval),
		textures:    make(map[body.ID]image.Image),
		emblemScale: current.EmblemScale,
		swarm:       cfg.Swarm,
	}
	d.layout.SetScale(current.Scale)
	d.frame = d.layout.Advance(now)
	return d, nil
}

// Tick runs one frame at now: loading overlay, emblem, layout, camera and
// render. A panicking layout step keeps the previous frame on screen.
func (d *Driver) Tick(now time.Duration) error {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.ticks++

	d.updateLoading(now)
	d.emblemRotation = physics.WrapAngle(d.emblemRotation + d.cfg.Emblem.RotationSpeed)
	if d.warp != nil {
		d.warp.Step()
	}
	d.updateHover(now)

	if frame, err := d.advance(now); err != nil {
		d.dropped++
		d.bus.Publish(event.NewFrameEvent(d, d.ticks, err.Error()))
		if d.limiter.Allow("frame_dropped", now) {
			d.logger.Error(context.Background(), "layout tick failed, keeping previous frame", err,
				"tick", d.ticks, "dropped", d.dropped)
		}
	} else {
		d.frame = frame
	}

	d.cam.Update()
	return d.render(now)
}

func (d *Driver) advance(now time.Duration) (frame engine.Frame, err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("layout panic: %v", r)
		}
	}()
	return d.layout.Advance(now), nil
}

func (d *Driver) updateLoading(now time.Duration) {
	started, finished := d.loading.Update(now)
	if started {
		d.logger.Info(context.Background(), "loading fade started", "model", d.model != nil)
		d.bus.Publish(&event.BaseEvent{EventType: event.LoadingFadeStarted, Source: d})
	}
	if finished {
		// the warp is only ever drawn behind the overlay
		d.warp = nil
		d.bus.Publish(&event.BaseEvent{EventType: event.LoadingFinished, Source: d})
	}
}

// updateHover hit-tests the pointer against the last frame, brakes the body
// under it and drives the tooltip
func (d *Driver) updateHover(now time.Duration) {
	var hit body.ID
	var anchor r2.Vec
	if d.hasPointer {
		if id, ok := d.hitTest(d.pointer); ok {
			hit = id
			anchor, _, _ = d.cam.Project(d.frame.Transforms[id].Position)
		}
	}

	if hit != d.hovered {
		if d.hovered != 0 {
			d.layout.SetHover(d.hovered, false)
		}
		if hit != 0 {
			d.layout.SetHover(hit, true)
		}
		d.hovered = hit
	}

	if hit == 0 {
		d.tooltip.Hide()
		return
	}
	if b, err := d.layout.Registry().Get(hit); err == nil {
		d.tooltip.Start(b.Name, now)
	}
	d.tooltip.MoveTo(anchor)
	d.tooltip.Update(now)
}

func (d *Driver) render(now time.Duration) error {
	r := d.renderer
	r.Clear()

	stars := StarsView{
		Camera:         d.cam,
		Backdrop:       d.stars,
		OverlayOpacity: d.loading.OverlayOpacity(now),
	}
	if d.warp != nil {
		stars.Warp = d.warp
		stars.WarpCamera = d.warpCam
	}
	r.RenderStars(stars)

	r.RenderEmblem(EmblemView{
		Camera:   d.cam,
		Model:    d.model,
		Rotation: d.emblemRotation,
		Scale:    d.emblemScale,
		Opacity:  d.loading.EmblemOpacity(now),
	})

	for _, b := range d.layout.Registry().Bodies() {
		r.RenderBody(d.bodyView(b))
	}

	r.RenderTooltip(TooltipView{
		Text:    d.tooltip.Text(),
		Anchor:  d.tooltip.Anchor(),
		Visible: d.tooltip.Visible(),
	})
	return r.Present()
}

func (d *Driver) bodyView(b *body.Body) BodyView {
	tr := d.frame.Transforms[b.ID]
	v := BodyView{
		ID:           b.ID,
		Name:         b.Name,
		Texture:      d.textures[b.ID],
		Transform:    tr,
		Size:         b.Size,
		LabelOpacity: d.frame.LabelOpacity[b.ID],
		Hovered:      b.ID == d.hovered,
		Focused:      b.ID == d.focused,
	}
	v.Screen, v.Depth, v.Visible = d.cam.Project(tr.Position)
	if v.Visible {
		v.ScreenRadius = d.cam.ProjectedRadius(tr.Position, b.Size*tr.Scale)
	}
	return v
}

// Resize reports a new viewport measurement. The layout switches mode only
// when the measurement crosses the constrained threshold.
func (d *Driver) Resize(width, height float64, now time.Duration) viewport.Update {
	u := d.view.Resize(width, height)

	d.mu.Lock()
	defer d.mu.Unlock()
	d.layout.SetScale(u.Scale)
	if u.Flipped {
		d.layout.RequestModeSwitch(u.Constrained, now)
	}
	d.cam.SetViewport(u.Width, u.Height)
	d.cam.SetTargetDistance(u.CameraDistance)
	d.warpCam.SetViewport(u.Width, u.Height)
	d.emblemScale = u.EmblemScale
	if d.panelOpen {
		d.layout.SetPanel(true, d.panelBoundary())
	}
	return u
}

// HitTest returns the body drawn at a screen point. Where discs overlap the
// body closest to the camera wins.
func (d *Driver) HitTest(x, y float64) (body.ID, bool) {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.hitTest(r2.Vec{X: x, Y: y})
}

func (d *Driver) hitTest(p r2.Vec) (body.ID, bool) {
	var best body.ID
	bestDepth := 0.0
	for _, b := range d.layout.Registry().Bodies() {
		tr, ok := d.frame.Transforms[b.ID]
		if !ok {
			continue
		}
		screen, depth, visible := d.cam.Project(tr.Position)
		if !visible {
			continue
		}
		disc := physics.Circle{Center: screen, Radius: d.cam.ProjectedRadius(tr.Position, b.Size*tr.Scale)}
		if disc.Contains(p) && (best == 0 || depth < bestDepth) {
			best, bestDepth = b.ID, depth
		}
	}
	return best, best != 0
}

// PointerMove records the pointer position; hover is resolved on the next tick
func (d *Driver) PointerMove(x, y float64) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.pointer = r2.Vec{X: x, Y: y}
	d.hasPointer = true
}

// PointerLeave forgets the pointer, releasing any hovered body
func (d *Driver) PointerLeave() {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.hasPointer = false
}

// Click selects the body under the point and opens the detail panel. It
// reports the selected body.
func (d *Driver) Click(x, y float64) (body.ID, bool) {
	d.mu.Lock()
	defer d.mu.Unlock()
	id, ok := d.hitTest(r2.Vec{X: x, Y: y})
	if !ok {
		return 0, false
	}
	if d.focused != 0 && d.focused != id {
		d.layout.SetFocus(d.focused, false)
	}
	d.layout.SetFocus(id, true)
	d.focused = id
	d.panelOpen = true
	d.layout.SetPanel(true, d.panelBoundary())
	return id, true
}

// ClosePanel closes the detail panel and releases the selected body
func (d *Driver) ClosePanel() {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.closePanel()
}

func (d *Driver) closePanel() {
	if d.focused != 0 {
		d.layout.SetFocus(d.focused, false)
		d.focused = 0
	}
	d.panelOpen = false
	d.layout.SetPanel(false, 0)
}

// panelBoundary is the panel's left edge on the z=0 plane
func (d *Driver) panelBoundary() float64 {
	w, _ := d.cam.Viewport()
	return d.cam.ScreenToPlane(r2.Vec{X: w * (1 - PanelFraction)}).X
}

// Reset re-randomises the layout and closes the panel
func (d *Driver) Reset(now time.Duration) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.closePanel()
	d.layout.RequestReset(now)
}

// ToggleSwarm flips the desktop layout between orbit and swarm
func (d *Driver) ToggleSwarm() bool {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.swarm = !d.swarm
	d.layout.SetSwarm(d.swarm)
	return d.swarm
}

// ZoomBy multiplies the user zoom by factor within the camera's limits and
// returns the new zoom. The panel boundary follows the new projection.
func (d *Driver) ZoomBy(factor float64) float64 {
	d.mu.Lock()
	defer d.mu.Unlock()
	if factor > 0 {
		d.cam.SetZoom(d.cam.Zoom() * factor)
	}
	if d.panelOpen {
		d.layout.SetPanel(true, d.panelBoundary())
	}
	return d.cam.Zoom()
}

// SetRotationPaused holds the constrained formation in place
func (d *Driver) SetRotationPaused(paused bool) {
	d.layout.SetRotationPaused(paused)
}

// LoadAssets fetches the emblem model and the body textures through l and
// feeds the loading overlay. It blocks; run it on its own goroutine.
func (d *Driver) LoadAssets(ctx context.Context, l assets.Loader) {
	model, err := l.LoadModel(ctx, d.cfg.Emblem.Model)
	now := d.clock.Now()

	d.mu.Lock()
	if err != nil {
		d.logger.Warn(ctx, "emblem model unavailable, continuing without it", "error", err)
		d.loading.ModelFailed(now)
	} else {
		d.model = model
		d.loading.ModelLoaded(now)
	}
	bodies := d.layout.Registry().Bodies()
	d.mu.Unlock()

	paths := make([]string, len(bodies))
	for i, b := range bodies {
		paths[i] = b.Texture
	}
	textures := assets.LoadTextures(ctx, l, paths, d.logger)

	d.mu.Lock()
	defer d.mu.Unlock()
	for i, b := range bodies {
		d.textures[b.ID] = textures[i]
	}
}

// Run ticks the scene from a scheduler until ctx is done
func (d *Driver) Run(ctx context.Context, s Scheduler) error {
	s.OnFrame(func() {
		now := d.clock.Now()
		if err := d.Tick(now); err != nil && d.limiter.Allow("present", now) {
			d.logger.Error(ctx, "render failed", err)
		}
	})
	s.OnResize(func(w, h float64) {
		d.Resize(w, h, d.clock.Now())
	})
	d.logger.Info(ctx, "scene running", "fps", d.cfg.FPS)
	return s.Start(ctx)
}

// Frame returns the last rendered layout frame
func (d *Driver) Frame() engine.Frame {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.frame
}

// Mode returns the layout mode
func (d *Driver) Mode() engine.Mode {
	return d.layout.Mode()
}

// LoadingState returns the overlay stage
func (d *Driver) LoadingState() LoadingState {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.loading.State()
}

// EmblemRotation returns the emblem's current rotation in radians
func (d *Driver) EmblemRotation() float64 {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.emblemRotation
}

// Dropped counts frames that kept the previous layout after a failure
func (d *Driver) Dropped() uint64 {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.dropped
}

// Tooltip returns the visible tooltip text
func (d *Driver) Tooltip() string {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.tooltip.Text()
}
