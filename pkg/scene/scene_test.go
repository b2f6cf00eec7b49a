package scene

import (
	"context"
	"errors"
	"image"
	"math"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/opd-ai/go-universo/pkg/assets"
	"github.com/opd-ai/go-universo/pkg/body"
	"github.com/opd-ai/go-universo/pkg/config"
	"github.com/opd-ai/go-universo/pkg/engine"
	"github.com/opd-ai/go-universo/pkg/event"
	"github.com/opd-ai/go-universo/pkg/random"
)

// recorder is a Renderer that remembers what it was asked to draw
type recorder struct {
	mu         sync.Mutex
	calls      []string
	bodies     []BodyView
	emblem     EmblemView
	stars      StarsView
	tip        TooltipView
	presents   int
	presentErr error
}

func (r *recorder) Clear() {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.calls = r.calls[:0]
	r.bodies = r.bodies[:0]
	r.calls = append(r.calls, "clear")
}

func (r *recorder) RenderStars(s StarsView) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.stars = s
	r.calls = append(r.calls, "stars")
}

func (r *recorder) RenderEmblem(e EmblemView) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.emblem = e
	r.calls = append(r.calls, "emblem")
}

func (r *recorder) RenderBody(b BodyView) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.bodies = append(r.bodies, b)
	r.calls = append(r.calls, "body")
}

func (r *recorder) RenderTooltip(t TooltipView) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.tip = t
	r.calls = append(r.calls, "tooltip")
}

func (r *recorder) Present() error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.presents++
	r.calls = append(r.calls, "present")
	return r.presentErr
}

func newTestDriver(t *testing.T) (*Driver, *ManualClock, *recorder, *event.Bus) {
	t.Helper()
	clock := &ManualClock{}
	rec := &recorder{}
	bus := event.NewEventBus()
	cfg := config.DefaultConfig()
	cfg.Seed = 42
	d, err := New(cfg, Options{Clock: clock, Renderer: rec, Bus: bus})
	if err != nil {
		t.Fatalf("New failed: %v", err)
	}
	return d, clock, rec, bus
}

func TestNew_Errors(t *testing.T) {
	if _, err := New(nil, Options{}); err == nil {
		t.Error("expected an error without a renderer")
	}
	cfg := config.DefaultConfig()
	cfg.Bodies = nil
	if _, err := New(cfg, Options{Renderer: &recorder{}}); err == nil {
		t.Error("expected an error for a scene without bodies")
	}
}

func TestTick_RenderOrder(t *testing.T) {
	d, clock, rec, _ := newTestDriver(t)
	if err := d.Tick(clock.Advance(16 * time.Millisecond)); err != nil {
		t.Fatalf("Tick failed: %v", err)
	}

	want := []string{"clear", "stars", "emblem", "body", "body", "body", "body", "body", "tooltip", "present"}
	if len(rec.calls) != len(want) {
		t.Fatalf("calls = %v, want %v", rec.calls, want)
	}
	for i := range want {
		if rec.calls[i] != want[i] {
			t.Fatalf("calls = %v, want %v", rec.calls, want)
		}
	}
	for i, b := range rec.bodies {
		if b.ID != body.ID(i+1) {
			t.Errorf("body %d rendered out of order: id %d", i, b.ID)
		}
		if !b.Visible || b.ScreenRadius <= 0 {
			t.Errorf("body %d should be visible with a positive radius", b.ID)
		}
	}
	if rec.stars.Warp == nil || rec.stars.OverlayOpacity != 1 {
		t.Errorf("loading warp should show at start, overlay %v", rec.stars.OverlayOpacity)
	}
}

func TestTick_EmblemRotates(t *testing.T) {
	d, clock, _, _ := newTestDriver(t)
	for i := 0; i < 10; i++ {
		d.Tick(clock.Advance(16 * time.Millisecond))
	}
	if got := d.EmblemRotation(); math.Abs(got-0.05) > 1e-12 {
		t.Errorf("emblem rotation %v after 10 ticks, want 0.05", got)
	}
}

func TestTick_PresentErrorSurfaces(t *testing.T) {
	d, clock, rec, _ := newTestDriver(t)
	rec.presentErr = errors.New("screen gone")
	if err := d.Tick(clock.Advance(time.Millisecond)); err == nil {
		t.Error("expected the present error")
	}
}

func TestResize_SwitchesModeOncePerFlip(t *testing.T) {
	d, clock, _, bus := newTestDriver(t)
	switches := 0
	bus.Subscribe(event.ModeChanged, func(event.Event) { switches++ })

	tests := []struct {
		name        string
		width       float64
		constrained bool
		scale       float64
		switches    int
	}{
		{"tablet flips", 600, true, 0.7, 1},
		{"phone stays constrained", 400, true, 0.55, 1},
		{"desktop flips back", 1280, false, 1, 2},
		{"unusable width falls back to desktop", 0, false, 1, 2},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			u := d.Resize(tt.width, 800, clock.Advance(time.Second))
			if u.Constrained != tt.constrained || u.Scale != tt.scale {
				t.Errorf("update = %+v", u)
			}
			if switches != tt.switches {
				t.Errorf("mode switches = %d, want %d", switches, tt.switches)
			}
			if d.cam.TargetDistance() != u.CameraDistance {
				t.Errorf("camera target %v, want %v", d.cam.TargetDistance(), u.CameraDistance)
			}
		})
	}
}

func TestResize_FirstConstrainedStartsIntro(t *testing.T) {
	d, clock, _, _ := newTestDriver(t)
	d.Resize(375, 667, clock.Advance(time.Second))
	if d.Mode() != engine.StagedIntro {
		t.Errorf("expected StagedIntro, got %v", d.Mode())
	}
}

// panickyLayout fails its tick on demand
type panickyLayout struct {
	*engine.Controller
	fail bool
}

func (p *panickyLayout) Advance(now time.Duration) engine.Frame {
	if p.fail {
		panic("layout exploded")
	}
	return p.Controller.Advance(now)
}

func TestTick_FailStatic(t *testing.T) {
	cfg := config.DefaultConfig()
	rng := random.New(3)
	reg, err := engine.NewRegistry(cfg, rng)
	if err != nil {
		t.Fatal(err)
	}
	ctrl, err := engine.New(engine.ConfigFromScene(cfg), reg, rng, nil, nil)
	if err != nil {
		t.Fatal(err)
	}
	layout := &panickyLayout{Controller: ctrl}

	clock := &ManualClock{}
	bus := event.NewEventBus()
	var dropped []*event.FrameEvent
	bus.Subscribe(event.FrameDropped, func(e event.Event) { dropped = append(dropped, e.(*event.FrameEvent)) })
	rec := &recorder{}
	d, err := New(cfg, Options{Clock: clock, Renderer: rec, Bus: bus, Rand: rng, Layout: layout})
	if err != nil {
		t.Fatalf("New failed: %v", err)
	}

	d.Tick(clock.Advance(16 * time.Millisecond))
	before := d.Frame()

	layout.fail = true
	for i := 0; i < 3; i++ {
		if err := d.Tick(clock.Advance(16 * time.Millisecond)); err != nil {
			t.Fatalf("a failed layout must not fail the frame: %v", err)
		}
	}
	if d.Frame().Tick != before.Tick {
		t.Errorf("previous frame not retained: tick %d -> %d", before.Tick, d.Frame().Tick)
	}
	if len(rec.bodies) != reg.Len() || rec.bodies[0].Position != before.Transforms[1].Position {
		t.Error("renderer should keep drawing the previous frame")
	}
	if d.Dropped() != 3 || len(dropped) != 3 {
		t.Errorf("dropped = %d, events = %d", d.Dropped(), len(dropped))
	}

	layout.fail = false
	d.Tick(clock.Advance(16 * time.Millisecond))
	if d.Frame().Tick <= before.Tick {
		t.Error("layout should resume once it stops failing")
	}
}

func TestHitTest(t *testing.T) {
	d, clock, rec, _ := newTestDriver(t)
	d.Tick(clock.Advance(16 * time.Millisecond))

	for _, b := range rec.bodies {
		id, ok := d.HitTest(b.Screen.X, b.Screen.Y)
		if !ok {
			t.Errorf("body %d not hit at its own centre", b.ID)
			continue
		}
		if id == b.ID {
			continue
		}
		// another body may cover it, but only from in front
		for _, other := range rec.bodies {
			if other.ID == id && other.Depth > b.Depth {
				t.Errorf("body %d hidden by %d which is further away", b.ID, id)
			}
		}
	}

	if _, ok := d.HitTest(-500, -500); ok {
		t.Error("a point off screen should hit nothing")
	}
}

func TestPointer_HoverBrakesAndTypesName(t *testing.T) {
	d, clock, rec, bus := newTestDriver(t)
	var hovered []int
	bus.Subscribe(event.BodyHovered, func(e event.Event) {
		if be := e.(*event.BodyEvent); be.Active {
			hovered = append(hovered, be.BodyID)
		}
	})
	d.Tick(clock.Advance(16 * time.Millisecond))
	target := rec.bodies[2]

	d.PointerMove(target.Screen.X, target.Screen.Y)
	for i := 0; i < 20; i++ {
		d.Tick(clock.Advance(100 * time.Millisecond))
	}
	if len(hovered) == 0 {
		t.Fatal("expected a hover event")
	}
	tip := d.Tooltip()
	prefix := false
	for _, b := range d.layout.Registry().Bodies() {
		if tip != "" && strings.HasPrefix(b.Name, tip) {
			prefix = true
		}
	}
	if !prefix {
		t.Errorf("tooltip %q is not the start of a body name", tip)
	}
	if !rec.tip.Visible {
		t.Error("tooltip should be visible")
	}

	d.PointerLeave()
	d.Tick(clock.Advance(16 * time.Millisecond))
	if d.Tooltip() != "" || rec.tip.Visible {
		t.Error("tooltip should hide when the pointer leaves")
	}
}

func TestClick_OpensPanelAndResetCloses(t *testing.T) {
	d, clock, rec, bus := newTestDriver(t)
	selected := 0
	bus.Subscribe(event.BodySelected, func(e event.Event) {
		if e.(*event.BodyEvent).Active {
			selected++
		}
	})
	d.Tick(clock.Advance(16 * time.Millisecond))
	target := rec.bodies[0]

	id, ok := d.Click(target.Screen.X, target.Screen.Y)
	if !ok {
		t.Fatal("click on a body should select it")
	}
	if selected != 1 || !d.panelOpen || d.focused != id {
		t.Errorf("selected=%d panelOpen=%v focused=%d", selected, d.panelOpen, d.focused)
	}
	if _, ok := d.Click(-500, -500); ok {
		t.Error("click on empty space should select nothing")
	}

	d.Reset(clock.Advance(time.Second))
	if d.panelOpen || d.focused != 0 {
		t.Error("reset should close the panel")
	}
	if d.Mode() != engine.Resetting {
		t.Errorf("expected Resetting, got %v", d.Mode())
	}
}

func TestToggleSwarm(t *testing.T) {
	d, _, _, _ := newTestDriver(t)
	if !d.ToggleSwarm() || d.Mode() != engine.Swarming {
		t.Errorf("expected Swarming, got %v", d.Mode())
	}
	if d.ToggleSwarm() || d.Mode() != engine.Orbiting {
		t.Errorf("expected Orbiting, got %v", d.Mode())
	}
}

func TestZoomBy(t *testing.T) {
	tests := []struct {
		name   string
		factor float64
		want   float64
	}{
		{"in", 2, 2},
		{"clamped at max", 10, 3},
		{"ignores non-positive", -1, 1},
		{"clamped at min", 0.01, 0.1},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			d, _, _, _ := newTestDriver(t)
			if got := d.ZoomBy(tt.factor); math.Abs(got-tt.want) > 1e-9 {
				t.Errorf("ZoomBy(%v) = %v, want %v", tt.factor, got, tt.want)
			}
		})
	}
}

// stubLoader serves a model and fails every texture
type stubLoader struct {
	modelErr error
}

func (s stubLoader) LoadTexture(ctx context.Context, path string) (image.Image, error) {
	return nil, errors.New("no textures here")
}

func (s stubLoader) LoadModel(ctx context.Context, path string) (*assets.Model, error) {
	if s.modelErr != nil {
		return nil, s.modelErr
	}
	return &assets.Model{Path: path}, nil
}

func TestLoadAssets_DrivesLoadingOverlay(t *testing.T) {
	d, clock, rec, bus := newTestDriver(t)
	var got []event.Type
	record := func(e event.Event) { got = append(got, e.GetType()) }
	bus.Subscribe(event.LoadingFadeStarted, record)
	bus.Subscribe(event.LoadingFinished, record)

	clock.Advance(time.Second)
	d.LoadAssets(context.Background(), stubLoader{})

	d.Tick(clock.Advance(2 * time.Second))
	if d.LoadingState() != LoadingWaiting {
		t.Fatalf("fade started early: %v", d.LoadingState())
	}
	d.Tick(clock.Advance(time.Second))
	if d.LoadingState() != LoadingFading {
		t.Fatalf("expected fading 3s after the model, got %v", d.LoadingState())
	}
	d.Tick(clock.Advance(time.Second))
	if op := rec.emblem.Opacity; math.Abs(op-0.5) > 1e-9 {
		t.Errorf("emblem opacity %v mid fade", op)
	}
	d.Tick(clock.Advance(time.Second))
	if d.LoadingState() != LoadingDone || rec.stars.Warp != nil {
		t.Errorf("expected done without warp, got %v", d.LoadingState())
	}
	if len(got) != 2 || got[0] != event.LoadingFadeStarted || got[1] != event.LoadingFinished {
		t.Errorf("loading events %v", got)
	}
	if rec.emblem.Model == nil {
		t.Error("emblem model should be handed to the renderer")
	}
	for _, b := range rec.bodies {
		if b.Texture == nil {
			t.Errorf("body %d has no placeholder texture", b.ID)
		}
	}
}

func TestLoading_Timeline(t *testing.T) {
	cfg := config.DefaultConfig().Loading
	s := time.Second

	tests := []struct {
		name      string
		modelAt   time.Duration
		failAt    time.Duration
		fadeStart time.Duration
	}{
		{"model arrives", 1 * s, -1, 4 * s},
		{"model fails", -1, 2 * s, 5 * s},
		{"nothing arrives", -1, -1, 10 * s},
		{"late model cancels the fallback", 9 * s, -1, 12 * s},
		{"late failure loses to the fallback", -1, 8 * s, 10 * s},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			l := NewLoading(cfg, 0)
			var started time.Duration = -1
			for now := time.Duration(0); now <= 20*s; now += 100 * time.Millisecond {
				if now == tt.modelAt {
					l.ModelLoaded(now)
				}
				if now == tt.failAt {
					l.ModelFailed(now)
				}
				if st, _ := l.Update(now); st {
					started = now
				}
			}
			if started != tt.fadeStart {
				t.Errorf("fade started at %v, want %v", started, tt.fadeStart)
			}
			if l.State() != LoadingDone {
				t.Errorf("expected done, got %v", l.State())
			}
		})
	}
}

func TestLoading_Opacities(t *testing.T) {
	l := NewLoading(config.DefaultConfig().Loading, 0)
	if l.OverlayOpacity(0) != 1 || l.EmblemOpacity(0) != 0 {
		t.Error("overlay should be opaque while waiting")
	}
	l.ModelLoaded(0)
	l.Update(3 * time.Second)
	if got := l.OverlayOpacity(4 * time.Second); math.Abs(got-0.5) > 1e-9 {
		t.Errorf("overlay %v mid fade", got)
	}
	_, finished := l.Update(5 * time.Second)
	if !finished || l.OverlayOpacity(6*time.Second) != 0 || l.EmblemOpacity(6*time.Second) != 1 {
		t.Error("fade should finish after two seconds")
	}
}

func TestManualClock(t *testing.T) {
	c := &ManualClock{}
	c.Advance(time.Second)
	c.Advance(-time.Hour)
	c.Set(500 * time.Millisecond)
	if c.Now() != time.Second {
		t.Errorf("clock ran backwards: %v", c.Now())
	}
	c.Set(2 * time.Second)
	if c.Now() != 2*time.Second {
		t.Errorf("Set failed: %v", c.Now())
	}
}

func TestRun_TickerScheduler(t *testing.T) {
	rec := &recorder{}
	cfg := config.DefaultConfig()
	cfg.Seed = 7
	d, err := New(cfg, Options{Renderer: rec})
	if err != nil {
		t.Fatalf("New failed: %v", err)
	}

	s := NewTickerScheduler(5 * time.Millisecond)
	s.Resize(2000, 1000)
	s.Resize(600, 800)

	ctx, cancel := context.WithTimeout(context.Background(), 100*time.Millisecond)
	defer cancel()
	if err := d.Run(ctx, s); err != nil {
		t.Fatalf("Run returned %v", err)
	}

	rec.mu.Lock()
	presents := rec.presents
	rec.mu.Unlock()
	if presents == 0 {
		t.Error("scheduler never ticked")
	}
	if !d.layoutConstrained() {
		t.Error("only the latest resize should apply")
	}
}

func (d *Driver) layoutConstrained() bool {
	return d.view.Current().Constrained
}
