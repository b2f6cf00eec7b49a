package viewport

import (
	"math"
	"testing"

	"github.com/opd-ai/go-universo/pkg/config"
	"github.com/opd-ai/go-universo/pkg/event"
)

func newTestManager(bus *event.Bus) *Manager {
	cfg := config.DefaultConfig()
	return New(cfg.Viewport, cfg.Emblem.BaseScale, bus, nil)
}

func TestScaleFor_Breakpoints(t *testing.T) {
	m := newTestManager(nil)
	tests := []struct {
		width float64
		want  float64
	}{
		{320, 0.55},
		{479, 0.55},
		{480, 0.7},
		{767, 0.7},
		{768, 0.85},
		{1023, 0.85},
		{1024, 1.0},
		{2560, 1.0},
		{0, 1.0},
		{-200, 1.0},
		{math.NaN(), 1.0},
	}
	for _, tt := range tests {
		if got := m.ScaleFor(tt.width); got != tt.want {
			t.Errorf("ScaleFor(%v) = %v, want %v", tt.width, got, tt.want)
		}
	}
}

func TestScaleFor_Floor(t *testing.T) {
	cfg := config.DefaultConfig().Viewport
	cfg.Breakpoints = []config.Breakpoint{{MaxWidth: 500, Scale: 0.1}}
	m := New(cfg, 1, nil, nil)
	if got := m.ScaleFor(100); got != cfg.MinScale {
		t.Errorf("scale should be floored at %v, got %v", cfg.MinScale, got)
	}
}

func TestIsConstrained_Threshold(t *testing.T) {
	m := newTestManager(nil)
	if !m.IsConstrained(768) {
		t.Error("768 should be constrained")
	}
	if m.IsConstrained(769) {
		t.Error("769 should not be constrained")
	}
	if m.IsConstrained(0) {
		t.Error("zero width falls back to desktop width")
	}
}

func TestResize_DerivedValues(t *testing.T) {
	m := newTestManager(nil)
	u := m.Resize(600, 900)
	if u.Scale != 0.7 || !u.Constrained {
		t.Fatalf("unexpected update %+v", u)
	}
	if math.Abs(u.CameraDistance-20/0.7) > 1e-9 {
		t.Errorf("camera distance = %v, want %v", u.CameraDistance, 20/0.7)
	}
	if math.Abs(u.EmblemScale-0.06*0.7) > 1e-9 {
		t.Errorf("emblem scale = %v", u.EmblemScale)
	}
}

func TestResize_FlipsOncePerCrossing(t *testing.T) {
	bus := event.NewEventBus()
	m := newTestManager(bus)

	var flips []Update
	m.OnFlip(func(u Update) { flips = append(flips, u) })
	busFlips := 0
	bus.Subscribe(event.ViewportFlipped, func(event.Event) { busFlips++ })
	resizes := 0
	bus.Subscribe(event.ViewportResized, func(event.Event) { resizes++ })

	widths := []float64{1280, 1100, 700, 650, 500, 900, 1200, 600, 600}
	for _, w := range widths {
		m.Resize(w, 800)
	}

	// desktop start: 700 flips in, 900 flips out, 600 flips in again
	if len(flips) != 3 {
		t.Fatalf("expected 3 flips, got %d", len(flips))
	}
	if busFlips != 3 {
		t.Errorf("expected 3 bus flips, got %d", busFlips)
	}
	if resizes != len(widths) {
		t.Errorf("expected %d resize events, got %d", len(widths), resizes)
	}
	if !flips[0].FirstConstrained {
		t.Error("first constrained flip should be marked")
	}
	if flips[1].Constrained || flips[1].FirstConstrained {
		t.Errorf("second flip should be back to desktop: %+v", flips[1])
	}
	if !flips[2].Constrained || flips[2].FirstConstrained {
		t.Errorf("third flip is constrained but not the first: %+v", flips[2])
	}
}

func TestResize_InitialConstrainedCountsAsFlip(t *testing.T) {
	m := newTestManager(nil)
	u := m.Resize(375, 812)
	if !u.Flipped || !u.FirstConstrained {
		t.Errorf("initial constrained measurement should flip: %+v", u)
	}
	again := m.Resize(375, 812)
	if again.Flipped {
		t.Error("repeated resize must not flip")
	}
}

func TestResize_FallbackOnBadDimensions(t *testing.T) {
	m := newTestManager(nil)
	u := m.Resize(0, -1)
	if u.Width != 1024 || u.Height != 768 {
		t.Errorf("expected fallback 1024x768, got %vx%v", u.Width, u.Height)
	}
	if math.IsNaN(u.Scale) || u.Scale <= 0 {
		t.Errorf("scale must stay finite, got %v", u.Scale)
	}
	if u.Constrained {
		t.Error("fallback width is desktop")
	}
	if got := m.Current(); got != u {
		t.Errorf("Current() = %+v, want %+v", got, u)
	}
}
