// Package viewport maps measured viewport dimensions to the scene's scale
// factor and decides between the desktop and constrained layouts.
package viewport

import (
	"context"
	"sync"

	"github.com/opd-ai/go-universo/pkg/config"
	"github.com/opd-ai/go-universo/pkg/event"
	"github.com/opd-ai/go-universo/pkg/logging"
	"github.com/opd-ai/go-universo/pkg/validation"
)

// Update is the outcome of one resize
type Update struct {
	Width          float64
	Height         float64
	Scale          float64
	Constrained    bool
	CameraDistance float64
	EmblemScale    float64
	// Flipped is set when Constrained differs from the previous resize
	Flipped bool
	// FirstConstrained is set on the first flip into constrained mode
	FirstConstrained bool
}

// Listener is called once per constrained/desktop flip
type Listener func(Update)

// Manager tracks the viewport. The scene starts out in desktop mode, so an
// initial constrained measurement counts as a flip.
type Manager struct {
	cfg        config.ViewportConfig
	emblemBase float64
	bus        *event.Bus
	logger     *logging.Logger

	mu              sync.Mutex
	current         Update
	everConstrained bool
	listeners       []Listener
}

// New creates a manager. emblemBaseScale is the unscaled emblem size.
func New(cfg config.ViewportConfig, emblemBaseScale float64, bus *event.Bus, logger *logging.Logger) *Manager {
	if logger == nil {
		logger = logging.Discard()
	}
	m := &Manager{
		cfg:        cfg,
		emblemBase: emblemBaseScale,
		bus:        bus,
		logger:     logger.WithComponent("viewport"),
	}
	scale := m.ScaleFor(cfg.FallbackWidth)
	m.current = Update{
		Width:          cfg.FallbackWidth,
		Height:         cfg.FallbackHeight,
		Scale:          scale,
		CameraDistance: cfg.BaseCameraDistance / scale,
		EmblemScale:    emblemBaseScale * scale,
	}
	return m
}

// OnFlip registers a listener for mode flips
func (m *Manager) OnFlip(l Listener) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.listeners = append(m.listeners, l)
}

// ScaleFor returns the breakpoint scale for width, never below MinScale.
// Breakpoints are ascending; the first one wider than width wins.
func (m *Manager) ScaleFor(width float64) float64 {
	width = validation.Dimension(width, m.cfg.FallbackWidth)
	scale := m.cfg.FullScale
	for _, bp := range m.cfg.Breakpoints {
		if width < bp.MaxWidth {
			scale = bp.Scale
			break
		}
	}
	if scale < m.cfg.MinScale {
		scale = m.cfg.MinScale
	}
	return scale
}

// IsConstrained reports whether width selects the constrained layout
func (m *Manager) IsConstrained(width float64) bool {
	return validation.Dimension(width, m.cfg.FallbackWidth) <= m.cfg.ConstrainedWidth
}

// Current returns the last computed update
func (m *Manager) Current() Update {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.current
}

// Resize recomputes scale and mode for a new measurement. Unusable
// dimensions fall back to the configured defaults. Listeners run after the
// manager's lock is released, once per actual flip.
func (m *Manager) Resize(width, height float64) Update {
	w := validation.Dimension(width, m.cfg.FallbackWidth)
	h := validation.Dimension(height, m.cfg.FallbackHeight)
	if w != width || h != height {
		m.logger.Warn(context.Background(), "unusable viewport size, using fallback",
			"width", width, "height", height, "fallback_width", w, "fallback_height", h)
	}

	scale := m.ScaleFor(w)
	constrained := m.IsConstrained(w)

	m.mu.Lock()
	prev := m.current
	u := Update{
		Width:          w,
		Height:         h,
		Scale:          scale,
		Constrained:    constrained,
		CameraDistance: m.cfg.BaseCameraDistance / scale,
		EmblemScale:    m.emblemBase * scale,
		Flipped:        constrained != prev.Constrained,
	}
	if u.Flipped && constrained && !m.everConstrained {
		u.FirstConstrained = true
		m.everConstrained = true
	}
	m.current = u
	listeners := append([]Listener(nil), m.listeners...)
	m.mu.Unlock()

	m.bus.Publish(event.NewViewportEvent(event.ViewportResized, m, w, h, scale, constrained))
	if !u.Flipped {
		return u
	}

	m.logger.Info(context.Background(), "viewport mode flipped",
		"constrained", constrained, "width", w, "scale", scale, "first", u.FirstConstrained)
	m.bus.Publish(event.NewViewportEvent(event.ViewportFlipped, m, w, h, scale, constrained))
	for _, l := range listeners {
		l(u)
	}
	return u
}
