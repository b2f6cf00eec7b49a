package engo

import (
	"context"
	"math"
	"time"

	"github.com/EngoEngine/ecs"
	"github.com/EngoEngine/engo"

	"github.com/opd-ai/go-universo/pkg/logging"
	"github.com/opd-ai/go-universo/pkg/scene"
	"github.com/opd-ai/go-universo/pkg/viewport"
)

// ScrollZoomBase is the zoom factor per wheel notch
const ScrollZoomBase = 1.1

// Viewer is the part of the scene driver that owns the camera framing
type Viewer interface {
	Resize(width, height float64, now time.Duration) viewport.Update
	ZoomBy(factor float64) float64
}

// ViewSystem keeps the scene camera matched to the engo canvas and applies
// wheel zoom
type ViewSystem struct {
	view   Viewer
	clock  scene.Clock
	logger *logging.Logger

	width  float32
	height float32
}

// NewViewSystem creates a view system for view
func NewViewSystem(view Viewer, clock scene.Clock, logger *logging.Logger) *ViewSystem {
	if logger == nil {
		logger = logging.Discard()
	}
	return &ViewSystem{
		view:   view,
		clock:  clock,
		logger: logger.WithComponent("view"),
	}
}

// Priority runs the view update ahead of input and the frame tick
func (vs *ViewSystem) Priority() int {
	return 20
}

// Remove satisfies the ecs.System interface
func (vs *ViewSystem) Remove(basic ecs.BasicEntity) {}

// Update reads the canvas size and wheel from engo
func (vs *ViewSystem) Update(dt float32) {
	vs.Apply(engo.GameWidth(), engo.GameHeight(), engo.Input.Mouse.ScrollY)
}

// Apply resizes the scene when the canvas changed and zooms by scroll
// notches. It reports whether a resize happened.
func (vs *ViewSystem) Apply(width, height, scroll float32) bool {
	resized := false
	if width != vs.width || height != vs.height {
		vs.width, vs.height = width, height
		u := vs.view.Resize(float64(width), float64(height), vs.clock.Now())
		resized = true
		vs.logger.Debug(context.Background(), "canvas resized",
			"width", u.Width,
			"height", u.Height,
			"scale", u.Scale,
			"constrained", u.Constrained,
		)
	}
	if scroll != 0 {
		vs.view.ZoomBy(math.Pow(ScrollZoomBase, float64(scroll)))
	}
	return resized
}
