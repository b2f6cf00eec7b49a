package engo

import (
	"context"
	"time"

	"github.com/EngoEngine/ecs"
	"github.com/EngoEngine/engo"

	"github.com/opd-ai/go-universo/pkg/body"
	"github.com/opd-ai/go-universo/pkg/logging"
	"github.com/opd-ai/go-universo/pkg/scene"
)

// KeyZoomStep is the zoom factor applied per zoom key press
const KeyZoomStep = 1.1

// Controls is the part of the scene driver that user input reaches
type Controls interface {
	PointerMove(x, y float64)
	PointerLeave()
	Click(x, y float64) (body.ID, bool)
	ClosePanel()
	Reset(now time.Duration)
	ToggleSwarm() bool
	SetRotationPaused(paused bool)
	ZoomBy(factor float64) float64
}

// InputState is one frame of sampled mouse and keyboard input
type InputState struct {
	X, Y     float64
	InWindow bool
	Clicked  bool

	Reset   bool
	Swarm   bool
	Pause   bool
	Close   bool
	ZoomIn  bool
	ZoomOut bool
}

// InputSystem forwards engo input to the scene driver
type InputSystem struct {
	controls Controls
	clock    scene.Clock
	logger   *logging.Logger

	inside bool
	paused bool
}

// NewInputSystem creates an input system driving controls
func NewInputSystem(controls Controls, clock scene.Clock, logger *logging.Logger) *InputSystem {
	if logger == nil {
		logger = logging.Discard()
	}
	return &InputSystem{
		controls: controls,
		clock:    clock,
		logger:   logger.WithComponent("input"),
	}
}

// Priority runs input before the frame is ticked
func (is *InputSystem) Priority() int {
	return 10
}

// Remove satisfies the ecs.System interface
func (is *InputSystem) Remove(basic ecs.BasicEntity) {}

// Update samples engo's input and applies it
func (is *InputSystem) Update(dt float32) {
	is.Apply(sampleInput())
}

// Apply acts on one frame of input
func (is *InputSystem) Apply(in InputState) {
	ctx := context.Background()

	switch {
	case in.InWindow:
		is.controls.PointerMove(in.X, in.Y)
		is.inside = true
	case is.inside:
		is.controls.PointerLeave()
		is.inside = false
	}

	if in.Clicked && in.InWindow {
		if id, ok := is.controls.Click(in.X, in.Y); ok {
			is.logger.Debug(ctx, "body selected", "body_id", int(id))
		} else {
			is.controls.ClosePanel()
		}
	}
	if in.Close {
		is.controls.ClosePanel()
	}
	if in.Reset {
		is.controls.Reset(is.clock.Now())
		is.logger.Debug(ctx, "reset requested")
	}
	if in.Swarm {
		swarm := is.controls.ToggleSwarm()
		is.logger.Debug(ctx, "swarm toggled", "swarm", swarm)
	}
	if in.Pause {
		is.paused = !is.paused
		is.controls.SetRotationPaused(is.paused)
	}
	if in.ZoomIn {
		is.controls.ZoomBy(KeyZoomStep)
	}
	if in.ZoomOut {
		is.controls.ZoomBy(1 / KeyZoomStep)
	}
}

// Paused reports whether the formation rotation is held
func (is *InputSystem) Paused() bool {
	return is.paused
}

func sampleInput() InputState {
	m := engo.Input.Mouse
	w, h := engo.GameWidth(), engo.GameHeight()
	return InputState{
		X:        float64(m.X),
		Y:        float64(m.Y),
		InWindow: m.X >= 0 && m.Y >= 0 && m.X < w && m.Y < h,
		Clicked:  m.Action == engo.Press && m.Button == engo.MouseButtonLeft,
		Reset:    engo.Input.Button("reset").JustPressed(),
		Swarm:    engo.Input.Button("swarm").JustPressed(),
		Pause:    engo.Input.Button("pause").JustPressed(),
		Close:    engo.Input.Button("close").JustPressed(),
		ZoomIn:   engo.Input.Button("zoomIn").JustPressed(),
		ZoomOut:  engo.Input.Button("zoomOut").JustPressed(),
	}
}

// SetupInputBindings registers the scene's key bindings
func SetupInputBindings() {
	engo.Input.RegisterButton("reset", engo.KeyR)
	engo.Input.RegisterButton("swarm", engo.KeyS)
	engo.Input.RegisterButton("pause", engo.KeyP)
	engo.Input.RegisterButton("close", engo.KeyEscape)
	engo.Input.RegisterButton("zoomIn", engo.KeyI)
	engo.Input.RegisterButton("zoomOut", engo.KeyO)
}
