package scene

import (
	"image"

	"gonum.org/v1/gonum/spatial/r2"
	"gonum.org/v1/gonum/spatial/r3"

	"github.com/opd-ai/go-universo/pkg/assets"
	"github.com/opd-ai/go-universo/pkg/body"
	"github.com/opd-ai/go-universo/pkg/camera"
	"github.com/opd-ai/go-universo/pkg/engine"
	"github.com/opd-ai/go-universo/pkg/starfield"
)

// Renderer draws one frame. The driver calls Clear, RenderStars,
// RenderEmblem, RenderBody once per body in id order, RenderTooltip and
// finally Present, all from the tick goroutine.
type Renderer interface {
	Clear()
	RenderStars(stars StarsView)
	RenderEmblem(emblem EmblemView)
	RenderBody(b BodyView)
	RenderTooltip(tip TooltipView)
	Present() error
}

// StarsView is the backdrop plus the loading warp while the overlay shows
type StarsView struct {
	Camera   *camera.Camera
	Backdrop []r3.Vec
	// Warp is nil once the overlay is gone
	Warp           *starfield.Warp
	WarpCamera     *camera.Camera
	OverlayOpacity float64
}

// EmblemView is the central model
type EmblemView struct {
	Camera   *camera.Camera
	Model    *assets.Model
	Rotation float64
	Scale    float64
	Opacity  float64
}

// BodyView is one body as it should appear this frame
type BodyView struct {
	ID      body.ID
	Name    string
	Texture image.Image
	engine.Transform
	Size         float64
	LabelOpacity float64
	Hovered      bool
	Focused      bool

	// Screen and ScreenRadius are the camera projection; Visible is false
	// when the body is behind the camera
	Screen       r2.Vec
	ScreenRadius float64
	Depth        float64
	Visible      bool
}

// TooltipView is the typed hover label
type TooltipView struct {
	Text    string
	Anchor  r2.Vec
	Visible bool
}
