// pkg/render/renderer.go
package render

import (
	"context"

	"github.com/opd-ai/go-universo/pkg/logging"
	"github.com/opd-ai/go-universo/pkg/scene"
)

// NullRenderer is a scene.Renderer that only logs what it would draw. It
// backs headless runs and tests.
type NullRenderer struct {
	logger *logging.Logger
	frames uint64
}

// NewNullRenderer creates a new NullRenderer with structured logging.
func NewNullRenderer(logger *logging.Logger) *NullRenderer {
	if logger == nil {
		logger = logging.NewLogger()
	}
	return &NullRenderer{
		logger: logger.WithComponent("render"),
	}
}

// Clear implements scene.Renderer.
func (d *NullRenderer) Clear() {
	ctx := context.Background()
	d.logger.Debug(ctx, "Clear called")
}

// RenderStars implements scene.Renderer.
func (d *NullRenderer) RenderStars(stars scene.StarsView) {
	ctx := context.Background()
	warp := 0
	if stars.Warp != nil {
		warp = stars.Warp.Len()
	}
	d.logger.Debug(ctx, "RenderStars called",
		"backdrop", len(stars.Backdrop),
		"warp", warp,
		"overlay", stars.OverlayOpacity,
	)
}

// RenderEmblem implements scene.Renderer.
func (d *NullRenderer) RenderEmblem(emblem scene.EmblemView) {
	ctx := context.Background()
	if emblem.Model == nil {
		d.logger.Debug(ctx, "RenderEmblem called without a model")
		return
	}
	d.logger.Debug(ctx, "RenderEmblem called",
		"rotation", emblem.Rotation,
		"scale", emblem.Scale,
		"opacity", emblem.Opacity,
	)
}

// RenderBody implements scene.Renderer.
func (d *NullRenderer) RenderBody(b scene.BodyView) {
	ctx := context.Background()
	if !b.Visible {
		d.logger.Debug(ctx, "RenderBody called for a hidden body", "body_id", int(b.ID))
		return
	}
	d.logger.Debug(ctx, "RenderBody called",
		"body_id", int(b.ID),
		"body_name", b.Name,
		"x", b.Position.X,
		"y", b.Position.Y,
		"z", b.Position.Z,
		"label", b.LabelOpacity,
	)
}

// RenderTooltip implements scene.Renderer.
func (d *NullRenderer) RenderTooltip(tip scene.TooltipView) {
	if !tip.Visible {
		return
	}
	d.logger.Debug(context.Background(), "RenderTooltip called", "text", tip.Text)
}

// Present implements scene.Renderer.
func (d *NullRenderer) Present() error {
	d.frames++
	d.logger.Debug(context.Background(), "Present called", "frame", d.frames)
	return nil
}

// Frames reports how many frames were presented
func (d *NullRenderer) Frames() uint64 {
	return d.frames
}

var _ scene.Renderer = (*NullRenderer)(nil)
