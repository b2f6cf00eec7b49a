package render

import (
	"bytes"
	"strings"
	"testing"

	"gonum.org/v1/gonum/spatial/r3"

	"github.com/opd-ai/go-universo/pkg/assets"
	"github.com/opd-ai/go-universo/pkg/engine"
	"github.com/opd-ai/go-universo/pkg/logging"
	"github.com/opd-ai/go-universo/pkg/scene"
)

func newDebugRenderer(t *testing.T) (*NullRenderer, *bytes.Buffer) {
	t.Helper()
	t.Setenv("UNIVERSO_LOG_LEVEL", "DEBUG")
	var buf bytes.Buffer
	return NewNullRenderer(logging.NewLoggerWithWriter(&buf)), &buf
}

func TestNullRenderer_LogsEachCall(t *testing.T) {
	tests := []struct {
		name     string
		call     func(r *NullRenderer)
		expected string
	}{
		{
			name:     "Clear",
			call:     func(r *NullRenderer) { r.Clear() },
			expected: "Clear called",
		},
		{
			name:     "Stars",
			call:     func(r *NullRenderer) { r.RenderStars(scene.StarsView{Backdrop: make([]r3.Vec, 3)}) },
			expected: "RenderStars called",
		},
		{
			name:     "EmblemWithoutModel",
			call:     func(r *NullRenderer) { r.RenderEmblem(scene.EmblemView{}) },
			expected: "RenderEmblem called without a model",
		},
		{
			name: "Emblem",
			call: func(r *NullRenderer) {
				r.RenderEmblem(scene.EmblemView{Model: &assets.Model{}, Scale: 1, Opacity: 1})
			},
			expected: "RenderEmblem called",
		},
		{
			name: "VisibleBody",
			call: func(r *NullRenderer) {
				r.RenderBody(scene.BodyView{
					ID:        4,
					Name:      "Gacela",
					Transform: engine.Transform{Position: r3.Vec{X: 10, Y: 20}},
					Visible:   true,
				})
			},
			expected: "Gacela",
		},
		{
			name:     "HiddenBody",
			call:     func(r *NullRenderer) { r.RenderBody(scene.BodyView{ID: 2}) },
			expected: "hidden body",
		},
		{
			name: "Tooltip",
			call: func(r *NullRenderer) {
				r.RenderTooltip(scene.TooltipView{Text: "Cosmos", Visible: true})
			},
			expected: "Cosmos",
		},
		{
			name:     "Present",
			call:     func(r *NullRenderer) { _ = r.Present() },
			expected: "Present called",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r, buf := newDebugRenderer(t)
			tt.call(r)
			if !strings.Contains(buf.String(), tt.expected) {
				t.Errorf("expected log to contain %q, got: %s", tt.expected, buf.String())
			}
		})
	}
}

func TestNullRenderer_HiddenTooltipIsSilent(t *testing.T) {
	r, buf := newDebugRenderer(t)
	r.RenderTooltip(scene.TooltipView{Text: "Cosmos"})
	if buf.Len() != 0 {
		t.Errorf("expected no output for a hidden tooltip, got: %s", buf.String())
	}
}

func TestNullRenderer_CountsFrames(t *testing.T) {
	r := NewNullRenderer(logging.Discard())
	for i := 0; i < 3; i++ {
		r.Clear()
		if err := r.Present(); err != nil {
			t.Fatalf("Present() error = %v", err)
		}
	}
	if got := r.Frames(); got != 3 {
		t.Errorf("Frames() = %d, want 3", got)
	}
}

func TestNewNullRenderer_NilLogger(t *testing.T) {
	r := NewNullRenderer(nil)
	if r == nil || r.logger == nil {
		t.Fatal("expected a renderer with a default logger")
	}
}
