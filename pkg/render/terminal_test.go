package render

import (
	"image/color"
	"testing"

	"github.com/gdamore/tcell/v2"
	"gonum.org/v1/gonum/spatial/r2"
	"gonum.org/v1/gonum/spatial/r3"

	"github.com/opd-ai/go-universo/pkg/assets"
	"github.com/opd-ai/go-universo/pkg/camera"
	"github.com/opd-ai/go-universo/pkg/scene"
	"github.com/opd-ai/go-universo/pkg/starfield"
)

func newTestScreen(t *testing.T) tcell.SimulationScreen {
	t.Helper()
	screen := tcell.NewSimulationScreen("UTF-8")
	if err := screen.Init(); err != nil {
		t.Fatalf("screen init: %v", err)
	}
	screen.SetSize(80, 24)
	t.Cleanup(screen.Fini)
	return screen
}

func newTestCamera() *camera.Camera {
	cam := camera.New(60, 100, 60, 1, 1)
	w, h := PixelSize(80, 24)
	cam.SetViewport(w, h)
	return cam
}

func TestPixelSizeAndCellCenter(t *testing.T) {
	w, h := PixelSize(80, 24)
	if w != 640 || h != 384 {
		t.Errorf("PixelSize(80, 24) = %v, %v", w, h)
	}
	x, y := CellCenter(2, 3)
	if x != 20 || y != 56 {
		t.Errorf("CellCenter(2, 3) = %v, %v", x, y)
	}
}

func TestNewTerminalRenderer_SizesBuffer(t *testing.T) {
	r := NewTerminalRenderer(newTestScreen(t))
	if r.width != 80 || r.height != 24 {
		t.Fatalf("size = %dx%d, want 80x24", r.width, r.height)
	}
	if len(r.buffer) != 24 || len(r.buffer[0]) != 80 {
		t.Errorf("buffer = %dx%d", len(r.buffer[0]), len(r.buffer))
	}
}

func TestTerminalRenderer_FollowsScreenResize(t *testing.T) {
	screen := newTestScreen(t)
	r := NewTerminalRenderer(screen)
	screen.SetSize(40, 10)
	r.Clear()
	if r.width != 40 || r.height != 10 {
		t.Errorf("size after resize = %dx%d, want 40x10", r.width, r.height)
	}
}

func TestTerminalRenderer_DrawsFrame(t *testing.T) {
	screen := newTestScreen(t)
	r := NewTerminalRenderer(screen)
	cam := newTestCamera()

	r.Clear()
	r.RenderStars(scene.StarsView{Camera: cam, Backdrop: []r3.Vec{{}}})
	r.RenderBody(scene.BodyView{
		ID:           1,
		Name:         "Vega",
		Texture:      assets.CircleSprite(color.NRGBA{R: 255, A: 255}, 16),
		Screen:       r2.Vec{X: 100, Y: 100},
		ScreenRadius: 16,
		LabelOpacity: 1,
		Focused:      true,
		Visible:      true,
	})
	r.RenderTooltip(scene.TooltipView{Text: "Hi", Anchor: r2.Vec{X: 400, Y: 300}, Visible: true})
	if err := r.Present(); err != nil {
		t.Fatalf("Present() error = %v", err)
	}

	tests := []struct {
		name string
		x, y int
		want rune
	}{
		{"star at the projected origin", 40, 12, '.'},
		{"body centre", 12, 6, '●'},
		{"body edge", 14, 6, '●'},
		{"label under the body", 10, 8, 'V'},
		{"tooltip", 50, 18, 'H'},
		{"tooltip second rune", 51, 18, 'i'},
		{"empty cell", 0, 0, ' '},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, _, _, _ := screen.GetContent(tt.x, tt.y)
			if got != tt.want {
				t.Errorf("cell (%d,%d) = %q, want %q", tt.x, tt.y, got, tt.want)
			}
		})
	}

	_, _, style, _ := screen.GetContent(12, 6)
	if _, _, attrs := style.Decompose(); attrs&tcell.AttrReverse == 0 {
		t.Error("focused body should be drawn reversed")
	}
}

func TestTerminalRenderer_OverlayCoversScene(t *testing.T) {
	screen := newTestScreen(t)
	r := NewTerminalRenderer(screen)
	cam := newTestCamera()
	warp := &starfield.Warp{Layers: []*starfield.Layer{{Color: "#ff0000", Points: []r3.Vec{{X: 10}}}}}

	r.Clear()
	r.RenderStars(scene.StarsView{
		Camera:         cam,
		Backdrop:       []r3.Vec{{}},
		Warp:           warp,
		WarpCamera:     cam,
		OverlayOpacity: 1,
	})
	r.RenderBody(scene.BodyView{Screen: r2.Vec{X: 100, Y: 100}, ScreenRadius: 16, Visible: true})
	r.RenderTooltip(scene.TooltipView{Text: "Hi", Anchor: r2.Vec{X: 400, Y: 300}, Visible: true})
	if err := r.Present(); err != nil {
		t.Fatalf("Present() error = %v", err)
	}

	if got, _, _, _ := screen.GetContent(12, 6); got != ' ' {
		t.Errorf("body drawn under the overlay: %q", got)
	}
	if got, _, _, _ := screen.GetContent(50, 18); got != ' ' {
		t.Errorf("tooltip drawn under the overlay: %q", got)
	}
	found := false
	for x := 0; x < 80; x++ {
		if got, _, _, _ := screen.GetContent(x, 12); got == '*' {
			found = true
		}
	}
	if !found {
		t.Error("expected warp stars on the centre row")
	}
}

func TestTerminalRenderer_SkipsHiddenBody(t *testing.T) {
	screen := newTestScreen(t)
	r := NewTerminalRenderer(screen)
	r.Clear()
	r.RenderBody(scene.BodyView{Screen: r2.Vec{X: 100, Y: 100}, ScreenRadius: 16})
	_ = r.Present()
	if got, _, _, _ := screen.GetContent(12, 6); got != ' ' {
		t.Errorf("hidden body drawn: %q", got)
	}
}

func TestAverageColor(t *testing.T) {
	img := assets.CircleSprite(color.NRGBA{G: 200, A: 255}, 32)
	got := averageColor(img)
	r, g, b := got.RGB()
	if r != 0 || b != 0 || g == 0 {
		t.Errorf("averageColor = %d,%d,%d, want pure green", r, g, b)
	}
}

func TestPresentWithoutScreen(t *testing.T) {
	r := NewTerminalRenderer(nil)
	if err := r.Present(); err == nil {
		t.Error("expected an error without a screen")
	}
}
