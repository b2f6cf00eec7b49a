package render

import (
	"errors"
	"image"
	"math"

	"github.com/gdamore/tcell/v2"
	"gonum.org/v1/gonum/spatial/r2"
	"gonum.org/v1/gonum/spatial/r3"

	"github.com/opd-ai/go-universo/pkg/assets"
	"github.com/opd-ai/go-universo/pkg/body"
	"github.com/opd-ai/go-universo/pkg/camera"
	"github.com/opd-ai/go-universo/pkg/scene"
)

// A terminal cell stands for a CellWidth x CellHeight pixel block, so the
// viewport breakpoints keep their meaning in a terminal.
const (
	CellWidth  = 8
	CellHeight = 16
)

var (
	styleStar    = tcell.StyleDefault.Foreground(tcell.NewRGBColor(0x70, 0x70, 0x80))
	styleEmblem  = tcell.StyleDefault.Foreground(tcell.NewRGBColor(0x88, 0xcc, 0xff))
	styleTooltip = tcell.StyleDefault.Foreground(tcell.ColorWhite).Bold(true)
	styleLabel   = tcell.StyleDefault.Foreground(tcell.ColorWhite)
)

type cell struct {
	r     rune
	style tcell.Style
}

// TerminalRenderer draws the scene as characters on a tcell screen
type TerminalRenderer struct {
	screen tcell.Screen
	width  int
	height int
	buffer [][]cell

	// covered is set while the loading overlay hides the scene
	covered bool
	tints   map[body.ID]tcell.Color
	warpInk map[string]tcell.Style
}

// NewTerminalRenderer creates a renderer sized to the screen
func NewTerminalRenderer(screen tcell.Screen) *TerminalRenderer {
	r := &TerminalRenderer{
		screen:  screen,
		tints:   make(map[body.ID]tcell.Color),
		warpInk: make(map[string]tcell.Style),
	}
	r.resize()
	return r
}

// PixelSize is the screen size in the pixel units the scene works in
func PixelSize(cols, rows int) (float64, float64) {
	return float64(cols * CellWidth), float64(rows * CellHeight)
}

// CellCenter maps a cell to the pixel at its centre
func CellCenter(col, row int) (float64, float64) {
	return float64(col*CellWidth) + CellWidth/2, float64(row*CellHeight) + CellHeight/2
}

func (r *TerminalRenderer) resize() {
	w, h := 0, 0
	if r.screen != nil {
		w, h = r.screen.Size()
	}
	if w == r.width && h == r.height && r.buffer != nil {
		return
	}
	r.width, r.height = w, h
	r.buffer = make([][]cell, h)
	for i := range r.buffer {
		r.buffer[i] = make([]cell, w)
	}
}

// Clear implements scene.Renderer
func (r *TerminalRenderer) Clear() {
	r.resize()
	for y := range r.buffer {
		for x := range r.buffer[y] {
			r.buffer[y][x] = cell{' ', tcell.StyleDefault}
		}
	}
	r.covered = false
}

func (r *TerminalRenderer) toCell(p r2.Vec) (int, int, bool) {
	x := int(math.Floor(p.X / CellWidth))
	y := int(math.Floor(p.Y / CellHeight))
	return x, y, x >= 0 && x < r.width && y >= 0 && y < r.height
}

func (r *TerminalRenderer) set(p r2.Vec, ch rune, style tcell.Style) {
	if x, y, ok := r.toCell(p); ok {
		r.buffer[y][x] = cell{ch, style}
	}
}

func (r *TerminalRenderer) text(x, y int, s string, style tcell.Style) {
	if y < 0 || y >= r.height {
		return
	}
	for _, ch := range s {
		if x >= 0 && x < r.width {
			r.buffer[y][x] = cell{ch, style}
		}
		x++
	}
}

// RenderStars implements scene.Renderer. While the overlay is mostly opaque
// only the warp shows and the rest of the frame is skipped.
func (r *TerminalRenderer) RenderStars(stars scene.StarsView) {
	r.covered = stars.Warp != nil && stars.OverlayOpacity >= 0.5
	if !r.covered {
		r.project(stars.Camera, stars.Backdrop, '.', styleStar)
	}
	if stars.Warp == nil || stars.OverlayOpacity <= 0 {
		return
	}
	for _, l := range stars.Warp.Layers {
		r.project(stars.WarpCamera, l.Points, '*', r.inkFor(l.Color))
	}
}

func (r *TerminalRenderer) project(cam *camera.Camera, points []r3.Vec, ch rune, style tcell.Style) {
	if cam == nil {
		return
	}
	for _, p := range points {
		if s, _, ok := cam.Project(p); ok {
			r.set(s, ch, style)
		}
	}
}

func (r *TerminalRenderer) inkFor(hex string) tcell.Style {
	if st, ok := r.warpInk[hex]; ok {
		return st
	}
	st := tcell.StyleDefault.Foreground(tcell.ColorWhite)
	if c, err := assets.ParseHexColor(hex); err == nil {
		st = tcell.StyleDefault.Foreground(tcell.NewRGBColor(int32(c.R), int32(c.G), int32(c.B)))
	}
	r.warpInk[hex] = st
	return st
}

// RenderEmblem implements scene.Renderer
func (r *TerminalRenderer) RenderEmblem(emblem scene.EmblemView) {
	if r.covered || emblem.Model == nil || emblem.Opacity < 0.25 || emblem.Camera == nil {
		return
	}
	centre, _, ok := emblem.Camera.Project(r3.Vec{})
	if !ok {
		return
	}
	radius := emblem.Camera.ProjectedRadius(r3.Vec{}, emblem.Model.Radius()*emblem.Scale)
	// four spokes turning with the emblem
	for k := 0; k < 4; k++ {
		a := emblem.Rotation + float64(k)*math.Pi/2
		s, c := math.Sincos(a)
		for d := CellWidth / 2.0; d <= radius; d += CellWidth / 2.0 {
			r.set(r2.Add(centre, r2.Vec{X: c * d, Y: s * d / 2}), '+', styleEmblem)
		}
	}
	r.set(centre, '◆', styleEmblem)
}

// RenderBody implements scene.Renderer. The body is a filled ellipse of
// cells tinted with its texture's average colour.
func (r *TerminalRenderer) RenderBody(b scene.BodyView) {
	if r.covered || !b.Visible {
		return
	}
	style := tcell.StyleDefault.Foreground(r.tint(b))
	if b.Hovered {
		style = style.Bold(true)
	}
	if b.Focused {
		style = style.Reverse(true)
	}

	cx, cy, _ := r.toCell(b.Screen)
	rx := int(b.ScreenRadius / CellWidth)
	ry := int(b.ScreenRadius / CellHeight)
	for dy := -ry; dy <= ry; dy++ {
		for dx := -rx; dx <= rx; dx++ {
			if rx > 0 && ry > 0 && float64(dx*dx)/float64(rx*rx)+float64(dy*dy)/float64(ry*ry) > 1 {
				continue
			}
			x, y := cx+dx, cy+dy
			if x >= 0 && x < r.width && y >= 0 && y < r.height {
				r.buffer[y][x] = cell{'●', style}
			}
		}
	}

	if b.LabelOpacity >= 0.5 {
		name := []rune(b.Name)
		r.text(cx-len(name)/2, cy+ry+1, b.Name, styleLabel)
	}
}

func (r *TerminalRenderer) tint(b scene.BodyView) tcell.Color {
	if c, ok := r.tints[b.ID]; ok {
		return c
	}
	if b.Texture == nil {
		return tcell.ColorSilver
	}
	c := averageColor(b.Texture)
	r.tints[b.ID] = c
	return c
}

// averageColor samples up to 32x32 points of img
func averageColor(img image.Image) tcell.Color {
	bounds := img.Bounds()
	if bounds.Empty() {
		return tcell.ColorSilver
	}
	stepX := max(1, bounds.Dx()/32)
	stepY := max(1, bounds.Dy()/32)
	var sr, sg, sb, n uint64
	for y := bounds.Min.Y; y < bounds.Max.Y; y += stepY {
		for x := bounds.Min.X; x < bounds.Max.X; x += stepX {
			cr, cg, cb, ca := img.At(x, y).RGBA()
			if ca == 0 {
				continue
			}
			sr += uint64(cr >> 8)
			sg += uint64(cg >> 8)
			sb += uint64(cb >> 8)
			n++
		}
	}
	if n == 0 {
		return tcell.ColorSilver
	}
	return tcell.NewRGBColor(int32(sr/n), int32(sg/n), int32(sb/n))
}

// RenderTooltip implements scene.Renderer
func (r *TerminalRenderer) RenderTooltip(tip scene.TooltipView) {
	if r.covered || !tip.Visible || tip.Text == "" {
		return
	}
	x, y, _ := r.toCell(tip.Anchor)
	r.text(x, y, tip.Text, styleTooltip)
}

// Present implements scene.Renderer
func (r *TerminalRenderer) Present() error {
	if r.screen == nil {
		return errors.New("terminal renderer has no screen")
	}
	for y := range r.buffer {
		for x, c := range r.buffer[y] {
			r.screen.SetContent(x, y, c.r, nil, c.style)
		}
	}
	r.screen.Show()
	return nil
}

var _ scene.Renderer = (*TerminalRenderer)(nil)
