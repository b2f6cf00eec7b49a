package engo

import (
	"bytes"
	"image/color"
	"math"
	"unicode/utf8"

	"github.com/EngoEngine/engo"
	"github.com/EngoEngine/engo/common"
	"golang.org/x/image/font/gofont/goregular"

	"github.com/opd-ai/go-universo/pkg/scene"
)

// fontURL is the name the bundled font is registered under in engo.Files
const fontURL = "universo/goregular.ttf"

// Layer depths, back to front
const (
	zStars   float32 = 0
	zEmblem  float32 = 1
	zBodies  float32 = 2
	zOverlay float32 = 10
	zWarp    float32 = 11
	zLabels  float32 = 12
	zTooltip float32 = 13
)

// HUD lays out the text and the loading overlay on top of the scene
type HUD struct {
	font *common.Font

	labelColor   color.NRGBA
	tooltipColor color.NRGBA
	overlayColor color.NRGBA
}

// NewHUD creates a HUD without a font; text stays hidden until SetFont
func NewHUD() *HUD {
	return &HUD{
		labelColor:   color.NRGBA{R: 220, G: 220, B: 230, A: 255},
		tooltipColor: color.NRGBA{R: 255, G: 255, B: 255, A: 255},
		overlayColor: color.NRGBA{A: 255},
	}
}

// LoadDefaultFont registers the bundled Go font with engo and prepares it
// for text rendering. It needs an OpenGL context.
func LoadDefaultFont(size float64) (*common.Font, error) {
	if err := engo.Files.LoadReaderData(fontURL, bytes.NewReader(goregular.TTF)); err != nil {
		return nil, err
	}
	f := &common.Font{URL: fontURL, FG: color.White, Size: size}
	if err := f.CreatePreloaded(); err != nil {
		return nil, err
	}
	return f, nil
}

// SetFont sets the font used for labels and the tooltip
func (h *HUD) SetFont(font *common.Font) {
	h.font = font
}

// Font returns the current font
func (h *HUD) Font() *common.Font {
	return h.font
}

// overlay covers the whole viewport while the loading screen fades
func (h *HUD) overlay(width, height, opacity float64) (quad, bool) {
	if opacity <= 0 || width <= 0 || height <= 0 {
		return quad{}, false
	}
	tint := h.overlayColor
	tint.A = alpha(opacity)
	return quad{
		key:    KeyOverlay,
		x:      float32(width / 2),
		y:      float32(height / 2),
		width:  float32(width),
		height: float32(height),
		tint:   tint,
		z:      zOverlay,
	}, true
}

// label places a body name centred under its disc
func (h *HUD) label(name string, b scene.BodyView) (quad, bool) {
	if h.font == nil || name == "" || b.LabelOpacity <= 0 {
		return quad{}, false
	}
	tint := h.labelColor
	tint.A = alpha(b.LabelOpacity)
	// glyphs average a little over half the font size in width
	width := float64(utf8.RuneCountInString(name)) * h.font.Size * 0.55
	return quad{
		text: name,
		x:    float32(b.Screen.X - width/2),
		y:    float32(b.Screen.Y + b.ScreenRadius + 4),
		tint: tint,
		z:    zLabels,
	}, true
}

// tooltip places the typed hover text at its anchor
func (h *HUD) tooltip(tip scene.TooltipView) (quad, bool) {
	if h.font == nil || !tip.Visible || tip.Text == "" {
		return quad{}, false
	}
	return quad{
		text: tip.Text,
		x:    float32(tip.Anchor.X),
		y:    float32(tip.Anchor.Y),
		tint: h.tooltipColor,
		z:    zTooltip,
	}, true
}

func alpha(opacity float64) uint8 {
	return uint8(math.Round(math.Max(0, math.Min(1, opacity)) * 255))
}
