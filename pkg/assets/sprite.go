package assets

import (
	"context"
	"fmt"
	"image"
	"image/color"
	"math"
	"strconv"
	"strings"

	"github.com/opd-ai/go-universo/pkg/logging"
)

// SpriteSize is the default edge of generated sprites
const SpriteSize = 64

// CircleSprite draws a soft round point sprite: solid out to 60% of the
// radius, then fading to transparent at the edge.
func CircleSprite(c color.Color, size int) *image.NRGBA {
	if size <= 0 {
		size = SpriteSize
	}
	img := image.NewNRGBA(image.Rect(0, 0, size, size))
	base := color.NRGBAModel.Convert(c).(color.NRGBA)

	half := float64(size) / 2
	inner := float64(size) * 0.05
	for y := 0; y < size; y++ {
		for x := 0; x < size; x++ {
			d := math.Hypot(float64(x)+0.5-half, float64(y)+0.5-half)
			t := (d - inner) / (half - inner)
			var alpha float64
			switch {
			case t <= 0.6:
				alpha = 1
			case t >= 1:
				alpha = 0
			default:
				alpha = (1 - t) / 0.4
			}
			px := base
			px.A = uint8(math.Round(float64(base.A) * alpha))
			img.SetNRGBA(x, y, px)
		}
	}
	return img
}

// ParseHexColor accepts #rgb and #rrggbb
func ParseHexColor(s string) (color.NRGBA, error) {
	h := strings.TrimPrefix(strings.TrimSpace(s), "#")
	if len(h) == 3 {
		h = string([]byte{h[0], h[0], h[1], h[1], h[2], h[2]})
	}
	if len(h) != 6 {
		return color.NRGBA{}, fmt.Errorf("invalid colour %q", s)
	}
	v, err := strconv.ParseUint(h, 16, 32)
	if err != nil {
		return color.NRGBA{}, fmt.Errorf("invalid colour %q: %w", s, err)
	}
	return color.NRGBA{R: uint8(v >> 16), G: uint8(v >> 8), B: uint8(v), A: 0xff}, nil
}

// Placeholder stands in for a texture that could not be loaded
func Placeholder(size int) *image.NRGBA {
	return CircleSprite(color.NRGBA{R: 0x88, G: 0x88, B: 0x99, A: 0xff}, size)
}

// LoadTextures loads every path in order. A failed texture is logged and
// replaced by a placeholder, so the result always has one image per path.
func LoadTextures(ctx context.Context, l Loader, paths []string, logger *logging.Logger) []image.Image {
	if logger == nil {
		logger = logging.Discard()
	}
	out := make([]image.Image, len(paths))
	for i, p := range paths {
		img, err := l.LoadTexture(ctx, p)
		if err != nil {
			logger.Warn(ctx, "using placeholder texture", "path", p, "error", err)
			img = Placeholder(SpriteSize)
		}
		out[i] = img
	}
	return out
}
