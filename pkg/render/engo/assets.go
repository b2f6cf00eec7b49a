package engo

import (
	"image"
	"image/color"
	"image/draw"
	"math"
	"sync"

	"github.com/EngoEngine/engo/common"

	"github.com/opd-ai/go-universo/pkg/assets"
)

// Built-in texture keys
const (
	KeyStar        = "star"
	KeyPlaceholder = "placeholder"
	KeyRing        = "ring"
	KeyEmblem      = "emblem"
	KeyOverlay     = "overlay"
)

// Uploader turns an image into a GPU texture. It must run on the render
// thread.
type Uploader func(img *image.NRGBA) common.Drawable

// UploadTexture is the Uploader backed by engo's OpenGL textures
func UploadTexture(img *image.NRGBA) common.Drawable {
	return common.NewTextureSingle(common.NewImageObject(img))
}

// TextureCache holds decoded images by key and uploads each one the first
// time it is drawn. Register may be called from any goroutine.
type TextureCache struct {
	upload Uploader

	mu        sync.Mutex
	images    map[string]*image.NRGBA
	drawables map[string]common.Drawable
}

// NewTextureCache creates a cache with the built-in sprites registered. A
// nil upload selects UploadTexture.
func NewTextureCache(upload Uploader) *TextureCache {
	if upload == nil {
		upload = UploadTexture
	}
	tc := &TextureCache{
		upload:    upload,
		images:    make(map[string]*image.NRGBA),
		drawables: make(map[string]common.Drawable),
	}
	white := color.NRGBA{R: 255, G: 255, B: 255, A: 255}
	tc.Register(KeyStar, assets.CircleSprite(white, 8))
	tc.Register(KeyPlaceholder, assets.Placeholder(assets.SpriteSize))
	tc.Register(KeyRing, ringSprite(assets.SpriteSize, 3))
	tc.Register(KeyEmblem, ringSprite(assets.SpriteSize*2, 6))
	overlay := image.NewNRGBA(image.Rect(0, 0, 1, 1))
	overlay.SetNRGBA(0, 0, white)
	tc.Register(KeyOverlay, overlay)
	return tc
}

// Register stores img under key, replacing and releasing any earlier texture
func (tc *TextureCache) Register(key string, img image.Image) {
	nrgba := toNRGBA(img)
	tc.mu.Lock()
	defer tc.mu.Unlock()
	if d, ok := tc.drawables[key]; ok && d != nil {
		d.Close()
	}
	delete(tc.drawables, key)
	tc.images[key] = nrgba
}

// Has reports whether an image is registered under key
func (tc *TextureCache) Has(key string) bool {
	tc.mu.Lock()
	defer tc.mu.Unlock()
	_, ok := tc.images[key]
	return ok
}

// Drawable returns the texture for key, uploading it on first use. Unknown
// keys yield nil.
func (tc *TextureCache) Drawable(key string) common.Drawable {
	tc.mu.Lock()
	defer tc.mu.Unlock()
	if d, ok := tc.drawables[key]; ok {
		return d
	}
	img, ok := tc.images[key]
	if !ok {
		return nil
	}
	d := tc.upload(img)
	tc.drawables[key] = d
	return d
}

// toNRGBA converts img to the pixel layout engo uploads
func toNRGBA(img image.Image) *image.NRGBA {
	if n, ok := img.(*image.NRGBA); ok {
		return n
	}
	bounds := img.Bounds()
	n := image.NewNRGBA(image.Rect(0, 0, bounds.Dx(), bounds.Dy()))
	draw.Draw(n, n.Bounds(), img, bounds.Min, draw.Src)
	return n
}

// ringSprite draws a white anti-aliased ring of the given stroke width
func ringSprite(size int, stroke float64) *image.NRGBA {
	img := image.NewNRGBA(image.Rect(0, 0, size, size))
	half := float64(size) / 2
	radius := half - stroke
	for y := 0; y < size; y++ {
		for x := 0; x < size; x++ {
			d := math.Abs(math.Hypot(float64(x)+0.5-half, float64(y)+0.5-half) - radius)
			alpha := math.Max(0, math.Min(1, stroke/2-d+0.5))
			img.SetNRGBA(x, y, color.NRGBA{R: 255, G: 255, B: 255, A: uint8(math.Round(alpha * 255))})
		}
	}
	return img
}
