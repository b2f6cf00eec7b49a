package engo

import (
	"errors"
	"fmt"
	"image/color"
	"math"

	"github.com/EngoEngine/ecs"
	"github.com/EngoEngine/engo"
	"github.com/EngoEngine/engo/common"
	"gonum.org/v1/gonum/spatial/r3"

	"github.com/opd-ai/go-universo/pkg/assets"
	"github.com/opd-ai/go-universo/pkg/body"
	"github.com/opd-ai/go-universo/pkg/camera"
	"github.com/opd-ai/go-universo/pkg/scene"
)

// ErrNoSink is returned by Present when the renderer has nowhere to draw
var ErrNoSink = errors.New("engo renderer has no render system")

// Sink receives the renderer's entities. common.RenderSystem satisfies it.
type Sink interface {
	Add(basic *ecs.BasicEntity, render *common.RenderComponent, space *common.SpaceComponent)
}

var (
	starTint   = color.NRGBA{R: 0xb0, G: 0xb0, B: 0xc0, A: 0xff}
	emblemTint = color.NRGBA{R: 0x88, G: 0xcc, B: 0xff, A: 0xff}
	focusTint  = color.NRGBA{R: 0xff, G: 0xff, B: 0xff, A: 0xcc}
)

// quad is one textured rectangle or text run for this frame. Sprites are
// positioned by their centre and text by its top-left corner.
type quad struct {
	key      string
	text     string
	x, y     float32
	width    float32
	height   float32
	rotation float32
	tint     color.NRGBA
	z        float32
}

// sprite is a pooled ECS entity reused across frames
type sprite struct {
	basic  ecs.BasicEntity
	render common.RenderComponent
	space  common.SpaceComponent
	z      float32
}

// Renderer implements scene.Renderer on engo's render system. Each frame is
// collected as quads and applied to a pool of entities on Present, so the
// entity count only grows with the busiest frame.
type Renderer struct {
	sink     Sink
	textures *TextureCache
	hud      *HUD

	quads   []quad
	pool    []*sprite
	covered bool
	frames  uint64
}

// NewRenderer creates a renderer drawing into sink
func NewRenderer(sink Sink, textures *TextureCache, hud *HUD) *Renderer {
	if textures == nil {
		textures = NewTextureCache(nil)
	}
	if hud == nil {
		hud = NewHUD()
	}
	return &Renderer{
		sink:     sink,
		textures: textures,
		hud:      hud,
	}
}

// Clear implements scene.Renderer
func (r *Renderer) Clear() {
	r.quads = r.quads[:0]
	r.covered = false
}

// RenderStars implements scene.Renderer
func (r *Renderer) RenderStars(stars scene.StarsView) {
	r.covered = stars.Warp != nil && stars.OverlayOpacity >= 1
	if !r.covered {
		r.points(stars.Camera, stars.Backdrop, 1, starTint, zStars)
	}
	if stars.Warp == nil || stars.OverlayOpacity <= 0 || stars.Camera == nil {
		return
	}
	w, h := stars.Camera.Viewport()
	if q, ok := r.hud.overlay(w, h, stars.OverlayOpacity); ok {
		r.quads = append(r.quads, q)
	}
	for _, l := range stars.Warp.Layers {
		tint := color.NRGBA{R: 255, G: 255, B: 255, A: 255}
		if c, err := assets.ParseHexColor(l.Color); err == nil {
			tint = c
		}
		tint.A = alpha(stars.OverlayOpacity)
		r.points(stars.WarpCamera, l.Points, l.Size, tint, zWarp)
	}
}

func (r *Renderer) points(cam *camera.Camera, points []r3.Vec, size float64, tint color.NRGBA, z float32) {
	if cam == nil {
		return
	}
	for _, p := range points {
		s, _, ok := cam.Project(p)
		if !ok {
			continue
		}
		d := float32(math.Max(1, 2*cam.ProjectedRadius(p, size)))
		r.quads = append(r.quads, quad{
			key:    KeyStar,
			x:      float32(s.X),
			y:      float32(s.Y),
			width:  d,
			height: d,
			tint:   tint,
			z:      z,
		})
	}
}

// RenderEmblem implements scene.Renderer
func (r *Renderer) RenderEmblem(emblem scene.EmblemView) {
	if r.covered || emblem.Model == nil || emblem.Camera == nil || emblem.Opacity <= 0 {
		return
	}
	s, _, ok := emblem.Camera.Project(r3.Vec{})
	if !ok {
		return
	}
	d := float32(2 * emblem.Camera.ProjectedRadius(r3.Vec{}, emblem.Model.Radius()*emblem.Scale))
	tint := emblemTint
	tint.A = alpha(emblem.Opacity)
	r.quads = append(r.quads, quad{
		key:      KeyEmblem,
		x:        float32(s.X),
		y:        float32(s.Y),
		width:    d,
		height:   d,
		rotation: float32(emblem.Rotation * 180 / math.Pi),
		tint:     tint,
		z:        zEmblem,
	})
}

// RenderBody implements scene.Renderer
func (r *Renderer) RenderBody(b scene.BodyView) {
	if r.covered || !b.Visible {
		return
	}
	key := KeyPlaceholder
	if b.Texture != nil {
		key = bodyKey(b.ID)
		if !r.textures.Has(key) {
			r.textures.Register(key, b.Texture)
		}
	}
	d := float32(2 * b.ScreenRadius)
	// nearer bodies draw over farther ones
	z := zBodies + float32(1/(1+math.Max(0, b.Depth)))
	tint := color.NRGBA{R: 255, G: 255, B: 255, A: 255}
	if !b.Hovered && !b.Focused {
		tint = color.NRGBA{R: 230, G: 230, B: 230, A: 255}
	}
	r.quads = append(r.quads, quad{
		key:    key,
		x:      float32(b.Screen.X),
		y:      float32(b.Screen.Y),
		width:  d,
		height: d,
		tint:   tint,
		z:      z,
	})
	if b.Focused {
		r.quads = append(r.quads, quad{
			key:    KeyRing,
			x:      float32(b.Screen.X),
			y:      float32(b.Screen.Y),
			width:  d * 1.3,
			height: d * 1.3,
			tint:   focusTint,
			z:      z,
		})
	}
	if q, ok := r.hud.label(b.Name, b); ok {
		r.quads = append(r.quads, q)
	}
}

// RenderTooltip implements scene.Renderer
func (r *Renderer) RenderTooltip(tip scene.TooltipView) {
	if r.covered {
		return
	}
	if q, ok := r.hud.tooltip(tip); ok {
		r.quads = append(r.quads, q)
	}
}

// Present implements scene.Renderer. Pooled entities beyond this frame's
// quads are hidden.
func (r *Renderer) Present() error {
	if r.sink == nil {
		return ErrNoSink
	}
	for i, q := range r.quads {
		r.apply(r.spriteAt(i), q)
	}
	for _, s := range r.pool[len(r.quads):] {
		s.render.Hidden = true
	}
	r.frames++
	return nil
}

func (r *Renderer) spriteAt(i int) *sprite {
	for len(r.pool) <= i {
		s := &sprite{basic: ecs.NewBasic()}
		r.pool = append(r.pool, s)
		r.sink.Add(&s.basic, &s.render, &s.space)
	}
	return r.pool[i]
}

func (r *Renderer) apply(s *sprite, q quad) {
	s.render.Hidden = false
	s.render.Color = q.tint
	if s.z != q.z {
		s.z = q.z
		// SetZIndex notifies the render system, which only exists in a running game
		if engo.Mailbox != nil {
			s.render.SetZIndex(q.z)
		}
	}
	s.space.Rotation = q.rotation

	if q.text != "" {
		s.render.Drawable = common.Text{Font: r.hud.Font(), Text: q.text}
		s.render.Scale = engo.Point{X: 1, Y: 1}
		s.space.Position = engo.Point{X: q.x, Y: q.y}
		s.space.Width, s.space.Height = 0, 0
		return
	}

	d := r.textures.Drawable(q.key)
	s.render.Drawable = d
	s.render.Scale = engo.Point{X: 1, Y: 1}
	if d != nil && d.Width() > 0 && d.Height() > 0 {
		s.render.Scale = engo.Point{X: q.width / d.Width(), Y: q.height / d.Height()}
	}
	s.space.Width, s.space.Height = q.width, q.height
	s.space.Position = engo.Point{X: q.x - q.width/2, Y: q.y - q.height/2}
}

// Frames reports how many frames were presented
func (r *Renderer) Frames() uint64 {
	return r.frames
}

func bodyKey(id body.ID) string {
	return fmt.Sprintf("body:%d", id)
}

var _ scene.Renderer = (*Renderer)(nil)
