package engo

import (
	"context"
	"image/color"
	"time"

	"github.com/EngoEngine/ecs"
	"github.com/EngoEngine/engo"
	"github.com/EngoEngine/engo/common"

	"github.com/opd-ai/go-universo/pkg/assets"
	"github.com/opd-ai/go-universo/pkg/config"
	"github.com/opd-ai/go-universo/pkg/event"
	"github.com/opd-ai/go-universo/pkg/logging"
	"github.com/opd-ai/go-universo/pkg/scene"
)

// SceneType is the name engo knows the scene by
const SceneType = "universo"

// FontSize is the label and tooltip size in pixels
const FontSize = 16

// Scene is the engo scene hosting the universe
type Scene struct {
	cfg    *config.SceneConfig
	loader assets.Loader
	bus    *event.Bus
	logger *logging.Logger
	clock  scene.Clock

	driver   *scene.Driver
	renderer *Renderer
	cancel   context.CancelFunc
}

// NewScene creates a scene that loads its assets through loader
func NewScene(cfg *config.SceneConfig, loader assets.Loader, bus *event.Bus, logger *logging.Logger) *Scene {
	if cfg == nil {
		cfg = config.DefaultConfig()
	}
	if logger == nil {
		logger = logging.NewLogger()
	}
	return &Scene{
		cfg:    cfg,
		loader: loader,
		bus:    bus,
		logger: logger.WithComponent("engo"),
		clock:  scene.NewSystemClock(),
	}
}

// Type returns the scene type (required by Engo)
func (s *Scene) Type() string {
	return SceneType
}

// Preload is called before the scene starts (required by Engo)
func (s *Scene) Preload() {}

// Setup builds the systems and the scene driver (required by Engo)
func (s *Scene) Setup(u engo.Updater) {
	ctx := context.Background()
	world, ok := u.(*ecs.World)
	if !ok {
		s.logger.Error(ctx, "unexpected updater", nil, "type", SceneType)
		engo.Exit()
		return
	}
	common.SetBackground(color.Black)

	rs := &common.RenderSystem{}
	world.AddSystem(rs)

	hud := NewHUD()
	if font, err := LoadDefaultFont(FontSize); err != nil {
		s.logger.Warn(ctx, "labels disabled, font failed to load", "error", err)
	} else {
		hud.SetFont(font)
	}
	s.renderer = NewRenderer(rs, NewTextureCache(nil), hud)

	d, err := scene.New(s.cfg, scene.Options{
		Clock:    s.clock,
		Renderer: s.renderer,
		Bus:      s.bus,
		Logger:   s.logger,
	})
	if err != nil {
		s.logger.Error(ctx, "scene setup failed", err)
		engo.Exit()
		return
	}
	s.driver = d

	SetupInputBindings()
	world.AddSystem(NewViewSystem(d, s.clock, s.logger))
	world.AddSystem(NewInputSystem(d, s.clock, s.logger))
	world.AddSystem(NewFrameSystem(d, s.clock, s.logger))

	if s.loader != nil {
		loadCtx, cancel := context.WithCancel(ctx)
		s.cancel = cancel
		go d.LoadAssets(loadCtx, s.loader)
	}
}

// Exit stops any asset loading still in flight
func (s *Scene) Exit() {
	if s.cancel != nil {
		s.cancel()
	}
}

// Driver returns the scene driver once Setup has run
func (s *Scene) Driver() *scene.Driver {
	return s.driver
}

// Ticker advances the scene one frame
type Ticker interface {
	Tick(now time.Duration) error
}

// FrameSystem ticks the scene driver once per engo update
type FrameSystem struct {
	ticker  Ticker
	clock   scene.Clock
	logger  *logging.Logger
	limiter *logging.RateLimiter
	errors  uint64
}

// NewFrameSystem creates a frame system for ticker
func NewFrameSystem(ticker Ticker, clock scene.Clock, logger *logging.Logger) *FrameSystem {
	if logger == nil {
		logger = logging.Discard()
	}
	return &FrameSystem{
		ticker:  ticker,
		clock:   clock,
		logger:  logger.WithComponent("frame"),
		limiter: logging.NewRateLimiter(1, time.Second),
	}
}

// Priority runs the tick after view and input updates and before drawing
func (fs *FrameSystem) Priority() int {
	return 0
}

// Remove satisfies the ecs.System interface
func (fs *FrameSystem) Remove(basic ecs.BasicEntity) {}

// Update ticks the driver. Failed frames are counted and logged at most
// once a second.
func (fs *FrameSystem) Update(dt float32) {
	now := fs.clock.Now()
	if err := fs.ticker.Tick(now); err != nil {
		fs.errors++
		if fs.limiter.Allow("tick", now) {
			fs.logger.Error(context.Background(), "frame failed", err, "failures", fs.errors)
		}
	}
}

// Errors reports how many ticks failed
func (fs *FrameSystem) Errors() uint64 {
	return fs.errors
}
