// cmd/universo/main.go
package main

import (
	"context"
	"flag"
	"io"
	"os"

	"github.com/EngoEngine/engo"

	"github.com/opd-ai/go-universo/pkg/assets"
	"github.com/opd-ai/go-universo/pkg/config"
	"github.com/opd-ai/go-universo/pkg/event"
	"github.com/opd-ai/go-universo/pkg/logging"
	engorender "github.com/opd-ai/go-universo/pkg/render/engo"
)

// options are the command line settings
type options struct {
	configPath    string
	createDefault bool
	renderer      string
	logPath       string
	fullscreen    bool
	width         int
	height        int
}

func main() {
	var opts options
	flag.StringVar(&opts.configPath, "config", "universo.yaml", "Path to configuration file (.yaml or .json)")
	flag.BoolVar(&opts.createDefault, "default", false, "Create default configuration file")
	flag.StringVar(&opts.renderer, "renderer", "terminal", "Renderer type: 'terminal' or 'engo'")
	flag.StringVar(&opts.logPath, "log", "universo.log", "Log file (terminal renderer only)")
	flag.BoolVar(&opts.fullscreen, "fullscreen", false, "Run in fullscreen mode (Engo only)")
	flag.IntVar(&opts.width, "width", 1280, "Window width (Engo only)")
	flag.IntVar(&opts.height, "height", 800, "Window height (Engo only)")
	flag.Parse()

	if err := run(opts); err != nil {
		os.Exit(1)
	}
}

// run logs its own failures; the returned error only sets the exit status.
// Returning instead of exiting lets the log file close.
func run(opts options) error {
	// The terminal owns stdout, so its logs go to a file
	var logOut io.Writer = os.Stderr
	if opts.renderer == "terminal" {
		f, err := os.OpenFile(opts.logPath, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
		if err != nil {
			logging.NewLogger().Error(context.Background(), "Failed to open log file", err, "log_path", opts.logPath)
			return err
		}
		defer f.Close()
		logOut = f
	}
	logger := logging.NewLoggerWithWriter(logOut)
	ctx := logging.WithCorrelationID(context.Background(), logging.GenerateCorrelationID())

	if opts.createDefault {
		if err := config.SaveConfig(config.DefaultConfig(), opts.configPath); err != nil {
			logger.Error(ctx, "Failed to create default configuration", err,
				"config_path", opts.configPath,
			)
			return err
		}
		logger.Info(ctx, "Created default configuration file",
			"config_path", opts.configPath,
		)
		return nil
	}

	cfg, err := loadConfig(ctx, opts.configPath, logger)
	if err != nil {
		logger.Error(ctx, "Failed to load configuration", err,
			"config_path", opts.configPath,
		)
		return err
	}

	bus := event.NewEventBus()
	subscribeLogging(bus, logger)
	loader := assets.NewGuardedLoader(assets.NewFileLoader(cfg.Assets.Root), cfg.Assets, logger)

	switch opts.renderer {
	case "engo":
		startEngoRenderer(cfg, loader, bus, logger, opts.width, opts.height, opts.fullscreen)
	case "terminal":
		fallthrough
	default:
		if err := runTerminal(ctx, cfg, loader, bus, logger); err != nil {
			logger.Error(ctx, "Terminal renderer failed", err)
			return err
		}
	}
	return nil
}

// loadConfig reads the configuration file when present and applies the
// environment overrides
func loadConfig(ctx context.Context, path string, logger *logging.Logger) (*config.SceneConfig, error) {
	var cfg *config.SceneConfig
	if _, err := os.Stat(path); os.IsNotExist(err) {
		logger.Info(ctx, "Configuration file not found, using default configuration",
			"config_path", path,
		)
		cfg = config.DefaultConfig()
	} else {
		cfg, err = config.LoadConfig(path)
		if err != nil {
			return nil, err
		}
	}
	if err := config.ApplyEnvironmentOverrides(cfg); err != nil {
		return nil, err
	}
	return cfg, cfg.Validate()
}

// subscribeLogging records the scene's lifecycle events
func subscribeLogging(bus *event.Bus, logger *logging.Logger) {
	ctx := context.Background()
	log := logger.WithComponent("events")
	for _, t := range []event.Type{
		event.ModeChanged,
		event.TransitionCompleted,
		event.LoadingFadeStarted,
		event.LoadingFinished,
		event.FrameDropped,
	} {
		bus.Subscribe(t, func(e event.Event) {
			log.Info(ctx, "Scene event", "type", string(e.GetType()))
		})
	}
}

// startEngoRenderer opens a window and runs the scene until it closes
func startEngoRenderer(cfg *config.SceneConfig, loader *assets.GuardedLoader, bus *event.Bus, logger *logging.Logger, width, height int, fullscreen bool) {
	scene := engorender.NewScene(cfg, loader, bus, logger)

	opts := engo.RunOptions{
		Title:      "Universo",
		Width:      width,
		Height:     height,
		Fullscreen: fullscreen,
		VSync:      true,
		FPSLimit:   cfg.FPS,
	}

	engo.Run(opts, scene)
}
