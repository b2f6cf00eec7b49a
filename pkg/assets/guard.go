package assets

import (
	"context"
	"errors"
	"fmt"
	"image"
	"log/slog"
	"time"

	"github.com/sony/gobreaker"

	"github.com/opd-ai/go-universo/pkg/config"
	"github.com/opd-ai/go-universo/pkg/logging"
)

// GuardedLoader wraps a Loader with a circuit breaker. After a run of
// consecutive failures it stops calling the underlying loader and fails
// fast with ErrAssetsUnavailable until the breaker timeout expires. It never
// retries on its own.
type GuardedLoader struct {
	next    Loader
	breaker *gobreaker.CircuitBreaker
	timeout time.Duration
	logger  *logging.Logger
}

// NewGuardedLoader configures the breaker from the assets settings
func NewGuardedLoader(next Loader, cfg config.AssetsConfig, logger *logging.Logger) *GuardedLoader {
	if logger == nil {
		logger = logging.Discard()
	}
	logger = logger.WithComponent("assets")

	maxFailures := cfg.BreakerMaxFailures
	if maxFailures < 1 {
		maxFailures = 1
	}

	settings := gobreaker.Settings{
		Name:        "universo-assets",
		MaxRequests: 1,
		Timeout:     cfg.BreakerTimeout.Duration,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			return counts.ConsecutiveFailures >= uint32(maxFailures)
		},
		OnStateChange: func(name string, from, to gobreaker.State) {
			logger.Info(context.Background(), "asset breaker state changed",
				"name", name,
				"from", from.String(),
				"to", to.String(),
			)
		},
	}

	return &GuardedLoader{
		next:    next,
		breaker: gobreaker.NewCircuitBreaker(settings),
		timeout: cfg.LoadTimeout.Duration,
		logger:  logger,
	}
}

// LoadTexture implements Loader
func (g *GuardedLoader) LoadTexture(ctx context.Context, path string) (image.Image, error) {
	v, err := g.execute(ctx, "texture", path, func(ctx context.Context) (interface{}, error) {
		return g.next.LoadTexture(ctx, path)
	})
	if err != nil {
		return nil, err
	}
	img, _ := v.(image.Image)
	return img, nil
}

// LoadModel implements Loader
func (g *GuardedLoader) LoadModel(ctx context.Context, path string) (*Model, error) {
	v, err := g.execute(ctx, "model", path, func(ctx context.Context) (interface{}, error) {
		return g.next.LoadModel(ctx, path)
	})
	if err != nil {
		return nil, err
	}
	m, _ := v.(*Model)
	return m, nil
}

// State reports the breaker state
func (g *GuardedLoader) State() gobreaker.State {
	return g.breaker.State()
}

func (g *GuardedLoader) execute(ctx context.Context, kind, path string, op func(context.Context) (interface{}, error)) (interface{}, error) {
	if g.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, g.timeout)
		defer cancel()
	}

	v, err := g.breaker.Execute(func() (interface{}, error) {
		return op(ctx)
	})
	if errors.Is(err, gobreaker.ErrOpenState) || errors.Is(err, gobreaker.ErrTooManyRequests) {
		return nil, fmt.Errorf("%w: %s %s", ErrAssetsUnavailable, kind, path)
	}
	if err != nil {
		g.logger.LogWithContext(ctx, slog.LevelWarn, "asset load failed",
			"kind", kind,
			"path", path,
			"error", err,
			"state", g.breaker.State().String(),
		)
		return nil, fmt.Errorf("load %s %s: %w", kind, path, err)
	}
	return v, nil
}
