package config

import (
	"os"
	"strconv"
	"time"

	"github.com/opd-ai/go-universo/pkg/validation"
)

// EnvironmentConfig holds the settings that may be overridden through
// UNIVERSO_* environment variables.
type EnvironmentConfig struct {
	ConfigPath string
	AssetsRoot string
	Seed       uint64
	SeedSet    bool
	FPS        int
	Swarm      bool
	Width      float64
	Height     float64
	// FrameBudget bounds how long one tick may take before it is logged as slow
	FrameBudget time.Duration
}

// ValidationError is reported for a single bad environment value
type ValidationError = validation.FieldError

// LoadConfigFromEnv reads UNIVERSO_* variables, falling back to the defaults
// for anything unset or unparsable, and validates the result.
func LoadConfigFromEnv() (*EnvironmentConfig, error) {
	defaults := DefaultConfig()

	config := &EnvironmentConfig{
		ConfigPath:  getEnvOrDefault("UNIVERSO_CONFIG", ""),
		AssetsRoot:  getEnvOrDefault("UNIVERSO_ASSETS", defaults.Assets.Root),
		FPS:         getEnvAsIntOrDefault("UNIVERSO_FPS", defaults.FPS),
		Swarm:       getEnvAsBoolOrDefault("UNIVERSO_SWARM", defaults.Swarm),
		Width:       getEnvAsFloatOrDefault("UNIVERSO_WIDTH", defaults.Viewport.FallbackWidth),
		Height:      getEnvAsFloatOrDefault("UNIVERSO_HEIGHT", defaults.Viewport.FallbackHeight),
		FrameBudget: getEnvAsDurationOrDefault("UNIVERSO_FRAME_BUDGET", 50*time.Millisecond),
	}

	if raw := os.Getenv("UNIVERSO_SEED"); raw != "" {
		if seed, err := strconv.ParseUint(raw, 10, 64); err == nil {
			config.Seed = seed
			config.SeedSet = true
		}
	}

	if err := validateEnvironmentConfig(config); err != nil {
		return nil, err
	}
	return config, nil
}

func validateEnvironmentConfig(config *EnvironmentConfig) error {
	if config.FPS < 1 || config.FPS > 240 {
		return &ValidationError{Field: "FPS", Message: "must be between 1 and 240"}
	}
	if config.Width <= 0 {
		return &ValidationError{Field: "Width", Message: "must be positive"}
	}
	if config.Height <= 0 {
		return &ValidationError{Field: "Height", Message: "must be positive"}
	}
	if config.AssetsRoot == "" {
		return &ValidationError{Field: "AssetsRoot", Message: "cannot be empty"}
	}
	if config.FrameBudget < time.Millisecond || config.FrameBudget > time.Second {
		return &ValidationError{Field: "FrameBudget", Message: "must be between 1ms and 1s"}
	}
	return nil
}

// ApplyEnvironmentOverrides copies environment settings onto a scene config.
// The seed is only replaced when UNIVERSO_SEED was set.
func ApplyEnvironmentOverrides(scene *SceneConfig) error {
	env, err := LoadConfigFromEnv()
	if err != nil {
		return err
	}
	env.Apply(scene)
	return nil
}

// Apply copies the environment settings onto scene
func (e *EnvironmentConfig) Apply(scene *SceneConfig) {
	if e.SeedSet {
		scene.Seed = e.Seed
	}
	scene.FPS = e.FPS
	scene.Swarm = e.Swarm
	scene.Assets.Root = e.AssetsRoot
	scene.Viewport.FallbackWidth = e.Width
	scene.Viewport.FallbackHeight = e.Height
}

func getEnvOrDefault(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvAsIntOrDefault(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if parsed, err := strconv.Atoi(value); err == nil {
			return parsed
		}
	}
	return defaultValue
}

func getEnvAsBoolOrDefault(key string, defaultValue bool) bool {
	if value := os.Getenv(key); value != "" {
		if parsed, err := strconv.ParseBool(value); err == nil {
			return parsed
		}
	}
	return defaultValue
}

func getEnvAsFloatOrDefault(key string, defaultValue float64) float64 {
	if value := os.Getenv(key); value != "" {
		if parsed, err := strconv.ParseFloat(value, 64); err == nil {
			return parsed
		}
	}
	return defaultValue
}

func getEnvAsDurationOrDefault(key string, defaultValue time.Duration) time.Duration {
	if value := os.Getenv(key); value != "" {
		if parsed, err := time.ParseDuration(value); err == nil {
			return parsed
		}
	}
	return defaultValue
}
