// pkg/config/config.go
package config

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/opd-ai/go-universo/pkg/validation"
)

// SceneConfig contains everything needed to build a universe scene. It is
// read once at start-up; nothing in the scene writes back to it.
type SceneConfig struct {
	Seed      uint64          `json:"seed" yaml:"seed"`
	FPS       int             `json:"fps" yaml:"fps"`
	Swarm     bool            `json:"swarm" yaml:"swarm"`
	Bodies    []BodyConfig    `json:"bodies" yaml:"bodies"`
	Orbit     OrbitConfig     `json:"orbit" yaml:"orbit"`
	Timing    TimingConfig    `json:"timing" yaml:"timing"`
	Staged    StagedConfig    `json:"staged" yaml:"staged"`
	Viewport  ViewportConfig  `json:"viewport" yaml:"viewport"`
	Loading   LoadingConfig   `json:"loading" yaml:"loading"`
	Emblem    EmblemConfig    `json:"emblem" yaml:"emblem"`
	Starfield StarfieldConfig `json:"starfield" yaml:"starfield"`
	Assets    AssetsConfig    `json:"assets" yaml:"assets"`
}

// BodyConfig describes one orbiting body. Ids are assigned by position, 1..N.
type BodyConfig struct {
	Name     string  `json:"name" yaml:"name"`
	Texture  string  `json:"texture" yaml:"texture"`
	SizeHint float64 `json:"sizeHint" yaml:"sizeHint"`
}

// OrbitConfig holds the desktop orbit kinematics
type OrbitConfig struct {
	BaseRadius           float64 `json:"baseRadius" yaml:"baseRadius"`
	RadiusStep           float64 `json:"radiusStep" yaml:"radiusStep"`
	RadiusFactor         float64 `json:"radiusFactor" yaml:"radiusFactor"`
	BaseSpeed            float64 `json:"baseSpeed" yaml:"baseSpeed"`
	SpeedStep            float64 `json:"speedStep" yaml:"speedStep"`
	FlattenY             float64 `json:"flattenY" yaml:"flattenY"`
	FlattenZ             float64 `json:"flattenZ" yaml:"flattenZ"`
	MinSize              float64 `json:"minSize" yaml:"minSize"`
	SizeJitter           float64 `json:"sizeJitter" yaml:"sizeJitter"`
	HoverBrake           float64 `json:"hoverBrake" yaml:"hoverBrake"`
	SpeedSmoothing       float64 `json:"speedSmoothing" yaml:"speedSmoothing"`
	MinAngularSeparation float64 `json:"minAngularSeparation" yaml:"minAngularSeparation"`
	AngularPush          float64 `json:"angularPush" yaml:"angularPush"`
	SwarmDamping         float64 `json:"swarmDamping" yaml:"swarmDamping"`
	OffsetRelax          float64 `json:"offsetRelax" yaml:"offsetRelax"`
	SelfSpin             float64 `json:"selfSpin" yaml:"selfSpin"`
	PanelMargin          float64 `json:"panelMargin" yaml:"panelMargin"`
}

// TimingConfig holds the authored transition durations
type TimingConfig struct {
	Reset     Duration `json:"reset" yaml:"reset"`
	Queue     Duration `json:"queue" yaml:"queue"`
	Formation Duration `json:"formation" yaml:"formation"`
	Open      Duration `json:"open" yaml:"open"`
	Rotate    Duration `json:"rotate" yaml:"rotate"`
	Return    Duration `json:"return" yaml:"return"`
}

// StagedConfig shapes the constrained-viewport layouts
type StagedConfig struct {
	QueueOffsetX    float64 `json:"queueOffsetX" yaml:"queueOffsetX"`
	QueueSpacing    float64 `json:"queueSpacing" yaml:"queueSpacing"`
	FormationRadius float64 `json:"formationRadius" yaml:"formationRadius"`
	OpenFactor      float64 `json:"openFactor" yaml:"openFactor"`
	ZoomDip         float64 `json:"zoomDip" yaml:"zoomDip"`
	IdleRate        float64 `json:"idleRate" yaml:"idleRate"`
	Bobbing         bool    `json:"bobbing" yaml:"bobbing"`
	BobAmplitude    float64 `json:"bobAmplitude" yaml:"bobAmplitude"`
	BobFrequency    float64 `json:"bobFrequency" yaml:"bobFrequency"`
}

// Breakpoint maps viewports narrower than MaxWidth to Scale
type Breakpoint struct {
	MaxWidth float64 `json:"maxWidth" yaml:"maxWidth"`
	Scale    float64 `json:"scale" yaml:"scale"`
}

// ViewportConfig drives the responsive scale manager
type ViewportConfig struct {
	Breakpoints        []Breakpoint `json:"breakpoints" yaml:"breakpoints"`
	FullScale          float64      `json:"fullScale" yaml:"fullScale"`
	MinScale           float64      `json:"minScale" yaml:"minScale"`
	ConstrainedWidth   float64      `json:"constrainedWidth" yaml:"constrainedWidth"`
	FallbackWidth      float64      `json:"fallbackWidth" yaml:"fallbackWidth"`
	FallbackHeight     float64      `json:"fallbackHeight" yaml:"fallbackHeight"`
	BaseCameraDistance float64      `json:"baseCameraDistance" yaml:"baseCameraDistance"`
	FieldOfView        float64      `json:"fieldOfView" yaml:"fieldOfView"`
	CameraStiffness    float64      `json:"cameraStiffness" yaml:"cameraStiffness"`
	CameraDamping      float64      `json:"cameraDamping" yaml:"cameraDamping"`
}

// LoadingConfig times the loading overlay
type LoadingConfig struct {
	FadeDelay    Duration `json:"fadeDelay" yaml:"fadeDelay"`
	FadeDuration Duration `json:"fadeDuration" yaml:"fadeDuration"`
	Fallback     Duration `json:"fallback" yaml:"fallback"`
	ErrorDelay   Duration `json:"errorDelay" yaml:"errorDelay"`
}

// EmblemConfig describes the central rotating model
type EmblemConfig struct {
	Model         string  `json:"model" yaml:"model"`
	BaseScale     float64 `json:"baseScale" yaml:"baseScale"`
	RotationSpeed float64 `json:"rotationSpeed" yaml:"rotationSpeed"`
}

// WarpLayer is one of the loading-screen star layers
type WarpLayer struct {
	Count     int     `json:"count" yaml:"count"`
	Speed     float64 `json:"speed" yaml:"speed"`
	Size      float64 `json:"size" yaml:"size"`
	MinRadius float64 `json:"minRadius" yaml:"minRadius"`
	MaxRadius float64 `json:"maxRadius" yaml:"maxRadius"`
	Color     string  `json:"color" yaml:"color"`
}

// StarfieldConfig sizes the backdrop and the loading warp
type StarfieldConfig struct {
	Count     int         `json:"count" yaml:"count"`
	MinRadius float64     `json:"minRadius" yaml:"minRadius"`
	Depth     float64     `json:"depth" yaml:"depth"`
	Warp      []WarpLayer `json:"warp" yaml:"warp"`
}

// AssetsConfig guards texture and model loading
type AssetsConfig struct {
	Root               string   `json:"root" yaml:"root"`
	LoadTimeout        Duration `json:"loadTimeout" yaml:"loadTimeout"`
	BreakerMaxFailures int      `json:"breakerMaxFailures" yaml:"breakerMaxFailures"`
	BreakerTimeout     Duration `json:"breakerTimeout" yaml:"breakerTimeout"`
}

// LoadConfig loads a configuration from a file. Files ending in .yaml or
// .yml are parsed as YAML, everything else as JSON. Fields absent from the
// file keep their DefaultConfig values.
func LoadConfig(path string) (*SceneConfig, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	config := DefaultConfig()
	if isYAML(path) {
		err = yaml.Unmarshal(data, config)
	} else {
		err = json.Unmarshal(data, config)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to parse config file: %w", err)
	}

	return config, nil
}

// SaveConfig saves a configuration to a file, choosing the format by extension
func SaveConfig(config *SceneConfig, path string) error {
	var (
		data []byte
		err  error
	)
	if isYAML(path) {
		data, err = yaml.Marshal(config)
	} else {
		data, err = json.MarshalIndent(config, "", "  ")
	}
	if err != nil {
		return fmt.Errorf("failed to marshal config: %w", err)
	}

	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("failed to write config file: %w", err)
	}

	return nil
}

func isYAML(path string) bool {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		return true
	}
	return false
}

// Validate checks the configuration and reports every problem at once.
// Body names are trimmed in place.
func (c *SceneConfig) Validate() error {
	var errs validation.Errors

	validation.IntRange(&errs, "bodies", len(c.Bodies), 1, validation.MaxBodies)
	validation.IntRange(&errs, "fps", c.FPS, 1, 240)
	for i := range c.Bodies {
		b := &c.Bodies[i]
		field := fmt.Sprintf("bodies[%d]", i)
		name, err := validation.BodyName(b.Name)
		if err != nil {
			errs.Add(field+".name", "%v", err)
		} else {
			b.Name = name
		}
		if err := validation.TexturePath(b.Texture); err != nil {
			errs.Add(field+".texture", "%v", err)
		}
		validation.Positive(&errs, field+".sizeHint", b.SizeHint)
	}

	o := c.Orbit
	validation.Positive(&errs, "orbit.baseRadius", o.BaseRadius)
	validation.NonNegative(&errs, "orbit.radiusStep", o.RadiusStep)
	validation.Positive(&errs, "orbit.radiusFactor", o.RadiusFactor)
	validation.Positive(&errs, "orbit.baseSpeed", o.BaseSpeed)
	validation.NonNegative(&errs, "orbit.speedStep", o.SpeedStep)
	validation.Positive(&errs, "orbit.minSize", o.MinSize)
	validation.NonNegative(&errs, "orbit.sizeJitter", o.SizeJitter)
	validation.Fraction(&errs, "orbit.hoverBrake", o.HoverBrake)
	validation.Fraction(&errs, "orbit.speedSmoothing", o.SpeedSmoothing)
	validation.NonNegative(&errs, "orbit.minAngularSeparation", o.MinAngularSeparation)
	validation.NonNegative(&errs, "orbit.angularPush", o.AngularPush)
	validation.Fraction(&errs, "orbit.swarmDamping", o.SwarmDamping)
	validation.Fraction(&errs, "orbit.offsetRelax", o.OffsetRelax)

	t := c.Timing
	validation.PositiveDuration(&errs, "timing.reset", t.Reset.Duration)
	validation.PositiveDuration(&errs, "timing.queue", t.Queue.Duration)
	validation.PositiveDuration(&errs, "timing.formation", t.Formation.Duration)
	validation.PositiveDuration(&errs, "timing.open", t.Open.Duration)
	validation.PositiveDuration(&errs, "timing.rotate", t.Rotate.Duration)
	validation.PositiveDuration(&errs, "timing.return", t.Return.Duration)

	s := c.Staged
	validation.Positive(&errs, "staged.queueSpacing", s.QueueSpacing)
	validation.Positive(&errs, "staged.formationRadius", s.FormationRadius)
	validation.Positive(&errs, "staged.openFactor", s.OpenFactor)
	validation.Fraction(&errs, "staged.zoomDip", s.ZoomDip)
	validation.NonNegative(&errs, "staged.idleRate", s.IdleRate)

	v := c.Viewport
	validation.Positive(&errs, "viewport.fullScale", v.FullScale)
	validation.Positive(&errs, "viewport.minScale", v.MinScale)
	validation.Positive(&errs, "viewport.fallbackWidth", v.FallbackWidth)
	validation.Positive(&errs, "viewport.fallbackHeight", v.FallbackHeight)
	validation.Positive(&errs, "viewport.baseCameraDistance", v.BaseCameraDistance)
	validation.Positive(&errs, "viewport.fieldOfView", v.FieldOfView)
	last := 0.0
	for i, bp := range v.Breakpoints {
		field := fmt.Sprintf("viewport.breakpoints[%d]", i)
		if bp.MaxWidth <= last {
			errs.Add(field+".maxWidth", "breakpoints must be strictly ascending, got %v after %v", bp.MaxWidth, last)
		}
		validation.Positive(&errs, field+".scale", bp.Scale)
		last = bp.MaxWidth
	}

	l := c.Loading
	validation.PositiveDuration(&errs, "loading.fadeDuration", l.FadeDuration.Duration)
	validation.PositiveDuration(&errs, "loading.fallback", l.Fallback.Duration)
	if l.FadeDelay.Duration < 0 {
		errs.Add("loading.fadeDelay", "must not be negative, got %v", l.FadeDelay.Duration)
	}
	if l.ErrorDelay.Duration < 0 {
		errs.Add("loading.errorDelay", "must not be negative, got %v", l.ErrorDelay.Duration)
	}

	validation.Positive(&errs, "emblem.baseScale", c.Emblem.BaseScale)
	validation.IntRange(&errs, "starfield.count", c.Starfield.Count, 0, 100000)
	validation.IntRange(&errs, "assets.breakerMaxFailures", c.Assets.BreakerMaxFailures, 1, 100)

	return errs.Err()
}

// FrameInterval returns the tick period for the configured frame rate
func (c *SceneConfig) FrameInterval() time.Duration {
	if c.FPS <= 0 {
		return time.Second / 60
	}
	return time.Second / time.Duration(c.FPS)
}

// DefaultConfig returns the original scene: five bodies, the desktop orbit
// and the staged mobile layouts.
func DefaultConfig() *SceneConfig {
	return &SceneConfig{
		Seed:  0,
		FPS:   60,
		Swarm: false,
		Bodies: []BodyConfig{
			{Name: "Chamados", Texture: "IMGS/planet1.jpg", SizeHint: 0.9},
			{Name: "Segurança", Texture: "IMGS/planet2.jpg", SizeHint: 0.75},
			{Name: "Boas Praticas", Texture: "IMGS/planet3.jpg", SizeHint: 0.85},
			{Name: "Equipamentos", Texture: "IMGS/planet4.jpg", SizeHint: 0.95},
			{Name: "Acesso ao Escritório", Texture: "IMGS/planet5.jpg", SizeHint: 1.0},
		},
		Orbit: OrbitConfig{
			BaseRadius:           8,
			RadiusStep:           2,
			RadiusFactor:         0.8,
			BaseSpeed:            0.001,
			SpeedStep:            0.0008,
			FlattenY:             0.5,
			FlattenZ:             0.5,
			MinSize:              0.45,
			SizeJitter:           0.6,
			HoverBrake:           0.02,
			SpeedSmoothing:       0.08,
			MinAngularSeparation: 0.08,
			AngularPush:          0.02,
			SwarmDamping:         0.15,
			OffsetRelax:          0.9,
			SelfSpin:             0.004,
			PanelMargin:          0.5,
		},
		Timing: TimingConfig{
			Reset:     Duration{3 * time.Second},
			Queue:     Duration{1200 * time.Millisecond},
			Formation: Duration{1400 * time.Millisecond},
			Open:      Duration{700 * time.Millisecond},
			Rotate:    Duration{1600 * time.Millisecond},
			Return:    Duration{1100 * time.Millisecond},
		},
		Staged: StagedConfig{
			QueueOffsetX:    4.5,
			QueueSpacing:    2.2,
			FormationRadius: 5,
			OpenFactor:      1.6,
			ZoomDip:         0.15,
			IdleRate:        0.0025,
			Bobbing:         true,
			BobAmplitude:    0.15,
			BobFrequency:    1.2,
		},
		Viewport: ViewportConfig{
			Breakpoints: []Breakpoint{
				{MaxWidth: 480, Scale: 0.55},
				{MaxWidth: 768, Scale: 0.7},
				{MaxWidth: 1024, Scale: 0.85},
			},
			FullScale:          1.0,
			MinScale:           0.4,
			ConstrainedWidth:   768,
			FallbackWidth:      1024,
			FallbackHeight:     768,
			BaseCameraDistance: 20,
			FieldOfView:        75,
			CameraStiffness:    6,
			CameraDamping:      1,
		},
		Loading: LoadingConfig{
			FadeDelay:    Duration{3 * time.Second},
			FadeDuration: Duration{2 * time.Second},
			Fallback:     Duration{10 * time.Second},
			ErrorDelay:   Duration{3 * time.Second},
		},
		Emblem: EmblemConfig{
			Model:         "IMGS/Trestech.stl",
			BaseScale:     0.04 * 1.5,
			RotationSpeed: 0.005,
		},
		Starfield: StarfieldConfig{
			Count:     6000,
			MinRadius: 400,
			Depth:     2000,
			Warp: []WarpLayer{
				{Count: 900, Speed: 2.0, Size: 0.12, MinRadius: 6, MaxRadius: 30, Color: "#ffffff"},
				{Count: 450, Speed: 1.2, Size: 0.14, MinRadius: 8, MaxRadius: 30, Color: "#00ffff"},
				{Count: 300, Speed: 0.6, Size: 0.09, MinRadius: 10, MaxRadius: 60, Color: "#00ffff"},
			},
		},
		Assets: AssetsConfig{
			Root:               ".",
			LoadTimeout:        Duration{10 * time.Second},
			BreakerMaxFailures: 3,
			BreakerTimeout:     Duration{30 * time.Second},
		},
	}
}
