package config

import (
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/san-kum/obsview/internal/dynamo"
	"gopkg.in/yaml.v3"
)

const (
	DefaultWidth       = 600
	DefaultHeight      = 600
	DefaultTrailSample = 10
	DefaultFPS         = 30
	DefaultDt          = 0.05
	DefaultPolicy      = "agent0"
	DefaultStepper     = "local"
	DefaultIntegrator  = "rk4"
	DefaultLogLevel    = "info"
)

// ErrInvalid is wrapped by every Validate failure.
var ErrInvalid = errors.New("config: invalid")

type Config struct {
	Canvas   CanvasConfig      `yaml:"canvas"`
	Playback PlaybackConfig    `yaml:"playback"`
	Live     LiveConfig        `yaml:"live"`
	Initial  ObservationConfig `yaml:"initial"`
	Log      LogConfig         `yaml:"log"`
}

type CanvasConfig struct {
	Width  int `yaml:"width"`
	Height int `yaml:"height"`
}

type PlaybackConfig struct {
	MaxSteps    int           `yaml:"max_steps"`
	TrailSample int           `yaml:"trail_sample"`
	HoldDelay   time.Duration `yaml:"hold_delay"`
	FPS         int           `yaml:"fps"`
	// Terminal players only: a key with no repeat for ReleaseGap counts as
	// released, a command key pressed again within RepeatWindow is a repeat.
	ReleaseGap   time.Duration `yaml:"release_gap"`
	RepeatWindow time.Duration `yaml:"repeat_window"`
}

type LiveConfig struct {
	Policy     string             `yaml:"policy"`
	Stepper    string             `yaml:"stepper"`
	Preset     string             `yaml:"preset"`
	Seed       int64              `yaml:"seed"`
	Dt         float64            `yaml:"dt"`
	Integrator string             `yaml:"integrator"`
	Physics    map[string]float64 `yaml:"physics,omitempty"`
	Params     map[string]float64 `yaml:"params,omitempty"`
}

// ObservationConfig is an initial observation. Random draws one instead.
type ObservationConfig struct {
	Wp1X   float64 `yaml:"wp1x"`
	Wp1Y   float64 `yaml:"wp1y"`
	VelX   float64 `yaml:"velx"`
	VelY   float64 `yaml:"vely"`
	Random bool    `yaml:"random"`
}

func (o ObservationConfig) Observation() dynamo.Observation {
	return dynamo.Observation{Wp1X: o.Wp1X, Wp1Y: o.Wp1Y, VelX: o.VelX, VelY: o.VelY}
}

type LogConfig struct {
	Level string `yaml:"level"`
	File  string `yaml:"file"`
}

func DefaultConfig() *Config {
	return &Config{
		Canvas: CanvasConfig{Width: DefaultWidth, Height: DefaultHeight},
		Playback: PlaybackConfig{
			MaxSteps:     dynamo.MaxSteps,
			TrailSample:  DefaultTrailSample,
			HoldDelay:    200 * time.Millisecond,
			FPS:          DefaultFPS,
			ReleaseGap:   120 * time.Millisecond,
			RepeatWindow: 600 * time.Millisecond,
		},
		Live: LiveConfig{
			Policy:     DefaultPolicy,
			Stepper:    DefaultStepper,
			Seed:       1,
			Dt:         DefaultDt,
			Integrator: DefaultIntegrator,
		},
		Initial: ObservationConfig{Random: true},
		Log:     LogConfig{Level: DefaultLogLevel},
	}
}

func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	cfg := DefaultConfig()
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("parse %s: %w", path, err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return cfg, nil
}

func Save(path string, cfg *Config) error {
	data, err := yaml.Marshal(cfg)
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0644)
}

func (c *Config) Validate() error {
	switch {
	case c.Canvas.Width <= 0 || c.Canvas.Height <= 0:
		return fmt.Errorf("%w: canvas must be positive, got %dx%d", ErrInvalid, c.Canvas.Width, c.Canvas.Height)
	case c.Playback.MaxSteps <= 0:
		return fmt.Errorf("%w: max_steps must be positive, got %d", ErrInvalid, c.Playback.MaxSteps)
	case c.Playback.TrailSample <= 0:
		return fmt.Errorf("%w: trail_sample must be positive, got %d", ErrInvalid, c.Playback.TrailSample)
	case c.Playback.HoldDelay <= 0:
		return fmt.Errorf("%w: hold_delay must be positive, got %s", ErrInvalid, c.Playback.HoldDelay)
	case c.Playback.FPS <= 0:
		return fmt.Errorf("%w: fps must be positive, got %d", ErrInvalid, c.Playback.FPS)
	case c.Playback.ReleaseGap <= 0 || c.Playback.RepeatWindow <= 0:
		return fmt.Errorf("%w: release_gap and repeat_window must be positive", ErrInvalid)
	case c.Live.Dt <= 0:
		return fmt.Errorf("%w: dt must be positive, got %f", ErrInvalid, c.Live.Dt)
	case c.Live.Policy == "":
		return fmt.Errorf("%w: policy is required", ErrInvalid)
	}
	if c.Live.Stepper != DefaultStepper && !strings.HasPrefix(c.Live.Stepper, "ws://") && !strings.HasPrefix(c.Live.Stepper, "wss://") {
		return fmt.Errorf("%w: stepper must be %q or a ws:// url, got %q", ErrInvalid, DefaultStepper, c.Live.Stepper)
	}
	if c.Live.Preset != "" && GetPreset(c.Live.Preset) == nil {
		return fmt.Errorf("%w: unknown preset %q", ErrInvalid, c.Live.Preset)
	}
	if !c.Initial.Random && !c.Initial.Observation().IsValid() {
		return fmt.Errorf("%w: initial observation is not finite", ErrInvalid)
	}
	return nil
}

// FrameInterval is the time between rendered frames.
func (c *Config) FrameInterval() time.Duration {
	return time.Second / time.Duration(c.Playback.FPS)
}

// InitialObservation resolves the preset, if any, over Initial.
func (c *Config) InitialObservation() ObservationConfig {
	if c.Live.Preset != "" {
		if p := GetPreset(c.Live.Preset); p != nil {
			return *p
		}
	}
	return c.Initial
}
