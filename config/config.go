// Package config provides configuration loading and access for worldblend.
package config

import (
	_ "embed"
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

//go:embed defaults.yaml
var defaultsYAML []byte

// Config holds all configuration parameters.
type Config struct {
	Screen    ScreenConfig    `yaml:"screen"`
	World     WorldConfig     `yaml:"world"`
	Blend     BlendConfig     `yaml:"blend"`
	Camera    CameraConfig    `yaml:"camera"`
	Telemetry TelemetryConfig `yaml:"telemetry"`

	// Derived values computed after loading
	Derived DerivedConfig `yaml:"-"`
}

// ScreenConfig holds display settings for the viewer.
type ScreenConfig struct {
	Width     int `yaml:"width"`
	Height    int `yaml:"height"`
	TargetFPS int `yaml:"target_fps"`
}

// WorldConfig holds world dimensions and emitter parameters.
type WorldConfig struct {
	Width      float64 `yaml:"width"`
	Height     float64 `yaml:"height"`
	Depth      float64 `yaml:"depth"`
	Emitters   int     `yaml:"emitters"`
	DriftSpeed float64 `yaml:"drift_speed"`
	DriftScale float64 `yaml:"drift_scale"`
}

// BlendConfig holds blend engine parameters.
type BlendConfig struct {
	MinDistance float64 `yaml:"min_distance"` // Distance clamp floor (world units)
	Planar      bool    `yaml:"planar"`       // Ignore height when measuring distance
}

// CameraConfig holds viewer camera parameters.
type CameraConfig struct {
	EyeHeight  float64 `yaml:"eye_height"`
	FollowRate float64 `yaml:"follow_rate"`
}

// TelemetryConfig holds telemetry output parameters.
type TelemetryConfig struct {
	SampleEvery int `yaml:"sample_every"` // Weight rows every Nth tick (0 = every tick)
	StatsWindow int `yaml:"stats_window"` // Stats window length in ticks
}

// DerivedConfig holds values computed from the loaded configuration.
type DerivedConfig struct {
	// Scale from world units to screen pixels for the top-down view.
	PixelsPerUnit float64
}

// global is the package-level configuration instance.
var global *Config

// Init loads configuration and sets the global instance.
// Pass an empty path to use embedded defaults only.
func Init(path string) error {
	cfg, err := Load(path)
	if err != nil {
		return err
	}
	global = cfg
	return nil
}

// Cfg returns the global configuration. Panics if Init was not called.
func Cfg() *Config {
	if global == nil {
		panic("config.Cfg called before config.Init")
	}
	return global
}

// Load reads configuration from the embedded defaults, overlaying the YAML
// file at path when one is given.
func Load(path string) (*Config, error) {
	// Start with embedded defaults
	cfg := &Config{}
	if err := yaml.Unmarshal(defaultsYAML, cfg); err != nil {
		return nil, fmt.Errorf("parsing embedded defaults: %w", err)
	}

	// Load user config if provided
	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("reading config file: %w", err)
		}
		// Unmarshal into same struct - only overwrites fields present in file
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("parsing config file: %w", err)
		}
	}

	cfg.computeDerived()
	return cfg, nil
}

// computeDerived fills in values derived from the loaded settings.
func (c *Config) computeDerived() {
	scaleX := float64(c.Screen.Width) / c.World.Width
	scaleY := float64(c.Screen.Height) / c.World.Height
	c.Derived.PixelsPerUnit = scaleX
	if scaleY < scaleX {
		c.Derived.PixelsPerUnit = scaleY
	}
}

// WriteYAML saves the configuration to a file.
func (c *Config) WriteYAML(path string) error {
	data, err := yaml.Marshal(c)
	if err != nil {
		return fmt.Errorf("marshaling config: %w", err)
	}
	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("writing config: %w", err)
	}
	return nil
}
