// Package config loads pacing settings from an optional YAML file.
package config

import (
	"errors"
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/valerio/go-fixedstep/fixedstep"
	"github.com/valerio/go-fixedstep/fixedstep/timing"
)

// Config describes how a fixed step loop is paced.
type Config struct {
	// Frequency is the update rate in hertz.
	Frequency float64 `yaml:"frequency"`
	// Limit is the maximum number of updates per rendered frame.
	Limit int `yaml:"limit,omitempty"`
	// Unlimited disables the update limit. Overrides Limit.
	Unlimited bool `yaml:"unlimited,omitempty"`
	// Overrun is "discard" or "carry".
	Overrun string `yaml:"overrun,omitempty"`
	// RenderFPS caps how often frames are drawn.
	RenderFPS float64 `yaml:"render_fps,omitempty"`
	// Limiter is "adaptive", "ticker" or "none".
	Limiter string `yaml:"limiter,omitempty"`
}

// Default returns 60 Hz updates, the default update limit with discard,
// rendered at up to 60 frames per second.
func Default() Config {
	return Config{
		Frequency: 60,
		Limit:     fixedstep.DefaultLimit,
		Overrun:   fixedstep.OverrunDiscard.String(),
		RenderFPS: timing.DefaultFPS,
		Limiter:   string(timing.KindAdaptive),
	}
}

// Load reads a YAML file on top of the defaults.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read %s: %w", path, err)
	}

	cfg := Default()
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("failed to parse %s: %w", path, err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config %s: %w", path, err)
	}
	return &cfg, nil
}

// LoadOptional behaves like Load but returns the defaults when path is empty
// or the file does not exist.
func LoadOptional(path string) (*Config, error) {
	if path == "" {
		cfg := Default()
		return &cfg, nil
	}

	cfg, err := Load(path)
	if errors.Is(err, os.ErrNotExist) {
		def := Default()
		return &def, nil
	}
	return cfg, err
}

// Validate checks that every field can be turned into a timer and limiter.
func (c *Config) Validate() error {
	if _, err := fixedstep.IntervalFor(c.Frequency); err != nil {
		return err
	}
	if !c.Unlimited && c.Limit < 1 {
		return fmt.Errorf("%w: got %d", fixedstep.ErrInvalidLimit, c.Limit)
	}
	if _, err := fixedstep.ParseOverrunPolicy(c.Overrun); err != nil {
		return err
	}
	if c.RenderFPS < 0 {
		return fmt.Errorf("render_fps must not be negative, got %v", c.RenderFPS)
	}
	switch timing.Kind(c.Limiter) {
	case "", timing.KindAdaptive, timing.KindTicker, timing.KindNone:
	default:
		return fmt.Errorf("unknown limiter %q", c.Limiter)
	}
	return nil
}

// TimerOptions converts the config into fixedstep options. A nil clock
// keeps the timer's default.
func (c *Config) TimerOptions(clock fixedstep.Clock) ([]fixedstep.Option, error) {
	policy, err := fixedstep.ParseOverrunPolicy(c.Overrun)
	if err != nil {
		return nil, err
	}

	opts := []fixedstep.Option{fixedstep.WithOverrun(policy)}
	if c.Unlimited {
		opts = append(opts, fixedstep.Unlimited())
	} else {
		opts = append(opts, fixedstep.WithLimit(c.Limit))
	}
	if clock != nil {
		opts = append(opts, fixedstep.WithClock(clock))
	}
	return opts, nil
}

// NewTimer builds a timer from the config.
func (c *Config) NewTimer(clock fixedstep.Clock) (*fixedstep.Timer, error) {
	opts, err := c.TimerOptions(clock)
	if err != nil {
		return nil, err
	}
	return fixedstep.New(c.Frequency, opts...)
}

// NewLimiter builds the render limiter from the config.
func (c *Config) NewLimiter() (timing.Limiter, error) {
	return timing.New(timing.Kind(c.Limiter), c.RenderFPS)
}
