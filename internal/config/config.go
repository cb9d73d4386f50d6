package config

import (
	"errors"
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"
)

// Config holds all configuration for the stat simulator.
type Config struct {
	LogLevel string `yaml:"log_level"` // debug, info, warn, error

	// Wall-clock pause between simulated ticks. Zero runs as fast as possible.
	TickInterval time.Duration `yaml:"tick_interval"`

	Pool    PoolConfig    `yaml:"pool"`
	Content ContentConfig `yaml:"content"`
	Sim     SimConfig     `yaml:"sim"`
}

// PoolConfig sizes the per-worker pools at startup.
type PoolConfig struct {
	PreallocConditions int `yaml:"prealloc_conditions"` // per condition type
	PreallocModifiers  int `yaml:"prealloc_modifiers"`
}

// ContentConfig points at authored data files.
type ContentConfig struct {
	EffectsPath string `yaml:"effects_path"`
}

// SimConfig describes the simulated population.
type SimConfig struct {
	Actors    int           `yaml:"actors"`
	Workers   int           `yaml:"workers"`
	Ticks     int           `yaml:"ticks"`
	TickDelta time.Duration `yaml:"tick_delta"` // simulated time per tick

	// Base value of every stat each actor starts with.
	BaseStats map[string]float64 `yaml:"base_stats"`

	Effects []EffectUse `yaml:"effects"`
}

// EffectUse schedules a catalog effect on every actor.
type EffectUse struct {
	ID string `yaml:"id"`

	// Sourced effects get a unique source per application and stay on
	// the sheet when their duration runs out.
	Sourced bool `yaml:"sourced"`

	// Every reapplies the effect each N ticks. Zero applies it once at
	// the start.
	Every int `yaml:"every"`
}

// Default returns Config with sensible defaults.
func Default() Config {
	return Config{
		LogLevel: "info",
		Pool: PoolConfig{
			PreallocConditions: 256,
			PreallocModifiers:  1024,
		},
		Content: ContentConfig{
			EffectsPath: "config/effects.yaml",
		},
		Sim: SimConfig{
			Actors:    1000,
			Workers:   4,
			Ticks:     600,
			TickDelta: 100 * time.Millisecond,
			BaseStats: map[string]float64{
				"attack":  100,
				"defense": 50,
				"speed":   10,
			},
		},
	}
}

// Load loads config from a YAML file.
// If the file doesn't exist, returns defaults.
func Load(path string) (Config, error) {
	cfg := Default()

	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return cfg, nil
		}
		return cfg, fmt.Errorf("reading config %s: %w", path, err)
	}

	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return cfg, fmt.Errorf("parsing config %s: %w", path, err)
	}

	return cfg, nil
}

// Validate reports every out-of-range value at once.
func (c Config) Validate() error {
	var errs []error

	switch c.LogLevel {
	case "debug", "info", "warn", "error":
	default:
		errs = append(errs, fmt.Errorf("log_level: unknown level %q", c.LogLevel))
	}
	if c.TickInterval < 0 {
		errs = append(errs, fmt.Errorf("tick_interval: must not be negative"))
	}
	if c.Pool.PreallocConditions < 0 || c.Pool.PreallocModifiers < 0 {
		errs = append(errs, fmt.Errorf("pool: preallocation must not be negative"))
	}
	if c.Sim.Actors < 0 {
		errs = append(errs, fmt.Errorf("sim.actors: must not be negative"))
	}
	if c.Sim.Workers < 1 {
		errs = append(errs, fmt.Errorf("sim.workers: need at least one worker"))
	}
	if c.Sim.Ticks < 0 {
		errs = append(errs, fmt.Errorf("sim.ticks: must not be negative"))
	}
	if c.Sim.TickDelta <= 0 {
		errs = append(errs, fmt.Errorf("sim.tick_delta: must be positive"))
	}
	for i, e := range c.Sim.Effects {
		if e.ID == "" {
			errs = append(errs, fmt.Errorf("sim.effects[%d]: missing id", i))
		}
		if e.Every < 0 {
			errs = append(errs, fmt.Errorf("sim.effects[%d]: every must not be negative", i))
		}
	}

	return errors.Join(errs...)
}
