// Package config provides unified configuration loading for reflex-engine.
// It supports loading from YAML files, .env files and environment variables.
package config

import (
	"fmt"
	"math"
	"os"
	"path/filepath"
	"strconv"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"

	"github.com/cxd309/reflex-engine/internal/impulse"
	"github.com/cxd309/reflex-engine/internal/logging"
)

// ReflexConfig contains all reflex-engine configuration settings.
type ReflexConfig struct {
	// Impulse holds the starting speed and synapse delays.
	Impulse ImpulseConfig `json:"impulse" yaml:"impulse"`

	// Limits bound interactive speed and delay adjustment.
	Limits impulse.Limits `json:"limits" yaml:"limits"`

	// Simulation configures headless fixed-step runs.
	Simulation SimulationConfig `json:"simulation" yaml:"simulation"`

	// Logging contains settings for operational logging.
	Logging LoggingConfig `json:"logging" yaml:"logging"`
}

// ImpulseConfig is the impulse's starting configuration. These are also the
// values a reset restores.
type ImpulseConfig struct {
	// Speed in distance units per second.
	Speed float64 `json:"speed" yaml:"speed"`

	// Delay1 is the sensory neuron to spinal cord synapse delay, in seconds.
	Delay1 float64 `json:"delay1" yaml:"delay1"`

	// Delay2 is the spinal cord to motor neuron synapse delay, in seconds.
	Delay2 float64 `json:"delay2" yaml:"delay2"`
}

// SimulationConfig configures headless runs.
type SimulationConfig struct {
	// TimeStep is the frame duration in seconds.
	TimeStep float64 `json:"time_step" yaml:"time_step"`

	// RunTime caps a headless run, in seconds.
	RunTime float64 `json:"run_time" yaml:"run_time"`
}

// LoggingConfig configures logging behavior.
type LoggingConfig struct {
	// Level sets the log verbosity: "info" (default), "debug", or "trace".
	Level string `json:"level" yaml:"level"`
}

// Default returns a ReflexConfig with the demo defaults.
func Default() *ReflexConfig {
	return &ReflexConfig{
		Impulse: ImpulseConfig{
			Speed:  impulse.DefaultSpeed,
			Delay1: impulse.DefaultDelay1,
			Delay2: impulse.DefaultDelay2,
		},
		Limits: impulse.DefaultLimits(),
		Simulation: SimulationConfig{
			TimeStep: 1.0 / 60,
			RunTime:  10,
		},
		Logging: LoggingConfig{
			Level: "info",
		},
	}
}

// DefaultPath returns ~/.reflexarc/config.yaml.
func DefaultPath() (string, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(home, ".reflexarc", "config.yaml"), nil
}

// Load builds the effective configuration.
// Order: defaults -> config file -> .env files -> environment variables.
// An empty path falls back to DefaultPath when that file exists.
func Load(path string) (*ReflexConfig, error) {
	config := Default()

	if path == "" {
		if p, err := DefaultPath(); err == nil {
			if _, statErr := os.Stat(p); statErr == nil {
				path = p
			}
		}
	}
	if path != "" {
		fileConfig, err := LoadFromFile(path)
		if err != nil {
			return nil, fmt.Errorf("loading config file: %w", err)
		}
		config = fileConfig
	}

	// .env is optional; .env.local overrides it for local development.
	_ = godotenv.Load(".env")
	_ = godotenv.Overload(".env.local")

	if err := applyEnvOverrides(config); err != nil {
		return nil, err
	}
	return config, nil
}

// LoadFromFile loads configuration from a specific YAML file. Keys missing
// from the file keep their defaults.
func LoadFromFile(path string) (*ReflexConfig, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading config file: %w", err)
	}

	config := Default()
	if err := yaml.Unmarshal(data, config); err != nil {
		return nil, fmt.Errorf("parsing config file: %w", err)
	}
	return config, nil
}

// Validate checks that the configuration is valid.
func (c *ReflexConfig) Validate() error {
	if !(c.Impulse.Speed > 0) || math.IsInf(c.Impulse.Speed, 1) {
		return fmt.Errorf("speed must be greater than 0, got %v", c.Impulse.Speed)
	}
	if err := c.Limits.Validate(); err != nil {
		return err
	}
	if !(c.Impulse.Delay1 >= 0 && c.Impulse.Delay1 <= c.Limits.MaxDelay) {
		return fmt.Errorf("delay1 must be between 0 and %v, got %v", c.Limits.MaxDelay, c.Impulse.Delay1)
	}
	if !(c.Impulse.Delay2 >= 0 && c.Impulse.Delay2 <= c.Limits.MaxDelay) {
		return fmt.Errorf("delay2 must be between 0 and %v, got %v", c.Limits.MaxDelay, c.Impulse.Delay2)
	}
	if !(c.Simulation.TimeStep > 0) {
		return fmt.Errorf("time_step must be greater than 0, got %v", c.Simulation.TimeStep)
	}
	if !(c.Simulation.RunTime > 0) {
		return fmt.Errorf("run_time must be greater than 0, got %v", c.Simulation.RunTime)
	}
	if !logging.ValidLevel(c.Logging.Level) {
		return fmt.Errorf("invalid log level: %s (valid: info, debug, trace, or empty for default)", c.Logging.Level)
	}
	return nil
}

// ImpulseOptions converts the configuration into impulse options.
func (c *ReflexConfig) ImpulseOptions() impulse.Options {
	return impulse.Options{
		Speed:  c.Impulse.Speed,
		Delay1: c.Impulse.Delay1,
		Delay2: c.Impulse.Delay2,
		Limits: c.Limits,
	}
}

// applyEnvOverrides applies environment variable overrides to the config.
func applyEnvOverrides(config *ReflexConfig) error {
	floats := []struct {
		key string
		dst *float64
	}{
		{"REFLEXARC_SPEED", &config.Impulse.Speed},
		{"REFLEXARC_DELAY1", &config.Impulse.Delay1},
		{"REFLEXARC_DELAY2", &config.Impulse.Delay2},
		{"REFLEXARC_TIME_STEP", &config.Simulation.TimeStep},
		{"REFLEXARC_RUN_TIME", &config.Simulation.RunTime},
	}
	for _, f := range floats {
		v := os.Getenv(f.key)
		if v == "" {
			continue
		}
		n, err := strconv.ParseFloat(v, 64)
		if err != nil {
			return fmt.Errorf("%s: %w", f.key, err)
		}
		*f.dst = n
	}

	if v := os.Getenv("REFLEXARC_LOG_LEVEL"); v != "" {
		config.Logging.Level = v
	}
	return nil
}
