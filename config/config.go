// Package config loads and saves the settings for a conversion run.
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/bodgit/voxstream/raster"
	"gopkg.in/yaml.v3"
)

const (
	// DefaultWidth is the resampled width expected by the consumer
	DefaultWidth = 1024

	// DefaultHeight is the resampled height expected by the consumer
	DefaultHeight = 1024

	// DefaultChannels is the number of channels the consumer expects
	DefaultChannels = 2
)

// Config is the configuration for a conversion run.
type Config struct {
	Output struct {
		// Path is where the stream is written
		Path string `yaml:"path"`
	} `yaml:"output"`

	Resample struct {
		Width         int    `yaml:"width"`
		Height        int    `yaml:"height"`
		Interpolation string `yaml:"interpolation"`
		Average       bool   `yaml:"average"`
		Constrain     bool   `yaml:"constrain"`
	} `yaml:"resample"`

	Channels struct {
		// Order optionally lists discovery indices in output order
		Order []int `yaml:"order,omitempty"`

		// Expected is the number of channels the consumer reads; zero
		// disables the check
		Expected int `yaml:"expected"`

		// Strict rejects a run with the wrong number of channels
		// instead of warning
		Strict bool `yaml:"strict"`
	} `yaml:"channels"`

	// Catalogue is an optional database recording each run
	Catalogue string `yaml:"catalogue,omitempty"`
}

// DefaultConfig returns a configuration with default values. The output path
// is left empty.
func DefaultConfig() *Config {
	cfg := &Config{}

	cfg.Resample.Width = DefaultWidth
	cfg.Resample.Height = DefaultHeight
	cfg.Resample.Interpolation = raster.Bilinear.String()
	cfg.Resample.Average = true
	cfg.Resample.Constrain = true

	cfg.Channels.Expected = DefaultChannels

	return cfg
}

// Policy returns the resample policy described by cfg.
func (cfg *Config) Policy() (raster.Policy, error) {
	i, err := raster.ParseInterpolation(cfg.Resample.Interpolation)
	if err != nil {
		return raster.Policy{}, err
	}
	return raster.Policy{
		Constrain:     cfg.Resample.Constrain,
		Average:       cfg.Resample.Average,
		Interpolation: i,
	}, nil
}

// Validate checks cfg describes a runnable conversion.
func (cfg *Config) Validate() error {
	if cfg.Output.Path == "" {
		return errors.New("config: no output path")
	}
	if cfg.Resample.Width <= 0 || cfg.Resample.Height <= 0 {
		return fmt.Errorf("config: invalid size %dx%d", cfg.Resample.Width, cfg.Resample.Height)
	}
	if _, err := cfg.Policy(); err != nil {
		return err
	}
	for _, i := range cfg.Channels.Order {
		if i < 0 {
			return fmt.Errorf("config: invalid channel index %d", i)
		}
	}
	if cfg.Channels.Expected < 0 {
		return fmt.Errorf("config: invalid expected channel count %d", cfg.Channels.Expected)
	}
	return nil
}

// LoadConfig loads configuration from a YAML file on top of the defaults. If
// the file doesn't exist the defaults are returned.
func LoadConfig(configPath string) (*Config, error) {
	cfg := DefaultConfig()

	data, err := os.ReadFile(configPath)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return cfg, nil
		}
		return nil, fmt.Errorf("error reading config file: %w", err)
	}

	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("error parsing config file: %w", err)
	}

	return cfg, nil
}

// SaveConfig saves the configuration to a YAML file.
func SaveConfig(cfg *Config, configPath string) error {
	if err := os.MkdirAll(filepath.Dir(configPath), 0755); err != nil {
		return fmt.Errorf("error creating config directory: %w", err)
	}

	data, err := yaml.Marshal(cfg)
	if err != nil {
		return fmt.Errorf("error marshaling config: %w", err)
	}

	if err := os.WriteFile(configPath, data, 0644); err != nil {
		return fmt.Errorf("error writing config file: %w", err)
	}

	return nil
}
