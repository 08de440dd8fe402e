// Package config loads the settings shared by the flatkd drivers.
package config

import (
	"errors"
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// Config holds driver settings. Zero values are replaced by Default.
type Config struct {
	// Count is the number of indexed points.
	Count int `yaml:"count"`
	// K is the number of neighbours requested per query.
	K int `yaml:"k"`
	// Iterations is the number of timed rounds (bench) or queries (integrity).
	Iterations int `yaml:"iterations"`
	// Dims is the point dimension used when points are stored in SQLite.
	Dims int `yaml:"dims"`
	// Seed fixes the random source; zero draws a fresh seed.
	Seed uint64 `yaml:"seed"`
	// DB is the SQLite database path for load/query.
	DB string `yaml:"db"`

	Log LogConfig `yaml:"log"`
}

// LogConfig selects the log level and format.
type LogConfig struct {
	Level  string `yaml:"level"`
	Format string `yaml:"format"`
}

// Default returns the built-in settings.
func Default() Config {
	return Config{
		Count:      10000,
		K:          10,
		Iterations: 100,
		Dims:       2,
		DB:         "flatkd.sqlite",
		Log: LogConfig{
			Level:  "info",
			Format: "text",
		},
	}
}

// Load reads a YAML file over the defaults. An empty path returns Default.
func Load(path string) (Config, error) {
	cfg := Default()
	if path == "" {
		return cfg, nil
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return cfg, fmt.Errorf("config: read %s: %w", path, err)
	}
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return cfg, fmt.Errorf("config: parse %s: %w", path, err)
	}
	return cfg, cfg.Validate()
}

// Validate reports settings the drivers cannot run with.
func (c Config) Validate() error {
	var errs []error
	if c.Count < 0 {
		errs = append(errs, fmt.Errorf("count must not be negative, got %d", c.Count))
	}
	if c.K < 0 {
		errs = append(errs, fmt.Errorf("k must not be negative, got %d", c.K))
	}
	if c.Iterations < 0 {
		errs = append(errs, fmt.Errorf("iterations must not be negative, got %d", c.Iterations))
	}
	if c.Dims < 1 {
		errs = append(errs, fmt.Errorf("dims must be positive, got %d", c.Dims))
	}
	if err := errors.Join(errs...); err != nil {
		return fmt.Errorf("config: %w", err)
	}
	return nil
}
