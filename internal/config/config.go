// Package config loads varhint tunables from an optional YAML file.
package config

import (
	"errors"
	"fmt"
	"os"
	"runtime"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/phobologic/varhint/internal/document"
	"github.com/phobologic/varhint/internal/infer"
	"github.com/phobologic/varhint/internal/schedule"
)

// DefaultMaxFileSize is the largest file scan will parse.
const DefaultMaxFileSize = 1_000_000 // 1 MB

// Config holds runtime tunables.
type Config struct {
	Debounce    time.Duration `yaml:"debounce"`
	Workers     int           `yaml:"workers"`
	MaxDepth    int           `yaml:"max_depth"`
	CacheTTL    time.Duration `yaml:"cache_ttl"`
	MaxFileSize int           `yaml:"max_file_size"`
}

// Default returns the built-in configuration.
func Default() Config {
	return Config{
		Debounce:    schedule.DefaultDebounce,
		Workers:     runtime.GOMAXPROCS(0),
		MaxDepth:    infer.DefaultMaxDepth,
		CacheTTL:    document.DefaultTTL,
		MaxFileSize: DefaultMaxFileSize,
	}
}

// Load reads path over the defaults. An empty path returns the defaults.
func Load(path string) (Config, error) {
	cfg := Default()
	if path == "" {
		return cfg, nil
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return cfg, fmt.Errorf("reading config: %w", err)
	}
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return cfg, fmt.Errorf("parsing config %s: %w", path, err)
	}
	if err := cfg.Validate(); err != nil {
		return cfg, fmt.Errorf("config %s: %w", path, err)
	}
	return cfg, nil
}

// Validate rejects values no component can run with.
func (c Config) Validate() error {
	var errs []error
	if c.Debounce < 0 {
		errs = append(errs, fmt.Errorf("debounce must not be negative, got %s", c.Debounce))
	}
	if c.Workers < 1 {
		errs = append(errs, fmt.Errorf("workers must be at least 1, got %d", c.Workers))
	}
	if c.MaxDepth < 1 {
		errs = append(errs, fmt.Errorf("max_depth must be at least 1, got %d", c.MaxDepth))
	}
	if c.CacheTTL <= 0 {
		errs = append(errs, fmt.Errorf("cache_ttl must be positive, got %s", c.CacheTTL))
	}
	if c.MaxFileSize < 1 {
		errs = append(errs, fmt.Errorf("max_file_size must be positive, got %d", c.MaxFileSize))
	}
	return errors.Join(errs...)
}
