// Package config defines service configuration structures and loading hooks.
//
// Conventions:
// - Provide New() to build a Config with defaults.
// - Durations are configured in milliseconds and exposed as time.Duration accessors.
// - External errors are wrapped with this package's sentinel kinds.
package config

import (
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/okian/salesdash/internal/domain/grouping"
)

// Config contains process configuration.
type Config struct {
	// LogLevel controls verbosity: debug, info, warn, error.
	LogLevel string `koanf:"log_level"`

	// LogFormat selects the log handler: text or json.
	LogFormat string `koanf:"log_format"`

	// Addr configures the HTTP listen address, e.g. ":9080".
	Addr string `koanf:"addr"`

	// DataDir holds the per-grouping JSON files. Empty serves the embedded sample data.
	DataDir string `koanf:"data_dir"`

	// RefreshIntervalMS is the period of dataset reloads; 0 disables the loop.
	RefreshIntervalMS int `koanf:"refresh_interval_ms"`

	// LoadTimeoutMS bounds a single dataset load.
	LoadTimeoutMS int `koanf:"load_timeout_ms"`

	// DefaultGrouping is the grouping clients start with.
	DefaultGrouping string `koanf:"default_grouping"`

	// AllowedOrigin is the CORS allowed origin; empty disables CORS headers.
	AllowedOrigin string `koanf:"allowed_origin"`
}

// New creates a Config with defaults.
func New() *Config {
	return &Config{
		LogLevel:          "info",
		LogFormat:         "text",
		Addr:              ":9080",
		RefreshIntervalMS: 30_000,
		LoadTimeoutMS:     5_000,
		DefaultGrouping:   string(grouping.Industry),
		AllowedOrigin:     "*",
	}
}

// RefreshInterval returns the reload period.
func (c *Config) RefreshInterval() time.Duration {
	return time.Duration(c.RefreshIntervalMS) * time.Millisecond
}

// LoadTimeout returns the per-load deadline.
func (c *Config) LoadTimeout() time.Duration {
	return time.Duration(c.LoadTimeoutMS) * time.Millisecond
}

// Grouping returns the parsed default grouping.
func (c *Config) Grouping() grouping.Grouping {
	g, err := grouping.Parse(c.DefaultGrouping)
	if err != nil {
		return grouping.Industry
	}
	return g
}

// Validate reports the first invalid setting, wrapped in ErrInvalidConfig.
func (c *Config) Validate() error {
	switch {
	case c.Addr == "":
		return fmt.Errorf("%w: addr must not be empty", ErrInvalidConfig)
	case c.RefreshIntervalMS < 0:
		return fmt.Errorf("%w: refresh_interval_ms must not be negative", ErrInvalidConfig)
	case c.LoadTimeoutMS <= 0:
		return fmt.Errorf("%w: load_timeout_ms must be positive", ErrInvalidConfig)
	}

	switch strings.ToLower(strings.TrimSpace(c.LogFormat)) {
	case "", "text", "json":
	default:
		return fmt.Errorf("%w: log_format %q", ErrInvalidConfig, c.LogFormat)
	}

	if _, err := grouping.Parse(c.DefaultGrouping); err != nil {
		return fmt.Errorf("%w: default_grouping: %w", ErrInvalidConfig, err)
	}

	if c.DataDir != "" {
		fi, err := os.Stat(c.DataDir)
		if err != nil {
			return fmt.Errorf("%w: data_dir: %w", ErrInvalidConfig, err)
		}
		if !fi.IsDir() {
			return fmt.Errorf("%w: data_dir %q is not a directory", ErrInvalidConfig, c.DataDir)
		}
	}
	return nil
}
