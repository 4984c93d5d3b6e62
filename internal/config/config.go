// Package config defines all configuration structures for the famview
// service.  No I/O or parsing logic lives here — only plain data types and
// validation.
package config

import (
	"fmt"
	"time"
)

// ─────────────────────────────────────────────────────────────────────────────
// Sub-configuration structs
// ─────────────────────────────────────────────────────────────────────────────

// ServerConfig holds HTTP server tunables.
type ServerConfig struct {
	Port            int           `mapstructure:"port"`
	Mode            string        `mapstructure:"mode"` // "debug" | "release" | "test"
	ReadTimeout     time.Duration `mapstructure:"read_timeout"`
	WriteTimeout    time.Duration `mapstructure:"write_timeout"`
	ShutdownTimeout time.Duration `mapstructure:"shutdown_timeout"`
}

// CatalogConfig holds the SQLite catalog database parameters.  The catalog is
// a single local file holding events, families, and the thresholded pair
// store.
type CatalogConfig struct {
	Path        string        `mapstructure:"path"`
	BusyTimeout time.Duration `mapstructure:"busy_timeout"`
	ReadOnly    bool          `mapstructure:"read_only"`
}

// RedisConfig holds Redis connection parameters for the shared pair store
// used when several completions run against the same catalog concurrently.
type RedisConfig struct {
	Enabled      bool          `mapstructure:"enabled"`
	Addr         string        `mapstructure:"addr"`
	Password     string        `mapstructure:"password"`
	DB           int           `mapstructure:"db"`
	PoolSize     int           `mapstructure:"pool_size"`
	MinIdleConns int           `mapstructure:"min_idle_conns"`
	DialTimeout  time.Duration `mapstructure:"dial_timeout"`
	ReadTimeout  time.Duration `mapstructure:"read_timeout"`
	WriteTimeout time.Duration `mapstructure:"write_timeout"`
	DefaultTTL   time.Duration `mapstructure:"default_ttl"`
	KeyPrefix    string        `mapstructure:"key_prefix"`
}

// SimilarityConfig holds matrix-completion tunables.
type SimilarityConfig struct {
	// Concurrency bounds the number of comparator invocations in flight
	// during a single matrix completion.
	Concurrency int `mapstructure:"concurrency"`

	// CompareTimeout bounds a single pairwise comparison.  Zero disables the
	// per-pair deadline.
	CompareTimeout time.Duration `mapstructure:"compare_timeout"`

	// MatrixDir is the directory where completed matrices are persisted.
	MatrixDir string `mapstructure:"matrix_dir"`
}

// TimelineConfig holds occupancy-layout tunables.
type TimelineConfig struct {
	// BinWidthDays is the occupancy bin width in days.
	BinWidthDays float64 `mapstructure:"bin_width_days"`

	// PaddingDays widens clipped segments that overflow the window.
	PaddingDays float64 `mapstructure:"padding_days"`

	// MinMembers excludes families below this member count from the layout.
	MinMembers int `mapstructure:"min_members"`

	// FILow and FIHigh span the frequency-index colour scale.
	FILow  float64 `mapstructure:"fi_low"`
	FIHigh float64 `mapstructure:"fi_high"`
}

// LogConfig holds structured-logging parameters.
type LogConfig struct {
	Level            string `mapstructure:"level"`  // "debug" | "info" | "warn" | "error"
	Format           string `mapstructure:"format"` // "json" | "console"
	Output           string `mapstructure:"output"`
	EnableCaller     bool   `mapstructure:"enable_caller"`
	EnableStacktrace bool   `mapstructure:"enable_stacktrace"`
}

// MetricsConfig holds Prometheus exposition parameters.
type MetricsConfig struct {
	Enabled bool   `mapstructure:"enabled"`
	Path    string `mapstructure:"path"`
}

// ─────────────────────────────────────────────────────────────────────────────
// Root Config
// ─────────────────────────────────────────────────────────────────────────────

// Config is the root configuration structure for the entire service.
// Every infrastructure component and application service reads its settings
// from the relevant sub-struct.
type Config struct {
	Server     ServerConfig     `mapstructure:"server"`
	Catalog    CatalogConfig    `mapstructure:"catalog"`
	Redis      RedisConfig      `mapstructure:"redis"`
	Similarity SimilarityConfig `mapstructure:"similarity"`
	Timeline   TimelineConfig   `mapstructure:"timeline"`
	Log        LogConfig        `mapstructure:"log"`
	Metrics    MetricsConfig    `mapstructure:"metrics"`
}

// ─────────────────────────────────────────────────────────────────────────────
// Validation
// ─────────────────────────────────────────────────────────────────────────────

// Validate performs semantic validation of the fully-populated Config.
// It returns the first error encountered; callers should treat any error as
// fatal and refuse to start the application.
func (c *Config) Validate() error {
	// Server
	if c.Server.Port < 1 || c.Server.Port > 65535 {
		return fmt.Errorf("config: server.port %d is out of range [1, 65535]", c.Server.Port)
	}
	switch c.Server.Mode {
	case "debug", "release", "test":
	default:
		return fmt.Errorf("config: server.mode %q is invalid; expected debug|release|test", c.Server.Mode)
	}

	// Catalog
	if c.Catalog.Path == "" {
		return fmt.Errorf("config: catalog.path is required")
	}

	// Redis (only when enabled)
	if c.Redis.Enabled {
		if c.Redis.Addr == "" {
			return fmt.Errorf("config: redis.addr is required when redis.enabled is true")
		}
		if c.Redis.DB < 0 {
			return fmt.Errorf("config: redis.db must be ≥ 0, got %d", c.Redis.DB)
		}
	}

	// Similarity
	if c.Similarity.Concurrency < 1 {
		return fmt.Errorf("config: similarity.concurrency must be ≥ 1, got %d", c.Similarity.Concurrency)
	}

	// Timeline
	if c.Timeline.BinWidthDays <= 0 {
		return fmt.Errorf("config: timeline.bin_width_days must be > 0, got %g", c.Timeline.BinWidthDays)
	}
	if c.Timeline.PaddingDays < 0 {
		return fmt.Errorf("config: timeline.padding_days must be ≥ 0, got %g", c.Timeline.PaddingDays)
	}
	if c.Timeline.MinMembers < 0 {
		return fmt.Errorf("config: timeline.min_members must be ≥ 0, got %d", c.Timeline.MinMembers)
	}
	if c.Timeline.FIHigh <= c.Timeline.FILow {
		return fmt.Errorf("config: timeline.fi_high (%g) must exceed timeline.fi_low (%g)",
			c.Timeline.FIHigh, c.Timeline.FILow)
	}

	// Log
	switch c.Log.Level {
	case "debug", "info", "warn", "error":
	default:
		return fmt.Errorf("config: log.level %q is invalid; expected debug|info|warn|error", c.Log.Level)
	}
	switch c.Log.Format {
	case "json", "console":
	default:
		return fmt.Errorf("config: log.format %q is invalid; expected json|console", c.Log.Format)
	}

	return nil
}
