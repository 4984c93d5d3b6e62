// Package config provides configuration loading, defaults, and validation for
// the famview service.
package config

import "time"

// ─────────────────────────────────────────────────────────────────────────────
// Default value constants
// ─────────────────────────────────────────────────────────────────────────────

const (
	DefaultServerPort = 8080
	DefaultServerMode = "release"

	DefaultCatalogPath        = "famview.db"
	DefaultCatalogBusyTimeout = 5 * time.Second

	DefaultRedisAddr      = "localhost:6379"
	DefaultRedisKeyPrefix = "famview"

	DefaultSimilarityConcurrency = 8
	DefaultMatrixDir             = "matrices"

	// DefaultBinWidthDays is one day, the occupancy resolution the rate
	// colour scale is calibrated for.
	DefaultBinWidthDays = 1.0
	DefaultPaddingDays  = 1.0
	DefaultMinMembers   = 0
	DefaultFILow        = -1.0
	DefaultFIHigh       = 1.0

	DefaultLogLevel  = "info"
	DefaultLogFormat = "json"

	DefaultMetricsPath = "/metrics"
)

// ApplyDefaults fills every zero-value field in cfg with the service default.
// Fields that have already been set by the caller (non-zero values) are left
// unchanged so that explicit configuration always wins.  It must be called
// after unmarshalling raw config data and before Validate() so that
// optional-but-defaulted fields are never seen as missing.
func ApplyDefaults(cfg *Config) {
	if cfg == nil {
		return
	}

	// ── Server ────────────────────────────────────────────────────────────────
	if cfg.Server.Port == 0 {
		cfg.Server.Port = DefaultServerPort
	}
	if cfg.Server.Mode == "" {
		cfg.Server.Mode = DefaultServerMode
	}
	if cfg.Server.ReadTimeout == 0 {
		cfg.Server.ReadTimeout = 30 * time.Second
	}
	if cfg.Server.WriteTimeout == 0 {
		cfg.Server.WriteTimeout = 30 * time.Second
	}
	if cfg.Server.ShutdownTimeout == 0 {
		cfg.Server.ShutdownTimeout = 10 * time.Second
	}

	// ── Catalog ───────────────────────────────────────────────────────────────
	if cfg.Catalog.Path == "" {
		cfg.Catalog.Path = DefaultCatalogPath
	}
	if cfg.Catalog.BusyTimeout == 0 {
		cfg.Catalog.BusyTimeout = DefaultCatalogBusyTimeout
	}

	// ── Redis ─────────────────────────────────────────────────────────────────
	if cfg.Redis.Addr == "" {
		cfg.Redis.Addr = DefaultRedisAddr
	}
	if cfg.Redis.KeyPrefix == "" {
		cfg.Redis.KeyPrefix = DefaultRedisKeyPrefix
	}
	if cfg.Redis.DialTimeout == 0 {
		cfg.Redis.DialTimeout = 5 * time.Second
	}

	// ── Similarity ────────────────────────────────────────────────────────────
	if cfg.Similarity.Concurrency == 0 {
		cfg.Similarity.Concurrency = DefaultSimilarityConcurrency
	}
	if cfg.Similarity.MatrixDir == "" {
		cfg.Similarity.MatrixDir = DefaultMatrixDir
	}

	// ── Timeline ──────────────────────────────────────────────────────────────
	if cfg.Timeline.BinWidthDays == 0 {
		cfg.Timeline.BinWidthDays = DefaultBinWidthDays
	}
	if cfg.Timeline.PaddingDays == 0 {
		cfg.Timeline.PaddingDays = DefaultPaddingDays
	}
	if cfg.Timeline.FILow == 0 && cfg.Timeline.FIHigh == 0 {
		cfg.Timeline.FILow = DefaultFILow
		cfg.Timeline.FIHigh = DefaultFIHigh
	}

	// ── Log ───────────────────────────────────────────────────────────────────
	if cfg.Log.Level == "" {
		cfg.Log.Level = DefaultLogLevel
	}
	if cfg.Log.Format == "" {
		cfg.Log.Format = DefaultLogFormat
	}

	// ── Metrics ───────────────────────────────────────────────────────────────
	if cfg.Metrics.Path == "" {
		cfg.Metrics.Path = DefaultMetricsPath
	}
}
