package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestApplyDefaults_FillsZeroValues(t *testing.T) {
	t.Parallel()

	cfg := &Config{}
	ApplyDefaults(cfg)

	assert.Equal(t, DefaultServerPort, cfg.Server.Port)
	assert.Equal(t, DefaultServerMode, cfg.Server.Mode)
	assert.Equal(t, DefaultCatalogPath, cfg.Catalog.Path)
	assert.Equal(t, DefaultCatalogBusyTimeout, cfg.Catalog.BusyTimeout)
	assert.Equal(t, DefaultRedisAddr, cfg.Redis.Addr)
	assert.Equal(t, DefaultRedisKeyPrefix, cfg.Redis.KeyPrefix)
	assert.Equal(t, DefaultSimilarityConcurrency, cfg.Similarity.Concurrency)
	assert.Equal(t, DefaultMatrixDir, cfg.Similarity.MatrixDir)
	assert.Equal(t, DefaultBinWidthDays, cfg.Timeline.BinWidthDays)
	assert.Equal(t, DefaultPaddingDays, cfg.Timeline.PaddingDays)
	assert.Equal(t, DefaultFILow, cfg.Timeline.FILow)
	assert.Equal(t, DefaultFIHigh, cfg.Timeline.FIHigh)
	assert.Equal(t, DefaultLogLevel, cfg.Log.Level)
	assert.Equal(t, DefaultLogFormat, cfg.Log.Format)
	assert.Equal(t, DefaultMetricsPath, cfg.Metrics.Path)
}

func TestApplyDefaults_ExplicitValuesWin(t *testing.T) {
	t.Parallel()

	cfg := &Config{}
	cfg.Server.Port = 9999
	cfg.Catalog.Path = "/var/lib/famview/catalog.db"
	cfg.Similarity.Concurrency = 2
	cfg.Timeline.BinWidthDays = 0.25
	cfg.Timeline.FILow = -2
	cfg.Timeline.FIHigh = 0.5
	cfg.Log.Level = "debug"

	ApplyDefaults(cfg)

	assert.Equal(t, 9999, cfg.Server.Port)
	assert.Equal(t, "/var/lib/famview/catalog.db", cfg.Catalog.Path)
	assert.Equal(t, 2, cfg.Similarity.Concurrency)
	assert.Equal(t, 0.25, cfg.Timeline.BinWidthDays)
	assert.Equal(t, -2.0, cfg.Timeline.FILow)
	assert.Equal(t, 0.5, cfg.Timeline.FIHigh)
	assert.Equal(t, "debug", cfg.Log.Level)
}

func TestApplyDefaults_PartialFISpanPreserved(t *testing.T) {
	t.Parallel()

	// A span where only one bound is zero is an explicit choice; defaults
	// apply only when both bounds are unset.
	cfg := &Config{}
	cfg.Timeline.FIHigh = 3

	ApplyDefaults(cfg)

	assert.Equal(t, 0.0, cfg.Timeline.FILow)
	assert.Equal(t, 3.0, cfg.Timeline.FIHigh)
}

func TestApplyDefaults_NilConfigIsSafe(t *testing.T) {
	t.Parallel()

	assert.NotPanics(t, func() { ApplyDefaults(nil) })
}

func TestApplyDefaults_ServerTimeouts(t *testing.T) {
	t.Parallel()

	cfg := &Config{}
	ApplyDefaults(cfg)

	assert.Equal(t, 30*time.Second, cfg.Server.ReadTimeout)
	assert.Equal(t, 30*time.Second, cfg.Server.WriteTimeout)
	assert.Equal(t, 10*time.Second, cfg.Server.ShutdownTimeout)
}
