// Package redis provides a Redis-backed pair store, used when several
// completion runs share one sparse store across processes.
package redis

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/seistrack/famview/internal/domain/catalog"
	"github.com/seistrack/famview/internal/domain/similarity"
	"github.com/seistrack/famview/internal/infrastructure/monitoring/logging"
	"github.com/seistrack/famview/internal/infrastructure/monitoring/prometheus"
	"github.com/seistrack/famview/pkg/errors"
)

// Config holds connection parameters for the pair store.
type Config struct {
	Addr         string
	Password     string
	DB           int
	PoolSize     int
	MinIdleConns int
	DialTimeout  time.Duration
	ReadTimeout  time.Duration
	WriteTimeout time.Duration

	// KeyPrefix namespaces all keys, so several catalogs can share one
	// Redis instance.
	KeyPrefix string

	// TTL expires stored pairs; zero keeps them forever.
	TTL time.Duration
}

func (c *Config) applyDefaults() {
	if c.PoolSize == 0 {
		c.PoolSize = 10
	}
	if c.DialTimeout == 0 {
		c.DialTimeout = 5 * time.Second
	}
	if c.ReadTimeout == 0 {
		c.ReadTimeout = 3 * time.Second
	}
	if c.WriteTimeout == 0 {
		c.WriteTimeout = 3 * time.Second
	}
	if c.KeyPrefix == "" {
		c.KeyPrefix = "famview"
	}
}

// pairRecord is the stored JSON form of a PairValue.
type pairRecord struct {
	Coefficient float64 `json:"c"`
	Lag         float64 `json:"l"`
	SampleCount int     `json:"n"`
}

// PairStore implements similarity.PairStore over Redis.
type PairStore struct {
	rdb     *redis.Client
	cfg     Config
	logger  logging.Logger
	metrics *prometheus.AppMetrics
}

// Option customizes the pair store.
type Option func(*PairStore)

// WithMetrics enables pair-store operation metrics.
func WithMetrics(m *prometheus.AppMetrics) Option {
	return func(s *PairStore) { s.metrics = m }
}

// NewPairStore connects to Redis and verifies the connection.
func NewPairStore(cfg Config, logger logging.Logger, opts ...Option) (*PairStore, error) {
	cfg.applyDefaults()
	if cfg.Addr == "" {
		return nil, errors.New(errors.ErrCodeValidation, "redis addr is required")
	}
	if logger == nil {
		logger = logging.NewNopLogger()
	}

	rdb := redis.NewClient(&redis.Options{
		Addr:         cfg.Addr,
		Password:     cfg.Password,
		DB:           cfg.DB,
		PoolSize:     cfg.PoolSize,
		MinIdleConns: cfg.MinIdleConns,
		DialTimeout:  cfg.DialTimeout,
		ReadTimeout:  cfg.ReadTimeout,
		WriteTimeout: cfg.WriteTimeout,
	})

	s := &PairStore{rdb: rdb, cfg: cfg, logger: logger}
	for _, opt := range opts {
		opt(s)
	}

	ctx, cancel := context.WithTimeout(context.Background(), cfg.DialTimeout)
	defer cancel()
	if err := rdb.Ping(ctx).Err(); err != nil {
		rdb.Close()
		return nil, errors.Wrap(err, errors.ErrCodeCacheError, "connect to redis pair store")
	}

	logger.Info("redis pair store connected",
		logging.String("addr", cfg.Addr), logging.String("prefix", cfg.KeyPrefix))
	return s, nil
}

// Close releases the connection pool.
func (s *PairStore) Close() error { return s.rdb.Close() }

// Ping verifies the connection.
func (s *PairStore) Ping(ctx context.Context) error { return s.rdb.Ping(ctx).Err() }

func (s *PairStore) key(k similarity.PairKey) string {
	return fmt.Sprintf("%s:pair:%d:%d", s.cfg.KeyPrefix, k.Lo, k.Hi)
}

// Lookup implements similarity.PairStore.
func (s *PairStore) Lookup(ctx context.Context, a, b catalog.EventID) (similarity.PairValue, bool, error) {
	started := time.Now()

	raw, err := s.rdb.Get(ctx, s.key(similarity.NewPairKey(a, b))).Bytes()
	if err == redis.Nil {
		prometheus.RecordPairStoreOp(s.metrics, "lookup", time.Since(started), nil)
		return similarity.PairValue{}, false, nil
	}
	prometheus.RecordPairStoreOp(s.metrics, "lookup", time.Since(started), err)
	if err != nil {
		return similarity.PairValue{}, false,
			errors.Wrap(err, errors.ErrCodeCacheError, "pair lookup")
	}

	var rec pairRecord
	if err := json.Unmarshal(raw, &rec); err != nil {
		return similarity.PairValue{}, false,
			errors.Wrap(err, errors.ErrCodeSerialization, "decode pair record")
	}
	return similarity.PairValue{
		Coefficient: rec.Coefficient,
		Lag:         rec.Lag,
		SampleCount: rec.SampleCount,
	}, true, nil
}

// Insert implements similarity.PairStore, overwriting any stored value for
// the unordered pair.
func (s *PairStore) Insert(ctx context.Context, a, b catalog.EventID, v similarity.PairValue) error {
	started := time.Now()

	raw, err := json.Marshal(pairRecord{
		Coefficient: v.Coefficient,
		Lag:         v.Lag,
		SampleCount: v.SampleCount,
	})
	if err != nil {
		return errors.Wrap(err, errors.ErrCodeSerialization, "encode pair record")
	}

	err = s.rdb.Set(ctx, s.key(similarity.NewPairKey(a, b)), raw, s.cfg.TTL).Err()
	prometheus.RecordPairStoreOp(s.metrics, "insert", time.Since(started), err)
	if err != nil {
		return errors.Wrap(err, errors.ErrCodeCacheError, "pair insert")
	}
	return nil
}

// Len returns the number of stored pairs under this store's prefix.  It
// scans, so it is meant for diagnostics, not hot paths.
func (s *PairStore) Len(ctx context.Context) (int64, error) {
	var (
		cursor uint64
		total  int64
	)
	pattern := s.cfg.KeyPrefix + ":pair:*"
	for {
		keys, next, err := s.rdb.Scan(ctx, cursor, pattern, 512).Result()
		if err != nil {
			return 0, errors.Wrap(err, errors.ErrCodeCacheError, "scan pairs")
		}
		total += int64(len(keys))
		if next == 0 {
			return total, nil
		}
		cursor = next
	}
}
