// apiserver runs the famview HTTP API: catalog queries, occurrence layouts,
// and report generation over a local catalog database.
package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/seistrack/famview/internal/application/occurrence"
	"github.com/seistrack/famview/internal/application/report"
	"github.com/seistrack/famview/internal/config"
	"github.com/seistrack/famview/internal/domain/similarity"
	redisstore "github.com/seistrack/famview/internal/infrastructure/database/redis"
	"github.com/seistrack/famview/internal/infrastructure/database/sqlite"
	"github.com/seistrack/famview/internal/infrastructure/monitoring/logging"
	"github.com/seistrack/famview/internal/infrastructure/monitoring/prometheus"
	httpserver "github.com/seistrack/famview/internal/interfaces/http"
	"github.com/seistrack/famview/internal/interfaces/http/handlers"
)

func main() {
	configPath := flag.String("config", "", "path to configuration file (default: env + built-in defaults)")
	flag.Parse()

	if err := run(*configPath); err != nil {
		fmt.Fprintf(os.Stderr, "apiserver: %v\n", err)
		os.Exit(1)
	}
}

func run(configPath string) error {
	cfg, err := loadConfig(configPath)
	if err != nil {
		return err
	}

	logger, err := logging.NewLogger(logging.LogConfig{
		Level:  cfg.Log.Level,
		Format: cfg.Log.Format,
	})
	if err != nil {
		return err
	}
	logging.SetDefault(logger)

	logger.Info("starting famview api server",
		logging.Int("port", cfg.Server.Port),
		logging.String("catalog", cfg.Catalog.Path))

	// Metrics.
	var (
		collector prometheus.MetricsCollector
		metrics   *prometheus.AppMetrics
	)
	if cfg.Metrics.Enabled {
		collector, err = prometheus.NewMetricsCollector(prometheus.CollectorConfig{
			Namespace:            "famview",
			EnableProcessMetrics: true,
			EnableGoMetrics:      true,
		}, logger)
		if err != nil {
			return err
		}
		metrics = prometheus.NewAppMetrics(collector)
	}

	// Catalog.
	store, err := sqlite.Open(sqlite.Config{
		Path:        cfg.Catalog.Path,
		BusyTimeout: cfg.Catalog.BusyTimeout,
		ReadOnly:    cfg.Catalog.ReadOnly,
	}, logger, sqlite.WithMetrics(metrics))
	if err != nil {
		return err
	}
	defer store.Close()

	// Pair store: the catalog database by default, Redis when several
	// completion runs share one catalog.
	var pairStore similarity.PairStore = store
	components := map[string]handlers.Pinger{"catalog": store}
	if cfg.Redis.Enabled {
		rs, err := redisstore.NewPairStore(redisstore.Config{
			Addr:         cfg.Redis.Addr,
			Password:     cfg.Redis.Password,
			DB:           cfg.Redis.DB,
			PoolSize:     cfg.Redis.PoolSize,
			MinIdleConns: cfg.Redis.MinIdleConns,
			DialTimeout:  cfg.Redis.DialTimeout,
			ReadTimeout:  cfg.Redis.ReadTimeout,
			WriteTimeout: cfg.Redis.WriteTimeout,
			KeyPrefix:    cfg.Redis.KeyPrefix,
			TTL:          cfg.Redis.DefaultTTL,
		}, logger, redisstore.WithMetrics(metrics))
		if err != nil {
			return err
		}
		defer rs.Close()
		pairStore = rs
		components["redis"] = rs
	}

	// Application services.
	occSvc := occurrence.NewService(store, store, store, logger)
	repSvc := report.NewService(store, store, pairStore,
		similarity.BelowThresholdComparator{},
		cfg.Similarity.Concurrency,
		report.WithMatrixDir(cfg.Similarity.MatrixDir),
		report.WithLogger(logger),
		report.WithMetrics(metrics))

	router := httpserver.NewRouter(httpserver.RouterConfig{
		FamilyHandler:    handlers.NewFamilyHandler(store, store),
		LayoutHandler:    handlers.NewLayoutHandler(occSvc, cfg.Timeline, metrics),
		ReportHandler:    handlers.NewReportHandler(repSvc, metrics),
		HealthHandler:    handlers.NewHealthHandler(components, logger, metrics),
		Logger:           logger,
		Metrics:          metrics,
		MetricsCollector: collector,
		Mode:             cfg.Server.Mode,
	})

	srv := httpserver.NewServer(cfg.Server, router, logger)

	errCh := make(chan error, 1)
	go func() { errCh <- srv.Start() }()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)

	select {
	case err := <-errCh:
		return err
	case sig := <-quit:
		logger.Info("shutdown signal received", logging.String("signal", sig.String()))
	}

	if err := srv.Stop(context.Background()); err != nil {
		return err
	}
	return <-errCh
}

func loadConfig(path string) (*config.Config, error) {
	if path != "" {
		return config.Load(path)
	}
	return config.LoadFromEnv()
}
