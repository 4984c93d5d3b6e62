// Package http wires the gin route tree and the HTTP server around the
// application services.
package http

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/seistrack/famview/internal/infrastructure/monitoring/logging"
	"github.com/seistrack/famview/internal/infrastructure/monitoring/prometheus"
	"github.com/seistrack/famview/internal/interfaces/http/handlers"
	"github.com/seistrack/famview/internal/interfaces/http/middleware"
)

// RouterConfig aggregates the handler and middleware dependencies required
// to construct the complete route tree.  Nil handlers leave their routes
// unregistered, which keeps partial wiring (tests, read-only deployments)
// cheap.
type RouterConfig struct {
	// Handlers
	FamilyHandler *handlers.FamilyHandler
	LayoutHandler *handlers.LayoutHandler
	ReportHandler *handlers.ReportHandler
	HealthHandler *handlers.HealthHandler

	// Infrastructure
	Logger           logging.Logger
	Metrics          *prometheus.AppMetrics
	MetricsCollector prometheus.MetricsCollector
	Mode             string // gin mode: "debug" | "release" | "test"

	// Logging overrides DefaultLoggingConfig when non-nil.
	Logging *middleware.LoggingConfig
}

// NewRouter constructs the route tree: global middleware, public probe and
// metrics endpoints, and the /api/v1 resource groups.
func NewRouter(cfg RouterConfig) http.Handler {
	if cfg.Mode != "" {
		gin.SetMode(cfg.Mode)
	}
	logger := cfg.Logger
	if logger == nil {
		logger = logging.NewNopLogger()
	}

	r := gin.New()

	logCfg := middleware.DefaultLoggingConfig()
	if cfg.Logging != nil {
		logCfg = *cfg.Logging
	}
	r.Use(middleware.RequestID())
	r.Use(middleware.Recovery(logger))
	r.Use(middleware.RequestLogging(logger, logCfg))
	r.Use(middleware.Metrics(cfg.Metrics))

	if cfg.HealthHandler != nil {
		r.GET("/healthz", cfg.HealthHandler.Liveness)
		r.GET("/readyz", cfg.HealthHandler.Readiness)
	}
	if cfg.MetricsCollector != nil {
		r.GET("/metrics", gin.WrapH(cfg.MetricsCollector.Handler()))
	}

	api := r.Group("/api/v1")
	registerFamilyRoutes(api, cfg.FamilyHandler, cfg.ReportHandler)
	registerTimelineRoutes(api, cfg.LayoutHandler)
	registerReportRoutes(api, cfg.ReportHandler)

	return r
}

// registerFamilyRoutes mounts family resource endpoints under /families.
func registerFamilyRoutes(r *gin.RouterGroup, h *handlers.FamilyHandler, rep *handlers.ReportHandler) {
	if h == nil {
		return
	}
	fr := r.Group("/families")
	fr.GET("", h.List)
	fr.GET("/:familyID", h.Get)
	if rep != nil {
		fr.GET("/:familyID/report", rep.Family)
	}
}

// registerTimelineRoutes mounts the occurrence views under /timeline.
func registerTimelineRoutes(r *gin.RouterGroup, h *handlers.LayoutHandler) {
	if h == nil {
		return
	}
	tr := r.Group("/timeline")
	tr.GET("/layout", h.Layout)
	tr.GET("/overview", h.Overview)
}

// registerReportRoutes mounts the batch report endpoint under /reports.
func registerReportRoutes(r *gin.RouterGroup, h *handlers.ReportHandler) {
	if h == nil {
		return
	}
	r.POST("/reports", h.Batch)
}
