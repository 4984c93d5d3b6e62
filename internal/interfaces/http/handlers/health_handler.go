package handlers

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/seistrack/famview/internal/infrastructure/monitoring/logging"
	"github.com/seistrack/famview/internal/infrastructure/monitoring/prometheus"
)

// Pinger is the readiness probe of one backing component.
type Pinger interface {
	Ping(ctx context.Context) error
}

// HealthHandler serves liveness and readiness probes.
type HealthHandler struct {
	components map[string]Pinger
	logger     logging.Logger
	metrics    *prometheus.AppMetrics
	timeout    time.Duration
}

// NewHealthHandler creates the handler.  components maps a component name to
// its probe; nil probes are skipped.
func NewHealthHandler(components map[string]Pinger, logger logging.Logger, metrics *prometheus.AppMetrics) *HealthHandler {
	if logger == nil {
		logger = logging.NewNopLogger()
	}
	return &HealthHandler{
		components: components,
		logger:     logger,
		metrics:    metrics,
		timeout:    2 * time.Second,
	}
}

// Liveness reports that the process is up.
func (h *HealthHandler) Liveness(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}

// Readiness pings every backing component and reports per-component status.
func (h *HealthHandler) Readiness(c *gin.Context) {
	ctx, cancel := context.WithTimeout(c.Request.Context(), h.timeout)
	defer cancel()

	status := http.StatusOK
	components := make(map[string]string, len(h.components))
	for name, p := range h.components {
		if p == nil {
			continue
		}
		if err := p.Ping(ctx); err != nil {
			h.logger.Warn("component not ready",
				logging.String("component", name), logging.Err(err))
			components[name] = "down"
			status = http.StatusServiceUnavailable
			h.setGauge(name, 0)
			continue
		}
		components[name] = "up"
		h.setGauge(name, 1)
	}

	body := gin.H{"status": "ok", "components": components}
	if status != http.StatusOK {
		body["status"] = "degraded"
	}
	c.JSON(status, body)
}

func (h *HealthHandler) setGauge(component string, v float64) {
	if h.metrics == nil {
		return
	}
	h.metrics.HealthCheckStatus.WithLabelValues(component).Set(v)
}
