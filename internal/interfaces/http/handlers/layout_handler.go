package handlers

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/seistrack/famview/internal/application/occurrence"
	"github.com/seistrack/famview/internal/config"
	"github.com/seistrack/famview/internal/domain/timeline"
	"github.com/seistrack/famview/internal/infrastructure/monitoring/prometheus"
)

// LayoutHandler serves the occurrence timeline views.
type LayoutHandler struct {
	svc      occurrence.Service
	defaults config.TimelineConfig
	metrics  *prometheus.AppMetrics
}

// NewLayoutHandler creates the handler.  defaults fills in the tunables a
// request leaves unset.
func NewLayoutHandler(svc occurrence.Service, defaults config.TimelineConfig, metrics *prometheus.AppMetrics) *LayoutHandler {
	return &LayoutHandler{svc: svc, defaults: defaults, metrics: metrics}
}

// Layout serves GET /timeline/layout.
//
// Required query parameters: min, max (window bounds, days).  Optional:
// bin_width, min_members, padding, mode (rate|fi), fi_low, fi_high.
func (h *LayoutHandler) Layout(c *gin.Context) {
	window, err := h.windowQuery(c)
	if err != nil {
		respondError(c, err)
		return
	}

	binWidth, err := floatQuery(c, "bin_width", h.defaults.BinWidthDays)
	if err != nil {
		respondError(c, err)
		return
	}
	minMembers, err := intQuery(c, "min_members", h.defaults.MinMembers)
	if err != nil {
		respondError(c, err)
		return
	}
	fiLow, err := floatQuery(c, "fi_low", h.defaults.FILow)
	if err != nil {
		respondError(c, err)
		return
	}
	fiHigh, err := floatQuery(c, "fi_high", h.defaults.FIHigh)
	if err != nil {
		respondError(c, err)
		return
	}

	input := &occurrence.LayoutInput{
		Window:       window,
		BinWidthDays: binWidth,
		MinMembers:   minMembers,
		Mode:         occurrence.ScoringMode(c.Query("mode")),
		FILow:        fiLow,
		FIHigh:       fiHigh,
	}

	mode := string(input.Mode)
	if mode == "" {
		mode = string(occurrence.ScoreByRate)
	}

	started := time.Now()
	result, err := h.svc.Layout(c.Request.Context(), input)
	if err != nil {
		prometheus.RecordLayout(h.metrics, mode, 0, 0, err)
		respondError(c, err)
		return
	}
	prometheus.RecordLayout(h.metrics, mode, len(result.Layout.Rows), time.Since(started), nil)

	c.JSON(http.StatusOK, result)
}

// Overview serves GET /timeline/overview.
//
// Required query parameters: min, max.  Optional: bin_width, padding.
func (h *LayoutHandler) Overview(c *gin.Context) {
	window, err := h.windowQuery(c)
	if err != nil {
		respondError(c, err)
		return
	}
	binWidth, err := floatQuery(c, "bin_width", h.defaults.BinWidthDays)
	if err != nil {
		respondError(c, err)
		return
	}

	overview, err := h.svc.Overview(c.Request.Context(), &occurrence.OverviewInput{
		Window:       window,
		BinWidthDays: binWidth,
	})
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, overview)
}

func (h *LayoutHandler) windowQuery(c *gin.Context) (timeline.TimeWindow, error) {
	min, err := requiredFloatQuery(c, "min")
	if err != nil {
		return timeline.TimeWindow{}, err
	}
	max, err := requiredFloatQuery(c, "max")
	if err != nil {
		return timeline.TimeWindow{}, err
	}
	padding, err := floatQuery(c, "padding", h.defaults.PaddingDays)
	if err != nil {
		return timeline.TimeWindow{}, err
	}
	return timeline.TimeWindow{Min: min, Max: max, Padding: padding}, nil
}
