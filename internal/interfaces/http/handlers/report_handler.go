package handlers

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/seistrack/famview/internal/application/report"
	"github.com/seistrack/famview/internal/infrastructure/monitoring/prometheus"
)

// ReportHandler serves family analysis reports.
type ReportHandler struct {
	svc     report.Service
	metrics *prometheus.AppMetrics
}

// NewReportHandler creates the handler.
func NewReportHandler(svc report.Service, metrics *prometheus.AppMetrics) *ReportHandler {
	return &ReportHandler{svc: svc, metrics: metrics}
}

// Family serves GET /families/:familyID/report.  Completing the similarity
// matrix can take a while on a cold pair store; the request context bounds
// the work.
func (h *ReportHandler) Family(c *gin.Context) {
	id, err := idParam(c, "familyID")
	if err != nil {
		respondError(c, err)
		return
	}

	started := time.Now()
	rep, err := h.svc.FamilyReport(c.Request.Context(), id)
	prometheus.RecordReport(h.metrics, time.Since(started), err)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, rep)
}

// Batch serves POST /reports: one report per family in the catalog.
// Individual family failures are reported in the body, not as an HTTP error.
func (h *ReportHandler) Batch(c *gin.Context) {
	res, err := h.svc.AllFamilies(c.Request.Context())
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, res)
}
