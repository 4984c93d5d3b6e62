package prometheus

import (
	"strconv"
	"time"
)

// AppMetrics holds every metric the service records.
type AppMetrics struct {
	// HTTP layer
	HTTPRequestsTotal   CounterVec
	HTTPRequestDuration HistogramVec
	HTTPActiveRequests  GaugeVec

	// Similarity completion
	ComparisonsTotal        CounterVec
	ComparisonFailuresTotal CounterVec
	CompletionDuration      HistogramVec
	CompletionPairs         HistogramVec
	PairLookupsTotal        CounterVec

	// Pair store
	PairStoreOpsTotal  CounterVec
	PairStoreOpLatency HistogramVec

	// Reports
	ReportsTotal   CounterVec
	ReportDuration HistogramVec

	// Layouts
	LayoutsTotal   CounterVec
	LayoutRows     HistogramVec
	LayoutDuration HistogramVec

	// Catalog
	CatalogQueryDuration HistogramVec
	FamiliesTotal        GaugeVec
	EventsTotal          GaugeVec

	// System health
	HealthCheckStatus GaugeVec
	ErrorsTotal       CounterVec
}

var (
	// DefaultHTTPDurationBuckets covers interactive request latencies.
	DefaultHTTPDurationBuckets = []float64{.005, .01, .025, .05, .1, .25, .5, 1, 2.5, 5, 10}
	// DefaultCompletionDurationBuckets covers correlation batches, which can
	// run for minutes on large families.
	DefaultCompletionDurationBuckets = []float64{.1, .5, 1, 5, 15, 60, 300, 900, 1800}
	// DefaultPairCountBuckets covers completed-pair counts per family.
	DefaultPairCountBuckets = []float64{1, 10, 50, 100, 500, 1000, 5000, 20000}
	// DefaultDBDurationBuckets covers catalog and pair-store queries.
	DefaultDBDurationBuckets = []float64{.001, .005, .01, .025, .05, .1, .25, .5, 1, 5}
)

// NewAppMetrics registers all metrics on the collector.
func NewAppMetrics(collector MetricsCollector) *AppMetrics {
	m := &AppMetrics{}

	m.HTTPRequestsTotal = collector.RegisterCounter(
		"http_requests_total", "Total HTTP requests", "method", "path", "status_code")
	m.HTTPRequestDuration = collector.RegisterHistogram(
		"http_request_duration_seconds", "HTTP request duration",
		DefaultHTTPDurationBuckets, "method", "path")
	m.HTTPActiveRequests = collector.RegisterGauge(
		"http_active_requests", "Active HTTP requests", "method", "path")

	m.ComparisonsTotal = collector.RegisterCounter(
		"comparisons_total", "Pairwise comparisons executed", "outcome")
	m.ComparisonFailuresTotal = collector.RegisterCounter(
		"comparison_failures_total", "Pairwise comparisons that returned an error")
	m.CompletionDuration = collector.RegisterHistogram(
		"completion_duration_seconds", "Family matrix completion duration",
		DefaultCompletionDurationBuckets, "outcome")
	m.CompletionPairs = collector.RegisterHistogram(
		"completion_pairs", "Newly computed pairs per completion",
		DefaultPairCountBuckets)
	m.PairLookupsTotal = collector.RegisterCounter(
		"pair_lookups_total", "Pair store lookups during completion", "result")

	m.PairStoreOpsTotal = collector.RegisterCounter(
		"pair_store_ops_total", "Pair store operations", "op", "status")
	m.PairStoreOpLatency = collector.RegisterHistogram(
		"pair_store_op_duration_seconds", "Pair store operation duration",
		DefaultDBDurationBuckets, "op")

	m.ReportsTotal = collector.RegisterCounter(
		"reports_total", "Family reports generated", "status")
	m.ReportDuration = collector.RegisterHistogram(
		"report_duration_seconds", "Family report generation duration",
		DefaultCompletionDurationBuckets)

	m.LayoutsTotal = collector.RegisterCounter(
		"layouts_total", "Occurrence layouts computed", "mode", "status")
	m.LayoutRows = collector.RegisterHistogram(
		"layout_rows", "Included family rows per layout",
		[]float64{1, 5, 10, 25, 50, 100, 250, 500, 1000})
	m.LayoutDuration = collector.RegisterHistogram(
		"layout_duration_seconds", "Occurrence layout duration",
		DefaultHTTPDurationBuckets, "mode")

	m.CatalogQueryDuration = collector.RegisterHistogram(
		"catalog_query_duration_seconds", "Catalog query duration",
		DefaultDBDurationBuckets, "query")
	m.FamiliesTotal = collector.RegisterGauge(
		"families_total", "Families in the catalog")
	m.EventsTotal = collector.RegisterGauge(
		"events_total", "Events in the catalog")

	m.HealthCheckStatus = collector.RegisterGauge(
		"health_check_status", "Health check status (1=up, 0=down)", "component")
	m.ErrorsTotal = collector.RegisterCounter(
		"errors_total", "Total errors", "component", "error_type")

	return m
}

// RecordHTTPRequest records one finished HTTP request.
func RecordHTTPRequest(m *AppMetrics, method, path string, statusCode int, duration time.Duration) {
	if m == nil {
		return
	}
	status := strconv.Itoa(statusCode)
	m.HTTPRequestsTotal.WithLabelValues(method, path, status).Inc()
	m.HTTPRequestDuration.WithLabelValues(method, path).Observe(duration.Seconds())
}

// RecordCompletion records the outcome of one family matrix completion.
func RecordCompletion(m *AppMetrics, duration time.Duration, newPairs, failedPairs int, err error) {
	if m == nil {
		return
	}
	outcome := "ok"
	if err != nil {
		outcome = "error"
	}
	m.CompletionDuration.WithLabelValues(outcome).Observe(duration.Seconds())
	if err != nil {
		return
	}
	m.CompletionPairs.WithLabelValues().Observe(float64(newPairs))
	m.ComparisonsTotal.WithLabelValues("ok").Add(float64(newPairs))
	m.ComparisonsTotal.WithLabelValues("failed").Add(float64(failedPairs))
	m.ComparisonFailuresTotal.WithLabelValues().Add(float64(failedPairs))
}

// RecordPairStoreOp records one pair store call.
func RecordPairStoreOp(m *AppMetrics, op string, duration time.Duration, err error) {
	if m == nil {
		return
	}
	status := "ok"
	if err != nil {
		status = "error"
	}
	m.PairStoreOpsTotal.WithLabelValues(op, status).Inc()
	m.PairStoreOpLatency.WithLabelValues(op).Observe(duration.Seconds())
}

// RecordLayout records one occurrence layout computation.
func RecordLayout(m *AppMetrics, mode string, rows int, duration time.Duration, err error) {
	if m == nil {
		return
	}
	status := "ok"
	if err != nil {
		status = "error"
	}
	m.LayoutsTotal.WithLabelValues(mode, status).Inc()
	if err != nil {
		return
	}
	m.LayoutRows.WithLabelValues().Observe(float64(rows))
	m.LayoutDuration.WithLabelValues(mode).Observe(duration.Seconds())
}

// RecordReport records one family report generation.
func RecordReport(m *AppMetrics, duration time.Duration, err error) {
	if m == nil {
		return
	}
	status := "ok"
	if err != nil {
		status = "error"
	}
	m.ReportsTotal.WithLabelValues(status).Inc()
	if err != nil {
		return
	}
	m.ReportDuration.WithLabelValues().Observe(duration.Seconds())
}

// RecordError counts one component error.
func RecordError(m *AppMetrics, component, errorType string) {
	if m == nil {
		return
	}
	m.ErrorsTotal.WithLabelValues(component, errorType).Inc()
}
