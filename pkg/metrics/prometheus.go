// Package metrics provides Prometheus metrics for the prediction service.
package metrics

import (
	"runtime"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Manager manages all Prometheus metrics for the prediction service.
type Manager struct {
	namespace        string
	subsystem        string
	histogramBuckets []float64
	constLabels      map[string]string
	registry         prometheus.Registerer

	// Core business metrics
	predictions       *prometheus.CounterVec
	predictionLatency prometheus.Histogram
	matchResults      *prometheus.CounterVec

	// Dataset sync and snapshot metrics
	datasetSyncDuration   prometheus.Histogram
	datasetSyncs          *prometheus.CounterVec
	datasetLoadLatency    *prometheus.HistogramVec
	datasetRows           *prometheus.GaugeVec
	snapshotLastUnix      prometheus.Gauge
	snapshotCount         prometheus.Counter
	readinessState        prometheus.Gauge
	datasetCacheLookups   *prometheus.CounterVec
	datasetCacheBytesWritten prometheus.Counter

	// HTTP performance metrics
	httpRequests        *prometheus.CounterVec
	httpRequestDuration *prometheus.HistogramVec

	// Error metrics
	errorRateByComponent *prometheus.CounterVec
	errorRateByEndpoint  *prometheus.CounterVec
	errorLatency         *prometheus.HistogramVec

	// System metrics
	systemMemoryUsage    prometheus.Gauge
	systemGoroutineCount prometheus.Gauge
	systemGCPauseTime    prometheus.Histogram
}

// Global metrics manager instance.
var globalManager *Manager //nolint:gochecknoglobals // singleton metrics manager

// Custom registry to avoid default Go metrics.
var customRegistry = prometheus.NewRegistry() //nolint:gochecknoglobals // metrics registry

func init() { //nolint:gochecknoinits // global metrics setup
	globalManager = NewManager(WithPrometheusRegistry(customRegistry))
}

// NewManager creates a new metrics manager with default configuration.
func NewManager(opts ...Option) *Manager {
	m := &Manager{
		namespace:        "puddin",
		subsystem:        "predictor",
		histogramBuckets: []float64{0.5, 1, 2.5, 5, 10, 25, 50, 100, 250, 500, 1000, 2500, 5000},
		constLabels:      map[string]string{},
		registry:         prometheus.DefaultRegisterer,
	}
	for _, opt := range opts {
		opt(m)
	}
	m.initializeMetrics()
	return m
}

func (m *Manager) counterOpts(name, help string) prometheus.CounterOpts {
	return prometheus.CounterOpts{
		Namespace:   m.namespace,
		Subsystem:   m.subsystem,
		Name:        name,
		Help:        help,
		ConstLabels: m.constLabels,
	}
}

func (m *Manager) gaugeOpts(name, help string) prometheus.GaugeOpts {
	return prometheus.GaugeOpts{
		Namespace:   m.namespace,
		Subsystem:   m.subsystem,
		Name:        name,
		Help:        help,
		ConstLabels: m.constLabels,
	}
}

func (m *Manager) histogramOpts(name, help string, buckets []float64) prometheus.HistogramOpts {
	return prometheus.HistogramOpts{
		Namespace:   m.namespace,
		Subsystem:   m.subsystem,
		Name:        name,
		Help:        help,
		Buckets:     buckets,
		ConstLabels: m.constLabels,
	}
}

// initializeMetrics creates all the Prometheus metrics.
func (m *Manager) initializeMetrics() { //nolint:funlen // one place for every metric
	auto := promauto.With(m.registry)

	m.predictions = auto.NewCounterVec(
		m.counterOpts("predictions_total", "Predictions served by sport and outcome (pick, tie, or error kind)"),
		[]string{"sport", "outcome"},
	)
	m.predictionLatency = auto.NewHistogram(
		m.histogramOpts("prediction_latency_milliseconds", "Time to resolve, match and score one prediction", m.histogramBuckets),
	)
	m.matchResults = auto.NewCounterVec(
		m.counterOpts("team_matches_total", "Team lookups by sport and match status"),
		[]string{"sport", "status"},
	)

	m.datasetSyncDuration = auto.NewHistogram(
		m.histogramOpts("dataset_sync_duration_milliseconds", "Duration of a full dataset sync", m.histogramBuckets),
	)
	m.datasetSyncs = auto.NewCounterVec(
		m.counterOpts("dataset_syncs_total", "Dataset syncs by result"),
		[]string{"result"},
	)
	m.datasetLoadLatency = auto.NewHistogramVec(
		m.histogramOpts("dataset_load_latency_milliseconds", "Latency of loading one dataset by source", m.histogramBuckets),
		[]string{"source"},
	)
	m.datasetRows = auto.NewGaugeVec(
		m.gaugeOpts("dataset_rows", "Rows in the published dataset per sport"),
		[]string{"sport"},
	)
	m.snapshotLastUnix = auto.NewGauge(
		m.gaugeOpts("snapshot_last_unix", "Unix time of the last published dataset snapshot"),
	)
	m.snapshotCount = auto.NewCounter(
		m.counterOpts("snapshots_total", "Dataset snapshots published"),
	)
	m.readinessState = auto.NewGauge(
		m.gaugeOpts("readiness_state", "Dataset readiness: 0 uninitialized, 1 syncing, 2 ready, 3 failed"),
	)
	m.datasetCacheLookups = auto.NewCounterVec(
		m.counterOpts("dataset_cache_lookups_total", "Dataset cache lookups by result (hit, miss, error)"),
		[]string{"result"},
	)
	m.datasetCacheBytesWritten = auto.NewCounter(
		m.counterOpts("dataset_cache_bytes_written_total", "Bytes written to the dataset cache"),
	)

	m.httpRequests = auto.NewCounterVec(
		m.counterOpts("http_requests_total", "Total number of HTTP requests by endpoint and method"),
		[]string{"endpoint", "method", "status_code"},
	)
	m.httpRequestDuration = auto.NewHistogramVec(
		m.histogramOpts("http_request_duration_milliseconds", "HTTP request duration in milliseconds", m.histogramBuckets),
		[]string{"endpoint", "method", "status_code"},
	)

	m.errorRateByComponent = auto.NewCounterVec(
		m.counterOpts("errors_by_component_total", "Errors by component and type"),
		[]string{"component", "error_type"},
	)
	m.errorRateByEndpoint = auto.NewCounterVec(
		m.counterOpts("errors_by_endpoint_total", "Errors by endpoint, method and type"),
		[]string{"endpoint", "method", "error_type"},
	)
	m.errorLatency = auto.NewHistogramVec(
		m.histogramOpts("error_latency_milliseconds", "Latency of operations that ended in an error", m.histogramBuckets),
		[]string{"component", "error_type"},
	)

	m.systemMemoryUsage = auto.NewGauge(m.gaugeOpts("system_memory_usage_bytes", "System memory usage in bytes"))
	m.systemGoroutineCount = auto.NewGauge(m.gaugeOpts("system_goroutine_count", "Number of goroutines"))
	m.systemGCPauseTime = auto.NewHistogram(
		m.histogramOpts("system_gc_pause_time_milliseconds", "GC pause time in milliseconds",
			[]float64{0.1, 0.5, 1, 2, 5, 10, 25, 50, 100, 250, 500, 1000}),
	)
}

// RecordPrediction counts a prediction for sport with the given outcome.
func RecordPrediction(sport, outcome string) {
	globalManager.predictions.WithLabelValues(sport, outcome).Inc()
}

// RecordPredictionLatency records prediction latency in milliseconds.
func RecordPredictionLatency(latencyMs float64) {
	globalManager.predictionLatency.Observe(latencyMs)
}

// RecordMatch counts a team lookup by match status.
func RecordMatch(sport, status string) {
	globalManager.matchResults.WithLabelValues(sport, status).Inc()
}

// Dataset Metrics Functions.

// RecordDatasetSync records a full sync and its result ("success" or "failure").
func RecordDatasetSync(result string, durationMs float64) {
	globalManager.datasetSyncs.WithLabelValues(result).Inc()
	globalManager.datasetSyncDuration.Observe(durationMs)
}

// RecordDatasetLoadLatency records the latency of loading one dataset.
func RecordDatasetLoadLatency(source string, latencyMs float64) {
	globalManager.datasetLoadLatency.WithLabelValues(source).Observe(latencyMs)
}

// UpdateDatasetRows sets the row count of the published dataset for sport.
func UpdateDatasetRows(sport string, rows int) {
	globalManager.datasetRows.WithLabelValues(sport).Set(float64(rows))
}

// UpdateSnapshotLastUnix sets the publish time of the current snapshot.
func UpdateSnapshotLastUnix(ts float64) {
	globalManager.snapshotLastUnix.Set(ts)
}

// IncrementSnapshotCount increments the published snapshot counter.
func IncrementSnapshotCount() {
	globalManager.snapshotCount.Inc()
}

// UpdateReadinessState sets the numeric readiness state.
func UpdateReadinessState(state int) {
	globalManager.readinessState.Set(float64(state))
}

// RecordCacheLookup counts a dataset cache lookup ("hit", "miss" or "error").
func RecordCacheLookup(result string) {
	globalManager.datasetCacheLookups.WithLabelValues(result).Inc()
}

// RecordCacheWrite counts bytes written to the dataset cache.
func RecordCacheWrite(bytes int) {
	globalManager.datasetCacheBytesWritten.Add(float64(bytes))
}

// HTTP Metrics Functions.

// RecordHTTPRequest records an HTTP request.
func RecordHTTPRequest(endpoint, method, statusCode string) {
	globalManager.httpRequests.WithLabelValues(endpoint, method, statusCode).Inc()
}

// RecordHTTPRequestDuration records HTTP request duration.
func RecordHTTPRequestDuration(endpoint, method, statusCode string, duration float64) {
	globalManager.httpRequestDuration.WithLabelValues(endpoint, method, statusCode).Observe(duration)
}

// Error Metrics Functions.

// RecordErrorByComponent records an error with component and type labels.
func RecordErrorByComponent(component, errorType string) {
	globalManager.errorRateByComponent.WithLabelValues(component, errorType).Inc()
}

// RecordErrorByEndpoint records an error with endpoint, method, and error type labels.
func RecordErrorByEndpoint(endpoint, method, errorType string) {
	globalManager.errorRateByEndpoint.WithLabelValues(endpoint, method, errorType).Inc()
}

// RecordErrorLatency records the latency of an operation that resulted in an error.
func RecordErrorLatency(component, errorType string, latencyMs float64) {
	globalManager.errorLatency.WithLabelValues(component, errorType).Observe(latencyMs)
}

// System Performance Metrics Functions.

// UpdateSystemMemoryUsage sets the system memory usage in bytes.
func UpdateSystemMemoryUsage(bytes uint64) {
	globalManager.systemMemoryUsage.Set(float64(bytes))
}

// UpdateSystemGoroutineCount sets the number of goroutines.
func UpdateSystemGoroutineCount(count int) {
	globalManager.systemGoroutineCount.Set(float64(count))
}

// RecordSystemGCPauseTime records GC pause time in milliseconds.
func RecordSystemGCPauseTime(pauseMs float64) {
	globalManager.systemGCPauseTime.Observe(pauseMs)
}

// CollectSystem samples runtime memory, goroutine and GC pause stats.
func CollectSystem() {
	var ms runtime.MemStats
	runtime.ReadMemStats(&ms)
	UpdateSystemMemoryUsage(ms.Alloc)
	UpdateSystemGoroutineCount(runtime.NumGoroutine())
	if ms.NumGC > 0 {
		last := ms.PauseNs[(ms.NumGC+255)%256]
		RecordSystemGCPauseTime(float64(last) / 1e6)
	}
}

// GetRegistry returns the custom Prometheus registry used by our metrics.
func GetRegistry() *prometheus.Registry {
	return customRegistry
}
