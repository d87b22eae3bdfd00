// Package metrics provides Prometheus metrics for the sales dashboard.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Manager owns every dashboard metric.
type Manager struct {
	namespace        string
	subsystem        string
	histogramBuckets []float64
	enabled          bool
	customLabels     map[string]string
	registry         prometheus.Registerer

	// HTTP
	httpRequests        *prometheus.CounterVec
	httpRequestDuration *prometheus.HistogramVec
	errorsByEndpoint    *prometheus.CounterVec
	errorsByComponent   *prometheus.CounterVec

	// Source
	sourceLoads       *prometheus.CounterVec
	sourceLoadLatency *prometheus.HistogramVec

	// Aggregation
	aggregationLatency    prometheus.Histogram
	aggregationRecords    prometheus.Counter
	aggregationDuplicates prometheus.Counter

	// Snapshots
	snapshotVersion  *prometheus.GaugeVec
	snapshotRecords  *prometheus.GaugeVec
	snapshotLastUnix *prometheus.GaugeVec
	refreshes        *prometheus.CounterVec

	// Selector
	selectorFetches      *prometheus.CounterVec
	selectorSupersedes   prometheus.Counter
	selectorFetchLatency prometheus.Histogram

	// System
	systemMemoryUsage    prometheus.Gauge
	systemGoroutineCount prometheus.Gauge
	systemGCPauseTime    prometheus.Histogram
}

var globalManager *Manager //nolint:gochecknoglobals // singleton metrics manager

// Custom registry to avoid default Go metrics.
var customRegistry = prometheus.NewRegistry() //nolint:gochecknoglobals // metrics registry

func init() { //nolint:gochecknoinits // global metrics setup
	globalManager = NewManager(WithPrometheusRegistry(customRegistry))
}

// NewManager creates a metrics manager and registers its collectors.
func NewManager(opts ...Option) *Manager {
	m := &Manager{
		namespace:        "salesdash",
		subsystem:        "",
		histogramBuckets: prometheus.DefBuckets,
		enabled:          true,
		customLabels:     make(map[string]string),
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
		ConstLabels: m.customLabels,
	}
}

func (m *Manager) gaugeOpts(name, help string) prometheus.GaugeOpts {
	return prometheus.GaugeOpts{
		Namespace:   m.namespace,
		Subsystem:   m.subsystem,
		Name:        name,
		Help:        help,
		ConstLabels: m.customLabels,
	}
}

func (m *Manager) histogramOpts(name, help string, buckets []float64) prometheus.HistogramOpts {
	return prometheus.HistogramOpts{
		Namespace:   m.namespace,
		Subsystem:   m.subsystem,
		Name:        name,
		Help:        help,
		Buckets:     buckets,
		ConstLabels: m.customLabels,
	}
}

func (m *Manager) initializeMetrics() { //nolint:funlen // one place for every collector
	auto := promauto.With(m.registry)
	msBuckets := []float64{0.1, 0.5, 1, 2, 5, 10, 25, 50, 100, 250, 500, 1000, 2500, 10000}

	m.httpRequests = auto.NewCounterVec(
		m.counterOpts("http_requests_total", "Total number of HTTP requests by endpoint and method"),
		[]string{"endpoint", "method", "status_code"},
	)
	m.httpRequestDuration = auto.NewHistogramVec(
		m.histogramOpts("http_request_duration_milliseconds", "HTTP request duration in milliseconds", m.histogramBuckets),
		[]string{"endpoint", "method", "status_code"},
	)
	m.errorsByEndpoint = auto.NewCounterVec(
		m.counterOpts("errors_by_endpoint_total", "Errors returned to clients by endpoint"),
		[]string{"endpoint", "method", "error_type"},
	)
	m.errorsByComponent = auto.NewCounterVec(
		m.counterOpts("errors_by_component_total", "Errors by component and type"),
		[]string{"component", "error_type"},
	)

	m.sourceLoads = auto.NewCounterVec(
		m.counterOpts("source_loads_total", "Sales record loads by grouping and result"),
		[]string{"grouping", "result"},
	)
	m.sourceLoadLatency = auto.NewHistogramVec(
		m.histogramOpts("source_load_latency_milliseconds", "Sales record load latency in milliseconds", msBuckets),
		[]string{"grouping"},
	)

	m.aggregationLatency = auto.NewHistogram(
		m.histogramOpts("aggregation_latency_milliseconds", "Aggregation latency in milliseconds", msBuckets),
	)
	m.aggregationRecords = auto.NewCounter(
		m.counterOpts("aggregation_records_total", "Records folded by the aggregation engine"),
	)
	m.aggregationDuplicates = auto.NewCounter(
		m.counterOpts("aggregation_duplicates_total", "Records that repeated a (quarter, category) pair"),
	)

	m.snapshotVersion = auto.NewGaugeVec(
		m.gaugeOpts("snapshot_version", "Version of the published snapshot per grouping"),
		[]string{"grouping"},
	)
	m.snapshotRecords = auto.NewGaugeVec(
		m.gaugeOpts("snapshot_records", "Records in the published snapshot per grouping"),
		[]string{"grouping"},
	)
	m.snapshotLastUnix = auto.NewGaugeVec(
		m.gaugeOpts("snapshot_last_publish_unixtime", "Unix time of the last snapshot publish per grouping"),
		[]string{"grouping"},
	)
	m.refreshes = auto.NewCounterVec(
		m.counterOpts("refresh_total", "Refresh attempts by grouping and outcome (published, unchanged, failed)"),
		[]string{"grouping", "outcome"},
	)

	m.selectorFetches = auto.NewCounterVec(
		m.counterOpts("selector_fetches_total", "Grouping selector fetches by outcome"),
		[]string{"outcome"},
	)
	m.selectorSupersedes = auto.NewCounter(
		m.counterOpts("selector_superseded_total", "Selections discarded because a newer one started"),
	)
	m.selectorFetchLatency = auto.NewHistogram(
		m.histogramOpts("selector_fetch_latency_milliseconds", "Grouping selector fetch latency in milliseconds", msBuckets),
	)

	m.systemMemoryUsage = auto.NewGauge(m.gaugeOpts("system_memory_usage_bytes", "System memory usage in bytes"))
	m.systemGoroutineCount = auto.NewGauge(m.gaugeOpts("system_goroutine_count", "Number of goroutines"))
	m.systemGCPauseTime = auto.NewHistogram(
		m.histogramOpts("system_gc_pause_time_milliseconds", "GC pause time in milliseconds",
			[]float64{0.1, 0.5, 1, 2, 5, 10, 25, 50, 100, 250, 500, 1000}),
	)
}

func on() bool { return globalManager != nil && globalManager.enabled }

// HTTP Metrics Functions.

// RecordHTTPRequest increments the HTTP request counter.
func RecordHTTPRequest(endpoint, method, statusCode string) {
	if on() {
		globalManager.httpRequests.WithLabelValues(endpoint, method, statusCode).Inc()
	}
}

// RecordHTTPRequestDuration records HTTP request duration in milliseconds.
func RecordHTTPRequestDuration(endpoint, method, statusCode string, duration float64) {
	if on() {
		globalManager.httpRequestDuration.WithLabelValues(endpoint, method, statusCode).Observe(duration)
	}
}

// RecordErrorByEndpoint counts an error answered on an endpoint.
func RecordErrorByEndpoint(endpoint, method, errorType string) {
	if on() {
		globalManager.errorsByEndpoint.WithLabelValues(endpoint, method, errorType).Inc()
	}
}

// RecordErrorByComponent counts an error raised inside a component.
func RecordErrorByComponent(component, errorType string) {
	if on() {
		globalManager.errorsByComponent.WithLabelValues(component, errorType).Inc()
	}
}

// Source Metrics Functions.

// RecordSourceLoad counts a load attempt and its latency.
func RecordSourceLoad(grouping, result string, latencyMs float64) {
	if on() {
		globalManager.sourceLoads.WithLabelValues(grouping, result).Inc()
		globalManager.sourceLoadLatency.WithLabelValues(grouping).Observe(latencyMs)
	}
}

// Aggregation Metrics Functions.

// RecordAggregation records one engine run.
func RecordAggregation(records, duplicates int, latencyMs float64) {
	if on() {
		globalManager.aggregationLatency.Observe(latencyMs)
		globalManager.aggregationRecords.Add(float64(records))
		globalManager.aggregationDuplicates.Add(float64(duplicates))
	}
}

// Snapshot Metrics Functions.

// UpdateSnapshot records a published snapshot.
func UpdateSnapshot(grouping string, version uint64, records int, publishedUnix int64) {
	if on() {
		globalManager.snapshotVersion.WithLabelValues(grouping).Set(float64(version))
		globalManager.snapshotRecords.WithLabelValues(grouping).Set(float64(records))
		globalManager.snapshotLastUnix.WithLabelValues(grouping).Set(float64(publishedUnix))
	}
}

// RecordRefresh counts a refresh outcome: published, unchanged or failed.
func RecordRefresh(grouping, outcome string) {
	if on() {
		globalManager.refreshes.WithLabelValues(grouping, outcome).Inc()
	}
}

// Selector Metrics Functions.

// RecordSelectorFetch counts a selector fetch by outcome and its latency.
func RecordSelectorFetch(outcome string, latencyMs float64) {
	if on() {
		globalManager.selectorFetches.WithLabelValues(outcome).Inc()
		globalManager.selectorFetchLatency.Observe(latencyMs)
	}
}

// RecordSelectorSuperseded counts a discarded stale selection.
func RecordSelectorSuperseded() {
	if on() {
		globalManager.selectorSupersedes.Inc()
	}
}

// System Performance Metrics Functions.

// UpdateSystemMemoryUsage sets the system memory usage in bytes.
func UpdateSystemMemoryUsage(bytes uint64) {
	if on() {
		globalManager.systemMemoryUsage.Set(float64(bytes))
	}
}

// UpdateSystemGoroutineCount sets the number of goroutines.
func UpdateSystemGoroutineCount(count int) {
	if on() {
		globalManager.systemGoroutineCount.Set(float64(count))
	}
}

// RecordSystemGCPauseTime records GC pause time in milliseconds.
func RecordSystemGCPauseTime(pauseMs float64) {
	if on() {
		globalManager.systemGCPauseTime.Observe(pauseMs)
	}
}

// GetRegistry returns the custom Prometheus registry used by our metrics.
func GetRegistry() *prometheus.Registry {
	return customRegistry
}

// SetEnabled toggles recording on the global manager.
func SetEnabled(enabled bool) {
	if globalManager != nil {
		globalManager.enabled = enabled
	}
}
