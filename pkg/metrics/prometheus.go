// Package metrics provides Prometheus metrics for the momentum service.
package metrics

import (
	"fmt"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Default metrics configuration constants.
const (
	defaultRefreshInterval = 10 * time.Second
)

// Manager manages all Prometheus metrics for the momentum service.
type Manager struct {
	namespace        string
	subsystem        string
	histogramBuckets []float64
	enabled          bool
	refreshInterval  time.Duration
	customLabels     map[string]string
	metricPrefix     string
	registry         prometheus.Registerer

	// Engine metrics
	eventsProcessed  *prometheus.CounterVec
	eventsDuplicate  prometheus.Counter
	eventsRejected   *prometheus.CounterVec
	eventLatency     prometheus.Histogram
	momentumShifts   *prometheus.CounterVec
	patternsDetected *prometheus.CounterVec
	momentumGoals    prometheus.Counter
	analysisLatency  *prometheus.HistogramVec

	// Match registry metrics
	activeMatches  prometheus.Gauge
	matchesCreated prometheus.Counter
	matchesDeleted prometheus.Counter

	// Stream publisher metrics
	publishedMessages *prometheus.CounterVec
	publishErrors     *prometheus.CounterVec

	// HTTP metrics
	httpRequests        *prometheus.CounterVec
	httpRequestDuration *prometheus.HistogramVec

	// Queue metrics
	queueSize              prometheus.Gauge
	queueCapacity          prometheus.Gauge
	queueUtilization       prometheus.Gauge
	queueEnqueueRate       prometheus.Counter
	queueDequeueRate       prometheus.Counter
	queueEnqueueErrors     prometheus.Counter
	queueProcessingLatency prometheus.Histogram

	// Worker metrics
	workerActiveCount       prometheus.Gauge
	workerMessagesPerSecond prometheus.Gauge
	workerProcessingLatency prometheus.Histogram
	workerErrorRate         prometheus.Counter

	// Error metrics
	errorRateByComponent *prometheus.CounterVec
	errorRateByType      *prometheus.CounterVec
	errorRateByEndpoint  *prometheus.CounterVec

	// System metrics
	systemMemoryUsage    prometheus.Gauge
	systemGoroutineCount prometheus.Gauge
}

// Global metrics manager instance.
var globalManager *Manager //nolint:gochecknoglobals // intentional global for singleton metrics manager

// Custom registry to avoid default Go metrics.
var customRegistry = prometheus.NewRegistry() //nolint:gochecknoglobals // intentional global for metrics registry

// Initialize global metrics.
func init() { //nolint:gochecknoinits // intentional init for global metrics setup
	globalManager = NewManager(WithPrometheusRegistry(customRegistry))
}

// NewManager creates a new metrics manager with default configuration.
func NewManager(opts ...Option) *Manager {
	m := &Manager{
		namespace:        "momentum",
		subsystem:        "engine",
		histogramBuckets: prometheus.DefBuckets,
		enabled:          true,
		refreshInterval:  defaultRefreshInterval,
		customLabels:     make(map[string]string),
		registry:         prometheus.DefaultRegisterer,
	}

	for _, opt := range opts {
		opt(m)
	}

	m.initializeMetrics()
	return m
}

func (m *Manager) name(n string) string {
	if m.metricPrefix == "" {
		return n
	}
	return m.metricPrefix + "_" + n
}

func (m *Manager) counterOpts(name, help string) prometheus.CounterOpts {
	return prometheus.CounterOpts{
		Namespace:   m.namespace,
		Subsystem:   m.subsystem,
		Name:        m.name(name),
		Help:        help,
		ConstLabels: m.customLabels,
	}
}

func (m *Manager) gaugeOpts(name, help string) prometheus.GaugeOpts {
	return prometheus.GaugeOpts{
		Namespace:   m.namespace,
		Subsystem:   m.subsystem,
		Name:        m.name(name),
		Help:        help,
		ConstLabels: m.customLabels,
	}
}

func (m *Manager) histogramOpts(name, help string) prometheus.HistogramOpts {
	return prometheus.HistogramOpts{
		Namespace:   m.namespace,
		Subsystem:   m.subsystem,
		Name:        m.name(name),
		Help:        help,
		Buckets:     m.histogramBuckets,
		ConstLabels: m.customLabels,
	}
}

// initializeMetrics creates all the Prometheus metrics.
func (m *Manager) initializeMetrics() { //nolint:funlen // one statement per metric
	auto := promauto.With(m.registry)

	m.eventsProcessed = auto.NewCounterVec(m.counterOpts("events_processed_total",
		"Total number of match events applied to an engine"), []string{"event_type"})
	m.eventsDuplicate = auto.NewCounter(m.counterOpts("events_duplicate_total",
		"Total number of duplicate events dropped by the deduper"))
	m.eventsRejected = auto.NewCounterVec(m.counterOpts("events_rejected_total",
		"Total number of events rejected before reaching an engine"), []string{"reason"})
	m.eventLatency = auto.NewHistogram(m.histogramOpts("event_processing_latency_milliseconds",
		"Time spent applying one event to a match engine"))
	m.momentumShifts = auto.NewCounterVec(m.counterOpts("momentum_shifts_total",
		"Total number of detected momentum shifts"), []string{"type"})
	m.patternsDetected = auto.NewCounterVec(m.counterOpts("patterns_detected_total",
		"Total number of detected momentum patterns"), []string{"pattern"})
	m.momentumGoals = auto.NewCounter(m.counterOpts("momentum_goals_total",
		"Goals scored by a side already in strong momentum"))
	m.analysisLatency = auto.NewHistogramVec(m.histogramOpts("analysis_latency_milliseconds",
		"Latency of read-side analysis operations"), []string{"operation"})

	m.activeMatches = auto.NewGauge(m.gaugeOpts("active_matches",
		"Number of matches currently tracked"))
	m.matchesCreated = auto.NewCounter(m.counterOpts("matches_created_total",
		"Total number of matches created"))
	m.matchesDeleted = auto.NewCounter(m.counterOpts("matches_deleted_total",
		"Total number of matches deleted"))

	m.publishedMessages = auto.NewCounterVec(m.counterOpts("stream_messages_total",
		"Total number of messages published to streams"), []string{"kind"})
	m.publishErrors = auto.NewCounterVec(m.counterOpts("stream_publish_errors_total",
		"Total number of failed stream publishes"), []string{"kind"})

	m.httpRequests = auto.NewCounterVec(m.counterOpts("http_requests_total",
		"Total number of HTTP requests by endpoint and method"), []string{"endpoint", "method", "status_code"})
	m.httpRequestDuration = auto.NewHistogramVec(m.histogramOpts("http_request_duration_milliseconds",
		"HTTP request duration in milliseconds"), []string{"endpoint", "method", "status_code"})

	m.queueSize = auto.NewGauge(m.gaugeOpts("queue_size",
		"Current size of the event queue (backlog indicator)"))
	m.queueCapacity = auto.NewGauge(m.gaugeOpts("queue_capacity",
		"Maximum queue capacity"))
	m.queueUtilization = auto.NewGauge(m.gaugeOpts("queue_utilization_ratio",
		"Queue utilization ratio (current size / capacity)"))
	m.queueEnqueueRate = auto.NewCounter(m.counterOpts("queue_enqueue_total",
		"Total number of messages enqueued"))
	m.queueDequeueRate = auto.NewCounter(m.counterOpts("queue_dequeue_total",
		"Total number of messages dequeued"))
	m.queueEnqueueErrors = auto.NewCounter(m.counterOpts("queue_enqueue_errors_total",
		"Total number of enqueue errors"))
	m.queueProcessingLatency = auto.NewHistogram(m.histogramOpts("queue_processing_latency_milliseconds",
		"Queue processing latency in milliseconds"))

	m.workerActiveCount = auto.NewGauge(m.gaugeOpts("worker_active_count",
		"Number of active workers"))
	m.workerMessagesPerSecond = auto.NewGauge(m.gaugeOpts("worker_messages_per_second",
		"Average messages processed per second by workers"))
	m.workerProcessingLatency = auto.NewHistogram(m.histogramOpts("worker_processing_latency_milliseconds",
		"Worker processing latency in milliseconds"))
	m.workerErrorRate = auto.NewCounter(m.counterOpts("worker_errors_total",
		"Total number of worker errors"))

	m.errorRateByComponent = auto.NewCounterVec(m.counterOpts("errors_by_component_total",
		"Total number of errors by component"), []string{"component", "error_type"})
	m.errorRateByType = auto.NewCounterVec(m.counterOpts("errors_by_type_total",
		"Total number of errors by type"), []string{"error_type", "severity"})
	m.errorRateByEndpoint = auto.NewCounterVec(m.counterOpts("errors_by_endpoint_total",
		"Total number of errors by endpoint"), []string{"endpoint", "method", "error_type"})

	m.systemMemoryUsage = auto.NewGauge(m.gaugeOpts("system_memory_usage_bytes",
		"Heap memory in use"))
	m.systemGoroutineCount = auto.NewGauge(m.gaugeOpts("system_goroutine_count",
		"Number of goroutines"))
}

// Engine Metrics Functions.

// RecordEventProcessed increments the processed counter for an event type.
func RecordEventProcessed(eventType string) {
	globalManager.eventsProcessed.WithLabelValues(eventType).Inc()
}

// RecordEventDuplicate increments the duplicate event counter.
func RecordEventDuplicate() {
	globalManager.eventsDuplicate.Inc()
}

// RecordEventRejected increments the rejected counter for a reason.
func RecordEventRejected(reason string) {
	globalManager.eventsRejected.WithLabelValues(reason).Inc()
}

// RecordEventLatency records the time spent applying one event.
func RecordEventLatency(latencyMs float64) {
	globalManager.eventLatency.Observe(latencyMs)
}

// RecordMomentumShift increments the shift counter for a shift type.
func RecordMomentumShift(kind string) {
	globalManager.momentumShifts.WithLabelValues(kind).Inc()
}

// RecordPatternDetected increments the pattern counter.
func RecordPatternDetected(pattern string) {
	globalManager.patternsDetected.WithLabelValues(pattern).Inc()
}

// RecordMomentumGoal increments the momentum goal counter.
func RecordMomentumGoal() {
	globalManager.momentumGoals.Inc()
}

// RecordAnalysisLatency records the latency of a read-side operation.
func RecordAnalysisLatency(operation string, latencyMs float64) {
	globalManager.analysisLatency.WithLabelValues(operation).Observe(latencyMs)
}

// Match Registry Functions.

// UpdateActiveMatches sets the number of tracked matches.
func UpdateActiveMatches(count int) {
	globalManager.activeMatches.Set(float64(count))
}

// RecordMatchCreated increments the created matches counter.
func RecordMatchCreated() {
	globalManager.matchesCreated.Inc()
}

// RecordMatchDeleted increments the deleted matches counter.
func RecordMatchDeleted() {
	globalManager.matchesDeleted.Inc()
}

// Stream Publisher Functions.

// RecordStreamPublished increments the published counter for a message kind.
func RecordStreamPublished(kind string) {
	globalManager.publishedMessages.WithLabelValues(kind).Inc()
}

// RecordStreamPublishError increments the publish error counter for a message kind.
func RecordStreamPublishError(kind string) {
	globalManager.publishErrors.WithLabelValues(kind).Inc()
}

// HTTP Metrics Functions.

// RecordHTTPRequest increments the request counter.
func RecordHTTPRequest(endpoint, method, statusCode string) {
	globalManager.httpRequests.WithLabelValues(endpoint, method, statusCode).Inc()
}

// RecordHTTPRequestDuration records the request duration in milliseconds.
func RecordHTTPRequestDuration(endpoint, method, statusCode string, duration float64) {
	globalManager.httpRequestDuration.WithLabelValues(endpoint, method, statusCode).Observe(duration)
}

// Queue Metrics Functions.

// UpdateQueueSize sets the current queue size.
func UpdateQueueSize(size int) {
	globalManager.queueSize.Set(float64(size))
}

// UpdateQueueCapacity sets the queue capacity.
func UpdateQueueCapacity(capacity int) {
	globalManager.queueCapacity.Set(float64(capacity))
}

// UpdateQueueUtilization sets the queue utilization ratio.
func UpdateQueueUtilization(utilization float64) {
	globalManager.queueUtilization.Set(utilization)
}

// RecordQueueEnqueue increments the enqueue counter.
func RecordQueueEnqueue() {
	globalManager.queueEnqueueRate.Inc()
}

// RecordQueueDequeue increments the dequeue counter.
func RecordQueueDequeue() {
	globalManager.queueDequeueRate.Inc()
}

// RecordQueueEnqueueError increments the enqueue error counter.
func RecordQueueEnqueueError() {
	globalManager.queueEnqueueErrors.Inc()
}

// RecordQueueProcessingLatency records queue processing latency.
func RecordQueueProcessingLatency(latencyMs float64) {
	globalManager.queueProcessingLatency.Observe(latencyMs)
}

// Worker Metrics Functions.

// UpdateWorkerActiveCount sets the number of active workers.
func UpdateWorkerActiveCount(count int) {
	globalManager.workerActiveCount.Set(float64(count))
}

// UpdateWorkerMessagesPerSecond sets the average messages processed per second.
func UpdateWorkerMessagesPerSecond(rate float64) {
	globalManager.workerMessagesPerSecond.Set(rate)
}

// RecordWorkerProcessingLatency records worker processing latency.
func RecordWorkerProcessingLatency(latencyMs float64) {
	globalManager.workerProcessingLatency.Observe(latencyMs)
}

// RecordWorkerError increments the worker error counter.
func RecordWorkerError() {
	globalManager.workerErrorRate.Inc()
}

// Error Metrics Functions.

// RecordErrorByComponent records an error with component and type labels.
func RecordErrorByComponent(component, errorType string) {
	globalManager.errorRateByComponent.WithLabelValues(component, errorType).Inc()
}

// RecordErrorByType records an error with type and severity labels.
func RecordErrorByType(errorType, severity string) {
	globalManager.errorRateByType.WithLabelValues(errorType, severity).Inc()
}

// RecordErrorByEndpoint records an error with endpoint, method, and error type labels.
func RecordErrorByEndpoint(endpoint, method, errorType string) {
	globalManager.errorRateByEndpoint.WithLabelValues(endpoint, method, errorType).Inc()
}

// System Metrics Functions.

// UpdateSystemMemoryUsage sets the memory usage in bytes.
func UpdateSystemMemoryUsage(bytes uint64) {
	globalManager.systemMemoryUsage.Set(float64(bytes))
}

// UpdateSystemGoroutineCount sets the number of goroutines.
func UpdateSystemGoroutineCount(count int) {
	globalManager.systemGoroutineCount.Set(float64(count))
}

// GetRegistry returns the custom Prometheus registry used by our metrics.
func GetRegistry() *prometheus.Registry {
	return customRegistry
}

// CounterTotal sums every series of the named counter family in the global
// registry. name is the short name, e.g. "events_processed_total".
func CounterTotal(name string) (float64, error) {
	families, err := customRegistry.Gather()
	if err != nil {
		return 0, fmt.Errorf("%w: %w", ErrObserveFailed, err)
	}
	full := prometheus.BuildFQName(globalManager.namespace, globalManager.subsystem, globalManager.name(name))
	var total float64
	for _, f := range families {
		if f.GetName() != full {
			continue
		}
		for _, metric := range f.GetMetric() {
			total += metric.GetCounter().GetValue()
		}
	}
	return total, nil
}
