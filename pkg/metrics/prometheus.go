// Package metrics provides Prometheus metrics for the guardian engine.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Manager owns every Prometheus metric family for the service.
type Manager struct {
	namespace        string
	subsystem        string
	histogramBuckets []float64
	registry         prometheus.Registerer

	// Proposal metrics
	proposalsGenerated prometheus.Counter
	partialProposals   prometheus.Counter
	searchTimeouts     prometheus.Counter
	searchRestarts     prometheus.Counter
	searchDuration     prometheus.Histogram
	candidatePoolSize  prometheus.Histogram
	risksFlagged       *prometheus.CounterVec

	// Competency recompute metrics
	recomputesCompleted prometheus.Counter
	recomputesSkipped   prometheus.Counter
	recomputeErrors     prometheus.Counter
	recomputeLatency    prometheus.Histogram

	// Graph store metrics
	graphQueryLatency prometheus.Histogram
	graphWriteLatency prometheus.Histogram
	graphRetries      prometheus.Counter
	graphErrors       prometheus.Counter

	// Recompute queue metrics
	queueSize          prometheus.Gauge
	queueCapacity      prometheus.Gauge
	queueUtilization   prometheus.Gauge
	queueEnqueues      prometheus.Counter
	queueDequeues      prometheus.Counter
	queueEnqueueErrors prometheus.Counter

	// Worker metrics
	workerCount             prometheus.Gauge
	workerProcessingLatency prometheus.Histogram
	workerErrors            prometheus.Counter

	// HTTP metrics
	httpRequests        *prometheus.CounterVec
	httpRequestDuration *prometheus.HistogramVec
	errorsByComponent   *prometheus.CounterVec
}

// Global metrics manager instance.
var globalManager *Manager //nolint:gochecknoglobals // singleton metrics manager

// Custom registry to avoid the default Go collector noise.
var customRegistry = prometheus.NewRegistry() //nolint:gochecknoglobals // singleton registry

func init() { //nolint:gochecknoinits // global metrics setup
	globalManager = NewManager(WithPrometheusRegistry(customRegistry))
}

// NewManager creates a metrics manager with default configuration.
func NewManager(opts ...Option) *Manager {
	m := &Manager{
		namespace:        "guardian",
		subsystem:        "engine",
		histogramBuckets: prometheus.DefBuckets,
		registry:         prometheus.DefaultRegisterer,
	}

	for _, opt := range opts {
		opt(m)
	}

	m.initializeMetrics()
	return m
}

func (m *Manager) initializeMetrics() { //nolint:funlen // metric family registration
	auto := promauto.With(m.registry)

	m.proposalsGenerated = auto.NewCounter(prometheus.CounterOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "proposals_generated_total",
		Help:      "Total number of team proposals returned to callers",
	})

	m.partialProposals = auto.NewCounter(prometheus.CounterOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "proposals_partial_total",
		Help:      "Total number of under-constrained (partial) proposals returned",
	})

	m.searchTimeouts = auto.NewCounter(prometheus.CounterOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "search_timeouts_total",
		Help:      "Total number of searches that hit the global time budget",
	})

	m.searchRestarts = auto.NewCounter(prometheus.CounterOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "search_restarts_total",
		Help:      "Total number of random-restart constructions executed",
	})

	m.searchDuration = auto.NewHistogram(prometheus.HistogramOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "search_duration_milliseconds",
		Help:      "Histogram of end-to-end team search duration in milliseconds",
		Buckets:   m.histogramBuckets,
	})

	m.candidatePoolSize = auto.NewHistogram(prometheus.HistogramOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "candidate_pool_size",
		Help:      "Histogram of qualifying candidate pool sizes per request",
		Buckets:   []float64{1, 2, 5, 10, 25, 50, 100, 250, 500},
	})

	m.risksFlagged = auto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: m.namespace,
			Subsystem: m.subsystem,
			Name:      "risks_flagged_total",
			Help:      "Total number of risk findings by type",
		},
		[]string{"type", "severity"},
	)

	m.recomputesCompleted = auto.NewCounter(prometheus.CounterOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "recomputes_completed_total",
		Help:      "Total number of competency recomputes written back to the graph",
	})

	m.recomputesSkipped = auto.NewCounter(prometheus.CounterOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "recomputes_skipped_total",
		Help:      "Total number of recompute tasks dropped because the pair was already inflight",
	})

	m.recomputeErrors = auto.NewCounter(prometheus.CounterOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "recompute_errors_total",
		Help:      "Total number of failed competency recomputes",
	})

	m.recomputeLatency = auto.NewHistogram(prometheus.HistogramOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "recompute_latency_milliseconds",
		Help:      "Histogram of per-pair recompute latency in milliseconds",
		Buckets:   m.histogramBuckets,
	})

	m.graphQueryLatency = auto.NewHistogram(prometheus.HistogramOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "graph_query_latency_milliseconds",
		Help:      "Histogram of graph store read latency in milliseconds",
		Buckets:   m.histogramBuckets,
	})

	m.graphWriteLatency = auto.NewHistogram(prometheus.HistogramOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "graph_write_latency_milliseconds",
		Help:      "Histogram of graph store write latency in milliseconds",
		Buckets:   m.histogramBuckets,
	})

	m.graphRetries = auto.NewCounter(prometheus.CounterOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "graph_retries_total",
		Help:      "Total number of retried graph store operations",
	})

	m.graphErrors = auto.NewCounter(prometheus.CounterOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "graph_errors_total",
		Help:      "Total number of graph store operations that exhausted retries",
	})

	m.queueSize = auto.NewGauge(prometheus.GaugeOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "recompute_queue_size",
		Help:      "Current depth of the recompute task queue",
	})

	m.queueCapacity = auto.NewGauge(prometheus.GaugeOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "recompute_queue_capacity",
		Help:      "Configured capacity of the recompute task queue",
	})

	m.queueUtilization = auto.NewGauge(prometheus.GaugeOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "recompute_queue_utilization",
		Help:      "Recompute queue depth as a fraction of capacity",
	})

	m.queueEnqueues = auto.NewCounter(prometheus.CounterOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "recompute_queue_enqueues_total",
		Help:      "Total number of recompute tasks accepted by the queue",
	})

	m.queueDequeues = auto.NewCounter(prometheus.CounterOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "recompute_queue_dequeues_total",
		Help:      "Total number of recompute tasks handed to workers",
	})

	m.queueEnqueueErrors = auto.NewCounter(prometheus.CounterOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "recompute_queue_enqueue_errors_total",
		Help:      "Total number of rejected enqueues (closed or full queue)",
	})

	m.workerCount = auto.NewGauge(prometheus.GaugeOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "worker_count",
		Help:      "Current number of recompute workers",
	})

	m.workerProcessingLatency = auto.NewHistogram(prometheus.HistogramOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "worker_processing_latency_milliseconds",
		Help:      "Histogram of worker task processing latency in milliseconds",
		Buckets:   m.histogramBuckets,
	})

	m.workerErrors = auto.NewCounter(prometheus.CounterOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "worker_errors_total",
		Help:      "Total number of worker task failures",
	})

	m.httpRequests = auto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: m.namespace,
			Subsystem: m.subsystem,
			Name:      "http_requests_total",
			Help:      "Total number of HTTP requests by endpoint, method and status",
		},
		[]string{"endpoint", "method", "status_code"},
	)

	m.httpRequestDuration = auto.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: m.namespace,
			Subsystem: m.subsystem,
			Name:      "http_request_duration_milliseconds",
			Help:      "HTTP request duration in milliseconds",
			Buckets:   m.histogramBuckets,
		},
		[]string{"endpoint", "method", "status_code"},
	)

	m.errorsByComponent = auto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: m.namespace,
			Subsystem: m.subsystem,
			Name:      "errors_by_component_total",
			Help:      "Total number of errors by component and kind",
		},
		[]string{"component", "kind"},
	)
}

// RecordProposalGenerated increments the proposals counter.
func RecordProposalGenerated() {
	globalManager.proposalsGenerated.Inc()
}

// RecordPartialProposal increments the under-constrained proposal counter.
func RecordPartialProposal() {
	globalManager.partialProposals.Inc()
}

// RecordSearchTimeout increments the search timeout counter.
func RecordSearchTimeout() {
	globalManager.searchTimeouts.Inc()
}

// RecordSearchRestart increments the restart counter.
func RecordSearchRestart() {
	globalManager.searchRestarts.Inc()
}

// RecordSearchDuration records end-to-end search duration in milliseconds.
func RecordSearchDuration(latencyMs float64) {
	globalManager.searchDuration.Observe(latencyMs)
}

// RecordCandidatePoolSize records the qualifying pool size for a request.
func RecordCandidatePoolSize(size int) {
	globalManager.candidatePoolSize.Observe(float64(size))
}

// RecordRiskFlagged increments the risk counter for a finding.
func RecordRiskFlagged(riskType, severity string) {
	globalManager.risksFlagged.WithLabelValues(riskType, severity).Inc()
}

// RecordRecomputeCompleted increments the completed recompute counter.
func RecordRecomputeCompleted() {
	globalManager.recomputesCompleted.Inc()
}

// RecordRecomputeSkipped increments the skipped (already inflight) counter.
func RecordRecomputeSkipped() {
	globalManager.recomputesSkipped.Inc()
}

// RecordRecomputeError increments the recompute error counter.
func RecordRecomputeError() {
	globalManager.recomputeErrors.Inc()
}

// RecordRecomputeLatency records per-pair recompute latency in milliseconds.
func RecordRecomputeLatency(latencyMs float64) {
	globalManager.recomputeLatency.Observe(latencyMs)
}

// RecordGraphQueryLatency records graph read latency in milliseconds.
func RecordGraphQueryLatency(latencyMs float64) {
	globalManager.graphQueryLatency.Observe(latencyMs)
}

// RecordGraphWriteLatency records graph write latency in milliseconds.
func RecordGraphWriteLatency(latencyMs float64) {
	globalManager.graphWriteLatency.Observe(latencyMs)
}

// RecordGraphRetry increments the retried-operation counter.
func RecordGraphRetry() {
	globalManager.graphRetries.Inc()
}

// RecordGraphError increments the exhausted-retries counter.
func RecordGraphError() {
	globalManager.graphErrors.Inc()
}

// UpdateQueueSize sets the current recompute queue depth.
func UpdateQueueSize(size int) {
	globalManager.queueSize.Set(float64(size))
}

// UpdateQueueCapacity sets the configured queue capacity.
func UpdateQueueCapacity(capacity int) {
	globalManager.queueCapacity.Set(float64(capacity))
}

// UpdateQueueUtilization sets queue depth as a fraction of capacity.
func UpdateQueueUtilization(utilization float64) {
	globalManager.queueUtilization.Set(utilization)
}

// RecordQueueEnqueue increments the accepted-enqueue counter.
func RecordQueueEnqueue() {
	globalManager.queueEnqueues.Inc()
}

// RecordQueueDequeue increments the dequeue counter.
func RecordQueueDequeue() {
	globalManager.queueDequeues.Inc()
}

// RecordQueueEnqueueError increments the rejected-enqueue counter.
func RecordQueueEnqueueError() {
	globalManager.queueEnqueueErrors.Inc()
}

// UpdateWorkerCount sets the current worker count.
func UpdateWorkerCount(count int) {
	globalManager.workerCount.Set(float64(count))
}

// RecordWorkerProcessingLatency records worker task latency in milliseconds.
func RecordWorkerProcessingLatency(latencyMs float64) {
	globalManager.workerProcessingLatency.Observe(latencyMs)
}

// RecordWorkerError increments the worker error counter.
func RecordWorkerError() {
	globalManager.workerErrors.Inc()
}

// RecordHTTPRequest records an HTTP request.
func RecordHTTPRequest(endpoint, method, statusCode string) {
	globalManager.httpRequests.WithLabelValues(endpoint, method, statusCode).Inc()
}

// RecordHTTPRequestDuration records HTTP request duration in milliseconds.
func RecordHTTPRequestDuration(endpoint, method, statusCode string, duration float64) {
	globalManager.httpRequestDuration.WithLabelValues(endpoint, method, statusCode).Observe(duration)
}

// RecordErrorByComponent increments the per-component error counter.
func RecordErrorByComponent(component, kind string) {
	globalManager.errorsByComponent.WithLabelValues(component, kind).Inc()
}

// GetRegistry returns the custom registry for exposition handlers.
func GetRegistry() *prometheus.Registry {
	return customRegistry
}
