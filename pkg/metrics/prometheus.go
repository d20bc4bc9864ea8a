// Package metrics provides Prometheus metrics for the hackmatch service.
package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Default metrics configuration constants.
const (
	defaultRefreshInterval = 10 * time.Second
)

// Manager manages all Prometheus metrics for the hackmatch service.
type Manager struct {
	namespace        string
	subsystem        string
	histogramBuckets []float64
	enabled          bool
	refreshInterval  time.Duration
	customLabels     map[string]string
	metricPrefix     string
	registry         prometheus.Registerer

	// Matching
	registrations      *prometheus.CounterVec
	suggestionsServed  *prometheus.CounterVec
	suggestionResults  *prometheus.HistogramVec
	suggestionLatency  *prometheus.HistogramVec
	matchNotifications prometheus.Counter

	// Roster
	rosterOperations *prometheus.CounterVec
	teamsTotal       prometheus.Gauge
	participants     prometheus.Gauge

	// Notifications
	notificationsEnqueued  prometheus.Counter
	notificationsDropped   prometheus.Counter
	notificationsDelivered *prometheus.CounterVec
	notificationsFailed    *prometheus.CounterVec
	remindersSent          prometheus.Counter
	remindersDuplicate     prometheus.Counter

	// HTTP
	httpRequests        *prometheus.CounterVec
	httpRequestDuration *prometheus.HistogramVec

	// Queue
	queueSize              prometheus.Gauge
	queueCapacity          prometheus.Gauge
	queueUtilization       prometheus.Gauge
	queueEnqueueRate       prometheus.Counter
	queueDequeueRate       prometheus.Counter
	queueEnqueueErrors     prometheus.Counter
	queueProcessingLatency prometheus.Histogram

	// Worker
	workerActiveCount       prometheus.Gauge
	workerProcessingLatency prometheus.Histogram
	workerErrorRate         prometheus.Counter

	// Errors
	errorRateByComponent *prometheus.CounterVec
	errorRateByType      *prometheus.CounterVec
	errorRateByEndpoint  *prometheus.CounterVec

	// System
	systemMemoryUsage    prometheus.Gauge
	systemGoroutineCount prometheus.Gauge
}

// Global metrics manager instance.
var globalManager *Manager //nolint:gochecknoglobals // intentional global for singleton metrics manager

// Custom registry to avoid default Go metrics.
var customRegistry = prometheus.NewRegistry() //nolint:gochecknoglobals // intentional global for metrics registry

func init() { //nolint:gochecknoinits // intentional init for global metrics setup
	globalManager = NewManager(WithPrometheusRegistry(customRegistry))
}

// NewManager creates a new metrics manager with default configuration.
func NewManager(opts ...Option) *Manager {
	m := &Manager{
		namespace:        "hackmatch",
		subsystem:        "core",
		histogramBuckets: prometheus.DefBuckets,
		enabled:          true,
		refreshInterval:  defaultRefreshInterval,
		customLabels:     make(map[string]string),
		metricPrefix:     "",
		registry:         prometheus.DefaultRegisterer,
	}

	for _, opt := range opts {
		opt(m)
	}

	m.initializeMetrics()

	return m
}

// RefreshInterval reports how often gauges should be refreshed by pollers.
func (m *Manager) RefreshInterval() time.Duration {
	return m.refreshInterval
}

// Enabled reports whether recorders write to the collectors.
func (m *Manager) Enabled() bool {
	return m.enabled
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

func (m *Manager) histogramOpts(name, help string, buckets []float64) prometheus.HistogramOpts {
	if buckets == nil {
		buckets = m.histogramBuckets
	}
	return prometheus.HistogramOpts{
		Namespace:   m.namespace,
		Subsystem:   m.subsystem,
		Name:        m.name(name),
		Help:        help,
		Buckets:     buckets,
		ConstLabels: m.customLabels,
	}
}

// initializeMetrics creates all the Prometheus metrics.
func (m *Manager) initializeMetrics() { //nolint:funlen // long function required for comprehensive metrics initialization
	auto := promauto.With(m.registry)

	m.registrations = auto.NewCounterVec(
		m.counterOpts("registrations_total", "Hackathon registration attempts by result"),
		[]string{"result"},
	)
	m.suggestionsServed = auto.NewCounterVec(
		m.counterOpts("suggestions_served_total", "Suggestion requests served by kind"),
		[]string{"kind"},
	)
	m.suggestionResults = auto.NewHistogramVec(
		m.histogramOpts("suggestion_results", "Number of results returned per suggestion request",
			[]float64{0, 1, 2, 5, 10, 25, 50, 100}),
		[]string{"kind"},
	)
	m.suggestionLatency = auto.NewHistogramVec(
		m.histogramOpts("suggestion_latency_milliseconds", "Suggestion computation latency in milliseconds", nil),
		[]string{"kind"},
	)
	m.matchNotifications = auto.NewCounter(
		m.counterOpts("match_notifications_total", "Potential-match notifications produced on registration"),
	)

	m.rosterOperations = auto.NewCounterVec(
		m.counterOpts("roster_operations_total", "Team roster operations by operation and result"),
		[]string{"operation", "result"},
	)
	m.teamsTotal = auto.NewGauge(m.gaugeOpts("teams_total", "Number of teams tracked"))
	m.participants = auto.NewGauge(m.gaugeOpts("participants_total", "Number of participant profiles tracked"))

	m.notificationsEnqueued = auto.NewCounter(
		m.counterOpts("notifications_enqueued_total", "Notification intents accepted for delivery"),
	)
	m.notificationsDropped = auto.NewCounter(
		m.counterOpts("notifications_dropped_total", "Notification intents dropped on backpressure"),
	)
	m.notificationsDelivered = auto.NewCounterVec(
		m.counterOpts("notifications_delivered_total", "Notification intents delivered by sink"),
		[]string{"sink"},
	)
	m.notificationsFailed = auto.NewCounterVec(
		m.counterOpts("notifications_failed_total", "Notification delivery failures by sink"),
		[]string{"sink"},
	)
	m.remindersSent = auto.NewCounter(
		m.counterOpts("deadline_reminders_total", "Deadline reminders emitted"),
	)
	m.remindersDuplicate = auto.NewCounter(
		m.counterOpts("deadline_reminders_duplicate_total", "Deadline reminders skipped as already sent"),
	)

	m.httpRequests = auto.NewCounterVec(
		m.counterOpts("http_requests_total", "Total number of HTTP requests by endpoint and method"),
		[]string{"endpoint", "method", "status_code"},
	)
	m.httpRequestDuration = auto.NewHistogramVec(
		m.histogramOpts("http_request_duration_milliseconds", "HTTP request duration in milliseconds", nil),
		[]string{"endpoint", "method", "status_code"},
	)

	m.queueSize = auto.NewGauge(m.gaugeOpts("queue_size", "Current size of the notification queue"))
	m.queueCapacity = auto.NewGauge(m.gaugeOpts("queue_capacity", "Maximum capacity of the notification queue"))
	m.queueUtilization = auto.NewGauge(m.gaugeOpts("queue_utilization_ratio", "Notification queue utilization (0-1)"))
	m.queueEnqueueRate = auto.NewCounter(m.counterOpts("queue_enqueue_total", "Total number of enqueue operations"))
	m.queueDequeueRate = auto.NewCounter(m.counterOpts("queue_dequeue_total", "Total number of dequeue operations"))
	m.queueEnqueueErrors = auto.NewCounter(m.counterOpts("queue_enqueue_errors_total", "Total number of failed enqueue operations"))
	m.queueProcessingLatency = auto.NewHistogram(
		m.histogramOpts("queue_processing_latency_milliseconds", "Queue enqueue latency in milliseconds", nil),
	)

	m.workerActiveCount = auto.NewGauge(m.gaugeOpts("worker_active_count", "Number of delivery workers"))
	m.workerProcessingLatency = auto.NewHistogram(
		m.histogramOpts("worker_processing_latency_milliseconds", "Per-intent delivery latency in milliseconds", nil),
	)
	m.workerErrorRate = auto.NewCounter(m.counterOpts("worker_errors_total", "Total number of worker errors"))

	m.errorRateByComponent = auto.NewCounterVec(
		m.counterOpts("errors_by_component_total", "Total number of errors by component"),
		[]string{"component", "error_type"},
	)
	m.errorRateByType = auto.NewCounterVec(
		m.counterOpts("errors_by_type_total", "Total number of errors by type"),
		[]string{"error_type", "severity"},
	)
	m.errorRateByEndpoint = auto.NewCounterVec(
		m.counterOpts("errors_by_endpoint_total", "Total number of errors by endpoint"),
		[]string{"endpoint", "method", "error_type"},
	)

	m.systemMemoryUsage = auto.NewGauge(m.gaugeOpts("system_memory_usage_bytes", "System memory usage in bytes"))
	m.systemGoroutineCount = auto.NewGauge(m.gaugeOpts("system_goroutine_count", "Number of goroutines"))
}

func on() bool { return globalManager.enabled }

// Matching.

// RecordRegistration counts a registration attempt; result is "ok" or an error code.
func RecordRegistration(result string) {
	if on() {
		globalManager.registrations.WithLabelValues(result).Inc()
	}
}

// RecordSuggestions records one suggestion request of kind with its result count and latency.
func RecordSuggestions(kind string, results int, latencyMs float64) {
	if !on() {
		return
	}
	globalManager.suggestionsServed.WithLabelValues(kind).Inc()
	globalManager.suggestionResults.WithLabelValues(kind).Observe(float64(results))
	globalManager.suggestionLatency.WithLabelValues(kind).Observe(latencyMs)
}

// RecordMatchNotifications adds n potential-match notifications.
func RecordMatchNotifications(n int) {
	if on() {
		globalManager.matchNotifications.Add(float64(n))
	}
}

// Roster.

// RecordRosterOperation counts a roster operation outcome.
func RecordRosterOperation(operation, result string) {
	if on() {
		globalManager.rosterOperations.WithLabelValues(operation, result).Inc()
	}
}

// UpdateTeamsTotal sets the number of teams.
func UpdateTeamsTotal(count int) {
	if on() {
		globalManager.teamsTotal.Set(float64(count))
	}
}

// UpdateParticipantsTotal sets the number of participants.
func UpdateParticipantsTotal(count int) {
	if on() {
		globalManager.participants.Set(float64(count))
	}
}

// Notifications.

// RecordNotificationEnqueued counts an intent accepted for delivery.
func RecordNotificationEnqueued() {
	if on() {
		globalManager.notificationsEnqueued.Inc()
	}
}

// RecordNotificationDropped counts an intent lost to backpressure.
func RecordNotificationDropped() {
	if on() {
		globalManager.notificationsDropped.Inc()
	}
}

// RecordNotificationDelivered counts a successful delivery to sink.
func RecordNotificationDelivered(sink string) {
	if on() {
		globalManager.notificationsDelivered.WithLabelValues(sink).Inc()
	}
}

// RecordNotificationFailed counts a failed delivery to sink.
func RecordNotificationFailed(sink string) {
	if on() {
		globalManager.notificationsFailed.WithLabelValues(sink).Inc()
	}
}

// RecordReminder counts a reminder; duplicate marks one skipped by idempotency.
func RecordReminder(duplicate bool) {
	if !on() {
		return
	}
	if duplicate {
		globalManager.remindersDuplicate.Inc()
		return
	}
	globalManager.remindersSent.Inc()
}

// HTTP.

// RecordHTTPRequest records an HTTP request.
func RecordHTTPRequest(endpoint, method, statusCode string) {
	if on() {
		globalManager.httpRequests.WithLabelValues(endpoint, method, statusCode).Inc()
	}
}

// RecordHTTPRequestDuration records HTTP request duration.
func RecordHTTPRequestDuration(endpoint, method, statusCode string, duration float64) {
	if on() {
		globalManager.httpRequestDuration.WithLabelValues(endpoint, method, statusCode).Observe(duration)
	}
}

// Queue.

// UpdateQueueSize sets the current queue size.
func UpdateQueueSize(size int) {
	if on() {
		globalManager.queueSize.Set(float64(size))
	}
}

// UpdateQueueCapacity sets the maximum queue capacity.
func UpdateQueueCapacity(capacity int) {
	if on() {
		globalManager.queueCapacity.Set(float64(capacity))
	}
}

// UpdateQueueUtilization sets the queue utilization ratio.
func UpdateQueueUtilization(utilization float64) {
	if on() {
		globalManager.queueUtilization.Set(utilization)
	}
}

// RecordQueueEnqueue increments the enqueue counter.
func RecordQueueEnqueue() {
	if on() {
		globalManager.queueEnqueueRate.Inc()
	}
}

// RecordQueueDequeue increments the dequeue counter.
func RecordQueueDequeue() {
	if on() {
		globalManager.queueDequeueRate.Inc()
	}
}

// RecordQueueEnqueueError increments the enqueue error counter.
func RecordQueueEnqueueError() {
	if on() {
		globalManager.queueEnqueueErrors.Inc()
	}
}

// RecordQueueProcessingLatency records queue processing latency.
func RecordQueueProcessingLatency(latencyMs float64) {
	if on() {
		globalManager.queueProcessingLatency.Observe(latencyMs)
	}
}

// Worker.

// UpdateWorkerActiveCount sets the number of active workers.
func UpdateWorkerActiveCount(count int) {
	if on() {
		globalManager.workerActiveCount.Set(float64(count))
	}
}

// RecordWorkerProcessingLatency records worker processing latency.
func RecordWorkerProcessingLatency(latencyMs float64) {
	if on() {
		globalManager.workerProcessingLatency.Observe(latencyMs)
	}
}

// RecordWorkerError increments the worker error counter.
func RecordWorkerError() {
	if on() {
		globalManager.workerErrorRate.Inc()
	}
}

// Errors.

// RecordErrorByComponent records an error with component and type labels.
func RecordErrorByComponent(component, errorType string) {
	if on() {
		globalManager.errorRateByComponent.WithLabelValues(component, errorType).Inc()
	}
}

// RecordErrorByType records an error with type and severity labels.
func RecordErrorByType(errorType, severity string) {
	if on() {
		globalManager.errorRateByType.WithLabelValues(errorType, severity).Inc()
	}
}

// RecordErrorByEndpoint records an error with endpoint, method, and error type labels.
func RecordErrorByEndpoint(endpoint, method, errorType string) {
	if on() {
		globalManager.errorRateByEndpoint.WithLabelValues(endpoint, method, errorType).Inc()
	}
}

// System.

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

// GetRegistry returns the custom Prometheus registry used by our metrics.
func GetRegistry() *prometheus.Registry {
	return customRegistry
}

// RefreshInterval reports how often the global gauges should be refreshed.
func RefreshInterval() time.Duration {
	return globalManager.RefreshInterval()
}
