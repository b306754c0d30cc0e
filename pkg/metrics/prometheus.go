// Package metrics provides Prometheus metrics for the viva interview
// service.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Manager manages all Prometheus metrics for the service.
type Manager struct {
	namespace        string
	subsystem        string
	histogramBuckets []float64
	registry         prometheus.Registerer

	// Interview Metrics - What really matters for an interview engine
	sessionsStarted    prometheus.Counter
	sessionsCompleted  prometheus.Counter
	answersProcessed   prometheus.Counter
	phaseTransitions   *prometheus.CounterVec
	levelsFinalized    *prometheus.CounterVec
	answerScore        prometheus.Histogram
	activeSessions     prometheus.Gauge

	// Question Generation Metrics
	questionsGenerated  *prometheus.CounterVec
	generationFailures  *prometheus.CounterVec
	distinctRejections  prometheus.Counter
	oracleLatency       prometheus.Histogram
	oracleErrors        prometheus.Counter
	scoringFallbacks    prometheus.Counter

	// HTTP Performance Metrics
	httpRequests        *prometheus.CounterVec
	httpRequestDuration *prometheus.HistogramVec
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
		namespace:        "viva",
		subsystem:        "interview",
		histogramBuckets: prometheus.DefBuckets,
		registry:         prometheus.DefaultRegisterer,
	}

	for _, opt := range opts {
		opt(m)
	}

	m.initializeMetrics()

	return m
}

// initializeMetrics creates all the Prometheus metrics.
func (m *Manager) initializeMetrics() {
	auto := promauto.With(m.registry)

	m.sessionsStarted = auto.NewCounter(prometheus.CounterOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "sessions_started_total",
		Help:      "Total number of interview sessions started",
	})

	m.sessionsCompleted = auto.NewCounter(prometheus.CounterOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "sessions_completed_total",
		Help:      "Total number of sessions that reached the done phase",
	})

	m.answersProcessed = auto.NewCounter(prometheus.CounterOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "answers_processed_total",
		Help:      "Total number of answers scored and committed",
	})

	m.phaseTransitions = auto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: m.namespace,
			Subsystem: m.subsystem,
			Name:      "phase_transitions_total",
			Help:      "Total number of phase transitions by target phase",
		},
		[]string{"to_phase"},
	)

	m.levelsFinalized = auto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: m.namespace,
			Subsystem: m.subsystem,
			Name:      "levels_finalized_total",
			Help:      "Total number of finalized skill levels by level and verdict",
		},
		[]string{"level", "verdict"},
	)

	m.answerScore = auto.NewHistogram(prometheus.HistogramOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "answer_score",
		Help:      "Distribution of answer scores (0-100)",
		Buckets:   []float64{10, 20, 30, 40, 50, 60, 70, 80, 90, 100},
	})

	m.activeSessions = auto.NewGauge(prometheus.GaugeOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "active_sessions",
		Help:      "Current number of live sessions in the registry",
	})

	m.questionsGenerated = auto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: m.namespace,
			Subsystem: m.subsystem,
			Name:      "questions_generated_total",
			Help:      "Total number of questions issued by phase",
		},
		[]string{"phase"},
	)

	m.generationFailures = auto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: m.namespace,
			Subsystem: m.subsystem,
			Name:      "generation_failures_total",
			Help:      "Total number of skill-question generation failures by level",
		},
		[]string{"level"},
	)

	m.distinctRejections = auto.NewCounter(prometheus.CounterOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "distinct_rejections_total",
		Help:      "Total number of candidate questions rejected as too similar",
	})

	m.oracleLatency = auto.NewHistogram(prometheus.HistogramOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "oracle_latency_milliseconds",
		Help:      "Histogram of oracle generation latency in milliseconds",
		Buckets:   m.histogramBuckets,
	})

	m.oracleErrors = auto.NewCounter(prometheus.CounterOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "oracle_errors_total",
		Help:      "Total number of failed oracle calls",
	})

	m.scoringFallbacks = auto.NewCounter(prometheus.CounterOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "scoring_fallbacks_total",
		Help:      "Total number of answers scored by the lexical fallback",
	})

	m.httpRequests = auto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: m.namespace,
			Subsystem: m.subsystem,
			Name:      "http_requests_total",
			Help:      "Total number of HTTP requests by endpoint and method",
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
}

// RecordSessionStarted increments the sessions started counter.
func RecordSessionStarted() {
	globalManager.sessionsStarted.Inc()
}

// RecordSessionCompleted increments the sessions completed counter.
func RecordSessionCompleted() {
	globalManager.sessionsCompleted.Inc()
}

// RecordAnswerProcessed increments the answers processed counter.
func RecordAnswerProcessed() {
	globalManager.answersProcessed.Inc()
}

// RecordPhaseTransition records a transition into the given phase.
func RecordPhaseTransition(toPhase string) {
	globalManager.phaseTransitions.WithLabelValues(toPhase).Inc()
}

// RecordLevelFinalized records a finalized skill level.
func RecordLevelFinalized(level string, passed bool) {
	verdict := "failed"
	if passed {
		verdict = "passed"
	}
	globalManager.levelsFinalized.WithLabelValues(level, verdict).Inc()
}

// RecordAnswerScore observes the score of one answer.
func RecordAnswerScore(score float64) {
	globalManager.answerScore.Observe(score)
}

// UpdateActiveSessions sets the current live session count.
func UpdateActiveSessions(count int) {
	globalManager.activeSessions.Set(float64(count))
}

// RecordQuestionGenerated records an issued question by phase.
func RecordQuestionGenerated(phase string) {
	globalManager.questionsGenerated.WithLabelValues(phase).Inc()
}

// RecordGenerationFailure records a skill-question generation failure.
func RecordGenerationFailure(level string) {
	globalManager.generationFailures.WithLabelValues(level).Inc()
}

// RecordDistinctRejection increments the distinct rejections counter.
func RecordDistinctRejection() {
	globalManager.distinctRejections.Inc()
}

// RecordOracleLatency records oracle generation latency in milliseconds.
func RecordOracleLatency(latencyMs float64) {
	globalManager.oracleLatency.Observe(latencyMs)
}

// RecordOracleError increments the oracle errors counter.
func RecordOracleError() {
	globalManager.oracleErrors.Inc()
}

// RecordScoringFallback increments the scoring fallback counter.
func RecordScoringFallback() {
	globalManager.scoringFallbacks.Inc()
}

// RecordHTTPRequest records an HTTP request.
func RecordHTTPRequest(endpoint, method, statusCode string) {
	globalManager.httpRequests.WithLabelValues(endpoint, method, statusCode).Inc()
}

// RecordHTTPRequestDuration records HTTP request duration.
func RecordHTTPRequestDuration(endpoint, method, statusCode string, duration float64) {
	globalManager.httpRequestDuration.WithLabelValues(endpoint, method, statusCode).Observe(duration)
}

// GetRegistry returns the custom Prometheus registry used by our metrics.
func GetRegistry() *prometheus.Registry {
	return customRegistry
}
