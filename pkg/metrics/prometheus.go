// Package metrics provides Prometheus metrics for the matching engine.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Manager owns every Prometheus collector of the service.
type Manager struct {
	namespace      string
	subsystem      string
	latencyBuckets []float64
	enabled        bool
	constLabels    map[string]string
	registry       prometheus.Registerer

	// Ranking
	rankings       prometheus.Counter
	rankingErrors  prometheus.Counter
	postingsScored prometheus.Counter
	matchScore     prometheus.Histogram
	rankingLatency prometheus.Histogram

	// Score persistence
	scoresPersisted    prometheus.Counter
	scorePersistErrors prometheus.Counter

	// Priority alerts and quota
	priorityAlerts *prometheus.CounterVec
	quotaDenied    prometheus.Counter

	// Sweep
	sweepUsers prometheus.Counter
	queueSize  prometheus.Gauge

	// HTTP
	httpRequests        *prometheus.CounterVec
	httpRequestDuration *prometheus.HistogramVec
}

var globalManager *Manager //nolint:gochecknoglobals // singleton metrics manager

var customRegistry = prometheus.NewRegistry() //nolint:gochecknoglobals // process metrics registry

func init() { //nolint:gochecknoinits // global metrics setup
	globalManager = NewManager(WithPrometheusRegistry(customRegistry))
}

// NewManager creates a metrics manager. Collectors are registered on the
// configured registry (prometheus.DefaultRegisterer unless overridden).
func NewManager(opts ...Option) *Manager {
	m := &Manager{
		namespace:      "vagas",
		subsystem:      "matching",
		latencyBuckets: []float64{0.5, 1, 2, 5, 10, 25, 50, 100, 250, 500, 1000},
		enabled:        true,
		constLabels:    map[string]string{},
		registry:       prometheus.DefaultRegisterer,
	}
	for _, opt := range opts {
		opt(m)
	}
	m.initializeMetrics()
	return m
}

func (m *Manager) counter(name, help string) prometheus.Counter {
	return promauto.With(m.registry).NewCounter(prometheus.CounterOpts{
		Namespace:   m.namespace,
		Subsystem:   m.subsystem,
		Name:        name,
		Help:        help,
		ConstLabels: m.constLabels,
	})
}

func (m *Manager) initializeMetrics() {
	auto := promauto.With(m.registry)

	m.rankings = m.counter("rankings_total", "Ranking passes executed")
	m.rankingErrors = m.counter("ranking_errors_total", "Ranking passes aborted by a store read failure")
	m.postingsScored = m.counter("postings_scored_total", "Postings scored against a preference")
	m.scoresPersisted = m.counter("scores_persisted_total", "Match scores upserted")
	m.scorePersistErrors = m.counter("score_persist_errors_total", "Match score rows that failed to persist")
	m.quotaDenied = m.counter("quota_denied_total", "Deliveries skipped because the daily quota was exhausted")
	m.sweepUsers = m.counter("sweep_users_total", "Users processed by the periodic sweep")

	m.matchScore = auto.NewHistogram(prometheus.HistogramOpts{
		Namespace:   m.namespace,
		Subsystem:   m.subsystem,
		Name:        "match_score",
		Help:        "Distribution of total match scores",
		Buckets:     prometheus.LinearBuckets(10, 10, 10),
		ConstLabels: m.constLabels,
	})

	m.rankingLatency = auto.NewHistogram(prometheus.HistogramOpts{
		Namespace:   m.namespace,
		Subsystem:   m.subsystem,
		Name:        "ranking_latency_milliseconds",
		Help:        "Ranking pass latency in milliseconds",
		Buckets:     m.latencyBuckets,
		ConstLabels: m.constLabels,
	})

	m.priorityAlerts = auto.NewCounterVec(prometheus.CounterOpts{
		Namespace:   m.namespace,
		Subsystem:   m.subsystem,
		Name:        "priority_alerts_total",
		Help:        "Priority alert decisions by outcome",
		ConstLabels: m.constLabels,
	}, []string{"outcome"})

	m.queueSize = auto.NewGauge(prometheus.GaugeOpts{
		Namespace:   m.namespace,
		Subsystem:   m.subsystem,
		Name:        "sweep_queue_size",
		Help:        "Users waiting in the sweep queue",
		ConstLabels: m.constLabels,
	})

	m.httpRequests = auto.NewCounterVec(prometheus.CounterOpts{
		Namespace:   m.namespace,
		Subsystem:   m.subsystem,
		Name:        "http_requests_total",
		Help:        "HTTP requests by endpoint, method and status code",
		ConstLabels: m.constLabels,
	}, []string{"endpoint", "method", "status_code"})

	m.httpRequestDuration = auto.NewHistogramVec(prometheus.HistogramOpts{
		Namespace:   m.namespace,
		Subsystem:   m.subsystem,
		Name:        "http_request_duration_milliseconds",
		Help:        "HTTP request duration in milliseconds",
		Buckets:     m.latencyBuckets,
		ConstLabels: m.constLabels,
	}, []string{"endpoint", "method", "status_code"})
}

// RecordRanking records a completed ranking pass.
func (m *Manager) RecordRanking(scored int, latencyMs float64) {
	if !m.enabled {
		return
	}
	m.rankings.Inc()
	m.postingsScored.Add(float64(scored))
	m.rankingLatency.Observe(latencyMs)
}

// RecordMatchScore observes one total match score.
func (m *Manager) RecordMatchScore(score int) {
	if m.enabled {
		m.matchScore.Observe(float64(score))
	}
}

// RecordRankingError counts a ranking pass that failed to read its inputs.
func (m *Manager) RecordRankingError() {
	if m.enabled {
		m.rankingErrors.Inc()
	}
}

// RecordScoresPersisted counts written and failed score rows.
func (m *Manager) RecordScoresPersisted(written, failed int) {
	if !m.enabled {
		return
	}
	m.scoresPersisted.Add(float64(written))
	m.scorePersistErrors.Add(float64(failed))
}

// RecordPriorityAlert counts a priority alert decision.
func (m *Manager) RecordPriorityAlert(outcome string) {
	if m.enabled {
		m.priorityAlerts.WithLabelValues(outcome).Inc()
	}
}

// RecordQuotaDenied counts a delivery skipped for quota.
func (m *Manager) RecordQuotaDenied() {
	if m.enabled {
		m.quotaDenied.Inc()
	}
}

// RecordSweepUser counts a user processed by the sweep.
func (m *Manager) RecordSweepUser() {
	if m.enabled {
		m.sweepUsers.Inc()
	}
}

// UpdateQueueSize sets the current sweep queue size.
func (m *Manager) UpdateQueueSize(size int) {
	if m.enabled {
		m.queueSize.Set(float64(size))
	}
}

// RecordHTTPRequest records one served HTTP request.
func (m *Manager) RecordHTTPRequest(endpoint, method, statusCode string, durationMs float64) {
	if !m.enabled {
		return
	}
	m.httpRequests.WithLabelValues(endpoint, method, statusCode).Inc()
	m.httpRequestDuration.WithLabelValues(endpoint, method, statusCode).Observe(durationMs)
}

// Package-level helpers delegate to the global manager.

// RecordRanking records a completed ranking pass.
func RecordRanking(scored int, latencyMs float64) { globalManager.RecordRanking(scored, latencyMs) }

// RecordMatchScore observes one total match score.
func RecordMatchScore(score int) { globalManager.RecordMatchScore(score) }

// RecordRankingError counts a failed ranking pass.
func RecordRankingError() { globalManager.RecordRankingError() }

// RecordScoresPersisted counts written and failed score rows.
func RecordScoresPersisted(written, failed int) { globalManager.RecordScoresPersisted(written, failed) }

// RecordPriorityAlert counts a priority alert decision.
func RecordPriorityAlert(outcome string) { globalManager.RecordPriorityAlert(outcome) }

// RecordQuotaDenied counts a delivery skipped for quota.
func RecordQuotaDenied() { globalManager.RecordQuotaDenied() }

// RecordSweepUser counts a user processed by the sweep.
func RecordSweepUser() { globalManager.RecordSweepUser() }

// UpdateQueueSize sets the current sweep queue size.
func UpdateQueueSize(size int) { globalManager.UpdateQueueSize(size) }

// RecordHTTPRequest records one served HTTP request.
func RecordHTTPRequest(endpoint, method, statusCode string, durationMs float64) {
	globalManager.RecordHTTPRequest(endpoint, method, statusCode, durationMs)
}

// GetRegistry returns the registry backing the global manager.
func GetRegistry() *prometheus.Registry {
	return customRegistry
}
