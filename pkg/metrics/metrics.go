// Package metrics exposes Prometheus instrumentation for the analysis
// pipeline: engine traffic, cache effectiveness and batch progress.
package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Manager owns all collectors for the analyzer.
type Manager struct {
	namespace string
	subsystem string
	buckets   []float64
	registry  *prometheus.Registry

	engineEvaluations prometheus.Counter
	engineFailures    prometheus.Counter
	evaluationLatency prometheus.Histogram

	cacheHits   prometheus.Counter
	cacheMisses prometheus.Counter
	cacheSize   prometheus.Gauge

	gamesAnalyzed prometheus.Counter
	movesAnalyzed prometheus.Counter
	workerCount   prometheus.Gauge
}

var globalManager *Manager //nolint:gochecknoglobals // singleton metrics manager

func init() { //nolint:gochecknoinits // global metrics setup
	globalManager = NewManager()
}

// NewManager creates a Manager and registers its collectors.
func NewManager(opts ...Option) *Manager {
	m := &Manager{
		namespace: "arbiter",
		subsystem: "analysis",
		buckets:   prometheus.DefBuckets,
		registry:  prometheus.NewRegistry(),
	}
	for _, opt := range opts {
		opt(m)
	}
	m.register()
	return m
}

func (m *Manager) register() {
	factory := promauto.With(m.registry)

	m.engineEvaluations = factory.NewCounter(prometheus.CounterOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "engine_evaluations_total",
		Help:      "Positions evaluated by the engine (cache misses that reached the process).",
	})
	m.engineFailures = factory.NewCounter(prometheus.CounterOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "engine_failures_total",
		Help:      "Engine invocations that failed or timed out.",
	})
	m.evaluationLatency = factory.NewHistogram(prometheus.HistogramOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "evaluation_latency_seconds",
		Help:      "Wall time of a single engine evaluation.",
		Buckets:   m.buckets,
	})
	m.cacheHits = factory.NewCounter(prometheus.CounterOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "cache_hits_total",
		Help:      "Evaluations served from the position cache.",
	})
	m.cacheMisses = factory.NewCounter(prometheus.CounterOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "cache_misses_total",
		Help:      "Evaluations not present in the position cache.",
	})
	m.cacheSize = factory.NewGauge(prometheus.GaugeOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "cache_entries",
		Help:      "Entries currently held by the position cache.",
	})
	m.gamesAnalyzed = factory.NewCounter(prometheus.CounterOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "games_analyzed_total",
		Help:      "Games fully analyzed in this process.",
	})
	m.movesAnalyzed = factory.NewCounter(prometheus.CounterOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "moves_analyzed_total",
		Help:      "Moves scored by the move-quality analyzer.",
	})
	m.workerCount = factory.NewGauge(prometheus.GaugeOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "workers",
		Help:      "Analysis workers running in the current batch.",
	})
}

// Handler returns an HTTP handler serving this manager's registry.
func (m *Manager) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}

// Package-level helpers against the global manager.

func RecordEngineEvaluation()              { globalManager.engineEvaluations.Inc() }
func RecordEngineFailure()                 { globalManager.engineFailures.Inc() }
func ObserveEvaluationLatency(sec float64) { globalManager.evaluationLatency.Observe(sec) }
func RecordCacheHit()                      { globalManager.cacheHits.Inc() }
func RecordCacheMiss()                     { globalManager.cacheMisses.Inc() }
func UpdateCacheSize(n int)                { globalManager.cacheSize.Set(float64(n)) }
func RecordGameAnalyzed()                  { globalManager.gamesAnalyzed.Inc() }
func RecordMoveAnalyzed()                  { globalManager.movesAnalyzed.Inc() }
func UpdateWorkerCount(n int)              { globalManager.workerCount.Set(float64(n)) }

// Handler returns the HTTP handler for the global manager's registry.
func Handler() http.Handler { return globalManager.Handler() }
