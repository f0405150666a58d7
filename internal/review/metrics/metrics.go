package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics provides observability for the review module.
// Tracks decision outcomes, console opens, and critical path durations.
type Metrics struct {
	Decisions           *prometheus.CounterVec
	ConsoleOpened       prometheus.Counter
	CacheHits           prometheus.Counter
	CacheMisses         prometheus.Counter
	DecideDuration      prometheus.Histogram
	OpenConsoleDuration prometheus.Histogram
	ExportDuration      prometheus.Histogram
}

// New creates a new Metrics instance with all review module metrics registered.
func New() *Metrics {
	return &Metrics{
		Decisions: promauto.NewCounterVec(prometheus.CounterOpts{
			Name: "ensemble_review_decisions_total",
			Help: "Total number of review decisions applied, by resulting status",
		}, []string{"status"}),
		ConsoleOpened: promauto.NewCounter(prometheus.CounterOpts{
			Name: "ensemble_review_console_opened_total",
			Help: "Total number of review console sessions opened",
		}),
		CacheHits: promauto.NewCounter(prometheus.CounterOpts{
			Name: "ensemble_review_cache_hits_total",
			Help: "Registration list cache hits",
		}),
		CacheMisses: promauto.NewCounter(prometheus.CounterOpts{
			Name: "ensemble_review_cache_misses_total",
			Help: "Registration list cache misses",
		}),
		DecideDuration: promauto.NewHistogram(prometheus.HistogramOpts{
			Name:    "ensemble_review_decide_duration_seconds",
			Help:    "Duration of Decide operations including the authoritative refetch",
			Buckets: []float64{0.001, 0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1},
		}),
		OpenConsoleDuration: promauto.NewHistogram(prometheus.HistogramOpts{
			Name:    "ensemble_review_open_console_duration_seconds",
			Help:    "Duration of OpenConsole operations (event + registration fetch)",
			Buckets: []float64{0.001, 0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1},
		}),
		ExportDuration: promauto.NewHistogram(prometheus.HistogramOpts{
			Name:    "ensemble_review_export_duration_seconds",
			Help:    "Duration of registration export generation",
			Buckets: []float64{0.001, 0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1},
		}),
	}
}

// IncrementDecision records an applied review decision.
func (m *Metrics) IncrementDecision(status string) {
	m.Decisions.WithLabelValues(status).Inc()
}

// IncrementConsoleOpened records a console session open.
func (m *Metrics) IncrementConsoleOpened() {
	m.ConsoleOpened.Inc()
}

// IncrementCacheHit records a registration list cache hit.
func (m *Metrics) IncrementCacheHit() {
	m.CacheHits.Inc()
}

// IncrementCacheMiss records a registration list cache miss.
func (m *Metrics) IncrementCacheMiss() {
	m.CacheMisses.Inc()
}

// ObserveDecide records the duration of a Decide operation.
// Call with time.Now() at the start of the operation.
func (m *Metrics) ObserveDecide(start time.Time) {
	m.DecideDuration.Observe(time.Since(start).Seconds())
}

// ObserveOpenConsole records the duration of an OpenConsole operation.
func (m *Metrics) ObserveOpenConsole(start time.Time) {
	m.OpenConsoleDuration.Observe(time.Since(start).Seconds())
}

// ObserveExport records the duration of an export generation.
func (m *Metrics) ObserveExport(start time.Time) {
	m.ExportDuration.Observe(time.Since(start).Seconds())
}
