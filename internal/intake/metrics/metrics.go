package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics provides observability for the intake module.
// Tracks draft lifecycle counts and submission outcomes.
type Metrics struct {
	DraftsStarted  prometheus.Counter
	DraftsExpired  prometheus.Counter
	Submissions    *prometheus.CounterVec
	StepRejections prometheus.Counter
	SubmitDuration prometheus.Histogram
}

// New creates a new Metrics instance with all intake module metrics registered.
func New() *Metrics {
	return &Metrics{
		DraftsStarted: promauto.NewCounter(prometheus.CounterOpts{
			Name: "ensemble_intake_drafts_started_total",
			Help: "Total number of application drafts started",
		}),
		DraftsExpired: promauto.NewCounter(prometheus.CounterOpts{
			Name: "ensemble_intake_drafts_expired_total",
			Help: "Total number of drafts reaped after their TTL elapsed",
		}),
		Submissions: promauto.NewCounterVec(prometheus.CounterOpts{
			Name: "ensemble_intake_submissions_total",
			Help: "Total number of submission attempts, by outcome",
		}, []string{"outcome"}),
		StepRejections: promauto.NewCounter(prometheus.CounterOpts{
			Name: "ensemble_intake_step_rejections_total",
			Help: "Total number of step advances blocked by validation",
		}),
		SubmitDuration: promauto.NewHistogram(prometheus.HistogramOpts{
			Name:    "ensemble_intake_submit_duration_seconds",
			Help:    "Duration of Submit operations (validation through persistence)",
			Buckets: []float64{0.001, 0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1},
		}),
	}
}

// IncrementDraftsStarted records a new draft.
func (m *Metrics) IncrementDraftsStarted() {
	m.DraftsStarted.Inc()
}

// IncrementDraftsExpired records a reaped draft.
func (m *Metrics) IncrementDraftsExpired() {
	m.DraftsExpired.Inc()
}

// IncrementSubmission records a submission attempt outcome
// ("accepted", "rejected", "failed").
func (m *Metrics) IncrementSubmission(outcome string) {
	m.Submissions.WithLabelValues(outcome).Inc()
}

// IncrementStepRejection records a step advance blocked by validation.
func (m *Metrics) IncrementStepRejection() {
	m.StepRejections.Inc()
}

// ObserveSubmit records the duration of a Submit operation.
// Call with time.Now() at the start of the operation.
func (m *Metrics) ObserveSubmit(start time.Time) {
	m.SubmitDuration.Observe(time.Since(start).Seconds())
}
