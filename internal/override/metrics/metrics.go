package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics provides observability for officer overrides.
type Metrics struct {
	Overrides        *prometheus.CounterVec
	Rejected         prometheus.Counter
	FeedbackFailures prometheus.Counter
}

// New creates a new Metrics instance with all override metrics registered.
func New() *Metrics {
	return &Metrics{
		Overrides: promauto.NewCounterVec(prometheus.CounterOpts{
			Name: "clearance_override_submitted_total",
			Help: "Accepted lane overrides by original and new lane",
		}, []string{"from_lane", "to_lane"}),

		Rejected: promauto.NewCounter(prometheus.CounterOpts{
			Name: "clearance_override_rejected_total",
			Help: "Override submissions rejected by validation",
		}),

		FeedbackFailures: promauto.NewCounter(prometheus.CounterOpts{
			Name: "clearance_override_feedback_failures_total",
			Help: "Training feedback events that could not be published",
		}),
	}
}

func (m *Metrics) IncrementOverride(from, to string) {
	if m != nil {
		m.Overrides.WithLabelValues(from, to).Inc()
	}
}

func (m *Metrics) IncrementRejected() {
	if m != nil {
		m.Rejected.Inc()
	}
}

func (m *Metrics) IncrementFeedbackFailure() {
	if m != nil {
		m.FeedbackFailures.Inc()
	}
}
