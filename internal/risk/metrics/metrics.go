package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics provides observability for shipment scoring.
type Metrics struct {
	// Decisions by lane and scoring path
	Decisions *prometheus.CounterVec

	// Distribution of risk scores
	RiskScore prometheus.Histogram

	// Trust score source: "request", "identity", "default"
	TrustSource *prometheus.CounterVec
}

// New creates a new Metrics instance with all scoring metrics registered.
func New() *Metrics {
	return &Metrics{
		Decisions: promauto.NewCounterVec(prometheus.CounterOpts{
			Name: "clearance_risk_decisions_total",
			Help: "Scoring decisions by lane and model",
		}, []string{"lane", "model"}),

		RiskScore: promauto.NewHistogram(prometheus.HistogramOpts{
			Name:    "clearance_risk_score",
			Help:    "Distribution of computed risk scores",
			Buckets: prometheus.LinearBuckets(0, 10, 11),
		}),

		TrustSource: promauto.NewCounterVec(prometheus.CounterOpts{
			Name: "clearance_risk_trust_source_total",
			Help: "Where the trust score used for scoring came from",
		}, []string{"source"}),
	}
}

// ObserveDecision records a scoring outcome.
func (m *Metrics) ObserveDecision(lane, model string, score float64) {
	if m != nil {
		m.Decisions.WithLabelValues(lane, model).Inc()
		m.RiskScore.Observe(score)
	}
}

// IncrementTrustSource records how the trust input was obtained.
func (m *Metrics) IncrementTrustSource(source string) {
	if m != nil {
		m.TrustSource.WithLabelValues(source).Inc()
	}
}
