package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics provides observability for the importer identity store.
type Metrics struct {
	// Tier lookup latency by tier and outcome
	TierLatency *prometheus.HistogramVec

	// Query resolutions by the tier that answered
	Resolutions *prometheus.CounterVec

	// Degradation events by tier and operation
	Degradations *prometheus.CounterVec

	// Write operations by operation and result
	Writes *prometheus.CounterVec

	// Ledger circuit state (1 = open)
	LedgerCircuitOpen prometheus.Gauge
}

// New creates a new Metrics instance with all importer metrics registered.
func New() *Metrics {
	return &Metrics{
		TierLatency: promauto.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "clearance_importer_tier_duration_seconds",
			Help:    "Duration of identity tier calls",
			Buckets: []float64{0.0005, 0.001, 0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1, 2.5},
		}, []string{"tier", "outcome"}), // outcome: "hit", "miss", "unavailable"

		Resolutions: promauto.NewCounterVec(prometheus.CounterOpts{
			Name: "clearance_importer_resolutions_total",
			Help: "Importer queries by the tier that resolved them",
		}, []string{"tier"}), // tier: "cache", "ledger", "local", "none"

		Degradations: promauto.NewCounterVec(prometheus.CounterOpts{
			Name: "clearance_importer_degradations_total",
			Help: "Tier calls absorbed by the fallback chain",
		}, []string{"tier", "op"}),

		Writes: promauto.NewCounterVec(prometheus.CounterOpts{
			Name: "clearance_importer_writes_total",
			Help: "Importer write operations by result",
		}, []string{"op", "result"}),

		LedgerCircuitOpen: promauto.NewGauge(prometheus.GaugeOpts{
			Name: "clearance_importer_ledger_circuit_open",
			Help: "Whether the ledger circuit breaker is open (1) or closed (0)",
		}),
	}
}

// ObserveTier records a single tier call.
func (m *Metrics) ObserveTier(tier, outcome string, d time.Duration) {
	if m != nil {
		m.TierLatency.WithLabelValues(tier, outcome).Observe(d.Seconds())
	}
}

// IncrementResolution records which tier answered a query.
func (m *Metrics) IncrementResolution(tier string) {
	if m != nil {
		m.Resolutions.WithLabelValues(tier).Inc()
	}
}

// IncrementDegradation records a tier failure absorbed by fallback.
func (m *Metrics) IncrementDegradation(tier, op string) {
	if m != nil {
		m.Degradations.WithLabelValues(tier, op).Inc()
	}
}

// IncrementWrite records a write operation outcome.
func (m *Metrics) IncrementWrite(op, result string) {
	if m != nil {
		m.Writes.WithLabelValues(op, result).Inc()
	}
}

// SetLedgerCircuitOpen records the breaker state.
func (m *Metrics) SetLedgerCircuitOpen(open bool) {
	if m == nil {
		return
	}
	if open {
		m.LedgerCircuitOpen.Set(1)
		return
	}
	m.LedgerCircuitOpen.Set(0)
}
