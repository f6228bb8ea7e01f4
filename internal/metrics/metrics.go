// Package metrics provides Prometheus observability for the decision
// pipeline. All methods are nil-safe so callers can run without metrics
// (tests, library use).
package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics holds the decision pipeline series.
type Metrics struct {
	// Requests counts incoming ad requests by podcast category and
	// listener tier.
	Requests *prometheus.CounterVec

	// Decisions counts decision outcomes ("fill" / "no_fill").
	Decisions *prometheus.CounterVec

	// StageLatency observes per-stage latency.
	StageLatency *prometheus.HistogramVec

	// Candidates observes the number of candidates sourced per request.
	Candidates prometheus.Histogram

	// FilterDrops counts candidates dropped per filter name.
	FilterDrops *prometheus.CounterVec
}

// New registers the pipeline metrics on the default registerer.
func New() *Metrics {
	return &Metrics{
		Requests: promauto.NewCounterVec(prometheus.CounterOpts{
			Name: "podads_requests_total",
			Help: "Total ad requests by podcast category and listener tier",
		}, []string{"category", "tier"}),

		Decisions: promauto.NewCounterVec(prometheus.CounterOpts{
			Name: "podads_decisions_total",
			Help: "Total decisions by outcome",
		}, []string{"outcome"}),

		StageLatency: promauto.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "podads_stage_duration_seconds",
			Help:    "Duration of each decision pipeline stage",
			Buckets: []float64{0.0001, 0.00025, 0.0005, 0.001, 0.0025, 0.005, 0.01, 0.025, 0.05},
		}, []string{"stage"}),

		Candidates: promauto.NewHistogram(prometheus.HistogramOpts{
			Name:    "podads_candidates_processed",
			Help:    "Candidates sourced per request",
			Buckets: []float64{0, 1, 2, 5, 10, 20, 50, 100},
		}),

		FilterDrops: promauto.NewCounterVec(prometheus.CounterOpts{
			Name: "podads_filter_drops_total",
			Help: "Candidates dropped by filter name",
		}, []string{"filter"}),
	}
}

// IncRequest records one incoming request.
func (m *Metrics) IncRequest(category, tier string) {
	if m != nil {
		m.Requests.WithLabelValues(category, tier).Inc()
	}
}

// IncDecision records a decision outcome.
func (m *Metrics) IncDecision(outcome string) {
	if m != nil {
		m.Decisions.WithLabelValues(outcome).Inc()
	}
}

// ObserveStage records one stage's latency.
func (m *Metrics) ObserveStage(stage string, d time.Duration) {
	if m != nil {
		m.StageLatency.WithLabelValues(stage).Observe(d.Seconds())
	}
}

// ObserveCandidates records the sourced candidate count for one request.
func (m *Metrics) ObserveCandidates(n int) {
	if m != nil {
		m.Candidates.Observe(float64(n))
	}
}

// IncFilterDrop records one candidate dropped by the named filter.
func (m *Metrics) IncFilterDrop(filterName string) {
	if m != nil {
		m.FilterDrops.WithLabelValues(filterName).Inc()
	}
}
