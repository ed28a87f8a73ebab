package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
)

// Recorder implements domain.repository.Metrics using Prometheus.
type Recorder struct {
	fetches      *prometheus.CounterVec
	errorsTotal  *prometheus.CounterVec
	pairs        *prometheus.CounterVec
	latency      *prometheus.HistogramVec
	breakerState *prometheus.GaugeVec
}

// New creates a recorder and registers its collectors on reg.
func New(reg prometheus.Registerer) *Recorder {
	r := &Recorder{
		fetches: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "pairscope_price_fetches_total",
				Help: "Price history fetches by outcome (hit, miss, error)",
			},
			[]string{"symbol", "outcome"},
		),
		errorsTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "pairscope_errors_total",
				Help: "Total number of errors encountered",
			},
			[]string{"type"},
		),
		pairs: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "pairscope_pairs_processed_total",
				Help: "Pairs processed by batch mode and outcome",
			},
			[]string{"mode", "outcome"},
		),
		latency: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "pairscope_operation_duration_seconds",
				Help:    "Duration of operations in seconds",
				Buckets: prometheus.DefBuckets,
			},
			[]string{"operation"},
		),
		breakerState: prometheus.NewGaugeVec(
			prometheus.GaugeOpts{
				Name: "pairscope_breaker_state",
				Help: "Circuit breaker state (0 closed, 1 half-open, 2 open)",
			},
			[]string{"name"},
		),
	}
	reg.MustRegister(r.fetches, r.errorsTotal, r.pairs, r.latency, r.breakerState)
	return r
}

// RecordFetch records a price history fetch.
func (r *Recorder) RecordFetch(symbol, outcome string) {
	r.fetches.WithLabelValues(symbol, outcome).Inc()
}

// RecordError records an error occurrence.
func (r *Recorder) RecordError(kind string) {
	r.errorsTotal.WithLabelValues(kind).Inc()
}

// RecordPair records one processed pair in a batch.
func (r *Recorder) RecordPair(mode, outcome string) {
	r.pairs.WithLabelValues(mode, outcome).Inc()
}

// RecordLatency records operation latency in seconds.
func (r *Recorder) RecordLatency(op string, seconds float64) {
	r.latency.WithLabelValues(op).Observe(seconds)
}

// RecordBreakerState records a circuit breaker transition.
func (r *Recorder) RecordBreakerState(name string, state int) {
	r.breakerState.WithLabelValues(name).Set(float64(state))
}

// Nop discards every observation.
type Nop struct{}

func (Nop) RecordFetch(string, string) {}
func (Nop) RecordError(string) {}
func (Nop) RecordPair(string, string) {}
func (Nop) RecordLatency(string, float64) {}
func (Nop) RecordBreakerState(string, int) {}
