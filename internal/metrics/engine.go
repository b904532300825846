// Package metrics exposes Prometheus metrics for search-engine operations.
// Registration is explicit so library consumers opt in from their
// composition root instead of paying for an init side effect.
package metrics

import "github.com/prometheus/client_golang/prometheus"

// Engine Prometheus metrics.
var (
	EngineRequestsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "esdex",
			Name:      "engine_requests_total",
			Help:      "Total number of search-engine requests",
		},
		[]string{"op", "status"}, // status: "ok" / "error"
	)

	EngineRequestDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: "esdex",
			Name:      "engine_request_duration_seconds",
			Help:      "Search-engine request duration in seconds",
			Buckets:   []float64{0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1, 2.5, 5},
		},
		[]string{"op"},
	)

	EngineErrorsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "esdex",
			Name:      "engine_errors_total",
			Help:      "Total search-engine errors by category",
		},
		[]string{"op", "error_type"},
	)
)

var engineMetricsRegistered bool

// Register registers the engine metrics. Must be called once from main.
func Register() {
	if engineMetricsRegistered {
		return
	}
	prometheus.MustRegister(EngineRequestsTotal)
	prometheus.MustRegister(EngineRequestDuration)
	prometheus.MustRegister(EngineErrorsTotal)
	engineMetricsRegistered = true
}
