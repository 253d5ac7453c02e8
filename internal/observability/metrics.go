package observability

import (
	"github.com/prometheus/client_golang/prometheus"
)

// Metrics holds the Prometheus collectors for the search engine.
type Metrics struct {
	Searches       prometheus.Counter
	SearchDuration prometheus.Histogram

	// Per-adapter counters, labeled by source ("business", "osm", "nominatim").
	AdapterResults  *prometheus.CounterVec
	AdapterFailures *prometheus.CounterVec
}

// NewMetrics creates and registers all collectors with the default registry.
func NewMetrics() *Metrics {
	m := newMetrics()
	prometheus.MustRegister(
		m.Searches,
		m.SearchDuration,
		m.AdapterResults,
		m.AdapterFailures,
	)
	return m
}

// NewMetricsForTesting creates unregistered collectors to avoid "already
// registered" panics when called from multiple tests.
func NewMetricsForTesting() *Metrics {
	return newMetrics()
}

func newMetrics() *Metrics {
	return &Metrics{
		Searches: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "localspot",
			Name:      "searches_total",
			Help:      "Total location searches served.",
		}),
		SearchDuration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: "localspot",
			Name:      "search_duration_seconds",
			Help:      "End-to-end duration of one search fan-out.",
			Buckets:   []float64{0.01, 0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10},
		}),
		AdapterResults: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "localspot",
			Name:      "adapter_results_total",
			Help:      "Raw results contributed per source before merging.",
		}, []string{"source"}),
		AdapterFailures: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "localspot",
			Name:      "adapter_failures_total",
			Help:      "Adapter calls degraded to an empty contribution.",
		}, []string{"source"}),
	}
}
