// Package metrics exposes Prometheus counters for collection stores and the
// HTTP surface.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
)

var (
	Mutations = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "questlog_mutations_total",
			Help: "Collection mutations by storage key and operation",
		},
		[]string{"collection", "op"},
	)
	LoadFailures = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "questlog_load_failures_total",
			Help: "Failed initial loads by storage key",
		},
		[]string{"collection"},
	)
	PersistFailures = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "questlog_persist_failures_total",
			Help: "Failed storage writes by storage key",
		},
		[]string{"collection"},
	)
	HTTPRequests = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "questlog_http_requests_total",
			Help: "HTTP requests by route, method and status",
		},
		[]string{"route", "method", "status"},
	)
	Generations = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "questlog_generations_total",
			Help: "AI generation calls by kind and outcome",
		},
		[]string{"kind", "outcome"},
	)
)

func init() {
	prometheus.MustRegister(Mutations)
	prometheus.MustRegister(LoadFailures)
	prometheus.MustRegister(PersistFailures)
	prometheus.MustRegister(HTTPRequests)
	prometheus.MustRegister(Generations)
}

// StoreObserver feeds collection events into the counters above.
type StoreObserver struct{}

func (StoreObserver) Mutated(key, op string) {
	Mutations.WithLabelValues(key, op).Inc()
}

func (StoreObserver) LoadFailed(key string, _ error) {
	LoadFailures.WithLabelValues(key).Inc()
}

func (StoreObserver) PersistFailed(key string, _ error) {
	PersistFailures.WithLabelValues(key).Inc()
}
