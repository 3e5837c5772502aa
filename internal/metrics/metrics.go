// Package metrics defines Prometheus metrics for the relations service.
package metrics

import "github.com/prometheus/client_golang/prometheus"

// Traversal outcomes.
const (
	OutcomeComplete = "complete"
	OutcomeStopped  = "stopped"
	OutcomeFailed   = "failed"
)

var (
	RequestDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "relations_http_request_duration_seconds",
			Help:    "HTTP request duration in seconds",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"method", "path", "status"},
	)

	RequestsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "relations_http_requests_total",
			Help: "Total HTTP requests",
		},
		[]string{"method", "path", "status"},
	)

	ErrorsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "relations_errors_total",
			Help: "Total errors by type",
		},
		[]string{"type"},
	)

	TraversalsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "relations_traversals_total",
			Help: "Traversals by outcome (complete, stopped, failed)",
		},
		[]string{"outcome"},
	)

	NodesVisited = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "relations_nodes_visited_total",
			Help: "Related nodes handed to traversal visitors",
		},
	)

	RelationshipsCreated = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "relations_relationships_created_total",
			Help: "Relationships created through collections",
		},
	)

	SizeCacheTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "relations_size_cache_total",
			Help: "Size cache lookups by result (hit, miss)",
		},
		[]string{"result"},
	)
)

func init() {
	prometheus.MustRegister(
		RequestDuration, RequestsTotal, ErrorsTotal,
		TraversalsTotal, NodesVisited, RelationshipsCreated,
		SizeCacheTotal,
	)
}
