// Package metrics provides Prometheus metrics for the core memory store and its collaborators.
package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const namespace = "core_memory"

var (
	// Upserts counts upsert calls by slot and result (inserted, duplicate, error).
	Upserts = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "upserts_total",
			Help:      "Upsert calls by slot and result",
		},
		[]string{"slot", "result"},
	)

	// Snapshots counts snapshot reads by outcome (ok, degraded).
	Snapshots = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "snapshots_total",
			Help:      "Snapshot reads by outcome",
		},
		[]string{"outcome"},
	)

	// PersistDuration tracks the encode+replace cycle.
	PersistDuration = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "persist_seconds",
			Help:      "Time spent encoding and atomically replacing the document",
			Buckets:   []float64{.0005, .001, .0025, .005, .01, .025, .05, .1, .25},
		},
	)

	// Classifications counts classifier outcomes (stored, duplicate, skipped, error, dropped).
	Classifications = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "classifications_total",
			Help:      "Classification collaborator outcomes",
		},
		[]string{"outcome"},
	)
)

// Handler returns the HTTP handler serving the default registry.
func Handler() http.Handler {
	return promhttp.Handler()
}
