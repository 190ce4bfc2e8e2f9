package server

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Prometheus metrics
var (
	aggregationsTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "scout_aggregations_total",
		Help: "Total number of leaderboard aggregations computed",
	})

	aggregationDuration = promauto.NewHistogram(prometheus.HistogramOpts{
		Name:    "scout_aggregation_duration_seconds",
		Help:    "Duration of reading the store and aggregating team stats",
		Buckets: prometheus.DefBuckets,
	})

	entriesWritten = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "scout_entries_written_total",
		Help: "Records written to the store, by operation",
	}, []string{"op"})
)
