package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
)

var (
	RecomputeDuration = prometheus.NewSummary(prometheus.SummaryOpts{
		Name: "bikeflow_recompute_duration_seconds",
		Help: "Time spent recomputing station traffic for a time filter",
	})

	AggregationCache = prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "bikeflow_aggregation_cache_total",
		Help: "Aggregation cache lookups by result",
	}, []string{"result"})

	TripsLoaded = prometheus.NewGauge(prometheus.GaugeOpts{
		Name: "bikeflow_trips_loaded",
		Help: "Amount of trips in the active trip index",
	})

	StationsLoaded = prometheus.NewGauge(prometheus.GaugeOpts{
		Name: "bikeflow_stations_loaded",
		Help: "Amount of stations known by the service",
	})

	TripsSkipped = prometheus.NewCounter(prometheus.CounterOpts{
		Name: "bikeflow_trips_skipped_total",
		Help: "Trip rows discarded by the loader",
	})

	SnapshotsPublished = prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "bikeflow_snapshots_published_total",
		Help: "Traffic snapshots sent to the broker by status",
	}, []string{"status"})

	RequestDuration = prometheus.NewSummaryVec(prometheus.SummaryOpts{
		Name: "bikeflow_request_duration_seconds",
		Help: "Summary for serving HTTP requests",
	}, []string{"endpoint"})
)

func init() {
	prometheus.MustRegister(
		RecomputeDuration,
		AggregationCache,
		TripsLoaded,
		StationsLoaded,
		TripsSkipped,
		SnapshotsPublished,
		RequestDuration,
	)
}
