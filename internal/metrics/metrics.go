package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
)

// Ingestion metrics
var (
	// LoadsTotal counts unified-table loads by outcome: "parsed", "cached" or "error".
	LoadsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "cataloglens_loads_total",
			Help: "Total number of unified table loads.",
		},
		[]string{"outcome"},
	)

	// MergeKeyTotal counts two-source merges by the join key used ("id", "title" or "none").
	MergeKeyTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "cataloglens_merge_key_total",
			Help: "Total number of two-source merges by join key.",
		},
		[]string{"key"},
	)

	// SourceBytes observes the raw size of every source read.
	SourceBytes = prometheus.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "cataloglens_source_bytes",
			Help:    "Size in bytes of ingested sources.",
			Buckets: prometheus.ExponentialBuckets(1024, 4, 10),
		},
	)
)

// Filtering and view metrics
var (
	// CoercionSkipsTotal counts cells left out of a predicate or view because
	// they could not be converted, by column.
	CoercionSkipsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "cataloglens_coercion_skips_total",
			Help: "Total number of cells skipped because of unparseable values.",
		},
		[]string{"column"},
	)

	// FilterDuration observes the time taken to apply a selection.
	FilterDuration = prometheus.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "cataloglens_filter_duration_seconds",
			Help:    "Time spent applying filter selections.",
			Buckets: prometheus.DefBuckets,
		},
	)

	// DashboardsTotal counts rendered dashboards by transport.
	DashboardsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "cataloglens_dashboards_total",
			Help: "Total number of dashboards rendered.",
		},
		[]string{"transport"},
	)
)

func init() {
	prometheus.MustRegister(
		LoadsTotal,
		MergeKeyTotal,
		SourceBytes,
		CoercionSkipsTotal,
		FilterDuration,
		DashboardsTotal,
	)
}
