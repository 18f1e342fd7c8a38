package cache

import (
	"sync"

	"github.com/prometheus/client_golang/prometheus"
)

// Lookup results reported by LookupsTotal.
const (
	lookupHit  = "hit"
	lookupMiss = "miss"
)

// Table cache metrics, labelled with ProviderConfig.Group under "cache".
var (
	LookupsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "cataloglens_table_cache_lookups_total",
			Help: "Table cache lookups by result (hit or miss).",
		},
		[]string{"cache", "result"},
	)

	EvictionsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "cataloglens_table_cache_evictions_total",
			Help: "Tables dropped from the cache for space, expiry or removal.",
		},
		[]string{"cache"},
	)

	// InvalidationsTotal counts tables removed because they could not be decoded.
	InvalidationsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "cataloglens_table_cache_invalidations_total",
			Help: "Tables removed from the cache by the loader.",
		},
		[]string{"cache"},
	)

	StoredBytes = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "cataloglens_table_cache_stored_bytes",
			Help:    "Size in bytes of the encoded tables written to the cache.",
			Buckets: prometheus.ExponentialBuckets(4<<10, 4, 8),
		},
		[]string{"cache"},
	)
)

func init() {
	prometheus.MustRegister(LookupsTotal, EvictionsTotal, InvalidationsTotal, StoredBytes)
}

// The entries gauge is read from Len at scrape time, since redis expires
// tables without telling the process.
var (
	entriesMu       sync.Mutex
	entriesGauges   = make(map[string]prometheus.Collector)
	entriesRegistry prometheus.Registerer = prometheus.DefaultRegisterer
)

// trackEntries publishes the table count of group, replacing an earlier
// gauge of the same group.
func trackEntries(group string, count func() int) {
	gauge := prometheus.NewGaugeFunc(
		prometheus.GaugeOpts{
			Name:        "cataloglens_table_cache_entries",
			Help:        "Unified tables currently cached.",
			ConstLabels: prometheus.Labels{"cache": group},
		},
		func() float64 { return float64(count()) },
	)

	entriesMu.Lock()
	defer entriesMu.Unlock()
	if old, ok := entriesGauges[group]; ok {
		entriesRegistry.Unregister(old)
	}
	entriesGauges[group] = gauge
	_ = entriesRegistry.Register(gauge)
}

func untrackEntries(group string) {
	entriesMu.Lock()
	defer entriesMu.Unlock()
	if gauge, ok := entriesGauges[group]; ok {
		entriesRegistry.Unregister(gauge)
		delete(entriesGauges, group)
	}
}
