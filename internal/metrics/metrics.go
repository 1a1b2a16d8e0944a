// Package metrics defines the Prometheus instruments shared across the
// SubnetScope modules. All instruments register on the default registry
// and are served by the core /metrics endpoint.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// UpstreamRequests counts registry API calls by endpoint and outcome.
	UpstreamRequests = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "subnetscope_upstream_requests_total",
			Help: "Total number of registry API requests",
		},
		[]string{"endpoint", "outcome"},
	)

	// GeoLookups counts geolocation lookups by outcome (resolved, failed, skipped).
	GeoLookups = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "subnetscope_geo_lookups_total",
			Help: "Total number of geolocation lookups",
		},
		[]string{"outcome"},
	)

	// CacheOps counts result-cache operations by slot and result.
	CacheOps = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "subnetscope_cache_ops_total",
			Help: "Total number of result cache operations",
		},
		[]string{"slot", "result"},
	)

	// SnapshotBuildDuration observes end-to-end snapshot build time in seconds.
	SnapshotBuildDuration = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "subnetscope_snapshot_build_duration_seconds",
			Help:    "Duration of subnet snapshot builds in seconds",
			Buckets: []float64{1, 5, 15, 30, 60, 120, 300, 600},
		},
	)

	// AnalyzeDuration observes concentration analysis time in seconds.
	AnalyzeDuration = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "subnetscope_analyze_duration_seconds",
			Help:    "Duration of concentration analysis runs in seconds",
			Buckets: []float64{0.001, 0.01, 0.1, 1, 10},
		},
	)
)
