// Package metrics defines the Prometheus instrumentation for charwatch.
package metrics

import "github.com/prometheus/client_golang/prometheus"

// Upstream search and cache metrics.
var (
	SearchRequestsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "charwatch",
			Name:      "search_requests_total",
			Help:      "Total number of upstream multi-search calls",
		},
		[]string{"operation", "status"},
	)

	SearchRequestDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: "charwatch",
			Name:      "search_request_duration_seconds",
			Help:      "Upstream multi-search call duration in seconds, retries included",
			Buckets:   []float64{0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10, 25},
		},
		[]string{"operation"},
	)

	SearchRetriesTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "charwatch",
			Name:      "search_retries_total",
			Help:      "Total upstream attempt failures that triggered a retry wait",
		},
		[]string{"operation", "reason"},
	)

	SnapshotTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "charwatch",
			Name:      "snapshot_total",
			Help:      "Trending snapshot cache hits and misses",
		},
		[]string{"mode", "result"}, // "hit" / "miss" / "invalid"
	)

	CrawlPagesTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "charwatch",
			Name:      "crawl_pages_total",
			Help:      "Trending pages fetched from the upstream index",
		},
		[]string{"mode"},
	)
)

var registered bool

// Register registers all charwatch metrics. Must be called once from main;
// the library path leaves registration to the embedding application.
func Register() {
	if registered {
		return
	}
	prometheus.MustRegister(SearchRequestsTotal)
	prometheus.MustRegister(SearchRequestDuration)
	prometheus.MustRegister(SearchRetriesTotal)
	prometheus.MustRegister(SnapshotTotal)
	prometheus.MustRegister(CrawlPagesTotal)
	registered = true
}
