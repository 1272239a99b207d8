package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var durationBuckets = []float64{10, 50, 100, 250, 500, 1000, 2500, 5000, 10000, 30000}

var (
	OverpassRequestsTotal = prometheus.NewCounter(prometheus.CounterOpts{
		Name: "streetmap_overpass_requests_total",
		Help: "Total Overpass API requests",
	})
	OverpassFailTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "streetmap_overpass_fail_total",
		Help: "Total Overpass API failures by kind",
	}, []string{"kind"})
	OverpassDurationMs = prometheus.NewHistogram(prometheus.HistogramOpts{
		Name:    "streetmap_overpass_duration_ms",
		Help:    "Overpass API call duration in milliseconds",
		Buckets: durationBuckets,
	})
	ProviderCacheHitsTotal = prometheus.NewCounter(prometheus.CounterOpts{
		Name: "streetmap_provider_cache_hits_total",
		Help: "Total provider-response cache hits",
	})
	ProviderCacheMissesTotal = prometheus.NewCounter(prometheus.CounterOpts{
		Name: "streetmap_provider_cache_misses_total",
		Help: "Total provider-response cache misses",
	})
	FeaturesFetchedTotal = prometheus.NewCounter(prometheus.CounterOpts{
		Name: "streetmap_features_fetched_total",
		Help: "Total street features fetched",
	})
	FeaturesSkippedTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "streetmap_features_skipped_total",
		Help: "Total street features skipped by reason",
	}, []string{"reason"})
	FallbackResolutionsTotal = prometheus.NewCounter(prometheus.CounterOpts{
		Name: "streetmap_fallback_resolutions_total",
		Help: "Total points resolved through the nearest-centroid fallback",
	})
	MapDurationMs = prometheus.NewHistogram(prometheus.HistogramOpts{
		Name:    "streetmap_map_duration_ms",
		Help:    "Street-to-boundary mapping duration in milliseconds (fetch included)",
		Buckets: durationBuckets,
	})
	ReferenceRequestsTotal = prometheus.NewCounter(prometheus.CounterOpts{
		Name: "streetmap_reference_requests_total",
		Help: "Total reference sheet fetches",
	})
	ReferenceFailTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "streetmap_reference_fail_total",
		Help: "Total reference sheet fetch failures by kind",
	}, []string{"kind"})
	MatchResultsTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "streetmap_match_results_total",
		Help: "Validation results by match kind",
	}, []string{"kind"})
	HTTPRequestsTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "streetmap_http_requests_total",
		Help: "Total HTTP requests by route and status",
	}, []string{"route", "status"})
)

func init() {
	prometheus.MustRegister(OverpassRequestsTotal)
	prometheus.MustRegister(OverpassFailTotal)
	prometheus.MustRegister(OverpassDurationMs)
	prometheus.MustRegister(ProviderCacheHitsTotal)
	prometheus.MustRegister(ProviderCacheMissesTotal)
	prometheus.MustRegister(FeaturesFetchedTotal)
	prometheus.MustRegister(FeaturesSkippedTotal)
	prometheus.MustRegister(FallbackResolutionsTotal)
	prometheus.MustRegister(MapDurationMs)
	prometheus.MustRegister(ReferenceRequestsTotal)
	prometheus.MustRegister(ReferenceFailTotal)
	prometheus.MustRegister(MatchResultsTotal)
	prometheus.MustRegister(HTTPRequestsTotal)
}

// Handler trả về handler Prometheus, mount tại /metrics
func Handler() http.Handler { return promhttp.Handler() }
