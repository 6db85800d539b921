package telemetry

import (
	"fmt"
	"net/http"
	"sync"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var (
	resolutionsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "depscope_resolutions_total",
			Help: "Definition file resolutions by package manager and status",
		},
		[]string{"manager", "status"},
	)

	resolutionDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "depscope_resolution_duration_seconds",
			Help:    "Duration of single definition file resolutions",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"manager"},
	)

	cacheLookupsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "depscope_cache_lookups_total",
			Help: "Resolution cache lookups by outcome",
		},
		[]string{"outcome"},
	)

	curationsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "depscope_curations_total",
			Help: "Package curations applied by provider",
		},
		[]string{"provider"},
	)

	issuesTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "depscope_issues_total",
			Help: "Issues recorded by severity",
		},
		[]string{"severity"},
	)

	packagesResolved = prometheus.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "depscope_packages_resolved",
			Help: "Packages in the last run by package manager",
		},
		[]string{"manager"},
	)

	providerRetriesTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "depscope_provider_retries_total",
			Help: "Retried curation provider calls by provider",
		},
		[]string{"provider"},
	)
)

func init() {
	prometheus.MustRegister(
		resolutionsTotal,
		resolutionDuration,
		cacheLookupsTotal,
		curationsTotal,
		issuesTotal,
		packagesResolved,
		providerRetriesTotal,
	)
}

// TrackResolution counts one definition file resolution.
func TrackResolution(manager string, success bool) {
	status := "success"
	if !success {
		status = "failure"
	}
	resolutionsTotal.WithLabelValues(manager, status).Inc()
}

// ObserveResolutionDuration records how long one file resolution took.
func ObserveResolutionDuration(manager string, seconds float64) {
	resolutionDuration.WithLabelValues(manager).Observe(seconds)
}

// TrackCacheHit counts a resolution served from the cache.
func TrackCacheHit() {
	cacheLookupsTotal.WithLabelValues("hit").Inc()
}

// TrackCacheMiss counts a resolution that had to run.
func TrackCacheMiss() {
	cacheLookupsTotal.WithLabelValues("miss").Inc()
}

// TrackCurations counts curations contributed by a provider.
func TrackCurations(provider string, count int) {
	curationsTotal.WithLabelValues(provider).Add(float64(count))
}

// TrackIssue counts one recorded issue.
func TrackIssue(severity string) {
	issuesTotal.WithLabelValues(severity).Inc()
}

// SetPackagesResolved records how many packages a manager contributed.
func SetPackagesResolved(manager string, count int) {
	packagesResolved.WithLabelValues(manager).Set(float64(count))
}

// TrackProviderRetry counts one retried provider call.
func TrackProviderRetry(provider string) {
	providerRetriesTotal.WithLabelValues(provider).Inc()
}

var (
	metricsMu      sync.Mutex
	metricsRunning bool
)

// StartMetricsServer exposes /metrics on the given port. Calling it while a
// server is already running is a no-op.
func StartMetricsServer(port int) error {
	metricsMu.Lock()
	if metricsRunning {
		metricsMu.Unlock()
		return nil
	}
	metricsRunning = true
	metricsMu.Unlock()

	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.Handler())

	LogInfo("Starting metrics server", "port", port)
	err := http.ListenAndServe(fmt.Sprintf(":%d", port), mux)

	metricsMu.Lock()
	metricsRunning = false
	metricsMu.Unlock()
	return err
}
