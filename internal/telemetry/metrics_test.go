package telemetry

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// metricValue reads one labeled sample from the default registry.
func metricValue(t *testing.T, name string, labels map[string]string) float64 {
	t.Helper()

	families, err := prometheus.DefaultGatherer.Gather()
	require.NoError(t, err)

	for _, mf := range families {
		if mf.GetName() != name {
			continue
		}
		for _, m := range mf.Metric {
			if len(m.Label) != len(labels) {
				continue
			}
			matched := true
			for _, lp := range m.Label {
				if labels[lp.GetName()] != lp.GetValue() {
					matched = false
					break
				}
			}
			if !matched {
				continue
			}
			switch {
			case m.Counter != nil:
				return m.Counter.GetValue()
			case m.Gauge != nil:
				return m.Gauge.GetValue()
			}
		}
	}

	t.Fatalf("metric %s with labels %v not found", name, labels)
	return 0
}

func TestCountersAdvance(t *testing.T) {
	TrackResolution("gomod", true)
	TrackResolution("gomod", true)
	TrackResolution("gomod", false)
	assert.Equal(t, 2.0, metricValue(t, "depscope_resolutions_total", map[string]string{"manager": "gomod", "status": "success"}))
	assert.Equal(t, 1.0, metricValue(t, "depscope_resolutions_total", map[string]string{"manager": "gomod", "status": "failure"}))

	TrackCacheHit()
	TrackCacheMiss()
	TrackCacheMiss()
	assert.Equal(t, 1.0, metricValue(t, "depscope_cache_lookups_total", map[string]string{"outcome": "hit"}))
	assert.Equal(t, 2.0, metricValue(t, "depscope_cache_lookups_total", map[string]string{"outcome": "miss"}))

	TrackCurations("file", 3)
	assert.Equal(t, 3.0, metricValue(t, "depscope_curations_total", map[string]string{"provider": "file"}))

	TrackIssue("ERROR")
	TrackIssue("HINT")
	assert.Equal(t, 1.0, metricValue(t, "depscope_issues_total", map[string]string{"severity": "ERROR"}))
	assert.Equal(t, 1.0, metricValue(t, "depscope_issues_total", map[string]string{"severity": "HINT"}))

	TrackProviderRetry("http")
	TrackProviderRetry("http")
	assert.Equal(t, 2.0, metricValue(t, "depscope_provider_retries_total", map[string]string{"provider": "http"}))

	SetPackagesResolved("npm", 42)
	SetPackagesResolved("npm", 7)
	assert.Equal(t, 7.0, metricValue(t, "depscope_packages_resolved", map[string]string{"manager": "npm"}), "gauge takes the last value")
}

func TestMetricsExposition(t *testing.T) {
	// Touch every vector so each family has at least one sample to expose.
	TrackResolution("cargo", true)
	ObserveResolutionDuration("cargo", 0.25)
	TrackCacheHit()
	TrackCurations("postgres", 1)
	TrackIssue("WARNING")
	SetPackagesResolved("cargo", 5)
	TrackProviderRetry("postgres")

	req := httptest.NewRequest("GET", "/metrics", nil)
	w := httptest.NewRecorder()
	promhttp.Handler().ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)
	body := w.Body.String()
	assert.Contains(t, body, "depscope_resolutions_total")
	assert.Contains(t, body, "depscope_resolution_duration_seconds")
	assert.Contains(t, body, "depscope_cache_lookups_total")
	assert.Contains(t, body, "depscope_curations_total")
	assert.Contains(t, body, "depscope_issues_total")
	assert.Contains(t, body, "depscope_packages_resolved")
	assert.Contains(t, body, "depscope_provider_retries_total")
}
