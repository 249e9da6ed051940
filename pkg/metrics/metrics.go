// Package metrics documents the Prometheus metrics of rotacio-diff and pushes
// them at the end of a run.
// Metrics are defined in their respective packages (arcgis, cache, pagination)
// and registered on the default registry via promauto.
package metrics

import (
	"fmt"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/push"
)

// JobName is the Pushgateway job label.
const JobName = "rotacio_diff"

// Registry is the registry every package registers on.
var Registry = prometheus.DefaultRegisterer

// Gatherer collects what Push sends.
var Gatherer = prometheus.DefaultGatherer

// Differences records the number of differing records found by the last run.
var Differences = prometheus.NewGauge(prometheus.GaugeOpts{
	Name: "rotacio_differences",
	Help: "Number of records whose rotacio differs between pre and dev",
})

func init() {
	Registry.MustRegister(Differences)
}

// Push sends every registered metric to the Pushgateway at url.
// The instance label distinguishes runs against different layers.
func Push(url, instance string) error {
	pusher := push.New(url, JobName).Gatherer(Gatherer)
	if instance != "" {
		pusher = pusher.Grouping("instance", instance)
	}
	if err := pusher.Push(); err != nil {
		return fmt.Errorf("push metrics to %s: %w", url, err)
	}
	return nil
}

// Metrics Documentation
//
// Request Metrics (pkg/arcgis):
//   - arcgis_requests_total{operation, status} (Counter): Requests by operation and status
//   - arcgis_request_duration_seconds{operation} (Histogram): Request duration by operation
//   - arcgis_errors_total{class} (Counter): Errors by class (client, server, auth, network)
//
// Token Cache Metrics (pkg/cache):
//   - arcgis_token_cache_hits_total (Counter): Cached tokens reused
//   - arcgis_token_cache_misses_total (Counter): Logins without a usable cached token
//   - arcgis_token_cache_errors_total{operation} (Counter): Cache operation errors
//
// Fetch Metrics (pkg/pagination):
//   - arcgis_pages_fetched_total (Counter): Query pages received
//   - arcgis_records_fetched_total (Counter): Records accumulated
//
// Comparison Metrics (pkg/metrics):
//   - rotacio_differences (Gauge): Differing records in the last run
//
// Example Prometheus Queries:
//
//   # Drift between environments over time
//   rotacio_differences{job="rotacio_diff"}
//
//   # Token errors
//   arcgis_errors_total{class="auth"}
