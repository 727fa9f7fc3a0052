package metrics

import (
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const namespace = "report_service"

var (
	reportQueriesTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "report_queries_total",
			Help:      "Total number of report store queries",
		},
		[]string{"report", "status"}, // ok, error
	)

	reportQueryDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "report_query_duration_seconds",
			Help:      "Report store query duration in seconds",
			Buckets:   []float64{0.001, 0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10},
		},
		[]string{"report"},
	)

	reportRows = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "report_rows",
			Help:      "Number of rows returned per report",
			Buckets:   prometheus.ExponentialBuckets(1, 4, 8),
		},
		[]string{"report"},
	)

	reportCacheTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "report_cache_total",
			Help:      "Report cache lookups",
		},
		[]string{"result"}, // hit, miss, error
	)

	dependencyHealth = promauto.NewGaugeVec(
		prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "dependency_health",
			Help:      "Health status of dependencies (1 = healthy, 0 = unhealthy)",
		},
		[]string{"dependency"},
	)
)

// RecordReportQuery records one store round trip for a report.
func RecordReportQuery(report string, d time.Duration, rows int, err error) {
	status := "ok"
	if err != nil {
		status = "error"
	}
	reportQueriesTotal.WithLabelValues(report, status).Inc()
	reportQueryDuration.WithLabelValues(report).Observe(d.Seconds())
	if err == nil {
		reportRows.WithLabelValues(report).Observe(float64(rows))
	}
}

func RecordCacheHit()   { reportCacheTotal.WithLabelValues("hit").Inc() }
func RecordCacheMiss()  { reportCacheTotal.WithLabelValues("miss").Inc() }
func RecordCacheError() { reportCacheTotal.WithLabelValues("error").Inc() }

// SetDependencyHealth sets the health status of a dependency
func SetDependencyHealth(dependency string, healthy bool) {
	value := 0.0
	if healthy {
		value = 1.0
	}
	dependencyHealth.WithLabelValues(dependency).Set(value)
}

// Handler returns the Prometheus metrics handler
func Handler() http.Handler {
	return promhttp.Handler()
}
