// Package metrics exposes Prometheus collectors for the worker list service.
package metrics

import (
	"net/http"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var (
	httpRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "http_requests_total",
			Help: "Total number of HTTP requests, labeled by method and code.",
		},
		[]string{"method", "code"},
	)

	httpRequestDurationSeconds = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "http_request_duration_seconds",
			Help:    "Histogram of HTTP request latencies, labeled by method and route.",
			Buckets: []float64{0.05, 0.1, 0.25, 0.5, 1, 2, 5},
		},
		[]string{"method", "route"},
	)

	upstreamFetchTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "workerlist_upstream_fetch_total",
			Help: "Total number of worker collection fetches, labeled by source and outcome.",
		},
		[]string{"source", "outcome"},
	)

	upstreamFetchDurationSeconds = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "workerlist_upstream_fetch_duration_seconds",
			Help:    "Histogram of worker collection fetch latencies, labeled by source.",
			Buckets: []float64{0.01, 0.05, 0.1, 0.25, 0.5, 1, 2, 5},
		},
		[]string{"source"},
	)

	pageResults = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "workerlist_page_results",
			Help:    "Number of workers rendered per page view, labeled by branch.",
			Buckets: []float64{0, 1, 5, 10, 25, 50, 100},
		},
		[]string{"branch"},
	)
)

// Fetch outcomes recorded by ObserveFetch.
const (
	OutcomeSuccess = "success"
	OutcomeError   = "error"
)

// Handler returns an http.Handler for exposing Prometheus metrics.
func Handler() http.Handler {
	return promhttp.Handler()
}

// ObserveHTTPRequest increments the HTTP request metrics.
func ObserveHTTPRequest(method, route string, code int, duration time.Duration) {
	httpRequestsTotal.WithLabelValues(method, strconv.Itoa(code)).Inc()
	httpRequestDurationSeconds.WithLabelValues(method, route).Observe(duration.Seconds())
}

// ObserveFetch records one worker collection fetch.
func ObserveFetch(source string, err error, duration time.Duration) {
	outcome := OutcomeSuccess
	if err != nil {
		outcome = OutcomeError
	}
	upstreamFetchTotal.WithLabelValues(source, outcome).Inc()
	upstreamFetchDurationSeconds.WithLabelValues(source).Observe(duration.Seconds())
}

// ObservePage records the result count of a rendered page.
func ObservePage(branch string, count int) {
	pageResults.WithLabelValues(branch).Observe(float64(count))
}
