package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var (
	// RequestsTotal counts HTTP requests by method, route pattern and status.
	RequestsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "fittrack_http_requests_total",
		Help: "HTTP requests processed, partitioned by method, route and status code.",
	}, []string{"method", "route", "status"})

	// RequestDuration observes request latency by method and route pattern.
	RequestDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "fittrack_http_request_duration_seconds",
		Help:    "HTTP request latency.",
		Buckets: prometheus.DefBuckets,
	}, []string{"method", "route"})

	// RecomputesTotal counts current-value recomputations by outcome.
	RecomputesTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "fittrack_goal_recomputes_total",
		Help: "Goal current-value recomputations, partitioned by outcome.",
	}, []string{"outcome"})
)

// Handler serves the Prometheus scrape endpoint.
func Handler() http.Handler {
	return promhttp.Handler()
}
