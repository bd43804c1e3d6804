package metrics

import (
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var (
	// HTTP request metrics
	RequestsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "projecthub_http_requests_total",
			Help: "Total number of HTTP requests",
		},
		[]string{"route", "method", "status"},
	)

	RequestDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "projecthub_http_request_duration_seconds",
			Help:    "HTTP request duration in seconds",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"route", "method"},
	)

	// Object storage calls, labelled by operation (upload, delete) and result (ok, error)
	StorageOperations = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "projecthub_storage_operations_total",
			Help: "Total number of object storage operations",
		},
		[]string{"operation", "result"},
	)

	// Domain metrics
	ProjectsMutated = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "projecthub_projects_mutated_total",
			Help: "Projects created, updated or deleted",
		},
		[]string{"action"},
	)
)

func init() {
	prometheus.MustRegister(
		RequestsTotal,
		RequestDuration,
		StorageOperations,
		ProjectsMutated,
	)
}

// Handler serves the default registry.
func Handler() http.Handler {
	return promhttp.Handler()
}

// RecordRequest records one served HTTP request.
func RecordRequest(route, method, status string, duration time.Duration) {
	RequestsTotal.WithLabelValues(route, method, status).Inc()
	RequestDuration.WithLabelValues(route, method).Observe(duration.Seconds())
}

// RecordStorage counts one storage call.
func RecordStorage(operation string, err error) {
	result := "ok"
	if err != nil {
		result = "error"
	}
	StorageOperations.WithLabelValues(operation, result).Inc()
}
