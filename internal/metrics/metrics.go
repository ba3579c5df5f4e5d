// Gantry - Machine Learning Resource and Artifact Management
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/gantry

package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Prometheus instrumentation for:
// - Prediction latency and outcomes
// - Train and retest runs
// - Resource fetch/store operations and per-resource cache efficiency
// - Artifact store dumps, loads and backups
// - API endpoint latency and throughput

var (
	// Prediction Metrics
	PredictionsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "prediction_requests_total",
			Help: "Total number of prediction requests",
		},
		[]string{"status"}, // "success", "error"
	)

	PredictionDuration = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "prediction_duration_seconds",
			Help:    "Duration of prediction calls in seconds",
			Buckets: []float64{0.001, 0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1, 2.5, 5},
		},
	)

	// Train / Retest Metrics
	TrainRunsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "model_train_runs_total",
			Help: "Total number of model training runs",
		},
		[]string{"status"},
	)

	TrainDuration = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "model_train_duration_seconds",
			Help:    "Duration of model training runs in seconds",
			Buckets: []float64{1, 5, 10, 30, 60, 300, 900, 3600}, // Training can take minutes to hours
		},
	)

	RetestRunsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "model_retest_runs_total",
			Help: "Total number of model re-test runs",
		},
		[]string{"status"},
	)

	RetestDuration = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "model_retest_duration_seconds",
			Help:    "Duration of model re-test runs in seconds",
			Buckets: []float64{0.1, 0.5, 1, 5, 10, 30, 60, 300},
		},
	)

	// Resource Metrics
	ResourceOperationDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "resource_operation_duration_seconds",
			Help:    "Duration of resource get/put operations in seconds",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"resource", "operation"}, // operation: "get_table", "get_raw", "put_table", "put_raw"
	)

	ResourceOperationErrors = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "resource_operation_errors_total",
			Help: "Total number of failed resource operations",
		},
		[]string{"resource", "operation"},
	)

	// Per-resource Cache Metrics
	CacheHits = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "resource_cache_hits_total",
			Help: "Total number of resource cache hits",
		},
		[]string{"resource"},
	)

	CacheMisses = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "resource_cache_misses_total",
			Help: "Total number of resource cache misses",
		},
		[]string{"resource"},
	)

	CacheEntries = promauto.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "resource_cache_entries",
			Help: "Current number of cached entries per resource",
		},
		[]string{"resource"},
	)

	// Artifact Store Metrics
	ArtifactDumpsTotal = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "artifact_dumps_total",
			Help: "Total number of trained model artifacts written",
		},
	)

	ArtifactLoadsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "artifact_loads_total",
			Help: "Total number of trained model artifact loads",
		},
		[]string{"status"}, // "success", "not_found", "corrupt"
	)

	ArtifactBackupsTotal = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "artifact_backups_total",
			Help: "Total number of artifact backups rotated to previous/",
		},
	)

	ArtifactSizeBytes = promauto.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "artifact_size_bytes",
			Help: "Size of the last written artifact payload in bytes",
		},
		[]string{"model", "version"},
	)

	// API Endpoint Metrics
	APIRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "api_requests_total",
			Help: "Total number of API requests",
		},
		[]string{"method", "endpoint", "status_code"},
	)

	APIRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "api_request_duration_seconds",
			Help:    "API request duration in seconds",
			Buckets: []float64{0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10},
		},
		[]string{"method", "endpoint"},
	)

	APIActiveRequests = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "api_active_requests",
			Help: "Current number of active API requests",
		},
	)
)

// statusOf maps an operation error to a metric status label.
func statusOf(err error) string {
	if err != nil {
		return "error"
	}
	return "success"
}

// RecordPrediction records one prediction call.
func RecordPrediction(duration time.Duration, err error) {
	PredictionsTotal.WithLabelValues(statusOf(err)).Inc()
	PredictionDuration.Observe(duration.Seconds())
}

// RecordTrain records one training run.
func RecordTrain(duration time.Duration, err error) {
	TrainRunsTotal.WithLabelValues(statusOf(err)).Inc()
	TrainDuration.Observe(duration.Seconds())
}

// RecordRetest records one re-test run.
func RecordRetest(duration time.Duration, err error) {
	RetestRunsTotal.WithLabelValues(statusOf(err)).Inc()
	RetestDuration.Observe(duration.Seconds())
}

// RecordResourceOperation records one resource get/put.
func RecordResourceOperation(resource, operation string, duration time.Duration, err error) {
	ResourceOperationDuration.WithLabelValues(resource, operation).Observe(duration.Seconds())
	if err != nil {
		ResourceOperationErrors.WithLabelValues(resource, operation).Inc()
	}
}

// RecordCacheHit records a cache hit for the named resource.
func RecordCacheHit(resource string) {
	CacheHits.WithLabelValues(resource).Inc()
}

// RecordCacheMiss records a cache miss for the named resource.
func RecordCacheMiss(resource string) {
	CacheMisses.WithLabelValues(resource).Inc()
}

// SetCacheEntries updates the entry gauge for the named resource.
func SetCacheEntries(resource string, n int) {
	CacheEntries.WithLabelValues(resource).Set(float64(n))
}

// RecordArtifactDump records a successful artifact write.
func RecordArtifactDump(model, version string, sizeBytes int) {
	ArtifactDumpsTotal.Inc()
	ArtifactSizeBytes.WithLabelValues(model, version).Set(float64(sizeBytes))
}

// RecordArtifactLoad records an artifact load outcome.
// Status is one of "success", "not_found", "corrupt" or "error".
func RecordArtifactLoad(status string) {
	ArtifactLoadsTotal.WithLabelValues(status).Inc()
}

// RecordArtifactBackup records one backup rotation.
func RecordArtifactBackup() {
	ArtifactBackupsTotal.Inc()
}

// RecordAPIRequest records an API request metric
func RecordAPIRequest(method, endpoint, statusCode string, duration time.Duration) {
	APIRequestsTotal.WithLabelValues(method, endpoint, statusCode).Inc()
	APIRequestDuration.WithLabelValues(method, endpoint).Observe(duration.Seconds())
}

// TrackActiveRequest tracks active API requests
func TrackActiveRequest(inc bool) {
	if inc {
		APIActiveRequests.Inc()
	} else {
		APIActiveRequests.Dec()
	}
}
