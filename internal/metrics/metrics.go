package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// Mutation commands accepted by the entity store.
	MutationCount = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "tracker_mutations_total",
			Help: "Total number of entity mutations",
		},
		[]string{"entity", "op"},
	)

	// Snapshot commits, labeled by outcome.
	SnapshotSaveCount = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "tracker_snapshot_saves_total",
			Help: "Total number of snapshot save attempts",
		},
		[]string{"status"},
	)

	SnapshotSaveDuration = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "tracker_snapshot_save_duration_seconds",
			Help:    "Snapshot save duration in seconds",
			Buckets: prometheus.ExponentialBuckets(0.001, 2, 12),
		},
	)

	HTTPRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "tracker_http_request_duration_seconds",
			Help:    "HTTP request duration in seconds",
			Buckets: prometheus.ExponentialBuckets(0.001, 2, 12),
		},
		[]string{"method", "path", "status"},
	)
)

// IncrementMutation counts one accepted mutation command.
func IncrementMutation(entity, op string) {
	MutationCount.WithLabelValues(entity, op).Inc()
}

// RecordSnapshotSave counts a snapshot commit attempt and its duration.
func RecordSnapshotSave(duration time.Duration, ok bool) {
	status := "ok"
	if !ok {
		status = "failed"
	}
	SnapshotSaveCount.WithLabelValues(status).Inc()
	SnapshotSaveDuration.Observe(duration.Seconds())
}

// RecordHTTPRequest records one served request.
func RecordHTTPRequest(method, path, status string, duration time.Duration) {
	HTTPRequestDuration.WithLabelValues(method, path, status).Observe(duration.Seconds())
}
