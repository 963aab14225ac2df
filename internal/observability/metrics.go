package observability

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics contains all Prometheus metrics for the Content Studio service.
// Metrics are organized by subsystem: generation runs, per-format tasks,
// persistence, validation, publishing, and storage cleanup. All counters and
// histograms are registered via promauto for automatic registration with the
// default Prometheus registry.
type Metrics struct {
	// GenerationRunsStarted counts the total number of generation runs initiated.
	GenerationRunsStarted prometheus.Counter

	// GenerationRunsCompleted counts generation runs that finished with all tasks settled.
	GenerationRunsCompleted prometheus.Counter

	// GenerationRunsFailed counts generation runs that ended in failure before settling.
	GenerationRunsFailed prometheus.Counter

	// GenerationRunDuration observes the end-to-end duration of generation runs in seconds.
	GenerationRunDuration prometheus.Histogram

	// FormatTasksStarted counts per-format generation tasks, labeled by content format.
	FormatTasksStarted *prometheus.CounterVec

	// FormatTasksCompleted counts successful per-format tasks, labeled by content format.
	FormatTasksCompleted *prometheus.CounterVec

	// FormatTasksFailed counts failed per-format tasks, labeled by content format and error type.
	FormatTasksFailed *prometheus.CounterVec

	// FormatTaskDuration observes per-format task duration in seconds, labeled by content format.
	FormatTaskDuration *prometheus.HistogramVec

	// ContentPersisted counts content rows written, labeled by content format.
	ContentPersisted *prometheus.CounterVec

	// PersistenceFailed counts content persistence failures, labeled by content format.
	PersistenceFailed *prometheus.CounterVec

	// RollbacksAttempted counts compensating blob deletions attempted after a persistence failure.
	RollbacksAttempted prometheus.Counter

	// RollbacksFailed counts compensating blob deletions that themselves failed.
	RollbacksFailed prometheus.Counter

	// ValidationRuns counts publication-readiness validation runs.
	ValidationRuns prometheus.Counter

	// ValidationIssues counts validation findings, labeled by issue kind.
	ValidationIssues *prometheus.CounterVec

	// PublishAttempts counts course publish attempts.
	PublishAttempts prometheus.Counter

	// PublishSucceeded counts course publishes where the handoff succeeded.
	PublishSucceeded prometheus.Counter

	// PublishFailed counts course publishes where the handoff failed.
	PublishFailed prometheus.Counter

	// PublishDuration observes publish handoff duration in seconds.
	PublishDuration prometheus.Histogram

	// CleanupRunsStarted counts archive cleanup runs initiated.
	CleanupRunsStarted prometheus.Counter

	// CleanupBlobsDeleted counts blobs removed during archive cleanup.
	CleanupBlobsDeleted prometheus.Counter

	// CleanupBlobsFailed counts blob deletions that failed during archive cleanup.
	CleanupBlobsFailed prometheus.Counter

	// StorageRequestsTotal counts object storage requests, labeled by operation and bucket.
	StorageRequestsTotal *prometheus.CounterVec

	// StorageRequestsFailed counts failed object storage requests, labeled by operation and bucket.
	StorageRequestsFailed *prometheus.CounterVec

	// StorageRequestDuration observes object storage request duration in seconds.
	StorageRequestDuration *prometheus.HistogramVec

	// AIRequestsTotal counts AI collaborator requests, labeled by operation.
	AIRequestsTotal *prometheus.CounterVec

	// AIRequestsFailed counts failed AI collaborator requests, labeled by operation and error type.
	AIRequestsFailed *prometheus.CounterVec

	// AIRequestDuration observes AI collaborator request duration in seconds, labeled by operation.
	AIRequestDuration *prometheus.HistogramVec

	// AIRateLimited counts rate-limiter waits before AI collaborator calls.
	AIRateLimited prometheus.Counter
}

// NewMetrics creates a new Metrics instance with all metrics initialized.
// The namespace is used as a prefix for all metric names.
func NewMetrics(namespace string) *Metrics {
	return &Metrics{
		// Generation runs
		GenerationRunsStarted: promauto.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "generation_runs_started_total",
			Help:      "Total number of content generation runs started",
		}),
		GenerationRunsCompleted: promauto.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "generation_runs_completed_total",
			Help:      "Total number of content generation runs completed",
		}),
		GenerationRunsFailed: promauto.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "generation_runs_failed_total",
			Help:      "Total number of content generation runs that failed",
		}),
		GenerationRunDuration: promauto.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "generation_run_duration_seconds",
			Help:      "Duration of content generation runs in seconds",
			Buckets:   []float64{1, 5, 10, 30, 60, 120, 300, 600, 1200},
		}),

		// Per-format tasks
		FormatTasksStarted: promauto.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "format_tasks_started_total",
			Help:      "Total number of per-format generation tasks started by format",
		}, []string{"format"}),
		FormatTasksCompleted: promauto.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "format_tasks_completed_total",
			Help:      "Total number of per-format generation tasks completed by format",
		}, []string{"format"}),
		FormatTasksFailed: promauto.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "format_tasks_failed_total",
			Help:      "Total number of per-format generation tasks that failed by format",
		}, []string{"format", "error_type"}),
		FormatTaskDuration: promauto.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "format_task_duration_seconds",
			Help:      "Duration of per-format generation tasks in seconds by format",
			Buckets:   []float64{0.5, 1, 5, 15, 30, 60, 120, 300},
		}, []string{"format"}),

		// Persistence
		ContentPersisted: promauto.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "content_persisted_total",
			Help:      "Total number of content rows persisted by format",
		}, []string{"format"}),
		PersistenceFailed: promauto.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "persistence_failed_total",
			Help:      "Total number of content persistence failures by format",
		}, []string{"format"}),
		RollbacksAttempted: promauto.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "rollbacks_attempted_total",
			Help:      "Total number of compensating blob deletions attempted",
		}),
		RollbacksFailed: promauto.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "rollbacks_failed_total",
			Help:      "Total number of compensating blob deletions that failed",
		}),

		// Validation
		ValidationRuns: promauto.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "validation_runs_total",
			Help:      "Total number of publication readiness validation runs",
		}),
		ValidationIssues: promauto.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "validation_issues_total",
			Help:      "Total number of validation issues found by kind",
		}, []string{"kind"}),

		// Publishing
		PublishAttempts: promauto.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "publish_attempts_total",
			Help:      "Total number of course publish attempts",
		}),
		PublishSucceeded: promauto.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "publish_succeeded_total",
			Help:      "Total number of course publishes that succeeded",
		}),
		PublishFailed: promauto.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "publish_failed_total",
			Help:      "Total number of course publishes that failed",
		}),
		PublishDuration: promauto.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "publish_duration_seconds",
			Help:      "Duration of course publish handoffs in seconds",
			Buckets:   []float64{0.1, 0.5, 1, 2, 5, 10, 30, 60, 120},
		}),

		// Archive cleanup
		CleanupRunsStarted: promauto.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "cleanup_runs_started_total",
			Help:      "Total number of archive cleanup runs started",
		}),
		CleanupBlobsDeleted: promauto.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "cleanup_blobs_deleted_total",
			Help:      "Total number of blobs deleted during archive cleanup",
		}),
		CleanupBlobsFailed: promauto.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "cleanup_blobs_failed_total",
			Help:      "Total number of blob deletions that failed during archive cleanup",
		}),

		// Object storage
		StorageRequestsTotal: promauto.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "storage_requests_total",
			Help:      "Total number of object storage requests",
		}, []string{"operation", "bucket"}),
		StorageRequestsFailed: promauto.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "storage_requests_failed_total",
			Help:      "Total number of failed object storage requests",
		}, []string{"operation", "bucket"}),
		StorageRequestDuration: promauto.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "storage_request_duration_seconds",
			Help:      "Duration of object storage requests in seconds",
			Buckets:   []float64{0.01, 0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10},
		}, []string{"operation", "bucket"}),

		// AI collaborators
		AIRequestsTotal: promauto.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "ai_requests_total",
			Help:      "Total number of AI collaborator requests by operation",
		}, []string{"operation"}),
		AIRequestsFailed: promauto.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "ai_requests_failed_total",
			Help:      "Total number of failed AI collaborator requests by operation",
		}, []string{"operation", "error_type"}),
		AIRequestDuration: promauto.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "ai_request_duration_seconds",
			Help:      "Duration of AI collaborator requests in seconds",
			Buckets:   []float64{0.1, 0.5, 1, 2, 5, 10, 30, 60, 120, 300},
		}, []string{"operation"}),
		AIRateLimited: promauto.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "ai_rate_limited_total",
			Help:      "Total number of rate limiter waits before AI collaborator calls",
		}),
	}
}

// RecordGenerationRunStarted records that a generation run has started.
func (m *Metrics) RecordGenerationRunStarted() {
	m.GenerationRunsStarted.Inc()
}

// RecordGenerationRunCompleted records that a generation run has completed.
func (m *Metrics) RecordGenerationRunCompleted(durationSeconds float64) {
	m.GenerationRunsCompleted.Inc()
	m.GenerationRunDuration.Observe(durationSeconds)
}

// RecordGenerationRunFailed records that a generation run has failed.
func (m *Metrics) RecordGenerationRunFailed(durationSeconds float64) {
	m.GenerationRunsFailed.Inc()
	m.GenerationRunDuration.Observe(durationSeconds)
}

// RecordFormatTaskStarted records that a per-format task has started.
func (m *Metrics) RecordFormatTaskStarted(format string) {
	m.FormatTasksStarted.WithLabelValues(format).Inc()
}

// RecordFormatTaskCompleted records that a per-format task has completed.
func (m *Metrics) RecordFormatTaskCompleted(format string, durationSeconds float64) {
	m.FormatTasksCompleted.WithLabelValues(format).Inc()
	m.FormatTaskDuration.WithLabelValues(format).Observe(durationSeconds)
}

// RecordFormatTaskFailed records that a per-format task has failed.
func (m *Metrics) RecordFormatTaskFailed(format, errorType string, durationSeconds float64) {
	m.FormatTasksFailed.WithLabelValues(format, errorType).Inc()
	m.FormatTaskDuration.WithLabelValues(format).Observe(durationSeconds)
}

// RecordContentPersisted records a content row written for a format.
func (m *Metrics) RecordContentPersisted(format string) {
	m.ContentPersisted.WithLabelValues(format).Inc()
}

// RecordPersistenceFailed records a persistence failure for a format.
func (m *Metrics) RecordPersistenceFailed(format string) {
	m.PersistenceFailed.WithLabelValues(format).Inc()
}

// RecordRollbackAttempted records a compensating blob deletion attempt.
func (m *Metrics) RecordRollbackAttempted() {
	m.RollbacksAttempted.Inc()
}

// RecordRollbackFailed records a compensating blob deletion that failed.
func (m *Metrics) RecordRollbackFailed() {
	m.RollbacksFailed.Inc()
}

// RecordValidationRun records a validation run and its findings.
func (m *Metrics) RecordValidationRun(issueKinds []string) {
	m.ValidationRuns.Inc()
	for _, kind := range issueKinds {
		m.ValidationIssues.WithLabelValues(kind).Inc()
	}
}

// RecordPublishAttempt records a publish attempt.
func (m *Metrics) RecordPublishAttempt() {
	m.PublishAttempts.Inc()
}

// RecordPublishSucceeded records a successful publish handoff.
func (m *Metrics) RecordPublishSucceeded(durationSeconds float64) {
	m.PublishSucceeded.Inc()
	m.PublishDuration.Observe(durationSeconds)
}

// RecordPublishFailed records a failed publish handoff.
func (m *Metrics) RecordPublishFailed(durationSeconds float64) {
	m.PublishFailed.Inc()
	m.PublishDuration.Observe(durationSeconds)
}

// RecordCleanupRunStarted records that an archive cleanup run has started.
func (m *Metrics) RecordCleanupRunStarted() {
	m.CleanupRunsStarted.Inc()
}

// RecordCleanupBlobDeleted records a blob removed during archive cleanup.
func (m *Metrics) RecordCleanupBlobDeleted() {
	m.CleanupBlobsDeleted.Inc()
}

// RecordCleanupBlobFailed records a blob deletion that failed during archive cleanup.
func (m *Metrics) RecordCleanupBlobFailed() {
	m.CleanupBlobsFailed.Inc()
}

// RecordStorageRequest records an object storage request.
func (m *Metrics) RecordStorageRequest(operation, bucket string, durationSeconds float64) {
	m.StorageRequestsTotal.WithLabelValues(operation, bucket).Inc()
	m.StorageRequestDuration.WithLabelValues(operation, bucket).Observe(durationSeconds)
}

// RecordStorageRequestFailed records a failed object storage request.
func (m *Metrics) RecordStorageRequestFailed(operation, bucket string) {
	m.StorageRequestsFailed.WithLabelValues(operation, bucket).Inc()
}

// RecordAIRequest records an AI collaborator request.
func (m *Metrics) RecordAIRequest(operation string, durationSeconds float64) {
	m.AIRequestsTotal.WithLabelValues(operation).Inc()
	m.AIRequestDuration.WithLabelValues(operation).Observe(durationSeconds)
}

// RecordAIRequestFailed records a failed AI collaborator request.
func (m *Metrics) RecordAIRequestFailed(operation, errorType string) {
	m.AIRequestsFailed.WithLabelValues(operation, errorType).Inc()
}

// RecordAIRateLimited records a rate limiter wait before an AI collaborator call.
func (m *Metrics) RecordAIRateLimited() {
	m.AIRateLimited.Inc()
}
