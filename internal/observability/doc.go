// Package observability provides logging and metrics support for the Content
// Studio service.
//
// # Overview
//
// The observability package provides:
//
//   - Structured logging with zerolog
//   - Prometheus metrics for generation runs, persistence, validation, and publishing
//   - Context helpers for propagating observability data
//
// # Logging
//
// Create a logger from configuration:
//
//	cfg := observability.LoggingConfig{
//	    Level:     "info",
//	    Format:    "json",
//	    Output:    "stdout",
//	    AddSource: true,
//	}
//
//	logger := observability.NewLogger(cfg)
//	logger.Info().Str("topic_id", topicID).Msg("generation started")
//
// Add topic context to logger:
//
//	logger = observability.WithTopicContext(logger, topicID, courseID)
//
// # Metrics
//
// Initialize metrics:
//
//	metrics := observability.NewMetrics("content_studio")
//
// Record metrics:
//
//	metrics.RecordGenerationRunStarted()
//	metrics.RecordFormatTaskCompleted("mind_map", 12.4)
//	metrics.RecordContentPersisted("slides")
//
// # Context Helpers
//
// Store and retrieve request context:
//
//	ctx = observability.WithRequestID(ctx, requestID)
//	ctx = observability.WithTopicCourse(ctx, topicID, courseID)
//
//	reqID := observability.RequestIDFromContext(ctx)
//	topicID, courseID := observability.TopicCourseFromContext(ctx)
//
// # Standard Fields
//
// Common fields used across the service:
//
//   - request_id: HTTP request identifier
//   - topic_id: Topic identifier
//   - course_id: Course identifier
//   - content_format: Content format (text, code, presentation, audio, mind_map, avatar_video)
//   - workflow_id: Temporal workflow identifier
//
// # Thread Safety
//
// All components are safe for concurrent use from multiple goroutines.
package observability
