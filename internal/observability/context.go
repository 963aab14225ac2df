package observability

import (
	"context"
)

// Context keys for observability data.
type contextKey string

const (
	requestIDKey  contextKey = "request_id"
	topicIDKey    contextKey = "topic_id"
	courseIDKey   contextKey = "course_id"
	workflowIDKey contextKey = "workflow_id"
	runIDKey      contextKey = "workflow_run_id"
)

// WithRequestID adds a request ID to the context.
func WithRequestID(ctx context.Context, requestID string) context.Context {
	return context.WithValue(ctx, requestIDKey, requestID)
}

// RequestIDFromContext retrieves the request ID from context.
// Returns empty string if not present.
func RequestIDFromContext(ctx context.Context) string {
	if v := ctx.Value(requestIDKey); v != nil {
		if id, ok := v.(string); ok {
			return id
		}
	}
	return ""
}

// WithTopicCourse adds topic and course IDs to the context.
func WithTopicCourse(ctx context.Context, topicID, courseID string) context.Context {
	ctx = context.WithValue(ctx, topicIDKey, topicID)
	ctx = context.WithValue(ctx, courseIDKey, courseID)
	return ctx
}

// TopicCourseFromContext retrieves topic and course IDs from context.
// Returns empty strings if not present.
func TopicCourseFromContext(ctx context.Context) (topicID, courseID string) {
	if v := ctx.Value(topicIDKey); v != nil {
		if id, ok := v.(string); ok {
			topicID = id
		}
	}
	if v := ctx.Value(courseIDKey); v != nil {
		if id, ok := v.(string); ok {
			courseID = id
		}
	}
	return topicID, courseID
}

// WithWorkflow adds workflow ID and run ID to the context.
func WithWorkflow(ctx context.Context, workflowID, runID string) context.Context {
	ctx = context.WithValue(ctx, workflowIDKey, workflowID)
	ctx = context.WithValue(ctx, runIDKey, runID)
	return ctx
}

// WorkflowFromContext retrieves workflow ID and run ID from context.
// Returns empty strings if not present.
func WorkflowFromContext(ctx context.Context) (workflowID, runID string) {
	if v := ctx.Value(workflowIDKey); v != nil {
		if id, ok := v.(string); ok {
			workflowID = id
		}
	}
	if v := ctx.Value(runIDKey); v != nil {
		if id, ok := v.(string); ok {
			runID = id
		}
	}
	return workflowID, runID
}

// GenerationContext contains all the context data for a generation run.
type GenerationContext struct {
	RequestID  string
	TopicID    string
	CourseID   string
	WorkflowID string
	RunID      string
}

// WithGenerationContext adds all generation run context to the context.
func WithGenerationContext(ctx context.Context, gc GenerationContext) context.Context {
	if gc.RequestID != "" {
		ctx = WithRequestID(ctx, gc.RequestID)
	}
	if gc.TopicID != "" || gc.CourseID != "" {
		ctx = WithTopicCourse(ctx, gc.TopicID, gc.CourseID)
	}
	if gc.WorkflowID != "" || gc.RunID != "" {
		ctx = WithWorkflow(ctx, gc.WorkflowID, gc.RunID)
	}
	return ctx
}

// GenerationContextFromContext extracts all generation run context from the context.
func GenerationContextFromContext(ctx context.Context) GenerationContext {
	topicID, courseID := TopicCourseFromContext(ctx)
	workflowID, runID := WorkflowFromContext(ctx)

	return GenerationContext{
		RequestID:  RequestIDFromContext(ctx),
		TopicID:    topicID,
		CourseID:   courseID,
		WorkflowID: workflowID,
		RunID:      runID,
	}
}
