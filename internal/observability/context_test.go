package observability

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestRequestIDContext(t *testing.T) {
	t.Run("stores and retrieves request ID", func(t *testing.T) {
		ctx := context.Background()
		ctx = WithRequestID(ctx, "req-123")

		result := RequestIDFromContext(ctx)
		assert.Equal(t, "req-123", result)
	})

	t.Run("returns empty string when not set", func(t *testing.T) {
		ctx := context.Background()
		result := RequestIDFromContext(ctx)
		assert.Equal(t, "", result)
	})
}

func TestTopicCourseContext(t *testing.T) {
	t.Run("stores and retrieves topic and course IDs", func(t *testing.T) {
		ctx := context.Background()
		ctx = WithTopicCourse(ctx, "topic-456", "course-789")

		topicID, courseID := TopicCourseFromContext(ctx)
		assert.Equal(t, "topic-456", topicID)
		assert.Equal(t, "course-789", courseID)
	})

	t.Run("returns empty strings when not set", func(t *testing.T) {
		ctx := context.Background()
		topicID, courseID := TopicCourseFromContext(ctx)
		assert.Equal(t, "", topicID)
		assert.Equal(t, "", courseID)
	})

	t.Run("handles partial values", func(t *testing.T) {
		ctx := context.Background()
		ctx = WithTopicCourse(ctx, "topic-only", "")

		topicID, courseID := TopicCourseFromContext(ctx)
		assert.Equal(t, "topic-only", topicID)
		assert.Equal(t, "", courseID)
	})
}

func TestWorkflowContext(t *testing.T) {
	t.Run("stores and retrieves workflow and run IDs", func(t *testing.T) {
		ctx := context.Background()
		ctx = WithWorkflow(ctx, "wf-123", "run-456")

		workflowID, runID := WorkflowFromContext(ctx)
		assert.Equal(t, "wf-123", workflowID)
		assert.Equal(t, "run-456", runID)
	})

	t.Run("returns empty strings when not set", func(t *testing.T) {
		ctx := context.Background()
		workflowID, runID := WorkflowFromContext(ctx)
		assert.Equal(t, "", workflowID)
		assert.Equal(t, "", runID)
	})
}

func TestGenerationContextFull(t *testing.T) {
	t.Run("stores and retrieves full generation context", func(t *testing.T) {
		ctx := context.Background()
		gc := GenerationContext{
			RequestID:  "req-123",
			TopicID:    "topic-456",
			CourseID:   "course-789",
			WorkflowID: "wf-123",
			RunID:      "run-456",
		}

		ctx = WithGenerationContext(ctx, gc)
		result := GenerationContextFromContext(ctx)

		assert.Equal(t, gc.RequestID, result.RequestID)
		assert.Equal(t, gc.TopicID, result.TopicID)
		assert.Equal(t, gc.CourseID, result.CourseID)
		assert.Equal(t, gc.WorkflowID, result.WorkflowID)
		assert.Equal(t, gc.RunID, result.RunID)
	})

	t.Run("handles partial context", func(t *testing.T) {
		ctx := context.Background()
		gc := GenerationContext{
			RequestID: "req-only",
		}

		ctx = WithGenerationContext(ctx, gc)
		result := GenerationContextFromContext(ctx)

		assert.Equal(t, "req-only", result.RequestID)
		assert.Equal(t, "", result.TopicID)
		assert.Equal(t, "", result.CourseID)
	})

	t.Run("returns empty context when nothing set", func(t *testing.T) {
		ctx := context.Background()
		result := GenerationContextFromContext(ctx)

		assert.Equal(t, GenerationContext{}, result)
	})
}

func TestContextChaining(t *testing.T) {
	ctx := context.Background()

	// Chain multiple context additions
	ctx = WithRequestID(ctx, "req-1")
	ctx = WithTopicCourse(ctx, "topic-1", "course-1")
	ctx = WithWorkflow(ctx, "wf-1", "run-1")

	// All values should be retrievable
	assert.Equal(t, "req-1", RequestIDFromContext(ctx))

	topicID, courseID := TopicCourseFromContext(ctx)
	assert.Equal(t, "topic-1", topicID)
	assert.Equal(t, "course-1", courseID)

	workflowID, runID := WorkflowFromContext(ctx)
	assert.Equal(t, "wf-1", workflowID)
	assert.Equal(t, "run-1", runID)
}

func TestContextOverwrite(t *testing.T) {
	ctx := context.Background()

	// Set initial values
	ctx = WithRequestID(ctx, "req-1")

	// Overwrite with new values
	ctx = WithRequestID(ctx, "req-2")

	// Should have new value
	assert.Equal(t, "req-2", RequestIDFromContext(ctx))
}
