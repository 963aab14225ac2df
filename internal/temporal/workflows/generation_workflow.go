// Package workflows defines the Temporal workflows orchestrating content
// generation and course publishing.
package workflows

import (
	"time"

	"github.com/google/uuid"
	"go.temporal.io/sdk/temporal"
	"go.temporal.io/sdk/workflow"

	"github.com/educoreai-lotus/content-studio/internal/events"
	"github.com/educoreai-lotus/content-studio/internal/generation"
	"github.com/educoreai-lotus/content-studio/internal/temporal/activities"
)

// GenerationWorkflowInput is the input for ContentGenerationWorkflow.
type GenerationWorkflowInput struct {
	// TopicID identifies the topic to generate content for.
	TopicID uuid.UUID `json:"topic_id"`

	// Transcript is the raw source transcript driving generation.
	Transcript string `json:"transcript"`
}

// GenerationWorkflowResult is the result of ContentGenerationWorkflow.
type GenerationWorkflowResult struct {
	// Aggregate is the settled six-key generation outcome.
	Aggregate *generation.Aggregate `json:"aggregate"`
}

// ContentGenerationWorkflow orchestrates one generation run: emit the
// started event, run the fan-out activity, emit the outcome event.
//
// The run activity is not retried as a whole: the fan-out already
// isolates per-format failures inside the aggregate, and re-running it
// would regenerate every format including the successful ones. Lifecycle
// events are fire-and-forget and never fail the workflow.
func ContentGenerationWorkflow(ctx workflow.Context, input GenerationWorkflowInput) (*GenerationWorkflowResult, error) {
	logger := workflow.GetLogger(ctx)
	logger.Info("starting content generation workflow", "topicID", input.TopicID)

	var generationAct *activities.GenerationActivities
	var eventAct *activities.EventActivities

	generationCtx := workflow.WithActivityOptions(ctx, workflow.ActivityOptions{
		// The six format tasks run concurrently under five-minute
		// deadlines plus metadata resolution and persistence.
		StartToCloseTimeout: 10 * time.Minute,
		RetryPolicy: &temporal.RetryPolicy{
			MaximumAttempts: 1,
		},
	})
	eventCtx := workflow.WithActivityOptions(ctx, workflow.ActivityOptions{
		StartToCloseTimeout: 30 * time.Second,
		RetryPolicy: &temporal.RetryPolicy{
			InitialInterval:    time.Second,
			BackoffCoefficient: 2.0,
			MaximumAttempts:    2,
		},
	})

	emitEvent(eventCtx, eventAct, events.Event{
		Type:    events.TopicGenerationStarted,
		TopicID: input.TopicID.String(),
	})

	var aggregate generation.Aggregate
	err := workflow.ExecuteActivity(generationCtx, generationAct.RunGeneration, activities.RunGenerationInput{
		TopicID:    input.TopicID,
		Transcript: input.Transcript,
	}).Get(ctx, &aggregate)
	if err != nil {
		logger.Error("generation run failed", "topicID", input.TopicID, "error", err)
		emitEvent(eventCtx, eventAct, events.Event{
			Type:    events.TopicGenerationFailed,
			TopicID: input.TopicID.String(),
			Payload: map[string]any{"reason": err.Error()},
		})
		return nil, err
	}

	emitEvent(eventCtx, eventAct, events.Event{
		Type:    events.TopicGenerationCompleted,
		TopicID: input.TopicID.String(),
		Payload: map[string]any{
			"continue_generation": aggregate.ContinueGeneration,
		},
	})

	logger.Info("content generation workflow completed",
		"topicID", input.TopicID,
		"continueGeneration", aggregate.ContinueGeneration,
	)
	return &GenerationWorkflowResult{Aggregate: &aggregate}, nil
}

// emitEvent publishes a lifecycle event, logging and swallowing failures.
func emitEvent(ctx workflow.Context, eventAct *activities.EventActivities, event events.Event) {
	if err := workflow.ExecuteActivity(ctx, eventAct.PublishLifecycleEvent, event).Get(ctx, nil); err != nil {
		workflow.GetLogger(ctx).Warn("failed to publish lifecycle event", "eventType", event.Type, "error", err)
	}
}
