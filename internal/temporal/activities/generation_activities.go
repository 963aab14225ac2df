// Package activities implements the Temporal activities backing the
// content generation and course publish workflows. Each activity struct
// holds its injected collaborators and is registered with the worker.
package activities

import (
	"context"

	"github.com/google/uuid"
	"go.temporal.io/sdk/activity"

	"github.com/educoreai-lotus/content-studio/internal/domain"
	"github.com/educoreai-lotus/content-studio/internal/generation"
)

// GenerationActivities runs the six-format generation fan-out as one
// Temporal activity. The fan-out keeps its own per-format deadlines and
// failure isolation; the activity boundary wraps the whole settled run.
type GenerationActivities struct {
	coordinator *generation.Coordinator
}

// NewGenerationActivities creates the generation activity set.
func NewGenerationActivities(coordinator *generation.Coordinator) *GenerationActivities {
	return &GenerationActivities{coordinator: coordinator}
}

// RunGenerationInput is the serializable input for RunGeneration.
type RunGenerationInput struct {
	// TopicID identifies the topic to generate content for.
	TopicID uuid.UUID `json:"topic_id"`

	// Transcript is the raw source transcript.
	Transcript string `json:"transcript"`
}

// RunGeneration executes the full generation run and returns the settled
// six-key aggregate. Per-format failures are reported inside the
// aggregate, not as activity errors; the activity fails only on the
// missing-topic-ID precondition or a metadata resolution failure.
func (a *GenerationActivities) RunGeneration(ctx context.Context, input RunGenerationInput) (*generation.Aggregate, error) {
	logger := activity.GetLogger(ctx)
	logger.Info("running generation", "topicID", input.TopicID)

	sink := func(format domain.ContentFormat, status, message string) {
		logger.Info("format progress", "format", string(format), "status", status, "message", message)
	}

	aggregate, err := a.coordinator.GenerateAll(ctx, input.TopicID, input.Transcript, sink)
	if err != nil {
		logger.Error("generation run failed", "topicID", input.TopicID, "error", err)
		return nil, err
	}

	logger.Info("generation run settled",
		"topicID", input.TopicID,
		"continueGeneration", aggregate.ContinueGeneration,
	)
	return aggregate, nil
}
