package activities

import (
	"context"

	"github.com/google/uuid"
	"go.temporal.io/sdk/activity"

	"github.com/educoreai-lotus/content-studio/internal/domain"
	"github.com/educoreai-lotus/content-studio/internal/publication"
)

// PublishActivities decomposes the publish flow into workflow-sized
// steps: validation, the transfer handoff, and the three independent
// post-transfer hooks.
type PublishActivities struct {
	validator *publication.Validator
	publisher *publication.Publisher
}

// NewPublishActivities creates the publish activity set.
func NewPublishActivities(validator *publication.Validator, publisher *publication.Publisher) *PublishActivities {
	return &PublishActivities{validator: validator, publisher: publisher}
}

// CourseInput identifies the course a publish activity operates on.
type CourseInput struct {
	CourseID uuid.UUID `json:"course_id"`
}

// TopicSetInput carries the topic set a post-transfer hook operates on.
type TopicSetInput struct {
	CourseID uuid.UUID   `json:"course_id"`
	TopicIDs []uuid.UUID `json:"topic_ids"`
}

// TransferOutput reports the topics that were part of a successful
// handoff so the post-transfer hooks can act on them.
type TransferOutput struct {
	TopicIDs []uuid.UUID `json:"topic_ids"`
}

// ValidateCourse runs the read-only publication readiness check.
func (a *PublishActivities) ValidateCourse(ctx context.Context, input CourseInput) (*domain.ValidationResult, error) {
	logger := activity.GetLogger(ctx)
	logger.Info("validating course", "courseID", input.CourseID)

	result, err := a.validator.Validate(ctx, input.CourseID)
	if err != nil {
		logger.Error("validation failed", "courseID", input.CourseID, "error", err)
		return nil, err
	}

	logger.Info("validation completed", "courseID", input.CourseID, "valid", result.Valid, "issues", len(result.Errors))
	return result, nil
}

// TransferCourse builds the course projection and hands it to the
// downstream publishing system. This is the only fatal step of the
// publish flow.
func (a *PublishActivities) TransferCourse(ctx context.Context, input CourseInput) (*TransferOutput, error) {
	logger := activity.GetLogger(ctx)
	logger.Info("transferring course", "courseID", input.CourseID)

	projection, topics, err := a.publisher.BuildProjection(ctx, input.CourseID)
	if err != nil {
		return nil, err
	}
	if err := a.publisher.SendProjection(ctx, projection); err != nil {
		logger.Error("transfer failed", "courseID", input.CourseID, "error", err)
		return nil, err
	}

	out := &TransferOutput{TopicIDs: make([]uuid.UUID, 0, len(topics))}
	for _, topic := range topics {
		out.TopicIDs = append(out.TopicIDs, topic.ID)
	}
	logger.Info("course transferred", "courseID", input.CourseID, "topics", len(out.TopicIDs))
	return out, nil
}

// IncrementTopicUsage bumps the usage counter of every published topic.
// Failures are logged inside the publisher; the activity never fails.
func (a *PublishActivities) IncrementTopicUsage(ctx context.Context, input TopicSetInput) error {
	a.publisher.BumpUsageCounters(ctx, input.TopicIDs)
	return nil
}

// ArchiveCourse flips the course status to archived after a successful
// transfer. The course is never marked published by this service.
func (a *PublishActivities) ArchiveCourse(ctx context.Context, input CourseInput) error {
	a.publisher.ArchiveCourse(ctx, input.CourseID)
	return nil
}

// CleanupArchives removes superseded content blobs and soft-deletes the
// history rows of every published topic.
func (a *PublishActivities) CleanupArchives(ctx context.Context, input TopicSetInput) error {
	a.publisher.CleanupTopicArchives(ctx, input.TopicIDs)
	return nil
}
