package publication

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/educoreai-lotus/content-studio/internal/domain"
	"github.com/educoreai-lotus/content-studio/internal/observability"
	"github.com/educoreai-lotus/content-studio/internal/repository"
)

// CourseProjection is the course shape handed to the downstream
// publishing system.
type CourseProjection struct {
	ID          uuid.UUID         `json:"id"`
	Name        string            `json:"name"`
	Description string            `json:"description"`
	Topics      []TopicProjection `json:"topics"`
}

// TopicProjection is one topic inside a course projection. Contents is
// the fixed six-entry set; formats with no stored row appear as explicit
// missing placeholders.
type TopicProjection struct {
	ID          uuid.UUID             `json:"id"`
	Name        string                `json:"name"`
	Description string                `json:"description"`
	Language    string                `json:"language"`
	Skills      []string              `json:"skillsList"`
	Contents    []domain.ContentEntry `json:"contents"`
}

// Transfer is the downstream publishing collaborator. Send failure is the
// only fatal failure of the publish flow.
type Transfer interface {
	Send(ctx context.Context, course *CourseProjection) error
}

// Publisher executes the publish handoff: validate, build the projection,
// transfer, then run the post-transfer hooks. Only the transfer call is
// fatal; the hooks are independently best effort.
type Publisher struct {
	courses   repository.CourseRepository
	topics    repository.TopicRepository
	contents  repository.ContentRepository
	validator *Validator
	transfer  Transfer
	cleanup   *ArchiveCleanupService
	logger    zerolog.Logger
	metrics   *observability.Metrics
}

// NewPublisher creates a course publisher.
func NewPublisher(courses repository.CourseRepository, topics repository.TopicRepository, contents repository.ContentRepository, validator *Validator, transfer Transfer, cleanup *ArchiveCleanupService, logger zerolog.Logger, metrics *observability.Metrics) *Publisher {
	return &Publisher{
		courses:   courses,
		topics:    topics,
		contents:  contents,
		validator: validator,
		transfer:  transfer,
		cleanup:   cleanup,
		logger:    logger.With().Str("component", "publisher").Logger(),
		metrics:   metrics,
	}
}

// Execute publishes a course. The returned validation result is non-nil
// whenever validation ran; a result with findings is returned together
// with an invalid-input error and the transfer is never attempted.
//
// After a successful transfer the course is never marked published, only
// archived: visibility authority belongs to the downstream system.
func (p *Publisher) Execute(ctx context.Context, courseID uuid.UUID) (*domain.ValidationResult, error) {
	start := time.Now()
	if p.metrics != nil {
		p.metrics.RecordPublishAttempt()
	}
	logger := p.logger.With().Str("course_id", courseID.String()).Logger()

	result, err := p.validator.Validate(ctx, courseID)
	if err != nil {
		return nil, fmt.Errorf("validating course: %w", err)
	}
	if !result.Valid {
		logger.Warn().Int("issues", len(result.Errors)).Msg("Publish blocked by validation findings")
		return result, fmt.Errorf("%w: course is not ready for publication (%d issues)", domain.ErrInvalidInput, len(result.Errors))
	}

	projection, topics, err := p.BuildProjection(ctx, courseID)
	if err != nil {
		return result, err
	}

	if err := p.SendProjection(ctx, projection); err != nil {
		if p.metrics != nil {
			p.metrics.RecordPublishFailed(time.Since(start).Seconds())
		}
		logger.Error().Err(err).Msg("Publish handoff failed")
		return result, err
	}

	if p.metrics != nil {
		p.metrics.RecordPublishSucceeded(time.Since(start).Seconds())
	}
	logger.Info().Int("topics", len(topics)).Dur("elapsed", time.Since(start)).Msg("Course handed off to publishing system")

	// The transfer already succeeded; each hook runs regardless of the
	// others and a failure is logged, never surfaced.
	topicIDs := make([]uuid.UUID, 0, len(topics))
	for _, topic := range topics {
		topicIDs = append(topicIDs, topic.ID)
	}
	p.BumpUsageCounters(ctx, topicIDs)
	p.ArchiveCourse(ctx, courseID)
	p.CleanupTopicArchives(ctx, topicIDs)

	return result, nil
}

// BuildProjection reshapes the course and its topics into the downstream
// publishing system's expected form.
func (p *Publisher) BuildProjection(ctx context.Context, courseID uuid.UUID) (*CourseProjection, []*domain.Topic, error) {
	course, err := p.courses.Get(ctx, courseID)
	if err != nil {
		return nil, nil, fmt.Errorf("loading course: %w", err)
	}
	topics, err := p.topics.ListByCourse(ctx, courseID)
	if err != nil {
		return nil, nil, fmt.Errorf("listing course topics: %w", err)
	}

	projection := &CourseProjection{
		ID:          course.ID,
		Name:        course.Name,
		Description: course.Description,
		Topics:      make([]TopicProjection, 0, len(topics)),
	}
	for _, topic := range topics {
		rows, err := p.contents.ListCurrent(ctx, topic.ID)
		if err != nil {
			return nil, nil, fmt.Errorf("listing content for topic %s: %w", topic.ID, err)
		}
		projection.Topics = append(projection.Topics, TopicProjection{
			ID:          topic.ID,
			Name:        topic.Name,
			Description: topic.Description,
			Language:    topic.Language,
			Skills:      topic.Skills,
			Contents:    domain.BuildContentSet(rows),
		})
	}
	return projection, topics, nil
}

// SendProjection hands a course projection to the downstream publishing
// system. A failure is consolidated into a TransferError.
func (p *Publisher) SendProjection(ctx context.Context, projection *CourseProjection) error {
	if err := p.transfer.Send(ctx, projection); err != nil {
		return &domain.TransferError{CourseID: projection.ID.String(), Err: err}
	}
	return nil
}

// BumpUsageCounters increments the usage counter of every topic, best
// effort: a failed increment is logged and the rest still run.
func (p *Publisher) BumpUsageCounters(ctx context.Context, topicIDs []uuid.UUID) {
	for _, id := range topicIDs {
		if err := p.topics.IncrementUsage(ctx, id); err != nil {
			p.logger.Warn().Err(err).Str("topic_id", id.String()).Msg("Post-publish usage increment failed")
		}
	}
}

// ArchiveCourse flips the course status to archived, best effort.
func (p *Publisher) ArchiveCourse(ctx context.Context, courseID uuid.UUID) {
	if err := p.courses.UpdateStatus(ctx, courseID, domain.CourseStatusArchived); err != nil {
		p.logger.Warn().Err(err).Str("course_id", courseID.String()).Msg("Post-publish course archival failed")
	}
}

// CleanupTopicArchives runs the archive cleanup for every topic, best
// effort.
func (p *Publisher) CleanupTopicArchives(ctx context.Context, topicIDs []uuid.UUID) {
	if p.cleanup == nil {
		return
	}
	for _, id := range topicIDs {
		if err := p.cleanup.CleanupTopic(ctx, id); err != nil {
			p.logger.Warn().Err(err).Str("topic_id", id.String()).Msg("Post-publish archive cleanup failed")
		}
	}
}
