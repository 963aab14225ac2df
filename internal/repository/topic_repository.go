package repository

import (
	"context"
	"fmt"

	"github.com/google/uuid"

	"github.com/educoreai-lotus/content-studio/internal/domain"
)

// TopicRepository defines the interface for topic data access.
type TopicRepository interface {
	// Create inserts a new topic.
	// Returns domain.AlreadyExistsError if a topic with the same ID exists.
	Create(ctx context.Context, topic *domain.Topic) error

	// Get retrieves a topic by its unique ID.
	// Soft-deleted topics are not returned.
	// Returns domain.NotFoundError if the topic doesn't exist.
	Get(ctx context.Context, id uuid.UUID) (*domain.Topic, error)

	// ListByCourse retrieves all topics belonging to a course, ordered by
	// creation time. Soft-deleted topics are excluded.
	ListByCourse(ctx context.Context, courseID uuid.UUID) ([]*domain.Topic, error)

	// List retrieves topics matching the filter criteria.
	// Returns the matching topics and the total count (ignoring pagination).
	List(ctx context.Context, filter TopicFilter) ([]*domain.Topic, int64, error)

	// Update atomically updates a topic using the provided update function.
	// The function receives the current topic state and should modify it in place.
	// Returns domain.NotFoundError if the topic doesn't exist.
	Update(ctx context.Context, id uuid.UUID, updateFn func(*domain.Topic) error) error

	// UpdateStatus transitions a topic to the given status.
	// Returns domain.NotFoundError if the topic doesn't exist.
	UpdateStatus(ctx context.Context, id uuid.UUID, status domain.TopicStatus) error

	// IncrementUsage increments the topic's usage counter by one.
	// Returns domain.NotFoundError if the topic doesn't exist.
	IncrementUsage(ctx context.Context, id uuid.UUID) error

	// SoftDelete marks a topic as deleted without removing the row.
	// Returns domain.NotFoundError if the topic doesn't exist or is already deleted.
	SoftDelete(ctx context.Context, id uuid.UUID) error
}

// TopicFilter defines filtering options for topic queries.
type TopicFilter struct {
	// CourseID filters topics by their owning course.
	CourseID *uuid.UUID

	// Status filters topics by lifecycle status.
	Status *domain.TopicStatus

	// Limit is the maximum number of results to return.
	Limit int

	// Offset is the number of results to skip.
	Offset int
}

// Validate checks filter parameters for validity.
func (f *TopicFilter) Validate() error {
	if f.Status != nil && !f.Status.IsValid() {
		return fmt.Errorf("%w: invalid status %q", domain.ErrInvalidInput, *f.Status)
	}
	if f.Limit < 0 {
		return fmt.Errorf("%w: limit must be non-negative", domain.ErrInvalidInput)
	}
	if f.Offset < 0 {
		return fmt.Errorf("%w: offset must be non-negative", domain.ErrInvalidInput)
	}
	return nil
}
