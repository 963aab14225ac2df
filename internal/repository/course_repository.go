package repository

import (
	"context"

	"github.com/google/uuid"

	"github.com/educoreai-lotus/content-studio/internal/domain"
)

// CourseRepository defines the interface for course data access.
type CourseRepository interface {
	// Create inserts a new course.
	// Returns domain.AlreadyExistsError if a course with the same ID exists.
	Create(ctx context.Context, course *domain.Course) error

	// Get retrieves a course by its unique ID. Soft-deleted courses are
	// not returned. Returns domain.NotFoundError if the course doesn't exist.
	Get(ctx context.Context, id uuid.UUID) (*domain.Course, error)

	// UpdateStatus transitions a course to the given status.
	// Returns domain.NotFoundError if the course doesn't exist.
	UpdateStatus(ctx context.Context, id uuid.UUID, status domain.CourseStatus) error
}
