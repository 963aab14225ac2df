package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"github.com/educoreai-lotus/content-studio/internal/domain"
)

// PgCourseRepository is a PostgreSQL implementation of CourseRepository.
type PgCourseRepository struct {
	db DBTX
}

// Compile-time interface check.
var _ CourseRepository = (*PgCourseRepository)(nil)

// NewPgCourseRepository creates a new PostgreSQL course repository.
func NewPgCourseRepository(db DBTX) *PgCourseRepository {
	return &PgCourseRepository{db: db}
}

// Create inserts a new course.
func (r *PgCourseRepository) Create(ctx context.Context, course *domain.Course) error {
	if course == nil {
		return fmt.Errorf("%w: course is nil", domain.ErrInvalidInput)
	}
	if course.Name == "" {
		return fmt.Errorf("%w: course name is required", domain.ErrInvalidInput)
	}
	if course.ID == uuid.Nil {
		course.ID = uuid.New()
	}
	if course.Status == "" {
		course.Status = domain.CourseStatusDraft
	}

	query := `
		INSERT INTO courses (id, name, description, status, created_by)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING created_at, updated_at`

	err := r.db.QueryRow(ctx, query,
		course.ID,
		course.Name,
		course.Description,
		course.Status,
		course.CreatedBy,
	).Scan(&course.CreatedAt, &course.UpdatedAt)
	if err != nil {
		if isPgUniqueViolation(err) {
			return domain.NewAlreadyExistsError("course", course.ID.String())
		}
		return fmt.Errorf("creating course: %w", err)
	}
	return nil
}

// Get retrieves a course by its unique ID.
func (r *PgCourseRepository) Get(ctx context.Context, id uuid.UUID) (*domain.Course, error) {
	query := `
		SELECT id, name, description, status, created_by,
		       created_at, updated_at, deleted_at
		FROM courses
		WHERE id = $1 AND deleted_at IS NULL`

	var (
		course    domain.Course
		deletedAt sql.NullTime
	)
	err := r.db.QueryRow(ctx, query, id).Scan(
		&course.ID,
		&course.Name,
		&course.Description,
		&course.Status,
		&course.CreatedBy,
		&course.CreatedAt,
		&course.UpdatedAt,
		&deletedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.NewNotFoundError("course", id.String())
		}
		return nil, fmt.Errorf("getting course: %w", err)
	}

	if deletedAt.Valid {
		t := deletedAt.Time.UTC()
		course.DeletedAt = &t
	}
	return &course, nil
}

// UpdateStatus transitions a course to the given status.
func (r *PgCourseRepository) UpdateStatus(ctx context.Context, id uuid.UUID, status domain.CourseStatus) error {
	if !status.IsValid() {
		return fmt.Errorf("%w: invalid status %q", domain.ErrInvalidInput, status)
	}

	query := `
		UPDATE courses
		SET status = $2, updated_at = NOW()
		WHERE id = $1 AND deleted_at IS NULL`

	tag, err := r.db.Exec(ctx, query, id, status)
	if err != nil {
		return fmt.Errorf("updating course status: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return domain.NewNotFoundError("course", id.String())
	}
	return nil
}
