package repository

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"

	"github.com/educoreai-lotus/content-studio/internal/domain"
)

// txBeginner is implemented by pgxpool.Pool and allows repositories to open
// their own transactions for multi-statement operations. When the configured
// DBTX is already a transaction, operations run on it directly.
type txBeginner interface {
	Begin(ctx context.Context) (pgx.Tx, error)
}

// PostgreSQL error codes.
const (
	pgUniqueViolation     = "23505"
	pgForeignKeyViolation = "23503"
)

// isPgUniqueViolation reports whether err is a unique constraint violation.
func isPgUniqueViolation(err error) bool {
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == pgUniqueViolation
}

// isPgForeignKeyViolation reports whether err is a foreign key violation.
func isPgForeignKeyViolation(err error) bool {
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == pgForeignKeyViolation
}

// nullString converts a *string to sql.NullString for database operations.
func nullString(s *string) sql.NullString {
	if s == nil {
		return sql.NullString{}
	}
	return sql.NullString{String: *s, Valid: true}
}

// nullUUID converts a *uuid.UUID to a driver-friendly value.
func nullUUID(id *uuid.UUID) any {
	if id == nil {
		return nil
	}
	return *id
}

// PgTopicRepository is a PostgreSQL implementation of TopicRepository.
type PgTopicRepository struct {
	db DBTX
}

// Compile-time interface check.
var _ TopicRepository = (*PgTopicRepository)(nil)

// NewPgTopicRepository creates a new PostgreSQL topic repository.
func NewPgTopicRepository(db DBTX) *PgTopicRepository {
	return &PgTopicRepository{db: db}
}

// Create inserts a new topic.
func (r *PgTopicRepository) Create(ctx context.Context, topic *domain.Topic) error {
	if topic == nil {
		return fmt.Errorf("%w: topic is nil", domain.ErrInvalidInput)
	}
	if topic.Name == "" {
		return fmt.Errorf("%w: topic name is required", domain.ErrInvalidInput)
	}
	if topic.ID == uuid.Nil {
		topic.ID = uuid.New()
	}
	if topic.Status == "" {
		topic.Status = domain.TopicStatusActive
	}
	if topic.CreatedBy == "" {
		topic.CreatedBy = domain.SystemAuthorID
	}

	skills, err := json.Marshal(topic.Skills)
	if err != nil {
		return fmt.Errorf("marshaling skills: %w", err)
	}
	exercises := topic.DevLabExercises
	if exercises == nil {
		exercises = json.RawMessage("null")
	}

	query := `
		INSERT INTO topics (
			id, name, description, language, skills, course_id, template_id,
			status, devlab_exercises, usage_count, created_by
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)
		RETURNING created_at, updated_at`

	err = r.db.QueryRow(ctx, query,
		topic.ID,
		topic.Name,
		topic.Description,
		topic.Language,
		skills,
		nullUUID(topic.CourseID),
		nullUUID(topic.TemplateID),
		topic.Status,
		exercises,
		topic.UsageCount,
		topic.CreatedBy,
	).Scan(&topic.CreatedAt, &topic.UpdatedAt)
	if err != nil {
		if isPgUniqueViolation(err) {
			return domain.NewAlreadyExistsError("topic", topic.ID.String())
		}
		if isPgForeignKeyViolation(err) {
			return fmt.Errorf("%w: referenced course or template does not exist", domain.ErrInvalidInput)
		}
		return fmt.Errorf("creating topic: %w", err)
	}
	return nil
}

// Get retrieves a topic by its unique ID. Soft-deleted topics are excluded.
func (r *PgTopicRepository) Get(ctx context.Context, id uuid.UUID) (*domain.Topic, error) {
	query := `
		SELECT id, name, description, language, skills, course_id, template_id,
		       status, devlab_exercises, usage_count, created_by,
		       created_at, updated_at, deleted_at
		FROM topics
		WHERE id = $1 AND deleted_at IS NULL`

	topic, err := scanTopic(r.db.QueryRow(ctx, query, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.NewNotFoundError("topic", id.String())
		}
		return nil, fmt.Errorf("getting topic: %w", err)
	}
	return topic, nil
}

// ListByCourse retrieves all non-deleted topics belonging to a course.
func (r *PgTopicRepository) ListByCourse(ctx context.Context, courseID uuid.UUID) ([]*domain.Topic, error) {
	query := `
		SELECT id, name, description, language, skills, course_id, template_id,
		       status, devlab_exercises, usage_count, created_by,
		       created_at, updated_at, deleted_at
		FROM topics
		WHERE course_id = $1 AND deleted_at IS NULL
		ORDER BY created_at ASC`

	rows, err := r.db.Query(ctx, query, courseID)
	if err != nil {
		return nil, fmt.Errorf("listing topics by course: %w", err)
	}
	defer rows.Close()

	return scanTopicRows(rows)
}

// List retrieves topics matching the filter criteria with a total count.
func (r *PgTopicRepository) List(ctx context.Context, filter TopicFilter) ([]*domain.Topic, int64, error) {
	if err := filter.Validate(); err != nil {
		return nil, 0, err
	}
	applyPaginationDefaults(&filter.Limit, &filter.Offset)

	conditions := []string{"deleted_at IS NULL"}
	args := []any{}
	argIdx := 1

	if filter.CourseID != nil {
		conditions = append(conditions, fmt.Sprintf("course_id = $%d", argIdx))
		args = append(args, *filter.CourseID)
		argIdx++
	}
	if filter.Status != nil {
		conditions = append(conditions, fmt.Sprintf("status = $%d", argIdx))
		args = append(args, *filter.Status)
		argIdx++
	}

	where := "WHERE " + strings.Join(conditions, " AND ")

	countQuery := "SELECT COUNT(*) FROM topics " + where
	var total int64
	if err := r.db.QueryRow(ctx, countQuery, args...).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("counting topics: %w", err)
	}

	query := fmt.Sprintf(`
		SELECT id, name, description, language, skills, course_id, template_id,
		       status, devlab_exercises, usage_count, created_by,
		       created_at, updated_at, deleted_at
		FROM topics
		%s
		ORDER BY created_at DESC
		LIMIT $%d OFFSET $%d`, where, argIdx, argIdx+1)
	args = append(args, filter.Limit, filter.Offset)

	rows, err := r.db.Query(ctx, query, args...)
	if err != nil {
		return nil, 0, fmt.Errorf("listing topics: %w", err)
	}
	defer rows.Close()

	topics, err := scanTopicRows(rows)
	if err != nil {
		return nil, 0, err
	}
	return topics, total, nil
}

// Update atomically updates a topic using the provided update function.
// The row is locked for the duration of the update to prevent lost writes.
func (r *PgTopicRepository) Update(ctx context.Context, id uuid.UUID, updateFn func(*domain.Topic) error) error {
	if updateFn == nil {
		return fmt.Errorf("%w: update function is nil", domain.ErrInvalidInput)
	}

	beginner, ok := r.db.(txBeginner)
	if !ok {
		// Already inside a transaction; run directly on it.
		return r.updateInTx(ctx, r.db, id, updateFn)
	}

	tx, err := beginner.Begin(ctx)
	if err != nil {
		return fmt.Errorf("beginning transaction: %w", err)
	}
	defer func() { _ = tx.Rollback(ctx) }()

	if err := r.updateInTx(ctx, tx, id, updateFn); err != nil {
		return err
	}
	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("committing transaction: %w", err)
	}
	return nil
}

func (r *PgTopicRepository) updateInTx(ctx context.Context, db DBTX, id uuid.UUID, updateFn func(*domain.Topic) error) error {
	query := `
		SELECT id, name, description, language, skills, course_id, template_id,
		       status, devlab_exercises, usage_count, created_by,
		       created_at, updated_at, deleted_at
		FROM topics
		WHERE id = $1 AND deleted_at IS NULL
		FOR UPDATE`

	topic, err := scanTopic(db.QueryRow(ctx, query, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return domain.NewNotFoundError("topic", id.String())
		}
		return fmt.Errorf("getting topic for update: %w", err)
	}

	if err := updateFn(topic); err != nil {
		return err
	}

	skills, err := json.Marshal(topic.Skills)
	if err != nil {
		return fmt.Errorf("marshaling skills: %w", err)
	}
	exercises := topic.DevLabExercises
	if exercises == nil {
		exercises = json.RawMessage("null")
	}

	updateQuery := `
		UPDATE topics
		SET name = $2, description = $3, language = $4, skills = $5,
		    course_id = $6, template_id = $7, status = $8,
		    devlab_exercises = $9, usage_count = $10, updated_at = NOW()
		WHERE id = $1`

	if _, err := db.Exec(ctx, updateQuery,
		topic.ID,
		topic.Name,
		topic.Description,
		topic.Language,
		skills,
		nullUUID(topic.CourseID),
		nullUUID(topic.TemplateID),
		topic.Status,
		exercises,
		topic.UsageCount,
	); err != nil {
		return fmt.Errorf("updating topic: %w", err)
	}
	return nil
}

// UpdateStatus transitions a topic to the given status.
func (r *PgTopicRepository) UpdateStatus(ctx context.Context, id uuid.UUID, status domain.TopicStatus) error {
	if !status.IsValid() {
		return fmt.Errorf("%w: invalid status %q", domain.ErrInvalidInput, status)
	}

	query := `
		UPDATE topics
		SET status = $2, updated_at = NOW()
		WHERE id = $1 AND deleted_at IS NULL`

	tag, err := r.db.Exec(ctx, query, id, status)
	if err != nil {
		return fmt.Errorf("updating topic status: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return domain.NewNotFoundError("topic", id.String())
	}
	return nil
}

// IncrementUsage increments the topic's usage counter by one.
func (r *PgTopicRepository) IncrementUsage(ctx context.Context, id uuid.UUID) error {
	query := `
		UPDATE topics
		SET usage_count = usage_count + 1, updated_at = NOW()
		WHERE id = $1 AND deleted_at IS NULL`

	tag, err := r.db.Exec(ctx, query, id)
	if err != nil {
		return fmt.Errorf("incrementing topic usage: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return domain.NewNotFoundError("topic", id.String())
	}
	return nil
}

// SoftDelete marks a topic as deleted without removing the row.
func (r *PgTopicRepository) SoftDelete(ctx context.Context, id uuid.UUID) error {
	query := `
		UPDATE topics
		SET status = $2, deleted_at = NOW(), updated_at = NOW()
		WHERE id = $1 AND deleted_at IS NULL`

	tag, err := r.db.Exec(ctx, query, id, domain.TopicStatusDeleted)
	if err != nil {
		return fmt.Errorf("soft deleting topic: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return domain.NewNotFoundError("topic", id.String())
	}
	return nil
}

// topicScanDest holds scan destinations for a topic row.
type topicScanDest struct {
	topic      domain.Topic
	skills     []byte
	exercises  []byte
	courseID   *uuid.UUID
	templateID *uuid.UUID
	deletedAt  sql.NullTime
}

func (d *topicScanDest) destinations() []any {
	return []any{
		&d.topic.ID,
		&d.topic.Name,
		&d.topic.Description,
		&d.topic.Language,
		&d.skills,
		&d.courseID,
		&d.templateID,
		&d.topic.Status,
		&d.exercises,
		&d.topic.UsageCount,
		&d.topic.CreatedBy,
		&d.topic.CreatedAt,
		&d.topic.UpdatedAt,
		&d.deletedAt,
	}
}

func (d *topicScanDest) finalize() (*domain.Topic, error) {
	if len(d.skills) > 0 {
		if err := json.Unmarshal(d.skills, &d.topic.Skills); err != nil {
			return nil, fmt.Errorf("unmarshaling skills: %w", err)
		}
	}
	if len(d.exercises) > 0 && string(d.exercises) != "null" {
		d.topic.DevLabExercises = json.RawMessage(d.exercises)
	}
	d.topic.CourseID = d.courseID
	d.topic.TemplateID = d.templateID
	if d.deletedAt.Valid {
		t := d.deletedAt.Time.UTC()
		d.topic.DeletedAt = &t
	}
	return &d.topic, nil
}

// scanTopic scans a single topic row.
func scanTopic(row pgx.Row) (*domain.Topic, error) {
	var dest topicScanDest
	if err := row.Scan(dest.destinations()...); err != nil {
		return nil, err
	}
	return dest.finalize()
}

// scanTopicRows scans multiple topic rows.
func scanTopicRows(rows pgx.Rows) ([]*domain.Topic, error) {
	var topics []*domain.Topic
	for rows.Next() {
		var dest topicScanDest
		if err := rows.Scan(dest.destinations()...); err != nil {
			return nil, fmt.Errorf("scanning topic row: %w", err)
		}
		topic, err := dest.finalize()
		if err != nil {
			return nil, err
		}
		topics = append(topics, topic)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating topic rows: %w", err)
	}
	return topics, nil
}
