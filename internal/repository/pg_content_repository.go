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

// PgContentRepository is a PostgreSQL implementation of ContentRepository.
type PgContentRepository struct {
	db DBTX
}

// Compile-time interface check.
var _ ContentRepository = (*PgContentRepository)(nil)

// NewPgContentRepository creates a new PostgreSQL content repository.
func NewPgContentRepository(db DBTX) *PgContentRepository {
	return &PgContentRepository{db: db}
}

// Upsert writes content for a (topic, format) pair, archiving any superseded
// current row to the history store in the same transaction.
func (r *PgContentRepository) Upsert(ctx context.Context, content *domain.Content) error {
	if content == nil {
		return fmt.Errorf("%w: content is nil", domain.ErrInvalidInput)
	}
	if content.TopicID == uuid.Nil {
		return fmt.Errorf("%w: topic ID is required", domain.ErrInvalidInput)
	}
	if content.ContentType == "" {
		return fmt.Errorf("%w: content type is required", domain.ErrInvalidInput)
	}

	beginner, ok := r.db.(txBeginner)
	if !ok {
		return r.upsertInTx(ctx, r.db, content)
	}

	tx, err := beginner.Begin(ctx)
	if err != nil {
		return fmt.Errorf("beginning transaction: %w", err)
	}
	defer func() { _ = tx.Rollback(ctx) }()

	if err := r.upsertInTx(ctx, tx, content); err != nil {
		return err
	}
	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("committing transaction: %w", err)
	}
	return nil
}

func (r *PgContentRepository) upsertInTx(ctx context.Context, db DBTX, content *domain.Content) error {
	selectQuery := `
		SELECT id, topic_id, content_type, data, audio_url,
		       quality_check_status, generation_method_id,
		       created_at, updated_at, deleted_at
		FROM topic_contents
		WHERE topic_id = $1 AND content_type = $2 AND deleted_at IS NULL
		FOR UPDATE`

	existing, err := scanContent(db.QueryRow(ctx, selectQuery, content.TopicID, content.ContentType))
	if err != nil && !errors.Is(err, pgx.ErrNoRows) {
		return fmt.Errorf("getting current content: %w", err)
	}

	if content.QualityCheckStatus == "" {
		content.QualityCheckStatus = domain.QualityCheckPending
	}

	if existing == nil {
		if content.ID == uuid.Nil {
			content.ID = uuid.New()
		}
		insertQuery := `
			INSERT INTO topic_contents (
				id, topic_id, content_type, data, audio_url,
				quality_check_status, generation_method_id
			) VALUES ($1, $2, $3, $4, $5, $6, $7)
			RETURNING created_at, updated_at`

		if err := db.QueryRow(ctx, insertQuery,
			content.ID,
			content.TopicID,
			content.ContentType,
			content.Data,
			nullString(content.AudioURL),
			content.QualityCheckStatus,
			content.GenerationMethodID,
		).Scan(&content.CreatedAt, &content.UpdatedAt); err != nil {
			return fmt.Errorf("inserting content: %w", err)
		}
		return nil
	}

	archiveQuery := `
		INSERT INTO topic_content_history (
			id, content_id, topic_id, content_type, data, audio_url,
			quality_check_status, generation_method_id, superseded_at
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, NOW())`

	if _, err := db.Exec(ctx, archiveQuery,
		uuid.New(),
		existing.ID,
		existing.TopicID,
		existing.ContentType,
		existing.Data,
		nullString(existing.AudioURL),
		existing.QualityCheckStatus,
		existing.GenerationMethodID,
	); err != nil {
		return fmt.Errorf("archiving superseded content: %w", err)
	}

	content.ID = existing.ID
	updateQuery := `
		UPDATE topic_contents
		SET data = $2, audio_url = $3, quality_check_status = $4,
		    generation_method_id = $5, updated_at = NOW()
		WHERE id = $1
		RETURNING created_at, updated_at`

	if err := db.QueryRow(ctx, updateQuery,
		content.ID,
		content.Data,
		nullString(content.AudioURL),
		content.QualityCheckStatus,
		content.GenerationMethodID,
	).Scan(&content.CreatedAt, &content.UpdatedAt); err != nil {
		return fmt.Errorf("updating content: %w", err)
	}
	return nil
}

// GetCurrent retrieves the current row for a (topic, format) pair.
func (r *PgContentRepository) GetCurrent(ctx context.Context, topicID uuid.UUID, contentType domain.ContentFormat) (*domain.Content, error) {
	query := `
		SELECT id, topic_id, content_type, data, audio_url,
		       quality_check_status, generation_method_id,
		       created_at, updated_at, deleted_at
		FROM topic_contents
		WHERE topic_id = $1 AND content_type = $2 AND deleted_at IS NULL`

	content, err := scanContent(r.db.QueryRow(ctx, query, topicID, contentType))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.NewNotFoundError("content", fmt.Sprintf("%s/%s", topicID, contentType))
		}
		return nil, fmt.Errorf("getting content: %w", err)
	}
	return content, nil
}

// ListCurrent retrieves all current content rows for a topic.
func (r *PgContentRepository) ListCurrent(ctx context.Context, topicID uuid.UUID) ([]*domain.Content, error) {
	query := `
		SELECT id, topic_id, content_type, data, audio_url,
		       quality_check_status, generation_method_id,
		       created_at, updated_at, deleted_at
		FROM topic_contents
		WHERE topic_id = $1 AND deleted_at IS NULL
		ORDER BY content_type ASC`

	rows, err := r.db.Query(ctx, query, topicID)
	if err != nil {
		return nil, fmt.Errorf("listing content: %w", err)
	}
	defer rows.Close()

	return scanContentRows(rows)
}

// ListHistory retrieves all non-deleted history rows for a topic.
func (r *PgContentRepository) ListHistory(ctx context.Context, topicID uuid.UUID) ([]*domain.Content, error) {
	query := `
		SELECT id, topic_id, content_type, data, audio_url,
		       quality_check_status, generation_method_id,
		       created_at, superseded_at, deleted_at
		FROM topic_content_history
		WHERE topic_id = $1 AND deleted_at IS NULL
		ORDER BY superseded_at DESC`

	rows, err := r.db.Query(ctx, query, topicID)
	if err != nil {
		return nil, fmt.Errorf("listing content history: %w", err)
	}
	defer rows.Close()

	return scanContentRows(rows)
}

// SoftDeleteHistory marks the given history rows as deleted.
func (r *PgContentRepository) SoftDeleteHistory(ctx context.Context, ids []uuid.UUID) error {
	if len(ids) == 0 {
		return nil
	}

	query := `
		UPDATE topic_content_history
		SET deleted_at = NOW()
		WHERE id = ANY($1) AND deleted_at IS NULL`

	if _, err := r.db.Exec(ctx, query, ids); err != nil {
		return fmt.Errorf("soft deleting content history: %w", err)
	}
	return nil
}

// contentScanDest holds scan destinations for a content row.
type contentScanDest struct {
	content   domain.Content
	data      []byte
	audioURL  sql.NullString
	deletedAt sql.NullTime
}

func (d *contentScanDest) destinations() []any {
	return []any{
		&d.content.ID,
		&d.content.TopicID,
		&d.content.ContentType,
		&d.data,
		&d.audioURL,
		&d.content.QualityCheckStatus,
		&d.content.GenerationMethodID,
		&d.content.CreatedAt,
		&d.content.UpdatedAt,
		&d.deletedAt,
	}
}

func (d *contentScanDest) finalize() *domain.Content {
	if len(d.data) > 0 {
		d.content.Data = d.data
	}
	if d.audioURL.Valid {
		d.content.AudioURL = &d.audioURL.String
	}
	if d.deletedAt.Valid {
		t := d.deletedAt.Time.UTC()
		d.content.DeletedAt = &t
	}
	return &d.content
}

// scanContent scans a single content row.
func scanContent(row pgx.Row) (*domain.Content, error) {
	var dest contentScanDest
	if err := row.Scan(dest.destinations()...); err != nil {
		return nil, err
	}
	return dest.finalize(), nil
}

// scanContentRows scans multiple content rows.
func scanContentRows(rows pgx.Rows) ([]*domain.Content, error) {
	var contents []*domain.Content
	for rows.Next() {
		var dest contentScanDest
		if err := rows.Scan(dest.destinations()...); err != nil {
			return nil, fmt.Errorf("scanning content row: %w", err)
		}
		contents = append(contents, dest.finalize())
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating content rows: %w", err)
	}
	return contents, nil
}
