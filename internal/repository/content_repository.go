package repository

import (
	"context"

	"github.com/google/uuid"

	"github.com/educoreai-lotus/content-studio/internal/domain"
)

// ContentRepository defines the interface for generated content data access.
//
// The content store keeps at most one current row per (topic_id, content_type)
// pair. When a row is superseded, the previous version moves to the history
// store before the new data is written, so the current store never holds two
// versions of the same format.
type ContentRepository interface {
	// Upsert writes content for a (topic, format) pair. If a current row
	// already exists for the pair, it is copied to the history store and
	// replaced in place; otherwise a new row is inserted. The archival and
	// the write happen in a single transaction.
	Upsert(ctx context.Context, content *domain.Content) error

	// GetCurrent retrieves the current row for a (topic, format) pair.
	// Returns domain.NotFoundError if no current row exists. Callers that
	// need legacy aliasing resolve aliases themselves via RowAliases.
	GetCurrent(ctx context.Context, topicID uuid.UUID, contentType domain.ContentFormat) (*domain.Content, error)

	// ListCurrent retrieves all current content rows for a topic.
	ListCurrent(ctx context.Context, topicID uuid.UUID) ([]*domain.Content, error)

	// ListHistory retrieves all non-deleted history rows for a topic,
	// newest first.
	ListHistory(ctx context.Context, topicID uuid.UUID) ([]*domain.Content, error)

	// SoftDeleteHistory marks the given history rows as deleted. Rows are
	// never physically removed. Unknown IDs are ignored.
	SoftDeleteHistory(ctx context.Context, ids []uuid.UUID) error
}
