// Package persistence writes generated content to the content store with a
// compensating storage rollback for avatar videos.
//
// The gateway cleans the raw collaborator payload, maps the format to its
// storage row type, and upserts through the content repository. For the
// avatar_video format the payload references a blob that the collaborator
// already uploaded; if the database write fails, the gateway deletes that
// orphaned blob before propagating the database error. A failed rollback
// is logged, never raised — the database error remains the one surfaced.
package persistence

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/rs/zerolog"

	"github.com/educoreai-lotus/content-studio/internal/domain"
	"github.com/educoreai-lotus/content-studio/internal/observability"
	"github.com/educoreai-lotus/content-studio/internal/repository"
	"github.com/educoreai-lotus/content-studio/internal/storage"
)

// BlobDeleter is the storage surface the gateway needs for compensating
// rollbacks.
type BlobDeleter interface {
	IsConfigured() bool
	Delete(ctx context.Context, bucket, objectPath string) error
}

// Gateway persists generated content.
type Gateway struct {
	contents repository.ContentRepository
	cleaner  Cleaner
	store    BlobDeleter
	logger   zerolog.Logger
	metrics  *observability.Metrics

	// methodID is stamped on every row written by the pipeline.
	methodID int
}

// NewGateway creates a persistence gateway. cleaner may be nil for
// identity cleaning; store may be nil when storage is not configured.
func NewGateway(contents repository.ContentRepository, cleaner Cleaner, store BlobDeleter, methodID int, logger zerolog.Logger, metrics *observability.Metrics) *Gateway {
	if cleaner == nil {
		cleaner = WhitespaceCleaner{}
	}
	return &Gateway{
		contents: contents,
		cleaner:  cleaner,
		store:    store,
		logger:   logger.With().Str("component", "persistence_gateway").Logger(),
		metrics:  metrics,
		methodID: methodID,
	}
}

// Persist cleans and writes one generated content payload, returning the
// saved row. A store failure is reported as a *domain.PersistenceError;
// for avatar videos the orphaned blob is deleted first.
func (g *Gateway) Persist(ctx context.Context, generated *domain.GeneratedContent) (*domain.Content, error) {
	if generated == nil {
		return nil, fmt.Errorf("%w: generated content is nil", domain.ErrInvalidInput)
	}
	if !generated.ContentType.IsGenerated() {
		return nil, fmt.Errorf("%w: unknown content type %q", domain.ErrInvalidInput, generated.ContentType)
	}

	cleaned, err := g.cleaner.Clean(generated.ContentType, generated.Data)
	if err != nil {
		return nil, fmt.Errorf("cleaning %s payload: %w", generated.ContentType, err)
	}

	payload, err := json.Marshal(cleaned)
	if err != nil {
		return nil, fmt.Errorf("encoding %s payload: %w", generated.ContentType, err)
	}

	content := &domain.Content{
		TopicID:            generated.TopicID,
		ContentType:        rowType(generated.ContentType),
		Data:               payload,
		QualityCheckStatus: domain.QualityCheckPending,
		GenerationMethodID: g.methodID,
	}
	if generated.AudioURL != "" {
		audioURL := generated.AudioURL
		content.AudioURL = &audioURL
	}

	// Identify the uploaded blob before the write so a failed write can
	// still be compensated.
	var blobBucket, blobPath string
	if generated.ContentType == domain.FormatAvatarVideo {
		blobBucket, blobPath, _ = storage.ExtractStoragePath(generated.VideoURL())
	}

	if err := g.contents.Upsert(ctx, content); err != nil {
		if g.metrics != nil {
			g.metrics.RecordPersistenceFailed(string(generated.ContentType))
		}
		compensated := g.rollbackBlob(ctx, generated, blobBucket, blobPath)
		return nil, &domain.PersistenceError{
			ContentType: generated.ContentType,
			Compensated: compensated,
			Err:         err,
		}
	}

	if g.metrics != nil {
		g.metrics.RecordContentPersisted(string(generated.ContentType))
	}
	g.logger.Debug().
		Str("topic_id", generated.TopicID.String()).
		Str("content_type", string(content.ContentType)).
		Str("content_id", content.ID.String()).
		Msg("Content persisted")
	return content, nil
}

// rollbackBlob best-effort deletes the orphaned avatar video blob. It
// returns true when a delete was attempted and succeeded. The rollback
// never raises; the caller propagates the original database error.
func (g *Gateway) rollbackBlob(ctx context.Context, generated *domain.GeneratedContent, bucket, path string) bool {
	if path == "" || g.store == nil || !g.store.IsConfigured() {
		return false
	}
	if g.metrics != nil {
		g.metrics.RecordRollbackAttempted()
	}
	if err := g.store.Delete(ctx, bucket, path); err != nil {
		if g.metrics != nil {
			g.metrics.RecordRollbackFailed()
		}
		g.logger.Error().Err(err).
			Str("topic_id", generated.TopicID.String()).
			Str("bucket", bucket).
			Str("path", path).
			Msg("Compensating blob delete failed, storage object may be orphaned")
		return false
	}
	g.logger.Warn().
		Str("topic_id", generated.TopicID.String()).
		Str("bucket", bucket).
		Str("path", path).
		Msg("Deleted orphaned blob after failed content write")
	return true
}

// rowType maps a generated format to its storage row type. Narrated text
// is stored as the combined text_audio row because its payload carries the
// audio reference alongside the text.
func rowType(format domain.ContentFormat) domain.ContentFormat {
	if format == domain.FormatText {
		return domain.FormatTextAudio
	}
	return format
}
