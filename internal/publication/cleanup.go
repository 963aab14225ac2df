package publication

import (
	"context"
	"encoding/json"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/educoreai-lotus/content-studio/internal/domain"
	"github.com/educoreai-lotus/content-studio/internal/observability"
	"github.com/educoreai-lotus/content-studio/internal/repository"
	"github.com/educoreai-lotus/content-studio/internal/storage"
)

// blobURLFields are the payload fields that may reference a stored blob,
// by content row type.
var blobURLFields = map[domain.ContentFormat][]string{
	domain.FormatAvatarVideo:  {"videoUrl"},
	domain.FormatPresentation: {"presentationUrl", "fileUrl", "url"},
	domain.FormatAudio:        {"audioUrl", "audio_url"},
	domain.FormatTextAudio:    {"audioUrl", "audio_url"},
}

// BlobStore is the storage surface the cleanup service needs.
type BlobStore interface {
	IsConfigured() bool
	Delete(ctx context.Context, bucket, objectPath string) error
}

// ArchiveCleanupService removes superseded content: the blobs its history
// rows still reference, then the rows themselves via soft delete. Every
// step is best effort; a blob that cannot be removed is logged and
// skipped, and its history row is still soft-deleted.
type ArchiveCleanupService struct {
	contents repository.ContentRepository
	store    BlobStore
	logger   zerolog.Logger
	metrics  *observability.Metrics
}

// NewArchiveCleanupService creates an archive cleanup service. store may
// be nil or unconfigured; blob deletion is then skipped entirely.
func NewArchiveCleanupService(contents repository.ContentRepository, store BlobStore, logger zerolog.Logger, metrics *observability.Metrics) *ArchiveCleanupService {
	return &ArchiveCleanupService{
		contents: contents,
		store:    store,
		logger:   logger.With().Str("component", "archive_cleanup").Logger(),
		metrics:  metrics,
	}
}

// CleanupTopic removes the archived content of one topic: best-effort blob
// deletes for every storage path its history rows reference, then a soft
// delete of the rows. The error covers repository failures only.
func (s *ArchiveCleanupService) CleanupTopic(ctx context.Context, topicID uuid.UUID) error {
	if s.metrics != nil {
		s.metrics.RecordCleanupRunStarted()
	}

	rows, err := s.contents.ListHistory(ctx, topicID)
	if err != nil {
		return err
	}
	if len(rows) == 0 {
		return nil
	}

	logger := s.logger.With().Str("topic_id", topicID.String()).Logger()
	ids := make([]uuid.UUID, 0, len(rows))
	for _, row := range rows {
		ids = append(ids, row.ID)
		for _, ref := range blobReferences(row) {
			s.deleteBlob(ctx, ref, logger)
		}
	}

	if err := s.contents.SoftDeleteHistory(ctx, ids); err != nil {
		return err
	}
	logger.Info().Int("rows", len(ids)).Msg("Archived content cleaned up")
	return nil
}

// blobReference is one storage object referenced by a history row.
type blobReference struct {
	bucket     string
	objectPath string
}

// blobReferences extracts the storage paths a history row still points at.
// Only URLs under the known public storage prefix are considered; external
// URLs are left alone.
func blobReferences(row *domain.Content) []blobReference {
	var urls []string
	if data, ok := parseHistoryPayload(row.Data); ok {
		for _, field := range blobURLFields[row.ContentType] {
			if s, ok := data[field].(string); ok && s != "" {
				urls = append(urls, s)
			}
		}
	}
	if row.AudioURL != nil && *row.AudioURL != "" {
		urls = append(urls, *row.AudioURL)
	}

	var refs []blobReference
	seen := make(map[string]bool, len(urls))
	for _, url := range urls {
		bucket, objectPath, ok := storage.ExtractStoragePath(url)
		if !ok || seen[bucket+"/"+objectPath] {
			continue
		}
		seen[bucket+"/"+objectPath] = true
		refs = append(refs, blobReference{bucket: bucket, objectPath: objectPath})
	}
	return refs
}

// parseHistoryPayload decodes a history payload, tolerating malformed
// rows: cleanup must not fail because an old row cannot be parsed.
func parseHistoryPayload(raw json.RawMessage) (map[string]any, bool) {
	if len(raw) == 0 {
		return nil, false
	}
	var data map[string]any
	if err := json.Unmarshal(raw, &data); err != nil {
		return nil, false
	}
	return data, true
}

// deleteBlob removes one storage object, best effort.
func (s *ArchiveCleanupService) deleteBlob(ctx context.Context, ref blobReference, logger zerolog.Logger) {
	if s.store == nil || !s.store.IsConfigured() {
		return
	}
	if err := s.store.Delete(ctx, ref.bucket, ref.objectPath); err != nil {
		if s.metrics != nil {
			s.metrics.RecordCleanupBlobFailed()
		}
		logger.Warn().Err(err).
			Str("bucket", ref.bucket).
			Str("object_path", ref.objectPath).
			Msg("Archived blob deletion failed")
		return
	}
	if s.metrics != nil {
		s.metrics.RecordCleanupBlobDeleted()
	}
	logger.Debug().
		Str("bucket", ref.bucket).
		Str("object_path", ref.objectPath).
		Msg("Archived blob deleted")
}
