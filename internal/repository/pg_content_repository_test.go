package repository

import (
	"context"
	"encoding/json"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/pashagolub/pgxmock/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/educoreai-lotus/content-studio/internal/domain"
)

func newTestContent() *domain.Content {
	audioURL := "http://localhost:9000/storage/v1/object/public/topic-content/audio/lesson.mp3"
	return &domain.Content{
		ID:                 uuid.New(),
		TopicID:            uuid.New(),
		ContentType:        domain.FormatText,
		Data:               json.RawMessage(`{"sections":[{"title":"Intro","body":"Hello"}]}`),
		AudioURL:           &audioURL,
		QualityCheckStatus: domain.QualityCheckPending,
		GenerationMethodID: 1,
	}
}

func contentColumns() []string {
	return []string{
		"id", "topic_id", "content_type", "data", "audio_url",
		"quality_check_status", "generation_method_id",
		"created_at", "updated_at", "deleted_at",
	}
}

func contentRow(content *domain.Content) *pgxmock.Rows {
	now := time.Now()
	return pgxmock.NewRows(contentColumns()).AddRow(
		content.ID, content.TopicID, content.ContentType, []byte(content.Data),
		nullString(content.AudioURL), content.QualityCheckStatus,
		content.GenerationMethodID, now, now, nil,
	)
}

func TestNewPgContentRepository(t *testing.T) {
	repo := NewPgContentRepository(nil)
	assert.NotNil(t, repo)
}

func TestPgContentRepository_Upsert_Insert(t *testing.T) {
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mock.Close()

	repo := NewPgContentRepository(mock)
	content := newTestContent()

	mock.ExpectBegin()
	mock.ExpectQuery(`SELECT .* FROM topic_contents WHERE topic_id = \$1 AND content_type = \$2 AND deleted_at IS NULL FOR UPDATE`).
		WithArgs(content.TopicID, content.ContentType).
		WillReturnError(pgx.ErrNoRows)
	mock.ExpectQuery("INSERT INTO topic_contents").
		WithArgs(content.ID, content.TopicID, content.ContentType,
			content.Data, pgxmock.AnyArg(), content.QualityCheckStatus,
			content.GenerationMethodID).
		WillReturnRows(pgxmock.NewRows([]string{"created_at", "updated_at"}).
			AddRow(time.Now(), time.Now()))
	mock.ExpectCommit()

	err = repo.Upsert(context.Background(), content)
	require.NoError(t, err)
	assert.False(t, content.CreatedAt.IsZero())
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestPgContentRepository_Upsert_SupersedesExisting(t *testing.T) {
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mock.Close()

	repo := NewPgContentRepository(mock)
	existing := newTestContent()
	replacement := &domain.Content{
		TopicID:            existing.TopicID,
		ContentType:        existing.ContentType,
		Data:               json.RawMessage(`{"sections":[{"title":"Rewritten","body":"Better"}]}`),
		QualityCheckStatus: domain.QualityCheckPending,
		GenerationMethodID: 1,
	}

	mock.ExpectBegin()
	mock.ExpectQuery(`SELECT .* FROM topic_contents .* FOR UPDATE`).
		WithArgs(existing.TopicID, existing.ContentType).
		WillReturnRows(contentRow(existing))
	mock.ExpectExec("INSERT INTO topic_content_history").
		WithArgs(pgxmock.AnyArg(), existing.ID, existing.TopicID,
			existing.ContentType, pgxmock.AnyArg(), pgxmock.AnyArg(),
			existing.QualityCheckStatus, existing.GenerationMethodID).
		WillReturnResult(pgxmock.NewResult("INSERT", 1))
	mock.ExpectQuery("UPDATE topic_contents").
		WithArgs(existing.ID, replacement.Data, pgxmock.AnyArg(),
			replacement.QualityCheckStatus, replacement.GenerationMethodID).
		WillReturnRows(pgxmock.NewRows([]string{"created_at", "updated_at"}).
			AddRow(time.Now(), time.Now()))
	mock.ExpectCommit()

	err = repo.Upsert(context.Background(), replacement)
	require.NoError(t, err)
	assert.Equal(t, existing.ID, replacement.ID)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestPgContentRepository_Upsert_ArchiveFailureRollsBack(t *testing.T) {
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mock.Close()

	repo := NewPgContentRepository(mock)
	existing := newTestContent()
	replacement := newTestContent()
	replacement.TopicID = existing.TopicID
	replacement.ContentType = existing.ContentType

	mock.ExpectBegin()
	mock.ExpectQuery(`SELECT .* FROM topic_contents .* FOR UPDATE`).
		WithArgs(existing.TopicID, existing.ContentType).
		WillReturnRows(contentRow(existing))
	mock.ExpectExec("INSERT INTO topic_content_history").
		WithArgs(pgxmock.AnyArg(), existing.ID, existing.TopicID,
			existing.ContentType, pgxmock.AnyArg(), pgxmock.AnyArg(),
			existing.QualityCheckStatus, existing.GenerationMethodID).
		WillReturnError(assert.AnError)
	mock.ExpectRollback()

	err = repo.Upsert(context.Background(), replacement)
	assert.ErrorIs(t, err, assert.AnError)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestPgContentRepository_Upsert_Validation(t *testing.T) {
	repo := NewPgContentRepository(nil)

	err := repo.Upsert(context.Background(), nil)
	assert.ErrorIs(t, err, domain.ErrInvalidInput)

	err = repo.Upsert(context.Background(), &domain.Content{ContentType: domain.FormatText})
	assert.ErrorIs(t, err, domain.ErrInvalidInput)

	err = repo.Upsert(context.Background(), &domain.Content{TopicID: uuid.New()})
	assert.ErrorIs(t, err, domain.ErrInvalidInput)
}

func TestPgContentRepository_GetCurrent(t *testing.T) {
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mock.Close()

	repo := NewPgContentRepository(mock)
	content := newTestContent()

	mock.ExpectQuery(`SELECT .* FROM topic_contents WHERE topic_id = \$1 AND content_type = \$2`).
		WithArgs(content.TopicID, content.ContentType).
		WillReturnRows(contentRow(content))

	got, err := repo.GetCurrent(context.Background(), content.TopicID, content.ContentType)
	require.NoError(t, err)
	assert.Equal(t, content.ID, got.ID)
	assert.JSONEq(t, string(content.Data), string(got.Data))
	require.NotNil(t, got.AudioURL)
	assert.Equal(t, *content.AudioURL, *got.AudioURL)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestPgContentRepository_GetCurrent_NotFound(t *testing.T) {
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mock.Close()

	repo := NewPgContentRepository(mock)
	topicID := uuid.New()

	mock.ExpectQuery(`SELECT .* FROM topic_contents`).
		WithArgs(topicID, domain.FormatMindMap).
		WillReturnError(pgx.ErrNoRows)

	got, err := repo.GetCurrent(context.Background(), topicID, domain.FormatMindMap)
	assert.Nil(t, got)
	assert.ErrorIs(t, err, domain.ErrNotFound)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestPgContentRepository_ListCurrent(t *testing.T) {
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mock.Close()

	repo := NewPgContentRepository(mock)
	topicID := uuid.New()
	text := newTestContent()
	text.TopicID = topicID
	code := newTestContent()
	code.TopicID = topicID
	code.ContentType = domain.FormatCode
	code.AudioURL = nil

	now := time.Now()
	rows := contentRow(text).AddRow(
		code.ID, code.TopicID, code.ContentType, []byte(code.Data),
		nullString(nil), code.QualityCheckStatus, code.GenerationMethodID,
		now, now, nil,
	)

	mock.ExpectQuery(`SELECT .* FROM topic_contents WHERE topic_id = \$1 AND deleted_at IS NULL`).
		WithArgs(topicID).
		WillReturnRows(rows)

	contents, err := repo.ListCurrent(context.Background(), topicID)
	require.NoError(t, err)
	require.Len(t, contents, 2)
	assert.Equal(t, domain.FormatText, contents[0].ContentType)
	assert.Equal(t, domain.FormatCode, contents[1].ContentType)
	assert.Nil(t, contents[1].AudioURL)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestPgContentRepository_ListHistory(t *testing.T) {
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mock.Close()

	repo := NewPgContentRepository(mock)
	topicID := uuid.New()
	superseded := newTestContent()
	superseded.TopicID = topicID

	mock.ExpectQuery(`SELECT .* FROM topic_content_history WHERE topic_id = \$1`).
		WithArgs(topicID).
		WillReturnRows(contentRow(superseded))

	contents, err := repo.ListHistory(context.Background(), topicID)
	require.NoError(t, err)
	require.Len(t, contents, 1)
	assert.Equal(t, superseded.ID, contents[0].ID)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestPgContentRepository_SoftDeleteHistory(t *testing.T) {
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mock.Close()

	repo := NewPgContentRepository(mock)
	ids := []uuid.UUID{uuid.New(), uuid.New()}

	mock.ExpectExec("UPDATE topic_content_history").
		WithArgs(ids).
		WillReturnResult(pgxmock.NewResult("UPDATE", 2))

	err = repo.SoftDeleteHistory(context.Background(), ids)
	require.NoError(t, err)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestPgContentRepository_SoftDeleteHistory_Empty(t *testing.T) {
	repo := NewPgContentRepository(nil)

	err := repo.SoftDeleteHistory(context.Background(), nil)
	assert.NoError(t, err)
}
