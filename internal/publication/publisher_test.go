package publication

import (
	"context"
	"encoding/json"
	"errors"
	"testing"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/educoreai-lotus/content-studio/internal/domain"
)

// publishFixture wires a publisher over a course with one fully complete
// topic so the default path validates cleanly.
type publishFixture struct {
	courseID  uuid.UUID
	topic     *domain.Topic
	topics    *mockTopicRepo
	courses   *mockCourseRepo
	contents  *mockContentRepo
	transfer  *mockTransfer
	store     *mockBlobStore
	publisher *Publisher
}

func newPublishFixture(t *testing.T) *publishFixture {
	t.Helper()

	templateID := uuid.New()
	f := &publishFixture{
		courseID: uuid.New(),
		topic:    testTopic("Complete Topic", &templateID),
		transfer: &mockTransfer{},
		store:    &mockBlobStore{configured: true},
		courses:  &mockCourseRepo{},
	}
	f.topics = &mockTopicRepo{
		listByCourseFn: func(context.Context, uuid.UUID) ([]*domain.Topic, error) {
			return []*domain.Topic{f.topic}, nil
		},
	}
	f.contents = &mockContentRepo{
		listCurrentFn: func(context.Context, uuid.UUID) ([]*domain.Content, error) {
			return []*domain.Content{
				contentRow(f.topic.ID, domain.FormatTextAudio, `{"text":"lesson body"}`),
			}, nil
		},
	}

	validator := newTestValidator(f.topics, staticTemplate(domain.FormatText), f.contents)
	cleanup := NewArchiveCleanupService(f.contents, f.store, zerolog.Nop(), nil)
	f.publisher = NewPublisher(f.courses, f.topics, f.contents, validator, f.transfer, cleanup, zerolog.Nop(), nil)
	return f
}

func TestExecute_Success(t *testing.T) {
	f := newPublishFixture(t)

	result, err := f.publisher.Execute(context.Background(), f.courseID)

	require.NoError(t, err)
	assert.True(t, result.Valid)

	require.Len(t, f.transfer.sent, 1)
	projection := f.transfer.sent[0]
	assert.Equal(t, "Test Course", projection.Name)
	require.Len(t, projection.Topics, 1)
	assert.Equal(t, "Complete Topic", projection.Topics[0].Name)
	// The projection carries the fixed six-entry content set.
	assert.Len(t, projection.Topics[0].Contents, 6)

	// All three post-transfer hooks ran.
	assert.Equal(t, []uuid.UUID{f.topic.ID}, f.topics.usageIncremented)
	assert.Equal(t, []domain.CourseStatus{domain.CourseStatusArchived}, f.courses.statusUpdates)
}

func TestExecute_ValidationFindingsBlockTransfer(t *testing.T) {
	f := newPublishFixture(t)
	f.contents.listCurrentFn = func(context.Context, uuid.UUID) ([]*domain.Content, error) {
		return nil, nil
	}

	result, err := f.publisher.Execute(context.Background(), f.courseID)

	require.ErrorIs(t, err, domain.ErrInvalidInput)
	require.NotNil(t, result)
	assert.False(t, result.Valid)
	assert.NotEmpty(t, result.Errors)

	assert.Empty(t, f.transfer.sent)
	assert.Empty(t, f.topics.usageIncremented)
	assert.Empty(t, f.courses.statusUpdates)
}

func TestExecute_TransferFailureIsFatal(t *testing.T) {
	f := newPublishFixture(t)
	f.transfer.sendFn = func(context.Context, *CourseProjection) error {
		return errors.New("downstream unavailable")
	}

	result, err := f.publisher.Execute(context.Background(), f.courseID)

	require.ErrorIs(t, err, domain.ErrTransferFailed)
	var transferErr *domain.TransferError
	require.ErrorAs(t, err, &transferErr)
	assert.Equal(t, f.courseID.String(), transferErr.CourseID)
	assert.True(t, result.Valid)

	// No post-transfer hook runs after a failed handoff.
	assert.Empty(t, f.topics.usageIncremented)
	assert.Empty(t, f.courses.statusUpdates)
	assert.Empty(t, f.contents.softDeleted)
}

func TestExecute_HookFailuresAreNotSurfaced(t *testing.T) {
	f := newPublishFixture(t)
	f.topics.incrementErr = errors.New("usage update failed")
	f.courses.updateErr = errors.New("status update failed")
	f.contents.listHistoryFn = func(context.Context, uuid.UUID) ([]*domain.Content, error) {
		return nil, errors.New("history unavailable")
	}

	result, err := f.publisher.Execute(context.Background(), f.courseID)

	require.NoError(t, err)
	assert.True(t, result.Valid)
	require.Len(t, f.transfer.sent, 1)

	// Every hook was still attempted despite its siblings failing.
	assert.Len(t, f.topics.usageIncremented, 1)
	assert.Len(t, f.courses.statusUpdates, 1)
}

func TestExecute_CourseNeverMarkedActive(t *testing.T) {
	f := newPublishFixture(t)

	_, err := f.publisher.Execute(context.Background(), f.courseID)

	require.NoError(t, err)
	for _, status := range f.courses.statusUpdates {
		assert.Equal(t, domain.CourseStatusArchived, status)
	}
}

func TestExecute_CleansUpHistoryBlobs(t *testing.T) {
	f := newPublishFixture(t)
	historyID := uuid.New()
	f.contents.listHistoryFn = func(context.Context, uuid.UUID) ([]*domain.Content, error) {
		return []*domain.Content{
			{
				ID:          historyID,
				TopicID:     f.topic.ID,
				ContentType: domain.FormatAvatarVideo,
				Data:        json.RawMessage(`{"videoUrl":"https://cdn.example.com/storage/v1/object/public/avatar-videos/videos/old.mp4"}`),
			},
		}, nil
	}

	_, err := f.publisher.Execute(context.Background(), f.courseID)

	require.NoError(t, err)
	assert.Equal(t, []string{"avatar-videos/videos/old.mp4"}, f.store.deleted)
	require.Len(t, f.contents.softDeleted, 1)
	assert.Equal(t, []uuid.UUID{historyID}, f.contents.softDeleted[0])
}
