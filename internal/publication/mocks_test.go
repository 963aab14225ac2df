package publication

import (
	"context"
	"sync"

	"github.com/google/uuid"

	"github.com/educoreai-lotus/content-studio/internal/domain"
	"github.com/educoreai-lotus/content-studio/internal/repository"
)

type mockTopicRepo struct {
	getFn          func(ctx context.Context, id uuid.UUID) (*domain.Topic, error)
	listByCourseFn func(ctx context.Context, courseID uuid.UUID) ([]*domain.Topic, error)

	mu               sync.Mutex
	usageIncremented []uuid.UUID
	incrementErr     error
}

func (m *mockTopicRepo) Create(context.Context, *domain.Topic) error { return nil }

func (m *mockTopicRepo) Get(ctx context.Context, id uuid.UUID) (*domain.Topic, error) {
	if m.getFn != nil {
		return m.getFn(ctx, id)
	}
	return nil, domain.NewNotFoundError("topic", id.String())
}

func (m *mockTopicRepo) ListByCourse(ctx context.Context, courseID uuid.UUID) ([]*domain.Topic, error) {
	return m.listByCourseFn(ctx, courseID)
}

func (m *mockTopicRepo) List(context.Context, repository.TopicFilter) ([]*domain.Topic, int64, error) {
	return nil, 0, nil
}

func (m *mockTopicRepo) Update(context.Context, uuid.UUID, func(*domain.Topic) error) error {
	return nil
}

func (m *mockTopicRepo) UpdateStatus(context.Context, uuid.UUID, domain.TopicStatus) error {
	return nil
}

func (m *mockTopicRepo) IncrementUsage(_ context.Context, id uuid.UUID) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.usageIncremented = append(m.usageIncremented, id)
	return m.incrementErr
}

func (m *mockTopicRepo) SoftDelete(context.Context, uuid.UUID) error { return nil }

type mockTemplateRepo struct {
	getFn func(ctx context.Context, id uuid.UUID) (*domain.Template, error)
}

func (m *mockTemplateRepo) Create(context.Context, *domain.Template) error { return nil }

func (m *mockTemplateRepo) Get(ctx context.Context, id uuid.UUID) (*domain.Template, error) {
	return m.getFn(ctx, id)
}

type mockContentRepo struct {
	listCurrentFn func(ctx context.Context, topicID uuid.UUID) ([]*domain.Content, error)
	listHistoryFn func(ctx context.Context, topicID uuid.UUID) ([]*domain.Content, error)

	mu          sync.Mutex
	softDeleted [][]uuid.UUID
	softDelErr  error
}

func (m *mockContentRepo) Upsert(context.Context, *domain.Content) error { return nil }

func (m *mockContentRepo) GetCurrent(_ context.Context, topicID uuid.UUID, _ domain.ContentFormat) (*domain.Content, error) {
	return nil, domain.NewNotFoundError("content", topicID.String())
}

func (m *mockContentRepo) ListCurrent(ctx context.Context, topicID uuid.UUID) ([]*domain.Content, error) {
	if m.listCurrentFn != nil {
		return m.listCurrentFn(ctx, topicID)
	}
	return nil, nil
}

func (m *mockContentRepo) ListHistory(ctx context.Context, topicID uuid.UUID) ([]*domain.Content, error) {
	if m.listHistoryFn != nil {
		return m.listHistoryFn(ctx, topicID)
	}
	return nil, nil
}

func (m *mockContentRepo) SoftDeleteHistory(_ context.Context, ids []uuid.UUID) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.softDeleted = append(m.softDeleted, ids)
	return m.softDelErr
}

type mockCourseRepo struct {
	getFn func(ctx context.Context, id uuid.UUID) (*domain.Course, error)

	mu            sync.Mutex
	statusUpdates []domain.CourseStatus
	updateErr     error
}

func (m *mockCourseRepo) Create(context.Context, *domain.Course) error { return nil }

func (m *mockCourseRepo) Get(ctx context.Context, id uuid.UUID) (*domain.Course, error) {
	if m.getFn != nil {
		return m.getFn(ctx, id)
	}
	return &domain.Course{ID: id, Name: "Test Course", Status: domain.CourseStatusDraft}, nil
}

func (m *mockCourseRepo) UpdateStatus(_ context.Context, _ uuid.UUID, status domain.CourseStatus) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.statusUpdates = append(m.statusUpdates, status)
	return m.updateErr
}

type mockTransfer struct {
	sendFn func(ctx context.Context, course *CourseProjection) error

	mu   sync.Mutex
	sent []*CourseProjection
}

func (m *mockTransfer) Send(ctx context.Context, course *CourseProjection) error {
	m.mu.Lock()
	m.sent = append(m.sent, course)
	m.mu.Unlock()
	if m.sendFn != nil {
		return m.sendFn(ctx, course)
	}
	return nil
}

type mockBlobStore struct {
	configured bool
	deleteFn   func(ctx context.Context, bucket, objectPath string) error

	mu      sync.Mutex
	deleted []string
}

func (m *mockBlobStore) IsConfigured() bool { return m.configured }

func (m *mockBlobStore) Delete(ctx context.Context, bucket, objectPath string) error {
	m.mu.Lock()
	m.deleted = append(m.deleted, bucket+"/"+objectPath)
	m.mu.Unlock()
	if m.deleteFn != nil {
		return m.deleteFn(ctx, bucket, objectPath)
	}
	return nil
}
