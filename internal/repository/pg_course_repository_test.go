package repository

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/pashagolub/pgxmock/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/educoreai-lotus/content-studio/internal/domain"
)

func newTestCourse() *domain.Course {
	return &domain.Course{
		ID:          uuid.New(),
		Name:        "Backend Engineering with Go",
		Description: "From net/http to production services",
		Status:      domain.CourseStatusDraft,
		CreatedBy:   "trainer-42",
	}
}

func TestNewPgCourseRepository(t *testing.T) {
	repo := NewPgCourseRepository(nil)
	assert.NotNil(t, repo)
}

func TestPgCourseRepository_Create(t *testing.T) {
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mock.Close()

	repo := NewPgCourseRepository(mock)
	course := newTestCourse()

	mock.ExpectQuery("INSERT INTO courses").
		WithArgs(course.ID, course.Name, course.Description, course.Status, course.CreatedBy).
		WillReturnRows(pgxmock.NewRows([]string{"created_at", "updated_at"}).
			AddRow(time.Now(), time.Now()))

	err = repo.Create(context.Background(), course)
	require.NoError(t, err)
	assert.False(t, course.CreatedAt.IsZero())
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestPgCourseRepository_Create_DefaultsToDraft(t *testing.T) {
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mock.Close()

	repo := NewPgCourseRepository(mock)
	course := &domain.Course{Name: "Untitled"}

	mock.ExpectQuery("INSERT INTO courses").
		WithArgs(pgxmock.AnyArg(), course.Name, "", domain.CourseStatusDraft, "").
		WillReturnRows(pgxmock.NewRows([]string{"created_at", "updated_at"}).
			AddRow(time.Now(), time.Now()))

	err = repo.Create(context.Background(), course)
	require.NoError(t, err)
	assert.Equal(t, domain.CourseStatusDraft, course.Status)
	assert.NotEqual(t, uuid.Nil, course.ID)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestPgCourseRepository_Get(t *testing.T) {
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mock.Close()

	repo := NewPgCourseRepository(mock)
	course := newTestCourse()

	mock.ExpectQuery(`SELECT .* FROM courses WHERE id = \$1 AND deleted_at IS NULL`).
		WithArgs(course.ID).
		WillReturnRows(pgxmock.NewRows([]string{
			"id", "name", "description", "status", "created_by",
			"created_at", "updated_at", "deleted_at",
		}).AddRow(
			course.ID, course.Name, course.Description, course.Status,
			course.CreatedBy, time.Now(), time.Now(), nil,
		))

	got, err := repo.Get(context.Background(), course.ID)
	require.NoError(t, err)
	assert.Equal(t, course.ID, got.ID)
	assert.Equal(t, course.Status, got.Status)
	assert.Nil(t, got.DeletedAt)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestPgCourseRepository_Get_NotFound(t *testing.T) {
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mock.Close()

	repo := NewPgCourseRepository(mock)
	id := uuid.New()

	mock.ExpectQuery(`SELECT .* FROM courses`).
		WithArgs(id).
		WillReturnError(pgx.ErrNoRows)

	got, err := repo.Get(context.Background(), id)
	assert.Nil(t, got)
	assert.ErrorIs(t, err, domain.ErrNotFound)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestPgCourseRepository_UpdateStatus(t *testing.T) {
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mock.Close()

	repo := NewPgCourseRepository(mock)
	id := uuid.New()

	mock.ExpectExec("UPDATE courses").
		WithArgs(id, domain.CourseStatusArchived).
		WillReturnResult(pgxmock.NewResult("UPDATE", 1))

	err = repo.UpdateStatus(context.Background(), id, domain.CourseStatusArchived)
	require.NoError(t, err)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestPgCourseRepository_UpdateStatus_Invalid(t *testing.T) {
	repo := NewPgCourseRepository(nil)

	err := repo.UpdateStatus(context.Background(), uuid.New(), domain.CourseStatus("published"))
	assert.ErrorIs(t, err, domain.ErrInvalidInput)
}

func TestPgCourseRepository_UpdateStatus_NotFound(t *testing.T) {
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mock.Close()

	repo := NewPgCourseRepository(mock)
	id := uuid.New()

	mock.ExpectExec("UPDATE courses").
		WithArgs(id, domain.CourseStatusArchived).
		WillReturnResult(pgxmock.NewResult("UPDATE", 0))

	err = repo.UpdateStatus(context.Background(), id, domain.CourseStatusArchived)
	assert.ErrorIs(t, err, domain.ErrNotFound)
	assert.NoError(t, mock.ExpectationsWereMet())
}
