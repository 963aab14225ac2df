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

func newTestTemplate() *domain.Template {
	return &domain.Template{
		ID:   uuid.New(),
		Name: "full-course",
		FormatOrder: []domain.ContentFormat{
			domain.FormatText,
			domain.FormatCode,
			domain.FormatPresentation,
		},
	}
}

func TestNewPgTemplateRepository(t *testing.T) {
	repo := NewPgTemplateRepository(nil)
	assert.NotNil(t, repo)
}

func TestPgTemplateRepository_Create(t *testing.T) {
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mock.Close()

	repo := NewPgTemplateRepository(mock)
	template := newTestTemplate()

	mock.ExpectQuery("INSERT INTO templates").
		WithArgs(template.ID, template.Name, pgxmock.AnyArg()).
		WillReturnRows(pgxmock.NewRows([]string{"created_at", "updated_at"}).
			AddRow(time.Now(), time.Now()))

	err = repo.Create(context.Background(), template)
	require.NoError(t, err)
	assert.False(t, template.CreatedAt.IsZero())
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestPgTemplateRepository_Create_Validation(t *testing.T) {
	repo := NewPgTemplateRepository(nil)

	err := repo.Create(context.Background(), nil)
	assert.ErrorIs(t, err, domain.ErrInvalidInput)

	err = repo.Create(context.Background(), &domain.Template{})
	assert.ErrorIs(t, err, domain.ErrInvalidInput)
}

func TestPgTemplateRepository_Get(t *testing.T) {
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mock.Close()

	repo := NewPgTemplateRepository(mock)
	template := newTestTemplate()

	mock.ExpectQuery(`SELECT .* FROM templates WHERE id = \$1`).
		WithArgs(template.ID).
		WillReturnRows(pgxmock.NewRows([]string{"id", "name", "format_order", "created_at", "updated_at"}).
			AddRow(template.ID, template.Name,
				[]byte(`["text","code","presentation"]`), time.Now(), time.Now()))

	got, err := repo.Get(context.Background(), template.ID)
	require.NoError(t, err)
	assert.Equal(t, template.ID, got.ID)
	assert.Equal(t, template.FormatOrder, got.FormatOrder)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestPgTemplateRepository_Get_EmptyFormatOrder(t *testing.T) {
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mock.Close()

	repo := NewPgTemplateRepository(mock)
	id := uuid.New()

	mock.ExpectQuery(`SELECT .* FROM templates WHERE id = \$1`).
		WithArgs(id).
		WillReturnRows(pgxmock.NewRows([]string{"id", "name", "format_order", "created_at", "updated_at"}).
			AddRow(id, "empty", []byte(`[]`), time.Now(), time.Now()))

	got, err := repo.Get(context.Background(), id)
	require.NoError(t, err)
	assert.Empty(t, got.FormatOrder)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestPgTemplateRepository_Get_NotFound(t *testing.T) {
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mock.Close()

	repo := NewPgTemplateRepository(mock)
	id := uuid.New()

	mock.ExpectQuery(`SELECT .* FROM templates`).
		WithArgs(id).
		WillReturnError(pgx.ErrNoRows)

	got, err := repo.Get(context.Background(), id)
	assert.Nil(t, got)
	assert.ErrorIs(t, err, domain.ErrNotFound)
	assert.NoError(t, mock.ExpectationsWereMet())
}
