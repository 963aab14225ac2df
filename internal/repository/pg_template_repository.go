package repository

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"github.com/educoreai-lotus/content-studio/internal/domain"
)

// PgTemplateRepository is a PostgreSQL implementation of TemplateRepository.
type PgTemplateRepository struct {
	db DBTX
}

// Compile-time interface check.
var _ TemplateRepository = (*PgTemplateRepository)(nil)

// NewPgTemplateRepository creates a new PostgreSQL template repository.
func NewPgTemplateRepository(db DBTX) *PgTemplateRepository {
	return &PgTemplateRepository{db: db}
}

// Create inserts a new template.
func (r *PgTemplateRepository) Create(ctx context.Context, template *domain.Template) error {
	if template == nil {
		return fmt.Errorf("%w: template is nil", domain.ErrInvalidInput)
	}
	if template.Name == "" {
		return fmt.Errorf("%w: template name is required", domain.ErrInvalidInput)
	}
	if template.ID == uuid.Nil {
		template.ID = uuid.New()
	}

	formatOrder, err := json.Marshal(template.FormatOrder)
	if err != nil {
		return fmt.Errorf("marshaling format order: %w", err)
	}

	query := `
		INSERT INTO templates (id, name, format_order)
		VALUES ($1, $2, $3)
		RETURNING created_at, updated_at`

	err = r.db.QueryRow(ctx, query,
		template.ID,
		template.Name,
		formatOrder,
	).Scan(&template.CreatedAt, &template.UpdatedAt)
	if err != nil {
		if isPgUniqueViolation(err) {
			return domain.NewAlreadyExistsError("template", template.ID.String())
		}
		return fmt.Errorf("creating template: %w", err)
	}
	return nil
}

// Get retrieves a template by its unique ID.
func (r *PgTemplateRepository) Get(ctx context.Context, id uuid.UUID) (*domain.Template, error) {
	query := `
		SELECT id, name, format_order, created_at, updated_at
		FROM templates
		WHERE id = $1`

	var (
		template    domain.Template
		formatOrder []byte
	)
	err := r.db.QueryRow(ctx, query, id).Scan(
		&template.ID,
		&template.Name,
		&formatOrder,
		&template.CreatedAt,
		&template.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.NewNotFoundError("template", id.String())
		}
		return nil, fmt.Errorf("getting template: %w", err)
	}

	if len(formatOrder) > 0 {
		if err := json.Unmarshal(formatOrder, &template.FormatOrder); err != nil {
			return nil, fmt.Errorf("unmarshaling format order: %w", err)
		}
	}
	return &template, nil
}
