package repository

import (
	"context"

	"github.com/google/uuid"

	"github.com/educoreai-lotus/content-studio/internal/domain"
)

// TemplateRepository defines the interface for publication template access.
// Templates are immutable at use time; there is no update operation.
type TemplateRepository interface {
	// Create inserts a new template.
	// Returns domain.AlreadyExistsError if a template with the same ID exists.
	Create(ctx context.Context, template *domain.Template) error

	// Get retrieves a template by its unique ID.
	// Returns domain.NotFoundError if the template doesn't exist.
	Get(ctx context.Context, id uuid.UUID) (*domain.Template, error)
}
