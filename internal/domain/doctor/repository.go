package doctor

import (
	"context"

	"github.com/google/uuid"
)

type Repository interface {
	// GetByID returns an approved doctor with user and specialty loaded.
	GetByID(ctx context.Context, id uuid.UUID) (*Doctor, error)

	Search(ctx context.Context, q *SearchQuery) (*Paged, error)

	ListSpecialties(ctx context.Context) ([]*Specialty, error)
}
