package location

import (
	"context"

	domain "courtside/internal/domain/location"
)

// Store persists Location state.
type Store interface {
	GetByID(ctx context.Context, id string) (domain.Location, error)
	Save(ctx context.Context, value domain.Location) error
	List(ctx context.Context) ([]domain.Location, error)
}
