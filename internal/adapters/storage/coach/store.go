package coach

import (
	"context"

	domain "courtside/internal/domain/coach"
)

// Store persists Coach state.
type Store interface {
	GetByID(ctx context.Context, id string) (domain.Coach, error)
	GetByAccountID(ctx context.Context, accountID string) (domain.Coach, error)
	Save(ctx context.Context, value domain.Coach) error
	List(ctx context.Context) ([]domain.Coach, error)
	ListActive(ctx context.Context) ([]domain.Coach, error)
}
