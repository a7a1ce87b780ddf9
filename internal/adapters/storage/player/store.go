package player

import (
	"context"

	domain "courtside/internal/domain/player"
)

// Store persists Player state.
type Store interface {
	GetByID(ctx context.Context, id string) (domain.Player, error)
	GetByAccountID(ctx context.Context, accountID string) (domain.Player, error)
	Save(ctx context.Context, value domain.Player) error
	List(ctx context.Context) ([]domain.Player, error)
}
