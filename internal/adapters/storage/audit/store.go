package audit

import (
	"context"

	domain "courtside/internal/domain/audit"
)

// Store persists audit Events.
type Store interface {
	Save(ctx context.Context, value domain.Event) error
	ListRecent(ctx context.Context, limit int) ([]domain.Event, error)
	ListByResource(ctx context.Context, resourceID string) ([]domain.Event, error)
}
