package availability

import (
	"context"

	domain "courtside/internal/domain/availability"
)

// Store persists availability Window state.
type Store interface {
	GetByID(ctx context.Context, id string) (domain.Window, error)
	Save(ctx context.Context, value domain.Window) error
	Delete(ctx context.Context, id string) error
	List(ctx context.Context) ([]domain.Window, error)
	ListByCoach(ctx context.Context, coachID string) ([]domain.Window, error)
	ListByCoachDay(ctx context.Context, coachID, day string) ([]domain.Window, error)
}
