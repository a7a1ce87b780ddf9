package payment

import (
	"context"

	domain "courtside/internal/domain/payment"
)

// Store persists payment Records.
type Store interface {
	GetByID(ctx context.Context, id string) (domain.Record, error)
	Save(ctx context.Context, value domain.Record) error
	ListBySlot(ctx context.Context, slotID string) ([]domain.Record, error)
	SumSucceeded(ctx context.Context) (int, error)
}
