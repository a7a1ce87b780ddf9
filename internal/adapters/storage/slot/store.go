package slot

import (
	"context"
	"time"

	domain "courtside/internal/domain/slot"
)

// Store persists Slot state. The conditional transition methods are the
// concurrency boundary of the whole booking system: each is a single UPDATE
// guarded by the current status, so exactly one concurrent caller wins.
type Store interface {
	GetByID(ctx context.Context, id string) (domain.Slot, error)
	Save(ctx context.Context, value domain.Slot) error
	InsertMissing(ctx context.Context, slots []domain.Slot) (int, error)
	DeleteAvailableByIDs(ctx context.Context, ids []string) (int, error)

	ListByCoachDate(ctx context.Context, coachID, date string) ([]domain.Slot, error)
	ListAvailableInRange(ctx context.Context, fromDate, toDate, locationID string) ([]domain.Slot, error)
	ListByPlayer(ctx context.Context, playerID string) ([]domain.Slot, error)
	ListPendingHeldBefore(ctx context.Context, cutoff time.Time) ([]domain.Slot, error)
	CountActivePlayerHolds(ctx context.Context, playerID, date, startTime string) (int, error)
	CountByStatus(ctx context.Context) (map[domain.Status]int, error)

	// Reserve atomically moves an available slot to pending for playerID.
	// Returns domain.ErrSlotNotAvailable on a lost race and
	// domain.ErrSchedulingConflict when the player already holds this timeslot.
	Reserve(ctx context.Context, id, playerID string, heldAt time.Time) error

	// TransitionStatus atomically moves a slot from -> to without touching the
	// player. Returns domain.ErrInvalidState if the slot was not in from.
	TransitionStatus(ctx context.Context, id string, from, to domain.Status) error

	// ReleaseHold atomically returns a pending slot to the available pool,
	// clearing the player and hold time.
	ReleaseHold(ctx context.Context, id string) error

	// OverrideStatus sets status and player unconditionally (admin path).
	// heldAt is stamped only when status is pending, so an overridden hold
	// expires like any other; every other status clears it.
	OverrideStatus(ctx context.Context, id string, status domain.Status, playerID string, heldAt time.Time) error
}
