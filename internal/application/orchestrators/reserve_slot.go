package orchestrators

import (
	"context"
	"log/slog"
	"time"

	"courtside/internal/domain/audit"
	"courtside/internal/domain/slot"
)

// ReserveSlotStore defines the slot store interface for taking a hold.
type ReserveSlotStore interface {
	GetByID(ctx context.Context, id string) (slot.Slot, error)
	CountActivePlayerHolds(ctx context.Context, playerID, date, startTime string) (int, error)
	Reserve(ctx context.Context, id, playerID string, heldAt time.Time) error
}

// ReserveSlotInput carries input for reserving a slot.
type ReserveSlotInput struct {
	SlotID    string
	PlayerID  string
	ActorID   string
	ActorRole string
}

// ReserveSlotDeps holds dependencies for ReserveSlot.
type ReserveSlotDeps struct {
	SlotStore  ReserveSlotStore
	AuditStore AuditStore
	GenerateID func() string
	Now        func() time.Time
}

// ExecuteReserveSlot places a pending hold on an available slot for a player.
// The decision is a single conditional update in the store, so two players
// racing for the same slot resolve to exactly one winner. The cross-coach
// check (one active hold per player per timeslot) is pre-checked for a clean
// error and enforced again by the store on the race path.
// PRE: SlotID and PlayerID are non-empty
// POST: Slot is pending for PlayerID, or ErrSlotNotAvailable / ErrSchedulingConflict
func ExecuteReserveSlot(ctx context.Context, input ReserveSlotInput, deps ReserveSlotDeps) (slot.Slot, error) {
	if input.SlotID == "" || input.PlayerID == "" {
		return slot.Slot{}, slot.ErrPlayerRequired
	}

	s, err := deps.SlotStore.GetByID(ctx, input.SlotID)
	if err != nil {
		return slot.Slot{}, err
	}
	if s.Status != slot.StatusAvailable {
		return slot.Slot{}, slot.ErrSlotNotAvailable
	}

	held, err := deps.SlotStore.CountActivePlayerHolds(ctx, input.PlayerID, s.Date, s.StartTime)
	if err != nil {
		return slot.Slot{}, err
	}
	if held > 0 {
		return slot.Slot{}, slot.ErrSchedulingConflict
	}

	now := deps.Now()
	if err := deps.SlotStore.Reserve(ctx, input.SlotID, input.PlayerID, now); err != nil {
		return slot.Slot{}, err
	}

	s.Status = slot.StatusPending
	s.PlayerID = input.PlayerID
	s.HeldAt = now

	slog.Info("booking_event", "event", "slot_reserved", "slot_id", s.ID,
		"player_id", input.PlayerID, "coach_id", s.CoachID, "date", s.Date, "start", s.StartTime)
	recordAudit(ctx, deps.AuditStore, deps.GenerateID, input.ActorID, input.ActorRole,
		audit.CategoryBooking, audit.ActionReserve, "slot", s.ID,
		s.Date+" "+s.StartTime, now)

	return s, nil
}
