package orchestrators

import (
	"context"
	"log/slog"
	"time"

	"courtside/internal/domain/account"
	"courtside/internal/domain/audit"
	"courtside/internal/domain/slot"
)

// ReleaseSlotStore defines the slot store interface for releasing a hold.
type ReleaseSlotStore interface {
	GetByID(ctx context.Context, id string) (slot.Slot, error)
	ReleaseHold(ctx context.Context, id string) error
}

// ReleaseHoldInput carries input for releasing a pending hold.
type ReleaseHoldInput struct {
	SlotID    string
	ActorID   string
	ActorRole string
}

// ReleaseHoldDeps holds dependencies for ReleaseHold.
type ReleaseHoldDeps struct {
	SlotStore  ReleaseSlotStore
	AuditStore AuditStore
	GenerateID func() string
	Now        func() time.Time
}

// ExecuteReleaseHold returns a pending slot to the available pool, clearing
// the player. A player may only release their own hold.
// PRE: slot is pending
// POST: slot is available with no player, or ErrInvalidState / ErrNotOwner
func ExecuteReleaseHold(ctx context.Context, input ReleaseHoldInput, deps ReleaseHoldDeps) error {
	s, err := deps.SlotStore.GetByID(ctx, input.SlotID)
	if err != nil {
		return err
	}
	if input.ActorRole == account.RolePlayer && s.PlayerID != input.ActorID {
		return slot.ErrNotOwner
	}

	if err := deps.SlotStore.ReleaseHold(ctx, input.SlotID); err != nil {
		return err
	}

	slog.Info("booking_event", "event", "hold_released", "slot_id", s.ID,
		"player_id", s.PlayerID, "date", s.Date, "start", s.StartTime)
	recordAudit(ctx, deps.AuditStore, deps.GenerateID, input.ActorID, input.ActorRole,
		audit.CategoryBooking, audit.ActionRelease, "slot", s.ID,
		s.Date+" "+s.StartTime, deps.Now())
	return nil
}
