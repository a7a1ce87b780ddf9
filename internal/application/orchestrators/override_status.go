package orchestrators

import (
	"context"
	"log/slog"
	"time"

	"courtside/internal/domain/audit"
	"courtside/internal/domain/slot"
)

// OverrideSlotStore defines the slot store interface for admin overrides.
type OverrideSlotStore interface {
	GetByID(ctx context.Context, id string) (slot.Slot, error)
	OverrideStatus(ctx context.Context, id string, status slot.Status, playerID string, heldAt time.Time) error
}

// OverrideStatusInput carries input for an admin status override.
type OverrideStatusInput struct {
	SlotID   string
	Status   slot.Status
	PlayerID string
	ActorID  string
}

// OverrideStatusDeps holds dependencies for OverrideStatus.
type OverrideStatusDeps struct {
	SlotStore  OverrideSlotStore
	AuditStore AuditStore
	GenerateID func() string
	Now        func() time.Time
}

// ExecuteOverrideStatus sets a slot's status directly, bypassing the
// transition table. The status/player pairing rules still hold: a slot
// cannot become available with a player attached, nor pending without one.
// Every override is audited.
// PRE: caller is an admin (enforced at the transport layer)
// POST: slot has exactly the requested status and player
func ExecuteOverrideStatus(ctx context.Context, input OverrideStatusInput, deps OverrideStatusDeps) (slot.Slot, error) {
	s, err := deps.SlotStore.GetByID(ctx, input.SlotID)
	if err != nil {
		return slot.Slot{}, err
	}

	now := deps.Now()
	prev := s.Status
	s.Status = input.Status
	s.PlayerID = input.PlayerID
	// An override into pending starts a fresh hold; the sweep releases it
	// like one taken through reserve.
	if input.Status == slot.StatusPending {
		s.HeldAt = now
	} else {
		s.HeldAt = time.Time{}
	}
	if err := s.Validate(); err != nil {
		return slot.Slot{}, err
	}

	if err := deps.SlotStore.OverrideStatus(ctx, input.SlotID, input.Status, input.PlayerID, s.HeldAt); err != nil {
		return slot.Slot{}, err
	}

	slog.Warn("booking_event", "event", "status_overridden", "slot_id", s.ID,
		"from", prev, "to", input.Status, "player_id", input.PlayerID, "admin_id", input.ActorID)
	recordAudit(ctx, deps.AuditStore, deps.GenerateID, input.ActorID, "admin",
		audit.CategoryBooking, audit.ActionOverride, "slot", s.ID,
		string(prev)+" -> "+string(input.Status), now)

	return s, nil
}
