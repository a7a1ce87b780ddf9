package orchestrators

import (
	"context"
	"log/slog"
	"time"

	"courtside/internal/domain/audit"
	"courtside/internal/domain/slot"
)

// CompleteSlotStore defines the slot store interface for completing a session.
type CompleteSlotStore interface {
	GetByID(ctx context.Context, id string) (slot.Slot, error)
	TransitionStatus(ctx context.Context, id string, from, to slot.Status) error
}

// CompleteSessionInput carries input for marking a session completed.
type CompleteSessionInput struct {
	SlotID    string
	ActorID   string
	ActorRole string
}

// CompleteSessionDeps holds dependencies for CompleteSession.
type CompleteSessionDeps struct {
	SlotStore  CompleteSlotStore
	AuditStore AuditStore
	GenerateID func() string
	Now        func() time.Time
}

// ExecuteCompleteSession marks a booked session completed. Completing a
// session that has not started yet is allowed (a coach closing out the day
// early) but logged as a warning.
// PRE: slot is booked
// POST: slot is completed, or ErrInvalidState
func ExecuteCompleteSession(ctx context.Context, input CompleteSessionInput, deps CompleteSessionDeps) (slot.Slot, error) {
	s, err := deps.SlotStore.GetByID(ctx, input.SlotID)
	if err != nil {
		return slot.Slot{}, err
	}

	now := deps.Now()
	if startsAt, err := s.StartsAt(now.Location()); err == nil && startsAt.After(now) {
		slog.Warn("booking_event", "event", "completed_before_start", "slot_id", s.ID,
			"date", s.Date, "start", s.StartTime)
	}

	if err := deps.SlotStore.TransitionStatus(ctx, input.SlotID, slot.StatusBooked, slot.StatusCompleted); err != nil {
		return slot.Slot{}, err
	}
	s.Status = slot.StatusCompleted

	slog.Info("booking_event", "event", "session_completed", "slot_id", s.ID,
		"player_id", s.PlayerID, "coach_id", s.CoachID, "date", s.Date, "start", s.StartTime)
	recordAudit(ctx, deps.AuditStore, deps.GenerateID, input.ActorID, input.ActorRole,
		audit.CategoryBooking, audit.ActionComplete, "slot", s.ID,
		s.Date+" "+s.StartTime, now)

	return s, nil
}
