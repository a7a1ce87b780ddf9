package orchestrators

import (
	"context"
	"log/slog"
	"time"

	"courtside/internal/adapters/email"
	"courtside/internal/domain/account"
	"courtside/internal/domain/audit"
	"courtside/internal/domain/slot"
)

// CancelSlotStore defines the slot store interface for cancelling.
type CancelSlotStore interface {
	GetByID(ctx context.Context, id string) (slot.Slot, error)
	TransitionStatus(ctx context.Context, id string, from, to slot.Status) error
	ReleaseHold(ctx context.Context, id string) error
}

// CancelBookingInput carries input for cancelling a booking.
type CancelBookingInput struct {
	SlotID    string
	ActorID   string
	ActorRole string
}

// CancelBookingDeps holds dependencies for CancelBooking.
type CancelBookingDeps struct {
	SlotStore     CancelSlotStore
	PlayerStore   BookingPlayerStore
	CoachStore    BookingCoachStore
	LocationStore BookingLocationStore
	AuditStore    AuditStore
	Sender        email.Sender
	GenerateID    func() string
	Now           func() time.Time
}

// ExecuteCancelBooking cancels a booking. A booked slot becomes cancelled and
// keeps the player for the audit trail; a pending slot is treated as a
// release, returning straight to the pool. A player may only cancel their
// own; the cancellation email is best effort.
// PRE: slot is pending or booked
// POST: slot is cancelled (from booked) or available (from pending)
func ExecuteCancelBooking(ctx context.Context, input CancelBookingInput, deps CancelBookingDeps) (slot.Slot, error) {
	s, err := deps.SlotStore.GetByID(ctx, input.SlotID)
	if err != nil {
		return slot.Slot{}, err
	}
	if input.ActorRole == account.RolePlayer && s.PlayerID != input.ActorID {
		return slot.Slot{}, slot.ErrNotOwner
	}

	switch s.Status {
	case slot.StatusPending:
		if err := deps.SlotStore.ReleaseHold(ctx, input.SlotID); err != nil {
			return slot.Slot{}, err
		}
		released := s
		released.Status = slot.StatusAvailable
		released.PlayerID = ""
		released.HeldAt = time.Time{}
		slog.Info("booking_event", "event", "pending_cancelled", "slot_id", s.ID,
			"player_id", s.PlayerID, "date", s.Date, "start", s.StartTime)
		recordAudit(ctx, deps.AuditStore, deps.GenerateID, input.ActorID, input.ActorRole,
			audit.CategoryBooking, audit.ActionRelease, "slot", s.ID,
			s.Date+" "+s.StartTime, deps.Now())
		return released, nil

	case slot.StatusBooked:
		if err := deps.SlotStore.TransitionStatus(ctx, input.SlotID, slot.StatusBooked, slot.StatusCancelled); err != nil {
			return slot.Slot{}, err
		}
		s.Status = slot.StatusCancelled
		slog.Info("booking_event", "event", "booking_cancelled", "slot_id", s.ID,
			"player_id", s.PlayerID, "date", s.Date, "start", s.StartTime)
		recordAudit(ctx, deps.AuditStore, deps.GenerateID, input.ActorID, input.ActorRole,
			audit.CategoryBooking, audit.ActionCancel, "slot", s.ID,
			s.Date+" "+s.StartTime, deps.Now())
		sendBookingEmail(ctx, bookingNotify{
			Sender: deps.Sender, Players: deps.PlayerStore,
			Coaches: deps.CoachStore, Locations: deps.LocationStore,
		}, s, email.BookingCancellation)
		return s, nil

	default:
		return slot.Slot{}, slot.ErrInvalidState
	}
}
