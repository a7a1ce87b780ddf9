package orchestrators

import (
	"context"
	"log/slog"
	"time"

	"courtside/internal/adapters/email"
	"courtside/internal/domain/account"
	"courtside/internal/domain/audit"
	"courtside/internal/domain/coach"
	"courtside/internal/domain/location"
	"courtside/internal/domain/player"
	"courtside/internal/domain/slot"
)

// ConfirmSlotStore defines the slot store interface for confirming a hold.
type ConfirmSlotStore interface {
	GetByID(ctx context.Context, id string) (slot.Slot, error)
	TransitionStatus(ctx context.Context, id string, from, to slot.Status) error
}

// BookingPlayerStore resolves players for booking notifications.
type BookingPlayerStore interface {
	GetByID(ctx context.Context, id string) (player.Player, error)
}

// BookingCoachStore resolves coaches for booking notifications.
type BookingCoachStore interface {
	GetByID(ctx context.Context, id string) (coach.Coach, error)
}

// BookingLocationStore resolves locations for booking notifications.
type BookingLocationStore interface {
	GetByID(ctx context.Context, id string) (location.Location, error)
}

// ConfirmBookingInput carries input for confirming a pending hold.
type ConfirmBookingInput struct {
	SlotID    string
	ActorID   string // player account confirming, or staff on their behalf
	ActorRole string
}

// ConfirmBookingDeps holds dependencies for ConfirmBooking.
type ConfirmBookingDeps struct {
	SlotStore     ConfirmSlotStore
	PlayerStore   BookingPlayerStore
	CoachStore    BookingCoachStore
	LocationStore BookingLocationStore
	AuditStore    AuditStore
	Sender        email.Sender // optional: nil skips the confirmation email
	GenerateID    func() string
	Now           func() time.Time
}

// ExecuteConfirmBooking moves a pending hold to booked. A player may only
// confirm their own hold; admin and coach roles may confirm any. The
// confirmation email is best effort and never fails the booking.
// PRE: slot is pending
// POST: slot is booked, or ErrInvalidState / ErrNotOwner
func ExecuteConfirmBooking(ctx context.Context, input ConfirmBookingInput, deps ConfirmBookingDeps) (slot.Slot, error) {
	s, err := deps.SlotStore.GetByID(ctx, input.SlotID)
	if err != nil {
		return slot.Slot{}, err
	}
	if input.ActorRole == account.RolePlayer && s.PlayerID != input.ActorID {
		return slot.Slot{}, slot.ErrNotOwner
	}

	if err := deps.SlotStore.TransitionStatus(ctx, input.SlotID, slot.StatusPending, slot.StatusBooked); err != nil {
		return slot.Slot{}, err
	}
	s.Status = slot.StatusBooked

	slog.Info("booking_event", "event", "booking_confirmed", "slot_id", s.ID,
		"player_id", s.PlayerID, "coach_id", s.CoachID, "date", s.Date, "start", s.StartTime)
	recordAudit(ctx, deps.AuditStore, deps.GenerateID, input.ActorID, input.ActorRole,
		audit.CategoryBooking, audit.ActionConfirm, "slot", s.ID,
		s.Date+" "+s.StartTime, deps.Now())

	sendBookingEmail(ctx, bookingNotify{
		Sender: deps.Sender, Players: deps.PlayerStore,
		Coaches: deps.CoachStore, Locations: deps.LocationStore,
	}, s, email.BookingConfirmation)

	return s, nil
}

// bookingNotify bundles the lookups a booking email needs.
type bookingNotify struct {
	Sender    email.Sender
	Players   BookingPlayerStore
	Coaches   BookingCoachStore
	Locations BookingLocationStore
}

// sendBookingEmail resolves the parties for a slot and sends a booking email,
// best effort. Missing lookups or a provider failure only log.
func sendBookingEmail(ctx context.Context, n bookingNotify, s slot.Slot,
	build func(to string, d email.BookingDetails) email.SendRequest) {
	if n.Sender == nil || s.PlayerID == "" {
		return
	}
	p, err := n.Players.GetByID(ctx, s.PlayerID)
	if err != nil {
		slog.Error("booking_email_skipped", "slot_id", s.ID, "error", err)
		return
	}
	d := email.BookingDetails{
		PlayerName: p.Name,
		Date:       s.Date,
		StartTime:  s.StartTime,
		EndTime:    s.EndTime,
	}
	if c, err := n.Coaches.GetByID(ctx, s.CoachID); err == nil {
		d.CoachName = c.Name
	}
	if loc, err := n.Locations.GetByID(ctx, s.LocationID); err == nil {
		d.Location = loc.Name
	}
	if _, err := n.Sender.Send(ctx, build(p.Email, d)); err != nil {
		slog.Error("booking_email_failed", "slot_id", s.ID, "to", p.Email, "error", err)
	}
}
