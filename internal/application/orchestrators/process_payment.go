package orchestrators

import (
	"context"
	"log/slog"
	"time"

	"courtside/internal/adapters/email"
	gateway "courtside/internal/adapters/payment"
	"courtside/internal/domain/audit"
	"courtside/internal/domain/payment"
	"courtside/internal/domain/slot"
)

// PaymentSlotStore defines the slot store interface for the paid booking flow.
type PaymentSlotStore interface {
	GetByID(ctx context.Context, id string) (slot.Slot, error)
	CountActivePlayerHolds(ctx context.Context, playerID, date, startTime string) (int, error)
	Reserve(ctx context.Context, id, playerID string, heldAt time.Time) error
	TransitionStatus(ctx context.Context, id string, from, to slot.Status) error
	ReleaseHold(ctx context.Context, id string) error
}

// PaymentRecordStore persists charge outcomes.
type PaymentRecordStore interface {
	Save(ctx context.Context, r payment.Record) error
}

// ProcessPaymentInput carries input for a paid booking.
type ProcessPaymentInput struct {
	SlotID   string
	PlayerID string
	Amount   int // cents
	Card     payment.Card
}

// ProcessPaymentDeps holds dependencies for ProcessPayment.
type ProcessPaymentDeps struct {
	SlotStore     PaymentSlotStore
	PaymentStore  PaymentRecordStore
	Gateway       gateway.Gateway
	PlayerStore   BookingPlayerStore
	CoachStore    BookingCoachStore
	LocationStore BookingLocationStore
	AuditStore    AuditStore
	Sender        email.Sender
	GenerateID    func() string
	Now           func() time.Time
}

// ExecuteProcessPayment runs the paid booking flow: hold the slot, charge the
// card, then confirm. A declined or failed charge releases the hold so the
// slot goes straight back to the pool, and the outcome is recorded either
// way. Card validation errors surface before any state changes.
// PRE: slot is available, Amount > 0
// POST: slot booked with a succeeded Record, or available again with a
// declined/failed Record
func ExecuteProcessPayment(ctx context.Context, input ProcessPaymentInput, deps ProcessPaymentDeps) (payment.Record, slot.Slot, error) {
	now := deps.Now()
	if err := input.Card.ValidateCard(now); err != nil {
		return payment.Record{}, slot.Slot{}, err
	}

	s, err := ExecuteReserveSlot(ctx, ReserveSlotInput{
		SlotID:    input.SlotID,
		PlayerID:  input.PlayerID,
		ActorID:   input.PlayerID,
		ActorRole: "player",
	}, ReserveSlotDeps{
		SlotStore:  deps.SlotStore,
		AuditStore: deps.AuditStore,
		GenerateID: deps.GenerateID,
		Now:        deps.Now,
	})
	if err != nil {
		return payment.Record{}, slot.Slot{}, err
	}

	rec := payment.Record{
		ID:        deps.GenerateID(),
		SlotID:    s.ID,
		PlayerID:  input.PlayerID,
		Amount:    input.Amount,
		CardLast4: input.Card.Last4(),
		CreatedAt: now,
	}

	result, err := deps.Gateway.Charge(ctx, gateway.ChargeRequest{Amount: input.Amount, Card: input.Card})
	if err != nil {
		rec.Status = payment.StatusFailed
		finishFailedCharge(ctx, deps, &rec, s)
		return rec, slot.Slot{}, err
	}
	rec.Reference = result.Reference

	if result.Status != payment.StatusSucceeded {
		rec.Status = payment.StatusDeclined
		finishFailedCharge(ctx, deps, &rec, s)
		return rec, slot.Slot{}, payment.ErrCardDeclined
	}

	rec.Status = payment.StatusSucceeded
	if err := deps.PaymentStore.Save(ctx, rec); err != nil {
		return payment.Record{}, slot.Slot{}, err
	}

	booked, err := ExecuteConfirmBooking(ctx, ConfirmBookingInput{
		SlotID:    s.ID,
		ActorID:   input.PlayerID,
		ActorRole: "player",
	}, ConfirmBookingDeps{
		SlotStore:     deps.SlotStore,
		PlayerStore:   deps.PlayerStore,
		CoachStore:    deps.CoachStore,
		LocationStore: deps.LocationStore,
		AuditStore:    deps.AuditStore,
		Sender:        deps.Sender,
		GenerateID:    deps.GenerateID,
		Now:           deps.Now,
	})
	if err != nil {
		return rec, slot.Slot{}, err
	}

	recordAudit(ctx, deps.AuditStore, deps.GenerateID, input.PlayerID, "player",
		audit.CategoryPayment, audit.ActionCreate, "payment", rec.ID, result.Reference, now)
	return rec, booked, nil
}

// finishFailedCharge records the outcome and puts the slot back in the pool.
func finishFailedCharge(ctx context.Context, deps ProcessPaymentDeps, rec *payment.Record, s slot.Slot) {
	if err := deps.PaymentStore.Save(ctx, *rec); err != nil {
		slog.Error("payment_record_failed", "slot_id", s.ID, "status", rec.Status, "error", err)
	}
	if err := deps.SlotStore.ReleaseHold(ctx, s.ID); err != nil {
		slog.Error("payment_release_failed", "slot_id", s.ID, "error", err)
	}
	slog.Info("payment_event", "event", "charge_not_completed", "slot_id", s.ID,
		"status", rec.Status, "reference", rec.Reference)
}
