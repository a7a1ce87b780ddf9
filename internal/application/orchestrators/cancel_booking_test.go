package orchestrators

import (
	"context"
	"errors"
	"testing"

	"courtside/internal/domain/player"
	"courtside/internal/domain/slot"
)

func cancelFixture(status slot.Status) (*fakeSlotStore, CancelBookingDeps, *fakeSender) {
	ss := newFakeSlotStore()
	s := availableSlot("s1", "c1", "2026-03-02", "16:00")
	s.Status = status
	if status != slot.StatusAvailable {
		s.PlayerID = "p1"
	}
	if status == slot.StatusPending {
		s.HeldAt = fixedNow
	}
	ss.slots["s1"] = s

	sender := &fakeSender{}
	deps := CancelBookingDeps{
		SlotStore: ss,
		PlayerStore: &fakePlayerStore{players: map[string]player.Player{
			"p1": {ID: "p1", Name: "Riley", Email: "riley@example.com"},
		}},
		CoachStore:    &fakeCoachStore{},
		LocationStore: &fakeLocationStore{},
		AuditStore:    &fakeAuditStore{},
		Sender:        sender,
		GenerateID:    seqID(),
		Now:           fixedClock,
	}
	return ss, deps, sender
}

// TestExecuteCancelBooking tests the two cancel shapes and ownership.
func TestExecuteCancelBooking(t *testing.T) {
	ctx := context.Background()

	t.Run("cancelling a pending hold releases the slot", func(t *testing.T) {
		ss, deps, sender := cancelFixture(slot.StatusPending)
		got, err := ExecuteCancelBooking(ctx, CancelBookingInput{
			SlotID: "s1", ActorID: "p1", ActorRole: "player",
		}, deps)
		if err != nil {
			t.Fatalf("ExecuteCancelBooking failed: %v", err)
		}
		if got.Status != slot.StatusAvailable || got.PlayerID != "" {
			t.Errorf("result = %s/%q, want available with no player", got.Status, got.PlayerID)
		}
		stored := ss.slots["s1"]
		if stored.Status != slot.StatusAvailable || stored.PlayerID != "" {
			t.Errorf("stored = %s/%q, want available with no player", stored.Status, stored.PlayerID)
		}
		if len(sender.sent) != 0 {
			t.Error("releasing a hold sends no email")
		}
	})

	t.Run("cancelling a booking keeps the player on the record", func(t *testing.T) {
		ss, deps, sender := cancelFixture(slot.StatusBooked)
		got, err := ExecuteCancelBooking(ctx, CancelBookingInput{
			SlotID: "s1", ActorID: "p1", ActorRole: "player",
		}, deps)
		if err != nil {
			t.Fatalf("ExecuteCancelBooking failed: %v", err)
		}
		if got.Status != slot.StatusCancelled {
			t.Errorf("status = %s, want cancelled", got.Status)
		}
		if got.PlayerID != "p1" {
			t.Errorf("player = %q, cancellation must keep the player", got.PlayerID)
		}
		if ss.slots["s1"].Status != slot.StatusCancelled {
			t.Error("store not updated")
		}
		if len(sender.sent) != 1 {
			t.Errorf("emails = %d, want 1 cancellation notice", len(sender.sent))
		}
	})

	t.Run("rejects another player's booking", func(t *testing.T) {
		_, deps, _ := cancelFixture(slot.StatusBooked)
		_, err := ExecuteCancelBooking(ctx, CancelBookingInput{
			SlotID: "s1", ActorID: "p2", ActorRole: "player",
		}, deps)
		if !errors.Is(err, slot.ErrNotOwner) {
			t.Errorf("err = %v, want ErrNotOwner", err)
		}
	})

	t.Run("coach can cancel on the player's behalf", func(t *testing.T) {
		ss, deps, _ := cancelFixture(slot.StatusBooked)
		if _, err := ExecuteCancelBooking(ctx, CancelBookingInput{
			SlotID: "s1", ActorID: "coach-acct", ActorRole: "coach",
		}, deps); err != nil {
			t.Fatalf("coach cancel failed: %v", err)
		}
		if ss.slots["s1"].Status != slot.StatusCancelled {
			t.Error("store not updated")
		}
	})

	t.Run("terminal states cannot be cancelled", func(t *testing.T) {
		for _, status := range []slot.Status{slot.StatusCancelled, slot.StatusCompleted, slot.StatusAvailable} {
			_, deps, _ := cancelFixture(status)
			if _, err := ExecuteCancelBooking(ctx, CancelBookingInput{
				SlotID: "s1", ActorID: "admin-1", ActorRole: "admin",
			}, deps); !errors.Is(err, slot.ErrInvalidState) {
				t.Errorf("status %s: err = %v, want ErrInvalidState", status, err)
			}
		}
	})
}
