package orchestrators

import (
	"context"
	"errors"
	"strings"
	"testing"

	"courtside/internal/domain/coach"
	"courtside/internal/domain/location"
	"courtside/internal/domain/player"
	"courtside/internal/domain/slot"
)

func confirmFixture() (*fakeSlotStore, ConfirmBookingDeps, *fakeSender) {
	ss := newFakeSlotStore()
	s := availableSlot("s1", "c1", "2026-03-02", "16:00")
	s.Status = slot.StatusPending
	s.PlayerID = "p1"
	s.HeldAt = fixedNow
	ss.slots["s1"] = s

	sender := &fakeSender{}
	deps := ConfirmBookingDeps{
		SlotStore: ss,
		PlayerStore: &fakePlayerStore{players: map[string]player.Player{
			"p1": {ID: "p1", Name: "Riley", Email: "riley@example.com", Grade: player.GradeBeginner},
		}},
		CoachStore: &fakeCoachStore{coaches: map[string]coach.Coach{
			"c1": {ID: "c1", Name: "Mereana Walsh"},
		}},
		LocationStore: &fakeLocationStore{locations: map[string]location.Location{
			"loc-1": {ID: "loc-1", Name: "Centre Court Club"},
		}},
		AuditStore: &fakeAuditStore{},
		Sender:     sender,
		GenerateID: seqID(),
		Now:        fixedClock,
	}
	return ss, deps, sender
}

// TestExecuteConfirmBooking tests confirming a pending hold.
func TestExecuteConfirmBooking(t *testing.T) {
	ctx := context.Background()

	t.Run("confirms own hold and emails the player", func(t *testing.T) {
		ss, deps, sender := confirmFixture()
		got, err := ExecuteConfirmBooking(ctx, ConfirmBookingInput{
			SlotID: "s1", ActorID: "p1", ActorRole: "player",
		}, deps)
		if err != nil {
			t.Fatalf("ExecuteConfirmBooking failed: %v", err)
		}
		if got.Status != slot.StatusBooked {
			t.Errorf("status = %s, want booked", got.Status)
		}
		if ss.slots["s1"].Status != slot.StatusBooked {
			t.Error("store not updated to booked")
		}
		if len(sender.sent) != 1 {
			t.Fatalf("emails sent = %d, want 1", len(sender.sent))
		}
		msg := sender.sent[0]
		if msg.To[0] != "riley@example.com" {
			t.Errorf("email to = %v", msg.To)
		}
		if !strings.Contains(msg.HTML, "Mereana Walsh") || !strings.Contains(msg.HTML, "Centre Court Club") {
			t.Error("email body missing coach or court details")
		}
	})

	t.Run("rejects another player's hold", func(t *testing.T) {
		_, deps, sender := confirmFixture()
		_, err := ExecuteConfirmBooking(ctx, ConfirmBookingInput{
			SlotID: "s1", ActorID: "p2", ActorRole: "player",
		}, deps)
		if !errors.Is(err, slot.ErrNotOwner) {
			t.Errorf("err = %v, want ErrNotOwner", err)
		}
		if len(sender.sent) != 0 {
			t.Error("no email on rejection")
		}
	})

	t.Run("admin can confirm any hold", func(t *testing.T) {
		_, deps, _ := confirmFixture()
		if _, err := ExecuteConfirmBooking(ctx, ConfirmBookingInput{
			SlotID: "s1", ActorID: "admin-1", ActorRole: "admin",
		}, deps); err != nil {
			t.Errorf("admin confirm failed: %v", err)
		}
	})

	t.Run("rejects a non-pending slot", func(t *testing.T) {
		ss, deps, _ := confirmFixture()
		s := ss.slots["s1"]
		s.Status = slot.StatusBooked
		ss.slots["s1"] = s
		_, err := ExecuteConfirmBooking(ctx, ConfirmBookingInput{
			SlotID: "s1", ActorID: "p1", ActorRole: "player",
		}, deps)
		if !errors.Is(err, slot.ErrInvalidState) {
			t.Errorf("err = %v, want ErrInvalidState", err)
		}
	})

	t.Run("email failure does not fail the booking", func(t *testing.T) {
		ss, deps, sender := confirmFixture()
		sender.sendErr = errors.New("provider down")
		got, err := ExecuteConfirmBooking(ctx, ConfirmBookingInput{
			SlotID: "s1", ActorID: "p1", ActorRole: "player",
		}, deps)
		if err != nil {
			t.Fatalf("booking should succeed despite email failure: %v", err)
		}
		if got.Status != slot.StatusBooked || ss.slots["s1"].Status != slot.StatusBooked {
			t.Error("slot should still be booked")
		}
	})
}
