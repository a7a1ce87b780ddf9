package orchestrators

import (
	"context"
	"testing"
	"time"

	"courtside/internal/domain/slot"
)

// TestExecuteReleaseExpired tests that only stale pending holds are released.
func TestExecuteReleaseExpired(t *testing.T) {
	ctx := context.Background()
	ss := newFakeSlotStore()
	ttl := 20 * time.Minute

	stale := availableSlot("s-stale", "c1", "2026-03-02", "16:00")
	stale.Status = slot.StatusPending
	stale.PlayerID = "p1"
	stale.HeldAt = fixedNow.Add(-45 * time.Minute)
	ss.slots["s-stale"] = stale

	fresh := availableSlot("s-fresh", "c1", "2026-03-02", "16:45")
	fresh.Status = slot.StatusPending
	fresh.PlayerID = "p2"
	fresh.HeldAt = fixedNow.Add(-5 * time.Minute)
	ss.slots["s-fresh"] = fresh

	booked := availableSlot("s-booked", "c1", "2026-03-02", "17:30")
	booked.Status = slot.StatusBooked
	booked.PlayerID = "p3"
	ss.slots["s-booked"] = booked

	released, err := ExecuteReleaseExpired(ctx, ReleaseExpiredDeps{
		SlotStore: ss, HoldTTL: ttl, Now: fixedClock,
	})
	if err != nil {
		t.Fatalf("ExecuteReleaseExpired failed: %v", err)
	}
	if released != 1 {
		t.Errorf("released = %d, want 1", released)
	}

	got := ss.slots["s-stale"]
	if got.Status != slot.StatusAvailable || got.PlayerID != "" {
		t.Errorf("stale hold = %s/%q, want available with no player", got.Status, got.PlayerID)
	}
	if ss.slots["s-fresh"].Status != slot.StatusPending {
		t.Error("fresh hold must survive the sweep")
	}
	if ss.slots["s-booked"].Status != slot.StatusBooked {
		t.Error("booked slot must survive the sweep")
	}

	// A second sweep finds nothing.
	released, err = ExecuteReleaseExpired(ctx, ReleaseExpiredDeps{
		SlotStore: ss, HoldTTL: ttl, Now: fixedClock,
	})
	if err != nil {
		t.Fatalf("second sweep failed: %v", err)
	}
	if released != 0 {
		t.Errorf("second sweep released = %d, want 0", released)
	}
}

// TestStartExpirySweep tests the scheduler lifecycle.
func TestStartExpirySweep(t *testing.T) {
	ss := newFakeSlotStore()
	stale := availableSlot("s1", "c1", "2026-03-02", "16:00")
	stale.Status = slot.StatusPending
	stale.PlayerID = "p1"
	stale.HeldAt = time.Now().Add(-time.Hour)
	ss.slots["s1"] = stale

	cancel := StartExpirySweep(context.Background(), ss, ExpirySweepConfig{
		Interval: 10 * time.Millisecond,
		HoldTTL:  20 * time.Minute,
		Enabled:  true,
	})
	defer cancel()

	deadline := time.Now().Add(2 * time.Second)
	for time.Now().Before(deadline) {
		if ss.slots["s1"].Status == slot.StatusAvailable {
			return
		}
		time.Sleep(10 * time.Millisecond)
	}
	t.Error("sweep never released the expired hold")
}

// TestStartExpirySweep_Disabled tests that a disabled sweep does nothing.
func TestStartExpirySweep_Disabled(t *testing.T) {
	cancel := StartExpirySweep(context.Background(), newFakeSlotStore(), ExpirySweepConfig{
		Interval: time.Minute,
		HoldTTL:  time.Minute,
		Enabled:  false,
	})
	cancel() // must be safe to call
}
