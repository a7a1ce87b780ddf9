package slot

import (
	"context"
	"database/sql"
	"fmt"
	"sync"
	"testing"
	"time"

	_ "modernc.org/sqlite"

	"courtside/internal/adapters/storage"
	domain "courtside/internal/domain/slot"
)

func newTestStore(t *testing.T) *SQLiteStore {
	t.Helper()
	db, err := sql.Open("sqlite", ":memory:")
	if err != nil {
		t.Fatalf("failed to open test db: %v", err)
	}
	t.Cleanup(func() { db.Close() })
	if err := storage.MigrateDB(db); err != nil {
		t.Fatalf("MigrateDB failed: %v", err)
	}
	return NewSQLiteStore(db)
}

func testSlot(id, coachID, date, start, end string) domain.Slot {
	return domain.Slot{
		ID:         id,
		CoachID:    coachID,
		LocationID: "loc-1",
		Date:       date,
		StartTime:  start,
		EndTime:    end,
		Status:     domain.StatusAvailable,
		CreatedAt:  time.Date(2026, 3, 1, 0, 0, 0, 0, time.UTC),
	}
}

// TestSQLiteStore_SaveGet tests round-tripping a slot.
func TestSQLiteStore_SaveGet(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	s := testSlot("s1", "c1", "2026-03-02", "16:30", "17:15")
	s.SourceWindowID = "w1"
	if err := store.Save(ctx, s); err != nil {
		t.Fatalf("Save failed: %v", err)
	}

	got, err := store.GetByID(ctx, "s1")
	if err != nil {
		t.Fatalf("GetByID failed: %v", err)
	}
	if got.CoachID != "c1" || got.Date != "2026-03-02" || got.StartTime != "16:30" {
		t.Errorf("round-trip mismatch: %+v", got)
	}
	if got.Status != domain.StatusAvailable || got.PlayerID != "" {
		t.Errorf("expected fresh available slot, got status=%s player=%q", got.Status, got.PlayerID)
	}
	if got.SourceWindowID != "w1" {
		t.Errorf("SourceWindowID = %q, want w1", got.SourceWindowID)
	}

	if _, err := store.GetByID(ctx, "missing"); err == nil {
		t.Error("expected error for missing slot")
	}
}

// TestSQLiteStore_Reserve tests the conditional reserve transition.
func TestSQLiteStore_Reserve(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()
	heldAt := time.Date(2026, 3, 1, 10, 0, 0, 0, time.UTC)

	if err := store.Save(ctx, testSlot("s1", "c1", "2026-03-02", "16:30", "17:15")); err != nil {
		t.Fatalf("Save failed: %v", err)
	}

	if err := store.Reserve(ctx, "s1", "p1", heldAt); err != nil {
		t.Fatalf("first Reserve failed: %v", err)
	}
	got, err := store.GetByID(ctx, "s1")
	if err != nil {
		t.Fatalf("GetByID failed: %v", err)
	}
	if got.Status != domain.StatusPending || got.PlayerID != "p1" {
		t.Errorf("after reserve: status=%s player=%s", got.Status, got.PlayerID)
	}
	if !got.HeldAt.Equal(heldAt) {
		t.Errorf("HeldAt = %v, want %v", got.HeldAt, heldAt)
	}

	// A second caller loses the race.
	if err := store.Reserve(ctx, "s1", "p2", heldAt); err != domain.ErrSlotNotAvailable {
		t.Errorf("second Reserve error = %v, want ErrSlotNotAvailable", err)
	}
}

// TestSQLiteStore_Reserve_Race hammers one slot from many goroutines.
// The conditional UPDATE is the whole double-booking defence, so exactly one
// caller must win and every loser must see ErrSlotNotAvailable.
func TestSQLiteStore_Reserve_Race(t *testing.T) {
	db, err := sql.Open("sqlite", ":memory:")
	if err != nil {
		t.Fatalf("failed to open test db: %v", err)
	}
	t.Cleanup(func() { db.Close() })
	// One connection keeps every goroutine on the same in-memory database;
	// the pool would otherwise hand each new connection a fresh empty one.
	db.SetMaxOpenConns(1)
	if err := storage.MigrateDB(db); err != nil {
		t.Fatalf("MigrateDB failed: %v", err)
	}
	store := NewSQLiteStore(db)
	ctx := context.Background()
	heldAt := time.Date(2026, 3, 1, 10, 0, 0, 0, time.UTC)

	if err := store.Save(ctx, testSlot("s1", "c1", "2026-03-02", "16:30", "17:15")); err != nil {
		t.Fatalf("Save failed: %v", err)
	}

	const callers = 16
	errs := make([]error, callers)
	var wg sync.WaitGroup
	for i := 0; i < callers; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			errs[i] = store.Reserve(ctx, "s1", fmt.Sprintf("p%d", i), heldAt)
		}(i)
	}
	wg.Wait()

	winners := 0
	for i, err := range errs {
		switch err {
		case nil:
			winners++
		case domain.ErrSlotNotAvailable:
		default:
			t.Errorf("caller %d: unexpected error %v", i, err)
		}
	}
	if winners != 1 {
		t.Fatalf("winners = %d, want exactly 1", winners)
	}

	got, err := store.GetByID(ctx, "s1")
	if err != nil {
		t.Fatalf("GetByID failed: %v", err)
	}
	if got.Status != domain.StatusPending || got.PlayerID == "" {
		t.Errorf("after race: status=%s player=%q", got.Status, got.PlayerID)
	}
}

// TestSQLiteStore_Reserve_PlayerConflict tests the engine-level guard against
// one player holding two slots at the same timeslot.
func TestSQLiteStore_Reserve_PlayerConflict(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()
	heldAt := time.Now().UTC()

	// Two coaches offering the same timeslot.
	if err := store.Save(ctx, testSlot("s1", "c1", "2026-03-02", "16:30", "17:15")); err != nil {
		t.Fatalf("Save s1: %v", err)
	}
	if err := store.Save(ctx, testSlot("s2", "c2", "2026-03-02", "16:30", "17:15")); err != nil {
		t.Fatalf("Save s2: %v", err)
	}

	if err := store.Reserve(ctx, "s1", "p1", heldAt); err != nil {
		t.Fatalf("Reserve s1 failed: %v", err)
	}
	if err := store.Reserve(ctx, "s2", "p1", heldAt); err != domain.ErrSchedulingConflict {
		t.Errorf("Reserve s2 error = %v, want ErrSchedulingConflict", err)
	}

	// After releasing the first hold the second slot is reservable.
	if err := store.ReleaseHold(ctx, "s1"); err != nil {
		t.Fatalf("ReleaseHold failed: %v", err)
	}
	if err := store.Reserve(ctx, "s2", "p1", heldAt); err != nil {
		t.Errorf("Reserve s2 after release failed: %v", err)
	}
}

// TestSQLiteStore_TransitionStatus tests conditional status moves.
func TestSQLiteStore_TransitionStatus(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	if err := store.Save(ctx, testSlot("s1", "c1", "2026-03-02", "16:30", "17:15")); err != nil {
		t.Fatalf("Save failed: %v", err)
	}
	if err := store.Reserve(ctx, "s1", "p1", time.Now().UTC()); err != nil {
		t.Fatalf("Reserve failed: %v", err)
	}

	if err := store.TransitionStatus(ctx, "s1", domain.StatusPending, domain.StatusBooked); err != nil {
		t.Fatalf("pending->booked failed: %v", err)
	}
	// Wrong from-status is rejected.
	if err := store.TransitionStatus(ctx, "s1", domain.StatusPending, domain.StatusBooked); err != domain.ErrInvalidState {
		t.Errorf("repeat confirm error = %v, want ErrInvalidState", err)
	}

	got, _ := store.GetByID(ctx, "s1")
	if got.Status != domain.StatusBooked || got.PlayerID != "p1" {
		t.Errorf("after confirm: status=%s player=%s", got.Status, got.PlayerID)
	}
}

// TestSQLiteStore_ReleaseHold tests returning a pending slot to the pool.
func TestSQLiteStore_ReleaseHold(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	if err := store.Save(ctx, testSlot("s1", "c1", "2026-03-02", "16:30", "17:15")); err != nil {
		t.Fatalf("Save failed: %v", err)
	}
	if err := store.ReleaseHold(ctx, "s1"); err != domain.ErrInvalidState {
		t.Errorf("release of available slot = %v, want ErrInvalidState", err)
	}

	if err := store.Reserve(ctx, "s1", "p1", time.Now().UTC()); err != nil {
		t.Fatalf("Reserve failed: %v", err)
	}
	if err := store.ReleaseHold(ctx, "s1"); err != nil {
		t.Fatalf("ReleaseHold failed: %v", err)
	}

	got, _ := store.GetByID(ctx, "s1")
	if got.Status != domain.StatusAvailable || got.PlayerID != "" || !got.HeldAt.IsZero() {
		t.Errorf("after release: %+v", got)
	}
}

// TestSQLiteStore_InsertMissing tests generation inserts that never clobber.
func TestSQLiteStore_InsertMissing(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	// Pre-existing booked slot at 16:30.
	booked := testSlot("old", "c1", "2026-03-02", "16:30", "17:15")
	if err := store.Save(ctx, booked); err != nil {
		t.Fatalf("Save failed: %v", err)
	}
	if err := store.Reserve(ctx, "old", "p1", time.Now().UTC()); err != nil {
		t.Fatalf("Reserve failed: %v", err)
	}

	batch := []domain.Slot{
		testSlot("new1", "c1", "2026-03-02", "16:30", "17:15"), // collides with booked
		testSlot("new2", "c1", "2026-03-02", "17:15", "18:00"),
	}
	inserted, err := store.InsertMissing(ctx, batch)
	if err != nil {
		t.Fatalf("InsertMissing failed: %v", err)
	}
	if inserted != 1 {
		t.Errorf("inserted = %d, want 1", inserted)
	}

	// The held slot is untouched.
	got, _ := store.GetByID(ctx, "old")
	if got.Status != domain.StatusPending || got.PlayerID != "p1" {
		t.Errorf("existing hold clobbered: %+v", got)
	}

	// Re-running the same batch inserts nothing.
	inserted, err = store.InsertMissing(ctx, batch)
	if err != nil {
		t.Fatalf("second InsertMissing failed: %v", err)
	}
	if inserted != 0 {
		t.Errorf("second run inserted = %d, want 0", inserted)
	}
}

// TestSQLiteStore_DeleteAvailableByIDs tests that only available rows go.
func TestSQLiteStore_DeleteAvailableByIDs(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	if err := store.Save(ctx, testSlot("s1", "c1", "2026-03-02", "16:30", "17:15")); err != nil {
		t.Fatalf("Save s1: %v", err)
	}
	if err := store.Save(ctx, testSlot("s2", "c1", "2026-03-02", "17:15", "18:00")); err != nil {
		t.Fatalf("Save s2: %v", err)
	}
	if err := store.Reserve(ctx, "s2", "p1", time.Now().UTC()); err != nil {
		t.Fatalf("Reserve failed: %v", err)
	}

	deleted, err := store.DeleteAvailableByIDs(ctx, []string{"s1", "s2"})
	if err != nil {
		t.Fatalf("DeleteAvailableByIDs failed: %v", err)
	}
	if deleted != 1 {
		t.Errorf("deleted = %d, want 1", deleted)
	}
	if _, err := store.GetByID(ctx, "s2"); err != nil {
		t.Errorf("pending slot should survive deletion: %v", err)
	}
}

// TestSQLiteStore_Queries tests the list and count helpers.
func TestSQLiteStore_Queries(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	slots := []domain.Slot{
		testSlot("s1", "c1", "2026-03-02", "16:30", "17:15"),
		testSlot("s2", "c1", "2026-03-02", "17:15", "18:00"),
		testSlot("s3", "c1", "2026-03-09", "16:30", "17:15"),
		testSlot("s4", "c2", "2026-03-02", "10:00", "10:45"),
	}
	for _, s := range slots {
		if err := store.Save(ctx, s); err != nil {
			t.Fatalf("Save %s: %v", s.ID, err)
		}
	}
	held := time.Date(2026, 3, 1, 10, 0, 0, 0, time.UTC)
	if err := store.Reserve(ctx, "s2", "p1", held); err != nil {
		t.Fatalf("Reserve failed: %v", err)
	}

	byDate, err := store.ListByCoachDate(ctx, "c1", "2026-03-02")
	if err != nil {
		t.Fatalf("ListByCoachDate failed: %v", err)
	}
	if len(byDate) != 2 {
		t.Errorf("ListByCoachDate len = %d, want 2", len(byDate))
	}

	avail, err := store.ListAvailableInRange(ctx, "2026-03-01", "2026-03-07", "")
	if err != nil {
		t.Fatalf("ListAvailableInRange failed: %v", err)
	}
	if len(avail) != 2 { // s1 and s4; s2 pending, s3 out of range
		t.Errorf("ListAvailableInRange len = %d, want 2", len(avail))
	}

	mine, err := store.ListByPlayer(ctx, "p1")
	if err != nil {
		t.Fatalf("ListByPlayer failed: %v", err)
	}
	if len(mine) != 1 || mine[0].ID != "s2" {
		t.Errorf("ListByPlayer = %+v", mine)
	}

	stale, err := store.ListPendingHeldBefore(ctx, held.Add(time.Hour))
	if err != nil {
		t.Fatalf("ListPendingHeldBefore failed: %v", err)
	}
	if len(stale) != 1 || stale[0].ID != "s2" {
		t.Errorf("ListPendingHeldBefore = %+v", stale)
	}

	holds, err := store.CountActivePlayerHolds(ctx, "p1", "2026-03-02", "17:15")
	if err != nil {
		t.Fatalf("CountActivePlayerHolds failed: %v", err)
	}
	if holds != 1 {
		t.Errorf("CountActivePlayerHolds = %d, want 1", holds)
	}

	counts, err := store.CountByStatus(ctx)
	if err != nil {
		t.Fatalf("CountByStatus failed: %v", err)
	}
	if counts[domain.StatusAvailable] != 3 || counts[domain.StatusPending] != 1 {
		t.Errorf("CountByStatus = %v", counts)
	}
}

// TestSQLiteStore_OverrideStatus tests the unconditional admin update.
func TestSQLiteStore_OverrideStatus(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	if err := store.Save(ctx, testSlot("s1", "c1", "2026-03-02", "16:30", "17:15")); err != nil {
		t.Fatalf("Save failed: %v", err)
	}
	if err := store.OverrideStatus(ctx, "s1", domain.StatusBooked, "p1", time.Time{}); err != nil {
		t.Fatalf("OverrideStatus failed: %v", err)
	}
	got, _ := store.GetByID(ctx, "s1")
	if got.Status != domain.StatusBooked || got.PlayerID != "p1" {
		t.Errorf("after override: %+v", got)
	}

	if err := store.OverrideStatus(ctx, "missing", domain.StatusAvailable, "", time.Time{}); err == nil {
		t.Error("expected error for missing slot")
	}
}

// TestSQLiteStore_OverrideStatus_PendingStampsHold verifies an override into
// pending records the hold time, so the expiry sweep releases it like a hold
// taken through reserve.
func TestSQLiteStore_OverrideStatus_PendingStampsHold(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()
	heldAt := time.Date(2026, 3, 1, 10, 0, 0, 0, time.UTC)

	if err := store.Save(ctx, testSlot("s1", "c1", "2026-03-02", "16:30", "17:15")); err != nil {
		t.Fatalf("Save failed: %v", err)
	}
	if err := store.OverrideStatus(ctx, "s1", domain.StatusPending, "p1", heldAt); err != nil {
		t.Fatalf("OverrideStatus failed: %v", err)
	}

	got, err := store.GetByID(ctx, "s1")
	if err != nil {
		t.Fatalf("GetByID failed: %v", err)
	}
	if !got.HeldAt.Equal(heldAt) {
		t.Errorf("HeldAt = %v, want %v", got.HeldAt, heldAt)
	}

	expired, err := store.ListPendingHeldBefore(ctx, heldAt.Add(30*time.Minute))
	if err != nil {
		t.Fatalf("ListPendingHeldBefore failed: %v", err)
	}
	if len(expired) != 1 || expired[0].ID != "s1" {
		t.Errorf("expected the overridden hold to be sweepable, got %+v", expired)
	}

	// Overriding away from pending clears the hold time again.
	if err := store.OverrideStatus(ctx, "s1", domain.StatusBooked, "p1", heldAt); err != nil {
		t.Fatalf("OverrideStatus to booked failed: %v", err)
	}
	got, _ = store.GetByID(ctx, "s1")
	if !got.HeldAt.IsZero() {
		t.Errorf("HeldAt after booked override = %v, want zero", got.HeldAt)
	}
}
