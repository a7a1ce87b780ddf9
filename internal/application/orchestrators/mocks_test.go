package orchestrators

import (
	"context"
	"errors"
	"fmt"
	"time"

	"courtside/internal/adapters/email"
	gateway "courtside/internal/adapters/payment"
	"courtside/internal/domain/account"
	"courtside/internal/domain/audit"
	"courtside/internal/domain/availability"
	"courtside/internal/domain/coach"
	"courtside/internal/domain/location"
	"courtside/internal/domain/payment"
	"courtside/internal/domain/player"
	"courtside/internal/domain/slot"
)

var errNotFound = errors.New("not found")

// fixedNow is a Monday.
var fixedNow = time.Date(2026, 3, 2, 10, 0, 0, 0, time.UTC)

func fixedClock() time.Time { return fixedNow }

// seqID returns a deterministic ID generator.
func seqID() func() string {
	n := 0
	return func() string {
		n++
		return fmt.Sprintf("id-%d", n)
	}
}

// fakeSlotStore is a map-backed slot store with the same conditional
// transition semantics as the SQLite store.
type fakeSlotStore struct {
	slots   map[string]slot.Slot
	listErr error
}

func newFakeSlotStore() *fakeSlotStore {
	return &fakeSlotStore{slots: map[string]slot.Slot{}}
}

func (f *fakeSlotStore) GetByID(_ context.Context, id string) (slot.Slot, error) {
	s, ok := f.slots[id]
	if !ok {
		return slot.Slot{}, errNotFound
	}
	return s, nil
}

func (f *fakeSlotStore) Save(_ context.Context, s slot.Slot) error {
	f.slots[s.ID] = s
	return nil
}

func (f *fakeSlotStore) InsertMissing(_ context.Context, slots []slot.Slot) (int, error) {
	existing := map[string]bool{}
	for _, s := range f.slots {
		existing[s.Key()] = true
	}
	var inserted int
	for _, s := range slots {
		if existing[s.Key()] {
			continue
		}
		f.slots[s.ID] = s
		existing[s.Key()] = true
		inserted++
	}
	return inserted, nil
}

func (f *fakeSlotStore) DeleteAvailableByIDs(_ context.Context, ids []string) (int, error) {
	var deleted int
	for _, id := range ids {
		if s, ok := f.slots[id]; ok && s.Status == slot.StatusAvailable {
			delete(f.slots, id)
			deleted++
		}
	}
	return deleted, nil
}

func (f *fakeSlotStore) ListByCoachDate(_ context.Context, coachID, date string) ([]slot.Slot, error) {
	if f.listErr != nil {
		return nil, f.listErr
	}
	var out []slot.Slot
	for _, s := range f.slots {
		if s.CoachID == coachID && s.Date == date {
			out = append(out, s)
		}
	}
	return out, nil
}

func (f *fakeSlotStore) ListAvailableInRange(_ context.Context, fromDate, toDate, locationID string) ([]slot.Slot, error) {
	var out []slot.Slot
	for _, s := range f.slots {
		if s.Status != slot.StatusAvailable || s.Date < fromDate || s.Date >= toDate {
			continue
		}
		if locationID != "" && s.LocationID != locationID {
			continue
		}
		out = append(out, s)
	}
	return out, nil
}

func (f *fakeSlotStore) ListByPlayer(_ context.Context, playerID string) ([]slot.Slot, error) {
	var out []slot.Slot
	for _, s := range f.slots {
		if s.PlayerID == playerID {
			out = append(out, s)
		}
	}
	return out, nil
}

func (f *fakeSlotStore) ListPendingHeldBefore(_ context.Context, cutoff time.Time) ([]slot.Slot, error) {
	var out []slot.Slot
	for _, s := range f.slots {
		if s.Status == slot.StatusPending && s.HeldAt.Before(cutoff) {
			out = append(out, s)
		}
	}
	return out, nil
}

func (f *fakeSlotStore) CountActivePlayerHolds(_ context.Context, playerID, date, startTime string) (int, error) {
	var n int
	for _, s := range f.slots {
		if s.PlayerID == playerID && s.Date == date && s.StartTime == startTime && s.IsActive() {
			n++
		}
	}
	return n, nil
}

func (f *fakeSlotStore) CountByStatus(_ context.Context) (map[slot.Status]int, error) {
	out := map[slot.Status]int{}
	for _, s := range f.slots {
		out[s.Status]++
	}
	return out, nil
}

func (f *fakeSlotStore) Reserve(ctx context.Context, id, playerID string, heldAt time.Time) error {
	s, ok := f.slots[id]
	if !ok || s.Status != slot.StatusAvailable {
		return slot.ErrSlotNotAvailable
	}
	held, _ := f.CountActivePlayerHolds(ctx, playerID, s.Date, s.StartTime)
	if held > 0 {
		return slot.ErrSchedulingConflict
	}
	s.Status = slot.StatusPending
	s.PlayerID = playerID
	s.HeldAt = heldAt
	f.slots[id] = s
	return nil
}

func (f *fakeSlotStore) TransitionStatus(_ context.Context, id string, from, to slot.Status) error {
	s, ok := f.slots[id]
	if !ok || s.Status != from {
		return slot.ErrInvalidState
	}
	s.Status = to
	f.slots[id] = s
	return nil
}

func (f *fakeSlotStore) ReleaseHold(_ context.Context, id string) error {
	s, ok := f.slots[id]
	if !ok || s.Status != slot.StatusPending {
		return slot.ErrInvalidState
	}
	s.Status = slot.StatusAvailable
	s.PlayerID = ""
	s.HeldAt = time.Time{}
	f.slots[id] = s
	return nil
}

func (f *fakeSlotStore) OverrideStatus(_ context.Context, id string, status slot.Status, playerID string, heldAt time.Time) error {
	s, ok := f.slots[id]
	if !ok {
		return errNotFound
	}
	s.Status = status
	s.PlayerID = playerID
	if status == slot.StatusPending {
		s.HeldAt = heldAt
	} else {
		s.HeldAt = time.Time{}
	}
	f.slots[id] = s
	return nil
}

// fakeWindowStore preserves insertion order, the way the SQLite store lists
// by rowid.
type fakeWindowStore struct {
	windows []availability.Window
}

func (f *fakeWindowStore) GetByID(_ context.Context, id string) (availability.Window, error) {
	for _, w := range f.windows {
		if w.ID == id {
			return w, nil
		}
	}
	return availability.Window{}, errNotFound
}

func (f *fakeWindowStore) Save(_ context.Context, w availability.Window) error {
	f.windows = append(f.windows, w)
	return nil
}

func (f *fakeWindowStore) Delete(_ context.Context, id string) error {
	for i, w := range f.windows {
		if w.ID == id {
			f.windows = append(f.windows[:i], f.windows[i+1:]...)
			return nil
		}
	}
	return nil
}

func (f *fakeWindowStore) List(_ context.Context) ([]availability.Window, error) {
	return append([]availability.Window(nil), f.windows...), nil
}

func (f *fakeWindowStore) ListByCoach(_ context.Context, coachID string) ([]availability.Window, error) {
	var out []availability.Window
	for _, w := range f.windows {
		if w.CoachID == coachID {
			out = append(out, w)
		}
	}
	return out, nil
}

func (f *fakeWindowStore) ListByCoachDay(_ context.Context, coachID, day string) ([]availability.Window, error) {
	var out []availability.Window
	for _, w := range f.windows {
		if w.CoachID == coachID && w.Day == day {
			out = append(out, w)
		}
	}
	return out, nil
}

type fakeAuditStore struct {
	events []audit.Event
}

func (f *fakeAuditStore) Save(_ context.Context, e audit.Event) error {
	f.events = append(f.events, e)
	return nil
}

type fakePlayerStore struct {
	players map[string]player.Player
}

func (f *fakePlayerStore) GetByID(_ context.Context, id string) (player.Player, error) {
	p, ok := f.players[id]
	if !ok {
		return player.Player{}, errNotFound
	}
	return p, nil
}

func (f *fakePlayerStore) Save(_ context.Context, p player.Player) error {
	if f.players == nil {
		f.players = map[string]player.Player{}
	}
	f.players[p.ID] = p
	return nil
}

type fakeCoachStore struct {
	coaches map[string]coach.Coach
}

func (f *fakeCoachStore) GetByID(_ context.Context, id string) (coach.Coach, error) {
	c, ok := f.coaches[id]
	if !ok {
		return coach.Coach{}, errNotFound
	}
	return c, nil
}

type fakeLocationStore struct {
	locations map[string]location.Location
}

func (f *fakeLocationStore) GetByID(_ context.Context, id string) (location.Location, error) {
	l, ok := f.locations[id]
	if !ok {
		return location.Location{}, errNotFound
	}
	return l, nil
}

type fakeSender struct {
	sent    []email.SendRequest
	sendErr error
}

func (f *fakeSender) Send(_ context.Context, req email.SendRequest) (email.SendResult, error) {
	if f.sendErr != nil {
		return email.SendResult{}, f.sendErr
	}
	f.sent = append(f.sent, req)
	return email.SendResult{MessageID: "fake-1", SentAt: fixedNow}, nil
}

type fakeAccountStore struct {
	accounts map[string]account.Account // keyed by email
}

func newFakeAccountStore() *fakeAccountStore {
	return &fakeAccountStore{accounts: map[string]account.Account{}}
}

func (f *fakeAccountStore) GetByEmail(_ context.Context, email string) (account.Account, error) {
	a, ok := f.accounts[email]
	if !ok {
		return account.Account{}, errNotFound
	}
	return a, nil
}

func (f *fakeAccountStore) Save(_ context.Context, a account.Account) error {
	f.accounts[a.Email] = a
	return nil
}

func (f *fakeAccountStore) Count(_ context.Context) (int, error) {
	return len(f.accounts), nil
}

type fakePaymentStore struct {
	records []payment.Record
}

func (f *fakePaymentStore) Save(_ context.Context, r payment.Record) error {
	f.records = append(f.records, r)
	return nil
}

type fakeGateway struct {
	result    gateway.ChargeResult
	chargeErr error
}

func (f *fakeGateway) Charge(_ context.Context, _ gateway.ChargeRequest) (gateway.ChargeResult, error) {
	if f.chargeErr != nil {
		return gateway.ChargeResult{}, f.chargeErr
	}
	return f.result, nil
}

// availableSlot builds a bookable slot for tests.
func availableSlot(id, coachID, date, start string) slot.Slot {
	return slot.Slot{
		ID:         id,
		CoachID:    coachID,
		LocationID: "loc-1",
		Date:       date,
		StartTime:  start,
		EndTime:    "23:59",
		Status:     slot.StatusAvailable,
		CreatedAt:  fixedNow,
	}
}
