package slot

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"time"

	"courtside/internal/adapters/storage"
	domain "courtside/internal/domain/slot"
)

const slotColumns = "id, coach_id, location_id, date, start_time, end_time, status, player_id, source_window_id, held_at, created_at"

// SQLiteStore implements Store using SQLite.
type SQLiteStore struct {
	db storage.SQLDB
}

// NewSQLiteStore creates a new slot store.
func NewSQLiteStore(db storage.SQLDB) *SQLiteStore {
	return &SQLiteStore{db: db}
}

// GetByID retrieves a Slot by its ID.
// PRE: id is non-empty
// POST: Returns the entity or an error if not found
func (s *SQLiteStore) GetByID(ctx context.Context, id string) (domain.Slot, error) {
	row := s.db.QueryRowContext(ctx, "SELECT "+slotColumns+" FROM slot WHERE id = ?", id)
	sl, err := scanSlot(row)
	if err == sql.ErrNoRows {
		return domain.Slot{}, fmt.Errorf("slot not found: %w", err)
	}
	return sl, err
}

// Save persists a Slot to the database.
// PRE: entity has been validated
// POST: Entity is persisted (insert or update)
func (s *SQLiteStore) Save(ctx context.Context, sl domain.Slot) error {
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO slot (`+slotColumns+`)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
		 ON CONFLICT(id) DO UPDATE SET status=excluded.status, player_id=excluded.player_id,
		 held_at=excluded.held_at, source_window_id=excluded.source_window_id`,
		sl.ID, sl.CoachID, sl.LocationID, sl.Date, sl.StartTime, sl.EndTime, string(sl.Status),
		nullString(sl.PlayerID), nullString(sl.SourceWindowID), nullTime(sl.HeldAt), sl.CreatedAt.Format(time.RFC3339),
	)
	return err
}

// InsertMissing inserts slots that do not collide with a live slot at the
// same (coach, date, start). Colliding rows are left untouched, so bookings
// survive regeneration and a concurrent reserve can never be clobbered.
// PRE: all slots validated, status available
// POST: Returns the number of rows actually inserted
func (s *SQLiteStore) InsertMissing(ctx context.Context, slots []domain.Slot) (int, error) {
	if len(slots) == 0 {
		return 0, nil
	}
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return 0, err
	}
	defer tx.Rollback()

	inserted := 0
	for _, sl := range slots {
		res, err := tx.ExecContext(ctx,
			`INSERT INTO slot (`+slotColumns+`)
			 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
			 ON CONFLICT(coach_id, date, start_time) DO NOTHING`,
			sl.ID, sl.CoachID, sl.LocationID, sl.Date, sl.StartTime, sl.EndTime, string(sl.Status),
			nullString(sl.PlayerID), nullString(sl.SourceWindowID), nullTime(sl.HeldAt), sl.CreatedAt.Format(time.RFC3339),
		)
		if err != nil {
			return 0, fmt.Errorf("insert slot %s: %w", sl.Key(), err)
		}
		n, err := res.RowsAffected()
		if err != nil {
			return 0, err
		}
		inserted += int(n)
	}
	return inserted, tx.Commit()
}

// DeleteAvailableByIDs deletes the given slots only where still available.
// Slots that changed status since the caller read them are skipped, so a
// booking taken mid-regeneration is never deleted.
// PRE: ids is a set of slot IDs the caller saw as available
// POST: Returns the number of rows deleted
func (s *SQLiteStore) DeleteAvailableByIDs(ctx context.Context, ids []string) (int, error) {
	if len(ids) == 0 {
		return 0, nil
	}
	placeholders := strings.TrimSuffix(strings.Repeat("?,", len(ids)), ",")
	args := make([]any, len(ids))
	for i, id := range ids {
		args[i] = id
	}
	res, err := s.db.ExecContext(ctx,
		"DELETE FROM slot WHERE status = 'available' AND id IN ("+placeholders+")", args...)
	if err != nil {
		return 0, err
	}
	n, err := res.RowsAffected()
	return int(n), err
}

// ListByCoachDate retrieves all slots for a coach on a date.
func (s *SQLiteStore) ListByCoachDate(ctx context.Context, coachID, date string) ([]domain.Slot, error) {
	return s.querySlots(ctx, "SELECT "+slotColumns+" FROM slot WHERE coach_id = ? AND date = ? ORDER BY start_time", coachID, date)
}

// ListAvailableInRange retrieves available slots in [fromDate, toDate],
// optionally filtered by location.
// PRE: dates are YYYY-MM-DD
// POST: Returns available slots ordered by date then time
func (s *SQLiteStore) ListAvailableInRange(ctx context.Context, fromDate, toDate, locationID string) ([]domain.Slot, error) {
	query := "SELECT " + slotColumns + " FROM slot WHERE status = 'available' AND date >= ? AND date <= ?"
	args := []any{fromDate, toDate}
	if locationID != "" {
		query += " AND location_id = ?"
		args = append(args, locationID)
	}
	query += " ORDER BY date, start_time, coach_id"
	return s.querySlots(ctx, query, args...)
}

// ListByPlayer retrieves every slot a player has held, booked, completed or
// had cancelled, newest first.
func (s *SQLiteStore) ListByPlayer(ctx context.Context, playerID string) ([]domain.Slot, error) {
	return s.querySlots(ctx, "SELECT "+slotColumns+" FROM slot WHERE player_id = ? ORDER BY date DESC, start_time DESC", playerID)
}

// ListPendingHeldBefore retrieves pending slots whose hold started before
// cutoff. Used by the expiry sweep.
func (s *SQLiteStore) ListPendingHeldBefore(ctx context.Context, cutoff time.Time) ([]domain.Slot, error) {
	return s.querySlots(ctx,
		"SELECT "+slotColumns+" FROM slot WHERE status = 'pending' AND held_at IS NOT NULL AND held_at < ? ORDER BY held_at",
		cutoff.Format(time.RFC3339))
}

// CountActivePlayerHolds counts pending/booked slots the player holds at the
// given timeslot, across all coaches and locations.
func (s *SQLiteStore) CountActivePlayerHolds(ctx context.Context, playerID, date, startTime string) (int, error) {
	row := s.db.QueryRowContext(ctx,
		"SELECT COUNT(*) FROM slot WHERE player_id = ? AND date = ? AND start_time = ? AND status IN ('pending', 'booked')",
		playerID, date, startTime)
	var n int
	err := row.Scan(&n)
	return n, err
}

// CountByStatus returns slot counts grouped by status.
func (s *SQLiteStore) CountByStatus(ctx context.Context) (map[domain.Status]int, error) {
	rows, err := s.db.QueryContext(ctx, "SELECT status, COUNT(*) FROM slot GROUP BY status")
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	counts := make(map[domain.Status]int)
	for rows.Next() {
		var status string
		var n int
		if err := rows.Scan(&status, &n); err != nil {
			return nil, err
		}
		counts[domain.Status(status)] = n
	}
	return counts, rows.Err()
}

// Reserve atomically transitions an available slot to pending for playerID.
// This is the compare-and-swap that makes double-booking impossible: the
// UPDATE only matches while status is still 'available', so one concurrent
// caller gets RowsAffected=1 and everyone else gets ErrSlotNotAvailable.
// The partial unique index on (player_id, date, start_time) rejects a player
// grabbing two slots at the same timeslot, surfaced as ErrSchedulingConflict.
// PRE: id and playerID are non-empty
// POST: Slot is pending and held by playerID, or a typed domain error
func (s *SQLiteStore) Reserve(ctx context.Context, id, playerID string, heldAt time.Time) error {
	res, err := s.db.ExecContext(ctx,
		"UPDATE slot SET status = 'pending', player_id = ?, held_at = ? WHERE id = ? AND status = 'available'",
		playerID, heldAt.Format(time.RFC3339), id)
	if err != nil {
		if isUniqueViolation(err) {
			return domain.ErrSchedulingConflict
		}
		return err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return domain.ErrSlotNotAvailable
	}
	return nil
}

// TransitionStatus atomically moves a slot between statuses without touching
// the player column.
// PRE: from -> to is allowed by the domain transition table
// POST: Status updated, or ErrInvalidState if the slot was not in from
func (s *SQLiteStore) TransitionStatus(ctx context.Context, id string, from, to domain.Status) error {
	res, err := s.db.ExecContext(ctx,
		"UPDATE slot SET status = ? WHERE id = ? AND status = ?",
		string(to), id, string(from))
	if err != nil {
		return err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return domain.ErrInvalidState
	}
	return nil
}

// ReleaseHold atomically returns a pending slot to the available pool.
// PRE: id is non-empty
// POST: Slot is available with no player, or ErrInvalidState if not pending
func (s *SQLiteStore) ReleaseHold(ctx context.Context, id string) error {
	res, err := s.db.ExecContext(ctx,
		"UPDATE slot SET status = 'available', player_id = NULL, held_at = NULL WHERE id = ? AND status = 'pending'", id)
	if err != nil {
		return err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return domain.ErrInvalidState
	}
	return nil
}

// OverrideStatus sets status and player unconditionally. The admin override
// path validates the status/player pairing before calling this. A pending
// override records heldAt so the expiry sweep picks the hold up; any other
// target status clears the hold time.
// PRE: status is a valid domain status
// POST: Row updated regardless of previous status
func (s *SQLiteStore) OverrideStatus(ctx context.Context, id string, status domain.Status, playerID string, heldAt time.Time) error {
	if status != domain.StatusPending {
		heldAt = time.Time{}
	}
	res, err := s.db.ExecContext(ctx,
		"UPDATE slot SET status = ?, player_id = ?, held_at = ? WHERE id = ?",
		string(status), nullString(playerID), nullTime(heldAt), id)
	if err != nil {
		if isUniqueViolation(err) {
			return domain.ErrSchedulingConflict
		}
		return err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return fmt.Errorf("slot not found: %s", id)
	}
	return nil
}

func (s *SQLiteStore) querySlots(ctx context.Context, query string, args ...any) ([]domain.Slot, error) {
	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var results []domain.Slot
	for rows.Next() {
		sl, err := scanSlot(rows)
		if err != nil {
			return nil, err
		}
		results = append(results, sl)
	}
	return results, rows.Err()
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanSlot(row rowScanner) (domain.Slot, error) {
	var sl domain.Slot
	var status string
	var playerID, sourceWindowID, heldAt sql.NullString
	var createdAt string
	err := row.Scan(&sl.ID, &sl.CoachID, &sl.LocationID, &sl.Date, &sl.StartTime, &sl.EndTime,
		&status, &playerID, &sourceWindowID, &heldAt, &createdAt)
	if err != nil {
		return domain.Slot{}, err
	}
	sl.Status = domain.Status(status)
	sl.PlayerID = playerID.String
	sl.SourceWindowID = sourceWindowID.String
	if heldAt.Valid && heldAt.String != "" {
		if t, err := time.Parse(time.RFC3339, heldAt.String); err == nil {
			sl.HeldAt = t
		}
	}
	if t, err := time.Parse(time.RFC3339, createdAt); err == nil {
		sl.CreatedAt = t
	}
	return sl, nil
}

func nullString(s string) any {
	if s == "" {
		return nil
	}
	return s
}

func nullTime(t time.Time) any {
	if t.IsZero() {
		return nil
	}
	return t.Format(time.RFC3339)
}

// isUniqueViolation reports whether err is a sqlite UNIQUE constraint error.
// modernc.org/sqlite surfaces these as plain errors, so match on the message.
func isUniqueViolation(err error) bool {
	return err != nil && strings.Contains(err.Error(), "UNIQUE constraint failed")
}
