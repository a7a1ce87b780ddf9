package availability

import (
	"context"
	"database/sql"
	"fmt"

	"courtside/internal/adapters/storage"
	domain "courtside/internal/domain/availability"
)

const windowColumns = "id, coach_id, location_id, day, start_time, end_time, session_minutes"

// SQLiteStore implements Store using SQLite.
type SQLiteStore struct {
	db storage.SQLDB
}

// NewSQLiteStore creates a new availability window store.
func NewSQLiteStore(db storage.SQLDB) *SQLiteStore {
	return &SQLiteStore{db: db}
}

// GetByID retrieves a Window by its ID.
// PRE: id is non-empty
// POST: Returns the entity or an error if not found
func (s *SQLiteStore) GetByID(ctx context.Context, id string) (domain.Window, error) {
	row := s.db.QueryRowContext(ctx, "SELECT "+windowColumns+" FROM availability_window WHERE id = ?", id)
	var w domain.Window
	err := row.Scan(&w.ID, &w.CoachID, &w.LocationID, &w.Day, &w.StartTime, &w.EndTime, &w.SessionMinutes)
	if err == sql.ErrNoRows {
		return domain.Window{}, fmt.Errorf("availability window not found: %w", err)
	}
	return w, err
}

// Save persists a Window to the database.
// PRE: entity has been validated
// POST: Entity is persisted (insert or update)
func (s *SQLiteStore) Save(ctx context.Context, w domain.Window) error {
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO availability_window (id, coach_id, location_id, day, start_time, end_time, session_minutes)
		 VALUES (?, ?, ?, ?, ?, ?, ?)
		 ON CONFLICT(id) DO UPDATE SET coach_id=excluded.coach_id, location_id=excluded.location_id,
		 day=excluded.day, start_time=excluded.start_time, end_time=excluded.end_time,
		 session_minutes=excluded.session_minutes`,
		w.ID, w.CoachID, w.LocationID, w.Day, w.StartTime, w.EndTime, w.SessionMinutes,
	)
	return err
}

// Delete removes a Window from the database. Removing a window never touches
// slots already generated from it; regeneration reconciles those.
// PRE: id is non-empty
// POST: Entity with given id is removed; no-op when absent
func (s *SQLiteStore) Delete(ctx context.Context, id string) error {
	_, err := s.db.ExecContext(ctx, "DELETE FROM availability_window WHERE id = ?", id)
	return err
}

// List retrieves all Windows in insertion order. The generator relies on
// this order for its later-window-wins rule, so no column sort is applied.
func (s *SQLiteStore) List(ctx context.Context) ([]domain.Window, error) {
	return s.queryWindows(ctx, "SELECT "+windowColumns+" FROM availability_window ORDER BY rowid")
}

// ListByCoach retrieves Windows for a specific coach, in insertion order
// (same contract as List).
// PRE: coachID is non-empty
// POST: Returns matching windows in rowid order
func (s *SQLiteStore) ListByCoach(ctx context.Context, coachID string) ([]domain.Window, error) {
	return s.queryWindows(ctx, "SELECT "+windowColumns+" FROM availability_window WHERE coach_id = ? ORDER BY rowid", coachID)
}

// ListByCoachDay retrieves Windows for a coach on a weekday, in insertion
// order. Backs the overlap check when a window is added.
// PRE: coachID is non-empty, day is a valid weekday
// POST: Returns matching windows in rowid order
func (s *SQLiteStore) ListByCoachDay(ctx context.Context, coachID, day string) ([]domain.Window, error) {
	return s.queryWindows(ctx, "SELECT "+windowColumns+" FROM availability_window WHERE coach_id = ? AND day = ? ORDER BY rowid", coachID, day)
}

func (s *SQLiteStore) queryWindows(ctx context.Context, query string, args ...interface{}) ([]domain.Window, error) {
	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var results []domain.Window
	for rows.Next() {
		var w domain.Window
		if err := rows.Scan(&w.ID, &w.CoachID, &w.LocationID, &w.Day, &w.StartTime, &w.EndTime, &w.SessionMinutes); err != nil {
			return nil, err
		}
		results = append(results, w)
	}
	return results, rows.Err()
}
