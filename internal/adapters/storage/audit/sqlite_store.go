package audit

import (
	"context"
	"time"

	"courtside/internal/adapters/storage"
	domain "courtside/internal/domain/audit"
)

const eventColumns = "id, timestamp, category, action, actor_id, actor_role, resource_id, resource_type, detail"

// SQLiteStore implements Store using SQLite.
type SQLiteStore struct {
	db storage.SQLDB
}

// NewSQLiteStore creates a new audit event store.
func NewSQLiteStore(db storage.SQLDB) *SQLiteStore {
	return &SQLiteStore{db: db}
}

// Save appends an audit Event. Events are never updated or deleted.
// PRE: event has ID, actor and timestamp set
// POST: Row inserted
func (s *SQLiteStore) Save(ctx context.Context, e domain.Event) error {
	_, err := s.db.ExecContext(ctx,
		"INSERT INTO audit_event ("+eventColumns+") VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)",
		e.ID, e.Timestamp.Format(time.RFC3339), string(e.Category), string(e.Action),
		e.ActorID, e.ActorRole, e.ResourceID, e.ResourceType, e.Detail,
	)
	return err
}

// ListRecent retrieves the newest events.
// PRE: limit > 0
// POST: Returns up to limit events, newest first
func (s *SQLiteStore) ListRecent(ctx context.Context, limit int) ([]domain.Event, error) {
	return s.queryEvents(ctx, "SELECT "+eventColumns+" FROM audit_event ORDER BY timestamp DESC LIMIT ?", limit)
}

// ListByResource retrieves events for one resource, oldest first.
func (s *SQLiteStore) ListByResource(ctx context.Context, resourceID string) ([]domain.Event, error) {
	return s.queryEvents(ctx, "SELECT "+eventColumns+" FROM audit_event WHERE resource_id = ? ORDER BY timestamp", resourceID)
}

func (s *SQLiteStore) queryEvents(ctx context.Context, query string, args ...any) ([]domain.Event, error) {
	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var results []domain.Event
	for rows.Next() {
		var e domain.Event
		var ts, category, action string
		if err := rows.Scan(&e.ID, &ts, &category, &action, &e.ActorID, &e.ActorRole, &e.ResourceID, &e.ResourceType, &e.Detail); err != nil {
			return nil, err
		}
		e.Category = domain.Category(category)
		e.Action = domain.Action(action)
		if t, err := time.Parse(time.RFC3339, ts); err == nil {
			e.Timestamp = t
		}
		results = append(results, e)
	}
	return results, rows.Err()
}
