package payment

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"courtside/internal/adapters/storage"
	domain "courtside/internal/domain/payment"
)

const paymentColumns = "id, slot_id, player_id, amount, card_last4, status, reference, created_at"

// SQLiteStore implements Store using SQLite.
type SQLiteStore struct {
	db storage.SQLDB
}

// NewSQLiteStore creates a new payment record store.
func NewSQLiteStore(db storage.SQLDB) *SQLiteStore {
	return &SQLiteStore{db: db}
}

// GetByID retrieves a payment Record by its ID.
func (s *SQLiteStore) GetByID(ctx context.Context, id string) (domain.Record, error) {
	row := s.db.QueryRowContext(ctx, "SELECT "+paymentColumns+" FROM payment WHERE id = ?", id)
	r, err := scanRecord(row)
	if err == sql.ErrNoRows {
		return domain.Record{}, fmt.Errorf("payment not found: %w", err)
	}
	return r, err
}

// Save persists a Record. Payment rows are append-only; conflicts on ID are
// a caller bug and surface as constraint errors.
// PRE: entity has been validated
// POST: Row inserted
func (s *SQLiteStore) Save(ctx context.Context, r domain.Record) error {
	_, err := s.db.ExecContext(ctx,
		"INSERT INTO payment ("+paymentColumns+") VALUES (?, ?, ?, ?, ?, ?, ?, ?)",
		r.ID, r.SlotID, r.PlayerID, r.Amount, r.CardLast4, r.Status, r.Reference, r.CreatedAt.Format(time.RFC3339),
	)
	return err
}

// ListBySlot retrieves payment attempts against a slot, oldest first.
func (s *SQLiteStore) ListBySlot(ctx context.Context, slotID string) ([]domain.Record, error) {
	rows, err := s.db.QueryContext(ctx, "SELECT "+paymentColumns+" FROM payment WHERE slot_id = ? ORDER BY created_at", slotID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var results []domain.Record
	for rows.Next() {
		r, err := scanRecord(rows)
		if err != nil {
			return nil, err
		}
		results = append(results, r)
	}
	return results, rows.Err()
}

// SumSucceeded returns total succeeded payment amount in cents.
func (s *SQLiteStore) SumSucceeded(ctx context.Context) (int, error) {
	var total int
	err := s.db.QueryRowContext(ctx,
		"SELECT COALESCE(SUM(amount), 0) FROM payment WHERE status = 'succeeded'").Scan(&total)
	return total, err
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanRecord(row rowScanner) (domain.Record, error) {
	var r domain.Record
	var createdAt string
	err := row.Scan(&r.ID, &r.SlotID, &r.PlayerID, &r.Amount, &r.CardLast4, &r.Status, &r.Reference, &createdAt)
	if err != nil {
		return domain.Record{}, err
	}
	if t, err := time.Parse(time.RFC3339, createdAt); err == nil {
		r.CreatedAt = t
	}
	return r, nil
}
