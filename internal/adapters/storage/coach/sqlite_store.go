package coach

import (
	"context"
	"database/sql"
	"fmt"

	"courtside/internal/adapters/storage"
	domain "courtside/internal/domain/coach"
)

const coachColumns = "id, account_id, name, email, bio, hourly_rate, status"

// SQLiteStore implements Store using SQLite.
type SQLiteStore struct {
	db storage.SQLDB
}

// NewSQLiteStore creates a new coach store.
func NewSQLiteStore(db storage.SQLDB) *SQLiteStore {
	return &SQLiteStore{db: db}
}

// GetByID retrieves a Coach by its ID.
func (s *SQLiteStore) GetByID(ctx context.Context, id string) (domain.Coach, error) {
	return s.getOne(ctx, "SELECT "+coachColumns+" FROM coach WHERE id = ?", id)
}

// GetByAccountID retrieves the Coach linked to an account.
func (s *SQLiteStore) GetByAccountID(ctx context.Context, accountID string) (domain.Coach, error) {
	return s.getOne(ctx, "SELECT "+coachColumns+" FROM coach WHERE account_id = ?", accountID)
}

// Save persists a Coach to the database.
// PRE: entity has been validated
// POST: Entity is persisted (insert or update)
func (s *SQLiteStore) Save(ctx context.Context, c domain.Coach) error {
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO coach (id, account_id, name, email, bio, hourly_rate, status)
		 VALUES (?, ?, ?, ?, ?, ?, ?)
		 ON CONFLICT(id) DO UPDATE SET account_id=excluded.account_id, name=excluded.name,
		 email=excluded.email, bio=excluded.bio, hourly_rate=excluded.hourly_rate, status=excluded.status`,
		c.ID, nullString(c.AccountID), c.Name, c.Email, c.Bio, c.HourlyRate, c.Status,
	)
	return err
}

// List retrieves all Coaches ordered by name.
func (s *SQLiteStore) List(ctx context.Context) ([]domain.Coach, error) {
	return s.queryCoaches(ctx, "SELECT "+coachColumns+" FROM coach ORDER BY name")
}

// ListActive retrieves coaches currently taking bookings.
func (s *SQLiteStore) ListActive(ctx context.Context) ([]domain.Coach, error) {
	return s.queryCoaches(ctx, "SELECT "+coachColumns+" FROM coach WHERE status = 'active' ORDER BY name")
}

func (s *SQLiteStore) getOne(ctx context.Context, query string, arg any) (domain.Coach, error) {
	row := s.db.QueryRowContext(ctx, query, arg)
	c, err := scanCoach(row)
	if err == sql.ErrNoRows {
		return domain.Coach{}, fmt.Errorf("coach not found: %w", err)
	}
	return c, err
}

func (s *SQLiteStore) queryCoaches(ctx context.Context, query string, args ...any) ([]domain.Coach, error) {
	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var results []domain.Coach
	for rows.Next() {
		c, err := scanCoach(rows)
		if err != nil {
			return nil, err
		}
		results = append(results, c)
	}
	return results, rows.Err()
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanCoach(row rowScanner) (domain.Coach, error) {
	var c domain.Coach
	var accountID sql.NullString
	err := row.Scan(&c.ID, &accountID, &c.Name, &c.Email, &c.Bio, &c.HourlyRate, &c.Status)
	if err != nil {
		return domain.Coach{}, err
	}
	c.AccountID = accountID.String
	return c, nil
}

func nullString(s string) any {
	if s == "" {
		return nil
	}
	return s
}
