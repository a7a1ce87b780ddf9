package location

import (
	"context"
	"database/sql"
	"fmt"

	"courtside/internal/adapters/storage"
	domain "courtside/internal/domain/location"
)

// SQLiteStore implements Store using SQLite.
type SQLiteStore struct {
	db storage.SQLDB
}

// NewSQLiteStore creates a new location store.
func NewSQLiteStore(db storage.SQLDB) *SQLiteStore {
	return &SQLiteStore{db: db}
}

// GetByID retrieves a Location by its ID.
func (s *SQLiteStore) GetByID(ctx context.Context, id string) (domain.Location, error) {
	row := s.db.QueryRowContext(ctx, "SELECT id, name, address, courts FROM location WHERE id = ?", id)
	var l domain.Location
	err := row.Scan(&l.ID, &l.Name, &l.Address, &l.Courts)
	if err == sql.ErrNoRows {
		return domain.Location{}, fmt.Errorf("location not found: %w", err)
	}
	return l, err
}

// Save persists a Location to the database.
// PRE: entity has been validated
// POST: Entity is persisted (insert or update)
func (s *SQLiteStore) Save(ctx context.Context, l domain.Location) error {
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO location (id, name, address, courts) VALUES (?, ?, ?, ?)
		 ON CONFLICT(id) DO UPDATE SET name=excluded.name, address=excluded.address, courts=excluded.courts`,
		l.ID, l.Name, l.Address, l.Courts,
	)
	return err
}

// List retrieves all Locations ordered by name.
func (s *SQLiteStore) List(ctx context.Context) ([]domain.Location, error) {
	rows, err := s.db.QueryContext(ctx, "SELECT id, name, address, courts FROM location ORDER BY name")
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var results []domain.Location
	for rows.Next() {
		var l domain.Location
		if err := rows.Scan(&l.ID, &l.Name, &l.Address, &l.Courts); err != nil {
			return nil, err
		}
		results = append(results, l)
	}
	return results, rows.Err()
}
