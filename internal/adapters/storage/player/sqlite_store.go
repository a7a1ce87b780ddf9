package player

import (
	"context"
	"database/sql"
	"fmt"

	"courtside/internal/adapters/storage"
	domain "courtside/internal/domain/player"
)

const playerColumns = "id, account_id, name, email, phone, grade"

// SQLiteStore implements Store using SQLite.
type SQLiteStore struct {
	db storage.SQLDB
}

// NewSQLiteStore creates a new player store.
func NewSQLiteStore(db storage.SQLDB) *SQLiteStore {
	return &SQLiteStore{db: db}
}

// GetByID retrieves a Player by its ID.
func (s *SQLiteStore) GetByID(ctx context.Context, id string) (domain.Player, error) {
	return s.getOne(ctx, "SELECT "+playerColumns+" FROM player WHERE id = ?", id)
}

// GetByAccountID retrieves the Player linked to an account.
func (s *SQLiteStore) GetByAccountID(ctx context.Context, accountID string) (domain.Player, error) {
	return s.getOne(ctx, "SELECT "+playerColumns+" FROM player WHERE account_id = ?", accountID)
}

// Save persists a Player to the database.
// PRE: entity has been validated
// POST: Entity is persisted (insert or update)
func (s *SQLiteStore) Save(ctx context.Context, p domain.Player) error {
	var accountID any
	if p.AccountID != "" {
		accountID = p.AccountID
	}
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO player (id, account_id, name, email, phone, grade)
		 VALUES (?, ?, ?, ?, ?, ?)
		 ON CONFLICT(id) DO UPDATE SET account_id=excluded.account_id, name=excluded.name,
		 email=excluded.email, phone=excluded.phone, grade=excluded.grade`,
		p.ID, accountID, p.Name, p.Email, p.Phone, p.Grade,
	)
	return err
}

// List retrieves all Players ordered by name.
func (s *SQLiteStore) List(ctx context.Context) ([]domain.Player, error) {
	rows, err := s.db.QueryContext(ctx, "SELECT "+playerColumns+" FROM player ORDER BY name")
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var results []domain.Player
	for rows.Next() {
		p, err := scanPlayer(rows)
		if err != nil {
			return nil, err
		}
		results = append(results, p)
	}
	return results, rows.Err()
}

func (s *SQLiteStore) getOne(ctx context.Context, query string, arg any) (domain.Player, error) {
	row := s.db.QueryRowContext(ctx, query, arg)
	p, err := scanPlayer(row)
	if err == sql.ErrNoRows {
		return domain.Player{}, fmt.Errorf("player not found: %w", err)
	}
	return p, err
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanPlayer(row rowScanner) (domain.Player, error) {
	var p domain.Player
	var accountID sql.NullString
	err := row.Scan(&p.ID, &accountID, &p.Name, &p.Email, &p.Phone, &p.Grade)
	if err != nil {
		return domain.Player{}, err
	}
	p.AccountID = accountID.String
	return p, nil
}
