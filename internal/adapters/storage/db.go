package storage

import (
	"database/sql"
	"fmt"
)

// migrations is the ordered list of schema steps. MigrateDB applies every
// step past the stored schema version inside one transaction per step.
// Never edit an applied step; append a new one.
var migrations = []string{
	// 1: base schema
	`
	CREATE TABLE IF NOT EXISTS account (
		id TEXT PRIMARY KEY,
		email TEXT NOT NULL UNIQUE,
		password_hash TEXT NOT NULL DEFAULT '',
		role TEXT NOT NULL,
		created_at TEXT NOT NULL,
		failed_logins INTEGER NOT NULL DEFAULT 0,
		locked_until TEXT
	);

	CREATE TABLE IF NOT EXISTS coach (
		id TEXT PRIMARY KEY,
		account_id TEXT,
		name TEXT NOT NULL,
		email TEXT NOT NULL UNIQUE,
		bio TEXT NOT NULL DEFAULT '',
		hourly_rate INTEGER NOT NULL DEFAULT 0,
		status TEXT NOT NULL,
		FOREIGN KEY (account_id) REFERENCES account(id)
	);

	CREATE TABLE IF NOT EXISTS player (
		id TEXT PRIMARY KEY,
		account_id TEXT,
		name TEXT NOT NULL,
		email TEXT NOT NULL UNIQUE,
		phone TEXT NOT NULL DEFAULT '',
		grade TEXT NOT NULL,
		FOREIGN KEY (account_id) REFERENCES account(id)
	);

	CREATE TABLE IF NOT EXISTS location (
		id TEXT PRIMARY KEY,
		name TEXT NOT NULL,
		address TEXT NOT NULL DEFAULT '',
		courts INTEGER NOT NULL DEFAULT 1
	);

	CREATE TABLE IF NOT EXISTS availability_window (
		id TEXT PRIMARY KEY,
		coach_id TEXT NOT NULL,
		location_id TEXT NOT NULL,
		day TEXT NOT NULL,
		start_time TEXT NOT NULL,
		end_time TEXT NOT NULL,
		session_minutes INTEGER NOT NULL,
		FOREIGN KEY (coach_id) REFERENCES coach(id),
		FOREIGN KEY (location_id) REFERENCES location(id)
	);

	CREATE TABLE IF NOT EXISTS slot (
		id TEXT PRIMARY KEY,
		coach_id TEXT NOT NULL,
		location_id TEXT NOT NULL,
		date TEXT NOT NULL,
		start_time TEXT NOT NULL,
		end_time TEXT NOT NULL,
		status TEXT NOT NULL,
		player_id TEXT,
		source_window_id TEXT,
		held_at TEXT,
		created_at TEXT NOT NULL,
		FOREIGN KEY (coach_id) REFERENCES coach(id),
		FOREIGN KEY (location_id) REFERENCES location(id)
	);

	CREATE UNIQUE INDEX IF NOT EXISTS idx_slot_coach_date_start
		ON slot(coach_id, date, start_time);

	CREATE TABLE IF NOT EXISTS payment (
		id TEXT PRIMARY KEY,
		slot_id TEXT NOT NULL,
		player_id TEXT NOT NULL,
		amount INTEGER NOT NULL,
		card_last4 TEXT NOT NULL DEFAULT '',
		status TEXT NOT NULL,
		reference TEXT NOT NULL DEFAULT '',
		created_at TEXT NOT NULL,
		FOREIGN KEY (slot_id) REFERENCES slot(id)
	);

	CREATE TABLE IF NOT EXISTS audit_event (
		id TEXT PRIMARY KEY,
		timestamp TEXT NOT NULL,
		category TEXT NOT NULL,
		action TEXT NOT NULL,
		actor_id TEXT NOT NULL,
		actor_role TEXT NOT NULL DEFAULT '',
		resource_id TEXT NOT NULL DEFAULT '',
		resource_type TEXT NOT NULL DEFAULT '',
		detail TEXT NOT NULL DEFAULT ''
	);
	`,
	// 2: one active booking per player per timeslot, enforced by the engine.
	// Partial index so released/cancelled history never blocks a rebooking.
	`
	CREATE UNIQUE INDEX IF NOT EXISTS idx_slot_player_timeslot
		ON slot(player_id, date, start_time)
		WHERE status IN ('pending', 'booked');
	`,
	// 3: lookup indexes for the browse and sweep queries
	`
	CREATE INDEX IF NOT EXISTS idx_slot_status_date ON slot(status, date);
	CREATE INDEX IF NOT EXISTS idx_window_coach_day ON availability_window(coach_id, day);
	`,
}

// LatestSchemaVersion returns the newest schema version this build knows.
func LatestSchemaVersion() int {
	return len(migrations)
}

// MigrateDB brings the database schema up to the latest version.
// PRE: db is a valid connection with foreign keys enabled
// POST: schema_version row equals LatestSchemaVersion()
func MigrateDB(db *sql.DB) error {
	if _, err := db.Exec("CREATE TABLE IF NOT EXISTS schema_version (version INTEGER NOT NULL)"); err != nil {
		return fmt.Errorf("failed to create schema_version table: %w", err)
	}

	var version int
	err := db.QueryRow("SELECT version FROM schema_version LIMIT 1").Scan(&version)
	if err == sql.ErrNoRows {
		if _, err := db.Exec("INSERT INTO schema_version (version) VALUES (0)"); err != nil {
			return fmt.Errorf("failed to seed schema_version: %w", err)
		}
		version = 0
	} else if err != nil {
		return fmt.Errorf("failed to read schema version: %w", err)
	}

	for v := version; v < len(migrations); v++ {
		tx, err := db.Begin()
		if err != nil {
			return fmt.Errorf("failed to begin migration %d: %w", v+1, err)
		}
		if _, err := tx.Exec(migrations[v]); err != nil {
			tx.Rollback()
			return fmt.Errorf("migration %d failed: %w", v+1, err)
		}
		if _, err := tx.Exec("UPDATE schema_version SET version = ?", v+1); err != nil {
			tx.Rollback()
			return fmt.Errorf("failed to record migration %d: %w", v+1, err)
		}
		if err := tx.Commit(); err != nil {
			return fmt.Errorf("failed to commit migration %d: %w", v+1, err)
		}
	}
	return nil
}
