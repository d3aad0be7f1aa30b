package sqlite

import (
	"database/sql"
	"fmt"
)

const schema = `
CREATE TABLE IF NOT EXISTS players (
	identity TEXT PRIMARY KEY,
	display_name TEXT NOT NULL,
	score INTEGER NOT NULL DEFAULT 0,
	created_at TEXT NOT NULL
);

CREATE TABLE IF NOT EXISTS credentials (
	identity TEXT PRIMARY KEY,
	passphrase_hash TEXT NOT NULL,
	created_at TEXT NOT NULL
);

CREATE TABLE IF NOT EXISTS counters (
	name TEXT PRIMARY KEY,
	value INTEGER NOT NULL
);

CREATE TABLE IF NOT EXISTS games (
	id INTEGER PRIMARY KEY,
	status TEXT NOT NULL,
	data TEXT NOT NULL,
	updated_at TEXT NOT NULL
);

CREATE INDEX IF NOT EXISTS idx_games_status ON games(status, id);

CREATE TABLE IF NOT EXISTS randomness_requests (
	sequence_number INTEGER PRIMARY KEY,
	requester TEXT NOT NULL,
	status TEXT NOT NULL,
	data TEXT NOT NULL
);
`

// CreateSchema creates all tables if they don't exist
func CreateSchema(db *sql.DB) error {
	if _, err := db.Exec(schema); err != nil {
		return fmt.Errorf("failed to create schema: %w", err)
	}
	return nil
}
