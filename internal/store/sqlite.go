// Package store provides SQLite-backed persistence for day records, profiles,
// and the food reference index.
package store

import (
	"context"
	"database/sql"
	"fmt"

	_ "modernc.org/sqlite"
)

// schemaV1 defines the initial database schema.
const schemaV1 = `
CREATE TABLE IF NOT EXISTS day_records (
	client_id    TEXT NOT NULL,
	date         TEXT NOT NULL,
	payload_json TEXT NOT NULL DEFAULT '{}',
	updated_at   INTEGER NOT NULL DEFAULT 0,
	PRIMARY KEY (client_id, date)
);
CREATE INDEX IF NOT EXISTS idx_day_records_client ON day_records(client_id, date);

CREATE TABLE IF NOT EXISTS profiles (
	client_id    TEXT PRIMARY KEY,
	payload_json TEXT NOT NULL DEFAULT '{}',
	updated_at   INTEGER NOT NULL DEFAULT 0
);

CREATE TABLE IF NOT EXISTS food_items (
	ref         TEXT PRIMARY KEY,
	name        TEXT NOT NULL DEFAULT '',
	kcal_100    REAL NOT NULL DEFAULT 0.0,
	protein_100 REAL NOT NULL DEFAULT 0.0,
	carbs_100   REAL NOT NULL DEFAULT 0.0,
	fat_100     REAL NOT NULL DEFAULT 0.0,
	fiber_100   REAL NOT NULL DEFAULT 0.0
);
`

// NewDB opens a SQLite database at the given path with recommended pragmas
// and runs the V1 schema migration.
func NewDB(path string) (*sql.DB, error) {
	dsn := fmt.Sprintf("file:%s?_pragma=journal_mode(WAL)&_pragma=synchronous(NORMAL)&_pragma=foreign_keys(ON)&_pragma=busy_timeout(5000)", path)

	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}

	// Limit connections to 1 for SQLite (WAL allows concurrent reads but single writer).
	db.SetMaxOpenConns(1)

	if err := migrate(db); err != nil {
		db.Close()
		return nil, fmt.Errorf("migrate schema: %w", err)
	}

	return db, nil
}

func migrate(db *sql.DB) error {
	_, err := db.ExecContext(context.Background(), schemaV1)
	return err
}
