// Package snapshot persists the last good board snapshot locally, so the
// board can render after a restart or while the calendar API is down.
// Two variants exist: SQLite for single-node deployments and Postgres for
// shared ones. Save always replaces the whole snapshot; partial updates
// would reintroduce the index-drift problems the board model avoids.
package snapshot

import (
	"database/sql"
	"errors"
	"fmt"
)

// InitSchema creates the snapshot tables. The DDL is restricted to types
// both SQLite and Postgres accept, so one schema serves both stores.
func InitSchema(db *sql.DB) error {
	if db == nil {
		return errors.New("init schema: DB is nil")
	}

	tx, err := db.Begin()
	if err != nil {
		return fmt.Errorf("init schema: begin tx: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	statements := []string{
		`CREATE TABLE IF NOT EXISTS board_meta (
			id INTEGER PRIMARY KEY,
			start_date TEXT NOT NULL,
			end_date TEXT NOT NULL,
			fetched_at TEXT NOT NULL
		);`,
		`CREATE TABLE IF NOT EXISTS board_trucks (
			truck_id TEXT PRIMARY KEY,
			name TEXT NOT NULL,
			position INTEGER NOT NULL
		);`,
		`CREATE TABLE IF NOT EXISTS board_orders (
			order_id TEXT PRIMARY KEY,
			order_type TEXT NOT NULL,
			order_number TEXT NOT NULL,
			customer_code TEXT NOT NULL,
			pallet_count INTEGER NOT NULL,
			status TEXT NOT NULL,
			notes TEXT NOT NULL,
			read_only INTEGER NOT NULL
		);`,
		`CREATE TABLE IF NOT EXISTS board_runs (
			run_id TEXT PRIMARY KEY,
			name TEXT NOT NULL,
			notes TEXT NOT NULL,
			truck_id TEXT,
			run_date TEXT,
			cell_position INTEGER NOT NULL
		);`,
		`CREATE TABLE IF NOT EXISTS board_run_orders (
			run_id TEXT NOT NULL,
			position INTEGER NOT NULL,
			order_id TEXT NOT NULL,
			PRIMARY KEY (run_id, position)
		);`,
		`CREATE TABLE IF NOT EXISTS board_loose_orders (
			truck_id TEXT NOT NULL,
			loose_date TEXT NOT NULL,
			position INTEGER NOT NULL,
			order_id TEXT NOT NULL,
			PRIMARY KEY (truck_id, loose_date, position)
		);`,
		`CREATE TABLE IF NOT EXISTS board_date_locks (
			lock_date TEXT PRIMARY KEY
		);`,
	}

	for i, stmt := range statements {
		if _, err := tx.Exec(stmt); err != nil {
			return fmt.Errorf("init schema: exec statement #%d: %w", i+1, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("init schema: commit tx: %w", err)
	}

	return nil
}
