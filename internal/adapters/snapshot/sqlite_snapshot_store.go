package snapshot

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"delivery-board-service/internal/domain"
)

// SQLite-backed implementation of the SnapshotStore port.
type SqliteSnapshotStore struct {
	DB *sql.DB
}

func NewSqliteSnapshotStore(db *sql.DB) *SqliteSnapshotStore {
	return &SqliteSnapshotStore{DB: db}
}

// Save replaces the stored snapshot in a single transaction.
func (s *SqliteSnapshotStore) Save(ctx context.Context, snap domain.BoardSnapshot) error {
	if s.DB == nil {
		return errors.New("snapshot store: DB is nil")
	}

	tx, err := s.DB.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("save snapshot: begin tx: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	for _, table := range []string{
		"board_meta", "board_trucks", "board_orders",
		"board_runs", "board_run_orders", "board_loose_orders", "board_date_locks",
	} {
		if _, err := tx.ExecContext(ctx, "DELETE FROM "+table+";"); err != nil {
			return fmt.Errorf("save snapshot: clear %s: %w", table, err)
		}
	}

	_, err = tx.ExecContext(ctx,
		`INSERT INTO board_meta (id, start_date, end_date, fetched_at) VALUES (1, ?, ?, ?);`,
		snap.StartDate, snap.EndDate, snap.FetchedAt.UTC().Format(time.RFC3339),
	)
	if err != nil {
		return fmt.Errorf("save snapshot: insert meta: %w", err)
	}

	for _, t := range snap.Trucks {
		_, err := tx.ExecContext(ctx,
			`INSERT INTO board_trucks (truck_id, name, position) VALUES (?, ?, ?);`,
			t.ID, t.Name, t.Position,
		)
		if err != nil {
			return fmt.Errorf("save snapshot: insert truck %s: %w", t.ID, err)
		}
	}

	for _, o := range snap.Orders {
		_, err := tx.ExecContext(ctx,
			`INSERT INTO board_orders
				(order_id, order_type, order_number, customer_code, pallet_count, status, notes, read_only)
			VALUES (?, ?, ?, ?, ?, ?, ?, ?);`,
			o.ID, string(o.Type), o.OrderNumber, o.CustomerCode,
			o.PalletCount, string(o.Status), o.Notes, boolToInt(o.ReadOnly),
		)
		if err != nil {
			return fmt.Errorf("save snapshot: insert order %s: %w", o.ID, err)
		}
	}

	cellPos := runCellPositions(snap)
	for _, r := range snap.Runs {
		var truckID, date any
		pos := 0
		if placed, ok := cellPos[r.ID]; ok {
			truckID, date, pos = placed.key.TruckID, placed.key.Date, placed.position
		}
		_, err := tx.ExecContext(ctx,
			`INSERT INTO board_runs (run_id, name, notes, truck_id, run_date, cell_position)
			VALUES (?, ?, ?, ?, ?, ?);`,
			r.ID, r.Name, r.Notes, truckID, date, pos,
		)
		if err != nil {
			return fmt.Errorf("save snapshot: insert run %s: %w", r.ID, err)
		}
		for i, orderID := range r.OrderIDs {
			_, err := tx.ExecContext(ctx,
				`INSERT INTO board_run_orders (run_id, position, order_id) VALUES (?, ?, ?);`,
				r.ID, i, orderID,
			)
			if err != nil {
				return fmt.Errorf("save snapshot: insert run order %s/%s: %w", r.ID, orderID, err)
			}
		}
	}

	for _, c := range snap.Cells {
		for i, orderID := range c.LooseOrderIDs {
			_, err := tx.ExecContext(ctx,
				`INSERT INTO board_loose_orders (truck_id, loose_date, position, order_id)
				VALUES (?, ?, ?, ?);`,
				c.Key.TruckID, c.Key.Date, i, orderID,
			)
			if err != nil {
				return fmt.Errorf("save snapshot: insert loose order %s: %w", orderID, err)
			}
		}
	}

	for _, d := range snap.DateLocks {
		if _, err := tx.ExecContext(ctx, `INSERT INTO board_date_locks (lock_date) VALUES (?);`, d); err != nil {
			return fmt.Errorf("save snapshot: insert date lock %s: %w", d, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("save snapshot: commit tx: %w", err)
	}

	return nil
}

// Load reassembles the stored snapshot. ok is false when nothing was saved.
func (s *SqliteSnapshotStore) Load(ctx context.Context) (domain.BoardSnapshot, bool, error) {
	if s.DB == nil {
		return domain.BoardSnapshot{}, false, errors.New("snapshot store: DB is nil")
	}

	var snap domain.BoardSnapshot
	var fetchedAt string

	err := s.DB.QueryRowContext(ctx,
		`SELECT start_date, end_date, fetched_at FROM board_meta WHERE id = 1;`,
	).Scan(&snap.StartDate, &snap.EndDate, &fetchedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return domain.BoardSnapshot{}, false, nil
	}
	if err != nil {
		return domain.BoardSnapshot{}, false, fmt.Errorf("load snapshot: read meta: %w", err)
	}
	if ts, err := time.Parse(time.RFC3339, fetchedAt); err == nil {
		snap.FetchedAt = ts
	}

	loaded, err := loadBoard(ctx, s.DB)
	if err != nil {
		return domain.BoardSnapshot{}, false, err
	}
	snap.Trucks = loaded.Trucks
	snap.Orders = loaded.Orders
	snap.Runs = loaded.Runs
	snap.Cells = loaded.Cells
	snap.RunCells = loaded.RunCells
	snap.DateLocks = loaded.DateLocks

	return snap, true, nil
}

func boolToInt(b bool) int {
	if b {
		return 1
	}
	return 0
}
