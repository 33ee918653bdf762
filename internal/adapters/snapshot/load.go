package snapshot

import (
	"context"
	"database/sql"
	"fmt"
	"sort"

	"delivery-board-service/internal/domain"
)

type placedRun struct {
	key      domain.CellKey
	position int
}

// runCellPositions derives each run's cell and in-cell position from the
// snapshot's cell sequences.
func runCellPositions(snap domain.BoardSnapshot) map[string]placedRun {
	out := make(map[string]placedRun, len(snap.RunCells))
	for _, c := range snap.Cells {
		for i, runID := range c.RunIDs {
			out[runID] = placedRun{key: c.Key, position: i}
		}
	}
	return out
}

// loadBoard reads every board table and reassembles the entity lists and
// cell sequences. The read queries carry no parameters, so both dialects
// share this path.
func loadBoard(ctx context.Context, db *sql.DB) (domain.BoardSnapshot, error) {
	var snap domain.BoardSnapshot
	snap.RunCells = make(map[string]domain.CellKey)

	rows, err := db.QueryContext(ctx, `SELECT truck_id, name, position FROM board_trucks ORDER BY position, truck_id;`)
	if err != nil {
		return snap, fmt.Errorf("load snapshot: query trucks: %w", err)
	}
	for rows.Next() {
		var t domain.Truck
		if err := rows.Scan(&t.ID, &t.Name, &t.Position); err != nil {
			rows.Close()
			return snap, fmt.Errorf("load snapshot: scan truck: %w", err)
		}
		snap.Trucks = append(snap.Trucks, t)
	}
	if err := closeRows(rows); err != nil {
		return snap, fmt.Errorf("load snapshot: trucks: %w", err)
	}

	rows, err = db.QueryContext(ctx, `
	SELECT order_id, order_type, order_number, customer_code, pallet_count, status, notes, read_only
	FROM board_orders ORDER BY order_id;`)
	if err != nil {
		return snap, fmt.Errorf("load snapshot: query orders: %w", err)
	}
	for rows.Next() {
		var o domain.Order
		var orderType, status string
		var readOnly int
		if err := rows.Scan(&o.ID, &orderType, &o.OrderNumber, &o.CustomerCode,
			&o.PalletCount, &status, &o.Notes, &readOnly); err != nil {
			rows.Close()
			return snap, fmt.Errorf("load snapshot: scan order: %w", err)
		}
		o.Type = domain.OrderType(orderType)
		o.Status = domain.OrderStatus(status)
		o.ReadOnly = readOnly != 0
		snap.Orders = append(snap.Orders, o)
	}
	if err := closeRows(rows); err != nil {
		return snap, fmt.Errorf("load snapshot: orders: %w", err)
	}

	cells := make(map[domain.CellKey]*domain.Cell)
	cell := func(key domain.CellKey) *domain.Cell {
		c, ok := cells[key]
		if !ok {
			c = &domain.Cell{Key: key}
			cells[key] = c
		}
		return c
	}

	type runRow struct {
		run      domain.Run
		placed   bool
		key      domain.CellKey
		position int
	}
	var runRows []runRow

	rows, err = db.QueryContext(ctx, `
	SELECT run_id, name, notes, truck_id, run_date, cell_position
	FROM board_runs ORDER BY cell_position, run_id;`)
	if err != nil {
		return snap, fmt.Errorf("load snapshot: query runs: %w", err)
	}
	for rows.Next() {
		var rr runRow
		var truckID, date sql.NullString
		if err := rows.Scan(&rr.run.ID, &rr.run.Name, &rr.run.Notes, &truckID, &date, &rr.position); err != nil {
			rows.Close()
			return snap, fmt.Errorf("load snapshot: scan run: %w", err)
		}
		if truckID.Valid && date.Valid {
			rr.placed = true
			rr.key = domain.CellKey{TruckID: truckID.String, Date: date.String}
		}
		runRows = append(runRows, rr)
	}
	if err := closeRows(rows); err != nil {
		return snap, fmt.Errorf("load snapshot: runs: %w", err)
	}

	runOrders := make(map[string][]string)
	rows, err = db.QueryContext(ctx, `SELECT run_id, order_id FROM board_run_orders ORDER BY run_id, position;`)
	if err != nil {
		return snap, fmt.Errorf("load snapshot: query run orders: %w", err)
	}
	for rows.Next() {
		var runID, orderID string
		if err := rows.Scan(&runID, &orderID); err != nil {
			rows.Close()
			return snap, fmt.Errorf("load snapshot: scan run order: %w", err)
		}
		runOrders[runID] = append(runOrders[runID], orderID)
	}
	if err := closeRows(rows); err != nil {
		return snap, fmt.Errorf("load snapshot: run orders: %w", err)
	}

	// Rebuild cell run sequences in their persisted order.
	sort.SliceStable(runRows, func(i, j int) bool { return runRows[i].position < runRows[j].position })
	for _, rr := range runRows {
		rr.run.OrderIDs = runOrders[rr.run.ID]
		snap.Runs = append(snap.Runs, rr.run)
		if rr.placed {
			snap.RunCells[rr.run.ID] = rr.key
			c := cell(rr.key)
			c.RunIDs = append(c.RunIDs, rr.run.ID)
		}
	}

	rows, err = db.QueryContext(ctx, `
	SELECT truck_id, loose_date, order_id FROM board_loose_orders
	ORDER BY truck_id, loose_date, position;`)
	if err != nil {
		return snap, fmt.Errorf("load snapshot: query loose orders: %w", err)
	}
	for rows.Next() {
		var truckID, date, orderID string
		if err := rows.Scan(&truckID, &date, &orderID); err != nil {
			rows.Close()
			return snap, fmt.Errorf("load snapshot: scan loose order: %w", err)
		}
		c := cell(domain.CellKey{TruckID: truckID, Date: date})
		c.LooseOrderIDs = append(c.LooseOrderIDs, orderID)
	}
	if err := closeRows(rows); err != nil {
		return snap, fmt.Errorf("load snapshot: loose orders: %w", err)
	}

	rows, err = db.QueryContext(ctx, `SELECT lock_date FROM board_date_locks ORDER BY lock_date;`)
	if err != nil {
		return snap, fmt.Errorf("load snapshot: query date locks: %w", err)
	}
	for rows.Next() {
		var d string
		if err := rows.Scan(&d); err != nil {
			rows.Close()
			return snap, fmt.Errorf("load snapshot: scan date lock: %w", err)
		}
		snap.DateLocks = append(snap.DateLocks, d)
	}
	if err := closeRows(rows); err != nil {
		return snap, fmt.Errorf("load snapshot: date locks: %w", err)
	}

	for _, c := range cells {
		snap.Cells = append(snap.Cells, *c)
	}
	sort.Slice(snap.Cells, func(i, j int) bool {
		return snap.Cells[i].Key.String() < snap.Cells[j].Key.String()
	})

	return snap, nil
}

func closeRows(rows *sql.Rows) error {
	if err := rows.Err(); err != nil {
		rows.Close()
		return fmt.Errorf("row iteration: %w", err)
	}
	return rows.Close()
}
