package board

import (
	"sort"

	"delivery-board-service/internal/domain"
)

// Read side of the store. Selectors are pure functions of current state
// and hand out copies, never the store's own slices, so the rendering
// layer cannot alias internal state. An unmaterialized cell reads as empty.

// CellRunIDs returns the ordered run ids committed to a cell.
func (s *Store) CellRunIDs(key domain.CellKey) []string {
	s.mu.Lock()
	defer s.mu.Unlock()

	cell, ok := s.cells[key]
	if !ok {
		return []string{}
	}
	return append([]string{}, cell.RunIDs...)
}

// CellLooseOrderIDs returns the ordered loose order ids in a cell.
func (s *Store) CellLooseOrderIDs(key domain.CellKey) []string {
	s.mu.Lock()
	defer s.mu.Unlock()

	cell, ok := s.cells[key]
	if !ok {
		return []string{}
	}
	return append([]string{}, cell.LooseOrderIDs...)
}

// IsDateLocked reports the advisory lock state of a date.
func (s *Store) IsDateLocked(date string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	_, ok := s.dateLocks[date]
	return ok
}

// LockedDates returns all locked dates in ascending order.
func (s *Store) LockedDates() []string {
	s.mu.Lock()
	defer s.mu.Unlock()

	dates := make([]string, 0, len(s.dateLocks))
	for d := range s.dateLocks {
		dates = append(dates, d)
	}
	sort.Strings(dates)
	return dates
}

// OrderByID looks up one order.
func (s *Store) OrderByID(orderID string) (domain.Order, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	o, ok := s.orders[orderID]
	return o, ok
}

// RunByID looks up one run, with its order sequence copied.
func (s *Store) RunByID(runID string) (domain.Run, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	r, ok := s.runs[runID]
	if !ok {
		return domain.Run{}, false
	}
	r.OrderIDs = append([]string(nil), r.OrderIDs...)
	return r, true
}

// OrderRun returns the id of the run currently owning the order, if any.
func (s *Store) OrderRun(orderID string) (string, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	runID, ok := s.orderToRun[orderID]
	return runID, ok
}

// LooseOrderCell returns the cell holding the order loose, if any. Loose
// placement keeps no reverse index, so this scans the cells.
func (s *Store) LooseOrderCell(orderID string) (domain.CellKey, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	for key, cell := range s.cells {
		if contains(cell.LooseOrderIDs, orderID) {
			return key, true
		}
	}
	return domain.CellKey{}, false
}

// RunCell returns the cell currently owning the run, if any.
func (s *Store) RunCell(runID string) (domain.CellKey, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	key, ok := s.runToCell[runID]
	return key, ok
}

// Trucks returns board rows ordered by display position.
func (s *Store) Trucks() []domain.Truck {
	s.mu.Lock()
	defer s.mu.Unlock()

	trucks := make([]domain.Truck, 0, len(s.trucks))
	for _, t := range s.trucks {
		trucks = append(trucks, t)
	}
	sort.Slice(trucks, func(i, j int) bool {
		if trucks[i].Position != trucks[j].Position {
			return trucks[i].Position < trucks[j].Position
		}
		return trucks[i].ID < trucks[j].ID
	})
	return trucks
}

// RunsInCell resolves a cell's run ids to full runs, preserving order.
func (s *Store) RunsInCell(key domain.CellKey) []domain.Run {
	s.mu.Lock()
	defer s.mu.Unlock()

	cell, ok := s.cells[key]
	if !ok {
		return []domain.Run{}
	}
	runs := make([]domain.Run, 0, len(cell.RunIDs))
	for _, id := range cell.RunIDs {
		r, ok := s.runs[id]
		if !ok {
			continue
		}
		r.OrderIDs = append([]string(nil), r.OrderIDs...)
		runs = append(runs, r)
	}
	return runs
}

// LooseOrders resolves a cell's loose order ids to full orders.
func (s *Store) LooseOrders(key domain.CellKey) []domain.Order {
	s.mu.Lock()
	defer s.mu.Unlock()

	cell, ok := s.cells[key]
	if !ok {
		return []domain.Order{}
	}
	orders := make([]domain.Order, 0, len(cell.LooseOrderIDs))
	for _, id := range cell.LooseOrderIDs {
		if o, ok := s.orders[id]; ok {
			orders = append(orders, o)
		}
	}
	return orders
}

// UnscheduledOrders returns orders that sit nowhere on the board: not in
// any run and not loose in any cell. Sorted by order number for a stable
// side-panel listing.
func (s *Store) UnscheduledOrders() []domain.Order {
	s.mu.Lock()
	defer s.mu.Unlock()

	placed := make(map[string]struct{}, len(s.orderToRun))
	for id := range s.orderToRun {
		placed[id] = struct{}{}
	}
	for _, cell := range s.cells {
		for _, id := range cell.LooseOrderIDs {
			placed[id] = struct{}{}
		}
	}

	orders := make([]domain.Order, 0)
	for id, o := range s.orders {
		if _, ok := placed[id]; !ok {
			orders = append(orders, o)
		}
	}
	sort.Slice(orders, func(i, j int) bool {
		if orders[i].OrderNumber != orders[j].OrderNumber {
			return orders[i].OrderNumber < orders[j].OrderNumber
		}
		return orders[i].ID < orders[j].ID
	})
	return orders
}

// Snapshot exports the complete current state, for local persistence and
// for the board view. The result shares nothing with the store.
func (s *Store) Snapshot() domain.BoardSnapshot {
	s.mu.Lock()
	defer s.mu.Unlock()

	snap := domain.BoardSnapshot{
		RunCells: make(map[string]domain.CellKey, len(s.runToCell)),
	}
	for _, o := range s.orders {
		snap.Orders = append(snap.Orders, o)
	}
	for _, r := range s.runs {
		r.OrderIDs = append([]string(nil), r.OrderIDs...)
		snap.Runs = append(snap.Runs, r)
	}
	for _, t := range s.trucks {
		snap.Trucks = append(snap.Trucks, t)
	}
	for _, c := range s.cells {
		cc := *c
		cc.RunIDs = append([]string(nil), c.RunIDs...)
		cc.LooseOrderIDs = append([]string(nil), c.LooseOrderIDs...)
		snap.Cells = append(snap.Cells, cc)
	}
	for id, key := range s.runToCell {
		snap.RunCells[id] = key
	}
	for d := range s.dateLocks {
		snap.DateLocks = append(snap.DateLocks, d)
	}

	sort.Slice(snap.Orders, func(i, j int) bool { return snap.Orders[i].ID < snap.Orders[j].ID })
	sort.Slice(snap.Runs, func(i, j int) bool { return snap.Runs[i].ID < snap.Runs[j].ID })
	sort.Slice(snap.Trucks, func(i, j int) bool { return snap.Trucks[i].ID < snap.Trucks[j].ID })
	sort.Slice(snap.Cells, func(i, j int) bool {
		return snap.Cells[i].Key.String() < snap.Cells[j].Key.String()
	})
	sort.Strings(snap.DateLocks)
	return snap
}
