package board

import (
	"fmt"

	"delivery-board-service/internal/domain"
)

// Mutation operations. All are synchronous and total: an operation given an
// id the store does not know is a silent no-op, because drag targets are
// derived from possibly stale view state and replays must be harmless.
// Each operation updates the primary collections and both reverse indexes
// under one lock, so no caller can observe or create a half-applied move.

// CreateRun appends a new empty run to the cell and returns its id. Cells
// in the inbound and unassigned rows never hold runs; calling CreateRun on
// one is a no-op returning the empty string, so defensive callers stay safe.
func (s *Store) CreateRun(key domain.CellKey) string {
	s.mu.Lock()
	defer s.mu.Unlock()

	if key.IsZero() {
		return ""
	}
	probe := domain.Cell{Key: key}
	if !probe.AcceptsRuns() {
		return ""
	}

	cell := s.cell(key)
	run := domain.Run{
		ID:   newRunID(),
		Name: fmt.Sprintf("Run %d", len(cell.RunIDs)+1),
	}
	s.runs[run.ID] = run
	cell.RunIDs = append(cell.RunIDs, run.ID)
	s.runToCell[run.ID] = key
	s.rev++
	return run.ID
}

// MoveOrder detaches the order from wherever it currently lives (a run's
// sequence or a cell's loose list) and inserts it into the target run at
// insertIndex. A negative or out-of-range index appends. Gesture policy
// (read-only orders, purchase orders) is the caller's concern; the engine
// moves unconditionally.
func (s *Store) MoveOrder(orderID, targetRunID string, insertIndex int) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.orders[orderID]; !ok {
		return
	}
	target, ok := s.runs[targetRunID]
	if !ok {
		return
	}

	if s.orderToRun[orderID] == targetRunID {
		// Same-run move is a reorder: dropping the element back into the
		// shorter remaining sequence keeps indices meaningful.
		target.OrderIDs = remove(target.OrderIDs, orderID)
		target.OrderIDs = insertAt(target.OrderIDs, orderID, insertIndex)
		s.runs[targetRunID] = target
		s.rev++
		return
	}

	s.detachOrderLocked(orderID)

	target = s.runs[targetRunID]
	target.OrderIDs = insertAt(target.OrderIDs, orderID, insertIndex)
	s.runs[targetRunID] = target
	s.orderToRun[orderID] = targetRunID
	s.rev++
}

// MoveOrderLoose detaches the order from any run and appends it to the
// cell's loose list. The inbound row never holds loose orders; moves into
// it are no-ops.
func (s *Store) MoveOrderLoose(orderID string, key domain.CellKey) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.orders[orderID]; !ok {
		return
	}
	if key.IsZero() {
		return
	}
	if probe := (domain.Cell{Key: key}); !probe.AcceptsLooseOrders() {
		return
	}

	cell := s.cell(key)
	if contains(cell.LooseOrderIDs, orderID) {
		return
	}

	s.detachOrderLocked(orderID)
	cell.LooseOrderIDs = append(cell.LooseOrderIDs, orderID)
	s.rev++
}

// MoveRun re-homes the run into targetKey. Only cell membership changes;
// the run keeps its orders and their orderToRun entries untouched. The
// inbound and unassigned rows never hold runs; moves into them are no-ops.
func (s *Store) MoveRun(runID string, targetKey domain.CellKey) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.runs[runID]; !ok {
		return
	}
	if targetKey.IsZero() {
		return
	}
	if probe := (domain.Cell{Key: targetKey}); !probe.AcceptsRuns() {
		return
	}
	if s.runToCell[runID] == targetKey {
		return
	}

	if src, ok := s.runToCell[runID]; ok {
		if cell, ok := s.cells[src]; ok {
			cell.RunIDs = remove(cell.RunIDs, runID)
		}
	}
	cell := s.cell(targetKey)
	cell.RunIDs = append(cell.RunIDs, runID)
	s.runToCell[runID] = targetKey
	s.rev++
}

// ReorderInRun repositions one order within a run's sequence. Equal or
// out-of-bounds indices are no-ops.
func (s *Store) ReorderInRun(runID string, fromIndex, toIndex int) {
	s.mu.Lock()
	defer s.mu.Unlock()

	run, ok := s.runs[runID]
	if !ok {
		return
	}
	ids, changed := reorder(run.OrderIDs, fromIndex, toIndex)
	if !changed {
		return
	}
	run.OrderIDs = ids
	s.runs[runID] = run
	s.rev++
}

// ReorderRunsInCell repositions one run within a cell's sequence.
func (s *Store) ReorderRunsInCell(key domain.CellKey, fromIndex, toIndex int) {
	s.mu.Lock()
	defer s.mu.Unlock()

	cell, ok := s.cells[key]
	if !ok {
		return
	}
	ids, changed := reorder(cell.RunIDs, fromIndex, toIndex)
	if !changed {
		return
	}
	cell.RunIDs = ids
	s.rev++
}

// UpdateOrderNotes sets the order's annotation; empty text clears it.
func (s *Store) UpdateOrderNotes(orderID, text string) {
	s.mu.Lock()
	defer s.mu.Unlock()

	order, ok := s.orders[orderID]
	if !ok {
		return
	}
	order.Notes = text
	s.orders[orderID] = order
	s.rev++
}

// UpdateRunNotes sets the run's annotation; empty text clears it.
func (s *Store) UpdateRunNotes(runID, text string) {
	s.mu.Lock()
	defer s.mu.Unlock()

	run, ok := s.runs[runID]
	if !ok {
		return
	}
	run.Notes = text
	s.runs[runID] = run
	s.rev++
}

// ToggleDateLock flips the advisory closed-for-scheduling flag on a date.
func (s *Store) ToggleDateLock(date string) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if date == "" {
		return
	}
	if _, ok := s.dateLocks[date]; ok {
		delete(s.dateLocks, date)
	} else {
		s.dateLocks[date] = struct{}{}
	}
	s.rev++
}

// detachOrderLocked removes the order from its current placement, leaving
// it owned by nothing. Loose placement has no reverse index, so the cells
// are scanned; board-sized cell counts keep this cheap.
func (s *Store) detachOrderLocked(orderID string) {
	if runID, ok := s.orderToRun[orderID]; ok {
		if run, ok := s.runs[runID]; ok {
			run.OrderIDs = remove(run.OrderIDs, orderID)
			s.runs[runID] = run
		}
		delete(s.orderToRun, orderID)
		return
	}
	for _, cell := range s.cells {
		if contains(cell.LooseOrderIDs, orderID) {
			cell.LooseOrderIDs = remove(cell.LooseOrderIDs, orderID)
			return
		}
	}
}

func reorder(ids []string, from, to int) ([]string, bool) {
	if from == to || from < 0 || to < 0 || from >= len(ids) || to >= len(ids) {
		return ids, false
	}
	id := ids[from]
	ids = append(ids[:from], ids[from+1:]...)
	return insertAt(ids, id, to), true
}
