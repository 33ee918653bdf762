// Package board holds the normalized in-memory model of the delivery
// scheduling board: orders, runs, truck/date cells, and the mutation
// operations that move entities between them.
package board

import (
	"crypto/rand"
	"encoding/hex"
	"sync"

	"delivery-board-service/internal/domain"
)

// Store is the single container for all board state. It is constructed
// explicitly and injected; there is no package-level instance.
//
// Entities are held in flat maps keyed by id, with two reverse indexes
// (order -> owning run, run -> owning cell) that every mutation updates
// together with the primary collections, under one lock. Handlers and the
// background poller run on separate goroutines, so the lock stands in for
// the single event loop the board would otherwise live on.
type Store struct {
	mu sync.Mutex

	orders map[string]domain.Order
	runs   map[string]domain.Run
	trucks map[string]domain.Truck
	cells  map[domain.CellKey]*domain.Cell

	orderToRun map[string]string
	runToCell  map[string]domain.CellKey
	dateLocks  map[string]struct{}

	// rev increases on every local mutation. Poll refreshes fetched at an
	// older rev are skipped rather than allowed to clobber newer edits.
	rev uint64
}

func NewStore() *Store {
	s := &Store{}
	s.reset()
	return s
}

func (s *Store) reset() {
	s.orders = make(map[string]domain.Order)
	s.runs = make(map[string]domain.Run)
	s.trucks = make(map[string]domain.Truck)
	s.cells = make(map[domain.CellKey]*domain.Cell)
	s.orderToRun = make(map[string]string)
	s.runToCell = make(map[string]domain.CellKey)
	s.dateLocks = make(map[string]struct{})
}

// Rev returns the current local mutation revision.
func (s *Store) Rev() uint64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.rev
}

// cell returns the cell for key, materializing an empty one on first
// reference. Absent cells mean "empty", never "error".
func (s *Store) cell(key domain.CellKey) *domain.Cell {
	c, ok := s.cells[key]
	if !ok {
		c = &domain.Cell{Key: key}
		s.cells[key] = c
	}
	return c
}

// Replace installs a fetched snapshot wholesale, discarding all current
// state. Entities are never deleted one at a time; replacement is the only
// way anything leaves the store.
func (s *Store) Replace(snap domain.BoardSnapshot) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.replaceLocked(snap)
}

// ReplaceIfFresh installs the snapshot only if no local mutation has
// happened since basisRev (the revision observed when the fetch began).
// It reports whether the snapshot was applied.
func (s *Store) ReplaceIfFresh(snap domain.BoardSnapshot, basisRev uint64) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.rev != basisRev {
		return false
	}
	s.replaceLocked(snap)
	return true
}

func (s *Store) replaceLocked(snap domain.BoardSnapshot) {
	s.reset()

	for _, o := range snap.Orders {
		s.orders[o.ID] = o
	}
	for _, t := range snap.Trucks {
		s.trucks[t.ID] = t
	}
	for _, c := range snap.Cells {
		cc := c
		cc.RunIDs = append([]string(nil), c.RunIDs...)
		cc.LooseOrderIDs = append([]string(nil), c.LooseOrderIDs...)
		s.cells[c.Key] = &cc
	}
	for _, r := range snap.Runs {
		rr := r
		rr.OrderIDs = append([]string(nil), r.OrderIDs...)
		s.runs[r.ID] = rr
		for _, orderID := range rr.OrderIDs {
			s.orderToRun[orderID] = rr.ID
		}
		if key, ok := snap.RunCells[r.ID]; ok {
			s.runToCell[r.ID] = key
			cell := s.cell(key)
			if !contains(cell.RunIDs, r.ID) {
				cell.RunIDs = append(cell.RunIDs, r.ID)
			}
		}
	}
	for _, d := range snap.DateLocks {
		s.dateLocks[d] = struct{}{}
	}
}

func contains(ids []string, id string) bool {
	for _, v := range ids {
		if v == id {
			return true
		}
	}
	return false
}

func remove(ids []string, id string) []string {
	for i, v := range ids {
		if v == id {
			return append(ids[:i], ids[i+1:]...)
		}
	}
	return ids
}

func insertAt(ids []string, id string, index int) []string {
	if index < 0 || index > len(ids) {
		return append(ids, id)
	}
	ids = append(ids, "")
	copy(ids[index+1:], ids[index:])
	ids[index] = id
	return ids
}

// newRunID generates a board-local run id. Server-assigned ids arrive with
// the next snapshot and replace these.
func newRunID() string {
	buf := make([]byte, 8)
	if _, err := rand.Read(buf); err != nil {
		panic(err)
	}
	return "run-" + hex.EncodeToString(buf)
}
