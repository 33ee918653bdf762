// Package drag turns pointer-drag gestures into board mutations. The
// coordinator owns gesture policy (what may be picked up, where it may
// land); the board store owns the mutations themselves.
package drag

import (
	"sync"

	"delivery-board-service/internal/board"
	"delivery-board-service/internal/domain"
)

// DragKind says what is being dragged.
type DragKind string

const (
	DragOrder DragKind = "order"
	DragRun   DragKind = "run"
)

// Op names the mutation a drop resolved to, for persistence.
type Op string

const (
	OpMoveOrder      Op = "move_order"
	OpMoveOrderLoose Op = "move_order_loose"
	OpMoveRun        Op = "move_run"
	OpReorderOrders  Op = "reorder_orders"
	OpReorderRuns    Op = "reorder_runs"
)

// Applied describes the mutation a completed drop produced, so the sync
// layer can persist it. Cell is the cell the dragged entity ended up in.
type Applied struct {
	Op      Op
	OrderID string
	RunID   string
	Cell    domain.CellKey
}

type state int

const (
	idle state = iota
	dragging
)

// Coordinator is the drag state machine. One drag is active at a time;
// drops apply synchronously, so there is never a queued gesture.
type Coordinator struct {
	mu    sync.Mutex
	store *board.Store

	state state
	kind  DragKind
	id    string
}

func NewCoordinator(store *board.Store) *Coordinator {
	return &Coordinator{store: store}
}

// Active reports whether a drag is in progress. The sync layer checks this
// before replacing the store so the board never re-renders mid-gesture.
func (c *Coordinator) Active() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.state == dragging
}

// StartOrderDrag begins dragging an order. It refuses while another drag
// is active, when the order is unknown, or when the order is finalized
// (read-only orders never leave their place).
func (c *Coordinator) StartOrderDrag(orderID string) bool {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.state != idle {
		return false
	}
	order, ok := c.store.OrderByID(orderID)
	if !ok || order.ReadOnly {
		return false
	}
	c.state = dragging
	c.kind = DragOrder
	c.id = orderID
	return true
}

// StartRunDrag begins dragging a whole run.
func (c *Coordinator) StartRunDrag(runID string) bool {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.state != idle {
		return false
	}
	if _, ok := c.store.RunByID(runID); !ok {
		return false
	}
	c.state = dragging
	c.kind = DragRun
	c.id = runID
	return true
}

// Cancel abandons the active drag without mutating anything.
func (c *Coordinator) Cancel() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.state = idle
}

// Drop ends the active drag on target. A nil target is a cancelled drag
// (released outside any droppable region), and a drop on the drag source
// is neutral: both end the gesture with the store untouched. The returned
// Applied describes the mutation, with ok=false when nothing changed.
func (c *Coordinator) Drop(target *domain.DropTarget) (Applied, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.state != dragging {
		return Applied{}, false
	}
	c.state = idle

	if target == nil {
		return Applied{}, false
	}

	switch c.kind {
	case DragOrder:
		return c.dropOrder(c.id, *target)
	case DragRun:
		return c.dropRun(c.id, *target)
	}
	return Applied{}, false
}

func (c *Coordinator) dropOrder(orderID string, target domain.DropTarget) (Applied, bool) {
	order, ok := c.store.OrderByID(orderID)
	if !ok {
		return Applied{}, false
	}

	switch target.Kind {
	case domain.TargetCell:
		// A bare cell drop is always a loose placement, even when the cell
		// already holds runs. The inbound row takes nothing.
		probe := domain.Cell{Key: target.Cell}
		if !probe.AcceptsLooseOrders() {
			return Applied{}, false
		}
		if key, ok := c.store.LooseOrderCell(orderID); ok && key == target.Cell {
			return Applied{}, false
		}
		c.store.MoveOrderLoose(orderID, target.Cell)
		return Applied{Op: OpMoveOrderLoose, OrderID: orderID, Cell: target.Cell}, true

	case domain.TargetRun:
		// Dropping on the run body appends to the end of the manifest.
		if order.Type == domain.OrderTypePurchase {
			return Applied{}, false
		}
		targetCell, ok := c.store.RunCell(target.RunID)
		if !ok {
			return Applied{}, false
		}
		if current, ok := c.store.OrderRun(orderID); ok && current == target.RunID {
			run, _ := c.store.RunByID(target.RunID)
			from := indexOf(run.OrderIDs, orderID)
			if from < 0 || from == len(run.OrderIDs)-1 {
				return Applied{}, false
			}
			c.store.ReorderInRun(target.RunID, from, len(run.OrderIDs)-1)
			return Applied{Op: OpReorderOrders, OrderID: orderID, RunID: target.RunID, Cell: targetCell}, true
		}
		c.store.MoveOrder(orderID, target.RunID, -1)
		return Applied{Op: OpMoveOrder, OrderID: orderID, RunID: target.RunID, Cell: targetCell}, true

	case domain.TargetOrder:
		if target.OrderID == orderID {
			return Applied{}, false
		}
		if runID, ok := c.store.OrderRun(target.OrderID); ok {
			run, _ := c.store.RunByID(runID)
			at := indexOf(run.OrderIDs, target.OrderID)
			cell, _ := c.store.RunCell(runID)
			if current, ok := c.store.OrderRun(orderID); ok && current == runID {
				// Same run: a drop on a member reorders to its position.
				from := indexOf(run.OrderIDs, orderID)
				if from < 0 || at < 0 || from == at {
					return Applied{}, false
				}
				c.store.ReorderInRun(runID, from, at)
				return Applied{Op: OpReorderOrders, OrderID: orderID, RunID: runID, Cell: cell}, true
			}
			// Different run: move and insert at the member's position.
			if order.Type == domain.OrderTypePurchase {
				return Applied{}, false
			}
			c.store.MoveOrder(orderID, runID, at)
			return Applied{Op: OpMoveOrder, OrderID: orderID, RunID: runID, Cell: cell}, true
		}
		// Target order sits loose; the drop lands loose in its cell.
		key, ok := c.store.LooseOrderCell(target.OrderID)
		if !ok {
			return Applied{}, false
		}
		if current, ok := c.store.LooseOrderCell(orderID); ok && current == key {
			return Applied{}, false
		}
		c.store.MoveOrderLoose(orderID, key)
		return Applied{Op: OpMoveOrderLoose, OrderID: orderID, Cell: key}, true
	}
	return Applied{}, false
}

func (c *Coordinator) dropRun(runID string, target domain.DropTarget) (Applied, bool) {
	source, ok := c.store.RunCell(runID)
	if !ok {
		return Applied{}, false
	}

	moveTo := func(key domain.CellKey) (Applied, bool) {
		probe := domain.Cell{Key: key}
		if !probe.AcceptsRuns() || key == source {
			return Applied{}, false
		}
		c.store.MoveRun(runID, key)
		return Applied{Op: OpMoveRun, RunID: runID, Cell: key}, true
	}

	switch target.Kind {
	case domain.TargetCell:
		return moveTo(target.Cell)

	case domain.TargetRun:
		if target.RunID == runID {
			return Applied{}, false
		}
		targetCell, ok := c.store.RunCell(target.RunID)
		if !ok {
			return Applied{}, false
		}
		if targetCell == source {
			ids := c.store.CellRunIDs(source)
			from := indexOf(ids, runID)
			to := indexOf(ids, target.RunID)
			if from < 0 || to < 0 || from == to {
				return Applied{}, false
			}
			c.store.ReorderRunsInCell(source, from, to)
			return Applied{Op: OpReorderRuns, RunID: runID, Cell: source}, true
		}
		return moveTo(targetCell)

	case domain.TargetOrder:
		// A run dropped on an order resolves through the order's placement.
		if owner, ok := c.store.OrderRun(target.OrderID); ok {
			sub := domain.DropTarget{Kind: domain.TargetRun, RunID: owner}
			return c.dropRun(runID, sub)
		}
		if key, ok := c.store.LooseOrderCell(target.OrderID); ok {
			return moveTo(key)
		}
		return Applied{}, false
	}
	return Applied{}, false
}

func indexOf(ids []string, id string) int {
	for i, v := range ids {
		if v == id {
			return i
		}
	}
	return -1
}
