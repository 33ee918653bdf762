package syncer

import (
	"context"
	"log"
	"time"

	"delivery-board-service/internal/domain"
	"delivery-board-service/internal/drag"
	"delivery-board-service/internal/ports"
)

// Persistence entry points. Each fires the backend call on its own
// goroutine and returns immediately: mutations are already applied
// locally, so the user never waits on the network. A failed call is not
// retried here (the HTTP client absorbs transient faults); it triggers
// one forced refetch, which discards the rejected optimistic state.

const persistTimeout = 20 * time.Second

// PersistDrop persists the mutation a completed drop produced.
func (a *Adapter) PersistDrop(applied drag.Applied) {
	switch applied.Op {
	case drag.OpMoveOrder, drag.OpMoveOrderLoose, drag.OpReorderOrders:
		update, ok := a.scheduleUpdateFor(applied)
		if !ok {
			return
		}
		a.fireAndForget("update schedule", func(ctx context.Context) error {
			return a.writer.UpdateSchedule(ctx, update)
		})
	case drag.OpMoveRun, drag.OpReorderRuns:
		fields, ok := a.runFieldsFor(applied.RunID)
		if !ok {
			return
		}
		a.fireAndForget("update run", func(ctx context.Context) error {
			return a.writer.UpdateRun(ctx, fields)
		})
	}
}

// PersistRunCreate persists a run created on the board.
func (a *Adapter) PersistRunCreate(runID string) {
	fields, ok := a.runFieldsFor(runID)
	if !ok {
		return
	}
	a.fireAndForget("create run", func(ctx context.Context) error {
		return a.writer.CreateRun(ctx, fields)
	})
}

// PersistRunDelete removes a run upstream, then refetches so the deletion
// lands locally; the store never destroys entities outside a replacement.
func (a *Adapter) PersistRunDelete(runID string) {
	a.fireAndForget("delete run", func(ctx context.Context) error {
		if err := a.writer.DeleteRun(ctx, runID); err != nil {
			return err
		}
		return a.ForceRefresh(ctx)
	})
}

// PersistRunNotes persists a run annotation change.
func (a *Adapter) PersistRunNotes(runID string) {
	fields, ok := a.runFieldsFor(runID)
	if !ok {
		return
	}
	a.fireAndForget("update run notes", func(ctx context.Context) error {
		return a.writer.UpdateRun(ctx, fields)
	})
}

// PersistOrderNotes persists an order annotation change.
func (a *Adapter) PersistOrderNotes(orderID string) {
	order, ok := a.store.OrderByID(orderID)
	if !ok {
		return
	}
	a.fireAndForget("update order notes", func(ctx context.Context) error {
		return a.writer.UpdateOrderNotes(ctx, order.Type, order.ID, order.Notes)
	})
}

// PersistDateLock persists an advisory date lock toggle.
func (a *Adapter) PersistDateLock(date string) {
	a.fireAndForget("toggle date lock", func(ctx context.Context) error {
		return a.writer.ToggleDateLock(ctx, date)
	})
}

// scheduleUpdateFor reads the order's placement after the mutation and
// builds the wire payload. Orders in the synthetic unassigned row carry a
// date but a null truck.
func (a *Adapter) scheduleUpdateFor(applied drag.Applied) (ports.ScheduleUpdate, bool) {
	order, ok := a.store.OrderByID(applied.OrderID)
	if !ok {
		return ports.ScheduleUpdate{}, false
	}

	update := ports.ScheduleUpdate{
		OrderID:   order.ID,
		OrderType: order.Type,
	}

	cell := applied.Cell
	if cell.IsZero() {
		return update, true
	}
	update.Date = &cell.Date
	if cell.TruckID != domain.TruckRowUnassigned && cell.TruckID != domain.TruckRowInbound {
		truckID := cell.TruckID
		update.TruckID = &truckID
	}
	if applied.RunID != "" {
		runID := applied.RunID
		update.RunID = &runID
	}
	return update, true
}

func (a *Adapter) runFieldsFor(runID string) (ports.RunFields, bool) {
	run, ok := a.store.RunByID(runID)
	if !ok {
		return ports.RunFields{}, false
	}
	fields := ports.RunFields{
		RunID: run.ID,
		Name:  run.Name,
		Notes: run.Notes,
	}
	if key, ok := a.store.RunCell(run.ID); ok {
		fields.TruckID = key.TruckID
		fields.Date = key.Date
	}
	return fields, true
}

func (a *Adapter) fireAndForget(op string, call func(ctx context.Context) error) {
	a.wg.Add(1)
	go func() {
		defer a.wg.Done()

		ctx, cancel := context.WithTimeout(context.Background(), persistTimeout)
		defer cancel()

		if err := call(ctx); err != nil {
			log.Printf("persist failed op=%q err=%v", op, err)
			a.notify("Saving your change failed; the board was reloaded.")
			if err := a.ForceRefresh(ctx); err != nil {
				log.Printf("rollback refresh failed op=%q err=%v", op, err)
			}
		}
	}()
}
