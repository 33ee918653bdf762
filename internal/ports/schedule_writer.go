package ports

import (
	"context"

	"delivery-board-service/internal/domain"
)

// ScheduleUpdate carries one order's new placement to the backend. Nil
// fields mean "unscheduled" (the order left the board).
type ScheduleUpdate struct {
	OrderID   string
	OrderType domain.OrderType
	Date      *string
	TruckID   *string
	RunID     *string
}

// RunFields carries run attributes for create and update calls.
type RunFields struct {
	RunID   string
	Name    string
	TruckID string
	Date    string
	Notes   string
}

// Port: the write side of the upstream calendar API. Calls persist an
// already-applied optimistic mutation; the caller rolls back by refetching
// when a call fails.
type ScheduleWriter interface {
	UpdateSchedule(ctx context.Context, update ScheduleUpdate) error
	CreateRun(ctx context.Context, fields RunFields) error
	UpdateRun(ctx context.Context, fields RunFields) error
	DeleteRun(ctx context.Context, runID string) error
	UpdateOrderNotes(ctx context.Context, orderType domain.OrderType, orderID, notes string) error
	ToggleDateLock(ctx context.Context, date string) error
}
