package calendarapi

import (
	"delivery-board-service/internal/domain"
)

// Wire shapes for the calendar API. Scheduled orders arrive flat, each
// carrying its own placement; the adapter folds them into cells so the
// board model never sees placement as order fields.

type orderWire struct {
	ID               string  `json:"id"`
	Type             string  `json:"type"`
	OrderNumber      string  `json:"order_number"`
	CustomerCode     string  `json:"customer_code"`
	PalletCount      int     `json:"pallet_count"`
	Status           string  `json:"status"`
	Notes            string  `json:"notes"`
	ReadOnly         bool    `json:"read_only"`
	ScheduledDate    *string `json:"scheduled_date"`
	ScheduledTruckID *string `json:"scheduled_truck_id"`
	DeliveryRunID    *string `json:"delivery_run_id"`
}

func (w orderWire) toDomain() domain.Order {
	return domain.Order{
		ID:           w.ID,
		Type:         domain.OrderType(w.Type),
		OrderNumber:  w.OrderNumber,
		CustomerCode: w.CustomerCode,
		PalletCount:  w.PalletCount,
		Status:       domain.OrderStatus(w.Status),
		Notes:        w.Notes,
		ReadOnly:     w.ReadOnly,
	}
}

type runWire struct {
	ID       string   `json:"id"`
	Name     string   `json:"name"`
	TruckID  string   `json:"truck_id"`
	Date     string   `json:"date"`
	Notes    string   `json:"notes"`
	OrderIDs []string `json:"order_ids"`
}

type truckWire struct {
	ID       string `json:"id"`
	Name     string `json:"name"`
	Position int    `json:"position"`
}

type rangeResponse struct {
	Trucks      []truckWire `json:"trucks"`
	Runs        []runWire   `json:"runs"`
	Orders      []orderWire `json:"orders"`
	LockedDates []string    `json:"locked_dates"`
}

type unscheduledResponse struct {
	Orders []orderWire `json:"orders"`
}

type scheduleUpdateRequest struct {
	ScheduledDate    *string `json:"scheduled_date"`
	ScheduledTruckID *string `json:"scheduled_truck_id"`
	DeliveryRunID    *string `json:"delivery_run_id"`
}

type runRequest struct {
	ID      string `json:"id,omitempty"`
	Name    string `json:"name"`
	TruckID string `json:"truck_id"`
	Date    string `json:"date"`
	Notes   string `json:"notes"`
}

// assembleSnapshot normalizes the flat range payload: runs land in their
// truck/date cell, orders scheduled outside a run land loose, and orders
// with a date but no truck fall to the synthetic unassigned row.
func assembleSnapshot(body rangeResponse) domain.BoardSnapshot {
	snap := domain.BoardSnapshot{
		RunCells: make(map[string]domain.CellKey, len(body.Runs)),
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

	for _, t := range body.Trucks {
		snap.Trucks = append(snap.Trucks, domain.Truck{ID: t.ID, Name: t.Name, Position: t.Position})
	}

	inRun := make(map[string]struct{})
	for _, r := range body.Runs {
		run := domain.Run{
			ID:       r.ID,
			Name:     r.Name,
			OrderIDs: append([]string(nil), r.OrderIDs...),
			Notes:    r.Notes,
		}
		snap.Runs = append(snap.Runs, run)

		if r.TruckID != "" && r.Date != "" {
			key := domain.CellKey{TruckID: r.TruckID, Date: r.Date}
			snap.RunCells[r.ID] = key
			c := cell(key)
			c.RunIDs = append(c.RunIDs, r.ID)
		}
		for _, orderID := range r.OrderIDs {
			inRun[orderID] = struct{}{}
		}
	}

	for _, w := range body.Orders {
		snap.Orders = append(snap.Orders, w.toDomain())

		if _, ok := inRun[w.ID]; ok {
			continue
		}
		if w.ScheduledDate == nil {
			continue
		}
		truckID := domain.TruckRowUnassigned
		if w.ScheduledTruckID != nil && *w.ScheduledTruckID != "" {
			truckID = *w.ScheduledTruckID
		}
		c := cell(domain.CellKey{TruckID: truckID, Date: *w.ScheduledDate})
		c.LooseOrderIDs = append(c.LooseOrderIDs, w.ID)
	}

	for _, c := range cells {
		snap.Cells = append(snap.Cells, *c)
	}
	snap.DateLocks = append([]string(nil), body.LockedDates...)
	return snap
}
