package handlers

import (
	"fmt"
	"net/http"
	"time"

	"delivery-board-service/internal/api/dto"
	"delivery-board-service/internal/board"
	"delivery-board-service/internal/domain"
	"delivery-board-service/internal/syncer"
)

// BoardHandler serves the assembled board view. All reads go through the
// store's selectors; the handler owns only grid assembly.
type BoardHandler struct {
	Store *board.Store
}

func (h *BoardHandler) View(w http.ResponseWriter, r *http.Request) {
	start := r.URL.Query().Get("start_date")
	end := r.URL.Query().Get("end_date")
	if start == "" || end == "" {
		start, end = syncer.WeekWindow(time.Now())
	}

	dates, err := datesBetween(start, end)
	if err != nil {
		writeError(w, r, http.StatusBadRequest, "invalid date range")
		return
	}

	res := dto.BoardResponse{
		StartDate:   start,
		EndDate:     end,
		Dates:       dates,
		Trucks:      []dto.TruckResponse{},
		Cells:       []dto.CellResponse{},
		Unscheduled: []dto.OrderResponse{},
	}

	// Synthetic rows frame the real trucks: inbound on top, unassigned at
	// the bottom.
	rows := []string{domain.TruckRowInbound}
	for _, t := range h.Store.Trucks() {
		res.Trucks = append(res.Trucks, dto.TruckResponse{ID: t.ID, Name: t.Name, Position: t.Position})
		rows = append(rows, t.ID)
	}
	rows = append(rows, domain.TruckRowUnassigned)

	for _, truckID := range rows {
		for _, date := range dates {
			key := domain.CellKey{TruckID: truckID, Date: date}
			cell := dto.CellResponse{
				Key:     key.String(),
				TruckID: truckID,
				Date:    date,
				Locked:  h.Store.IsDateLocked(date),
				Runs:    []dto.RunResponse{},
				Loose:   []dto.OrderResponse{},
			}
			for _, run := range h.Store.RunsInCell(key) {
				rr := dto.RunResponse{
					ID:     run.ID,
					Name:   run.Name,
					Notes:  run.Notes,
					Orders: []dto.OrderResponse{},
				}
				for _, orderID := range run.OrderIDs {
					if o, ok := h.Store.OrderByID(orderID); ok {
						rr.Orders = append(rr.Orders, orderResponse(o))
					}
				}
				cell.Runs = append(cell.Runs, rr)
			}
			for _, o := range h.Store.LooseOrders(key) {
				cell.Loose = append(cell.Loose, orderResponse(o))
			}
			res.Cells = append(res.Cells, cell)
		}
	}

	for _, o := range h.Store.UnscheduledOrders() {
		res.Unscheduled = append(res.Unscheduled, orderResponse(o))
	}

	writeJSON(w, r, http.StatusOK, res)
}

func orderResponse(o domain.Order) dto.OrderResponse {
	return dto.OrderResponse{
		ID:           o.ID,
		Type:         string(o.Type),
		OrderNumber:  o.OrderNumber,
		CustomerCode: o.CustomerCode,
		PalletCount:  o.PalletCount,
		Status:       string(o.Status),
		Notes:        o.Notes,
		ReadOnly:     o.ReadOnly,
	}
}

// maxRangeDays bounds the board view to roughly two months; anything
// wider is a malformed request, not a rendering need.
const maxRangeDays = 62

func datesBetween(start, end string) ([]string, error) {
	const layout = "2006-01-02"
	from, err := time.Parse(layout, start)
	if err != nil {
		return nil, err
	}
	to, err := time.Parse(layout, end)
	if err != nil {
		return nil, err
	}
	if days := int(to.Sub(from).Hours()/24) + 1; days > maxRangeDays {
		return nil, fmt.Errorf("range spans %d days, limit %d", days, maxRangeDays)
	}

	dates := []string{}
	for d := from; !d.After(to); d = d.AddDate(0, 0, 1) {
		dates = append(dates, d.Format(layout))
	}
	return dates, nil
}
