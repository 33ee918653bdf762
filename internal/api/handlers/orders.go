package handlers

import (
	"net/http"

	"delivery-board-service/internal/board"
	"delivery-board-service/internal/syncer"
)

// OrderHandler covers order annotations. Placement changes go through the
// drag endpoint; nothing else on an order is editable from the board.
type OrderHandler struct {
	Store *board.Store
	Sync  *syncer.Adapter
}

func (h *OrderHandler) UpdateNotes(w http.ResponseWriter, r *http.Request) {
	orderID := r.PathValue("id")
	if _, ok := h.Store.OrderByID(orderID); !ok {
		writeError(w, r, http.StatusNotFound, "unknown order")
		return
	}

	notes, ok := decodeNotes(w, r)
	if !ok {
		return
	}

	h.Store.UpdateOrderNotes(orderID, notes)
	h.Sync.PersistOrderNotes(orderID)
	writeJSON(w, r, http.StatusOK, map[string]string{"order_id": orderID})
}
