package handlers

import (
	"net/http"

	"delivery-board-service/internal/api/dto"
	"delivery-board-service/internal/board"
	"delivery-board-service/internal/syncer"
)

// LockHandler toggles the advisory per-date scheduling lock.
type LockHandler struct {
	Store *board.Store
	Sync  *syncer.Adapter
}

func (h *LockHandler) Toggle(w http.ResponseWriter, r *http.Request) {
	date := r.PathValue("date")
	if date == "" {
		writeError(w, r, http.StatusBadRequest, "date is required")
		return
	}

	h.Store.ToggleDateLock(date)
	h.Sync.PersistDateLock(date)

	writeJSON(w, r, http.StatusOK, dto.LockResponse{
		Date:   date,
		Locked: h.Store.IsDateLocked(date),
	})
}
