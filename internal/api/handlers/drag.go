package handlers

import (
	"encoding/json"
	"io"
	"net/http"

	"delivery-board-service/internal/api/dto"
	"delivery-board-service/internal/domain"
	"delivery-board-service/internal/drag"
	"delivery-board-service/internal/syncer"
)

// DragHandler runs one complete gesture: pick up, classify the drop, apply
// the mutation, and hand the result to the sync layer for persistence.
type DragHandler struct {
	Drags *drag.Coordinator
	Sync  *syncer.Adapter
}

func (h *DragHandler) Drop(w http.ResponseWriter, r *http.Request) {
	var req dto.DragRequest

	dec := json.NewDecoder(r.Body)
	defer r.Body.Close()
	dec.DisallowUnknownFields()

	if err := dec.Decode(&req); err != nil {
		writeError(w, r, http.StatusBadRequest, "invalid json body")
		return
	}
	if err := dec.Decode(&struct{}{}); err != io.EOF {
		writeError(w, r, http.StatusBadRequest, "body must contain only one JSON object")
		return
	}

	var started bool
	switch drag.DragKind(req.SourceKind) {
	case drag.DragOrder:
		started = h.Drags.StartOrderDrag(req.SourceID)
	case drag.DragRun:
		started = h.Drags.StartRunDrag(req.SourceID)
	default:
		writeError(w, r, http.StatusBadRequest, "source_kind must be order or run")
		return
	}
	if !started {
		// Unknown sources and read-only orders never begin a gesture.
		writeJSON(w, r, http.StatusOK, dto.DragResponse{Applied: false})
		return
	}

	var target *domain.DropTarget
	if req.Target != nil {
		parsed, err := domain.ParseDropTarget(*req.Target)
		if err != nil {
			// The gesture still ends; a refresh deferred behind it must not
			// stay parked until the next drop.
			h.Drags.Cancel()
			h.Sync.FlushPending()
			writeError(w, r, http.StatusBadRequest, "malformed drop target")
			return
		}
		target = &parsed
	}

	applied, ok := h.Drags.Drop(target)
	if ok {
		h.Sync.PersistDrop(applied)
	}
	// A refresh that landed mid-gesture was held back; settle it now.
	h.Sync.FlushPending()

	res := dto.DragResponse{Applied: ok}
	if ok {
		res.Op = string(applied.Op)
	}
	writeJSON(w, r, http.StatusOK, res)
}
