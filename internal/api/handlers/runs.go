package handlers

import (
	"encoding/json"
	"io"
	"net/http"

	"delivery-board-service/internal/api/dto"
	"delivery-board-service/internal/board"
	"delivery-board-service/internal/domain"
	"delivery-board-service/internal/syncer"
)

// RunHandler covers run lifecycle: create in a cell, annotate, delete.
type RunHandler struct {
	Store *board.Store
	Sync  *syncer.Adapter
}

func (h *RunHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req dto.CreateRunRequest

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

	key, err := domain.ParseCellKey(req.Cell)
	if err != nil {
		writeError(w, r, http.StatusBadRequest, "malformed cell key")
		return
	}
	probe := domain.Cell{Key: key}
	if !probe.AcceptsRuns() {
		// The engine would no-op anyway; reject loudly so misuse is visible.
		writeError(w, r, http.StatusUnprocessableEntity, "cell does not accept runs")
		return
	}

	runID := h.Store.CreateRun(key)
	if runID == "" {
		writeError(w, r, http.StatusUnprocessableEntity, "cell does not accept runs")
		return
	}
	h.Sync.PersistRunCreate(runID)

	writeJSON(w, r, http.StatusCreated, dto.CreateRunResponse{RunID: runID})
}

func (h *RunHandler) UpdateNotes(w http.ResponseWriter, r *http.Request) {
	runID := r.PathValue("id")
	if _, ok := h.Store.RunByID(runID); !ok {
		writeError(w, r, http.StatusNotFound, "unknown run")
		return
	}

	notes, ok := decodeNotes(w, r)
	if !ok {
		return
	}

	h.Store.UpdateRunNotes(runID, notes)
	h.Sync.PersistRunNotes(runID)
	writeJSON(w, r, http.StatusOK, map[string]string{"run_id": runID})
}

// Delete removes the run upstream. Local state keeps the run until the
// forced refetch confirms the deletion; single mutations never destroy
// entities in the store.
func (h *RunHandler) Delete(w http.ResponseWriter, r *http.Request) {
	runID := r.PathValue("id")
	if _, ok := h.Store.RunByID(runID); !ok {
		writeError(w, r, http.StatusNotFound, "unknown run")
		return
	}

	h.Sync.PersistRunDelete(runID)
	writeJSON(w, r, http.StatusAccepted, map[string]string{"run_id": runID})
}

func decodeNotes(w http.ResponseWriter, r *http.Request) (string, bool) {
	var req dto.NotesRequest

	dec := json.NewDecoder(r.Body)
	defer r.Body.Close()
	dec.DisallowUnknownFields()

	if err := dec.Decode(&req); err != nil {
		writeError(w, r, http.StatusBadRequest, "invalid json body")
		return "", false
	}
	if err := dec.Decode(&struct{}{}); err != io.EOF {
		writeError(w, r, http.StatusBadRequest, "body must contain only one JSON object")
		return "", false
	}
	return req.Notes, true
}
