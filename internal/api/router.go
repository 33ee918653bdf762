package api

import (
	"net/http"

	"delivery-board-service/internal/api/handlers"
	"delivery-board-service/internal/board"
	"delivery-board-service/internal/drag"
	"delivery-board-service/internal/syncer"
)

// NewRouter wires HTTP handlers with their dependencies and returns an
// http.Handler. This is the API composition root; handlers see only the
// store's selector/mutation surface, the drag coordinator, and the sync
// adapter.
func NewRouter(
	store *board.Store,
	drags *drag.Coordinator,
	sync *syncer.Adapter,
	notices *handlers.Notices,
) http.Handler {
	mux := http.NewServeMux()

	boardHandler := &handlers.BoardHandler{Store: store}
	dragHandler := &handlers.DragHandler{Drags: drags, Sync: sync}
	runHandler := &handlers.RunHandler{Store: store, Sync: sync}
	orderHandler := &handlers.OrderHandler{Store: store, Sync: sync}
	lockHandler := &handlers.LockHandler{Store: store, Sync: sync}

	mux.HandleFunc("GET /health", handlers.Health)
	mux.HandleFunc("GET /board", boardHandler.View)
	mux.HandleFunc("POST /board/drag", dragHandler.Drop)
	mux.HandleFunc("POST /board/runs", runHandler.Create)
	mux.HandleFunc("DELETE /board/runs/{id}", runHandler.Delete)
	mux.HandleFunc("POST /board/runs/{id}/notes", runHandler.UpdateNotes)
	mux.HandleFunc("POST /board/orders/{id}/notes", orderHandler.UpdateNotes)
	mux.HandleFunc("POST /board/locks/{date}/toggle", lockHandler.Toggle)
	mux.HandleFunc("GET /board/notices", notices.List)

	return loggingMiddleware(mux)
}
