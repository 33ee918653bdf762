package handlers

import (
	"net/http"
	"sync"

	"delivery-board-service/internal/api/dto"
)

// Notices buffers transient user-facing messages (rejected mutations that
// were rolled back) until the rendering layer collects them.
type Notices struct {
	mu   sync.Mutex
	msgs []string
}

// Add appends a message; only a bounded tail is kept.
func (n *Notices) Add(msg string) {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.msgs = append(n.msgs, msg)
	if len(n.msgs) > 20 {
		n.msgs = n.msgs[len(n.msgs)-20:]
	}
}

// Drain returns and clears the buffered messages.
func (n *Notices) Drain() []string {
	n.mu.Lock()
	defer n.mu.Unlock()
	out := n.msgs
	n.msgs = nil
	return out
}

// List serves and clears pending notices.
func (n *Notices) List(w http.ResponseWriter, r *http.Request) {
	msgs := n.Drain()
	if msgs == nil {
		msgs = []string{}
	}
	writeJSON(w, r, http.StatusOK, dto.NoticesResponse{Notices: msgs})
}
