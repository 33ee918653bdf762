package ports

import (
	"context"

	"delivery-board-service/internal/domain"
)

// Port: local persistence of the last good board snapshot, so the board
// renders after a restart or while the upstream API is unreachable.
type SnapshotStore interface {
	// Save replaces the stored snapshot.
	Save(ctx context.Context, snap domain.BoardSnapshot) error
	// Load returns the stored snapshot; ok is false when none exists.
	Load(ctx context.Context) (snap domain.BoardSnapshot, ok bool, err error)
}
