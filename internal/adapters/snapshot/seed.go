package snapshot

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"time"

	"delivery-board-service/internal/domain"
	"delivery-board-service/internal/ports"
)

// SeedFromJSON loads a board snapshot from a JSON file into the local
// store, for development environments with no reachable calendar API.
func SeedFromJSON(ctx context.Context, store ports.SnapshotStore, jsonPath string) error {
	raw, err := os.ReadFile(jsonPath)
	if err != nil {
		return fmt.Errorf("seed board: read %q: %w", jsonPath, err)
	}

	var snap domain.BoardSnapshot
	if err := json.Unmarshal(raw, &snap); err != nil {
		return fmt.Errorf("seed board: parse json: %w", err)
	}

	for _, o := range snap.Orders {
		if o.ID == "" {
			return fmt.Errorf("seed board: order with empty id")
		}
		if o.PalletCount < 0 {
			return fmt.Errorf("seed board: order %s: negative pallet count", o.ID)
		}
	}
	for _, r := range snap.Runs {
		if r.ID == "" {
			return fmt.Errorf("seed board: run with empty id")
		}
	}

	if snap.FetchedAt.IsZero() {
		snap.FetchedAt = time.Now()
	}

	if err := store.Save(ctx, snap); err != nil {
		return fmt.Errorf("seed board: %w", err)
	}

	return nil
}
