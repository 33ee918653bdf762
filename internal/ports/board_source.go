package ports

import (
	"context"

	"delivery-board-service/internal/domain"
)

// Port: the read side of the upstream calendar API.
type BoardSource interface {
	// Fetch the full board population for a date window.
	FetchRange(ctx context.Context, startDate, endDate string) (domain.BoardSnapshot, error)
	// Fetch loose orders that have no scheduled date yet.
	FetchUnscheduled(ctx context.Context) ([]domain.Order, error)
}
