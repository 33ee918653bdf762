package calendarapi

import (
	"context"
	"sync"

	"delivery-board-service/internal/domain"
	"delivery-board-service/internal/ports"
)

// MockBackend is an in-memory stand-in for the calendar API used by tests.
// It serves a fixed snapshot, records every write call, and can be told to
// fail writes to exercise the rollback path.
type MockBackend struct {
	mu sync.Mutex

	Snapshot    domain.BoardSnapshot
	Unscheduled []domain.Order

	FetchErr error
	WriteErr error

	RangeCalls  int
	Updates     []ports.ScheduleUpdate
	CreatedRuns []ports.RunFields
	UpdatedRuns []ports.RunFields
	DeletedRuns []string
	NoteUpdates []string
	LockToggles []string
}

func NewMockBackend(snap domain.BoardSnapshot) *MockBackend {
	return &MockBackend{Snapshot: snap}
}

func (m *MockBackend) FetchRange(ctx context.Context, startDate, endDate string) (domain.BoardSnapshot, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.RangeCalls++
	if m.FetchErr != nil {
		return domain.BoardSnapshot{}, m.FetchErr
	}
	snap := m.Snapshot
	snap.StartDate = startDate
	snap.EndDate = endDate
	return snap, nil
}

func (m *MockBackend) FetchUnscheduled(ctx context.Context) ([]domain.Order, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.FetchErr != nil {
		return nil, m.FetchErr
	}
	return append([]domain.Order(nil), m.Unscheduled...), nil
}

func (m *MockBackend) UpdateSchedule(ctx context.Context, update ports.ScheduleUpdate) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.WriteErr != nil {
		return m.WriteErr
	}
	m.Updates = append(m.Updates, update)
	return nil
}

func (m *MockBackend) CreateRun(ctx context.Context, fields ports.RunFields) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.WriteErr != nil {
		return m.WriteErr
	}
	m.CreatedRuns = append(m.CreatedRuns, fields)
	return nil
}

func (m *MockBackend) UpdateRun(ctx context.Context, fields ports.RunFields) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.WriteErr != nil {
		return m.WriteErr
	}
	m.UpdatedRuns = append(m.UpdatedRuns, fields)
	return nil
}

func (m *MockBackend) DeleteRun(ctx context.Context, runID string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.WriteErr != nil {
		return m.WriteErr
	}
	m.DeletedRuns = append(m.DeletedRuns, runID)
	return nil
}

func (m *MockBackend) UpdateOrderNotes(ctx context.Context, orderType domain.OrderType, orderID, notes string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.WriteErr != nil {
		return m.WriteErr
	}
	m.NoteUpdates = append(m.NoteUpdates, orderID)
	return nil
}

func (m *MockBackend) ToggleDateLock(ctx context.Context, date string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.WriteErr != nil {
		return m.WriteErr
	}
	m.LockToggles = append(m.LockToggles, date)
	return nil
}

// SetWriteErr toggles write failure injection.
func (m *MockBackend) SetWriteErr(err error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.WriteErr = err
}
