package api

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"delivery-board-service/internal/adapters/calendarapi"
	"delivery-board-service/internal/api/dto"
	"delivery-board-service/internal/api/handlers"
	"delivery-board-service/internal/board"
	"delivery-board-service/internal/domain"
	"delivery-board-service/internal/drag"
	"delivery-board-service/internal/syncer"
)

type testStack struct {
	store   *board.Store
	backend *calendarapi.MockBackend
	drags   *drag.Coordinator
	sync    *syncer.Adapter
	notices *handlers.Notices
	server  *httptest.Server
}

func newTestStack(t *testing.T) *testStack {
	t.Helper()

	store := board.NewStore()
	store.Replace(domain.BoardSnapshot{
		Orders: []domain.Order{
			{ID: "o1", Type: domain.OrderTypeSales, OrderNumber: "SO-1"},
			{ID: "o2", Type: domain.OrderTypeSales, OrderNumber: "SO-2"},
			{ID: "u1", Type: domain.OrderTypeSales, OrderNumber: "SO-90"},
		},
		Runs: []domain.Run{
			{ID: "r1", Name: "Run 1", OrderIDs: []string{"o1"}},
		},
		Cells: []domain.Cell{
			{
				Key:           domain.CellKey{TruckID: "truck1", Date: "2025-01-20"},
				RunIDs:        []string{"r1"},
				LooseOrderIDs: []string{"o2"},
			},
		},
		RunCells: map[string]domain.CellKey{
			"r1": {TruckID: "truck1", Date: "2025-01-20"},
		},
		Trucks:    []domain.Truck{{ID: "truck1", Name: "Truck 1", Position: 1}},
		DateLocks: []string{"2025-01-24"},
	})

	backend := calendarapi.NewMockBackend(store.Snapshot())
	drags := drag.NewCoordinator(store)
	notices := &handlers.Notices{}
	adapter := syncer.New(syncer.Config{
		Store:  store,
		Drags:  drags,
		Source: backend,
		Writer: backend,
		Notify: notices.Add,
	})

	srv := httptest.NewServer(NewRouter(store, drags, adapter, notices))
	t.Cleanup(srv.Close)

	return &testStack{store: store, backend: backend, drags: drags, sync: adapter, notices: notices, server: srv}
}

func (s *testStack) postJSON(t *testing.T, path string, body any) *http.Response {
	t.Helper()
	raw, err := json.Marshal(body)
	if err != nil {
		t.Fatal(err)
	}
	resp, err := http.Post(s.server.URL+path, "application/json", bytes.NewReader(raw))
	if err != nil {
		t.Fatal(err)
	}
	return resp
}

func decodeInto(t *testing.T, resp *http.Response, out any) {
	t.Helper()
	defer resp.Body.Close()
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		t.Fatalf("decode response: %v", err)
	}
}

func TestHealth(t *testing.T) {
	s := newTestStack(t)

	resp, err := http.Get(s.server.URL + "/health")
	if err != nil {
		t.Fatal(err)
	}
	resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("status = %d", resp.StatusCode)
	}
}

func TestBoardViewAssemblesGrid(t *testing.T) {
	s := newTestStack(t)

	resp, err := http.Get(s.server.URL + "/board?start_date=2025-01-20&end_date=2025-01-26")
	if err != nil {
		t.Fatal(err)
	}
	var view dto.BoardResponse
	decodeInto(t, resp, &view)

	if len(view.Dates) != 7 {
		t.Fatalf("dates = %d, want 7", len(view.Dates))
	}
	// One real truck framed by the two synthetic rows, one cell per date.
	if len(view.Cells) != 3*7 {
		t.Fatalf("cells = %d, want 21", len(view.Cells))
	}

	byKey := map[string]dto.CellResponse{}
	for _, c := range view.Cells {
		byKey[c.Key] = c
	}

	cell := byKey["truck1|2025-01-20"]
	if len(cell.Runs) != 1 || cell.Runs[0].ID != "r1" {
		t.Fatalf("cell runs = %+v", cell.Runs)
	}
	if len(cell.Runs[0].Orders) != 1 || cell.Runs[0].Orders[0].ID != "o1" {
		t.Fatalf("run orders = %+v", cell.Runs[0].Orders)
	}
	if len(cell.Loose) != 1 || cell.Loose[0].ID != "o2" {
		t.Fatalf("cell loose = %+v", cell.Loose)
	}

	if !byKey["truck1|2025-01-24"].Locked {
		t.Fatal("locked date not flagged")
	}
	if byKey["truck1|2025-01-21"].Locked {
		t.Fatal("unlocked date flagged")
	}

	if len(view.Unscheduled) != 1 || view.Unscheduled[0].ID != "u1" {
		t.Fatalf("unscheduled = %+v", view.Unscheduled)
	}
}

func TestBoardViewRejectsOversizedRange(t *testing.T) {
	s := newTestStack(t)

	resp, err := http.Get(s.server.URL + "/board?start_date=2025-01-01&end_date=2025-06-30")
	if err != nil {
		t.Fatal(err)
	}
	resp.Body.Close()
	if resp.StatusCode != http.StatusBadRequest {
		t.Fatalf("status = %d, want 400", resp.StatusCode)
	}

	// Exactly the cap still renders.
	resp, err = http.Get(s.server.URL + "/board?start_date=2025-01-01&end_date=2025-03-03")
	if err != nil {
		t.Fatal(err)
	}
	var view dto.BoardResponse
	decodeInto(t, resp, &view)
	if len(view.Dates) != 62 {
		t.Fatalf("dates = %d, want 62", len(view.Dates))
	}
}

func TestDragEndpointAppliesAndPersists(t *testing.T) {
	s := newTestStack(t)

	target := "run:r1"
	resp := s.postJSON(t, "/board/drag", dto.DragRequest{
		SourceKind: "order",
		SourceID:   "o2",
		Target:     &target,
	})
	var res dto.DragResponse
	decodeInto(t, resp, &res)

	if !res.Applied || res.Op != "move_order" {
		t.Fatalf("response = %+v", res)
	}
	if runID, ok := s.store.OrderRun("o2"); !ok || runID != "r1" {
		t.Fatalf("orderToRun[o2] = %q", runID)
	}

	s.sync.Wait()
	if len(s.backend.Updates) != 1 || s.backend.Updates[0].OrderID != "o2" {
		t.Fatalf("Updates = %+v", s.backend.Updates)
	}
}

func TestDragEndpointUnknownSource(t *testing.T) {
	s := newTestStack(t)

	target := "run:r1"
	resp := s.postJSON(t, "/board/drag", dto.DragRequest{
		SourceKind: "order",
		SourceID:   "ghost",
		Target:     &target,
	})
	var res dto.DragResponse
	decodeInto(t, resp, &res)

	if res.Applied {
		t.Fatal("unknown source applied a mutation")
	}
}

func TestDragEndpointNullTarget(t *testing.T) {
	s := newTestStack(t)
	rev := s.store.Rev()

	resp := s.postJSON(t, "/board/drag", dto.DragRequest{
		SourceKind: "order",
		SourceID:   "o2",
	})
	var res dto.DragResponse
	decodeInto(t, resp, &res)

	if res.Applied {
		t.Fatal("cancelled drag applied a mutation")
	}
	if s.store.Rev() != rev {
		t.Fatal("store mutated by a cancelled drag")
	}
}

func TestDragEndpointRejectsBadBody(t *testing.T) {
	s := newTestStack(t)

	resp, err := http.Post(s.server.URL+"/board/drag", "application/json",
		bytes.NewReader([]byte(`{"source_kind": "order", "bogus": 1}`)))
	if err != nil {
		t.Fatal(err)
	}
	resp.Body.Close()
	if resp.StatusCode != http.StatusBadRequest {
		t.Fatalf("status = %d, want 400", resp.StatusCode)
	}
}

func TestDragEndpointMalformedTargetFlushesDeferredRefresh(t *testing.T) {
	s := newTestStack(t)

	// Park a refresh behind an in-progress gesture, then abandon it.
	if !s.drags.StartOrderDrag("o1") {
		t.Fatal("drag refused")
	}
	s.backend.Snapshot.Orders = append(s.backend.Snapshot.Orders,
		domain.Order{ID: "o9", Type: domain.OrderTypeSales, OrderNumber: "SO-99"})
	if err := s.sync.Refresh(context.Background()); err != nil {
		t.Fatalf("Refresh: %v", err)
	}
	if _, ok := s.store.OrderByID("o9"); ok {
		t.Fatal("board replaced mid-drag")
	}
	s.drags.Cancel()

	target := "truck1|"
	resp := s.postJSON(t, "/board/drag", dto.DragRequest{
		SourceKind: "order",
		SourceID:   "o2",
		Target:     &target,
	})
	resp.Body.Close()
	if resp.StatusCode != http.StatusBadRequest {
		t.Fatalf("status = %d, want 400", resp.StatusCode)
	}

	// The rejected gesture still settles the deferred snapshot.
	if _, ok := s.store.OrderByID("o9"); !ok {
		t.Fatal("deferred refresh still parked after rejected drop")
	}
}

func TestCreateRunEndpoint(t *testing.T) {
	s := newTestStack(t)

	resp := s.postJSON(t, "/board/runs", dto.CreateRunRequest{Cell: "truck1|2025-01-21"})
	if resp.StatusCode != http.StatusCreated {
		t.Fatalf("status = %d, want 201", resp.StatusCode)
	}
	var res dto.CreateRunResponse
	decodeInto(t, resp, &res)

	if res.RunID == "" {
		t.Fatal("empty run id")
	}
	if key, ok := s.store.RunCell(res.RunID); !ok || key.String() != "truck1|2025-01-21" {
		t.Fatalf("runToCell = %v", key)
	}

	s.sync.Wait()
	if len(s.backend.CreatedRuns) != 1 || s.backend.CreatedRuns[0].RunID != res.RunID {
		t.Fatalf("CreatedRuns = %+v", s.backend.CreatedRuns)
	}
}

func TestCreateRunRejectedOnSyntheticRow(t *testing.T) {
	s := newTestStack(t)

	for _, cell := range []string{"inbound|2025-01-21", "unassigned|2025-01-21"} {
		resp := s.postJSON(t, "/board/runs", dto.CreateRunRequest{Cell: cell})
		resp.Body.Close()
		if resp.StatusCode != http.StatusUnprocessableEntity {
			t.Fatalf("cell %s: status = %d, want 422", cell, resp.StatusCode)
		}
	}
}

func TestRunNotesEndpoint(t *testing.T) {
	s := newTestStack(t)

	resp := s.postJSON(t, "/board/runs/r1/notes", dto.NotesRequest{Notes: "leave gate open"})
	resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("status = %d", resp.StatusCode)
	}

	run, _ := s.store.RunByID("r1")
	if run.Notes != "leave gate open" {
		t.Fatalf("run.Notes = %q", run.Notes)
	}

	s.sync.Wait()
	if len(s.backend.UpdatedRuns) != 1 || s.backend.UpdatedRuns[0].Notes != "leave gate open" {
		t.Fatalf("UpdatedRuns = %+v", s.backend.UpdatedRuns)
	}
}

func TestOrderNotesEndpoint(t *testing.T) {
	s := newTestStack(t)

	resp := s.postJSON(t, "/board/orders/o1/notes", dto.NotesRequest{Notes: "fragile"})
	resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("status = %d", resp.StatusCode)
	}

	order, _ := s.store.OrderByID("o1")
	if order.Notes != "fragile" {
		t.Fatalf("order.Notes = %q", order.Notes)
	}

	s.sync.Wait()
	if len(s.backend.NoteUpdates) != 1 || s.backend.NoteUpdates[0] != "o1" {
		t.Fatalf("NoteUpdates = %v", s.backend.NoteUpdates)
	}

	resp = s.postJSON(t, "/board/orders/ghost/notes", dto.NotesRequest{Notes: "x"})
	resp.Body.Close()
	if resp.StatusCode != http.StatusNotFound {
		t.Fatalf("status = %d, want 404", resp.StatusCode)
	}
}

func TestLockToggleEndpoint(t *testing.T) {
	s := newTestStack(t)

	resp := s.postJSON(t, "/board/locks/2025-01-22/toggle", nil)
	var res dto.LockResponse
	decodeInto(t, resp, &res)

	if !res.Locked || res.Date != "2025-01-22" {
		t.Fatalf("response = %+v", res)
	}
	if !s.store.IsDateLocked("2025-01-22") {
		t.Fatal("date not locked")
	}

	resp = s.postJSON(t, "/board/locks/2025-01-22/toggle", nil)
	decodeInto(t, resp, &res)
	if res.Locked {
		t.Fatal("second toggle did not unlock")
	}

	s.sync.Wait()
	if len(s.backend.LockToggles) != 2 {
		t.Fatalf("LockToggles = %v", s.backend.LockToggles)
	}
}

func TestNoticesDrain(t *testing.T) {
	s := newTestStack(t)
	s.notices.Add("Saving your change failed; the board was reloaded.")

	resp, err := http.Get(s.server.URL + "/board/notices")
	if err != nil {
		t.Fatal(err)
	}
	var res dto.NoticesResponse
	decodeInto(t, resp, &res)
	if len(res.Notices) != 1 {
		t.Fatalf("notices = %v", res.Notices)
	}

	resp, err = http.Get(s.server.URL + "/board/notices")
	if err != nil {
		t.Fatal(err)
	}
	decodeInto(t, resp, &res)
	if len(res.Notices) != 0 {
		t.Fatal("notices not drained")
	}
}
