package snapshot

import (
	"context"
	"testing"
	"time"

	"delivery-board-service/internal/domain"
	"delivery-board-service/internal/platform/db"

	_ "modernc.org/sqlite"
)

func openTestStore(t *testing.T) *SqliteSnapshotStore {
	t.Helper()

	conn, err := db.OpenSqlite(":memory:")
	if err != nil {
		t.Fatalf("open sqlite: %v", err)
	}
	t.Cleanup(func() { conn.Close() })

	if err := InitSchema(conn); err != nil {
		t.Fatalf("init schema: %v", err)
	}
	return NewSqliteSnapshotStore(conn)
}

func testSnapshot() domain.BoardSnapshot {
	return domain.BoardSnapshot{
		StartDate: "2025-01-20",
		EndDate:   "2025-01-26",
		Trucks: []domain.Truck{
			{ID: "truck1", Name: "Truck 1", Position: 1},
			{ID: "truck2", Name: "Truck 2", Position: 2},
		},
		Orders: []domain.Order{
			{ID: "o1", Type: domain.OrderTypeSales, OrderNumber: "SO-1", CustomerCode: "ACME",
				PalletCount: 4, Status: domain.StatusPicked, Notes: "call ahead"},
			{ID: "o2", Type: domain.OrderTypeSales, OrderNumber: "SO-2"},
			{ID: "o3", Type: domain.OrderTypePurchase, OrderNumber: "PO-3", ReadOnly: true},
		},
		Runs: []domain.Run{
			{ID: "r1", Name: "Run 1", OrderIDs: []string{"o2", "o1"}, Notes: "north loop"},
			{ID: "r2", Name: "Run 2"},
		},
		Cells: []domain.Cell{
			{
				Key:           domain.CellKey{TruckID: "truck1", Date: "2025-01-20"},
				RunIDs:        []string{"r2", "r1"},
				LooseOrderIDs: []string{"o3"},
			},
		},
		RunCells: map[string]domain.CellKey{
			"r1": {TruckID: "truck1", Date: "2025-01-20"},
			"r2": {TruckID: "truck1", Date: "2025-01-20"},
		},
		DateLocks: []string{"2025-01-24"},
		FetchedAt: time.Date(2025, time.January, 20, 8, 30, 0, 0, time.UTC),
	}
}

func TestSaveLoadRoundTrip(t *testing.T) {
	store := openTestStore(t)
	ctx := context.Background()

	if err := store.Save(ctx, testSnapshot()); err != nil {
		t.Fatalf("Save: %v", err)
	}
	loaded, ok, err := store.Load(ctx)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if !ok {
		t.Fatal("Load reported no snapshot")
	}

	if loaded.StartDate != "2025-01-20" || loaded.EndDate != "2025-01-26" {
		t.Fatalf("window = %s..%s", loaded.StartDate, loaded.EndDate)
	}
	if !loaded.FetchedAt.Equal(time.Date(2025, time.January, 20, 8, 30, 0, 0, time.UTC)) {
		t.Fatalf("FetchedAt = %v", loaded.FetchedAt)
	}
	if len(loaded.Trucks) != 2 || loaded.Trucks[0].ID != "truck1" {
		t.Fatalf("trucks = %v", loaded.Trucks)
	}
	if len(loaded.Orders) != 3 {
		t.Fatalf("orders = %d", len(loaded.Orders))
	}
	for _, o := range loaded.Orders {
		switch o.ID {
		case "o1":
			if o.Status != domain.StatusPicked || o.Notes != "call ahead" || o.PalletCount != 4 {
				t.Fatalf("o1 = %+v", o)
			}
		case "o3":
			if !o.ReadOnly || o.Type != domain.OrderTypePurchase {
				t.Fatalf("o3 = %+v", o)
			}
		}
	}

	// Run order within the cell and order sequence within the run survive.
	if len(loaded.Cells) != 1 {
		t.Fatalf("cells = %d", len(loaded.Cells))
	}
	cell := loaded.Cells[0]
	if cell.RunIDs[0] != "r2" || cell.RunIDs[1] != "r1" {
		t.Fatalf("cell runs = %v, want [r2 r1]", cell.RunIDs)
	}
	if cell.LooseOrderIDs[0] != "o3" {
		t.Fatalf("cell loose = %v", cell.LooseOrderIDs)
	}
	for _, r := range loaded.Runs {
		if r.ID == "r1" {
			if len(r.OrderIDs) != 2 || r.OrderIDs[0] != "o2" || r.OrderIDs[1] != "o1" {
				t.Fatalf("r1 orders = %v, want [o2 o1]", r.OrderIDs)
			}
			if r.Notes != "north loop" {
				t.Fatalf("r1 notes = %q", r.Notes)
			}
		}
	}
	if key := loaded.RunCells["r1"]; key.String() != "truck1|2025-01-20" {
		t.Fatalf("RunCells[r1] = %v", key)
	}
	if len(loaded.DateLocks) != 1 || loaded.DateLocks[0] != "2025-01-24" {
		t.Fatalf("DateLocks = %v", loaded.DateLocks)
	}
}

func TestSaveReplacesPreviousSnapshot(t *testing.T) {
	store := openTestStore(t)
	ctx := context.Background()

	if err := store.Save(ctx, testSnapshot()); err != nil {
		t.Fatalf("Save: %v", err)
	}

	next := domain.BoardSnapshot{
		StartDate: "2025-01-27",
		EndDate:   "2025-02-02",
		Orders: []domain.Order{
			{ID: "o9", Type: domain.OrderTypeSales, OrderNumber: "SO-9"},
		},
		FetchedAt: time.Now().UTC(),
	}
	if err := store.Save(ctx, next); err != nil {
		t.Fatalf("Save: %v", err)
	}

	loaded, ok, err := store.Load(ctx)
	if err != nil || !ok {
		t.Fatalf("Load: ok=%v err=%v", ok, err)
	}
	if len(loaded.Orders) != 1 || loaded.Orders[0].ID != "o9" {
		t.Fatalf("orders = %v, want only o9", loaded.Orders)
	}
	if len(loaded.Runs) != 0 || len(loaded.Cells) != 0 || len(loaded.DateLocks) != 0 {
		t.Fatal("previous snapshot leaked through")
	}
	if loaded.StartDate != "2025-01-27" {
		t.Fatalf("StartDate = %s", loaded.StartDate)
	}
}

func TestLoadEmptyStore(t *testing.T) {
	store := openTestStore(t)

	_, ok, err := store.Load(context.Background())
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if ok {
		t.Fatal("empty store reported a snapshot")
	}
}

func TestUnplacedRunSurvivesRoundTrip(t *testing.T) {
	store := openTestStore(t)
	ctx := context.Background()

	snap := domain.BoardSnapshot{
		StartDate: "2025-01-20",
		EndDate:   "2025-01-26",
		Runs:      []domain.Run{{ID: "r9", Name: "Run 9"}},
		FetchedAt: time.Now().UTC(),
	}
	if err := store.Save(ctx, snap); err != nil {
		t.Fatalf("Save: %v", err)
	}

	loaded, ok, err := store.Load(ctx)
	if err != nil || !ok {
		t.Fatalf("Load: ok=%v err=%v", ok, err)
	}
	if len(loaded.Runs) != 1 || loaded.Runs[0].ID != "r9" {
		t.Fatalf("runs = %v", loaded.Runs)
	}
	if _, placed := loaded.RunCells["r9"]; placed {
		t.Fatal("unplaced run gained a cell")
	}
}
