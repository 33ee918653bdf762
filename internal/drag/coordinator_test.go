package drag

import (
	"testing"

	"delivery-board-service/internal/board"
	"delivery-board-service/internal/domain"
)

func boardFixture(t *testing.T) *board.Store {
	t.Helper()

	s := board.NewStore()
	s.Replace(domain.BoardSnapshot{
		Orders: []domain.Order{
			{ID: "o1", Type: domain.OrderTypeSales, OrderNumber: "SO-1"},
			{ID: "o2", Type: domain.OrderTypeSales, OrderNumber: "SO-2"},
			{ID: "o3", Type: domain.OrderTypeSales, OrderNumber: "SO-3"},
			{ID: "o4", Type: domain.OrderTypeSales, OrderNumber: "SO-4"},
			{ID: "p1", Type: domain.OrderTypePurchase, OrderNumber: "PO-1"},
			{ID: "fin", Type: domain.OrderTypeSales, OrderNumber: "SO-9", ReadOnly: true},
		},
		Runs: []domain.Run{
			{ID: "r1", Name: "Run 1", OrderIDs: []string{"o1", "o2"}},
			{ID: "r2", Name: "Run 2", OrderIDs: []string{"o3"}},
		},
		Cells: []domain.Cell{
			{
				Key:           domain.CellKey{TruckID: "truck1", Date: "2025-01-20"},
				RunIDs:        []string{"r1", "r2"},
				LooseOrderIDs: []string{"o4", "p1"},
			},
		},
		RunCells: map[string]domain.CellKey{
			"r1": {TruckID: "truck1", Date: "2025-01-20"},
			"r2": {TruckID: "truck1", Date: "2025-01-20"},
		},
	})
	return s
}

func target(encoded string) *domain.DropTarget {
	parsed, err := domain.ParseDropTarget(encoded)
	if err != nil {
		panic(err)
	}
	return &parsed
}

func TestDropOrderOnOrderSameRunReorders(t *testing.T) {
	s := boardFixture(t)
	c := NewCoordinator(s)

	if !c.StartOrderDrag("o1") {
		t.Fatal("drag refused")
	}
	applied, ok := c.Drop(target("o2"))
	if !ok || applied.Op != OpReorderOrders {
		t.Fatalf("applied = %+v ok=%v, want reorder", applied, ok)
	}

	run, _ := s.RunByID("r1")
	if run.OrderIDs[0] != "o2" || run.OrderIDs[1] != "o1" {
		t.Fatalf("run orders = %v, want [o2 o1]", run.OrderIDs)
	}
}

func TestDropOrderOnOrderInOtherRunInsertsAtPosition(t *testing.T) {
	s := boardFixture(t)
	c := NewCoordinator(s)

	c.StartOrderDrag("o1")
	applied, ok := c.Drop(target("o3"))
	if !ok || applied.Op != OpMoveOrder || applied.RunID != "r2" {
		t.Fatalf("applied = %+v ok=%v, want move into r2", applied, ok)
	}

	run, _ := s.RunByID("r2")
	if len(run.OrderIDs) != 2 || run.OrderIDs[0] != "o1" {
		t.Fatalf("run orders = %v, want o1 at o3's position", run.OrderIDs)
	}
}

func TestDropOrderOnRunBodyAppends(t *testing.T) {
	s := boardFixture(t)
	c := NewCoordinator(s)

	c.StartOrderDrag("o4")
	applied, ok := c.Drop(target("run:r1"))
	if !ok || applied.Op != OpMoveOrder {
		t.Fatalf("applied = %+v ok=%v", applied, ok)
	}

	run, _ := s.RunByID("r1")
	if len(run.OrderIDs) != 3 || run.OrderIDs[2] != "o4" {
		t.Fatalf("run orders = %v, want o4 appended", run.OrderIDs)
	}
	key := domain.CellKey{TruckID: "truck1", Date: "2025-01-20"}
	for _, id := range s.CellLooseOrderIDs(key) {
		if id == "o4" {
			t.Fatal("o4 still loose after committing to a run")
		}
	}
}

func TestDropOrderOnBareCellIsAlwaysLoose(t *testing.T) {
	s := boardFixture(t)
	c := NewCoordinator(s)

	// The cell holds runs; the drop must still land loose.
	c.StartOrderDrag("o1")
	applied, ok := c.Drop(target("truck1|2025-01-20"))
	if !ok || applied.Op != OpMoveOrderLoose {
		t.Fatalf("applied = %+v ok=%v, want loose placement", applied, ok)
	}

	if _, inRun := s.OrderRun("o1"); inRun {
		t.Fatal("o1 still committed to a run")
	}
	key := domain.CellKey{TruckID: "truck1", Date: "2025-01-20"}
	ids := s.CellLooseOrderIDs(key)
	if ids[len(ids)-1] != "o1" {
		t.Fatalf("loose orders = %v, want o1 appended", ids)
	}
}

func TestSelfDropNeutral(t *testing.T) {
	s := boardFixture(t)
	c := NewCoordinator(s)
	before := s.Rev()

	c.StartOrderDrag("o1")
	if _, ok := c.Drop(target("o1")); ok {
		t.Fatal("self-drop applied a mutation")
	}
	c.StartRunDrag("r1")
	if _, ok := c.Drop(target("run:r1")); ok {
		t.Fatal("run self-drop applied a mutation")
	}
	if s.Rev() != before {
		t.Fatal("store mutated by self-drops")
	}
}

func TestCancelledDragNilTarget(t *testing.T) {
	s := boardFixture(t)
	c := NewCoordinator(s)
	before := s.Rev()

	c.StartOrderDrag("o1")
	if _, ok := c.Drop(nil); ok {
		t.Fatal("cancelled drag applied a mutation")
	}
	if s.Rev() != before {
		t.Fatal("store mutated by a cancelled drag")
	}
	if c.Active() {
		t.Fatal("coordinator still dragging after drop")
	}
}

func TestReadOnlyOrderNeverStarts(t *testing.T) {
	s := boardFixture(t)
	c := NewCoordinator(s)

	if c.StartOrderDrag("fin") {
		t.Fatal("read-only order started a drag")
	}
	if c.StartOrderDrag("ghost") {
		t.Fatal("unknown order started a drag")
	}
}

func TestPurchaseOrderNeverJoinsARun(t *testing.T) {
	s := boardFixture(t)
	c := NewCoordinator(s)

	c.StartOrderDrag("p1")
	if _, ok := c.Drop(target("run:r1")); ok {
		t.Fatal("purchase order committed to a run body")
	}
	c.StartOrderDrag("p1")
	if _, ok := c.Drop(target("o3")); ok {
		t.Fatal("purchase order committed through an order target")
	}

	// Loose moves remain allowed for purchase orders.
	c.StartOrderDrag("p1")
	applied, ok := c.Drop(target("truck1|2025-01-21"))
	if !ok || applied.Op != OpMoveOrderLoose {
		t.Fatalf("applied = %+v ok=%v, want loose move", applied, ok)
	}
}

func TestSingleActiveDrag(t *testing.T) {
	s := boardFixture(t)
	c := NewCoordinator(s)

	if !c.StartOrderDrag("o1") {
		t.Fatal("first drag refused")
	}
	if c.StartOrderDrag("o2") {
		t.Fatal("second drag started while one is active")
	}
	if c.StartRunDrag("r1") {
		t.Fatal("run drag started while an order drag is active")
	}
	c.Cancel()
	if !c.StartRunDrag("r1") {
		t.Fatal("drag refused after cancel")
	}
}

func TestDropRunOnCellMoves(t *testing.T) {
	s := boardFixture(t)
	c := NewCoordinator(s)

	c.StartRunDrag("r1")
	applied, ok := c.Drop(target("truck2|2025-01-21"))
	if !ok || applied.Op != OpMoveRun {
		t.Fatalf("applied = %+v ok=%v", applied, ok)
	}
	if got, _ := s.RunCell("r1"); got.String() != "truck2|2025-01-21" {
		t.Fatalf("runToCell[r1] = %v", got)
	}
	// Orders ride along.
	for _, id := range []string{"o1", "o2"} {
		if runID, ok := s.OrderRun(id); !ok || runID != "r1" {
			t.Fatalf("orderToRun[%s] = %q, want r1", id, runID)
		}
	}
}

func TestDropRunOnSyntheticRowRefused(t *testing.T) {
	s := boardFixture(t)
	c := NewCoordinator(s)

	c.StartRunDrag("r1")
	if _, ok := c.Drop(target("inbound|2025-01-21")); ok {
		t.Fatal("run moved into the inbound row")
	}
	c.StartRunDrag("r1")
	if _, ok := c.Drop(target("unassigned|2025-01-21")); ok {
		t.Fatal("run moved into the unassigned row")
	}
}

func TestDropRunOnRunSameCellReorders(t *testing.T) {
	s := boardFixture(t)
	c := NewCoordinator(s)
	key := domain.CellKey{TruckID: "truck1", Date: "2025-01-20"}

	c.StartRunDrag("r2")
	applied, ok := c.Drop(target("run:r1"))
	if !ok || applied.Op != OpReorderRuns {
		t.Fatalf("applied = %+v ok=%v", applied, ok)
	}
	ids := s.CellRunIDs(key)
	if ids[0] != "r2" || ids[1] != "r1" {
		t.Fatalf("cell runs = %v, want [r2 r1]", ids)
	}
}

func TestDropRunOnOrderResolvesPlacement(t *testing.T) {
	s := boardFixture(t)
	s.MoveRun("r2", domain.CellKey{TruckID: "truck2", Date: "2025-01-21"})
	c := NewCoordinator(s)

	// o3 belongs to r2, now on truck2; dropping r1 on o3 moves r1 there.
	c.StartRunDrag("r1")
	applied, ok := c.Drop(target("o3"))
	if !ok || applied.Op != OpMoveRun {
		t.Fatalf("applied = %+v ok=%v", applied, ok)
	}
	if got, _ := s.RunCell("r1"); got.String() != "truck2|2025-01-21" {
		t.Fatalf("runToCell[r1] = %v", got)
	}
}
