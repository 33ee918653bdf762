package domain

import "time"

// BoardSnapshot is the full board state produced by one fetch round
// (calendar range + unscheduled orders + trucks). Snapshots replace the
// in-memory store wholesale; they are never merged field by field.
type BoardSnapshot struct {
	StartDate string
	EndDate   string
	Orders    []Order
	Runs      []Run
	Cells     []Cell
	Trucks    []Truck
	// RunCells maps run id to the cell key that owns the run.
	RunCells  map[string]CellKey
	DateLocks []string
	FetchedAt time.Time
}
