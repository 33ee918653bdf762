package domain

import "strings"

// TargetKind classifies where a drag gesture ended.
type TargetKind string

const (
	TargetCell  TargetKind = "cell"
	TargetRun   TargetKind = "run"
	TargetOrder TargetKind = "order"
)

// DropTarget is a tagged value carried through the drag flow instead of a
// flat encoded id, so run/cell/order targets cannot be confused by prefix
// collisions. Exactly one of Cell, RunID, OrderID is meaningful per Kind.
type DropTarget struct {
	Kind    TargetKind
	Cell    CellKey
	RunID   string
	OrderID string
}

const runIDPrefix = "run:"

// EncodeRunTarget produces the wire form of a run drop target.
func EncodeRunTarget(runID string) string { return runIDPrefix + runID }

// ParseDropTarget decodes the flat ids used by the rendering layer:
// "<truckID>|<date>" is a cell, "run:<id>" is a run, anything else is
// taken as an order id. The wire form exists only at the HTTP boundary.
func ParseDropTarget(encoded string) (DropTarget, error) {
	if rest, ok := strings.CutPrefix(encoded, runIDPrefix); ok {
		return DropTarget{Kind: TargetRun, RunID: rest}, nil
	}
	if strings.Contains(encoded, "|") {
		key, err := ParseCellKey(encoded)
		if err != nil {
			return DropTarget{}, err
		}
		return DropTarget{Kind: TargetCell, Cell: key}, nil
	}
	return DropTarget{Kind: TargetOrder, OrderID: encoded}, nil
}
