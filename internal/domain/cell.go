package domain

import (
	"fmt"
	"strings"
)

// Synthetic truck rows. Inbound cells are read-only (no loose orders, no
// new runs); the unassigned row holds loose orders only.
const (
	TruckRowInbound    = "inbound"
	TruckRowUnassigned = "unassigned"
)

// CellKey identifies the intersection of one truck row and one calendar
// date. Dates are ISO "YYYY-MM-DD" strings throughout.
type CellKey struct {
	TruckID string
	Date    string
}

// String encodes the key in the wire form "<truckID>|<date>".
func (k CellKey) String() string {
	return k.TruckID + "|" + k.Date
}

func (k CellKey) IsZero() bool {
	return k.TruckID == "" && k.Date == ""
}

// ParseCellKey decodes a "<truckID>|<date>" string.
func ParseCellKey(s string) (CellKey, error) {
	truckID, date, ok := strings.Cut(s, "|")
	if !ok || truckID == "" || date == "" {
		return CellKey{}, fmt.Errorf("parse cell key: malformed key %q", s)
	}
	return CellKey{TruckID: truckID, Date: date}, nil
}

// Cell holds the committed runs and loose orders for one truck/date slot.
type Cell struct {
	Key           CellKey
	RunIDs        []string
	LooseOrderIDs []string
}

// AcceptsRuns reports whether new runs may be created in this cell.
// Inbound and unassigned rows never hold runs.
func (c Cell) AcceptsRuns() bool {
	return c.Key.TruckID != TruckRowInbound && c.Key.TruckID != TruckRowUnassigned
}

// AcceptsLooseOrders reports whether orders may be dropped loose here.
// The inbound row is read-only.
func (c Cell) AcceptsLooseOrders() bool {
	return c.Key.TruckID != TruckRowInbound
}
