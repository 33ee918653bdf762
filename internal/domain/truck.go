package domain

// Truck is a board row. Position controls display order; the synthetic
// inbound and unassigned rows are not represented as trucks.
type Truck struct {
	ID       string
	Name     string
	Position int
}
