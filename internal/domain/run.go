package domain

// Run is a named, ordered grouping of orders assigned to one truck for one
// date (a physical delivery manifest). Order ids are unique within the
// sequence; the sequence order is the loading order.
type Run struct {
	ID       string
	Name     string
	OrderIDs []string
	Notes    string
}
