package domain

// OrderType distinguishes sales orders from purchase orders on the board.
type OrderType string

const (
	OrderTypeSales    OrderType = "SO"
	OrderTypePurchase OrderType = "PO"
)

// OrderStatus tracks fulfillment progress for a scheduled order.
type OrderStatus string

const (
	StatusUnscheduled OrderStatus = "unscheduled"
	StatusPicked      OrderStatus = "picked"
	StatusPacked      OrderStatus = "packed"
	StatusShipped     OrderStatus = "shipped"
	StatusInvoiced    OrderStatus = "invoiced"
)

// Order is a sales or purchase order placed on the scheduling board.
// An order lives in at most one place at a time: inside a run's ordered
// sequence, or loose in a cell awaiting grouping.
type Order struct {
	ID           string
	Type         OrderType
	OrderNumber  string
	CustomerCode string
	PalletCount  int
	Status       OrderStatus
	Notes        string
	ReadOnly     bool
}
