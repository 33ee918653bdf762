package dto

type OrderResponse struct {
	ID           string `json:"id"`
	Type         string `json:"type"`
	OrderNumber  string `json:"order_number"`
	CustomerCode string `json:"customer_code"`
	PalletCount  int    `json:"pallet_count"`
	Status       string `json:"status"`
	Notes        string `json:"notes,omitempty"`
	ReadOnly     bool   `json:"read_only"`
}

type RunResponse struct {
	ID     string          `json:"id"`
	Name   string          `json:"name"`
	Notes  string          `json:"notes,omitempty"`
	Orders []OrderResponse `json:"orders"`
}

type CellResponse struct {
	Key     string          `json:"key"`
	TruckID string          `json:"truck_id"`
	Date    string          `json:"date"`
	Locked  bool            `json:"locked"`
	Runs    []RunResponse   `json:"runs"`
	Loose   []OrderResponse `json:"loose"`
}

type TruckResponse struct {
	ID       string `json:"id"`
	Name     string `json:"name"`
	Position int    `json:"position"`
}

type BoardResponse struct {
	StartDate   string          `json:"start_date"`
	EndDate     string          `json:"end_date"`
	Dates       []string        `json:"dates"`
	Trucks      []TruckResponse `json:"trucks"`
	Cells       []CellResponse  `json:"cells"`
	Unscheduled []OrderResponse `json:"unscheduled"`
}
