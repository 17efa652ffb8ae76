package models

import "time"

// OrderLine is one priced cart entry at the moment of checkout.
type OrderLine struct {
	ProductID string  `json:"product_id"`
	Name      string  `json:"name"`
	Quantity  int     `json:"quantity"`
	UnitPrice float64 `json:"unit_price"`
	Subtotal  float64 `json:"subtotal"`
}

// OrderPlaced is emitted when a cart is checked out. Orders are not stored;
// this event is the only record of the placement.
type OrderPlaced struct {
	OrderID  string      `json:"order_id"`
	UserID   string      `json:"user_id"`
	Lines    []OrderLine `json:"lines"`
	Total    float64     `json:"total"`
	PlacedAt time.Time   `json:"placed_at"`
}
