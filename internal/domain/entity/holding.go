package entity

import "time"

// HoldingEntry is one row of the user's portfolio.
// JSON keys match the shape persisted by earlier versions of the dashboard.
type HoldingEntry struct {
	ID           string    `json:"id"`
	Symbol       string    `json:"symbol"`
	Name         string    `json:"name"`
	Image        string    `json:"image"`
	CurrentPrice float64   `json:"current_price"`
	Quantity     float64   `json:"quantity"`
	AddedAt      time.Time `json:"addedAt"`
	LastUpdated  time.Time `json:"last_updated"`
}

// Value returns CurrentPrice * Quantity.
func (h HoldingEntry) Value() float64 {
	return h.CurrentPrice * h.Quantity
}
