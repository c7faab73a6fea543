package port

import "crypto_dashboard/internal/domain/entity"

// PortfolioService defines the operations on the user's persisted portfolio.
type PortfolioService interface {
	// AddOrIncrement adds the asset with quantity 1, or increments an existing holding and refreshes its price.
	AddOrIncrement(item entity.MarketSnapshotItem) (entity.HoldingEntry, error)
	// Remove deletes the holding if present. Removing an absent id is not an error.
	Remove(id string) error
	// SetQuantity parses raw and sets the holding quantity. Unparsable or negative input is ignored.
	SetQuantity(id string, raw string) error
	// Clear empties the portfolio.
	Clear() error
	// Holdings returns the holdings in insertion order.
	Holdings() []entity.HoldingEntry
	// Get returns the holding with the given id.
	Get(id string) (entity.HoldingEntry, bool)
	// TotalValue returns the sum of price * quantity over all holdings.
	TotalValue() float64
	// Summary returns the holdings with their count and total value.
	Summary() entity.PortfolioSummary
}
