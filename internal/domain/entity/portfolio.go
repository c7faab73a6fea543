package entity

// PortfolioSummary is the read model of the portfolio view.
type PortfolioSummary struct {
	Holdings      []HoldingEntry `json:"holdings"`
	HoldingsCount int            `json:"holdingsCount"`
	TotalValueUSD float64        `json:"totalValueUSD"`
}
