package entity

import "time"

// MarketSnapshotItem is the read-only market state of one asset as returned by the list endpoint.
// Optional numeric fields are nil when the upstream response omits them.
type MarketSnapshotItem struct {
	ID                       string     `json:"id"`
	Symbol                   string     `json:"symbol"`
	Name                     string     `json:"name"`
	Image                    string     `json:"image"`
	CurrentPrice             float64    `json:"current_price"`
	MarketCapRank            *int       `json:"market_cap_rank"`
	MarketCap                *float64   `json:"market_cap"`
	TotalVolume              *float64   `json:"total_volume"`
	High24h                  *float64   `json:"high_24h"`
	Low24h                   *float64   `json:"low_24h"`
	PriceChange24h           *float64   `json:"price_change_24h"`
	PriceChangePercentage24h *float64   `json:"price_change_percentage_24h"`
	CirculatingSupply        *float64   `json:"circulating_supply"`
	LastUpdated              *time.Time `json:"last_updated"`
}

// CoinDetail is the single-asset view, market data expressed in the reference currency.
type CoinDetail struct {
	ID                       string   `json:"id"`
	Symbol                   string   `json:"symbol"`
	Name                     string   `json:"name"`
	Image                    string   `json:"image"`
	Description              string   `json:"description"`
	Homepage                 string   `json:"homepage"`
	MarketCapRank            *int     `json:"market_cap_rank"`
	CurrentPrice             *float64 `json:"current_price"`
	MarketCap                *float64 `json:"market_cap"`
	TotalVolume              *float64 `json:"total_volume"`
	High24h                  *float64 `json:"high_24h"`
	Low24h                   *float64 `json:"low_24h"`
	PriceChangePercentage24h *float64 `json:"price_change_percentage_24h"`
	CirculatingSupply        *float64 `json:"circulating_supply"`
	TotalSupply              *float64 `json:"total_supply"`
	MaxSupply                *float64 `json:"max_supply"`
}

// SnapshotItem projects the detail into a list item so it can be added to the portfolio.
func (d CoinDetail) SnapshotItem() MarketSnapshotItem {
	item := MarketSnapshotItem{
		ID:                       d.ID,
		Symbol:                   d.Symbol,
		Name:                     d.Name,
		Image:                    d.Image,
		MarketCapRank:            d.MarketCapRank,
		MarketCap:                d.MarketCap,
		TotalVolume:              d.TotalVolume,
		High24h:                  d.High24h,
		Low24h:                   d.Low24h,
		PriceChangePercentage24h: d.PriceChangePercentage24h,
		CirculatingSupply:        d.CirculatingSupply,
	}
	if d.CurrentPrice != nil {
		item.CurrentPrice = *d.CurrentPrice
	}
	return item
}

// PricePoint is one sample of a historical price series.
type PricePoint struct {
	Time  time.Time `json:"time"`
	Price float64   `json:"price"`
}

// PriceSeries is the historical price series of one coin over a time range.
type PriceSeries struct {
	CoinID     string       `json:"coinId"`
	VsCurrency string       `json:"vsCurrency"`
	Range      TimeRange    `json:"range"`
	Prices     []PricePoint `json:"prices"`
}

// GlobalStats holds the global market aggregates in the reference currency.
type GlobalStats struct {
	TotalMarketCap                  *float64 `json:"total_market_cap"`
	TotalVolume                     *float64 `json:"total_volume"`
	ActiveCryptocurrencies          *int     `json:"active_cryptocurrencies"`
	Markets                         *int     `json:"markets"`
	MarketCapChangePercentage24hUSD *float64 `json:"market_cap_change_percentage_24h_usd"`
}

// MarketOverview backs the home view: a few featured assets plus global aggregates.
type MarketOverview struct {
	Featured []MarketSnapshotItem `json:"featured"`
	Global   GlobalStats          `json:"global"`
}

// CoinView is what the detail view renders for one selection.
type CoinView struct {
	Detail CoinDetail  `json:"detail"`
	Chart  PriceSeries `json:"chart"`
	Range  TimeRange   `json:"range"`
}
