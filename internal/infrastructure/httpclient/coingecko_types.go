package httpclient

import (
	"strings"
	"time"

	"crypto_dashboard/internal/domain/entity"
)

// marketItemDTO is one element of GET /coins/markets.
type marketItemDTO struct {
	ID                       string   `json:"id"`
	Symbol                   string   `json:"symbol"`
	Name                     string   `json:"name"`
	Image                    string   `json:"image"`
	CurrentPrice             *float64 `json:"current_price"`
	MarketCap                *float64 `json:"market_cap"`
	MarketCapRank            *int     `json:"market_cap_rank"`
	TotalVolume              *float64 `json:"total_volume"`
	High24h                  *float64 `json:"high_24h"`
	Low24h                   *float64 `json:"low_24h"`
	PriceChange24h           *float64 `json:"price_change_24h"`
	PriceChangePercentage24h *float64 `json:"price_change_percentage_24h"`
	CirculatingSupply        *float64 `json:"circulating_supply"`
	LastUpdated              *string  `json:"last_updated"`
}

// coinDTO is the subset of GET /coins/{id} the dashboard renders.
type coinDTO struct {
	ID            string `json:"id"`
	Symbol        string `json:"symbol"`
	Name          string `json:"name"`
	MarketCapRank *int   `json:"market_cap_rank"`
	Description   *struct {
		En string `json:"en"`
	} `json:"description"`
	Links *struct {
		Homepage []string `json:"homepage"`
	} `json:"links"`
	Image *struct {
		Thumb string `json:"thumb"`
		Small string `json:"small"`
		Large string `json:"large"`
	} `json:"image"`
	MarketData *coinMarketDataDTO `json:"market_data"`
}

// coinMarketDataDTO holds per-currency values keyed by currency code.
type coinMarketDataDTO struct {
	CurrentPrice             map[string]float64 `json:"current_price"`
	MarketCap                map[string]float64 `json:"market_cap"`
	TotalVolume              map[string]float64 `json:"total_volume"`
	High24h                  map[string]float64 `json:"high_24h"`
	Low24h                   map[string]float64 `json:"low_24h"`
	PriceChangePercentage24h *float64           `json:"price_change_percentage_24h"`
	CirculatingSupply        *float64           `json:"circulating_supply"`
	TotalSupply              *float64           `json:"total_supply"`
	MaxSupply                *float64           `json:"max_supply"`
	MarketCapRank            *int               `json:"market_cap_rank"`
}

// marketChartDTO is GET /coins/{id}/market_chart. Samples are [unix millis, value].
type marketChartDTO struct {
	Prices [][]float64 `json:"prices"`
}

// globalDTO is GET /global.
type globalDTO struct {
	Data *struct {
		ActiveCryptocurrencies          *int               `json:"active_cryptocurrencies"`
		Markets                         *int               `json:"markets"`
		TotalMarketCap                  map[string]float64 `json:"total_market_cap"`
		TotalVolume                     map[string]float64 `json:"total_volume"`
		MarketCapChangePercentage24hUSD *float64           `json:"market_cap_change_percentage_24h_usd"`
	} `json:"data"`
}

func pick(values map[string]float64, currency string) *float64 {
	v, ok := values[strings.ToLower(currency)]
	if !ok {
		return nil
	}
	return &v
}

func parseTimestamp(s *string) *time.Time {
	if s == nil || *s == "" {
		return nil
	}
	t, err := time.Parse(time.RFC3339, *s)
	if err != nil {
		return nil
	}
	return &t
}

func (d marketItemDTO) toEntity() entity.MarketSnapshotItem {
	item := entity.MarketSnapshotItem{
		ID:                       d.ID,
		Symbol:                   d.Symbol,
		Name:                     d.Name,
		Image:                    d.Image,
		MarketCapRank:            d.MarketCapRank,
		MarketCap:                d.MarketCap,
		TotalVolume:              d.TotalVolume,
		High24h:                  d.High24h,
		Low24h:                   d.Low24h,
		PriceChange24h:           d.PriceChange24h,
		PriceChangePercentage24h: d.PriceChangePercentage24h,
		CirculatingSupply:        d.CirculatingSupply,
		LastUpdated:              parseTimestamp(d.LastUpdated),
	}
	if d.CurrentPrice != nil {
		item.CurrentPrice = *d.CurrentPrice
	}
	return item
}

func (d coinDTO) toEntity(vsCurrency string) entity.CoinDetail {
	detail := entity.CoinDetail{
		ID:            d.ID,
		Symbol:        d.Symbol,
		Name:          d.Name,
		MarketCapRank: d.MarketCapRank,
	}
	if d.Description != nil {
		detail.Description = d.Description.En
	}
	if d.Links != nil {
		for _, hp := range d.Links.Homepage {
			if hp != "" {
				detail.Homepage = hp
				break
			}
		}
	}
	if d.Image != nil {
		switch {
		case d.Image.Large != "":
			detail.Image = d.Image.Large
		case d.Image.Small != "":
			detail.Image = d.Image.Small
		default:
			detail.Image = d.Image.Thumb
		}
	}
	if md := d.MarketData; md != nil {
		detail.CurrentPrice = pick(md.CurrentPrice, vsCurrency)
		detail.MarketCap = pick(md.MarketCap, vsCurrency)
		detail.TotalVolume = pick(md.TotalVolume, vsCurrency)
		detail.High24h = pick(md.High24h, vsCurrency)
		detail.Low24h = pick(md.Low24h, vsCurrency)
		detail.PriceChangePercentage24h = md.PriceChangePercentage24h
		detail.CirculatingSupply = md.CirculatingSupply
		detail.TotalSupply = md.TotalSupply
		detail.MaxSupply = md.MaxSupply
		if detail.MarketCapRank == nil {
			detail.MarketCapRank = md.MarketCapRank
		}
	}
	return detail
}

func (d marketChartDTO) toEntity(id, vsCurrency string, r entity.TimeRange) entity.PriceSeries {
	series := entity.PriceSeries{
		CoinID:     id,
		VsCurrency: vsCurrency,
		Range:      r,
		Prices:     make([]entity.PricePoint, 0, len(d.Prices)),
	}
	for _, sample := range d.Prices {
		if len(sample) < 2 {
			continue
		}
		series.Prices = append(series.Prices, entity.PricePoint{
			Time:  time.UnixMilli(int64(sample[0])).UTC(),
			Price: sample[1],
		})
	}
	return series
}

func (d globalDTO) toEntity(vsCurrency string) entity.GlobalStats {
	if d.Data == nil {
		return entity.GlobalStats{}
	}
	return entity.GlobalStats{
		TotalMarketCap:                  pick(d.Data.TotalMarketCap, vsCurrency),
		TotalVolume:                     pick(d.Data.TotalVolume, vsCurrency),
		ActiveCryptocurrencies:          d.Data.ActiveCryptocurrencies,
		Markets:                         d.Data.Markets,
		MarketCapChangePercentage24hUSD: d.Data.MarketCapChangePercentage24hUSD,
	}
}
