package port

import (
	"context"

	"crypto_dashboard/internal/domain/entity"
)

// MarketDataClient defines the interface for the remote market-data API.
type MarketDataClient interface {
	// ListMarkets returns one page of assets ordered and priced as described by the query.
	ListMarkets(ctx context.Context, query entity.MarketsQuery) ([]entity.MarketSnapshotItem, error)
	// GetCoin returns the detail of a single asset.
	GetCoin(ctx context.Context, id string) (entity.CoinDetail, error)
	// GetMarketChart returns the historical price series of an asset.
	GetMarketChart(ctx context.Context, id string, vsCurrency string, timeRange entity.TimeRange) (entity.PriceSeries, error)
	// GetGlobal returns the global market aggregates.
	GetGlobal(ctx context.Context) (entity.GlobalStats, error)
}

// MarketService defines the read side of the dashboard.
type MarketService interface {
	// Markets returns the polled state of a list query, starting a poller for it if needed.
	Markets(ctx context.Context, query entity.MarketsQuery) entity.PollState[[]entity.MarketSnapshotItem]
	// RefreshMarkets runs one poll cycle for the query before returning its state.
	RefreshMarkets(ctx context.Context, query entity.MarketsQuery) entity.PollState[[]entity.MarketSnapshotItem]
	// Overview returns the polled featured assets and global aggregates.
	Overview(ctx context.Context) entity.PollState[entity.MarketOverview]
	// Coin fetches the detail and chart of one asset on demand.
	Coin(ctx context.Context, id string, timeRange entity.TimeRange) (entity.CoinView, error)
	// FindInMarkets looks an asset up in the default list snapshot.
	FindInMarkets(ctx context.Context, id string) (entity.MarketSnapshotItem, error)
}
