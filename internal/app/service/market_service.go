package service

import (
	"context"
	"fmt"
	"strings"

	"crypto_dashboard/internal/app/port"
	"crypto_dashboard/internal/domain/entity"
	"crypto_dashboard/internal/pkg/utils"

	"golang.org/x/sync/errgroup"
)

// MarketServiceImpl implements port.MarketService on top of the poller registry.
type MarketServiceImpl struct {
	client       port.MarketDataClient
	registry     *PollerRegistry
	defaultQuery entity.MarketsQuery
	logger       port.Logger
}

// NewMarketService creates a MarketServiceImpl. The default list query is priced in vsCurrency.
func NewMarketService(client port.MarketDataClient, registry *PollerRegistry, vsCurrency string, l port.Logger) *MarketServiceImpl {
	query := entity.DefaultMarketsQuery()
	if vsCurrency != "" {
		query.VsCurrency = strings.ToLower(vsCurrency)
	}
	return &MarketServiceImpl{
		client:       client,
		registry:     registry,
		defaultQuery: query,
		logger:       l.With("component", "MarketService"),
	}
}

// DefaultQuery returns the list query overrides are applied to.
func (s *MarketServiceImpl) DefaultQuery() entity.MarketsQuery {
	return s.defaultQuery
}

// Markets implements port.MarketService. The first call for a query waits for its first cycle.
func (s *MarketServiceImpl) Markets(ctx context.Context, query entity.MarketsQuery) entity.PollState[[]entity.MarketSnapshotItem] {
	p := s.registry.Markets(query)
	if !p.Running() {
		return p.Refresh(ctx)
	}
	return p.Await(ctx)
}

// RefreshMarkets implements port.MarketService. The cycle runs on the registry context;
// cancelling ctx only ends the wait and returns the current state.
func (s *MarketServiceImpl) RefreshMarkets(ctx context.Context, query entity.MarketsQuery) entity.PollState[[]entity.MarketSnapshotItem] {
	p := s.registry.Markets(query)
	if !p.Running() {
		return p.Refresh(ctx)
	}

	result := make(chan entity.PollState[[]entity.MarketSnapshotItem], 1)
	go func() {
		cycleCtx, cancel := s.registry.cycleContext()
		defer cancel()
		result <- p.Refresh(cycleCtx)
	}()
	select {
	case state := <-result:
		return state
	case <-ctx.Done():
		return p.State()
	}
}

// Overview implements port.MarketService.
func (s *MarketServiceImpl) Overview(ctx context.Context) entity.PollState[entity.MarketOverview] {
	p := s.registry.Overview()
	if !p.Running() {
		return p.Refresh(ctx)
	}
	return p.Await(ctx)
}

// Coin implements port.MarketService. Detail and chart are requested concurrently.
func (s *MarketServiceImpl) Coin(ctx context.Context, id string, timeRange entity.TimeRange) (entity.CoinView, error) {
	id = strings.TrimSpace(id)
	if id == "" {
		return entity.CoinView{}, fmt.Errorf("%w: coin id cannot be empty", entity.ErrInvalidQuery)
	}
	timeRange, err := entity.ParseTimeRange(string(timeRange))
	if err != nil {
		return entity.CoinView{}, err
	}

	view := entity.CoinView{Range: timeRange}
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		detail, err := s.client.GetCoin(gctx, id)
		if err != nil {
			return fmt.Errorf("failed to fetch coin %s: %w", id, err)
		}
		view.Detail = detail
		return nil
	})
	g.Go(func() error {
		chart, err := s.client.GetMarketChart(gctx, id, s.defaultQuery.VsCurrency, timeRange)
		if err != nil {
			return fmt.Errorf("failed to fetch %s-day chart of %s: %w", timeRange, id, err)
		}
		view.Chart = chart
		return nil
	})
	if err := g.Wait(); err != nil {
		s.logger.Warn("Coin view unavailable", "id", id, "range", string(timeRange), "error", err)
		return entity.CoinView{}, err
	}
	return view, nil
}

// FindInMarkets implements port.MarketService.
func (s *MarketServiceImpl) FindInMarkets(ctx context.Context, id string) (entity.MarketSnapshotItem, error) {
	state := s.Markets(ctx, s.defaultQuery)
	if !state.HasData && state.Error != "" {
		return entity.MarketSnapshotItem{}, fmt.Errorf("market data unavailable: %s", state.Error)
	}
	for _, item := range state.Data {
		if item.ID == id {
			return item, nil
		}
	}
	return entity.MarketSnapshotItem{}, fmt.Errorf("%w: %s", entity.ErrCoinNotFound, id)
}

// FilterMarkets keeps the items whose name or symbol contains search, ignoring case.
func FilterMarkets(items []entity.MarketSnapshotItem, search string) []entity.MarketSnapshotItem {
	search = strings.ToLower(strings.TrimSpace(search))
	if search == "" {
		return items
	}
	return utils.Filter(items, func(item entity.MarketSnapshotItem) bool {
		return strings.Contains(strings.ToLower(item.Name), search) ||
			strings.Contains(strings.ToLower(item.Symbol), search)
	})
}

var _ port.MarketService = (*MarketServiceImpl)(nil)
