package service

import (
	"context"
	"fmt"
	"sync"
	"time"

	"crypto_dashboard/internal/app/port"
	"crypto_dashboard/internal/domain/entity"

	"github.com/patrickmn/go-cache"
	"golang.org/x/sync/errgroup"
)

const (
	overviewKey       = "overview"
	marketsKeyPrefix  = "markets?"
	minCleanupPeriod  = 10 * time.Millisecond
	defaultIdleWindow = 5 * time.Minute
	refreshTimeout    = 30 * time.Second
)

// RegistryConfig holds the polling settings of the market views.
type RegistryConfig struct {
	ListInterval     time.Duration
	OverviewInterval time.Duration
	IdleTimeout      time.Duration
	FeaturedCount    int
	VsCurrency       string
}

type stoppable interface {
	Stop()
}

// PollerRegistry owns one running poller per distinct query.
// A poller nobody has asked for within the idle timeout is evicted and stopped.
type PollerRegistry struct {
	client port.MarketDataClient
	logger port.Logger
	cfg    RegistryConfig

	ctx     context.Context
	cancel  context.CancelFunc
	pollers *cache.Cache
	mu      sync.Mutex
	closed  bool
}

// cycleContext returns a context for an on-demand cycle that outlives the caller's request.
func (r *PollerRegistry) cycleContext() (context.Context, context.CancelFunc) {
	return context.WithTimeout(r.ctx, refreshTimeout)
}

// NewPollerRegistry creates an empty registry. Pollers are bound to ctx.
func NewPollerRegistry(ctx context.Context, client port.MarketDataClient, cfg RegistryConfig, l port.Logger) *PollerRegistry {
	if cfg.IdleTimeout <= 0 {
		cfg.IdleTimeout = defaultIdleWindow
	}
	if cfg.FeaturedCount <= 0 {
		cfg.FeaturedCount = 6
	}
	if cfg.VsCurrency == "" {
		cfg.VsCurrency = "usd"
	}
	cleanup := cfg.IdleTimeout / 2
	if cleanup < minCleanupPeriod {
		cleanup = minCleanupPeriod
	}

	runCtx, cancel := context.WithCancel(ctx)
	r := &PollerRegistry{
		client:  client,
		logger:  l.With("component", "PollerRegistry"),
		cfg:     cfg,
		ctx:     runCtx,
		cancel:  cancel,
		pollers: cache.New(cfg.IdleTimeout, cleanup),
	}
	r.pollers.OnEvicted(func(key string, v interface{}) {
		if p, ok := v.(stoppable); ok {
			p.Stop()
		}
		r.logger.Debug("Poller evicted", "key", key)
	})
	return r
}

// Markets returns the running poller of the list query.
func (r *PollerRegistry) Markets(query entity.MarketsQuery) *Poller[[]entity.MarketSnapshotItem] {
	key := marketsKeyPrefix + query.Encode()
	return obtain(r, key, func() *Poller[[]entity.MarketSnapshotItem] {
		return NewPoller(key, r.marketsFetcher(query), r.cfg.ListInterval, r.logger)
	})
}

// Overview returns the running poller of the featured assets and global stats.
func (r *PollerRegistry) Overview() *Poller[entity.MarketOverview] {
	return obtain(r, overviewKey, func() *Poller[entity.MarketOverview] {
		return NewPoller(overviewKey, r.overviewFetcher(), r.cfg.OverviewInterval, r.logger)
	})
}

// Len returns the number of live pollers.
func (r *PollerRegistry) Len() int {
	return r.pollers.ItemCount()
}

// Close stops every poller. Pollers obtained afterwards are never started.
func (r *PollerRegistry) Close() {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.closed {
		return
	}
	r.closed = true

	r.pollers.DeleteExpired()
	for key := range r.pollers.Items() {
		r.pollers.Delete(key)
	}
	r.cancel()
	r.logger.Info("Poller registry closed")
}

// obtain returns the cached poller under key or creates and starts one.
// Every call pushes the idle deadline of the entry forward.
func obtain[T any](r *PollerRegistry, key string, create func() *Poller[T]) *Poller[T] {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.closed {
		return create()
	}

	if v, ok := r.pollers.Get(key); ok {
		if p, ok := v.(*Poller[T]); ok && p.Running() {
			r.pollers.SetDefault(key, p)
			return p
		}
	}
	// An expired entry may still be waiting for the janitor.
	r.pollers.Delete(key)

	p := create()
	p.Start(r.ctx)
	r.pollers.SetDefault(key, p)
	r.logger.Debug("Poller created", "key", key)
	return p
}

func (r *PollerRegistry) marketsFetcher(query entity.MarketsQuery) FetchFunc[[]entity.MarketSnapshotItem] {
	return func(ctx context.Context) ([]entity.MarketSnapshotItem, error) {
		return r.client.ListMarkets(ctx, query)
	}
}

func (r *PollerRegistry) overviewFetcher() FetchFunc[entity.MarketOverview] {
	featured := entity.DefaultMarketsQuery()
	featured.VsCurrency = r.cfg.VsCurrency
	featured.PerPage = r.cfg.FeaturedCount

	return func(ctx context.Context) (entity.MarketOverview, error) {
		var overview entity.MarketOverview
		g, gctx := errgroup.WithContext(ctx)
		g.Go(func() error {
			items, err := r.client.ListMarkets(gctx, featured)
			if err != nil {
				return fmt.Errorf("failed to fetch featured assets: %w", err)
			}
			overview.Featured = items
			return nil
		})
		g.Go(func() error {
			global, err := r.client.GetGlobal(gctx)
			if err != nil {
				return fmt.Errorf("failed to fetch global stats: %w", err)
			}
			overview.Global = global
			return nil
		})
		if err := g.Wait(); err != nil {
			return entity.MarketOverview{}, err
		}
		return overview, nil
	}
}
