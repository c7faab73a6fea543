package service

import (
	"context"
	"fmt"
	"math"
	"strconv"
	"strings"
	"sync"
	"time"

	"crypto_dashboard/internal/app/port"
	"crypto_dashboard/internal/domain/entity"
	"crypto_dashboard/internal/infrastructure/metrics"

	jsoniter "github.com/json-iterator/go"
	"github.com/shopspring/decimal"
)

var json = jsoniter.ConfigCompatibleWithStandardLibrary

// DefaultPortfolioKey is the storage key the serialized portfolio lives under.
const DefaultPortfolioKey = "cryptoPortfolio"

const storeTimeout = 5 * time.Second

// PortfolioOption configures a PortfolioServiceImpl.
type PortfolioOption func(*PortfolioServiceImpl)

// WithStorageKey overrides DefaultPortfolioKey.
func WithStorageKey(key string) PortfolioOption {
	return func(s *PortfolioServiceImpl) {
		if key != "" {
			s.key = key
		}
	}
}

// WithClock sets the time source used for AddedAt and LastUpdated.
func WithClock(now func() time.Time) PortfolioOption {
	return func(s *PortfolioServiceImpl) {
		if now != nil {
			s.now = now
		}
	}
}

// PortfolioServiceImpl implements port.PortfolioService.
// Every mutation is written through to the store before it becomes visible in memory.
type PortfolioServiceImpl struct {
	store    port.KeyValueStore
	logger   port.Logger
	key      string
	now      func() time.Time
	holdings []entity.HoldingEntry
	mu       sync.RWMutex
}

// NewPortfolioService creates the portfolio and hydrates it from store.
func NewPortfolioService(store port.KeyValueStore, l port.Logger, opts ...PortfolioOption) *PortfolioServiceImpl {
	s := &PortfolioServiceImpl{
		store:  store,
		logger: l.With("component", "PortfolioService"),
		key:    DefaultPortfolioKey,
		now:    func() time.Time { return time.Now().UTC() },
	}
	for _, opt := range opts {
		opt(s)
	}
	s.hydrate()
	return s
}

// hydrate loads the persisted collection. Any failure leaves the portfolio empty.
func (s *PortfolioServiceImpl) hydrate() {
	s.holdings = []entity.HoldingEntry{}

	ctx, cancel := context.WithTimeout(context.Background(), storeTimeout)
	defer cancel()

	raw, ok, err := s.store.Get(ctx, s.key)
	if err != nil {
		s.logger.Warn("Failed to read persisted portfolio, starting empty", "key", s.key, "error", err)
		return
	}
	if !ok {
		s.logger.Debug("No persisted portfolio found", "key", s.key)
		return
	}

	var persisted []entity.HoldingEntry
	if err := json.Unmarshal([]byte(raw), &persisted); err != nil {
		s.logger.Warn("Error parsing persisted portfolio, starting empty", "key", s.key, "error", err)
		return
	}

	seen := make(map[string]struct{}, len(persisted))
	for _, h := range persisted {
		if _, dup := seen[h.ID]; dup {
			s.logger.Warn("Dropping duplicate holding from persisted portfolio", "id", h.ID)
			continue
		}
		seen[h.ID] = struct{}{}
		s.holdings = append(s.holdings, h)
	}
	s.logger.Info("Portfolio hydrated", "key", s.key, "holdings", len(s.holdings))
	s.observe(s.holdings)
}

// commit persists next and, on success, makes it the current collection. Callers hold mu.
func (s *PortfolioServiceImpl) commit(next []entity.HoldingEntry) error {
	data, err := json.Marshal(next)
	if err != nil {
		return fmt.Errorf("failed to serialize portfolio: %w", err)
	}

	ctx, cancel := context.WithTimeout(context.Background(), storeTimeout)
	defer cancel()
	if err := s.store.Set(ctx, s.key, string(data)); err != nil {
		s.logger.Error("Failed to persist portfolio", "key", s.key, "error", err)
		return fmt.Errorf("failed to persist portfolio: %w", err)
	}

	s.holdings = next
	s.observe(next)
	return nil
}

func (s *PortfolioServiceImpl) observe(holdings []entity.HoldingEntry) {
	metrics.PortfolioHoldings.Set(float64(len(holdings)))
	metrics.PortfolioValueUSD.Set(totalValue(holdings))
}

func (s *PortfolioServiceImpl) indexOf(id string) int {
	for i, h := range s.holdings {
		if h.ID == id {
			return i
		}
	}
	return -1
}

func (s *PortfolioServiceImpl) cloneHoldings() []entity.HoldingEntry {
	out := make([]entity.HoldingEntry, len(s.holdings))
	copy(out, s.holdings)
	return out
}

// AddOrIncrement implements port.PortfolioService.
func (s *PortfolioServiceImpl) AddOrIncrement(item entity.MarketSnapshotItem) (entity.HoldingEntry, error) {
	if strings.TrimSpace(item.ID) == "" {
		return entity.HoldingEntry{}, fmt.Errorf("cannot add an asset without id")
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	now := s.now()
	next := s.cloneHoldings()

	var entry entity.HoldingEntry
	if i := s.indexOf(item.ID); i >= 0 {
		entry = next[i]
		entry.Quantity++
		entry.CurrentPrice = item.CurrentPrice
		entry.LastUpdated = now
		next[i] = entry
	} else {
		entry = entity.HoldingEntry{
			ID:           item.ID,
			Symbol:       item.Symbol,
			Name:         item.Name,
			Image:        item.Image,
			CurrentPrice: item.CurrentPrice,
			Quantity:     1,
			AddedAt:      now,
			LastUpdated:  now,
		}
		next = append(next, entry)
	}

	if err := s.commit(next); err != nil {
		return entity.HoldingEntry{}, err
	}
	s.logger.Info("Holding added", "id", entry.ID, "quantity", entry.Quantity, "price", entry.CurrentPrice)
	return entry, nil
}

// Remove implements port.PortfolioService.
func (s *PortfolioServiceImpl) Remove(id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	i := s.indexOf(id)
	if i < 0 {
		s.logger.Debug("Remove of absent holding ignored", "id", id)
		return nil
	}

	next := make([]entity.HoldingEntry, 0, len(s.holdings)-1)
	next = append(next, s.holdings[:i]...)
	next = append(next, s.holdings[i+1:]...)
	if err := s.commit(next); err != nil {
		return err
	}
	s.logger.Info("Holding removed", "id", id)
	return nil
}

// SetQuantity implements port.PortfolioService.
func (s *PortfolioServiceImpl) SetQuantity(id string, raw string) error {
	quantity, ok := parseQuantity(raw)
	if !ok {
		s.logger.Debug("Rejected quantity input", "id", id, "input", raw)
		return nil
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	i := s.indexOf(id)
	if i < 0 {
		s.logger.Debug("Quantity update for absent holding ignored", "id", id)
		return nil
	}

	next := s.cloneHoldings()
	next[i].Quantity = quantity
	next[i].LastUpdated = s.now()
	if err := s.commit(next); err != nil {
		return err
	}
	s.logger.Info("Holding quantity updated", "id", id, "quantity", quantity)
	return nil
}

// parseQuantity accepts finite, non-negative decimal numbers.
func parseQuantity(raw string) (float64, bool) {
	q, err := strconv.ParseFloat(strings.TrimSpace(raw), 64)
	if err != nil || math.IsNaN(q) || math.IsInf(q, 0) || q < 0 {
		return 0, false
	}
	return q, true
}

// Clear implements port.PortfolioService.
func (s *PortfolioServiceImpl) Clear() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.commit([]entity.HoldingEntry{}); err != nil {
		return err
	}
	s.logger.Info("Portfolio cleared")
	return nil
}

// Holdings implements port.PortfolioService.
func (s *PortfolioServiceImpl) Holdings() []entity.HoldingEntry {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.cloneHoldings()
}

// Get implements port.PortfolioService.
func (s *PortfolioServiceImpl) Get(id string) (entity.HoldingEntry, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if i := s.indexOf(id); i >= 0 {
		return s.holdings[i], true
	}
	return entity.HoldingEntry{}, false
}

// TotalValue implements port.PortfolioService.
func (s *PortfolioServiceImpl) TotalValue() float64 {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return totalValue(s.holdings)
}

// Summary implements port.PortfolioService.
func (s *PortfolioServiceImpl) Summary() entity.PortfolioSummary {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return entity.PortfolioSummary{
		Holdings:      s.cloneHoldings(),
		HoldingsCount: len(s.holdings),
		TotalValueUSD: totalValue(s.holdings),
	}
}

func totalValue(holdings []entity.HoldingEntry) float64 {
	total := decimal.Zero
	for _, h := range holdings {
		total = total.Add(decimal.NewFromFloat(h.CurrentPrice).Mul(decimal.NewFromFloat(h.Quantity)))
	}
	return total.InexactFloat64()
}

var _ port.PortfolioService = (*PortfolioServiceImpl)(nil)
