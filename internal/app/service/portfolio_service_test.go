package service

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"crypto_dashboard/internal/domain/entity"
	"crypto_dashboard/internal/infrastructure/kvstore"
	"crypto_dashboard/internal/pkg/logger"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

// MockKeyValueStore is a mock implementation of port.KeyValueStore for testing
type MockKeyValueStore struct {
	mock.Mock
}

func (m *MockKeyValueStore) Get(ctx context.Context, key string) (string, bool, error) {
	args := m.Called(ctx, key)
	return args.String(0), args.Bool(1), args.Error(2)
}

func (m *MockKeyValueStore) Set(ctx context.Context, key string, value string) error {
	args := m.Called(ctx, key, value)
	return args.Error(0)
}

type fakeClock struct {
	now time.Time
}

func (c *fakeClock) Now() time.Time { return c.now }

func (c *fakeClock) Advance(d time.Duration) { c.now = c.now.Add(d) }

func snapshot(id string, price float64) entity.MarketSnapshotItem {
	return entity.MarketSnapshotItem{
		ID:           id,
		Symbol:       id[:3],
		Name:         id,
		Image:        "https://img/" + id + ".png",
		CurrentPrice: price,
	}
}

func newPortfolio(t *testing.T) (*PortfolioServiceImpl, *fakeClock) {
	t.Helper()
	clock := &fakeClock{now: time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC)}
	return NewPortfolioService(kvstore.NewMemoryStore(), logger.NewNop(), WithClock(clock.Now)), clock
}

func TestAddOrIncrement_NewThenExisting(t *testing.T) {
	p, clock := newPortfolio(t)

	first, err := p.AddOrIncrement(snapshot("bitcoin", 60000))
	require.NoError(t, err)
	assert.Equal(t, 1.0, first.Quantity)
	assert.Equal(t, 60000.0, first.CurrentPrice)
	assert.Equal(t, first.AddedAt, first.LastUpdated)

	clock.Advance(time.Minute)
	second, err := p.AddOrIncrement(snapshot("bitcoin", 61000))
	require.NoError(t, err)

	assert.Equal(t, 2.0, second.Quantity)
	assert.Equal(t, 61000.0, second.CurrentPrice)
	assert.Equal(t, first.AddedAt, second.AddedAt, "addedAt must not change on increment")
	assert.True(t, second.LastUpdated.After(second.AddedAt))
	assert.Len(t, p.Holdings(), 1)
}

func TestAddOrIncrement_RepeatedKeepsLastPrice(t *testing.T) {
	p, _ := newPortfolio(t)

	prices := []float64{10, 12, 9, 11}
	for _, price := range prices {
		_, err := p.AddOrIncrement(snapshot("cardano", price))
		require.NoError(t, err)
	}

	h, ok := p.Get("cardano")
	require.True(t, ok)
	assert.Equal(t, float64(len(prices)), h.Quantity)
	assert.Equal(t, 11.0, h.CurrentPrice)
}

func TestAddOrIncrement_RejectsEmptyID(t *testing.T) {
	p, _ := newPortfolio(t)

	_, err := p.AddOrIncrement(entity.MarketSnapshotItem{Name: "nameless"})
	assert.Error(t, err)
	assert.Empty(t, p.Holdings())
}

func TestAddOrIncrement_PreservesInsertionOrder(t *testing.T) {
	p, _ := newPortfolio(t)

	for _, id := range []string{"bitcoin", "ethereum", "solana"} {
		_, err := p.AddOrIncrement(snapshot(id, 1))
		require.NoError(t, err)
	}
	_, err := p.AddOrIncrement(snapshot("bitcoin", 2))
	require.NoError(t, err)

	var ids []string
	for _, h := range p.Holdings() {
		ids = append(ids, h.ID)
	}
	assert.Equal(t, []string{"bitcoin", "ethereum", "solana"}, ids)
}

func TestRemove_IsIdempotent(t *testing.T) {
	p, _ := newPortfolio(t)
	_, err := p.AddOrIncrement(snapshot("bitcoin", 100))
	require.NoError(t, err)
	_, err = p.AddOrIncrement(snapshot("ethereum", 50))
	require.NoError(t, err)

	require.NoError(t, p.Remove("bitcoin"))
	require.NoError(t, p.Remove("bitcoin"))
	require.NoError(t, p.Remove("dogecoin"))

	holdings := p.Holdings()
	require.Len(t, holdings, 1)
	assert.Equal(t, "ethereum", holdings[0].ID)
}

func TestSetQuantity(t *testing.T) {
	p, clock := newPortfolio(t)
	_, err := p.AddOrIncrement(snapshot("bitcoin", 100))
	require.NoError(t, err)

	clock.Advance(time.Hour)
	require.NoError(t, p.SetQuantity("bitcoin", " 2.5 "))
	h, _ := p.Get("bitcoin")
	assert.Equal(t, 2.5, h.Quantity)
	assert.Equal(t, clock.Now(), h.LastUpdated)

	require.NoError(t, p.SetQuantity("bitcoin", "0"))
	h, _ = p.Get("bitcoin")
	assert.Equal(t, 0.0, h.Quantity, "zero is accepted and the holding is kept")
	assert.Len(t, p.Holdings(), 1)
}

func TestSetQuantity_RejectsInvalidInput(t *testing.T) {
	p, _ := newPortfolio(t)
	_, err := p.AddOrIncrement(snapshot("bitcoin", 100))
	require.NoError(t, err)
	require.NoError(t, p.SetQuantity("bitcoin", "3"))

	for _, raw := range []string{"-1", "abc", "", "NaN", "Inf", "1e400", "12abc"} {
		require.NoError(t, p.SetQuantity("bitcoin", raw), raw)
		h, _ := p.Get("bitcoin")
		assert.Equal(t, 3.0, h.Quantity, "input %q must be ignored", raw)
	}
}

func TestSetQuantity_AbsentIDDoesNotWrite(t *testing.T) {
	store := new(MockKeyValueStore)
	store.On("Get", mock.Anything, DefaultPortfolioKey).Return("", false, nil)

	p := NewPortfolioService(store, logger.NewNop())
	require.NoError(t, p.SetQuantity("bitcoin", "2"))
	require.NoError(t, p.Remove("bitcoin"))

	store.AssertNotCalled(t, "Set", mock.Anything, mock.Anything, mock.Anything)
}

func TestClear(t *testing.T) {
	p, _ := newPortfolio(t)
	_, err := p.AddOrIncrement(snapshot("bitcoin", 100))
	require.NoError(t, err)

	require.NoError(t, p.Clear())
	assert.Empty(t, p.Holdings())
	assert.Zero(t, p.TotalValue())
}

func TestTotalValue(t *testing.T) {
	p, _ := newPortfolio(t)
	assert.Zero(t, p.TotalValue())

	_, err := p.AddOrIncrement(snapshot("bitcoin", 100))
	require.NoError(t, err)
	_, err = p.AddOrIncrement(snapshot("bitcoin", 100))
	require.NoError(t, err)
	_, err = p.AddOrIncrement(snapshot("ethereum", 50))
	require.NoError(t, err)

	assert.Equal(t, 250.0, p.TotalValue())

	summary := p.Summary()
	assert.Equal(t, 2, summary.HoldingsCount)
	assert.Equal(t, 250.0, summary.TotalValueUSD)
}

func TestTotalValue_DecimalSum(t *testing.T) {
	p, _ := newPortfolio(t)
	_, err := p.AddOrIncrement(snapshot("tether", 0.1))
	require.NoError(t, err)
	_, err = p.AddOrIncrement(snapshot("usd-coin", 0.2))
	require.NoError(t, err)

	assert.Equal(t, 0.3, p.TotalValue())
}

func TestHydrate_RoundTrip(t *testing.T) {
	store := kvstore.NewMemoryStore()
	first := NewPortfolioService(store, logger.NewNop())

	_, err := first.AddOrIncrement(snapshot("bitcoin", 100))
	require.NoError(t, err)
	_, err = first.AddOrIncrement(snapshot("ethereum", 50))
	require.NoError(t, err)
	require.NoError(t, first.SetQuantity("bitcoin", "2"))

	second := NewPortfolioService(store, logger.NewNop())
	assert.Equal(t, first.Holdings(), second.Holdings())
	assert.Equal(t, 250.0, second.TotalValue())
}

func TestHydrate_PersistedWireFormat(t *testing.T) {
	store := kvstore.NewMemoryStore()
	raw := `[{"id":"bitcoin","symbol":"btc","name":"Bitcoin","image":"","current_price":100,"quantity":2,"addedAt":"2024-03-01T12:00:00Z","last_updated":"2024-03-01T12:00:00Z"}]`
	require.NoError(t, store.Set(context.Background(), DefaultPortfolioKey, raw))

	p := NewPortfolioService(store, logger.NewNop())
	h, ok := p.Get("bitcoin")
	require.True(t, ok)
	assert.Equal(t, 2.0, h.Quantity)
	assert.Equal(t, 200.0, p.TotalValue())
}

func TestHydrate_InvalidPayloadStartsEmpty(t *testing.T) {
	for name, raw := range map[string]string{
		"malformed":   "{not json",
		"wrong shape": `{"id":"bitcoin"}`,
	} {
		t.Run(name, func(t *testing.T) {
			store := kvstore.NewMemoryStore()
			require.NoError(t, store.Set(context.Background(), DefaultPortfolioKey, raw))

			p := NewPortfolioService(store, logger.NewNop())
			assert.Empty(t, p.Holdings())
			assert.Zero(t, p.TotalValue())
		})
	}
}

func TestHydrate_DropsDuplicates(t *testing.T) {
	store := kvstore.NewMemoryStore()
	raw := `[{"id":"bitcoin","current_price":100,"quantity":1},{"id":"bitcoin","current_price":5,"quantity":9}]`
	require.NoError(t, store.Set(context.Background(), DefaultPortfolioKey, raw))

	p := NewPortfolioService(store, logger.NewNop())
	require.Len(t, p.Holdings(), 1)
	assert.Equal(t, 100.0, p.TotalValue())
}

func TestHydrate_StoreReadErrorStartsEmpty(t *testing.T) {
	store := new(MockKeyValueStore)
	store.On("Get", mock.Anything, DefaultPortfolioKey).Return("", false, errors.New("disk unavailable"))

	p := NewPortfolioService(store, logger.NewNop())
	assert.Empty(t, p.Holdings())
	store.AssertExpectations(t)
}

func TestHydrate_CorruptFileRecoversOnWrite(t *testing.T) {
	path := filepath.Join(t.TempDir(), "portfolio.json")
	require.NoError(t, os.WriteFile(path, []byte("{not json"), 0o600))

	p := NewPortfolioService(kvstore.NewFileStore(path), logger.NewNop())
	assert.Empty(t, p.Holdings())

	_, err := p.AddOrIncrement(snapshot("bitcoin", 60000))
	require.NoError(t, err)

	restored := NewPortfolioService(kvstore.NewFileStore(path), logger.NewNop())
	require.Len(t, restored.Holdings(), 1)
	assert.Equal(t, "bitcoin", restored.Holdings()[0].ID)

	require.NoError(t, restored.Clear())
	assert.Empty(t, NewPortfolioService(kvstore.NewFileStore(path), logger.NewNop()).Holdings())
}

func TestStorageKeyOption(t *testing.T) {
	store := kvstore.NewMemoryStore()
	p := NewPortfolioService(store, logger.NewNop(), WithStorageKey("alt"))
	_, err := p.AddOrIncrement(snapshot("bitcoin", 1))
	require.NoError(t, err)

	_, ok, err := store.Get(context.Background(), "alt")
	require.NoError(t, err)
	assert.True(t, ok)
	_, ok, err = store.Get(context.Background(), DefaultPortfolioKey)
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestFailedWriteLeavesStateUnchanged(t *testing.T) {
	store := new(MockKeyValueStore)
	store.On("Get", mock.Anything, DefaultPortfolioKey).Return("", false, nil)
	store.On("Set", mock.Anything, DefaultPortfolioKey, mock.Anything).Return(nil).Once()
	store.On("Set", mock.Anything, DefaultPortfolioKey, mock.Anything).Return(errors.New("quota exceeded"))

	p := NewPortfolioService(store, logger.NewNop())
	_, err := p.AddOrIncrement(snapshot("bitcoin", 100))
	require.NoError(t, err)

	_, err = p.AddOrIncrement(snapshot("bitcoin", 200))
	assert.ErrorContains(t, err, "quota exceeded")
	assert.ErrorContains(t, p.Remove("bitcoin"), "quota exceeded")
	assert.Error(t, p.Clear())

	h, ok := p.Get("bitcoin")
	require.True(t, ok)
	assert.Equal(t, 1.0, h.Quantity)
	assert.Equal(t, 100.0, h.CurrentPrice)
	store.AssertExpectations(t)
}
