package service

import (
	"context"
	"sync"

	"crypto_dashboard/internal/app/port"
	"crypto_dashboard/internal/domain/entity"
)

// DetailState is the current selection of the detail view and what has been loaded for it.
type DetailState struct {
	ID      string           `json:"id"`
	Range   entity.TimeRange `json:"range"`
	View    entity.CoinView  `json:"view"`
	HasData bool             `json:"hasData"`
	Loading bool             `json:"loading"`
	Error   string           `json:"error,omitempty"`
}

// DetailTracker holds the single detail view selection.
// A fetch result is applied only if no newer selection was made while it ran.
type DetailTracker struct {
	markets port.MarketService
	logger  port.Logger

	mu    sync.Mutex
	seq   uint64
	state DetailState
}

// NewDetailTracker creates a tracker with nothing selected.
func NewDetailTracker(markets port.MarketService, l port.Logger) *DetailTracker {
	return &DetailTracker{
		markets: markets,
		logger:  l.With("component", "DetailTracker"),
	}
}

// Select makes (id, timeRange) the current selection and fetches it.
// The returned bool is false when a newer selection superseded this one before it completed;
// the state is then left to the newer selection. The fetch error is returned either way.
func (t *DetailTracker) Select(ctx context.Context, id string, timeRange entity.TimeRange) (DetailState, bool, error) {
	if timeRange == "" {
		timeRange = entity.DefaultTimeRange
	}

	t.mu.Lock()
	t.seq++
	seq := t.seq
	if t.state.ID != id {
		t.state.View = entity.CoinView{}
		t.state.HasData = false
	}
	t.state.ID = id
	t.state.Range = timeRange
	t.state.Loading = true
	t.state.Error = ""
	t.mu.Unlock()

	view, err := t.markets.Coin(ctx, id, timeRange)

	t.mu.Lock()
	defer t.mu.Unlock()
	if seq != t.seq {
		t.logger.Debug("Discarding stale detail result", "id", id, "range", string(timeRange))
		return t.state, false, err
	}

	t.state.Loading = false
	if err != nil {
		t.state.Error = err.Error()
		return t.state, true, err
	}
	t.state.View = view
	t.state.HasData = true
	return t.state, true, nil
}

// State returns the current selection state.
func (t *DetailTracker) State() DetailState {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.state
}
