package restapi

import (
	"errors"
	"net/http"

	"crypto_dashboard/internal/app/port"
	"crypto_dashboard/internal/app/service"
	"crypto_dashboard/internal/domain/entity"

	"github.com/gin-gonic/gin"
)

// Query parameters handled by the markets endpoint itself rather than forwarded upstream.
const (
	searchParam  = "search"
	refreshParam = "refresh"
)

var errSelectionSuperseded = errors.New("selection superseded by a newer request")

// MarketHandler handles HTTP requests on market data.
type MarketHandler struct {
	markets      port.MarketService
	tracker      *service.DetailTracker
	defaultQuery entity.MarketsQuery
	defaultRange entity.TimeRange
}

// MarketHandlerOption configures a MarketHandler.
type MarketHandlerOption func(*MarketHandler)

// WithDefaultRange sets the chart range used when a coin request has no days parameter.
func WithDefaultRange(r entity.TimeRange) MarketHandlerOption {
	return func(h *MarketHandler) { h.defaultRange = r }
}

// NewMarketHandler creates a new MarketHandler. Query overrides are applied on top of defaultQuery.
func NewMarketHandler(ms port.MarketService, tracker *service.DetailTracker, defaultQuery entity.MarketsQuery, opts ...MarketHandlerOption) *MarketHandler {
	h := &MarketHandler{
		markets:      ms,
		tracker:      tracker,
		defaultQuery: defaultQuery,
		defaultRange: entity.DefaultTimeRange,
	}
	for _, opt := range opts {
		opt(h)
	}
	return h
}

// GetMarketsHandler returns the polled state of the list query built from the request parameters.
func (h *MarketHandler) GetMarketsHandler(c *gin.Context) {
	overrides := make(map[string]string)
	for key, values := range c.Request.URL.Query() {
		if key == searchParam || key == refreshParam || len(values) == 0 {
			continue
		}
		overrides[key] = values[0]
	}

	query, err := h.defaultQuery.WithOverrides(overrides)
	if err != nil {
		abortWithError(c, err, http.StatusBadRequest)
		return
	}

	var state entity.PollState[[]entity.MarketSnapshotItem]
	if c.Query(refreshParam) == "1" || c.Query(refreshParam) == "true" {
		state = h.markets.RefreshMarkets(c.Request.Context(), query)
	} else {
		state = h.markets.Markets(c.Request.Context(), query)
	}
	state.Data = service.FilterMarkets(state.Data, c.Query(searchParam))
	if state.Data == nil {
		state.Data = []entity.MarketSnapshotItem{}
	}
	c.JSON(http.StatusOK, state)
}

// GetOverviewHandler returns the featured assets and global stats.
func (h *MarketHandler) GetOverviewHandler(c *gin.Context) {
	c.JSON(http.StatusOK, h.markets.Overview(c.Request.Context()))
}

// GetCoinHandler selects a coin for the detail view and returns its detail and chart.
func (h *MarketHandler) GetCoinHandler(c *gin.Context) {
	timeRange, err := entity.ParseTimeRange(c.DefaultQuery("days", string(h.defaultRange)))
	if err != nil {
		abortWithError(c, err, http.StatusBadRequest)
		return
	}

	state, current, err := h.tracker.Select(c.Request.Context(), c.Param("id"), timeRange)
	if !current {
		abortWithError(c, errSelectionSuperseded, http.StatusConflict)
		return
	}
	if err != nil {
		abortWithError(c, err, http.StatusBadGateway)
		return
	}
	c.JSON(http.StatusOK, state.View)
}

// GetSelectionHandler returns the current detail view selection.
func (h *MarketHandler) GetSelectionHandler(c *gin.Context) {
	c.JSON(http.StatusOK, h.tracker.State())
}
