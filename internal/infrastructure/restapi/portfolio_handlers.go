package restapi

import (
	"fmt"
	"net/http"
	"strings"

	"crypto_dashboard/internal/app/port"
	"crypto_dashboard/internal/domain/entity"

	"github.com/gin-gonic/gin"
	jsoniter "github.com/json-iterator/go"
)

var json = jsoniter.ConfigCompatibleWithStandardLibrary

// setQuantityRequest accepts the quantity as a string or a JSON number.
type setQuantityRequest struct {
	Quantity any `json:"quantity"`
}

// PortfolioHandler handles HTTP requests on the portfolio.
type PortfolioHandler struct {
	portfolio port.PortfolioService
	markets   port.MarketService
	logger    port.Logger
}

// NewPortfolioHandler creates a new PortfolioHandler.
func NewPortfolioHandler(ps port.PortfolioService, ms port.MarketService, l port.Logger) *PortfolioHandler {
	return &PortfolioHandler{
		portfolio: ps,
		markets:   ms,
		logger:    l.With("component", "PortfolioHandler"),
	}
}

// GetPortfolioHandler returns the holdings with their count and total value.
func (h *PortfolioHandler) GetPortfolioHandler(c *gin.Context) {
	c.JSON(http.StatusOK, h.portfolio.Summary())
}

// AddHoldingHandler adds an asset or increments its quantity.
// A body carrying only an id is resolved against the default markets snapshot.
func (h *PortfolioHandler) AddHoldingHandler(c *gin.Context) {
	var item entity.MarketSnapshotItem
	if err := json.NewDecoder(c.Request.Body).Decode(&item); err != nil {
		abortWithError(c, fmt.Errorf("%w: malformed body: %v", errBadRequest, err), http.StatusBadRequest)
		return
	}
	item.ID = strings.TrimSpace(item.ID)
	if item.ID == "" {
		abortWithError(c, fmt.Errorf("%w: id is required", errBadRequest), http.StatusBadRequest)
		return
	}

	if item.Name == "" {
		found, err := h.markets.FindInMarkets(c.Request.Context(), item.ID)
		if err != nil {
			abortWithError(c, err, http.StatusBadGateway)
			return
		}
		item = found
	}

	entry, err := h.portfolio.AddOrIncrement(item)
	if err != nil {
		abortWithError(c, err, http.StatusInternalServerError)
		return
	}
	c.JSON(http.StatusCreated, entry)
}

// SetQuantityHandler sets the quantity of a holding. Unparsable or negative input leaves it unchanged.
func (h *PortfolioHandler) SetQuantityHandler(c *gin.Context) {
	id := c.Param("id")
	if _, ok := h.portfolio.Get(id); !ok {
		abortWithError(c, fmt.Errorf("%w: %s", entity.ErrHoldingNotFound, id), http.StatusNotFound)
		return
	}

	var req setQuantityRequest
	if err := json.NewDecoder(c.Request.Body).Decode(&req); err != nil {
		abortWithError(c, fmt.Errorf("%w: malformed body: %v", errBadRequest, err), http.StatusBadRequest)
		return
	}

	raw := ""
	if req.Quantity != nil {
		raw = fmt.Sprint(req.Quantity)
	}
	if err := h.portfolio.SetQuantity(id, raw); err != nil {
		abortWithError(c, err, http.StatusInternalServerError)
		return
	}

	entry, ok := h.portfolio.Get(id)
	if !ok {
		// removed concurrently
		abortWithError(c, fmt.Errorf("%w: %s", entity.ErrHoldingNotFound, id), http.StatusNotFound)
		return
	}
	c.JSON(http.StatusOK, entry)
}

// RemoveHoldingHandler removes a holding. Removing an absent id succeeds.
func (h *PortfolioHandler) RemoveHoldingHandler(c *gin.Context) {
	if err := h.portfolio.Remove(c.Param("id")); err != nil {
		abortWithError(c, err, http.StatusInternalServerError)
		return
	}
	c.Status(http.StatusNoContent)
}

// ClearPortfolioHandler removes every holding.
func (h *PortfolioHandler) ClearPortfolioHandler(c *gin.Context) {
	if err := h.portfolio.Clear(); err != nil {
		abortWithError(c, err, http.StatusInternalServerError)
		return
	}
	h.logger.Info("Portfolio cleared via API")
	c.Status(http.StatusNoContent)
}
