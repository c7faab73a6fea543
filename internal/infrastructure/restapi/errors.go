package restapi

import (
	"errors"
	"net/http"

	"crypto_dashboard/internal/domain/entity"
	"crypto_dashboard/internal/infrastructure/httpclient"

	"github.com/gin-gonic/gin"
)

var errBadRequest = errors.New("bad request")

// APIErrorResponse is the body of every non-2xx response.
type APIErrorResponse struct {
	Error string `json:"error"`
}

// statusFor maps err to an HTTP status. fallback is used for errors of no known kind.
func statusFor(err error, fallback int) int {
	var apiErr *httpclient.APIError
	switch {
	case errors.Is(err, errBadRequest), errors.Is(err, entity.ErrInvalidQuery), errors.Is(err, entity.ErrInvalidTimeRange):
		return http.StatusBadRequest
	case errors.Is(err, entity.ErrCoinNotFound), errors.Is(err, entity.ErrHoldingNotFound):
		return http.StatusNotFound
	case errors.As(err, &apiErr):
		if apiErr.StatusCode == http.StatusNotFound {
			return http.StatusNotFound
		}
		return http.StatusBadGateway
	default:
		return fallback
	}
}

func abortWithError(c *gin.Context, err error, fallback int) {
	_ = c.Error(err)
	c.AbortWithStatusJSON(statusFor(err, fallback), APIErrorResponse{Error: err.Error()})
}
