package entity

import "errors"

var (
	// ErrHoldingNotFound is returned when a holding id is not in the portfolio.
	ErrHoldingNotFound = errors.New("holding not found")
	// ErrCoinNotFound is returned when a coin id is not part of the current market snapshot.
	ErrCoinNotFound = errors.New("coin not found in market snapshot")
	// ErrInvalidTimeRange is returned for a chart range outside of 1, 7, 30 and 365 days.
	ErrInvalidTimeRange = errors.New("invalid time range")
	// ErrInvalidQuery is returned when a markets query override cannot be parsed.
	ErrInvalidQuery = errors.New("invalid markets query")
)
