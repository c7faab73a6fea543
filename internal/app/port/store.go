package port

import "context"

// KeyValueStore is the persistent string store the portfolio is written to.
// It stands in for the browser's local storage: one key, one opaque string value.
type KeyValueStore interface {
	// Get returns the value stored under key and whether the key exists.
	Get(ctx context.Context, key string) (string, bool, error)
	// Set overwrites the value stored under key.
	Set(ctx context.Context, key string, value string) error
}
