package kvstore

import (
	"context"

	"crypto_dashboard/internal/app/port"

	"github.com/patrickmn/go-cache"
)

// MemoryStore is a process-local store. Values never expire.
type MemoryStore struct {
	items *cache.Cache
}

// NewMemoryStore creates an empty MemoryStore.
func NewMemoryStore() port.KeyValueStore {
	return &MemoryStore{items: cache.New(cache.NoExpiration, 0)}
}

// Get implements port.KeyValueStore.
func (s *MemoryStore) Get(_ context.Context, key string) (string, bool, error) {
	v, ok := s.items.Get(key)
	if !ok {
		return "", false, nil
	}
	return v.(string), true, nil
}

// Set implements port.KeyValueStore.
func (s *MemoryStore) Set(_ context.Context, key string, value string) error {
	s.items.Set(key, value, cache.NoExpiration)
	return nil
}
