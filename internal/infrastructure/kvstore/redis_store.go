package kvstore

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"crypto_dashboard/internal/app/port"

	"github.com/redis/go-redis/v9"
)

// Namespace prefixes every key written to Redis.
const Namespace = "cryptodash"

// RedisStore stores values as plain Redis strings under namespaced keys.
type RedisStore struct {
	client *redis.Client
}

// NewRedisStore connects to addr and verifies the connection with PING.
func NewRedisStore(ctx context.Context, addr string, db int) (*RedisStore, error) {
	client := redis.NewClient(&redis.Options{
		Addr: addr,
		DB:   db,
	})
	if err := client.Ping(ctx).Err(); err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("failed to connect to redis at %s: %w", addr, err)
	}
	return &RedisStore{client: client}, nil
}

var _ port.KeyValueStore = (*RedisStore)(nil)

func formatKey(key string) string {
	return strings.Join([]string{Namespace, strings.TrimSpace(key)}, ":")
}

// Get implements port.KeyValueStore.
func (s *RedisStore) Get(ctx context.Context, key string) (string, bool, error) {
	v, err := s.client.Get(ctx, formatKey(key)).Result()
	if errors.Is(err, redis.Nil) {
		return "", false, nil
	}
	if err != nil {
		return "", false, fmt.Errorf("redis GET %s: %w", formatKey(key), err)
	}
	return v, true, nil
}

// Set implements port.KeyValueStore.
func (s *RedisStore) Set(ctx context.Context, key string, value string) error {
	if err := s.client.Set(ctx, formatKey(key), value, 0).Err(); err != nil {
		return fmt.Errorf("redis SET %s: %w", formatKey(key), err)
	}
	return nil
}

// Close closes the underlying client.
func (s *RedisStore) Close() error {
	return s.client.Close()
}
