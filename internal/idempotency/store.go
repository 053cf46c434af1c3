package idempotency

import (
	"context"
	"time"

	"github.com/redis/go-redis/v9"
)

// Store marks consumed integration events so at-least-once delivery does not
// run a handler twice for the same event id
type Store interface {
	// MarkProcessed returns true if the key was newly marked, false if it was
	// already processed
	MarkProcessed(ctx context.Context, key string, ttl time.Duration) (bool, error)
}

// RedisStore marks processed events with SETNX and a TTL
type RedisStore struct {
	client *redis.Client
	prefix string
}

// NewRedisStore creates a new redis-backed idempotency store
func NewRedisStore(client *redis.Client, prefix string) *RedisStore {
	if prefix == "" {
		prefix = "inventory:processed:"
	}
	return &RedisStore{client: client, prefix: prefix}
}

func (s *RedisStore) MarkProcessed(ctx context.Context, key string, ttl time.Duration) (bool, error) {
	return s.client.SetNX(ctx, s.prefix+key, "1", ttl).Result()
}

// NoopStore never deduplicates. Used when Redis is not configured; the
// handlers themselves stay idempotent, dedup only saves the round trips.
type NoopStore struct{}

func (NoopStore) MarkProcessed(ctx context.Context, key string, ttl time.Duration) (bool, error) {
	return true, nil
}
