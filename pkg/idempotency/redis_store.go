package idempotency

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/url"
	"time"

	"github.com/redis/go-redis/v9"
)

// RedisStore caches command outputs in Redis. Key parts are path-escaped
// before joining so that a request key containing the separator cannot
// collide with another slot.
type RedisStore struct {
	client *redis.Client
	ttl    time.Duration
}

// NewRedisStore creates a cache on client. A zero ttl keeps entries until
// an operator clears them; retention policy is a deployment concern.
func NewRedisStore(client *redis.Client, ttl time.Duration) *RedisStore {
	return &RedisStore{client: client, ttl: ttl}
}

func redisKey(key Key) string {
	return fmt.Sprintf("idem:%s:%s:%s",
		url.PathEscape(string(key.TenantID)),
		url.PathEscape(key.CommandName),
		url.PathEscape(key.RequestKey))
}

// Get implements Store.
func (s *RedisStore) Get(ctx context.Context, key Key) (json.RawMessage, bool, error) {
	raw, err := s.client.Get(ctx, redisKey(key)).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, fmt.Errorf("idempotency: redis get: %w", err)
	}
	return raw, true, nil
}

// Set implements Store.
func (s *RedisStore) Set(ctx context.Context, key Key, output json.RawMessage) error {
	if err := s.client.Set(ctx, redisKey(key), []byte(output), s.ttl).Err(); err != nil {
		return fmt.Errorf("idempotency: redis set: %w", err)
	}
	return nil
}
