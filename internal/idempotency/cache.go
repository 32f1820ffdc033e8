package idempotency

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/go-redis/redis/v8"
)

// Cache maps (user id, client-supplied key) to the checkout response that
// was previously returned for it. Entries expire after a fixed window;
// callers must treat any error here as a miss (fail open) so an unreachable
// cache never blocks checkout.
type Cache struct {
	rdb *redis.Client
	ttl time.Duration
}

// NewCache creates a Redis-backed idempotency cache
func NewCache(addr, password string, db int, ttl time.Duration) (*Cache, error) {
	rdb := redis.NewClient(&redis.Options{
		Addr:     addr,
		Password: password,
		DB:       db,
	})

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := rdb.Ping(ctx).Err(); err != nil {
		return nil, fmt.Errorf("redis ping failed: %w", err)
	}

	return &Cache{rdb: rdb, ttl: ttl}, nil
}

// Close closes the Redis connection
func (c *Cache) Close() error {
	return c.rdb.Close()
}

func cacheKey(userID, key string) string {
	return fmt.Sprintf("idempotency:%s:%s", userID, key)
}

// Get looks up a previously stored response for the key. The second return
// is false on a miss (including expired entries).
func (c *Cache) Get(ctx context.Context, userID, key string, out interface{}) (bool, error) {
	raw, err := c.rdb.Get(ctx, cacheKey(userID, key)).Bytes()
	if err == redis.Nil {
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("idempotency get failed: %w", err)
	}

	if err := json.Unmarshal(raw, out); err != nil {
		return false, fmt.Errorf("idempotency decode failed: %w", err)
	}
	return true, nil
}

// Put stores the response under the key with the configured TTL. Existing
// entries are never overwritten: the first response for a key wins.
func (c *Cache) Put(ctx context.Context, userID, key string, response interface{}) error {
	raw, err := json.Marshal(response)
	if err != nil {
		return fmt.Errorf("idempotency encode failed: %w", err)
	}

	if err := c.rdb.SetNX(ctx, cacheKey(userID, key), raw, c.ttl).Err(); err != nil {
		return fmt.Errorf("idempotency put failed: %w", err)
	}
	return nil
}
