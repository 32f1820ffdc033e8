package idempotency

import (
	"context"
	"os"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type cachedResponse struct {
	OrderID  string `json:"orderId"`
	FawryURL string `json:"fawryUrl,omitempty"`
}

func testCache(t *testing.T) *Cache {
	t.Helper()

	addr := os.Getenv("TEST_REDIS_ADDR")
	if addr == "" {
		t.Skip("Integration test - set TEST_REDIS_ADDR to run")
	}

	c, err := NewCache(addr, "", 0, time.Minute)
	require.NoError(t, err)
	t.Cleanup(func() { c.Close() })
	return c
}

func TestCacheKeyScopedByUser(t *testing.T) {
	assert.Equal(t, "idempotency:u1:k1", cacheKey("u1", "k1"))
	assert.NotEqual(t, cacheKey("u1", "k1"), cacheKey("u2", "k1"))
}

func TestCacheMissThenHit(t *testing.T) {
	c := testCache(t)
	ctx := context.Background()
	userID, key := uuid.New().String(), uuid.New().String()

	var out cachedResponse
	found, err := c.Get(ctx, userID, key, &out)
	require.NoError(t, err)
	assert.False(t, found)

	stored := cachedResponse{OrderID: "order-1", FawryURL: "https://example.test/pay"}
	require.NoError(t, c.Put(ctx, userID, key, stored))

	found, err = c.Get(ctx, userID, key, &out)
	require.NoError(t, err)
	assert.True(t, found)
	assert.Equal(t, stored, out)
}

func TestCachePutDoesNotOverwrite(t *testing.T) {
	c := testCache(t)
	ctx := context.Background()
	userID, key := uuid.New().String(), uuid.New().String()

	require.NoError(t, c.Put(ctx, userID, key, cachedResponse{OrderID: "first"}))
	require.NoError(t, c.Put(ctx, userID, key, cachedResponse{OrderID: "second"}))

	var out cachedResponse
	found, err := c.Get(ctx, userID, key, &out)
	require.NoError(t, err)
	require.True(t, found)
	assert.Equal(t, "first", out.OrderID)
}

func TestCacheSameKeyDifferentUsers(t *testing.T) {
	c := testCache(t)
	ctx := context.Background()
	key := uuid.New().String()
	user1, user2 := uuid.New().String(), uuid.New().String()

	require.NoError(t, c.Put(ctx, user1, key, cachedResponse{OrderID: "order-u1"}))

	var out cachedResponse
	found, err := c.Get(ctx, user2, key, &out)
	require.NoError(t, err)
	assert.False(t, found, "a key stored for one user must not replay for another")
}
