package storage

import (
	"context"
	"testing"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// setupTestRedis creates a miniredis server and returns a RedisStore on top of it
func setupTestRedis(t *testing.T, prefix string) (*RedisStore, *miniredis.Miniredis, func()) {
	mr := miniredis.RunT(t)

	client := redis.NewClient(&redis.Options{
		Addr: mr.Addr(),
	})

	store := NewRedisStore(client, prefix)

	cleanup := func() {
		client.Close()
		mr.Close()
	}

	return store, mr, cleanup
}

func TestRedisStore_GetMissingKey(t *testing.T) {
	store, _, cleanup := setupTestRedis(t, "")
	defer cleanup()

	_, err := store.Get(context.Background(), "cart")
	assert.ErrorIs(t, err, ErrKeyNotFound)
}

func TestRedisStore_SetThenGet(t *testing.T) {
	store, mr, cleanup := setupTestRedis(t, "storefront")
	defer cleanup()

	ctx := context.Background()
	err := store.Set(ctx, "cart", `[{"productId":"a","quantity":1,"deliveryOptionId":"1"}]`)
	require.NoError(t, err)

	stored, err := mr.Get("storefront:cart")
	require.NoError(t, err)
	assert.Contains(t, stored, `"productId":"a"`)

	v, err := store.Get(ctx, "cart")
	require.NoError(t, err)
	assert.Equal(t, stored, v)
}

func TestRedisStore_NoExpiry(t *testing.T) {
	store, mr, cleanup := setupTestRedis(t, "")
	defer cleanup()

	require.NoError(t, store.Set(context.Background(), "orders", "[]"))

	assert.Zero(t, mr.TTL("orders"))
}

func TestRedisStore_ServerDown(t *testing.T) {
	store, mr, cleanup := setupTestRedis(t, "")
	defer cleanup()
	mr.Close()

	_, err := store.Get(context.Background(), "cart")
	require.ErrorContains(t, err, "redis get failed")
	assert.NotErrorIs(t, err, ErrKeyNotFound)

	err = store.Set(context.Background(), "cart", "[]")
	require.ErrorContains(t, err, "redis set failed")
}

func TestRedisStore_KeyFormat(t *testing.T) {
	assert.Equal(t, "cart", (&RedisStore{}).key("cart"))
	assert.Equal(t, "shop:cart", (&RedisStore{prefix: "shop"}).key("cart"))
}
