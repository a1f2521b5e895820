package storage

import (
	"context"
	"testing"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/example/storefront/internal/domain/cart"
)

func newTestRedisStorage(t *testing.T) *RedisStorage {
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })
	return NewRedisStorage(client)
}

func TestRedisStorage_LoadMissing(t *testing.T) {
	s := newTestRedisStorage(t)

	_, err := s.Load(context.Background(), "user-123")

	assert.ErrorIs(t, err, ErrNotFound)
}

func TestRedisStorage_RoundTrip(t *testing.T) {
	s := newTestRedisStorage(t)
	ctx := context.Background()

	c := cart.New("user-123")
	c.AddItem(cart.Item{ID: "line-1", ProductID: "prod-1", Name: "Mug", Price: 12.99, Quantity: 2})
	c.AddItem(cart.Item{ID: "line-2", ProductID: "prod-2", Name: "Shirt", Price: 24.50, Quantity: 1, Variant: "blue", MaxQuantity: 3})

	require.NoError(t, s.Save(ctx, "user-123", c))

	loaded, err := s.Load(ctx, "user-123")
	require.NoError(t, err)
	assert.Equal(t, c.Items, loaded.Items)
}

func TestRedisStorage_Delete(t *testing.T) {
	s := newTestRedisStorage(t)
	ctx := context.Background()

	c := cart.New("user-123")
	c.AddItem(cart.Item{ID: "line-1", ProductID: "prod-1", Price: 10, Quantity: 1})
	require.NoError(t, s.Save(ctx, "user-123", c))
	require.NoError(t, s.Delete(ctx, "user-123"))

	_, err := s.Load(ctx, "user-123")
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestRedisStorage_CartsAreIsolatedPerUser(t *testing.T) {
	s := newTestRedisStorage(t)
	ctx := context.Background()

	a := cart.New("user-a")
	a.AddItem(cart.Item{ID: "line-1", ProductID: "prod-1", Price: 10, Quantity: 1})
	b := cart.New("user-b")
	b.AddItem(cart.Item{ID: "line-2", ProductID: "prod-2", Price: 20, Quantity: 2})

	require.NoError(t, s.Save(ctx, "user-a", a))
	require.NoError(t, s.Save(ctx, "user-b", b))
	require.NoError(t, s.Delete(ctx, "user-a"))

	loaded, err := s.Load(ctx, "user-b")
	require.NoError(t, err)
	assert.Equal(t, b.Items, loaded.Items)
}
