package cache

import (
	"context"
	"testing"
	"time"

	"github.com/NitheshChakaravarthySeelan/CheckoutX/internal/cart/domain"
	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestCache(t *testing.T) (*RedisCache, *miniredis.Miniredis) {
	t.Helper()
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { client.Close() })
	return NewRedisCache(client), mr
}

func sampleCart() *domain.Cart {
	return &domain.Cart{
		ID:      "cart-1",
		UserID:  "u1",
		Version: 7,
		Items: []domain.CartItem{
			{ProductID: "p1", Quantity: 2, Name: "Widget", UnitPriceCents: 1000, ImageURL: "http://img/p1.png"},
		},
	}
}

func TestSetGet_RoundTripsVersion(t *testing.T) {
	sut, _ := newTestCache(t)
	ctx := context.Background()

	require.NoError(t, sut.Set(ctx, "u1", sampleCart()))

	got, err := sut.Get(ctx, "u1")
	require.NoError(t, err)
	assert.Equal(t, "cart-1", got.ID)
	assert.Equal(t, int64(7), got.Version)
	require.Len(t, got.Items, 1)
	assert.Equal(t, int64(1000), got.Items[0].UnitPriceCents)
}

func TestGet_MissingKey(t *testing.T) {
	sut, _ := newTestCache(t)

	_, err := sut.Get(context.Background(), "nobody")
	assert.ErrorIs(t, err, ErrCacheMiss)
}

func TestGet_CorruptEntry(t *testing.T) {
	sut, mr := newTestCache(t)
	require.NoError(t, mr.Set("cart:u1", "{not json"))

	_, err := sut.Get(context.Background(), "u1")
	require.Error(t, err)
	assert.NotErrorIs(t, err, ErrCacheMiss)
}

func TestDelete_RemovesEntry(t *testing.T) {
	sut, _ := newTestCache(t)
	ctx := context.Background()

	require.NoError(t, sut.Set(ctx, "u1", sampleCart()))
	require.NoError(t, sut.Delete(ctx, "u1"))

	_, err := sut.Get(ctx, "u1")
	assert.ErrorIs(t, err, ErrCacheMiss)
}

func TestDelete_MissingKeyIsNoError(t *testing.T) {
	sut, _ := newTestCache(t)

	assert.NoError(t, sut.Delete(context.Background(), "nobody"))
}

func TestSet_EntryExpires(t *testing.T) {
	sut, mr := newTestCache(t)
	ctx := context.Background()

	require.NoError(t, sut.Set(ctx, "u1", sampleCart()))

	// Base TTL plus up to five minutes of jitter.
	mr.FastForward(21 * time.Minute)

	_, err := sut.Get(ctx, "u1")
	assert.ErrorIs(t, err, ErrCacheMiss)
}
