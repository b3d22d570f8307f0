package cache

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"math/rand"
	"time"

	"github.com/NitheshChakaravarthySeelan/CheckoutX/internal/cart/domain"
	"github.com/redis/go-redis/v9"
)

type RedisCache struct {
	client  *redis.Client
	baseTTL time.Duration
}

func NewRedisCache(client *redis.Client) *RedisCache {
	return &RedisCache{
		client:  client,
		baseTTL: 15 * time.Minute,
	}
}

type cachedCart struct {
	Cart    *domain.Cart `json:"cart"`
	Version int64        `json:"version"`
}

func (r *RedisCache) Get(ctx context.Context, userID string) (*domain.Cart, error) {
	key := cacheKey(userID)

	data, err := r.client.Get(ctx, key).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, ErrCacheMiss
	}
	if err != nil {
		return nil, fmt.Errorf("redis get failed: %w", err)
	}

	var entry cachedCart
	if err2 := json.Unmarshal(data, &entry); err2 != nil {
		return nil, fmt.Errorf("unmarshal cart failed: %w", err2)
	}
	if entry.Cart == nil {
		return nil, ErrCacheMiss
	}

	// Version is json:"-" on the aggregate; restore it from the envelope
	// so mutations started from a cached read still CAS correctly.
	entry.Cart.Version = entry.Version
	return entry.Cart, nil
}

func (r *RedisCache) Set(ctx context.Context, userID string, cart *domain.Cart) error {
	key := cacheKey(userID)
	data, err := json.Marshal(cachedCart{Cart: cart, Version: cart.Version})
	if err != nil {
		return fmt.Errorf("marshal cart failed: %w", err)
	}

	// Jitter spreads expirations so a burst of reads cannot repopulate
	// and expire a whole key range at once.
	jitter := time.Duration(rand.Intn(5)) * time.Minute
	ttl := r.baseTTL + jitter
	if err := r.client.Set(ctx, key, data, ttl).Err(); err != nil {
		return fmt.Errorf("redis set failed: %w", err)
	}
	return nil
}

func (r *RedisCache) Delete(ctx context.Context, userID string) error {
	key := cacheKey(userID)
	if err := r.client.Del(ctx, key).Err(); err != nil {
		return fmt.Errorf("redis delete failed: %w", err)
	}
	return nil
}

func cacheKey(userID string) string {
	return fmt.Sprintf("cart:%s", userID)
}
