package cache

import (
	"context"
	"errors"

	"github.com/NitheshChakaravarthySeelan/CheckoutX/internal/cart/domain"
)

// CartCache holds the persisted cart aggregate only. Price breakdowns are
// computed fresh on every read and never enter the cache.
type CartCache interface {
	Get(ctx context.Context, userID string) (*domain.Cart, error)
	Set(ctx context.Context, userID string, cart *domain.Cart) error
	Delete(ctx context.Context, userID string) error
}

var ErrCacheMiss = errors.New("cache miss")
