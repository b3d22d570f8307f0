package repository

import (
	"context"
	"errors"

	"github.com/NitheshChakaravarthySeelan/CheckoutX/internal/cart/domain"
)

var (
	ErrCartNotFound = errors.New("cart not found")

	// ErrVersionConflict means the cart changed between read and replace
	// (or two callers raced a lazy create). Retryable: re-read and reapply.
	ErrVersionConflict = errors.New("cart version conflict")
)

// CartRepository defines the interface for cart persistence.
// Consumers define this interface, not the Postgres implementation.
type CartRepository interface {
	FindByUser(ctx context.Context, userID string) (*domain.Cart, error)
	Create(ctx context.Context, userID string) (*domain.Cart, error)
	// Replace is a compare-and-swap keyed by user: it only writes when the
	// stored version matches cart.Version, and fails with
	// ErrVersionConflict otherwise.
	Replace(ctx context.Context, cart *domain.Cart) (*domain.Cart, error)
	Delete(ctx context.Context, userID string) error
}
