package checkout

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log"

	"github.com/NitheshChakaravarthySeelan/CheckoutX/internal/cart/domain"
	"github.com/NitheshChakaravarthySeelan/CheckoutX/internal/platform/eventbus"
	"github.com/google/uuid"
)

var ErrEmptyCart = errors.New("cart is empty or not found")

// CartFetcher reads the caller's cart through the cart service's query
// path. A nil result with a nil error means the user has no cart.
type CartFetcher interface {
	GetCart(ctx context.Context, cc domain.CallContext) (*domain.CartDetails, error)
}

// Initiator turns a valid cart into a running checkout saga by
// publishing exactly one InitiatedEvent per successful attempt. The cart
// itself is not locked, cleared or mutated here.
type Initiator struct {
	carts  CartFetcher
	events eventbus.Publisher
}

func NewInitiator(carts CartFetcher, events eventbus.Publisher) *Initiator {
	return &Initiator{carts: carts, events: events}
}

// Initiate returns the fresh saga id only after the publish acks. A
// publish failure aborts the whole attempt; the caller retries the full
// flow, which issues a new saga id.
func (i *Initiator) Initiate(ctx context.Context, cc domain.CallContext) (string, error) {
	sagaID := uuid.NewString()

	cart, err := i.carts.GetCart(ctx, cc)
	if err != nil {
		return "", fmt.Errorf("read cart: %w", err)
	}
	if cart == nil || len(cart.Items) == 0 {
		return "", ErrEmptyCart
	}

	event := newInitiatedEvent(sagaID, cart)
	payload, err := json.Marshal(event)
	if err != nil {
		return "", fmt.Errorf("marshal checkout event: %w", err)
	}

	// The key only affects broker partitioning; correlation travels in
	// the payload as saga_id.
	headers := map[string]string{EventTypeHeader: InitiatedType}
	if err := i.events.Publish(ctx, Topic, uuid.NewString(), payload, headers); err != nil {
		return "", fmt.Errorf("publish checkout event: %w", err)
	}

	log.Printf("published %s for saga_id=%s user_id=%s", InitiatedType, sagaID, cc.UserID)
	return sagaID, nil
}
