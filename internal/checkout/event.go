package checkout

import "github.com/NitheshChakaravarthySeelan/CheckoutX/internal/cart/domain"

const (
	// Topic carries every checkout lifecycle event; this service only
	// ever emits the saga-initiating one.
	Topic = "checkout.checkout-events"

	EventTypeHeader = "eventType"
	InitiatedType   = "CheckoutInitiatedEvent"
)

type EventItem struct {
	ProductID  string `json:"product_id"`
	Quantity   int    `json:"quantity"`
	PriceCents int64  `json:"price_cents"`
	Name       string `json:"name"`
	ImageURL   string `json:"image_url"`
}

// InitiatedEvent starts the downstream order saga. SagaID is the
// correlation key for every later step; downstream consumers dedupe on
// it, since publish is at-least-once with no outbox.
type InitiatedEvent struct {
	SagaID             string      `json:"saga_id"`
	UserID             string      `json:"user_id"`
	CartID             string      `json:"cart_id"`
	Items              []EventItem `json:"items"`
	TotalPriceCents    int64       `json:"total_price_cents"`
	TotalDiscountCents int64       `json:"total_discount_cents"`
	TotalTaxCents      int64       `json:"total_tax_cents"`
}

// newInitiatedEvent builds the payload deterministically from the cart
// snapshot. The totals are recomputed here from the raw items with
// discount and tax pinned to zero: a deliberate placeholder kept in sync
// with the downstream consumers, diverging from the priced cart read.
func newInitiatedEvent(sagaID string, cart *domain.CartDetails) InitiatedEvent {
	items := make([]EventItem, len(cart.Items))
	var subtotal int64
	for i, item := range cart.Items {
		items[i] = EventItem{
			ProductID:  item.ProductID,
			Quantity:   item.Quantity,
			PriceCents: item.UnitPriceCents,
			Name:       item.Name,
			ImageURL:   item.ImageURL,
		}
		subtotal += item.UnitPriceCents * int64(item.Quantity)
	}

	const discount, tax = 0, 0
	return InitiatedEvent{
		SagaID:             sagaID,
		UserID:             cart.UserID,
		CartID:             cart.ID,
		Items:              items,
		TotalPriceCents:    subtotal - discount + tax,
		TotalDiscountCents: discount,
		TotalTaxCents:      tax,
	}
}
