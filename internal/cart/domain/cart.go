package domain

import "time"

// CartItem is one line of a cart. Name, UnitPriceCents and ImageURL are a
// denormalized snapshot of the catalog taken when the item was added; they
// are not refreshed when the catalog changes.
type CartItem struct {
	ProductID      string `json:"product_id"`
	Quantity       int    `json:"quantity"`
	Name           string `json:"name"`
	UnitPriceCents int64  `json:"price_cents"`
	ImageURL       string `json:"image_url"`
}

// Cart is the per-user aggregate. Exactly one cart exists per user, created
// lazily on first mutation. Version backs the compare-and-swap replace in
// the repository and is not part of the API payload.
type Cart struct {
	ID        string     `json:"id"`
	UserID    string     `json:"user_id"`
	Items     []CartItem `json:"items"`
	Version   int64      `json:"-"`
	CreatedAt time.Time  `json:"created_at"`
	UpdatedAt time.Time  `json:"updated_at"`
}

// FindItem returns the index of the line with the given product id, or -1.
func (c *Cart) FindItem(productID string) int {
	for i := range c.Items {
		if c.Items[i].ProductID == productID {
			return i
		}
	}
	return -1
}

// SubtotalCents sums the snapshot prices of all lines.
func (c *Cart) SubtotalCents() int64 {
	var total int64
	for _, item := range c.Items {
		total += item.UnitPriceCents * int64(item.Quantity)
	}
	return total
}

// CartDetails is the read-time projection of a cart with its price
// breakdown. It is computed fresh on every read and never persisted.
// Invariant: TotalPriceCents = SubtotalCents - TotalDiscountCents + TotalTaxCents.
type CartDetails struct {
	Cart
	SubtotalCents      int64 `json:"subtotal_cents"`
	TotalDiscountCents int64 `json:"total_discount_cents"`
	TotalTaxCents      int64 `json:"total_tax_cents"`
	TotalPriceCents    int64 `json:"total_price_cents"`
}
