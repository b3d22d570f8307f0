package clients

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/NitheshChakaravarthySeelan/CheckoutX/internal/cart/domain"
)

// DiscountClient and TaxClient are the optional pricing collaborators.
// Callers on the read path absorb their failures; neither client retries.
type DiscountClient interface {
	CalculateDiscounts(ctx context.Context, cc domain.CallContext, items []domain.CartItem, userID string) (int64, error)
}

type TaxClient interface {
	CalculateTax(ctx context.Context, cc domain.CallContext, items []domain.CartItem, userID string) (int64, error)
}

type taxAddress struct {
	Country string `json:"country"`
	Zip     string `json:"zip"`
}

type HTTPDiscountClient struct {
	baseURL string
	client  *http.Client
}

func NewDiscountClient(baseURL string, timeout time.Duration) *HTTPDiscountClient {
	return &HTTPDiscountClient{
		baseURL: baseURL,
		client:  &http.Client{Timeout: timeout},
	}
}

type discountRequest struct {
	Items  []domain.CartItem `json:"items"`
	UserID string            `json:"user_id"`
}

type discountResponse struct {
	TotalDiscountCents int64 `json:"total_discount_cents"`
}

func (c *HTTPDiscountClient) CalculateDiscounts(ctx context.Context, cc domain.CallContext, items []domain.CartItem, userID string) (int64, error) {
	var result discountResponse
	url := fmt.Sprintf("%s/calculate-discounts", c.baseURL)
	if err := postJSON(ctx, c.client, url, cc, discountRequest{Items: items, UserID: userID}, &result); err != nil {
		return 0, fmt.Errorf("discount engine: %w", err)
	}
	return result.TotalDiscountCents, nil
}

type HTTPTaxClient struct {
	baseURL string
	client  *http.Client
}

func NewTaxClient(baseURL string, timeout time.Duration) *HTTPTaxClient {
	return &HTTPTaxClient{
		baseURL: baseURL,
		client:  &http.Client{Timeout: timeout},
	}
}

type taxRequest struct {
	Items  []domain.CartItem `json:"items"`
	UserID string            `json:"user_id"`
	// Placeholder address until carts carry a shipping address.
	Address taxAddress `json:"address"`
}

type taxResponse struct {
	TaxCents int64 `json:"tax_cents"`
}

func (c *HTTPTaxClient) CalculateTax(ctx context.Context, cc domain.CallContext, items []domain.CartItem, userID string) (int64, error) {
	req := taxRequest{
		Items:   items,
		UserID:  userID,
		Address: taxAddress{Country: "US", Zip: "90210"},
	}
	var result taxResponse
	url := fmt.Sprintf("%s/calculate-tax", c.baseURL)
	if err := postJSON(ctx, c.client, url, cc, req, &result); err != nil {
		return 0, fmt.Errorf("tax service: %w", err)
	}
	return result.TaxCents, nil
}

func postJSON(ctx context.Context, client *http.Client, url string, cc domain.CallContext, payload, out any) error {
	body, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("marshal request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	setCallContext(req, cc)

	resp, err := client.Do(req)
	if err != nil {
		return fmt.Errorf("request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("status %d", resp.StatusCode)
	}

	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("decode response: %w", err)
	}
	return nil
}
