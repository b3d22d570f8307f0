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

// StockResult reports whether the requested quantity is available.
// Message carries the inventory service's explanation when it is not.
type StockResult struct {
	Available bool   `json:"available"`
	Message   string `json:"message"`
}

type InventoryClient interface {
	CheckStock(ctx context.Context, cc domain.CallContext, productID string, quantity int) (*StockResult, error)
}

type HTTPInventoryClient struct {
	baseURL string
	client  *http.Client
}

func NewInventoryClient(baseURL string, timeout time.Duration) *HTTPInventoryClient {
	return &HTTPInventoryClient{
		baseURL: baseURL,
		client:  &http.Client{Timeout: timeout},
	}
}

type checkStockRequest struct {
	ProductID string `json:"product_id"`
	Quantity  int    `json:"quantity"`
}

func (c *HTTPInventoryClient) CheckStock(ctx context.Context, cc domain.CallContext, productID string, quantity int) (*StockResult, error) {
	body, err := json.Marshal(checkStockRequest{ProductID: productID, Quantity: quantity})
	if err != nil {
		return nil, fmt.Errorf("marshal stock request: %w", err)
	}

	url := fmt.Sprintf("%s/api/inventory/check-stock", c.baseURL)
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("build stock request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	setCallContext(req, cc)

	resp, err := c.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("inventory request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("inventory returned status %d", resp.StatusCode)
	}

	var result StockResult
	if err := json.NewDecoder(resp.Body).Decode(&result); err != nil {
		return nil, fmt.Errorf("decode inventory response: %w", err)
	}

	return &result, nil
}
