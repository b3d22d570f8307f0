package cartclient

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/NitheshChakaravarthySeelan/CheckoutX/internal/cart/domain"
)

// APIError is a non-2xx answer from cart-service, preserved so the
// gateway can pass the status and code through unchanged.
type APIError struct {
	Status  int
	Code    string
	Message string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("cart-service returned %d (%s): %s", e.Status, e.Code, e.Message)
}

// Client is the gateway's typed HTTP client for cart-service.
type Client struct {
	baseURL string
	client  *http.Client
}

func New(baseURL string, timeout time.Duration) *Client {
	return &Client{
		baseURL: baseURL,
		client:  &http.Client{Timeout: timeout},
	}
}

// GetCart returns the priced cart, or nil when cart-service reports 404.
func (c *Client) GetCart(ctx context.Context, cc domain.CallContext) (*domain.CartDetails, error) {
	req, err := c.newRequest(ctx, cc, http.MethodGet, "/api/v1/cart", nil)
	if err != nil {
		return nil, err
	}

	var details domain.CartDetails
	found, err := c.do(req, &details)
	if err != nil {
		var apiErr *APIError
		if errors.As(err, &apiErr) && apiErr.Status == http.StatusNotFound {
			return nil, nil
		}
		return nil, err
	}
	if !found {
		return nil, nil
	}
	return &details, nil
}

func (c *Client) AddItem(ctx context.Context, cc domain.CallContext, productID string, quantity int) (*domain.Cart, error) {
	body := map[string]any{"product_id": productID, "quantity": quantity}
	req, err := c.newRequest(ctx, cc, http.MethodPost, "/api/v1/cart/items", body)
	if err != nil {
		return nil, err
	}

	var cart domain.Cart
	if _, err := c.do(req, &cart); err != nil {
		return nil, err
	}
	return &cart, nil
}

func (c *Client) UpdateQuantity(ctx context.Context, cc domain.CallContext, productID string, quantity int) (*domain.Cart, error) {
	body := map[string]any{"quantity": quantity}
	req, err := c.newRequest(ctx, cc, http.MethodPut, "/api/v1/cart/items/"+productID, body)
	if err != nil {
		return nil, err
	}

	var cart domain.Cart
	if _, err := c.do(req, &cart); err != nil {
		return nil, err
	}
	return &cart, nil
}

func (c *Client) RemoveItem(ctx context.Context, cc domain.CallContext, productID string) (*domain.Cart, error) {
	req, err := c.newRequest(ctx, cc, http.MethodDelete, "/api/v1/cart/items/"+productID, nil)
	if err != nil {
		return nil, err
	}

	var cart domain.Cart
	if _, err := c.do(req, &cart); err != nil {
		return nil, err
	}
	return &cart, nil
}

func (c *Client) newRequest(ctx context.Context, cc domain.CallContext, method, path string, body any) (*http.Request, error) {
	var reader io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			return nil, fmt.Errorf("marshal request: %w", err)
		}
		reader = bytes.NewReader(data)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, reader)
	if err != nil {
		return nil, fmt.Errorf("build request: %w", err)
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	req.Header.Set("X-User-Id", cc.UserID)
	if cc.UserName != "" {
		req.Header.Set("X-User-Name", cc.UserName)
	}
	if cc.Roles != "" {
		req.Header.Set("X-User-Roles", cc.Roles)
	}
	return req, nil
}

func (c *Client) do(req *http.Request, out any) (bool, error) {
	resp, err := c.client.Do(req)
	if err != nil {
		return false, fmt.Errorf("cart-service request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		var body struct {
			Error string `json:"error"`
			Code  string `json:"code"`
		}
		_ = json.NewDecoder(resp.Body).Decode(&body)
		return false, &APIError{Status: resp.StatusCode, Code: body.Code, Message: body.Error}
	}

	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return false, fmt.Errorf("decode cart-service response: %w", err)
	}
	return true, nil
}
