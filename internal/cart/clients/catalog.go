package clients

import (
	"context"
	"encoding/json"
	"fmt"
	"math"
	"net/http"
	"time"

	"github.com/NitheshChakaravarthySeelan/CheckoutX/internal/cart/domain"
)

// Product is the catalog's view of a product, with the decimal price
// already converted to integer cents at this boundary.
type Product struct {
	ID             string
	Name           string
	UnitPriceCents int64
	ImageURL       string
}

// CatalogClient fetches authoritative product attributes.
// A nil product with a nil error means the catalog has no such product.
type CatalogClient interface {
	GetProduct(ctx context.Context, cc domain.CallContext, productID string) (*Product, error)
}

type HTTPCatalogClient struct {
	baseURL string
	client  *http.Client
}

func NewCatalogClient(baseURL string, timeout time.Duration) *HTTPCatalogClient {
	return &HTTPCatalogClient{
		baseURL: baseURL,
		client:  &http.Client{Timeout: timeout},
	}
}

type productResponse struct {
	ID       string  `json:"id"`
	Name     string  `json:"name"`
	Price    float64 `json:"price"`
	ImageURL string  `json:"image_url"`
}

func (c *HTTPCatalogClient) GetProduct(ctx context.Context, cc domain.CallContext, productID string) (*Product, error) {
	url := fmt.Sprintf("%s/api/products/%s", c.baseURL, productID)
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, fmt.Errorf("build catalog request: %w", err)
	}
	setCallContext(req, cc)

	resp, err := c.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("catalog request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusNotFound {
		return nil, nil
	}
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("catalog returned status %d", resp.StatusCode)
	}

	var pr productResponse
	if err := json.NewDecoder(resp.Body).Decode(&pr); err != nil {
		return nil, fmt.Errorf("decode catalog response: %w", err)
	}

	return &Product{
		ID:             pr.ID,
		Name:           pr.Name,
		UnitPriceCents: PriceToCents(pr.Price),
		ImageURL:       pr.ImageURL,
	}, nil
}

// PriceToCents converts the catalog's decimal price to integer cents,
// rounding half away from zero. Conversion happens exactly once, here;
// cents are never re-derived from a decimal at read time.
func PriceToCents(price float64) int64 {
	return int64(math.Round(price * 100))
}
