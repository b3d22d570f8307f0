package authclient

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/NitheshChakaravarthySeelan/CheckoutX/internal/cart/domain"
)

var ErrInvalidToken = errors.New("invalid token")

// Verifier validates a bearer token against the auth collaborator and
// resolves the caller's identity.
type Verifier interface {
	Validate(ctx context.Context, token string) (*domain.CallContext, error)
}

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

type validateRequest struct {
	Token string `json:"token"`
}

type validateResponse struct {
	Valid    bool     `json:"valid"`
	UserID   string   `json:"user_id"`
	UserName string   `json:"user_name"`
	Roles    []string `json:"roles"`
}

func (c *Client) Validate(ctx context.Context, token string) (*domain.CallContext, error) {
	body, err := json.Marshal(validateRequest{Token: token})
	if err != nil {
		return nil, fmt.Errorf("marshal validate request: %w", err)
	}

	url := fmt.Sprintf("%s/api/auth/validate", c.baseURL)
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("build validate request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("auth request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusUnauthorized {
		return nil, ErrInvalidToken
	}
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("auth returned status %d", resp.StatusCode)
	}

	var vr validateResponse
	if err := json.NewDecoder(resp.Body).Decode(&vr); err != nil {
		return nil, fmt.Errorf("decode auth response: %w", err)
	}
	if !vr.Valid || vr.UserID == "" {
		return nil, ErrInvalidToken
	}

	return &domain.CallContext{
		UserID:   vr.UserID,
		UserName: vr.UserName,
		Roles:    strings.Join(vr.Roles, ","),
	}, nil
}
