package http

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/NitheshChakaravarthySeelan/CheckoutX/internal/cart/domain"
	"github.com/NitheshChakaravarthySeelan/CheckoutX/internal/gateway/authclient"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type mockVerifier struct {
	cc       *domain.CallContext
	err      error
	gotToken string
}

func (m *mockVerifier) Validate(_ context.Context, token string) (*domain.CallContext, error) {
	m.gotToken = token
	return m.cc, m.err
}

func authedHandler(t *testing.T) http.Handler {
	t.Helper()
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		cc, ok := callContextFrom(r.Context())
		require.True(t, ok)
		w.Write([]byte(cc.UserID))
	})
}

func TestAuthMiddleware_ValidToken(t *testing.T) {
	verifier := &mockVerifier{cc: &domain.CallContext{UserID: "u1", UserName: "Test User", Roles: "customer"}}
	handler := AuthMiddleware(verifier)(authedHandler(t))

	req := httptest.NewRequest(http.MethodGet, "/api/v1/cart", nil)
	req.Header.Set("Authorization", "Bearer token-123")
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "u1", rec.Body.String())
	assert.Equal(t, "token-123", verifier.gotToken)
}

func TestAuthMiddleware_MissingToken(t *testing.T) {
	verifier := &mockVerifier{}
	handler := AuthMiddleware(verifier)(authedHandler(t))

	req := httptest.NewRequest(http.MethodGet, "/api/v1/cart", nil)
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusUnauthorized, rec.Code)
	assert.Empty(t, verifier.gotToken)
}

func TestAuthMiddleware_InvalidToken(t *testing.T) {
	verifier := &mockVerifier{err: authclient.ErrInvalidToken}
	handler := AuthMiddleware(verifier)(authedHandler(t))

	req := httptest.NewRequest(http.MethodGet, "/api/v1/cart", nil)
	req.Header.Set("Authorization", "Bearer bad-token")
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusUnauthorized, rec.Code)

	var resp ErrorResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Equal(t, "unauthorized", resp.Code)
}

func TestAuthMiddleware_AuthUnavailable(t *testing.T) {
	verifier := &mockVerifier{err: errors.New("connection refused")}
	handler := AuthMiddleware(verifier)(authedHandler(t))

	req := httptest.NewRequest(http.MethodGet, "/api/v1/cart", nil)
	req.Header.Set("Authorization", "Bearer token-123")
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusServiceUnavailable, rec.Code)
}

func TestRequestIDMiddleware_GeneratesWhenMissing(t *testing.T) {
	handler := RequestIDMiddleware(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	assert.NotEmpty(t, rec.Header().Get("X-Request-ID"))
}

func TestRequestIDMiddleware_PreservesExisting(t *testing.T) {
	handler := RequestIDMiddleware(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set("X-Request-ID", "req-abc")
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	assert.Equal(t, "req-abc", rec.Header().Get("X-Request-ID"))
}

func TestBearerToken(t *testing.T) {
	tests := []struct {
		header string
		want   string
	}{
		{"Bearer abc", "abc"},
		{"Bearer   abc  ", "abc"},
		{"bearer abc", ""},
		{"abc", ""},
		{"", ""},
	}
	for _, tt := range tests {
		req := httptest.NewRequest(http.MethodGet, "/", nil)
		if tt.header != "" {
			req.Header.Set("Authorization", tt.header)
		}
		assert.Equal(t, tt.want, bearerToken(req), "header %q", tt.header)
	}
}
