package clients

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/NitheshChakaravarthySeelan/CheckoutX/internal/cart/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGetProduct_Success(t *testing.T) {
	var gotPath, gotUserID string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotPath = r.URL.Path
		gotUserID = r.Header.Get("X-User-Id")
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"id":"p1","name":"Widget","price":99.99,"image_url":"http://img/p1.png"}`))
	}))
	defer srv.Close()

	client := NewCatalogClient(srv.URL, time.Second)
	cc := domain.CallContext{UserID: "u1"}

	product, err := client.GetProduct(context.Background(), cc, "p1")
	require.NoError(t, err)
	require.NotNil(t, product)

	assert.Equal(t, "/api/products/p1", gotPath)
	assert.Equal(t, "u1", gotUserID)
	assert.Equal(t, "p1", product.ID)
	assert.Equal(t, "Widget", product.Name)
	assert.Equal(t, int64(9999), product.UnitPriceCents)
	assert.Equal(t, "http://img/p1.png", product.ImageURL)
}

func TestGetProduct_NotFoundReturnsNil(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNotFound)
	}))
	defer srv.Close()

	client := NewCatalogClient(srv.URL, time.Second)

	product, err := client.GetProduct(context.Background(), domain.CallContext{}, "missing")
	require.NoError(t, err)
	assert.Nil(t, product)
}

func TestGetProduct_ServerErrorFails(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer srv.Close()

	client := NewCatalogClient(srv.URL, time.Second)

	_, err := client.GetProduct(context.Background(), domain.CallContext{}, "p1")
	require.Error(t, err)
}

func TestPriceToCents(t *testing.T) {
	tests := []struct {
		price float64
		cents int64
	}{
		{0, 0},
		{10.00, 1000},
		{19.99, 1999},
		{100.00, 10000},
		{0.125, 13}, // half rounds away from zero
		{0.01, 1},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.cents, PriceToCents(tt.price), "price %v", tt.price)
	}
}
