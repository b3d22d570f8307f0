package metrics

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
)

func TestMiddleware_CountsByRouteAndStatus(t *testing.T) {
	m := NewServerMetrics("test_server")

	r := chi.NewRouter()
	r.Use(m.Middleware)
	r.Get("/api/v1/cart", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
	})
	r.Post("/api/v1/cart/items", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusConflict)
	})

	for i := 0; i < 3; i++ {
		rec := httptest.NewRecorder()
		r.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/v1/cart", nil))
	}
	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/api/v1/cart/items", nil))

	assert.Equal(t, float64(3), testutil.ToFloat64(m.Requests.WithLabelValues("/api/v1/cart", "200")))
	assert.Equal(t, float64(1), testutil.ToFloat64(m.Requests.WithLabelValues("/api/v1/cart/items", "409")))
}
