package http

import (
	"context"
	"encoding/json"
	"errors"
	"log"
	"net/http"

	"github.com/NitheshChakaravarthySeelan/CheckoutX/internal/cart/domain"
	"github.com/NitheshChakaravarthySeelan/CheckoutX/internal/gateway/cartclient"
	"github.com/go-chi/chi/v5"
)

// CartAPI is the slice of the cart-service client the gateway forwards to.
type CartAPI interface {
	GetCart(ctx context.Context, cc domain.CallContext) (*domain.CartDetails, error)
	AddItem(ctx context.Context, cc domain.CallContext, productID string, quantity int) (*domain.Cart, error)
	UpdateQuantity(ctx context.Context, cc domain.CallContext, productID string, quantity int) (*domain.Cart, error)
	RemoveItem(ctx context.Context, cc domain.CallContext, productID string) (*domain.Cart, error)
}

type CartHandler struct {
	carts CartAPI
}

func NewCartHandler(carts CartAPI) *CartHandler {
	return &CartHandler{carts: carts}
}

type AddItemRequestDTO struct {
	ProductID string `json:"product_id"`
	Quantity  int    `json:"quantity"`
}

type UpdateQuantityRequestDTO struct {
	Quantity int `json:"quantity"`
}

type ErrorResponse struct {
	Error string `json:"error"`
	Code  string `json:"code,omitempty"`
}

func (h *CartHandler) GetCart(w http.ResponseWriter, r *http.Request) {
	cc, ok := callContextFrom(r.Context())
	if !ok {
		respondError(w, http.StatusUnauthorized, "unauthorized", "missing user authentication")
		return
	}

	details, err := h.carts.GetCart(r.Context(), cc)
	if err != nil {
		handleUpstreamError(w, err)
		return
	}
	if details == nil {
		respondError(w, http.StatusNotFound, "cart_not_found", "no cart for user")
		return
	}

	respondJSON(w, http.StatusOK, details)
}

func (h *CartHandler) AddItem(w http.ResponseWriter, r *http.Request) {
	cc, ok := callContextFrom(r.Context())
	if !ok {
		respondError(w, http.StatusUnauthorized, "unauthorized", "missing user authentication")
		return
	}

	var req AddItemRequestDTO
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, "invalid_request", "invalid JSON body")
		return
	}
	if req.ProductID == "" {
		respondError(w, http.StatusBadRequest, "invalid_product_id", "product_id is required")
		return
	}

	cart, err := h.carts.AddItem(r.Context(), cc, req.ProductID, req.Quantity)
	if err != nil {
		handleUpstreamError(w, err)
		return
	}

	respondJSON(w, http.StatusCreated, cart)
}

func (h *CartHandler) UpdateQuantity(w http.ResponseWriter, r *http.Request) {
	cc, ok := callContextFrom(r.Context())
	if !ok {
		respondError(w, http.StatusUnauthorized, "unauthorized", "missing user authentication")
		return
	}

	productID := chi.URLParam(r, "product_id")
	if productID == "" {
		respondError(w, http.StatusBadRequest, "invalid_product_id", "product_id is required")
		return
	}

	var req UpdateQuantityRequestDTO
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, "invalid_request", "invalid JSON body")
		return
	}

	cart, err := h.carts.UpdateQuantity(r.Context(), cc, productID, req.Quantity)
	if err != nil {
		handleUpstreamError(w, err)
		return
	}

	respondJSON(w, http.StatusOK, cart)
}

func (h *CartHandler) RemoveItem(w http.ResponseWriter, r *http.Request) {
	cc, ok := callContextFrom(r.Context())
	if !ok {
		respondError(w, http.StatusUnauthorized, "unauthorized", "missing user authentication")
		return
	}

	productID := chi.URLParam(r, "product_id")
	if productID == "" {
		respondError(w, http.StatusBadRequest, "invalid_product_id", "product_id is required")
		return
	}

	cart, err := h.carts.RemoveItem(r.Context(), cc, productID)
	if err != nil {
		handleUpstreamError(w, err)
		return
	}

	respondJSON(w, http.StatusOK, cart)
}

// handleUpstreamError passes cart-service's own status and code through
// unchanged, and maps transport failures to 502.
func handleUpstreamError(w http.ResponseWriter, err error) {
	var apiErr *cartclient.APIError
	if errors.As(err, &apiErr) {
		respondError(w, apiErr.Status, apiErr.Code, apiErr.Message)
		return
	}

	log.Printf("cart-service call failed: %v", err)
	respondError(w, http.StatusBadGateway, "cart_service_unavailable", "cart service unavailable")
}

func respondJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(data); err != nil {
		log.Printf("failed to encode response: %v", err)
	}
}

func respondError(w http.ResponseWriter, status int, code, message string) {
	respondJSON(w, status, ErrorResponse{
		Error: message,
		Code:  code,
	})
}
