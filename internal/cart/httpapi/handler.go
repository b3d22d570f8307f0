package httpapi

import (
	"context"
	"encoding/json"
	"errors"
	"log"
	"net/http"

	"github.com/NitheshChakaravarthySeelan/CheckoutX/internal/cart/domain"
	"github.com/go-chi/chi/v5"
)

// CartService is the slice of the cart aggregate service the HTTP layer
// needs. Defined here so handlers can be tested against a mock.
type CartService interface {
	AddItem(ctx context.Context, cc domain.CallContext, userID, productID string, quantity int) (*domain.Cart, error)
	UpdateQuantity(ctx context.Context, cc domain.CallContext, userID, productID string, quantity int) (*domain.Cart, error)
	RemoveItem(ctx context.Context, cc domain.CallContext, userID, productID string) (*domain.Cart, error)
	GetCartDetails(ctx context.Context, cc domain.CallContext, userID string) (*domain.CartDetails, error)
}

type Handler struct {
	service CartService
}

func NewHandler(service CartService) *Handler {
	return &Handler{service: service}
}

func (h *Handler) Register(r chi.Router) {
	r.Route("/api/v1/cart", func(r chi.Router) {
		r.Get("/", h.GetCart)
		r.Post("/items", h.AddItem)
		r.Put("/items/{product_id}", h.UpdateQuantity)
		r.Delete("/items/{product_id}", h.RemoveItem)
	})
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

func (h *Handler) GetCart(w http.ResponseWriter, r *http.Request) {
	cc, ok := callContext(r)
	if !ok {
		respondError(w, http.StatusUnauthorized, "unauthorized", "missing user identity")
		return
	}

	details, err := h.service.GetCartDetails(r.Context(), cc, cc.UserID)
	if err != nil {
		respondServiceError(w, err)
		return
	}
	if details == nil {
		respondError(w, http.StatusNotFound, "cart_not_found", "no cart for user")
		return
	}

	respondJSON(w, http.StatusOK, details)
}

func (h *Handler) AddItem(w http.ResponseWriter, r *http.Request) {
	cc, ok := callContext(r)
	if !ok {
		respondError(w, http.StatusUnauthorized, "unauthorized", "missing user identity")
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

	cart, err := h.service.AddItem(r.Context(), cc, cc.UserID, req.ProductID, req.Quantity)
	if err != nil {
		respondServiceError(w, err)
		return
	}

	respondJSON(w, http.StatusCreated, cart)
}

func (h *Handler) UpdateQuantity(w http.ResponseWriter, r *http.Request) {
	cc, ok := callContext(r)
	if !ok {
		respondError(w, http.StatusUnauthorized, "unauthorized", "missing user identity")
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

	cart, err := h.service.UpdateQuantity(r.Context(), cc, cc.UserID, productID, req.Quantity)
	if err != nil {
		respondServiceError(w, err)
		return
	}

	respondJSON(w, http.StatusOK, cart)
}

func (h *Handler) RemoveItem(w http.ResponseWriter, r *http.Request) {
	cc, ok := callContext(r)
	if !ok {
		respondError(w, http.StatusUnauthorized, "unauthorized", "missing user identity")
		return
	}

	productID := chi.URLParam(r, "product_id")
	if productID == "" {
		respondError(w, http.StatusBadRequest, "invalid_product_id", "product_id is required")
		return
	}

	cart, err := h.service.RemoveItem(r.Context(), cc, cc.UserID, productID)
	if err != nil {
		respondServiceError(w, err)
		return
	}

	respondJSON(w, http.StatusOK, cart)
}

// callContext rebuilds the caller identity from the headers the gateway
// sets after token validation.
func callContext(r *http.Request) (domain.CallContext, bool) {
	cc := domain.CallContext{
		UserID:   r.Header.Get("X-User-Id"),
		UserName: r.Header.Get("X-User-Name"),
		Roles:    r.Header.Get("X-User-Roles"),
	}
	return cc, cc.UserID != ""
}

func respondServiceError(w http.ResponseWriter, err error) {
	var stockErr *domain.InsufficientStockError
	switch {
	case errors.Is(err, domain.ErrInvalidQuantity):
		respondError(w, http.StatusBadRequest, "invalid_quantity", err.Error())
	case errors.Is(err, domain.ErrProductNotFound):
		respondError(w, http.StatusNotFound, "product_not_found", err.Error())
	case errors.Is(err, domain.ErrItemNotFound):
		respondError(w, http.StatusNotFound, "item_not_found", err.Error())
	case errors.As(err, &stockErr):
		respondError(w, http.StatusConflict, "insufficient_stock", stockErr.Error())
	default:
		log.Printf("cart request failed: %v", err)
		respondError(w, http.StatusInternalServerError, "internal_error", "internal server error")
	}
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
