package http

import (
	"context"
	"errors"
	"log"
	"net/http"

	"github.com/NitheshChakaravarthySeelan/CheckoutX/internal/cart/domain"
	"github.com/NitheshChakaravarthySeelan/CheckoutX/internal/checkout"
)

// CheckoutInitiator starts the downstream order saga for the caller.
type CheckoutInitiator interface {
	Initiate(ctx context.Context, cc domain.CallContext) (string, error)
}

type CheckoutHandler struct {
	initiator CheckoutInitiator
}

func NewCheckoutHandler(initiator CheckoutInitiator) *CheckoutHandler {
	return &CheckoutHandler{initiator: initiator}
}

type CheckoutResponseDTO struct {
	SagaID  string `json:"saga_id"`
	Message string `json:"message"`
}

// POST /api/v1/checkout
func (h *CheckoutHandler) InitiateCheckout(w http.ResponseWriter, r *http.Request) {
	cc, ok := callContextFrom(r.Context())
	if !ok {
		respondError(w, http.StatusUnauthorized, "unauthorized", "missing user authentication")
		return
	}

	sagaID, err := h.initiator.Initiate(r.Context(), cc)
	if err != nil {
		if errors.Is(err, checkout.ErrEmptyCart) {
			respondError(w, http.StatusBadRequest, "empty_cart", "cart is empty or not found")
			return
		}
		log.Printf("checkout initiation failed for user %s: %v", cc.UserID, err)
		respondError(w, http.StatusInternalServerError, "checkout_failed", "failed to initiate checkout")
		return
	}

	respondJSON(w, http.StatusAccepted, CheckoutResponseDTO{
		SagaID:  sagaID,
		Message: "Checkout initiated",
	})
}
