package http

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/NitheshChakaravarthySeelan/CheckoutX/internal/cart/domain"
	"github.com/NitheshChakaravarthySeelan/CheckoutX/internal/gateway/authclient"
)

type contextKey string

const (
	callContextKey contextKey = "call_context"
	requestIDKey   contextKey = "request_id"
)

// AuthMiddleware validates the bearer token against the auth
// collaborator and installs the resolved CallContext for handlers.
func AuthMiddleware(auth authclient.Verifier) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			token := bearerToken(r)
			if token == "" {
				respondError(w, http.StatusUnauthorized, "unauthorized", "missing bearer token")
				return
			}

			cc, err := auth.Validate(r.Context(), token)
			if err != nil {
				if errors.Is(err, authclient.ErrInvalidToken) {
					respondError(w, http.StatusUnauthorized, "unauthorized", "invalid token")
					return
				}
				respondError(w, http.StatusServiceUnavailable, "auth_unavailable", "could not validate token")
				return
			}

			ctx := context.WithValue(r.Context(), callContextKey, *cc)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// RequestIDMiddleware adds a unique request ID to each request
func RequestIDMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		requestID := r.Header.Get("X-Request-ID")
		if requestID == "" {
			requestID = fmt.Sprintf("req-%d", time.Now().UnixNano())
		}

		ctx := context.WithValue(r.Context(), requestIDKey, requestID)
		w.Header().Set("X-Request-ID", requestID)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

func bearerToken(r *http.Request) string {
	header := r.Header.Get("Authorization")
	if after, ok := strings.CutPrefix(header, "Bearer "); ok {
		return strings.TrimSpace(after)
	}
	return ""
}

func callContextFrom(ctx context.Context) (domain.CallContext, bool) {
	cc, ok := ctx.Value(callContextKey).(domain.CallContext)
	return cc, ok
}
