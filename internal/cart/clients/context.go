package clients

import (
	"net/http"

	"github.com/NitheshChakaravarthySeelan/CheckoutX/internal/cart/domain"
)

func setCallContext(req *http.Request, cc domain.CallContext) {
	if cc.UserID != "" {
		req.Header.Set("X-User-Id", cc.UserID)
	}
	if cc.UserName != "" {
		req.Header.Set("X-User-Name", cc.UserName)
	}
	if cc.Roles != "" {
		req.Header.Set("X-User-Roles", cc.Roles)
	}
}
