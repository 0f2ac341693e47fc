package middleware

import (
	"net/http"
	"strings"

	"github.com/google/uuid"

	"github.com/techstore/storefront-backend/pkg/logger"
)

const cartIDHeader = "X-Cart-Id"

// CartSession resolves the client cart id from X-Cart-Id, minting a new one
// when absent or malformed. The id is echoed back so clients can persist it.
func CartSession(logg *logger.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			cartID := strings.TrimSpace(r.Header.Get(cartIDHeader))
			if _, err := uuid.Parse(cartID); err != nil {
				cartID = uuid.NewString()
			}
			w.Header().Set(cartIDHeader, cartID)

			ctx := WithCartID(r.Context(), cartID)
			if logg != nil {
				ctx = logg.WithCartID(ctx, cartID)
			}
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}
