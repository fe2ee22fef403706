package middleware

import (
	"net/http"
	"strings"

	"github.com/google/uuid"

	"github.com/grengcry/cart-service/pkg/logger"
)

const sessionIDHeader = "X-Session-Id"

// Session resolves the shopper's session identity from the X-Session-Id
// header, minting a fresh one when absent. The id is always echoed back so
// clients can persist it on first contact.
func Session(logg *logger.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			sessionID := strings.TrimSpace(r.Header.Get(sessionIDHeader))
			if sessionID == "" {
				sessionID = uuid.NewString()
			}

			w.Header().Set(sessionIDHeader, sessionID)

			ctx := WithSessionID(r.Context(), sessionID)
			if logg != nil {
				ctx = logg.WithSessionID(ctx, sessionID)
			}

			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}
