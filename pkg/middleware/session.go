package middleware

import (
	"context"
	"net/http"

	"github.com/utafrali/storefront/pkg/logger"
)

// SessionIDHeader identifies the browsing session that owns a cart,
// wishlist and filter state.
const SessionIDHeader = "X-Session-ID"

const maxSessionIDLen = 128

type sessionKey struct{}

// RequireSession rejects requests without a usable X-Session-ID header and
// stores the ID in the context for handlers and loggers.
func RequireSession(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		id := r.Header.Get(SessionIDHeader)
		if !validSessionID(id) {
			writeJSONError(w, http.StatusBadRequest, "MISSING_SESSION",
				"a valid X-Session-ID header is required")
			return
		}

		ctx := context.WithValue(r.Context(), sessionKey{}, id)
		ctx = logger.WithSessionID(ctx, id)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

// SessionIDFromContext returns the session ID set by RequireSession.
func SessionIDFromContext(ctx context.Context) string {
	if id, ok := ctx.Value(sessionKey{}).(string); ok {
		return id
	}
	return ""
}

// WithSessionID stores a session ID in ctx. Used by tests and internal callers
// that bypass the HTTP middleware.
func WithSessionID(ctx context.Context, id string) context.Context {
	return context.WithValue(ctx, sessionKey{}, id)
}

// validSessionID accepts printable ASCII without spaces or colons, since the
// ID becomes part of a storage key.
func validSessionID(id string) bool {
	if id == "" || len(id) > maxSessionIDLen {
		return false
	}
	for i := 0; i < len(id); i++ {
		c := id[i]
		if c <= ' ' || c > '~' || c == ':' {
			return false
		}
	}
	return true
}
