package auth

import (
	"context"
	"encoding/json"
	"net/http"
	"strings"

	"github.com/rs/zerolog/log"
)

// contextKey is the private type for context values set by this package.
type contextKey string

const userIDKey = contextKey("userID")

// UserID returns the authenticated user id attached by Middleware,
// or "" if the request never passed the gate.
func UserID(ctx context.Context) string {
	id, _ := ctx.Value(userIDKey).(string)
	return id
}

// Middleware creates a middleware for protecting routes. The session
// token is taken from the "token" cookie; the Authorization header is
// the fallback for clients that cannot carry cookies. Any failure is a
// plain 401 with no detail about which check tripped.
func (v *Verifier) Middleware() func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			var tokenStr string

			// 1. Cookie first: it is what the frontend sends.
			if cookie, err := r.Cookie("token"); err == nil {
				tokenStr = cookie.Value
			}

			// 2. Fall back to the Authorization header.
			if tokenStr == "" {
				authHeader := r.Header.Get("Authorization")
				if after, ok := strings.CutPrefix(authHeader, "Bearer "); ok {
					tokenStr = after
				}
			}

			if tokenStr == "" {
				unauthorized(w, "Access denied, no token")
				return
			}

			userID, err := v.VerifySessionToken(tokenStr)
			if err != nil {
				log.Warn().Str("path", r.URL.Path).Msg("Rejected request with invalid session token")
				unauthorized(w, "Unauthorized Access")
				return
			}

			ctx := context.WithValue(r.Context(), userIDKey, userID)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

func unauthorized(w http.ResponseWriter, msg string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusUnauthorized)
	json.NewEncoder(w).Encode(map[string]string{"message": msg})
}

// WithUserID returns a context carrying the given user id. Exposed for
// handler tests that bypass the middleware.
func WithUserID(ctx context.Context, id string) context.Context {
	return context.WithValue(ctx, userIDKey, id)
}
