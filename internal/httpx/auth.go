package httpx

import (
	"context"
	"net/http"
	"strings"

	"github.com/Keiter0309/EcomGrove/internal/auth"
)

type ctxKey int

const userIDKey ctxKey = iota

// Auth resolves the bearer token through the session store and stashes the
// user id in the request context. Everything behind it can trust userFrom.
func Auth(tokens auth.TokenStore) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			header := r.Header.Get("Authorization")
			token, ok := strings.CutPrefix(header, "Bearer ")
			if !ok || token == "" {
				writeJSON(w, http.StatusUnauthorized, apiResponse{
					StatusCode: http.StatusUnauthorized,
					Message:    "missing or malformed authorization header",
					Error:      "unauthorized",
				})
				return
			}
			userID, err := tokens.Get(r.Context(), token)
			if err != nil {
				writeJSON(w, http.StatusUnauthorized, apiResponse{
					StatusCode: http.StatusUnauthorized,
					Message:    "invalid or expired session",
					Error:      "unauthorized",
				})
				return
			}
			ctx := context.WithValue(r.Context(), userIDKey, userID)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

func userFrom(r *http.Request) int64 {
	id, _ := r.Context().Value(userIDKey).(int64)
	return id
}
