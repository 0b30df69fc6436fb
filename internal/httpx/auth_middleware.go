package httpx

import (
	"net/http"
	"strconv"
	"strings"

	"bookstore/internal/auth"
)

// RequireAuth rejects requests without a valid bearer token and puts the
// caller's identity on the request context.
func RequireAuth(secret string) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			authHeader := r.Header.Get("Authorization")
			if !strings.HasPrefix(authHeader, "Bearer ") {
				JSONError(w, r, http.StatusUnauthorized, "UNAUTHORIZED", "Unauthorized", nil)
				return
			}
			token := strings.TrimPrefix(authHeader, "Bearer ")

			claims, err := auth.ParseToken(secret, token)
			if err != nil {
				JSONError(w, r, http.StatusUnauthorized, "UNAUTHORIZED", "Unauthorized", nil)
				return
			}

			userID, err := strconv.ParseInt(claims.Sub, 10, 64)
			if err != nil || userID <= 0 {
				JSONError(w, r, http.StatusUnauthorized, "UNAUTHORIZED", "Unauthorized", nil)
				return
			}

			ctx := ContextWithUser(r.Context(), userID, claims.Staff)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}
