package middleware

import (
	"net/http"
	"strings"

	"github.com/shashiranjanraj/mapstack/pkg/auth"
)

// RequireToken rejects requests without a valid bearer token. The exact
// "Invalid token" message is part of the backend contract: the client keys
// its forced logout on that substring.
func RequireToken(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		header := r.Header.Get("Authorization")
		raw := strings.TrimPrefix(header, "Bearer ")
		if raw == "" || raw == header {
			writeMessage(w, http.StatusUnauthorized, "Invalid token")
			return
		}

		if _, err := auth.ValidateToken(raw); err != nil {
			writeMessage(w, http.StatusUnauthorized, "Invalid token")
			return
		}

		next.ServeHTTP(w, r)
	})
}
