package api

import (
	"crypto/subtle"
	"net/http"
	"strings"
)

const authorizationTypeBearer = "bearer"

// bearerAuth rejects requests whose bearer token does not match token.
// An empty token disables the check.
func bearerAuth(token string) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		if token == "" {
			return next
		}
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			header := r.Header.Get("Authorization")
			if header == "" {
				respondError(w, http.StatusUnauthorized, "authorization not provided")
				return
			}

			fields := strings.Fields(header)
			if len(fields) < 2 {
				respondError(w, http.StatusUnauthorized, "invalid authorization header format")
				return
			}
			if strings.ToLower(fields[0]) != authorizationTypeBearer {
				respondError(w, http.StatusUnauthorized, "unsupported authorization format "+strings.ToLower(fields[0]))
				return
			}
			if subtle.ConstantTimeCompare([]byte(fields[1]), []byte(token)) != 1 {
				respondError(w, http.StatusUnauthorized, "Unauthorized")
				return
			}

			next.ServeHTTP(w, r)
		})
	}
}
