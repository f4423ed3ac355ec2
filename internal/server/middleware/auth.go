// Package middleware holds the chi middleware stack: request ids, access logging, panic
// recovery, CORS, telemetry and Bearer authentication.
package middleware

import (
	"net/http"
	"strings"

	"company-registration/backend/internal/response"
	"company-registration/backend/internal/security"
)

const bearerPrefix = "bearer "

// MsgUnauthorized is the envelope message for a missing or rejected token.
const MsgUnauthorized = "Invalid token"

// TokenValidator validates session tokens.
type TokenValidator interface {
	Validate(token string) (*security.Identity, error)
}

// RequireBearer rejects requests without a valid Bearer token with 401 and sets the
// account id and email in the request context otherwise.
func RequireBearer(tokens TokenValidator) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			token := extractBearer(r.Header.Get("Authorization"))
			if token == "" {
				response.Error(w, http.StatusUnauthorized, MsgUnauthorized)
				return
			}
			id, err := tokens.Validate(token)
			if err != nil {
				response.Error(w, http.StatusUnauthorized, MsgUnauthorized)
				return
			}
			ctx := WithIdentity(r.Context(), id.AccountID, id.Email)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// extractBearer returns the token from an Authorization header value, or "" if missing or malformed.
func extractBearer(header string) string {
	v := strings.TrimSpace(header)
	if len(v) < len(bearerPrefix) {
		return ""
	}
	if !strings.EqualFold(v[:len(bearerPrefix)], bearerPrefix) {
		return ""
	}
	return strings.TrimSpace(v[len(bearerPrefix):])
}
