package middleware

import (
	"net/http"

	"github.com/go-chi/cors"
)

const corsMaxAge = 600

// CORS allows browser calls from the listed origins and answers preflight requests.
// "*" allows every origin; an empty list disables CORS headers entirely.
func CORS(origins []string) func(http.Handler) http.Handler {
	if len(origins) == 0 {
		return func(next http.Handler) http.Handler { return next }
	}
	return cors.Handler(cors.Options{
		AllowedOrigins: origins,
		AllowedMethods: []string{http.MethodGet, http.MethodPost, http.MethodOptions},
		AllowedHeaders: []string{"Accept", "Authorization", "Content-Type", RequestIDHeader},
		ExposedHeaders: []string{RequestIDHeader},
		MaxAge:         corsMaxAge,
	})
}
