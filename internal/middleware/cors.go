// Package middleware holds the HTTP middleware the fleet log API mounts in
// front of its routes.
package middleware

import (
	"net/http"

	"github.com/rs/cors"
)

// preflightMaxAge is how long, in seconds, a browser may cache a preflight.
const preflightMaxAge = 600

// NewCORSHandler lets the importer front end at allowedOrigins call the API.
// Origins are full scheme://host[:port] values. With no origins the handler
// adds no CORS headers at all, which keeps the API same-origin only.
func NewCORSHandler(allowedOrigins []string) func(http.Handler) http.Handler {
	if len(allowedOrigins) == 0 {
		return func(next http.Handler) http.Handler { return next }
	}
	c := cors.New(cors.Options{
		AllowedOrigins: allowedOrigins,
		AllowedMethods: []string{http.MethodGet, http.MethodPost, http.MethodDelete, http.MethodOptions},
		AllowedHeaders: []string{"Content-Type", "Idempotency-Key"},
		// The export endpoint names its download file in Content-Disposition.
		ExposedHeaders: []string{"Content-Disposition"},
		MaxAge:         preflightMaxAge,
	})
	return c.Handler
}
