package middleware

import (
	"net/http"

	"github.com/rs/cors"
)

func CORS(origins []string) func(http.Handler) http.Handler {
	c := cors.New(cors.Options{
		AllowedOrigins: origins,
		AllowedMethods: []string{http.MethodGet, http.MethodPost, http.MethodPut, http.MethodPatch, http.MethodDelete, http.MethodOptions},
		AllowedHeaders: []string{"Authorization", "Content-Type", TraceHeader},
		ExposedHeaders: []string{TraceHeader, "Retry-After", "X-RateLimit-Limit", "X-RateLimit-Remaining"},
		// credentials are sent as bearer tokens, never cookies
		AllowCredentials: false,
		MaxAge:           300,
	})
	return c.Handler
}
