package middleware

import (
	"net/http"

	"github.com/go-chi/cors"
)

// CORS applies the configured origin policy for the browser client.
func CORS(origins []string) func(http.Handler) http.Handler {
	if len(origins) == 0 {
		origins = []string{"http://localhost:3000"}
	}
	return cors.New(cors.Options{
		AllowedOrigins:   origins,
		AllowedMethods:   []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Content-Type", ActorHeader, IdempotencyHeader, requestIDHeader},
		ExposedHeaders:   []string{requestIDHeader, ReplayHeader, "Content-Disposition"},
		AllowCredentials: false,
		MaxAge:           300,
	}).Handler
}
