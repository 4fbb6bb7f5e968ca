package middleware

import (
	"net/http"

	"github.com/go-chi/cors"
	"github.com/watchengine/watch-engine-backend/pkg/config"
)

// TokenHeader carries a freshly minted access token back to the client.
const TokenHeader = "X-WE-Token"

// CORS returns middleware that applies the configured origin policy.
func CORS(cfg config.CORSConfig) func(http.Handler) http.Handler {
	return cors.New(cors.Options{
		AllowedOrigins:   cfg.AllowedOrigins,
		AllowedMethods:   []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type", TokenHeader, "X-Requested-With"},
		ExposedHeaders:   []string{TokenHeader, requestIDHeader},
		AllowCredentials: true,
		MaxAge:           300,
	}).Handler
}
