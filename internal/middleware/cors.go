package middleware

import (
	"net/http"
	"slices"

	"github.com/rs/cors"
)

// CORS for browser clients. Credentials stay disabled: tokens travel in the
// Authorization header only.
func CORS(origins []string) func(http.Handler) http.Handler {
	return cors.New(corsOptions(origins)).Handler
}

func corsOptions(origins []string) cors.Options {
	if len(origins) == 0 || slices.Contains(origins, "*") {
		origins = []string{"*"}
	}

	return cors.Options{
		AllowedOrigins:   origins,
		AllowedMethods:   []string{http.MethodGet, http.MethodPost, http.MethodOptions},
		AllowedHeaders:   []string{"Authorization", "Content-Type", requestIDHeader},
		ExposedHeaders:   []string{requestIDHeader, "Retry-After"},
		MaxAge:           3600,
		AllowCredentials: false,
	}
}
