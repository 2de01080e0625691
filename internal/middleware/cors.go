package middleware

import (
	"net/http"
	"time"

	"shop-catalog/internal/config"

	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
)

const requestTimeout = 30 * time.Second

// corsOptions lets browsers call the catalog API from the configured
// origins. Development accepts any origin. Auth travels in the
// Authorization header, so cookies are never sent cross-site.
func corsOptions(cfg config.ServerConfig) cors.Options {
	origins := cfg.AllowedOrigins
	if cfg.IsDevelopment() {
		origins = []string{"*"}
	}

	return cors.Options{
		AllowedOrigins: origins,
		AllowedMethods: []string{http.MethodGet, http.MethodPost, http.MethodPut, http.MethodDelete, http.MethodOptions},
		AllowedHeaders: []string{"Accept", "Authorization", "Content-Type"},
		ExposedHeaders: []string{headerRateLimit, headerRateRemaining, headerRateReset, headerRetryAfter},
		MaxAge:         300,
	}
}

func CORS(cfg config.ServerConfig) func(http.Handler) http.Handler {
	return cors.Handler(corsOptions(cfg))
}

// BaseStack is applied to every route before CORS and rate limiting
func BaseStack() []func(http.Handler) http.Handler {
	return []func(http.Handler) http.Handler{
		middleware.RequestID,
		middleware.RealIP,
		middleware.Recoverer,
		middleware.Compress(5, "application/json"),
		middleware.Timeout(requestTimeout),
	}
}
