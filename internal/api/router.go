/**
 * @description
 * This file sets up the HTTP router for the integration-service using the
 * go-chi/chi router. It defines the API routes, applies middleware for
 * logging, CORS, and authentication, and maps routes to handler functions.
 *
 * @notes
 * - The webhook endpoint is deliberately outside the bearer-auth group: the
 *   provider authenticates with an HMAC signature, not a JWT.
 */
package api

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// NewRouter creates a new Chi router and registers the integration-service
// routes.
func NewRouter(webhook *WebhookHandler, connect *ConnectHandler, verification *VerificationHandler, jwksURL string) *chi.Mux {
	r := chi.NewRouter()

	// Setup middleware
	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)
	r.Use(middleware.Timeout(60 * time.Second))
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   []string{"https://*", "http://*"},
		AllowedMethods:   []string{"GET", "POST", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type", SignatureHeader},
		AllowCredentials: true,
		MaxAge:           300,
	}))

	// Health check endpoint
	r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte("Integration service is healthy"))
	})

	// Operational metrics (webhook outcomes, signature checks, sync jobs)
	r.Method(http.MethodGet, "/metrics", promhttp.Handler())

	// Provider webhooks authenticate via HMAC signature, not bearer tokens
	r.Method(http.MethodPost, "/webhooks/stattaq", webhook)

	// Protected routes that require authentication
	r.Group(func(r chi.Router) {
		r.Use(AuthMiddleware(jwksURL))

		r.Post("/connect", connect.handleStart)
		r.Post("/connect/callback", connect.handleCallback)
		r.Post("/connect/disconnect", connect.handleDisconnect)
		r.Post("/verifications/decide", verification.handleDecide)
	})

	return r
}
