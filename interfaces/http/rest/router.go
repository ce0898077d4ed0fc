// Package rest wires the HTTP surface: routing, middleware and handlers.
package rest

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"go.uber.org/zap"

	"lifelog-backend/interfaces/http/rest/handlers"
	"lifelog-backend/interfaces/http/rest/middleware"
	"lifelog-backend/pkg/auth"
	"lifelog-backend/pkg/common"
	"lifelog-backend/pkg/observability"
)

// Router assembles the chi router from the wired handlers.
type Router struct {
	entries  *handlers.EntryHandler
	billing  *handlers.BillingHandler
	verifier *auth.Verifier
	metrics  *observability.Metrics
	logger   *zap.Logger
}

// NewRouter creates a router.
func NewRouter(
	entries *handlers.EntryHandler,
	billing *handlers.BillingHandler,
	verifier *auth.Verifier,
	metrics *observability.Metrics,
	logger *zap.Logger,
) *Router {
	return &Router{
		entries:  entries,
		billing:  billing,
		verifier: verifier,
		metrics:  metrics,
		logger:   logger,
	}
}

// Setup configures all routes and middleware.
func (rt *Router) Setup() http.Handler {
	router := chi.NewRouter()

	router.Use(chimiddleware.RequestID)
	router.Use(chimiddleware.RealIP)
	router.Use(chimiddleware.Recoverer)
	router.Use(middleware.Logger(rt.logger))
	if rt.metrics != nil {
		router.Use(middleware.Metrics(rt.metrics))
	}

	router.Use(cors.Handler(cors.Options{
		AllowedOrigins:   []string{"*"},
		AllowedMethods:   []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type", "Stripe-Signature", "X-Request-ID"},
		ExposedHeaders:   []string{"X-Request-ID"},
		AllowCredentials: false,
		MaxAge:           300,
	}))

	router.NotFound(func(w http.ResponseWriter, r *http.Request) {
		common.RespondError(w, http.StatusNotFound, "Not found")
	})
	router.MethodNotAllowed(func(w http.ResponseWriter, r *http.Request) {
		common.RespondError(w, http.StatusMethodNotAllowed, "Method not allowed")
	})

	router.Get("/health", rt.healthCheck)

	router.Route("/api", func(r chi.Router) {
		// Stripe calls the webhook directly; it authenticates by signature,
		// not by bearer token.
		r.Post("/stripe/webhook", rt.billing.Webhook)

		r.Group(func(r chi.Router) {
			r.Use(middleware.Authenticate(rt.verifier, rt.logger))

			r.Post("/stripe/create-checkout", rt.billing.CreateCheckout)
			r.Get("/user/subscription", rt.billing.GetSubscription)

			// Generic entity routes. The segment resolves through the schema
			// registry; unknown segments 404 inside the handler.
			r.Get("/{entityType}", rt.entries.List)
			r.Post("/{entityType}", rt.entries.Create)
			r.Get("/{entityType}/{entryID}", rt.entries.Get)
			r.Put("/{entityType}/{entryID}", rt.entries.Update)
			r.Delete("/{entityType}/{entryID}", rt.entries.Delete)
		})
	})

	return router
}

func (rt *Router) healthCheck(w http.ResponseWriter, r *http.Request) {
	common.RespondJSON(w, http.StatusOK, map[string]string{
		"status":    "healthy",
		"timestamp": time.Now().UTC().Format(time.RFC3339),
	})
}
