/*
server.go - HTTP router and middleware configuration

PURPOSE:
  Configures the HTTP router (chi), middleware stack, and route definitions.
  This is the wiring layer that connects URLs to handlers.

MIDDLEWARE STACK:
  1. Logger:     Request logging
  2. Recoverer:  Panic recovery (500 instead of crash)
  3. RequestID:  Unique ID per request for tracing
  4. CORS:       Cross-origin requests for frontend

ROUTE GROUPS:
  /api/requests           Customer request pipeline
  /api/report             Point-in-time financial report
  /api/inventory,/stock   Stock queries
  /api/cash               Cash balance
  /api/transactions       Raw ledger
  /api/quotes/search      Quote history
  /api/usage              Capability usage counters

SECURITY NOTE:
  No authentication middleware currently. All endpoints are public.

SEE ALSO:
  - handlers.go: Handler implementations
  - cmd/server/main.go: Server startup
*/
package api

import (
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
)

// NewRouter creates a new router with all routes configured.
func NewRouter(h *Handler) *chi.Mux {
	r := chi.NewRouter()

	// Middleware
	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)
	r.Use(middleware.RequestID)
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   []string{"http://localhost:5173", "http://localhost:8080"},
		AllowedMethods:   []string{"GET", "POST", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type"},
		AllowCredentials: true,
	}))

	// API routes
	r.Route("/api", func(r chi.Router) {
		// Customer request pipeline
		r.Post("/requests", h.SubmitRequest)

		// Ledger queries
		r.Get("/report", h.GetReport)
		r.Get("/inventory", h.GetInventory)
		r.Get("/stock", h.GetStock)
		r.Get("/cash", h.GetCash)
		r.Get("/transactions", h.ListTransactions)
		r.Get("/delivery-estimate", h.GetDeliveryEstimate)

		// Quote history
		r.Get("/quotes/search", h.SearchQuotes)

		// Capability usage counters
		r.Get("/usage", h.GetUsage)
	})

	return r
}
