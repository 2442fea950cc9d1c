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
  /api/months/*     Month plan views
  /api/days/*       Single-day totals
  /api/expenses/*   Point expenses
  /api/entries/*    Financial entries
  /api/reserve/*    Reserve ledger
  /api/balance      Account balance and snapshots
  /api/config/*     Per-month budget config
  /api/categories   Category aggregation

SECURITY NOTE:
  No authentication middleware. This serves a single-user local app.

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
		AllowedMethods:   []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type"},
		AllowCredentials: true,
	}))

	r.Route("/api", func(r chi.Router) {
		r.Route("/months", func(r chi.Router) {
			r.Get("/{year}/{month}", h.GetMonth)
		})

		r.Route("/days", func(r chi.Router) {
			r.Get("/{date}", h.GetDay)
		})

		r.Route("/expenses", func(r chi.Router) {
			r.Post("/", h.CreateExpense)
			r.Delete("/{date}/{id}", h.DeleteExpense)
		})

		r.Route("/entries", func(r chi.Router) {
			r.Get("/", h.ListEntries)
			r.Post("/", h.CreateEntry)
			r.Get("/active", h.ListActiveEntries)
			r.Get("/{id}", h.GetEntry)
			r.Put("/{id}", h.UpdateEntry)
			r.Delete("/{id}", h.DeleteEntry)
			r.Post("/{id}/end", h.EndEntry)
			r.Post("/{id}/exclude", h.ExcludeEntryDate)
			r.Post("/{id}/status", h.SetEntryOccurrenceStatus)
		})

		r.Route("/reserve", func(r chi.Router) {
			r.Get("/", h.GetReserve)
			r.Post("/movements", h.CreateMovement)
			r.Delete("/movements/{date}/{id}", h.DeleteMovement)
		})

		r.Get("/balance", h.GetBalance)
		r.Put("/balance", h.SetBalance)

		r.Route("/config", func(r chi.Router) {
			r.Get("/{month}", h.GetConfig)
			r.Put("/{month}", h.SetConfig)
		})

		r.Get("/categories", h.GetCategoryTotals)
	})

	return r
}
