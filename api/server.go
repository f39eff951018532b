/*
server.go - HTTP router and middleware configuration

PURPOSE:
  Configures the HTTP router (chi), middleware stack, and route definitions.
  This is the wiring layer that connects URLs to handlers.

ROUTER: chi
  Chi was chosen for:
  - Lightweight and fast
  - Context-based
  - Middleware support
  - RESTful route patterns

MIDDLEWARE STACK:
  1. Logger:     Request logging
  2. Recoverer:  Panic recovery (500 instead of crash)
  3. RequestID:  Unique ID per request for tracing
  4. CORS:       Cross-origin requests for frontend

ROUTE GROUPS:
  /api/buildings/*      Buildings, apartments, tenants, cost data
  /api/statements/*     Statement generation and retrieval
  /api/validate/*       Input pre-validation
  /api/scenarios/*      Demo scenarios
  /api/reset            Database reset (dev only)

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
		AllowedMethods:   []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type"},
		AllowCredentials: true,
	}))

	r.Route("/api", func(r chi.Router) {
		// Building routes
		r.Route("/buildings", func(r chi.Router) {
			r.Get("/", h.ListBuildings)
			r.Post("/", h.CreateBuilding)
			r.Get("/{id}", h.GetBuilding)
			r.Get("/{id}/apartments", h.ListApartments)
			r.Get("/{id}/tenants", h.ListTenants)
			r.Get("/{id}/meters", h.ListMeters)
			r.Get("/{id}/readings", h.ListReadings)
			r.Get("/{id}/cost-items", h.ListCostItems)
			r.Post("/{id}/cost-items", h.AddCostItem)
			r.Put("/{id}/water-totals", h.SetWaterTotals)
			r.Get("/{id}/prechecks", h.RunPrechecks)
			r.Post("/{id}/statements", h.GenerateStatement)
			r.Post("/{id}/statements/preview", h.PreviewStatement)
			r.Get("/{id}/finance", h.ListFinanceEntries)
			r.Post("/{id}/finance", h.AddFinanceEntry)
			r.Get("/{id}/finance/summary", h.FinanceSummary)
		})

		// Apartment routes
		r.Route("/apartments", func(r chi.Router) {
			r.Post("/", h.CreateApartment)
		})

		// Tenant routes
		r.Route("/tenants", func(r chi.Router) {
			r.Post("/", h.CreateTenant)
			r.Post("/{id}/prepayments", h.AddPrepayment)
		})

		// Meter routes
		r.Route("/meters", func(r chi.Router) {
			r.Post("/", h.CreateMeter)
			r.Post("/readings", h.AddReading)
		})

		// Statement routes
		r.Route("/statements", func(r chi.Router) {
			r.Get("/{id}", h.GetStatement)
		})

		// Validation routes
		r.Route("/validate", func(r chi.Router) {
			r.Post("/period", h.ValidatePeriod)
		})

		// Scenario routes
		r.Route("/scenarios", func(r chi.Router) {
			r.Get("/", h.ListScenarios)
			r.Post("/load", h.LoadScenario)
			r.Post("/reset", h.ResetDatabase)
		})
	})

	return r
}
