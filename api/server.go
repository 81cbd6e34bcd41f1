/*
server.go - HTTP router and middleware configuration

PURPOSE:
  Configures the HTTP router (chi), middleware stack, and route definitions.
  This is the wiring layer that connects URLs to handlers.

MIDDLEWARE STACK:
  1. Logger:     Request logging
  2. Recoverer:  Panic recovery (500 instead of crash)
  3. RequestID:  Unique ID per request for tracing
  4. CORS:       Cross-origin requests for the roster frontend

ROUTE GROUPS:
  /api/duties/*        Duty records and mutation-triggered recalculation
  /api/calculations/*  Monthly calculations and layover derivations
  /api/profiles/*      Crew member positions
  /healthz             Liveness
  /metrics             Prometheus

SECURITY NOTE:
  No authentication middleware here; the service runs behind the gateway
  that terminates auth.

SEE ALSO:
  - handlers.go: Handler implementations
  - cmd/server/main.go: Server startup
*/
package api

import (
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
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

	// API routes
	r.Route("/api", func(r chi.Router) {
		// Duty routes
		r.Route("/duties", func(r chi.Router) {
			r.Get("/", h.ListDuties)
			r.Post("/", h.CreateDuty)
			r.Post("/batch", h.BatchCreateDuties)
			r.Post("/delete", h.BatchDeleteDuties)
			r.Put("/{id}/times", h.EditDutyTimes)
			r.Delete("/{id}", h.DeleteDuty)
		})

		// Calculation routes
		r.Route("/calculations", func(r chi.Router) {
			r.Get("/", h.GetCalculations)
			r.Get("/layovers", h.GetLayovers)
			r.Post("/recalculate", h.Recalculate)
		})

		// Profile routes
		r.Route("/profiles", func(r chi.Router) {
			r.Get("/{id}", h.GetProfile)
			r.Put("/{id}", h.SaveProfile)
		})
	})

	r.Get("/healthz", h.Healthz)
	r.Handle("/metrics", promhttp.Handler())

	return r
}
