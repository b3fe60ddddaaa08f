package api

import (
	"net/http"

	"github.com/go-chi/chi/v5"
)

// buildRouter creates the HTTP router with all routes and middleware.
func (s *Server) buildRouter() http.Handler {
	r := chi.NewRouter()

	// Global middleware
	r.Use(s.requestIDMiddleware)
	r.Use(s.loggingMiddleware)
	r.Use(s.recoveryMiddleware)
	r.Use(s.corsMiddleware)
	r.Use(s.bodySizeLimitMiddleware)

	r.Route("/api", func(r chi.Router) {
		r.Get("/health", s.handleHealth)

		r.Post("/auth/login", s.handleLogin)

		// Account endpoints
		r.Route("/usuarios", func(r chi.Router) {
			r.Get("/", s.handleListAccounts)
			r.Post("/", s.handleCreateAccount)

			r.Route("/{id}", func(r chi.Router) {
				r.Get("/", s.handleGetAccount)
				r.Put("/", s.handleUpdateAccount)
				r.Delete("/", s.handleDeleteAccount)
			})
		})

		r.Get("/roles", s.handleListRoles)

		// Hive registry
		r.Route("/colmenas", func(r chi.Router) {
			r.Get("/", s.handleListHives)
			r.Post("/", s.handleCreateHive)
			r.Get("/{id}", s.handleGetHive)
		})

		// Sensor node catalogue
		r.Get("/nodos", s.handleListNodes)
		r.Get("/nodo-tipos", s.handleListNodeTypes)

		// Telemetry archive
		r.Route("/nodo-mensajes", func(r chi.Router) {
			r.Get("/recientes", s.handleRecentMessages)
			r.Get("/simple", s.handleLatestMessages)
		})

		r.Get("/dashboard/stats", s.handleDashboardStats)

		// WebSocket live telemetry stream
		r.Get("/ws", s.handleWebSocket)
	})

	return r
}

// handleHealth returns the server health status.
func (s *Server) handleHealth(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]any{
		"status":  "ok",
		"version": s.version,
	})
}
