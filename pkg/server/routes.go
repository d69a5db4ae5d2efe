// Route registration for the emulator surface.

package server

import (
	"net/http"
)

// registerRoutes sets up all routes.
func (s *Server) registerRoutes(mux *http.ServeMux) {
	// Vendor-shaped public API. Everything past login requires a bearer
	// token.
	mux.HandleFunc("POST /public/api/auth/login", s.handleLogin)
	mux.Handle("GET /public/api/missions", s.requireAuth(s.handleListMissions))
	mux.Handle("POST /public/api/missions", s.requireAuth(s.handleCreateMission))
	mux.Handle("POST /public/api/missions/{id}/validate", s.requireAuth(s.handleValidateMission))
	mux.Handle("GET /public/api/stores", s.requireAuth(s.handleListStores))
	mux.Handle("GET /public/api/tenants", s.requireAuth(s.handleListTenants))

	// Liveness probe, open like the real service's.
	mux.HandleFunc("GET /health", s.handleHealth)

	// Debug surface. Deliberately unauthenticated so test harnesses can
	// reset and inspect without holding a session.
	mux.HandleFunc("POST /debug/reset", s.handleDebugReset)
	mux.HandleFunc("GET /debug/missions", s.handleDebugMissions)
	mux.HandleFunc("GET /debug/state", s.handleDebugState)
	mux.HandleFunc("GET /debug/requests", s.handleDebugRequests)
	mux.HandleFunc("DELETE /debug/requests", s.handleDebugRequestsClear)
	mux.Handle("GET /debug/metrics", s.metrics.Handler())
}
