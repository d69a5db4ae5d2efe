// Handlers for the debug surface. None of these exist on the real vendor
// API; they exist so test harnesses can reset and inspect the emulator
// between runs.

package server

import (
	"net/http"
	"strconv"

	types "github.com/fieldlinehq/linemock/pkg/api/types"
	"github.com/fieldlinehq/linemock/pkg/mission"
)

// handleDebugReset handles POST /debug/reset. It wipes missions, revokes
// every session, and clears the request history in one shot.
func (s *Server) handleDebugReset(w http.ResponseWriter, r *http.Request) {
	missionsCleared := s.missions.Reset()
	sessionsCleared := s.authority.Reset()
	requestsCleared := s.requests.Clear()
	s.metrics.Reset()

	s.log.Info("mock data reset",
		"missions_cleared", missionsCleared,
		"sessions_cleared", sessionsCleared,
		"requests_cleared", requestsCleared,
	)

	writeJSON(w, http.StatusOK, types.ResetResponse{
		Message:         "Mock data reset",
		MissionsCleared: missionsCleared,
		SessionsCleared: sessionsCleared,
		RequestsCleared: requestsCleared,
	})
}

// handleDebugMissions handles GET /debug/missions: every mission, no auth,
// no paging.
func (s *Server) handleDebugMissions(w http.ResponseWriter, r *http.Request) {
	missions, _ := s.missions.List(mission.Filter{})
	writeJSON(w, http.StatusOK, types.DebugMissionsResponse{
		Missions: missions,
		Count:    len(missions),
	})
}

// handleDebugState handles GET /debug/state with a counts overview.
func (s *Server) handleDebugState(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, types.StateResponse{
		Status:        "running",
		UptimeSeconds: s.Uptime().Seconds(),
		Missions:      s.missions.Count(),
		Sessions:      s.authority.Count(),
		Requests:      s.requests.Count(),
		Stores:        len(s.cfg.Stores),
	})
}

// handleDebugRequests handles GET /debug/requests, newest first. limit=0
// means everything retained.
func (s *Server) handleDebugRequests(w http.ResponseWriter, r *http.Request) {
	limit := 0
	if raw := r.URL.Query().Get("limit"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n < 0 {
			writeError(w, http.StatusBadRequest, types.KindInvalidRequest, "limit must be a non-negative integer")
			return
		}
		limit = n
	}

	entries := s.requests.List(limit)
	writeJSON(w, http.StatusOK, types.RequestListResponse{
		Requests: entries,
		Count:    len(entries),
	})
}

// handleDebugRequestsClear handles DELETE /debug/requests.
func (s *Server) handleDebugRequestsClear(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, types.ClearedResponse{
		Cleared: s.requests.Clear(),
	})
}
