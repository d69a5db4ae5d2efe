package server

import (
	"encoding/json"
	"io"
	"net/http"
	"strconv"
	"time"

	types "github.com/fieldlinehq/linemock/pkg/api/types"
	"github.com/fieldlinehq/linemock/pkg/auth"
	"github.com/fieldlinehq/linemock/pkg/config"
	"github.com/fieldlinehq/linemock/pkg/mission"
)

// handleLogin handles POST /public/api/auth/login.
func (s *Server) handleLogin(w http.ResponseWriter, r *http.Request) {
	var req types.LoginRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, types.KindInvalidRequest, "request body must be JSON")
		return
	}
	if req.Username == "" || req.Password == "" {
		writeError(w, http.StatusBadRequest, types.KindInvalidRequest, "Username and password required")
		return
	}

	sess, err := s.authority.Login(req.Username, req.Password)
	if err != nil {
		writeDomainError(w, err)
		return
	}

	s.metrics.SessionIssued()
	writeJSON(w, http.StatusOK, types.LoginResponse{
		Token:     sess.Token,
		ExpiresAt: sess.ExpiresAt,
		User: types.User{
			Username: sess.Username,
			OrgID:    sess.OrgID,
		},
	})
}

// handleListMissions handles GET /public/api/missions.
func (s *Server) handleListMissions(w http.ResponseWriter, r *http.Request) {
	limit := s.cfg.ListLimit
	if raw := r.URL.Query().Get("limit"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n < 0 {
			writeError(w, http.StatusBadRequest, types.KindInvalidRequest, "limit must be a non-negative integer")
			return
		}
		limit = n
	}

	missions, total := s.missions.List(mission.Filter{
		Status: mission.Status(r.URL.Query().Get("status")),
		Target: r.URL.Query().Get("target"),
		Limit:  limit,
	})

	writeJSON(w, http.StatusOK, types.MissionListResponse{
		Missions: missions,
		Count:    len(missions),
		Total:    total,
	})
}

// handleCreateMission handles POST /public/api/missions. The body passes the
// boundary schema before it touches the store, so duck-typed payloads turn
// into structured 400s instead of decode panics deeper down.
func (s *Server) handleCreateMission(w http.ResponseWriter, r *http.Request) {
	raw, err := io.ReadAll(r.Body)
	if err != nil {
		writeError(w, http.StatusBadRequest, types.KindInvalidRequest, "could not read request body")
		return
	}

	var body interface{}
	if err := json.Unmarshal(raw, &body); err != nil {
		writeError(w, http.StatusBadRequest, types.KindInvalidRequest, "request body must be JSON")
		return
	}
	if err := missionSchema.Validate(body); err != nil {
		kind, msg := schemaFailure(err)
		writeError(w, http.StatusBadRequest, kind, msg)
		return
	}

	var req types.CreateMissionRequest
	if err := json.Unmarshal(raw, &req); err != nil {
		writeError(w, http.StatusBadRequest, types.KindInvalidRequest, "request body must be JSON")
		return
	}

	ident, _ := auth.IdentityFromContext(r.Context())

	m, err := s.missions.Create(mission.CreateSpec{
		Title:        req.Title,
		Type:         req.Type,
		Target:       req.Target,
		Rule:         req.Rule,
		Priority:     req.Priority,
		DueDate:      req.DueDate,
		CustomFields: req.CustomFields,
		CreatedBy:    ident.Username,
	})
	if err != nil {
		writeDomainError(w, err)
		return
	}

	s.metrics.MissionCreated()
	s.log.Info("mission created", "id", m.ID, "title", m.Title, "target", m.Target)
	writeJSON(w, http.StatusCreated, m)
}

// handleValidateMission handles POST /public/api/missions/{id}/validate.
// A mission already settled keeps its stored outcome; only a genuine
// pending-to-terminal transition counts as a resolution.
func (s *Server) handleValidateMission(w http.ResponseWriter, r *http.Request) {
	missionID := r.PathValue("id")

	var req types.ValidateMissionRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, types.KindInvalidRequest, "request body must be JSON")
		return
	}

	before, err := s.missions.Get(missionID)
	if err != nil {
		writeDomainError(w, err)
		return
	}

	m, err := s.missions.Validate(missionID, req.Value)
	if err != nil {
		writeDomainError(w, err)
		return
	}

	if !before.Status.Terminal() && m.Status.Terminal() {
		s.metrics.MissionResolved(string(m.Status))
		s.log.Info("mission validated", "id", m.ID, "status", m.Status, "value", req.Value)
	}
	writeJSON(w, http.StatusOK, m)
}

// handleListStores handles GET /public/api/stores.
func (s *Server) handleListStores(w http.ResponseWriter, r *http.Request) {
	stores := s.cfg.Stores
	if stores == nil {
		stores = []config.StoreFixture{}
	}
	writeJSON(w, http.StatusOK, types.StoreListResponse{
		Data:  stores,
		Count: len(stores),
	})
}

// handleListTenants handles GET /public/api/tenants.
func (s *Server) handleListTenants(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, types.TenantListResponse{
		Tenants: []types.Tenant{
			{
				ID:     s.cfg.Tenant.ID,
				Name:   s.cfg.Tenant.Name,
				Stores: len(s.cfg.Stores),
			},
		},
	})
}

// handleHealth handles GET /health.
func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, types.HealthResponse{
		Status:        "healthy",
		Timestamp:     time.Now().UTC(),
		MissionsCount: s.missions.Count(),
		StoresCount:   len(s.cfg.Stores),
	})
}
