// Package types holds the wire types shared by the emulator's HTTP surface,
// the Go client, and the scenario runner. Keeping them in one place keeps the
// two sides of the contract from drifting.
package types

import (
	"time"

	"github.com/fieldlinehq/linemock/pkg/config"
	"github.com/fieldlinehq/linemock/pkg/mission"
	"github.com/fieldlinehq/linemock/pkg/requestlog"
)

// Machine-readable error kinds carried in the Error field of failure
// responses. Clients branch on these, never on the message text.
const (
	KindInvalidRequest        = "invalid_request"
	KindInvalidCredentials    = "invalid_credentials"
	KindTokenUnknown          = "token_unknown"
	KindTokenExpired          = "token_expired"
	KindNotFound              = "not_found"
	KindInvalidMissionSpec    = "invalid_mission_spec"
	KindUnsupportedComparator = "unsupported_comparator"
	KindTypeMismatch          = "type_mismatch"
)

// ErrorResponse is the body of every failure response.
type ErrorResponse struct {
	Error   string `json:"error"`
	Message string `json:"message"`
	Hint    string `json:"hint,omitempty"`
}

// LoginRequest is the body of POST /public/api/auth/login.
type LoginRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

// LoginResponse is the success body of the login endpoint.
type LoginResponse struct {
	Token     string    `json:"token"`
	ExpiresAt time.Time `json:"expires_at"`
	User      User      `json:"user"`
}

// User is the identity payload inside a login response.
type User struct {
	Username string `json:"username"`
	OrgID    string `json:"org_id"`
}

// CreateMissionRequest is the body of POST /public/api/missions.
type CreateMissionRequest struct {
	Title        string                 `json:"title"`
	Type         string                 `json:"type,omitempty"`
	Target       string                 `json:"target"`
	Rule         mission.Rule           `json:"rule"`
	Priority     string                 `json:"priority,omitempty"`
	DueDate      string                 `json:"due_date,omitempty"`
	CustomFields map[string]interface{} `json:"custom_fields,omitempty"`
}

// ValidateMissionRequest is the body of POST /public/api/missions/{id}/validate.
type ValidateMissionRequest struct {
	Value interface{} `json:"value"`
}

// MissionListResponse lists missions with count and pre-limit total.
type MissionListResponse struct {
	Missions []*mission.Mission `json:"missions"`
	Count    int                `json:"count"`
	Total    int                `json:"total"`
}

// StoreListResponse lists the store fixture.
type StoreListResponse struct {
	Data  []config.StoreFixture `json:"data"`
	Count int                   `json:"count"`
}

// Tenant is one entry of the tenants response.
type Tenant struct {
	ID     string `json:"id"`
	Name   string `json:"name"`
	Stores int    `json:"stores"`
}

// TenantListResponse is the body of GET /public/api/tenants.
type TenantListResponse struct {
	Tenants []Tenant `json:"tenants"`
}

// HealthResponse is the body of GET /health.
type HealthResponse struct {
	Status        string    `json:"status"`
	Timestamp     time.Time `json:"timestamp"`
	MissionsCount int       `json:"missions_count"`
	StoresCount   int       `json:"stores_count"`
}

// ResetResponse is the body of POST /debug/reset.
type ResetResponse struct {
	Message         string `json:"message"`
	MissionsCleared int    `json:"missions_cleared"`
	SessionsCleared int    `json:"sessions_cleared"`
	RequestsCleared int    `json:"requests_cleared"`
}

// DebugMissionsResponse dumps every stored mission.
type DebugMissionsResponse struct {
	Missions []*mission.Mission `json:"missions"`
	Count    int                `json:"count"`
}

// StateResponse is the body of GET /debug/state.
type StateResponse struct {
	Status        string  `json:"status"`
	UptimeSeconds float64 `json:"uptime_seconds"`
	Missions      int     `json:"missions"`
	Sessions      int     `json:"sessions"`
	Requests      int     `json:"requests"`
	Stores        int     `json:"stores"`
}

// RequestListResponse lists recent requests, newest first.
type RequestListResponse struct {
	Requests []*requestlog.Entry `json:"requests"`
	Count    int                 `json:"count"`
}

// ClearedResponse reports how many entries a clear operation removed.
type ClearedResponse struct {
	Cleared int `json:"cleared"`
}
