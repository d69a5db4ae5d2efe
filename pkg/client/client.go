// Package client is a Go client for the emulator's HTTP surface. The CLI,
// the scenario runner, and integration harnesses all talk through it.
package client

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"time"

	types "github.com/fieldlinehq/linemock/pkg/api/types"
	"github.com/fieldlinehq/linemock/pkg/mission"
)

// DefaultBaseURL is where a locally started emulator listens.
const DefaultBaseURL = "http://localhost:5000"

// Client talks to one emulator instance. It is not safe for concurrent use:
// Login stores the session token for subsequent calls.
type Client struct {
	baseURL    string
	httpClient *http.Client
	token      string
}

// Option configures a Client.
type Option func(*Client)

// WithTimeout sets the HTTP timeout.
func WithTimeout(timeout time.Duration) Option {
	return func(c *Client) {
		c.httpClient.Timeout = timeout
	}
}

// WithToken seeds the client with an existing session token.
func WithToken(token string) Option {
	return func(c *Client) {
		c.token = token
	}
}

// New creates a client for the emulator at baseURL. An empty baseURL means
// DefaultBaseURL.
func New(baseURL string, opts ...Option) *Client {
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}
	c := &Client{
		baseURL: baseURL,
		httpClient: &http.Client{
			Timeout: 30 * time.Second,
		},
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Token returns the session token from the last successful Login, if any.
func (c *Client) Token() string {
	return c.token
}

// SetToken replaces the session token used for authenticated calls.
func (c *Client) SetToken(token string) {
	c.token = token
}

// APIError is a failure response decoded from the wire envelope.
type APIError struct {
	Kind       string
	Message    string
	Hint       string
	StatusCode int
}

func (e *APIError) Error() string {
	if e.Message != "" {
		return fmt.Sprintf("%s: %s", e.Kind, e.Message)
	}
	return e.Kind
}

// Login exchanges credentials for a session and keeps the token for
// subsequent calls.
func (c *Client) Login(ctx context.Context, username, password string) (*types.LoginResponse, error) {
	resp, err := c.post(ctx, "/public/api/auth/login", types.LoginRequest{
		Username: username,
		Password: password,
	})
	if err != nil {
		return nil, err
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode != http.StatusOK {
		return nil, c.parseError(resp)
	}

	var lr types.LoginResponse
	if err := json.NewDecoder(resp.Body).Decode(&lr); err != nil {
		return nil, fmt.Errorf("failed to decode login response: %w", err)
	}
	c.token = lr.Token
	return &lr, nil
}

// MissionFilter narrows ListMissions.
type MissionFilter struct {
	Status string
	Target string
	Limit  int
}

// ListMissions returns missions matching the filter.
func (c *Client) ListMissions(ctx context.Context, filter *MissionFilter) (*types.MissionListResponse, error) {
	path := "/public/api/missions"
	if filter != nil {
		q := url.Values{}
		if filter.Status != "" {
			q.Set("status", filter.Status)
		}
		if filter.Target != "" {
			q.Set("target", filter.Target)
		}
		if filter.Limit > 0 {
			q.Set("limit", strconv.Itoa(filter.Limit))
		}
		if len(q) > 0 {
			path += "?" + q.Encode()
		}
	}

	resp, err := c.get(ctx, path)
	if err != nil {
		return nil, err
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode != http.StatusOK {
		return nil, c.parseError(resp)
	}

	var result types.MissionListResponse
	if err := json.NewDecoder(resp.Body).Decode(&result); err != nil {
		return nil, fmt.Errorf("failed to decode missions: %w", err)
	}
	return &result, nil
}

// CreateMission registers a new mission and returns it in pending state.
func (c *Client) CreateMission(ctx context.Context, req *types.CreateMissionRequest) (*mission.Mission, error) {
	resp, err := c.post(ctx, "/public/api/missions", req)
	if err != nil {
		return nil, err
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode != http.StatusCreated {
		return nil, c.parseError(resp)
	}

	var m mission.Mission
	if err := json.NewDecoder(resp.Body).Decode(&m); err != nil {
		return nil, fmt.Errorf("failed to decode mission: %w", err)
	}
	return &m, nil
}

// ValidateMission submits a measured value against the mission's rule.
func (c *Client) ValidateMission(ctx context.Context, id string, value interface{}) (*mission.Mission, error) {
	resp, err := c.post(ctx, "/public/api/missions/"+url.PathEscape(id)+"/validate",
		types.ValidateMissionRequest{Value: value})
	if err != nil {
		return nil, err
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode != http.StatusOK {
		return nil, c.parseError(resp)
	}

	var m mission.Mission
	if err := json.NewDecoder(resp.Body).Decode(&m); err != nil {
		return nil, fmt.Errorf("failed to decode mission: %w", err)
	}
	return &m, nil
}

// ListStores returns the store fixture.
func (c *Client) ListStores(ctx context.Context) (*types.StoreListResponse, error) {
	resp, err := c.get(ctx, "/public/api/stores")
	if err != nil {
		return nil, err
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode != http.StatusOK {
		return nil, c.parseError(resp)
	}

	var result types.StoreListResponse
	if err := json.NewDecoder(resp.Body).Decode(&result); err != nil {
		return nil, fmt.Errorf("failed to decode stores: %w", err)
	}
	return &result, nil
}

// ListTenants returns the tenant fixture.
func (c *Client) ListTenants(ctx context.Context) (*types.TenantListResponse, error) {
	resp, err := c.get(ctx, "/public/api/tenants")
	if err != nil {
		return nil, err
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode != http.StatusOK {
		return nil, c.parseError(resp)
	}

	var result types.TenantListResponse
	if err := json.NewDecoder(resp.Body).Decode(&result); err != nil {
		return nil, fmt.Errorf("failed to decode tenants: %w", err)
	}
	return &result, nil
}

// Health probes the emulator.
func (c *Client) Health(ctx context.Context) (*types.HealthResponse, error) {
	resp, err := c.get(ctx, "/health")
	if err != nil {
		return nil, err
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("emulator unhealthy: status %d", resp.StatusCode)
	}

	var hr types.HealthResponse
	if err := json.NewDecoder(resp.Body).Decode(&hr); err != nil {
		return nil, fmt.Errorf("failed to decode health: %w", err)
	}
	return &hr, nil
}

// Reset wipes missions, sessions, and the request history.
func (c *Client) Reset(ctx context.Context) (*types.ResetResponse, error) {
	resp, err := c.post(ctx, "/debug/reset", nil)
	if err != nil {
		return nil, err
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode != http.StatusOK {
		return nil, c.parseError(resp)
	}

	var rr types.ResetResponse
	if err := json.NewDecoder(resp.Body).Decode(&rr); err != nil {
		return nil, fmt.Errorf("failed to decode reset response: %w", err)
	}
	return &rr, nil
}

// DebugMissions dumps every stored mission, without auth or paging.
func (c *Client) DebugMissions(ctx context.Context) (*types.DebugMissionsResponse, error) {
	resp, err := c.get(ctx, "/debug/missions")
	if err != nil {
		return nil, err
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode != http.StatusOK {
		return nil, c.parseError(resp)
	}

	var result types.DebugMissionsResponse
	if err := json.NewDecoder(resp.Body).Decode(&result); err != nil {
		return nil, fmt.Errorf("failed to decode missions: %w", err)
	}
	return &result, nil
}

// State returns the emulator's counts overview.
func (c *Client) State(ctx context.Context) (*types.StateResponse, error) {
	resp, err := c.get(ctx, "/debug/state")
	if err != nil {
		return nil, err
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode != http.StatusOK {
		return nil, c.parseError(resp)
	}

	var st types.StateResponse
	if err := json.NewDecoder(resp.Body).Decode(&st); err != nil {
		return nil, fmt.Errorf("failed to decode state: %w", err)
	}
	return &st, nil
}

// ListRequests returns the recent request history, newest first. A zero
// limit returns everything retained.
func (c *Client) ListRequests(ctx context.Context, limit int) (*types.RequestListResponse, error) {
	path := "/debug/requests"
	if limit > 0 {
		path += "?limit=" + strconv.Itoa(limit)
	}

	resp, err := c.get(ctx, path)
	if err != nil {
		return nil, err
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode != http.StatusOK {
		return nil, c.parseError(resp)
	}

	var result types.RequestListResponse
	if err := json.NewDecoder(resp.Body).Decode(&result); err != nil {
		return nil, fmt.Errorf("failed to decode requests: %w", err)
	}
	return &result, nil
}

// ClearRequests clears the request history.
func (c *Client) ClearRequests(ctx context.Context) (int, error) {
	resp, err := c.delete(ctx, "/debug/requests")
	if err != nil {
		return 0, err
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode != http.StatusOK {
		return 0, c.parseError(resp)
	}

	var result types.ClearedResponse
	if err := json.NewDecoder(resp.Body).Decode(&result); err != nil {
		return 0, fmt.Errorf("failed to decode response: %w", err)
	}
	return result.Cleared, nil
}

// HTTP helpers

func (c *Client) get(ctx context.Context, path string) (*http.Response, error) {
	req, err := http.NewRequestWithContext(ctx, "GET", c.baseURL+path, nil)
	if err != nil {
		return nil, err
	}
	return c.do(req)
}

func (c *Client) post(ctx context.Context, path string, body interface{}) (*http.Response, error) {
	var reader io.Reader
	if body != nil {
		var buf bytes.Buffer
		if err := json.NewEncoder(&buf).Encode(body); err != nil {
			return nil, err
		}
		reader = &buf
	}
	req, err := http.NewRequestWithContext(ctx, "POST", c.baseURL+path, reader)
	if err != nil {
		return nil, err
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	return c.do(req)
}

func (c *Client) delete(ctx context.Context, path string) (*http.Response, error) {
	req, err := http.NewRequestWithContext(ctx, "DELETE", c.baseURL+path, nil)
	if err != nil {
		return nil, err
	}
	return c.do(req)
}

func (c *Client) do(req *http.Request) (*http.Response, error) {
	if c.token != "" {
		req.Header.Set("Authorization", "Bearer "+c.token)
	}
	return c.httpClient.Do(req)
}

func (c *Client) parseError(resp *http.Response) error {
	body, _ := io.ReadAll(resp.Body)
	var er types.ErrorResponse
	if json.Unmarshal(body, &er) == nil && er.Error != "" {
		return &APIError{
			Kind:       er.Error,
			Message:    er.Message,
			Hint:       er.Hint,
			StatusCode: resp.StatusCode,
		}
	}
	return fmt.Errorf("request failed: status %d", resp.StatusCode)
}
