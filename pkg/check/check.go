// Package check runs live scenarios against a running emulator and reports
// pass/fail per scenario. It exists so "does my local emulator behave like
// the contract says" is one command instead of a curl session.
package check

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	types "github.com/fieldlinehq/linemock/pkg/api/types"
	"github.com/fieldlinehq/linemock/pkg/auth"
	"github.com/fieldlinehq/linemock/pkg/client"
	"github.com/fieldlinehq/linemock/pkg/logging"
	"github.com/fieldlinehq/linemock/pkg/mission"
)

// Result statuses.
const (
	StatusOK   = "ok"
	StatusFail = "fail"
)

// Result is the outcome of one scenario.
type Result struct {
	Name       string `json:"name"`
	Status     string `json:"status"`
	Detail     string `json:"detail,omitempty"`
	DurationMs int64  `json:"duration_ms"`
}

// Passed reports whether the scenario succeeded.
func (r Result) Passed() bool {
	return r.Status == StatusOK
}

// Runner executes the scenario suite against one emulator.
type Runner struct {
	baseURL  string
	username string
	password string
	timeout  time.Duration
	log      *slog.Logger
}

// Option configures a Runner.
type Option func(*Runner)

// WithLogger sets the operational logger.
func WithLogger(log *slog.Logger) Option {
	return func(r *Runner) {
		if log != nil {
			r.log = log
		}
	}
}

// WithCredentials overrides the default test identity.
func WithCredentials(username, password string) Option {
	return func(r *Runner) {
		r.username = username
		r.password = password
	}
}

// WithTimeout sets the per-request HTTP timeout.
func WithTimeout(timeout time.Duration) Option {
	return func(r *Runner) {
		r.timeout = timeout
	}
}

// NewRunner creates a Runner for the emulator at baseURL.
func NewRunner(baseURL string, opts ...Option) *Runner {
	defaults := auth.DefaultIdentities()[0]
	r := &Runner{
		baseURL:  baseURL,
		username: defaults.Username,
		password: defaults.Password,
		timeout:  10 * time.Second,
		log:      logging.Nop(),
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

type scenario struct {
	name string
	run  func(context.Context) error
}

func (r *Runner) scenarios() []scenario {
	return []scenario{
		{"health_reachable", r.checkHealth},
		{"reset_reachable", r.checkReset},
		{"login_rejects_bad_credentials", r.checkBadCredentials},
		{"login_issues_token", r.checkLogin},
		{"missions_require_auth", r.checkAuthRequired},
		{"mission_starts_pending", r.checkCreatePending},
		{"unsupported_comparator_rejected", r.checkUnsupportedComparator},
		{"threshold_boundary_is_strict", r.checkStrictBoundary},
		{"rule_pass_validates", r.checkRulePass},
		{"revalidation_keeps_outcome", r.checkIdempotentRevalidation},
		{"non_numeric_value_rejected", r.checkTypeMismatch},
		{"reset_clears_everything", r.checkResetCompleteness},
	}
}

// Run executes every scenario in order and reports per-scenario results plus
// whether the whole suite passed. Scenarios are self-contained; each one
// logs in (or deliberately does not) on its own.
func (r *Runner) Run(ctx context.Context) ([]Result, bool) {
	suite := r.scenarios()
	allPassed := true
	results := make([]Result, 0, len(suite))

	for _, sc := range suite {
		start := time.Now()
		err := sc.run(ctx)
		res := Result{
			Name:       sc.name,
			Status:     StatusOK,
			DurationMs: time.Since(start).Milliseconds(),
		}
		if err != nil {
			res.Status = StatusFail
			res.Detail = err.Error()
			allPassed = false
		}

		r.log.Debug("scenario finished", "name", sc.name, "status", res.Status, "detail", res.Detail)
		results = append(results, res)
	}

	return results, allPassed
}

func (r *Runner) newClient() *client.Client {
	return client.New(r.baseURL, client.WithTimeout(r.timeout))
}

func (r *Runner) loggedIn(ctx context.Context) (*client.Client, error) {
	c := r.newClient()
	if _, err := c.Login(ctx, r.username, r.password); err != nil {
		return nil, fmt.Errorf("login: %w", err)
	}
	return c, nil
}

// expectKind asserts that err is an API failure of the given kind.
func expectKind(err error, kind string) error {
	if err == nil {
		return fmt.Errorf("expected %s error, got success", kind)
	}
	var apiErr *client.APIError
	if !errors.As(err, &apiErr) {
		return fmt.Errorf("expected %s error, got: %v", kind, err)
	}
	if apiErr.Kind != kind {
		return fmt.Errorf("expected %s error, got %s: %s", kind, apiErr.Kind, apiErr.Message)
	}
	return nil
}

func sampleMission() *types.CreateMissionRequest {
	return &types.CreateMissionRequest{
		Title:  "Check fridge temperature",
		Type:   "temperature_check",
		Target: "store_001",
		Rule:   mission.Rule{Field: "temperature", Operator: mission.OpGreaterThan, Threshold: 4.0},
	}
}

func (r *Runner) checkHealth(ctx context.Context) error {
	hr, err := r.newClient().Health(ctx)
	if err != nil {
		return err
	}
	if hr.Status != "healthy" {
		return fmt.Errorf("unexpected health status %q", hr.Status)
	}
	return nil
}

func (r *Runner) checkReset(ctx context.Context) error {
	rr, err := r.newClient().Reset(ctx)
	if err != nil {
		return err
	}
	if rr.Message == "" {
		return errors.New("reset returned no message")
	}
	return nil
}

func (r *Runner) checkBadCredentials(ctx context.Context) error {
	_, err := r.newClient().Login(ctx, r.username, "definitely-wrong")
	return expectKind(err, types.KindInvalidCredentials)
}

func (r *Runner) checkLogin(ctx context.Context) error {
	lr, err := r.newClient().Login(ctx, r.username, r.password)
	if err != nil {
		return err
	}
	if lr.Token == "" {
		return errors.New("login returned an empty token")
	}
	if !lr.ExpiresAt.After(time.Now()) {
		return fmt.Errorf("token already expired at %s", lr.ExpiresAt)
	}
	return nil
}

func (r *Runner) checkAuthRequired(ctx context.Context) error {
	_, err := r.newClient().ListMissions(ctx, nil)
	return expectKind(err, types.KindTokenUnknown)
}

func (r *Runner) checkCreatePending(ctx context.Context) error {
	c, err := r.loggedIn(ctx)
	if err != nil {
		return err
	}

	m, err := c.CreateMission(ctx, sampleMission())
	if err != nil {
		return err
	}
	if !strings.HasPrefix(m.ID, "msn_") {
		return fmt.Errorf("mission ID %q lacks the msn_ prefix", m.ID)
	}
	if m.Status != mission.StatusPending {
		return fmt.Errorf("fresh mission is %s, want pending", m.Status)
	}
	if m.CreatedBy != r.username {
		return fmt.Errorf("created_by is %q, want %q", m.CreatedBy, r.username)
	}
	return nil
}

func (r *Runner) checkUnsupportedComparator(ctx context.Context) error {
	c, err := r.loggedIn(ctx)
	if err != nil {
		return err
	}

	req := sampleMission()
	req.Rule.Operator = "between"
	_, err = c.CreateMission(ctx, req)
	return expectKind(err, types.KindUnsupportedComparator)
}

func (r *Runner) checkStrictBoundary(ctx context.Context) error {
	c, err := r.loggedIn(ctx)
	if err != nil {
		return err
	}

	m, err := c.CreateMission(ctx, sampleMission())
	if err != nil {
		return err
	}

	// gt is strict: the threshold itself must not pass.
	got, err := c.ValidateMission(ctx, m.ID, 4.0)
	if err != nil {
		return err
	}
	if got.Status != mission.StatusFailed {
		return fmt.Errorf("4.0 at gt 4.0 produced %s, want failed", got.Status)
	}
	return nil
}

func (r *Runner) checkRulePass(ctx context.Context) error {
	c, err := r.loggedIn(ctx)
	if err != nil {
		return err
	}

	m, err := c.CreateMission(ctx, sampleMission())
	if err != nil {
		return err
	}

	got, err := c.ValidateMission(ctx, m.ID, 4.5)
	if err != nil {
		return err
	}
	if got.Status != mission.StatusValidated {
		return fmt.Errorf("4.5 at gt 4.0 produced %s, want validated", got.Status)
	}
	if got.SubmittedValue == nil || *got.SubmittedValue != 4.5 {
		return errors.New("submitted value not recorded")
	}
	return nil
}

func (r *Runner) checkIdempotentRevalidation(ctx context.Context) error {
	c, err := r.loggedIn(ctx)
	if err != nil {
		return err
	}

	m, err := c.CreateMission(ctx, sampleMission())
	if err != nil {
		return err
	}

	first, err := c.ValidateMission(ctx, m.ID, 4.5)
	if err != nil {
		return err
	}

	second, err := c.ValidateMission(ctx, m.ID, 0.0)
	if err != nil {
		return err
	}
	if second.Status != first.Status {
		return fmt.Errorf("re-validation flipped %s to %s", first.Status, second.Status)
	}
	if first.ValidatedAt == nil || second.ValidatedAt == nil || !first.ValidatedAt.Equal(*second.ValidatedAt) {
		return errors.New("re-validation moved the settled timestamp")
	}
	return nil
}

func (r *Runner) checkTypeMismatch(ctx context.Context) error {
	c, err := r.loggedIn(ctx)
	if err != nil {
		return err
	}

	m, err := c.CreateMission(ctx, sampleMission())
	if err != nil {
		return err
	}

	if err := expectKind(func() error {
		_, err := c.ValidateMission(ctx, m.ID, "cold")
		return err
	}(), types.KindTypeMismatch); err != nil {
		return err
	}

	// The failed evaluation must not have settled the mission.
	dump, err := c.DebugMissions(ctx)
	if err != nil {
		return err
	}
	for _, got := range dump.Missions {
		if got.ID == m.ID && got.Status != mission.StatusPending {
			return fmt.Errorf("rejected value still moved the mission to %s", got.Status)
		}
	}
	return nil
}

func (r *Runner) checkResetCompleteness(ctx context.Context) error {
	c, err := r.loggedIn(ctx)
	if err != nil {
		return err
	}
	if _, err := c.CreateMission(ctx, sampleMission()); err != nil {
		return err
	}

	if _, err := c.Reset(ctx); err != nil {
		return err
	}

	// The old token must be gone along with the missions.
	if err := expectKind(func() error {
		_, err := c.ListMissions(ctx, nil)
		return err
	}(), types.KindTokenUnknown); err != nil {
		return err
	}

	st, err := r.newClient().State(ctx)
	if err != nil {
		return err
	}
	if st.Missions != 0 || st.Sessions != 0 {
		return fmt.Errorf("reset left %d missions and %d sessions behind", st.Missions, st.Sessions)
	}

	// And a fresh login starts clean.
	fresh, err := r.loggedIn(ctx)
	if err != nil {
		return err
	}
	list, err := fresh.ListMissions(ctx, nil)
	if err != nil {
		return err
	}
	if list.Total != 0 {
		return fmt.Errorf("fresh session still sees %d missions", list.Total)
	}
	return nil
}
