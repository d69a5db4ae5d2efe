package cli

import (
	"encoding/json"
	"io"
	"net/http/httptest"
	"os"
	"strings"
	"testing"
	"time"

	types "github.com/fieldlinehq/linemock/pkg/api/types"
	"github.com/fieldlinehq/linemock/pkg/client"
	"github.com/fieldlinehq/linemock/pkg/config"
	"github.com/fieldlinehq/linemock/pkg/mission"
	"github.com/fieldlinehq/linemock/pkg/server"
)

// ─── Test infrastructure ────────────────────────────────────────────────────

// captureJSONOutput runs fn with jsonOutput=true and captures stdout.
// Returns the raw bytes written to stdout and any error from fn.
func captureJSONOutput(t *testing.T, fn func() error) ([]byte, error) {
	t.Helper()

	oldJSON := jsonOutput
	jsonOutput = true
	t.Cleanup(func() { jsonOutput = oldJSON })

	return captureStdout(t, fn)
}

// captureStdout runs fn and captures everything it writes to stdout.
func captureStdout(t *testing.T, fn func() error) ([]byte, error) {
	t.Helper()

	oldStdout := os.Stdout
	r, w, err := os.Pipe()
	if err != nil {
		t.Fatalf("failed to create pipe: %v", err)
	}
	os.Stdout = w

	fnErr := fn()

	w.Close()
	os.Stdout = oldStdout

	data, err := io.ReadAll(r)
	if err != nil {
		t.Fatalf("failed to read captured output: %v", err)
	}
	return data, fnErr
}

// assertValidJSON asserts that data is valid JSON and returns the parsed map.
func assertValidJSON(t *testing.T, data []byte) map[string]any {
	t.Helper()

	if len(data) == 0 {
		t.Fatal("stdout was empty; expected JSON output")
	}

	var result map[string]any
	if err := json.Unmarshal(data, &result); err != nil {
		t.Fatalf("stdout is not valid JSON:\n---\n%s\n---\nerror: %v", string(data), err)
	}
	return result
}

// assertHasKeys asserts that the JSON object contains all expected top-level keys.
func assertHasKeys(t *testing.T, obj map[string]any, keys ...string) {
	t.Helper()
	for _, key := range keys {
		if _, ok := obj[key]; !ok {
			t.Errorf("JSON output missing expected key %q; got keys: %v", key, mapKeys(obj))
		}
	}
}

func mapKeys(m map[string]any) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	return keys
}

// startEmulator brings up an in-process emulator and points the CLI at it.
func startEmulator(t *testing.T) *httptest.Server {
	t.Helper()
	srv := server.New(config.Default())
	ts := httptest.NewServer(srv.Handler())
	t.Cleanup(ts.Close)

	oldURL := baseURL
	baseURL = ts.URL
	t.Cleanup(func() { baseURL = oldURL })
	return ts
}

// seedMission creates one mission through the public API.
func seedMission(t *testing.T, ts *httptest.Server) *mission.Mission {
	t.Helper()
	c := client.New(ts.URL)
	if _, err := c.Login(t.Context(), "test_user", "test_password"); err != nil {
		t.Fatalf("seed login: %v", err)
	}
	m, err := c.CreateMission(t.Context(), &types.CreateMissionRequest{
		Title:  "Check fridge temperature",
		Target: "store_001",
		Rule:   mission.Rule{Field: "temperature", Operator: mission.OpGreaterThan, Threshold: 4.0},
	})
	if err != nil {
		t.Fatalf("seed mission: %v", err)
	}
	return m
}

// ─── printResult contract ───────────────────────────────────────────────────

func TestPrintResult_JSONMode(t *testing.T) {
	data, _ := captureJSONOutput(t, func() error {
		printResult(map[string]any{"status": "ok", "count": 42}, func() {
			t.Error("textFn must not run in JSON mode")
		})
		return nil
	})

	obj := assertValidJSON(t, data)
	assertHasKeys(t, obj, "status", "count")

	if obj["status"] != "ok" {
		t.Errorf("status = %v, want ok", obj["status"])
	}
}

func TestPrintResult_TextMode(t *testing.T) {
	oldJSON := jsonOutput
	jsonOutput = false
	defer func() { jsonOutput = oldJSON }()

	called := false
	_, _ = captureStdout(t, func() error {
		printResult(map[string]any{"x": 1}, func() { called = true })
		return nil
	})

	if !called {
		t.Error("textFn should be called in text mode")
	}
}

// ─── version command ────────────────────────────────────────────────────────

func TestVersion_JSONContract(t *testing.T) {
	data, err := captureJSONOutput(t, func() error {
		return versionCmd.RunE(versionCmd, nil)
	})
	if err != nil {
		t.Fatalf("version --json returned error: %v", err)
	}

	obj := assertValidJSON(t, data)
	assertHasKeys(t, obj, "version", "commit", "date", "go", "os", "arch")
}

// ─── status command ─────────────────────────────────────────────────────────

func TestStatus_JSONContract_Running(t *testing.T) {
	ts := startEmulator(t)
	seedMission(t, ts)

	statusCmd.SetContext(t.Context())
	data, err := captureJSONOutput(t, func() error {
		return statusCmd.RunE(statusCmd, nil)
	})
	if err != nil {
		t.Fatalf("status --json returned error: %v", err)
	}

	obj := assertValidJSON(t, data)
	assertHasKeys(t, obj, "url", "running", "state")

	if obj["running"] != true {
		t.Errorf("running = %v, want true", obj["running"])
	}
	state, ok := obj["state"].(map[string]any)
	if !ok {
		t.Fatal("state should be an object")
	}
	assertHasKeys(t, state, "status", "uptime_seconds", "missions", "sessions", "requests", "stores")
	if state["missions"].(float64) != 1 {
		t.Errorf("state.missions = %v, want 1", state["missions"])
	}
}

func TestStatus_JSONContract_NotRunning(t *testing.T) {
	oldURL := baseURL
	baseURL = "http://127.0.0.1:1"
	defer func() { baseURL = oldURL }()

	statusCmd.SetContext(t.Context())
	data, err := captureJSONOutput(t, func() error {
		return statusCmd.RunE(statusCmd, nil)
	})
	if err != nil {
		t.Fatalf("status should not error when the emulator is down: %v", err)
	}

	obj := assertValidJSON(t, data)
	assertHasKeys(t, obj, "url", "running", "error")

	if obj["running"] != false {
		t.Errorf("running = %v, want false", obj["running"])
	}
}

// ─── check command ──────────────────────────────────────────────────────────

func TestCheck_JSONContract(t *testing.T) {
	startEmulator(t)

	checkCmd.SetContext(t.Context())
	data, err := captureJSONOutput(t, func() error {
		return runCheck(checkCmd, nil)
	})
	if err != nil {
		t.Fatalf("check against a healthy emulator should pass: %v", err)
	}

	obj := assertValidJSON(t, data)
	assertHasKeys(t, obj, "checks", "allPassed")

	if obj["allPassed"] != true {
		t.Errorf("allPassed = %v, want true", obj["allPassed"])
	}

	checks, ok := obj["checks"].([]any)
	if !ok {
		t.Fatal("checks should be an array")
	}
	if len(checks) == 0 {
		t.Error("checks should not be empty")
	}
	for i, c := range checks {
		entry, ok := c.(map[string]any)
		if !ok {
			t.Errorf("checks[%d] should be an object", i)
			continue
		}
		assertHasKeys(t, entry, "name", "status", "duration_ms")
		status, _ := entry["status"].(string)
		if status != "ok" && status != "fail" {
			t.Errorf("checks[%d].status = %q, want ok|fail", i, status)
		}
	}
}

func TestCheck_FailsWhenUnreachable(t *testing.T) {
	oldURL := baseURL
	baseURL = "http://127.0.0.1:1"
	defer func() { baseURL = oldURL }()

	oldTimeout := checkTimeout
	checkTimeout = time.Second
	defer func() { checkTimeout = oldTimeout }()

	checkCmd.SetContext(t.Context())
	data, err := captureJSONOutput(t, func() error {
		return runCheck(checkCmd, nil)
	})
	if err == nil {
		t.Fatal("check should exit non-zero when the emulator is unreachable")
	}
	if !strings.Contains(err.Error(), "checks failed") {
		t.Errorf("error = %q, want a failed-checks summary", err)
	}

	// JSON contract holds even on failure; the error goes to stderr.
	obj := assertValidJSON(t, data)
	if obj["allPassed"] != false {
		t.Errorf("allPassed = %v, want false", obj["allPassed"])
	}
}

// ─── missions list command ──────────────────────────────────────────────────

func TestMissionsList_JSONContract(t *testing.T) {
	ts := startEmulator(t)
	seedMission(t, ts)

	missionsListCmd.SetContext(t.Context())
	data, err := captureJSONOutput(t, func() error {
		return runMissionsList(missionsListCmd, nil)
	})
	if err != nil {
		t.Fatalf("missions list --json returned error: %v", err)
	}

	obj := assertValidJSON(t, data)
	assertHasKeys(t, obj, "missions", "count", "total")

	missions, ok := obj["missions"].([]any)
	if !ok {
		t.Fatal("missions should be an array")
	}
	if len(missions) != 1 {
		t.Fatalf("expected 1 mission, got %d", len(missions))
	}
	entry := missions[0].(map[string]any)
	assertHasKeys(t, entry, "mission_id", "title", "target", "rule", "status")
}

func TestMissionsList_TextTable(t *testing.T) {
	ts := startEmulator(t)
	seeded := seedMission(t, ts)

	oldJSON := jsonOutput
	jsonOutput = false
	defer func() { jsonOutput = oldJSON }()

	missionsListCmd.SetContext(t.Context())
	data, err := captureStdout(t, func() error {
		return runMissionsList(missionsListCmd, nil)
	})
	if err != nil {
		t.Fatalf("missions list returned error: %v", err)
	}

	out := string(data)
	if !strings.Contains(out, seeded.ID) {
		t.Errorf("table should contain the mission ID %s:\n%s", seeded.ID, out)
	}
	if !strings.Contains(out, "temperature gt 4") {
		t.Errorf("table should render the rule:\n%s", out)
	}
	if !strings.Contains(out, "1 of 1 missions") {
		t.Errorf("table should summarize the page:\n%s", out)
	}
}

// ─── reset command ──────────────────────────────────────────────────────────

func TestReset_JSONContract(t *testing.T) {
	ts := startEmulator(t)
	seedMission(t, ts)

	resetCmd.SetContext(t.Context())
	data, err := captureJSONOutput(t, func() error {
		return resetCmd.RunE(resetCmd, nil)
	})
	if err != nil {
		t.Fatalf("reset --json returned error: %v", err)
	}

	obj := assertValidJSON(t, data)
	assertHasKeys(t, obj, "message", "missions_cleared", "sessions_cleared", "requests_cleared")

	if obj["message"] != "Mock data reset" {
		t.Errorf("message = %v, want %q", obj["message"], "Mock data reset")
	}
	if obj["missions_cleared"].(float64) != 1 {
		t.Errorf("missions_cleared = %v, want 1", obj["missions_cleared"])
	}
}
