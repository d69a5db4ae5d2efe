package cli

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/fieldlinehq/linemock/pkg/config"
)

// resetServeFlags clears flag state left behind by earlier tests. Cobra flag
// vars are package globals, so tests must restore them.
func resetServeFlags() {
	for _, name := range []string{"host", "port", "config", "log-level", "log-format", "token-ttl"} {
		if f := serveCmd.Flags().Lookup(name); f != nil {
			f.Changed = false
		}
	}
	serveConfigFile = ""
}

func writeServeConfig(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "linemock.yaml")
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}
	return path
}

func TestResolveServeConfig_Defaults(t *testing.T) {
	resetServeFlags()
	t.Cleanup(resetServeFlags)

	cfg, err := resolveServeConfig(serveCmd)
	if err != nil {
		t.Fatalf("resolveServeConfig: %v", err)
	}
	if cfg.Port != config.DefaultPort {
		t.Errorf("Port = %d, want %d", cfg.Port, config.DefaultPort)
	}
	if cfg.Auth.TokenTTL != config.DefaultTokenTTL {
		t.Errorf("TokenTTL = %d, want %d", cfg.Auth.TokenTTL, config.DefaultTokenTTL)
	}
}

func TestResolveServeConfig_FileOverridesDefaults(t *testing.T) {
	resetServeFlags()
	t.Cleanup(resetServeFlags)

	serveConfigFile = writeServeConfig(t, "port: 6000\nlogLevel: debug\n")

	cfg, err := resolveServeConfig(serveCmd)
	if err != nil {
		t.Fatalf("resolveServeConfig: %v", err)
	}
	if cfg.Port != 6000 {
		t.Errorf("Port = %d, want 6000 from file", cfg.Port)
	}
	if cfg.LogLevel != "debug" {
		t.Errorf("LogLevel = %q, want debug from file", cfg.LogLevel)
	}
}

func TestResolveServeConfig_EnvOverridesFile(t *testing.T) {
	resetServeFlags()
	t.Cleanup(resetServeFlags)

	serveConfigFile = writeServeConfig(t, "port: 6000\n")
	t.Setenv(config.EnvPort, "7000")

	cfg, err := resolveServeConfig(serveCmd)
	if err != nil {
		t.Fatalf("resolveServeConfig: %v", err)
	}
	if cfg.Port != 7000 {
		t.Errorf("Port = %d, want 7000 from env", cfg.Port)
	}
}

func TestResolveServeConfig_FlagsOverrideEnv(t *testing.T) {
	resetServeFlags()
	t.Cleanup(resetServeFlags)

	serveConfigFile = writeServeConfig(t, "port: 6000\n")
	t.Setenv(config.EnvPort, "7000")
	if err := serveCmd.Flags().Set("port", "8000"); err != nil {
		t.Fatal(err)
	}

	cfg, err := resolveServeConfig(serveCmd)
	if err != nil {
		t.Fatalf("resolveServeConfig: %v", err)
	}
	if cfg.Port != 8000 {
		t.Errorf("Port = %d, want 8000 from flag", cfg.Port)
	}
}

func TestResolveServeConfig_ConfigFileFromEnv(t *testing.T) {
	resetServeFlags()
	t.Cleanup(resetServeFlags)

	path := writeServeConfig(t, "port: 6600\n")
	t.Setenv(config.EnvConfig, path)

	cfg, err := resolveServeConfig(serveCmd)
	if err != nil {
		t.Fatalf("resolveServeConfig: %v", err)
	}
	if cfg.Port != 6600 {
		t.Errorf("Port = %d, want 6600 from LINEMOCK_CONFIG file", cfg.Port)
	}
}

func TestResolveServeConfig_MissingFile(t *testing.T) {
	resetServeFlags()
	t.Cleanup(resetServeFlags)

	serveConfigFile = filepath.Join(t.TempDir(), "absent.yaml")

	if _, err := resolveServeConfig(serveCmd); err == nil {
		t.Fatal("expected an error for a missing config file")
	}
}

func TestResolveServeConfig_RejectsInvalid(t *testing.T) {
	resetServeFlags()
	t.Cleanup(resetServeFlags)

	if err := serveCmd.Flags().Set("token-ttl", "0"); err != nil {
		t.Fatal(err)
	}

	if _, err := resolveServeConfig(serveCmd); err == nil {
		t.Fatal("expected validation to reject a zero token TTL")
	}
}
