package config

import (
	"os"
	"strconv"
)

// Environment variable names.
const (
	EnvHost       = "LINEMOCK_HOST"
	EnvPort       = "LINEMOCK_PORT"
	EnvConfig     = "LINEMOCK_CONFIG"
	EnvLogLevel   = "LINEMOCK_LOG_LEVEL"
	EnvLogFormat  = "LINEMOCK_LOG_FORMAT"
	EnvTokenTTL   = "LINEMOCK_TOKEN_TTL"
	EnvSigningKey = "LINEMOCK_SIGNING_KEY"
	EnvBaseURL    = "LINEMOCK_URL"
)

// ApplyEnv overlays environment variables onto cfg. Only variables that are
// set and parseable change anything.
func ApplyEnv(cfg *Config) {
	if v := os.Getenv(EnvHost); v != "" {
		cfg.Host = v
	}
	if v := os.Getenv(EnvPort); v != "" {
		if port, err := strconv.Atoi(v); err == nil {
			cfg.Port = port
		}
	}
	if v := os.Getenv(EnvLogLevel); v != "" {
		cfg.LogLevel = v
	}
	if v := os.Getenv(EnvLogFormat); v != "" {
		cfg.LogFormat = v
	}
	if v := os.Getenv(EnvTokenTTL); v != "" {
		if ttl, err := strconv.Atoi(v); err == nil {
			cfg.Auth.TokenTTL = ttl
		}
	}
	if v := os.Getenv(EnvSigningKey); v != "" {
		cfg.Auth.SigningKey = v
	}
}

// PathFromEnv returns the config file path from the environment, if set.
func PathFromEnv() string {
	return os.Getenv(EnvConfig)
}

// BaseURLFromEnv returns the emulator base URL for client commands, if set.
func BaseURLFromEnv() string {
	return os.Getenv(EnvBaseURL)
}
