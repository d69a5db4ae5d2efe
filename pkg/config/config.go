// Package config defines the emulator configuration: defaults, file loading,
// and environment overrides. Precedence is flags > environment > file >
// defaults; the CLI wires that order.
package config

import (
	"errors"
	"fmt"
	"time"

	"github.com/fieldlinehq/linemock/pkg/auth"
)

// Defaults. The port and credentials are load-bearing: integration code and
// its test suites are written against them.
const (
	// DefaultHost binds all interfaces so containerized callers reach the
	// emulator.
	DefaultHost = "0.0.0.0"

	// DefaultPort is the port integration code expects the emulator on.
	DefaultPort = 5000

	// DefaultReadTimeout is the HTTP read timeout in seconds.
	DefaultReadTimeout = 30

	// DefaultWriteTimeout is the HTTP write timeout in seconds.
	DefaultWriteTimeout = 30

	// DefaultTokenTTL is the session lifetime in seconds.
	DefaultTokenTTL = 3600

	// DefaultListLimit is the page size for mission listings when the
	// request does not pass one.
	DefaultListLimit = 10

	// DefaultMaxRequestLog is how many recent requests the debug surface
	// keeps.
	DefaultMaxRequestLog = 1000
)

// Config is the emulator's full configuration.
type Config struct {
	// Host is the bind address.
	Host string `json:"host" yaml:"host"`

	// Port is the HTTP listen port.
	Port int `json:"port" yaml:"port"`

	// ReadTimeout and WriteTimeout are HTTP server timeouts in seconds.
	ReadTimeout  int `json:"readTimeout" yaml:"readTimeout"`
	WriteTimeout int `json:"writeTimeout" yaml:"writeTimeout"`

	// LogLevel is one of debug, info, warn, error.
	LogLevel string `json:"logLevel" yaml:"logLevel"`

	// LogFormat is text or json.
	LogFormat string `json:"logFormat" yaml:"logFormat"`

	// ListLimit is the default page size for mission listings.
	ListLimit int `json:"listLimit" yaml:"listLimit"`

	// MaxRequestLog caps the debug request history.
	MaxRequestLog int `json:"maxRequestLog" yaml:"maxRequestLog"`

	// Auth configures the session authority.
	Auth AuthConfig `json:"auth" yaml:"auth"`

	// Stores seeds the store fixture served under /public/api/stores.
	Stores []StoreFixture `json:"stores" yaml:"stores"`

	// Tenant is the single tenant the emulator reports.
	Tenant TenantFixture `json:"tenant" yaml:"tenant"`
}

// AuthConfig configures the session authority.
type AuthConfig struct {
	// Identities are the accepted login principals.
	Identities []auth.Identity `json:"identities" yaml:"identities"`

	// TokenTTL is the session lifetime in seconds.
	TokenTTL int `json:"tokenTtl" yaml:"tokenTtl"`

	// SigningKey pins the JWT signing key. Empty means a random per-process
	// key, which invalidates outstanding tokens on restart.
	SigningKey string `json:"signingKey,omitempty" yaml:"signingKey,omitempty"`
}

// TTL returns the session lifetime as a duration.
func (a AuthConfig) TTL() time.Duration {
	return time.Duration(a.TokenTTL) * time.Second
}

// StoreFixture is one entry of the store fixture.
type StoreFixture struct {
	ID       string `json:"id" yaml:"id"`
	Name     string `json:"name" yaml:"name"`
	Location string `json:"location" yaml:"location"`
}

// TenantFixture is the tenant the emulator reports.
type TenantFixture struct {
	ID   string `json:"id" yaml:"id"`
	Name string `json:"name" yaml:"name"`
}

// Default returns the configuration the emulator ships with.
func Default() *Config {
	return &Config{
		Host:          DefaultHost,
		Port:          DefaultPort,
		ReadTimeout:   DefaultReadTimeout,
		WriteTimeout:  DefaultWriteTimeout,
		LogLevel:      "info",
		LogFormat:     "text",
		ListLimit:     DefaultListLimit,
		MaxRequestLog: DefaultMaxRequestLog,
		Auth: AuthConfig{
			Identities: auth.DefaultIdentities(),
			TokenTTL:   DefaultTokenTTL,
		},
		Stores: DefaultStores(),
		Tenant: TenantFixture{ID: "test_tenant", Name: "Test Organization"},
	}
}

// DefaultStores returns the store fixture the emulator ships with.
func DefaultStores() []StoreFixture {
	return []StoreFixture{
		{ID: "store_001", Name: "Test Store 1", Location: "New York"},
		{ID: "store_002", Name: "Test Store 2", Location: "Boston"},
		{ID: "store_003", Name: "Test Store 3", Location: "Chicago"},
	}
}

// Validate checks the configuration for values the emulator cannot run with.
func (c *Config) Validate() error {
	if c.Port <= 0 || c.Port > 65535 {
		return fmt.Errorf("port %d out of range", c.Port)
	}
	if c.ReadTimeout < 0 || c.WriteTimeout < 0 {
		return errors.New("timeouts must not be negative")
	}
	if len(c.Auth.Identities) == 0 {
		return errors.New("at least one identity is required")
	}
	seen := make(map[string]struct{}, len(c.Auth.Identities))
	for i, ident := range c.Auth.Identities {
		if ident.Username == "" {
			return fmt.Errorf("identity %d has no username", i)
		}
		if ident.Password == "" {
			return fmt.Errorf("identity %q has no password", ident.Username)
		}
		if _, dup := seen[ident.Username]; dup {
			return fmt.Errorf("identity %q declared twice", ident.Username)
		}
		seen[ident.Username] = struct{}{}
	}
	if c.Auth.TokenTTL <= 0 {
		return errors.New("auth.tokenTtl must be positive")
	}
	storeIDs := make(map[string]struct{}, len(c.Stores))
	for _, store := range c.Stores {
		if store.ID == "" {
			return errors.New("store fixture entries need an id")
		}
		if _, dup := storeIDs[store.ID]; dup {
			return fmt.Errorf("store fixture %q declared twice", store.ID)
		}
		storeIDs[store.ID] = struct{}{}
	}
	return nil
}
