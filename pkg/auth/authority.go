package auth

import (
	"crypto/rand"
	"crypto/subtle"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"

	"github.com/fieldlinehq/linemock/pkg/logging"
)

// Issuer is the iss claim stamped into every token.
const Issuer = "linemock"

// DefaultTTL is the session lifetime when none is configured.
const DefaultTTL = time.Hour

// Authentication failures. The distinction matters to clients: unknown means
// the token was never issued here (or was swept by a reset), expired means it
// was issued but its lifetime ran out.
var (
	// ErrInvalidCredentials rejects a login with an unknown username or a
	// wrong password.
	ErrInvalidCredentials = errors.New("invalid credentials")

	// ErrTokenUnknown rejects a token this authority never issued.
	ErrTokenUnknown = errors.New("token unknown")

	// ErrTokenExpired rejects a token past its lifetime.
	ErrTokenExpired = errors.New("token expired")
)

// Claims is the JWT payload carried by issued tokens.
type Claims struct {
	OrgID string `json:"org_id,omitempty"`
	jwt.RegisteredClaims
}

// Session is an issued token with its lifetime.
type Session struct {
	Token     string
	Username  string
	OrgID     string
	IssuedAt  time.Time
	ExpiresAt time.Time
}

// Authority issues and validates session tokens for a fixed identity set.
// The identity set never changes after construction; the session table is
// guarded by a single lock and cleared wholesale on Reset.
type Authority struct {
	identities map[string]Identity

	mu       sync.Mutex
	sessions map[string]*Session

	ttl        time.Duration
	signingKey []byte
	logger     *slog.Logger
	now        func() time.Time
}

// Option configures an Authority.
type Option func(*Authority)

// WithLogger sets the logger. Defaults to a no-op logger.
func WithLogger(logger *slog.Logger) Option {
	return func(a *Authority) {
		if logger != nil {
			a.logger = logger
		}
	}
}

// WithTTL sets the session lifetime. Defaults to DefaultTTL.
func WithTTL(ttl time.Duration) Option {
	return func(a *Authority) {
		if ttl != 0 {
			a.ttl = ttl
		}
	}
}

// WithSigningKey sets the token signing key. Defaults to a random
// per-process key, which means every restart invalidates old tokens.
func WithSigningKey(key []byte) Option {
	return func(a *Authority) {
		if len(key) > 0 {
			a.signingKey = key
		}
	}
}

// NewAuthority creates an Authority over the given identities.
func NewAuthority(identities []Identity, opts ...Option) *Authority {
	a := &Authority{
		identities: make(map[string]Identity, len(identities)),
		sessions:   make(map[string]*Session),
		ttl:        DefaultTTL,
		logger:     logging.Nop(),
		now:        time.Now,
	}
	for _, ident := range identities {
		a.identities[ident.Username] = ident
	}
	for _, opt := range opts {
		opt(a)
	}
	if len(a.signingKey) == 0 {
		key := make([]byte, 32)
		_, _ = rand.Read(key)
		a.signingKey = key
	}
	return a
}

// Login checks credentials against the identity set and, on success, issues
// a signed session token. Unknown usernames and wrong passwords are
// indistinguishable to the caller.
func (a *Authority) Login(username, password string) (*Session, error) {
	ident, ok := a.identities[username]
	if !ok {
		return nil, ErrInvalidCredentials
	}
	if subtle.ConstantTimeCompare([]byte(ident.Password), []byte(password)) != 1 {
		return nil, ErrInvalidCredentials
	}

	now := a.now().UTC()
	expiresAt := now.Add(a.ttl)

	claims := Claims{
		OrgID: ident.OrgID,
		RegisteredClaims: jwt.RegisteredClaims{
			Issuer:    Issuer,
			Subject:   ident.Username,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(expiresAt),
			ID:        uuid.NewString(),
		},
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString(a.signingKey)
	if err != nil {
		return nil, fmt.Errorf("sign token: %w", err)
	}

	sess := &Session{
		Token:     signed,
		Username:  ident.Username,
		OrgID:     ident.OrgID,
		IssuedAt:  now,
		ExpiresAt: expiresAt,
	}

	a.mu.Lock()
	a.sessions[signed] = sess
	a.mu.Unlock()

	a.logger.Debug("session issued", "username", ident.Username, "expires_at", expiresAt)

	out := *sess
	return &out, nil
}

// Validate resolves a token to the identity it was issued for. Expiry is
// checked lazily, at validation time; expired sessions stay in the table so
// repeated checks keep answering expired rather than unknown. Only Reset
// removes them.
func (a *Authority) Validate(token string) (Identity, error) {
	a.mu.Lock()
	defer a.mu.Unlock()

	sess, ok := a.sessions[token]
	if !ok {
		return Identity{}, ErrTokenUnknown
	}

	if a.now().UTC().After(sess.ExpiresAt) {
		a.logger.Debug("session expired", "username", sess.Username)
		return Identity{}, ErrTokenExpired
	}

	return Identity{Username: sess.Username, OrgID: sess.OrgID}, nil
}

// Reset drops every session, valid or not, and returns how many were
// removed. Tokens issued before a reset fail validation afterwards.
func (a *Authority) Reset() int {
	a.mu.Lock()
	defer a.mu.Unlock()

	n := len(a.sessions)
	a.sessions = make(map[string]*Session)
	if n > 0 {
		a.logger.Debug("sessions cleared", "count", n)
	}
	return n
}

// Count returns the number of tracked sessions, including ones that expired
// but have not been observed since.
func (a *Authority) Count() int {
	a.mu.Lock()
	defer a.mu.Unlock()
	return len(a.sessions)
}

// TTL returns the configured session lifetime.
func (a *Authority) TTL() time.Duration {
	return a.ttl
}
