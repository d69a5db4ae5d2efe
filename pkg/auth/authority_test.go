package auth

import (
	"errors"
	"strings"
	"testing"
	"time"
)

func testAuthority(opts ...Option) *Authority {
	return NewAuthority(DefaultIdentities(), opts...)
}

func TestLogin(t *testing.T) {
	a := testAuthority()

	sess, err := a.Login("test_user", "test_password")
	if err != nil {
		t.Fatalf("Login() error = %v", err)
	}

	if sess.Token == "" {
		t.Error("Login() issued an empty token")
	}
	if sess.Username != "test_user" {
		t.Errorf("session username = %q, want %q", sess.Username, "test_user")
	}
	if sess.OrgID != "test_org_123" {
		t.Errorf("session org = %q, want %q", sess.OrgID, "test_org_123")
	}
	if got := sess.ExpiresAt.Sub(sess.IssuedAt); got != DefaultTTL {
		t.Errorf("session lifetime = %v, want %v", got, DefaultTTL)
	}
	// Issued tokens look like JWTs: three dot-separated segments.
	if parts := strings.Split(sess.Token, "."); len(parts) != 3 {
		t.Errorf("token has %d segments, want 3", len(parts))
	}
}

func TestLoginRejectsBadCredentials(t *testing.T) {
	a := testAuthority()

	tests := []struct {
		name     string
		username string
		password string
	}{
		{"unknown user", "nobody", "test_password"},
		{"wrong password", "test_user", "hunter2"},
		{"empty password", "test_user", ""},
		{"empty username", "", "test_password"},
		{"swapped fields", "test_password", "test_user"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := a.Login(tt.username, tt.password)
			if !errors.Is(err, ErrInvalidCredentials) {
				t.Errorf("Login(%q, %q) error = %v, want ErrInvalidCredentials",
					tt.username, tt.password, err)
			}
		})
	}

	if a.Count() != 0 {
		t.Errorf("rejected logins left %d sessions behind", a.Count())
	}
}

func TestValidateRoundTrip(t *testing.T) {
	a := testAuthority()

	sess, err := a.Login("test_user", "test_password")
	if err != nil {
		t.Fatalf("Login() error = %v", err)
	}

	ident, err := a.Validate(sess.Token)
	if err != nil {
		t.Fatalf("Validate() error = %v", err)
	}
	if ident.Username != "test_user" || ident.OrgID != "test_org_123" {
		t.Errorf("Validate() identity = %+v", ident)
	}
}

func TestValidateUnknownToken(t *testing.T) {
	a := testAuthority()

	for _, token := range []string{"", "garbage", "aaa.bbb.ccc"} {
		if _, err := a.Validate(token); !errors.Is(err, ErrTokenUnknown) {
			t.Errorf("Validate(%q) error = %v, want ErrTokenUnknown", token, err)
		}
	}
}

func TestValidateExpiredToken(t *testing.T) {
	a := testAuthority()

	current := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	a.now = func() time.Time { return current }

	sess, err := a.Login("test_user", "test_password")
	if err != nil {
		t.Fatalf("Login() error = %v", err)
	}

	// Just inside the lifetime.
	current = current.Add(DefaultTTL - time.Second)
	if _, err := a.Validate(sess.Token); err != nil {
		t.Fatalf("Validate() before expiry error = %v", err)
	}

	// Just past it. Repeated checks keep saying expired, not unknown.
	current = current.Add(2 * time.Second)
	for i := 0; i < 2; i++ {
		if _, err := a.Validate(sess.Token); !errors.Is(err, ErrTokenExpired) {
			t.Fatalf("Validate() after expiry error = %v, want ErrTokenExpired", err)
		}
	}
}

func TestReset(t *testing.T) {
	a := testAuthority()

	first, _ := a.Login("test_user", "test_password")
	second, _ := a.Login("test_user", "test_password")
	if a.Count() != 2 {
		t.Fatalf("Count() = %d, want 2", a.Count())
	}

	if n := a.Reset(); n != 2 {
		t.Errorf("Reset() = %d, want 2", n)
	}
	if a.Count() != 0 {
		t.Errorf("Count() after reset = %d, want 0", a.Count())
	}

	// Pre-reset tokens are gone, not expired.
	for _, sess := range []*Session{first, second} {
		if _, err := a.Validate(sess.Token); !errors.Is(err, ErrTokenUnknown) {
			t.Errorf("Validate() after reset error = %v, want ErrTokenUnknown", err)
		}
	}

	// The identity set survives a reset.
	if _, err := a.Login("test_user", "test_password"); err != nil {
		t.Errorf("Login() after reset error = %v", err)
	}

	if n := a.Reset(); n != 1 {
		t.Errorf("Reset() = %d, want 1", n)
	}
	if n := a.Reset(); n != 0 {
		t.Errorf("Reset() on empty authority = %d, want 0", n)
	}
}

func TestDistinctTokensPerLogin(t *testing.T) {
	a := testAuthority()

	seen := make(map[string]struct{})
	for i := 0; i < 20; i++ {
		sess, err := a.Login("test_user", "test_password")
		if err != nil {
			t.Fatalf("Login() error = %v", err)
		}
		if _, dup := seen[sess.Token]; dup {
			t.Fatalf("token reissued on login %d", i)
		}
		seen[sess.Token] = struct{}{}
	}
	if a.Count() != 20 {
		t.Errorf("Count() = %d, want 20", a.Count())
	}
}

func TestWithTTL(t *testing.T) {
	a := testAuthority(WithTTL(10 * time.Minute))

	sess, err := a.Login("test_user", "test_password")
	if err != nil {
		t.Fatalf("Login() error = %v", err)
	}
	if got := sess.ExpiresAt.Sub(sess.IssuedAt); got != 10*time.Minute {
		t.Errorf("session lifetime = %v, want 10m", got)
	}
}

func TestConfiguredIdentities(t *testing.T) {
	a := NewAuthority([]Identity{
		{Username: "ops_user", Password: "ops_pass", OrgID: "org_ops"},
		{Username: "qa_user", Password: "qa_pass", OrgID: "org_qa"},
	})

	sess, err := a.Login("qa_user", "qa_pass")
	if err != nil {
		t.Fatalf("Login() error = %v", err)
	}
	if sess.OrgID != "org_qa" {
		t.Errorf("session org = %q, want org_qa", sess.OrgID)
	}

	if _, err := a.Login("test_user", "test_password"); !errors.Is(err, ErrInvalidCredentials) {
		t.Errorf("default identity accepted by custom authority: %v", err)
	}
}

func TestIdentityContext(t *testing.T) {
	ident := Identity{Username: "test_user", OrgID: "test_org_123"}

	ctx := ContextWithIdentity(t.Context(), ident)
	got, ok := IdentityFromContext(ctx)
	if !ok {
		t.Fatal("IdentityFromContext() found nothing")
	}
	if got != ident {
		t.Errorf("IdentityFromContext() = %+v, want %+v", got, ident)
	}

	if _, ok := IdentityFromContext(t.Context()); ok {
		t.Error("IdentityFromContext() on bare context reported an identity")
	}
}
