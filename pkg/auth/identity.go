package auth

import "context"

// Identity is a login principal known to the emulator. The password travels
// only through configuration; API responses never embed an Identity.
type Identity struct {
	Username string `json:"username" yaml:"username"`
	Password string `json:"password,omitempty" yaml:"password"`
	OrgID    string `json:"org_id" yaml:"org_id"`
}

// DefaultIdentities returns the identity set the emulator ships with. These
// are the credentials integration code is written against.
func DefaultIdentities() []Identity {
	return []Identity{
		{Username: "test_user", Password: "test_password", OrgID: "test_org_123"},
	}
}

type ctxKey struct{}

// ContextWithIdentity stores the authenticated identity in the context.
func ContextWithIdentity(ctx context.Context, ident Identity) context.Context {
	return context.WithValue(ctx, ctxKey{}, ident)
}

// IdentityFromContext extracts the authenticated identity, if any.
func IdentityFromContext(ctx context.Context) (Identity, bool) {
	ident, ok := ctx.Value(ctxKey{}).(Identity)
	return ident, ok
}
