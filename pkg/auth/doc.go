// Package auth is the emulator's session authority: it checks logins against
// a fixed identity set and issues bearer tokens with a fixed lifetime.
//
// Tokens are HS256 JWTs, but the session table is what decides validity: a
// token is good exactly when this authority issued it, it has not expired,
// and no reset has happened since. The signing key is random per process by
// default, so restarts invalidate everything outstanding — the right behavior
// for a development fixture.
package auth
