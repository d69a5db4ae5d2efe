// Package id generates identifiers for the emulator's resources.
package id

import (
	mathrand "math/rand"
	"sync"
	"time"

	"github.com/oklog/ulid/v2"
)

// MissionPrefix is prepended to every mission identifier.
const MissionPrefix = "msn_"

var (
	entropyMu sync.Mutex
	entropy   = ulid.Monotonic(mathrand.New(mathrand.NewSource(time.Now().UnixNano())), 0)
)

// Mission returns a fresh mission identifier: a msn_-prefixed ULID, unique
// for the life of the process and lexicographically ordered by creation time.
// Identifiers are never handed out twice, including across data resets.
func Mission() string {
	return MissionPrefix + New()
}

// New returns a bare lexicographically sortable identifier.
func New() string {
	entropyMu.Lock()
	defer entropyMu.Unlock()
	return ulid.MustNew(ulid.Timestamp(time.Now()), entropy).String()
}
