// Package requestlog keeps a bounded in-memory history of handled requests
// for the debug surface. It exists so developers can see what their
// integration actually sent without tailing server logs.
package requestlog

import (
	"strconv"
	"sync"
	"time"
)

// DefaultMaxEntries caps the history when no capacity is configured.
const DefaultMaxEntries = 1000

// Entry describes one handled request.
type Entry struct {
	ID         string    `json:"id"`
	Timestamp  time.Time `json:"timestamp"`
	Method     string    `json:"method"`
	Path       string    `json:"path"`
	Query      string    `json:"query,omitempty"`
	Status     int       `json:"status"`
	DurationMs int64     `json:"duration_ms"`
	RemoteAddr string    `json:"remote_addr,omitempty"`
}

// Log is a fixed-capacity request history with FIFO eviction.
type Log struct {
	mu         sync.RWMutex
	entries    []*Entry
	maxEntries int
	nextID     int64
}

// New creates a Log holding at most maxEntries requests.
func New(maxEntries int) *Log {
	if maxEntries <= 0 {
		maxEntries = DefaultMaxEntries
	}
	return &Log{
		entries:    make([]*Entry, 0, maxEntries),
		maxEntries: maxEntries,
	}
}

// Record appends an entry, evicting the oldest once at capacity. The ID and
// timestamp are filled in here.
func (l *Log) Record(entry Entry) {
	l.mu.Lock()
	defer l.mu.Unlock()

	l.nextID++
	entry.ID = "req-" + strconv.FormatInt(l.nextID, 10)
	if entry.Timestamp.IsZero() {
		entry.Timestamp = time.Now()
	}

	if len(l.entries) >= l.maxEntries {
		l.entries = l.entries[1:]
	}
	l.entries = append(l.entries, &entry)
}

// List returns entries newest first. A positive limit caps the result.
func (l *Log) List(limit int) []*Entry {
	l.mu.RLock()
	defer l.mu.RUnlock()

	out := make([]*Entry, 0, len(l.entries))
	for i := len(l.entries) - 1; i >= 0; i-- {
		out = append(out, l.entries[i])
		if limit > 0 && len(out) >= limit {
			break
		}
	}
	return out
}

// Clear drops the history and returns how many entries were removed.
func (l *Log) Clear() int {
	l.mu.Lock()
	defer l.mu.Unlock()

	n := len(l.entries)
	l.entries = make([]*Entry, 0, l.maxEntries)
	return n
}

// Count returns the number of retained entries.
func (l *Log) Count() int {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return len(l.entries)
}
