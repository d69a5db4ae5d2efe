package mission

import (
	"sort"
	"sync"
	"time"

	"github.com/fieldlinehq/linemock/internal/id"
)

// Store is the in-memory mission table. All access goes through one lock;
// mutating operations are atomic with respect to each other.
type Store struct {
	mu       sync.RWMutex
	missions map[string]*Mission
	now      func() time.Time
}

// NewStore creates an empty mission table.
func NewStore() *Store {
	return &Store{
		missions: make(map[string]*Mission),
		now:      time.Now,
	}
}

// Filter narrows List results. Zero values match everything.
type Filter struct {
	// Status keeps only missions in this lifecycle state.
	Status Status

	// Target keeps only missions assigned to this store/unit.
	Target string

	// Limit caps the number of returned missions. Zero or negative means no
	// cap.
	Limit int
}

// Create validates spec, assigns a fresh identifier, and records the mission
// in pending state. Identifiers are never reused, including after Reset.
func (s *Store) Create(spec CreateSpec) (*Mission, error) {
	if spec.Title == "" {
		return nil, &SpecError{Field: "title", Message: "required"}
	}
	if spec.Target == "" {
		return nil, &SpecError{Field: "target", Message: "required"}
	}
	if spec.Rule.Field == "" {
		return nil, &SpecError{Field: "rule.field", Message: "required"}
	}
	if !SupportedOperator(spec.Rule.Operator) {
		return nil, &UnsupportedComparatorError{Operator: string(spec.Rule.Operator)}
	}

	priority := spec.Priority
	if priority == "" {
		priority = DefaultPriority
	}

	m := &Mission{
		ID:           id.Mission(),
		Title:        spec.Title,
		Type:         spec.Type,
		Target:       spec.Target,
		Rule:         spec.Rule,
		Status:       StatusPending,
		Priority:     priority,
		DueDate:      spec.DueDate,
		CustomFields: spec.CustomFields,
		CreatedBy:    spec.CreatedBy,
		CreatedAt:    s.now().UTC(),
	}

	s.mu.Lock()
	s.missions[m.ID] = m
	s.mu.Unlock()

	return m.Clone(), nil
}

// Get returns the mission under id.
func (s *Store) Get(missionID string) (*Mission, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	m, ok := s.missions[missionID]
	if !ok {
		return nil, &NotFoundError{ID: missionID}
	}
	return m.Clone(), nil
}

// List returns missions matching f in creation order, plus the total number
// of matches before the limit was applied. Repeated calls with the same
// filter and unchanged state return the same sequence.
func (s *Store) List(f Filter) ([]*Mission, int) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	matched := make([]*Mission, 0, len(s.missions))
	for _, m := range s.missions {
		if f.Status != "" && m.Status != f.Status {
			continue
		}
		if f.Target != "" && m.Target != f.Target {
			continue
		}
		matched = append(matched, m)
	}

	// Identifiers are monotonic, so ID order is creation order.
	sort.Slice(matched, func(i, j int) bool {
		return matched[i].ID < matched[j].ID
	})

	total := len(matched)
	if f.Limit > 0 && len(matched) > f.Limit {
		matched = matched[:f.Limit]
	}

	out := make([]*Mission, len(matched))
	for i, m := range matched {
		out[i] = m.Clone()
	}
	return out, total
}

// Validate applies the mission's own rule to a submitted value and moves the
// mission to validated or failed. A mission already in a terminal state is
// returned unchanged: same outcome, same timestamp, no re-evaluation.
// Evaluation failures leave the mission pending.
func (s *Store) Validate(missionID string, value interface{}) (*Mission, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	m, ok := s.missions[missionID]
	if !ok {
		return nil, &NotFoundError{ID: missionID}
	}

	if m.Status.Terminal() {
		return m.Clone(), nil
	}

	num, ok := toFloat(value)
	if !ok {
		return nil, &TypeMismatchError{Field: "value", Value: value}
	}

	pass, err := evaluateNumber(m.Rule, num)
	if err != nil {
		return nil, err
	}

	now := s.now().UTC()
	m.SubmittedValue = &num
	m.ValidatedAt = &now
	if pass {
		m.Status = StatusValidated
	} else {
		m.Status = StatusFailed
	}

	return m.Clone(), nil
}

// Reset drops every mission and returns how many were removed.
func (s *Store) Reset() int {
	s.mu.Lock()
	defer s.mu.Unlock()

	n := len(s.missions)
	s.missions = make(map[string]*Mission)
	return n
}

// Count returns the number of stored missions.
func (s *Store) Count() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.missions)
}
