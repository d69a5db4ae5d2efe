package mission

import (
	"errors"
	"strings"
	"sync"
	"testing"
	"time"
)

func validSpec() CreateSpec {
	return CreateSpec{
		Title:     "Check fridge temperature",
		Target:    "store_001",
		Rule:      Rule{Field: "temperature", Operator: OpGreaterThan, Threshold: 4.0},
		CreatedBy: "test_user",
	}
}

func TestStoreCreate(t *testing.T) {
	store := NewStore()

	m, err := store.Create(validSpec())
	if err != nil {
		t.Fatalf("Create() error = %v", err)
	}

	if m.ID == "" {
		t.Error("Create() assigned no identifier")
	}
	if !strings.HasPrefix(m.ID, "msn_") {
		t.Errorf("Create() identifier = %q, want msn_ prefix", m.ID)
	}
	if m.Status != StatusPending {
		t.Errorf("Create() status = %q, want %q", m.Status, StatusPending)
	}
	if m.Priority != DefaultPriority {
		t.Errorf("Create() priority = %q, want %q", m.Priority, DefaultPriority)
	}
	if m.CreatedAt.IsZero() {
		t.Error("Create() left created_at unset")
	}
	if m.ValidatedAt != nil {
		t.Error("Create() set validated_at on a pending mission")
	}
	if store.Count() != 1 {
		t.Errorf("Count() = %d, want 1", store.Count())
	}
}

func TestStoreCreateUniqueIDs(t *testing.T) {
	store := NewStore()

	seen := make(map[string]struct{})
	for i := 0; i < 100; i++ {
		m, err := store.Create(validSpec())
		if err != nil {
			t.Fatalf("Create() error = %v", err)
		}
		if _, dup := seen[m.ID]; dup {
			t.Fatalf("Create() reused identifier %q", m.ID)
		}
		seen[m.ID] = struct{}{}
	}
}

func TestStoreCreateValidation(t *testing.T) {
	tests := []struct {
		name      string
		mutate    func(*CreateSpec)
		wantField string
	}{
		{
			name:      "missing title",
			mutate:    func(s *CreateSpec) { s.Title = "" },
			wantField: "title",
		},
		{
			name:      "missing target",
			mutate:    func(s *CreateSpec) { s.Target = "" },
			wantField: "target",
		},
		{
			name:      "missing rule field",
			mutate:    func(s *CreateSpec) { s.Rule.Field = "" },
			wantField: "rule.field",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			store := NewStore()
			spec := validSpec()
			tt.mutate(&spec)

			_, err := store.Create(spec)

			var specErr *SpecError
			if !errors.As(err, &specErr) {
				t.Fatalf("Create() error = %v, want SpecError", err)
			}
			if specErr.Field != tt.wantField {
				t.Errorf("SpecError field = %q, want %q", specErr.Field, tt.wantField)
			}
			if store.Count() != 0 {
				t.Errorf("rejected create left %d missions behind", store.Count())
			}
		})
	}
}

func TestStoreCreateUnsupportedComparator(t *testing.T) {
	store := NewStore()
	spec := validSpec()
	spec.Rule.Operator = "between"

	_, err := store.Create(spec)

	var ucErr *UnsupportedComparatorError
	if !errors.As(err, &ucErr) {
		t.Fatalf("Create() error = %v, want UnsupportedComparatorError", err)
	}
	if store.Count() != 0 {
		t.Error("rejected create left missions behind")
	}
}

func TestStoreGet(t *testing.T) {
	store := NewStore()
	created, err := store.Create(validSpec())
	if err != nil {
		t.Fatalf("Create() error = %v", err)
	}

	got, err := store.Get(created.ID)
	if err != nil {
		t.Fatalf("Get() error = %v", err)
	}
	if got.ID != created.ID || got.Title != created.Title {
		t.Errorf("Get() = %+v, want %+v", got, created)
	}

	_, err = store.Get("msn_does_not_exist")
	var nfErr *NotFoundError
	if !errors.As(err, &nfErr) {
		t.Fatalf("Get(unknown) error = %v, want NotFoundError", err)
	}
}

func TestStoreGetReturnsCopy(t *testing.T) {
	store := NewStore()
	created, _ := store.Create(validSpec())

	got, _ := store.Get(created.ID)
	got.Title = "mutated by caller"
	got.Rule.Threshold = 99

	again, _ := store.Get(created.ID)
	if again.Title != "Check fridge temperature" {
		t.Errorf("caller mutation leaked into the store: title = %q", again.Title)
	}
	if again.Rule.Threshold != 4.0 {
		t.Errorf("caller mutation leaked into the store: threshold = %v", again.Rule.Threshold)
	}
}

func TestStoreList(t *testing.T) {
	store := NewStore()

	for i := 0; i < 3; i++ {
		spec := validSpec()
		if i == 2 {
			spec.Target = "store_002"
		}
		if _, err := store.Create(spec); err != nil {
			t.Fatalf("Create() error = %v", err)
		}
	}

	all, total := store.List(Filter{})
	if len(all) != 3 || total != 3 {
		t.Fatalf("List() = %d missions, total %d, want 3/3", len(all), total)
	}

	// Creation order is preserved.
	for i := 1; i < len(all); i++ {
		if all[i-1].ID >= all[i].ID {
			t.Errorf("List() out of creation order: %q before %q", all[i-1].ID, all[i].ID)
		}
	}

	byTarget, total := store.List(Filter{Target: "store_002"})
	if len(byTarget) != 1 || total != 1 {
		t.Errorf("List(target) = %d missions, total %d, want 1/1", len(byTarget), total)
	}

	limited, total := store.List(Filter{Limit: 2})
	if len(limited) != 2 {
		t.Errorf("List(limit 2) returned %d missions, want 2", len(limited))
	}
	if total != 3 {
		t.Errorf("List(limit 2) total = %d, want 3", total)
	}
}

func TestStoreListByStatus(t *testing.T) {
	store := NewStore()

	first, _ := store.Create(validSpec())
	second, _ := store.Create(validSpec())

	if _, err := store.Validate(first.ID, 10.0); err != nil {
		t.Fatalf("Validate() error = %v", err)
	}

	validated, total := store.List(Filter{Status: StatusValidated})
	if total != 1 || len(validated) != 1 || validated[0].ID != first.ID {
		t.Fatalf("List(validated) = %+v, total %d", validated, total)
	}

	pending, total := store.List(Filter{Status: StatusPending})
	if total != 1 || len(pending) != 1 || pending[0].ID != second.ID {
		t.Fatalf("List(pending) = %+v, total %d", pending, total)
	}
}

func TestStoreValidateOutcomes(t *testing.T) {
	tests := []struct {
		name       string
		value      float64
		wantStatus Status
	}{
		{"above threshold passes", 4.5, StatusValidated},
		{"at boundary fails under gt", 4.0, StatusFailed},
		{"below threshold fails", 3.2, StatusFailed},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			store := NewStore()
			created, _ := store.Create(validSpec())

			got, err := store.Validate(created.ID, tt.value)
			if err != nil {
				t.Fatalf("Validate() error = %v", err)
			}
			if got.Status != tt.wantStatus {
				t.Errorf("Validate(%v) status = %q, want %q", tt.value, got.Status, tt.wantStatus)
			}
			if got.ValidatedAt == nil {
				t.Error("Validate() left validated_at unset")
			}
			if got.SubmittedValue == nil || *got.SubmittedValue != tt.value {
				t.Errorf("Validate() submitted_value = %v, want %v", got.SubmittedValue, tt.value)
			}
		})
	}
}

func TestStoreValidateIdempotent(t *testing.T) {
	store := NewStore()

	// Fixed clock so a second validation at a later time would be visible.
	current := time.Date(2026, 3, 1, 9, 0, 0, 0, time.UTC)
	store.now = func() time.Time { return current }

	created, _ := store.Create(validSpec())

	first, err := store.Validate(created.ID, 8.0)
	if err != nil {
		t.Fatalf("Validate() error = %v", err)
	}
	if first.Status != StatusValidated {
		t.Fatalf("Validate() status = %q, want %q", first.Status, StatusValidated)
	}

	current = current.Add(2 * time.Hour)

	// Same mission, contradicting value: outcome and timestamp must not move.
	second, err := store.Validate(created.ID, 0.5)
	if err != nil {
		t.Fatalf("repeat Validate() error = %v", err)
	}
	if second.Status != StatusValidated {
		t.Errorf("repeat Validate() status = %q, want %q", second.Status, StatusValidated)
	}
	if !second.ValidatedAt.Equal(*first.ValidatedAt) {
		t.Errorf("repeat Validate() moved validated_at from %v to %v", first.ValidatedAt, second.ValidatedAt)
	}
	if *second.SubmittedValue != 8.0 {
		t.Errorf("repeat Validate() overwrote submitted_value with %v", *second.SubmittedValue)
	}
}

func TestStoreValidateTypeMismatchLeavesPending(t *testing.T) {
	store := NewStore()
	created, _ := store.Create(validSpec())

	_, err := store.Validate(created.ID, "not-a-number")
	var tmErr *TypeMismatchError
	if !errors.As(err, &tmErr) {
		t.Fatalf("Validate() error = %v, want TypeMismatchError", err)
	}

	got, _ := store.Get(created.ID)
	if got.Status != StatusPending {
		t.Errorf("failed evaluation moved status to %q, want %q", got.Status, StatusPending)
	}
	if got.ValidatedAt != nil {
		t.Error("failed evaluation set validated_at")
	}
}

func TestStoreValidateUnknownMission(t *testing.T) {
	store := NewStore()

	_, err := store.Validate("msn_missing", 1.0)
	var nfErr *NotFoundError
	if !errors.As(err, &nfErr) {
		t.Fatalf("Validate(unknown) error = %v, want NotFoundError", err)
	}
}

func TestStoreReset(t *testing.T) {
	store := NewStore()

	before, _ := store.Create(validSpec())
	store.Create(validSpec())

	if n := store.Reset(); n != 2 {
		t.Errorf("Reset() = %d, want 2", n)
	}
	if store.Count() != 0 {
		t.Errorf("Count() after reset = %d, want 0", store.Count())
	}

	_, err := store.Get(before.ID)
	var nfErr *NotFoundError
	if !errors.As(err, &nfErr) {
		t.Errorf("Get() after reset error = %v, want NotFoundError", err)
	}

	// Fresh creations never resurrect old identifiers.
	after, _ := store.Create(validSpec())
	if after.ID == before.ID {
		t.Errorf("identifier %q reused after reset", after.ID)
	}
	if n := store.Reset(); n != 1 {
		t.Errorf("second Reset() = %d, want 1", n)
	}
	if n := store.Reset(); n != 0 {
		t.Errorf("Reset() on empty store = %d, want 0", n)
	}
}

func TestStoreConcurrentAccess(t *testing.T) {
	store := NewStore()

	var wg sync.WaitGroup
	for g := 0; g < 8; g++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for i := 0; i < 50; i++ {
				m, err := store.Create(validSpec())
				if err != nil {
					t.Errorf("Create() error = %v", err)
					return
				}
				if _, err := store.Validate(m.ID, 5.0); err != nil {
					t.Errorf("Validate() error = %v", err)
					return
				}
				store.List(Filter{Status: StatusValidated})
			}
		}()
	}
	wg.Wait()

	if store.Count() != 8*50 {
		t.Errorf("Count() = %d, want %d", store.Count(), 8*50)
	}
}
