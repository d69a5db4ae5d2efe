package mission

import "time"

// Status is the lifecycle state of a mission.
type Status string

// Mission lifecycle states. Missions start pending and move to exactly one of
// the terminal states; terminal missions never change again.
const (
	StatusPending   Status = "pending"
	StatusValidated Status = "validated"
	StatusFailed    Status = "failed"
)

// Terminal reports whether s is an end state.
func (s Status) Terminal() bool {
	return s == StatusValidated || s == StatusFailed
}

// Operator is a comparison operator in a validation rule.
type Operator string

// The closed comparator set. Anything else is rejected.
const (
	OpGreaterThan    Operator = "gt"
	OpLessThan       Operator = "lt"
	OpEqual          Operator = "eq"
	OpGreaterOrEqual Operator = "gte"
	OpLessOrEqual    Operator = "lte"
)

// Operators returns the supported comparators in canonical order.
func Operators() []Operator {
	return []Operator{OpGreaterThan, OpLessThan, OpEqual, OpGreaterOrEqual, OpLessOrEqual}
}

// Rule decides a mission's outcome from a single submitted measurement.
type Rule struct {
	// Field names the measurement the rule applies to, e.g. "temperature".
	Field string `json:"field" yaml:"field"`

	// Operator compares the submitted value against Threshold.
	Operator Operator `json:"operator" yaml:"operator"`

	// Threshold is the boundary value.
	Threshold float64 `json:"threshold" yaml:"threshold"`
}

// Mission is a unit of field work tracked by the emulator.
type Mission struct {
	ID             string                 `json:"mission_id"`
	Title          string                 `json:"title"`
	Type           string                 `json:"type,omitempty"`
	Target         string                 `json:"target"`
	Rule           Rule                   `json:"rule"`
	Status         Status                 `json:"status"`
	Priority       string                 `json:"priority"`
	DueDate        string                 `json:"due_date,omitempty"`
	CustomFields   map[string]interface{} `json:"custom_fields,omitempty"`
	CreatedBy      string                 `json:"created_by"`
	CreatedAt      time.Time              `json:"created_at"`
	ValidatedAt    *time.Time             `json:"validated_at,omitempty"`
	SubmittedValue *float64               `json:"submitted_value,omitempty"`
}

// Clone returns a deep copy safe to hold after the store lock is released.
func (m *Mission) Clone() *Mission {
	if m == nil {
		return nil
	}
	clone := *m
	if m.ValidatedAt != nil {
		t := *m.ValidatedAt
		clone.ValidatedAt = &t
	}
	if m.SubmittedValue != nil {
		v := *m.SubmittedValue
		clone.SubmittedValue = &v
	}
	if m.CustomFields != nil {
		fields := make(map[string]interface{}, len(m.CustomFields))
		for k, v := range m.CustomFields {
			fields[k] = v
		}
		clone.CustomFields = fields
	}
	return &clone
}

// CreateSpec carries the caller-supplied fields for a new mission.
type CreateSpec struct {
	Title        string
	Type         string
	Target       string
	Rule         Rule
	Priority     string
	DueDate      string
	CustomFields map[string]interface{}
	CreatedBy    string
}

// DefaultPriority is assigned when a creation request leaves priority empty.
const DefaultPriority = "medium"
