// Package mission holds the emulator's mission domain: the mission model,
// the in-memory mission table, and the rule evaluator that decides outcomes.
//
// Missions move through a one-way lifecycle:
//
//	pending -> validated
//	pending -> failed
//
// The transition happens exactly once, when a measurement is submitted
// against the mission's rule. Re-validating a terminal mission returns the
// stored outcome untouched, so clients can retry submissions safely.
//
// Rules compare one numeric value against a threshold with one of the
// comparators gt, lt, eq, gte, lte. Comparisons are strict: a gt rule with
// threshold 4.0 does not pass at exactly 4.0.
//
// Thread safety: the Store serializes all access through a single
// sync.RWMutex, so every operation observes and produces a consistent table.
//
// Usage:
//
//	store := mission.NewStore()
//	m, err := store.Create(mission.CreateSpec{
//	    Title:  "Check fridge temperature",
//	    Target: "store_001",
//	    Rule:   mission.Rule{Field: "temperature", Operator: mission.OpGreaterThan, Threshold: 4.0},
//	})
//	m, err = store.Validate(m.ID, 4.5) // -> validated
package mission
