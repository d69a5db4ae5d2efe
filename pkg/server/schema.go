package server

import (
	"strings"

	"github.com/santhosh-tekuri/jsonschema/v5"

	types "github.com/fieldlinehq/linemock/pkg/api/types"
)

// missionSchemaJSON is the boundary contract for mission creation. Presence
// and type checks live here; semantic checks (comparator support, rule
// evaluation) stay in the mission store.
const missionSchemaJSON = `{
	"$schema": "https://json-schema.org/draft/2020-12/schema",
	"type": "object",
	"required": ["title", "target", "rule"],
	"properties": {
		"title": {"type": "string", "minLength": 1},
		"type": {"type": "string"},
		"target": {"type": "string", "minLength": 1},
		"priority": {"type": "string"},
		"due_date": {"type": "string"},
		"custom_fields": {"type": "object"},
		"rule": {
			"type": "object",
			"required": ["field", "operator", "threshold"],
			"properties": {
				"field": {"type": "string", "minLength": 1},
				"operator": {"type": "string"},
				"threshold": {"type": "number"}
			}
		}
	}
}`

var missionSchema = jsonschema.MustCompileString("mission.json", missionSchemaJSON)

// schemaFailure maps a schema violation to a wire error kind and message.
// Threshold type violations surface as type_mismatch so clients see the same
// kind whether the bad number arrives at creation or at validation time.
func schemaFailure(err error) (kind, message string) {
	ve, ok := err.(*jsonschema.ValidationError)
	if !ok {
		return types.KindInvalidMissionSpec, err.Error()
	}

	leaf := leafCause(ve)
	if leaf.InstanceLocation == "/rule/threshold" {
		return types.KindTypeMismatch, "rule.threshold must be a number"
	}

	field := strings.ReplaceAll(strings.TrimPrefix(leaf.InstanceLocation, "/"), "/", ".")
	if field == "" {
		return types.KindInvalidMissionSpec, leaf.Message
	}
	return types.KindInvalidMissionSpec, field + ": " + leaf.Message
}

// leafCause walks to the first innermost violation.
func leafCause(err *jsonschema.ValidationError) *jsonschema.ValidationError {
	for len(err.Causes) > 0 {
		err = err.Causes[0]
	}
	return err
}
