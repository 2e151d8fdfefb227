package schedule

import (
	"encoding/json"
	"fmt"
	"strings"
	"sync"

	"github.com/santhosh-tekuri/jsonschema/v5"
)

// documentSchema validates the weekly rotation file. Unknown top-level
// keys are treated as rotation sections and must be week-shaped.
const documentSchema = `{
  "type": "object",
  "properties": {
    "time_blocks": {
      "type": "object",
      "properties": {
        "off_peak": {"$ref": "#/$defs/window"},
        "peak": {"$ref": "#/$defs/window"}
      },
      "additionalProperties": false
    },
    "schedule": {"$ref": "#/$defs/week"},
    "rotation_order": {"type": "array", "items": {"type": "string"}},
    "cycle_length_weeks": {"type": "integer", "minimum": 1},
    "cycle_anchor": {"type": "string"}
  },
  "additionalProperties": {"$ref": "#/$defs/week"},
  "$defs": {
    "window": {
      "type": "object",
      "properties": {
        "from": {"$ref": "#/$defs/hhmm"},
        "to": {"$ref": "#/$defs/hhmm"}
      },
      "required": ["from", "to"],
      "additionalProperties": false
    },
    "hhmm": {"type": "string", "pattern": "^[0-2][0-9]:[0-5][0-9]$"},
    "week": {
      "type": "object",
      "propertyNames": {
        "enum": ["monday", "tuesday", "wednesday", "thursday", "friday", "saturday", "sunday"]
      },
      "additionalProperties": {"$ref": "#/$defs/day"}
    },
    "day": {
      "type": "object",
      "properties": {
        "off_peak": {"$ref": "#/$defs/pool"},
        "peak": {"$ref": "#/$defs/pool"}
      },
      "additionalProperties": false
    },
    "pool": {
      "anyOf": [
        {"type": "array", "items": {"type": "string"}},
        {"type": "null"}
      ]
    }
  }
}`

var (
	schemaOnce     sync.Once
	compiledSchema *jsonschema.Schema
	schemaErr      error
)

func compiledDocumentSchema() (*jsonschema.Schema, error) {
	schemaOnce.Do(func() {
		compiler := jsonschema.NewCompiler()
		if err := compiler.AddResource("weekly_rotation.json", strings.NewReader(documentSchema)); err != nil {
			schemaErr = err
			return
		}
		compiledSchema, schemaErr = compiler.Compile("weekly_rotation.json")
	})
	return compiledSchema, schemaErr
}

// validateSettings checks the raw document against the schema. The
// settings map round-trips through JSON so the validator sees plain JSON
// value types.
func validateSettings(settings map[string]any) error {
	schema, err := compiledDocumentSchema()
	if err != nil {
		return fmt.Errorf("compiling schedule schema failed: %w", err)
	}
	raw, err := json.Marshal(settings)
	if err != nil {
		return fmt.Errorf("encoding schedule document failed: %w", err)
	}
	var doc any
	if err := json.Unmarshal(raw, &doc); err != nil {
		return fmt.Errorf("decoding schedule document failed: %w", err)
	}
	if err := schema.Validate(doc); err != nil {
		return fmt.Errorf("schedule document invalid: %w", err)
	}
	return nil
}
