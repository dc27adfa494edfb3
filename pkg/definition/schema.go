package definition

import (
	"fmt"
	"strings"

	"github.com/xeipuuv/gojsonschema"
)

// documentSchema describes the upload format:
//
//	name: etl-daily
//	tags: [nightly]
//	args:
//	  - bucket: {default: raw}
//	  - date: {}
//	steps:
//	  - fetch: {service: s3, task: download, input: {bucket: "{{bucket}}"}}
const documentSchema = `{
  "type": "object",
  "required": ["name"],
  "additionalProperties": false,
  "properties": {
    "name": {"type": "string", "minLength": 1},
    "tags": {"type": ["array", "null"], "items": {"type": "string"}},
    "args": {
      "type": ["array", "null"],
      "items": {
        "type": "object",
        "minProperties": 1,
        "maxProperties": 1,
        "additionalProperties": {
          "type": ["object", "null"],
          "additionalProperties": false,
          "properties": {
            "default": {"type": ["string", "number", "boolean", "null"]}
          }
        }
      }
    },
    "steps": {
      "type": ["array", "null"],
      "items": {
        "type": "object",
        "minProperties": 1,
        "maxProperties": 1,
        "additionalProperties": {
          "type": "object",
          "required": ["service", "task"],
          "additionalProperties": false,
          "properties": {
            "service": {"type": "string", "minLength": 1},
            "task": {"type": "string", "minLength": 1},
            "input": {
              "type": ["object", "null"],
              "additionalProperties": {"type": ["string", "number", "boolean"]}
            }
          }
        }
      }
    }
  }
}`

var schema = mustSchema(documentSchema)

func mustSchema(source string) *gojsonschema.Schema {
	compiled, err := gojsonschema.NewSchema(gojsonschema.NewStringLoader(source))
	if err != nil {
		panic(fmt.Sprintf("definition: invalid document schema: %v", err))
	}

	return compiled
}

// validateDocument checks a decoded document against the upload schema.
func validateDocument(document any) error {
	result, err := schema.Validate(gojsonschema.NewGoLoader(document))
	if err != nil {
		return fmt.Errorf("%w: %w", ErrMalformedDefinition, err)
	}

	if !result.Valid() {
		var problems []string
		for _, resultError := range result.Errors() {
			problems = append(problems, resultError.String())
		}

		return fmt.Errorf("%w: %s", ErrMalformedDefinition, strings.Join(problems, "; "))
	}

	return nil
}
