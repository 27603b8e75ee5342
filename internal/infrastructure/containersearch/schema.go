package containersearch

import (
	"bytes"
	"fmt"
	"strings"

	"github.com/santhosh-tekuri/jsonschema/v6"
)

const responseSchemaURL = "dropzone://schemas/container-search-response.json"

// responseSchema is the accepted shape of a 200 response. Unknown metadata
// fields are allowed; the typed fields the scanner reads are checked. Totes
// may come back without an id, only their unit count matters.
const responseSchema = `{
  "$schema": "https://json-schema.org/draft/2020-12/schema",
  "$defs": {
    "container": {
      "type": "object",
      "properties": {
        "containerId": {"type": ["string", "null"]},
        "containerType": {"type": ["string", "null"]},
        "sortationCategory": {"type": ["string", "null"]},
        "sortationCategories": {
          "type": ["array", "null"],
          "items": {"type": ["string", "null"]}
        },
        "numOfChildContainers": {"type": ["integer", "null"], "minimum": 0},
        "childContainers": {
          "type": ["array", "null"],
          "items": {"$ref": "#/$defs/container"}
        }
      }
    }
  },
  "$ref": "#/$defs/container"
}`

// responseValidator validates raw response bodies against responseSchema
type responseValidator struct {
	schema *jsonschema.Schema
}

func newResponseValidator() (*responseValidator, error) {
	doc, err := jsonschema.UnmarshalJSON(strings.NewReader(responseSchema))
	if err != nil {
		return nil, fmt.Errorf("failed to parse response schema: %w", err)
	}

	compiler := jsonschema.NewCompiler()
	if err := compiler.AddResource(responseSchemaURL, doc); err != nil {
		return nil, fmt.Errorf("failed to add response schema: %w", err)
	}

	schema, err := compiler.Compile(responseSchemaURL)
	if err != nil {
		return nil, fmt.Errorf("failed to compile response schema: %w", err)
	}

	return &responseValidator{schema: schema}, nil
}

// Validate checks that body is JSON of the expected shape
func (v *responseValidator) Validate(body []byte) error {
	instance, err := jsonschema.UnmarshalJSON(bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("response is not valid JSON: %w", err)
	}
	if err := v.schema.Validate(instance); err != nil {
		return fmt.Errorf("response does not match container schema: %w", err)
	}
	return nil
}
