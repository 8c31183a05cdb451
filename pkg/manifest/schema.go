package manifest

import (
	"encoding/json"

	"github.com/invopop/jsonschema"
	"github.com/pkg/errors"
)

// MetadataSchema returns the JSON Schema of the generated metadata document
// (the ui-field-behaviour and conn-fields sections). Editors hook it up for
// completion and the consistency checker compiles it to validate declared
// manifest content.
func MetadataSchema() *jsonschema.Schema {
	reflector := jsonschema.Reflector{
		AllowAdditionalProperties: false,
		DoNotReference:            true,
	}
	return reflector.Reflect(Metadata{})
}

// MetadataSchemaJSON renders MetadataSchema as indented JSON.
func MetadataSchemaJSON() ([]byte, error) {
	data, err := json.MarshalIndent(MetadataSchema(), "", "  ")
	if err != nil {
		return nil, errors.Wrap(err, "marshaling metadata schema")
	}
	return data, nil
}
