package completion

import (
	"encoding/json"

	"github.com/invopop/jsonschema"
	"github.com/ukaji3/sheetinfer-go/pkg/sheetinfer/models"
)

// Reflect builds an inline JSON Schema for v: no $ref, no $schema, and no
// additional properties, which is the subset strict structured outputs
// accept.
func Reflect(v any) (json.RawMessage, error) {
	r := &jsonschema.Reflector{
		DoNotReference:            true,
		ExpandedStruct:            true,
		AllowAdditionalProperties: false,
	}
	s := r.Reflect(v)
	s.Version = ""
	s.ID = ""
	return json.Marshal(s)
}

// SchemaDefinitionSchema returns the JSON Schema of models.SchemaDefinition.
func SchemaDefinitionSchema() (json.RawMessage, error) {
	return Reflect(&models.SchemaDefinition{})
}
