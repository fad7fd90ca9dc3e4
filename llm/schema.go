package llm

import "github.com/invopop/jsonschema"

// Schema names a JSON schema for structured output.
type Schema struct {
	Name        string
	Description string
	// Value is the schema document, usually a *jsonschema.Schema.
	Value any
}

// SchemaFor reflects T into a strict schema: no additional properties and no
// $ref indirection, as structured-output endpoints require.
func SchemaFor[T any](name, description string) *Schema {
	reflector := &jsonschema.Reflector{
		AllowAdditionalProperties: false,
		DoNotReference:            true,
	}
	var v T
	return &Schema{Name: name, Description: description, Value: reflector.Reflect(v)}
}
