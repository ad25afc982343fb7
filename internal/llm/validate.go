package llm

import (
	"bytes"
	"encoding/json"
	"fmt"
	"sync"

	"github.com/santhosh-tekuri/jsonschema/v5"
)

var (
	envelopeSchemaOnce sync.Once
	envelopeSchema     *jsonschema.Schema
	envelopeSchemaErr  error
)

// CompileJSONSchema compiles schemaMap into a reusable validator.
func CompileJSONSchema(schemaMap map[string]any) (*jsonschema.Schema, error) {
	b, err := json.Marshal(schemaMap)
	if err != nil {
		return nil, fmt.Errorf("marshal schema: %w", err)
	}
	compiler := jsonschema.NewCompiler()
	if err := compiler.AddResource("schema.json", bytes.NewReader(b)); err != nil {
		return nil, fmt.Errorf("add schema: %w", err)
	}
	schema, err := compiler.Compile("schema.json")
	if err != nil {
		return nil, fmt.Errorf("compile schema: %w", err)
	}
	return schema, nil
}

// ValidateEnvelopeDocument validates a decoded JSON document against the
// envelope schema, compiled once per process.
func ValidateEnvelopeDocument(doc any) error {
	envelopeSchemaOnce.Do(func() {
		envelopeSchema, envelopeSchemaErr = CompileJSONSchema(BuildEnvelopeJSONSchema())
	})
	if envelopeSchemaErr != nil {
		return envelopeSchemaErr
	}
	if err := envelopeSchema.Validate(doc); err != nil {
		return fmt.Errorf("json does not match schema: %w", err)
	}
	return nil
}
