package extract

import (
	"bytes"
	"encoding/json"
	"fmt"
	"sync"

	"github.com/santhosh-tekuri/jsonschema/v5"
)

// BuildPayloadJSONSchema returns a JSON-Schema (draft 2020-12 subset) for the
// extraction service response: a top-level object whose known field names,
// when present, map to {data, text} pairs. Unknown top-level keys are
// allowed; the service adds diagnostics we don't consume.
func BuildPayloadJSONSchema() map[string]any {
	return map[string]any{
		"type": "object",
		"properties": map[string]any{
			"totalAmount":     fieldProp(),
			"taxAmount":       fieldProp(),
			"date":            fieldProp(),
			"merchantName":    fieldProp(),
			"merchantAddress": fieldProp(),
			"text":            fieldProp(),
		},
	}
}

func fieldProp() map[string]any {
	return map[string]any{
		"type": "object",
		"properties": map[string]any{
			"data": map[string]any{},
			"text": map[string]any{"type": "string"},
		},
	}
}

var (
	payloadSchemaOnce sync.Once
	payloadSchema     *jsonschema.Schema
	payloadSchemaErr  error
)

// compiledPayloadSchema compiles the response schema on first use; the
// schema is static, so every subsequent call reuses the same compilation.
func compiledPayloadSchema() (*jsonschema.Schema, error) {
	payloadSchemaOnce.Do(func() {
		b, err := json.Marshal(BuildPayloadJSONSchema())
		if err != nil {
			payloadSchemaErr = fmt.Errorf("marshal schema: %w", err)
			return
		}
		compiler := jsonschema.NewCompiler()
		if err := compiler.AddResource("payload.json", bytes.NewReader(b)); err != nil {
			payloadSchemaErr = fmt.Errorf("add schema: %w", err)
			return
		}
		payloadSchema, payloadSchemaErr = compiler.Compile("payload.json")
		if payloadSchemaErr != nil {
			payloadSchemaErr = fmt.Errorf("compile schema: %w", payloadSchemaErr)
		}
	})
	return payloadSchema, payloadSchemaErr
}

// ValidatePayload validates raw payload JSON against the response schema.
// A payload that fails here is treated as a malformed service response.
func ValidatePayload(raw []byte) error {
	schema, err := compiledPayloadSchema()
	if err != nil {
		return err
	}
	var v any
	if err := json.Unmarshal(raw, &v); err != nil {
		return fmt.Errorf("unmarshal payload: %w", err)
	}
	if err := schema.Validate(v); err != nil {
		return fmt.Errorf("payload does not match schema: %w", err)
	}
	return nil
}
