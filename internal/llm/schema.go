package llm

import "github.com/joseph-ayodele/logforms/constants"

// BuildEnvelopeJSONSchema returns a JSON-Schema (draft 2020-12 subset) as a generic map.
// It is used locally to validate the collaborator's answer and mirrored into
// the Gemini response schema.
func BuildEnvelopeJSONSchema() map[string]any {
	field := map[string]any{
		"type": "object",
		"properties": map[string]any{
			"key":      map[string]any{"type": "string", "minLength": 1},
			"label":    map[string]any{"type": "string"},
			"type":     map[string]any{"type": "string", "enum": constants.FieldTypes()},
			"required": map[string]any{"type": "boolean"},
			"order":    map[string]any{"type": "integer"},
			"enum":     map[string]any{"type": "array", "items": map[string]any{"type": "string"}},
			"unit":     map[string]any{"type": "string"},
			"format":   map[string]any{"type": "string"},
			"group":    map[string]any{"type": "string"},
			"notes":    map[string]any{"type": "string"},
		},
		"required": []string{"key", "label", "type", "order"},
	}

	return map[string]any{
		"type":                 "object",
		"additionalProperties": false,
		"properties": map[string]any{
			"data_schema": map[string]any{
				"type": "object",
				"properties": map[string]any{
					"title":  nonBlank(),
					"fields": map[string]any{"type": "array", "minItems": 1, "items": field},
				},
				"required": []string{"title", "fields"},
			},
			"markdown_template": nonBlank(),
			"html_template":     nonBlank(),
		},
		"required": []string{"data_schema", "markdown_template", "html_template"},
	}
}

func nonBlank() map[string]any {
	return map[string]any{
		"type":    "string",
		"pattern": `\S`, // at least one non-space character
	}
}
