package entity

import (
	"sort"

	"github.com/joseph-ayodele/logforms/constants"
)

// FieldDefinition represents one inferred data point of a log document.
type FieldDefinition struct {
	Key      string              `json:"key" validate:"required,fieldkey"`
	Label    string              `json:"label"`
	Type     constants.FieldType `json:"type" validate:"required,fieldtype"`
	Required bool                `json:"required"`
	Order    int                 `json:"order"`
	Enum     []string            `json:"enum,omitempty"`
	Unit     string              `json:"unit,omitempty"`
	Format   string              `json:"format,omitempty"`
	Group    string              `json:"group,omitempty"`
	Notes    string              `json:"notes,omitempty"`
}

// DisplayLabel falls back to the key when the extractor left the label empty.
func (f FieldDefinition) DisplayLabel() string {
	if f.Label != "" {
		return f.Label
	}
	return f.Key
}

// DataSchema is the structured half of an analysis envelope.
type DataSchema struct {
	Title  string            `json:"title" validate:"required"`
	Fields []FieldDefinition `json:"fields" validate:"required,min=1,unique=Key,dive"`
}

// AnalysisEnvelope represents the three artifacts produced for one document.
type AnalysisEnvelope struct {
	DataSchema       DataSchema `json:"data_schema"`
	MarkdownTemplate string     `json:"markdown_template"`
	HTMLTemplate     string     `json:"html_template"`
}

// SortFields returns a copy of fields ordered by Order. Ties keep their input order.
func SortFields(fields []FieldDefinition) []FieldDefinition {
	out := make([]FieldDefinition, len(fields))
	copy(out, fields)
	sort.SliceStable(out, func(i, j int) bool { return out[i].Order < out[j].Order })
	return out
}

// FieldKeys returns the keys of fields in slice order.
func FieldKeys(fields []FieldDefinition) []string {
	keys := make([]string, len(fields))
	for i, f := range fields {
		keys[i] = f.Key
	}
	return keys
}
