package constants

import (
	"strings"
)

// FieldType is the declared type of an inferred document field.
type FieldType string

const (
	FieldString   FieldType = "string"
	FieldNumber   FieldType = "number"
	FieldBoolean  FieldType = "boolean"
	FieldDate     FieldType = "date"
	FieldTime     FieldType = "time"
	FieldDatetime FieldType = "datetime"
	FieldEnum     FieldType = "enum"
	FieldTextarea FieldType = "textarea"
	FieldCheckbox FieldType = "checkbox"
	FieldRadio    FieldType = "radio"
)

var allFieldTypes = []FieldType{
	FieldString,
	FieldNumber,
	FieldBoolean,
	FieldDate,
	FieldTime,
	FieldDatetime,
	FieldEnum,
	FieldTextarea,
	FieldCheckbox,
	FieldRadio,
}

// FieldTypes returns the field type enumeration as strings, in declaration order.
func FieldTypes() []string {
	result := make([]string, len(allFieldTypes))
	for i, t := range allFieldTypes {
		result[i] = string(t)
	}
	return result
}

// Valid reports whether t is one of the enumerated field types.
func (t FieldType) Valid() bool {
	for _, ft := range allFieldTypes {
		if t == ft {
			return true
		}
	}
	return false
}

// Temporal reports whether values of this type are normalized to an instant.
func (t FieldType) Temporal() bool {
	return t == FieldDate || t == FieldDatetime || t == FieldTime
}

// CanonicalFieldType maps loose type names produced by the extractor onto the
// enumeration. The second result is false when nothing matched.
func CanonicalFieldType(input string) (FieldType, bool) {
	normalized := strings.ToLower(strings.TrimSpace(input))
	if normalized == "" {
		return FieldString, false
	}

	synonyms := map[string]FieldType{
		"text":      FieldString,
		"str":       FieldString,
		"signature": FieldString,
		"int":       FieldNumber,
		"integer":   FieldNumber,
		"float":     FieldNumber,
		"decimal":   FieldNumber,
		"numeric":   FieldNumber,
		"bool":      FieldBoolean,
		"timestamp": FieldDatetime,
		"date-time": FieldDatetime,
		"date_time": FieldDatetime,
		"select":    FieldEnum,
		"dropdown":  FieldEnum,
		"multiline": FieldTextarea,
		"longtext":  FieldTextarea,
		"check":     FieldCheckbox,
	}
	if ft, ok := synonyms[normalized]; ok {
		return ft, true
	}

	for _, ft := range allFieldTypes {
		if normalized == string(ft) {
			return ft, true
		}
	}
	return FieldString, false
}
