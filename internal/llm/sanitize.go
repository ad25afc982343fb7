package llm

import (
	"fmt"
	"log/slog"
	"maps"
	"strings"
)

var (
	envelopeMembers = map[string]struct{}{"data_schema": {}, "markdown_template": {}, "html_template": {}}
	optionalStrings = []string{"unit", "format", "group", "notes"}
)

// NormalizeEnvelope repairs the small deviations extractors produce so the
// schema pass can judge the document on substance. It edits doc in place and
// returns what it touched:
// - trims strings and strips whitespace from keys
// - canonicalizes field type synonyms (text -> string, select -> enum, ...)
// - coerces integral order values given as strings
// - coerces "true"/"false" required flags
// - drops null or empty optionals and unknown top-level members
func NormalizeEnvelope(doc map[string]any, logger *slog.Logger) []string {
	if logger == nil {
		logger = slog.Default()
	}
	changed := make([]string, 0, 8)

	for k := range maps.Clone(doc) {
		if _, ok := envelopeMembers[k]; !ok {
			delete(doc, k)
			changed = append(changed, k+"(unknown)")
		}
	}
	for _, k := range []string{"markdown_template", "html_template"} {
		if s, ok := doc[k].(string); ok {
			doc[k] = strings.TrimSpace(s)
		}
	}

	ds, ok := doc["data_schema"].(map[string]any)
	if !ok {
		return changed
	}
	if s, ok := ds["title"].(string); ok {
		ds["title"] = strings.TrimSpace(s)
	}
	fields, ok := ds["fields"].([]any)
	if !ok {
		return changed
	}

	for i, raw := range fields {
		f, ok := raw.(map[string]any)
		if !ok {
			continue
		}
		at := func(what string) string { return fmt.Sprintf("fields[%d].%s", i, what) }

		if s, ok := f["key"].(string); ok {
			if k := cleanKey(s); k != s {
				f["key"] = k
				changed = append(changed, at("key"))
			}
		}
		if s, ok := f["label"].(string); ok {
			f["label"] = strings.TrimSpace(s)
		}
		if v, ok := f["type"]; ok {
			if t, ok := coerceType(v); ok && t != v {
				f["type"] = t
				changed = append(changed, at("type"))
			}
		}
		if v, ok := f["order"]; ok {
			if _, isNum := v.(float64); !isNum {
				if o, ok := coerceOrder(v); ok {
					f["order"] = o
					changed = append(changed, at("order"))
				}
			}
		}
		if v, ok := f["required"]; ok {
			switch b, ok := coerceBool(v); {
			case v == nil:
				delete(f, "required")
			case ok:
				f["required"] = b
			}
		}
		for _, k := range optionalStrings {
			v, present := f[k]
			if !present {
				continue
			}
			switch t := v.(type) {
			case nil:
				delete(f, k)
			case string:
				if s := strings.TrimSpace(t); s == "" {
					delete(f, k)
				} else {
					f[k] = s
				}
			default:
				delete(f, k)
				changed = append(changed, at(k)+"(type)")
			}
		}
		if v, present := f["enum"]; present {
			if choices, ok := v.([]any); !ok || len(choices) == 0 {
				delete(f, "enum")
			}
		}
	}

	if len(changed) > 0 {
		logger.Warn("llm.envelope.normalize", "changed", changed)
	}
	return changed
}
