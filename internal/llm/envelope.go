package llm

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"strings"

	"github.com/joseph-ayodele/logforms/internal/common"
	"github.com/joseph-ayodele/logforms/internal/entity"
	"github.com/joseph-ayodele/logforms/internal/templating"
)

// EnvelopeValidator turns raw extractor text into an AnalysisEnvelope or a
// ResponseShape error. It never returns a partial envelope.
type EnvelopeValidator struct {
	lenient      bool
	enforceOrder bool
	logger       *slog.Logger
}

func NewEnvelopeValidator(cfg common.ExtractConfig, logger *slog.Logger) *EnvelopeValidator {
	if logger == nil {
		logger = slog.Default()
	}
	return &EnvelopeValidator{
		lenient:      cfg.Lenient,
		enforceOrder: cfg.EnforceOrder,
		logger:       logger,
	}
}

// HasObjectDelimiters reports whether text, once trimmed, starts with '{' and ends with '}'.
func HasObjectDelimiters(text string) bool {
	t := strings.TrimSpace(text)
	return strings.HasPrefix(t, "{") && strings.HasSuffix(t, "}")
}

func (v *EnvelopeValidator) Parse(ctx context.Context, raw string) (entity.AnalysisEnvelope, error) {
	logger := common.LoggerFromContext(ctx, v.logger)
	var none entity.AnalysisEnvelope

	if !HasObjectDelimiters(raw) {
		logger.Error("llm.envelope.delimiters", "bytes", len(raw))
		return none, common.ShapeError(common.CodeMalformedResponse, "extractor response is not a single JSON object", nil)
	}

	var doc map[string]any
	if err := json.Unmarshal([]byte(strings.TrimSpace(raw)), &doc); err != nil {
		logger.Error("llm.envelope.decode_error", "error", err)
		return none, common.ShapeError(common.CodeMalformedResponse, "extractor response is not valid JSON", err)
	}

	if v.lenient {
		NormalizeEnvelope(doc, logger)
	}
	if err := ValidateEnvelopeDocument(doc); err != nil {
		logger.Error("llm.envelope.schema_validation_failed", "error", err)
		return none, common.ShapeError(common.CodeMalformedResponse, "extractor response is incomplete", err)
	}

	b, err := json.Marshal(doc)
	if err != nil {
		return none, common.ShapeError(common.CodeMalformedResponse, "extractor response could not be re-encoded", err)
	}
	var env entity.AnalysisEnvelope
	if err := json.Unmarshal(b, &env); err != nil {
		return none, common.ShapeError(common.CodeMalformedResponse, "extractor response has the wrong shape", err)
	}

	if err := checkFieldKeys(env.DataSchema.Fields); err != nil {
		logger.Error("llm.envelope.bad_keys", "error", err)
		return none, err
	}

	env.HTMLTemplate = templating.SanitizeHTML(env.HTMLTemplate)
	if strings.TrimSpace(env.HTMLTemplate) == "" {
		return none, common.ShapeError(common.CodeMalformedResponse, "html_template is empty after sanitizing", nil)
	}

	known := make(map[string]struct{}, len(env.DataSchema.Fields))
	rank := make(map[string]int, len(env.DataSchema.Fields))
	for _, f := range env.DataSchema.Fields {
		known[f.Key] = struct{}{}
		rank[f.Key] = f.Order
	}

	templates := []struct {
		name string
		text string
	}{
		{"markdown_template", env.MarkdownTemplate},
		{"html_template", env.HTMLTemplate},
	}
	for _, tpl := range templates {
		if unknown := templating.Unknown(tpl.text, known); len(unknown) > 0 {
			logger.Error("llm.envelope.unknown_placeholders", "template", tpl.name, "tokens", unknown)
			return none, common.ShapeError(common.CodeUnknownPlaceholder,
				fmt.Sprintf("%s references unknown fields: %s", tpl.name, strings.Join(unknown, ", ")), nil)
		}
	}
	if v.enforceOrder {
		for _, tpl := range templates {
			if viol, ok := templating.CheckOrdering(tpl.text, rank); !ok {
				logger.Error("llm.envelope.order_violation", "template", tpl.name, "before", viol.Before, "after", viol.After)
				return none, common.ShapeError(common.CodeTemplateOrder,
					fmt.Sprintf("%s places %s before %s, against field order", tpl.name, viol.Before, viol.After), nil)
			}
		}
	}

	env.DataSchema.Fields = entity.SortFields(env.DataSchema.Fields)

	used := make(map[string]struct{})
	for _, tpl := range templates {
		for _, t := range templating.FirstOccurrences(tpl.text) {
			used[t] = struct{}{}
		}
	}
	var unused []string
	for _, f := range env.DataSchema.Fields {
		if _, ok := used[f.Key]; !ok {
			unused = append(unused, f.Key)
		}
	}
	if len(unused) > 0 {
		logger.Warn("llm.envelope.unused_fields", "keys", unused)
	}

	logger.Info("llm.envelope.ok",
		"title", env.DataSchema.Title,
		"fields", len(env.DataSchema.Fields),
		"markdown_len", len(env.MarkdownTemplate),
		"html_len", len(env.HTMLTemplate),
	)
	return env, nil
}

// checkFieldKeys enforces unique, token-safe keys that do not shadow generated columns.
func checkFieldKeys(fields []entity.FieldDefinition) error {
	seen := make(map[string]struct{}, len(fields))
	var bad, dup []string
	for _, f := range fields {
		if !common.IsFieldKey(f.Key) {
			bad = append(bad, f.Key)
		}
		if _, ok := seen[f.Key]; ok {
			dup = append(dup, f.Key)
		}
		seen[f.Key] = struct{}{}
	}
	switch {
	case len(dup) > 0:
		return common.ShapeError(common.CodeMalformedResponse, "duplicate field keys: "+strings.Join(dup, ", "), nil)
	case len(bad) > 0:
		return common.ShapeError(common.CodeMalformedResponse, "invalid field keys: "+strings.Join(bad, ", "), nil)
	}
	return nil
}
