package llm

import (
	"strings"

	"github.com/joseph-ayodele/logforms/constants"
)

// PromptVersion identifies the instruction set below. Bump it whenever the
// wording changes so extractions can be traced back to the prompt used.
const PromptVersion = "logforms-envelope/v3"

// BuildInstructions composes the fixed instruction text sent with every document.
func BuildInstructions() string {
	parts := []string{
		"You reverse-engineer scanned manufacturing logs into reusable digital templates.",
		"Preserve the original page layout, spacing and visual style literally. Never modernize or beautify the design.",
		"Return exactly ONE JSON object with the members data_schema, markdown_template and html_template and nothing else: no prose, no code fences.",

		// data_schema
		"Step 1, data_schema: {\"title\": short document name, \"fields\": [...]} listing every field in the visual order of the original.",
		"Each field has key (letters, digits and underscores only, not starting with a digit, never 'id' or 'created_at'), label (the original label, any language), " +
			"type (one of " + strings.Join(constants.FieldTypes(), "|") + "), required (boolean), order (integer visual position), " +
			"and optionally enum (choices), unit, format (date|time|datetime|regex|none), group (section or table name) and notes (why an uncertain type was chosen).",
		"Express checkboxes, radio groups, signature boxes and total rows with the closest type. When unsure pick the conservative type and explain it in notes.",
		"Keys must be unique.",

		// markdown_template
		"Step 2, markdown_template: pure Markdown describing the layout. HTML tags are forbidden.",
		"Use only #, ## and ### headings, | tables (column width hints may follow a header as a percentage, e.g. Item(40%)), bold, italics, --- rules, - and 1. lists, and [ ] or [x] checkboxes.",
		"Keep the section order, table structure, labels and cell placement of the original.",

		// html_template
		"Step 3, html_template: build it ONLY from data_schema and markdown_template, without looking at the document again.",
		"The root container has a white background and black text. Use vanilla CSS in inline styles or a <style> element; no scripts, no event handlers.",
		"Map every table, heading, rule and list of the markdown faithfully; turn the percentage width hints into CSS widths.",
		"Render checkboxes and radios as <input type=\"checkbox\"> and <input type=\"radio\"> while keeping the value as a placeholder.",
		"Include @media print { @page { size: A4; margin: 10mm } }.",

		// placeholders
		"Every data position in both templates is a placeholder {{key}} where key is a data_schema field key. Never invent a placeholder that is not a field key.",
		"Placeholders and sections must appear in the same order as the fields' order values.",
	}
	return strings.Join(parts, "\n")
}
