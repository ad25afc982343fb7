package templating

import (
	"html"
	"strings"
)

// Format selects how substituted values are escaped.
type Format string

const (
	FormatHTML     Format = "html"
	FormatMarkdown Format = "markdown"
)

// Render substitutes {{key}} tokens with values. HTML values are escaped;
// tokens with no value render empty.
func Render(tpl string, format Format, values map[string]string) string {
	return placeholderRe.ReplaceAllStringFunc(tpl, func(match string) string {
		key := placeholderRe.FindStringSubmatch(match)[1]
		v := values[key]
		if format == FormatHTML {
			return html.EscapeString(v)
		}
		return escapeMarkdownCell(v)
	})
}

// escapeMarkdownCell keeps a value from breaking a table row.
func escapeMarkdownCell(v string) string {
	v = strings.ReplaceAll(v, "|", `\|`)
	v = strings.ReplaceAll(v, "\r\n", " ")
	return strings.ReplaceAll(v, "\n", " ")
}
