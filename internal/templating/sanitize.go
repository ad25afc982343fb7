package templating

import (
	"regexp"
	"strings"
	"sync"

	"github.com/microcosm-cc/bluemonday"
)

var inputTypes = regexp.MustCompile(`^(?i)(checkbox|radio|text|number|date|time|datetime-local|hidden)$`)

var (
	printPolicyOnce sync.Once
	printPolicy     *bluemonday.Policy
)

// SanitizeHTML strips scripts, event handlers and javascript: URLs from a
// render template while keeping inline styles, <style> print rules, tables and
// form inputs.
func SanitizeHTML(raw string) string {
	trimmed := strings.TrimSpace(raw)
	if trimmed == "" {
		return ""
	}
	return strings.TrimSpace(printSanitizer().Sanitize(trimmed))
}

func printSanitizer() *bluemonday.Policy {
	printPolicyOnce.Do(func() {
		policy := bluemonday.UGCPolicy()
		policy.AllowStyling()
		policy.AllowAttrs("style").Globally()

		// <style> blocks carry the @media print / @page rules.
		policy.AllowUnsafe(true)
		policy.AllowElements("style")

		policy.AllowElements("input", "label", "section", "header", "footer", "colgroup", "col")
		policy.AllowAttrs("type").Matching(inputTypes).OnElements("input")
		policy.AllowAttrs("name", "value", "checked", "disabled", "readonly", "placeholder").OnElements("input")
		policy.AllowAttrs("for").OnElements("label")
		policy.AllowAttrs("span", "width").OnElements("col", "colgroup")
		policy.AllowAttrs("colspan", "rowspan", "width", "align", "valign").OnElements("td", "th")
		policy.AllowAttrs("width", "border", "cellpadding", "cellspacing").OnElements("table")

		printPolicy = policy
	})
	return printPolicy
}
