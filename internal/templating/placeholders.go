package templating

import (
	"regexp"
	"slices"
)

// placeholderRe matches {{key}} with optional inner whitespace.
var placeholderRe = regexp.MustCompile(`\{\{\s*([^{}\s]+)\s*\}\}`)

// Tokens returns every placeholder key in tpl, in order of appearance.
func Tokens(tpl string) []string {
	matches := placeholderRe.FindAllStringSubmatch(tpl, -1)
	out := make([]string, 0, len(matches))
	for _, m := range matches {
		out = append(out, m[1])
	}
	return out
}

// FirstOccurrences returns each distinct placeholder key once, ordered by
// where it first appears.
func FirstOccurrences(tpl string) []string {
	seen := make(map[string]struct{})
	var out []string
	for _, t := range Tokens(tpl) {
		if _, ok := seen[t]; ok {
			continue
		}
		seen[t] = struct{}{}
		out = append(out, t)
	}
	return out
}

// Unknown returns the sorted, distinct placeholder keys of tpl that are not in known.
func Unknown(tpl string, known map[string]struct{}) []string {
	var out []string
	for _, t := range FirstOccurrences(tpl) {
		if _, ok := known[t]; !ok {
			out = append(out, t)
		}
	}
	slices.Sort(out)
	return out
}

// OrderViolation describes two placeholders that appear out of field order.
type OrderViolation struct {
	Before string // appears first in the template
	After  string // appears later but ranks lower
}

// CheckOrdering walks the first occurrences of tpl and reports the first pair
// whose rank decreases. Keys missing from rank are ignored.
func CheckOrdering(tpl string, rank map[string]int) (OrderViolation, bool) {
	prevKey := ""
	prevRank := 0
	havePrev := false
	for _, t := range FirstOccurrences(tpl) {
		r, ok := rank[t]
		if !ok {
			continue
		}
		if havePrev && r < prevRank {
			return OrderViolation{Before: prevKey, After: t}, false
		}
		prevKey, prevRank, havePrev = t, r, true
	}
	return OrderViolation{}, true
}
