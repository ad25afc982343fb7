package llm

import (
	"math"
	"strconv"
	"strings"
	"unicode"

	"github.com/joseph-ayodele/logforms/constants"
)

// coerceOrder turns "3", "3.0" or 3.0 into 3. Fractions and garbage are left
// alone so the schema pass can reject them.
func coerceOrder(v any) (float64, bool) {
	switch t := v.(type) {
	case float64:
		if t == math.Trunc(t) {
			return t, true
		}
	case string:
		f, err := strconv.ParseFloat(strings.TrimSpace(t), 64)
		if err == nil && f == math.Trunc(f) && !math.IsInf(f, 0) {
			return f, true
		}
	}
	return 0, false
}

// coerceType maps loose type names onto the enumeration.
func coerceType(v any) (string, bool) {
	s, ok := v.(string)
	if !ok {
		return "", false
	}
	ft, ok := constants.CanonicalFieldType(s)
	if !ok {
		return "", false
	}
	return string(ft), true
}

// coerceBool accepts "true"/"false" strings for the required flag.
func coerceBool(v any) (bool, bool) {
	switch t := v.(type) {
	case bool:
		return t, true
	case string:
		b, err := strconv.ParseBool(strings.TrimSpace(t))
		return b, err == nil
	}
	return false, false
}

// cleanKey drops whitespace the model sometimes leaves inside keys.
func cleanKey(s string) string {
	return strings.Map(func(r rune) rune {
		if unicode.IsSpace(r) {
			return -1
		}
		return r
	}, s)
}
