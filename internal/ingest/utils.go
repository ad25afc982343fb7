package ingest

import (
	"crypto/sha256"
	"encoding/hex"
	"strings"

	"github.com/joseph-ayodele/logforms/constants"
)

// AllowedMime checks if a mime type is in the allow-list.
func AllowedMime(mime string) bool {
	_, ok := constants.FormatForMime(mime)
	return ok
}

// ParseTier maps the model selector onto a tier. Empty selects the fast tier;
// the model ids used by older clients are accepted as aliases.
func ParseTier(selector string) (constants.ModelTier, bool) {
	switch strings.ToLower(strings.TrimSpace(selector)) {
	case "", "fast", "flash", "gemini-2.5-flash":
		return constants.TierFast, true
	case "high_fidelity", "high", "pro", "gemini-2.5-pro":
		return constants.TierHighFidelity, true
	}
	return "", false
}

// stripDataURL removes a "data:<mime>;base64," prefix if present.
func stripDataURL(data string) string {
	if strings.HasPrefix(data, "data:") {
		if i := strings.IndexByte(data, ','); i >= 0 {
			return data[i+1:]
		}
	}
	return data
}

func hashHex(b []byte) string {
	sum := sha256.Sum256(b)
	return hex.EncodeToString(sum[:])
}
