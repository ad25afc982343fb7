package constants

import "strings"

// MaxUploadBytes is the ceiling on a decoded document payload.
const MaxUploadBytes = 10 * 1024 * 1024

// DefaultMaxPDFPages bounds multi-page logs sent to the extractor.
const DefaultMaxPDFPages = 20

// Document formats as reported by content inspection.
const (
	FormatJPEG = "jpeg"
	FormatPNG  = "png"
	FormatWEBP = "webp"
	FormatPDF  = "pdf"
)

// AllowedMimeTypes maps every accepted mime type to its document format.
// image/jpg is not registered with IANA but browsers still send it.
var AllowedMimeTypes = map[string]string{
	"image/jpeg":      FormatJPEG,
	"image/jpg":       FormatJPEG,
	"image/png":       FormatPNG,
	"image/webp":      FormatWEBP,
	"application/pdf": FormatPDF,
}

// NormalizeMime lowercases a mime type and drops any parameters.
func NormalizeMime(mime string) string {
	mime = strings.ToLower(strings.TrimSpace(mime))
	if i := strings.IndexByte(mime, ';'); i >= 0 {
		mime = strings.TrimSpace(mime[:i])
	}
	return mime
}

// FormatForMime returns the document format for an allowed mime type.
func FormatForMime(mime string) (string, bool) {
	f, ok := AllowedMimeTypes[NormalizeMime(mime)]
	return f, ok
}

// Base64Len returns the padded standard base64 length for n raw bytes.
func Base64Len(n int) int {
	return (n + 2) / 3 * 4
}
