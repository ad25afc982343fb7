package llm

import (
	"context"

	"github.com/joseph-ayodele/logforms/constants"
)

// ExtractRequest carries one admitted document to the extraction collaborator.
type ExtractRequest struct {
	MimeType string
	Document []byte
	Tier     constants.ModelTier
	// DocumentSHA256 is only used to correlate log lines.
	DocumentSHA256 string
}

// ExtractResult is the collaborator's raw answer. Text is validated by
// EnvelopeValidator, never trusted as-is.
type ExtractResult struct {
	Text          string
	Model         string
	PromptVersion string
}

// Extractor is the interface the pipeline depends on. Implementations make a
// single attempt per call and do not retry.
type Extractor interface {
	Extract(ctx context.Context, req ExtractRequest) (ExtractResult, error)
}
