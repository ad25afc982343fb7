package ingest

import (
	"context"

	"github.com/joseph-ayodele/logforms/constants"
)

// Submission is an inbound document as the caller sent it.
type Submission struct {
	MimeType string `json:"mimeType" validate:"required"`
	Data     string `json:"data" validate:"required"`
	Model    string `json:"model,omitempty"`
	UserTier string `json:"userTier,omitempty"`
}

// Document is a submission that passed the gate. It carries decoded bytes
// and never touches the network.
type Document struct {
	MimeType string
	Format   string
	Bytes    []byte
	Tier     constants.ModelTier
	UserTier string
	// SHA256 is the hex digest of Bytes, used to correlate log lines.
	SHA256 string
	// Pages is set for PDFs when content inspection ran.
	Pages int
}

// Gate is the behavior the pipeline depends on.
type Gate interface {
	// Admit validates the submission and decodes it. Every failure is an
	// InputValidation AppError.
	Admit(ctx context.Context, sub Submission) (Document, error)
}
