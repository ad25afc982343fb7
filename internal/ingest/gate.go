package ingest

import (
	"context"
	"encoding/base64"
	"fmt"
	"log/slog"
	"slices"
	"strings"

	"github.com/joseph-ayodele/logforms/constants"
	"github.com/joseph-ayodele/logforms/internal/common"
)

// Gatekeeper checks mime type and payload size before anything else runs.
type Gatekeeper struct {
	maxBytes  int
	inspector *Inspector // nil disables content inspection
	logger    *slog.Logger
}

var _ Gate = (*Gatekeeper)(nil)

var lineBreaks = strings.NewReplacer("\r", "", "\n", "")

// NewGatekeeper creates a gatekeeper from the extract configuration.
func NewGatekeeper(cfg common.ExtractConfig, logger *slog.Logger) *Gatekeeper {
	g := &Gatekeeper{
		maxBytes: cfg.MaxUploadBytes,
		logger:   logger,
	}
	if g.maxBytes <= 0 {
		g.maxBytes = constants.MaxUploadBytes
	}
	if cfg.VerifyContent {
		g.inspector = NewInspector(cfg.MaxPDFPages)
	}
	return g
}

// MaxBase64Length is the largest data string Admit will try to decode.
func (g *Gatekeeper) MaxBase64Length() int {
	return constants.Base64Len(g.maxBytes)
}

func (g *Gatekeeper) Admit(ctx context.Context, sub Submission) (Document, error) {
	logger := common.LoggerFromContext(ctx, g.logger)
	var doc Document

	mime := constants.NormalizeMime(sub.MimeType)
	format, ok := constants.FormatForMime(mime)
	if !ok {
		logger.Info("ingest.reject", "reason", "mime", "mime", mime)
		return doc, common.InputError(common.CodeUnsupportedMime,
			fmt.Sprintf("unsupported mime type %q", sub.MimeType), common.ErrInvalidInput)
	}

	// line breaks are legal in wrapped base64 and do not count toward the ceiling
	data := lineBreaks.Replace(strings.TrimSpace(stripDataURL(sub.Data)))
	if data == "" {
		return doc, common.InputError(common.CodeInvalidPayload, "data is required", common.ErrInvalidInput)
	}
	if len(data) > g.MaxBase64Length() {
		logger.Info("ingest.reject", "reason", "base64_length", "length", len(data), "max", g.MaxBase64Length())
		return doc, common.InputError(common.CodePayloadTooLarge,
			fmt.Sprintf("payload exceeds %d bytes", g.maxBytes), common.ErrInvalidInput)
	}

	raw, err := base64.StdEncoding.DecodeString(data)
	if err != nil {
		return doc, common.InputError(common.CodeInvalidPayload, "data is not valid base64", err)
	}
	if len(raw) == 0 {
		return doc, common.InputError(common.CodeInvalidPayload, "data decodes to an empty document", common.ErrInvalidInput)
	}
	if len(raw) > g.maxBytes {
		logger.Info("ingest.reject", "reason", "decoded_length", "bytes", len(raw), "max", g.maxBytes)
		return doc, common.InputError(common.CodePayloadTooLarge,
			fmt.Sprintf("payload exceeds %d bytes", g.maxBytes), common.ErrInvalidInput)
	}

	tier, ok := ParseTier(sub.Model)
	if !ok {
		return doc, common.InputError(common.CodeUnknownModel,
			fmt.Sprintf("unknown model %q", sub.Model), common.ErrInvalidInput)
	}

	userTier := strings.ToLower(strings.TrimSpace(sub.UserTier))
	if userTier != "" && !slices.Contains(constants.UserTiers, userTier) {
		return doc, common.InputError(common.CodeInvalidRequest,
			fmt.Sprintf("unknown userTier %q", sub.UserTier), common.ErrInvalidInput)
	}

	doc = Document{
		MimeType: mime,
		Format:   format,
		Bytes:    raw,
		Tier:     tier,
		UserTier: userTier,
		SHA256:   hashHex(raw),
	}

	if g.inspector != nil {
		pages, err := g.inspector.Inspect(format, raw)
		if err != nil {
			logger.Info("ingest.reject", "reason", "content", "format", format, "err", err)
			return Document{}, err
		}
		doc.Pages = pages
	}

	logger.Debug("ingest.admit", "format", format, "bytes", len(raw), "tier", tier, "sha256", doc.SHA256[:12])
	return doc, nil
}
