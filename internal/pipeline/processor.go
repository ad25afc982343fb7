package processor

import (
	"context"
	"log/slog"
	"time"

	"github.com/joseph-ayodele/logforms/internal/common"
	"github.com/joseph-ayodele/logforms/internal/entity"
	"github.com/joseph-ayodele/logforms/internal/ingest"
	"github.com/joseph-ayodele/logforms/internal/llm"
)

// EnvelopeParser is satisfied by *llm.EnvelopeValidator.
type EnvelopeParser interface {
	Parse(ctx context.Context, raw string) (entity.AnalysisEnvelope, error)
}

// Processor coordinates gate (mime/size) then extraction then envelope validation.
type Processor struct {
	Logger    *slog.Logger
	Gate      ingest.Gate
	Extractor llm.Extractor
	Envelope  EnvelopeParser
}

func NewProcessor(logger *slog.Logger, gate ingest.Gate, extractor llm.Extractor, envelope EnvelopeParser) *Processor {
	if logger == nil {
		logger = slog.Default()
	}
	return &Processor{Logger: logger, Gate: gate, Extractor: extractor, Envelope: envelope}
}

// Analyze turns one submission into a validated envelope. The extractor is
// never called for a submission the gate rejects.
func (p *Processor) Analyze(ctx context.Context, sub ingest.Submission) (entity.AnalysisEnvelope, error) {
	logger := common.LoggerFromContext(ctx, p.Logger)
	start := time.Now()

	// 1) gate → decoded document or InputValidation error
	doc, err := p.Gate.Admit(ctx, sub)
	if err != nil {
		logger.Warn("processor.gate.rejected", "err", err)
		return entity.AnalysisEnvelope{}, err
	}

	// 2) extraction → raw text, single attempt
	res, err := p.Extractor.Extract(ctx, llm.ExtractRequest{
		MimeType:       doc.MimeType,
		Document:       doc.Bytes,
		Tier:           doc.Tier,
		DocumentSHA256: doc.SHA256,
	})
	if err != nil {
		logger.Error("processor.extract.failed", "tier", doc.Tier, "err", err)
		return entity.AnalysisEnvelope{}, err
	}

	// 3) envelope validation → the three artifacts or ResponseShape error
	env, err := p.Envelope.Parse(ctx, res.Text)
	if err != nil {
		logger.Error("processor.envelope.failed", "model", res.Model, "err", err)
		return entity.AnalysisEnvelope{}, err
	}

	logger.Info("processor.analyze.ok",
		"model", res.Model,
		"prompt_version", res.PromptVersion,
		"format", doc.Format,
		"pages", doc.Pages,
		"fields", len(env.DataSchema.Fields),
		"elapsed_ms", time.Since(start).Milliseconds(),
	)
	return env, nil
}
