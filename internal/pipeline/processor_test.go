package processor

import (
	"context"
	"encoding/base64"
	"io"
	"log/slog"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/joseph-ayodele/logforms/constants"
	"github.com/joseph-ayodele/logforms/internal/common"
	"github.com/joseph-ayodele/logforms/internal/ingest"
	"github.com/joseph-ayodele/logforms/internal/llm"
)

const tempEnvelope = `{
  "data_schema": {"title": "Oven log", "fields": [{"key": "temp", "label": "Temperature", "type": "number", "required": true, "order": 1}]},
  "markdown_template": "| Temperature | {{temp}} |",
  "html_template": "<div style=\"background: white; color: black;\">{{temp}}</div>"
}`

type countingExtractor struct {
	calls int
	text  string
	err   error
	last  llm.ExtractRequest
}

func (c *countingExtractor) Extract(_ context.Context, req llm.ExtractRequest) (llm.ExtractResult, error) {
	c.calls++
	c.last = req
	if c.err != nil {
		return llm.ExtractResult{}, c.err
	}
	return llm.ExtractResult{Text: c.text, Model: "fake", PromptVersion: llm.PromptVersion}, nil
}

func newProcessor(max int, ext llm.Extractor) *Processor {
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	cfg := common.ExtractConfig{MaxUploadBytes: max, Lenient: true, EnforceOrder: true}
	return NewProcessor(logger, ingest.NewGatekeeper(cfg, logger), ext, llm.NewEnvelopeValidator(cfg, logger))
}

func b64(n int) string {
	return base64.StdEncoding.EncodeToString([]byte(strings.Repeat("x", n)))
}

func TestAnalyze_AcceptsEveryAllowedMimeUpToCeiling(t *testing.T) {
	const max = 64
	for mime := range constants.AllowedMimeTypes {
		for _, size := range []int{1, max / 2, max} {
			ext := &countingExtractor{text: tempEnvelope}
			env, err := newProcessor(max, ext).Analyze(context.Background(), ingest.Submission{MimeType: mime, Data: b64(size)})

			require.NoError(t, err, "%s/%d", mime, size)
			assert.Equal(t, 1, ext.calls)
			assert.Equal(t, size, len(ext.last.Document))
			assert.Equal(t, "temp", env.DataSchema.Fields[0].Key)
		}
	}
}

func TestAnalyze_RejectsBeforeCallingExtractor(t *testing.T) {
	const max = 64
	subs := []ingest.Submission{
		{MimeType: "image/png", Data: b64(max + 1)},
		{MimeType: "image/png", Data: b64(max * 4)},
		{MimeType: "image/gif", Data: b64(1)},
		{MimeType: "image/png", Data: "!!"},
	}
	for _, sub := range subs {
		ext := &countingExtractor{text: tempEnvelope}
		_, err := newProcessor(max, ext).Analyze(context.Background(), sub)

		require.Error(t, err)
		assert.True(t, common.IsKind(err, common.KindInputValidation))
		assert.Zero(t, ext.calls)
	}
}

func TestAnalyze_PropagatesCollaboratorKinds(t *testing.T) {
	up := &countingExtractor{err: common.UpstreamError("down", nil)}
	_, err := newProcessor(64, up).Analyze(context.Background(), ingest.Submission{MimeType: "image/png", Data: b64(4)})
	assert.True(t, common.IsKind(err, common.KindUpstreamService))

	bad := &countingExtractor{text: `{"data_schema": {"title": "x", "fields": []}}`}
	env, err := newProcessor(64, bad).Analyze(context.Background(), ingest.Submission{MimeType: "image/png", Data: b64(4)})
	assert.True(t, common.IsKind(err, common.KindResponseShape))
	assert.Empty(t, env.DataSchema.Title)
}

func TestAnalyze_PassesTier(t *testing.T) {
	ext := &countingExtractor{text: tempEnvelope}
	_, err := newProcessor(64, ext).Analyze(context.Background(), ingest.Submission{MimeType: "image/png", Data: b64(4), Model: "high_fidelity"})
	require.NoError(t, err)
	assert.Equal(t, constants.TierHighFidelity, ext.last.Tier)
}
