package gemini

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"google.golang.org/genai"

	"github.com/joseph-ayodele/logforms/constants"
	"github.com/joseph-ayodele/logforms/internal/common"
	"github.com/joseph-ayodele/logforms/internal/llm"
)

var _ llm.Extractor = (*Client)(nil)

// Extract implements llm.Extractor with one generateContent call carrying the
// instructions and the document as inline data. Nothing is retried.
func (c *Client) Extract(ctx context.Context, req llm.ExtractRequest) (llm.ExtractResult, error) {
	rid := common.RequestIDFromContext(ctx)
	if rid == "" {
		rid = uuid.New().String()
	}
	logger := common.LoggerFromContext(ctx, c.log)
	model := c.ModelFor(req.Tier)
	start := time.Now()

	logger.Info("llm.extract.start",
		"req_id", rid,
		"model", model,
		"temp", c.cfg.Temperature,
		"mime", req.MimeType,
		"bytes", len(req.Document),
		"prompt_version", llm.PromptVersion,
	)

	ctx, cancel := context.WithTimeout(ctx, c.cfg.Timeout)
	defer cancel()

	contents := []*genai.Content{
		genai.NewContentFromParts([]*genai.Part{
			genai.NewPartFromText(llm.BuildInstructions()),
			genai.NewPartFromBytes(req.Document, req.MimeType),
		}, genai.RoleUser),
	}
	config := &genai.GenerateContentConfig{
		Temperature:      genai.Ptr(c.cfg.Temperature),
		ResponseMIMEType: "application/json",
		ResponseSchema:   EnvelopeResponseSchema(),
	}

	resp, err := c.models.GenerateContent(ctx, model, contents, config)
	if err != nil {
		logger.Error("llm.extract.upstream_error",
			"req_id", rid, "error", err, "status", apiStatus(err),
			"elapsed_ms", time.Since(start).Milliseconds(),
		)
		return llm.ExtractResult{}, common.UpstreamError("extraction service unavailable", err)
	}

	text, reason := responseText(resp)
	if reason != "" {
		logger.Error("llm.extract.shape_error",
			"req_id", rid, "reason", reason,
			"elapsed_ms", time.Since(start).Milliseconds(),
		)
		return llm.ExtractResult{}, common.ShapeError(common.CodeMalformedResponse, "extraction service returned no usable answer: "+reason, nil)
	}
	if !llm.HasObjectDelimiters(text) {
		logger.Error("llm.extract.shape_error",
			"req_id", rid, "reason", "delimiters", "bytes", len(text),
			"elapsed_ms", time.Since(start).Milliseconds(),
		)
		return llm.ExtractResult{}, common.ShapeError(common.CodeMalformedResponse, "extraction service did not return a JSON object", nil)
	}

	logger.Info("llm.extract.ok",
		"req_id", rid,
		"model", model,
		"bytes", len(text),
		"elapsed_ms", time.Since(start).Milliseconds(),
	)
	return llm.ExtractResult{Text: strings.TrimSpace(text), Model: model, PromptVersion: llm.PromptVersion}, nil
}

// responseText concatenates the text parts of the first candidate. A non-empty
// reason explains why there is nothing to return.
func responseText(resp *genai.GenerateContentResponse) (string, string) {
	if resp == nil {
		return "", "empty response"
	}
	if pf := resp.PromptFeedback; pf != nil && pf.BlockReason != "" {
		return "", "prompt blocked: " + string(pf.BlockReason)
	}
	if len(resp.Candidates) == 0 || resp.Candidates[0] == nil || resp.Candidates[0].Content == nil {
		return "", "no candidates"
	}
	cand := resp.Candidates[0]
	var b strings.Builder
	for _, p := range cand.Content.Parts {
		if p != nil && !p.Thought {
			b.WriteString(p.Text)
		}
	}
	if strings.TrimSpace(b.String()) == "" {
		return "", fmt.Sprintf("empty candidate (finish reason %s)", cand.FinishReason)
	}
	return b.String(), ""
}

func apiStatus(err error) int {
	var apiErr genai.APIError
	if errors.As(err, &apiErr) {
		return apiErr.Code
	}
	var apiErrPtr *genai.APIError
	if errors.As(err, &apiErrPtr) && apiErrPtr != nil {
		return apiErrPtr.Code
	}
	return 0
}

// EnvelopeResponseSchema mirrors the envelope JSON schema in Gemini's schema dialect.
func EnvelopeResponseSchema() *genai.Schema {
	str := func() *genai.Schema { return &genai.Schema{Type: genai.TypeString} }

	field := &genai.Schema{
		Type: genai.TypeObject,
		Properties: map[string]*genai.Schema{
			"key":      str(),
			"label":    str(),
			"type":     {Type: genai.TypeString, Enum: constants.FieldTypes()},
			"required": {Type: genai.TypeBoolean},
			"order":    {Type: genai.TypeInteger},
			"enum":     {Type: genai.TypeArray, Items: str()},
			"unit":     str(),
			"format":   str(),
			"group":    str(),
			"notes":    str(),
		},
		Required:         []string{"key", "label", "type", "required", "order"},
		PropertyOrdering: []string{"key", "label", "type", "required", "order", "enum", "unit", "format", "group", "notes"},
	}

	return &genai.Schema{
		Type: genai.TypeObject,
		Properties: map[string]*genai.Schema{
			"data_schema": {
				Type: genai.TypeObject,
				Properties: map[string]*genai.Schema{
					"title":  str(),
					"fields": {Type: genai.TypeArray, Items: field},
				},
				Required:         []string{"title", "fields"},
				PropertyOrdering: []string{"title", "fields"},
			},
			"markdown_template": str(),
			"html_template":     str(),
		},
		Required:         []string{"data_schema", "markdown_template", "html_template"},
		PropertyOrdering: []string{"data_schema", "markdown_template", "html_template"},
	}
}
