package main

import (
	"context"
	"encoding/base64"
	"encoding/json"
	"log/slog"
	"mime"
	"net/http"
	"os"
	"path/filepath"
	"time"

	"github.com/joseph-ayodele/logforms/internal/common"
	"github.com/joseph-ayodele/logforms/internal/ingest"
	"github.com/joseph-ayodele/logforms/internal/llm"
	"github.com/joseph-ayodele/logforms/internal/llm/gemini"
	pipeline "github.com/joseph-ayodele/logforms/internal/pipeline"
)

// analyze runs one scanned log through the analysis pipeline and prints the
// envelope as JSON on stdout.
func main() {
	logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelInfo}))
	slog.SetDefault(logger)

	if len(os.Args) < 2 {
		logger.Error("usage: analyze <file> [fast|high_fidelity]")
		os.Exit(2)
	}
	path := os.Args[1]
	tier := ""
	if len(os.Args) >= 3 {
		tier = os.Args[2]
	}

	cfg, err := common.LoadConfig()
	if err != nil {
		logger.Error("load config", "error", err)
		os.Exit(1)
	}
	if err := cfg.Validate(); err != nil {
		logger.Error("invalid configuration", "error", err)
		os.Exit(2)
	}

	raw, err := os.ReadFile(path)
	if err != nil {
		logger.Error("read file", "path", path, "error", err)
		os.Exit(1)
	}

	ctx, cancel := context.WithTimeout(context.Background(), cfg.Gemini.Timeout+30*time.Second)
	defer cancel()

	client, err := gemini.NewClient(ctx, gemini.ConfigFrom(cfg.Gemini), logger)
	if err != nil {
		logger.Error("gemini client", "error", err)
		os.Exit(1)
	}
	processor := pipeline.NewProcessor(logger,
		ingest.NewGatekeeper(cfg.Extract, logger),
		client,
		llm.NewEnvelopeValidator(cfg.Extract, logger),
	)

	start := time.Now()
	env, err := processor.Analyze(ctx, ingest.Submission{
		MimeType: mimeFor(path, raw),
		Data:     base64.StdEncoding.EncodeToString(raw),
		Model:    tier,
	})
	if err != nil {
		ae := common.AsAppError(err)
		logger.Error("analyze.failed", "kind", ae.Kind, "code", ae.Code, "retryable", ae.Retryable(), "err", err)
		os.Exit(1)
	}
	logger.Info("analyze.ok", "basename", filepath.Base(path), "fields", len(env.DataSchema.Fields), "elapsed_ms", time.Since(start).Milliseconds())

	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	enc.SetEscapeHTML(false)
	if err := enc.Encode(env); err != nil {
		logger.Error("write envelope", "error", err)
		os.Exit(1)
	}
}

// mimeFor trusts the extension first and falls back to content sniffing.
func mimeFor(path string, raw []byte) string {
	if m := mime.TypeByExtension(filepath.Ext(path)); m != "" {
		return m
	}
	return http.DetectContentType(raw)
}
