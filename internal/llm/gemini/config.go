package gemini

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"google.golang.org/genai"

	"github.com/joseph-ayodele/logforms/constants"
	"github.com/joseph-ayodele/logforms/internal/common"
)

// Config for the Gemini client.
type Config struct {
	APIKey      string
	BaseURL     string // empty uses the SDK default endpoint
	FastModel   string // e.g., "gemini-2.5-flash"
	HighModel   string // e.g., "gemini-2.5-pro"
	Temperature float32
	Timeout     time.Duration
}

// ConfigFrom adapts the process configuration.
func ConfigFrom(c common.GeminiConfig) Config {
	return Config{
		APIKey:      c.APIKey,
		BaseURL:     c.BaseURL,
		FastModel:   c.FastModel,
		HighModel:   c.HighModel,
		Temperature: c.Temperature,
		Timeout:     c.Timeout,
	}
}

type Client struct {
	cfg    Config
	models *genai.Models
	log    *slog.Logger
}

func NewClient(ctx context.Context, cfg Config, logger *slog.Logger) (*Client, error) {
	if cfg.FastModel == "" {
		cfg.FastModel = "gemini-2.5-flash"
	}
	if cfg.HighModel == "" {
		cfg.HighModel = "gemini-2.5-pro"
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = 2 * time.Minute
	}
	if logger == nil {
		logger = slog.Default()
	}

	gc, err := genai.NewClient(ctx, &genai.ClientConfig{
		APIKey:      cfg.APIKey,
		Backend:     genai.BackendGeminiAPI,
		HTTPClient:  &http.Client{},
		HTTPOptions: genai.HTTPOptions{BaseURL: cfg.BaseURL},
	})
	if err != nil {
		return nil, fmt.Errorf("create genai client: %w", err)
	}
	return &Client{cfg: cfg, models: gc.Models, log: logger}, nil
}

// ModelFor resolves a tier to the configured model id.
func (c *Client) ModelFor(tier constants.ModelTier) string {
	if tier == constants.TierHighFidelity {
		return c.cfg.HighModel
	}
	return c.cfg.FastModel
}
