package common

import (
	"bytes"
	"log/slog"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/joseph-ayodele/logforms/constants"
)

func TestLoadConfig_Defaults(t *testing.T) {
	t.Setenv("GEMINI_API_KEY", "test-key")

	cfg, err := LoadConfig()
	require.NoError(t, err)
	require.NoError(t, cfg.Validate())

	assert.Equal(t, "gemini-2.5-flash", cfg.Gemini.FastModel)
	assert.Equal(t, "gemini-2.5-pro", cfg.Gemini.HighModel)
	assert.Equal(t, constants.MaxUploadBytes, cfg.Extract.MaxUploadBytes)
	assert.Equal(t, ":8080", cfg.HTTP.Addr)
	assert.Equal(t, 2*time.Minute, cfg.Gemini.Timeout)
	assert.True(t, cfg.ProviderAllowed(constants.ProviderSupabase))
	assert.True(t, cfg.ProviderAllowed(constants.ProviderPostgreSQL))
	assert.False(t, cfg.ProviderAllowed(constants.ProviderSQLite))
	assert.False(t, cfg.IsProduction())
}

func TestLoadConfig_EnvOverrides(t *testing.T) {
	t.Setenv("GEMINI_API_KEY", "test-key")
	t.Setenv("APP_ENV", "production")
	t.Setenv("HTTP_ALLOWED_ORIGINS", "https://a.example, https://b.example")
	t.Setenv("STORE_ALLOWED_PROVIDERS", "sqlite,postgresql")
	t.Setenv("UPLOAD_MAX_BYTES", "3000")
	t.Setenv("GEMINI_TIMEOUT", "45s")

	cfg, err := LoadConfig()
	require.NoError(t, err)

	assert.True(t, cfg.IsProduction())
	assert.Equal(t, []string{"https://a.example", "https://b.example"}, cfg.HTTP.AllowedOrigins)
	assert.True(t, cfg.ProviderAllowed(constants.ProviderSQLite))
	assert.False(t, cfg.ProviderAllowed(constants.ProviderSupabase))
	assert.Equal(t, 3000, cfg.Extract.MaxUploadBytes)
	assert.Equal(t, 4000, cfg.MaxBase64Length())
	assert.Equal(t, 45*time.Second, cfg.Gemini.Timeout)
}

func TestConfig_Validate(t *testing.T) {
	t.Setenv("GEMINI_API_KEY", "")
	cfg, err := LoadConfig()
	require.NoError(t, err)

	err = cfg.Validate()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "GEMINI_API_KEY")

	cfg.Gemini.APIKey = "k"
	cfg.Store.AllowedProviders = []string{"mysql"}
	err = cfg.Validate()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "mysql")
}

func TestNewLogger_Format(t *testing.T) {
	var buf bytes.Buffer
	logger := newLogger(LogConfig{Level: "warn", Format: "json"}, &buf)

	logger.Info("dropped")
	assert.Empty(t, buf.String())

	logger.Warn("kept", slog.String("req_id", "r1"))
	assert.Contains(t, buf.String(), `"msg":"kept"`)
	assert.Contains(t, buf.String(), `"req_id":"r1"`)
}
