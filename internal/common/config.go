package common

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/spf13/viper"

	"github.com/joseph-ayodele/logforms/constants"
)

// Config holds all application configuration
type Config struct {
	App     AppConfig
	HTTP    HTTPConfig
	Gemini  GeminiConfig
	Extract ExtractConfig
	Store   StoreConfig
	Log     LogConfig
}

// AppConfig holds process-level settings
type AppConfig struct {
	Env      string // development | production
	GRPCAddr string
}

// HTTPConfig holds HTTP server configuration
type HTTPConfig struct {
	Addr           string
	AllowedOrigins []string
	ReadTimeout    time.Duration
	WriteTimeout   time.Duration
}

// GeminiConfig holds extraction collaborator configuration
type GeminiConfig struct {
	APIKey      string
	BaseURL     string // empty uses the SDK default
	FastModel   string
	HighModel   string
	Temperature float32
	Timeout     time.Duration
}

// ExtractConfig holds gatekeeper and envelope validation knobs
type ExtractConfig struct {
	MaxUploadBytes int
	MaxPDFPages    int
	VerifyContent  bool
	Lenient        bool
	EnforceOrder   bool
}

// StoreConfig holds backing store pooling configuration
type StoreConfig struct {
	AllowedProviders []string
	MaxPools         int
	MaxConns         int32
	MinConns         int32
	MaxConnLifetime  time.Duration
	MaxConnIdleTime  time.Duration
	DialTimeout      time.Duration
	StatementTimeout time.Duration
	RequestTimeout   time.Duration
}

// LogConfig holds logging configuration
type LogConfig struct {
	Level  string // debug, info, warn, error
	Format string // json, text
}

// IsProduction reports whether user-facing errors must hide internal detail.
func (c *Config) IsProduction() bool {
	env := strings.ToLower(strings.TrimSpace(c.App.Env))
	return env == "prod" || env == "production"
}

// MaxBase64Length is the base64 ceiling equivalent to MaxUploadBytes.
func (c *Config) MaxBase64Length() int {
	return constants.Base64Len(c.Extract.MaxUploadBytes)
}

// MaxBodyBytes bounds the analyze request body: the base64 payload plus room
// for the JSON envelope around it.
func (c *Config) MaxBodyBytes() int64 {
	return int64(c.MaxBase64Length()) + 64*1024
}

// ProviderAllowed reports whether callers may address the given store provider.
func (c *Config) ProviderAllowed(p constants.Provider) bool {
	for _, allowed := range c.Store.AllowedProviders {
		if strings.EqualFold(strings.TrimSpace(allowed), string(p)) {
			return true
		}
	}
	return false
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("app.env", "development")
	v.SetDefault("grpc.addr", ":9090")

	v.SetDefault("http.addr", ":8080")
	v.SetDefault("http.allowed_origins", []string{"http://localhost:3000", "http://localhost:5173"})
	v.SetDefault("http.read_timeout", 30*time.Second)
	v.SetDefault("http.write_timeout", 3*time.Minute)

	v.SetDefault("gemini.api_key", "")
	v.SetDefault("gemini.base_url", "")
	v.SetDefault("gemini.model_fast", "gemini-2.5-flash")
	v.SetDefault("gemini.model_high", "gemini-2.5-pro")
	v.SetDefault("gemini.temperature", 0.1)
	v.SetDefault("gemini.timeout", 2*time.Minute)

	v.SetDefault("upload.max_bytes", constants.MaxUploadBytes)
	v.SetDefault("extract.max_pdf_pages", constants.DefaultMaxPDFPages)
	v.SetDefault("extract.verify_content", true)
	v.SetDefault("extract.lenient", true)
	v.SetDefault("extract.enforce_order", true)

	v.SetDefault("store.allowed_providers", []string{string(constants.ProviderSupabase), string(constants.ProviderPostgreSQL)})
	v.SetDefault("store.max_pools", 32)
	v.SetDefault("store.max_conns", 4)
	v.SetDefault("store.min_conns", 0)
	v.SetDefault("store.max_conn_lifetime", 30*time.Minute)
	v.SetDefault("store.max_conn_idle_time", 5*time.Minute)
	v.SetDefault("store.dial_timeout", 5*time.Second)
	v.SetDefault("store.statement_timeout", 15*time.Second)
	v.SetDefault("store.request_timeout", 20*time.Second)

	v.SetDefault("log.level", "info")
	v.SetDefault("log.format", "json")
}

// LoadConfig loads configuration from defaults, an optional logforms.yaml and
// environment variables (GEMINI_API_KEY overrides gemini.api_key, and so on).
func LoadConfig() (*Config, error) {
	v := viper.New()
	setDefaults(v)

	v.SetConfigName("logforms")
	v.SetConfigType("yaml")
	v.AddConfigPath(".")
	v.AddConfigPath("/etc/logforms")
	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return nil, fmt.Errorf("read config file: %w", err)
		}
	}

	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	return fromViper(v), nil
}

func fromViper(v *viper.Viper) *Config {
	return &Config{
		App: AppConfig{
			Env:      v.GetString("app.env"),
			GRPCAddr: v.GetString("grpc.addr"),
		},
		HTTP: HTTPConfig{
			Addr:           v.GetString("http.addr"),
			AllowedOrigins: splitList(v.GetStringSlice("http.allowed_origins")),
			ReadTimeout:    v.GetDuration("http.read_timeout"),
			WriteTimeout:   v.GetDuration("http.write_timeout"),
		},
		Gemini: GeminiConfig{
			APIKey:      v.GetString("gemini.api_key"),
			BaseURL:     v.GetString("gemini.base_url"),
			FastModel:   v.GetString("gemini.model_fast"),
			HighModel:   v.GetString("gemini.model_high"),
			Temperature: float32(v.GetFloat64("gemini.temperature")),
			Timeout:     v.GetDuration("gemini.timeout"),
		},
		Extract: ExtractConfig{
			MaxUploadBytes: v.GetInt("upload.max_bytes"),
			MaxPDFPages:    v.GetInt("extract.max_pdf_pages"),
			VerifyContent:  v.GetBool("extract.verify_content"),
			Lenient:        v.GetBool("extract.lenient"),
			EnforceOrder:   v.GetBool("extract.enforce_order"),
		},
		Store: StoreConfig{
			AllowedProviders: splitList(v.GetStringSlice("store.allowed_providers")),
			MaxPools:         v.GetInt("store.max_pools"),
			MaxConns:         v.GetInt32("store.max_conns"),
			MinConns:         v.GetInt32("store.min_conns"),
			MaxConnLifetime:  v.GetDuration("store.max_conn_lifetime"),
			MaxConnIdleTime:  v.GetDuration("store.max_conn_idle_time"),
			DialTimeout:      v.GetDuration("store.dial_timeout"),
			StatementTimeout: v.GetDuration("store.statement_timeout"),
			RequestTimeout:   v.GetDuration("store.request_timeout"),
		},
		Log: LogConfig{
			Level:  v.GetString("log.level"),
			Format: v.GetString("log.format"),
		},
	}
}

// splitList accepts both YAML lists and comma-separated env values.
func splitList(in []string) []string {
	out := make([]string, 0, len(in))
	for _, item := range in {
		for _, part := range strings.Split(item, ",") {
			if p := strings.TrimSpace(part); p != "" {
				out = append(out, p)
			}
		}
	}
	return out
}

// Validate validates the loaded configuration
func (c *Config) Validate() error {
	if c.Gemini.APIKey == "" {
		return NewAppError(KindInternal, "CONFIG_ERROR", "GEMINI_API_KEY is required", ErrInvalidInput)
	}
	if c.Gemini.FastModel == "" || c.Gemini.HighModel == "" {
		return NewAppError(KindInternal, "CONFIG_ERROR", "GEMINI_MODEL_FAST and GEMINI_MODEL_HIGH are required", ErrInvalidInput)
	}
	if c.HTTP.Addr == "" {
		return NewAppError(KindInternal, "CONFIG_ERROR", "HTTP_ADDR is required", ErrInvalidInput)
	}
	if c.Extract.MaxUploadBytes <= 0 {
		return NewAppError(KindInternal, "CONFIG_ERROR", "UPLOAD_MAX_BYTES must be positive", ErrInvalidInput)
	}
	if c.Store.MaxPools <= 0 {
		return NewAppError(KindInternal, "CONFIG_ERROR", "STORE_MAX_POOLS must be positive", ErrInvalidInput)
	}
	for _, p := range c.Store.AllowedProviders {
		switch constants.Provider(strings.ToLower(p)) {
		case constants.ProviderSupabase, constants.ProviderPostgreSQL, constants.ProviderSQLite:
		default:
			return NewAppError(KindInternal, "CONFIG_ERROR", "unknown provider in STORE_ALLOWED_PROVIDERS: "+p, ErrInvalidInput)
		}
	}
	return nil
}
