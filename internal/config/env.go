package config

import (
	"strings"
	"time"

	"github.com/kelseyhightower/envconfig"
)

// EnvConfig holds all environment-based configuration.
// Nested structs use underscore delimiter (e.g., TRANSLATION_API_KEY).
type EnvConfig struct {
	// Host is the server host to bind to.
	// Env: HOST (default: 0.0.0.0)
	Host string `envconfig:"HOST" default:"0.0.0.0"`

	// Port is the server port to listen on.
	// Env: PORT (default: 8080)
	Port int `envconfig:"PORT" default:"8080"`

	// LogLevel is the log verbosity level.
	// Env: LOG_LEVEL (default: INFO)
	LogLevel string `envconfig:"LOG_LEVEL" default:"INFO"`

	// LogFormat is the log output format (pretty or json).
	// Env: LOG_FORMAT (default: pretty)
	LogFormat string `envconfig:"LOG_FORMAT" default:"pretty"`

	// DBURL is the session database URL (sqlite:///path or postgres://...).
	// Env: DB_URL
	// Default: empty, caches are kept in memory only.
	DBURL string `envconfig:"DB_URL"`

	// SessionID scopes persisted caches.
	// Env: SESSION_ID
	// Default: a random UUID per process.
	SessionID string `envconfig:"SESSION_ID"`

	// CacheMaxEntries bounds each in-memory cache. Zero is unbounded.
	// Env: CACHE_MAX_ENTRIES (default: 0)
	CacheMaxEntries int `envconfig:"CACHE_MAX_ENTRIES" default:"0"`

	// HTTPCacheDir is the directory for caching searchcode responses to disk.
	// Env: HTTP_CACHE_DIR
	HTTPCacheDir string `envconfig:"HTTP_CACHE_DIR"`

	// Searchcode configures the remote code search service.
	Searchcode SearchcodeEnv `envconfig:"SEARCHCODE"`

	// Translation configures the translation backend.
	Translation TranslationEnv `envconfig:"TRANSLATION"`

	// YoudaoKeyFrom is the keyfrom parameter of the Youdao API.
	// Env: YOUDAO_KEYFROM
	YoudaoKeyFrom string `envconfig:"YOUDAO_KEYFROM"`

	// CORSAllowedOrigins is a comma-separated list of allowed origins.
	// Env: CORS_ALLOWED_ORIGINS
	CORSAllowedOrigins string `envconfig:"CORS_ALLOWED_ORIGINS"`

	// APIKeys is a comma-separated list of keys for mutating API requests.
	// Env: API_KEYS
	APIKeys string `envconfig:"API_KEYS"`
}

// SearchcodeEnv holds environment configuration for the searchcode client.
type SearchcodeEnv struct {
	// BaseURL is the service root.
	// Env: SEARCHCODE_BASE_URL (default: https://searchcode.com)
	BaseURL string `envconfig:"BASE_URL" default:"https://searchcode.com"`

	// Timeout is the per-call timeout in seconds.
	// Env: SEARCHCODE_TIMEOUT (default: 15)
	Timeout float64 `envconfig:"TIMEOUT" default:"15"`

	// PerPage is the page size requested from the service.
	// Env: SEARCHCODE_PER_PAGE (default: 42)
	PerPage int `envconfig:"PER_PAGE" default:"42"`
}

// TranslationEnv holds environment configuration for the translation backend.
type TranslationEnv struct {
	// Provider selects the backend: none, openai, gemini or youdao.
	// Env: TRANSLATION_PROVIDER (default: none)
	Provider string `envconfig:"PROVIDER" default:"none"`

	// Model is the model identifier for LLM backends.
	// Env: TRANSLATION_MODEL
	Model string `envconfig:"MODEL"`

	// APIKey authenticates against the backend.
	// Env: TRANSLATION_API_KEY
	APIKey string `envconfig:"API_KEY"`

	// BaseURL overrides the backend endpoint.
	// Env: TRANSLATION_BASE_URL
	BaseURL string `envconfig:"BASE_URL"`

	// Timeout is the per-call timeout in seconds.
	// Env: TRANSLATION_TIMEOUT (default: 20)
	Timeout float64 `envconfig:"TIMEOUT" default:"20"`

	// MaxRetries is the maximum number of retries.
	// Env: TRANSLATION_MAX_RETRIES (default: 3)
	MaxRetries int `envconfig:"MAX_RETRIES" default:"3"`
}

// LoadFromEnv loads configuration from environment variables.
func LoadFromEnv() (EnvConfig, error) {
	var cfg EnvConfig
	if err := envconfig.Process("", &cfg); err != nil {
		return EnvConfig{}, err
	}
	return cfg, nil
}

// LoadFromEnvWithPrefix loads configuration with a custom prefix.
// For example, prefix "CODEVAR" would require CODEVAR_PORT instead of PORT.
func LoadFromEnvWithPrefix(prefix string) (EnvConfig, error) {
	var cfg EnvConfig
	if err := envconfig.Process(prefix, &cfg); err != nil {
		return EnvConfig{}, err
	}
	return cfg, nil
}

// Normalize trims whitespace from free-form values.
func (e EnvConfig) Normalize() EnvConfig {
	e.Host = strings.TrimSpace(e.Host)
	e.LogLevel = strings.ToUpper(strings.TrimSpace(e.LogLevel))
	e.LogFormat = strings.ToLower(strings.TrimSpace(e.LogFormat))
	e.DBURL = strings.TrimSpace(e.DBURL)
	e.SessionID = strings.TrimSpace(e.SessionID)
	e.Searchcode.BaseURL = strings.TrimSpace(e.Searchcode.BaseURL)
	e.Translation.Provider = strings.TrimSpace(e.Translation.Provider)
	return e
}

// ToAppConfig converts EnvConfig to AppConfig.
func (e EnvConfig) ToAppConfig() AppConfig {
	cfg := NewAppConfig()

	if e.Host != "" {
		cfg = applyOption(cfg, WithHost(e.Host))
	}
	if e.Port != 0 {
		cfg = applyOption(cfg, WithPort(e.Port))
	}
	if e.LogLevel != "" {
		cfg = applyOption(cfg, WithLogLevel(e.LogLevel))
	}
	if e.LogFormat != "" {
		cfg = applyOption(cfg, WithLogFormat(parseLogFormat(e.LogFormat)))
	}
	if e.DBURL != "" {
		cfg = applyOption(cfg, WithDBURL(e.DBURL))
	}
	if e.SessionID != "" {
		cfg = applyOption(cfg, WithSessionID(e.SessionID))
	}
	cfg = applyOption(cfg, WithCacheMaxEntries(e.CacheMaxEntries))
	if e.HTTPCacheDir != "" {
		cfg = applyOption(cfg, WithHTTPCacheDir(e.HTTPCacheDir))
	}

	cfg = applyOption(cfg, WithSearchcodeConfig(e.Searchcode.ToSearchcodeConfig()))
	cfg = applyOption(cfg, WithTranslationConfig(e.Translation.ToTranslationConfig(e.YoudaoKeyFrom)))

	if e.CORSAllowedOrigins != "" {
		cfg = applyOption(cfg, WithCORSAllowedOrigins(ParseList(e.CORSAllowedOrigins)))
	}
	if e.APIKeys != "" {
		cfg = applyOption(cfg, WithAPIKeys(ParseList(e.APIKeys)))
	}

	return cfg
}

// applyOption applies an option to the config.
func applyOption(cfg AppConfig, opt AppConfigOption) AppConfig {
	opt(&cfg)
	return cfg
}

// ToSearchcodeConfig converts SearchcodeEnv to SearchcodeConfig.
func (s SearchcodeEnv) ToSearchcodeConfig() SearchcodeConfig {
	return NewSearchcodeConfig().
		WithBaseURL(s.BaseURL).
		WithTimeout(seconds(s.Timeout)).
		WithPerPage(s.PerPage)
}

// ToTranslationConfig converts TranslationEnv to TranslationConfig.
func (t TranslationEnv) ToTranslationConfig(youdaoKeyFrom string) TranslationConfig {
	return NewTranslationConfigWithOptions(
		WithProvider(ParseTranslationProvider(t.Provider)),
		WithModel(t.Model),
		WithAPIKey(t.APIKey),
		WithTranslationBaseURL(t.BaseURL),
		WithTranslationTimeout(seconds(t.Timeout)),
		WithMaxRetries(t.MaxRetries),
		WithYoudaoKeyFrom(youdaoKeyFrom),
	)
}

func seconds(f float64) time.Duration {
	return time.Duration(f * float64(time.Second))
}

func parseLogFormat(s string) LogFormat {
	switch strings.ToLower(s) {
	case "json":
		return LogFormatJSON
	default:
		return LogFormatPretty
	}
}
