// Package config provides application configuration.
package config

import (
	"fmt"
	"log/slog"
	"strings"
	"time"
)

// Default configuration values.
const (
	DefaultHost                    = "0.0.0.0"
	DefaultPort                    = 8080
	DefaultLogLevel                = "INFO"
	DefaultAppName                 = "codevar"
	DefaultCacheMaxEntries         = 0
	DefaultSearchcodeBaseURL       = "https://searchcode.com"
	DefaultSearchcodeTimeout       = 15 * time.Second
	DefaultSearchcodePerPage       = 42
	DefaultTranslationTimeout      = 20 * time.Second
	DefaultTranslationMaxRetries   = 3
	DefaultTranslationInitialDelay = time.Second
	DefaultTranslationBackoff      = 2.0
	DefaultYoudaoBaseURL           = "https://fanyi.youdao.com"
)

// LogFormat represents the log output format.
type LogFormat string

// LogFormat values.
const (
	LogFormatPretty LogFormat = "pretty"
	LogFormatJSON   LogFormat = "json"
)

// TranslationProvider names a translation backend.
type TranslationProvider string

// TranslationProvider values.
const (
	TranslationNone   TranslationProvider = "none"
	TranslationOpenAI TranslationProvider = "openai"
	TranslationGemini TranslationProvider = "gemini"
	TranslationYoudao TranslationProvider = "youdao"
)

// ParseTranslationProvider maps a free-form name onto a provider.
// Unknown names fall back to TranslationNone.
func ParseTranslationProvider(s string) TranslationProvider {
	switch TranslationProvider(strings.ToLower(strings.TrimSpace(s))) {
	case TranslationOpenAI:
		return TranslationOpenAI
	case TranslationGemini:
		return TranslationGemini
	case TranslationYoudao:
		return TranslationYoudao
	default:
		return TranslationNone
	}
}

// SearchcodeConfig configures the remote code search service.
type SearchcodeConfig struct {
	baseURL string
	timeout time.Duration
	perPage int
}

// NewSearchcodeConfig creates a new SearchcodeConfig with defaults.
func NewSearchcodeConfig() SearchcodeConfig {
	return SearchcodeConfig{
		baseURL: DefaultSearchcodeBaseURL,
		timeout: DefaultSearchcodeTimeout,
		perPage: DefaultSearchcodePerPage,
	}
}

// BaseURL returns the service base URL.
func (s SearchcodeConfig) BaseURL() string { return s.baseURL }

// Timeout returns the per-call timeout.
func (s SearchcodeConfig) Timeout() time.Duration { return s.timeout }

// PerPage returns the number of results requested per page.
func (s SearchcodeConfig) PerPage() int { return s.perPage }

// WithBaseURL returns a new config with the specified base URL.
func (s SearchcodeConfig) WithBaseURL(url string) SearchcodeConfig {
	if url != "" {
		s.baseURL = strings.TrimRight(url, "/")
	}
	return s
}

// WithTimeout returns a new config with the specified timeout.
func (s SearchcodeConfig) WithTimeout(d time.Duration) SearchcodeConfig {
	if d > 0 {
		s.timeout = d
	}
	return s
}

// WithPerPage returns a new config with the specified page size.
func (s SearchcodeConfig) WithPerPage(n int) SearchcodeConfig {
	if n > 0 {
		s.perPage = n
	}
	return s
}

// TranslationConfig configures the translation backend.
type TranslationConfig struct {
	provider      TranslationProvider
	model         string
	apiKey        string
	baseURL       string
	timeout       time.Duration
	maxRetries    int
	initialDelay  time.Duration
	backoffFactor float64
	youdaoKeyFrom string
}

// NewTranslationConfig creates a new TranslationConfig with defaults.
func NewTranslationConfig() TranslationConfig {
	return TranslationConfig{
		provider:      TranslationNone,
		timeout:       DefaultTranslationTimeout,
		maxRetries:    DefaultTranslationMaxRetries,
		initialDelay:  DefaultTranslationInitialDelay,
		backoffFactor: DefaultTranslationBackoff,
	}
}

// Provider returns the configured backend.
func (t TranslationConfig) Provider() TranslationProvider { return t.provider }

// Model returns the model identifier.
func (t TranslationConfig) Model() string { return t.model }

// APIKey returns the API key.
func (t TranslationConfig) APIKey() string { return t.apiKey }

// BaseURL returns the base URL override.
func (t TranslationConfig) BaseURL() string { return t.baseURL }

// Timeout returns the per-call timeout.
func (t TranslationConfig) Timeout() time.Duration { return t.timeout }

// MaxRetries returns the maximum retry count.
func (t TranslationConfig) MaxRetries() int { return t.maxRetries }

// InitialDelay returns the initial retry delay.
func (t TranslationConfig) InitialDelay() time.Duration { return t.initialDelay }

// BackoffFactor returns the backoff multiplier.
func (t TranslationConfig) BackoffFactor() float64 { return t.backoffFactor }

// YoudaoKeyFrom returns the keyfrom parameter for the Youdao API.
func (t TranslationConfig) YoudaoKeyFrom() string { return t.youdaoKeyFrom }

// IsConfigured returns true if a backend other than none is selected.
func (t TranslationConfig) IsConfigured() bool {
	return t.provider != "" && t.provider != TranslationNone
}

// TranslationOption is a functional option for TranslationConfig.
type TranslationOption func(*TranslationConfig)

// WithProvider sets the translation backend.
func WithProvider(p TranslationProvider) TranslationOption {
	return func(t *TranslationConfig) { t.provider = p }
}

// WithModel sets the model identifier.
func WithModel(model string) TranslationOption {
	return func(t *TranslationConfig) { t.model = model }
}

// WithAPIKey sets the API key.
func WithAPIKey(key string) TranslationOption {
	return func(t *TranslationConfig) { t.apiKey = key }
}

// WithTranslationBaseURL sets the base URL override.
func WithTranslationBaseURL(url string) TranslationOption {
	return func(t *TranslationConfig) { t.baseURL = url }
}

// WithTranslationTimeout sets the per-call timeout.
func WithTranslationTimeout(d time.Duration) TranslationOption {
	return func(t *TranslationConfig) {
		if d > 0 {
			t.timeout = d
		}
	}
}

// WithMaxRetries sets the maximum retry count.
func WithMaxRetries(n int) TranslationOption {
	return func(t *TranslationConfig) {
		if n >= 0 {
			t.maxRetries = n
		}
	}
}

// WithInitialDelay sets the initial retry delay.
func WithInitialDelay(d time.Duration) TranslationOption {
	return func(t *TranslationConfig) { t.initialDelay = d }
}

// WithBackoffFactor sets the backoff multiplier.
func WithBackoffFactor(f float64) TranslationOption {
	return func(t *TranslationConfig) { t.backoffFactor = f }
}

// WithYoudaoKeyFrom sets the Youdao keyfrom parameter.
func WithYoudaoKeyFrom(keyFrom string) TranslationOption {
	return func(t *TranslationConfig) { t.youdaoKeyFrom = keyFrom }
}

// NewTranslationConfigWithOptions creates a TranslationConfig with functional options.
func NewTranslationConfigWithOptions(opts ...TranslationOption) TranslationConfig {
	t := NewTranslationConfig()
	for _, opt := range opts {
		opt(&t)
	}
	return t
}

// AppConfig holds the main application configuration.
type AppConfig struct {
	host               string
	port               int
	dbURL              string
	logLevel           string
	logFormat          LogFormat
	sessionID          string
	cacheMaxEntries    int
	httpCacheDir       string
	searchcode         SearchcodeConfig
	translation        TranslationConfig
	corsAllowedOrigins []string
	apiKeys            []string
}

// DefaultLogger returns the default slog logger for library consumers.
func DefaultLogger() *slog.Logger {
	return slog.Default()
}

// NewAppConfig creates a new AppConfig with defaults.
func NewAppConfig() AppConfig {
	return AppConfig{
		host:               DefaultHost,
		port:               DefaultPort,
		logLevel:           DefaultLogLevel,
		logFormat:          LogFormatPretty,
		cacheMaxEntries:    DefaultCacheMaxEntries,
		searchcode:         NewSearchcodeConfig(),
		translation:        NewTranslationConfig(),
		corsAllowedOrigins: []string{},
		apiKeys:            []string{},
	}
}

// Host returns the server host to bind to.
func (c AppConfig) Host() string { return c.host }

// Port returns the server port to listen on.
func (c AppConfig) Port() int { return c.port }

// Addr returns the combined host:port address.
func (c AppConfig) Addr() string {
	return fmt.Sprintf("%s:%d", c.host, c.port)
}

// DBURL returns the session database URL. Empty means caches stay in memory.
func (c AppConfig) DBURL() string { return c.dbURL }

// LogLevel returns the log level.
func (c AppConfig) LogLevel() string { return c.logLevel }

// LogFormat returns the log format.
func (c AppConfig) LogFormat() LogFormat { return c.logFormat }

// SessionID returns the session identifier used in cache persistence keys.
func (c AppConfig) SessionID() string { return c.sessionID }

// CacheMaxEntries returns the per-cache entry bound. Zero is unbounded.
func (c AppConfig) CacheMaxEntries() int { return c.cacheMaxEntries }

// HTTPCacheDir returns the directory for on-disk HTTP response caching.
func (c AppConfig) HTTPCacheDir() string { return c.httpCacheDir }

// Searchcode returns the remote search config.
func (c AppConfig) Searchcode() SearchcodeConfig { return c.searchcode }

// Translation returns the translation config.
func (c AppConfig) Translation() TranslationConfig { return c.translation }

// CORSAllowedOrigins returns the origins allowed by the HTTP API.
func (c AppConfig) CORSAllowedOrigins() []string {
	origins := make([]string, len(c.corsAllowedOrigins))
	copy(origins, c.corsAllowedOrigins)
	return origins
}

// AppConfigOption is a functional option for AppConfig.
type AppConfigOption func(*AppConfig)

// WithHost sets the server host.
func WithHost(host string) AppConfigOption {
	return func(c *AppConfig) { c.host = host }
}

// WithPort sets the server port.
func WithPort(port int) AppConfigOption {
	return func(c *AppConfig) { c.port = port }
}

// WithDBURL sets the database URL.
func WithDBURL(url string) AppConfigOption {
	return func(c *AppConfig) { c.dbURL = url }
}

// WithLogLevel sets the log level.
func WithLogLevel(level string) AppConfigOption {
	return func(c *AppConfig) { c.logLevel = level }
}

// WithLogFormat sets the log format.
func WithLogFormat(format LogFormat) AppConfigOption {
	return func(c *AppConfig) { c.logFormat = format }
}

// WithSessionID sets the session identifier.
func WithSessionID(id string) AppConfigOption {
	return func(c *AppConfig) { c.sessionID = id }
}

// WithCacheMaxEntries sets the per-cache entry bound.
func WithCacheMaxEntries(n int) AppConfigOption {
	return func(c *AppConfig) {
		if n >= 0 {
			c.cacheMaxEntries = n
		}
	}
}

// WithHTTPCacheDir sets the HTTP response cache directory.
func WithHTTPCacheDir(dir string) AppConfigOption {
	return func(c *AppConfig) { c.httpCacheDir = dir }
}

// WithSearchcodeConfig sets the remote search config.
func WithSearchcodeConfig(s SearchcodeConfig) AppConfigOption {
	return func(c *AppConfig) { c.searchcode = s }
}

// WithTranslationConfig sets the translation config.
func WithTranslationConfig(t TranslationConfig) AppConfigOption {
	return func(c *AppConfig) { c.translation = t }
}

// APIKeys returns the keys accepted for mutating API requests.
func (c AppConfig) APIKeys() []string {
	keys := make([]string, len(c.apiKeys))
	copy(keys, c.apiKeys)
	return keys
}

// WithAPIKeys sets the keys accepted for mutating API requests.
func WithAPIKeys(keys []string) AppConfigOption {
	return func(c *AppConfig) {
		c.apiKeys = make([]string, len(keys))
		copy(c.apiKeys, keys)
	}
}

// WithCORSAllowedOrigins sets the allowed CORS origins.
func WithCORSAllowedOrigins(origins []string) AppConfigOption {
	return func(c *AppConfig) {
		c.corsAllowedOrigins = make([]string, len(origins))
		copy(c.corsAllowedOrigins, origins)
	}
}

// NewAppConfigWithOptions creates an AppConfig with functional options.
func NewAppConfigWithOptions(opts ...AppConfigOption) AppConfig {
	c := NewAppConfig()
	for _, opt := range opts {
		opt(&c)
	}
	return c
}

// Apply returns a new AppConfig with the given options applied.
func (c AppConfig) Apply(opts ...AppConfigOption) AppConfig {
	for _, opt := range opts {
		opt(&c)
	}
	return c
}

// LogAttrs returns slog attributes for logging the configuration.
// Secrets are never included.
func (c AppConfig) LogAttrs() []slog.Attr {
	return []slog.Attr{
		slog.String("log_level", c.logLevel),
		slog.String("db_url", c.maskedDBURL()),
		slog.String("session_id", c.sessionID),
		slog.Int("cache_max_entries", c.cacheMaxEntries),
		slog.String("http_cache_dir", c.httpCacheDir),
		slog.String("searchcode_base_url", c.searchcode.BaseURL()),
		slog.Duration("searchcode_timeout", c.searchcode.Timeout()),
		slog.String("translation_provider", string(c.translation.Provider())),
		slog.String("translation_model", c.translation.Model()),
		slog.Bool("translation_api_key_set", c.translation.APIKey() != ""),
		slog.Int("cors_origins_count", len(c.corsAllowedOrigins)),
		slog.Int("api_keys_count", len(c.apiKeys)),
	}
}

func (c AppConfig) maskedDBURL() string {
	if c.dbURL == "" {
		return "(memory)"
	}
	if strings.HasPrefix(c.dbURL, "sqlite:") {
		return c.dbURL
	}
	return "postgres://***@***"
}

// ParseList parses a comma-separated string, dropping blank entries.
func ParseList(s string) []string {
	if s == "" {
		return []string{}
	}
	parts := strings.Split(s, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		trimmed := strings.TrimSpace(p)
		if trimmed != "" {
			out = append(out, trimmed)
		}
	}
	return out
}
