package codevar

import (
	"io"
	"log/slog"
	"time"

	"github.com/helixml/codevar/domain/search"
	"github.com/helixml/codevar/domain/variable"
	"github.com/helixml/codevar/infrastructure/searchcode"
	"github.com/helixml/codevar/internal/config"
)

// clientConfig holds configuration for Client construction.
// Use newClientConfig() to create with defaults from internal/config.
type clientConfig struct {
	dbURL           string
	sessionID       string
	appName         string
	logger          *slog.Logger
	searchcode      searchcode.Config
	index           search.RemoteIndex
	translation     config.TranslationConfig
	translator      search.Translator
	colorer         variable.Colorer
	cacheMaxEntries int
	perPage         int
	callTimeout     time.Duration
	closers         []io.Closer
}

// newClientConfig creates a clientConfig with defaults from internal/config.
func newClientConfig() *clientConfig {
	return &clientConfig{
		appName: config.DefaultAppName,
		searchcode: searchcode.Config{
			BaseURL: config.DefaultSearchcodeBaseURL,
			Timeout: config.DefaultSearchcodeTimeout,
		},
		translation:     config.NewTranslationConfig(),
		cacheMaxEntries: config.DefaultCacheMaxEntries,
		perPage:         config.DefaultSearchcodePerPage,
	}
}

// Option configures the Client.
type Option func(*clientConfig)

// WithSQLite persists session caches in a SQLite database at path.
func WithSQLite(path string) Option {
	return func(c *clientConfig) {
		c.dbURL = "sqlite:///" + path
	}
}

// WithPostgres persists session caches in PostgreSQL.
func WithPostgres(dsn string) Option {
	return func(c *clientConfig) {
		c.dbURL = dsn
	}
}

// WithDatabaseURL persists session caches in the database at url
// (sqlite:///path or postgres://...). An empty url keeps caches in memory.
func WithDatabaseURL(url string) Option {
	return func(c *clientConfig) {
		c.dbURL = url
	}
}

// WithSessionID sets the session whose caches are used. Defaults to a new
// random id, so nothing is shared with earlier processes.
func WithSessionID(id string) Option {
	return func(c *clientConfig) {
		c.sessionID = id
	}
}

// WithAppName sets the application name in persistence namespaces.
func WithAppName(name string) Option {
	return func(c *clientConfig) {
		if name != "" {
			c.appName = name
		}
	}
}

// WithLogger sets a custom logger.
func WithLogger(l *slog.Logger) Option {
	return func(c *clientConfig) {
		c.logger = l
	}
}

// WithSearchcode configures the searchcode client.
func WithSearchcode(cfg searchcode.Config) Option {
	return func(c *clientConfig) {
		c.searchcode = cfg
	}
}

// WithRemoteIndex replaces the searchcode client with a custom index.
func WithRemoteIndex(index search.RemoteIndex) Option {
	return func(c *clientConfig) {
		c.index = index
	}
}

// WithTranslation selects the translation backend from configuration.
func WithTranslation(cfg config.TranslationConfig) Option {
	return func(c *clientConfig) {
		c.translation = cfg
	}
}

// WithTranslator sets a custom translator. It takes precedence over
// WithTranslation.
func WithTranslator(t search.Translator) Option {
	return func(c *clientConfig) {
		c.translator = t
	}
}

// WithColorer sets how candidate colours are chosen.
func WithColorer(colorer variable.Colorer) Option {
	return func(c *clientConfig) {
		c.colorer = colorer
	}
}

// WithCacheMaxEntries bounds each in-memory cache. Zero means unbounded.
func WithCacheMaxEntries(n int) Option {
	return func(c *clientConfig) {
		if n >= 0 {
			c.cacheMaxEntries = n
		}
	}
}

// WithPerPage sets the number of results requested per page.
func WithPerPage(n int) Option {
	return func(c *clientConfig) {
		if n > 0 {
			c.perPage = n
		}
	}
}

// WithCallTimeout bounds every translation and remote call.
func WithCallTimeout(d time.Duration) Option {
	return func(c *clientConfig) {
		if d > 0 {
			c.callTimeout = d
		}
	}
}

// WithCloser registers a resource to be closed when the Client shuts down.
func WithCloser(closer io.Closer) Option {
	return func(c *clientConfig) {
		c.closers = append(c.closers, closer)
	}
}

// WithAppConfig applies every setting of an AppConfig.
func WithAppConfig(cfg config.AppConfig) Option {
	return func(c *clientConfig) {
		sc := cfg.Searchcode()
		c.dbURL = cfg.DBURL()
		c.sessionID = cfg.SessionID()
		c.cacheMaxEntries = cfg.CacheMaxEntries()
		c.perPage = sc.PerPage()
		c.translation = cfg.Translation()
		c.searchcode.BaseURL = sc.BaseURL()
		c.searchcode.Timeout = sc.Timeout()
		c.searchcode.CacheDir = cfg.HTTPCacheDir()
	}
}
