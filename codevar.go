// Package codevar finds variable names for a concept by mining a public code
// search index.
//
// A query is sent to searchcode.com (or any compatible index) and the matched
// source lines are scanned for identifiers containing the query words. Each
// candidate is linked to the repositories it was found in. Queries written in
// a non-Latin script are translated to English first.
//
// Basic usage:
//
//	client, err := codevar.New(
//	    codevar.WithSQLite(".codevar/session.db"),
//	    codevar.WithSessionID("demo"),
//	)
//	if err != nil {
//	    log.Fatal(err)
//	}
//	defer client.Close()
//
//	state := client.Search.RequestVariable(ctx, "user name", 0, []string{"Go"})
//	for _, c := range state.VariableList[len(state.VariableList)-1] {
//	    fmt.Println(c.Keyword, c.RepoLink)
//	}
package codevar

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"sync"
	"sync/atomic"

	"github.com/google/uuid"

	"github.com/helixml/codevar/application/service"
	"github.com/helixml/codevar/domain/search"
	"github.com/helixml/codevar/infrastructure/persistence"
	"github.com/helixml/codevar/infrastructure/searchcode"
	"github.com/helixml/codevar/infrastructure/translation"
	"github.com/helixml/codevar/internal/cache"
	"github.com/helixml/codevar/internal/config"
	"github.com/helixml/codevar/internal/database"
)

// Client is the main entry point for the codevar library.
//
//	client.Search.RequestVariable(ctx, "user", 0, nil)
//	client.Search.RequestSourceCode(ctx, id)
type Client struct {
	Search *service.Search

	db        *database.Database
	sessionID string
	closers   []io.Closer
	logger    *slog.Logger
	closed    atomic.Bool
	mu        sync.Mutex
}

// New creates a new Client with the given options.
func New(opts ...Option) (*Client, error) {
	cfg := newClientConfig()
	for _, opt := range opts {
		opt(cfg)
	}

	logger := cfg.logger
	if logger == nil {
		logger = config.DefaultLogger()
	}

	sessionID := cfg.sessionID
	if sessionID == "" {
		sessionID = uuid.NewString()
	}
	logger = logger.With(slog.String("session_id", sessionID))

	ctx := context.Background()

	index := cfg.index
	if index == nil {
		sc := cfg.searchcode
		if sc.Logger == nil {
			sc.Logger = logger
		}
		index = searchcode.NewClient(sc)
	}

	translator := cfg.translator
	if translator == nil {
		t, err := translation.New(ctx, cfg.translation, logger)
		if err != nil {
			return nil, fmt.Errorf("create translator: %w", err)
		}
		translator = t
	}

	cacheOpts := []cache.Option{
		cache.WithMaxEntries(cfg.cacheMaxEntries),
		cache.WithLogger(logger),
	}

	var db *database.Database
	if cfg.dbURL != "" {
		opened, err := database.NewDatabase(ctx, cfg.dbURL, database.WithLogger(logger))
		if err != nil {
			return nil, fmt.Errorf("open database: %w", err)
		}
		if err := persistence.AutoMigrate(opened); err != nil {
			errClose := opened.Close()
			return nil, errors.Join(fmt.Errorf("auto migrate: %w", err), errClose)
		}
		db = &opened
		cacheOpts = append(cacheOpts, cache.WithStore(persistence.NewSessionStore(opened)))
	}

	pages := cache.New[search.Fingerprint, search.Page](
		cache.PersistenceKey(cfg.appName, sessionID, service.VariableListCache), cacheOpts...,
	)
	sources := cache.New[int64, string](
		cache.PersistenceKey(cfg.appName, sessionID, service.SourceCodeCache), cacheOpts...,
	)

	client := &Client{
		db:        db,
		sessionID: sessionID,
		closers:   cfg.closers,
		logger:    logger,
	}

	searchOpts := []service.SearchOption{
		service.WithPageCache(pages),
		service.WithSourceCache(sources),
		service.WithColorer(cfg.colorer),
		service.WithPerPage(cfg.perPage),
		service.WithSearchLogger(logger),
		service.WithClosedFlag(&client.closed),
	}
	if cfg.callTimeout > 0 {
		searchOpts = append(searchOpts, service.WithCallTimeout(cfg.callTimeout))
	}
	client.Search = service.NewSearch(index, translator, searchOpts...)

	logger.Debug("codevar client ready", slog.Bool("persistent", db != nil))
	return client, nil
}

// SessionID returns the session whose caches the client uses.
func (c *Client) SessionID() string {
	return c.sessionID
}

// Logger returns the client's logger.
func (c *Client) Logger() *slog.Logger {
	return c.logger
}

// Close releases all resources.
func (c *Client) Close() error {
	if !c.closed.CompareAndSwap(false, true) {
		return ErrClientClosed
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	for _, closer := range c.closers {
		if err := closer.Close(); err != nil {
			c.logger.Error("failed to close resource", slog.Any("error", err))
		}
	}

	if c.db != nil {
		if err := c.db.Close(); err != nil {
			return fmt.Errorf("close database: %w", err)
		}
	}

	c.logger.Debug("codevar client closed")
	return nil
}
