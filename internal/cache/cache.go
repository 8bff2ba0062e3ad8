// Package cache provides the session-scoped keyed caches used by the search
// service.
//
// A Cache keeps entries in memory for the lifetime of the process. Capacity
// is unbounded unless a maximum is configured, in which case least recently
// used entries are evicted. When a Store is attached, entries are also
// written through as JSON under the cache namespace so a session can be
// resumed by another process.
package cache

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"strings"
	"sync"

	lru "github.com/hashicorp/golang-lru/v2"
)

// Store persists serialised cache entries by namespace and key.
type Store interface {
	Load(ctx context.Context, namespace, key string) ([]byte, bool, error)
	Save(ctx context.Context, namespace, key string, value []byte) error
	Purge(ctx context.Context, namespace string) error
}

// Option configures a Cache.
type Option func(*options)

type options struct {
	maxEntries int
	store      Store
	logger     *slog.Logger
}

// WithMaxEntries bounds the in-memory entries. Zero or less means unbounded.
func WithMaxEntries(n int) Option {
	return func(o *options) { o.maxEntries = n }
}

// WithStore writes entries through to s and reads misses from it.
func WithStore(s Store) Option {
	return func(o *options) { o.store = s }
}

// WithLogger sets the logger used to report store failures.
func WithLogger(l *slog.Logger) Option {
	return func(o *options) { o.logger = l }
}

// Cache is a namespaced, session-scoped cache safe for concurrent use.
type Cache[K comparable, V any] struct {
	namespace string
	store     Store
	logger    *slog.Logger

	mu      sync.Mutex
	entries map[K]V
	bounded *lru.Cache[K, V]
}

// New creates a Cache for namespace.
func New[K comparable, V any](namespace string, opts ...Option) *Cache[K, V] {
	o := &options{}
	for _, opt := range opts {
		opt(o)
	}
	if o.logger == nil {
		o.logger = slog.Default()
	}

	c := &Cache[K, V]{
		namespace: namespace,
		store:     o.store,
		logger:    o.logger,
	}

	if o.maxEntries > 0 {
		bounded, err := lru.New[K, V](o.maxEntries)
		if err != nil {
			panic(fmt.Sprintf("create lru cache: %v", err))
		}
		c.bounded = bounded
	} else {
		c.entries = make(map[K]V)
	}
	return c
}

// Namespace returns the namespace entries are persisted under.
func (c *Cache[K, V]) Namespace() string {
	return c.namespace
}

// Get returns the entry for key, consulting the store on a memory miss.
func (c *Cache[K, V]) Get(ctx context.Context, key K) (V, bool) {
	if v, ok := c.getMemory(key); ok {
		return v, true
	}

	var zero V
	if c.store == nil {
		return zero, false
	}

	data, ok, err := c.store.Load(ctx, c.namespace, storeKey(key))
	if err != nil {
		c.logger.Warn("cache store load failed",
			slog.String("namespace", c.namespace),
			slog.Any("error", err),
		)
		return zero, false
	}
	if !ok {
		return zero, false
	}

	var v V
	if err := json.Unmarshal(data, &v); err != nil {
		c.logger.Warn("cache entry decode failed",
			slog.String("namespace", c.namespace),
			slog.Any("error", err),
		)
		return zero, false
	}

	c.putMemory(key, v)
	return v, true
}

// Put stores value under key.
func (c *Cache[K, V]) Put(ctx context.Context, key K, value V) {
	c.putMemory(key, value)

	if c.store == nil {
		return
	}
	data, err := json.Marshal(value)
	if err != nil {
		c.logger.Warn("cache entry encode failed",
			slog.String("namespace", c.namespace),
			slog.Any("error", err),
		)
		return
	}
	if err := c.store.Save(ctx, c.namespace, storeKey(key), data); err != nil {
		c.logger.Warn("cache store save failed",
			slog.String("namespace", c.namespace),
			slog.Any("error", err),
		)
	}
}

// Len returns the number of entries held in memory.
func (c *Cache[K, V]) Len() int {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.bounded != nil {
		return c.bounded.Len()
	}
	return len(c.entries)
}

// Purge drops every entry in memory and in the store.
func (c *Cache[K, V]) Purge(ctx context.Context) error {
	c.mu.Lock()
	if c.bounded != nil {
		c.bounded.Purge()
	} else {
		c.entries = make(map[K]V)
	}
	c.mu.Unlock()

	if c.store == nil {
		return nil
	}
	return c.store.Purge(ctx, c.namespace)
}

func (c *Cache[K, V]) getMemory(key K) (V, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.bounded != nil {
		return c.bounded.Get(key)
	}
	v, ok := c.entries[key]
	return v, ok
}

func (c *Cache[K, V]) putMemory(key K, value V) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.bounded != nil {
		c.bounded.Add(key, value)
		return
	}
	c.entries[key] = value
}

func storeKey(key any) string {
	return fmt.Sprint(key)
}

// PersistenceKey derives the namespace for a named cache of a session.
// Distinct names never collide within one application and session.
func PersistenceKey(app, session, name string) string {
	return strings.Join([]string{app, session, name}, ":")
}
