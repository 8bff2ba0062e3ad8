// Package service provides application layer services that orchestrate domain operations.
package service

import (
	"context"
	"fmt"
	"log/slog"
	"strconv"
	"sync"
	"sync/atomic"
	"time"

	"golang.org/x/sync/singleflight"

	"github.com/helixml/codevar/domain/search"
	"github.com/helixml/codevar/domain/variable"
	"github.com/helixml/codevar/internal/cache"
)

// Cache names used to derive persistence namespaces.
const (
	VariableListCache = "variable_list"
	SourceCodeCache   = "source_code"
)

// DefaultCallTimeout bounds each translation and remote call.
const DefaultCallTimeout = 30 * time.Second

// SearchOption configures a Search service.
type SearchOption func(*searchConfig)

type searchConfig struct {
	pages       *cache.Cache[search.Fingerprint, search.Page]
	sources     *cache.Cache[int64, string]
	colorer     variable.Colorer
	perPage     int
	callTimeout time.Duration
	logger      *slog.Logger
	closed      *atomic.Bool
}

// WithPageCache sets the fingerprint cache of result pages.
func WithPageCache(c *cache.Cache[search.Fingerprint, search.Page]) SearchOption {
	return func(cfg *searchConfig) {
		if c != nil {
			cfg.pages = c
		}
	}
}

// WithSourceCache sets the cache of fetched source files.
func WithSourceCache(c *cache.Cache[int64, string]) SearchOption {
	return func(cfg *searchConfig) {
		if c != nil {
			cfg.sources = c
		}
	}
}

// WithColorer sets the colour assigned to candidates.
func WithColorer(c variable.Colorer) SearchOption {
	return func(cfg *searchConfig) {
		cfg.colorer = c
	}
}

// WithPerPage sets the number of results requested per page.
func WithPerPage(n int) SearchOption {
	return func(cfg *searchConfig) {
		if n > 0 {
			cfg.perPage = n
		}
	}
}

// WithCallTimeout bounds every translation and remote call.
func WithCallTimeout(d time.Duration) SearchOption {
	return func(cfg *searchConfig) {
		if d > 0 {
			cfg.callTimeout = d
		}
	}
}

// WithSearchLogger sets the logger.
func WithSearchLogger(l *slog.Logger) SearchOption {
	return func(cfg *searchConfig) {
		cfg.logger = l
	}
}

// WithClosedFlag shares the owning client's closed flag.
func WithClosedFlag(closed *atomic.Bool) SearchOption {
	return func(cfg *searchConfig) {
		if closed != nil {
			cfg.closed = closed
		}
	}
}

// Search runs variable searches for one session and owns its observable
// state.
//
// A request normalises the query, translates it when it contains non-Latin
// text, looks the effective query up in the fingerprint cache and otherwise
// queries the remote index and extracts candidates. Every request publishes
// exactly one page, even on failure, unless it is overtaken by Reset.
// Identical requests in flight at the same time share one remote call and
// one extraction pass.
type Search struct {
	index       search.RemoteIndex
	translator  search.Translator
	extractor   *variable.Extractor
	pages       *cache.Cache[search.Fingerprint, search.Page]
	sources     *cache.Cache[int64, string]
	perPage     int
	callTimeout time.Duration
	logger      *slog.Logger
	closed      *atomic.Bool

	group singleflight.Group

	mu           sync.Mutex
	state        search.State
	generation   uint64
	observers    map[int]func(search.State)
	nextObserver int
}

// NewSearch creates a Search over index. A nil translator never translates.
func NewSearch(index search.RemoteIndex, translator search.Translator, opts ...SearchOption) *Search {
	cfg := &searchConfig{
		perPage:     search.DefaultPerPage,
		callTimeout: DefaultCallTimeout,
	}
	for _, opt := range opts {
		opt(cfg)
	}

	logger := cfg.logger
	if logger == nil {
		logger = slog.Default()
	}
	logger = logger.With("component", "search")

	if cfg.pages == nil {
		cfg.pages = cache.New[search.Fingerprint, search.Page](VariableListCache, cache.WithLogger(logger))
	}
	if cfg.sources == nil {
		cfg.sources = cache.New[int64, string](SourceCodeCache, cache.WithLogger(logger))
	}
	if cfg.closed == nil {
		cfg.closed = &atomic.Bool{}
	}
	if translator == nil {
		translator = noTranslator{}
	}

	return &Search{
		index:       index,
		translator:  translator,
		extractor:   variable.NewExtractor(variable.NewRepoIndex(), cfg.colorer),
		pages:       cfg.pages,
		sources:     cfg.sources,
		perPage:     cfg.perPage,
		callTimeout: cfg.callTimeout,
		logger:      logger,
		closed:      cfg.closed,
		state:       search.NewState(),
		observers:   make(map[int]func(search.State)),
	}
}

// RequestVariable searches for value and publishes one page of candidates.
// Failures are logged and published as an empty page, as is a caller whose
// context ends before a shared remote call returns. The returned state is
// the state after this request, or the current state when the value is
// blank or the request was overtaken by Reset.
func (s *Search) RequestVariable(ctx context.Context, value string, page int, languages []string) search.State {
	if s.closed.Load() {
		s.logger.Warn("search requested after close")
		return s.State()
	}

	value = search.NormalizeQuery(value)
	if value == "" {
		return s.State()
	}
	if page < 0 {
		page = 0
	}

	current := s.snapshot()
	gen := current.generation
	nonLatin := variable.IsNonLatin(value)
	suggestion := variable.ComposeSuggestions(search.Words(value), current.state.Suggestion)
	langs := search.NormalizeLanguages(languages)

	query := value
	if nonLatin {
		tr, err := s.translate(ctx, value)
		if err != nil {
			s.logger.WarnContext(ctx, "translation failed",
				slog.String("query", value),
				slog.Any("error", err),
			)
			return s.publish(gen, search.Page{
				SearchValue: value,
				Page:        page,
				SearchLang:  langs,
				Suggestion:  suggestion,
				IsNonLatin:  true,
				Variables:   []variable.Candidate{},
			})
		}
		query = search.NormalizeQuery(tr.Text())
		suggestion = variable.ComposeSuggestions(tr.Suggestions(), suggestion)
		suggestion = variable.ComposeSuggestions(search.Words(query), suggestion)
	}

	req := search.NewRequest(query, page, s.perPage, langs)
	fp := req.Fingerprint()

	if cached, ok := s.pages.Get(ctx, fp); ok {
		s.logger.DebugContext(ctx, "page cache hit", slog.String("query", query), slog.Int("page", page))
		return s.publish(gen, cached)
	}

	empty := search.Page{
		SearchValue: value,
		Page:        page,
		SearchLang:  req.Languages(),
		Suggestion:  suggestion,
		IsNonLatin:  nonLatin,
		Variables:   []variable.Candidate{},
	}

	// The shared call outlives any single caller; each caller waits on its
	// own context.
	ch := s.group.DoChan("page:"+fp.String(), func() (any, error) {
		callCtx := context.WithoutCancel(ctx)
		results, err := s.remoteSearch(callCtx, req)
		if err != nil {
			return empty, err
		}

		p := empty
		p.Variables = s.extractor.Extract(query, results)
		s.pages.Put(callCtx, fp, p)
		return p, nil
	})

	published := empty
	select {
	case res := <-ch:
		if res.Shared {
			s.logger.DebugContext(ctx, "coalesced identical search", slog.String("query", query), slog.Int("page", page))
		}
		if res.Err != nil {
			s.logger.WarnContext(ctx, "remote search failed",
				slog.String("query", query),
				slog.Int("page", page),
				slog.Any("error", res.Err),
			)
		} else {
			published = res.Val.(search.Page)
		}
	case <-ctx.Done():
		s.logger.WarnContext(ctx, "remote search failed",
			slog.String("query", query),
			slog.Int("page", page),
			slog.Any("error", ctx.Err()),
		)
	}
	published.SearchValue = value
	published.Suggestion = suggestion
	published.IsNonLatin = nonLatin
	return s.publish(gen, published)
}

// RequestSourceCode fetches the source of result id and publishes it as the
// selected source. It returns the fetched code together with the state after
// publishing; the state may not carry the code when a Reset overtook the
// fetch. An id of zero is ignored. On failure the state is left unchanged and
// the error is returned.
func (s *Search) RequestSourceCode(ctx context.Context, id int64) (string, search.State, error) {
	if s.closed.Load() {
		return "", s.State(), ErrClientClosed
	}
	if id == 0 {
		return "", s.State(), nil
	}

	gen := s.snapshot().generation

	if code, ok := s.sources.Get(ctx, id); ok {
		return code, s.publishSource(gen, code), nil
	}

	ch := s.group.DoChan("source:"+strconv.FormatInt(id, 10), func() (any, error) {
		callCtx := context.WithoutCancel(ctx)
		code, err := s.fetchSource(callCtx, id)
		if err != nil {
			return "", err
		}
		s.sources.Put(callCtx, id, code)
		return code, nil
	})

	var err error
	var code string
	select {
	case res := <-ch:
		err = res.Err
		if err == nil {
			code = res.Val.(string)
		}
	case <-ctx.Done():
		err = ctx.Err()
	}
	if err != nil {
		s.logger.WarnContext(ctx, "fetch source failed", slog.Int64("id", id), slog.Any("error", err))
		return "", s.State(), fmt.Errorf("fetch source %d: %w", id, err)
	}
	return code, s.publishSource(gen, code), nil
}

// State returns a copy of the current state.
func (s *Search) State() search.State {
	return s.snapshot().state
}

// Observe registers fn to receive every published state. The returned
// function unregisters it.
func (s *Search) Observe(fn func(search.State)) func() {
	s.mu.Lock()
	defer s.mu.Unlock()

	id := s.nextObserver
	s.nextObserver++
	s.observers[id] = fn

	return func() {
		s.mu.Lock()
		defer s.mu.Unlock()
		delete(s.observers, id)
	}
}

// Reset clears the page history and discards results of requests still in
// flight. Caches and the repository index are kept.
func (s *Search) Reset() search.State {
	s.mu.Lock()
	s.generation++
	s.state = search.NewState()
	next := s.state.Clone()
	observers := s.observerList()
	s.mu.Unlock()

	s.notify(observers, next)
	return next
}

// PurgeCaches drops every cached page and source file.
func (s *Search) PurgeCaches(ctx context.Context) error {
	if err := s.pages.Purge(ctx); err != nil {
		return fmt.Errorf("purge %s: %w", s.pages.Namespace(), err)
	}
	if err := s.sources.Purge(ctx); err != nil {
		return fmt.Errorf("purge %s: %w", s.sources.Namespace(), err)
	}
	return nil
}

// IndexedKeywords returns the number of keywords recorded in the
// repository index.
func (s *Search) IndexedKeywords() int {
	return s.extractor.Index().Len()
}

func (s *Search) translate(ctx context.Context, text string) (search.Translation, error) {
	ctx, cancel := s.withTimeout(ctx)
	defer cancel()

	tr, ok, err := s.translator.Translate(ctx, text)
	if err != nil {
		return search.Translation{}, err
	}
	if !ok || search.NormalizeQuery(tr.Text()) == "" {
		return search.Translation{}, ErrNoTranslation
	}
	return tr, nil
}

func (s *Search) remoteSearch(ctx context.Context, req search.Request) ([]variable.RepoRef, error) {
	ctx, cancel := s.withTimeout(ctx)
	defer cancel()
	return s.index.Search(ctx, req)
}

func (s *Search) fetchSource(ctx context.Context, id int64) (string, error) {
	ctx, cancel := s.withTimeout(ctx)
	defer cancel()
	return s.index.FetchSource(ctx, id)
}

func (s *Search) withTimeout(ctx context.Context) (context.Context, context.CancelFunc) {
	if s.callTimeout <= 0 {
		return context.WithCancel(ctx)
	}
	return context.WithTimeout(ctx, s.callTimeout)
}

type snapshot struct {
	state      search.State
	generation uint64
}

func (s *Search) snapshot() snapshot {
	s.mu.Lock()
	defer s.mu.Unlock()
	return snapshot{state: s.state.Clone(), generation: s.generation}
}

func (s *Search) publish(gen uint64, p search.Page) search.State {
	return s.apply(gen, func(st search.State) search.State { return st.WithPage(p) })
}

func (s *Search) publishSource(gen uint64, code string) search.State {
	return s.apply(gen, func(st search.State) search.State { return st.WithSourceCode(code) })
}

func (s *Search) apply(gen uint64, update func(search.State) search.State) search.State {
	s.mu.Lock()
	if gen != s.generation {
		current := s.state.Clone()
		s.mu.Unlock()
		s.logger.Debug("discarding result from before reset")
		return current
	}
	s.state = update(s.state)
	next := s.state.Clone()
	observers := s.observerList()
	s.mu.Unlock()

	s.notify(observers, next)
	return next
}

// observerList must be called with mu held.
func (s *Search) observerList() []func(search.State) {
	list := make([]func(search.State), 0, len(s.observers))
	for i := 0; i < s.nextObserver; i++ {
		if fn, ok := s.observers[i]; ok {
			list = append(list, fn)
		}
	}
	return list
}

func (s *Search) notify(observers []func(search.State), st search.State) {
	for _, fn := range observers {
		fn(st.Clone())
	}
}

type noTranslator struct{}

func (noTranslator) Translate(context.Context, string) (search.Translation, bool, error) {
	return search.Translation{}, false, nil
}
