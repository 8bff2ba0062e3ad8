// Package searchcode is a client for the searchcode.com code search API.
package searchcode

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/helixml/codevar/domain/search"
	"github.com/helixml/codevar/domain/variable"
)

// DefaultBaseURL is the public searchcode service.
const DefaultBaseURL = "https://searchcode.com"

const (
	searchPath = "/api/codesearch_I/"
	resultPath = "/api/result/"
	maxBody    = 16 << 20
)

// ErrInvalidID indicates a source lookup with a non-positive id.
var ErrInvalidID = errors.New("invalid source id")

// StatusError is returned when the service answers with a non-2xx status.
type StatusError struct {
	StatusCode int
	URL        string
}

// Error implements error.
func (e *StatusError) Error() string {
	return fmt.Sprintf("searchcode: unexpected status %d from %s", e.StatusCode, e.URL)
}

// Temporary reports whether retrying might succeed.
func (e *StatusError) Temporary() bool {
	return e.StatusCode == http.StatusTooManyRequests || e.StatusCode >= 500
}

// Config configures a Client.
type Config struct {
	BaseURL  string
	Timeout  time.Duration
	CacheDir string
	Logger   *slog.Logger
	// Transport overrides the HTTP transport. CacheDir still wraps it.
	Transport http.RoundTripper
}

// Client talks to the searchcode HTTP API.
type Client struct {
	baseURL    string
	httpClient *http.Client
	logger     *slog.Logger
}

// NewClient creates a Client.
func NewClient(cfg Config) *Client {
	baseURL := strings.TrimRight(cfg.BaseURL, "/")
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}

	logger := cfg.Logger
	if logger == nil {
		logger = slog.Default()
	}

	transport := cfg.Transport
	if cfg.CacheDir != "" {
		transport = NewCachingTransport(cfg.CacheDir, transport)
	}

	return &Client{
		baseURL: baseURL,
		httpClient: &http.Client{
			Timeout:   cfg.Timeout,
			Transport: transport,
		},
		logger: logger.With("component", "searchcode"),
	}
}

// searchResponse is the JSON body of a code search.
type searchResponse struct {
	Results []variable.RepoRef `json:"results"`
	Total   int                `json:"total"`
	Page    int                `json:"page"`
}

// resultResponse is the JSON body of a single result lookup.
type resultResponse struct {
	Code string `json:"code"`
}

// SearchURL builds the code search URL for req.
func (c *Client) SearchURL(req search.Request) string {
	q := url.Values{}
	q.Set("q", req.Query())
	q.Set("p", strconv.Itoa(req.Page()))
	q.Set("per_page", strconv.Itoa(req.PerPage()))
	if langs := req.Languages(); len(langs) > 0 {
		q.Set("lan", strings.Join(langs, ","))
	}
	return c.baseURL + searchPath + "?" + q.Encode()
}

// Search runs a paged code search and returns the matched files.
func (c *Client) Search(ctx context.Context, req search.Request) ([]variable.RepoRef, error) {
	endpoint := c.SearchURL(req)

	var body searchResponse
	if err := c.getJSON(ctx, endpoint, &body); err != nil {
		return nil, fmt.Errorf("code search: %w", err)
	}

	c.logger.DebugContext(ctx, "code search complete",
		slog.String("query", req.Query()),
		slog.Int("page", req.Page()),
		slog.Int("results", len(body.Results)),
	)

	if body.Results == nil {
		return []variable.RepoRef{}, nil
	}
	return body.Results, nil
}

// FetchSource returns the full source code of a search result.
func (c *Client) FetchSource(ctx context.Context, id int64) (string, error) {
	if id <= 0 {
		return "", ErrInvalidID
	}
	endpoint := c.baseURL + resultPath + strconv.FormatInt(id, 10) + "/"

	var body resultResponse
	if err := c.getJSON(ctx, endpoint, &body); err != nil {
		return "", fmt.Errorf("fetch source %d: %w", id, err)
	}
	return body.Code, nil
}

func (c *Client) getJSON(ctx context.Context, endpoint string, out any) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("Accept", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("send request: %w", err)
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		_, _ = io.Copy(io.Discard, io.LimitReader(resp.Body, maxBody))
		return &StatusError{StatusCode: resp.StatusCode, URL: endpoint}
	}

	if err := json.NewDecoder(io.LimitReader(resp.Body, maxBody)).Decode(out); err != nil {
		return fmt.Errorf("decode response: %w", err)
	}
	return nil
}
