package translation

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/helixml/codevar/domain/search"
)

// DefaultYoudaoBaseURL is the Youdao dictionary API root.
const DefaultYoudaoBaseURL = "https://fanyi.youdao.com"

const youdaoPath = "/openapi.do"

// YoudaoConfig holds configuration for the Youdao translator.
type YoudaoConfig struct {
	APIKey  string
	KeyFrom string
	BaseURL string
	Timeout time.Duration
	Retry   Backoff
	Logger  *slog.Logger
}

// Youdao translates through the Youdao dictionary API.
type Youdao struct {
	baseURL    string
	apiKey     string
	keyFrom    string
	httpClient *http.Client
	retry      Backoff
	logger     *slog.Logger
}

// NewYoudao creates a Youdao translator.
func NewYoudao(cfg YoudaoConfig) *Youdao {
	baseURL := strings.TrimRight(cfg.BaseURL, "/")
	if baseURL == "" {
		baseURL = DefaultYoudaoBaseURL
	}
	logger := cfg.Logger
	if logger == nil {
		logger = slog.Default()
	}
	return &Youdao{
		baseURL:    baseURL,
		apiKey:     cfg.APIKey,
		keyFrom:    cfg.KeyFrom,
		httpClient: &http.Client{Timeout: cfg.Timeout},
		retry:      cfg.Retry,
		logger:     logger,
	}
}

// youdaoResponse is the JSON body of a dictionary lookup.
type youdaoResponse struct {
	ErrorCode   int      `json:"errorCode"`
	Query       string   `json:"query"`
	Translation []string `json:"translation"`
	Basic       *struct {
		Explains []string `json:"explains"`
	} `json:"basic"`
	Web []struct {
		Key   string   `json:"key"`
		Value []string `json:"value"`
	} `json:"web"`
}

// errYoudaoStatus marks a retryable upstream status.
var errYoudaoStatus = errors.New("youdao upstream unavailable")

// Translate looks text up in the dictionary. The first translation becomes
// the query and the dictionary explanations and web phrases become
// suggestions.
func (y *Youdao) Translate(ctx context.Context, text string) (search.Translation, bool, error) {
	q := url.Values{}
	q.Set("keyfrom", y.keyFrom)
	q.Set("key", y.apiKey)
	q.Set("type", "data")
	q.Set("doctype", "json")
	q.Set("version", "1.1")
	q.Set("q", text)
	endpoint := y.baseURL + youdaoPath + "?" + q.Encode()

	var body youdaoResponse
	err := y.retry.Do(ctx, func() error {
		return y.get(ctx, endpoint, &body)
	}, func(err error) bool {
		return errors.Is(err, errYoudaoStatus) || isTimeout(err)
	})
	if err != nil {
		var perr *ProviderError
		if errors.As(err, &perr) {
			return search.Translation{}, false, err
		}
		return search.Translation{}, false, NewProviderError("youdao", 0, err.Error(), err)
	}

	if body.ErrorCode != 0 {
		return search.Translation{}, false, NewProviderError("youdao", 0, fmt.Sprintf("error code %d", body.ErrorCode), nil)
	}
	if len(body.Translation) == 0 {
		return search.Translation{}, false, nil
	}

	translated := search.NormalizeQuery(body.Translation[0])
	if translated == "" {
		return search.Translation{}, false, nil
	}

	y.logger.DebugContext(ctx, "query translated", slog.String("text", translated))
	return search.NewTranslation(translated, youdaoSuggestions(body)), true, nil
}

func (y *Youdao) get(ctx context.Context, endpoint string, out *youdaoResponse) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return fmt.Errorf("build request: %w", err)
	}

	resp, err := y.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("send request: %w", err)
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode == http.StatusTooManyRequests || resp.StatusCode >= 500 {
		return fmt.Errorf("%w: status %d", errYoudaoStatus, resp.StatusCode)
	}
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return NewProviderError("youdao", resp.StatusCode, http.StatusText(resp.StatusCode), nil)
	}

	*out = youdaoResponse{}
	if err := json.NewDecoder(io.LimitReader(resp.Body, 1<<20)).Decode(out); err != nil {
		return NewProviderError("youdao", resp.StatusCode, "malformed reply", err)
	}
	return nil
}

// youdaoSuggestions collects the explanation and web phrase words.
// Part of speech markers such as "n." are dropped.
func youdaoSuggestions(body youdaoResponse) []string {
	var out []string
	if body.Basic != nil {
		for _, explain := range body.Basic.Explains {
			out = append(out, explainWords(explain)...)
		}
	}
	for _, web := range body.Web {
		for _, v := range web.Value {
			if v = strings.TrimSpace(v); v != "" {
				out = append(out, v)
			}
		}
	}
	if out == nil {
		return []string{}
	}
	return out
}

func explainWords(explain string) []string {
	var out []string
	for _, part := range strings.FieldsFunc(explain, func(r rune) bool {
		return r == ';' || r == ',' || r == '；' || r == '，'
	}) {
		part = strings.TrimSpace(part)
		if i := strings.Index(part, ". "); i > 0 && i <= 6 && !strings.Contains(part[:i], " ") {
			part = strings.TrimSpace(part[i+2:])
		}
		if part != "" {
			out = append(out, part)
		}
	}
	return out
}
