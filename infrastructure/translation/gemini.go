package translation

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"strings"
	"time"

	genai "google.golang.org/genai"

	"github.com/helixml/codevar/domain/search"
)

// DefaultGeminiModel is used when no model is configured.
const DefaultGeminiModel = "gemini-2.0-flash"

// contentGenerator is the subset of genai.Models used here.
type contentGenerator interface {
	GenerateContent(ctx context.Context, model string, contents []*genai.Content, config *genai.GenerateContentConfig) (*genai.GenerateContentResponse, error)
}

// GeminiConfig holds configuration for the Gemini translator.
type GeminiConfig struct {
	APIKey  string
	BaseURL string
	Model   string
	Timeout time.Duration
	Retry   Backoff
	Logger  *slog.Logger
}

// Gemini translates through the Gemini API.
type Gemini struct {
	models contentGenerator
	model  string
	retry  Backoff
	logger *slog.Logger
}

// NewGemini creates a Gemini translator. An empty APIKey falls back to the
// GEMINI_API_KEY / GOOGLE_API_KEY environment variables read by genai.
func NewGemini(ctx context.Context, cfg GeminiConfig) (*Gemini, error) {
	clientCfg := &genai.ClientConfig{
		APIKey:  cfg.APIKey,
		Backend: genai.BackendGeminiAPI,
	}
	if cfg.BaseURL != "" {
		clientCfg.HTTPOptions.BaseURL = cfg.BaseURL
	}
	if cfg.Timeout > 0 {
		clientCfg.HTTPClient = &http.Client{Timeout: cfg.Timeout}
	}

	cli, err := genai.NewClient(ctx, clientCfg)
	if err != nil {
		return nil, fmt.Errorf("create gemini client: %w", err)
	}
	return newGemini(cli.Models, cfg), nil
}

func newGemini(models contentGenerator, cfg GeminiConfig) *Gemini {
	model := cfg.Model
	if model == "" {
		model = DefaultGeminiModel
	}
	logger := cfg.Logger
	if logger == nil {
		logger = slog.Default()
	}
	return &Gemini{models: models, model: model, retry: cfg.Retry, logger: logger}
}

// Translate asks the model for English keywords for text.
func (g *Gemini) Translate(ctx context.Context, text string) (search.Translation, bool, error) {
	contents := []*genai.Content{{
		Role:  genai.RoleUser,
		Parts: []*genai.Part{{Text: userPrompt(text)}},
	}}
	genCfg := &genai.GenerateContentConfig{
		SystemInstruction: &genai.Content{Parts: []*genai.Part{{Text: systemPrompt}}},
		ResponseMIMEType:  "application/json",
	}

	var reply string
	err := g.retry.Do(ctx, func() error {
		resp, err := g.models.GenerateContent(ctx, g.model, contents, genCfg)
		if err != nil {
			return err
		}
		reply = responseText(resp)
		return nil
	}, isRetryableGemini)
	if err != nil {
		return search.Translation{}, false, wrapGeminiError(err)
	}

	translation, ok, err := parseReply(reply)
	if err != nil {
		return search.Translation{}, false, NewProviderError("gemini", 0, "malformed reply", err)
	}
	g.logger.DebugContext(ctx, "query translated", slog.Bool("ok", ok), slog.String("text", translation.Text()))
	return translation, ok, nil
}

// responseText concatenates the text parts of the first candidate.
func responseText(resp *genai.GenerateContentResponse) string {
	if resp == nil || len(resp.Candidates) == 0 || resp.Candidates[0].Content == nil {
		return ""
	}
	var b strings.Builder
	for _, part := range resp.Candidates[0].Content.Parts {
		if part != nil {
			b.WriteString(part.Text)
		}
	}
	return b.String()
}

func isRetryableGemini(err error) bool {
	if isTimeout(err) {
		return true
	}
	var apiErr genai.APIError
	if errors.As(err, &apiErr) {
		return apiErr.Code == http.StatusTooManyRequests || apiErr.Code >= 500
	}
	return false
}

func wrapGeminiError(err error) error {
	var apiErr genai.APIError
	if errors.As(err, &apiErr) {
		return NewProviderError("gemini", apiErr.Code, apiErr.Message, err)
	}
	return NewProviderError("gemini", 0, err.Error(), err)
}
