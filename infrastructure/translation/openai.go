package translation

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"time"

	openai "github.com/sashabaranov/go-openai"

	"github.com/helixml/codevar/domain/search"
)

// DefaultOpenAIModel is used when no model is configured.
const DefaultOpenAIModel = "gpt-4o-mini"

// OpenAIConfig holds configuration for the OpenAI translator.
type OpenAIConfig struct {
	APIKey  string
	BaseURL string
	Model   string
	Timeout time.Duration
	Retry   Backoff
	Logger  *slog.Logger
}

// OpenAI translates through an OpenAI compatible chat completion API.
type OpenAI struct {
	client *openai.Client
	model  string
	retry  Backoff
	logger *slog.Logger
}

// NewOpenAI creates an OpenAI translator.
func NewOpenAI(cfg OpenAIConfig) *OpenAI {
	config := openai.DefaultConfig(cfg.APIKey)
	if cfg.BaseURL != "" {
		config.BaseURL = cfg.BaseURL
	}
	if cfg.Timeout > 0 {
		config.HTTPClient = &http.Client{Timeout: cfg.Timeout}
	}

	model := cfg.Model
	if model == "" {
		model = DefaultOpenAIModel
	}

	logger := cfg.Logger
	if logger == nil {
		logger = slog.Default()
	}

	return &OpenAI{
		client: openai.NewClientWithConfig(config),
		model:  model,
		retry:  cfg.Retry,
		logger: logger,
	}
}

// Translate asks the model for English keywords for text.
func (p *OpenAI) Translate(ctx context.Context, text string) (search.Translation, bool, error) {
	req := openai.ChatCompletionRequest{
		Model: p.model,
		Messages: []openai.ChatCompletionMessage{
			{Role: openai.ChatMessageRoleSystem, Content: systemPrompt},
			{Role: openai.ChatMessageRoleUser, Content: userPrompt(text)},
		},
		ResponseFormat: &openai.ChatCompletionResponseFormat{
			Type: openai.ChatCompletionResponseFormatTypeJSONObject,
		},
	}

	var resp openai.ChatCompletionResponse
	err := p.retry.Do(ctx, func() error {
		var err error
		resp, err = p.client.CreateChatCompletion(ctx, req)
		return err
	}, isRetryableOpenAI)
	if err != nil {
		return search.Translation{}, false, wrapOpenAIError(err)
	}

	if len(resp.Choices) == 0 {
		return search.Translation{}, false, NewProviderError("openai", 0, "no choices in response", nil)
	}

	translation, ok, err := parseReply(resp.Choices[0].Message.Content)
	if err != nil {
		return search.Translation{}, false, NewProviderError("openai", 0, "malformed reply", err)
	}
	p.logger.DebugContext(ctx, "query translated", slog.Bool("ok", ok), slog.String("text", translation.Text()))
	return translation, ok, nil
}

// isRetryableOpenAI reports whether err is worth another attempt.
func isRetryableOpenAI(err error) bool {
	if isTimeout(err) {
		return true
	}

	var apiErr *openai.APIError
	if errors.As(err, &apiErr) {
		switch apiErr.HTTPStatusCode {
		case http.StatusTooManyRequests,
			http.StatusInternalServerError,
			http.StatusBadGateway,
			http.StatusServiceUnavailable,
			http.StatusGatewayTimeout:
			return true
		}
	}

	var reqErr *openai.RequestError
	return errors.As(err, &reqErr)
}

func wrapOpenAIError(err error) error {
	var apiErr *openai.APIError
	if errors.As(err, &apiErr) {
		return NewProviderError("openai", apiErr.HTTPStatusCode, apiErr.Message, err)
	}

	var reqErr *openai.RequestError
	if errors.As(err, &reqErr) {
		return NewProviderError("openai", reqErr.HTTPStatusCode, reqErr.Error(), err)
	}

	return NewProviderError("openai", 0, err.Error(), err)
}
