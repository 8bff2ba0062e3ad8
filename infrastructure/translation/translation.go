// Package translation turns non-Latin search queries into English keywords.
//
// Every adapter answers Translate with (translation, true, nil) on success,
// (zero, false, nil) when the backend had nothing to offer, and an error on
// failure. The search service treats both of the latter as a failed
// translation.
package translation

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net"
	"time"

	"github.com/helixml/codevar/domain/search"
	"github.com/helixml/codevar/internal/config"
)

// ErrNotConfigured indicates the selected backend is missing required settings.
var ErrNotConfigured = errors.New("translation provider not configured")

// ProviderError describes a failed call to a translation backend.
type ProviderError struct {
	Provider   string
	StatusCode int
	Message    string
	Err        error
}

// NewProviderError creates a ProviderError.
func NewProviderError(provider string, status int, message string, err error) *ProviderError {
	return &ProviderError{Provider: provider, StatusCode: status, Message: message, Err: err}
}

// Error implements error.
func (e *ProviderError) Error() string {
	if e.StatusCode > 0 {
		return fmt.Sprintf("%s translation failed (status %d): %s", e.Provider, e.StatusCode, e.Message)
	}
	return fmt.Sprintf("%s translation failed: %s", e.Provider, e.Message)
}

// Unwrap returns the underlying error.
func (e *ProviderError) Unwrap() error { return e.Err }

// New builds the translator selected by cfg.
func New(ctx context.Context, cfg config.TranslationConfig, logger *slog.Logger) (search.Translator, error) {
	if logger == nil {
		logger = slog.Default()
	}
	logger = logger.With("component", "translation", "provider", string(cfg.Provider()))

	retry := Backoff{
		MaxRetries:   cfg.MaxRetries(),
		InitialDelay: cfg.InitialDelay(),
		Factor:       cfg.BackoffFactor(),
	}

	switch cfg.Provider() {
	case config.TranslationOpenAI:
		if cfg.APIKey() == "" && cfg.BaseURL() == "" {
			return nil, fmt.Errorf("openai: %w", ErrNotConfigured)
		}
		return NewOpenAI(OpenAIConfig{
			APIKey:  cfg.APIKey(),
			BaseURL: cfg.BaseURL(),
			Model:   cfg.Model(),
			Timeout: cfg.Timeout(),
			Retry:   retry,
			Logger:  logger,
		}), nil
	case config.TranslationGemini:
		return NewGemini(ctx, GeminiConfig{
			APIKey:  cfg.APIKey(),
			BaseURL: cfg.BaseURL(),
			Model:   cfg.Model(),
			Timeout: cfg.Timeout(),
			Retry:   retry,
			Logger:  logger,
		})
	case config.TranslationYoudao:
		if cfg.APIKey() == "" {
			return nil, fmt.Errorf("youdao: %w", ErrNotConfigured)
		}
		return NewYoudao(YoudaoConfig{
			APIKey:  cfg.APIKey(),
			KeyFrom: cfg.YoudaoKeyFrom(),
			BaseURL: cfg.BaseURL(),
			Timeout: cfg.Timeout(),
			Retry:   retry,
			Logger:  logger,
		}), nil
	default:
		return Noop{}, nil
	}
}

// Backoff retries a call with exponential delays.
type Backoff struct {
	MaxRetries   int
	InitialDelay time.Duration
	Factor       float64
}

// Do runs fn until it succeeds, returns a non-retryable error, or the
// retry budget is spent.
func (b Backoff) Do(ctx context.Context, fn func() error, retryable func(error) bool) error {
	delay := b.InitialDelay
	factor := b.Factor
	if factor < 1 {
		factor = 1
	}
	var lastErr error

	for attempt := 0; attempt <= b.MaxRetries; attempt++ {
		if err := ctx.Err(); err != nil {
			return err
		}

		lastErr = fn()
		if lastErr == nil {
			return nil
		}

		if retryable == nil || !retryable(lastErr) {
			return lastErr
		}

		if attempt < b.MaxRetries {
			select {
			case <-ctx.Done():
				return ctx.Err()
			case <-time.After(delay):
				delay = time.Duration(float64(delay) * factor)
			}
		}
	}

	return fmt.Errorf("max retries exceeded: %w", lastErr)
}

// isTimeout reports whether err is a network timeout.
func isTimeout(err error) bool {
	var netErr net.Error
	return errors.As(err, &netErr) && netErr.Timeout()
}

// Noop never translates.
type Noop struct{}

var (
	_ search.Translator = Noop{}
	_ search.Translator = (*OpenAI)(nil)
	_ search.Translator = (*Gemini)(nil)
	_ search.Translator = (*Youdao)(nil)
)

// Translate always reports no result.
func (Noop) Translate(context.Context, string) (search.Translation, bool, error) {
	return search.Translation{}, false, nil
}
