package translation

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/helixml/codevar/internal/config"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNew_SelectsProvider(t *testing.T) {
	ctx := context.Background()

	tests := []struct {
		name string
		cfg  config.TranslationConfig
		want any
	}{
		{"none", config.NewTranslationConfig(), Noop{}},
		{"openai", config.NewTranslationConfigWithOptions(
			config.WithProvider(config.TranslationOpenAI), config.WithAPIKey("k"),
		), &OpenAI{}},
		{"youdao", config.NewTranslationConfigWithOptions(
			config.WithProvider(config.TranslationYoudao), config.WithAPIKey("k"),
		), &Youdao{}},
		{"gemini", config.NewTranslationConfigWithOptions(
			config.WithProvider(config.TranslationGemini), config.WithAPIKey("k"),
		), &Gemini{}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tr, err := New(ctx, tt.cfg, nil)
			require.NoError(t, err)
			assert.IsType(t, tt.want, tr)
		})
	}
}

func TestNew_MissingKey(t *testing.T) {
	ctx := context.Background()

	for _, p := range []config.TranslationProvider{config.TranslationOpenAI, config.TranslationYoudao} {
		_, err := New(ctx, config.NewTranslationConfigWithOptions(config.WithProvider(p)), nil)
		assert.ErrorIs(t, err, ErrNotConfigured, string(p))
	}
}

func TestNoop_Translate(t *testing.T) {
	tr, ok, err := Noop{}.Translate(context.Background(), "用户")
	require.NoError(t, err)
	assert.False(t, ok)
	assert.Equal(t, "", tr.Text())
}

func TestBackoff_Do(t *testing.T) {
	errTransient := errors.New("transient")
	errFatal := errors.New("fatal")
	retryable := func(err error) bool { return errors.Is(err, errTransient) }
	b := Backoff{MaxRetries: 3, InitialDelay: time.Millisecond, Factor: 2}

	t.Run("succeeds after transient failures", func(t *testing.T) {
		calls := 0
		err := b.Do(context.Background(), func() error {
			calls++
			if calls < 3 {
				return errTransient
			}
			return nil
		}, retryable)
		require.NoError(t, err)
		assert.Equal(t, 3, calls)
	})

	t.Run("stops on fatal error", func(t *testing.T) {
		calls := 0
		err := b.Do(context.Background(), func() error {
			calls++
			return errFatal
		}, retryable)
		assert.ErrorIs(t, err, errFatal)
		assert.Equal(t, 1, calls)
	})

	t.Run("gives up after budget", func(t *testing.T) {
		calls := 0
		err := b.Do(context.Background(), func() error {
			calls++
			return errTransient
		}, retryable)
		assert.ErrorIs(t, err, errTransient)
		assert.ErrorContains(t, err, "max retries exceeded")
		assert.Equal(t, 4, calls)
	})

	t.Run("honours cancelled context", func(t *testing.T) {
		ctx, cancel := context.WithCancel(context.Background())
		cancel()
		calls := 0
		err := b.Do(ctx, func() error {
			calls++
			return nil
		}, retryable)
		assert.ErrorIs(t, err, context.Canceled)
		assert.Equal(t, 0, calls)
	})
}

func TestParseReply(t *testing.T) {
	tr, ok, err := parseReply(`{"translation": "  get   user ", "suggestions": ["getUser", ""]}`)
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, "get user", tr.Text())
	assert.Equal(t, []string{"getUser"}, tr.Suggestions())

	_, ok, err = parseReply("")
	require.NoError(t, err)
	assert.False(t, ok)

	_, _, err = parseReply("{")
	assert.Error(t, err)
}

func TestProviderError(t *testing.T) {
	inner := errors.New("boom")
	err := NewProviderError("youdao", 502, "bad gateway", inner)

	assert.Equal(t, "youdao translation failed (status 502): bad gateway", err.Error())
	assert.ErrorIs(t, err, inner)
	assert.Equal(t, "openai translation failed: x", NewProviderError("openai", 0, "x", nil).Error())
}
