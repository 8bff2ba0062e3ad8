package config

import (
	"io/fs"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadFromEnv_Defaults(t *testing.T) {
	clearEnvVars(t)

	cfg, err := LoadFromEnv()
	require.NoError(t, err)

	assert.Equal(t, "0.0.0.0", cfg.Host)
	assert.Equal(t, 8080, cfg.Port)
	assert.Equal(t, "INFO", cfg.LogLevel)
	assert.Equal(t, "pretty", cfg.LogFormat)
	assert.Equal(t, "", cfg.DBURL)
	assert.Equal(t, "", cfg.SessionID)
	assert.Equal(t, 0, cfg.CacheMaxEntries)
	assert.Equal(t, "", cfg.HTTPCacheDir)

	assert.Equal(t, "https://searchcode.com", cfg.Searchcode.BaseURL)
	assert.Equal(t, 15.0, cfg.Searchcode.Timeout)
	assert.Equal(t, 42, cfg.Searchcode.PerPage)

	assert.Equal(t, "none", cfg.Translation.Provider)
	assert.Equal(t, 20.0, cfg.Translation.Timeout)
	assert.Equal(t, 3, cfg.Translation.MaxRetries)
}

func TestEnvDefaults_MatchConfigDefaults(t *testing.T) {
	// Struct tag defaults must be literals, so keep them in sync with the constants.
	clearEnvVars(t)

	cfg, err := LoadFromEnv()
	require.NoError(t, err)

	assert.Equal(t, DefaultHost, cfg.Host)
	assert.Equal(t, DefaultPort, cfg.Port)
	assert.Equal(t, DefaultLogLevel, cfg.LogLevel)
	assert.Equal(t, DefaultCacheMaxEntries, cfg.CacheMaxEntries)
	assert.Equal(t, DefaultSearchcodeBaseURL, cfg.Searchcode.BaseURL)
	assert.Equal(t, DefaultSearchcodeTimeout.Seconds(), cfg.Searchcode.Timeout)
	assert.Equal(t, DefaultSearchcodePerPage, cfg.Searchcode.PerPage)
	assert.Equal(t, string(TranslationNone), cfg.Translation.Provider)
	assert.Equal(t, DefaultTranslationTimeout.Seconds(), cfg.Translation.Timeout)
	assert.Equal(t, DefaultTranslationMaxRetries, cfg.Translation.MaxRetries)
}

func TestLoadFromEnv_OverrideValues(t *testing.T) {
	clearEnvVars(t)

	t.Setenv("HOST", "127.0.0.1")
	t.Setenv("PORT", "9000")
	t.Setenv("DB_URL", "sqlite:///tmp/codevar.db")
	t.Setenv("LOG_LEVEL", "DEBUG")
	t.Setenv("LOG_FORMAT", "json")
	t.Setenv("SESSION_ID", "session-1")
	t.Setenv("CACHE_MAX_ENTRIES", "128")
	t.Setenv("HTTP_CACHE_DIR", "/tmp/http-cache")
	t.Setenv("CORS_ALLOWED_ORIGINS", "http://localhost:3000, https://example.com")

	cfg, err := LoadFromEnv()
	require.NoError(t, err)

	assert.Equal(t, "127.0.0.1", cfg.Host)
	assert.Equal(t, 9000, cfg.Port)
	assert.Equal(t, "sqlite:///tmp/codevar.db", cfg.DBURL)
	assert.Equal(t, "DEBUG", cfg.LogLevel)
	assert.Equal(t, "json", cfg.LogFormat)
	assert.Equal(t, "session-1", cfg.SessionID)
	assert.Equal(t, 128, cfg.CacheMaxEntries)
	assert.Equal(t, "/tmp/http-cache", cfg.HTTPCacheDir)
	assert.Equal(t, "http://localhost:3000, https://example.com", cfg.CORSAllowedOrigins)
}

func TestLoadFromEnv_Searchcode(t *testing.T) {
	clearEnvVars(t)

	t.Setenv("SEARCHCODE_BASE_URL", "http://localhost:9999/")
	t.Setenv("SEARCHCODE_TIMEOUT", "2.5")
	t.Setenv("SEARCHCODE_PER_PAGE", "20")

	env, err := LoadFromEnv()
	require.NoError(t, err)

	cfg := env.ToAppConfig().Searchcode()
	assert.Equal(t, "http://localhost:9999", cfg.BaseURL())
	assert.Equal(t, 2500*time.Millisecond, cfg.Timeout())
	assert.Equal(t, 20, cfg.PerPage())
}

func TestLoadFromEnv_Translation(t *testing.T) {
	clearEnvVars(t)

	t.Setenv("TRANSLATION_PROVIDER", "OpenAI")
	t.Setenv("TRANSLATION_MODEL", "gpt-4o-mini")
	t.Setenv("TRANSLATION_API_KEY", "sk-test")
	t.Setenv("TRANSLATION_BASE_URL", "http://localhost:8000/v1")
	t.Setenv("TRANSLATION_TIMEOUT", "5")
	t.Setenv("TRANSLATION_MAX_RETRIES", "1")
	t.Setenv("YOUDAO_KEYFROM", "codevar")

	env, err := LoadFromEnv()
	require.NoError(t, err)

	cfg := env.ToAppConfig().Translation()
	assert.Equal(t, TranslationOpenAI, cfg.Provider())
	assert.True(t, cfg.IsConfigured())
	assert.Equal(t, "gpt-4o-mini", cfg.Model())
	assert.Equal(t, "sk-test", cfg.APIKey())
	assert.Equal(t, "http://localhost:8000/v1", cfg.BaseURL())
	assert.Equal(t, 5*time.Second, cfg.Timeout())
	assert.Equal(t, 1, cfg.MaxRetries())
	assert.Equal(t, "codevar", cfg.YoudaoKeyFrom())
}

func TestEnvConfig_ToAppConfig(t *testing.T) {
	env := EnvConfig{
		Host:               "localhost",
		Port:               3000,
		LogLevel:           "WARN",
		LogFormat:          "json",
		DBURL:              "postgres://localhost/codevar",
		SessionID:          "abc",
		CacheMaxEntries:    10,
		CORSAllowedOrigins: "*",
		APIKeys:            "k1, k2",
		Searchcode:         SearchcodeEnv{BaseURL: "http://search", Timeout: 1, PerPage: 10},
		Translation:        TranslationEnv{Provider: "gemini", Model: "gemini-2.0-flash", Timeout: 3, MaxRetries: 2},
	}

	cfg := env.ToAppConfig()

	assert.Equal(t, "localhost", cfg.Host())
	assert.Equal(t, 3000, cfg.Port())
	assert.Equal(t, "localhost:3000", cfg.Addr())
	assert.Equal(t, "WARN", cfg.LogLevel())
	assert.Equal(t, LogFormatJSON, cfg.LogFormat())
	assert.Equal(t, "postgres://localhost/codevar", cfg.DBURL())
	assert.Equal(t, "abc", cfg.SessionID())
	assert.Equal(t, 10, cfg.CacheMaxEntries())
	assert.Equal(t, []string{"*"}, cfg.CORSAllowedOrigins())
	assert.Equal(t, []string{"k1", "k2"}, cfg.APIKeys())
	assert.Equal(t, "http://search", cfg.Searchcode().BaseURL())
	assert.Equal(t, 10, cfg.Searchcode().PerPage())
	assert.Equal(t, TranslationGemini, cfg.Translation().Provider())
	assert.Equal(t, "gemini-2.0-flash", cfg.Translation().Model())
}

func TestEnvConfig_Normalize(t *testing.T) {
	env := EnvConfig{
		Host:      " 127.0.0.1 ",
		LogLevel:  " debug ",
		LogFormat: " JSON ",
		DBURL:     " sqlite:///x.db ",
	}

	n := env.Normalize()

	assert.Equal(t, "127.0.0.1", n.Host)
	assert.Equal(t, "DEBUG", n.LogLevel)
	assert.Equal(t, "json", n.LogFormat)
	assert.Equal(t, "sqlite:///x.db", n.DBURL)
}

func TestParseLogFormat(t *testing.T) {
	tests := []struct {
		input string
		want  LogFormat
	}{
		{"json", LogFormatJSON},
		{"JSON", LogFormatJSON},
		{"pretty", LogFormatPretty},
		{"", LogFormatPretty},
		{"unknown", LogFormatPretty},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			assert.Equal(t, tt.want, parseLogFormat(tt.input))
		})
	}
}

func TestLoadDotEnv(t *testing.T) {
	tmpDir := t.TempDir()
	envFile := filepath.Join(tmpDir, ".env")
	content := `SESSION_ID=from-dotenv
LOG_LEVEL=DEBUG
TRANSLATION_PROVIDER=youdao
`
	err := os.WriteFile(envFile, []byte(content), 0o644)
	require.NoError(t, err)

	clearEnvVars(t)

	err = LoadDotEnv(envFile)
	require.NoError(t, err)

	assert.Equal(t, "from-dotenv", os.Getenv("SESSION_ID"))
	assert.Equal(t, "DEBUG", os.Getenv("LOG_LEVEL"))
	assert.Equal(t, "youdao", os.Getenv("TRANSLATION_PROVIDER"))
}

func TestLoadDotEnv_MissingFile(t *testing.T) {
	clearEnvVars(t)

	err := LoadDotEnv("/nonexistent/.env")
	assert.ErrorIs(t, err, fs.ErrNotExist)

	// without an explicit path a missing .env is fine
	t.Chdir(t.TempDir())
	assert.NoError(t, LoadDotEnv(""))
}

func TestLoadDotEnv_DefaultFile(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, DefaultDotEnvFile), []byte("SESSION_ID=from-default\n"), 0o644))

	clearEnvVars(t)
	t.Chdir(dir)

	require.NoError(t, LoadDotEnv(""))
	assert.Equal(t, "from-default", os.Getenv("SESSION_ID"))
}

func TestLoadConfig(t *testing.T) {
	tmpDir := t.TempDir()
	envFile := filepath.Join(tmpDir, ".env")
	content := `LOG_LEVEL=warn
SEARCHCODE_PER_PAGE=10
TRANSLATION_PROVIDER=openai
TRANSLATION_MODEL=gpt-4o-mini
`
	err := os.WriteFile(envFile, []byte(content), 0o644)
	require.NoError(t, err)

	clearEnvVars(t)

	cfg, err := LoadConfig(envFile)
	require.NoError(t, err)

	assert.Equal(t, "WARN", cfg.LogLevel())
	assert.Equal(t, 10, cfg.Searchcode().PerPage())
	assert.Equal(t, TranslationOpenAI, cfg.Translation().Provider())
	assert.Equal(t, "gpt-4o-mini", cfg.Translation().Model())
}

func TestLoadConfig_EnvironmentWins(t *testing.T) {
	envFile := filepath.Join(t.TempDir(), ".env")
	require.NoError(t, os.WriteFile(envFile, []byte("SESSION_ID=from-file\nLOG_LEVEL=debug\n"), 0o644))

	clearEnvVars(t)
	t.Setenv("SESSION_ID", "from-env")

	cfg, err := LoadConfig(envFile)
	require.NoError(t, err)

	assert.Equal(t, "from-env", cfg.SessionID())
	assert.Equal(t, "DEBUG", cfg.LogLevel())
}

func TestLoadConfig_MissingEnvFile(t *testing.T) {
	clearEnvVars(t)

	_, err := LoadConfig(filepath.Join(t.TempDir(), "missing.env"))
	assert.Error(t, err)
}

// clearEnvVars unsets all config-related environment variables and restores them after the test.
func clearEnvVars(t *testing.T) {
	t.Helper()
	vars := []string{
		"HOST",
		"PORT",
		"LOG_LEVEL",
		"LOG_FORMAT",
		"DB_URL",
		"SESSION_ID",
		"CACHE_MAX_ENTRIES",
		"HTTP_CACHE_DIR",
		"SEARCHCODE_BASE_URL",
		"SEARCHCODE_TIMEOUT",
		"SEARCHCODE_PER_PAGE",
		"TRANSLATION_PROVIDER",
		"TRANSLATION_MODEL",
		"TRANSLATION_API_KEY",
		"TRANSLATION_BASE_URL",
		"TRANSLATION_TIMEOUT",
		"TRANSLATION_MAX_RETRIES",
		"YOUDAO_KEYFROM",
		"CORS_ALLOWED_ORIGINS",
		"API_KEYS",
	}

	for _, v := range vars {
		t.Setenv(v, "")
		_ = os.Unsetenv(v)
	}
}
