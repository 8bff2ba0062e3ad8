package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/helixml/codevar/infrastructure/api"
	"github.com/helixml/codevar/internal/config"
	"github.com/helixml/codevar/internal/log"
)

func serveCmd() *cobra.Command {
	var (
		envFile string
		host    string
		port    int
	)

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Start the HTTP API server",
		Long: `Start the HTTP API server. The streamable MCP endpoint is served on /mcp.

Configuration is loaded in the following order (later sources override earlier):
  1. Default values
  2. .env file (if --env-file specified or .env exists in current directory)
  3. Environment variables
  4. Command line flags

Environment variables:
  HOST                         Server host to bind to (default: 0.0.0.0)
  PORT                         Server port to listen on (default: 8080)
  DB_URL                       Session cache database, sqlite:///path or postgres://...
                               (default: in-memory caches)
  SESSION_ID                   Cache namespace shared across restarts (default: random)
  LOG_LEVEL                    Log level: DEBUG, INFO, WARN, ERROR (default: INFO)
  LOG_FORMAT                   Log format: pretty, json (default: pretty)
  API_KEYS                     Comma-separated keys that may reset the search state
  CORS_ALLOWED_ORIGINS         Comma-separated browser origins, * for any
  CACHE_MAX_ENTRIES            Bound on in-memory cache entries, 0 for unbounded
  HTTP_CACHE_DIR               Directory caching raw code search responses

  SEARCHCODE_*                 Code search service
    BASE_URL                   Base URL (default: https://searchcode.com)
    TIMEOUT                    Request timeout in seconds (default: 15)
    PER_PAGE                   Results per page (default: 42)

  TRANSLATION_*                Translation of non-Latin queries
    PROVIDER                   none, openai, gemini, youdao (default: none)
    MODEL                      Model identifier
    API_KEY                    API key
    BASE_URL                   Base URL override
    TIMEOUT                    Request timeout in seconds (default: 20)
    MAX_RETRIES                Retry attempts (default: 3)
  YOUDAO_KEYFROM               Youdao keyfrom parameter`,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runServe(envFile, host, port)
		},
	}

	cmd.Flags().StringVar(&envFile, "env-file", "", "Path to .env file (default: .env in current directory)")
	cmd.Flags().StringVar(&host, "host", "", "Server host to bind to (default: 0.0.0.0)")
	cmd.Flags().IntVar(&port, "port", 0, "Server port to listen on (default: 8080)")

	return cmd
}

func runServe(envFile, host string, port int) error {
	cfg, err := loadConfig(envFile)
	if err != nil {
		return err
	}

	cfg = applyServeOverrides(cfg, host, port)
	addr := cfg.Addr()

	slogger := log.NewLogger(cfg).Slog()

	attrs := append([]slog.Attr{slog.String("version", version)}, cfg.LogAttrs()...)
	slogger.LogAttrs(context.Background(), slog.LevelInfo, "starting codevar", attrs...)

	client, closeClient, err := newClient(cfg, slogger)
	if err != nil {
		return err
	}
	defer closeClient()

	var serverOpts []api.ServerOption
	if origins := cfg.CORSAllowedOrigins(); len(origins) > 0 {
		serverOpts = append(serverOpts, api.WithCORSOrigins(origins))
	}

	apiServer := api.NewAPIServer(client, cfg.APIKeys(), serverOpts...).WithVersion(version)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	errCh := make(chan error, 1)
	go func() {
		errCh <- apiServer.ListenAndServe(addr)
	}()

	select {
	case err := <-errCh:
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("server error: %w", err)
		}
		return nil
	case <-ctx.Done():
	}

	slogger.Info("shutting down server")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := apiServer.Shutdown(shutdownCtx); err != nil {
		slogger.Error("shutdown error", slog.Any("error", err))
	}
	return <-errCh
}

// applyServeOverrides applies command line flag overrides to the config.
func applyServeOverrides(cfg config.AppConfig, host string, port int) config.AppConfig {
	var opts []config.AppConfigOption

	if host != "" {
		opts = append(opts, config.WithHost(host))
	}
	if port != 0 {
		opts = append(opts, config.WithPort(port))
	}

	return cfg.Apply(opts...)
}
