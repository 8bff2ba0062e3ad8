package main

import (
	"fmt"
	"log/slog"

	"github.com/helixml/codevar"
	"github.com/helixml/codevar/internal/config"
)

// clientOptions returns the codevar.Option slice derived from AppConfig.
// Callers append entrypoint-specific options before passing the full slice
// to codevar.New.
func clientOptions(cfg config.AppConfig, logger *slog.Logger) []codevar.Option {
	return []codevar.Option{
		codevar.WithAppConfig(cfg),
		codevar.WithLogger(logger),
	}
}

// newClient creates a codevar client for cfg and returns it with a close
// function that logs failures instead of returning them.
func newClient(cfg config.AppConfig, logger *slog.Logger, extra ...codevar.Option) (*codevar.Client, func(), error) {
	opts := append(clientOptions(cfg, logger), extra...)

	client, err := codevar.New(opts...)
	if err != nil {
		return nil, nil, fmt.Errorf("create codevar client: %w", err)
	}

	closeFn := func() {
		if err := client.Close(); err != nil {
			logger.Error("failed to close codevar client", slog.Any("error", err))
		}
	}
	return client, closeFn, nil
}
