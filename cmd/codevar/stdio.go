package main

import (
	"log/slog"

	"github.com/spf13/cobra"

	"github.com/helixml/codevar/internal/log"
	"github.com/helixml/codevar/internal/mcp"
)

func stdioCmd() *cobra.Command {
	var envFile string

	cmd := &cobra.Command{
		Use:   "stdio",
		Short: "Start MCP server on stdio",
		Long: `Start the MCP (Model Context Protocol) server on stdio.

This lets AI assistants look up variable names and source files with codevar.
Configuration is loaded from environment variables and .env file. Logs go to
stderr so stdout stays reserved for the protocol.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runStdio(envFile)
		},
	}

	cmd.Flags().StringVar(&envFile, "env-file", "", "Path to .env file")

	return cmd
}

func runStdio(envFile string) error {
	cfg, err := loadConfig(envFile)
	if err != nil {
		return err
	}

	slogger := log.NewLogger(cfg).Slog()

	slogger.Info("starting MCP server",
		slog.String("version", version),
		slog.String("transport", "stdio"),
	)

	client, closeClient, err := newClient(cfg, slogger)
	if err != nil {
		return err
	}
	defer closeClient()

	mcpServer := mcp.NewServer(client.Search, version, slogger)

	return mcpServer.ServeStdio()
}
