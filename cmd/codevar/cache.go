package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/helixml/codevar/internal/log"
)

func cacheCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "cache",
		Short: "Manage the session caches",
	}

	cmd.AddCommand(cachePurgeCmd())

	return cmd
}

func cachePurgeCmd() *cobra.Command {
	var envFile string

	cmd := &cobra.Command{
		Use:   "purge",
		Short: "Drop cached pages and source files of the configured session",
		Long: `Drop the cached result pages and source files stored for SESSION_ID in
DB_URL. Without DB_URL caches live in memory only and there is nothing to purge.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig(envFile)
			if err != nil {
				return err
			}
			if cfg.DBURL() == "" {
				_, _ = fmt.Fprintln(cmd.OutOrStdout(), "DB_URL is not set; caches are in memory only")
				return nil
			}
			if cfg.SessionID() == "" {
				return fmt.Errorf("SESSION_ID is required to purge a persistent session")
			}

			slogger := log.NewLogger(cfg).Slog()

			client, closeClient, err := newClient(cfg, slogger)
			if err != nil {
				return err
			}
			defer closeClient()

			if err := client.Search.PurgeCaches(cmd.Context()); err != nil {
				return fmt.Errorf("purge caches: %w", err)
			}
			_, _ = fmt.Fprintf(cmd.OutOrStdout(), "purged caches of session %s\n", client.SessionID())
			return nil
		},
	}

	cmd.Flags().StringVar(&envFile, "env-file", "", "Path to .env file")

	return cmd
}
