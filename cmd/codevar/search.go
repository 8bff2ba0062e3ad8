package main

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/helixml/codevar/application/service"
	"github.com/helixml/codevar/domain/search"
	"github.com/helixml/codevar/internal/log"
)

func searchCmd() *cobra.Command {
	var (
		envFile   string
		page      int
		languages []string
		format    string
	)

	cmd := &cobra.Command{
		Use:   "search <query>",
		Short: "Search variable names for a concept",
		Long: `Search public code for a concept and print the variable names found next
to it. All arguments are joined into one query.

Examples:
  codevar search user name
  codevar search --lang Go --lang Rust --page 1 retry count
  codevar search --format yaml 用户名`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if page < 0 {
				return fmt.Errorf("page must not be negative: %d", page)
			}
			if format != formatText && format != formatJSON && format != formatYAML {
				return fmt.Errorf("unknown format %q: want text, json or yaml", format)
			}

			query := search.NormalizeQuery(strings.Join(args, " "))
			if query == "" {
				return service.ErrEmptyQuery
			}

			cfg, err := loadConfig(envFile)
			if err != nil {
				return err
			}
			slogger := log.NewLogger(cfg).Slog()

			client, closeClient, err := newClient(cfg, slogger)
			if err != nil {
				return err
			}
			defer closeClient()

			state := client.Search.RequestVariable(cmd.Context(), query, page, languages)
			return writeSearchOutput(cmd.OutOrStdout(), format, newSearchOutput(state))
		},
	}

	cmd.Flags().StringVar(&envFile, "env-file", "", "Path to .env file")
	cmd.Flags().IntVar(&page, "page", 0, "Zero-based result page")
	cmd.Flags().StringSliceVar(&languages, "lang", nil, "Language filter, repeatable or comma separated")
	cmd.Flags().StringVar(&format, "format", formatText, "Output format: text, json, yaml")

	return cmd
}
