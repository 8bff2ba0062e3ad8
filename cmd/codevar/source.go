package main

import (
	"fmt"
	"strconv"

	"github.com/spf13/cobra"

	"github.com/helixml/codevar/internal/log"
)

func sourceCmd() *cobra.Command {
	var envFile string

	cmd := &cobra.Command{
		Use:   "source <id>",
		Short: "Print the source file of a search result",
		Long: `Print the source file of a search result. The id is one of the ids listed
for a candidate by "codevar search --format json".`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := strconv.ParseInt(args[0], 10, 64)
			if err != nil || id <= 0 {
				return fmt.Errorf("invalid id %q: must be a positive integer", args[0])
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

			code, _, err := client.Search.RequestSourceCode(cmd.Context(), id)
			if err != nil {
				return err
			}
			_, _ = fmt.Fprint(cmd.OutOrStdout(), code)
			return nil
		},
	}

	cmd.Flags().StringVar(&envFile, "env-file", "", "Path to .env file")

	return cmd
}
