package main

import (
	"fmt"
	"log/slog"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/clausegrade/clausegrade/internal/projectconfig"
)

func newPullCommand(opts *rootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "pull",
		Short: "Download the configured grading model",
		Long: `Download the configured grading model from the Ollama backend.

Checks that the backend is reachable first, then pulls the model named
in the configuration, printing progress as it downloads.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := projectconfig.Load(opts.configPath)
			if err != nil {
				return err
			}

			client, _, err := newEvaluator(cfg, slog.Default())
			if err != nil {
				return err
			}

			ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
			defer stop()

			if err := client.Heartbeat(ctx); err != nil {
				return fmt.Errorf("backend not reachable: %w", err)
			}

			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "Pulling %s...\n", client.Model()) //nolint:errcheck

			var lastStatus string
			err = client.Pull(ctx, func(status string, completed, total int64) {
				if status != lastStatus {
					lastStatus = status
					fmt.Fprintf(out, "  %s\n", status) //nolint:errcheck
				}
				if total > 0 && completed == total {
					fmt.Fprintf(out, "  %d/%d bytes\n", completed, total) //nolint:errcheck
				}
			})
			if err != nil {
				return err
			}

			fmt.Fprintf(out, "Model %s is ready.\n", client.Model()) //nolint:errcheck
			return nil
		},
	}

	return cmd
}
