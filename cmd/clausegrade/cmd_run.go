package main

import (
	"fmt"
	"log/slog"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/clausegrade/clausegrade/internal/batch"
	"github.com/clausegrade/clausegrade/internal/dataset"
	"github.com/clausegrade/clausegrade/internal/projectconfig"
	"github.com/clausegrade/clausegrade/internal/store"
)

func newRunCommand(opts *rootOptions) *cobra.Command {
	var workers int
	var requestDir, responseDir string

	cmd := &cobra.Command{
		Use:   "run",
		Short: "Evaluate all suggestion pairs in the data directories",
		Long: `Evaluate all suggestion pairs in the data directories.

Pairs a request file with the response file of the same name, grades
each pair, and stores the results. Invalid pairs are skipped with a
warning and never abort the batch.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := projectconfig.Load(opts.configPath)
			if err != nil {
				return err
			}
			if workers > 0 {
				cfg.Batch.Workers = workers
			}
			if requestDir != "" {
				cfg.Data.Requests = requestDir
			}
			if responseDir != "" {
				cfg.Data.Responses = responseDir
			}

			logger := slog.Default()

			pairs, err := dataset.NewSource(cfg.Data.Requests, cfg.Data.Responses, logger).Discover()
			if err != nil {
				return fmt.Errorf("discovering pairs: %w", err)
			}
			if len(pairs) == 0 {
				return fmt.Errorf("no suggestion pairs found under %s", cfg.Data.Requests)
			}

			evalStore, err := store.Open(cfg.Database.Path, logger)
			if err != nil {
				return fmt.Errorf("opening evaluation store: %w", err)
			}
			defer evalStore.Close() //nolint:errcheck

			_, ev, err := newEvaluator(cfg, logger)
			if err != nil {
				return err
			}

			ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
			defer stop()

			runner := batch.NewRunner(ev, evalStore,
				batch.WithWorkers(cfg.Batch.Workers), batch.WithLogger(logger))
			digest := runner.Run(ctx, pairs)

			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "Evaluated %d pairs: %d stored, %d skipped, %d not recorded\n", //nolint:errcheck
				digest.Total, digest.Stored, digest.Skipped, digest.Abandoned)

			if digest.Stored == 0 {
				return fmt.Errorf("no evaluations were stored")
			}
			return nil
		},
	}

	cmd.Flags().IntVarP(&workers, "workers", "w", 0, "Concurrent evaluations (overrides config)")
	cmd.Flags().StringVar(&requestDir, "requests", "", "Suggestion request directory (overrides config)")
	cmd.Flags().StringVar(&responseDir, "responses", "", "Suggestion response directory (overrides config)")

	return cmd
}
