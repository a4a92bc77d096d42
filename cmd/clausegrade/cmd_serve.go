package main

import (
	"context"
	"fmt"
	"log/slog"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/clausegrade/clausegrade/internal/batch"
	"github.com/clausegrade/clausegrade/internal/dataset"
	"github.com/clausegrade/clausegrade/internal/models"
	"github.com/clausegrade/clausegrade/internal/projectconfig"
	"github.com/clausegrade/clausegrade/internal/store"
	"github.com/clausegrade/clausegrade/internal/webapi"
	"github.com/clausegrade/clausegrade/internal/webserver"
)

func newServeCommand(opts *rootOptions) *cobra.Command {
	var host string
	var port int
	var corsOrigins []string

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Start the evaluation HTTP API",
		Long: `Start the evaluation HTTP API.

Endpoints:
  GET  /api/health             Health and configured model
  POST /api/evaluate           Evaluate one suggestion pair
  POST /api/evaluate/batch     Evaluate the configured dataset in the background
  GET  /api/summary            Aggregate score statistics
  GET  /api/evaluations        List stored evaluations, newest first
  GET  /api/evaluations/{id}   Fetch one stored evaluation

The server shuts down gracefully on SIGINT or SIGTERM.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := projectconfig.Load(opts.configPath)
			if err != nil {
				return err
			}
			if host != "" {
				cfg.Server.Host = host
			}
			if port > 0 {
				cfg.Server.Port = port
			}

			logger := slog.Default()

			evalStore, err := store.Open(cfg.Database.Path, logger)
			if err != nil {
				return fmt.Errorf("opening evaluation store: %w", err)
			}
			defer evalStore.Close() //nolint:errcheck

			client, ev, err := newEvaluator(cfg, logger)
			if err != nil {
				return err
			}

			pairs := dataset.NewSource(cfg.Data.Requests, cfg.Data.Responses, logger)

			runBatch := func(ctx context.Context, batchPairs []models.SuggestionPair, workers int) batch.Digest {
				runner := batch.NewRunner(ev, evalStore,
					batch.WithWorkers(workers), batch.WithLogger(logger))
				return runner.Run(ctx, batchPairs)
			}

			handlers := webapi.NewHandlers(ev, evalStore, pairs, runBatch,
				webapi.WithModel(client.Model()),
				webapi.WithWorkers(cfg.Batch.Workers),
				webapi.WithLogger(logger))

			srv, err := webserver.New(webserver.Config{
				Host:           cfg.Server.Host,
				Port:           cfg.Server.Port,
				Handlers:       handlers,
				AllowedOrigins: corsOrigins,
				Logger:         logger,
			})
			if err != nil {
				return err
			}

			ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
			defer stop()
			return srv.ListenAndServe(ctx)
		},
	}

	cmd.Flags().StringVar(&host, "host", "", "Bind address (overrides config)")
	cmd.Flags().IntVarP(&port, "port", "p", 0, "Listen port (overrides config)")
	cmd.Flags().StringSliceVar(&corsOrigins, "cors-origin", nil, "Allowed CORS origin (repeatable)")

	return cmd
}
