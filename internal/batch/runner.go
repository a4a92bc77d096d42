// Package batch drives the evaluator over many suggestion pairs with a
// bounded worker pool. Every per-pair failure is isolated: one bad pair is
// logged and skipped, never aborting the rest of the batch. Results become
// visible only through the store.
package batch

import (
	"context"
	"log/slog"
	"sync/atomic"

	"golang.org/x/sync/errgroup"

	"github.com/clausegrade/clausegrade/internal/models"
)

// DefaultWorkers bounds concurrency when no worker count is configured.
const DefaultWorkers = 4

// Evaluator grades a single pair.
type Evaluator interface {
	Evaluate(ctx context.Context, req models.SuggestionRequest, resp models.SuggestionResponse) models.EvaluationResult
}

// Store persists one evaluation keyed by its external identifier.
type Store interface {
	Store(ctx context.Context, requestID string, req models.SuggestionRequest, resp models.SuggestionResponse, scores models.EvaluationResult) (int64, bool)
}

// Digest summarizes a completed batch.
type Digest struct {
	Total     int `json:"total"`
	Stored    int `json:"stored"`
	Skipped   int `json:"skipped"`
	Abandoned int `json:"abandoned"`
}

// Option configures a Runner.
type Option func(*Runner)

// WithWorkers sets the worker pool size.
func WithWorkers(n int) Option {
	return func(r *Runner) {
		if n > 0 {
			r.workers = n
		}
	}
}

// WithLogger overrides the default logger.
func WithLogger(logger *slog.Logger) Option {
	return func(r *Runner) { r.logger = logger }
}

// Runner evaluates batches of suggestion pairs.
type Runner struct {
	evaluator Evaluator
	store     Store
	workers   int
	logger    *slog.Logger
}

// NewRunner creates a Runner over the given evaluator and store.
func NewRunner(evaluator Evaluator, store Store, opts ...Option) *Runner {
	r := &Runner{
		evaluator: evaluator,
		store:     store,
		workers:   DefaultWorkers,
		logger:    slog.Default(),
	}
	for _, o := range opts {
		o(r)
	}
	return r
}

// Run evaluates and persists every pair, at most workers at a time. Pairs
// that fail validation, evaluation, or storage are counted and logged with
// their position and identifier; processing always continues. Completion
// order across pairs is unspecified.
func (r *Runner) Run(ctx context.Context, pairs []models.SuggestionPair) Digest {
	var stored, skipped, abandoned atomic.Int64

	var g errgroup.Group
	g.SetLimit(r.workers)

	for i, pair := range pairs {
		g.Go(func() error {
			defer func() {
				// One misbehaving pair must not take the batch down.
				if p := recover(); p != nil {
					skipped.Add(1)
					r.logger.Error("pair evaluation panicked",
						"pair", i+1, "total", len(pairs), "request_id", pair.ExternalID, "panic", p)
				}
			}()

			if err := pair.Validate(); err != nil {
				skipped.Add(1)
				r.logger.Warn("skipping invalid pair",
					"pair", i+1, "total", len(pairs), "request_id", pair.ExternalID, "error", err)
				return nil
			}

			scores := r.evaluator.Evaluate(ctx, pair.Request, pair.Response)

			if _, ok := r.store.Store(ctx, pair.ExternalID, pair.Request, pair.Response, scores); !ok {
				abandoned.Add(1)
				r.logger.Error("evaluation not durably recorded",
					"pair", i+1, "total", len(pairs), "request_id", pair.ExternalID)
				return nil
			}

			stored.Add(1)
			r.logger.Info("processed pair",
				"pair", i+1, "total", len(pairs), "request_id", pair.ExternalID,
				"overall_score", scores.OverallScore)
			return nil
		})
	}
	g.Wait() //nolint:errcheck

	digest := Digest{
		Total:     len(pairs),
		Stored:    int(stored.Load()),
		Skipped:   int(skipped.Load()),
		Abandoned: int(abandoned.Load()),
	}
	r.logger.Info("batch complete",
		"total", digest.Total, "stored", digest.Stored,
		"skipped", digest.Skipped, "abandoned", digest.Abandoned)
	return digest
}
