package webapi

import (
	"context"

	"github.com/clausegrade/clausegrade/internal/batch"
	"github.com/clausegrade/clausegrade/internal/models"
)

// Evaluator grades one suggestion pair.
type Evaluator interface {
	Evaluate(ctx context.Context, req models.SuggestionRequest, resp models.SuggestionResponse) models.EvaluationResult
}

// EvaluationStore provides access to persisted evaluations. Get reports
// store.ErrNotFound for unknown ids.
type EvaluationStore interface {
	Store(ctx context.Context, requestID string, req models.SuggestionRequest, resp models.SuggestionResponse, scores models.EvaluationResult) (int64, bool)
	Get(ctx context.Context, id int64) (*models.EvaluationRecord, error)
	ListAll(ctx context.Context) ([]models.EvaluationRecord, error)
}

// PairSource discovers suggestion pairs to feed a batch run.
type PairSource interface {
	Discover() ([]models.SuggestionPair, error)
}

// BatchFunc runs a batch over pairs with the given worker count and
// returns its digest. It lets the handler vary concurrency per request
// without owning runner construction.
type BatchFunc func(ctx context.Context, pairs []models.SuggestionPair, workers int) batch.Digest
