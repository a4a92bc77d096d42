package webapi

import (
	"time"

	"github.com/clausegrade/clausegrade/internal/models"
)

// EvaluateRequest is the body of a single-pair evaluation request.
type EvaluateRequest struct {
	Request  models.SuggestionRequest  `json:"request"`
	Response models.SuggestionResponse `json:"response"`
}

// EvaluateResponse is returned for a single-pair evaluation.
type EvaluateResponse struct {
	RequestID  string                  `json:"request_id"`
	Stored     bool                    `json:"stored"`
	Evaluation models.EvaluationResult `json:"evaluation"`
}

// BatchOptions are the optional knobs accepted by the batch endpoint.
type BatchOptions struct {
	Workers int `mapstructure:"workers"`
}

// BatchAccepted acknowledges an accepted batch run.
type BatchAccepted struct {
	Status string `json:"status"`
	Total  int    `json:"total"`
}

// EvaluationSummary is one evaluation in the list response.
type EvaluationSummary struct {
	ID        int64                   `json:"id"`
	RequestID string                  `json:"request_id"`
	Scores    models.EvaluationResult `json:"scores"`
	CreatedAt time.Time               `json:"created_at"`
}

// EvaluationDetail is a single evaluation with the suggestion pair that
// produced it.
type EvaluationDetail struct {
	EvaluationSummary
	Request  models.SuggestionRequest  `json:"request"`
	Response models.SuggestionResponse `json:"response"`
}

// HealthResponse is the health check response.
type HealthResponse struct {
	Status  string `json:"status"`
	Version string `json:"version"`
	Model   string `json:"model,omitempty"`
}

// ErrorResponse is returned for errors.
type ErrorResponse struct {
	Error string `json:"error"`
	Code  int    `json:"code"`
}

func recordToSummary(rec models.EvaluationRecord) EvaluationSummary {
	return EvaluationSummary{
		ID:        rec.ID,
		RequestID: rec.RequestID,
		Scores:    rec.Scores,
		CreatedAt: rec.CreatedAt,
	}
}

func recordToDetail(rec models.EvaluationRecord) *EvaluationDetail {
	return &EvaluationDetail{
		EvaluationSummary: recordToSummary(rec),
		Request:           rec.Request,
		Response:          rec.Response,
	}
}
