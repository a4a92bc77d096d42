package main

import (
	"log/slog"
	"time"

	"github.com/clausegrade/clausegrade/internal/evaluator"
	"github.com/clausegrade/clausegrade/internal/llm"
	"github.com/clausegrade/clausegrade/internal/projectconfig"
)

// newEvaluator builds the Ollama client and evaluator from config.
func newEvaluator(cfg *projectconfig.Config, logger *slog.Logger) (*llm.Client, *evaluator.Evaluator, error) {
	client, err := llm.NewClient(llm.Options{
		Model:   cfg.Model.Name,
		Timeout: time.Duration(cfg.Model.TimeoutSec) * time.Second,
		BaseURL: cfg.Model.BaseURL,
		Logger:  logger,
	})
	if err != nil {
		return nil, nil, err
	}

	ev := evaluator.New(client, cfg.Evaluation.Weights, evaluator.WithLogger(logger))
	return client, ev, nil
}
