// Package evaluator orchestrates one grading round trip: build the prompt,
// call the model once, repair and validate its answer, and blend the
// sub-scores into a weighted overall score. A grading failure degrades to
// the worst possible score; it never fails the caller.
package evaluator

import (
	"bytes"
	"context"
	_ "embed"
	"fmt"
	"log/slog"
	"strings"
	"text/template"

	"github.com/clausegrade/clausegrade/internal/llm"
	"github.com/clausegrade/clausegrade/internal/models"
	"github.com/clausegrade/clausegrade/internal/parse"
)

//go:embed prompt.txt
var promptText string

var promptTemplate = template.Must(template.New("evaluation").Parse(promptText))

// Placeholder text substituted for absent optional fields.
const (
	noRule            = "No rule provided"
	noExplanation     = "No explanation provided"
	noExampleLanguage = "No example language provided"
	noOriginalTexts   = "No original texts provided"
	noSuggestions     = "No suggestions provided"
)

// promptSlots are the five named substitution slots of the evaluation
// prompt template.
type promptSlots struct {
	Rule            string
	Explanation     string
	ExampleLanguage string
	OriginalTexts   string
	Suggestions     string
}

// Option configures an Evaluator.
type Option func(*Evaluator)

// WithLogger overrides the default logger.
func WithLogger(logger *slog.Logger) Option {
	return func(e *Evaluator) { e.logger = logger }
}

// Evaluator grades suggestion pairs with a single model call each.
type Evaluator struct {
	gen     llm.Generator
	weights models.Weights
	logger  *slog.Logger
}

// New creates an Evaluator with the given generator and weights.
func New(gen llm.Generator, weights models.Weights, opts ...Option) *Evaluator {
	e := &Evaluator{
		gen:     gen,
		weights: weights,
		logger:  slog.Default(),
	}
	for _, o := range opts {
		o(e)
	}
	return e
}

// Evaluate grades one request/response pair. The three sub-scores come
// from the model (clamped to [0,10]); the overall score is always
// recomputed from the configured weights, never trusted from the model.
// Generation failures degrade to an all-zero result.
func (e *Evaluator) Evaluate(ctx context.Context, req models.SuggestionRequest, resp models.SuggestionResponse) models.EvaluationResult {
	prompt := BuildPrompt(req, resp)

	raw, err := e.gen.Generate(ctx, prompt)
	if err != nil {
		e.logger.Warn("grading failed, degrading to zero scores", "error", err)
		return models.EvaluationResult{}
	}

	parsed := parse.Evaluation(raw)
	if parsed.Outcome == parse.OutcomeDegraded {
		e.logger.Debug("grader output was not strict JSON, used field extraction")
	}

	scores := parsed.Scores
	scores.OverallScore = e.weights.Apply(scores)
	return scores
}

// BuildPrompt renders the evaluation prompt for a pair, substituting
// placeholder text for any absent field.
func BuildPrompt(req models.SuggestionRequest, resp models.SuggestionResponse) string {
	slots := promptSlots{
		Rule:            orPlaceholder(req.Rule, noRule),
		Explanation:     orPlaceholder(req.Explanation, noExplanation),
		ExampleLanguage: orPlaceholder(req.ExampleLanguage, noExampleLanguage),
		OriginalTexts:   numbered("Text", resp.OriginalTexts, noOriginalTexts),
		Suggestions:     numbered("Suggestion", resp.Suggestions, noSuggestions),
	}

	var buf bytes.Buffer
	if err := promptTemplate.Execute(&buf, slots); err != nil {
		// The template is embedded and the slots are plain strings; an
		// execution failure here is a programming error.
		panic(fmt.Sprintf("evaluation prompt: %v", err))
	}
	return buf.String()
}

func orPlaceholder(s, placeholder string) string {
	if strings.TrimSpace(s) == "" {
		return placeholder
	}
	return s
}

// numbered renders one "Label N: item" line per entry.
func numbered(label string, items []string, placeholder string) string {
	if len(items) == 0 {
		return placeholder
	}
	lines := make([]string, len(items))
	for i, item := range items {
		lines[i] = fmt.Sprintf("%s %d: %s", label, i+1, item)
	}
	return strings.Join(lines, "\n")
}
