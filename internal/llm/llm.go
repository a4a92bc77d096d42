// Package llm wraps the Ollama text-generation API behind a small
// Generator capability. One prompt in, raw text out; the caller decides
// what a failure degrades to.
package llm

import (
	"context"
	"errors"
)

// Sentinel errors for the two ways a generation call can go wrong. Call
// sites branch on these rather than on an undifferentiated failure.
var (
	// ErrModelUnavailable means the backend could not be reached at all.
	ErrModelUnavailable = errors.New("model backend unavailable")
	// ErrGenerationFailed means the backend was reached but generation
	// errored or timed out.
	ErrGenerationFailed = errors.New("text generation failed")
)

// Generator produces raw model text for a prompt.
type Generator interface {
	Generate(ctx context.Context, prompt string) (string, error)
}
