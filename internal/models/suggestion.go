// Package models defines the data types shared across the evaluation
// pipeline: suggestion pairs coming in, score records going out, and the
// persisted evaluation rows.
package models

import (
	"errors"
	"strings"
	"time"
)

// PrecedentID references a precedent clause the suggestion was derived from.
type PrecedentID struct {
	ID string `json:"id"`
}

// SuggestionRequest is the rule/explanation context a contract-text
// suggestion was generated from. It is caller-supplied and immutable.
type SuggestionRequest struct {
	PrecedentIDs    []PrecedentID `json:"precedentIds"`
	Explanation     string        `json:"explanation"`
	Rule            string        `json:"rule,omitempty"`
	ExampleLanguage string        `json:"exampleLanguage,omitempty"`
}

// SuggestionResponse holds the generated replacement texts to be graded.
type SuggestionResponse struct {
	Suggestions   []string `json:"suggestions"`
	OriginalTexts []string `json:"originalTexts,omitempty"`
}

// SuggestionPair bundles a request/response pair with the external
// correlation identifier used as the store's upsert key.
type SuggestionPair struct {
	ExternalID string             `json:"uuid"`
	Request    SuggestionRequest  `json:"request"`
	Response   SuggestionResponse `json:"response"`
}

// Validation errors for structurally invalid inputs. These are the only
// failures the evaluate operation surfaces to callers.
var (
	ErrMissingExplanation = errors.New("request explanation is missing or empty")
	ErrMissingRule        = errors.New("request rule is missing or empty")
	ErrMissingSuggestions = errors.New("response has no usable suggestions")
	ErrMissingOriginals   = errors.New("response has no usable original texts")
)

// invalidText reports whether a string carries no usable content. The
// literal "null" shows up in exported data dumps and counts as empty.
func invalidText(s string) bool {
	t := strings.TrimSpace(s)
	return t == "" || strings.EqualFold(t, "null")
}

// invalidTextList reports whether a list contains no usable entry.
func invalidTextList(items []string) bool {
	for _, item := range items {
		if !invalidText(item) {
			return false
		}
	}
	return true
}

// Validate checks that the required text fields are present and non-empty.
func (r SuggestionRequest) Validate() error {
	if invalidText(r.Explanation) {
		return ErrMissingExplanation
	}
	if invalidText(r.Rule) {
		return ErrMissingRule
	}
	return nil
}

// Validate checks that both text lists contain at least one usable entry.
func (r SuggestionResponse) Validate() error {
	if invalidTextList(r.Suggestions) {
		return ErrMissingSuggestions
	}
	if invalidTextList(r.OriginalTexts) {
		return ErrMissingOriginals
	}
	return nil
}

// Validate checks both halves of the pair.
func (p SuggestionPair) Validate() error {
	if err := p.Request.Validate(); err != nil {
		return err
	}
	return p.Response.Validate()
}

// EvaluationRecord is a persisted evaluation row. The store owns this
// representation; request and response are stored serialized and handed
// back deserialized.
type EvaluationRecord struct {
	ID        int64              `json:"id"`
	RequestID string             `json:"request_id"`
	Request   SuggestionRequest  `json:"request"`
	Response  SuggestionResponse `json:"response"`
	Scores    EvaluationResult   `json:"scores"`
	CreatedAt time.Time          `json:"created_at"`
}
