// Package parse turns the grader model's free-form answer into a validated
// score mapping. The model is expected to emit a JSON object but routinely
// wraps it in prose, uses single quotes, or leaves comments and trailing
// commas behind. Parsing never fails: when the object cannot be repaired
// into strict JSON, per-field regex extraction over the raw text fills in
// whatever it can and the rest defaults to zero.
package parse

import (
	"encoding/json"
	"regexp"
	"strings"

	"github.com/clausegrade/clausegrade/internal/models"
)

// Outcome records which path produced the score mapping.
type Outcome string

const (
	// OutcomeParsed means the sanitized JSON object parsed strictly.
	OutcomeParsed Outcome = "parsed"
	// OutcomeDegraded means strict parsing failed and the scores were
	// recovered by per-field regex extraction.
	OutcomeDegraded Outcome = "degraded"
)

// Result is the parser's output: a fully populated, clamped score record
// plus how it was obtained. Both outcomes feed the same validator, the tag
// exists for observability only.
type Result struct {
	Scores  models.EvaluationResult
	Outcome Outcome
}

var (
	objectPattern        = regexp.MustCompile(`\{[\s\S]*\}`)
	lineCommentPattern   = regexp.MustCompile(`//[^\n]*`)
	blockCommentPattern  = regexp.MustCompile(`(?s)/\*.*?\*/`)
	trailingCommaPattern = regexp.MustCompile(`,(\s*[}\]])`)

	numberPatterns = map[string]*regexp.Regexp{
		models.FieldCompliance:   fieldPattern(models.FieldCompliance),
		models.FieldMinimalEdits: fieldPattern(models.FieldMinimalEdits),
		models.FieldExampleUsage: fieldPattern(models.FieldExampleUsage),
		models.FieldOverall:      fieldPattern(models.FieldOverall),
	}
)

func fieldPattern(key string) *regexp.Regexp {
	return regexp.MustCompile(`(?is)` + key + `"?\s*:\s*(\d+(?:\.\d+)?)`)
}

// Evaluation parses raw grader output into a validated Result.
func Evaluation(raw string) Result {
	if span := objectPattern.FindString(raw); span != "" {
		if mapping, ok := tryStrict(span); ok {
			return Result{Scores: Validate(mapping), Outcome: OutcomeParsed}
		}
	}
	return Result{Scores: Validate(extractFields(raw)), Outcome: OutcomeDegraded}
}

// tryStrict sanitizes a candidate JSON span and attempts a strict parse.
func tryStrict(span string) (map[string]any, bool) {
	clean := sanitize(span)

	var mapping map[string]any
	if err := json.Unmarshal([]byte(clean), &mapping); err != nil {
		return nil, false
	}
	return mapping, true
}

// sanitize repairs the common ways the model mangles JSON: line and block
// comments, trailing commas, and unescaped single quotes.
func sanitize(s string) string {
	s = lineCommentPattern.ReplaceAllString(s, "")
	s = blockCommentPattern.ReplaceAllString(s, "")
	s = trailingCommaPattern.ReplaceAllString(s, "$1")
	return normalizeQuotes(s)
}

// normalizeQuotes rewrites unescaped single quotes as double quotes.
func normalizeQuotes(s string) string {
	var b strings.Builder
	b.Grow(len(s))
	for i := 0; i < len(s); i++ {
		if s[i] == '\'' && (i == 0 || s[i-1] != '\\') {
			b.WriteByte('"')
			continue
		}
		b.WriteByte(s[i])
	}
	return b.String()
}

// extractFields scans the full raw text for each score field and takes the
// first numeric match. Missing fields are simply absent from the mapping
// and default to zero during validation.
func extractFields(raw string) map[string]any {
	mapping := make(map[string]any, len(numberPatterns))
	for key, pattern := range numberPatterns {
		m := pattern.FindStringSubmatch(raw)
		if m == nil {
			continue
		}
		var v float64
		if err := json.Unmarshal([]byte(m[1]), &v); err != nil {
			continue
		}
		mapping[key] = v
	}
	return mapping
}
