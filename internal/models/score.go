package models

// Score field names as they appear in the grader's JSON output and in the
// persisted schema.
const (
	FieldCompliance   = "compliance_score"
	FieldMinimalEdits = "minimal_edits_score"
	FieldExampleUsage = "example_usage_score"
	FieldOverall      = "overall_score"
)

// ScoreMin and ScoreMax bound every individual score after validation.
const (
	ScoreMin = 0.0
	ScoreMax = 10.0
)

// EvaluationResult holds the four quality scores for one suggestion pair.
// After validation the three sub-scores are finite values in
// [ScoreMin, ScoreMax]. OverallScore is recomputed by the evaluator as a
// weighted combination and is deliberately not re-clamped: callers control
// the weights and may push it out of range.
type EvaluationResult struct {
	ComplianceScore   float64 `json:"compliance_score"`
	MinimalEditsScore float64 `json:"minimal_edits_score"`
	ExampleUsageScore float64 `json:"example_usage_score"`
	OverallScore      float64 `json:"overall_score"`
}

// Weights blends the three sub-scores into the overall score. There is no
// requirement that the weights sum to 1; configuration loading warns when
// they do not.
type Weights struct {
	Compliance   float64 `json:"compliance" yaml:"compliance"`
	MinimalEdits float64 `json:"minimal_edits" yaml:"minimal_edits"`
	ExampleUsage float64 `json:"example_usage" yaml:"example_usage"`
}

// DefaultWeights returns the standard 0.4/0.3/0.3 blend.
func DefaultWeights() Weights {
	return Weights{Compliance: 0.4, MinimalEdits: 0.3, ExampleUsage: 0.3}
}

// Sum returns the total of the three weights.
func (w Weights) Sum() float64 {
	return w.Compliance + w.MinimalEdits + w.ExampleUsage
}

// Apply computes the weighted overall score from the three sub-scores.
func (w Weights) Apply(r EvaluationResult) float64 {
	return r.ComplianceScore*w.Compliance +
		r.MinimalEditsScore*w.MinimalEdits +
		r.ExampleUsageScore*w.ExampleUsage
}
