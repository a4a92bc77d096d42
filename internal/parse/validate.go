package parse

import (
	"encoding/json"
	"math"
	"strconv"

	"github.com/clausegrade/clausegrade/internal/models"
)

// Validate enforces the output contract on a parsed mapping: every score
// field is coerced to a float and clamped into [ScoreMin, ScoreMax];
// anything missing, non-numeric, or non-finite becomes zero. It never
// fails, this is the single chokepoint guaranteeing bounded numeric
// scores downstream.
func Validate(mapping map[string]any) models.EvaluationResult {
	return models.EvaluationResult{
		ComplianceScore:   clampField(mapping, models.FieldCompliance),
		MinimalEditsScore: clampField(mapping, models.FieldMinimalEdits),
		ExampleUsageScore: clampField(mapping, models.FieldExampleUsage),
		OverallScore:      clampField(mapping, models.FieldOverall),
	}
}

func clampField(mapping map[string]any, key string) float64 {
	v, ok := toFloat(mapping[key])
	if !ok || math.IsNaN(v) {
		return models.ScoreMin
	}
	return math.Max(models.ScoreMin, math.Min(models.ScoreMax, v))
}

// toFloat coerces the value shapes a JSON parse or regex fallback can
// produce. Numeric strings count, anything else does not.
func toFloat(v any) (float64, bool) {
	switch t := v.(type) {
	case float64:
		return t, true
	case int:
		return float64(t), true
	case int64:
		return float64(t), true
	case json.Number:
		f, err := t.Float64()
		return f, err == nil
	case string:
		f, err := strconv.ParseFloat(t, 64)
		return f, err == nil
	default:
		return 0, false
	}
}
