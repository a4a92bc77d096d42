// Package statistics aggregates stored evaluation scores.
package statistics

import (
	"math"
	"math/rand"
	"sort"

	"github.com/clausegrade/clausegrade/internal/models"
)

// ConfidenceInterval holds the result of a bootstrap confidence interval
// computation.
type ConfidenceInterval struct {
	Lower           float64 `json:"lower"`
	Upper           float64 `json:"upper"`
	Mean            float64 `json:"mean"`
	ConfidenceLevel float64 `json:"confidence_level"`
	NumBootstraps   int     `json:"num_bootstraps"`
}

// DefaultBootstrapIterations is the number of bootstrap resamples.
const DefaultBootstrapIterations = 10000

// DimensionStats summarizes one scoring dimension across evaluations.
type DimensionStats struct {
	Mean float64 `json:"mean"`
	Min  float64 `json:"min"`
	Max  float64 `json:"max"`
}

// Summary aggregates all stored evaluations per scoring dimension. The
// overall score additionally carries a bootstrap confidence interval for
// its mean.
type Summary struct {
	Count        int                `json:"count"`
	Compliance   DimensionStats     `json:"compliance"`
	MinimalEdits DimensionStats     `json:"minimal_edits"`
	ExampleUsage DimensionStats     `json:"example_usage"`
	Overall      DimensionStats     `json:"overall"`
	OverallCI    ConfidenceInterval `json:"overall_ci"`
}

// Summarize computes per-dimension statistics over the given records.
func Summarize(records []models.EvaluationRecord) Summary {
	s := Summary{Count: len(records)}
	if len(records) == 0 {
		return s
	}

	compliance := make([]float64, len(records))
	minimalEdits := make([]float64, len(records))
	exampleUsage := make([]float64, len(records))
	overall := make([]float64, len(records))
	for i, rec := range records {
		compliance[i] = rec.Scores.ComplianceScore
		minimalEdits[i] = rec.Scores.MinimalEditsScore
		exampleUsage[i] = rec.Scores.ExampleUsageScore
		overall[i] = rec.Scores.OverallScore
	}

	s.Compliance = dimensionStats(compliance)
	s.MinimalEdits = dimensionStats(minimalEdits)
	s.ExampleUsage = dimensionStats(exampleUsage)
	s.Overall = dimensionStats(overall)
	s.OverallCI = BootstrapCI(overall, 0.95)
	return s
}

func dimensionStats(scores []float64) DimensionStats {
	stats := DimensionStats{
		Mean: mean(scores),
		Min:  scores[0],
		Max:  scores[0],
	}
	for _, v := range scores[1:] {
		stats.Min = math.Min(stats.Min, v)
		stats.Max = math.Max(stats.Max, v)
	}
	return stats
}

// BootstrapCI computes a bootstrap confidence interval over the given
// scores using the percentile method. confidenceLevel should be in
// (0, 1), e.g. 0.95. Returns a zero-width interval when fewer than 2
// data points exist.
func BootstrapCI(scores []float64, confidenceLevel float64) ConfidenceInterval {
	return BootstrapCIWithSeed(scores, confidenceLevel, -1)
}

// BootstrapCIWithSeed is like BootstrapCI but accepts a seed for
// reproducibility. A negative seed uses a non-deterministic source.
func BootstrapCIWithSeed(scores []float64, confidenceLevel float64, seed int64) ConfidenceInterval {
	n := len(scores)
	if n < 2 {
		m := mean(scores)
		return ConfidenceInterval{
			Lower:           m,
			Upper:           m,
			Mean:            m,
			ConfidenceLevel: confidenceLevel,
			NumBootstraps:   0,
		}
	}

	var rng *rand.Rand
	if seed >= 0 {
		rng = rand.New(rand.NewSource(seed))
	} else {
		rng = rand.New(rand.NewSource(rand.Int63()))
	}

	m := mean(scores)
	iters := DefaultBootstrapIterations

	// Resample with replacement, keeping the mean of each resample.
	bootMeans := make([]float64, iters)
	sample := make([]float64, n)
	for i := 0; i < iters; i++ {
		for j := 0; j < n; j++ {
			sample[j] = scores[rng.Intn(n)]
		}
		bootMeans[i] = mean(sample)
	}

	sort.Float64s(bootMeans)

	// Percentile method
	alpha := 1.0 - confidenceLevel
	loIdx := int(math.Floor(alpha / 2.0 * float64(iters)))
	hiIdx := int(math.Floor((1.0 - alpha/2.0) * float64(iters)))
	if hiIdx >= iters {
		hiIdx = iters - 1
	}

	return ConfidenceInterval{
		Lower:           bootMeans[loIdx],
		Upper:           bootMeans[hiIdx],
		Mean:            m,
		ConfidenceLevel: confidenceLevel,
		NumBootstraps:   iters,
	}
}

func mean(scores []float64) float64 {
	if len(scores) == 0 {
		return 0
	}
	sum := 0.0
	for _, v := range scores {
		sum += v
	}
	return sum / float64(len(scores))
}
