package hashjoin

import "math"

// EstimateCardinality implements spec.md §4.5's cost-estimate formula:
// effective selectivity shrinks geometrically with the number of
// equality keys joined, starting from cfg.MaxSelectivity and applying
// cfg.ReduceFactorEquality once per key. leaderCardinality and
// innerCardinalities are the child plan nodes' own row-count estimates.
func EstimateCardinality(cfg Config, keyCount int, leaderCardinality float64, innerCardinalities []float64) float64 {
	selectivity := cfg.MaxSelectivity * math.Pow(cfg.ReduceFactorEquality, float64(keyCount))
	if selectivity > cfg.MaxSelectivity {
		selectivity = cfg.MaxSelectivity
	}

	product := leaderCardinality
	for _, c := range innerCardinalities {
		product *= c
	}
	return product * selectivity
}
