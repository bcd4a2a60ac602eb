package bench

// CompositeName is the Name of the synthetic Result appended after the final
// phase, holding the weighted composite of the whole run.
const CompositeName = "composite"

// Aggregate folds phase results into a single (primary, secondary) composite
// score using a weighted arithmetic mean, normalized by the total weight of
// the results actually present.
//
// Matching is by exact name. Results whose name has no entry in the weight
// table are silently ignored; this lets diagnostic phases run without
// affecting the composite score. When nothing matches, both scores are 0.
// The computation is deterministic for a given input.
func Aggregate(results []Result, weights map[string]float64) (primary, secondary uint64) {
	var weightedPrimary, weightedSecondary, totalWeight float64

	for _, r := range results {
		w, ok := weights[r.Name]
		if !ok {
			continue
		}
		weightedPrimary += float64(r.Primary) * w
		weightedSecondary += float64(r.Secondary) * w
		totalWeight += w
	}

	if totalWeight <= 0 {
		return 0, 0
	}
	return uint64(weightedPrimary / totalWeight), uint64(weightedSecondary / totalWeight)
}
