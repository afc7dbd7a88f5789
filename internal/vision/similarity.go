package vision

import (
	"fmt"
	"math"
)

// FeaturePointBudget is the distance allowance per feature point at
// similarity 0.
const FeaturePointBudget = 255

// Tolerance converts a similarity in [0, 1] to a distance budget:
// round((1 - similarity) * maxDistance). Similarity 1 yields 0, so only exact
// matches pass.
func Tolerance(similarity float64, maxDistance int) (int, error) {
	if !(similarity >= 0 && similarity <= 1) {
		return 0, fmt.Errorf("%w: got %v", ErrInvalidSimilarity, similarity)
	}
	return int(math.Round((1 - similarity) * float64(maxDistance))), nil
}

// NewMatcher returns a Matcher whose tolerance is derived from similarity
// over the summed color distance.
func NewMatcher(similarity float64) (Matcher, error) {
	tol, err := Tolerance(similarity, MaxDistance)
	if err != nil {
		return Matcher{}, err
	}
	return Matcher{Tolerance: tol}, nil
}
