package vision

import "math"

// FeatureMatcher decides whether a feature matches at an anchor.
//
// Budget bounds the summed distance of all points. PointTolerance is the
// allowance a single point is held to when InvertNegated turns a "!"
// alternative into a test that passes only where its positive form fails.
type FeatureMatcher struct {
	Budget         int
	PointTolerance int
	InvertNegated  bool
}

// NewFeatureMatcher returns a matcher for f whose budget is
// round((1 - similarity) * 255 * pointCount).
func NewFeatureMatcher(similarity float64, f *Feature) (FeatureMatcher, error) {
	budget, err := Tolerance(similarity, FeaturePointBudget*f.Count())
	if err != nil {
		return FeatureMatcher{}, err
	}
	point, err := Tolerance(similarity, FeaturePointBudget)
	if err != nil {
		return FeatureMatcher{}, err
	}
	return FeatureMatcher{Budget: budget, PointTolerance: point}, nil
}

// IsFeature reports whether f matches with its anchor at the origin.
func IsFeature(b *Bitmap, f *Feature, m FeatureMatcher) bool {
	return IsFeatureAt(b, 0, 0, f, m)
}

// IsFeatureAt reports whether f matches with its anchor at (x, y). Points
// that fall outside the bitmap count as MaxDistance instead of failing.
func IsFeatureAt(b *Bitmap, x, y int, f *Feature, m FeatureMatcher) bool {
	return m.distance(b, x, y, f, m.Budget) <= m.Budget
}

// FindFeature returns the first anchor in the rectangle (x, y)-(x1, y1), in
// the given order, at which f matches, or NotFound.
func FindFeature(b *Bitmap, x, y, x1, y1 int, f *Feature, m FeatureMatcher, order Order) (Point, error) {
	x1, y1, err := checkSearch(b, x, y, x1, y1, order)
	if err != nil {
		return NotFound, err
	}
	p, _ := Walk(b, x, y, x1, y1, order, func(cx, cy int, _ []byte) bool {
		return IsFeatureAt(b, cx, cy, f, m)
	})
	return p, nil
}

// Distance returns the summed distance of f anchored at (x, y), the score
// compared against Budget. It does not stop early.
func (m FeatureMatcher) Distance(b *Bitmap, x, y int, f *Feature) int {
	return m.distance(b, x, y, f, math.MaxInt)
}

// distance accumulates point distances and returns as soon as the sum
// exceeds limit.
func (m FeatureMatcher) distance(b *Bitmap, x, y int, f *Feature, limit int) int {
	sum := 0
	for _, p := range f.Points {
		px, py := x+int(p.DX), y+int(p.DY)
		if b.InScope(px, py) {
			sum += m.pointDistance(b.ColorAt(px, py), p.Colors)
		} else {
			sum += MaxDistance
		}
		if sum > limit {
			return sum
		}
	}
	return sum
}

// pointDistance is MinDistance, except that an inverted "!" alternative
// scores 0 where its positive form misses and MaxDistance where it hits.
func (m FeatureMatcher) pointDistance(sample Color, comp Composition) int {
	if !m.InvertNegated {
		return MinDistance(sample, comp)
	}
	best := MaxDistance
	for _, spec := range comp {
		d := Distance(sample, spec)
		if spec.Negated() {
			if d > m.PointTolerance {
				d = 0
			} else {
				d = MaxDistance
			}
		}
		if d < best {
			best = d
			if best == 0 {
				break
			}
		}
	}
	return best
}
