package vision

// MaxDistance is the largest summed channel distance between two colors.
const MaxDistance = 255 * 3

// Distance returns how far sample is from spec.
//
// Exact and Not specs use the summed per-channel absolute difference. Gamut
// and GamutNot specs bound every channel independently: the result is the sum
// of how far each channel falls outside its shift, so it is 0 exactly when
// every channel lies within its bound.
func Distance(sample Color, spec Spec) int {
	if spec.Ranged() {
		return excess(sample.R(), spec.Color.R(), spec.Shift.R()) +
			excess(sample.G(), spec.Color.G(), spec.Shift.G()) +
			excess(sample.B(), spec.Color.B(), spec.Shift.B())
	}
	return colorDistance(sample, spec.Color)
}

// MinDistance returns the smallest Distance between sample and any
// alternative of comp, or MaxDistance for an empty composition.
func MinDistance(sample Color, comp Composition) int {
	best := MaxDistance
	for _, spec := range comp {
		if d := Distance(sample, spec); d < best {
			best = d
			if best == 0 {
				break
			}
		}
	}
	return best
}

func colorDistance(a, b Color) int {
	return absDiff(a.R(), b.R()) + absDiff(a.G(), b.G()) + absDiff(a.B(), b.B())
}

// rawDistance compares two pixels given as raw channel bytes, first three
// bytes only. Both pixels must share a channel order.
func rawDistance(a, b []byte) int {
	return absDiff(a[0], b[0]) + absDiff(a[1], b[1]) + absDiff(a[2], b[2])
}

func excess(v, center, bound uint8) int {
	d := absDiff(v, center) - int(bound)
	if d < 0 {
		return 0
	}
	return d
}

func absDiff(a, b uint8) int {
	if a > b {
		return int(a - b)
	}
	return int(b - a)
}

// Matcher decides whether a sample matches a spec within Tolerance.
//
// With InvertNegated unset, Not and GamutNot specs match like their positive
// counterparts. With it set they match only when the positive test fails.
type Matcher struct {
	Tolerance     int
	InvertNegated bool
}

// Match reports whether sample matches spec.
func (m Matcher) Match(sample Color, spec Spec) bool {
	ok := Distance(sample, spec) <= m.Tolerance
	if m.InvertNegated && spec.Negated() {
		return !ok
	}
	return ok
}

// Which returns the 1-based position of the first alternative of comp that
// sample matches, or 0 when none does.
func (m Matcher) Which(sample Color, comp Composition) int {
	for i, spec := range comp {
		if m.Match(sample, spec) {
			return i + 1
		}
	}
	return 0
}

// Any reports whether sample matches some alternative of comp.
func (m Matcher) Any(sample Color, comp Composition) bool {
	return m.Which(sample, comp) != 0
}
