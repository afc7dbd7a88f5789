package vision

import (
	"fmt"
	"math"
	"strconv"
	"strings"
)

// FeaturePoint is one color test at an offset from a feature's anchor.
type FeaturePoint struct {
	DX     int16
	DY     int16
	Colors Composition
}

// Feature is an ordered set of points sharing one anchor. A decoded feature
// always has at least one point.
type Feature struct {
	Points []FeaturePoint
}

// Count returns the number of points.
func (f *Feature) Count() int {
	return len(f.Points)
}

func (f *Feature) String() string {
	return EncodeFeature(f)
}

// DecodeFeature parses a feature such as "0|0|ff0000,3|-2|00ff00|0000ff".
// Each comma-separated entry is dx|dy|composition with signed decimal
// offsets.
func DecodeFeature(s string) (*Feature, error) {
	if s == "" {
		return nil, fmt.Errorf("%w: empty", ErrInvalidFeature)
	}
	f := &Feature{}
	pos := 0
	for {
		dx, n, err := decodeOffset(s, pos)
		if err != nil {
			return nil, err
		}
		pos = n
		if pos, err = expectByte(s, pos, '|'); err != nil {
			return nil, err
		}
		dy, n, err := decodeOffset(s, pos)
		if err != nil {
			return nil, err
		}
		pos = n
		if pos, err = expectByte(s, pos, '|'); err != nil {
			return nil, err
		}
		comp, used, err := decodeColorPrefix(s[pos:])
		if err != nil {
			return nil, fmt.Errorf("%w: point %d: %v", ErrInvalidFeature, len(f.Points), err)
		}
		pos += used
		f.Points = append(f.Points, FeaturePoint{DX: dx, DY: dy, Colors: comp})

		if pos == len(s) {
			return f, nil
		}
		if pos, err = expectByte(s, pos, ','); err != nil {
			return nil, err
		}
	}
}

// decodeOffset reads an optionally negative decimal that must fit in int16.
func decodeOffset(s string, pos int) (int16, int, error) {
	start := pos
	if pos < len(s) && s[pos] == '-' {
		pos++
	}
	digits := pos
	for pos < len(s) && s[pos] >= '0' && s[pos] <= '9' {
		pos++
	}
	if pos == digits {
		return 0, 0, fmt.Errorf("%w: expected number at offset %d", ErrInvalidFeature, start)
	}
	v, err := strconv.ParseInt(s[start:pos], 10, 16)
	if err != nil {
		return 0, 0, fmt.Errorf("%w: offset %q out of range [%d,%d]", ErrInvalidFeature, s[start:pos], math.MinInt16, math.MaxInt16)
	}
	return int16(v), pos, nil
}

func expectByte(s string, pos int, want byte) (int, error) {
	if pos >= len(s) {
		return 0, fmt.Errorf("%w: expected %q at end of input", ErrInvalidFeature, want)
	}
	if s[pos] != want {
		return 0, fmt.Errorf("%w: expected %q at offset %d, got %q", ErrInvalidFeature, want, pos, s[pos])
	}
	return pos + 1, nil
}

// EncodeFeature renders f in the form accepted by DecodeFeature, with color
// compositions in canonical form.
func EncodeFeature(f *Feature) string {
	var b strings.Builder
	for i, p := range f.Points {
		if i > 0 {
			b.WriteByte(',')
		}
		b.WriteString(strconv.Itoa(int(p.DX)))
		b.WriteByte('|')
		b.WriteString(strconv.Itoa(int(p.DY)))
		b.WriteByte('|')
		b.WriteString(EncodeColor(p.Colors))
	}
	return b.String()
}
