package vision

import "fmt"

// Color is a 24-bit RGB value laid out as 0xRRGGBB.
type Color uint32

// MaxColor is the largest valid Color value.
const MaxColor Color = 0xFFFFFF

func (c Color) R() uint8 { return uint8(c >> 16) }
func (c Color) G() uint8 { return uint8(c >> 8) }
func (c Color) B() uint8 { return uint8(c) }

// RGB builds a Color from its channels.
func RGB(r, g, b uint8) Color {
	return Color(r)<<16 | Color(g)<<8 | Color(b)
}

func (c Color) String() string {
	return fmt.Sprintf("%06x", uint32(c&MaxColor))
}

// Kind tags the shape of a Spec.
type Kind uint8

const (
	KindExact Kind = iota + 1
	KindGamut
	KindNot
	KindGamutNot
)

func (k Kind) String() string {
	switch k {
	case KindExact:
		return "exact"
	case KindGamut:
		return "gamut"
	case KindNot:
		return "not"
	case KindGamutNot:
		return "gamut-not"
	}
	return fmt.Sprintf("Kind(%d)", uint8(k))
}

// Spec is one matchable color rule. Shift is only meaningful for the ranged
// kinds, where it holds the per-channel bound around Color.
type Spec struct {
	Kind  Kind
	Color Color
	Shift Color
}

// Negated reports whether the spec carries the "not" tag.
func (s Spec) Negated() bool {
	return s.Kind == KindNot || s.Kind == KindGamutNot
}

// Ranged reports whether the spec compares channels against a shift bound.
func (s Spec) Ranged() bool {
	return s.Kind == KindGamut || s.Kind == KindGamutNot
}

func (s Spec) String() string {
	var out []byte
	return string(appendSpec(out, s))
}

// Composition is an ordered list of alternative specs; a sample matches the
// composition when it matches any of them. A valid composition is never empty.
type Composition []Spec

// ExactColor returns the single-alternative composition for c.
func ExactColor(c Color) (Composition, error) {
	if c > MaxColor {
		return nil, fmt.Errorf("%w: value %#x out of range", ErrInvalidColor, uint32(c))
	}
	return Composition{{Kind: KindExact, Color: c}}, nil
}

func (c Composition) String() string {
	return EncodeColor(c)
}
