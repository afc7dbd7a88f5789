package vision

import (
	"fmt"
	"strings"
)

// Fixed widths of the four color shapes.
const (
	exactWidth    = 6
	notWidth      = exactWidth + 1
	gamutWidth    = exactWidth*2 + 1
	gamutNotWidth = exactWidth*2 + 2
)

const hexDigits = "0123456789abcdef"

// DecodeColor parses a color composition such as "ff0000", "!00ff00",
// "102030-0a0a0a" or "ff0000|!00ff00-101010".
//
// The whole input must be consumed. Hex digits are case-insensitive.
func DecodeColor(s string) (Composition, error) {
	comp, n, err := decodeColorPrefix(s)
	if err != nil {
		return nil, err
	}
	if n != len(s) {
		return nil, fmt.Errorf("%w: unexpected %q at offset %d", ErrInvalidColor, s[n], n)
	}
	return comp, nil
}

// decodeColorPrefix decodes a composition from the start of s and returns the
// number of bytes consumed. Decoding stops without error at the first byte
// after a complete shape that is not a '|' separator.
func decodeColorPrefix(s string) (Composition, int, error) {
	var comp Composition
	pos := 0
	for {
		spec, width, err := decodeSpec(s[pos:])
		if err != nil {
			return nil, 0, fmt.Errorf("%w at offset %d", err, pos)
		}
		comp = append(comp, spec)
		pos += width
		if pos >= len(s) || s[pos] != '|' {
			return comp, pos, nil
		}
		pos++
	}
}

// decodeSpec decodes the single shape at the start of s. The shape is chosen
// by a leading '!' and by a '-' right after the first six-digit field.
func decodeSpec(s string) (Spec, int, error) {
	var spec Spec
	if len(s) < exactWidth {
		return spec, 0, fmt.Errorf("%w: need %d bytes, have %d", ErrInvalidColor, exactWidth, len(s))
	}

	if s[0] == '!' {
		if len(s) >= gamutNotWidth && s[notWidth] == '-' {
			spec.Kind = KindGamutNot
			return decodeRanged(spec, s[1:], gamutNotWidth)
		}
		if len(s) < notWidth {
			return spec, 0, fmt.Errorf("%w: need %d bytes, have %d", ErrInvalidColor, notWidth, len(s))
		}
		spec.Kind = KindNot
		c, ok := decodeHex(s[1:notWidth])
		if !ok {
			return spec, 0, fmt.Errorf("%w: bad hex %q", ErrInvalidColor, s[1:notWidth])
		}
		spec.Color = c
		return spec, notWidth, nil
	}

	if len(s) > exactWidth && s[exactWidth] == '-' {
		spec.Kind = KindGamut
		return decodeRanged(spec, s, gamutWidth)
	}

	spec.Kind = KindExact
	c, ok := decodeHex(s[:exactWidth])
	if !ok {
		return spec, 0, fmt.Errorf("%w: bad hex %q", ErrInvalidColor, s[:exactWidth])
	}
	spec.Color = c
	return spec, exactWidth, nil
}

// decodeRanged reads "RRGGBB-SSSSSS" from body; width is the full shape width
// including any leading '!'.
func decodeRanged(spec Spec, body string, width int) (Spec, int, error) {
	need := gamutWidth
	if len(body) < need {
		return spec, 0, fmt.Errorf("%w: need %d bytes, have %d", ErrInvalidColor, width, len(body)+width-need)
	}
	c, ok := decodeHex(body[:exactWidth])
	if !ok {
		return spec, 0, fmt.Errorf("%w: bad hex %q", ErrInvalidColor, body[:exactWidth])
	}
	shift, ok := decodeHex(body[exactWidth+1 : gamutWidth])
	if !ok {
		return spec, 0, fmt.Errorf("%w: bad hex %q", ErrInvalidColor, body[exactWidth+1:gamutWidth])
	}
	spec.Color = c
	spec.Shift = shift
	return spec, width, nil
}

func decodeHex(s string) (Color, bool) {
	var v Color
	for i := 0; i < len(s); i++ {
		c := s[i]
		v <<= 4
		switch {
		case c >= '0' && c <= '9':
			v |= Color(c - '0')
		case c >= 'a' && c <= 'f':
			v |= Color(c-'a') + 10
		case c >= 'A' && c <= 'F':
			v |= Color(c-'A') + 10
		default:
			return 0, false
		}
	}
	return v, true
}

// EncodeColor renders a composition in canonical form: lowercase,
// zero-padded fields joined by '|'.
func EncodeColor(comp Composition) string {
	var b strings.Builder
	b.Grow(len(comp) * (gamutNotWidth + 1))
	buf := make([]byte, 0, gamutNotWidth)
	for i, spec := range comp {
		if i > 0 {
			b.WriteByte('|')
		}
		buf = appendSpec(buf[:0], spec)
		b.Write(buf)
	}
	return b.String()
}

func appendSpec(dst []byte, s Spec) []byte {
	if s.Negated() {
		dst = append(dst, '!')
	}
	dst = appendHex(dst, s.Color)
	if s.Ranged() {
		dst = append(dst, '-')
		dst = appendHex(dst, s.Shift)
	}
	return dst
}

func appendHex(dst []byte, c Color) []byte {
	for shift := 20; shift >= 0; shift -= 4 {
		dst = append(dst, hexDigits[(c>>uint(shift))&0xF])
	}
	return dst
}
