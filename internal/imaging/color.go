package imaging

import (
	"fmt"
	"math"

	colorful "github.com/lucasb-eyer/go-colorful"

	"github.com/lizhizhuanshu/simple-vision/internal/vision"
)

// RGBColor represents an RGB color with 8-bit components.
type RGBColor struct {
	R uint8 `json:"r"` // Red component (0-255)
	G uint8 `json:"g"` // Green component (0-255)
	B uint8 `json:"b"` // Blue component (0-255)
}

// HSLColor represents a color in HSL (Hue, Saturation, Lightness) color space.
//
// HSL is handy when picking a gamut shift by eye:
//   - Hue represents the color type (red, green, blue, etc.)
//   - Saturation represents color intensity (gray to vivid)
//   - Lightness represents brightness (black to white)
type HSLColor struct {
	H int `json:"h"` // Hue: 0-359 degrees (0=red, 120=green, 240=blue)
	S int `json:"s"` // Saturation: 0-100 percent (0=gray, 100=vivid)
	L int `json:"l"` // Lightness: 0-100 percent (0=black, 50=normal, 100=white)
}

// ColorResult contains a pixel color in several representations.
//
//   - Text: the exact color text accepted by the search tools ("rrggbb")
//   - Value: the same color as an integer 0xRRGGBB
//   - Hex: CSS form "#rrggbb"
//   - RGB and HSL: components
type ColorResult struct {
	Text  string   `json:"text"`
	Value int      `json:"value"`
	Hex   string   `json:"hex"`
	RGB   RGBColor `json:"rgb"`
	HSL   HSLColor `json:"hsl"`
}

// NewColorResult describes c.
func NewColorResult(c vision.Color) *ColorResult {
	cf := colorful.Color{
		R: float64(c.R()) / 255,
		G: float64(c.G()) / 255,
		B: float64(c.B()) / 255,
	}
	h, s, l := cf.Hsl()
	return &ColorResult{
		Text:  c.String(),
		Value: int(c),
		Hex:   cf.Hex(),
		RGB:   RGBColor{R: c.R(), G: c.G(), B: c.B()},
		HSL:   HSLColor{H: int(math.Round(h)) % 360, S: int(math.Round(s * 100)), L: int(math.Round(l * 100))},
	}
}

// SampleColor extracts the color value at a specific pixel coordinate.
//
// Coordinates are 0-based with origin at top-left. The result honors the
// bitmap's channel order, so BGR frames report the same colors as RGB ones.
func SampleColor(b *vision.Bitmap, x, y int) (*ColorResult, error) {
	c, err := vision.GetColor(b, x, y)
	if err != nil {
		return nil, err
	}
	return NewColorResult(c), nil
}

// LabeledPoint represents a pixel coordinate with an optional descriptive label.
type LabeledPoint struct {
	X     int    `json:"x"`
	Y     int    `json:"y"`
	Label string `json:"label,omitempty"`
}

// LabeledColorResult combines a color sample with its location and optional label.
type LabeledColorResult struct {
	Label string      `json:"label,omitempty"`
	X     int         `json:"x"`
	Y     int         `json:"y"`
	Color ColorResult `json:"color"`
}

// MultiColorResult contains color samples from multiple points, in input order.
type MultiColorResult struct {
	Samples []LabeledColorResult `json:"samples"`
}

// SampleColorsMulti extracts colors at multiple pixel coordinates in a single call.
//
// On error no partial results are returned.
func SampleColorsMulti(b *vision.Bitmap, points []LabeledPoint) (*MultiColorResult, error) {
	results := make([]LabeledColorResult, 0, len(points))

	for _, p := range points {
		color, err := SampleColor(b, p.X, p.Y)
		if err != nil {
			return nil, fmt.Errorf("failed to sample point (%d,%d): %w", p.X, p.Y, err)
		}
		results = append(results, LabeledColorResult{
			Label: p.Label,
			X:     p.X,
			Y:     p.Y,
			Color: *color,
		})
	}

	return &MultiColorResult{Samples: results}, nil
}
