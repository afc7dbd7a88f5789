package imaging

import (
	"fmt"
	"image"
	"image/color"
	"image/draw"
	"strconv"

	colorful "github.com/lucasb-eyer/go-colorful"

	"github.com/lizhizhuanshu/simple-vision/internal/vision"
)

// Mark is a box to outline on an annotated image, usually a search hit. A
// zero Width or Height draws a crosshair at (X, Y) instead.
type Mark struct {
	X      int    `json:"x"`
	Y      int    `json:"y"`
	Width  int    `json:"width,omitempty"`
	Height int    `json:"height,omitempty"`
	Label  string `json:"label,omitempty"`
}

// AnnotateOptions controls the overlay.
type AnnotateOptions struct {
	// Color is the outline color as "#rrggbb". Empty selects red.
	Color string
	// GridSpacing draws a coordinate grid every GridSpacing pixels when
	// positive.
	GridSpacing int
	// ShowCoordinates labels marks without a Label with their "x,y".
	ShowCoordinates bool
}

var (
	defaultMarkColor = color.RGBA{255, 0, 0, 255}
	gridColor        = color.RGBA{255, 255, 255, 96}
	labelColor       = color.RGBA{255, 255, 255, 255}
	labelBackground  = color.RGBA{0, 0, 0, 180}
)

// Annotate draws marks over a copy of b and returns it as PNG. b itself is
// not modified.
func Annotate(b *vision.Bitmap, marks []Mark, opts AnnotateOptions) (*PNGResult, error) {
	markColor := defaultMarkColor
	if opts.Color != "" {
		c, err := colorful.Hex(opts.Color)
		if err != nil {
			return nil, fmt.Errorf("invalid annotation color %q: %w", opts.Color, err)
		}
		r, g, bl := c.RGB255()
		markColor = color.RGBA{r, g, bl, 255}
	}

	bounds := b.Bounds()
	result := image.NewRGBA(bounds)
	draw.Draw(result, bounds, b, bounds.Min, draw.Src)

	if opts.GridSpacing > 0 {
		drawGrid(result, opts.GridSpacing)
	}

	for _, m := range marks {
		if m.Width > 0 && m.Height > 0 {
			drawBox(result, m.X, m.Y, m.Width, m.Height, markColor)
		} else {
			drawCrosshair(result, m.X, m.Y, markColor)
		}
		label := m.Label
		if label == "" && opts.ShowCoordinates {
			label = strconv.Itoa(m.X) + "," + strconv.Itoa(m.Y)
		}
		if label != "" {
			drawLabel(result, m.X+2, m.Y+2, label, labelColor, labelBackground)
		}
	}

	return EncodePNG(result)
}

func drawGrid(img *image.RGBA, spacing int) {
	bounds := img.Bounds()
	for x := spacing; x < bounds.Dx(); x += spacing {
		for y := 0; y < bounds.Dy(); y++ {
			blend(img, x, y, gridColor)
		}
	}
	for y := spacing; y < bounds.Dy(); y += spacing {
		for x := 0; x < bounds.Dx(); x++ {
			blend(img, x, y, gridColor)
		}
	}
}

func drawBox(img *image.RGBA, x, y, w, h int, c color.RGBA) {
	for dx := 0; dx < w; dx++ {
		setClipped(img, x+dx, y, c)
		setClipped(img, x+dx, y+h-1, c)
	}
	for dy := 0; dy < h; dy++ {
		setClipped(img, x, y+dy, c)
		setClipped(img, x+w-1, y+dy, c)
	}
}

func drawCrosshair(img *image.RGBA, x, y int, c color.RGBA) {
	const arm = 4
	for d := -arm; d <= arm; d++ {
		setClipped(img, x+d, y, c)
		setClipped(img, x, y+d, c)
	}
}

func setClipped(img *image.RGBA, x, y int, c color.RGBA) {
	if image.Pt(x, y).In(img.Bounds()) {
		img.SetRGBA(x, y, c)
	}
}

// blend composites c over the pixel at (x, y) using c's alpha.
func blend(img *image.RGBA, x, y int, c color.RGBA) {
	if !image.Pt(x, y).In(img.Bounds()) {
		return
	}
	dst := img.RGBAAt(x, y)
	a := uint32(c.A)
	mix := func(s, d uint8) uint8 {
		return uint8((uint32(s)*a + uint32(d)*(255-a)) / 255)
	}
	img.SetRGBA(x, y, color.RGBA{mix(c.R, dst.R), mix(c.G, dst.G), mix(c.B, dst.B), dst.A})
}

// labelGlyphs is a 3x5 pixel font for coordinate labels.
var labelGlyphs = map[rune][]string{
	'0': {"111", "101", "101", "101", "111"},
	'1': {"010", "110", "010", "010", "111"},
	'2': {"111", "001", "111", "100", "111"},
	'3': {"111", "001", "111", "001", "111"},
	'4': {"101", "101", "111", "001", "001"},
	'5': {"111", "100", "111", "001", "111"},
	'6': {"111", "100", "111", "101", "111"},
	'7': {"111", "001", "001", "001", "001"},
	'8': {"111", "101", "111", "101", "111"},
	'9': {"111", "101", "111", "001", "111"},
	',': {"000", "000", "000", "010", "010"},
	'-': {"000", "000", "111", "000", "000"},
}

// drawLabel draws text on a filled background at the given position.
// Characters outside labelGlyphs leave a blank cell.
func drawLabel(img *image.RGBA, x, y int, text string, fg, bg color.RGBA) {
	const (
		charWidth   = 4
		labelHeight = 7
	)
	labelWidth := len(text) * charWidth

	for dy := -1; dy < labelHeight; dy++ {
		for dx := -1; dx < labelWidth; dx++ {
			setClipped(img, x+dx, y+dy, bg)
		}
	}

	cx := x
	for _, ch := range text {
		glyph, ok := labelGlyphs[ch]
		if !ok {
			cx += charWidth
			continue
		}
		for row, line := range glyph {
			for col, pixel := range line {
				if pixel == '1' {
					setClipped(img, cx+col, y+row, fg)
				}
			}
		}
		cx += charWidth
	}
}
