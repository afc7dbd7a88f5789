package vision

import (
	"fmt"
	"image"
	"image/color"

	"github.com/disintegration/imaging"
)

// ChannelOrder is the byte layout of the first three channels of a pixel.
type ChannelOrder uint8

const (
	// OrderRGB stores red, green, blue (then optional alpha).
	OrderRGB ChannelOrder = iota
	// OrderBGR stores blue, green, red (then optional alpha), as most screen
	// capture APIs deliver frames.
	OrderBGR
)

// Bitmap is a read-only view over raw pixel memory. It is the only pixel
// source the engine reads from; the engine never retains one past a call.
//
// Pixel (x, y) starts at byte y*RowStride + x*PixelStride of Pix.
type Bitmap struct {
	Width       int
	Height      int
	RowStride   int
	PixelStride int
	Order       ChannelOrder
	Pix         []byte
}

// NewBitmap wraps pix after checking the layout invariants: PixelStride of at
// least 3, RowStride of at least Width*PixelStride, and enough bytes for the
// last row.
func NewBitmap(width, height, rowStride, pixelStride int, order ChannelOrder, pix []byte) (*Bitmap, error) {
	switch {
	case width < 0 || height < 0:
		return nil, fmt.Errorf("%w: negative size %dx%d", ErrInvalidBitmap, width, height)
	case pixelStride < 3:
		return nil, fmt.Errorf("%w: pixel stride %d below 3", ErrInvalidBitmap, pixelStride)
	case rowStride < width*pixelStride:
		return nil, fmt.Errorf("%w: row stride %d below %d", ErrInvalidBitmap, rowStride, width*pixelStride)
	case order != OrderRGB && order != OrderBGR:
		return nil, fmt.Errorf("%w: unknown channel order %d", ErrInvalidBitmap, order)
	}
	if height > 0 {
		need := (height-1)*rowStride + width*pixelStride
		if len(pix) < need {
			return nil, fmt.Errorf("%w: buffer holds %d bytes, need %d", ErrInvalidBitmap, len(pix), need)
		}
	}
	return &Bitmap{
		Width:       width,
		Height:      height,
		RowStride:   rowStride,
		PixelStride: pixelStride,
		Order:       order,
		Pix:         pix,
	}, nil
}

// FromRGBA borrows the pixel memory of img without copying.
func FromRGBA(img *image.RGBA) *Bitmap {
	b := img.Rect
	return &Bitmap{
		Width:       b.Dx(),
		Height:      b.Dy(),
		RowStride:   img.Stride,
		PixelStride: 4,
		Order:       OrderRGB,
		Pix:         img.Pix[img.PixOffset(b.Min.X, b.Min.Y):],
	}
}

// FromNRGBA borrows the pixel memory of img without copying. Color channels
// are read as stored, so translucent pixels keep their straight RGB values.
func FromNRGBA(img *image.NRGBA) *Bitmap {
	b := img.Rect
	return &Bitmap{
		Width:       b.Dx(),
		Height:      b.Dy(),
		RowStride:   img.Stride,
		PixelStride: 4,
		Order:       OrderRGB,
		Pix:         img.Pix[img.PixOffset(b.Min.X, b.Min.Y):],
	}
}

// FromImage returns a bitmap for any image. RGBA and NRGBA images are
// wrapped as they are; anything else is converted to non-premultiplied NRGBA
// first.
func FromImage(img image.Image) *Bitmap {
	switch src := img.(type) {
	case *image.RGBA:
		return FromRGBA(src)
	case *image.NRGBA:
		return FromNRGBA(src)
	case *Bitmap:
		return src
	}
	return FromNRGBA(imaging.Clone(img))
}

// InScope reports whether (x, y) addresses a pixel.
func (b *Bitmap) InScope(x, y int) bool {
	return x >= 0 && y >= 0 && x < b.Width && y < b.Height
}

// RectInScope reports whether the rectangle from (x, y) inclusive to
// (x1, y1) exclusive lies inside the bitmap and is not inverted.
func (b *Bitmap) RectInScope(x, y, x1, y1 int) bool {
	return x >= 0 && y >= 0 && x <= x1 && y <= y1 && x1 <= b.Width && y1 <= b.Height
}

// Resolve maps the -1 shorthand of a far corner to the full extent.
func (b *Bitmap) Resolve(x1, y1 int) (int, int) {
	if x1 == -1 {
		x1 = b.Width
	}
	if y1 == -1 {
		y1 = b.Height
	}
	return x1, y1
}

// Offset returns the index in Pix of the first byte of pixel (x, y).
func (b *Bitmap) Offset(x, y int) int {
	return y*b.RowStride + x*b.PixelStride
}

// PixelAt returns the channel bytes of pixel (x, y). The coordinates must be
// in scope.
func (b *Bitmap) PixelAt(x, y int) []byte {
	off := b.Offset(x, y)
	return b.Pix[off : off+b.PixelStride : off+b.PixelStride]
}

// ColorAt returns the RGB value of pixel (x, y), honoring the channel order.
// The coordinates must be in scope.
func (b *Bitmap) ColorAt(x, y int) Color {
	return b.colorOf(b.PixelAt(x, y))
}

func (b *Bitmap) colorOf(px []byte) Color {
	if b.Order == OrderBGR {
		return RGB(px[2], px[1], px[0])
	}
	return RGB(px[0], px[1], px[2])
}

// ColorModel implements image.Image.
func (b *Bitmap) ColorModel() color.Model { return color.NRGBAModel }

// Bounds implements image.Image.
func (b *Bitmap) Bounds() image.Rectangle { return image.Rect(0, 0, b.Width, b.Height) }

// At implements image.Image so a bitmap can be handed to encoders and
// resamplers. Pixels without an alpha byte are opaque.
func (b *Bitmap) At(x, y int) color.Color {
	if !b.InScope(x, y) {
		return color.NRGBA{}
	}
	px := b.PixelAt(x, y)
	c := b.colorOf(px)
	a := uint8(0xff)
	if b.PixelStride >= 4 {
		a = px[3]
	}
	return color.NRGBA{R: c.R(), G: c.G(), B: c.B(), A: a}
}
