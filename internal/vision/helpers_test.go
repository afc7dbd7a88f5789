package vision

import (
	"image"
	"image/color"
)

// newFilled creates a width x height RGBA bitmap filled with c.
func newFilled(width, height int, c Color) *Bitmap {
	img := image.NewRGBA(image.Rect(0, 0, width, height))
	for y := 0; y < height; y++ {
		for x := 0; x < width; x++ {
			img.Set(x, y, color.RGBA{c.R(), c.G(), c.B(), 255})
		}
	}
	return FromRGBA(img)
}

// setPixel writes c at (x, y) honoring the bitmap's channel order.
func setPixel(b *Bitmap, x, y int, c Color) {
	px := b.PixelAt(x, y)
	if b.Order == OrderBGR {
		px[0], px[1], px[2] = c.B(), c.G(), c.R()
		return
	}
	px[0], px[1], px[2] = c.R(), c.G(), c.B()
}

// crop copies the w x h region at (x, y) into a new bitmap.
func crop(b *Bitmap, x, y, w, h int) *Bitmap {
	out := newFilled(w, h, 0)
	for ty := 0; ty < h; ty++ {
		for tx := 0; tx < w; tx++ {
			setPixel(out, tx, ty, b.ColorAt(x+tx, y+ty))
		}
	}
	return out
}

// noise fills b with a deterministic pseudo-random pattern.
func noise(b *Bitmap, seed uint32) {
	s := seed
	for y := 0; y < b.Height; y++ {
		for x := 0; x < b.Width; x++ {
			s = s*1664525 + 1013904223
			setPixel(b, x, y, Color(s>>8)&MaxColor)
		}
	}
}

func mustColor(s string) Composition {
	c, err := DecodeColor(s)
	if err != nil {
		panic(err)
	}
	return c
}

func mustFeature(s string) *Feature {
	f, err := DecodeFeature(s)
	if err != nil {
		panic(err)
	}
	return f
}
