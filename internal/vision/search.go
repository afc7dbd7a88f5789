package vision

import "fmt"

// GetColor returns the RGB value of pixel (x, y).
func GetColor(b *Bitmap, x, y int) (Color, error) {
	if !b.InScope(x, y) {
		return 0, outOfBounds(b, x, y)
	}
	return b.ColorAt(x, y), nil
}

// CountColor counts the pixels of the rectangle (x, y)-(x1, y1) that match
// comp. A far corner of -1 extends to the bitmap edge.
func CountColor(b *Bitmap, x, y, x1, y1 int, comp Composition, m Matcher) (int, error) {
	x1, y1 = b.Resolve(x1, y1)
	if !b.RectInScope(x, y, x1, y1) {
		return 0, outOfBoundsRect(b, x, y, x1, y1)
	}
	count := 0
	Scan(b, x, y, x1, y1, func(_, _ int, px []byte) {
		if m.Any(b.colorOf(px), comp) {
			count++
		}
	})
	return count, nil
}

// IsColor reports whether pixel (x, y) matches comp.
func IsColor(b *Bitmap, x, y int, comp Composition, m Matcher) (bool, error) {
	n, err := WhichColor(b, x, y, comp, m)
	return n != 0, err
}

// WhichColor returns the 1-based position of the first alternative of comp
// that pixel (x, y) matches, or 0 when none does.
func WhichColor(b *Bitmap, x, y int, comp Composition, m Matcher) (int, error) {
	if !b.InScope(x, y) {
		return 0, outOfBounds(b, x, y)
	}
	return m.Which(b.ColorAt(x, y), comp), nil
}

// FindColor returns the first pixel of the rectangle (x, y)-(x1, y1) in the
// given order that matches comp, or NotFound.
func FindColor(b *Bitmap, x, y, x1, y1 int, comp Composition, m Matcher, order Order) (Point, error) {
	x1, y1, err := checkSearch(b, x, y, x1, y1, order)
	if err != nil {
		return NotFound, err
	}
	p, _ := Walk(b, x, y, x1, y1, order, func(_, _ int, px []byte) bool {
		return m.Any(b.colorOf(px), comp)
	})
	return p, nil
}

// checkSearch validates the region and order of a find operation and returns
// the resolved far corner.
func checkSearch(b *Bitmap, x, y, x1, y1 int, order Order) (int, int, error) {
	if !order.Valid() {
		return 0, 0, fmt.Errorf("%w: got %d", ErrInvalidOrder, int(order))
	}
	x1, y1 = b.Resolve(x1, y1)
	if !b.RectInScope(x, y, x1, y1) {
		return 0, 0, outOfBoundsRect(b, x, y, x1, y1)
	}
	return x1, y1, nil
}

func outOfBounds(b *Bitmap, x, y int) error {
	return fmt.Errorf("%w: (%d,%d) outside %dx%d", ErrOutOfBounds, x, y, b.Width, b.Height)
}

func outOfBoundsRect(b *Bitmap, x, y, x1, y1 int) error {
	return fmt.Errorf("%w: region (%d,%d)-(%d,%d) outside %dx%d", ErrOutOfBounds, x, y, x1, y1, b.Width, b.Height)
}
