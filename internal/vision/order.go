package vision

import "fmt"

// Point is a pixel coordinate.
type Point struct {
	X int `json:"x"`
	Y int `json:"y"`
}

// NotFound is the sentinel returned by searches without a match.
var NotFound = Point{X: -1, Y: -1}

// Order selects one of the eight scan orders over a rectangle. The first
// direction in a name is the outer loop, the second the inner loop.
type Order int

const (
	UpDownLeftRight Order = iota
	UpDownRightLeft
	DownUpLeftRight
	DownUpRightLeft
	LeftRightUpDown
	LeftRightDownUp
	RightLeftUpDown
	RightLeftDownUp
)

type orderLayout struct {
	name        string
	columnMajor bool
	yReverse    bool
	xReverse    bool
}

var orderLayouts = [...]orderLayout{
	UpDownLeftRight: {"UP_DOWN_LEFT_RIGHT", false, false, false},
	UpDownRightLeft: {"UP_DOWN_RIGHT_LEFT", false, false, true},
	DownUpLeftRight: {"DOWN_UP_LEFT_RIGHT", false, true, false},
	DownUpRightLeft: {"DOWN_UP_RIGHT_LEFT", false, true, true},
	LeftRightUpDown: {"LEFT_RIGHT_UP_DOWN", true, false, false},
	LeftRightDownUp: {"LEFT_RIGHT_DOWN_UP", true, true, false},
	RightLeftUpDown: {"RIGHT_LEFT_UP_DOWN", true, false, true},
	RightLeftDownUp: {"RIGHT_LEFT_DOWN_UP", true, true, true},
}

// ParseOrder validates an order number.
func ParseOrder(n int) (Order, error) {
	if n < 0 || n >= len(orderLayouts) {
		return 0, fmt.Errorf("%w: got %d", ErrInvalidOrder, n)
	}
	return Order(n), nil
}

// Valid reports whether o is one of the eight scan orders.
func (o Order) Valid() bool {
	return o >= 0 && int(o) < len(orderLayouts)
}

func (o Order) String() string {
	if !o.Valid() {
		return fmt.Sprintf("Order(%d)", int(o))
	}
	return orderLayouts[o].name
}

// Orders returns the scan-order table keyed by name.
func Orders() map[string]Order {
	m := make(map[string]Order, len(orderLayouts))
	for i, l := range orderLayouts {
		m[l.name] = Order(i)
	}
	return m
}

// VisitFunc is called for each coordinate of a walk with that pixel's channel
// bytes. Returning true stops the walk.
type VisitFunc func(x, y int, px []byte) bool

// span iterates [lo, hi) forward or backward.
type span struct {
	start, end, step int
}

func newSpan(lo, hi int, reverse bool) span {
	if reverse {
		return span{start: hi - 1, end: lo - 1, step: -1}
	}
	return span{start: lo, end: hi, step: 1}
}

// Walk visits every coordinate of the rectangle (x, y) inclusive to (x1, y1)
// exclusive in the given order and returns the first coordinate for which fn
// returns true. The rectangle must already be in scope.
func Walk(b *Bitmap, x, y, x1, y1 int, order Order, fn VisitFunc) (Point, bool) {
	if !order.Valid() {
		return NotFound, false
	}
	l := orderLayouts[order]
	xs := newSpan(x, x1, l.xReverse)
	ys := newSpan(y, y1, l.yReverse)

	if l.columnMajor {
		for cx := xs.start; cx != xs.end; cx += xs.step {
			for cy := ys.start; cy != ys.end; cy += ys.step {
				if fn(cx, cy, b.PixelAt(cx, cy)) {
					return Point{X: cx, Y: cy}, true
				}
			}
		}
		return NotFound, false
	}

	for cy := ys.start; cy != ys.end; cy += ys.step {
		for cx := xs.start; cx != xs.end; cx += xs.step {
			if fn(cx, cy, b.PixelAt(cx, cy)) {
				return Point{X: cx, Y: cy}, true
			}
		}
	}
	return NotFound, false
}

// Scan visits every coordinate of the rectangle row by row without stopping
// early. It is the counting counterpart of Walk.
func Scan(b *Bitmap, x, y, x1, y1 int, fn func(x, y int, px []byte)) {
	for cy := y; cy < y1; cy++ {
		off := b.Offset(x, cy)
		for cx := x; cx < x1; cx++ {
			fn(cx, cy, b.Pix[off:off+b.PixelStride])
			off += b.PixelStride
		}
	}
}
