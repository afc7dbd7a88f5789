package vision

import "fmt"

// templateBudget is the summed distance a template may accumulate over all of
// its pixels: round((1 - similarity) * MaxDistance * area).
func templateBudget(similarity float64, t *Bitmap) (int, error) {
	return Tolerance(similarity, MaxDistance*t.Width*t.Height)
}

func templateBudgets(similarity float64, templates []*Bitmap) ([]int, error) {
	if len(templates) == 0 {
		return nil, ErrEmptyTemplates
	}
	budgets := make([]int, len(templates))
	for i, t := range templates {
		if t == nil || t.Width == 0 || t.Height == 0 {
			return nil, fmt.Errorf("%w: template %d is empty", ErrInvalidBitmap, i+1)
		}
		budget, err := templateBudget(similarity, t)
		if err != nil {
			return nil, err
		}
		budgets[i] = budget
	}
	return budgets, nil
}

// IsImage reports whether any of templates matches with its top-left corner
// at (x, y).
func IsImage(b *Bitmap, x, y int, templates []*Bitmap, similarity float64) (bool, error) {
	n, err := WhichImage(b, x, y, templates, similarity)
	return n != 0, err
}

// WhichImage returns the 1-based position of the first of templates that
// matches with its top-left corner at (x, y), or 0 when none does.
func WhichImage(b *Bitmap, x, y int, templates []*Bitmap, similarity float64) (int, error) {
	if !b.InScope(x, y) {
		return 0, outOfBounds(b, x, y)
	}
	budgets, err := templateBudgets(similarity, templates)
	if err != nil {
		return 0, err
	}
	return whichTemplate(b, x, y, templates, budgets), nil
}

// FindImage returns the first top-left corner in the rectangle
// (x, y)-(x1, y1), in the given order, at which t matches, or NotFound.
func FindImage(b *Bitmap, x, y, x1, y1 int, t *Bitmap, similarity float64, order Order) (Point, error) {
	p, _, err := FindAnyImage(b, x, y, x1, y1, []*Bitmap{t}, similarity, order)
	return p, err
}

// FindAnyImage tests templates in order at every candidate corner and
// returns the first corner where one matches together with that template's
// 1-based position. Without a match it returns NotFound and 0.
func FindAnyImage(b *Bitmap, x, y, x1, y1 int, templates []*Bitmap, similarity float64, order Order) (Point, int, error) {
	budgets, err := templateBudgets(similarity, templates)
	if err != nil {
		return NotFound, 0, err
	}
	x1, y1, err = checkSearch(b, x, y, x1, y1, order)
	if err != nil {
		return NotFound, 0, err
	}
	which := 0
	p, _ := Walk(b, x, y, x1, y1, order, func(cx, cy int, _ []byte) bool {
		which = whichTemplate(b, cx, cy, templates, budgets)
		return which != 0
	})
	return p, which, nil
}

func whichTemplate(b *Bitmap, x, y int, templates []*Bitmap, budgets []int) int {
	for i, t := range templates {
		if matchImage(b, x, y, t, budgets[i]) {
			return i + 1
		}
	}
	return 0
}

// matchImage accumulates the distance between t and the region of b at
// (x, y) and gives up as soon as the sum exceeds budget. A template that does
// not fit at (x, y) never matches.
func matchImage(b *Bitmap, x, y int, t *Bitmap, budget int) bool {
	if x < 0 || y < 0 || x+t.Width > b.Width || y+t.Height > b.Height {
		return false
	}
	sum := 0
	sameOrder := b.Order == t.Order
	for ty := 0; ty < t.Height; ty++ {
		for tx := 0; tx < t.Width; tx++ {
			if sameOrder {
				sum += rawDistance(b.PixelAt(x+tx, y+ty), t.PixelAt(tx, ty))
			} else {
				sum += colorDistance(b.ColorAt(x+tx, y+ty), t.ColorAt(tx, ty))
			}
			if sum > budget {
				return false
			}
		}
	}
	return true
}
