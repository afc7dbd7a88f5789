package vision

import "errors"

var (
	// decode errors
	ErrInvalidColor   = errors.New("invalid color string")
	ErrInvalidFeature = errors.New("invalid feature string")

	// argument errors
	ErrOutOfBounds       = errors.New("the coordinates are off the image")
	ErrInvalidSimilarity = errors.New("similarity must be between 0 and 1")
	ErrInvalidOrder      = errors.New("order must be between 0 and 7")
	ErrInvalidBitmap     = errors.New("invalid bitmap layout")
	ErrEmptyTemplates    = errors.New("no template images given")
)
