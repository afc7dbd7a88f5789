package imaging

import (
	"bytes"
	"encoding/base64"
	"fmt"
	"image"
	"math"

	"github.com/anthonynsimon/bild/imgio"
	"github.com/disintegration/imaging"

	"github.com/lizhizhuanshu/simple-vision/internal/vision"
)

// PNGResult carries an encoded image back to the client.
type PNGResult struct {
	Width       int    `json:"width"`
	Height      int    `json:"height"`
	ImageBase64 string `json:"image_base64"`
	MimeType    string `json:"mime_type"`
}

// Clone copies the region (x, y) inclusive to (x1, y1) exclusive of b into a
// new bitmap, optionally scaled. A far corner of -1 extends to the edge.
//
// The copy owns its pixel memory, so it stays valid after b is evicted.
func Clone(b *vision.Bitmap, x, y, x1, y1 int, scale float64) (*vision.Bitmap, error) {
	x1, y1 = b.Resolve(x1, y1)
	if !b.RectInScope(x, y, x1, y1) {
		return nil, fmt.Errorf("%w: clone region (%d,%d)-(%d,%d) outside %dx%d",
			vision.ErrOutOfBounds, x, y, x1, y1, b.Width, b.Height)
	}
	if x == x1 || y == y1 {
		return nil, fmt.Errorf("invalid clone region: (%d,%d)-(%d,%d) is empty", x, y, x1, y1)
	}
	if !(scale > 0) || math.IsInf(scale, 0) {
		return nil, fmt.Errorf("invalid scale %v: must be a positive number", scale)
	}

	cropped := imaging.Crop(b, image.Rect(x, y, x1, y1))

	if scale != 1.0 {
		newWidth := max(1, int(float64(cropped.Bounds().Dx())*scale))
		newHeight := max(1, int(float64(cropped.Bounds().Dy())*scale))
		cropped = imaging.Resize(cropped, newWidth, newHeight, imaging.Lanczos)
	}

	return vision.FromImage(cropped), nil
}

// Save writes b to path as PNG.
func Save(b *vision.Bitmap, path string) error {
	if err := imgio.Save(path, b, imgio.PNGEncoder()); err != nil {
		return fmt.Errorf("failed to save image to %s: %w", path, err)
	}
	return nil
}

// EncodePNG renders img as a base64 PNG payload.
func EncodePNG(img image.Image) (*PNGResult, error) {
	var buf bytes.Buffer
	if err := imgio.PNGEncoder()(&buf, img); err != nil {
		return nil, fmt.Errorf("failed to encode image: %w", err)
	}
	return &PNGResult{
		Width:       img.Bounds().Dx(),
		Height:      img.Bounds().Dy(),
		ImageBase64: base64.StdEncoding.EncodeToString(buf.Bytes()),
		MimeType:    "image/png",
	}, nil
}
