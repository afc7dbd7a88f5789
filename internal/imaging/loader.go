package imaging

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"github.com/disintegration/imaging"
	_ "golang.org/x/image/bmp"  // Register BMP format decoder
	_ "golang.org/x/image/webp" // Register WebP format decoder

	"github.com/lizhizhuanshu/simple-vision/internal/vision"
)

// ImageCache provides thread-safe caching of decoded bitmaps to avoid
// redundant disk reads.
//
// The cache stores *vision.Bitmap values keyed by name. A name is either the
// file path an image was loaded from, or a handle a caller registered with
// Put (for example the result of a clone). Once a name is cached, subsequent
// Load calls return the cached bitmap without disk I/O.
//
// Cached bitmaps are treated as read-only. Searches may run concurrently on
// the same bitmap.
//
// # Memory Management
//
// Cached bitmaps remain in memory until explicitly removed via Evict() or
// Clear(). For long-running processes handling many screenshots, consider
// periodic cleanup to prevent unbounded memory growth.
//
// # Example Usage
//
//	cache := imaging.NewImageCache()
//	bmp, err := cache.Load("/path/to/screen.png")
//	if err != nil {
//	    log.Fatal(err)
//	}
//	p, err := vision.FindColor(bmp, 0, 0, -1, -1, comp, m, vision.UpDownLeftRight)
type ImageCache struct {
	mu     sync.RWMutex
	images map[string]*vision.Bitmap
}

// NewImageCache creates and initializes a new empty image cache.
func NewImageCache() *ImageCache {
	return &ImageCache{
		images: make(map[string]*vision.Bitmap),
	}
}

// Load retrieves a bitmap from the cache or decodes it from disk if not
// cached.
//
// Supported formats are PNG, JPEG, GIF, BMP, TIFF and WebP. Decoded images
// are converted to 8-bit non-premultiplied RGBA so every bitmap the cache
// hands out has a pixel stride of 4 and RGB channel order.
//
// The bitmap is cached using the exact name provided. Different paths to the
// same file (e.g., relative vs absolute) result in separate cache entries.
func (c *ImageCache) Load(name string) (*vision.Bitmap, error) {
	if b, ok := c.Get(name); ok {
		return b, nil
	}

	img, err := imaging.Open(name)
	if err != nil {
		return nil, fmt.Errorf("failed to load image %s: %w", name, err)
	}
	b := vision.FromImage(img)

	c.Put(name, b)
	return b, nil
}

// Get returns a cached bitmap without touching the disk.
func (c *ImageCache) Get(name string) (*vision.Bitmap, bool) {
	c.mu.RLock()
	b, ok := c.images[name]
	c.mu.RUnlock()
	return b, ok
}

// Put registers b under name, replacing any previous entry.
func (c *ImageCache) Put(name string, b *vision.Bitmap) {
	c.mu.Lock()
	c.images[name] = b
	c.mu.Unlock()
}

// Clear removes all bitmaps from the cache.
func (c *ImageCache) Clear() {
	c.mu.Lock()
	c.images = make(map[string]*vision.Bitmap)
	c.mu.Unlock()
}

// Evict removes a specific bitmap from the cache by its name. After eviction
// the next Load call for a path reads from disk again.
func (c *ImageCache) Evict(name string) {
	c.mu.Lock()
	delete(c.images, name)
	c.mu.Unlock()
}

// Len returns the number of cached bitmaps.
func (c *ImageCache) Len() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.images)
}

// ImageInfo contains metadata about a loaded image.
type ImageInfo struct {
	// Width is the image width in pixels.
	Width int `json:"width"`

	// Height is the image height in pixels.
	Height int `json:"height"`

	// Format is the image format derived from the file extension: "png",
	// "jpeg", "gif", "bmp", "tiff", "webp", or "unknown". Handles registered
	// with Put report "memory".
	Format string `json:"format"`

	// RowStride and PixelStride describe the in-memory layout the search
	// engine reads.
	RowStride   int `json:"row_stride"`
	PixelStride int `json:"pixel_stride"`

	// FileSizeBytes is the size of the image file on disk in bytes, or 0 for
	// in-memory handles.
	FileSizeBytes int64 `json:"file_size_bytes"`
}

// LoadImageInfo loads an image and returns metadata about it.
//
// # Format Detection
//
// The format is determined by file extension through imaging.FormatFromFilename,
// falling back to a plain ".webp" check, which imaging has no Format for.
func LoadImageInfo(cache *ImageCache, name string) (*ImageInfo, error) {
	_, cached := cache.Get(name)
	b, err := cache.Load(name)
	if err != nil {
		return nil, err
	}

	info := &ImageInfo{
		Width:       b.Width,
		Height:      b.Height,
		Format:      formatOf(name),
		RowStride:   b.RowStride,
		PixelStride: b.PixelStride,
	}

	stat, err := os.Stat(name)
	switch {
	case err == nil:
		info.FileSizeBytes = stat.Size()
	case cached && os.IsNotExist(err):
		info.Format = "memory"
	default:
		return nil, fmt.Errorf("failed to stat file: %w", err)
	}
	return info, nil
}

func formatOf(name string) string {
	if f, err := imaging.FormatFromFilename(name); err == nil {
		return strings.ToLower(f.String())
	}
	if strings.EqualFold(filepath.Ext(name), ".webp") {
		return "webp"
	}
	return "unknown"
}

// DimensionsResult contains the width and height of an image.
type DimensionsResult struct {
	// Width is the image width in pixels.
	Width int `json:"width"`

	// Height is the image height in pixels.
	Height int `json:"height"`
}

// GetDimensions returns the dimensions of an image without additional
// metadata. The image is loaded into the cache if not already present.
func GetDimensions(cache *ImageCache, name string) (*DimensionsResult, error) {
	b, err := cache.Load(name)
	if err != nil {
		return nil, err
	}
	return &DimensionsResult{
		Width:  b.Width,
		Height: b.Height,
	}, nil
}
