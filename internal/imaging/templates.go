package imaging

import (
	"fmt"
	"path/filepath"
	"strings"

	"github.com/lizhizhuanshu/simple-vision/internal/vision"
)

// TemplateResolver turns template names into bitmaps for image searches.
//
// A name is looked up in the cache first, so clone handles and previously
// loaded paths resolve without I/O. Otherwise relative names are joined to
// Dir before loading; absolute names are loaded as given.
type TemplateResolver struct {
	Cache *ImageCache
	Dir   string
}

// NewTemplateResolver creates a resolver rooted at dir. An empty dir leaves
// relative names relative to the working directory.
func NewTemplateResolver(cache *ImageCache, dir string) *TemplateResolver {
	return &TemplateResolver{Cache: cache, Dir: dir}
}

// SplitTemplateList splits a '|'-separated list of template names. Empty
// entries are rejected.
func SplitTemplateList(list string) ([]string, error) {
	names := strings.Split(list, "|")
	for i, n := range names {
		if n == "" {
			return nil, fmt.Errorf("template list %q: entry %d is empty", list, i+1)
		}
	}
	return names, nil
}

// Path returns the file path a template name loads from.
func (r *TemplateResolver) Path(name string) string {
	if r.Dir == "" || filepath.IsAbs(name) {
		return name
	}
	return filepath.Join(r.Dir, name)
}

// Load resolves one template name.
func (r *TemplateResolver) Load(name string) (*vision.Bitmap, error) {
	if b, ok := r.Cache.Get(name); ok {
		return b, nil
	}
	return r.Cache.Load(r.Path(name))
}

// LoadAll resolves names in order. The first failure aborts the whole list.
func (r *TemplateResolver) LoadAll(names []string) ([]*vision.Bitmap, error) {
	if len(names) == 0 {
		return nil, vision.ErrEmptyTemplates
	}
	out := make([]*vision.Bitmap, 0, len(names))
	for i, name := range names {
		b, err := r.Load(name)
		if err != nil {
			return nil, fmt.Errorf("template %d: %w", i+1, err)
		}
		out = append(out, b)
	}
	return out, nil
}
