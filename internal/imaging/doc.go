// Package imaging supplies the pixel sources and image utilities around the
// vision search engine.
//
// It loads image files into *vision.Bitmap values, resolves template names,
// copies and scales sub-regions, saves bitmaps as PNG, reports pixel colors,
// and renders annotated previews of search results. Coordinates follow the
// usual image convention: (0,0) is the top-left corner, X increases
// rightward and Y increases downward.
//
// # Coordinate System
//
// All pixel coordinates in this package are 0-based:
//   - X: horizontal position (0 = leftmost pixel)
//   - Y: vertical position (0 = topmost pixel)
//   - For regions, (x,y) is inclusive (top-left), (x1,y1) is exclusive
//     (bottom-right), and -1 for x1 or y1 extends to the image edge
//
// # Image Names
//
// Tools refer to images by name. A name is a file path, or a handle under
// which a derived bitmap (for example a clone) was registered with
// ImageCache.Put. Template names additionally resolve relative to the
// configured template directory; see TemplateResolver.
//
// # Thread Safety
//
// The ImageCache type is safe for concurrent use. Bitmaps it returns are
// shared and must not be written to.
//
// # Color Representation
//
// Colors are returned in several formats:
//   - Text: "rrggbb", directly usable as an exact color in searches
//   - Value: the integer 0xRRGGBB
//   - Hex: CSS format "#rrggbb"
//   - RGB: 8-bit components (0-255)
//   - HSL: Hue (0-359), Saturation (0-100), Lightness (0-100)
package imaging
