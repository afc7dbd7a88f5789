// Package vision is a tolerance-based pattern-matching engine over raw pixel
// memory.
//
// It answers three kinds of question about a Bitmap:
//   - Is the pixel at (x, y) a given color? Which of several colors is it?
//   - Where does a feature (a set of colored points at fixed offsets from an
//     anchor) first occur?
//   - Where does a template image first occur?
//
// # Color Text
//
// Colors are described by a compact, fixed-width text form:
//
//	RRGGBB          exact color, summed channel distance
//	RRGGBB-SSSSSS   gamut: each channel within SS of RR/GG/BB
//	!RRGGBB         not-tagged exact color
//	!RRGGBB-SSSSSS  not-tagged gamut
//
// Alternatives are joined with '|'; a pixel matches a Composition when it
// matches any alternative, and "which" queries return the 1-based position of
// the first one that matches.
//
// Features are written as comma-separated "dx|dy|colors" entries, for example
// "0|0|ff0000,4|-1|00ff00|0000ff".
//
// # Similarity
//
// Callers express strictness as a similarity in [0, 1]. It becomes an integer
// distance budget as round((1 - similarity) * max), where max is 765 per pixel
// for colors and templates and 255 per point for features. Similarity 1 only
// accepts exact matches.
//
// # Scan Orders
//
// Find operations walk a rectangle in one of eight Orders and stop at the
// first match. The rectangle runs from (x, y) inclusive to (x1, y1)
// exclusive; -1 for x1 or y1 extends it to the bitmap edge. Searches without
// a match return NotFound, (-1, -1).
//
// # Thread Safety
//
// Every operation is a synchronous, read-only scan. Concurrent searches over
// the same Bitmap are safe as long as nothing writes to its pixel memory.
package vision
