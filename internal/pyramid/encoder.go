// Package pyramid re-encodes a source slide into a canonical multi-level
// TIFF: level 0 at full resolution, each further level halved, so viewers
// can read any zoom without decoding the full image.
package pyramid

import "image"

// Options control pyramid encoding.
type Options struct {
	// TileSize bounds the smallest pyramid level: levels are added until
	// the longest edge fits a single tile.
	TileSize int
	// Quality applies to lossy tile encodings (1-100).
	Quality int
	// BigTIFF selects the 64-bit TIFF container for very large slides.
	BigTIFF bool
}

// DefaultOptions are the canonical conversion settings.
var DefaultOptions = Options{
	TileSize: 2560,
	Quality:  70,
	BigTIFF:  true,
}

// Encoder converts one source file into a canonical pyramid TIFF at dst.
type Encoder interface {
	Convert(src, dst string, opts Options) error
}

// Levels builds the pyramid level images for img: level 0 is the input,
// each next level halves both dimensions (rounding up), stopping once the
// longest edge fits within tileSize. There is always at least one level.
func Levels(img image.Image, tileSize int) []image.Image {
	if tileSize <= 0 {
		tileSize = DefaultOptions.TileSize
	}
	levels := []image.Image{img}
	w := img.Bounds().Dx()
	h := img.Bounds().Dy()
	for max(w, h) > tileSize && w > 1 && h > 1 {
		w = (w + 1) / 2
		h = (h + 1) / 2
		levels = append(levels, downsample(levels[len(levels)-1], w, h))
	}
	return levels
}

func max(a, b int) int {
	if a > b {
		return a
	}
	return b
}
