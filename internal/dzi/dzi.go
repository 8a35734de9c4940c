// Package dzi writes Deep Zoom Image pyramids: an XML descriptor plus a
// directory tree of per-level tiles, the layout OpenSeadragon-style
// viewers stream for pan/zoom over gigapixel slides.
package dzi

import (
	"encoding/xml"
	"fmt"
	"image"
	"os"
	"path/filepath"

	"github.com/disintegration/imaging"
)

const deepZoomNamespace = "http://schemas.microsoft.com/deepzoom/2008"

// Options control tile generation. Tile size is always an explicit
// parameter of the caller, never a package global.
type Options struct {
	TileSize int
	Overlap  int
	Format   string // tile image format, "jpeg" or "png"
	Quality  int    // jpeg quality 1-100
}

func (o Options) withDefaults() Options {
	if o.TileSize <= 0 {
		o.TileSize = 2560
	}
	if o.Format == "" {
		o.Format = "jpeg"
	}
	if o.Quality <= 0 || o.Quality > 100 {
		o.Quality = 70
	}
	if o.Overlap < 0 {
		o.Overlap = 0
	}
	return o
}

// Descriptor is the .dzi XML document.
type Descriptor struct {
	XMLName  xml.Name `xml:"Image"`
	Xmlns    string   `xml:"xmlns,attr"`
	TileSize int      `xml:"TileSize,attr"`
	Overlap  int      `xml:"Overlap,attr"`
	Format   string   `xml:"Format,attr"`
	Size     Size     `xml:"Size"`
}

// Size is the full-resolution pixel size of the pyramid.
type Size struct {
	Width  int `xml:"Width,attr"`
	Height int `xml:"Height,attr"`
}

// Generate writes <stem>.dzi and <stem>_files/<level>/<col>_<row>.<ext>
// for every level from ceil(log2(longest edge)) down to 0, and returns the
// descriptor path. Regenerating into the same stem overwrites prior tiles.
func Generate(img image.Image, stem string, opts Options) (string, error) {
	opts = opts.withDefaults()

	w := img.Bounds().Dx()
	h := img.Bounds().Dy()
	if w == 0 || h == 0 {
		return "", fmt.Errorf("deep zoom: empty image")
	}

	maxLevel := levelCount(w, h) - 1
	filesDir := stem + "_files"

	level := img
	lw, lh := w, h
	for l := maxLevel; l >= 0; l-- {
		if err := writeLevel(level, filepath.Join(filesDir, fmt.Sprintf("%d", l)), opts); err != nil {
			return "", err
		}
		if l == 0 {
			break
		}
		lw = halve(lw)
		lh = halve(lh)
		level = imaging.Resize(level, lw, lh, imaging.Lanczos)
	}

	desc := Descriptor{
		Xmlns:    deepZoomNamespace,
		TileSize: opts.TileSize,
		Overlap:  opts.Overlap,
		Format:   opts.Format,
		Size:     Size{Width: w, Height: h},
	}
	data, err := xml.MarshalIndent(desc, "", "  ")
	if err != nil {
		return "", fmt.Errorf("deep zoom descriptor: %w", err)
	}
	data = append([]byte(xml.Header), data...)
	data = append(data, '\n')

	dziPath := stem + ".dzi"
	if err := os.WriteFile(dziPath, data, 0o644); err != nil {
		return "", fmt.Errorf("deep zoom descriptor: %w", err)
	}
	return dziPath, nil
}

// writeLevel tiles one level image into dir.
func writeLevel(level image.Image, dir string, opts Options) error {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("deep zoom level: %w", err)
	}

	w := level.Bounds().Dx()
	h := level.Bounds().Dy()
	cols := tileCount(w, opts.TileSize)
	rows := tileCount(h, opts.TileSize)

	for row := 0; row < rows; row++ {
		for col := 0; col < cols; col++ {
			x0 := clamp(col*opts.TileSize-opts.Overlap, 0, w)
			y0 := clamp(row*opts.TileSize-opts.Overlap, 0, h)
			x1 := clamp((col+1)*opts.TileSize+opts.Overlap, 0, w)
			y1 := clamp((row+1)*opts.TileSize+opts.Overlap, 0, h)

			tile := imaging.Crop(level, image.Rect(x0, y0, x1, y1))
			name := filepath.Join(dir, fmt.Sprintf("%d_%d.%s", col, row, extension(opts.Format)))
			if err := imaging.Save(tile, name, imaging.JPEGQuality(opts.Quality)); err != nil {
				return fmt.Errorf("deep zoom tile %s: %w", filepath.Base(name), err)
			}
		}
	}
	return nil
}

// levelCount is ceil(log2(longest edge)) + 1: the number of levels down to
// a single pixel.
func levelCount(w, h int) int {
	longest := w
	if h > longest {
		longest = h
	}
	count := 1
	for size := 1; size < longest; size *= 2 {
		count++
	}
	return count
}

func halve(v int) int {
	v = (v + 1) / 2
	if v < 1 {
		return 1
	}
	return v
}

func tileCount(size, tile int) int {
	return (size + tile - 1) / tile
}

func clamp(v, lo, hi int) int {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}

func extension(format string) string {
	if format == "png" {
		return "png"
	}
	return "jpeg"
}
