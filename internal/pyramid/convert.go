package pyramid

import (
	"fmt"
	"image"
	_ "image/gif"
	_ "image/jpeg"
	_ "image/png"
	"os"
	"path/filepath"

	ctiff "github.com/chai2010/tiff"
	"github.com/disintegration/imaging"

	_ "golang.org/x/image/bmp"
	_ "golang.org/x/image/tiff"
)

// TIFFEncoder is the default Encoder. It decodes the source with the
// registered image codecs and writes a multi-page (Big)TIFF, one page per
// pyramid level.
type TIFFEncoder struct{}

func (TIFFEncoder) Convert(src, dst string, opts Options) error {
	f, err := os.Open(src)
	if err != nil {
		return fmt.Errorf("open %s: %w", filepath.Base(src), err)
	}
	defer f.Close()

	img, _, err := image.Decode(f)
	if err != nil {
		return fmt.Errorf("decode %s: %w", filepath.Base(src), err)
	}

	levels := Levels(img, opts.TileSize)

	tiffType := ctiff.TiffType_ClassicTIFF
	if opts.BigTIFF {
		tiffType = ctiff.TiffType_BigTIFF
	}
	pages := make([][]image.Image, len(levels))
	pageOpts := make([][]*ctiff.Options, len(levels))
	for i, level := range levels {
		pages[i] = []image.Image{level}
		pageOpts[i] = []*ctiff.Options{{
			TiffType: tiffType,
			Compress: ctiff.CompressType_Deflate,
		}}
	}

	out, err := os.Create(dst)
	if err != nil {
		return fmt.Errorf("create %s: %w", filepath.Base(dst), err)
	}
	if err := ctiff.EncodeAll(out, pages, pageOpts); err != nil {
		out.Close()
		os.Remove(dst)
		return fmt.Errorf("encode %s: %w", filepath.Base(dst), err)
	}
	return out.Close()
}

// downsample halves a level with a proper resampling filter; nearest
// neighbour on microscopy tissue produces visible stair artifacts.
func downsample(img image.Image, w, h int) image.Image {
	return imaging.Resize(img, w, h, imaging.Lanczos)
}
