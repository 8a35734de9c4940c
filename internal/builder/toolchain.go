package builder

import (
	"fmt"
	"image"
	"os"
	"path/filepath"

	"github.com/AnyUserName/slidetiff-cli/internal/dzi"
	"github.com/AnyUserName/slidetiff-cli/internal/meta"
	"github.com/AnyUserName/slidetiff-cli/internal/pyramid"
)

// TagSource reads TIFF tag metadata from a canonical pyramid file.
type TagSource interface {
	ReadTags(path string) (meta.TagInfo, error)
}

// PropertySource reads vendor slide properties from a source file.
type PropertySource interface {
	ReadProperties(path string) (meta.Properties, error)
}

// TileGenerator produces a deep-zoom pyramid for the TIFF at tiffPath
// under the given output stem and returns the descriptor path.
type TileGenerator interface {
	Generate(tiffPath, stem string, opts dzi.Options) (string, error)
}

// Toolchain bundles the external collaborators the pipeline drives. Tests
// substitute fakes; production code uses DefaultToolchain.
type Toolchain struct {
	Encoder    pyramid.Encoder
	Tags       TagSource
	Properties PropertySource
	Tiles      TileGenerator
}

// DefaultToolchain wires the real implementations.
func DefaultToolchain() *Toolchain {
	return &Toolchain{
		Encoder:    pyramid.TIFFEncoder{},
		Tags:       meta.TagReader{},
		Properties: meta.PropertyReader{},
		Tiles:      imageTiles{},
	}
}

// imageTiles decodes the canonical TIFF and tiles it with the dzi package.
type imageTiles struct{}

func (imageTiles) Generate(tiffPath, stem string, opts dzi.Options) (string, error) {
	f, err := os.Open(tiffPath)
	if err != nil {
		return "", fmt.Errorf("open %s: %w", filepath.Base(tiffPath), err)
	}
	defer f.Close()

	img, _, err := image.Decode(f)
	if err != nil {
		return "", fmt.Errorf("decode %s: %w", filepath.Base(tiffPath), err)
	}
	return dzi.Generate(img, stem, opts)
}
