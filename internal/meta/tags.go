package meta

import (
	"fmt"

	gobio "github.com/AlanRace/go-bio"
)

// TagReader reads TIFF tag metadata from the canonical pyramid file.
type TagReader struct{}

// ReadTags opens the TIFF at path and extracts dimensions, level count,
// color space and voxel spacing from page 0. On error the returned TagInfo
// still carries every field read before the failure.
func (TagReader) ReadTags(path string) (TagInfo, error) {
	var info TagInfo

	f, err := gobio.Open(path)
	if err != nil {
		return info, fmt.Errorf("open tiff: %w", err)
	}
	defer f.Close()

	if len(f.IFDList) == 0 {
		return info, fmt.Errorf("tiff has no pages")
	}
	ifd := f.IFDList[0]

	w, h := ifd.GetImageDimensions()
	info.Width = int(w)
	info.Height = int(h)
	info.ResolutionLevels = len(f.IFDList)

	if pi, err := ifd.GetPhotometricInterpretation(); err == nil {
		info.ColorSpace = colorSpaceFromPhotometric(pi.String())
	}

	if ifd.GetTag(gobio.XResolution) == nil {
		return info, &ExtractionError{Reason: "no resolution tags"}
	}
	xres, yres, _, err := ifd.GetResolution()
	if err != nil {
		return info, fmt.Errorf("read resolution: %w", err)
	}
	unit, err := ifd.GetResolutionUnit()
	if err != nil {
		return info, fmt.Errorf("read resolution unit: %w", err)
	}

	vw, err := SpacingMM(int(unit), xres)
	if err != nil {
		return info, fmt.Errorf("x spacing: %w", err)
	}
	vh, err := SpacingMM(int(unit), yres)
	if err != nil {
		return info, fmt.Errorf("y spacing: %w", err)
	}
	info.VoxelWidthMM = vw
	info.VoxelHeightMM = vh

	return info, nil
}
