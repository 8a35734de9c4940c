// Package meta extracts slide metadata from two independent sources: the
// TIFF tag structure of a canonical pyramid file, and vendor side-channel
// properties embedded in the original scanner output. Either source may be
// incomplete for a given vendor; callers merge them with tag values taking
// precedence.
package meta

import (
	"strconv"
	"strings"
)

// ColorSpace is the interpretation of the pixel samples.
type ColorSpace string

const (
	ColorSpaceGray  ColorSpace = "GRAY"
	ColorSpaceRGB   ColorSpace = "RGB"
	ColorSpaceRGBA  ColorSpace = "RGBA"
	ColorSpaceYCBCR ColorSpace = "YCBCR"
)

// TagInfo holds everything readable from the TIFF page structure. A failed
// read returns whatever was extracted before the failure alongside the
// error, so partial tag data can still seed the merge.
type TagInfo struct {
	Width            int
	Height           int
	ResolutionLevels int
	ColorSpace       ColorSpace
	VoxelWidthMM     float64
	VoxelHeightMM    float64
}

// Well-known property keys exposed by the slide-properties reader.
const (
	PropMPPX         = "openslide.mpp-x" // microns per pixel
	PropMPPY         = "openslide.mpp-y"
	PropLevel0Width  = "openslide.level[0].width"
	PropLevel0Height = "openslide.level[0].height"
	PropLevelCount   = "openslide.level-count"
)

// Properties is a string-keyed vendor property map.
type Properties map[string]string

// Float returns the property parsed as a float, if present and valid.
func (p Properties) Float(key string) (float64, bool) {
	v, ok := p[key]
	if !ok {
		return 0, false
	}
	f, err := strconv.ParseFloat(strings.TrimSpace(v), 64)
	if err != nil {
		return 0, false
	}
	return f, true
}

// Int returns the property parsed as an integer, if present and valid.
func (p Properties) Int(key string) (int, bool) {
	f, ok := p.Float(key)
	if !ok {
		return 0, false
	}
	return int(f), true
}

// TIFF ResolutionUnit tag values.
const (
	resolutionUnitNone       = 1
	resolutionUnitInch       = 2
	resolutionUnitCentimeter = 3
)

// SpacingMM converts a TIFF resolution (pixels per unit) into millimeters
// per pixel. Units other than inch and centimeter are rejected, as are
// zero or negative resolutions.
func SpacingMM(unit int, pixelsPerUnit float64) (float64, error) {
	if pixelsPerUnit <= 0 {
		return 0, &ExtractionError{Reason: "invalid resolution value"}
	}
	switch unit {
	case resolutionUnitInch:
		return 25.4 / pixelsPerUnit, nil
	case resolutionUnitCentimeter:
		return 10 / pixelsPerUnit, nil
	default:
		return 0, &ExtractionError{Reason: "unsupported resolution unit " + strconv.Itoa(unit)}
	}
}

// ExtractionError marks a metadata read that failed validation rather than
// I/O. It fails the extraction attempt, not necessarily the slide.
type ExtractionError struct {
	Reason string
}

func (e *ExtractionError) Error() string { return e.Reason }

// colorSpaceFromPhotometric maps a TIFF photometric interpretation name to
// a color space. Unknown names map to the empty value and are filled from
// slide properties instead.
func colorSpaceFromPhotometric(name string) ColorSpace {
	switch normalizeName(name) {
	case "MINISBLACK", "BLACKISZERO", "GRAY":
		return ColorSpaceGray
	case "RGB":
		return ColorSpaceRGB
	case "RGBA":
		return ColorSpaceRGBA
	case "YCBCR":
		return ColorSpaceYCBCR
	}
	return ""
}

// normalizeName uppercases and strips separators so "YCbCr", "YCBCR" and
// "YCbCr " compare equal.
func normalizeName(s string) string {
	var b strings.Builder
	for _, r := range s {
		if r == ' ' || r == '_' || r == '-' {
			continue
		}
		b.WriteRune(r)
	}
	return strings.ToUpper(b.String())
}
