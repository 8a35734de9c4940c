package meta

import (
	"fmt"
	"strconv"
	"strings"

	gobio "github.com/AlanRace/go-bio"
)

// PropertyReader derives vendor-neutral slide properties from the original
// scanner file. It fills the gaps the canonical TIFF's own tags leave:
// Aperio and friends keep micron-per-pixel spacing in the ImageDescription
// side channel rather than in resolution tags.
type PropertyReader struct{}

// ReadProperties opens the slide at path and builds the property map.
func (PropertyReader) ReadProperties(path string) (Properties, error) {
	f, err := gobio.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open slide: %w", err)
	}
	defer f.Close()

	if len(f.IFDList) == 0 {
		return nil, fmt.Errorf("slide has no pages")
	}
	ifd := f.IFDList[0]

	props := Properties{}
	props[PropLevelCount] = strconv.Itoa(len(f.IFDList))

	w, h := ifd.GetImageDimensions()
	props[PropLevel0Width] = strconv.Itoa(int(w))
	props[PropLevel0Height] = strconv.Itoa(int(h))

	if t := ifd.GetTag(gobio.ImageDescription); t != nil {
		for k, v := range ParseVendorDescription(tagText(t.String())) {
			if strings.EqualFold(k, "MPP") {
				props[PropMPPX] = v
				props[PropMPPY] = v
			}
		}
	}

	// Fall back to resolution tags when the description carries no MPP.
	if _, ok := props[PropMPPX]; !ok {
		if ifd.GetTag(gobio.XResolution) != nil {
			xres, yres, _, err := ifd.GetResolution()
			if err == nil {
				unit, uerr := ifd.GetResolutionUnit()
				if uerr == nil {
					if mx, err := mppFromResolution(int(unit), xres); err == nil {
						props[PropMPPX] = formatFloat(mx)
					}
					if my, err := mppFromResolution(int(unit), yres); err == nil {
						props[PropMPPY] = formatFloat(my)
					}
				}
			}
		}
	}

	return props, nil
}

// mppFromResolution converts pixels-per-unit into microns per pixel.
func mppFromResolution(unit int, pixelsPerUnit float64) (float64, error) {
	mm, err := SpacingMM(unit, pixelsPerUnit)
	if err != nil {
		return 0, err
	}
	return mm * 1000, nil
}

func formatFloat(f float64) string {
	return strconv.FormatFloat(f, 'g', -1, 64)
}

// ParseVendorDescription splits an ImageDescription side channel into
// key/value pairs. Aperio writes pipe-separated "key = value" segments;
// segments without an equals sign are ignored.
func ParseVendorDescription(desc string) map[string]string {
	pairs := map[string]string{}
	for _, segment := range strings.Split(desc, "|") {
		k, v, ok := strings.Cut(segment, "=")
		if !ok {
			continue
		}
		k = strings.TrimSpace(k)
		v = strings.TrimSpace(v)
		if k == "" || v == "" {
			continue
		}
		pairs[k] = v
	}
	return pairs
}

// tagText strips the "TagName: " prefix a stringified tag carries.
func tagText(s string) string {
	if _, rest, ok := strings.Cut(s, ": "); ok {
		return rest
	}
	return s
}
