// Package discover partitions a batch of uploaded files into logical slide
// candidates. Multi-file vendor formats (Mirax, Hamamatsu VMS/VMU) are
// resolved through their own manifest files; everything else is either a
// direct-conversion format or an as-is TIFF candidate. Discovery is
// read-only: staging renames are returned as a plan, never executed here.
package discover

import (
	"path/filepath"
	"strings"
)

// Kind is the handling class of a candidate slide file.
type Kind int

const (
	// KindUnknown is an unrecognized extension; such files are still
	// attempted as plain TIFFs when nothing else claims them.
	KindUnknown Kind = iota
	// KindTIFF is a plain TIFF, usable as-is.
	KindTIFF
	// KindConvert is a single-file vendor format needing pyramidal
	// re-encoding (svs, ndpi, scn, bif).
	KindConvert
	// KindMirax is a Mirax .mrxs slide backed by a Slidedat.ini manifest.
	KindMirax
	// KindVMS is a Hamamatsu .vms/.vmu slide whose index file references
	// its companions directly.
	KindVMS
)

func (k Kind) String() string {
	switch k {
	case KindTIFF:
		return "tiff"
	case KindConvert:
		return "convert"
	case KindMirax:
		return "mirax"
	case KindVMS:
		return "vms"
	}
	return "unknown"
}

var convertExtensions = map[string]bool{
	".svs":  true,
	".ndpi": true,
	".scn":  true,
	".bif":  true,
}

// Classify returns the handling class for a path, by extension,
// case-insensitively.
func Classify(path string) Kind {
	switch ext := strings.ToLower(filepath.Ext(path)); {
	case ext == ".mrxs":
		return KindMirax
	case ext == ".vms" || ext == ".vmu":
		return KindVMS
	case convertExtensions[ext]:
		return KindConvert
	case ext == ".tif" || ext == ".tiff":
		return KindTIFF
	}
	return KindUnknown
}
