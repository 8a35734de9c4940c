package builder

import (
	"fmt"
	"strings"

	"github.com/google/uuid"

	"github.com/AnyUserName/slidetiff-cli/internal/discover"
	"github.com/AnyUserName/slidetiff-cli/internal/meta"
)

// pending is the mutable per-slide builder. One is created per discovered
// logical slide and filled stage by stage: tags, then slide properties,
// then the deep-zoom descriptor. Validate is the only authority on whether
// the slide becomes an image.
type pending struct {
	// Identity keys the output filenames and the persisted image record.
	Identity uuid.UUID
	// CanonicalPath is the converted (or copied) pyramid TIFF.
	CanonicalPath string
	Kind          discover.Kind

	Width            int
	Height           int
	ResolutionLevels int
	ColorSpace       meta.ColorSpace
	VoxelWidthMM     float64
	VoxelHeightMM    float64
	// VoxelDepthMM stays nil: slides are 2D.
	VoxelDepthMM *float64

	// SourceFiles are generated artifacts packaged alongside the TIFF
	// (the .dzi descriptor).
	SourceFiles []string
	// Associated are the original input filenames folded into this slide;
	// they must never be reprocessed as independent images.
	Associated []string
}

func newPending(identity uuid.UUID, canonical string, c discover.Candidate) *pending {
	p := &pending{
		Identity:      identity,
		CanonicalPath: canonical,
		Kind:          c.Kind,
	}
	p.Associated = append(p.Associated, c.Companions...)
	return p
}

// ApplyTags copies tag-reader results into the builder. Tags run first and
// their values are authoritative: later stages never overwrite them.
func (p *pending) ApplyTags(info meta.TagInfo) {
	if info.Width > 0 {
		p.Width = info.Width
	}
	if info.Height > 0 {
		p.Height = info.Height
	}
	if info.ResolutionLevels > 0 {
		p.ResolutionLevels = info.ResolutionLevels
	}
	if info.ColorSpace != "" {
		p.ColorSpace = info.ColorSpace
	}
	if info.VoxelWidthMM > 0 {
		p.VoxelWidthMM = info.VoxelWidthMM
	}
	if info.VoxelHeightMM > 0 {
		p.VoxelHeightMM = info.VoxelHeightMM
	}
}

// ApplyProperties gap-fills fields the tag reader left unset from the
// vendor property map. Populated fields are never overwritten.
func (p *pending) ApplyProperties(props meta.Properties) {
	if p.Width == 0 {
		if v, ok := props.Int(meta.PropLevel0Width); ok && v > 0 {
			p.Width = v
		}
	}
	if p.Height == 0 {
		if v, ok := props.Int(meta.PropLevel0Height); ok && v > 0 {
			p.Height = v
		}
	}
	if p.ResolutionLevels == 0 {
		if v, ok := props.Int(meta.PropLevelCount); ok && v > 0 {
			p.ResolutionLevels = v
		}
	}
	if p.VoxelWidthMM == 0 {
		if v, ok := props.Float(meta.PropMPPX); ok && v > 0 {
			p.VoxelWidthMM = v / 1000 // µm → mm
		}
	}
	if p.VoxelHeightMM == 0 {
		if v, ok := props.Float(meta.PropMPPY); ok && v > 0 {
			p.VoxelHeightMM = v / 1000
		}
	}
}

// AttachDZI registers the generated descriptor as a packaged artifact.
func (p *pending) AttachDZI(path string) {
	p.SourceFiles = append(p.SourceFiles, path)
}

// Validate fails when any required field is still unset after both
// extraction attempts, naming every missing field and the source format.
func (p *pending) Validate() error {
	var missing []string
	if p.Width <= 0 {
		missing = append(missing, "image width")
	}
	if p.Height <= 0 {
		missing = append(missing, "image height")
	}
	if p.ResolutionLevels <= 0 {
		missing = append(missing, "resolution levels")
	}
	if p.VoxelWidthMM <= 0 {
		missing = append(missing, "voxel width")
	}
	if p.VoxelHeightMM <= 0 {
		missing = append(missing, "voxel height")
	}
	if len(missing) > 0 {
		return fmt.Errorf("could not determine %s for %s file", strings.Join(missing, ", "), p.Kind)
	}
	return nil
}
