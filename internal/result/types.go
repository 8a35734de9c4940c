// Package result defines the batch output records of an ingestion run:
// logical images ready for persistence, their backing files and tile
// folders, the consumed input filenames and the per-file error map.
// Ownership of these records transfers to the caller on return; the
// pipeline never mutates them afterwards.
package result

import (
	"github.com/google/uuid"

	"github.com/AnyUserName/slidetiff-cli/internal/meta"
)

// Result is the top-level outcome of one ingestion batch.
type Result struct {
	Version     int    `json:"version"`
	GeneratedAt string `json:"generated_at"`

	// ConsumedFiles are input filenames fully accounted for: they became
	// an image or were folded in as companions. Never reprocess these.
	ConsumedFiles []string `json:"consumed_files"`

	// FileErrors maps an input filename to a human-readable error. A file
	// may appear here and still be consumed (e.g. a non-fatal tile
	// pyramid failure on an otherwise valid slide).
	FileErrors map[string]string `json:"file_errors"`

	NewImages     []Image     `json:"new_images"`
	NewImageFiles []ImageFile `json:"new_image_files"`
	NewFolders    []Folder    `json:"new_folders"`

	Stats Stats `json:"stats"`
}

// Image is one logical slide image ready for persistence.
type Image struct {
	ID               uuid.UUID       `json:"id"`
	Name             string          `json:"name"` // original input filename
	Width            int             `json:"width"`
	Height           int             `json:"height"`
	ResolutionLevels int             `json:"resolution_levels"`
	ColorSpace       meta.ColorSpace `json:"color_space,omitempty"`
	VoxelWidthMM     float64         `json:"voxel_width_mm"`
	VoxelHeightMM    float64         `json:"voxel_height_mm"`
	// VoxelDepthMM is always null for 2D slide images.
	VoxelDepthMM *float64 `json:"voxel_depth_mm"`
}

// FileType tags a backing file record.
type FileType string

const (
	FileTypeTIFF FileType = "TIFF"
	FileTypeDZI  FileType = "DZI"
)

// ImageFile is one backing file of an image: the canonical TIFF or the DZI
// descriptor.
type ImageFile struct {
	ImageID  uuid.UUID `json:"image_id"`
	Type     FileType  `json:"type"`
	Path     string    `json:"path"`
	Size     int64     `json:"size"`
	Checksum string    `json:"checksum,omitempty"` // xxhash64 hex
}

// Folder is one directory tree belonging to an image (the DZI tile tree).
type Folder struct {
	ImageID uuid.UUID `json:"image_id"`
	Path    string    `json:"path"`
}

// Stats aggregates batch metrics.
type Stats struct {
	TotalImages      int   `json:"total_images"`
	TotalFiles       int   `json:"total_files"`
	TotalFolders     int   `json:"total_folders"`
	TotalConsumed    int   `json:"total_consumed"`
	TotalErrors      int   `json:"total_errors"`
	TotalOutputBytes int64 `json:"total_output_bytes"`
}

// SupportedResultVersion is the current schema version.
const SupportedResultVersion = 1
