// Package builder drives one ingestion batch: discovery, staging,
// pyramidal conversion, metadata extraction, deep-zoom tiling and result
// assembly. Slides are processed sequentially and fail independently; the
// only hard batch failure is an unusable output directory. Callers wanting
// parallel throughput run multiple batches in separate processes, each
// with an exclusive scratch directory.
package builder

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/google/uuid"

	"github.com/AnyUserName/slidetiff-cli/internal/discover"
	"github.com/AnyUserName/slidetiff-cli/internal/dzi"
	"github.com/AnyUserName/slidetiff-cli/internal/hasher"
	"github.com/AnyUserName/slidetiff-cli/internal/pyramid"
	"github.com/AnyUserName/slidetiff-cli/internal/result"
)

// Config holds all parameters for one batch run.
type Config struct {
	// Files is the explicit batch. When nil, InputDir is listed instead
	// (flat, no recursion).
	Files     []string
	InputDir  string
	OutputDir string
	Profile   Profile
	// Toolchain defaults to the real implementations when nil.
	Toolchain *Toolchain
	Verbose   bool
}

// Build runs the full pipeline and returns the batch result. Per-file
// failures land in the result's error map; Build itself errors only on
// catastrophic conditions such as an uncreatable output directory.
func Build(cfg Config) (*result.Result, error) {
	tc := cfg.Toolchain
	if tc == nil {
		tc = DefaultToolchain()
	}
	if cfg.Profile.Name == "" {
		cfg.Profile = GetProfile("default")
	}

	if err := os.MkdirAll(cfg.OutputDir, 0o755); err != nil {
		return nil, fmt.Errorf("create output dir: %w", err)
	}

	files := cfg.Files
	if files == nil {
		var err error
		files, err = discover.ListBatch(cfg.InputDir)
		if err != nil {
			return nil, err
		}
	}

	res := result.New()

	candidates, discoveryErrs := discover.Partition(files)
	for name, msg := range discoveryErrs {
		res.FileErrors[name] = msg
	}
	logVerbose(cfg, "discovered %d slide candidates (%d discovery errors)",
		len(candidates), len(discoveryErrs))

	for _, cand := range candidates {
		processSlide(cfg, tc, cand, res)
	}

	res.Normalize()
	res.ComputeStats()
	return res, nil
}

// processSlide runs one candidate through the per-slide state machine:
// staged → converted → tags → properties → dzi → validated. All failures
// are recorded against the candidate's filename; companions discovered
// for it are marked consumed even when a later stage fails, so they are
// not misread as orphan TIFF candidates by the caller.
func processSlide(cfg Config, tc *Toolchain, cand discover.Candidate, res *result.Result) {
	name := filepath.Base(cand.Path)
	logVerbose(cfg, "processing %s (%s)", name, cand.Kind)

	fail := func(stage string, err error) {
		res.FileErrors[name] = fmt.Sprintf("%s: %v", stage, err)
		consumeCompanions(res, cand)
	}

	if err := discover.Stage(cand.Renames); err != nil {
		fail("stage", err)
		return
	}

	identity := uuid.New()
	destDir := filepath.Join(cfg.OutputDir, identity.String())
	if err := os.MkdirAll(destDir, 0o755); err != nil {
		fail("output", err)
		return
	}
	canonical := filepath.Join(destDir, identity.String()+".tif")

	if cand.Kind == discover.KindTIFF {
		// Plain TIFFs are usable as-is; no re-encode.
		if err := copyFile(cand.Path, canonical); err != nil {
			fail("copy", err)
			return
		}
	} else {
		opts := pyramid.Options{
			TileSize: cfg.Profile.TileSize,
			Quality:  cfg.Profile.Quality,
			BigTIFF:  cfg.Profile.BigTIFF,
		}
		if err := tc.Encoder.Convert(cand.Path, canonical, opts); err != nil {
			fail("conversion", err)
			return
		}
	}

	p := newPending(identity, canonical, cand)

	// Both extraction attempts run regardless of each other's outcome;
	// their errors only matter if validation fails afterwards.
	var extractionErrs []string

	tags, err := tc.Tags.ReadTags(canonical)
	if err != nil {
		extractionErrs = append(extractionErrs, fmt.Sprintf("tags: %v", err))
	}
	p.ApplyTags(tags)

	// Vendor side-channel metadata lives in the original file, not in the
	// re-encoded pyramid.
	props, err := tc.Properties.ReadProperties(cand.Path)
	if err != nil {
		extractionErrs = append(extractionErrs, fmt.Sprintf("properties: %v", err))
	} else {
		p.ApplyProperties(props)
	}

	var dziErr error
	if cfg.Profile.DZI && cand.Kind != discover.KindTIFF {
		stem := filepath.Join(destDir, identity.String())
		dziPath, err := tc.Tiles.Generate(canonical, stem, dzi.Options{
			TileSize: cfg.Profile.TileSize,
			Quality:  cfg.Profile.Quality,
		})
		if err != nil {
			dziErr = err
		} else {
			p.AttachDZI(dziPath)
		}
	}

	if err := p.Validate(); err != nil {
		msgs := append(extractionErrs, fmt.Sprintf("validation: %v", err))
		res.FileErrors[name] = strings.Join(msgs, "; ")
		consumeCompanions(res, cand)
		return
	}

	if err := emitRecords(cfg, p, name, res); err != nil {
		fail("emit", err)
		return
	}

	res.ConsumedFiles = append(res.ConsumedFiles, name)
	consumeCompanions(res, cand)

	// A failed tile pyramid does not reject the flat image, but the
	// caller still learns about it.
	if dziErr != nil {
		res.FileErrors[name] = fmt.Sprintf("dzi: %v", dziErr)
	}

	logVerbose(cfg, "done %s → %s", name, identity)
}

// emitRecords turns a validated pending slide into persistable records.
// Records are appended only once all of them could be built, so a stat or
// checksum failure cannot leave an image without its backing files.
func emitRecords(cfg Config, p *pending, name string, res *result.Result) error {
	img := result.Image{
		ID:               p.Identity,
		Name:             name,
		Width:            p.Width,
		Height:           p.Height,
		ResolutionLevels: p.ResolutionLevels,
		ColorSpace:       p.ColorSpace,
		VoxelWidthMM:     p.VoxelWidthMM,
		VoxelHeightMM:    p.VoxelHeightMM,
		VoxelDepthMM:     p.VoxelDepthMM,
	}

	tiffRecord, err := fileRecord(cfg.OutputDir, p.Identity, p.CanonicalPath, result.FileTypeTIFF)
	if err != nil {
		return err
	}
	files := []result.ImageFile{tiffRecord}
	var folders []result.Folder

	for _, artifact := range p.SourceFiles {
		rec, err := fileRecord(cfg.OutputDir, p.Identity, artifact, result.FileTypeDZI)
		if err != nil {
			return err
		}
		files = append(files, rec)

		// The descriptor implies its sibling tile tree.
		tileDir := strings.TrimSuffix(artifact, ".dzi") + "_files"
		rel, err := filepath.Rel(cfg.OutputDir, tileDir)
		if err != nil {
			rel = tileDir
		}
		folders = append(folders, result.Folder{
			ImageID: p.Identity,
			Path:    filepath.ToSlash(rel),
		})
	}

	res.NewImages = append(res.NewImages, img)
	res.NewImageFiles = append(res.NewImageFiles, files...)
	res.NewFolders = append(res.NewFolders, folders...)
	return nil
}

func fileRecord(outDir string, id uuid.UUID, path string, ft result.FileType) (result.ImageFile, error) {
	info, err := os.Stat(path)
	if err != nil {
		return result.ImageFile{}, err
	}
	checksum, err := hasher.ChecksumFile(path)
	if err != nil {
		return result.ImageFile{}, err
	}
	rel, err := filepath.Rel(outDir, path)
	if err != nil {
		rel = path
	}
	return result.ImageFile{
		ImageID:  id,
		Type:     ft,
		Path:     filepath.ToSlash(rel),
		Size:     info.Size(),
		Checksum: checksum,
	}, nil
}

// consumeCompanions marks every companion of a slide consumed. The primary
// file is consumed separately, and only on success: a failed primary stays
// visible to later batches.
func consumeCompanions(res *result.Result, cand discover.Candidate) {
	for _, c := range cand.Companions {
		res.ConsumedFiles = append(res.ConsumedFiles, filepath.Base(c))
	}
}

func copyFile(src, dst string) error {
	in, err := os.Open(src)
	if err != nil {
		return err
	}
	defer in.Close()
	out, err := os.Create(dst)
	if err != nil {
		return err
	}
	if _, err := out.ReadFrom(in); err != nil {
		out.Close()
		return err
	}
	return out.Close()
}

func logVerbose(cfg Config, format string, args ...any) {
	if cfg.Verbose {
		fmt.Fprintf(os.Stderr, "[slidetiff] "+format+"\n", args...)
	}
}
