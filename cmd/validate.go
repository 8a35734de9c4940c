package cmd

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/AnyUserName/slidetiff-cli/internal/result"
)

var validateCmd = &cobra.Command{
	Use:   "validate <result_path_or_dir>",
	Short: "Validate a batch result and check emitted files exist",
	Args:  cobra.ExactArgs(1),
	RunE:  runValidate,
}

func init() {
	rootCmd.AddCommand(validateCmd)
}

func runValidate(_ *cobra.Command, args []string) error {
	path := args[0]

	info, err := os.Stat(path)
	if err != nil {
		return fmt.Errorf("stat %s: %w", path, err)
	}
	if info.IsDir() {
		path = filepath.Join(path, ResultFileName)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("read result: %w", err)
	}
	var res result.Result
	if err := json.Unmarshal(data, &res); err != nil {
		return fmt.Errorf("parse result: %w", err)
	}

	baseDir := filepath.Dir(path)
	errs := validateResult(&res, baseDir)

	if len(errs) == 0 {
		fmt.Println("  ✓ Result is valid")
		fmt.Printf("  ✓ %d images, %d files, %d folders — all present\n",
			res.Stats.TotalImages, res.Stats.TotalFiles, res.Stats.TotalFolders)
		return nil
	}

	fmt.Printf("  ✗ Result has %d error(s):\n", len(errs))
	for _, e := range errs {
		fmt.Printf("    • %s\n", e)
	}
	return fmt.Errorf("validation failed with %d errors", len(errs))
}

func validateResult(res *result.Result, baseDir string) []string {
	var errs []string

	if res.Version != result.SupportedResultVersion {
		errs = append(errs, fmt.Sprintf("unsupported result version: %d", res.Version))
	}

	filesByImage := map[string]int{}
	seenPaths := map[string]bool{}

	for i, f := range res.NewImageFiles {
		filesByImage[f.ImageID.String()]++

		if f.Type != result.FileTypeTIFF && f.Type != result.FileTypeDZI {
			errs = append(errs, fmt.Sprintf("file[%d]: unknown type %q", i, f.Type))
		}
		if f.Path == "" {
			errs = append(errs, fmt.Sprintf("file[%d]: missing path", i))
			continue
		}
		if seenPaths[f.Path] {
			errs = append(errs, fmt.Sprintf("file[%d]: duplicate path %q", i, f.Path))
		}
		seenPaths[f.Path] = true

		full := filepath.Join(baseDir, filepath.FromSlash(f.Path))
		info, err := os.Stat(full)
		if err != nil {
			errs = append(errs, fmt.Sprintf("file[%d]: not found: %s", i, f.Path))
		} else if f.Size > 0 && info.Size() != f.Size {
			errs = append(errs, fmt.Sprintf("file[%d]: size mismatch: result=%d, disk=%d", i, f.Size, info.Size()))
		}
	}

	for _, img := range res.NewImages {
		if img.Width <= 0 || img.Height <= 0 {
			errs = append(errs, fmt.Sprintf("image %q: invalid dimensions %dx%d", img.Name, img.Width, img.Height))
		}
		if img.ResolutionLevels <= 0 {
			errs = append(errs, fmt.Sprintf("image %q: invalid resolution levels %d", img.Name, img.ResolutionLevels))
		}
		if img.VoxelWidthMM <= 0 || img.VoxelHeightMM <= 0 {
			errs = append(errs, fmt.Sprintf("image %q: invalid spacing %gx%g mm", img.Name, img.VoxelWidthMM, img.VoxelHeightMM))
		}
		if filesByImage[img.ID.String()] == 0 {
			errs = append(errs, fmt.Sprintf("image %q: no backing files", img.Name))
		}
	}

	for i, folder := range res.NewFolders {
		full := filepath.Join(baseDir, filepath.FromSlash(folder.Path))
		info, err := os.Stat(full)
		if err != nil || !info.IsDir() {
			errs = append(errs, fmt.Sprintf("folder[%d]: not found: %s", i, folder.Path))
		}
	}

	if res.Stats.TotalImages != len(res.NewImages) {
		errs = append(errs, fmt.Sprintf("stats.total_images mismatch: %d != %d", res.Stats.TotalImages, len(res.NewImages)))
	}
	if res.Stats.TotalFiles != len(res.NewImageFiles) {
		errs = append(errs, fmt.Sprintf("stats.total_files mismatch: %d != %d", res.Stats.TotalFiles, len(res.NewImageFiles)))
	}

	return errs
}
