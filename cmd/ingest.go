package cmd

import (
	"fmt"
	"path/filepath"
	"sort"
	"time"

	"github.com/spf13/cobra"

	"github.com/AnyUserName/slidetiff-cli/internal/builder"
	"github.com/AnyUserName/slidetiff-cli/internal/result"
)

// ResultFileName is where the batch result lands inside the output dir.
const ResultFileName = "slidetiff.result.json"

var (
	ingestOutDir   string
	ingestProfile  string
	ingestTileSize int
	ingestQuality  int
	ingestNoDZI    bool
)

var ingestCmd = &cobra.Command{
	Use:   "ingest <input_dir>",
	Short: "Normalize a batch of slide files into pyramidal TIFF + DZI",
	Long: `Scans the input directory (flat, no recursion) for slide files,
resolves multi-file formats through their manifests, converts each
logical slide into a canonical pyramidal TIFF, extracts dimensions and
physical pixel spacing, generates Deep Zoom tile pyramids, and writes
a batch result file.

Each batch must get its own exclusive output directory. Sibling slides
fail independently: one corrupt file never aborts the batch.`,
	Args: cobra.ExactArgs(1),
	RunE: runIngest,
}

func init() {
	ingestCmd.Flags().StringVarP(&ingestOutDir, "out", "o", "./slidetiff_out", "output directory")
	ingestCmd.Flags().StringVarP(&ingestProfile, "profile", "p", "default", "conversion profile")
	ingestCmd.Flags().IntVar(&ingestTileSize, "tile-size", 0, "DZI tile size in px (0 = profile default)")
	ingestCmd.Flags().IntVarP(&ingestQuality, "quality", "q", 0, "tile quality 1-100 (0 = profile default)")
	ingestCmd.Flags().BoolVar(&ingestNoDZI, "no-dzi", false, "skip Deep Zoom tile generation")
	rootCmd.AddCommand(ingestCmd)
}

func runIngest(_ *cobra.Command, args []string) error {
	start := time.Now()

	absInput, err := filepath.Abs(args[0])
	if err != nil {
		return fmt.Errorf("resolve input path: %w", err)
	}
	absOutput, err := filepath.Abs(ingestOutDir)
	if err != nil {
		return fmt.Errorf("resolve output path: %w", err)
	}

	prof := builder.GetProfile(ingestProfile)
	if ingestTileSize > 0 {
		prof.TileSize = ingestTileSize
	}
	if ingestQuality > 0 {
		prof.Quality = ingestQuality
	}
	if ingestNoDZI {
		prof.DZI = false
	}

	logVerbose("input:   %s", absInput)
	logVerbose("output:  %s", absOutput)
	logVerbose("profile: %s (tile=%d, quality=%d, dzi=%v)",
		prof.Name, prof.TileSize, prof.Quality, prof.DZI)

	res, err := builder.Build(builder.Config{
		InputDir:  absInput,
		OutputDir: absOutput,
		Profile:   prof,
		Verbose:   verbose,
	})
	if err != nil {
		return fmt.Errorf("ingest: %w", err)
	}

	resultPath := filepath.Join(absOutput, ResultFileName)
	if err := result.WriteJSON(res, resultPath); err != nil {
		return fmt.Errorf("write result: %w", err)
	}

	printIngestReport(res, time.Since(start))
	return nil
}

func printIngestReport(res *result.Result, elapsed time.Duration) {
	fmt.Println()
	fmt.Println("  slidetiff ingest complete")
	fmt.Println()

	s := res.Stats
	fmt.Printf("  Images:      %d\n", s.TotalImages)
	fmt.Printf("  Files:       %d\n", s.TotalFiles)
	fmt.Printf("  Folders:     %d\n", s.TotalFolders)
	fmt.Printf("  Consumed:    %d input files\n", s.TotalConsumed)
	fmt.Printf("  Output size: %s\n", formatBytes(s.TotalOutputBytes))
	fmt.Printf("  Time:        %s\n", elapsed.Round(time.Millisecond))
	fmt.Println()

	if len(res.NewImages) > 0 {
		fmt.Println("  Images:")
		for _, img := range res.NewImages {
			spacing := fmt.Sprintf("%.4f×%.4f µm", img.VoxelWidthMM*1000, img.VoxelHeightMM*1000)
			fmt.Printf("    %-32s %dx%d  %d levels  %s\n",
				truncName(img.Name, 32), img.Width, img.Height, img.ResolutionLevels, spacing)
		}
		fmt.Println()
	}

	if len(res.FileErrors) > 0 {
		names := make([]string, 0, len(res.FileErrors))
		for name := range res.FileErrors {
			names = append(names, name)
		}
		sort.Strings(names)
		fmt.Printf("  Errors (%d):\n", len(names))
		for _, name := range names {
			fmt.Printf("    ✗ %s: %s\n", name, res.FileErrors[name])
		}
		fmt.Println()
	}

	fmt.Printf("  Result:      %s\n", ResultFileName)
	fmt.Println()
}

func formatBytes(b int64) string {
	switch {
	case b >= 1<<30:
		return fmt.Sprintf("%.1f GB", float64(b)/(1<<30))
	case b >= 1<<20:
		return fmt.Sprintf("%.1f MB", float64(b)/(1<<20))
	case b >= 1<<10:
		return fmt.Sprintf("%.1f KB", float64(b)/(1<<10))
	default:
		return fmt.Sprintf("%d B", b)
	}
}

func truncName(s string, max int) string {
	if len(s) <= max {
		return s
	}
	return "..." + s[len(s)-max+3:]
}
