package cmd

import (
	"fmt"
	"sort"

	"github.com/spf13/cobra"

	"github.com/AnyUserName/slidetiff-cli/internal/meta"
)

var inspectCmd = &cobra.Command{
	Use:   "inspect <slide_file>",
	Short: "Display TIFF tag metadata and vendor properties for a slide",
	Long: `Reads a slide file with both metadata sources the pipeline uses:
the TIFF tag structure, and the vendor property side channel. Useful for
diagnosing why a vendor file fails spacing extraction.`,
	Args: cobra.ExactArgs(1),
	RunE: runInspect,
}

func init() {
	rootCmd.AddCommand(inspectCmd)
}

func runInspect(_ *cobra.Command, args []string) error {
	path := args[0]

	fmt.Println()
	info, tagErr := meta.TagReader{}.ReadTags(path)
	fmt.Println("  TIFF tags:")
	printDim := func(label string, v int) {
		if v > 0 {
			fmt.Printf("    %-18s %d\n", label, v)
		} else {
			fmt.Printf("    %-18s (unset)\n", label)
		}
	}
	printDim("width:", info.Width)
	printDim("height:", info.Height)
	printDim("levels:", info.ResolutionLevels)
	if info.ColorSpace != "" {
		fmt.Printf("    %-18s %s\n", "color space:", info.ColorSpace)
	} else {
		fmt.Printf("    %-18s (unset)\n", "color space:")
	}
	if info.VoxelWidthMM > 0 {
		fmt.Printf("    %-18s %.6f × %.6f mm\n", "spacing:", info.VoxelWidthMM, info.VoxelHeightMM)
	} else {
		fmt.Printf("    %-18s (unset)\n", "spacing:")
	}
	if tagErr != nil {
		fmt.Printf("    ⚠ tag read: %v\n", tagErr)
	}
	fmt.Println()

	props, propErr := meta.PropertyReader{}.ReadProperties(path)
	fmt.Println("  Slide properties:")
	if propErr != nil {
		fmt.Printf("    ⚠ property read: %v\n", propErr)
	} else {
		keys := make([]string, 0, len(props))
		for k := range props {
			keys = append(keys, k)
		}
		sort.Strings(keys)
		for _, k := range keys {
			fmt.Printf("    %-28s %s\n", k, props[k])
		}
	}
	fmt.Println()

	return nil
}
