package cmd

import (
	"fmt"
	"os"
	"runtime"

	"github.com/spf13/cobra"
)

var (
	version = "0.1.0"
	verbose bool
)

var rootCmd = &cobra.Command{
	Use:   "slidetiff",
	Short: "Whole-slide image ingestion pipeline",
	Long: `slidetiff — normalizes vendor whole-slide microscopy formats (Mirax,
Hamamatsu VMS/VMU/NDPI, Aperio SVS, Leica SCN, Ventana BIF, plain TIFF)
into canonical pyramidal TIFFs with Deep Zoom tile pyramids.

Extracts physical pixel spacing from TIFF tags with vendor-property
fallback, resolves multi-file slide formats through their own manifests,
and emits a batch result ready for persistence.`,
	Version: version,
}

func Execute() error {
	return rootCmd.Execute()
}

func init() {
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "verbose output")
	rootCmd.SetVersionTemplate(fmt.Sprintf(
		"slidetiff %s (%s/%s, %s)\n",
		version, runtime.GOOS, runtime.GOARCH, runtime.Version(),
	))
}

// logVerbose prints a message only when --verbose is set.
func logVerbose(format string, args ...any) {
	if verbose {
		fmt.Fprintf(os.Stderr, "[slidetiff] "+format+"\n", args...)
	}
}
