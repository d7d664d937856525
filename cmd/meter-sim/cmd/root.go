package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

var (
	// Global flags
	verbose bool
	render  bool
	scale   int
)

var rootCmd = &cobra.Command{
	Use:   "meter-sim",
	Short: "Fluke 8050A display decoder simulator",
	Long: `Drive the display decoder from emulated front-panel states, without
the instrument or a board attached.

Examples:
  meter-sim show -- -12.34                   # Decode one display state
  meter-sim show --rel 7.20                  # Same, with REL lit
  meter-sim replay sim/testdata/relative.yaml --render`,
	SilenceUsage: true,
}

// Execute runs the root command
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func init() {
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "verbose output")
	rootCmd.PersistentFlags().BoolVarP(&render, "render", "r", false, "dump the rendered display after each step")
	rootCmd.PersistentFlags().IntVar(&scale, "scale", 1, "segment thickness for --render")
}
