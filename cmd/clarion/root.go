package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

var (
	// Global flags
	cfgFile string
	verbose bool
)

var rootCmd = &cobra.Command{
	Use:   "clarion",
	Short: "Clarion - audio trust analysis service",
	Long: `Clarion is an open-source audio trust analysis service that scores audio
artifacts for authenticity using deterministic heuristics and external
classifier services.

It accepts audio over HTTP or from a spool directory, providing:
  - Transport normalization (base64, remote URL, raw stream)
  - Deterministic audio feature extraction
  - Parallel external classifier aggregation
  - Weighted composite trust scoring
  - Report archival, forwarding, and retention

For more information, visit: https://github.com/veristone-hq/clarion`,
	Version: Version,
}

// Execute runs the root command.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func init() {
	// Global persistent flags (available to all subcommands)
	rootCmd.PersistentFlags().StringVarP(&cfgFile, "config", "c", "config.yaml", "config file path")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "verbose output")

	// Disable default completion command (we'll add our own)
	rootCmd.CompletionOptions.DisableDefaultCmd = false
}
