// Package cli implements the Koru command-line interface using Cobra.
// Each subcommand maps to an engine capability (serve, record, stats, etc.).
package cli

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

var rootCmd = &cobra.Command{
	Use:   "koru",
	Short: "Koru — wellness achievement engine",
	Long: `Koru converts wellness activities into points, streaks, levels,
and badges, kept consistent between a durable store and the live view.`,
	SilenceUsage:  true,
	SilenceErrors: true,
}

// Execute runs the root command. Called from main.go.
func Execute(version string) {
	rootCmd.Version = version

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		os.Exit(1)
	}
}
