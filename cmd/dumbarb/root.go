// Command dumbarb runs a two-engine GTP match, the CLI entrypoint
// wiring internal/config, internal/session, internal/engine,
// internal/result and internal/match together.
//
// Grounded on Iron-Ham-claudio's internal/cmd (one *cobra.Command per
// file, a package-level rootCmd, Execute() called from main).
package main

import (
	"github.com/spf13/cobra"
)

var rootCmd = &cobra.Command{
	Use:   "dumbarb",
	Short: "A Go Text Protocol tournament arbiter for the game of Go",
	Long: `dumbarb runs repeated GTP matches between two engines, alternating
colour, recording results, SGF game records and per-game stderr logs,
and resuming an interrupted match directory with --continue.`,
}

// Execute runs the root command; called from main.
func Execute() error {
	return rootCmd.Execute()
}
