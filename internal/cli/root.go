package cli

import (
	"os"

	"github.com/spf13/cobra"
)

var rootCmd = &cobra.Command{
	Use:   "clearancectl",
	Short: "Operator tooling for the clearance risk service",
	Long: "Scores shipments offline with the same engine the server uses and\n" +
		"mints officer tokens for override submissions.",
	SilenceUsage: true,
}

// Execute runs the root command.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}
