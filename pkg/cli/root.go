// Package cli provides the apistub CLI commands.
package cli

import "github.com/spf13/cobra"

var rootCmd = &cobra.Command{
	Use:   "apistub",
	Short: "Stateful API simulation engine for tests",
	Long: `apistub serves byte-compatible simulations of third-party REST APIs
against an in-memory entity store, so client code can be exercised in tests
without live credentials or network access.

The served state is process-lifetime only: restarting the server resets it
to the seeded defaults.`,
	SilenceUsage:  true,
	SilenceErrors: true,
}

func init() {
	rootCmd.AddCommand(serveCmd)
}

// Execute runs the CLI with the given build version.
func Execute(version string) error {
	rootCmd.Version = version
	return rootCmd.Execute()
}
