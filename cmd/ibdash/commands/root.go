package commands

import (
	"github.com/spf13/cobra"
)

var (
	// Global flags
	envFile string
	verbose bool
)

// rootCmd represents the base command when called without any subcommands
var rootCmd = &cobra.Command{
	Use:   "ibdash",
	Short: "ibdash - options order dashboard backend",
	Long: `ibdash Unified CLI

Order lifecycle dashboard for an options trading gateway. Tracks pending
orders, reconciles their status against the brokerage, and aggregates
weekly realized premium.

Usage:
  go run ./cmd/ibdash [command]

Examples:
  go run ./cmd/ibdash serve
  go run ./cmd/ibdash orders
  go run ./cmd/ibdash cleanup`,
}

// Execute adds all child commands to the root command and sets flags appropriately.
// This is called by main.main(). It only needs to happen once to the rootCmd.
func Execute() error {
	return rootCmd.Execute()
}

func init() {
	// Global flags
	rootCmd.PersistentFlags().StringVar(&envFile, "env-file", "", "env file (default is .env)")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "verbose output")
}
