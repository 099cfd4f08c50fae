package commands

import (
	"github.com/spf13/cobra"
)

var (
	// Global flags
	verbose bool
)

// rootCmd represents the base command when called without any subcommands
var rootCmd = &cobra.Command{
	Use:   "tradelens",
	Short: "TradeLens - trading performance analytics service",
	Long: `TradeLens Unified CLI

Ingests trade-history CSV exports and computes institutional-grade
performance, risk and AI-effectiveness reports.

Usage:
  go run ./cmd/tradelens [command]

Examples:
  go run ./cmd/tradelens api
  go run ./cmd/tradelens analyze trades.csv
  go run ./cmd/tradelens cleanup --days 90
  go run ./cmd/tradelens status`,
}

// Execute adds all child commands to the root command and sets flags appropriately.
// This is called by main.main(). It only needs to happen once to the rootCmd.
func Execute() error {
	return rootCmd.Execute()
}

func init() {
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "verbose output")
}
