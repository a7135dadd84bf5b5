package main

import (
	"os"

	"github.com/spf13/cobra"
)

var rootCmd = &cobra.Command{
	Use:   "vantage",
	Short: "Investment research task orchestrator",
	Long: `Vantage turns an investment research request into a dependency-aware
task graph and executes it with capability-matched analysts.

A request like "give me a full analysis of 0700.HK" is planned into
data collection, technical, news, and risk analysis tasks plus a final
report task, scheduled in dependency order with bounded parallelism,
and assembled into a single markdown report.

Executors run in one of two modes:
  canned  offline analysts backed by the bundled market catalog (default)
  llm     Claude-backed analysts via the Anthropic API or AWS Bedrock`,
}

// Execute runs the root command
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func init() {
	rootCmd.AddCommand(runCmd)
	rootCmd.AddCommand(planCmd)
	rootCmd.AddCommand(providersCmd)
	rootCmd.AddCommand(cancelCmd)
	rootCmd.AddCommand(configCmd)
	rootCmd.AddCommand(versionCmd)
}
