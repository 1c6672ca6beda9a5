package main

import (
	"os"

	"github.com/spf13/cobra"
)

var (
	// Global flags
	cfgFile     string
	verbose     bool
	metricsAddr string
	version     = "dev" // Will be set by build flags
)

var rootCmd = &cobra.Command{
	Use:   "dram-fault-sim",
	Short: "Monte Carlo DRAM fault and ECC simulator",
	Long: `dram-fault-sim drives a Monte Carlo simulation of DRAM fault arrivals
against a configurable ECC scheme, tracking per-year detected-uncorrectable-error,
silent-data-corruption, and rank-retirement probabilities.`,
	Version: version,
}

func init() {
	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (default is ./config.yaml)")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "verbose output")
	runCmd.Flags().StringVar(&metricsAddr, "metrics-addr", "", "address to serve Prometheus metrics on (disabled if empty)")

	// Add subcommands
	rootCmd.AddCommand(runCmd)
	rootCmd.AddCommand(scenarioCmd)
}

// Commands are defined in separate files:
// - runCmd in run.go
// - scenarioCmd in scenario.go

func main() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}
