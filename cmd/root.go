package cmd

import (
	"fmt"
	"log/slog"
	"os"

	"github.com/spf13/cobra"
)

// Version is set at build time via -ldflags.
var Version = "dev"

var (
	cfgFile string
	verbose bool
)

// rootCmd is the base command when called without any subcommands.
var rootCmd = &cobra.Command{
	Use:   "remedy",
	Short: "Scan repositories and open automated remediation pull requests",
	Long: `remedy registers repositories, scans them with static-analysis and
dependency vulnerability tooling, asks an AI model for concrete patch
plans, applies the safe ones, and opens pull requests with the fixes.

Get started:
  remedy repo add     Register a repository
  remedy scan         Run one scan now
  remedy worker       Run the scan worker (with optional schedule)
  remedy doctor       Verify tools, credentials, and storage`,
	SilenceUsage:  true,
	SilenceErrors: true,
}

// Execute is the entry point called from main.go.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		os.Exit(1)
	}
}

func init() {
	cobra.OnInitialize(initLogging)

	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "",
		"config file (default: ~/.remedy/config.json)")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false,
		"enable verbose/debug output")

	rootCmd.Version = Version
	rootCmd.AddCommand(
		repoCmd,
		scanCmd,
		workerCmd,
		prCmd,
		doctorCmd,
		configCmd,
	)
}

func initLogging() {
	if verbose {
		slog.SetLogLoggerLevel(slog.LevelDebug)
		slog.Debug("verbose logging enabled")
	}
}
