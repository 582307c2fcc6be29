package main

import (
	"fmt"
	"os"

	"github.com/cuemby/rtsim/pkg/log"
	"github.com/spf13/cobra"
)

var (
	// Version information (set via ldflags during build)
	Version   = "dev"
	Commit    = "unknown"
	BuildTime = "unknown"
)

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

var rootCmd = &cobra.Command{
	Use:   "rtsim",
	Short: "rtsim - Discrete-time real-time scheduling simulator",
	Long: `rtsim simulates recurring real-time tasks under pluggable scheduling
policies: EDF and its overload-resolving variants, fixed-priority and
(m,k)-firm utility-accrual schedulers.

Run a single task set with 'rtsim run', compare schedulers with
'rtsim evaluate', and inspect stored results with 'rtsim results'.`,
	Version:       Version,
	SilenceUsage:  true,
	SilenceErrors: true,
	PersistentPreRun: func(cmd *cobra.Command, args []string) {
		level, _ := cmd.Flags().GetString("log-level")
		jsonOutput, _ := cmd.Flags().GetBool("log-json")
		log.Init(log.Config{
			Level:      log.ParseLevel(level),
			JSONOutput: jsonOutput,
			Output:     cmd.ErrOrStderr(),
		})
	},
}

func init() {
	rootCmd.SetVersionTemplate(fmt.Sprintf(
		"rtsim version %s\nCommit: %s\nBuilt: %s\n",
		Version, Commit, BuildTime,
	))

	rootCmd.PersistentFlags().String("log-level", "warn", "Log level (debug, info, warn, error)")
	rootCmd.PersistentFlags().Bool("log-json", false, "Write logs as JSON")

	rootCmd.AddCommand(runCmd)
	rootCmd.AddCommand(evaluateCmd)
	rootCmd.AddCommand(schedulersCmd)
	rootCmd.AddCommand(resultsCmd)
}
