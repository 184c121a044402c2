// Package cmd provides the command-line interface for ctidash.
package cmd

import (
	"io"
	"time"

	"github.com/fatih/color"
	"github.com/spf13/cobra"
)

// CLI output formatters
var (
	successColor = color.New(color.FgGreen, color.Bold)
	errorColor   = color.New(color.FgRed, color.Bold)
	warningColor = color.New(color.FgYellow)
	infoColor    = color.New(color.FgCyan)
	headerColor  = color.New(color.FgBlue, color.Bold)
)

// Global flags
var (
	outputJSON bool
	noColor    bool
	quiet      bool
	verbose    bool
)

// defaultTimeout bounds one-shot CLI operations
const defaultTimeout = 5 * time.Minute

// NewRootCmd creates the ctidash root command with all subcommands.
// Running it without a subcommand starts the API server.
func NewRootCmd() *cobra.Command {
	rootCmd := &cobra.Command{
		Use:   "ctidash",
		Short: "Threat intelligence dashboard backend",
		Long: `ctidash serves recent threat indicators from AlienVault OTX to the dashboard.

Indicators are normalized, capped per type for a diverse view, and padded with
sample records when the feed returns too few indicator types.`,
		SilenceUsage: true,
		PersistentPreRun: func(cmd *cobra.Command, args []string) {
			if noColor {
				color.NoColor = true
			}
		},
		RunE: func(cmd *cobra.Command, args []string) error {
			return runServe(cmd)
		},
	}

	rootCmd.PersistentFlags().BoolVar(&outputJSON, "json", false, "Output in JSON format")
	rootCmd.PersistentFlags().BoolVar(&noColor, "no-color", false, "Disable colored output")
	rootCmd.PersistentFlags().BoolVar(&quiet, "quiet", false, "Suppress non-essential output")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "Show service logs for one-shot commands")

	rootCmd.AddCommand(newServeCmd())
	rootCmd.AddCommand(newThreatsCmd())
	rootCmd.AddCommand(newCheckCmd())

	return rootCmd
}

// statusWriter is where progress and status lines go; JSON output keeps stdout clean
func statusWriter(cmd *cobra.Command) io.Writer {
	if outputJSON {
		return cmd.ErrOrStderr()
	}
	return cmd.OutOrStdout()
}
