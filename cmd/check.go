package cmd

import (
	"context"
	"fmt"
	"time"

	"ctidash/bootstrap"

	"github.com/briandowns/spinner"
	"github.com/spf13/cobra"
)

// checkResult is the JSON form of a connectivity check
type checkResult struct {
	Provider string `json:"provider"`
	BaseURL  string `json:"base_url"`
	OK       bool   `json:"ok"`
	Error    string `json:"error,omitempty"`
	Duration string `json:"duration"`
}

// newCheckCmd creates the 'check' subcommand
func newCheckCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "check",
		Short: "Test feed connectivity",
		Long:  "Verify the OTX API key and connectivity without fetching any pulses.",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, cancel := context.WithTimeout(context.Background(), defaultTimeout)
			defer cancel()

			cfg, _, handler, err := initFeed()
			if err != nil {
				return err
			}
			defer handler.Close()

			out := statusWriter(cmd)
			if !quiet {
				infoColor.Fprintf(out, "Testing connection to %s at %s\n", handler.Name(), cfg.Feed.BaseURL)
			}

			var s *spinner.Spinner
			if !outputJSON && !quiet {
				s = spinner.New(spinner.CharSets[14], 100*time.Millisecond, spinner.WithWriter(out))
				s.Suffix = " Contacting provider..."
				s.Start()
			}

			start := time.Now()
			testErr := handler.Test(ctx)
			elapsed := time.Since(start).Round(time.Millisecond)

			if s != nil {
				s.Stop()
			}

			if outputJSON {
				result := checkResult{
					Provider: handler.Name(),
					BaseURL:  cfg.Feed.BaseURL,
					OK:       testErr == nil,
					Duration: elapsed.String(),
				}
				if testErr != nil {
					result.Error = testErr.Error()
				}
				if err := outputAsJSON(cmd.OutOrStdout(), result); err != nil {
					return err
				}
				return testErr
			}

			if testErr != nil {
				errorColor.Fprintf(out, "✗ Connection test failed: %v\n", testErr)
				fmt.Fprintln(out, bootstrap.ClassifyFeedError(testErr, cfg.Feed.BaseURL))
				return testErr
			}

			successColor.Fprintf(out, "✓ Connection test successful (%s)\n", elapsed)
			return nil
		},
	}
}
