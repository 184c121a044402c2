package cmd

import (
	"context"
	"fmt"
	"time"

	"ctidash/bootstrap"
	"ctidash/config"
	"ctidash/threat"
	"ctidash/threat/feeds"

	"github.com/briandowns/spinner"
	"github.com/spf13/cobra"
)

// newThreatsCmd creates the 'threats' subcommand
func newThreatsCmd() *cobra.Command {
	var (
		days         int
		showProgress bool
	)

	cmd := &cobra.Command{
		Use:   "threats",
		Short: "Fetch indicators once and print them",
		Long:  "Fetch the indicators the API would serve for the given lookback window and print them as a table or JSON.",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, cancel := context.WithTimeout(context.Background(), defaultTimeout)
			defer cancel()

			cfg, client, handler, err := initFeed()
			if err != nil {
				return err
			}
			defer handler.Close()

			if !cmd.Flags().Changed("days") {
				days = cfg.API.DefaultLookbackDays
			}
			if days < 1 || days > cfg.API.MaxLookbackDays {
				return fmt.Errorf("--days must be between 1 and %d", cfg.API.MaxLookbackDays)
			}

			out := statusWriter(cmd)
			if !quiet {
				infoColor.Fprintf(out, "Fetching indicators from %s for the last %d day(s)\n", handler.Name(), days)
			}

			var s *spinner.Spinner
			if showProgress && !outputJSON && !quiet {
				s = spinner.New(spinner.CharSets[14], 100*time.Millisecond, spinner.WithWriter(out))
				s.Suffix = " Fetching pulses..."
				s.Start()
			}

			indicators, err := client.Fetch(ctx, days)

			if s != nil {
				s.Stop()
			}

			if err != nil {
				errorColor.Fprintf(out, "✗ Fetch failed: %v\n", err)
				if !quiet {
					fmt.Fprintln(out, bootstrap.ClassifyFeedError(err, cfg.Feed.BaseURL))
				}
				return err
			}

			if outputJSON {
				return outputAsJSON(cmd.OutOrStdout(), indicators)
			}

			return renderThreatsTable(cmd.OutOrStdout(), indicators)
		},
	}

	cmd.Flags().IntVarP(&days, "days", "d", 7, "Lookback window in days")
	cmd.Flags().BoolVar(&showProgress, "progress", true, "Show progress indicator")

	return cmd
}

// initFeed loads configuration and builds the feed client for one-shot commands
func initFeed() (*config.Config, *threat.FeedClient, *feeds.OTXHandler, error) {
	cfg, err := bootstrap.InitConfig()
	if err != nil {
		return nil, nil, nil, err
	}

	level := "error"
	if verbose {
		level = cfg.Log.Level
	}
	_, sugar, err := bootstrap.InitLogger(level, cfg.Log.Format)
	if err != nil {
		return nil, nil, nil, err
	}

	client, handler, err := bootstrap.InitFeedClient(cfg, sugar)
	if err != nil {
		if !quiet {
			warningColor.Println(bootstrap.ClassifyFeedError(err, cfg.Feed.BaseURL))
		}
		return nil, nil, nil, err
	}

	return cfg, client, handler, nil
}
