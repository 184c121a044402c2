package cmd

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"
	"time"

	"ctidash/threat"
	"ctidash/util"

	tw "github.com/olekukonko/tablewriter"
)

// maxIndicatorWidth keeps long URLs from blowing up the table
const maxIndicatorWidth = 60

// outputAsJSON writes data as indented JSON
func outputAsJSON(w io.Writer, data interface{}) error {
	encoder := json.NewEncoder(w)
	encoder.SetIndent("", "  ")
	return encoder.Encode(data)
}

// renderThreatsTable prints indicators followed by a severity summary
func renderThreatsTable(w io.Writer, indicators []threat.ThreatIndicator) error {
	if len(indicators) == 0 {
		warningColor.Fprintln(w, "No indicators found")
		return nil
	}

	table := tw.NewWriter(w)
	table.Header("Indicator", "Type", "Severity", "First Seen", "Source", "Tags")

	for _, ind := range indicators {
		if err := table.Append(
			truncate(ind.Indicator, maxIndicatorWidth),
			ind.Type,
			formatSeverity(ind.Severity),
			formatTime(ind.FirstSeen),
			ind.Source,
			strings.Join(ind.Tags, ", "),
		); err != nil {
			return fmt.Errorf("failed to append row: %w", err)
		}
	}
	if err := table.Render(); err != nil {
		return fmt.Errorf("failed to render table: %w", err)
	}

	fmt.Fprintln(w)
	headerColor.Fprintf(w, "Total: %d indicators\n", len(indicators))
	counts := severityCounts(indicators)
	for i := len(threat.AllSeverities) - 1; i >= 0; i-- {
		sev := threat.AllSeverities[i]
		fmt.Fprintf(w, "  %s: %d\n", formatSeverity(sev), counts[sev])
	}
	return nil
}

// formatSeverity colors a severity label
func formatSeverity(s threat.Severity) string {
	switch s {
	case threat.SeverityHigh:
		return errorColor.Sprint(string(s))
	case threat.SeverityMedium:
		return warningColor.Sprint(string(s))
	case threat.SeverityLow:
		return infoColor.Sprint(string(s))
	default:
		return string(s)
	}
}

// severityCounts tallies indicators per severity
func severityCounts(indicators []threat.ThreatIndicator) map[threat.Severity]int {
	counts := make(map[threat.Severity]int, len(threat.AllSeverities))
	for _, ind := range indicators {
		counts[ind.Severity]++
	}
	return counts
}

func formatTime(t time.Time) string {
	if t.IsZero() {
		return "-"
	}
	return t.UTC().Format("2006-01-02 15:04")
}

func truncate(s string, max int) string {
	if len(s) <= max {
		return s
	}
	return util.TruncateUTF8(s, max-3) + "..."
}
