package cmd

import (
	"bytes"
	"encoding/json"
	"strings"
	"testing"
	"time"
	"unicode/utf8"

	"ctidash/threat"

	"github.com/fatih/color"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func disableColor(t *testing.T) {
	t.Helper()
	prev := color.NoColor
	color.NoColor = true
	t.Cleanup(func() { color.NoColor = prev })
}

func sampleIndicators() []threat.ThreatIndicator {
	seen := time.Date(2024, 6, 1, 12, 30, 0, 0, time.UTC)
	return []threat.ThreatIndicator{
		{Indicator: "evil.example", Type: "domain", FirstSeen: seen, Source: threat.SourceExternalFeed, Tags: []string{"malware", "apt"}, Severity: threat.SeverityHigh},
		{Indicator: "10.0.0.1", Type: "IPv4", FirstSeen: seen, Source: threat.SourceExternalFeed, Tags: []string{"phishing"}, Severity: threat.SeverityMedium},
		{Indicator: "10.0.0.2", Type: "IPv4", FirstSeen: seen, Source: threat.SourceSampleData, Tags: nil, Severity: threat.SeverityLow},
	}
}

func TestRenderThreatsTable(t *testing.T) {
	disableColor(t)

	var buf bytes.Buffer
	require.NoError(t, renderThreatsTable(&buf, sampleIndicators()))

	out := buf.String()
	assert.Contains(t, out, "evil.example")
	assert.Contains(t, out, "malware, apt")
	assert.Contains(t, out, "2024-06-01 12:30")
	assert.Contains(t, out, "Total: 3 indicators")
	assert.Contains(t, out, "High: 1")
	assert.Contains(t, out, "Medium: 1")
	assert.Contains(t, out, "Low: 1")

	// summary lists the highest tier first
	assert.Less(t, strings.Index(out, "High: 1"), strings.Index(out, "Low: 1"))
}

func TestRenderThreatsTable_Empty(t *testing.T) {
	disableColor(t)

	var buf bytes.Buffer
	require.NoError(t, renderThreatsTable(&buf, nil))
	assert.Contains(t, buf.String(), "No indicators found")
}

func TestRenderThreatsTable_TruncatesLongIndicators(t *testing.T) {
	disableColor(t)

	long := "http://" + strings.Repeat("a", 100) + ".example/path"
	var buf bytes.Buffer
	require.NoError(t, renderThreatsTable(&buf, []threat.ThreatIndicator{
		{Indicator: long, Type: "URL", Source: threat.SourceExternalFeed, Severity: threat.SeverityLow},
	}))

	out := buf.String()
	assert.NotContains(t, out, long)
	assert.Contains(t, out, "...")
	assert.Contains(t, out, "-", "zero first_seen renders as a dash")
}

func TestSeverityCounts(t *testing.T) {
	counts := severityCounts(append(sampleIndicators(), threat.ThreatIndicator{Severity: threat.SeverityHigh}))
	assert.Equal(t, 2, counts[threat.SeverityHigh])
	assert.Equal(t, 1, counts[threat.SeverityMedium])
	assert.Equal(t, 1, counts[threat.SeverityLow])
}

func TestOutputAsJSON(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, outputAsJSON(&buf, sampleIndicators()))

	var decoded []threat.ThreatIndicator
	require.NoError(t, json.Unmarshal(buf.Bytes(), &decoded))
	require.Len(t, decoded, 3)
	assert.Equal(t, "evil.example", decoded[0].Indicator)
	assert.Contains(t, buf.String(), "\n  ", "output is indented")
}

func TestFormatSeverity_NoColor(t *testing.T) {
	disableColor(t)

	assert.Equal(t, "High", formatSeverity(threat.SeverityHigh))
	assert.Equal(t, "Medium", formatSeverity(threat.SeverityMedium))
	assert.Equal(t, "Low", formatSeverity(threat.SeverityLow))
	assert.Equal(t, "odd", formatSeverity(threat.Severity("odd")))
}

func TestTruncate_MultiByte(t *testing.T) {
	idn := strings.Repeat("ü", 40) + ".example"
	got := truncate(idn, maxIndicatorWidth)
	assert.True(t, utf8.ValidString(got))
	assert.True(t, strings.HasSuffix(got, "..."))
	assert.LessOrEqual(t, len(got), maxIndicatorWidth)

	assert.Equal(t, "short.example", truncate("short.example", maxIndicatorWidth))
}
