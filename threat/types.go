package threat

import (
	"fmt"
	"strings"
	"time"
)

// Severity represents the threat level derived from pulse tags
type Severity string

const (
	SeverityLow    Severity = "Low"
	SeverityMedium Severity = "Medium"
	SeverityHigh   Severity = "High"
)

// AllSeverities lists the valid severities from lowest to highest
var AllSeverities = []Severity{SeverityLow, SeverityMedium, SeverityHigh}

// IsValid checks if the severity is one of the known levels
func (s Severity) IsValid() bool {
	switch s {
	case SeverityLow, SeverityMedium, SeverityHigh:
		return true
	}
	return false
}

// ParseSeverity converts a free-form label into a Severity.
// "critical" folds into High.
func ParseSeverity(label string) (Severity, error) {
	switch strings.ToLower(strings.TrimSpace(label)) {
	case "low":
		return SeverityLow, nil
	case "medium":
		return SeverityMedium, nil
	case "high", "critical":
		return SeverityHigh, nil
	default:
		return "", fmt.Errorf("unknown severity %q", label)
	}
}

// Provenance labels for emitted records
const (
	SourceExternalFeed = "external feed"
	SourceSampleData   = "sample data"
)

// UnknownType is used when the provider omits an indicator type
const UnknownType = "unknown"

// ThreatIndicator is the normalized record served to the dashboard
type ThreatIndicator struct {
	Indicator string    `json:"indicator"`
	Type      string    `json:"type"`
	FirstSeen time.Time `json:"first_seen"`
	Source    string    `json:"source"`
	Tags      []string  `json:"tags"`
	Severity  Severity  `json:"severity"`
}
