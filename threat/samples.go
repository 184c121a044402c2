package threat

import (
	_ "embed"
	"fmt"
	"time"

	"gopkg.in/yaml.v3"
)

//go:embed samples.yaml
var samplesYAML []byte

// sampleIndicator is one entry of the embedded fallback fixture
type sampleIndicator struct {
	Indicator string `yaml:"indicator"`
	Type      string `yaml:"type"`
	Severity  string `yaml:"severity"`
}

// sampleRecord is a validated fixture entry ready to be stamped
type sampleRecord struct {
	indicator string
	typ       string
	severity  Severity
}

// loadSamples parses a sample fixture, normalizing severities
func loadSamples(data []byte) ([]sampleRecord, error) {
	var raw []sampleIndicator
	if err := yaml.Unmarshal(data, &raw); err != nil {
		return nil, fmt.Errorf("failed to parse sample indicators: %w", err)
	}

	records := make([]sampleRecord, 0, len(raw))
	for i, s := range raw {
		if s.Indicator == "" || s.Type == "" {
			return nil, fmt.Errorf("sample indicator %d: indicator and type are required", i)
		}
		sev, err := ParseSeverity(s.Severity)
		if err != nil {
			return nil, fmt.Errorf("sample indicator %d: %w", i, err)
		}
		records = append(records, sampleRecord{indicator: s.Indicator, typ: s.Type, severity: sev})
	}
	return records, nil
}

// toIndicator stamps a sample record with the given time
func (s sampleRecord) toIndicator(now time.Time) ThreatIndicator {
	return ThreatIndicator{
		Indicator: s.indicator,
		Type:      s.typ,
		FirstSeen: now,
		Source:    SourceSampleData,
		Tags:      []string{"sample"},
		Severity:  s.severity,
	}
}
