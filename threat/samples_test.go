package threat

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadSamples_Embedded(t *testing.T) {
	samples, err := loadSamples(samplesYAML)
	require.NoError(t, err)
	require.Len(t, samples, 4)

	byType := make(map[string]sampleRecord)
	for _, s := range samples {
		byType[s.typ] = s
	}

	assert.Equal(t, "malicious-domain.com", byType["domain"].indicator)
	assert.Equal(t, SeverityHigh, byType["domain"].severity)
	assert.Equal(t, "192.168.1.100", byType["IPv4"].indicator)
	assert.Equal(t, SeverityMedium, byType["IPv4"].severity)
	assert.Equal(t, "https://malicious-url.com/path", byType["URL"].indicator)
	assert.Equal(t, SeverityHigh, byType["URL"].severity)
	assert.Equal(t, "5f4dcc3b5aa765d61d8327deb882cf99", byType["FileHash-MD5"].indicator)
	assert.Equal(t, SeverityLow, byType["FileHash-MD5"].severity)
}

func TestLoadSamples_Invalid(t *testing.T) {
	tests := []struct {
		name string
		data string
	}{
		{"not yaml list", "indicator: x"},
		{"missing type", "- indicator: x\n  severity: Low\n"},
		{"missing indicator", "- type: domain\n  severity: Low\n"},
		{"bad severity", "- indicator: x\n  type: domain\n  severity: Extreme\n"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := loadSamples([]byte(tt.data))
			assert.Error(t, err)
		})
	}
}

func TestSampleRecord_ToIndicator(t *testing.T) {
	now := time.Date(2024, 5, 1, 8, 0, 0, 0, time.UTC)
	rec := sampleRecord{indicator: "malicious-domain.com", typ: "domain", severity: SeverityHigh}

	ind := rec.toIndicator(now)
	assert.Equal(t, "malicious-domain.com", ind.Indicator)
	assert.Equal(t, "domain", ind.Type)
	assert.Equal(t, now, ind.FirstSeen)
	assert.Equal(t, SourceSampleData, ind.Source)
	assert.Equal(t, []string{"sample"}, ind.Tags)
	assert.Equal(t, SeverityHigh, ind.Severity)
}
