package threat

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDetermineSeverity(t *testing.T) {
	tests := []struct {
		name string
		tags []string
		want Severity
	}{
		{"malware is high", []string{"malware"}, SeverityHigh},
		{"ransomware is high", []string{"apt", "ransomware"}, SeverityHigh},
		{"exploit is high", []string{"exploit"}, SeverityHigh},
		{"critical is high", []string{"critical"}, SeverityHigh},
		{"phishing is medium", []string{"phishing"}, SeverityMedium},
		{"suspicious is medium", []string{"suspicious"}, SeverityMedium},
		{"warning is medium", []string{"warning"}, SeverityMedium},
		{"high wins over medium", []string{"phishing", "malware"}, SeverityHigh},
		{"case insensitive", []string{"MalWare"}, SeverityHigh},
		{"case insensitive medium", []string{"PHISHING"}, SeverityMedium},
		{"no tags", nil, SeverityLow},
		{"empty tags", []string{}, SeverityLow},
		{"unrelated tag", []string{"other"}, SeverityLow},
		{"substring does not match", []string{"malware-family"}, SeverityLow},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, DetermineSeverity(tt.tags))
		})
	}
}

func TestParseSeverity(t *testing.T) {
	tests := []struct {
		label string
		want  Severity
	}{
		{"Low", SeverityLow},
		{"medium", SeverityMedium},
		{" HIGH ", SeverityHigh},
		{"Critical", SeverityHigh},
	}
	for _, tt := range tests {
		got, err := ParseSeverity(tt.label)
		require.NoError(t, err, tt.label)
		assert.Equal(t, tt.want, got)
		assert.True(t, got.IsValid())
	}

	_, err := ParseSeverity("extreme")
	assert.Error(t, err)
	assert.False(t, Severity("extreme").IsValid())
}
