package threat

import "strings"

var (
	highRiskTerms = map[string]struct{}{
		"malware":    {},
		"ransomware": {},
		"exploit":    {},
		"critical":   {},
	}
	mediumRiskTerms = map[string]struct{}{
		"suspicious": {},
		"warning":    {},
		"phishing":   {},
	}
)

// DetermineSeverity maps a pulse tag set onto a Severity. Matching is exact
// per tag and case-insensitive; the high tier wins over the medium tier.
func DetermineSeverity(tags []string) Severity {
	medium := false
	for _, tag := range tags {
		t := strings.ToLower(tag)
		if _, ok := highRiskTerms[t]; ok {
			return SeverityHigh
		}
		if _, ok := mediumRiskTerms[t]; ok {
			medium = true
		}
	}
	if medium {
		return SeverityMedium
	}
	return SeverityLow
}
