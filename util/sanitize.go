// Package util holds small helpers shared by the API and the feed client.
package util

import (
	"regexp"
	"unicode/utf8"
)

// MaxSanitizeLength bounds the input scanned by SanitizeString
const MaxSanitizeLength = 64 * 1024

type redaction struct {
	pattern     *regexp.Regexp
	replacement string
}

var redactions = []redaction{
	// OTX sends the key as a header; it can surface in dumped requests
	{regexp.MustCompile(`(?i)(x-otx-api-key)[\s:=]+[^\s"']+`), "$1=REDACTED"},
	{regexp.MustCompile(`(?i)(api[_-]?key|apikey)[\s:=]+[^\s"']+`), "$1=REDACTED"},
	{regexp.MustCompile(`(?i)"(api[_-]?key|otx_api_key|token|secret)"\s*:\s*"[^"]*"`), `"$1":"REDACTED"`},
	{regexp.MustCompile(`(?i)(token|secret|password)[\s:=]+[^\s"']+`), "$1=REDACTED"},
	{regexp.MustCompile(`(?i)bearer\s+[a-zA-Z0-9_\-\.]+`), "bearer REDACTED"},
	// vault tokens
	{regexp.MustCompile(`\bhv[sbr]\.[A-Za-z0-9_\-]{20,}`), "REDACTED_VAULT_TOKEN"},
	{regexp.MustCompile(`\bAKIA[0-9A-Z]{16}\b`), "REDACTED_AWS_KEY"},
}

// SanitizeError returns the error message with credentials redacted
func SanitizeError(err error) string {
	if err == nil {
		return ""
	}
	return SanitizeString(err.Error())
}

// SanitizeString redacts API keys, tokens and cloud credentials.
// Input longer than MaxSanitizeLength is truncated first.
func SanitizeString(s string) string {
	if s == "" {
		return ""
	}
	if len(s) > MaxSanitizeLength {
		s = TruncateUTF8(s, MaxSanitizeLength) + "... [truncated]"
	}

	for _, r := range redactions {
		s = r.pattern.ReplaceAllString(s, r.replacement)
	}
	return s
}

// TruncateUTF8 returns the longest prefix of s that fits in maxBytes
// without splitting a rune.
func TruncateUTF8(s string, maxBytes int) string {
	if maxBytes <= 0 {
		return ""
	}
	if len(s) <= maxBytes {
		return s
	}
	cut := maxBytes
	for cut > 0 && !utf8.RuneStart(s[cut]) {
		cut--
	}
	return s[:cut]
}
