package api

import (
	"encoding/json"
	"net/http"
	"regexp"

	"ctidash/util"

	"go.uber.org/zap"
)

// MaxErrorMessageLength caps client-facing error details
const MaxErrorMessageLength = 500

var (
	connectionStringPattern = regexp.MustCompile(`(?:mongodb|mysql|postgres|postgresql|sqlite|redis|clickhouse)://[^\s"']+`)
	privateIPPatterns       = []*regexp.Regexp{
		regexp.MustCompile(`\b(?:10|127)(?:\.\d{1,3}){3}(?::\d{1,5})?\b`),
		regexp.MustCompile(`\b172\.(?:1[6-9]|2[0-9]|3[01])(?:\.\d{1,3}){2}(?::\d{1,5})?\b`),
		regexp.MustCompile(`\b192\.168(?:\.\d{1,3}){2}(?::\d{1,5})?\b`),
	}
	credentialPattern = regexp.MustCompile(`(?i)(password|secret|token|api[_-]?key|credential|auth)\s*[:=]\s*["']?[^"'\s]+["']?`)
	stackLinePattern  = regexp.MustCompile(`(?m)^goroutine \d+.*$`)
)

// sanitizeErrorMessage removes sensitive information from error messages before sending to clients
func sanitizeErrorMessage(message string) string {
	message = connectionStringPattern.ReplaceAllString(message, "[DATABASE_CONNECTION]")

	// Only private addresses are redacted; public ones help debug upstream issues
	for _, p := range privateIPPatterns {
		message = p.ReplaceAllString(message, "[PRIVATE_IP]")
	}

	message = credentialPattern.ReplaceAllString(message, "$1=[REDACTED]")
	message = stackLinePattern.ReplaceAllString(message, "[STACK_TRACE]")

	if len(message) > MaxErrorMessageLength {
		message = util.TruncateUTF8(message, MaxErrorMessageLength-3) + "..."
	}

	return message
}

// writeError writes a JSON error response to the client and logs it with proper sanitization
func writeError(w http.ResponseWriter, statusCode int, message string, err error, logger *zap.SugaredLogger) {
	// Full error detail stays in the logs, minus credentials
	if logger != nil {
		if err != nil {
			logger.Errorw(message,
				"error", util.SanitizeError(err),
				"status_code", statusCode,
			)
		} else {
			logger.Warnw(message,
				"status_code", statusCode,
			)
		}
	}

	w.Header().Set("Content-Type", "application/json")
	w.Header().Set("X-Content-Type-Options", "nosniff")
	w.WriteHeader(statusCode)
	_ = json.NewEncoder(w).Encode(ErrorResponse{Detail: sanitizeErrorMessage(message)})
}
