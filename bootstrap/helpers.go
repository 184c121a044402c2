package bootstrap

import (
	"errors"
	"fmt"
	"net"
	"strings"
	"syscall"

	"ctidash/config"
	"ctidash/threat/feeds"
)

// ClassifyFeedError turns a feed initialization or connectivity failure into
// an operator-facing message with remediation hints.
func ClassifyFeedError(err error, baseURL string) string {
	if err == nil {
		return ""
	}

	switch {
	case errors.Is(err, config.ErrMissingAPIKey), errors.Is(err, feeds.ErrMissingAuth):
		return "No OTX API key configured.\n" +
			"  Remediation:\n" +
			"  - Set CTIDASH_OTX_API_KEY (or OTX_API_KEY) in the environment or .env file\n" +
			"  - Or store otx_api_key with the configured secrets provider (vault, aws)\n" +
			"  - Set startup_mode: graceful to start the API without a feed client"

	case errors.Is(err, feeds.ErrAuthFailed):
		return fmt.Sprintf("OTX at %s rejected the API key.\n"+
			"  Remediation:\n"+
			"  - Verify the key on your OTX account settings page\n"+
			"  - Check for stray whitespace or quotes in the configured value", baseURL)

	case errors.Is(err, feeds.ErrTimeout):
		return fmt.Sprintf("Request to OTX at %s timed out.\n"+
			"  Possible causes:\n"+
			"  - Large lookback window with many subscribed pulses\n"+
			"  - Network latency or a proxy blocking the connection\n"+
			"  Remediation:\n"+
			"  - Raise feed.request_timeout or lower the lookback days", baseURL)

	case errors.Is(err, feeds.ErrInvalidConfig):
		return fmt.Sprintf("Invalid feed configuration: %v\n"+
			"  Remediation:\n"+
			"  - Check feed.base_url in config.yaml", err)
	}

	var opErr *net.OpError
	if errors.As(err, &opErr) && opErr.Op == "dial" && errors.Is(opErr.Err, syscall.ECONNREFUSED) {
		return fmt.Sprintf("Connection refused by %s.\n"+
			"  Remediation:\n"+
			"  - Verify feed.base_url points at the OTX API\n"+
			"  - Check outbound firewall rules", baseURL)
	}

	errStr := strings.ToLower(err.Error())
	if strings.Contains(errStr, "no such host") || strings.Contains(errStr, "lookup") {
		return fmt.Sprintf("Cannot resolve hostname in feed URL %s.\n"+
			"  Remediation:\n"+
			"  - Verify the hostname is correct\n"+
			"  - Check DNS configuration", baseURL)
	}

	return fmt.Sprintf("Failed to reach OTX at %s: %v\n"+
		"  Remediation:\n"+
		"  - Ensure the API is reachable from this host\n"+
		"  - Check feed.base_url in config.yaml", baseURL, err)
}
