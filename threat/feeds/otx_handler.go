package feeds

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"go.uber.org/zap"
)

// =============================================================================
// AlienVault OTX Feed Handler
// =============================================================================

const (
	// OTX API base URL
	otxDefaultBaseURL = "https://otx.alienvault.com/api/v1"

	// Default page size for OTX API
	otxDefaultPageSize = 50

	// Upper bound on pages followed within one bulk call
	otxDefaultMaxPages = 20

	otxDefaultTimeout = 60 * time.Second

	// OTX timestamps carry no zone and are interpreted as UTC
	otxTimeLayout = "2006-01-02T15:04:05"

	maxResponseBytes = 64 << 20
)

// OTXConfig holds the settings of an OTX handler
type OTXConfig struct {
	APIKey   string
	BaseURL  string
	PageSize int
	MaxPages int
	Timeout  time.Duration

	// HTTPClient overrides the default client (tests)
	HTTPClient *http.Client
}

// DefaultOTXConfig returns the public OTX endpoint settings without credentials
func DefaultOTXConfig() OTXConfig {
	return OTXConfig{
		BaseURL:  otxDefaultBaseURL,
		PageSize: otxDefaultPageSize,
		MaxPages: otxDefaultMaxPages,
		Timeout:  otxDefaultTimeout,
	}
}

// OTXHandler implements PulseFeedHandler for AlienVault OTX
type OTXHandler struct {
	cfg        OTXConfig
	httpClient *http.Client
	logger     *zap.SugaredLogger
}

// NewOTXHandler creates a new OTX feed handler
func NewOTXHandler(cfg OTXConfig, logger *zap.SugaredLogger) (*OTXHandler, error) {
	if strings.TrimSpace(cfg.APIKey) == "" {
		return nil, fmt.Errorf("%w: OTX API key is required", ErrMissingAuth)
	}

	defaults := DefaultOTXConfig()
	if cfg.BaseURL == "" {
		cfg.BaseURL = defaults.BaseURL
	}
	cfg.BaseURL = strings.TrimRight(cfg.BaseURL, "/")
	if _, err := url.ParseRequestURI(cfg.BaseURL); err != nil {
		return nil, fmt.Errorf("%w: base URL: %v", ErrInvalidConfig, err)
	}
	if cfg.PageSize <= 0 {
		cfg.PageSize = defaults.PageSize
	}
	if cfg.MaxPages <= 0 {
		cfg.MaxPages = defaults.MaxPages
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = defaults.Timeout
	}
	if logger == nil {
		logger = zap.NewNop().Sugar()
	}

	httpClient := cfg.HTTPClient
	if httpClient == nil {
		httpClient = &http.Client{
			Timeout: cfg.Timeout,
		}
	}

	return &OTXHandler{
		cfg:        cfg,
		httpClient: httpClient,
		logger:     logger,
	}, nil
}

// Name returns the provider name
func (h *OTXHandler) Name() string {
	return "AlienVault OTX"
}

// Test verifies connectivity to the OTX API
func (h *OTXHandler) Test(ctx context.Context) error {
	// Test API connectivity by fetching user info
	reqURL := fmt.Sprintf("%s/user/me", h.cfg.BaseURL)
	body, err := h.get(ctx, reqURL)
	if err != nil {
		return err
	}

	var user struct {
		Username string `json:"username"`
	}
	if err := json.Unmarshal(body, &user); err != nil {
		return fmt.Errorf("%w: %v", ErrInvalidResponse, err)
	}

	h.logger.Debugw("OTX connectivity verified", "username", user.Username)
	return nil
}

// PulsesSince fetches the subscribed pulses modified after since. The provider
// pages its answer; following those pages is part of the single bulk call.
func (h *OTXHandler) PulsesSince(ctx context.Context, since time.Time) ([]Pulse, error) {
	var pulses []Pulse

	for page := 1; ; page++ {
		select {
		case <-ctx.Done():
			return nil, classifyTransportError(ctx.Err())
		default:
		}

		// Build request URL
		params := url.Values{}
		params.Set("page", strconv.Itoa(page))
		params.Set("limit", strconv.Itoa(h.cfg.PageSize))
		params.Set("modified_since", since.UTC().Format(otxTimeLayout))

		reqURL := fmt.Sprintf("%s/pulses/subscribed?%s", h.cfg.BaseURL, params.Encode())
		body, err := h.get(ctx, reqURL)
		if err != nil {
			return nil, err
		}

		var pulseResp pulseResponse
		if err := json.Unmarshal(body, &pulseResp); err != nil {
			return nil, fmt.Errorf("%w: failed to parse OTX response: %v", ErrInvalidResponse, err)
		}
		pulses = append(pulses, pulseResp.Results...)

		// Check if there are more pages
		if pulseResp.NextURL == "" || len(pulseResp.Results) == 0 {
			break
		}
		if page >= h.cfg.MaxPages {
			h.logger.Warnw("OTX page limit reached, remaining pulses not fetched",
				"max_pages", h.cfg.MaxPages,
				"reported_count", pulseResp.Count)
			break
		}
	}

	h.logger.Debugw("Fetched OTX pulses",
		"pulses", len(pulses),
		"modified_since", since.UTC().Format(otxTimeLayout))

	return pulses, nil
}

// Close releases any resources held by the handler
func (h *OTXHandler) Close() error {
	h.httpClient.CloseIdleConnections()
	return nil
}

// get performs one authenticated GET and returns the body of a 200 answer
func (h *OTXHandler) get(ctx context.Context, reqURL string) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, reqURL, nil)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidConfig, err)
	}

	req.Header.Set("X-OTX-API-KEY", h.cfg.APIKey)
	req.Header.Set("Accept", "application/json")

	resp, err := h.httpClient.Do(req)
	if err != nil {
		return nil, classifyTransportError(err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseBytes))
	if err != nil {
		return nil, classifyTransportError(err)
	}

	switch {
	case resp.StatusCode == http.StatusUnauthorized || resp.StatusCode == http.StatusForbidden:
		return nil, ErrAuthFailed
	case resp.StatusCode != http.StatusOK:
		return nil, fmt.Errorf("%w: HTTP %d", ErrConnectionFailed, resp.StatusCode)
	}

	return body, nil
}

// classifyTransportError maps client errors onto the feed sentinels. The
// request URL is stripped so it never reaches a caller-facing message.
func classifyTransportError(err error) error {
	var urlErr *url.Error
	if errors.As(err, &urlErr) {
		err = urlErr.Err
	}

	if errors.Is(err, context.DeadlineExceeded) {
		return fmt.Errorf("%w: %v", ErrTimeout, err)
	}
	var netErr net.Error
	if errors.As(err, &netErr) && netErr.Timeout() {
		return fmt.Errorf("%w: %v", ErrTimeout, err)
	}

	return fmt.Errorf("%w: %w", ErrConnectionFailed, err)
}

// Ensure OTXHandler satisfies interface at compile time
var _ PulseFeedHandler = (*OTXHandler)(nil)
