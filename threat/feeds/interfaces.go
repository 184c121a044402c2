package feeds

import (
	"context"
	"errors"
	"time"
)

// =============================================================================
// Feed Handler Interface
// =============================================================================

// PulseFeedHandler defines the interface for a provider that serves pulses
type PulseFeedHandler interface {
	// Name returns a human readable provider name
	Name() string

	// PulsesSince retrieves every pulse modified after since in one bulk call
	PulsesSince(ctx context.Context, since time.Time) ([]Pulse, error)

	// Test verifies connectivity to the provider without fetching pulses
	Test(ctx context.Context) error

	// Close releases any resources held by the handler
	Close() error
}

// =============================================================================
// Errors
// =============================================================================

var (
	// Connection errors
	ErrConnectionFailed = errors.New("connection to feed failed")
	ErrAuthFailed       = errors.New("authentication failed")
	ErrTimeout          = errors.New("operation timed out")
	ErrInvalidResponse  = errors.New("invalid feed response")

	// Configuration errors
	ErrMissingAuth   = errors.New("authentication credentials are required")
	ErrInvalidConfig = errors.New("invalid feed configuration")
)
