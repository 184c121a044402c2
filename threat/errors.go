package threat

import (
	"errors"
	"fmt"
)

var (
	// ErrNotInitialized is returned when the feed client has no provider
	ErrNotInitialized = errors.New("feed client not initialized")

	// ErrInvalidLookback is returned for a lookback window below one day
	ErrInvalidLookback = errors.New("lookback days must be a positive integer")
)

// ProviderError reports that the bulk fetch from the provider failed outright
type ProviderError struct {
	Provider string
	Err      error
}

func (e *ProviderError) Error() string {
	return fmt.Sprintf("error fetching pulses from %s: %v", e.Provider, e.Err)
}

func (e *ProviderError) Unwrap() error {
	return e.Err
}

// RecordError reports a single indicator entry that could not be normalized.
// It is logged and skipped, never returned from Fetch.
type RecordError struct {
	PulseID string
	Index   int
	Err     error
}

func (e *RecordError) Error() string {
	return fmt.Sprintf("error processing indicator %d of pulse %s: %v", e.Index, e.PulseID, e.Err)
}

func (e *RecordError) Unwrap() error {
	return e.Err
}
