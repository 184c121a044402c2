package feeds

import (
	"bytes"
	"encoding/json"
	"fmt"
)

// =============================================================================
// OTX API Types
// =============================================================================

// pulseResponse represents one page of the subscribed pulses endpoint
type pulseResponse struct {
	Results []Pulse `json:"results"`
	Count   int     `json:"count"`
	NextURL string  `json:"next"`
	PrevURL string  `json:"previous"`
}

// Pulse represents an OTX pulse: a bundle of indicators sharing one tag set.
// Indicators stay undecoded so that one malformed entry cannot fail the page.
type Pulse struct {
	ID          string            `json:"id"`
	Name        string            `json:"name"`
	Description string            `json:"description"`
	AuthorName  string            `json:"author_name"`
	Modified    string            `json:"modified"`
	Created     string            `json:"created"`
	Tags        []string          `json:"tags"`
	References  []string          `json:"references"`
	TLP         string            `json:"tlp"`
	Indicators  []json.RawMessage `json:"indicators"`
}

// Indicator represents a single OTX indicator entry inside a pulse
type Indicator struct {
	Indicator   string `json:"indicator"`
	Type        string `json:"type"`
	Created     string `json:"created"`
	Title       string `json:"title"`
	Description string `json:"description"`
	Role        string `json:"role"`
}

// DecodeIndicator decodes one raw indicator entry of a pulse
func DecodeIndicator(raw json.RawMessage) (Indicator, error) {
	var ind Indicator
	trimmed := bytes.TrimSpace(raw)
	if len(trimmed) == 0 || bytes.Equal(trimmed, []byte("null")) {
		return ind, fmt.Errorf("%w: empty indicator entry", ErrInvalidResponse)
	}
	if err := json.Unmarshal(raw, &ind); err != nil {
		return ind, fmt.Errorf("%w: %v", ErrInvalidResponse, err)
	}
	return ind, nil
}
