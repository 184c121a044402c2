package threat

import (
	"context"
	"fmt"
	"strings"
	"time"

	"ctidash/metrics"
	"ctidash/threat/feeds"

	"go.uber.org/zap"
)

const (
	// MaxIndicatorsPerType caps genuine records of a single type
	MaxIndicatorsPerType = 20

	// MinDistinctTypes is the diversity below which sample records are added
	MinDistinctTypes = 4

	// MaxSamplePerType skips a sample when its type already has this many records
	MaxSamplePerType = 5

	// MaxIndicators is the hard cap on a response
	MaxIndicators = 100

	// MaxLookbackDays clamps the window; it reaches back past any pulse
	MaxLookbackDays = 36500
)

// createdLayouts are tried in order when parsing an indicator's created field.
// Fractional seconds are accepted by time.Parse without a layout entry.
var createdLayouts = []string{
	"2006-01-02T15:04:05",
	time.RFC3339,
	time.RFC3339Nano,
	"2006-01-02 15:04:05",
}

// PulseSource is the provider side of the feed client
type PulseSource interface {
	Name() string
	PulsesSince(ctx context.Context, since time.Time) ([]feeds.Pulse, error)
}

// FeedClient turns provider pulses into normalized, diversity-capped indicators.
// It holds no per-request state and is safe for concurrent use.
type FeedClient struct {
	source  PulseSource
	logger  *zap.SugaredLogger
	now     func() time.Time
	samples []sampleRecord
}

// Option configures a FeedClient
type Option func(*FeedClient)

// WithClock overrides the time source
func WithClock(now func() time.Time) Option {
	return func(c *FeedClient) {
		c.now = now
	}
}

// NewFeedClient creates a feed client over the given provider
func NewFeedClient(source PulseSource, logger *zap.SugaredLogger, opts ...Option) (*FeedClient, error) {
	if source == nil {
		return nil, ErrNotInitialized
	}
	if logger == nil {
		logger = zap.NewNop().Sugar()
	}

	samples, err := loadSamples(samplesYAML)
	if err != nil {
		return nil, err
	}

	c := &FeedClient{
		source:  source,
		logger:  logger,
		now:     time.Now,
		samples: samples,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c, nil
}

// Fetch returns the indicators of pulses modified in the last lookbackDays days
func (c *FeedClient) Fetch(ctx context.Context, lookbackDays int) ([]ThreatIndicator, error) {
	if lookbackDays < 1 {
		return nil, fmt.Errorf("%w: got %d", ErrInvalidLookback, lookbackDays)
	}

	start := time.Now()
	defer func() {
		metrics.FeedFetchDuration.Observe(time.Since(start).Seconds())
	}()

	now := c.now()
	since := cutoff(now, lookbackDays)

	pulses, err := c.source.PulsesSince(ctx, since)
	if err != nil {
		metrics.FeedFetches.WithLabelValues(metrics.OutcomeProviderError).Inc()
		perr := &ProviderError{Provider: c.source.Name(), Err: err}
		c.logger.Errorw("Error fetching pulses",
			"provider", c.source.Name(),
			"lookback_days", lookbackDays,
			"error", err)
		return nil, perr
	}
	metrics.PulsesFetched.Add(float64(len(pulses)))

	indicators := make([]ThreatIndicator, 0, MaxIndicators)
	typeCounts := make(map[string]int)

	for _, pulse := range pulses {
		severity := DetermineSeverity(pulse.Tags)

		for idx, raw := range pulse.Indicators {
			ind, err := feeds.DecodeIndicator(raw)
			if err != nil {
				rerr := &RecordError{PulseID: pulse.ID, Index: idx, Err: err}
				c.logger.Warnw("Error processing indicator", "error", rerr)
				metrics.IndicatorsSkipped.WithLabelValues(metrics.SkipRecordError).Inc()
				continue
			}

			indicatorType := ind.Type
			if indicatorType == "" {
				indicatorType = UnknownType
			}

			if typeCounts[indicatorType] >= MaxIndicatorsPerType {
				metrics.IndicatorsSkipped.WithLabelValues(metrics.SkipTypeCap).Inc()
				continue
			}

			indicators = append(indicators, ThreatIndicator{
				Indicator: ind.Indicator,
				Type:      indicatorType,
				FirstSeen: parseCreated(ind.Created, now),
				Source:    SourceExternalFeed,
				Tags:      copyTags(pulse.Tags),
				Severity:  severity,
			})
			typeCounts[indicatorType]++
		}
	}

	distinctTypes := len(typeCounts)
	samplesAdded := 0
	if distinctTypes < MinDistinctTypes {
		c.logger.Warnw("Too few indicator types, adding sample data",
			"types", distinctTypes,
			"min_types", MinDistinctTypes)
		for _, s := range c.samples {
			if typeCounts[s.typ] < MaxSamplePerType {
				indicators = append(indicators, s.toIndicator(now))
				samplesAdded++
			}
		}
	}

	if len(indicators) > MaxIndicators {
		metrics.IndicatorsSkipped.WithLabelValues(metrics.SkipTruncated).Add(float64(len(indicators) - MaxIndicators))
		indicators = indicators[:MaxIndicators]
	}

	genuine := 0
	for _, ind := range indicators {
		if ind.Source == SourceExternalFeed {
			genuine++
		}
	}
	metrics.FeedFetches.WithLabelValues(metrics.OutcomeSuccess).Inc()
	metrics.IndicatorsEmitted.WithLabelValues(SourceExternalFeed).Add(float64(genuine))
	metrics.IndicatorsEmitted.WithLabelValues(SourceSampleData).Add(float64(len(indicators) - genuine))

	c.logger.Infow("Returning indicators",
		"provider", c.source.Name(),
		"pulses", len(pulses),
		"indicators", len(indicators),
		"types", distinctTypes,
		"samples_added", samplesAdded)

	return indicators, nil
}

// parseCreated parses a provider timestamp, falling back to now
// cutoff returns the start of a window of lookbackDays calendar days ending at now
func cutoff(now time.Time, lookbackDays int) time.Time {
	if lookbackDays > MaxLookbackDays {
		lookbackDays = MaxLookbackDays
	}
	return now.AddDate(0, 0, -lookbackDays)
}

func parseCreated(created string, now time.Time) time.Time {
	created = strings.TrimSpace(created)
	if created == "" {
		return now
	}
	for _, layout := range createdLayouts {
		if t, err := time.Parse(layout, created); err == nil {
			return t
		}
	}
	return now
}

func copyTags(tags []string) []string {
	out := make([]string, len(tags))
	copy(out, tags)
	return out
}
