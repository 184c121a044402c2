package bootstrap

import (
	"fmt"

	"ctidash/config"
	"ctidash/threat"
	"ctidash/threat/feeds"

	"go.uber.org/zap"
)

// InitFeedClient resolves the OTX API key and builds the provider handler
// and the feed client on top of it.
func InitFeedClient(cfg *config.Config, sugar *zap.SugaredLogger) (*threat.FeedClient, *feeds.OTXHandler, error) {
	apiKey, err := config.ResolveOTXAPIKey(cfg)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to resolve OTX API key: %w", err)
	}

	handler, err := feeds.NewOTXHandler(feeds.OTXConfig{
		APIKey:   apiKey,
		BaseURL:  cfg.Feed.BaseURL,
		PageSize: cfg.Feed.PageSize,
		MaxPages: cfg.Feed.MaxPages,
		Timeout:  cfg.Feed.RequestTimeout,
	}, sugar)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to create OTX handler: %w", err)
	}

	client, err := threat.NewFeedClient(handler, sugar)
	if err != nil {
		_ = handler.Close()
		return nil, nil, fmt.Errorf("failed to create feed client: %w", err)
	}

	sugar.Infow("Feed client initialized",
		"provider", handler.Name(),
		"base_url", cfg.Feed.BaseURL,
		"page_size", cfg.Feed.PageSize,
		"max_pages", cfg.Feed.MaxPages)

	return client, handler, nil
}
