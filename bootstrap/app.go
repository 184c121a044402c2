package bootstrap

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"sync"
	"syscall"
	"time"

	"ctidash/api"
	"ctidash/config"
	"ctidash/threat"
	"ctidash/threat/feeds"
	"ctidash/util/goroutine"

	"go.uber.org/zap"
)

// App represents the ctidash service with all its components.
type App struct {
	// Configuration
	Config *config.Config
	Logger *zap.Logger
	Sugar  *zap.SugaredLogger

	// Feed
	FeedHandler *feeds.OTXHandler
	FeedClient  *threat.FeedClient

	// Services
	APIServer *api.API

	// Lifecycle
	serviceWg *sync.WaitGroup
	serverErr chan error
	done      <-chan struct{}
}

// NewApp creates a new application instance and initializes all components.
func NewApp() (*App, error) {
	cfg, err := InitConfig()
	if err != nil {
		return nil, err
	}

	logger, sugar, err := InitLogger(cfg.Log.Level, cfg.Log.Format)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize logger: %w", err)
	}

	return newApp(cfg, logger, sugar)
}

// newApp wires the components from an already loaded configuration
func newApp(cfg *config.Config, logger *zap.Logger, sugar *zap.SugaredLogger) (*App, error) {
	app := &App{
		Config:    cfg,
		Logger:    logger,
		Sugar:     sugar,
		serviceWg: &sync.WaitGroup{},
		serverErr: make(chan error, 1),
	}

	sugar.Info("ctidash starting...")
	LogConfig(cfg, sugar)

	client, handler, err := InitFeedClient(cfg, sugar)
	if err != nil {
		if !cfg.IsGracefulMode() {
			sugar.Errorw("Feed client initialization failed",
				"error", err,
				"hint", ClassifyFeedError(err, cfg.Feed.BaseURL))
			return nil, err
		}
		sugar.Warnw("Feed client initialization failed, threat requests will return 500",
			"error", err,
			"hint", ClassifyFeedError(err, cfg.Feed.BaseURL))
	}
	app.FeedClient = client
	app.FeedHandler = handler

	// A nil *FeedClient inside a non-nil interface would read as initialized
	var fetcher api.ThreatFetcher
	var prober api.FeedProber
	if client != nil {
		fetcher = client
	}
	if handler != nil {
		prober = handler
	}
	app.APIServer = api.NewAPI(fetcher, prober, cfg, sugar)

	return app, nil
}

// Start starts all application services. Cancelling ctx ends WaitForShutdown.
func (a *App) Start(ctx context.Context) error {
	addr := a.Config.ListenAddr()
	a.done = ctx.Done()

	goroutine.Go(a.serviceWg, "api-server", a.Sugar, func() {
		a.Sugar.Infow("API server started", "addr", addr)
		if err := a.APIServer.Start(addr); err != nil && !errors.Is(err, http.ErrServerClosed) {
			a.Sugar.Errorw("API server error", "error", err)
			a.serverErr <- err
		}
	})

	return nil
}

// WaitForShutdown blocks until a shutdown signal is received, the context
// given to Start is cancelled, or the API server stops on its own.
func (a *App) WaitForShutdown() error {
	c := make(chan os.Signal, 1)
	signal.Notify(c, os.Interrupt, syscall.SIGTERM)
	defer signal.Stop(c)

	select {
	case sig := <-c:
		a.Sugar.Infow("Shutdown signal received", "signal", sig.String())
		return nil
	case <-a.done:
		a.Sugar.Info("Context cancelled, shutting down")
		return nil
	case err := <-a.serverErr:
		return err
	}
}

// Shutdown gracefully shuts down all components.
func (a *App) Shutdown() {
	a.Sugar.Info("Shutting down...")

	a.Sugar.Info("Phase 1: Stopping API server...")
	if a.APIServer != nil {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := a.APIServer.Stop(ctx); err != nil {
			a.Sugar.Errorw("Failed to stop API server", "error", err)
		}
	}

	a.Sugar.Info("Phase 2: Waiting for service goroutines to complete...")
	done := make(chan struct{})
	go func() {
		a.serviceWg.Wait()
		close(done)
	}()
	select {
	case <-done:
		a.Sugar.Info("All service goroutines stopped successfully")
	case <-time.After(10 * time.Second):
		a.Sugar.Warn("Service goroutine shutdown timed out")
	}

	a.Sugar.Info("Phase 3: Releasing feed connections...")
	if a.FeedHandler != nil {
		if err := a.FeedHandler.Close(); err != nil {
			a.Sugar.Errorw("Failed to close feed handler", "error", err)
		}
	}

	a.Sugar.Info("Shutdown complete")
	_ = a.Logger.Sync()
}
