// Package api ctidash threat dashboard API
//
//	@title			ctidash API
//	@version		1.0
//	@description	Normalized threat indicators from the subscribed OTX pulses, for the dashboard
//
// @license.name	MIT
// @license.url	https://opensource.org/licenses/MIT
//
// @host		localhost:8000
// @BasePath	/
package api

import (
	"context"
	"net/http"
	"sync"
	"time"

	"ctidash/config"
	"ctidash/threat"

	"github.com/go-playground/validator/v10"
	"github.com/gorilla/mux"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	httpSwagger "github.com/swaggo/http-swagger"
	"go.uber.org/zap"
)

// ThreatFetcher produces normalized indicators for a lookback window
type ThreatFetcher interface {
	Fetch(ctx context.Context, lookbackDays int) ([]threat.ThreatIndicator, error)
}

// FeedProber checks connectivity to the upstream provider
type FeedProber interface {
	Name() string
	Test(ctx context.Context) error
}

// API holds the API server
type API struct {
	router   *mux.Router
	handler  http.Handler
	server   *http.Server
	serverMu sync.Mutex
	fetcher  ThreatFetcher
	prober   FeedProber
	config   *config.Config
	logger   *zap.SugaredLogger
	validate *validator.Validate
}

// NewAPI creates a new API server. A nil fetcher is allowed: threat
// requests then fail with 500 until the process is restarted with a key.
func NewAPI(fetcher ThreatFetcher, prober FeedProber, config *config.Config, logger *zap.SugaredLogger) *API {
	if logger == nil {
		logger = zap.NewNop().Sugar()
	}
	api := &API{
		router:   mux.NewRouter(),
		fetcher:  fetcher,
		prober:   prober,
		config:   config,
		logger:   logger,
		validate: validator.New(),
	}
	api.setupRoutes()
	api.handler = api.requestIDMiddleware(api.recoveryMiddleware(api.corsMiddleware(api.router)))
	return api
}

// setupRoutes sets up the API routes
func (a *API) setupRoutes() {
	a.router.Use(a.metricsMiddleware)

	a.router.HandleFunc("/api/threats", a.getThreats).Methods("GET")
	a.router.HandleFunc("/threats", a.getThreats).Methods("GET")
	a.router.HandleFunc("/health", a.healthCheck).Methods("GET")
	a.router.Handle("/metrics", promhttp.Handler())

	// Swagger UI
	a.router.PathPrefix("/swagger/").Handler(httpSwagger.WrapHandler)
}

// Handler returns the fully wrapped HTTP handler
func (a *API) Handler() http.Handler {
	return a.handler
}

// Start starts the API server and blocks until it stops
func (a *API) Start(addr string) error {
	a.serverMu.Lock()
	a.server = &http.Server{
		Addr:              addr,
		Handler:           a.handler,
		ReadHeaderTimeout: a.config.API.ReadHeaderTimeout,
		ReadTimeout:       a.config.API.ReadTimeout,
		WriteTimeout:      a.config.API.WriteTimeout,
		IdleTimeout:       a.config.API.IdleTimeout,
	}
	server := a.server
	a.serverMu.Unlock()

	return server.ListenAndServe()
}

// Stop gracefully stops the API server
func (a *API) Stop(ctx context.Context) error {
	a.serverMu.Lock()
	server := a.server
	a.serverMu.Unlock()

	if server != nil {
		return server.Shutdown(ctx)
	}
	return nil
}

// fetchTimeout bounds one threats request including every provider page
func (a *API) fetchTimeout() time.Duration {
	if a.config.Feed.RequestTimeout > 0 {
		return a.config.Feed.RequestTimeout
	}
	return 60 * time.Second
}
