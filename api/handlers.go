package api

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strconv"
	"strings"
	"time"

	"ctidash/threat"
)

// ErrorResponse is the JSON body of every non-2xx answer
type ErrorResponse struct {
	Detail string `json:"detail"`
}

// HealthResponse is the JSON body of the health endpoint
type HealthResponse struct {
	Status     string `json:"status"`
	FeedClient string `json:"feed_client"`
	Provider   string `json:"provider,omitempty"`
	Feed       string `json:"feed,omitempty"`
	FeedError  string `json:"feed_error,omitempty"`
	Time       string `json:"time"`
}

const (
	healthHealthy  = "healthy"
	healthDegraded = "degraded"

	deepCheckTimeout = 10 * time.Second
)

// respondJSON writes data as JSON with the given status code
func (a *API) respondJSON(w http.ResponseWriter, data interface{}, statusCode int) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)

	if err := json.NewEncoder(w).Encode(data); err != nil {
		a.logger.Errorw("Failed to encode JSON response",
			"error", err,
			"data_type", fmt.Sprintf("%T", data))
		// Response already started, can't send error to client
	}
}

// getThreats godoc
//
//	@Summary		Get threat indicators
//	@Description	Returns up to 100 normalized indicators from pulses modified in the lookback window. Sample records are appended when the feed yields fewer than four indicator types.
//	@Tags			threats
//	@Produce		json
//	@Param			days	query		int	false	"Lookback window in days"	default(7)	minimum(1)
//	@Success		200		{array}		threat.ThreatIndicator
//	@Failure		400		{object}	ErrorResponse
//	@Failure		500		{object}	ErrorResponse
//	@Router			/api/threats [get]
func (a *API) getThreats(w http.ResponseWriter, r *http.Request) {
	logger := a.requestLogger(r)

	days := a.config.API.DefaultLookbackDays
	if raw := strings.TrimSpace(r.URL.Query().Get("days")); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil {
			writeError(w, http.StatusBadRequest, "days must be an integer", nil, logger)
			return
		}
		days = n
	}

	rule := fmt.Sprintf("min=1,max=%d", a.config.API.MaxLookbackDays)
	if err := a.validate.Var(days, rule); err != nil {
		writeError(w, http.StatusBadRequest,
			fmt.Sprintf("days must be between 1 and %d", a.config.API.MaxLookbackDays), nil, logger)
		return
	}

	if a.fetcher == nil {
		writeError(w, http.StatusInternalServerError, "Feed client not initialized", threat.ErrNotInitialized, logger)
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), a.fetchTimeout())
	defer cancel()

	indicators, err := a.fetcher.Fetch(ctx, days)
	if err != nil {
		writeError(w, http.StatusInternalServerError, err.Error(), err, logger)
		return
	}

	fields := []interface{}{"days", days, "count", len(indicators)}
	if start, ok := GetTraceStart(r.Context()); ok {
		fields = append(fields, "elapsed_ms", time.Since(start).Milliseconds())
	}
	logger.Infow("Threats served", fields...)

	a.respondJSON(w, indicators, http.StatusOK)
}

// healthCheck godoc
//
//	@Summary		Health check
//	@Description	Returns the health status of the service. With deep=1 the upstream feed is probed too.
//	@Tags			system
//	@Produce		json
//	@Param			deep	query		bool	false	"Probe the upstream feed"
//	@Success		200		{object}	HealthResponse
//	@Failure		503		{object}	HealthResponse
//	@Router			/health [get]
func (a *API) healthCheck(w http.ResponseWriter, r *http.Request) {
	resp := HealthResponse{
		Status:     healthHealthy,
		FeedClient: "ready",
		Time:       time.Now().UTC().Format(time.RFC3339),
	}
	if a.fetcher == nil {
		resp.Status = healthDegraded
		resp.FeedClient = "not_initialized"
	}

	statusCode := http.StatusOK
	if deep, _ := strconv.ParseBool(r.URL.Query().Get("deep")); deep && a.prober != nil {
		resp.Provider = a.prober.Name()

		ctx, cancel := context.WithTimeout(r.Context(), deepCheckTimeout)
		defer cancel()

		if err := a.prober.Test(ctx); err != nil {
			a.requestLogger(r).Warnw("Feed health probe failed", "provider", resp.Provider, "error", err)
			resp.Status = healthDegraded
			resp.Feed = "unreachable"
			resp.FeedError = sanitizeErrorMessage(err.Error())
			statusCode = http.StatusServiceUnavailable
		} else {
			resp.Feed = "reachable"
		}
	}

	a.respondJSON(w, resp, statusCode)
}
