// Package handler exposes the dashboard API over gin.
package handler

import (
	"context"
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog/log"

	"stock-dashboard-backend/internal/analysis"
	"stock-dashboard-backend/internal/metrics"
	"stock-dashboard-backend/internal/portfolio"
	"stock-dashboard-backend/internal/service"
	"stock-dashboard-backend/internal/stockdata"
	"stock-dashboard-backend/internal/stream"
	"stock-dashboard-backend/internal/watchlist"
)

// Handler holds the dependencies of every endpoint.
type Handler struct {
	Market      *stockdata.Market
	Predictions *service.PredictionService
	Tasks       *service.TaskManager
	Watchlist   *watchlist.Service
	Portfolio   portfolio.Definition
	Hub         *stream.Hub
	Metrics     *metrics.Metrics
	// Checks are the backing stores pinged by Health, keyed by name.
	Checks map[string]Pinger
}

// Pinger is a store that can report whether it is reachable.
type Pinger interface {
	Ping(ctx context.Context) error
}

const healthTimeout = 2 * time.Second

// Health pings every configured store. Any failure makes it 503.
func (h *Handler) Health(c *gin.Context) {
	ctx, cancel := context.WithTimeout(c.Request.Context(), healthTimeout)
	defer cancel()

	status, code := "ok", http.StatusOK
	checks := make(map[string]string, len(h.Checks))
	for name, p := range h.Checks {
		if err := p.Ping(ctx); err != nil {
			log.Warn().Err(err).Str("store", name).Msg("health check failed")
			checks[name] = err.Error()
			status, code = "degraded", http.StatusServiceUnavailable
			continue
		}
		checks[name] = "ok"
	}
	c.JSON(code, gin.H{"status": status, "checks": checks})
}

// statusFor maps service errors to HTTP status codes.
func statusFor(err error) int {
	switch {
	case errors.Is(err, stockdata.ErrInvalidSymbol),
		errors.Is(err, stockdata.ErrInvalidDays),
		errors.Is(err, analysis.ErrUnknownHorizon),
		errors.Is(err, service.ErrNoSymbols),
		errors.Is(err, service.ErrTooManySymbols):
		return http.StatusBadRequest
	case errors.Is(err, context.DeadlineExceeded):
		return http.StatusGatewayTimeout
	case errors.Is(err, context.Canceled):
		return http.StatusServiceUnavailable
	default:
		return http.StatusInternalServerError
	}
}

func respondError(c *gin.Context, err error) {
	status := statusFor(err)
	if status >= http.StatusInternalServerError {
		log.Error().Err(err).Str("path", c.Request.URL.Path).Msg("request failed")
	}
	c.JSON(status, gin.H{"error": err.Error()})
}

// intQuery parses an optional integer query parameter.
func intQuery(c *gin.Context, key string, def int) (int, bool) {
	v := c.Query(key)
	if v == "" {
		return def, true
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid " + key + ": " + v})
		return 0, false
	}
	return n, true
}
