package handler

import (
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"

	"stock-dashboard-backend/internal/middleware"
)

// RouterOptions configures NewRouter.
type RouterOptions struct {
	AllowedOrigins []string
	// Limiter guards the prediction endpoints; nil disables limiting.
	Limiter *middleware.RateLimiter
}

// NewRouter registers every route on a new engine.
func NewRouter(h *Handler, opts RouterOptions) *gin.Engine {
	r := gin.New()
	r.Use(middleware.Recovery(), middleware.Logger())
	if h.Metrics != nil {
		r.Use(middleware.Metrics(h.Metrics))
	}
	corsCfg := cors.Config{
		AllowOrigins:     opts.AllowedOrigins,
		AllowMethods:     []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowHeaders:     []string{"Origin", "Content-Type", "Authorization"},
		ExposeHeaders:    []string{"Content-Length", "Retry-After"},
		AllowCredentials: true,
		MaxAge:           12 * time.Hour,
	}
	if len(opts.AllowedOrigins) == 0 {
		corsCfg.AllowOrigins = nil
		corsCfg.AllowAllOrigins = true
		corsCfg.AllowCredentials = false
	}
	r.Use(cors.New(corsCfg))

	limited := []gin.HandlerFunc{}
	if opts.Limiter != nil {
		limited = append(limited, opts.Limiter.Handler())
	}

	api := r.Group("/api")
	{
		api.GET("/health", h.Health)

		api.GET("/stocks", h.GetStocks)
		api.GET("/stocks/:symbol", h.GetStock)
		api.GET("/stocks/:symbol/chart", h.GetChart)
		api.GET("/stocks/:symbol/indicators", h.GetIndicators)

		api.POST("/predict", append(limited, h.Predict)...)
		api.GET("/predictions/:symbol", h.GetPredictionHistory)
		api.POST("/predict/tasks", append(limited, h.CreatePredictTask)...)
		api.GET("/predict/tasks/:task_id", h.GetPredictTask)
		api.DELETE("/predict/tasks/:task_id", h.CancelPredictTask)

		api.GET("/watchlist", h.GetWatchlist)
		api.POST("/watchlist/:symbol/toggle", h.ToggleWatchlist)
		api.DELETE("/watchlist/:symbol", h.RemoveFromWatchlist)

		api.GET("/portfolio", h.GetPortfolio)
	}

	if h.Hub != nil {
		r.GET("/ws/quotes", h.QuoteStream)
	}
	if h.Metrics != nil {
		r.GET("/metrics", gin.WrapH(h.Metrics.Handler()))
	}
	return r
}
