package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog/log"

	"stock-dashboard-backend/internal/analysis"
	"stock-dashboard-backend/internal/cache"
	"stock-dashboard-backend/internal/config"
	"stock-dashboard-backend/internal/handler"
	"stock-dashboard-backend/internal/history"
	"stock-dashboard-backend/internal/logger"
	"stock-dashboard-backend/internal/metrics"
	"stock-dashboard-backend/internal/middleware"
	"stock-dashboard-backend/internal/scheduler"
	"stock-dashboard-backend/internal/service"
	"stock-dashboard-backend/internal/stockdata"
	"stock-dashboard-backend/internal/stream"
	"stock-dashboard-backend/internal/watchlist"
)

func main() {
	path := os.Getenv("CONFIG_PATH")
	if path == "" {
		path = config.DefaultPath
	}
	cfg, err := config.Load(path)
	if err != nil {
		logger.Setup("info", "console")
		log.Fatal().Err(err).Str("path", path).Msg("load config")
	}
	logger.Setup(cfg.Log.Level, cfg.Log.Format)
	gin.SetMode(cfg.Server.Mode)

	if err := run(cfg); err != nil {
		log.Fatal().Err(err).Msg("server exited")
	}
	log.Info().Msg("server stopped")
}

// run builds every component and serves until a signal arrives or the
// listener fails. Stores are closed on every return path.
func run(cfg *config.Config) error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	var err error
	memory := cache.NewMemory(time.Minute)
	var provider stockdata.CacheProvider = memory
	var redisStore *cache.Redis
	if cfg.Redis.Enabled {
		redisStore, err = cache.NewRedis(ctx, cache.RedisOptions{
			Addr:       cfg.Redis.Addr,
			Password:   cfg.Redis.Password,
			DB:         cfg.Redis.DB,
			MaxRetries: cfg.Redis.MaxRetries,
			KeyPrefix:  cfg.Redis.KeyPrefix,
		})
		if err != nil {
			return fmt.Errorf("redis unavailable: %w", err)
		}
		defer redisStore.Close()
		provider = redisStore
	}

	checks := map[string]handler.Pinger{}
	if redisStore != nil {
		checks["redis"] = redisStore
	}

	var recorder history.Recorder = history.NewNoopRecorder()
	var sqliteStore *history.SQLiteStore
	if cfg.Database.SQLitePath != "" {
		sqliteStore, err = history.OpenSQLite(history.ResolvePath(cfg.Database.SQLitePath))
		if err != nil {
			return fmt.Errorf("open sqlite: %w", err)
		}
		recorder = sqliteStore
		checks["sqlite"] = sqliteStore
	}
	defer recorder.Close()

	var kv watchlist.KV
	switch cfg.Watchlist.Backend {
	case config.BackendRedis:
		kv = redisStore
	case config.BackendSQLite:
		kv = sqliteStore
	default:
		kv = memory
	}

	m := metrics.New()
	rnd := analysis.NewLockedRand(cfg.Market.Seed)
	market := stockdata.NewMarket(stockdata.NewGenerator(rnd, time.Now), provider, stockdata.MarketOptions{
		ChartTTL:    cfg.Market.ChartTTL,
		LookupDelay: cfg.Market.LookupDelay,
	})
	predictions := service.NewPredictionService(market, analysis.NewGenerator(rnd, time.Now), recorder, m, cfg.Prediction.Delay)
	tasks := service.NewTaskManager(predictions, m, service.TaskOptions{
		TTL:        cfg.Prediction.TaskTTL,
		Workers:    cfg.Prediction.TaskWorkers,
		MaxSymbols: cfg.Prediction.MaxSymbols,
	})
	hub := stream.NewHub(m, cfg.Server.AllowedOrigins)

	sched := scheduler.New(market, hub, tasks, m)
	if err := sched.RegisterAll(cfg.Market.RefreshCron, cfg.Prediction.CleanupCron); err != nil {
		return err
	}
	sched.Start()

	var limiter *middleware.RateLimiter
	if cfg.RateLimit.Enabled {
		limiter = middleware.NewRateLimiter(cfg.RateLimit.RequestsPerMinute, cfg.RateLimit.Burst)
	}
	h := &handler.Handler{
		Market:      market,
		Predictions: predictions,
		Tasks:       tasks,
		Watchlist:   watchlist.NewService(kv, cfg.Watchlist.Key),
		Portfolio:   cfg.Portfolio,
		Hub:         hub,
		Metrics:     m,
		Checks:      checks,
	}
	srv := &http.Server{
		Addr:              ":" + cfg.Server.Port,
		Handler:           handler.NewRouter(h, handler.RouterOptions{AllowedOrigins: cfg.Server.AllowedOrigins, Limiter: limiter}),
		ReadHeaderTimeout: 10 * time.Second,
	}

	serveErr := make(chan error, 1)
	go func() {
		log.Info().Str("addr", srv.Addr).Str("watchlist", cfg.Watchlist.Backend).Bool("redis", cfg.Redis.Enabled).Msg("server starting")
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serveErr <- err
		}
		close(serveErr)
	}()

	var runErr error
	select {
	case <-ctx.Done():
		log.Info().Msg("shutting down")
	case err := <-serveErr:
		runErr = fmt.Errorf("server failed: %w", err)
		log.Error().Err(err).Msg("server failed, shutting down")
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
	defer cancel()

	sched.Stop(shutdownCtx)
	tasks.Shutdown()
	hub.Close(shutdownCtx)
	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("server shutdown")
	}
	if err := tasks.Wait(shutdownCtx); err != nil {
		log.Warn().Err(err).Msg("prediction tasks did not finish")
	}
	return runErr
}
