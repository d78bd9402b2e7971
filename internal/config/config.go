// Package config loads settings from an optional YAML file, a .env file and
// environment variables, in that order of precedence (lowest first).
package config

import (
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/robfig/cron/v3"
	"gopkg.in/yaml.v3"

	"stock-dashboard-backend/internal/portfolio"
)

const DefaultPath = "configs/config.yaml"

// Watchlist storage backends.
const (
	BackendMemory = "memory"
	BackendRedis  = "redis"
	BackendSQLite = "sqlite"
)

// Config holds all application configuration.
type Config struct {
	Server struct {
		Port            string        `yaml:"port"`
		Mode            string        `yaml:"mode"`
		AllowedOrigins  []string      `yaml:"allowed_origins"`
		ShutdownTimeout time.Duration `yaml:"shutdown_timeout"`
	} `yaml:"server"`
	Log struct {
		Level  string `yaml:"level"`
		Format string `yaml:"format"`
	} `yaml:"log"`
	Redis struct {
		Enabled    bool   `yaml:"enabled"`
		Addr       string `yaml:"addr"`
		Password   string `yaml:"password"`
		DB         int    `yaml:"db"`
		MaxRetries uint64 `yaml:"max_retries"`
		KeyPrefix  string `yaml:"key_prefix"`
	} `yaml:"redis"`
	Database struct {
		SQLitePath string `yaml:"sqlite_path"`
	} `yaml:"database"`
	Watchlist struct {
		Backend string `yaml:"backend"`
		Key     string `yaml:"key"`
	} `yaml:"watchlist"`
	Market struct {
		RefreshCron string        `yaml:"refresh_cron"`
		ChartTTL    time.Duration `yaml:"chart_ttl"`
		LookupDelay time.Duration `yaml:"lookup_delay"`
		Seed        uint64        `yaml:"seed"`
	} `yaml:"market"`
	Prediction struct {
		Delay       time.Duration `yaml:"delay"`
		TaskWorkers int           `yaml:"task_workers"`
		TaskTTL     time.Duration `yaml:"task_ttl"`
		MaxSymbols  int           `yaml:"max_symbols"`
		CleanupCron string        `yaml:"cleanup_cron"`
	} `yaml:"prediction"`
	RateLimit struct {
		Enabled           bool `yaml:"enabled"`
		RequestsPerMinute int  `yaml:"requests_per_minute"`
		Burst             int  `yaml:"burst"`
	} `yaml:"rate_limit"`
	Portfolio portfolio.Definition `yaml:"portfolio"`
}

// Default returns the built-in configuration.
func Default() *Config {
	cfg := &Config{}
	cfg.Server.Port = "8080"
	cfg.Server.Mode = "release"
	cfg.Server.AllowedOrigins = []string{"http://localhost:5173", "http://localhost:3000"}
	cfg.Server.ShutdownTimeout = 10 * time.Second
	cfg.Log.Level = "info"
	cfg.Log.Format = "console"
	cfg.Redis.Addr = "localhost:6379"
	cfg.Redis.MaxRetries = 5
	cfg.Redis.KeyPrefix = "dashboard:"
	cfg.Database.SQLitePath = "data/dashboard.db"
	cfg.Watchlist.Backend = BackendSQLite
	cfg.Watchlist.Key = "watchlist"
	cfg.Market.RefreshCron = "*/5 * * * * *"
	cfg.Market.ChartTTL = 10 * time.Minute
	cfg.Market.LookupDelay = time.Second
	cfg.Prediction.Delay = time.Second
	cfg.Prediction.TaskWorkers = 3
	cfg.Prediction.TaskTTL = 30 * time.Minute
	cfg.Prediction.MaxSymbols = 20
	cfg.Prediction.CleanupCron = "0 * * * * *"
	cfg.RateLimit.Enabled = true
	cfg.RateLimit.RequestsPerMinute = 30
	cfg.RateLimit.Burst = 10
	cfg.Portfolio = portfolio.Default()
	return cfg
}

// Load builds the configuration: defaults, then the YAML file at path (if
// present), then .env, then the process environment.
func Load(path string) (*Config, error) {
	cfg := Default()

	data, err := os.ReadFile(path)
	if err != nil && !errors.Is(err, os.ErrNotExist) {
		return nil, fmt.Errorf("read config: %w", err)
	}
	if len(data) > 0 {
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("parse config: %w", err)
		}
	}

	if err := godotenv.Load(); err != nil && !errors.Is(err, os.ErrNotExist) {
		return nil, fmt.Errorf("load .env: %w", err)
	}
	cfg.applyEnv()

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (c *Config) applyEnv() {
	c.Server.Port = getEnvString("PORT", c.Server.Port)
	c.Server.Mode = getEnvString("GIN_MODE", c.Server.Mode)
	c.Server.AllowedOrigins = getEnvList("CORS_ORIGINS", c.Server.AllowedOrigins)
	c.Server.ShutdownTimeout = getEnvDuration("SHUTDOWN_TIMEOUT", c.Server.ShutdownTimeout)

	c.Log.Level = getEnvString("LOG_LEVEL", c.Log.Level)
	c.Log.Format = getEnvString("LOG_FORMAT", c.Log.Format)

	c.Redis.Enabled = getEnvBool("REDIS_ENABLED", c.Redis.Enabled)
	c.Redis.Addr = getEnvString("REDIS_ADDR", c.Redis.Addr)
	c.Redis.Password = getEnvString("REDIS_PASSWORD", c.Redis.Password)
	c.Redis.DB = getEnvInt("REDIS_DB", c.Redis.DB)

	c.Database.SQLitePath = getEnvString("SQLITE_PATH", c.Database.SQLitePath)

	c.Watchlist.Backend = strings.ToLower(getEnvString("WATCHLIST_BACKEND", c.Watchlist.Backend))

	c.Market.RefreshCron = getEnvString("QUOTE_REFRESH_CRON", c.Market.RefreshCron)
	c.Market.ChartTTL = getEnvDuration("CHART_TTL", c.Market.ChartTTL)
	c.Market.LookupDelay = getEnvDuration("LOOKUP_DELAY", c.Market.LookupDelay)
	c.Market.Seed = getEnvUint64("RANDOM_SEED", c.Market.Seed)

	c.Prediction.Delay = getEnvDuration("PREDICT_DELAY", c.Prediction.Delay)
	c.Prediction.TaskWorkers = getEnvInt("PREDICT_TASK_WORKERS", c.Prediction.TaskWorkers)
	c.Prediction.TaskTTL = getEnvDuration("PREDICT_TASK_TTL", c.Prediction.TaskTTL)

	c.RateLimit.Enabled = getEnvBool("RATE_LIMIT_ENABLED", c.RateLimit.Enabled)
	c.RateLimit.RequestsPerMinute = getEnvInt("RATE_LIMIT_RPM", c.RateLimit.RequestsPerMinute)
	c.RateLimit.Burst = getEnvInt("RATE_LIMIT_BURST", c.RateLimit.Burst)
}

var cronParser = cron.NewParser(cron.Second | cron.Minute | cron.Hour | cron.Dom | cron.Month | cron.Dow | cron.Descriptor)

// Validate checks the configuration for inconsistent values.
func (c *Config) Validate() error {
	var errs []error
	if c.Server.Port == "" {
		errs = append(errs, errors.New("server.port is required"))
	}
	switch c.Watchlist.Backend {
	case BackendMemory:
	case BackendRedis:
		if !c.Redis.Enabled {
			errs = append(errs, errors.New("watchlist.backend=redis requires redis.enabled"))
		}
	case BackendSQLite:
		if c.Database.SQLitePath == "" {
			errs = append(errs, errors.New("watchlist.backend=sqlite requires database.sqlite_path"))
		}
	default:
		errs = append(errs, fmt.Errorf("unknown watchlist.backend %q", c.Watchlist.Backend))
	}
	for name, expr := range map[string]string{
		"market.refresh_cron":     c.Market.RefreshCron,
		"prediction.cleanup_cron": c.Prediction.CleanupCron,
	} {
		if _, err := cronParser.Parse(expr); err != nil {
			errs = append(errs, fmt.Errorf("%s: %w", name, err))
		}
	}
	if c.RateLimit.Enabled && (c.RateLimit.RequestsPerMinute <= 0 || c.RateLimit.Burst <= 0) {
		errs = append(errs, errors.New("rate_limit requires positive requests_per_minute and burst"))
	}
	if c.Prediction.TaskWorkers <= 0 {
		errs = append(errs, errors.New("prediction.task_workers must be positive"))
	}
	for _, h := range c.Portfolio.Holdings {
		if h.Symbol == "" || h.Shares < 0 || h.AveragePrice < 0 {
			errs = append(errs, fmt.Errorf("invalid portfolio holding %+v", h))
		}
	}
	return errors.Join(errs...)
}
