package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"
)

func writeConfig(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yaml")
	if err := os.WriteFile(path, []byte(body), 0o644); err != nil {
		t.Fatalf("write config: %v", err)
	}
	return path
}

func TestLoad_DefaultsWithoutFile(t *testing.T) {
	cfg, err := Load(filepath.Join(t.TempDir(), "missing.yaml"))
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if cfg.Server.Port != "8080" || cfg.Watchlist.Backend != BackendSQLite {
		t.Errorf("unexpected defaults: %+v", cfg.Server)
	}
	if len(cfg.Portfolio.Holdings) != 3 || cfg.Portfolio.Name != "My Portfolio" {
		t.Errorf("expected default portfolio, got %+v", cfg.Portfolio)
	}
}

func TestLoad_FileThenEnv(t *testing.T) {
	path := writeConfig(t, `
server:
  port: "9000"
  allowed_origins: ["http://dash.local"]
market:
  chart_ttl: 2m
  refresh_cron: "*/10 * * * * *"
watchlist:
  backend: memory
rate_limit:
  enabled: false
portfolio:
  name: Retirement
  holdings:
    - symbol: JNJ
      shares: 10
      average_price: 150
`)
	t.Setenv("PORT", "9100")
	t.Setenv("CORS_ORIGINS", "http://a.local, http://b.local")
	t.Setenv("PREDICT_TASK_TTL", "5m")

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if cfg.Server.Port != "9100" {
		t.Errorf("env should override file port, got %s", cfg.Server.Port)
	}
	if len(cfg.Server.AllowedOrigins) != 2 || cfg.Server.AllowedOrigins[1] != "http://b.local" {
		t.Errorf("origins: %v", cfg.Server.AllowedOrigins)
	}
	if cfg.Market.ChartTTL != 2*time.Minute || cfg.Market.RefreshCron != "*/10 * * * * *" {
		t.Errorf("market: %+v", cfg.Market)
	}
	if cfg.Prediction.TaskTTL != 5*time.Minute {
		t.Errorf("task ttl: %v", cfg.Prediction.TaskTTL)
	}
	if cfg.RateLimit.Enabled {
		t.Errorf("rate limit should be disabled by the file")
	}
	if cfg.Portfolio.Name != "Retirement" || len(cfg.Portfolio.Holdings) != 1 || cfg.Portfolio.Holdings[0].AveragePrice != 150 {
		t.Errorf("portfolio: %+v", cfg.Portfolio)
	}
	// unset keys keep their defaults
	if cfg.Prediction.TaskWorkers != 3 {
		t.Errorf("task workers: %d", cfg.Prediction.TaskWorkers)
	}
}

func TestLoad_InvalidYAML(t *testing.T) {
	if _, err := Load(writeConfig(t, "server: [")); err == nil {
		t.Fatalf("expected parse error")
	}
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*Config)
		want   string
	}{
		{"unknown backend", func(c *Config) { c.Watchlist.Backend = "etcd" }, "unknown watchlist.backend"},
		{"redis backend without redis", func(c *Config) { c.Watchlist.Backend = BackendRedis }, "requires redis.enabled"},
		{"sqlite backend without path", func(c *Config) { c.Database.SQLitePath = "" }, "requires database.sqlite_path"},
		{"bad cron", func(c *Config) { c.Market.RefreshCron = "every five seconds" }, "market.refresh_cron"},
		{"bad rate", func(c *Config) { c.RateLimit.Burst = 0 }, "rate_limit"},
		{"bad holding", func(c *Config) { c.Portfolio.Holdings[0].Shares = -1 }, "invalid portfolio holding"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := Default()
			tt.mutate(cfg)
			err := cfg.Validate()
			if err == nil || !strings.Contains(err.Error(), tt.want) {
				t.Errorf("got %v, want error containing %q", err, tt.want)
			}
		})
	}
	if err := Default().Validate(); err != nil {
		t.Errorf("defaults should validate: %v", err)
	}
}

func TestEnvInvalidValuesKeepCurrent(t *testing.T) {
	t.Setenv("RATE_LIMIT_RPM", "lots")
	t.Setenv("RANDOM_SEED", "-1")
	t.Setenv("CHART_TTL", "soon")
	t.Setenv("CORS_ORIGINS", " , ")

	cfg := Default()
	cfg.applyEnv()
	if cfg.RateLimit.RequestsPerMinute != 30 {
		t.Errorf("rpm = %d", cfg.RateLimit.RequestsPerMinute)
	}
	if cfg.Market.Seed != 0 {
		t.Errorf("seed = %d", cfg.Market.Seed)
	}
	if cfg.Market.ChartTTL != 10*time.Minute {
		t.Errorf("chart ttl = %v", cfg.Market.ChartTTL)
	}
	if len(cfg.Server.AllowedOrigins) != 2 {
		t.Errorf("origins = %v", cfg.Server.AllowedOrigins)
	}
}

func TestEnvSeed(t *testing.T) {
	t.Setenv("RANDOM_SEED", "18446744073709551615")
	cfg := Default()
	cfg.applyEnv()
	if cfg.Market.Seed != 18446744073709551615 {
		t.Errorf("seed = %d", cfg.Market.Seed)
	}
}
