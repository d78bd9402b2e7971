package stockdata

import (
	"time"

	"stock-dashboard-backend/internal/cache"
)

// CacheProvider stores JSON-encodable values with an expiration.
type CacheProvider interface {
	Get(key string, dest any) error
	Set(key string, value any, expiration time.Duration) error
}

var (
	_ CacheProvider = (*cache.Memory)(nil)
	_ CacheProvider = (*cache.Redis)(nil)
)
