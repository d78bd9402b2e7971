// Package cache provides the Redis and in-process backends shared by the
// chart cache and the watchlist store.
package cache

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	gocache "github.com/patrickmn/go-cache"
)

// ErrMiss is returned when a key is absent or expired.
var ErrMiss = errors.New("cache: miss")

// Memory is an in-process cache storing JSON encoded values.
type Memory struct {
	c *gocache.Cache
}

// NewMemory creates a Memory whose expired entries are purged every cleanup.
func NewMemory(cleanup time.Duration) *Memory {
	return &Memory{c: gocache.New(gocache.NoExpiration, cleanup)}
}

// Set stores value as JSON. A non-positive expiration keeps it forever.
func (m *Memory) Set(key string, value any, expiration time.Duration) error {
	data, err := json.Marshal(value)
	if err != nil {
		return err
	}
	if expiration <= 0 {
		expiration = gocache.NoExpiration
	}
	m.c.Set(key, data, expiration)
	return nil
}

// Get decodes the value stored under key into dest, or returns ErrMiss.
func (m *Memory) Get(key string, dest any) error {
	data, err := m.GetBytes(context.Background(), key)
	if err != nil {
		return err
	}
	return json.Unmarshal(data, dest)
}

// GetBytes returns the raw value under key, or ErrMiss.
func (m *Memory) GetBytes(_ context.Context, key string) ([]byte, error) {
	v, ok := m.c.Get(key)
	if !ok {
		return nil, ErrMiss
	}
	return v.([]byte), nil
}

// SetBytes stores a copy of val without expiry.
func (m *Memory) SetBytes(_ context.Context, key string, val []byte) error {
	m.c.Set(key, append([]byte(nil), val...), gocache.NoExpiration)
	return nil
}

