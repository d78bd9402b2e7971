package cache

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/cenkalti/backoff/v4"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog/log"
)

// RedisOptions configures NewRedis.
type RedisOptions struct {
	Addr       string
	Password   string
	DB         int
	Timeout    time.Duration
	MaxRetries uint64
	KeyPrefix  string
}

// Redis is a JSON cache and byte key-value store backed by Redis.
type Redis struct {
	client  *redis.Client
	timeout time.Duration
	prefix  string
}

// NewRedis connects to Redis, retrying the initial ping with exponential backoff.
func NewRedis(ctx context.Context, opts RedisOptions) (*Redis, error) {
	if opts.Addr == "" {
		opts.Addr = "localhost:6379"
	}
	if opts.Timeout <= 0 {
		opts.Timeout = 3 * time.Second
	}
	client := redis.NewClient(&redis.Options{
		Addr:     opts.Addr,
		Password: opts.Password,
		DB:       opts.DB,
	})

	ping := func() error {
		pctx, cancel := context.WithTimeout(ctx, opts.Timeout)
		defer cancel()
		return client.Ping(pctx).Err()
	}
	policy := backoff.WithContext(backoff.WithMaxRetries(backoff.NewExponentialBackOff(), opts.MaxRetries), ctx)
	notify := func(err error, wait time.Duration) {
		log.Warn().Err(err).Str("addr", opts.Addr).Dur("retry_in", wait).Msg("redis ping failed")
	}
	if err := backoff.RetryNotify(ping, policy, notify); err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("connect redis %s: %w", opts.Addr, err)
	}

	log.Info().Str("addr", opts.Addr).Int("db", opts.DB).Msg("redis connected")
	return &Redis{client: client, timeout: opts.Timeout, prefix: opts.KeyPrefix}, nil
}

func (r *Redis) key(k string) string { return r.prefix + k }

func (r *Redis) opContext() (context.Context, context.CancelFunc) {
	return context.WithTimeout(context.Background(), r.timeout)
}

// Set stores value as JSON.
func (r *Redis) Set(key string, value any, expiration time.Duration) error {
	data, err := json.Marshal(value)
	if err != nil {
		return err
	}
	ctx, cancel := r.opContext()
	defer cancel()
	return r.client.Set(ctx, r.key(key), data, expiration).Err()
}

// Get decodes the JSON stored under key into dest.
func (r *Redis) Get(key string, dest any) error {
	ctx, cancel := r.opContext()
	defer cancel()
	data, err := r.GetBytes(ctx, key)
	if err != nil {
		return err
	}
	return json.Unmarshal(data, dest)
}

// GetBytes returns the raw value under key, or ErrMiss.
func (r *Redis) GetBytes(ctx context.Context, key string) ([]byte, error) {
	data, err := r.client.Get(ctx, r.key(key)).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, ErrMiss
	}
	return data, err
}

// SetBytes stores val under key without expiry.
func (r *Redis) SetBytes(ctx context.Context, key string, val []byte) error {
	return r.client.Set(ctx, r.key(key), val, 0).Err()
}

// Ping checks the connection within the per-operation timeout.
func (r *Redis) Ping(ctx context.Context) error {
	ctx, cancel := context.WithTimeout(ctx, r.timeout)
	defer cancel()
	return r.client.Ping(ctx).Err()
}

// Close closes the connection pool.
func (r *Redis) Close() error {
	return r.client.Close()
}
