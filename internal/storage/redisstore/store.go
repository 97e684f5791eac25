// Package redisstore keeps rate-limit counters in Redis so that several
// server instances share one budget per client.
package redisstore

import (
	"context"
	_ "embed"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/ShavonHarris-Dev/Digital-Business-Card/internal/core/domain"
)

//go:embed fixed_window.lua
var fixedWindowSource string

var fixedWindowScript = redis.NewScript(fixedWindowSource)

// DefaultPrefix namespaces counter keys.
const DefaultPrefix = "cardchat:rl:"

// Option configures a Store.
type Option func(*Store)

// WithPrefix sets the key prefix.
func WithPrefix(prefix string) Option {
	return func(s *Store) { s.prefix = prefix }
}

// WithTimeout bounds each Redis round trip. Zero means no extra bound.
func WithTimeout(d time.Duration) Option {
	return func(s *Store) { s.timeout = d }
}

// Store is a service.CounterStore backed by Redis.
//
// INCR, PEXPIRE and PTTL run in one Lua script, which Redis executes
// atomically, so concurrent increments across instances never lose updates.
type Store struct {
	client  redis.UniversalClient
	prefix  string
	timeout time.Duration
}

// New pings Redis, preloads the script and returns a Store.
func New(ctx context.Context, client redis.UniversalClient, opts ...Option) (*Store, error) {
	s := &Store{
		client:  client,
		prefix:  DefaultPrefix,
		timeout: 500 * time.Millisecond,
	}
	for _, opt := range opts {
		opt(s)
	}

	pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	if err := client.Ping(pingCtx).Err(); err != nil {
		return nil, fmt.Errorf("redis: ping: %w", err)
	}
	if err := fixedWindowScript.Load(pingCtx, client).Err(); err != nil {
		return nil, fmt.Errorf("redis: load script: %w", err)
	}
	return s, nil
}

// Increment implements service.CounterStore.
func (s *Store) Increment(ctx context.Context, key string, window time.Duration, now time.Time) (domain.Counter, error) {
	if s.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, s.timeout)
		defer cancel()
	}

	windowMs := window.Milliseconds()
	if windowMs < 1 {
		windowMs = 1
	}

	res, err := fixedWindowScript.Run(ctx, s.client, []string{s.prefix + key}, windowMs).Int64Slice()
	if err != nil {
		return domain.Counter{}, err
	}
	if len(res) != 2 {
		return domain.Counter{}, errors.New("redis: invalid script response")
	}

	return domain.Counter{
		Count:   res[0],
		ResetAt: now.Add(time.Duration(res[1]) * time.Millisecond),
	}, nil
}

// Ping reports whether Redis is reachable.
func (s *Store) Ping(ctx context.Context) error {
	return s.client.Ping(ctx).Err()
}

// Close closes the underlying client.
func (s *Store) Close() error {
	return s.client.Close()
}
