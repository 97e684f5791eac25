package memory

import (
	"context"
	"time"

	"github.com/ShavonHarris-Dev/Digital-Business-Card/internal/core/domain"
	"github.com/ShavonHarris-Dev/Digital-Business-Card/internal/telemetry/logger"
	"github.com/ShavonHarris-Dev/Digital-Business-Card/pkg/cmap"
)

// Store keeps fixed-window counters in memory.
type Store struct {
	counters *cmap.Map[domain.Counter]
	now      func() time.Time
}

// Option configures the Store.
type Option func(*Store)

// WithShardCount sets the number of map shards (power of two).
func WithShardCount(n int) Option {
	return func(s *Store) {
		s.counters = cmap.NewWithShards[domain.Counter](n)
	}
}

// WithClock replaces the clock used by the janitor.
func WithClock(now func() time.Time) Option {
	return func(s *Store) {
		s.now = now
	}
}

// New creates a new in-memory store.
func New(opts ...Option) *Store {
	s := &Store{
		counters: cmap.New[domain.Counter](),
		now:      time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Increment implements service.CounterStore.
func (s *Store) Increment(ctx context.Context, key string, window time.Duration, now time.Time) (domain.Counter, error) {
	if err := ctx.Err(); err != nil {
		return domain.Counter{}, err
	}
	return s.counters.Update(key, func(c domain.Counter, _ bool) domain.Counter {
		return c.Next(window, now)
	}), nil
}

// Get returns the counter stored for key.
func (s *Store) Get(key string) (domain.Counter, bool) {
	return s.counters.Get(key)
}

// Len returns the number of tracked keys.
func (s *Store) Len() int {
	return s.counters.Count()
}

// Sweep drops every counter whose window has closed at now.
func (s *Store) Sweep(now time.Time) int {
	return s.counters.DeleteFunc(func(_ string, c domain.Counter) bool {
		return c.Expired(now)
	})
}

// RunJanitor sweeps on every tick until ctx is done.
func (s *Store) RunJanitor(ctx context.Context, interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if n := s.Sweep(s.now()); n > 0 {
				logger.Debug("swept expired rate limit buckets", "count", n, "remaining", s.Len())
			}
		}
	}
}
