package service

import (
	"context"
	"fmt"
	"time"

	"github.com/ShavonHarris-Dev/Digital-Business-Card/internal/core/domain"
)

// CounterStore holds fixed-window counters.
//
// Increment must be atomic per key: if the window stored for key has
// closed at now (or none exists), it starts a new one ending at
// now+window with count 1; otherwise it adds one. It returns the
// counter after the update.
type CounterStore interface {
	Increment(ctx context.Context, key string, window time.Duration, now time.Time) (domain.Counter, error)
}

// Well-known limiter names.
const (
	LimiterChat   = "chat"
	LimiterGlobal = "global"
)

// RateLimitConfig holds configuration for one RateLimiter.
type RateLimitConfig struct {
	// Name namespaces keys in the store and labels metrics.
	Name string

	// Max is the number of requests admitted per window.
	Max int64

	// Window is the fixed window length.
	Window time.Duration

	// Unidentified decides how requests without a client key are counted.
	Unidentified domain.UnidentifiedPolicy
}

// ChatRateLimitConfig returns the default chat limiter: 10 per minute.
func ChatRateLimitConfig() RateLimitConfig {
	return RateLimitConfig{
		Name:         LimiterChat,
		Max:          10,
		Window:       time.Minute,
		Unidentified: domain.UnidentifiedShared,
	}
}

// GlobalRateLimitConfig returns the default global limiter: 100 per 15 minutes.
func GlobalRateLimitConfig() RateLimitConfig {
	return RateLimitConfig{
		Name:         LimiterGlobal,
		Max:          100,
		Window:       15 * time.Minute,
		Unidentified: domain.UnidentifiedShared,
	}
}

// RateLimiter is a fixed-window limiter keyed by client identity.
type RateLimiter struct {
	cfg   RateLimitConfig
	store CounterStore
	now   func() time.Time
}

// NewRateLimiter creates a RateLimiter over store.
func NewRateLimiter(cfg RateLimitConfig, store CounterStore) (*RateLimiter, error) {
	if cfg.Name == "" {
		return nil, fmt.Errorf("ratelimit: name is required")
	}
	if cfg.Max < 1 {
		return nil, fmt.Errorf("ratelimit %s: max must be at least 1, got %d", cfg.Name, cfg.Max)
	}
	if cfg.Window <= 0 {
		return nil, fmt.Errorf("ratelimit %s: window must be positive", cfg.Name)
	}
	if cfg.Unidentified == "" {
		cfg.Unidentified = domain.UnidentifiedShared
	}
	if !cfg.Unidentified.Valid() {
		return nil, fmt.Errorf("ratelimit %s: unknown unidentified policy %q", cfg.Name, cfg.Unidentified)
	}
	if store == nil {
		return nil, fmt.Errorf("ratelimit %s: store is required", cfg.Name)
	}
	return &RateLimiter{cfg: cfg, store: store, now: time.Now}, nil
}

// SetClock replaces the wall clock. Used by tests.
func (l *RateLimiter) SetClock(now func() time.Time) {
	l.now = now
}

// Name returns the limiter name.
func (l *RateLimiter) Name() string {
	return l.cfg.Name
}

// Limit returns the per-window maximum.
func (l *RateLimiter) Limit() int64 {
	return l.cfg.Max
}

// Window returns the window length.
func (l *RateLimiter) Window() time.Duration {
	return l.cfg.Window
}

// Allow counts one request for clientKey and reports whether it fits in
// the current window. Every call counts, including denied ones.
func (l *RateLimiter) Allow(ctx context.Context, clientKey string) (domain.Decision, error) {
	now := l.now()

	if clientKey == "" {
		if l.cfg.Unidentified == domain.UnidentifiedOpen {
			return domain.Decision{
				Allowed:   true,
				Limit:     l.cfg.Max,
				Remaining: l.cfg.Max,
				ResetAt:   now.Add(l.cfg.Window),
			}, nil
		}
		clientKey = domain.UnidentifiedKey
	}

	c, err := l.store.Increment(ctx, l.cfg.Name+":"+clientKey, l.cfg.Window, now)
	if err != nil {
		return domain.Decision{}, fmt.Errorf("ratelimit %s: %w", l.cfg.Name, err)
	}

	d := domain.Decision{
		Allowed:   c.Count <= l.cfg.Max,
		Limit:     l.cfg.Max,
		Remaining: max(0, l.cfg.Max-c.Count),
		ResetAt:   c.ResetAt,
	}
	if !d.Allowed {
		d.RetryAfter = max(0, c.ResetAt.Sub(now))
	}
	return d, nil
}
