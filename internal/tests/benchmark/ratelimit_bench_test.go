package benchmark

import (
	"context"
	"sync/atomic"
	"testing"
	"time"

	"github.com/ShavonHarris-Dev/Digital-Business-Card/internal/core/service"
	"github.com/ShavonHarris-Dev/Digital-Business-Card/internal/storage"
	"github.com/ShavonHarris-Dev/Digital-Business-Card/internal/storage/memory"
)

// benchLimiterConfig never rejects, so every iteration takes the
// increment path.
func benchLimiterConfig() service.RateLimitConfig {
	cfg := service.ChatRateLimitConfig()
	cfg.Max = 1 << 40
	return cfg
}

func newMemoryLimiter(b *testing.B) *service.RateLimiter {
	b.Helper()
	l, err := service.NewRateLimiter(benchLimiterConfig(), memory.New())
	if err != nil {
		b.Fatalf("NewRateLimiter failed: %v", err)
	}
	return l
}

func newBadgerLimiter(b *testing.B) *service.RateLimiter {
	b.Helper()
	store, err := storage.NewBadgerStore(storage.BadgerConfig{InMemory: true}, nil)
	if err != nil {
		b.Fatalf("NewBadgerStore failed: %v", err)
	}
	b.Cleanup(func() { store.Close() })

	l, err := service.NewRateLimiter(benchLimiterConfig(), store)
	if err != nil {
		b.Fatalf("NewRateLimiter failed: %v", err)
	}
	return l
}

// BenchmarkRateLimiter_Memory benchmarks Allow on the in-process store.
func BenchmarkRateLimiter_Memory(b *testing.B) {
	runWithClientCounts(b, ClientCounts, func(b *testing.B, count int) {
		benchAllow(b, newMemoryLimiter(b), newClientKeys(count))
	})
}

// BenchmarkRateLimiter_Badger benchmarks Allow on the embedded store.
func BenchmarkRateLimiter_Badger(b *testing.B) {
	runWithClientCounts(b, SmallClientCounts, func(b *testing.B, count int) {
		benchAllow(b, newBadgerLimiter(b), newClientKeys(count))
	})
}

// BenchmarkRateLimiter_Memory_Parallel benchmarks concurrent Allow calls
// spread across clients.
func BenchmarkRateLimiter_Memory_Parallel(b *testing.B) {
	runWithClientCounts(b, ClientCounts, func(b *testing.B, count int) {
		l := newMemoryLimiter(b)
		keys := newClientKeys(count)
		ctx := context.Background()
		var next atomic.Uint64

		b.ResetTimer()
		b.ReportAllocs()
		b.RunParallel(func(pb *testing.PB) {
			for pb.Next() {
				key := keys[next.Add(1)%uint64(len(keys))]
				if _, err := l.Allow(ctx, key); err != nil {
					b.Errorf("Allow failed: %v", err)
					return
				}
			}
		})
	})
}

// BenchmarkRateLimiter_HotKey benchmarks contention on a single client.
func BenchmarkRateLimiter_HotKey(b *testing.B) {
	l := newMemoryLimiter(b)
	ctx := context.Background()

	b.ResetTimer()
	b.ReportAllocs()
	b.RunParallel(func(pb *testing.PB) {
		for pb.Next() {
			l.Allow(ctx, "10.0.0.1")
		}
	})
}

// BenchmarkMemoryStore_Sweep benchmarks expiring a full store.
func BenchmarkMemoryStore_Sweep(b *testing.B) {
	runWithClientCounts(b, ClientCounts, func(b *testing.B, count int) {
		keys := newClientKeys(count)
		ctx := context.Background()
		now := time.Now()

		b.ResetTimer()
		for i := 0; i < b.N; i++ {
			b.StopTimer()
			store := memory.New()
			for _, k := range keys {
				store.Increment(ctx, k, time.Minute, now)
			}
			b.StartTimer()

			if n := store.Sweep(now.Add(2 * time.Minute)); n != count {
				b.Fatalf("Sweep removed %d, want %d", n, count)
			}
		}
		reportMemory(b, "after_sweep")
	})
}

func benchAllow(b *testing.B, l *service.RateLimiter, keys []string) {
	ctx := context.Background()

	b.ResetTimer()
	b.ReportAllocs()
	for i := 0; i < b.N; i++ {
		d, err := l.Allow(ctx, keys[i%len(keys)])
		if err != nil {
			b.Fatalf("Allow failed: %v", err)
		}
		if !d.Allowed {
			b.Fatal("request rejected")
		}
	}
}
