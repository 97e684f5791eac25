// Package benchmark provides performance benchmarks for cardchat.
//
// Run benchmarks with:
//
//	go test -bench=. -benchmem ./internal/tests/benchmark/...
//
// Limiter benchmarks scale with the number of distinct clients:
//
//	go test -bench=BenchmarkRateLimiter -benchmem -benchtime=10s ./internal/tests/benchmark/...
//
// Compare results:
//
//	benchstat old.txt new.txt
package benchmark
