// Package cmap provides a concurrent map keyed by strings.
//
// Keys are spread over a power-of-two number of shards using murmur3, and
// each shard has its own RWMutex. Update and Upsert hold the shard lock for
// the whole read-modify-write, which makes them suitable for counters.
//
// Usage:
//
//	m := cmap.New[int]()
//	m.Update("client", func(n int, _ bool) int { return n + 1 })
//	n, ok := m.Get("client")
package cmap
