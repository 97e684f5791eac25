// Package memory provides the in-process rate-limit counter store.
//
// Counters live in a sharded map; each increment holds its shard lock for
// the whole read-modify-write. Closed windows are dropped by Sweep, which
// RunJanitor calls on a ticker.
package memory
