// Package storage provides the persistence backends for the chat backend.
//
// Rate-limit counters live behind service.CounterStore, with three
// implementations:
//
//   - memory: sharded in-process map, the default for a single instance
//   - badger: embedded LSM store, survives restarts of a single instance
//   - redisstore: shared counters for several instances behind one balancer
//
// The package also loads the profile document the chat assistant answers from.
package storage
