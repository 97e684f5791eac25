package storage

import (
	"errors"
	"time"
)

// Counter store drivers.
const (
	DriverMemory = "memory"
	DriverRedis  = "redis"
	DriverBadger = "badger"
)

// ErrClosed is returned by stores used after Close.
var ErrClosed = errors.New("storage: store closed")

// ErrContention is returned when a counter could not be updated after
// repeated transaction conflicts.
var ErrContention = errors.New("storage: too many conflicting updates")

// BadgerConfig contains Badger-specific tuning parameters.
type BadgerConfig struct {
	// Dir is the storage directory.
	Dir string

	// GCInterval is the interval between automatic value log GC runs.
	// Default: 10m
	GCInterval time.Duration

	// GCThreshold is the GC discard ratio threshold (0.0-1.0).
	// Default: 0.5
	GCThreshold float64

	// CacheSize is the block cache size in bytes.
	// Default: 16MB
	CacheSize int64

	// ValueLogFileSize is the max value log file size in bytes.
	// Default: 64MB
	ValueLogFileSize int64

	// SyncWrites enables fsync after each write.
	// Default: false
	SyncWrites bool

	// MaxRetries bounds how often a conflicting increment is retried.
	// Default: 100
	MaxRetries int

	// InMemory runs Badger without touching disk. Dir is ignored.
	InMemory bool
}

// DefaultBadgerConfig returns the default Badger configuration.
func DefaultBadgerConfig(dir string) BadgerConfig {
	return BadgerConfig{
		Dir:              dir,
		GCInterval:       10 * time.Minute,
		GCThreshold:      0.5,
		CacheSize:        16 << 20,
		ValueLogFileSize: 64 << 20,
		SyncWrites:       false,
		MaxRetries:       100,
	}
}
