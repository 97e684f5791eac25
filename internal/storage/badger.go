package storage

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"sync/atomic"
	"time"

	"github.com/dgraph-io/badger/v3"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/spaolacci/murmur3"

	"github.com/ShavonHarris-Dev/Digital-Business-Card/internal/core/domain"
	"github.com/ShavonHarris-Dev/Digital-Business-Card/internal/telemetry/logger"
)

const counterPrefix = "rl:"

// keyLockStripes is the number of mutexes increments are serialized on.
const keyLockStripes = 256

// BadgerStore keeps rate-limit counters in an embedded Badger database.
//
// Each counter is written with a TTL slightly past its window so that
// Badger drops stale buckets on its own.
type BadgerStore struct {
	db     *badger.DB
	cfg    BadgerConfig
	logger logger.Logger

	// Increments of one key run under the same stripe, so the optimistic
	// transaction only conflicts with writers outside this process.
	locks [keyLockStripes]sync.Mutex

	closed     atomic.Bool
	lastGCTime atomic.Int64 // Unix milliseconds

	metricsLSMSize      prometheus.Gauge
	metricsValueLogSize prometheus.Gauge
	metricsConflicts    prometheus.Counter

	stopCh chan struct{}
	doneCh chan struct{}
}

// NewBadgerStore opens (or creates) a Badger database for counters.
func NewBadgerStore(cfg BadgerConfig, log logger.Logger) (*BadgerStore, error) {
	if cfg.Dir == "" && !cfg.InMemory {
		return nil, fmt.Errorf("badger: dir is required")
	}
	if log == nil {
		log = logger.Default()
	}
	def := DefaultBadgerConfig(cfg.Dir)
	if cfg.GCInterval <= 0 {
		cfg.GCInterval = def.GCInterval
	}
	if cfg.GCThreshold <= 0 || cfg.GCThreshold >= 1 {
		cfg.GCThreshold = def.GCThreshold
	}
	if cfg.MaxRetries <= 0 {
		cfg.MaxRetries = def.MaxRetries
	}

	opts := badger.DefaultOptions(cfg.Dir)
	if cfg.InMemory {
		opts = badger.DefaultOptions("").WithInMemory(true)
	}
	opts.Logger = &badgerLogger{logger: log}
	if cfg.CacheSize > 0 {
		opts.BlockCacheSize = cfg.CacheSize
	}
	if cfg.ValueLogFileSize > 0 && !cfg.InMemory {
		opts.ValueLogFileSize = cfg.ValueLogFileSize
	}
	opts.SyncWrites = cfg.SyncWrites
	opts.DetectConflicts = true

	db, err := badger.Open(opts)
	if err != nil {
		return nil, fmt.Errorf("badger: open db: %w", err)
	}

	s := &BadgerStore{
		db:     db,
		cfg:    cfg,
		logger: log,
		stopCh: make(chan struct{}),
		doneCh: make(chan struct{}),
	}

	go s.gcLoop()

	log.Info("badger counter store started",
		"dir", cfg.Dir,
		"in_memory", cfg.InMemory,
		"gc_interval", cfg.GCInterval)

	return s, nil
}

// Increment implements service.CounterStore.
//
// Increments of the same key are serialized in process. The
// read-modify-write still runs in one optimistic transaction and is retried
// when a conflict slips through.
func (s *BadgerStore) Increment(ctx context.Context, key string, window time.Duration, now time.Time) (domain.Counter, error) {
	if s.closed.Load() {
		return domain.Counter{}, ErrClosed
	}
	k := []byte(counterPrefix + key)

	mu := &s.locks[murmur3.Sum32(k)%keyLockStripes]
	mu.Lock()
	defer mu.Unlock()

	for attempt := 0; attempt < s.cfg.MaxRetries; attempt++ {
		if err := ctx.Err(); err != nil {
			return domain.Counter{}, err
		}

		var next domain.Counter
		err := s.db.Update(func(txn *badger.Txn) error {
			var cur domain.Counter
			item, err := txn.Get(k)
			switch {
			case errors.Is(err, badger.ErrKeyNotFound):
			case err != nil:
				return err
			default:
				if err := item.Value(func(v []byte) error {
					cur, err = decodeCounter(v)
					return err
				}); err != nil {
					return err
				}
			}

			next = cur.Next(window, now)
			ttl := next.ResetAt.Sub(now) + time.Second
			return txn.SetEntry(badger.NewEntry(k, encodeCounter(next)).WithTTL(ttl))
		})
		if errors.Is(err, badger.ErrConflict) {
			if s.metricsConflicts != nil {
				s.metricsConflicts.Inc()
			}
			continue
		}
		if err != nil {
			return domain.Counter{}, fmt.Errorf("badger: increment %s: %w", key, err)
		}
		return next, nil
	}
	return domain.Counter{}, ErrContention
}

// Get returns the stored counter for key, if any.
func (s *BadgerStore) Get(key string) (domain.Counter, bool, error) {
	var c domain.Counter
	err := s.db.View(func(txn *badger.Txn) error {
		item, err := txn.Get([]byte(counterPrefix + key))
		if err != nil {
			return err
		}
		return item.Value(func(v []byte) error {
			c, err = decodeCounter(v)
			return err
		})
	})
	if errors.Is(err, badger.ErrKeyNotFound) {
		return domain.Counter{}, false, nil
	}
	if err != nil {
		return domain.Counter{}, false, err
	}
	return c, true, nil
}

// GC runs value log garbage collection until nothing more can be rewritten.
func (s *BadgerStore) GC() error {
	start := time.Now()
	runs := 0
	for {
		err := s.db.RunValueLogGC(s.cfg.GCThreshold)
		if errors.Is(err, badger.ErrNoRewrite) || errors.Is(err, badger.ErrGCInMemoryMode) {
			break
		}
		if err != nil {
			return fmt.Errorf("badger: gc: %w", err)
		}
		runs++
	}
	s.lastGCTime.Store(time.Now().UnixMilli())
	s.logger.Debug("badger gc completed", "rewrites", runs, "elapsed", time.Since(start))
	return nil
}

// Close stops the GC loop and closes the database.
func (s *BadgerStore) Close() error {
	if !s.closed.CompareAndSwap(false, true) {
		return nil
	}
	close(s.stopCh)
	<-s.doneCh

	if err := s.db.Close(); err != nil {
		return fmt.Errorf("badger: close db: %w", err)
	}
	s.logger.Info("badger counter store closed")
	return nil
}

// RegisterMetrics registers Badger size and conflict metrics.
func (s *BadgerStore) RegisterMetrics(reg prometheus.Registerer) *BadgerStore {
	s.metricsLSMSize = prometheus.NewGauge(prometheus.GaugeOpts{
		Namespace: "cardchat",
		Subsystem: "badger",
		Name:      "lsm_size_bytes",
		Help:      "Badger LSM tree size in bytes",
	})
	s.metricsValueLogSize = prometheus.NewGauge(prometheus.GaugeOpts{
		Namespace: "cardchat",
		Subsystem: "badger",
		Name:      "value_log_size_bytes",
		Help:      "Badger value log size in bytes",
	})
	s.metricsConflicts = prometheus.NewCounter(prometheus.CounterOpts{
		Namespace: "cardchat",
		Subsystem: "badger",
		Name:      "txn_conflicts_total",
		Help:      "Counter increments retried after a transaction conflict",
	})
	reg.MustRegister(s.metricsLSMSize, s.metricsValueLogSize, s.metricsConflicts)
	s.updateSizeMetrics()
	return s
}

func (s *BadgerStore) updateSizeMetrics() {
	if s.metricsLSMSize == nil {
		return
	}
	lsm, vlog := s.db.Size()
	s.metricsLSMSize.Set(float64(lsm))
	s.metricsValueLogSize.Set(float64(vlog))
}

func (s *BadgerStore) gcLoop() {
	defer close(s.doneCh)

	ticker := time.NewTicker(s.cfg.GCInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			if err := s.GC(); err != nil {
				s.logger.Error("badger auto gc failed", "error", err)
			}
			s.updateSizeMetrics()
		case <-s.stopCh:
			return
		}
	}
}

// badgerLogger adapts logger.Logger to Badger's Logger interface.
type badgerLogger struct {
	logger logger.Logger
}

func (l *badgerLogger) Errorf(format string, args ...interface{}) {
	l.logger.Error(fmt.Sprintf(format, args...))
}

func (l *badgerLogger) Warningf(format string, args ...interface{}) {
	l.logger.Warn(fmt.Sprintf(format, args...))
}

func (l *badgerLogger) Infof(format string, args ...interface{}) {
	l.logger.Debug(fmt.Sprintf(format, args...))
}

func (l *badgerLogger) Debugf(format string, args ...interface{}) {
	l.logger.Debug(fmt.Sprintf(format, args...))
}
