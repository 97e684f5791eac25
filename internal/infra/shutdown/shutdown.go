package shutdown

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"sync"
	"syscall"
	"time"

	"github.com/ShavonHarris-Dev/Digital-Business-Card/internal/telemetry/logger"
)

// Hook is a named cleanup step.
type Hook struct {
	Name string
	Fn   func(context.Context) error
}

// Handler handles graceful shutdown.
type Handler struct {
	timeout time.Duration
	hooks   []Hook
	mu      sync.Mutex
	done    chan struct{}
	once    sync.Once
	logger  logger.Logger
	signals []os.Signal
}

// NewHandler creates a new shutdown handler.
func NewHandler(timeout time.Duration) *Handler {
	return &Handler{
		timeout: timeout,
		hooks:   make([]Hook, 0),
		done:    make(chan struct{}),
		logger:  logger.Default(),
		signals: []os.Signal{syscall.SIGINT, syscall.SIGTERM},
	}
}

// SetLogger replaces the logger used to report hook progress.
func (h *Handler) SetLogger(l logger.Logger) {
	h.logger = l
}

// OnShutdown registers a shutdown hook.
// Hooks are called in reverse order of registration.
func (h *Handler) OnShutdown(name string, fn func(context.Context) error) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.hooks = append(h.hooks, Hook{Name: name, Fn: fn})
}

// Wait waits for a shutdown signal and executes hooks.
func (h *Handler) Wait() error {
	return h.WaitContext(context.Background())
}

// WaitContext waits for a shutdown signal or for ctx to be done, then
// executes hooks. The returned error joins every hook failure.
func (h *Handler) WaitContext(ctx context.Context) error {
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, h.signals...)
	defer signal.Stop(sigCh)

	select {
	case sig := <-sigCh:
		h.logger.Info("shutdown signal received", "signal", sig.String())
	case <-ctx.Done():
		h.logger.Info("shutdown requested", "reason", context.Cause(ctx))
	}

	return h.Shutdown()
}

// Shutdown runs the hooks once. Later calls return nil immediately.
func (h *Handler) Shutdown() error {
	var err error
	h.once.Do(func() {
		err = h.runHooks()
		close(h.done)
	})
	return err
}

func (h *Handler) runHooks() error {
	ctx, cancel := context.WithTimeout(context.Background(), h.timeout)
	defer cancel()

	h.mu.Lock()
	hooks := make([]Hook, len(h.hooks))
	copy(hooks, h.hooks)
	h.mu.Unlock()

	var errs []error
	for i := len(hooks) - 1; i >= 0; i-- {
		start := time.Now()
		if err := hooks[i].Fn(ctx); err != nil {
			h.logger.Error("shutdown hook failed", "hook", hooks[i].Name, "error", err)
			errs = append(errs, fmt.Errorf("%s: %w", hooks[i].Name, err))
			continue
		}
		h.logger.Debug("shutdown hook done", "hook", hooks[i].Name, "elapsed", time.Since(start))
	}
	return errors.Join(errs...)
}

// Done returns a channel that closes when shutdown is complete.
func (h *Handler) Done() <-chan struct{} {
	return h.done
}
