package confloader

import (
	"path/filepath"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"

	"github.com/ShavonHarris-Dev/Digital-Business-Card/internal/telemetry/logger"
)

// DefaultDebounce coalesces the burst of events editors emit on save.
const DefaultDebounce = 100 * time.Millisecond

// Watcher watches individual files for changes.
//
// Directories are watched rather than files so that atomic renames
// (vim, kubernetes config maps) are still observed.
type Watcher struct {
	watcher  *fsnotify.Watcher
	handlers map[string][]func(string)
	dirs     map[string]struct{}
	pending  map[string]*time.Timer
	debounce time.Duration
	mu       sync.Mutex
	done     chan struct{}
	stopOnce sync.Once
	logger   logger.Logger
}

// WatcherOption configures a Watcher.
type WatcherOption func(*Watcher)

// WithWatcherLogger sets the logger for the watcher.
func WithWatcherLogger(l logger.Logger) WatcherOption {
	return func(w *Watcher) {
		w.logger = l
	}
}

// WithDebounce sets the quiet period before a change is reported.
func WithDebounce(d time.Duration) WatcherOption {
	return func(w *Watcher) {
		w.debounce = d
	}
}

// NewWatcher creates a new file watcher.
func NewWatcher(opts ...WatcherOption) (*Watcher, error) {
	fw, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, err
	}

	w := &Watcher{
		watcher:  fw,
		handlers: make(map[string][]func(string)),
		dirs:     make(map[string]struct{}),
		pending:  make(map[string]*time.Timer),
		debounce: DefaultDebounce,
		done:     make(chan struct{}),
		logger:   logger.Default(),
	}

	for _, opt := range opts {
		opt(w)
	}

	return w, nil
}

// Watch registers fn to run whenever path is written or recreated.
func (w *Watcher) Watch(path string, fn func(path string)) error {
	abs, err := filepath.Abs(path)
	if err != nil {
		return err
	}
	dir := filepath.Dir(abs)

	w.mu.Lock()
	defer w.mu.Unlock()

	if _, ok := w.dirs[dir]; !ok {
		if err := w.watcher.Add(dir); err != nil {
			w.logger.Error("failed to watch directory", "path", dir, "error", err)
			return err
		}
		w.dirs[dir] = struct{}{}
	}
	w.handlers[abs] = append(w.handlers[abs], fn)

	w.logger.Debug("watching file for changes", "file", abs)
	return nil
}

// Start processes events until Stop is called.
func (w *Watcher) Start() {
	w.logger.Info("file watcher started")

	for {
		select {
		case event, ok := <-w.watcher.Events:
			if !ok {
				return
			}
			if event.Has(fsnotify.Write) || event.Has(fsnotify.Create) {
				w.schedule(filepath.Clean(event.Name))
			}
		case err, ok := <-w.watcher.Errors:
			if !ok {
				return
			}
			w.logger.Error("file watcher error", "error", err)
		case <-w.done:
			return
		}
	}
}

// StartAsync starts watching in a goroutine.
func (w *Watcher) StartAsync() {
	go w.Start()
}

// Stop stops the watcher. It is safe to call more than once.
func (w *Watcher) Stop() error {
	var err error
	w.stopOnce.Do(func() {
		close(w.done)

		w.mu.Lock()
		for name, t := range w.pending {
			t.Stop()
			delete(w.pending, name)
		}
		w.mu.Unlock()

		if err = w.watcher.Close(); err != nil {
			w.logger.Error("failed to close watcher", "error", err)
			return
		}
		w.logger.Info("file watcher stopped")
	})
	return err
}

// schedule arms (or re-arms) the debounce timer for path.
func (w *Watcher) schedule(path string) {
	w.mu.Lock()
	defer w.mu.Unlock()

	if _, ok := w.handlers[path]; !ok {
		return
	}
	if t, ok := w.pending[path]; ok {
		t.Reset(w.debounce)
		return
	}
	w.pending[path] = time.AfterFunc(w.debounce, func() {
		w.mu.Lock()
		delete(w.pending, path)
		w.mu.Unlock()
		w.notify(path)
	})
}

// notify runs the handlers registered for path.
func (w *Watcher) notify(path string) {
	select {
	case <-w.done:
		return
	default:
	}

	w.mu.Lock()
	fns := append([]func(string)(nil), w.handlers[path]...)
	w.mu.Unlock()

	w.logger.Debug("file changed", "file", path)
	for _, fn := range fns {
		fn(path)
	}
}
