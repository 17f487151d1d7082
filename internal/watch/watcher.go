// Package watch reports debounced changes to a fixed set of files.
package watch

import (
	"log/slog"
	"path/filepath"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"
)

// Event is a debounced change to one watched file.
type Event struct {
	Path string
	Op   fsnotify.Op
}

// Removed reports whether the file was removed or renamed away.
func (e Event) Removed() bool {
	return e.Op&(fsnotify.Remove|fsnotify.Rename) != 0
}

// Watcher monitors files by watching their parent directories, which keeps
// working when editors replace a file instead of writing it in place.
type Watcher struct {
	files  map[string]struct{}
	dirs   map[string]struct{}
	logger *slog.Logger

	watcher *fsnotify.Watcher
	events  chan Event

	// Debouncing
	debounceDelay  time.Duration
	debounceTimers map[string]*time.Timer
	pendingOps     map[string]fsnotify.Op
	timersMu       sync.Mutex

	// Lifecycle
	stopCh    chan struct{}
	stoppedCh chan struct{}
	running   bool
	runningMu sync.Mutex
}

// Option configures a Watcher.
type Option func(*Watcher)

// WithDebounce sets the quiet period before an event is emitted.
func WithDebounce(d time.Duration) Option {
	return func(w *Watcher) {
		w.debounceDelay = d
	}
}

// WithLogger sets the logger for watcher errors.
func WithLogger(logger *slog.Logger) Option {
	return func(w *Watcher) {
		w.logger = logger
	}
}

// New creates a watcher for the given files. Paths are made absolute.
func New(paths []string, opts ...Option) *Watcher {
	w := &Watcher{
		files:          make(map[string]struct{}),
		dirs:           make(map[string]struct{}),
		logger:         slog.Default(),
		events:         make(chan Event, 100),
		debounceDelay:  100 * time.Millisecond,
		debounceTimers: make(map[string]*time.Timer),
		pendingOps:     make(map[string]fsnotify.Op),
		stopCh:         make(chan struct{}),
		stoppedCh:      make(chan struct{}),
	}
	for _, p := range paths {
		if abs, err := filepath.Abs(p); err == nil {
			p = abs
		}
		w.files[p] = struct{}{}
		w.dirs[filepath.Dir(p)] = struct{}{}
	}
	for _, opt := range opts {
		opt(w)
	}
	return w
}

// Start begins watching. Calling Start on a running watcher is a no-op.
func (w *Watcher) Start() error {
	w.runningMu.Lock()
	defer w.runningMu.Unlock()

	if w.running {
		return nil
	}

	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return err
	}
	for dir := range w.dirs {
		if err := watcher.Add(dir); err != nil {
			watcher.Close()
			return err
		}
	}
	w.watcher = watcher

	w.running = true
	go w.watchLoop()

	return nil
}

// Stop terminates the watcher and closes the events channel.
func (w *Watcher) Stop() {
	w.runningMu.Lock()
	if !w.running {
		w.runningMu.Unlock()
		return
	}
	w.running = false
	w.runningMu.Unlock()

	close(w.stopCh)
	<-w.stoppedCh

	if w.watcher != nil {
		w.watcher.Close()
	}

	w.timersMu.Lock()
	for _, timer := range w.debounceTimers {
		timer.Stop()
	}
	w.debounceTimers = make(map[string]*time.Timer)
	w.pendingOps = make(map[string]fsnotify.Op)
	close(w.events)
	w.timersMu.Unlock()
}

// Events returns the channel of debounced events.
func (w *Watcher) Events() <-chan Event {
	return w.events
}

func (w *Watcher) watchLoop() {
	defer close(w.stoppedCh)

	for {
		select {
		case <-w.stopCh:
			return

		case event, ok := <-w.watcher.Events:
			if !ok {
				return
			}
			w.handleFsEvent(event)

		case err, ok := <-w.watcher.Errors:
			if !ok {
				return
			}
			w.logger.Warn("watch error", "error", err)
		}
	}
}

func (w *Watcher) handleFsEvent(event fsnotify.Event) {
	path := filepath.Clean(event.Name)
	if _, ok := w.files[path]; !ok {
		return
	}
	if event.Op == fsnotify.Chmod {
		return
	}
	w.debounce(path, event.Op)
}

// debounce coalesces rapid events for one path; ops accumulate until the timer fires.
func (w *Watcher) debounce(path string, op fsnotify.Op) {
	w.timersMu.Lock()
	defer w.timersMu.Unlock()

	if timer, exists := w.debounceTimers[path]; exists {
		timer.Stop()
	}
	w.pendingOps[path] |= op

	w.debounceTimers[path] = time.AfterFunc(w.debounceDelay, func() {
		w.emit(path)
	})
}

func (w *Watcher) emit(path string) {
	w.timersMu.Lock()
	defer w.timersMu.Unlock()

	op, ok := w.pendingOps[path]
	if !ok {
		// Stopped, or already emitted by an earlier timer.
		return
	}
	delete(w.pendingOps, path)
	delete(w.debounceTimers, path)

	select {
	case w.events <- Event{Path: path, Op: op}:
	default:
		w.logger.Warn("watch event dropped", "path", path)
	}
}
