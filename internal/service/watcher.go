package service

import (
	"path/filepath"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"
)

// FileEvent is one debounced file change.
type FileEvent struct {
	// Path is the absolute path to the changed file.
	Path string

	// Op is the fsnotify operation that survived coalescing.
	Op fsnotify.Op

	// Time is when the last raw event arrived.
	Time time.Time
}

// FileHandler is called for each debounced change.
type FileHandler func(FileEvent)

// Watcher wraps fsnotify with debouncing, so a burst of writes from an
// editor save lands as one reload. Watch targets are files, not
// directories.
type Watcher struct {
	mu       sync.RWMutex
	fsw      *fsnotify.Watcher
	watched  map[string]bool
	handlers []FileHandler
	running  bool

	debounce time.Duration
	done     chan struct{}
	wg       sync.WaitGroup

	pendingMu sync.Mutex
	pending   map[string]FileEvent
}

// WatcherOption configures a Watcher.
type WatcherOption func(*Watcher)

// WithDebounce sets how long a file must stay quiet before its change
// is delivered.
func WithDebounce(d time.Duration) WatcherOption {
	return func(w *Watcher) {
		if d > 0 {
			w.debounce = d
		}
	}
}

// NewWatcher creates a stopped watcher.
func NewWatcher(opts ...WatcherOption) (*Watcher, error) {
	fsw, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, err
	}

	w := &Watcher{
		fsw:      fsw,
		watched:  make(map[string]bool),
		debounce: 100 * time.Millisecond,
		done:     make(chan struct{}),
		pending:  make(map[string]FileEvent),
	}
	for _, opt := range opts {
		opt(w)
	}
	return w, nil
}

// Watch adds a file to the watch list. The containing directory is
// watched so atomic-rename saves are still seen.
func (w *Watcher) Watch(path string) error {
	abs, err := filepath.Abs(path)
	if err != nil {
		return err
	}

	w.mu.Lock()
	defer w.mu.Unlock()
	if err := w.fsw.Add(filepath.Dir(abs)); err != nil {
		return err
	}
	w.watched[abs] = true
	return nil
}

// OnChange registers a handler for debounced change events.
func (w *Watcher) OnChange(h FileHandler) {
	w.mu.Lock()
	defer w.mu.Unlock()
	w.handlers = append(w.handlers, h)
}

// Start begins delivering events.
func (w *Watcher) Start() {
	w.mu.Lock()
	if w.running {
		w.mu.Unlock()
		return
	}
	w.running = true
	w.mu.Unlock()

	w.wg.Add(2)
	go w.eventLoop()
	go w.flushLoop()
}

// Stop shuts the watcher down. It cannot be restarted.
func (w *Watcher) Stop() {
	w.mu.Lock()
	if !w.running {
		w.mu.Unlock()
		return
	}
	w.running = false
	w.mu.Unlock()

	close(w.done)
	w.fsw.Close()
	w.wg.Wait()
}

func (w *Watcher) eventLoop() {
	defer w.wg.Done()
	for {
		select {
		case <-w.done:
			return
		case ev, ok := <-w.fsw.Events:
			if !ok {
				return
			}
			w.queue(ev)
		case _, ok := <-w.fsw.Errors:
			if !ok {
				return
			}
		}
	}
}

// queue coalesces a raw event into the pending set. Remove beats
// create beats write, matching what the burst amounts to overall.
func (w *Watcher) queue(ev fsnotify.Event) {
	abs, err := filepath.Abs(ev.Name)
	if err != nil {
		return
	}

	w.mu.RLock()
	tracked := w.watched[abs]
	w.mu.RUnlock()
	if !tracked {
		return
	}

	w.pendingMu.Lock()
	defer w.pendingMu.Unlock()

	now := time.Now()
	existing, ok := w.pending[abs]
	if !ok || opRank(ev.Op) >= opRank(existing.Op) {
		w.pending[abs] = FileEvent{Path: abs, Op: ev.Op, Time: now}
		return
	}
	existing.Time = now
	w.pending[abs] = existing
}

func opRank(op fsnotify.Op) int {
	switch {
	case op.Has(fsnotify.Remove) || op.Has(fsnotify.Rename):
		return 2
	case op.Has(fsnotify.Create):
		return 1
	default:
		return 0
	}
}

// flushLoop delivers pending events once they have been stable for the
// debounce window.
func (w *Watcher) flushLoop() {
	defer w.wg.Done()

	ticker := time.NewTicker(w.debounce)
	defer ticker.Stop()

	for {
		select {
		case <-w.done:
			return
		case <-ticker.C:
			w.flushStable()
		}
	}
}

func (w *Watcher) flushStable() {
	threshold := time.Now().Add(-w.debounce)

	w.pendingMu.Lock()
	var ready []FileEvent
	for path, ev := range w.pending {
		if ev.Time.Before(threshold) {
			ready = append(ready, ev)
			delete(w.pending, path)
		}
	}
	w.pendingMu.Unlock()

	if len(ready) == 0 {
		return
	}

	w.mu.RLock()
	handlers := make([]FileHandler, len(w.handlers))
	copy(handlers, w.handlers)
	w.mu.RUnlock()

	for _, ev := range ready {
		for _, h := range handlers {
			h(ev)
		}
	}
}
