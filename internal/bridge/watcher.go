package bridge

import (
	"context"
	"strings"
	"sync"
	"time"

	"shipmate/pkg/logging"

	"github.com/fsnotify/fsnotify"
)

// defaultDebounceInterval collapses editor write bursts into one reload.
const defaultDebounceInterval = 500 * time.Millisecond

// Watcher observes the server definition directory and triggers a
// callback when YAML files change. Rapid successive events are debounced
// into a single invocation.
type Watcher struct {
	dir              string
	debounceInterval time.Duration
	onChange         func(ctx context.Context)

	watcher *fsnotify.Watcher
	mu      sync.Mutex
	timer   *time.Timer
	stopCh  chan struct{}
	stopped bool
}

// NewWatcher creates a watcher for the given directory. The onChange
// callback runs on the watcher's goroutine after the debounce interval
// elapses without further events.
func NewWatcher(dir string, onChange func(ctx context.Context)) *Watcher {
	return &Watcher{
		dir:              dir,
		debounceInterval: defaultDebounceInterval,
		onChange:         onChange,
		stopCh:           make(chan struct{}),
	}
}

// Start begins watching. It returns an error if the directory cannot be
// watched; events are processed on a background goroutine until Stop is
// called or the context is cancelled.
func (w *Watcher) Start(ctx context.Context) error {
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return err
	}

	if err := watcher.Add(w.dir); err != nil {
		watcher.Close()
		return err
	}
	w.watcher = watcher

	logging.Debug("Bridge", "Watching definition directory: %s", w.dir)

	go w.processEvents(ctx)
	return nil
}

// Stop ends watching and cancels any pending debounced callback.
func (w *Watcher) Stop() {
	w.mu.Lock()
	if w.stopped {
		w.mu.Unlock()
		return
	}
	w.stopped = true
	if w.timer != nil {
		w.timer.Stop()
		w.timer = nil
	}
	w.mu.Unlock()

	close(w.stopCh)
	if w.watcher != nil {
		w.watcher.Close()
	}
}

func (w *Watcher) processEvents(ctx context.Context) {
	for {
		select {
		case <-ctx.Done():
			return

		case <-w.stopCh:
			return

		case event, ok := <-w.watcher.Events:
			if !ok {
				return
			}
			w.handleEvent(ctx, event)

		case err, ok := <-w.watcher.Errors:
			if !ok {
				return
			}
			logging.Error("Bridge", err, "Definition watcher error")
		}
	}
}

func (w *Watcher) handleEvent(ctx context.Context, event fsnotify.Event) {
	if !isYAMLFile(event.Name) {
		return
	}
	if event.Op&(fsnotify.Create|fsnotify.Write|fsnotify.Remove|fsnotify.Rename) == 0 {
		return
	}

	logging.Debug("Bridge", "Definition change detected: %s %s", event.Op, event.Name)
	w.scheduleReload(ctx)
}

// scheduleReload resets the debounce timer. When it fires the callback
// runs once for the whole burst of events.
func (w *Watcher) scheduleReload(ctx context.Context) {
	w.mu.Lock()
	defer w.mu.Unlock()

	if w.stopped {
		return
	}
	if w.timer != nil {
		w.timer.Stop()
	}

	w.timer = time.AfterFunc(w.debounceInterval, func() {
		select {
		case <-ctx.Done():
			return
		case <-w.stopCh:
			return
		default:
		}
		logging.Info("Bridge", "Definition directory changed, reloading")
		w.onChange(ctx)
	})
}

func isYAMLFile(path string) bool {
	lower := strings.ToLower(path)
	return strings.HasSuffix(lower, ".yaml") || strings.HasSuffix(lower, ".yml")
}
