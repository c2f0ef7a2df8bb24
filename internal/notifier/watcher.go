package notifier

import (
	"context"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"

	"github.com/julianstephens/tarot/internal/constants"
	"github.com/julianstephens/tarot/internal/logger"
)

// Watcher turns writes to the profile store by any process into a
// StorageChanged publication. It watches the profile's directory rather
// than the file itself: SQLite writes land in sidecar files (-wal, -shm)
// and the JSON backend replaces the file by rename.
type Watcher struct {
	mu          sync.Mutex
	watcher     *fsnotify.Watcher
	notifier    *Notifier
	dir         string
	base        string
	pending     time.Time
	debounceDur time.Duration
	stopCh      chan struct{}
	doneCh      chan struct{}
	running     bool
}

// NewWatcher prepares a watcher for the store file at path. Events are
// published to n, or to Default when n is nil.
func NewWatcher(path string, n *Notifier) (*Watcher, error) {
	fw, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, err
	}
	if n == nil {
		n = Default
	}

	return &Watcher{
		watcher:     fw,
		notifier:    n,
		dir:         filepath.Dir(path),
		base:        filepath.Base(path),
		debounceDur: constants.WatchDebounceMillis * time.Millisecond,
		stopCh:      make(chan struct{}),
		doneCh:      make(chan struct{}),
	}, nil
}

// Start begins watching. It returns immediately; events are handled on a
// background goroutine until Stop is called or ctx is cancelled.
func (w *Watcher) Start(ctx context.Context) error {
	w.mu.Lock()
	if w.running {
		w.mu.Unlock()
		return nil
	}
	w.running = true
	w.mu.Unlock()

	if err := w.watcher.Add(w.dir); err != nil {
		w.mu.Lock()
		w.running = false
		w.mu.Unlock()
		return err
	}
	logger.Debug("Watching profile for changes", "dir", w.dir, "file", w.base)

	go w.run(ctx)
	return nil
}

// Stop ends watching and releases the underlying watcher.
func (w *Watcher) Stop() {
	w.mu.Lock()
	if !w.running {
		w.mu.Unlock()
		w.watcher.Close()
		return
	}
	w.running = false
	w.mu.Unlock()

	close(w.stopCh)
	<-w.doneCh

	if err := w.watcher.Close(); err != nil {
		logger.Error("Failed to close profile watcher", "error", err)
	}
}

func (w *Watcher) run(ctx context.Context) {
	defer close(w.doneCh)

	ticker := time.NewTicker(w.debounceDur / 2)
	defer ticker.Stop()

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
			w.handleEvent(event)
		case err, ok := <-w.watcher.Errors:
			if !ok {
				return
			}
			logger.Warn("Profile watcher error", "error", err)
		case <-ticker.C:
			w.flush()
		}
	}
}

func (w *Watcher) handleEvent(event fsnotify.Event) {
	if !w.matches(event.Name) {
		return
	}
	if event.Op&(fsnotify.Create|fsnotify.Write|fsnotify.Remove|fsnotify.Rename) == 0 {
		return
	}

	w.mu.Lock()
	w.pending = time.Now()
	w.mu.Unlock()
}

// matches reports whether name is the store file or one of its sidecars.
func (w *Watcher) matches(name string) bool {
	base := filepath.Base(name)
	if base == w.base {
		return true
	}
	return strings.HasPrefix(base, w.base+"-") && !strings.HasSuffix(base, ".tmp")
}

func (w *Watcher) flush() {
	w.mu.Lock()
	if w.pending.IsZero() || time.Since(w.pending) < w.debounceDur {
		w.mu.Unlock()
		return
	}
	w.pending = time.Time{}
	w.mu.Unlock()

	logger.Debug("Profile changed on disk", "file", w.base)
	w.notifier.Publish(StorageChanged)
}
