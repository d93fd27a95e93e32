// Package watch reports changes that other processes make to the school cache.
package watch

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"sync"
	"sync/atomic"

	"github.com/fsnotify/fsnotify"
	"go.uber.org/zap"
)

// Notifier receives one call per relevant filesystem event. Implementations
// must not block; model.UpdateChannel coalesces the calls.
type Notifier interface {
	OnDataChanged()
}

// Watcher watches the directory holding a SQLite database and notifies when
// the database file or its journal changes.
type Watcher struct {
	mu       sync.Mutex
	watcher  *fsnotify.Watcher
	dir      string
	names    map[string]struct{}
	notifier Notifier
	log      *zap.Logger
	stopCh   chan struct{}
	doneCh   chan struct{}
	running  bool

	events atomic.Uint64
	errs   atomic.Uint64
}

// New returns a Watcher for the database at dbPath. It does not start
// watching until Start is called.
func New(dbPath string, n Notifier, log *zap.Logger) (*Watcher, error) {
	if n == nil {
		return nil, errors.New("watch: nil notifier")
	}
	if log == nil {
		log = zap.NewNop()
	}
	fw, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, err
	}
	base := filepath.Base(dbPath)
	return &Watcher{
		watcher:  fw,
		dir:      filepath.Dir(dbPath),
		names:    map[string]struct{}{base: {}, base + "-wal": {}, base + "-journal": {}},
		notifier: n,
		log:      log,
		stopCh:   make(chan struct{}),
		doneCh:   make(chan struct{}),
	}, nil
}

// Start begins watching in a background goroutine. It returns an error if the
// directory cannot be watched. Calling Start twice is a no-op.
func (w *Watcher) Start(ctx context.Context) error {
	w.mu.Lock()
	defer w.mu.Unlock()
	if w.running {
		return nil
	}
	if err := os.MkdirAll(w.dir, 0o755); err != nil {
		return err
	}
	if err := w.watcher.Add(w.dir); err != nil {
		return err
	}
	w.running = true
	w.log.Debug("watching database directory", zap.String("dir", w.dir))
	go w.run(ctx, w.stopCh)
	return nil
}

// Stop ends the watch loop, waits for it to exit and releases the watcher.
// It is safe to call Stop without Start and more than once.
func (w *Watcher) Stop() error {
	w.mu.Lock()
	if w.stopCh == nil {
		w.mu.Unlock()
		return nil
	}
	wasRunning := w.running
	w.running = false
	close(w.stopCh)
	w.stopCh = nil
	w.mu.Unlock()

	if wasRunning {
		<-w.doneCh
	}
	return w.watcher.Close()
}

func (w *Watcher) run(ctx context.Context, stop <-chan struct{}) {
	defer close(w.doneCh)
	for {
		select {
		case <-ctx.Done():
			return
		case <-stop:
			return
		case ev, ok := <-w.watcher.Events:
			if !ok {
				return
			}
			w.handle(ev)
		case err, ok := <-w.watcher.Errors:
			if !ok {
				return
			}
			w.errs.Add(1)
			w.log.Warn("database watch error", zap.Error(err))
		}
	}
}

func (w *Watcher) handle(ev fsnotify.Event) {
	if _, ok := w.names[filepath.Base(ev.Name)]; !ok {
		return
	}
	if !ev.Has(fsnotify.Write) && !ev.Has(fsnotify.Create) && !ev.Has(fsnotify.Remove) && !ev.Has(fsnotify.Rename) {
		return
	}
	w.events.Add(1)
	w.log.Debug("database changed", zap.String("file", ev.Name), zap.Stringer("op", ev.Op))
	w.notifier.OnDataChanged()
}

// Stats returns how many relevant events were forwarded and how many watch
// errors were seen.
func (w *Watcher) Stats() (events, errs uint64) { return w.events.Load(), w.errs.Load() }
