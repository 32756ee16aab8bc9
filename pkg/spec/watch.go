package spec

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"path/filepath"
	"time"

	"github.com/fsnotify/fsnotify"

	"github.com/getmockd/specdocs/pkg/logging"
)

// DefaultWatchDebounce coalesces bursts of filesystem events (editors often
// write a file in several steps).
const DefaultWatchDebounce = 200 * time.Millisecond

// Watcher reloads a file-backed Store when the file changes on disk.
type Watcher struct {
	store    *Store
	path     string
	debounce time.Duration
	log      *slog.Logger

	// OnReload, when set, is called after every reload attempt.
	OnReload func(doc *Document, err error)
}

// NewWatcher creates a watcher for store. The store must use a FileSource.
func NewWatcher(store *Store) (*Watcher, error) {
	fileSrc, ok := store.Source().(*FileSource)
	if !ok {
		return nil, errors.New("watching requires a file source")
	}
	abs, err := filepath.Abs(fileSrc.Path)
	if err != nil {
		return nil, fmt.Errorf("resolve spec path: %w", err)
	}
	return &Watcher{
		store:    store,
		path:     abs,
		debounce: DefaultWatchDebounce,
		log:      logging.Nop(),
	}, nil
}

// SetLogger sets the operational logger.
func (w *Watcher) SetLogger(log *slog.Logger) {
	if log != nil {
		w.log = log
	}
}

// SetDebounce overrides the debounce interval.
func (w *Watcher) SetDebounce(d time.Duration) {
	w.debounce = d
}

// Run watches until ctx is cancelled. The parent directory is watched rather
// than the file itself so that atomic rename-on-save is picked up.
func (w *Watcher) Run(ctx context.Context) error {
	fsw, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("create file watcher: %w", err)
	}
	defer fsw.Close()

	if err := fsw.Add(filepath.Dir(w.path)); err != nil {
		return fmt.Errorf("watch %s: %w", filepath.Dir(w.path), err)
	}
	w.log.Info("watching specification for changes", "path", w.path)

	var timer *time.Timer
	var fire <-chan time.Time

	for {
		select {
		case <-ctx.Done():
			if timer != nil {
				timer.Stop()
			}
			return nil

		case event, ok := <-fsw.Events:
			if !ok {
				return nil
			}
			if filepath.Clean(event.Name) != w.path {
				continue
			}
			if event.Op&(fsnotify.Write|fsnotify.Create|fsnotify.Rename) == 0 {
				continue
			}
			if timer == nil {
				timer = time.NewTimer(w.debounce)
			} else {
				timer.Reset(w.debounce)
			}
			fire = timer.C

		case <-fire:
			fire = nil
			w.reload(ctx)

		case err, ok := <-fsw.Errors:
			if !ok {
				return nil
			}
			w.log.Warn("file watcher error", "error", err)
		}
	}
}

func (w *Watcher) reload(ctx context.Context) {
	doc, err := w.store.Reload(ctx)
	if err != nil {
		w.log.Error("specification reload failed; keeping previous version", "error", err)
	} else {
		w.log.Info("specification reloaded", "paths", doc.Paths().Len())
	}
	if w.OnReload != nil {
		w.OnReload(doc, err)
	}
}
