package template

import (
	"context"
	"fmt"
	"path/filepath"
	"sync/atomic"
	"time"

	"github.com/fsnotify/fsnotify"

	"github.com/zeusync/compose/internal/core/observability/log"
)

const defaultDebounce = 100 * time.Millisecond

// Watcher reloads a catalog whenever its document file changes. Bursts of
// writes are collapsed into one reload. A document that fails to load is
// logged and the catalog keeps its previous content.
type Watcher struct {
	catalog  *Catalog
	path     string
	log      log.Log
	debounce time.Duration
	watcher  *fsnotify.Watcher

	reloads  atomic.Uint64
	failures atomic.Uint64
}

// NewWatcher starts watching the directory that holds path. Run must be
// called to process changes.
func NewWatcher(catalog *Catalog, path string, logger log.Log) (*Watcher, error) {
	if logger == nil {
		logger = log.NewNop()
	}
	abs, err := filepath.Abs(path)
	if err != nil {
		return nil, fmt.Errorf("template: watch %s: %w", path, err)
	}
	if !isDocumentFile(abs) {
		return nil, fmt.Errorf("%w: %s", ErrUnsupportedFormat, path)
	}

	fw, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("template: create watcher: %w", err)
	}
	if err = fw.Add(filepath.Dir(abs)); err != nil {
		_ = fw.Close()
		return nil, fmt.Errorf("template: watch %s: %w", filepath.Dir(abs), err)
	}

	return &Watcher{
		catalog:  catalog,
		path:     abs,
		log:      logger.Named("template-watcher"),
		debounce: defaultDebounce,
		watcher:  fw,
	}, nil
}

// Reloads is the number of successful reloads so far.
func (w *Watcher) Reloads() uint64 {
	return w.reloads.Load()
}

func (w *Watcher) Failures() uint64 {
	return w.failures.Load()
}

// Run processes file events until ctx ends, then releases the watcher.
func (w *Watcher) Run(ctx context.Context) error {
	defer w.watcher.Close()

	var timer *time.Timer
	var pending <-chan time.Time
	defer func() {
		if timer != nil {
			timer.Stop()
		}
	}()

	for {
		select {
		case <-ctx.Done():
			return nil
		case event, ok := <-w.watcher.Events:
			if !ok {
				return nil
			}
			if filepath.Clean(event.Name) != w.path {
				continue
			}
			if event.Op&(fsnotify.Write|fsnotify.Create) == 0 {
				continue
			}
			if timer == nil {
				timer = time.NewTimer(w.debounce)
			} else {
				timer.Reset(w.debounce)
			}
			pending = timer.C
		case err, ok := <-w.watcher.Errors:
			if !ok {
				return nil
			}
			w.log.Warn("file watcher error", log.Error(err))
		case <-pending:
			pending = nil
			w.reload()
		}
	}
}

func (w *Watcher) reload() {
	if err := w.catalog.LoadFile(w.path); err != nil {
		w.failures.Add(1)
		w.log.Error("template reload failed", log.String("path", w.path), log.Error(err))
		return
	}
	w.reloads.Add(1)
	w.log.Info("template catalog reloaded",
		log.String("path", w.path),
		log.Int("templates", w.catalog.Len()),
	)
}
