package policy

import (
	"context"
	"fmt"
	"log/slog"
	"path/filepath"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"
)

// Watcher reloads the catalog file when it changes. Reload events are
// debounced so editors that write in several steps trigger one reload. A
// malformed rewrite is logged and the previous catalog stays in effect.
type Watcher struct {
	path     string
	debounce time.Duration
	logger   *slog.Logger

	mu      sync.Mutex
	running bool
}

// WatcherConfig configures a catalog watcher.
type WatcherConfig struct {
	// Path is the catalog file to watch.
	Path string

	// Debounce is the quiet period after a change before reloading.
	// Default: 200ms.
	Debounce time.Duration
}

// NewWatcher creates a catalog watcher.
func NewWatcher(cfg WatcherConfig, logger *slog.Logger) *Watcher {
	if logger == nil {
		logger = slog.Default()
	}
	debounce := cfg.Debounce
	if debounce <= 0 {
		debounce = 200 * time.Millisecond
	}
	return &Watcher{
		path:     cfg.Path,
		debounce: debounce,
		logger:   logger.With("component", "policy.watcher"),
	}
}

// Watch blocks until ctx is cancelled, invoking onReload with each
// successfully reloaded catalog. The parent directory is watched rather
// than the file itself so atomic rename-in-place rewrites are seen.
func (w *Watcher) Watch(ctx context.Context, onReload func(*Catalog)) error {
	w.mu.Lock()
	if w.running {
		w.mu.Unlock()
		return fmt.Errorf("watcher already running")
	}
	w.running = true
	w.mu.Unlock()

	defer func() {
		w.mu.Lock()
		w.running = false
		w.mu.Unlock()
	}()

	fw, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("failed to create fsnotify watcher: %w", err)
	}
	defer fw.Close()

	dir := filepath.Dir(w.path)
	if err := fw.Add(dir); err != nil {
		return fmt.Errorf("failed to watch %q: %w", dir, err)
	}

	w.logger.Info("watching catalog", "path", w.path, "debounce", w.debounce)

	var timer *time.Timer
	var timerC <-chan time.Time

	for {
		select {
		case <-ctx.Done():
			return nil

		case event, ok := <-fw.Events:
			if !ok {
				return nil
			}
			if filepath.Clean(event.Name) != filepath.Clean(w.path) {
				continue
			}
			if !event.Has(fsnotify.Write) && !event.Has(fsnotify.Create) && !event.Has(fsnotify.Rename) {
				continue
			}
			if timer == nil {
				timer = time.NewTimer(w.debounce)
				timerC = timer.C
			} else {
				if !timer.Stop() {
					select {
					case <-timer.C:
					default:
					}
				}
				timer.Reset(w.debounce)
			}

		case <-timerC:
			timer = nil
			timerC = nil
			w.reload(onReload)

		case err, ok := <-fw.Errors:
			if !ok {
				return nil
			}
			w.logger.Error("catalog watch error", "error", err)
		}
	}
}

// reload parses the catalog file and hands the result to onReload. Parse
// failures keep the previous catalog in effect.
func (w *Watcher) reload(onReload func(*Catalog)) {
	cat, err := Load(w.path)
	if err != nil {
		w.logger.Error("catalog reload failed, keeping previous catalog",
			"path", w.path,
			"error", err,
		)
		return
	}
	w.logger.Info("catalog reloaded", "path", w.path, "policies", cat.Len())
	onReload(cat)
}
