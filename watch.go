package homepage

import (
	"context"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"slices"
	"strings"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"
)

// debounceInterval is the quiet period after the last change before the
// page cache is invalidated.
const debounceInterval = 100 * time.Millisecond

// debouncer collects changed paths and emits them as one batch once no
// new path has arrived for the interval. Repeated paths collapse.
type debouncer struct {
	interval time.Duration
	mu       sync.Mutex
	paths    map[string]struct{}
	timer    *time.Timer
	output   chan []string
}

func newDebouncer(interval time.Duration) *debouncer {
	return &debouncer{
		interval: interval,
		paths:    make(map[string]struct{}),
		output:   make(chan []string, 16),
	}
}

func (d *debouncer) add(path string) {
	d.mu.Lock()
	defer d.mu.Unlock()

	d.paths[path] = struct{}{}
	if d.timer != nil {
		d.timer.Stop()
	}
	d.timer = time.AfterFunc(d.interval, d.flush)
}

func (d *debouncer) flush() {
	d.mu.Lock()
	defer d.mu.Unlock()

	if len(d.paths) == 0 {
		return
	}
	batch := make([]string, 0, len(d.paths))
	for p := range d.paths {
		batch = append(batch, p)
	}
	slices.Sort(batch)
	d.paths = make(map[string]struct{})
	select {
	case d.output <- batch:
	default:
		// A batch is already pending; one invalidation covers both.
	}
}

func (d *debouncer) stop() {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.timer != nil {
		d.timer.Stop()
	}
}

// ContentWatcher invalidates a PageCache whenever files under the content
// directory change.
type ContentWatcher struct {
	fsWatcher *fsnotify.Watcher
	debouncer *debouncer
	cache     *PageCache
	root      string
	logger    *slog.Logger
}

// NewContentWatcher watches root and every non-hidden directory below it.
func NewContentWatcher(root string, cache *PageCache, logger *slog.Logger) (*ContentWatcher, error) {
	fsWatcher, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, err
	}
	w := &ContentWatcher{
		fsWatcher: fsWatcher,
		debouncer: newDebouncer(debounceInterval),
		cache:     cache,
		root:      root,
		logger:    logger,
	}
	err = filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if !d.IsDir() {
			return nil
		}
		if path != root && isHidden(path) {
			return filepath.SkipDir
		}
		if watchErr := fsWatcher.Add(path); watchErr != nil {
			logger.Warn("failed to watch directory", "path", path, "error", watchErr)
		}
		return nil
	})
	if err != nil {
		fsWatcher.Close()
		return nil, err
	}
	return w, nil
}

// Run processes file events until ctx is cancelled, then closes the watcher.
func (w *ContentWatcher) Run(ctx context.Context) {
	defer w.fsWatcher.Close()
	defer w.debouncer.stop()
	for {
		select {
		case <-ctx.Done():
			return
		case event, ok := <-w.fsWatcher.Events:
			if !ok {
				return
			}
			w.handleEvent(event)
		case err, ok := <-w.fsWatcher.Errors:
			if !ok {
				return
			}
			w.logger.Warn("watcher error", "error", err)
		case batch := <-w.debouncer.output:
			w.cache.Invalidate()
			w.logger.Info("content changed, page cache invalidated", "files", len(batch), "first", batch[0])
		}
	}
}

func (w *ContentWatcher) handleEvent(event fsnotify.Event) {
	path := event.Name
	if isHidden(path) {
		return
	}
	if event.Has(fsnotify.Create) {
		if info, err := os.Stat(path); err == nil && info.IsDir() {
			if err := w.fsWatcher.Add(path); err != nil {
				w.logger.Warn("failed to watch new directory", "path", path, "error", err)
			}
			w.debouncer.add(path)
			return
		}
	}
	if event.Has(fsnotify.Chmod) && !event.Has(fsnotify.Write) {
		return
	}
	w.debouncer.add(path)
}

func isHidden(path string) bool {
	return strings.HasPrefix(filepath.Base(path), ".")
}
