// Package watch re-runs a callback when source files under a root change.
// Events inside the debounce window are coalesced into one callback.
package watch

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"maps"
	"os"
	"path/filepath"
	"slices"
	"strings"
	"sync"
	"sync/atomic"
	"time"

	"github.com/fsnotify/fsnotify"

	"github.com/efebarandurmaz/archlint/internal/discovery"
)

// DefaultDebounce is the quiet period before a batch of changes fires.
const DefaultDebounce = 300 * time.Millisecond

// Config holds the parameters for a Watcher.
type Config struct {
	// Root is the directory to watch recursively.
	Root string
	// Finder decides which files are relevant. Excluded directories are not
	// watched and events for non-matching files are dropped.
	Finder *discovery.Finder
	// Triggers are extra absolute file paths that always fire, such as the
	// rule document.
	Triggers []string
	// Debounce defaults to DefaultDebounce.
	Debounce time.Duration
	// OnChange receives the sorted changed paths relative to Root.
	OnChange func(ctx context.Context, changed []string) error
	Logger   *slog.Logger
}

// Watcher monitors Root and fires OnChange after the debounce window.
type Watcher struct {
	cfg      Config
	fsw      *fsnotify.Watcher
	root     string
	debounce time.Duration
	triggers map[string]bool
	logger   *slog.Logger
	started  atomic.Bool
}

// New creates a Watcher and registers every non-excluded directory.
func New(cfg Config) (*Watcher, error) {
	if cfg.Finder == nil {
		return nil, errors.New("watch: finder is required")
	}
	root, err := filepath.Abs(cfg.Root)
	if err != nil {
		return nil, fmt.Errorf("watch: resolve root: %w", err)
	}
	debounce := cfg.Debounce
	if debounce <= 0 {
		debounce = DefaultDebounce
	}
	logger := cfg.Logger
	if logger == nil {
		logger = slog.Default()
	}

	fsw, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("watch: create fsnotify watcher: %w", err)
	}

	w := &Watcher{
		cfg:      cfg,
		fsw:      fsw,
		root:     root,
		debounce: debounce,
		triggers: make(map[string]bool),
		logger:   logger,
	}
	for _, t := range cfg.Triggers {
		abs, err := filepath.Abs(t)
		if err != nil {
			continue
		}
		w.triggers[abs] = true
		// Triggers outside the tree need their directory watched too.
		if dir := filepath.Dir(abs); !w.inside(dir) {
			if err := fsw.Add(dir); err != nil {
				logger.Warn("watch: cannot watch trigger", "path", abs, "error", err)
			}
		}
	}

	if err := w.addDirectories(root); err != nil {
		_ = fsw.Close()
		return nil, err
	}
	return w, nil
}

// Run blocks until ctx is cancelled. Callbacks never overlap; changes that
// arrive while one runs are delivered by the next.
func (w *Watcher) Run(ctx context.Context) error {
	if !w.started.CompareAndSwap(false, true) {
		return errors.New("watch: Run called more than once")
	}
	defer w.fsw.Close()

	var (
		mu      sync.Mutex
		pending = make(map[string]struct{})
		timer   *time.Timer
		running sync.Mutex
	)

	fire := func() {
		if ctx.Err() != nil {
			return
		}
		running.Lock()
		defer running.Unlock()

		mu.Lock()
		changed := slices.Sorted(maps.Keys(pending))
		clear(pending)
		mu.Unlock()
		if len(changed) == 0 || w.cfg.OnChange == nil {
			return
		}
		if err := w.cfg.OnChange(ctx, changed); err != nil {
			w.logger.Error("watch callback failed", "error", err)
		}
	}

	defer func() {
		mu.Lock()
		if timer != nil {
			timer.Stop()
		}
		mu.Unlock()
	}()

	for {
		select {
		case <-ctx.Done():
			return nil

		case evt, ok := <-w.fsw.Events:
			if !ok {
				return errors.New("watch: event channel closed")
			}
			if evt.Has(fsnotify.Chmod) && !evt.Has(fsnotify.Write) {
				continue
			}
			rel, relevant := w.relevant(evt)
			if !relevant {
				continue
			}
			if evt.Has(fsnotify.Create) {
				w.maybeAddDir(evt.Name)
			}

			mu.Lock()
			pending[rel] = struct{}{}
			if timer == nil {
				timer = time.AfterFunc(w.debounce, fire)
			} else {
				timer.Reset(w.debounce)
			}
			mu.Unlock()

		case err, ok := <-w.fsw.Errors:
			if !ok {
				return errors.New("watch: error channel closed")
			}
			w.logger.Warn("watch: fsnotify error", "error", err)
		}
	}
}

// relevant maps an event to its path relative to Root and reports whether
// it should schedule a run.
func (w *Watcher) relevant(evt fsnotify.Event) (string, bool) {
	if w.triggers[evt.Name] {
		rel, err := filepath.Rel(w.root, evt.Name)
		if err != nil || !w.inside(evt.Name) {
			return evt.Name, true
		}
		return rel, true
	}
	if !w.inside(evt.Name) {
		return "", false
	}
	rel, err := filepath.Rel(w.root, evt.Name)
	if err != nil || w.cfg.Finder.Excluded(rel) {
		return "", false
	}
	// New directories matter because files may be moved in with them.
	if info, err := os.Stat(evt.Name); err == nil && info.IsDir() {
		return rel, evt.Has(fsnotify.Create)
	}
	return rel, w.cfg.Finder.Matches(evt.Name)
}

func (w *Watcher) inside(path string) bool {
	rel, err := filepath.Rel(w.root, path)
	return err == nil && rel != ".." && !strings.HasPrefix(rel, ".."+string(filepath.Separator))
}

func (w *Watcher) addDirectories(root string) error {
	err := filepath.WalkDir(root, func(path string, d os.DirEntry, err error) error {
		if err != nil {
			w.logger.Warn("watch: skipping inaccessible path", "path", path, "error", err)
			return nil
		}
		if !d.IsDir() {
			return nil
		}
		if rel, relErr := filepath.Rel(w.root, path); relErr == nil && rel != "." && w.cfg.Finder.Excluded(rel) {
			return filepath.SkipDir
		}
		if err := w.fsw.Add(path); err != nil {
			return fmt.Errorf("watch: add directory %q: %w", path, err)
		}
		return nil
	})
	if err != nil {
		return fmt.Errorf("watch: walk %s: %w", root, err)
	}
	return nil
}

func (w *Watcher) maybeAddDir(path string) {
	info, err := os.Stat(path)
	if err != nil || !info.IsDir() {
		return
	}
	if err := w.addDirectories(path); err != nil {
		w.logger.Warn("watch: add new directory", "path", path, "error", err)
	}
}
