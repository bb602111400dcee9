// Package watcher notices edits to the manifests that decide the drift
// indicator. It watches the parent directories rather than the files so that
// atomic replacements and late creation are seen too.
package watcher

import (
	"errors"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"

	"misetui/internal/logging"
)

// Watcher reports debounced changes to a fixed set of files.
type Watcher struct {
	fsWatcher *fsnotify.Watcher
	targets   map[string]bool
	dirs      []string
	debounce  time.Duration
	onChange  ChangeHandler
	pending   map[string]time.Time
	mu        sync.Mutex
	done      chan struct{}
	running   bool
	stopOnce  sync.Once
}

// New creates a watcher for files. Empty paths are ignored; a file may not
// exist yet as long as its directory does.
func New(files []string, debounce time.Duration) (*Watcher, error) {
	if debounce <= 0 {
		debounce = 200 * time.Millisecond
	}

	targets := make(map[string]bool)
	seen := make(map[string]bool)
	var dirs []string
	for _, f := range files {
		if f == "" {
			continue
		}
		abs, err := filepath.Abs(f)
		if err != nil {
			continue
		}
		targets[abs] = true
		if dir := filepath.Dir(abs); !seen[dir] {
			seen[dir] = true
			dirs = append(dirs, dir)
		}
	}
	if len(targets) == 0 {
		return nil, errors.New("nothing to watch")
	}

	fsWatcher, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, err
	}
	return &Watcher{
		fsWatcher: fsWatcher,
		targets:   targets,
		dirs:      dirs,
		debounce:  debounce,
		pending:   make(map[string]time.Time),
		done:      make(chan struct{}),
	}, nil
}

// SetOnChange sets the callback for settled changes.
func (w *Watcher) SetOnChange(handler ChangeHandler) {
	w.mu.Lock()
	defer w.mu.Unlock()
	w.onChange = handler
}

// Start begins watching. Directories that do not exist are skipped; it fails
// only when none could be watched.
func (w *Watcher) Start() error {
	w.mu.Lock()
	if w.running {
		w.mu.Unlock()
		return nil
	}
	w.running = true
	w.mu.Unlock()

	added := 0
	for _, dir := range w.dirs {
		if err := w.fsWatcher.Add(dir); err != nil {
			logging.Debug("not watching directory", "dir", dir, "error", err)
			continue
		}
		added++
	}
	if added == 0 {
		_ = w.Stop()
		return errors.New("no watchable directory")
	}

	go w.processEvents()
	go w.processDebounce()
	return nil
}

// Stop stops watching. It is safe to call more than once.
func (w *Watcher) Stop() error {
	w.mu.Lock()
	if !w.running {
		w.mu.Unlock()
		return nil
	}
	w.running = false
	w.mu.Unlock()

	w.stopOnce.Do(func() {
		close(w.done)
	})
	return w.fsWatcher.Close()
}

func (w *Watcher) processEvents() {
	for {
		select {
		case <-w.done:
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
			logging.Warn("watcher error", "error", err)
		}
	}
}

func (w *Watcher) handleEvent(event fsnotify.Event) {
	if !w.targets[filepath.Clean(event.Name)] {
		return
	}
	if event.Op&(fsnotify.Create|fsnotify.Write|fsnotify.Remove|fsnotify.Rename) == 0 {
		return
	}
	w.mu.Lock()
	w.pending[filepath.Clean(event.Name)] = time.Now()
	w.mu.Unlock()
}

func (w *Watcher) processDebounce() {
	ticker := time.NewTicker(w.debounce / 2)
	defer ticker.Stop()

	for {
		select {
		case <-w.done:
			return
		case <-ticker.C:
			w.flushPending(time.Now())
		}
	}
}

// flushPending reports paths that have been quiet for the debounce interval.
func (w *Watcher) flushPending(now time.Time) {
	w.mu.Lock()
	handler := w.onChange
	if handler == nil || len(w.pending) == 0 {
		w.mu.Unlock()
		return
	}

	var ready []string
	for path, at := range w.pending {
		if now.Sub(at) >= w.debounce {
			ready = append(ready, path)
			delete(w.pending, path)
		}
	}
	w.mu.Unlock()

	for _, path := range ready {
		op := OpModify
		if _, err := os.Stat(path); os.IsNotExist(err) {
			op = OpDelete
		}
		logging.Debug("manifest changed", "path", path, "op", op.String())
		handler(path, op)
	}
}

// IsRunning returns whether the watcher is running.
func (w *Watcher) IsRunning() bool {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.running
}
