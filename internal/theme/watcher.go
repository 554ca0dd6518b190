package theme

import (
	"log/slog"
	"path/filepath"
	"sync"

	"github.com/fsnotify/fsnotify"
)

// Watcher watches a user theme file and reports new CSS on change.
type Watcher struct {
	mu     sync.Mutex
	logger *slog.Logger
	fs     *fsnotify.Watcher

	name string
	path string

	onChange func(t *Theme)

	done    chan struct{}
	running bool
}

// NewWatcher creates a watcher for t. Bundled themes have no file and
// cannot be watched.
func NewWatcher(t *Theme, logger *slog.Logger) (*Watcher, error) {
	if logger == nil {
		logger = slog.Default()
	}

	fw, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, err
	}

	return &Watcher{
		logger: logger,
		fs:     fw,
		name:   t.Name,
		path:   t.Path,
		done:   make(chan struct{}),
	}, nil
}

// SetChangeCallback sets the function called with the reloaded theme.
func (w *Watcher) SetChangeCallback(cb func(t *Theme)) {
	w.mu.Lock()
	defer w.mu.Unlock()
	w.onChange = cb
}

// Start begins watching the theme file.
func (w *Watcher) Start() error {
	w.mu.Lock()
	if w.running {
		w.mu.Unlock()
		return nil
	}
	w.running = true
	w.mu.Unlock()

	// Watch the directory; editors often replace the file on save
	if err := w.fs.Add(filepath.Dir(w.path)); err != nil {
		return err
	}

	go w.watch()
	return nil
}

func (w *Watcher) watch() {
	filename := filepath.Base(w.path)

	for {
		select {
		case event, ok := <-w.fs.Events:
			if !ok {
				return
			}
			if filepath.Base(event.Name) != filename {
				continue
			}
			if event.Has(fsnotify.Write) || event.Has(fsnotify.Create) {
				w.reload()
			}

		case err, ok := <-w.fs.Errors:
			if !ok {
				return
			}
			w.logger.Warn("theme watcher error", "error", err)

		case <-w.done:
			return
		}
	}
}

func (w *Watcher) reload() {
	t, err := NewTheme(w.name, w.path)
	if err != nil {
		w.logger.Warn("failed to reload theme", "path", w.path, "error", err)
		return
	}

	w.mu.Lock()
	cb := w.onChange
	w.mu.Unlock()

	if cb != nil {
		cb(t)
	}
}

// Stop stops the watcher.
func (w *Watcher) Stop() {
	w.mu.Lock()
	defer w.mu.Unlock()

	if w.running {
		w.running = false
		close(w.done)
	}
	_ = w.fs.Close()
}
