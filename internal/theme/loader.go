package theme

import (
	"log/slog"
	"sync"

	"github.com/diamondburned/gotk4/pkg/gdk/v4"
	"github.com/diamondburned/gotk4/pkg/glib/v2"
	"github.com/diamondburned/gotk4/pkg/gtk/v4"
)

// Loader handles loading and applying CSS themes with hot-reload support.
// Its methods must be called on the GTK main thread.
type Loader struct {
	mu        sync.Mutex
	logger    *slog.Logger
	provider  *gtk.CSSProvider
	themesDir string
	theme     *Theme
	watcher   *Watcher
	onReload  func(*Theme)
}

// NewLoader creates a new theme loader.
func NewLoader(logger *slog.Logger) *Loader {
	if logger == nil {
		logger = slog.Default()
	}

	themesDir, err := ThemesDir()
	if err != nil {
		logger.Warn("failed to get themes directory", "error", err)
		themesDir = ""
	}

	return &Loader{
		logger:    logger,
		provider:  gtk.NewCSSProvider(),
		themesDir: themesDir,
	}
}

// LoadTheme loads a theme by name, falling back to the default theme.
func (l *Loader) LoadTheme(name string) {
	t, err := Resolve(name, l.themesDir)
	if err != nil {
		l.logger.Warn("theme fallback", "requested", name, "using", t.Name, "error", err)
	}

	l.mu.Lock()
	l.theme = t
	l.mu.Unlock()

	l.provider.LoadFromString(t.CSS)
	l.logger.Info("loaded theme", "name", t.Name, "path", t.Path)

	l.watch(t)
}

// SetReloadCallback sets a function called on the main loop after a theme
// file was hot-reloaded.
func (l *Loader) SetReloadCallback(cb func(*Theme)) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.onReload = cb
}

// Theme returns the currently loaded theme.
func (l *Loader) Theme() *Theme {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.theme
}

// Apply attaches the theme's provider to a display.
func (l *Loader) Apply(display *gdk.Display) {
	if display == nil {
		display = gdk.DisplayGetDefault()
	}
	if display == nil {
		l.logger.Warn("no display available, cannot apply theme")
		return
	}

	gtk.StyleContextAddProviderForDisplay(
		display,
		l.provider,
		gtk.STYLE_PROVIDER_PRIORITY_APPLICATION,
	)
}

// watch hot-reloads user themes. Reloads are applied on the main loop.
func (l *Loader) watch(t *Theme) {
	l.mu.Lock()
	defer l.mu.Unlock()

	if l.watcher != nil {
		l.watcher.Stop()
		l.watcher = nil
	}
	if t.Path == "" {
		return
	}

	w, err := NewWatcher(t, l.logger)
	if err != nil {
		l.logger.Warn("failed to create theme watcher", "error", err)
		return
	}
	w.SetChangeCallback(func(nt *Theme) {
		glib.IdleAdd(func() {
			l.mu.Lock()
			l.theme = nt
			cb := l.onReload
			l.mu.Unlock()
			l.provider.LoadFromString(nt.CSS)
			l.logger.Info("hot-reloaded theme", "name", nt.Name)
			if cb != nil {
				cb(nt)
			}
		})
	})
	if err := w.Start(); err != nil {
		l.logger.Warn("failed to start theme watcher", "error", err)
		w.Stop()
		return
	}
	l.watcher = w
}

// Close stops hot reloading.
func (l *Loader) Close() {
	l.mu.Lock()
	defer l.mu.Unlock()

	if l.watcher != nil {
		l.watcher.Stop()
		l.watcher = nil
	}
}
