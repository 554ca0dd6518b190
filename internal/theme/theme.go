package theme

import (
	"fmt"
	"os"
	"path/filepath"
	"time"
)

// Theme represents a CSS theme with metadata.
type Theme struct {
	Name      string    // Theme name (without .css extension)
	Path      string    // Full path to the CSS file (empty when bundled)
	CSS       string    // The CSS content
	ModTime   time.Time // Last modification time
	IsDefault bool      // True if this is the embedded default theme
}

// NewTheme creates a new Theme by loading a CSS file.
func NewTheme(name, path string) (*Theme, error) {
	css, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}

	info, err := os.Stat(path)
	if err != nil {
		return nil, err
	}

	return &Theme{
		Name:    name,
		Path:    path,
		CSS:     string(css),
		ModTime: info.ModTime(),
	}, nil
}

// NewDefaultTheme creates the embedded default theme.
func NewDefaultTheme() *Theme {
	css, _ := GetEmbeddedTheme(DefaultThemeName)
	return &Theme{
		Name:      DefaultThemeName,
		CSS:       css,
		IsDefault: true,
	}
}

// ThemesDir returns the path to the user's themes directory.
func ThemesDir() (string, error) {
	configDir, err := os.UserConfigDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(configDir, "popfeed", "themes"), nil
}

// Resolve finds a theme by name.
// Theme resolution order:
//  1. User themes directory (dir/<name>.css)
//  2. Embedded/bundled themes
//  3. The default theme
//
// The returned error reports why an earlier step was skipped; the theme is
// always usable.
func Resolve(name, dir string) (*Theme, error) {
	if name == "" {
		name = DefaultThemeName
	}

	var skipped error
	if dir != "" {
		path := filepath.Join(dir, name+".css")
		if _, err := os.Stat(path); err == nil {
			t, err := NewTheme(name, path)
			if err == nil {
				return t, nil
			}
			skipped = fmt.Errorf("failed to load user theme %q: %w", name, err)
		}
	}

	if css, found := GetEmbeddedTheme(name); found {
		return &Theme{
			Name:      name,
			CSS:       css,
			IsDefault: name == DefaultThemeName,
		}, skipped
	}

	if skipped == nil {
		skipped = fmt.Errorf("theme %q not found", name)
	}
	return NewDefaultTheme(), skipped
}

// Changed reports whether the theme file was modified since it was loaded.
func (t *Theme) Changed() bool {
	if t.Path == "" {
		return false
	}
	info, err := os.Stat(t.Path)
	if err != nil {
		return false
	}
	return info.ModTime().After(t.ModTime)
}
