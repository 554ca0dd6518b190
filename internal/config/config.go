// Package config handles configuration file loading and parsing.
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/pelletier/go-toml/v2"
)

// Default configuration values.
const (
	DefaultLatency     = 100 * time.Millisecond
	DefaultWidth       = 400
	DefaultHeight      = 600
	DefaultTitle       = "popfeed"
	DefaultVolume      = 80
	DefaultAccentColor = "#3a3a3a"
)

// Anchor is the list anchoring policy.
type Anchor string

const (
	// AnchorBottom keeps the newest item in view until the user scrolls away.
	AnchorBottom Anchor = "bottom"
	// AnchorTop starts at the oldest item.
	AnchorTop Anchor = "top"
)

// ColorScheme represents the color scheme preference.
type ColorScheme string

const (
	ColorSchemeSystem ColorScheme = "system"
	ColorSchemeLight  ColorScheme = "light"
	ColorSchemeDark   ColorScheme = "dark"
)

// Config represents the popfeed configuration.
type Config struct {
	Producer  ProducerConfig  `toml:"producer"`
	List      ListConfig      `toml:"list"`
	Window    WindowConfig    `toml:"window"`
	TUI       TUIConfig       `toml:"tui"`
	Audio     AudioConfig     `toml:"audio"`
	DBus      DBusConfig      `toml:"dbus"`
	Clipboard ClipboardConfig `toml:"clipboard"`
}

// ProducerConfig controls the background producer.
type ProducerConfig struct {
	Enabled  bool     `toml:"enabled"`
	Latency  Duration `toml:"latency"`  // Simulated work before each item
	Interval Duration `toml:"interval"` // Extra pause after each item
}

// ListConfig holds list behaviour.
type ListConfig struct {
	Anchor string `toml:"anchor"` // bottom, top
}

// WindowConfig holds popup window settings (GTK only).
type WindowConfig struct {
	Title       string `toml:"title"`
	Width       int    `toml:"width"`
	Height      int    `toml:"height"`
	LayerShell  bool   `toml:"layer_shell"`  // Place as a Wayland overlay
	ColorScheme string `toml:"color_scheme"` // system, light, dark
	Theme       string `toml:"theme"`        // Bundled theme or file in the themes directory
}

// TUIConfig holds TUI-specific settings.
type TUIConfig struct {
	ShowHelp    bool   `toml:"show_help"`
	AltScreen   bool   `toml:"alt_screen"`
	AccentColor string `toml:"accent_color"`
}

// AudioConfig holds the per-item chime settings.
type AudioConfig struct {
	Enabled bool   `toml:"enabled"`
	Sound   string `toml:"sound"`  // WAV, OGG or MP3 file
	Volume  int    `toml:"volume"` // 0-100
}

// DBusConfig holds the session bus service settings.
type DBusConfig struct {
	Enabled bool `toml:"enabled"`
}

// ClipboardConfig holds clipboard settings (TUI only).
type ClipboardConfig struct {
	Command string `toml:"command"` // Auto-detected if empty
}

// DefaultConfig returns a Config with default values.
func DefaultConfig() *Config {
	return &Config{
		Producer: ProducerConfig{
			Enabled:  true,
			Latency:  Duration(DefaultLatency),
			Interval: 0,
		},
		List: ListConfig{
			Anchor: string(AnchorBottom),
		},
		Window: WindowConfig{
			Title:       DefaultTitle,
			Width:       DefaultWidth,
			Height:      DefaultHeight,
			LayerShell:  false,
			ColorScheme: string(ColorSchemeSystem),
			Theme:       "default",
		},
		TUI: TUIConfig{
			ShowHelp:    true,
			AltScreen:   true,
			AccentColor: DefaultAccentColor,
		},
		Audio: AudioConfig{
			Enabled: false,
			Volume:  DefaultVolume,
		},
		DBus: DBusConfig{
			Enabled: true,
		},
		Clipboard: ClipboardConfig{
			Command: "", // Auto-detect
		},
	}
}

// ConfigPath returns the path to the config file.
// Uses XDG_CONFIG_HOME if set, otherwise ~/.config.
func ConfigPath() string {
	configHome := os.Getenv("XDG_CONFIG_HOME")
	if configHome == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			return ""
		}
		configHome = filepath.Join(home, ".config")
	}
	return filepath.Join(configHome, "popfeed", "config.toml")
}

// LoadConfig loads configuration from the specified path.
// If path is empty, uses the default config path.
// Returns default config if file doesn't exist.
func LoadConfig(path string) (*Config, error) {
	if path == "" {
		path = ConfigPath()
	}

	// Start with defaults
	cfg := DefaultConfig()

	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return cfg, nil
		}
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	if err := toml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config file: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	return cfg, nil
}

// Save writes the configuration to the specified path.
// Creates parent directories if needed.
func (c *Config) Save(path string) error {
	if path == "" {
		path = ConfigPath()
	}

	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return err
	}

	data, err := toml.Marshal(c)
	if err != nil {
		return err
	}

	// Write atomically via temp file
	tmpPath := path + ".tmp"
	if err := os.WriteFile(tmpPath, data, 0644); err != nil {
		return err
	}
	return os.Rename(tmpPath, path)
}

// Validate checks if the configuration is valid.
func (c *Config) Validate() error {
	if c.Producer.Latency < 0 || c.Producer.Interval < 0 {
		return errors.New("producer latency and interval must not be negative")
	}
	if c.Producer.Enabled && c.Producer.Latency+c.Producer.Interval == 0 {
		return errors.New("producer latency and interval cannot both be zero")
	}

	switch Anchor(c.List.Anchor) {
	case AnchorBottom, AnchorTop:
	default:
		return fmt.Errorf("invalid anchor %q, must be one of: %v", c.List.Anchor, []Anchor{AnchorBottom, AnchorTop})
	}

	if c.Window.Width < 100 || c.Window.Width > 4000 {
		return fmt.Errorf("width must be between 100 and 4000, got %d", c.Window.Width)
	}
	if c.Window.Height < 100 || c.Window.Height > 4000 {
		return fmt.Errorf("height must be between 100 and 4000, got %d", c.Window.Height)
	}

	switch ColorScheme(c.Window.ColorScheme) {
	case ColorSchemeSystem, ColorSchemeLight, ColorSchemeDark:
	default:
		return fmt.Errorf("invalid color_scheme %q", c.Window.ColorScheme)
	}

	if c.Audio.Volume < 0 || c.Audio.Volume > 100 {
		return fmt.Errorf("volume must be between 0 and 100, got %d", c.Audio.Volume)
	}

	return nil
}

// ListAnchor returns the configured anchoring policy.
func (c *Config) ListAnchor() Anchor {
	return Anchor(c.List.Anchor)
}

// SoundPath returns the chime path with ~ expanded.
func (c *Config) SoundPath() string {
	return expandPath(c.Audio.Sound)
}

// expandPath expands ~ to the user's home directory.
func expandPath(path string) string {
	if strings.HasPrefix(path, "~/") {
		home, err := os.UserHomeDir()
		if err == nil {
			return filepath.Join(home, path[2:])
		}
	}
	return path
}
