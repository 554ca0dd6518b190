// Package notice reports popfeed's own events (producer failures, config
// and theme reloads) as desktop notifications.
package notice

import (
	"log/slog"
	"sync"
	"time"
)

// Level indicates the severity of a notice.
type Level int

const (
	// LevelInfo is for informational messages (low urgency).
	LevelInfo Level = iota
	// LevelWarning is for warning messages (normal urgency).
	LevelWarning
	// LevelError is for error messages (critical urgency).
	LevelError
)

// String returns the level name.
func (l Level) String() string {
	switch l {
	case LevelInfo:
		return "info"
	case LevelWarning:
		return "warning"
	case LevelError:
		return "error"
	default:
		return "unknown"
	}
}

// Notice is one message to show.
type Notice struct {
	Summary string
	Body    string
	Level   Level
}

// Sender delivers a notice to the desktop.
type Sender interface {
	Send(n Notice) error
}

// DefaultMinInterval is how long a key stays quiet after a notice.
const DefaultMinInterval = 5 * time.Second

// Notifier sends notices through a Sender, dropping repeats of the same key
// within the minimum interval.
type Notifier struct {
	mu     sync.Mutex
	logger *slog.Logger
	sender Sender

	lastSent    map[string]time.Time // key -> last notice time
	minInterval time.Duration
	enabled     bool

	now func() time.Time
}

// NewNotifier creates a Notifier. A nil sender makes every notice a log line.
func NewNotifier(sender Sender, logger *slog.Logger) *Notifier {
	if logger == nil {
		logger = slog.Default()
	}
	return &Notifier{
		logger:      logger,
		sender:      sender,
		lastSent:    make(map[string]time.Time),
		minInterval: DefaultMinInterval,
		enabled:     true,
		now:         time.Now,
	}
}

// SetEnabled enables or disables notices.
func (n *Notifier) SetEnabled(enabled bool) {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.enabled = enabled
}

// SetMinInterval sets the minimum interval between notices with the same key.
func (n *Notifier) SetMinInterval(interval time.Duration) {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.minInterval = interval
}

// Notify sends a notice unless the key was used within the minimum
// interval. It reports whether the notice was sent.
func (n *Notifier) Notify(key string, notice Notice) bool {
	n.mu.Lock()
	if !n.enabled {
		n.mu.Unlock()
		return false
	}
	now := n.now()
	if last, ok := n.lastSent[key]; ok && now.Sub(last) < n.minInterval {
		n.mu.Unlock()
		n.logger.Debug("notice rate-limited", "key", key, "summary", notice.Summary)
		return false
	}
	n.lastSent[key] = now
	sender := n.sender
	n.mu.Unlock()

	if sender == nil {
		n.logger.Info("notice", "summary", notice.Summary, "body", notice.Body, "level", notice.Level)
		return true
	}

	if err := sender.Send(notice); err != nil {
		n.logger.Warn("failed to send notice", "summary", notice.Summary, "error", err)
		return false
	}
	return true
}

// ProducerStopped reports that the producer gave up after a failed append.
func (n *Notifier) ProducerStopped(err error) {
	n.Notify("producer", Notice{
		Summary: "popfeed: producer stopped",
		Body:    err.Error(),
		Level:   LevelError,
	})
}

// ConfigReloaded reports a successful config reload.
func (n *Notifier) ConfigReloaded() {
	n.Notify("config", Notice{
		Summary: "popfeed: configuration reloaded",
		Level:   LevelInfo,
	})
}

// ConfigError reports a config file that failed to load.
func (n *Notifier) ConfigError(err error) {
	n.Notify("config", Notice{
		Summary: "popfeed: configuration error",
		Body:    err.Error(),
		Level:   LevelWarning,
	})
}

// ThemeReloaded reports that a theme was reapplied.
func (n *Notifier) ThemeReloaded(name string) {
	n.Notify("theme", Notice{
		Summary: "popfeed: theme reloaded",
		Body:    name,
		Level:   LevelInfo,
	})
}
