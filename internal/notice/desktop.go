package notice

import (
	"fmt"

	"github.com/godbus/dbus/v5"
)

const (
	notificationsName = "org.freedesktop.Notifications"
	notificationsPath = dbus.ObjectPath("/org/freedesktop/Notifications")

	appName       = "popfeed"
	expireTimeout = int32(5000)
)

// DesktopSender sends notices to the session's notification daemon.
type DesktopSender struct {
	obj dbus.BusObject
}

// NewDesktopSender connects to the session bus.
func NewDesktopSender() (*DesktopSender, error) {
	conn, err := dbus.SessionBus()
	if err != nil {
		return nil, fmt.Errorf("failed to connect to session bus: %w", err)
	}
	return &DesktopSender{obj: conn.Object(notificationsName, notificationsPath)}, nil
}

// Send calls org.freedesktop.Notifications.Notify.
func (s *DesktopSender) Send(n Notice) error {
	call := s.obj.Call(notificationsName+".Notify", 0,
		appName,
		uint32(0), // replaces_id
		iconFor(n.Level),
		n.Summary,
		n.Body,
		[]string{}, // actions
		hintsFor(n.Level),
		expireTimeout,
	)
	if call.Err != nil {
		return fmt.Errorf("Notify: %w", call.Err)
	}
	return nil
}

func iconFor(l Level) string {
	switch l {
	case LevelWarning:
		return "dialog-warning"
	case LevelError:
		return "dialog-error"
	default:
		return "dialog-information"
	}
}

// hintsFor maps the level to notification hints. Notices are transient and
// never stay in the daemon's history.
func hintsFor(l Level) map[string]dbus.Variant {
	urgency := byte(1)
	switch l {
	case LevelInfo:
		urgency = 0
	case LevelError:
		urgency = 2
	}
	return map[string]dbus.Variant{
		"urgency":       dbus.MakeVariant(urgency),
		"transient":     dbus.MakeVariant(true),
		"desktop-entry": dbus.MakeVariant(appName),
	}
}
