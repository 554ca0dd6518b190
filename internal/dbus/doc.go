// Package dbus exposes a running feed on the session bus. The service lets
// other processes append items (the same action as the "Add Item" button),
// nudge the background producer, and follow appends through the ItemAdded
// signal.
package dbus
