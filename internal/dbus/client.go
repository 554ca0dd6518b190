package dbus

import (
	"context"
	"fmt"

	"github.com/godbus/dbus/v5"
)

// Client talks to a running feed over the session bus.
type Client struct {
	conn *dbus.Conn
	obj  dbus.BusObject
}

// NewClient connects to the session bus.
func NewClient() (*Client, error) {
	conn, err := dbus.SessionBus()
	if err != nil {
		return nil, fmt.Errorf("failed to connect to session bus: %w", err)
	}
	return &Client{
		conn: conn,
		obj:  conn.Object(BusName, Path),
	}, nil
}

// Running reports whether a feed currently owns the bus name.
func (c *Client) Running(ctx context.Context) (bool, error) {
	var has bool
	err := c.conn.BusObject().CallWithContext(ctx, "org.freedesktop.DBus.NameHasOwner", 0, BusName).Store(&has)
	if err != nil {
		return false, fmt.Errorf("failed to query bus name: %w", err)
	}
	return has, nil
}

// AddItem asks the feed to append one item and returns its title.
func (c *Client) AddItem(ctx context.Context) (string, error) {
	var title string
	if err := c.obj.CallWithContext(ctx, Interface+".AddItem", 0).Store(&title); err != nil {
		return "", fmt.Errorf("AddItem: %w", err)
	}
	return title, nil
}

// Trigger asks the feed's producer for an extra append.
func (c *Client) Trigger(ctx context.Context) (bool, error) {
	var accepted bool
	if err := c.obj.CallWithContext(ctx, Interface+".Trigger", 0).Store(&accepted); err != nil {
		return false, fmt.Errorf("Trigger: %w", err)
	}
	return accepted, nil
}

// Count returns the number of items in the feed.
func (c *Client) Count(ctx context.Context) (int, error) {
	var count uint32
	if err := c.obj.CallWithContext(ctx, Interface+".Count", 0).Store(&count); err != nil {
		return 0, fmt.Errorf("Count: %w", err)
	}
	return int(count), nil
}

// Session returns the feed's session id.
func (c *Client) Session(ctx context.Context) (string, error) {
	var session string
	if err := c.obj.CallWithContext(ctx, Interface+".GetSession", 0).Store(&session); err != nil {
		return "", fmt.Errorf("GetSession: %w", err)
	}
	return session, nil
}

// Follow calls fn for every ItemAdded signal until ctx is done.
func (c *Client) Follow(ctx context.Context, fn func(ItemAdded)) error {
	opts := []dbus.MatchOption{
		dbus.WithMatchObjectPath(Path),
		dbus.WithMatchInterface(Interface),
		dbus.WithMatchMember(SignalItemAdded),
	}
	if err := c.conn.AddMatchSignalContext(ctx, opts...); err != nil {
		return fmt.Errorf("failed to add match rule: %w", err)
	}
	defer func() { _ = c.conn.RemoveMatchSignal(opts...) }()

	ch := make(chan *dbus.Signal, 100)
	c.conn.Signal(ch)
	defer c.conn.RemoveSignal(ch)

	for {
		select {
		case <-ctx.Done():
			return nil
		case sig, ok := <-ch:
			if !ok {
				return fmt.Errorf("D-Bus connection closed")
			}
			e, err := ParseItemAdded(sig)
			if err != nil {
				continue
			}
			fn(e)
		}
	}
}
