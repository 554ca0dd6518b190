package dbus

import (
	"fmt"

	"github.com/godbus/dbus/v5"
	"github.com/godbus/dbus/v5/introspect"

	"github.com/jmylchreest/popfeed/internal/model"
)

const (
	// Interface is the feed interface name.
	Interface = "io.github.jmylchreest.Popfeed"
	// Path is the feed object path.
	Path dbus.ObjectPath = "/io/github/jmylchreest/Popfeed"
	// BusName is the bus name to claim.
	BusName = "io.github.jmylchreest.Popfeed"

	// SignalItemAdded is the member name of the append signal.
	SignalItemAdded = "ItemAdded"
)

// ItemAdded is the payload of the ItemAdded signal.
type ItemAdded struct {
	Index   int
	Item    model.Item
	Session string
}

// body returns the signal arguments: (u index, s title, s subtitle, s session).
func (e ItemAdded) body() []interface{} {
	return []interface{}{uint32(e.Index), e.Item.Title, e.Item.Subtitle, e.Session}
}

// ParseItemAdded decodes an ItemAdded signal.
func ParseItemAdded(sig *dbus.Signal) (ItemAdded, error) {
	if sig == nil {
		return ItemAdded{}, fmt.Errorf("nil signal")
	}
	if sig.Name != Interface+"."+SignalItemAdded {
		return ItemAdded{}, fmt.Errorf("unexpected signal %q", sig.Name)
	}
	if len(sig.Body) < 4 {
		return ItemAdded{}, fmt.Errorf("malformed ItemAdded signal: %d arguments", len(sig.Body))
	}

	var e ItemAdded
	index, ok := sig.Body[0].(uint32)
	if !ok {
		return ItemAdded{}, fmt.Errorf("invalid index type %T", sig.Body[0])
	}
	e.Index = int(index)
	if e.Item.Title, ok = sig.Body[1].(string); !ok {
		return ItemAdded{}, fmt.Errorf("invalid title type %T", sig.Body[1])
	}
	if e.Item.Subtitle, ok = sig.Body[2].(string); !ok {
		return ItemAdded{}, fmt.Errorf("invalid subtitle type %T", sig.Body[2])
	}
	if e.Session, ok = sig.Body[3].(string); !ok {
		return ItemAdded{}, fmt.Errorf("invalid session type %T", sig.Body[3])
	}
	return e, nil
}

// feedMethods returns the D-Bus method introspection data.
func feedMethods() []introspect.Method {
	return []introspect.Method{
		{
			Name: "AddItem",
			Args: []introspect.Arg{
				{Name: "title", Type: "s", Direction: "out"},
			},
		},
		{
			Name: "Trigger",
			Args: []introspect.Arg{
				{Name: "accepted", Type: "b", Direction: "out"},
			},
		},
		{
			Name: "Count",
			Args: []introspect.Arg{
				{Name: "count", Type: "u", Direction: "out"},
			},
		},
		{
			Name: "GetSession",
			Args: []introspect.Arg{
				{Name: "session", Type: "s", Direction: "out"},
			},
		},
	}
}

// feedSignals returns the D-Bus signal introspection data.
func feedSignals() []introspect.Signal {
	return []introspect.Signal{
		{
			Name: SignalItemAdded,
			Args: []introspect.Arg{
				{Name: "index", Type: "u"},
				{Name: "title", Type: "s"},
				{Name: "subtitle", Type: "s"},
				{Name: "session", Type: "s"},
			},
		},
	}
}
