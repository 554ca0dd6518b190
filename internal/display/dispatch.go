package display

import (
	"github.com/diamondburned/gotk4/pkg/glib/v2"

	"github.com/jmylchreest/popfeed/internal/listsync"
)

// MainLoop runs functions on the GTK main loop. Idle sources of equal
// priority run in the order they were added.
var MainLoop listsync.Dispatcher = listsync.DispatcherFunc(func(fn func()) {
	glib.IdleAdd(fn)
})
