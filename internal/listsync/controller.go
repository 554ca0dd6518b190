// Package listsync keeps a virtualized list window in step with a growing
// collection. Every change notification rebuilds the window from the
// committed snapshot, carries the previous scroll offset forward and asks the
// host to redraw.
package listsync

import (
	"log/slog"

	"github.com/jmylchreest/popfeed/internal/model"
	"github.com/jmylchreest/popfeed/internal/store"
	"github.com/jmylchreest/popfeed/internal/window"
)

// Phase is the controller's processing state.
type Phase int

const (
	// PhaseIdle means no rebuild is in progress.
	PhaseIdle Phase = iota
	// PhaseRebuilding is held while a notification is being applied.
	PhaseRebuilding
)

func (p Phase) String() string {
	switch p {
	case PhaseRebuilding:
		return "rebuilding"
	default:
		return "idle"
	}
}

// RenderFunc maps an item to a host renderable unit. It must be pure.
type RenderFunc[R any] func(model.Item) R

// Options configures a Controller.
type Options struct {
	// DefaultOffset is applied to the initial window when HasDefaultOffset
	// is set; otherwise the initial offset stays unset.
	DefaultOffset    window.Offset
	HasDefaultOffset bool

	Logger *slog.Logger
}

// Controller owns the current window. It is confined to the UI context: all
// methods must be called from that context, which Attach arranges through a
// Dispatcher.
type Controller[R any] struct {
	render RenderFunc[R]
	redraw func()
	logger *slog.Logger

	current  *window.State[R]
	phase    Phase
	pending  []store.Snapshot
	rebuilds int
}

// NewController builds the initial window from initial.
func NewController[R any](initial store.Snapshot, render RenderFunc[R], redraw func(), opts Options) *Controller[R] {
	logger := opts.Logger
	if logger == nil {
		logger = slog.Default()
	}
	if redraw == nil {
		redraw = func() {}
	}

	c := &Controller[R]{
		render: render,
		redraw: redraw,
		logger: logger,
	}
	c.current = window.New(initial.Len(), materializer(initial, render))
	if opts.HasDefaultOffset {
		c.current.ScrollTo(opts.DefaultOffset)
	}
	return c
}

// materializer closes over an immutable snapshot so the window can never
// observe a length other than the one it was built with.
func materializer[R any](snap store.Snapshot, render RenderFunc[R]) window.Materializer[R] {
	return func(index int) R {
		item, err := snap.Get(index)
		if err != nil {
			// Callers stay within [0, Len()); reaching here is a bug.
			panic(err)
		}
		return render(item)
	}
}

// Attach subscribes the controller to c. Each notification is handed to d,
// which must run it on the UI context in FIFO order.
func (c *Controller[R]) Attach(coll *store.Collection, d Dispatcher) *store.Subscription {
	return coll.Subscribe(func(snap store.Snapshot) {
		d.Dispatch(func() {
			c.OnCollectionChanged(snap)
		})
	})
}

// OnCollectionChanged replaces the window with one built over snap, keeping
// the current scroll offset, and requests a redraw. A call made while a
// rebuild is in progress, such as a host catching up from its redraw hook,
// is queued and applied afterwards. Appends made from a redraw hook are
// queued by the collection itself and arrive after the hook returns.
func (c *Controller[R]) OnCollectionChanged(snap store.Snapshot) {
	if c.phase == PhaseRebuilding {
		c.pending = append(c.pending, snap)
		return
	}

	c.apply(snap)
	for len(c.pending) > 0 {
		next := c.pending[0]
		c.pending = c.pending[1:]
		c.apply(next)
	}
}

func (c *Controller[R]) apply(snap store.Snapshot) {
	if snap.Len() < c.current.Len() {
		c.logger.Debug("ignoring stale snapshot", "len", snap.Len(), "current", c.current.Len())
		return
	}

	c.phase = PhaseRebuilding
	defer func() { c.phase = PhaseIdle }()

	offset, hasOffset := c.current.Offset()

	next := window.New(snap.Len(), materializer(snap, c.render))
	if hasOffset {
		next.ScrollTo(offset)
	}

	c.current = next
	c.rebuilds++
	c.logger.Debug("window rebuilt", "len", next.Len(), "rebuilds", c.rebuilds)

	c.redraw()
}

// Window returns the current window. The returned value is never mutated by
// the controller afterwards, apart from ScrollTo on the same controller.
func (c *Controller[R]) Window() *window.State[R] {
	return c.current
}

// ScrollTo records a user scroll on the current window.
func (c *Controller[R]) ScrollTo(offset window.Offset) {
	c.current.ScrollTo(offset)
}

// Phase returns the current processing phase.
func (c *Controller[R]) Phase() Phase {
	return c.phase
}

// Rebuilds returns how many times the window has been rebuilt.
func (c *Controller[R]) Rebuilds() int {
	return c.rebuilds
}
