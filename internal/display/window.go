package display

import (
	"log/slog"
	"math"

	"github.com/diamondburned/gotk4-adwaita/pkg/adw"
	layershell "github.com/diamondburned/gotk4-layer-shell/pkg/gtk4layershell"
	coreglib "github.com/diamondburned/gotk4/pkg/core/glib"
	"github.com/diamondburned/gotk4/pkg/gtk/v4"

	"github.com/jmylchreest/popfeed/internal/config"
	"github.com/jmylchreest/popfeed/internal/listsync"
	"github.com/jmylchreest/popfeed/internal/producer"
	"github.com/jmylchreest/popfeed/internal/store"
)

// FeedWindow is the popup window showing the live list.
// All methods must be called on the GTK main thread.
type FeedWindow struct {
	window   *gtk.Window
	scroller *gtk.ScrolledWindow
	list     *gtk.ListView
	model    *gtk.StringList
	cards    map[uintptr]*card
	empty    *gtk.Label
	status   *gtk.Label
	addBtn   *gtk.Button

	coll   *store.Collection
	loop   *producer.Loop
	cfg    *config.Config
	logger *slog.Logger

	ctrl *listsync.Controller[row]
	sub  *store.Subscription

	listed    int  // Positions currently in the list model
	restoring bool // Set while the window moves the adjustment itself
	closed    bool
}

// NewFeedWindow builds the window for coll. Call Attach to start following
// changes and Present to show it.
func NewFeedWindow(app *gtk.Application, coll *store.Collection, cfg *config.Config, logger *slog.Logger) *FeedWindow {
	if logger == nil {
		logger = slog.Default()
	}
	if cfg == nil {
		cfg = config.DefaultConfig()
	}

	w := &FeedWindow{
		coll:   coll,
		cfg:    cfg,
		logger: logger,
		cards:  make(map[uintptr]*card),
	}

	w.window = gtk.NewWindow()
	w.window.SetApplication(app)
	w.window.SetTitle(cfg.Window.Title)
	w.window.SetDefaultSize(cfg.Window.Width, cfg.Window.Height)
	w.window.AddCSSClass("feed-window")

	if cfg.Window.LayerShell {
		placeOverlay(w.window)
	}

	w.buildUI()

	w.ctrl = listsync.NewController[row](coll.Snapshot(), rowFor, w.redraw, listsync.Options{
		DefaultOffset:    defaultOffset(cfg.ListAnchor()),
		HasDefaultOffset: true,
		Logger:           logger,
	})
	w.redraw()

	return w
}

// buildUI lays out a ListView over a model of bare positions. Rows are
// materialized from the current window only when the view binds them.
func (w *FeedWindow) buildUI() {
	w.model = gtk.NewStringList(nil)

	factory := gtk.NewSignalListItemFactory()
	factory.ConnectSetup(w.setupRow)
	factory.ConnectBind(w.bindRow)
	factory.ConnectTeardown(w.teardownRow)

	w.list = gtk.NewListView(gtk.NewNoSelection(w.model), &factory.ListItemFactory)
	w.list.AddCSSClass("feed-list")
	if w.cfg.ListAnchor() == config.AnchorTop {
		w.list.SetVAlign(gtk.AlignStart)
	} else {
		w.list.SetVAlign(gtk.AlignEnd)
	}

	w.empty = gtk.NewLabel("No items yet")
	w.empty.AddCSSClass("feed-empty")

	w.scroller = gtk.NewScrolledWindow()
	w.scroller.SetPolicy(gtk.PolicyNever, gtk.PolicyAutomatic)
	w.scroller.SetVExpand(true)
	w.scroller.SetChild(w.list)

	adj := w.scroller.VAdjustment()
	adj.ConnectValueChanged(w.onScrolled)
	// Upper grows after the new rows are laid out
	adj.ConnectChanged(w.restoreOffset)

	w.addBtn = gtk.NewButtonWithLabel("Add Item")
	w.addBtn.AddCSSClass("feed-add-button")
	w.addBtn.ConnectClicked(w.onAddClicked)

	w.status = gtk.NewLabel("")
	w.status.AddCSSClass("feed-status")
	w.status.SetXAlign(0)

	root := gtk.NewBox(gtk.OrientationVertical, 0)
	root.Append(w.empty)
	root.Append(w.scroller)
	root.Append(w.addBtn)
	root.Append(w.status)
	w.window.SetChild(root)
}

// card is the recycled widget behind one list item.
type card struct {
	box      *gtk.Box
	title    *gtk.Label
	subtitle *gtk.Label
}

func newCard() *card {
	c := &card{
		box:      gtk.NewBox(gtk.OrientationVertical, 2),
		title:    gtk.NewLabel(""),
		subtitle: gtk.NewLabel(""),
	}
	c.box.AddCSSClass("feed-item")
	c.title.AddCSSClass("feed-item-title")
	c.title.SetXAlign(0)
	c.subtitle.AddCSSClass("feed-item-subtitle")
	c.subtitle.SetXAlign(0)
	c.box.Append(c.title)
	c.box.Append(c.subtitle)
	return c
}

func (w *FeedWindow) setupRow(obj *coreglib.Object) {
	item := obj.Cast().(*gtk.ListItem)
	c := newCard()
	item.SetChild(c.box)
	w.cards[obj.Native()] = c
}

func (w *FeedWindow) bindRow(obj *coreglib.Object) {
	c, ok := w.cards[obj.Native()]
	if !ok {
		return
	}
	item := obj.Cast().(*gtk.ListItem)
	r, ok := rowAt(w.ctrl.Window(), item.Position())
	if !ok {
		w.logger.Error("bound row outside window", "position", item.Position(), "len", w.ctrl.Window().Len())
		return
	}
	c.title.SetText(r.Title)
	c.subtitle.SetText(r.Subtitle)
}

func (w *FeedWindow) teardownRow(obj *coreglib.Object) {
	delete(w.cards, obj.Native())
}

// placeOverlay turns the window into a layer-shell overlay. With no anchors
// the compositor centres it.
func placeOverlay(win *gtk.Window) {
	layershell.InitForWindow(win)
	layershell.SetLayer(win, layershell.LayerShellLayerOverlay)
	layershell.SetExclusiveZone(win, 0)
	layershell.SetKeyboardMode(win, layershell.LayerShellKeyboardModeOnDemand)
	layershell.SetNamespace(win, "popfeed")
}

// SetProducer shows the producer's state in the status line.
func (w *FeedWindow) SetProducer(loop *producer.Loop) {
	w.loop = loop
	w.updateStatus()
}

// Attach subscribes the window to collection changes.
func (w *FeedWindow) Attach() {
	w.sub = w.ctrl.Attach(w.coll, MainLoop)

	// Pick up anything appended between construction and subscription.
	MainLoop.Dispatch(func() {
		w.ctrl.OnCollectionChanged(w.coll.Snapshot())
	})
}

// Present shows the window.
func (w *FeedWindow) Present() {
	w.window.Present()
}

// ConnectClosed calls fn when the user closes the window.
func (w *FeedWindow) ConnectClosed(fn func()) {
	w.window.ConnectCloseRequest(func() bool {
		w.closed = true
		fn()
		return false
	})
}

// Close unsubscribes and destroys the window unless the user already
// closed it.
func (w *FeedWindow) Close() {
	w.sub.Cancel()
	if w.closed {
		return
	}
	w.closed = true
	w.window.Destroy()
}

// ApplyConfig updates title and colour scheme after a config reload.
// Size and anchoring apply to the next window.
func (w *FeedWindow) ApplyConfig(cfg *config.Config) {
	w.cfg = cfg
	w.window.SetTitle(cfg.Window.Title)
	ApplyColorScheme(config.ColorScheme(cfg.Window.ColorScheme))
}

// redraw grows the list model to the window's length and restores the
// scroll offset. Items are never removed or reordered, so positions already
// bound stay valid across windows.
func (w *FeedWindow) redraw() {
	if add := positionsToAdd(w.listed, w.ctrl.Window().Len()); add > 0 {
		w.model.Splice(uint(w.listed), 0, make([]string, add))
		w.listed += add
	}

	w.empty.SetVisible(w.listed == 0)
	w.updateStatus()
	w.restoreOffset()
}

func (w *FeedWindow) updateStatus() {
	w.status.SetText(statusText(w.ctrl.Window().Len(), w.producerState()))
}

func (w *FeedWindow) producerState() string {
	switch {
	case w.loop == nil:
		return ""
	case w.loop.Running():
		return "producing every " + w.loop.Period().String()
	case w.loop.Err() != nil:
		return "producer stopped"
	default:
		return "producer idle"
	}
}

// restoreOffset moves the adjustment to the current window's offset.
func (w *FeedWindow) restoreOffset() {
	off, ok := w.ctrl.Window().Offset()
	if !ok {
		return
	}
	vo, ok := off.(ViewOffset)
	if !ok {
		return
	}

	adj := w.scroller.VAdjustment()
	target := targetValue(vo, adj.Upper(), adj.PageSize())
	if math.Abs(adj.Value()-target) < 0.5 {
		return
	}

	w.restoring = true
	adj.SetValue(target)
	w.restoring = false
}

// onScrolled records user scrolling on the current window.
func (w *FeedWindow) onScrolled() {
	if w.restoring {
		return
	}
	adj := w.scroller.VAdjustment()
	w.ctrl.ScrollTo(offsetFromAdjustment(adj.Value(), adj.Upper(), adj.PageSize()))
}

// onAddClicked appends one item. The change comes back through the main
// loop like any producer append.
func (w *FeedWindow) onAddClicked() {
	item, err := producer.AddItem(w.coll)
	if err != nil {
		w.logger.Warn("add item failed", "error", err)
		w.status.SetText("Add failed: " + err.Error())
		return
	}
	w.logger.Debug("item added", "title", item.Title)
}

// ApplyColorScheme forces light or dark, or follows the desktop.
func ApplyColorScheme(scheme config.ColorScheme) {
	sm := adw.StyleManagerGetDefault()
	switch scheme {
	case config.ColorSchemeLight:
		sm.SetColorScheme(adw.ColorSchemeForceLight)
	case config.ColorSchemeDark:
		sm.SetColorScheme(adw.ColorSchemeForceDark)
	default:
		sm.SetColorScheme(adw.ColorSchemeDefault)
	}
}

// SystemIsDark reports libadwaita's current dark mode.
func SystemIsDark() bool {
	return adw.StyleManagerGetDefault().Dark()
}
