// Package tui provides the BubbleTea-based terminal host for the live list.
package tui

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/dustin/go-humanize"

	"github.com/jmylchreest/popfeed/internal/adapter/output"
	"github.com/jmylchreest/popfeed/internal/config"
	"github.com/jmylchreest/popfeed/internal/listsync"
	"github.com/jmylchreest/popfeed/internal/producer"
	"github.com/jmylchreest/popfeed/internal/store"
)

// ScrollPos is the terminal host's scroll offset.
type ScrollPos struct {
	Top    int  // Index of the first visible item
	Follow bool // Pinned to the newest item
}

// defaultScrollPos returns the offset a fresh list starts with.
func defaultScrollPos(anchor config.Anchor) ScrollPos {
	if anchor == config.AnchorTop {
		return ScrollPos{}
	}
	return ScrollPos{Follow: true}
}

// firstVisible resolves pos to the index of the first row to draw.
func firstVisible(length, capacity int, pos ScrollPos) int {
	maxTop := max(length-capacity, 0)
	if pos.Follow {
		return maxTop
	}
	return min(max(pos.Top, 0), maxTop)
}

// feedStats tracks growth for the status bar.
type feedStats struct {
	length     int
	lastChange time.Time
}

func (s *feedStats) observe(length int) {
	if length > s.length {
		s.length = length
		s.lastChange = time.Now()
	}
}

// Options configures a Model.
type Options struct {
	Config     *config.Config
	Collection *store.Collection
	Producer   *producer.Loop  // Optional background producer
	Context    context.Context // Used when resuming the producer
	Logger     *slog.Logger
}

// Model is the main TUI model.
type Model struct {
	// Configuration
	cfg    *config.Config
	coll   *store.Collection
	loop   *producer.Loop
	ctx    context.Context
	logger *slog.Logger

	// List state, shared between model copies
	ctrl  *listsync.Controller[string]
	cards *cardRenderer
	stats *feedStats

	// Components
	help help.Model
	keys KeyMap

	width  int
	height int
	ready  bool
	paused bool

	// Status message
	statusMsg string
	statusErr bool
}

// New creates a new TUI model over the collection's current contents.
func New(opts Options) Model {
	cfg := opts.Config
	if cfg == nil {
		cfg = config.DefaultConfig()
	}
	coll := opts.Collection
	if coll == nil {
		coll = store.NewCollection()
	}
	logger := opts.Logger
	if logger == nil {
		logger = slog.Default()
	}
	ctx := opts.Context
	if ctx == nil {
		ctx = context.Background()
	}

	initial := coll.Snapshot()
	cards := &cardRenderer{styles: NewStyles(cfg.TUI.AccentColor), width: 40}
	stats := &feedStats{length: initial.Len()}

	var ctrl *listsync.Controller[string]
	ctrl = listsync.NewController[string](initial, cards.render, func() {
		stats.observe(ctrl.Window().Len())
	}, listsync.Options{
		DefaultOffset:    defaultScrollPos(cfg.ListAnchor()),
		HasDefaultOffset: true,
		Logger:           logger,
	})

	return Model{
		cfg:    cfg,
		coll:   coll,
		loop:   opts.Producer,
		ctx:    ctx,
		logger: logger,
		ctrl:   ctrl,
		cards:  cards,
		stats:  stats,
		help:   help.New(),
		keys:   DefaultKeyMap(),
	}
}

// Attach subscribes the list to collection changes delivered through d.
func (m Model) Attach(d listsync.Dispatcher) *store.Subscription {
	return m.ctrl.Attach(m.coll, d)
}

// Init initializes the TUI.
func (m Model) Init() tea.Cmd {
	return tea.Batch(
		m.catchUp,
		m.watchProducer(),
		tick(),
	)
}

// dispatchMsg carries work handed over by a listsync.Dispatcher.
type dispatchMsg struct {
	fn func()
}

// catchUp applies any appends that happened before the subscription existed.
func (m Model) catchUp() tea.Msg {
	snap := m.coll.Snapshot()
	ctrl := m.ctrl
	return dispatchMsg{fn: func() { ctrl.OnCollectionChanged(snap) }}
}

type producerStoppedMsg struct {
	done <-chan struct{}
	err  error
}

// watchProducer waits for the running producer to exit.
func (m Model) watchProducer() tea.Cmd {
	if m.loop == nil {
		return nil
	}
	loop := m.loop
	done := loop.Done()
	if done == nil {
		return nil
	}
	return func() tea.Msg {
		<-done
		return producerStoppedMsg{done: done, err: loop.Err()}
	}
}

type tickMsg time.Time

func tick() tea.Cmd {
	return tea.Tick(time.Second, func(t time.Time) tea.Msg {
		return tickMsg(t)
	})
}

type configMsg struct {
	cfg *config.Config
}

type itemAddedMsg struct {
	title string
	err   error
}

type statusMsg struct {
	text  string
	isErr bool
}

type clearStatusMsg struct{}

type copyResultMsg struct {
	what string
	err  error
}

// Update handles messages and updates the model.
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		return m.handleKey(msg)

	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.ready = true
		m.cards.width = msg.Width
		m.help.Width = msg.Width
		return m, nil

	case dispatchMsg:
		msg.fn()
		return m, nil

	case itemAddedMsg:
		if msg.err != nil {
			return m, setStatus("Add failed: "+msg.err.Error(), true)
		}
		return m, nil

	case producerStoppedMsg:
		if m.loop == nil || msg.done != m.loop.Done() || m.paused {
			return m, nil
		}
		if msg.err != nil {
			return m, setStatus("Producer stopped: "+msg.err.Error(), true)
		}
		return m, nil

	case configMsg:
		m.cfg = msg.cfg
		m.cards.styles = NewStyles(msg.cfg.TUI.AccentColor)
		return m, setStatus("Configuration reloaded", false)

	case tickMsg:
		return m, tick()

	case statusMsg:
		m.statusMsg = msg.text
		m.statusErr = msg.isErr
		return m, tea.Tick(3*time.Second, func(t time.Time) tea.Msg {
			return clearStatusMsg{}
		})

	case clearStatusMsg:
		m.statusMsg = ""
		m.statusErr = false
		return m, nil

	case copyResultMsg:
		if msg.err != nil {
			return m, setStatus("Copy failed: "+msg.err.Error(), true)
		}
		return m, setStatus("Copied "+msg.what+" to clipboard", false)
	}

	return m, nil
}

func setStatus(text string, isErr bool) tea.Cmd {
	return func() tea.Msg {
		return statusMsg{text: text, isErr: isErr}
	}
}

// handleKey handles key presses.
func (m Model) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch {
	case key.Matches(msg, m.keys.Quit):
		return m, tea.Quit

	case key.Matches(msg, m.keys.Help):
		m.help.ShowAll = !m.help.ShowAll

	case key.Matches(msg, m.keys.Up):
		m.scrollBy(-1)

	case key.Matches(msg, m.keys.Down):
		m.scrollBy(1)

	case key.Matches(msg, m.keys.PageUp):
		m.scrollBy(-m.capacity())

	case key.Matches(msg, m.keys.PageDown):
		m.scrollBy(m.capacity())

	case key.Matches(msg, m.keys.Home):
		m.ctrl.ScrollTo(ScrollPos{Top: 0})

	case key.Matches(msg, m.keys.End):
		m.ctrl.ScrollTo(ScrollPos{Follow: true})

	case key.Matches(msg, m.keys.Add):
		return m, m.addItem()

	case key.Matches(msg, m.keys.Copy):
		return m, m.copyNewestVisible()

	case key.Matches(msg, m.keys.CopyAll):
		return m, m.copyAll()

	case key.Matches(msg, m.keys.Pause):
		return m.togglePause()
	}

	return m, nil
}

// addItem appends one synthetic item off the UI goroutine. The resulting
// change comes back through the dispatcher like any other append.
func (m Model) addItem() tea.Cmd {
	coll := m.coll
	return func() tea.Msg {
		item, err := producer.AddItem(coll)
		return itemAddedMsg{title: item.Title, err: err}
	}
}

func (m Model) copyNewestVisible() tea.Cmd {
	first, cards := m.visible()
	if len(cards) == 0 {
		return setStatus("Nothing to copy", true)
	}
	item, err := m.coll.Get(first + len(cards) - 1)
	if err != nil {
		return setStatus("Copy failed: "+err.Error(), true)
	}

	cfg := m.cfg
	return func() tea.Msg {
		return copyResultMsg{what: item.Title, err: copyText(item.String(), cfg)}
	}
}

func (m Model) copyAll() tea.Cmd {
	items := m.coll.Snapshot().Items()
	text, err := exportItems(items, output.FormatYAML, m.coll.SessionID())
	if err != nil {
		return setStatus("Export failed: "+err.Error(), true)
	}

	cfg := m.cfg
	return func() tea.Msg {
		return copyResultMsg{what: fmt.Sprintf("%d items", len(items)), err: copyText(text, cfg)}
	}
}

// togglePause stops or restarts the background producer. Stopping waits
// for an in-flight append, so it runs as a command.
func (m Model) togglePause() (tea.Model, tea.Cmd) {
	if m.loop == nil {
		return m, setStatus("No producer configured", true)
	}

	loop := m.loop
	if m.paused {
		m.paused = false
		loop.Start(m.ctx)
		return m, tea.Batch(m.watchProducer(), setStatus("Producer resumed", false))
	}

	m.paused = true
	return m, func() tea.Msg {
		loop.Stop()
		return statusMsg{text: "Producer paused"}
	}
}

// position returns the current window's scroll offset.
func (m Model) position() ScrollPos {
	if off, ok := m.ctrl.Window().Offset(); ok {
		if pos, ok := off.(ScrollPos); ok {
			return pos
		}
	}
	return defaultScrollPos(m.cfg.ListAnchor())
}

// scrollBy moves the viewport by delta rows. Reaching the end pins the
// view to the newest item again.
func (m Model) scrollBy(delta int) {
	length := m.ctrl.Window().Len()
	capacity := m.capacity()
	maxTop := max(length-capacity, 0)
	if maxTop == 0 {
		return
	}

	next := min(max(firstVisible(length, capacity, m.position())+delta, 0), maxTop)
	m.ctrl.ScrollTo(ScrollPos{Top: next, Follow: delta > 0 && next == maxTop})
}

func (m Model) helpView() string {
	if !m.cfg.TUI.ShowHelp {
		return ""
	}
	return m.help.View(m.keys)
}

// bodyHeight is the number of lines available for cards.
func (m Model) bodyHeight() int {
	h := m.height - 2 // header and status bar
	if hv := m.helpView(); hv != "" {
		h -= lipgloss.Height(hv)
	}
	return max(h, cardHeight)
}

// capacity is the number of cards that fit on screen.
func (m Model) capacity() int {
	return max(m.bodyHeight()/cardHeight, 1)
}

// visible renders the cards currently on screen.
func (m Model) visible() (int, []string) {
	w := m.ctrl.Window()
	capacity := m.capacity()
	return w.Visible(firstVisible(w.Len(), capacity, m.position()), capacity)
}

// View renders the TUI.
func (m Model) View() string {
	if !m.ready {
		return "Initializing..."
	}

	styles := m.cards.styles
	header := styles.Header.Render(m.cfg.Window.Title)

	_, cards := m.visible()
	body := lipgloss.JoinVertical(lipgloss.Left, cards...)
	if len(cards) == 0 {
		body = styles.Muted.Render("No items yet. Press a to add one.")
	}

	align := lipgloss.Bottom
	if m.cfg.ListAnchor() == config.AnchorTop {
		align = lipgloss.Top
	}
	body = lipgloss.PlaceVertical(m.bodyHeight(), align, body)

	s := header + "\n" + body + "\n" + m.statusLine()
	if hv := m.helpView(); hv != "" {
		s += "\n" + hv
	}
	return s
}

func (m Model) statusLine() string {
	styles := m.cards.styles
	if m.statusMsg != "" {
		if m.statusErr {
			return styles.StatusErr.Render(m.statusMsg)
		}
		return styles.Status.Render(m.statusMsg)
	}

	n := m.ctrl.Window().Len()
	parts := []string{humanize.Comma(int64(n)) + " " + pluralItems(n)}
	if !m.stats.lastChange.IsZero() {
		parts = append(parts, "last added "+humanize.Time(m.stats.lastChange))
	}
	parts = append(parts, m.producerState())
	if !m.position().Follow && m.cfg.ListAnchor() == config.AnchorBottom {
		parts = append(parts, styles.Key.Render("G")+" to follow")
	}

	return styles.Muted.Render(strings.Join(parts, " · "))
}

func (m Model) producerState() string {
	switch {
	case m.loop == nil:
		return "producer off"
	case m.paused:
		return "paused"
	case m.loop.Running():
		return "producing every " + m.loop.Period().String()
	case m.loop.Err() != nil:
		return "producer failed"
	default:
		return "producer idle"
	}
}

func pluralItems(n int) string {
	if n == 1 {
		return "item"
	}
	return "items"
}

// RunOptions configures the TUI.
type RunOptions struct {
	Config     *config.Config
	ConfigPath string // Path to watch for changes (empty = no watching)
	Collection *store.Collection
	Producer   *producer.Loop
	Logger     *slog.Logger
	InputTTY   bool // Read keys from the terminal when stdin is taken

	// OnReload, if set, also receives reloaded configs. It runs on the
	// watcher goroutine.
	OnReload func(*config.Config)
}

// Run starts the TUI and the producer, and blocks until the user quits or
// ctx is cancelled.
func Run(ctx context.Context, opts RunOptions) error {
	cfg := opts.Config
	if cfg == nil {
		cfg = config.DefaultConfig()
	}
	logger := opts.Logger
	if logger == nil {
		logger = slog.Default()
	}

	m := New(Options{
		Config:     cfg,
		Collection: opts.Collection,
		Producer:   opts.Producer,
		Context:    ctx,
		Logger:     logger,
	})

	progOpts := []tea.ProgramOption{tea.WithContext(ctx)}
	if cfg.TUI.AltScreen {
		progOpts = append(progOpts, tea.WithAltScreen())
	}
	if opts.InputTTY {
		progOpts = append(progOpts, tea.WithInputTTY())
	}
	p := tea.NewProgram(m, progOpts...)

	sub := m.Attach(NewProgramDispatcher(p))
	defer sub.Cancel()

	if opts.ConfigPath != "" {
		watcher, err := config.NewWatcher(opts.ConfigPath, logger)
		if err != nil {
			logger.Warn("failed to create config watcher", "error", err)
		} else {
			watcher.SetReloadCallback(func(c *config.Config) {
				if opts.OnReload != nil {
					opts.OnReload(c)
				}
				p.Send(configMsg{cfg: c})
			})
			if err := watcher.Start(); err != nil {
				logger.Warn("failed to start config watcher", "error", err)
			}
			defer func() { _ = watcher.Stop() }()
		}
	}

	if opts.Producer != nil {
		opts.Producer.Start(ctx)
		defer opts.Producer.Stop()
	}

	_, err := p.Run()
	if errors.Is(err, tea.ErrProgramKilled) && ctx.Err() != nil {
		return nil
	}
	return err
}
