package dbus

import (
	"fmt"
	"log/slog"
	"sync"

	"github.com/godbus/dbus/v5"
	"github.com/godbus/dbus/v5/introspect"

	"github.com/jmylchreest/popfeed/internal/producer"
	"github.com/jmylchreest/popfeed/internal/store"
)

// TriggerFunc asks the background producer for one extra append.
type TriggerFunc func() bool

// emitter sends signals. *dbus.Conn satisfies it.
type emitter interface {
	Emit(path dbus.ObjectPath, name string, values ...interface{}) error
}

// FeedServer implements the io.github.jmylchreest.Popfeed D-Bus interface.
type FeedServer struct {
	conn   *dbus.Conn
	coll   *store.Collection
	logger *slog.Logger

	// Handlers
	triggerHandler TriggerFunc

	mu        sync.Mutex
	emit      emitter
	sub       *store.Subscription
	announced int // Index of the next item to announce
	running   bool
}

// NewFeedServer creates a server for the given collection.
func NewFeedServer(coll *store.Collection, logger *slog.Logger) *FeedServer {
	if logger == nil {
		logger = slog.Default()
	}
	return &FeedServer{
		coll:   coll,
		logger: logger,
	}
}

// SetTriggerHandler sets the handler called when Trigger is requested.
func (s *FeedServer) SetTriggerHandler(handler TriggerFunc) {
	s.triggerHandler = handler
}

// Start connects to the session bus, exports the feed object and begins
// announcing appends.
func (s *FeedServer) Start() error {
	s.mu.Lock()
	if s.running {
		s.mu.Unlock()
		return fmt.Errorf("server already running")
	}
	s.mu.Unlock()

	conn, err := dbus.SessionBus()
	if err != nil {
		return fmt.Errorf("failed to connect to session bus: %w", err)
	}
	s.conn = conn

	if err := conn.Export(s, Path, Interface); err != nil {
		return fmt.Errorf("failed to export object: %w", err)
	}

	node := &introspect.Node{
		Name: string(Path),
		Interfaces: []introspect.Interface{
			introspect.IntrospectData,
			{
				Name:    Interface,
				Methods: feedMethods(),
				Signals: feedSignals(),
			},
		},
	}
	if err := conn.Export(introspect.NewIntrospectable(node), Path,
		"org.freedesktop.DBus.Introspectable"); err != nil {
		return fmt.Errorf("failed to export introspectable: %w", err)
	}

	reply, err := conn.RequestName(BusName, dbus.NameFlagDoNotQueue)
	if err != nil {
		return fmt.Errorf("failed to request bus name: %w", err)
	}
	if reply != dbus.RequestNameReplyPrimaryOwner {
		return fmt.Errorf("bus name %s already taken", BusName)
	}

	s.attach(conn)

	s.logger.Info("D-Bus feed server started", "interface", Interface, "path", Path, "session", s.coll.SessionID())
	return nil
}

// attach starts announcing appends made after this call through e.
func (s *FeedServer) attach(e emitter) {
	s.mu.Lock()
	s.emit = e
	s.announced = s.coll.Len()
	s.running = true
	s.mu.Unlock()

	sub := s.coll.Subscribe(s.announce)

	s.mu.Lock()
	s.sub = sub
	s.mu.Unlock()
}

// Stop releases the bus name and stops announcing appends.
func (s *FeedServer) Stop() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.running {
		return nil
	}

	s.running = false
	s.sub.Cancel()
	s.emit = nil

	if s.conn != nil {
		_, err := s.conn.ReleaseName(BusName)
		if err != nil {
			s.logger.Warn("failed to release bus name", "error", err)
		}
		// Don't close the connection as it's shared (SessionBus)
	}

	s.logger.Info("D-Bus feed server stopped")
	return nil
}

// AddItem appends one synthetic item, exactly like the "Add Item" action.
// D-Bus method: AddItem() -> s
func (s *FeedServer) AddItem() (string, *dbus.Error) {
	item, err := producer.AddItem(s.coll)
	if err != nil {
		s.logger.Warn("AddItem failed", "error", err)
		return "", dbus.MakeFailedError(err)
	}
	s.logger.Debug("AddItem called", "title", item.Title)
	return item.Title, nil
}

// Trigger asks the background producer for an extra append.
// D-Bus method: Trigger() -> b
func (s *FeedServer) Trigger() (bool, *dbus.Error) {
	s.logger.Debug("Trigger called")
	if s.triggerHandler == nil {
		return false, nil
	}
	return s.triggerHandler(), nil
}

// Count returns the number of items in the feed.
// D-Bus method: Count() -> u
func (s *FeedServer) Count() (uint32, *dbus.Error) {
	return uint32(s.coll.Len()), nil
}

// GetSession returns the feed's session id.
// D-Bus method: GetSession() -> s
func (s *FeedServer) GetSession() (string, *dbus.Error) {
	return s.coll.SessionID(), nil
}
