package dbus

import (
	"fmt"

	"github.com/jmylchreest/popfeed/internal/store"
)

// announce emits ItemAdded for every item in snap not yet announced.
// The collection delivers snapshots in order, one per append.
func (s *FeedServer) announce(snap store.Snapshot) {
	s.mu.Lock()
	e := s.emit
	from := s.announced
	if snap.Len() > s.announced {
		s.announced = snap.Len()
	}
	s.mu.Unlock()

	if e == nil {
		return
	}

	for i := from; i < snap.Len(); i++ {
		item, err := snap.Get(i)
		if err != nil {
			return
		}
		sig := ItemAdded{Index: i, Item: item, Session: s.coll.SessionID()}
		if err := emitItemAdded(e, sig); err != nil {
			s.logger.Warn("failed to emit ItemAdded signal", "index", i, "error", err)
		}
	}
}

// EmitItemAdded emits the ItemAdded signal.
func (s *FeedServer) EmitItemAdded(e ItemAdded) error {
	s.mu.Lock()
	em := s.emit
	s.mu.Unlock()

	if em == nil {
		return fmt.Errorf("not connected to D-Bus")
	}
	return emitItemAdded(em, e)
}

func emitItemAdded(em emitter, e ItemAdded) error {
	if err := em.Emit(Path, Interface+"."+SignalItemAdded, e.body()...); err != nil {
		return fmt.Errorf("failed to emit ItemAdded signal: %w", err)
	}
	return nil
}
