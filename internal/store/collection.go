// Package store provides the observable, append-only item collection shared
// between the UI and the background producer.
package store

import (
	"crypto/rand"
	"fmt"
	"sync"
	"time"

	"github.com/oklog/ulid/v2"

	"github.com/jmylchreest/popfeed/internal/model"
)

// Observer is called once per committed append with the collection state
// that append produced. Observers must not append to the same collection
// synchronously; hop to another goroutine (see listsync.Dispatcher) instead.
type Observer func(Snapshot)

// Collection is an append-only ordered sequence of items with thread-safe
// mutation and ordered change notification.
type Collection struct {
	mu     sync.RWMutex
	items  []model.Item
	closed bool

	sessionID string

	// Committed snapshots wait in outbox, in commit order, until the
	// draining goroutine hands them to observers without holding mu.
	deliverMu sync.Mutex
	outbox    []Snapshot
	draining  bool

	subMu       sync.Mutex
	subscribers []subscriber
	nextSubID   uint64
}

type subscriber struct {
	id       uint64
	observer Observer
}

// NewCollection creates an empty collection with a fresh session id.
func NewCollection() *Collection {
	return &Collection{
		items:     make([]model.Item, 0),
		sessionID: ulid.MustNew(ulid.Timestamp(time.Now()), rand.Reader).String(),
	}
}

// SessionID returns the ULID identifying this collection's session.
func (c *Collection) SessionID() string {
	return c.sessionID
}

// Append adds an item at the end of the collection.
func (c *Collection) Append(item model.Item) error {
	_, err := c.AppendFunc(func(int) model.Item { return item })
	return err
}

// AppendFunc builds and appends an item atomically. build receives the
// collection length at construction time and runs under the mutation lock,
// so two concurrent callers never see the same length.
//
// Observers are notified before AppendFunc returns unless another goroutine
// is already delivering, in which case that goroutine delivers this append
// too. An append made from inside an observer is delivered after the
// current notification completes.
func (c *Collection) AppendFunc(build func(length int) model.Item) (model.Item, error) {
	c.mu.Lock()
	if c.closed {
		c.mu.Unlock()
		return model.Item{}, ErrUnreachable
	}

	item := build(len(c.items))
	c.items = append(c.items, item)
	c.deliverMu.Lock()
	c.outbox = append(c.outbox, c.snapshotLocked())
	c.deliverMu.Unlock()
	c.mu.Unlock()

	c.deliver()
	return item, nil
}

// Len returns the number of items.
func (c *Collection) Len() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.items)
}

// Get returns the item at index.
func (c *Collection) Get(index int) (model.Item, error) {
	c.mu.RLock()
	defer c.mu.RUnlock()

	if index < 0 || index >= len(c.items) {
		return model.Item{}, fmt.Errorf("%w: %d (len %d)", ErrIndexOutOfRange, index, len(c.items))
	}
	return c.items[index], nil
}

// Snapshot returns an immutable view of the current contents.
func (c *Collection) Snapshot() Snapshot {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.snapshotLocked()
}

func (c *Collection) snapshotLocked() Snapshot {
	n := len(c.items)
	// Capping capacity at n keeps later appends invisible to the view: they
	// either write past n or reallocate.
	return Snapshot{items: c.items[:n:n]}
}

// Subscribe registers an observer for future appends.
func (c *Collection) Subscribe(observer Observer) *Subscription {
	c.subMu.Lock()
	defer c.subMu.Unlock()

	c.nextSubID++
	sub := &Subscription{id: c.nextSubID, collection: c}
	c.subscribers = append(c.subscribers, subscriber{id: sub.id, observer: observer})
	return sub
}

func (c *Collection) unsubscribe(id uint64) {
	c.subMu.Lock()
	defer c.subMu.Unlock()

	for i, s := range c.subscribers {
		if s.id == id {
			c.subscribers = append(c.subscribers[:i:i], c.subscribers[i+1:]...)
			return
		}
	}
}

// SubscriberCount returns the number of active subscriptions.
func (c *Collection) SubscriberCount() int {
	c.subMu.Lock()
	defer c.subMu.Unlock()
	return len(c.subscribers)
}

// Close tears down the session. Appends fail with ErrUnreachable afterwards
// and all subscriptions are dropped. Reads keep working.
func (c *Collection) Close() error {
	c.mu.Lock()
	if c.closed {
		c.mu.Unlock()
		return nil
	}
	c.closed = true
	c.mu.Unlock()

	c.subMu.Lock()
	c.subscribers = nil
	c.subMu.Unlock()
	return nil
}

// Closed reports whether Close has been called.
func (c *Collection) Closed() bool {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.closed
}

// deliver drains the outbox in commit order unless another call is already
// draining it.
func (c *Collection) deliver() {
	c.deliverMu.Lock()
	if c.draining {
		c.deliverMu.Unlock()
		return
	}
	c.draining = true
	c.deliverMu.Unlock()

	// Release the outbox if an observer panics.
	drained := false
	defer func() {
		if !drained {
			c.deliverMu.Lock()
			c.draining = false
			c.deliverMu.Unlock()
		}
	}()

	for {
		c.deliverMu.Lock()
		if len(c.outbox) == 0 {
			c.draining = false
			drained = true
			c.deliverMu.Unlock()
			return
		}
		snap := c.outbox[0]
		c.outbox[0] = Snapshot{}
		c.outbox = c.outbox[1:]
		c.deliverMu.Unlock()

		c.notify(snap)
	}
}

func (c *Collection) notify(snap Snapshot) {
	c.subMu.Lock()
	subs := make([]subscriber, len(c.subscribers))
	copy(subs, c.subscribers)
	c.subMu.Unlock()

	for _, s := range subs {
		s.observer(snap)
	}
}

// Subscription is the handle returned by Subscribe.
type Subscription struct {
	id         uint64
	collection *Collection
	once       sync.Once
}

// Cancel stops further notifications. It is safe to call more than once.
func (s *Subscription) Cancel() {
	if s == nil {
		return
	}
	s.once.Do(func() {
		s.collection.unsubscribe(s.id)
	})
}

// Errors
var (
	// ErrUnreachable is returned by appends after the owning session is torn down.
	ErrUnreachable = storeError("collection is no longer reachable")
	// ErrIndexOutOfRange is returned when an index is not below the length.
	ErrIndexOutOfRange = storeError("index out of range")
)

type storeError string

func (e storeError) Error() string {
	return string(e)
}
