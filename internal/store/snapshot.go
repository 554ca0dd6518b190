package store

import (
	"fmt"

	"github.com/jmylchreest/popfeed/internal/model"
)

// Snapshot is a read-only view of a collection at one point in its history.
// It is safe to share between goroutines without further locking.
type Snapshot struct {
	items []model.Item
}

// Len returns the number of items in the snapshot.
func (s Snapshot) Len() int {
	return len(s.items)
}

// Get returns the item at index.
func (s Snapshot) Get(index int) (model.Item, error) {
	if index < 0 || index >= len(s.items) {
		return model.Item{}, fmt.Errorf("%w: %d (len %d)", ErrIndexOutOfRange, index, len(s.items))
	}
	return s.items[index], nil
}

// Items returns a copy of the items, oldest first.
func (s Snapshot) Items() []model.Item {
	out := make([]model.Item, len(s.items))
	copy(out, s.items)
	return out
}

// Last returns the most recently appended item, if any.
func (s Snapshot) Last() (model.Item, bool) {
	if len(s.items) == 0 {
		return model.Item{}, false
	}
	return s.items[len(s.items)-1], true
}
