// Package window holds the virtualization state of a windowed list: how many
// rows exist, where the host is scrolled to, and how to materialize any row on
// demand. A State is rebuilt on every collection change, never patched.
package window

import (
	"fmt"

	"github.com/jmylchreest/popfeed/internal/store"
)

// ErrIndexOutOfRange is returned when a requested range exceeds the length.
// It wraps store.ErrIndexOutOfRange so callers can test for either.
var ErrIndexOutOfRange = fmt.Errorf("window: %w", store.ErrIndexOutOfRange)

// Offset is a host-defined scroll position. The window stores and returns it
// unchanged and never interprets or clamps it.
type Offset any

// Materializer turns the row at index into a renderable unit.
type Materializer[R any] func(index int) R

// State is the windowed view over a fixed number of rows.
type State[R any] struct {
	length      int
	materialize Materializer[R]

	offset    Offset
	offsetSet bool
}

// New builds a State over length rows. The scroll offset starts unset.
// materialize must be valid for every index in [0, length).
func New[R any](length int, materialize Materializer[R]) *State[R] {
	if length < 0 {
		length = 0
	}
	return &State[R]{
		length:      length,
		materialize: materialize,
	}
}

// Len returns the number of rows the state was built over.
func (s *State[R]) Len() int {
	return s.length
}

// ScrollTo sets the logical scroll position.
func (s *State[R]) ScrollTo(offset Offset) {
	s.offset = offset
	s.offsetSet = true
}

// ClearOffset resets the scroll position to unset.
func (s *State[R]) ClearOffset() {
	s.offset = nil
	s.offsetSet = false
}

// Offset returns the scroll position and whether one has been set.
func (s *State[R]) Offset() (Offset, bool) {
	return s.offset, s.offsetSet
}

// RenderRange materializes count rows starting at first.
func (s *State[R]) RenderRange(first, count int) ([]R, error) {
	if first < 0 || count < 0 || first > s.length || count > s.length-first {
		return nil, fmt.Errorf("%w: %d rows from %d with len %d", ErrIndexOutOfRange, count, first, s.length)
	}

	units := make([]R, 0, count)
	for i := first; i < first+count; i++ {
		units = append(units, s.materialize(i))
	}
	return units, nil
}

// Visible clamps [first, first+count) to the rows that exist and renders
// them. It returns the first index actually rendered.
func (s *State[R]) Visible(first, count int) (int, []R) {
	if first < 0 {
		first = 0
	}
	if first > s.length {
		first = s.length
	}
	count = max(0, min(count, s.length-first))

	units, err := s.RenderRange(first, count)
	if err != nil {
		// Unreachable after clamping.
		panic(err)
	}
	return first, units
}
