package display

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/jmylchreest/popfeed/internal/model"
	"github.com/jmylchreest/popfeed/internal/window"
)

func TestRowAt_MaterializesOnlyBoundRow(t *testing.T) {
	var calls []int
	win := window.New(3, func(i int) row {
		calls = append(calls, i)
		return rowFor(model.Synthetic(i))
	})

	r, ok := rowAt(win, 1)
	assert.True(t, ok)
	assert.Equal(t, rowFor(model.Synthetic(1)), r)
	assert.Equal(t, []int{1}, calls)
}

func TestRowAt_OutsideWindow(t *testing.T) {
	win := window.New(2, func(i int) row {
		t.Fatalf("materialized row %d", i)
		return row{}
	})

	for _, pos := range []uint{2, 100, math.MaxUint} {
		_, ok := rowAt(win, pos)
		assert.False(t, ok, "position %d", pos)
	}
}

func TestPositionsToAdd(t *testing.T) {
	assert.Equal(t, 3, positionsToAdd(0, 3))
	assert.Equal(t, 1, positionsToAdd(4, 5))
	assert.Equal(t, 0, positionsToAdd(5, 5))
	assert.Equal(t, 0, positionsToAdd(6, 5))
}
