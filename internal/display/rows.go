package display

import (
	"math"

	"github.com/jmylchreest/popfeed/internal/model"
	"github.com/jmylchreest/popfeed/internal/window"
)

// row is the text a card shows for one item.
type row struct {
	Title    string
	Subtitle string
}

func rowFor(item model.Item) row {
	return row{Title: item.Title, Subtitle: item.Subtitle}
}

// rowAt materializes the single row at a list position.
func rowAt(win *window.State[row], pos uint) (row, bool) {
	if pos > math.MaxInt {
		return row{}, false
	}
	rows, err := win.RenderRange(int(pos), 1)
	if err != nil {
		return row{}, false
	}
	return rows[0], true
}

// positionsToAdd is how many positions the list model lacks for length rows.
func positionsToAdd(listed, length int) int {
	return max(0, length-listed)
}
